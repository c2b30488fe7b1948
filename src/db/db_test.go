package db

import (
	"log"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func NewMockDB() (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	if err != nil {
		log.Fatalf("An error '%s' was not expected when opening a stub database connection", err)
	}

	gormDB, err := OpenDialector(postgres.New(postgres.Config{
		Conn: db,
	}))
	if err != nil {
		log.Fatalf("An error '%s' was not expected when opening gorm database", err)
	}

	return gormDB, mock
}

func TestDB(t *testing.T) {
	gormDB, mock := NewMockDB()

	assert.Equal(t, "postgres", gormDB.Name())
	assert.True(t, gormDB.Config.SkipDefaultTransaction)

	mock.ExpectClose()
	assert.Nil(t, Close(gormDB))
	assert.Nil(t, mock.ExpectationsWereMet())
}

package store

import (
	"context"
	"errors"
	"log"
	"vbs/src/db"
	"vbs/src/models"
	"vbs/src/types"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Get(ctx context.Context, identity string) (*models.Booking, error) {
	var booking models.Booking
	err := s.db.
		WithContext(ctx).
		Where("identity = ?", identity).
		First(&booking).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &booking, nil
}

func (s *GormStore) FindByBookingID(ctx context.Context, bookingID string) (*models.Booking, error) {
	var booking models.Booking
	err := s.db.
		WithContext(ctx).
		Where("booking_id = ?", bookingID).
		First(&booking).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &booking, nil
}

func (s *GormStore) Complete(ctx context.Context, identity string, c models.Completion) error {
	res := s.db.
		WithContext(ctx).
		Model(&models.Booking{}).
		Where("identity = ? AND status = ?", identity, types.BOOKING_PENDING).
		Updates(map[string]any{
			"status":     types.BOOKING_COMPLETED,
			"booking_id": c.BookingID,
			"hash":       c.VerificationHash,
			"updated_at": c.UpdatedAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 1 {
		return nil
	}
	var count int64
	if err := s.db.
		WithContext(ctx).
		Model(&models.Booking{}).
		Where("identity = ?", identity).
		Count(&count).
		Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrNotFound
	}
	return ErrConflict
}

func (s *GormStore) CreatePayment(ctx context.Context, p *models.Payment) error {
	err := s.db.
		WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(p).
		Error
	if err != nil {
		log.Printf("[store] Error creating payment record %s: %s\n", p.BookingID, err.Error())
		return err
	}
	return nil
}

func (s *GormStore) Close() error {
	return db.Close(s.db)
}

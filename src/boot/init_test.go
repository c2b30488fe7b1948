package boot

import (
	"context"
	"testing"
	"time"
	"vbs/src/config"
	"vbs/src/credential"
	"vbs/src/lib/mailer"
	"vbs/src/models"
	"vbs/src/store"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		Env:                 "test",
		StoreDriver:         config.STORE_MEMORY,
		MailDriver:          config.MAIL_NONE,
		BookingIDPrefix:     "ATH",
		CredentialNamespace: "ATHENA-MUSEUM",
		HashLength:          8,
		Location:            time.UTC,
		StoreTimeout:        time.Second,
		NotifyTimeout:       time.Second,
		LockTTL:             time.Second,
		QRCacheTTL:          time.Hour,
	}
}

func TestInitStore(t *testing.T) {
	cfg := testConfig()
	s, err := InitStore(context.Background(), cfg)
	require.Nil(t, err)
	assert.IsType(t, &store.MemoryStore{}, s)

	cfg.StoreDriver = "mongo"
	_, err = InitStore(context.Background(), cfg)
	assert.NotNil(t, err)
}

func TestInitSender(t *testing.T) {
	cfg := testConfig()
	sender, err := InitSender(context.Background(), cfg)
	require.Nil(t, err)
	assert.Nil(t, sender)

	cfg.MailDriver = config.MAIL_SMTP
	sender, err = InitSender(context.Background(), cfg)
	require.Nil(t, err)
	assert.IsType(t, &mailer.SMTPSender{}, sender)

	cfg.MailDriver = config.MAIL_QUEUE
	cfg.Env = "local"
	cfg.EmailQueue = "emails"
	sender, err = InitSender(context.Background(), cfg)
	require.Nil(t, err)
	q, ok := sender.(*mailer.QueueSender)
	require.True(t, ok)
	assert.True(t, q.Local)

	cfg.MailDriver = "pigeon"
	_, err = InitSender(context.Background(), cfg)
	assert.NotNil(t, err)
}

func TestInitRenderer(t *testing.T) {
	cfg := testConfig()
	assert.IsType(t, &credential.QRRenderer{}, InitRenderer(cfg, nil))

	rdb, _ := redismock.NewClientMock()
	assert.IsType(t, &credential.CachedRenderer{}, InitRenderer(cfg, rdb))
}

func TestInitRedisDisabled(t *testing.T) {
	assert.Nil(t, InitRedis(context.Background(), testConfig()))
}

func TestInitManagerUsesConfig(t *testing.T) {
	cfg := testConfig()
	cfg.BookingIDPrefix = "GAL"
	cfg.CredentialNamespace = "CITY-GALLERY"
	s := store.NewMemoryStore()
	s.Put(models.Booking{Identity: "a_at_b_com", Email: "a@b.com", ValidUntil: time.Now().Add(time.Hour)})

	m := InitManager(cfg, s, nil, nil)
	res, err := m.CompletePayment(context.Background(), "a_at_b_com")
	require.Nil(t, err)
	m.Close()

	assert.Regexp(t, `^GAL\d{16}$`, res.BookingID)
	assert.Equal(t, "CITY-GALLERY-"+res.BookingID+"-"+res.VerificationHash, res.Credential)
}

func TestInitMemoryApp(t *testing.T) {
	app, err := Init(context.Background(), testConfig())
	require.Nil(t, err)
	assert.NotNil(t, app.Manager)
	assert.Nil(t, app.Redis)
	app.Close()
}

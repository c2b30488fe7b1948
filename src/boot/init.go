package boot

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"vbs/src/common"
	"vbs/src/config"
	"vbs/src/credential"
	"vbs/src/db"
	"vbs/src/lib"
	"vbs/src/lib/mailer"
	"vbs/src/lifecycle"
	"vbs/src/store"
	"vbs/src/utils"

	"github.com/redis/go-redis/v9"
)

// App holds the long lived dependencies of the service.
type App struct {
	Config   *config.Config
	Store    store.BookingStore
	Redis    *redis.Client
	Renderer credential.Renderer
	Manager  *lifecycle.Manager

	cancel  context.CancelFunc
	workers sync.WaitGroup
}

func InitStore(ctx context.Context, cfg *config.Config) (store.BookingStore, error) {
	switch cfg.StoreDriver {
	case config.STORE_POSTGRES:
		gdb, err := db.Open(config.GetDSN())
		if err != nil {
			return nil, err
		}
		if err := db.Migrate(gdb); err != nil {
			log.Printf("error migration: %s\n", err.Error())
			db.Close(gdb)
			return nil, err
		}
		return store.NewGormStore(gdb), nil
	case config.STORE_FIRESTORE:
		client, err := lib.NewFirestoreClient(ctx, cfg.FirebaseProjectID, cfg.SecretsDir)
		if err != nil {
			return nil, err
		}
		return store.NewFirestoreStore(client), nil
	case config.STORE_MEMORY:
		log.Println("[boot] Using in-memory booking store")
		return store.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}
}

// InitRedis returns nil when redis is not configured or unreachable. Redis
// only backs the lock and the QR cache, so the service runs without it.
func InitRedis(ctx context.Context, cfg *config.Config) *redis.Client {
	if cfg.RedisURL == "" {
		return nil
	}
	rdb, err := lib.NewRedisClient(cfg.RedisURL)
	if err != nil {
		return nil
	}
	if err := lib.PingRedis(ctx, rdb); err != nil {
		rdb.Close()
		return nil
	}
	return rdb
}

func InitRenderer(cfg *config.Config, rdb *redis.Client) credential.Renderer {
	var r credential.Renderer = credential.NewQRRenderer()
	if rdb != nil {
		r = credential.NewCachedRenderer(r, rdb, cfg.QRCacheTTL)
	}
	return r
}

func smtpSender(cfg *config.Config) *mailer.SMTPSender {
	return mailer.NewSMTPSender(lib.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		Timeout:  cfg.NotifyTimeout,
	}, cfg.MailFrom, cfg.MailFromName)
}

// InitSender returns nil for MAIL_DRIVER=none.
func InitSender(ctx context.Context, cfg *config.Config) (mailer.Sender, error) {
	switch cfg.MailDriver {
	case config.MAIL_SMTP:
		return smtpSender(cfg), nil
	case config.MAIL_SES:
		client, err := lib.AWSGetSESClient(ctx)
		if err != nil {
			return nil, err
		}
		return mailer.NewSESSender(client, cfg.MailFrom, cfg.MailFromName), nil
	case config.MAIL_QUEUE:
		q := &mailer.QueueSender{
			Queue:       utils.WithSuffix(cfg.EmailQueue),
			From:        cfg.MailFrom,
			FromName:    cfg.MailFromName,
			Local:       cfg.IsLocal(),
			KafkaBroker: cfg.KafkaBroker,
		}
		if !q.Local {
			client, err := lib.AWSGetSQSClient(ctx)
			if err != nil {
				return nil, err
			}
			q.SQS = client
		}
		return q, nil
	case config.MAIL_NONE:
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown MAIL_DRIVER %q", cfg.MailDriver)
	}
}

func InitManager(cfg *config.Config, s store.BookingStore, rdb *redis.Client, notifier lifecycle.Notifier) *lifecycle.Manager {
	generator := credential.NewGenerator(
		credential.WithPrefix(cfg.BookingIDPrefix),
		credential.WithHashLength(cfg.HashLength),
		credential.WithSecret(cfg.HashSecret),
	)
	opts := []lifecycle.Option{
		lifecycle.WithNamespace(cfg.CredentialNamespace),
		lifecycle.WithLocation(cfg.Location),
		lifecycle.WithStoreTimeout(cfg.StoreTimeout),
		lifecycle.WithNotifyTimeout(cfg.NotifyTimeout),
	}
	if notifier != nil {
		opts = append(opts, lifecycle.WithNotifier(notifier))
	}
	if rdb != nil {
		opts = append(opts, lifecycle.WithLocker(lib.NewLocker(rdb, cfg.LockTTL)))
	}
	return lifecycle.NewManager(s, generator, opts...)
}

// InitEmailWorker drains the email queue into SMTP when EMAIL_WORKER is set.
func (a *App) InitEmailWorker(ctx context.Context) error {
	cfg := a.Config
	if !cfg.EmailWorker {
		return nil
	}
	if cfg.IsLocal() {
		return errors.New("email worker consumes SQS and is not available with API_ENV=local")
	}
	client, err := lib.AWSGetSQSClient(ctx)
	if err != nil {
		return err
	}
	sender := smtpSender(cfg)
	a.workers.Add(1)
	go func() {
		defer a.workers.Done()
		if err := common.EmailsToSendConsumer(ctx, client, utils.WithSuffix(cfg.EmailQueue), sender, cfg.NotifyTimeout); err != nil {
			log.Printf("[boot] Email worker stopped: %s\n", err.Error())
		}
	}()
	return nil
}

// Init wires the service from cfg. The caller releases it with Close.
func Init(ctx context.Context, cfg *config.Config) (*App, error) {
	s, err := InitStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	rdb := InitRedis(ctx, cfg)
	renderer := InitRenderer(cfg, rdb)

	sender, err := InitSender(ctx, cfg)
	if err != nil {
		s.Close()
		return nil, err
	}
	var notifier lifecycle.Notifier
	if sender != nil {
		n := mailer.NewBookingNotifier(sender, renderer, cfg.MailFromName)
		if cfg.Currency != "" {
			n.Currency = cfg.Currency
		}
		notifier = n
	}

	wctx, cancel := context.WithCancel(context.Background())
	a := &App{
		Config:   cfg,
		Store:    s,
		Redis:    rdb,
		Renderer: renderer,
		Manager:  InitManager(cfg, s, rdb, notifier),
		cancel:   cancel,
	}
	if err := a.InitEmailWorker(wctx); err != nil {
		log.Printf("[boot] Email worker disabled: %s\n", err.Error())
	}
	return a, nil
}

func (a *App) Close() {
	if a.cancel != nil {
		a.cancel()
	}
	a.workers.Wait()
	a.Manager.Close()
	if err := a.Store.Close(); err != nil {
		log.Printf("[boot] Error closing store: %s\n", err.Error())
	}
	if a.Redis != nil {
		a.Redis.Close()
	}
}

package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// const dsn = "host=localhost user=postgres password=password dbname=vbsdb port=5432 sslmode=disable TimeZone=Asia/Manila"

func GetDSN() string {
	DATABASE_HOST := os.Getenv("DATABASE_HOST")
	DATABASE_PORT := os.Getenv("DATABASE_PORT")
	DATABASE_SSLMODE := os.Getenv("DATABASE_SSLMODE")
	DATABASE_TIMEZONE := os.Getenv("DATABASE_TIMEZONE")
	DATABASE_USER := os.Getenv("DATABASE_USER")
	DATABASE_PASSWORD := os.Getenv("DATABASE_PASSWORD")
	DATABASE_NAME := os.Getenv("DATABASE_NAME")
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s", DATABASE_HOST, DATABASE_USER, DATABASE_PASSWORD, DATABASE_NAME, DATABASE_PORT, DATABASE_SSLMODE, DATABASE_TIMEZONE)
	return dsn
}

const (
	VALIDITY_DISPLAY_FORMAT = "02 Jan 2006, 15:04"

	STORE_POSTGRES  = "postgres"
	STORE_FIRESTORE = "firestore"
	STORE_MEMORY    = "memory"

	MAIL_SMTP  = "smtp"
	MAIL_SES   = "ses"
	MAIL_QUEUE = "queue"
	MAIL_NONE  = "none"

	MIN_HASH_LENGTH = 8

	DEFAULT_BOOKING_ID_PREFIX = "ATH"
	DEFAULT_CURRENCY_SYMBOL   = "₹"
)

type Config struct {
	Env  string
	Port string

	StoreDriver       string
	FirebaseProjectID string
	SecretsDir        string
	RedisURL          string
	LockTTL           time.Duration
	QRCacheTTL        time.Duration

	BookingIDPrefix     string
	CredentialNamespace string
	HashLength          int
	HashSecret          string
	Location            *time.Location

	StoreTimeout   time.Duration
	NotifyTimeout  time.Duration
	RequestTimeout time.Duration

	MailDriver   string
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	MailFrom     string
	MailFromName string
	EmailQueue   string
	KafkaBroker  string
	EmailWorker  bool
	Currency     string

	AppHost         string
	LogDir          string
	MaintenanceMode bool
}

// Load reads the service configuration from the environment.
func Load() *Config {
	cfg := &Config{
		Env:  getEnv("API_ENV", "local"),
		Port: getEnv("PORT", "9090"),

		StoreDriver:       getEnv("STORE_DRIVER", STORE_POSTGRES),
		FirebaseProjectID: os.Getenv("FIREBASE_PROJECT_ID"),
		SecretsDir:        os.Getenv("SECRETS_DIR"),
		RedisURL:          os.Getenv("REDIS_HOST"),
		LockTTL:           getDuration("LOCK_TTL", 10*time.Second),
		QRCacheTTL:        getDuration("QR_CACHE_TTL", 24*time.Hour),

		BookingIDPrefix:     getEnv("BOOKING_ID_PREFIX", DEFAULT_BOOKING_ID_PREFIX),
		CredentialNamespace: getEnv("CREDENTIAL_NAMESPACE", "ATHENA-MUSEUM"),
		HashLength:          getInt("HASH_LENGTH", MIN_HASH_LENGTH),
		HashSecret:          os.Getenv("API_QRC_SECRET"),

		StoreTimeout:   getDuration("STORE_TIMEOUT", 5*time.Second),
		NotifyTimeout:  getDuration("NOTIFY_TIMEOUT", 15*time.Second),
		RequestTimeout: getDuration("REQUEST_TIMEOUT", 30*time.Second),

		MailDriver:   getEnv("MAIL_DRIVER", MAIL_SMTP),
		SMTPHost:     getEnv("SMTP_HOST", "smtp.gmail.com"),
		SMTPPort:     getInt("SMTP_PORT", 587),
		SMTPUsername: os.Getenv("SMTP_USERNAME"),
		SMTPPassword: os.Getenv("SMTP_PASSWORD"),
		MailFrom:     os.Getenv("MAIL_FROM"),
		MailFromName: getEnv("MAIL_FROM_NAME", "Athena Museum"),
		EmailQueue:   getEnv("EMAIL_QUEUE", "emails"),
		KafkaBroker:  os.Getenv("KAFKA_BROKER"),
		EmailWorker:  getBool("EMAIL_WORKER", false),
		Currency:     getEnv("CURRENCY_SYMBOL", DEFAULT_CURRENCY_SYMBOL),

		AppHost:         os.Getenv("APP_HOST"),
		LogDir:          os.Getenv("LOG_DIR"),
		MaintenanceMode: getBool("MAINTENANCE_MODE", false),
	}
	if cfg.HashLength < MIN_HASH_LENGTH {
		log.Printf("[config] HASH_LENGTH=%d is below minimum, using %d\n", cfg.HashLength, MIN_HASH_LENGTH)
		cfg.HashLength = MIN_HASH_LENGTH
	}
	if !ValidBookingIDPrefix(cfg.BookingIDPrefix) {
		log.Printf("[config] BOOKING_ID_PREFIX=%q may not contain dashes or spaces, using %s\n", cfg.BookingIDPrefix, DEFAULT_BOOKING_ID_PREFIX)
		cfg.BookingIDPrefix = DEFAULT_BOOKING_ID_PREFIX
	}
	if cfg.MailFrom == "" {
		cfg.MailFrom = cfg.SMTPUsername
	}
	tz := getEnv("BOOKING_TIMEZONE", "UTC")
	loc, err := time.LoadLocation(tz)
	if err != nil {
		log.Printf("[config] Unknown BOOKING_TIMEZONE %s: %s\n", tz, err.Error())
		loc = time.UTC
	}
	cfg.Location = loc
	return cfg
}

// ValidBookingIDPrefix reports whether prefix can appear in a scanned
// credential, where dashes separate the namespace, booking id and hash.
func ValidBookingIDPrefix(prefix string) bool {
	return prefix != "" && !strings.ContainsAny(prefix, "- \t\r\n")
}

func (c *Config) IsLocal() bool {
	return c.Env == "local"
}

func getEnv(key string, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("[config] Invalid integer for %s: %s\n", key, err.Error())
		return fallback
	}
	return i
}

func getBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Printf("[config] Invalid duration for %s: %s\n", key, err.Error())
		return fallback
	}
	return d
}

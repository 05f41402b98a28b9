package shared

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"hotel_pms/internal/pms"
)

type Config struct {
	AppEnv      string `validate:"required"`
	LogLevel    string
	HTTPAddr    string `validate:"required"`
	MetricsAddr string
	StoreDSN    string `validate:"required"`
	RedisAddr   string // empty disables redis; locks fall back to in-process
	RedisDB     int    `validate:"gte=0"`
	RedisPass   string
	PMSBase     string `validate:"required,url"`
	PMSKey      string
	PMSRPS      int `validate:"gte=1"`

	WebhookWorkers int           `validate:"gte=1"`
	WebhookTimeout time.Duration `validate:"gt=0"`
	HotelCacheTTL  time.Duration `validate:"gte=0"`
	LockTTL        time.Duration `validate:"gt=0"`

	MaxRetries       int           `validate:"gte=1"`
	RetryWait        time.Duration `validate:"gte=0"`
	StrictPhone      bool
	PhoneSuffix      string `validate:"required"`
	ConflictMode     string `validate:"oneof=relocate-incumbent suffix-newcomer"`
	MaxConflictDepth int    `validate:"gte=1"`
}

var validate = validator.New()

// Load reads configuration from the environment (and .env when present).
// Invalid configuration is fatal.
func Load() Config {
	if err := godotenv.Load(); err == nil {
		log.Debug().Msg("loaded .env")
	}
	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
		}
		return def
	}
	c := Config{
		AppEnv:      env("APP_ENV", "prod"),
		LogLevel:    env("LOG_LEVEL", "info"),
		HTTPAddr:    env("HTTP_ADDR", ":8080"),
		MetricsAddr: env("METRICS_ADDR", ""),
		StoreDSN:    env("STORE_DSN", "root:root@tcp(localhost:3306)/hotel?parseTime=true&charset=utf8mb4,utf8&loc=UTC"),
		RedisAddr:   env("REDIS_ADDR", ""),
		RedisPass:   env("REDIS_PASSWORD", ""),
		RedisDB:     atoi("REDIS_DB", 0),
		PMSBase:     env("PMS_API_BASE_URL", "http://localhost:9000/api"),
		PMSKey:      env("PMS_API_KEY", ""),
		PMSRPS:      atoi("PMS_API_RPS", 10),

		WebhookWorkers: atoi("WEBHOOK_WORKERS", 8),
		WebhookTimeout: time.Duration(atoi("WEBHOOK_TIMEOUT_SECONDS", 60)) * time.Second,
		HotelCacheTTL:  time.Duration(atoi("HOTEL_CACHE_TTL_SECONDS", 300)) * time.Second,
		LockTTL:        time.Duration(atoi("LOCK_TTL_SECONDS", 30)) * time.Second,

		MaxRetries:       atoi("RECONCILE_MAX_RETRIES", 3),
		RetryWait:        time.Duration(atoi("RECONCILE_RETRY_WAIT_MS", 1000)) * time.Millisecond,
		StrictPhone:      parseBool(os.Getenv("RECONCILE_STRICT_PHONE")),
		PhoneSuffix:      env("RECONCILE_PHONE_SUFFIX", pms.DefaultPhoneSuffix),
		ConflictMode:     env("RECONCILE_CONFLICT_MODE", string(pms.ModeRelocateIncumbent)),
		MaxConflictDepth: atoi("RECONCILE_MAX_CONFLICT_DEPTH", 8),
	}
	if err := c.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	if c.PMSKey == "" {
		log.Warn().Msg("PMS_API_KEY is empty")
	}
	return c
}

// Validate checks the struct tags and reports every failing field.
func (c Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s:%s", fe.Field(), fe.Tag()))
	}
	return fmt.Errorf("config: %s", strings.Join(msgs, ", "))
}

// ReconcileOptions returns the business rules handed to every reconciler.
func (c Config) ReconcileOptions() pms.Options {
	return pms.Options{
		MaxRetries:       c.MaxRetries,
		RetryWait:        c.RetryWait,
		StrictPhone:      c.StrictPhone,
		PhoneSuffix:      c.PhoneSuffix,
		ConflictMode:     pms.ConflictMode(c.ConflictMode),
		MaxConflictDepth: c.MaxConflictDepth,
	}
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func parseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "t", "yes", "y", "on":
		return true
	default:
		return false
	}
}

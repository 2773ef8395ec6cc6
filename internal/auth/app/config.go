package app

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is the full environment surface of the service. Secrets arrive
// through the environment only; there is no secrets file.
type Config struct {
	// Role secrets. Each is validated against its strength bar at request
	// time, so a weak value degrades that one role instead of the process.
	SigningKey  string `env:"AUTH_SIGNING_KEY"`
	StaffPIN    string `env:"AUTH_STAFF_PIN"`
	AdminSecret string `env:"AUTH_ADMIN_SECRET"` // plaintext or argon2id PHC hash
	UploadPIN   string `env:"AUTH_UPLOAD_PIN"`
	CronSecret  string `env:"AUTH_CRON_SECRET"`

	// RedisURL selects the shared store. Empty means the process-local
	// in-memory store, acceptable for single-instance deployments only.
	RedisURL string `env:"AUTH_REDIS_URL"`

	// ProductionPolicy makes admin operations fail closed when the shared
	// store is unreachable and refuses process-local version bumps. When the
	// variable is unset it follows ENV: prod deployments get the policy
	// without needing a second flag.
	ProductionPolicy bool `env:"AUTH_PRODUCTION_POLICY" envDefault:"false"`

	Env                  string        `env:"ENV" envDefault:"dev"`
	LogLevel             string        `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat            string        `env:"LOG_FORMAT" envDefault:"json"`
	Port                 int           `env:"PORT" envDefault:"8080"`
	ShutdownGracePeriod  time.Duration `env:"SHUTDOWN_GRACE_PERIOD" envDefault:"10s"`
	HousekeepingInterval time.Duration `env:"HOUSEKEEPING_INTERVAL" envDefault:"1h"`
}

// LoadConfig parses the environment once at startup.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}

	// An explicit AUTH_PRODUCTION_POLICY always wins; otherwise ENV=prod
	// implies the policy so a prod deployment cannot silently fail open.
	if _, set := os.LookupEnv("AUTH_PRODUCTION_POLICY"); !set && cfg.Env == "prod" {
		cfg.ProductionPolicy = true
	}

	return cfg, nil
}

package config

import (
	"time"

	"github.com/gotify/configor"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

type Config struct {
	App struct {
		Host          string `default:"" env:"APP_HOST"`
		Port          int    `default:"8080" env:"APP_PORT"`
		SessionSecret string `default:"" env:"SESSION_SECRET"`
	}
	Database struct {
		Driver         string `default:"postgres" env:"DB_DRIVER"`
		DSN            string `default:"" env:"DB_DSN"`
		MaxAttempts    int    `default:"10" env:"DB_MAX_ATTEMPTS"`
		RetryDelay     string `default:"2s" env:"DB_RETRY_DELAY"`
		Debug          *bool  `default:"false" env:"DB_DEBUG"`
		MigrateOnStart *bool  `default:"true" env:"DB_MIGRATE_ON_START"`
	}
	Lock struct {
		// a lock untouched for longer than TTL may be taken over
		TTL           string `default:"30m" env:"LOCK_TTL"`
		SweepSchedule string `default:"" env:"LOCK_SWEEP_SCHEDULE"`
	}
	Workflow struct {
		RequireReviewedTabsComplete  *bool `default:"true" env:"WORKFLOW_REQUIRE_REVIEWED_TABS"`
		RequirePublishedTabsComplete *bool `default:"true" env:"WORKFLOW_REQUIRE_PUBLISHED_TABS"`
		ProtectPublishedTabs         *bool `default:"true" env:"WORKFLOW_PROTECT_PUBLISHED_TABS"`
		ValidatorCanPublish          *bool `default:"false" env:"WORKFLOW_VALIDATOR_CAN_PUBLISH"`
	}
	Log struct {
		Level string `default:"info" env:"LOG_LEVEL"`
		JSON  *bool  `default:"true" env:"LOG_JSON"`
	}
	Seed struct {
		AdminUsername string `default:"admin@bdms.local" env:"ADMIN_USERNAME"`
		AdminPassword string `default:"Admin123!" env:"ADMIN_PASSWORD"`
		DemoUsers     *bool  `default:"true" env:"SEED_DEMO_USERS"`
	}

	lockTTL    time.Duration
	retryDelay time.Duration
}

// Load reads .env (if any), then the optional yaml files, then the environment.
func Load(files ...string) (*Config, error) {
	_ = godotenv.Load()

	cfg := new(Config)
	if err := configor.New(&configor.Config{}).Load(cfg, files...); err != nil {
		return nil, errors.Wrap(err, "failed to load config")
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		return errors.Errorf("unsupported DB_DRIVER %q", c.Database.Driver)
	}
	if c.Database.DSN == "" {
		return errors.New("DB_DSN is not set")
	}
	if c.App.SessionSecret == "" {
		return errors.New("SESSION_SECRET is not set")
	}

	ttl, err := time.ParseDuration(c.Lock.TTL)
	if err != nil || ttl <= 0 {
		return errors.Errorf("invalid LOCK_TTL %q", c.Lock.TTL)
	}
	c.lockTTL = ttl

	delay, err := time.ParseDuration(c.Database.RetryDelay)
	if err != nil || delay < 0 {
		return errors.Errorf("invalid DB_RETRY_DELAY %q", c.Database.RetryDelay)
	}
	c.retryDelay = delay

	if c.Database.MaxAttempts < 1 {
		c.Database.MaxAttempts = 1
	}
	return nil
}

func (c *Config) LockTTL() time.Duration {
	return c.lockTTL
}

func (c *Config) RetryDelay() time.Duration {
	return c.retryDelay
}

// Enabled dereferences an optional flag; configor leaves it nil only when the
// struct was built by hand.
func Enabled(flag *bool) bool {
	return flag != nil && *flag
}

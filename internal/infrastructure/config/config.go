package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port      string        `env:"PORT,      default=8080"`
	Env       string        `env:"ENV,       default=development"`
	LogLevel  string        `env:"LOG_LEVEL, default=info"`
	JWTSecret string        `env:"JWT_SECRET, required"`
	TokenTTL  time.Duration `env:"TOKEN_TTL, default=60m"`

	Cookie    CookieConfig
	Mongo     MongoConfig
	Redis     RedisConfig
	Bootstrap BootstrapConfig

	RevocationPruneSchedule string `env:"REVOCATION_PRUNE_SCHEDULE, default=@every 15m"`

	// TaskWorkers is the number of workers serializing task mutations.
	TaskWorkers int `env:"TASK_WORKERS, default=8"`
}

// CookieConfig controls the cookie set by browser logins.
type CookieConfig struct {
	Name   string `env:"COOKIE_NAME,   default=access_token"`
	Secure bool   `env:"COOKIE_SECURE, default=false"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017/?replicaSet=rs0"`
	Database string `env:"MONGO_DB,  default=task_tracker"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

// BootstrapConfig describes the root admin created at startup. Bootstrapping
// is skipped when Username is empty.
type BootstrapConfig struct {
	Username string `env:"BOOTSTRAP_ADMIN_USERNAME"`
	Email    string `env:"BOOTSTRAP_ADMIN_EMAIL"`
	Password string `env:"BOOTSTRAP_ADMIN_PASSWORD"`
	Name     string `env:"BOOTSTRAP_ADMIN_NAME, default=Administrator"`
}

// Enabled reports whether a bootstrap admin was configured.
func (b BootstrapConfig) Enabled() bool {
	return b.Username != ""
}

// IsProduction reports whether the service runs with ENV=production.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	return load(ctx, envconfig.OsLookuper())
}

func load(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: lookuper}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if cfg.TokenTTL <= 0 {
		return nil, fmt.Errorf("config: TOKEN_TTL must be positive, got %s", cfg.TokenTTL)
	}
	if cfg.TaskWorkers <= 0 {
		return nil, fmt.Errorf("config: TASK_WORKERS must be positive, got %d", cfg.TaskWorkers)
	}
	if cfg.Bootstrap.Enabled() && (cfg.Bootstrap.Email == "" || cfg.Bootstrap.Password == "") {
		return nil, fmt.Errorf("config: BOOTSTRAP_ADMIN_EMAIL and BOOTSTRAP_ADMIN_PASSWORD are required with BOOTSTRAP_ADMIN_USERNAME")
	}
	return &cfg, nil
}

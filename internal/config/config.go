package config

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
)

// Config holds the server configuration read from the environment
type Config struct {
	// Address of the hosted battle program and of its attribute store
	ProgramID string `env:"PETBATTLE_PROGRAM_ID" envDefault:"battle"`
	StoreID   string `env:"PETBATTLE_STORE_ID"   envDefault:"store"`

	StorageType string `env:"PETBATTLE_STORAGE_TYPE" envDefault:"memory"`
	RedisURL    string `env:"PETBATTLE_REDIS_URL"`

	// ActorDirectory maps actor addresses to collaborator URLs,
	// e.g. "pet-1=http://pets:9000/pet-1,store=http://store:9000"
	ActorDirectory map[string]string `env:"PETBATTLE_ACTOR_DIRECTORY" envSeparator:"," envKeyValSeparator:"="`
	ActorBaseURL   string            `env:"PETBATTLE_ACTOR_BASE_URL"`

	// BlockTime converts delays in blocks to wall time
	BlockTime    time.Duration `env:"PETBATTLE_BLOCK_TIME"    envDefault:"1s"`
	PollInterval time.Duration `env:"PETBATTLE_POLL_INTERVAL" envDefault:"500ms"`

	Host string `env:"PETBATTLE_HOST" envDefault:"0.0.0.0"`
	Port int    `env:"PETBATTLE_PORT" envDefault:"8080"`

	// Devnet serves in-process collaborators under /devnet
	Devnet bool `env:"PETBATTLE_DEVNET" envDefault:"false"`

	// SessionTTL is how long a login stays valid
	SessionTTL time.Duration `env:"PETBATTLE_SESSION_TTL" envDefault:"24h"`

	// RandomSeed makes rolls reproducible when set
	RandomSeed string `env:"PETBATTLE_RANDOM_SEED"`

	LogLevel string `env:"PETBATTLE_LOG_LEVEL" envDefault:"info"`
}

// Load reads the configuration from the process environment
func Load() (Config, error) {
	return parse(env.Options{})
}

// LoadFrom reads the configuration from the given variables only
func LoadFrom(environ map[string]string) (Config, error) {
	return parse(env.Options{Environment: environ})
}

func parse(opts env.Options) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks values env parsing cannot
func (c Config) Validate() error {
	if c.ProgramID == "" {
		return errors.New("PETBATTLE_PROGRAM_ID must not be empty")
	}
	if c.StoreID == "" {
		return errors.New("PETBATTLE_STORE_ID must not be empty")
	}
	switch c.StorageType {
	case StorageTypeMemory:
	case StorageTypeRedis:
		if c.RedisURL == "" {
			return errors.New("PETBATTLE_REDIS_URL required when PETBATTLE_STORAGE_TYPE=redis")
		}
	default:
		return fmt.Errorf("invalid PETBATTLE_STORAGE_TYPE %q: must be 'memory' or 'redis'", c.StorageType)
	}
	if c.BlockTime <= 0 {
		return errors.New("PETBATTLE_BLOCK_TIME must be positive")
	}
	if c.PollInterval <= 0 {
		return errors.New("PETBATTLE_POLL_INTERVAL must be positive")
	}
	if c.SessionTTL <= 0 {
		return errors.New("PETBATTLE_SESSION_TTL must be positive")
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Level returns the configured log level
func (c Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("invalid PETBATTLE_LOG_LEVEL: %w", err)
	}
	return level, nil
}

// Addr returns the address the HTTP server listens on
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// DevnetBaseURL is where the dev network serves collaborator endpoints
func (c Config) DevnetBaseURL() string {
	return fmt.Sprintf("http://127.0.0.1:%d/devnet/actors", c.Port)
}

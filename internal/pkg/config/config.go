package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

const (
	EnvProduction  = "production"
	EnvDevelopment = "development"

	BackendMemory = "memory"
	BackendCookie = "cookie"
	BackendRedis  = "redis"
	BackendMongo  = "mongo"

	devSessionSecret = "unihome-dev-session-secret-change-me"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	Session   SessionConfig
	Directory DirectoryConfig
	Audit     AuditConfig

	Mongo MongoConfig
	Redis RedisConfig
}

type SessionConfig struct {
	Secret  string `env:"SESSION_SECRET"`
	Backend string `env:"SESSION_BACKEND, default=cookie"`
}

type DirectoryConfig struct {
	Backend string `env:"DIRECTORY_BACKEND, default=memory"`
	Seed    bool   `env:"SEED_DIRECTORY,    default=true"`
}

type AuditConfig struct {
	Workers int `env:"AUDIT_WORKERS, default=4"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=unihome"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

// Load reads .env.local when present, then the process environment.
func Load(ctx context.Context) (*Config, error) {
	loadEnvFile()

	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("config: process environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects unknown backends and fills the development session secret.
// A production deployment must provide SESSION_SECRET.
func (c *Config) Validate() error {
	switch c.Session.Backend {
	case BackendCookie, BackendRedis:
	default:
		return fmt.Errorf("config: unknown SESSION_BACKEND %q", c.Session.Backend)
	}
	switch c.Directory.Backend {
	case BackendMemory, BackendMongo:
	default:
		return fmt.Errorf("config: unknown DIRECTORY_BACKEND %q", c.Directory.Backend)
	}

	if c.Session.Secret == "" {
		if c.IsProduction() {
			return fmt.Errorf("config: SESSION_SECRET is required in %s", EnvProduction)
		}
		c.Session.Secret = devSessionSecret
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Env == EnvProduction
}

// UsesMongo reports whether any component needs a MongoDB connection.
func (c *Config) UsesMongo() bool {
	return c.Directory.Backend == BackendMongo
}

// UsesRedis reports whether any component needs a Redis connection.
func (c *Config) UsesRedis() bool {
	return c.Session.Backend == BackendRedis
}

func loadEnvFile() {
	if err := godotenv.Load(".env.local"); err == nil {
		return
	}

	cwd, err := os.Getwd()
	if err != nil {
		return
	}
	parent := filepath.Dir(cwd)
	if parent == "" || parent == cwd {
		return
	}
	_ = godotenv.Load(filepath.Join(parent, ".env.local"))
}

package config

import (
	"context"
	"fmt"

	"github.com/sethvargo/go-envconfig"
)

// InsecureDefaultSecret is the signing secret used when none is supplied.
// Any process running with it must be treated as misconfigured.
const InsecureDefaultSecret = "your-secret-key"

const (
	StoreMemory = "memory"
	StoreMongo  = "mongo"
	StoreRedis  = "redis"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	JWTSecret string `env:"JWT_SECRET"`
	// ManagedJWTSecret is the value injected by the platform secret manager.
	ManagedJWTSecret string `env:"SECRET_MANAGER_JWT_SECRET"`

	StoreDriver string `env:"STORE_DRIVER, default=memory"`

	Mongo MongoConfig
	Redis RedisConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=jwt_auth"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

// ConfigurationWarning flags a setting the process can run with but should not.
type ConfigurationWarning struct {
	Setting string
	Message string
}

func (w ConfigurationWarning) String() string {
	return fmt.Sprintf("%s: %s", w.Setting, w.Message)
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	cfg, err := LoadFrom(context.Background(), envconfig.OsLookuper())
	if err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return cfg
}

// LoadFrom reads configuration from an arbitrary lookuper.
func LoadFrom(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: l,
	}); err != nil {
		return nil, err
	}
	switch cfg.StoreDriver {
	case StoreMemory, StoreMongo, StoreRedis:
	default:
		return nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}
	return &cfg, nil
}

// SigningSecret resolves the token signing secret: JWT_SECRET, then the
// secret-manager value, then InsecureDefaultSecret.
func (c *Config) SigningSecret() []byte {
	switch {
	case c.JWTSecret != "":
		return []byte(c.JWTSecret)
	case c.ManagedJWTSecret != "":
		return []byte(c.ManagedJWTSecret)
	default:
		return []byte(InsecureDefaultSecret)
	}
}

// UsingInsecureSecret reports whether no signing secret was supplied.
func (c *Config) UsingInsecureSecret() bool {
	return c.JWTSecret == "" && c.ManagedJWTSecret == ""
}

func (c *Config) Warnings() []ConfigurationWarning {
	var out []ConfigurationWarning
	if c.UsingInsecureSecret() {
		out = append(out, ConfigurationWarning{
			Setting: "JWT_SECRET",
			Message: "no signing secret supplied, falling back to the built-in default; tokens can be forged by anyone who knows it",
		})
	}
	if c.StoreDriver == StoreMemory && c.Env == "production" {
		out = append(out, ConfigurationWarning{
			Setting: "STORE_DRIVER",
			Message: "in-memory credential store loses all accounts on restart",
		})
	}
	return out
}

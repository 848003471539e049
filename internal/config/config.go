// Package config loads server and CLI settings from the environment.
//
// Settings come from, in increasing precedence: built-in defaults, an
// optional config file, an optional .env file, and EDUPLAN_* environment
// variables. Nested keys map to variables by replacing dots with
// underscores: policy.max_seats is EDUPLAN_POLICY_MAX_SEATS.
package config

import (
	"errors"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	apperrors "github.com/eduplan/seatplan/pkg/errors"
	"github.com/eduplan/seatplan/pkg/seating"
)

// EnvPrefix prefixes every environment variable.
const EnvPrefix = "EDUPLAN"

// Backend names.
const (
	BackendNone     = "none"
	BackendMemory   = "memory"
	BackendFile     = "file"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
	BackendMongo    = "mongo"
)

// Config holds every setting.
type Config struct {
	Addr      string         `mapstructure:"addr"`
	LogLevel  string         `mapstructure:"log_level"`
	Converter string         `mapstructure:"converter"`
	Policy    seating.Policy `mapstructure:"policy"`
	Cache     CacheConfig    `mapstructure:"cache"`
	Store     StoreConfig    `mapstructure:"store"`
	Session   SessionConfig  `mapstructure:"session"`
	Redis     RedisConfig    `mapstructure:"redis"`
}

// CacheConfig selects the document cache.
type CacheConfig struct {
	Backend string `mapstructure:"backend"` // none, memory, file, redis
	Dir     string `mapstructure:"dir"`
	Prefix  string `mapstructure:"prefix"`
}

// StoreConfig selects the record store.
type StoreConfig struct {
	Backend       string `mapstructure:"backend"` // file, postgres, mongo
	Dir           string `mapstructure:"dir"`
	PostgresDSN   string `mapstructure:"postgres_dsn"`
	MongoURI      string `mapstructure:"mongo_uri"`
	MongoDatabase string `mapstructure:"mongo_database"`
}

// SessionConfig selects how API callers are authenticated.
type SessionConfig struct {
	Backend string `mapstructure:"backend"` // none, memory, redis
	Prefix  string `mapstructure:"prefix"`
	// LocalEstablishment is the scope of every request when Backend is none.
	LocalEstablishment string `mapstructure:"local_establishment"`
}

// RedisConfig is shared by the redis cache and session backends.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Defaults returns a viper instance holding the built-in defaults.
func Defaults() *viper.Viper {
	v := viper.New()
	v.SetDefault("addr", ":8080")
	v.SetDefault("log_level", "info")
	v.SetDefault("converter", "rsvg-convert")
	v.SetDefault("policy.max_seats", seating.DefaultPolicy.MaxSeats)
	v.SetDefault("policy.max_columns", seating.DefaultPolicy.MaxColumns)
	v.SetDefault("cache.backend", BackendMemory)
	v.SetDefault("cache.dir", "")
	v.SetDefault("cache.prefix", "eduplan:")
	v.SetDefault("store.backend", BackendFile)
	v.SetDefault("store.dir", "./data")
	v.SetDefault("store.postgres_dsn", "")
	v.SetDefault("store.mongo_uri", "")
	v.SetDefault("store.mongo_database", "eduplan")
	v.SetDefault("session.backend", BackendMemory)
	v.SetDefault("session.prefix", "")
	v.SetDefault("session.local_establishment", "")
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	return v
}

// Load reads settings. envFile and configFile are optional: a missing
// envFile is ignored, a missing configFile is an error.
func Load(envFile, configFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, apperrors.Wrap(apperrors.ErrCodeInvalidInput, err, "load %s", envFile)
		}
	}

	v := Defaults()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, apperrors.Wrap(apperrors.ErrCodeInvalidInput, err, "read config %s", configFile)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInvalidInput, err, "decode config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks backend names and the settings each backend needs.
func (c *Config) Validate() error {
	if c.Policy.MaxSeats < 1 || c.Policy.MaxColumns < 1 {
		return apperrors.New(apperrors.ErrCodeInvalidInput,
			"policy limits must be positive, got %d seats and %d columns", c.Policy.MaxSeats, c.Policy.MaxColumns)
	}
	switch c.Cache.Backend {
	case BackendNone, BackendMemory, BackendRedis:
	case BackendFile:
		if c.Cache.Dir == "" {
			return missing("cache.dir", "file cache")
		}
	default:
		return unknownBackend("cache", c.Cache.Backend)
	}
	switch c.Store.Backend {
	case BackendFile:
		if c.Store.Dir == "" {
			return missing("store.dir", "file store")
		}
	case BackendPostgres:
		if c.Store.PostgresDSN == "" {
			return missing("store.postgres_dsn", "postgres store")
		}
	case BackendMongo:
		if c.Store.MongoURI == "" {
			return missing("store.mongo_uri", "mongo store")
		}
	default:
		return unknownBackend("store", c.Store.Backend)
	}
	switch c.Session.Backend {
	case BackendMemory, BackendRedis:
	case BackendNone:
		if c.Session.LocalEstablishment == "" {
			return missing("session.local_establishment", "unauthenticated mode")
		}
	default:
		return unknownBackend("session", c.Session.Backend)
	}
	return nil
}

func missing(key, what string) error {
	env := EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
	return apperrors.New(apperrors.ErrCodeInvalidInput, "%s requires %s (%s)", what, key, env)
}

func unknownBackend(kind, name string) error {
	return apperrors.New(apperrors.ErrCodeInvalidInput, "unknown %s backend %q", kind, name)
}

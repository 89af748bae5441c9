package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pilab-dev/fitlink/domain"
	"github.com/pilab-dev/fitlink/internal/provider"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g.
// FITLINK_MONGO_URI or FITLINK_PROVIDERS_STRAVA_CLIENT_ID.
const EnvPrefix = "FITLINK"

// Storage and state ledger drivers.
const (
	DriverMongo  = "mongo"
	DriverRedis  = "redis"
	DriverMemory = "memory"
)

// ServerConfig holds all configuration for the server, the worker and the
// enqueue command. Tags use mapstructure for Viper unmarshalling.
type ServerConfig struct {
	HTTPPort  string `mapstructure:"http_port"`
	LogLevel  string `mapstructure:"log_level"`
	LogPretty bool   `mapstructure:"log_pretty"`

	Storage     StorageConfig              `mapstructure:"storage"`
	Mongo       MongoConfig                `mapstructure:"mongo"`
	StateLedger StateLedgerConfig          `mapstructure:"state_ledger"`
	Redis       RedisConfig                `mapstructure:"redis"`
	Auth        AuthConfig                 `mapstructure:"auth"`
	OAuth       OAuthConfig                `mapstructure:"oauth"`
	Providers   map[string]provider.Config `mapstructure:"providers"`
	Otel        OtelConfig                 `mapstructure:"otel"`
	Worker      WorkerConfig               `mapstructure:"worker"`
}

type StorageConfig struct {
	Driver string `mapstructure:"driver"`
}

type MongoConfig struct {
	URI    string `mapstructure:"uri"`
	DBName string `mapstructure:"db_name"`
}

type StateLedgerConfig struct {
	Driver string `mapstructure:"driver"`
}

// RedisConfig is shared by the Redis state ledger and the asynq sync queue.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret"`
}

type OAuthConfig struct {
	CallbackURL     string        `mapstructure:"callback_url"`
	StateTTL        time.Duration `mapstructure:"state_ttl"`
	ExchangeTimeout time.Duration `mapstructure:"exchange_timeout"`
}

type OtelConfig struct {
	ServiceName string `mapstructure:"service_name"`
}

type WorkerConfig struct {
	Concurrency int `mapstructure:"concurrency"`
	// SyncInterval is the spacing of scheduled syncs. A connection gets at most
	// one queued sync per interval.
	SyncInterval time.Duration `mapstructure:"sync_interval"`
}

// LoadConfig reads configuration from file, environment variables and
// defaults. An empty configFile searches the default locations.
func LoadConfig(configFile string) (*ServerConfig, error) {
	v := viper.New()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("/etc/fitlink/")
		v.AddConfigPath("$HOME/.fitlink")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// A missing file is fine; defaults and env vars still apply.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg ServerConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("http_port", "8080")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_pretty", false)
	v.SetDefault("storage.driver", DriverMongo)
	v.SetDefault("mongo.uri", "mongodb://localhost:27017")
	v.SetDefault("mongo.db_name", "fitlink")
	v.SetDefault("state_ledger.driver", DriverMongo)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.prefix", "fitlink")
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("oauth.callback_url", "http://localhost:8080/api/oauth/callback")
	v.SetDefault("oauth.state_ttl", 10*time.Minute)
	v.SetDefault("oauth.exchange_timeout", provider.DefaultExchangeTimeout)
	v.SetDefault("otel.service_name", "fitlink")
	v.SetDefault("worker.concurrency", 10)
	v.SetDefault("worker.sync_interval", time.Hour)

	// Every provider key needs a default, otherwise AutomaticEnv never sees it.
	for _, p := range domain.AllProviders {
		prefix := "providers." + p.String() + "."
		v.SetDefault(prefix+"client_id", "")
		v.SetDefault(prefix+"client_secret", "")
		v.SetDefault(prefix+"auth_url", "")
		v.SetDefault(prefix+"token_url", "")
	}
}

// Validate rejects unknown drivers and a missing JWT secret.
func (c *ServerConfig) Validate() error {
	switch c.Storage.Driver {
	case DriverMongo, DriverMemory:
	default:
		return fmt.Errorf("unsupported storage.driver %q", c.Storage.Driver)
	}

	switch c.StateLedger.Driver {
	case DriverMongo, DriverRedis, DriverMemory:
	default:
		return fmt.Errorf("unsupported state_ledger.driver %q", c.StateLedger.Driver)
	}

	if c.Auth.JWTSecret == "" {
		return errors.New("auth.jwt_secret is required")
	}

	for name := range c.Providers {
		if _, err := domain.ParseProvider(name); err != nil {
			return fmt.Errorf("providers.%s: %w", name, err)
		}
	}

	return nil
}

// ProviderConfigs returns the credentials of every provider with a client id.
// Providers without one are reported as not configured by the registry.
func (c *ServerConfig) ProviderConfigs() map[domain.Provider]provider.Config {
	configs := make(map[domain.Provider]provider.Config, len(c.Providers))
	for name, pc := range c.Providers {
		if pc.ClientID == "" {
			continue
		}
		configs[domain.Provider(strings.ToLower(name))] = pc
	}
	return configs
}

// Package config loads runtime configuration.
//
// Sources are layered: built-in defaults, then an optional YAML file, then an
// optional .env file, then MINTGATE_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"mintgate/pkg/domain"
	strs "mintgate/pkg/platform/strings"
)

const envPrefix = "MINTGATE"

// Storage backends.
const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)

// Config is the root configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"    envconfig:"SERVER"`
	Auth      AuthConfig      `yaml:"auth"      envconfig:"AUTH"`
	Storage   StorageConfig   `yaml:"storage"   envconfig:"STORAGE"`
	Postgres  PostgresConfig  `yaml:"postgres"  envconfig:"POSTGRES"`
	Redis     RedisConfig     `yaml:"redis"     envconfig:"REDIS"`
	Kafka     KafkaConfig     `yaml:"kafka"     envconfig:"KAFKA"`
	Tracing   TracingConfig   `yaml:"tracing"   envconfig:"TRACING"`
	Log       LogConfig       `yaml:"log"       envconfig:"LOG"`
	Ledger    LedgerConfig    `yaml:"ledger"    envconfig:"LEDGER"`
	Minters   MintersConfig   `yaml:"minters"   envconfig:"MINTERS"`
	RateLimit RateLimitConfig `yaml:"rateLimit" envconfig:"RATE_LIMIT"`
}

// ServerConfig captures HTTP server level configuration.
type ServerConfig struct {
	Addr            string        `yaml:"addr"            envconfig:"ADDR"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout" split_words:"true"`
	ReadTimeout     time.Duration `yaml:"readTimeout"     split_words:"true"`
	WriteTimeout    time.Duration `yaml:"writeTimeout"    split_words:"true"`
}

type AuthConfig struct {
	// JWTSigningKey verifies caller bearer tokens (HS256).
	JWTSigningKey string `yaml:"jwtSigningKey" envconfig:"JWT_SIGNING_KEY"`
	// SuperAdmin is the deployment's single registry controller address.
	SuperAdmin string `yaml:"superAdmin" split_words:"true"`
}

type StorageConfig struct {
	// Projects selects the project store: memory or postgres.
	Projects string `yaml:"projects" envconfig:"PROJECTS"`
	// Registry selects the registry store: memory or redis.
	Registry string `yaml:"registry" envconfig:"REGISTRY"`
}

type PostgresConfig struct {
	DSN          string        `yaml:"dsn"          envconfig:"DSN"`
	MaxOpenConns int           `yaml:"maxOpenConns" split_words:"true"`
	MaxIdleConns int           `yaml:"maxIdleConns" split_words:"true"`
	ConnMaxLife  time.Duration `yaml:"connMaxLife"  split_words:"true"`
}

type RedisConfig struct {
	URL          string        `yaml:"url"          envconfig:"URL"`
	PoolSize     int           `yaml:"poolSize"     split_words:"true"`
	MinIdleConns int           `yaml:"minIdleConns" split_words:"true"`
	DialTimeout  time.Duration `yaml:"dialTimeout"  split_words:"true"`
	ReadTimeout  time.Duration `yaml:"readTimeout"  split_words:"true"`
	WriteTimeout time.Duration `yaml:"writeTimeout" split_words:"true"`
	KeyPrefix    string        `yaml:"keyPrefix"    split_words:"true"`
}

// KafkaConfig enables the notification sink when Brokers is non-empty.
// BreakerCooldown is how long the sink is skipped after repeated publish failures.
type KafkaConfig struct {
	Brokers         []string      `yaml:"brokers"         envconfig:"BROKERS"`
	Topic           string        `yaml:"topic"           envconfig:"TOPIC"`
	ClientID        string        `yaml:"clientID"        envconfig:"CLIENT_ID"`
	EnsureTopic     bool          `yaml:"ensureTopic"     split_words:"true"`
	Partitions      int32         `yaml:"partitions"      envconfig:"PARTITIONS"`
	BreakerCooldown time.Duration `yaml:"breakerCooldown" split_words:"true"`
}

// TracingConfig enables OpenTelemetry export when Endpoint is set.
type TracingConfig struct {
	Endpoint    string `yaml:"endpoint"    envconfig:"ENDPOINT"`
	Enabled     bool   `yaml:"enabled"     envconfig:"ENABLED"`
	ServiceName string `yaml:"serviceName" split_words:"true"`
}

type LogConfig struct {
	Level  string `yaml:"level"  envconfig:"LEVEL"`
	Format string `yaml:"format" envconfig:"FORMAT"`
}

type LedgerConfig struct {
	// NativeSymbol labels the native currency of new projects.
	NativeSymbol string `yaml:"nativeSymbol" split_words:"true"`
	// StartingProjectID is the id assigned to the first project.
	StartingProjectID uint64 `yaml:"startingProjectID" envconfig:"STARTING_PROJECT_ID"`
	// AuditBuffer sizes the async notification queue; zero delivers synchronously.
	AuditBuffer int `yaml:"auditBuffer" split_words:"true"`
}

// MintersConfig declares the currency kind of each minter. Minters not listed
// accept the native currency only.
type MintersConfig struct {
	// Tokens maps a minter address to the token contract it accepts.
	// From the environment: MINTGATE_MINTERS_TOKENS=0xminter:0xtoken,...
	Tokens map[string]string `yaml:"tokens" envconfig:"TOKENS"`
}

// RateLimitConfig throttles purchase attempts per caller. The window is shared
// through Redis when the registry store is redis, otherwise kept per process.
type RateLimitConfig struct {
	Enabled bool          `yaml:"enabled" envconfig:"ENABLED"`
	Limit   int           `yaml:"limit"   envconfig:"LIMIT"`
	Window  time.Duration `yaml:"window"  envconfig:"WINDOW"`
}

// Default returns the built-in configuration: in-memory stores, no broker, no tracing.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:            ":8080",
			ShutdownTimeout: 10 * time.Second,
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    10 * time.Second,
		},
		Auth: AuthConfig{
			JWTSigningKey: "dev-secret-key-change-in-production",
		},
		Storage: StorageConfig{
			Projects: BackendMemory,
			Registry: BackendMemory,
		},
		Postgres: PostgresConfig{
			MaxOpenConns: 10,
			MaxIdleConns: 5,
			ConnMaxLife:  30 * time.Minute,
		},
		Redis: RedisConfig{
			PoolSize:     10,
			MinIdleConns: 2,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
			KeyPrefix:    "mintgate",
		},
		Kafka: KafkaConfig{
			Topic:           "mintgate.notifications",
			ClientID:        "mintgate",
			Partitions:      1,
			BreakerCooldown: 30 * time.Second,
		},
		Tracing: TracingConfig{
			Enabled:     true,
			ServiceName: "mintgate",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		Ledger: LedgerConfig{
			NativeSymbol:      "ETH",
			StartingProjectID: 0,
			AuditBuffer:       256,
		},
		RateLimit: RateLimitConfig{
			Enabled: true,
			Limit:   120,
			Window:  time.Minute,
		},
	}
}

// Load layers the YAML file at path (optional, empty skips it), a .env file in the
// working directory (optional) and the environment over the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		buf, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(buf, &cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	// A missing .env is normal outside local development.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("process environment: %w", err)
	}
	cfg.Kafka.Brokers = strs.DedupeAndTrim(cfg.Kafka.Brokers)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	if c.Auth.SuperAdmin == "" {
		return errors.New("auth.superAdmin is required")
	}
	if _, err := domain.ParseAddress(c.Auth.SuperAdmin); err != nil {
		return fmt.Errorf("auth.superAdmin: %w", err)
	}
	if c.Auth.JWTSigningKey == "" {
		return errors.New("auth.jwtSigningKey is required")
	}
	switch c.Storage.Projects {
	case BackendMemory:
	case BackendPostgres:
		if c.Postgres.DSN == "" {
			return errors.New("postgres.dsn is required for the postgres project store")
		}
	default:
		return fmt.Errorf("unknown project store %q", c.Storage.Projects)
	}
	switch c.Storage.Registry {
	case BackendMemory:
	case BackendRedis:
		if c.Redis.URL == "" {
			return errors.New("redis.url is required for the redis registry store")
		}
	default:
		return fmt.Errorf("unknown registry store %q", c.Storage.Registry)
	}
	if c.RateLimit.Enabled && (c.RateLimit.Limit <= 0 || c.RateLimit.Window <= 0) {
		return errors.New("rateLimit.limit and rateLimit.window must be positive when enabled")
	}
	if len(c.Kafka.Brokers) > 0 && c.Kafka.Topic == "" {
		return errors.New("kafka.topic is required when brokers are set")
	}
	return nil
}

// SuperAdminAddress returns the validated super-admin address.
func (c *Config) SuperAdminAddress() domain.Address {
	return domain.MustParseAddress(c.Auth.SuperAdmin)
}

// TracingEnabled reports whether spans should be exported.
func (c *Config) TracingEnabled() bool {
	return c.Tracing.Enabled && c.Tracing.Endpoint != ""
}

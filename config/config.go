package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"payment-terminal-bridge/internal/core/domain"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	AES       AESConfig       `mapstructure:"aes"`
	Log       LogConfig       `mapstructure:"log"`
	Reader    ReaderConfig    `mapstructure:"reader"`
	Relay     RelayConfig     `mapstructure:"relay"`
	Webhook   WebhookConfig   `mapstructure:"webhook"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
	SSE       SSEConfig       `mapstructure:"sse"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // debug, release, test
}

type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	HealthCheck     time.Duration `mapstructure:"health_check"`

	// LockTimeout bounds row-lock waits inside service transactions.
	LockTimeout time.Duration `mapstructure:"lock_timeout"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`

	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// Addr returns the Redis address string.
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

type JWTConfig struct {
	Secret string        `mapstructure:"secret"`
	Expiry time.Duration `mapstructure:"expiry"`
	Issuer string        `mapstructure:"issuer"`
}

type AESConfig struct {
	Key string `mapstructure:"key"` // 32-byte hex-encoded key for AES-256
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // trace, debug, info, warn, error
	Pretty bool   `mapstructure:"pretty"` // human-readable output (dev only)
}

// ReaderConfig tunes how the orchestrator talks to readers.
type ReaderConfig struct {
	DefaultBackend    string        `mapstructure:"default_backend"` // relay, direct, simulator
	RequestTimeout    time.Duration `mapstructure:"request_timeout"`
	CardTimeout       time.Duration `mapstructure:"card_timeout"`
	HTTPTimeout       time.Duration `mapstructure:"http_timeout"` // direct backend client timeout
	PreflightAttempts int           `mapstructure:"preflight_attempts"`
	LockTTL           time.Duration `mapstructure:"lock_ttl"`
	BindingCacheTTL   time.Duration `mapstructure:"binding_cache_ttl"` // 0 re-reads the binding for every transaction
	ResultTTL         time.Duration `mapstructure:"result_ttl"`
	RelayPoll         time.Duration `mapstructure:"relay_poll"`
	SimulatorDelay    time.Duration `mapstructure:"simulator_delay"`
}

// minLockTTL is the time an operation can hold a reader on a binding with the
// default failover timeout. Bindings with longer timeouts extend the lock
// per operation.
func (r ReaderConfig) minLockTTL() time.Duration {
	return time.Duration(r.PreflightAttempts)*domain.DefaultFailoverTimeout + max(r.CardTimeout, r.RequestTimeout)
}

// RelayConfig configures the cmd/relay agent.
type RelayConfig struct {
	ID           string        `mapstructure:"id"`
	PollInterval time.Duration `mapstructure:"poll_interval"`
	CommandTTL   time.Duration `mapstructure:"command_ttl"`
	JournalPath  string        `mapstructure:"journal_path"`
	DevicesPath  string        `mapstructure:"devices_path"`
}

// WebhookConfig points at the order domain's result endpoint.
type WebhookConfig struct {
	URL    string `mapstructure:"url"`
	Secret string `mapstructure:"secret"`
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// SSEConfig tunes the terminal event stream.
type SSEConfig struct {
	Heartbeat time.Duration `mapstructure:"heartbeat"`
}

type RateLimitConfig struct {
	PaymentPerMinute int `mapstructure:"payment_per_minute"`
	AuthPerMinute    int `mapstructure:"auth_per_minute"`
}

// Load reads configuration from file and environment variables.
// A .env file in the working directory is loaded first; it never overrides
// variables already set in the process environment.
// Environment variables override file values. Prefix: PTB_ (Payment Terminal Bridge).
// Nested keys use underscore: PTB_DATABASE_HOST, PTB_READER_CARD_TIMEOUT, etc.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	v := viper.New()

	// Defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "postgres")
	v.SetDefault("database.dbname", "terminal_bridge")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 20)
	v.SetDefault("database.min_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "30m")
	v.SetDefault("database.health_check", "30s")
	v.SetDefault("database.lock_timeout", "5s")
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.dial_timeout", "3s")
	v.SetDefault("redis.read_timeout", "2s")
	v.SetDefault("redis.write_timeout", "2s")
	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.expiry", "12h")
	v.SetDefault("jwt.issuer", "payment-terminal-bridge")
	v.SetDefault("aes.key", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)
	v.SetDefault("reader.default_backend", "relay")
	v.SetDefault("reader.request_timeout", "30s")
	v.SetDefault("reader.card_timeout", "60s")
	v.SetDefault("reader.http_timeout", "75s")
	v.SetDefault("reader.preflight_attempts", 2)
	v.SetDefault("reader.lock_ttl", "90s")
	v.SetDefault("reader.binding_cache_ttl", "0s")
	v.SetDefault("reader.result_ttl", "24h")
	v.SetDefault("reader.relay_poll", "250ms")
	v.SetDefault("reader.simulator_delay", "0s")
	v.SetDefault("relay.id", "")
	v.SetDefault("relay.poll_interval", "500ms")
	v.SetDefault("relay.command_ttl", "90s")
	v.SetDefault("relay.journal_path", "relay-journal.db")
	v.SetDefault("relay.devices_path", "devices.toml")
	v.SetDefault("webhook.url", "")
	v.SetDefault("webhook.secret", "")
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")
	v.SetDefault("ratelimit.payment_per_minute", 60)
	v.SetDefault("ratelimit.auth_per_minute", 10)
	v.SetDefault("sse.heartbeat", "15s")

	// File config
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	// Environment variables: PTB_DATABASE_HOST -> database.host
	v.SetEnvPrefix("PTB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file (not required, env vars can suffice)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, nil
}

// Validate checks settings the API server cannot start without.
func (c *Config) Validate() error {
	var errs []error
	if c.JWT.Secret == "" {
		errs = append(errs, errors.New("jwt.secret is required"))
	}
	if len(c.AES.Key) != 64 {
		errs = append(errs, errors.New("aes.key must be 64 hex characters"))
	}
	switch c.Reader.DefaultBackend {
	case "relay", "direct", "simulator":
	default:
		errs = append(errs, fmt.Errorf("reader.default_backend %q is not one of relay, direct, simulator", c.Reader.DefaultBackend))
	}
	if c.Reader.CardTimeout <= 0 || c.Reader.RequestTimeout <= 0 {
		errs = append(errs, errors.New("reader timeouts must be positive"))
	}
	if c.Reader.PreflightAttempts < 1 {
		errs = append(errs, errors.New("reader.preflight_attempts must be at least 1"))
	}
	if need := c.Reader.minLockTTL(); c.Reader.LockTTL < need {
		errs = append(errs, fmt.Errorf("reader.lock_ttl %s must cover pre-flight and the longest dispatch (%s)", c.Reader.LockTTL, need))
	}
	return errors.Join(errs...)
}

// Package config loads service configuration from defaults, an optional YAML
// file and ACCOUNTS_* environment variables, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// MinSecretLength is the shortest accepted signing secret, in bytes.
const MinSecretLength = 32

// EnvPrefix prefixes every environment override, e.g. ACCOUNTS_AUTH_JWT_SECRET.
const EnvPrefix = "ACCOUNTS"

// Database backends.
const (
	DatabaseMemory   = "memory"
	DatabasePostgres = "postgres"
	DatabaseMongo    = "mongo"
)

// Revocation backends.
const (
	RevocationMemory   = "memory"
	RevocationRedis    = "redis"
	RevocationPostgres = "postgres"
)

var ErrMissingSecret = errors.New("auth.jwt_secret is required (set ACCOUNTS_AUTH_JWT_SECRET)")

type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Auth       AuthConfig       `mapstructure:"auth"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Revocation RevocationConfig `mapstructure:"revocation"`
	Redis      RedisConfig      `mapstructure:"redis"`
	NATS       NATSConfig       `mapstructure:"nats"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	CORS       CORSConfig       `mapstructure:"cors"`
}

type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf(":%d", s.Port)
}

type AuthConfig struct {
	JWTSecret   string `mapstructure:"jwt_secret"`
	AuditSecret string `mapstructure:"audit_secret"`
	BcryptCost  int    `mapstructure:"bcrypt_cost"`
}

type DatabaseConfig struct {
	Type           string         `mapstructure:"type"`
	MigrationsPath string         `mapstructure:"migrations_path"`
	AutoMigrate    bool           `mapstructure:"auto_migrate"`
	Postgres       PostgresConfig `mapstructure:"postgres"`
	Mongo          MongoConfig    `mapstructure:"mongo"`
}

type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Database string `mapstructure:"database"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	SSLMode  string `mapstructure:"sslmode"`
}

// ConnString builds a postgres:// URL usable by both pgx and golang-migrate.
// Credentials are escaped, so they may contain URL delimiters.
func (p PostgresConfig) ConnString() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(p.User, p.Password),
		Host:     net.JoinHostPort(p.Host, strconv.Itoa(p.Port)),
		Path:     "/" + p.Database,
		RawQuery: url.Values{"sslmode": {p.SSLMode}}.Encode(),
	}
	return u.String()
}

type MongoConfig struct {
	URI      string `mapstructure:"uri"`
	Database string `mapstructure:"database"`
}

type RevocationConfig struct {
	Backend       string        `mapstructure:"backend"`
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
}

type RedisConfig struct {
	URL string `mapstructure:"url"`
}

type NATSConfig struct {
	Enabled       bool          `mapstructure:"enabled"`
	URL           string        `mapstructure:"url"`
	SubjectPrefix string        `mapstructure:"subject_prefix"`
	MaxReconnects int           `mapstructure:"max_reconnects"`
	ReconnectWait time.Duration `mapstructure:"reconnect_wait"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// Load reads configuration. With an empty path it looks for config.yaml in
// the working directory and /etc/accounts; a missing file is not an error.
// An explicit path that cannot be read is. The result is validated.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/accounts")
	}
	v.SetConfigType("yaml")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 3000)
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.idle_timeout", "60s")
	v.SetDefault("server.shutdown_timeout", "30s")

	// jwt_secret deliberately has no default.
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.audit_secret", "")
	v.SetDefault("auth.bcrypt_cost", 10)

	v.SetDefault("database.type", DatabasePostgres)
	v.SetDefault("database.migrations_path", "migrations")
	v.SetDefault("database.auto_migrate", true)
	v.SetDefault("database.postgres.host", "localhost")
	v.SetDefault("database.postgres.port", 5432)
	v.SetDefault("database.postgres.database", "accounts")
	v.SetDefault("database.postgres.user", "accounts")
	v.SetDefault("database.postgres.password", "")
	v.SetDefault("database.postgres.sslmode", "disable")
	v.SetDefault("database.mongo.uri", "mongodb://localhost:27017")
	v.SetDefault("database.mongo.database", "accounts")

	v.SetDefault("revocation.backend", RevocationMemory)
	v.SetDefault("revocation.sweep_interval", "10m")

	v.SetDefault("redis.url", "redis://localhost:6379/0")

	v.SetDefault("nats.enabled", false)
	v.SetDefault("nats.url", "nats://localhost:4222")
	v.SetDefault("nats.subject_prefix", "accounts")
	v.SetDefault("nats.max_reconnects", 10)
	v.SetDefault("nats.reconnect_wait", "2s")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("cors.allowed_origins", []string{})
}

// Validate checks required values and enums.
func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return ErrMissingSecret
	}
	if len(c.Auth.JWTSecret) < MinSecretLength {
		return fmt.Errorf("auth.jwt_secret must be at least %d bytes", MinSecretLength)
	}

	switch c.Database.Type {
	case DatabaseMemory, DatabasePostgres, DatabaseMongo:
	default:
		return fmt.Errorf("database.type must be one of memory, postgres, mongo (got %q)", c.Database.Type)
	}

	switch c.Revocation.Backend {
	case RevocationMemory, RevocationRedis:
	case RevocationPostgres:
		if c.Database.Type != DatabasePostgres {
			return errors.New("revocation.backend postgres requires database.type postgres")
		}
	default:
		return fmt.Errorf("revocation.backend must be one of memory, redis, postgres (got %q)", c.Revocation.Backend)
	}
	if c.Revocation.SweepInterval <= 0 {
		return fmt.Errorf("revocation.sweep_interval must be positive (got %s)", c.Revocation.SweepInterval)
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	return nil
}

// AuditSecret returns the HMAC key for audit records, falling back to the
// JWT secret when none is configured.
func (c *Config) AuditSecret() string {
	if c.Auth.AuditSecret != "" {
		return c.Auth.AuditSecret
	}
	return c.Auth.JWTSecret
}

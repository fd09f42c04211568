package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Storage drivers
const (
	StorageDriverPostgres = "postgres"
	StorageDriverMemory   = "memory"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig
	Storage  StorageConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Cache    CacheConfig
	Logger   LoggerConfig
	Frontend FrontendConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port               string
	ReadTimeout        time.Duration
	WriteTimeout       time.Duration
	IdleTimeout        time.Duration
	RequestTimeout     time.Duration
	CORSAllowedOrigins []string
}

// StorageConfig selects the account store backend
type StorageConfig struct {
	Driver string
}

// DatabaseConfig holds database connection configuration
type DatabaseConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     string
	Password string
	DB       int
}

// CacheConfig holds lookup cache tuning
type CacheConfig struct {
	TicketTTL time.Duration
}

// FrontendConfig points at the built web client
type FrontendConfig struct {
	Dir string
}

// envBindings maps viper keys to environment variables
var envBindings = map[string]string{
	"server.port":                 "PORT",
	"server.read_timeout":         "SERVER_READ_TIMEOUT",
	"server.write_timeout":        "SERVER_WRITE_TIMEOUT",
	"server.idle_timeout":         "SERVER_IDLE_TIMEOUT",
	"server.request_timeout":      "SERVER_REQUEST_TIMEOUT",
	"server.cors_allowed_origins": "CORS_ALLOWED_ORIGINS",

	"storage.driver": "STORAGE_DRIVER",

	"database.host":              "DATABASE_HOST",
	"database.port":              "DATABASE_PORT",
	"database.user":              "DATABASE_USER",
	"database.password":          "DATABASE_PASSWORD",
	"database.name":              "DATABASE_NAME",
	"database.ssl_mode":          "DATABASE_SSL_MODE",
	"database.max_open_conns":    "DATABASE_MAX_OPEN_CONNS",
	"database.max_idle_conns":    "DATABASE_MAX_IDLE_CONNS",
	"database.conn_max_lifetime": "DATABASE_CONN_MAX_LIFETIME",

	"redis.enabled":  "REDIS_ENABLED",
	"redis.host":     "REDIS_HOST",
	"redis.port":     "REDIS_PORT",
	"redis.password": "REDIS_PASSWORD",
	"redis.db":       "REDIS_DB",

	"cache.ticket_ttl": "CACHE_TICKET_TTL",

	"log.level":  "LOG_LEVEL",
	"log.format": "LOG_FORMAT",

	"frontend.dir": "FRONTEND_DIR",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "5000")
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 15*time.Second)
	v.SetDefault("server.idle_timeout", 60*time.Second)
	v.SetDefault("server.request_timeout", 30*time.Second)
	v.SetDefault("server.cors_allowed_origins", "*")

	v.SetDefault("storage.driver", StorageDriverPostgres)

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "postgres")
	v.SetDefault("database.name", "luckydraw")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", 5*time.Minute)

	v.SetDefault("redis.enabled", true)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", "6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("cache.ticket_ttl", 30*time.Second)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("frontend.dir", "./public")
}

// Load reads configuration from an optional .env file and the environment
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", env, err)
		}
	}
	setDefaults(v)

	// A missing .env is fine; the environment and defaults still apply.
	_ = v.ReadInConfig()

	return FromViper(v)
}

// FromViper builds a validated Config from an already populated viper instance
func FromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:               v.GetString("server.port"),
			ReadTimeout:        v.GetDuration("server.read_timeout"),
			WriteTimeout:       v.GetDuration("server.write_timeout"),
			IdleTimeout:        v.GetDuration("server.idle_timeout"),
			RequestTimeout:     v.GetDuration("server.request_timeout"),
			CORSAllowedOrigins: splitList(v.GetString("server.cors_allowed_origins")),
		},
		Storage: StorageConfig{
			Driver: strings.ToLower(v.GetString("storage.driver")),
		},
		Database: DatabaseConfig{
			Host:            v.GetString("database.host"),
			Port:            v.GetString("database.port"),
			User:            v.GetString("database.user"),
			Password:        v.GetString("database.password"),
			Name:            v.GetString("database.name"),
			SSLMode:         v.GetString("database.ssl_mode"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: v.GetDuration("database.conn_max_lifetime"),
		},
		Redis: RedisConfig{
			Enabled:  v.GetBool("redis.enabled"),
			Host:     v.GetString("redis.host"),
			Port:     v.GetString("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Cache: CacheConfig{
			TicketTTL: v.GetDuration("cache.ticket_ttl"),
		},
		Logger: LoggerConfig{
			Level:  strings.ToLower(v.GetString("log.level")),
			Format: strings.ToLower(v.GetString("log.format")),
		},
		Frontend: FrontendConfig{
			Dir: v.GetString("frontend.dir"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks the configuration for values the server cannot run with
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port cannot be empty")
	}
	if c.Server.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be positive, got %s", c.Server.RequestTimeout)
	}

	switch c.Storage.Driver {
	case StorageDriverPostgres:
		if c.Database.Host == "" {
			return fmt.Errorf("database host cannot be empty")
		}
		if c.Database.Name == "" {
			return fmt.Errorf("database name cannot be empty")
		}
	case StorageDriverMemory:
	default:
		return fmt.Errorf("invalid storage driver: %s (must be postgres or memory)", c.Storage.Driver)
	}

	if c.Cache.TicketTTL < 0 {
		return fmt.Errorf("ticket cache ttl cannot be negative")
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logger.Level] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}
	if c.Logger.Format != "json" && c.Logger.Format != "text" {
		return fmt.Errorf("invalid log format: %s (must be json or text)", c.Logger.Format)
	}

	return nil
}

// DSN returns the PostgreSQL connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

// Addr returns the host:port address of the Redis server
func (c *RedisConfig) Addr() string {
	return c.Host + ":" + c.Port
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

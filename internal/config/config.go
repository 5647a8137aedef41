// Package config provides configuration management for the application.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Storage backends.
const (
	BackendFile     = "file"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)

// ErrMissingAPIKey is returned by Validate when no YouTube API key is configured.
var ErrMissingAPIKey = errors.New("YouTube API key missing: set YOUTUBE_API_KEY or APP_YOUTUBE_APIKEY")

// Config holds all configuration for the application.
//
//nolint:govet // fieldalignment: Accept minor memory overhead for better readability
type Config struct {
	Server   ServerConfig
	YouTube  YouTubeConfig
	Search   SearchConfig
	Storage  StorageConfig
	Database DatabaseConfig
	Redis    RedisConfig
	RabbitMQ RabbitMQConfig
	Auth     AuthConfig
	Logging  LoggingConfig
}

// ServerConfig contains HTTP server configuration.
type ServerConfig struct {
	Port            int
	ShutdownTimeout time.Duration
}

// YouTubeConfig contains YouTube Data API settings.
//
//nolint:govet // fieldalignment: Accept minor memory overhead for better readability
type YouTubeConfig struct {
	APIKey         string
	Endpoint       string
	Topic          string
	MaxResults     int64
	RequestTimeout time.Duration
	DailyQuota     int
	QuotaWarnPct   int
}

// SearchConfig contains gateway search behavior.
type SearchConfig struct {
	// FallbackEnabled returns synthetic placeholder results instead of failing
	// when the provider cannot be reached.
	FallbackEnabled bool
}

// StorageConfig selects and configures the saved-video backend.
type StorageConfig struct {
	Backend  string
	Dir      string
	LocalDir string
}

// DatabaseConfig contains database connection configuration.
//
//nolint:govet // fieldalignment: Accept minor memory overhead for better readability
type DatabaseConfig struct {
	Host           string
	Name           string
	User           string
	Password       string
	SSLMode        string
	Port           int
	MaxConnections int
	MinConnections int
	MaxIdleTime    time.Duration
	MaxLifetime    time.Duration
}

// URL renders the pgx connection string.
func (d DatabaseConfig) URL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode)
}

// RedisConfig contains Redis connection configuration.
type RedisConfig struct {
	URL string
}

// RabbitMQConfig contains RabbitMQ connection and exchange configuration.
//
//nolint:govet // fieldalignment: Accept minor memory overhead for better readability
type RabbitMQConfig struct {
	Enabled  bool
	Host     string
	User     string
	Password string
	Exchange string
	Port     int
}

// AuthConfig contains API key settings. An empty key list leaves the API open.
type AuthConfig struct {
	APIKeys []string
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level string
	File  string
}

// Load loads configuration from an optional .env file, an optional config
// file and environment variables.
func Load() (*Config, error) {
	// A missing .env is the normal case outside development.
	_ = godotenv.Load()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	setDefaults()

	viper.SetEnvPrefix("APP")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	// The plain variable name is what deployments of the gateway have always used.
	_ = viper.BindEnv("youtube.apikey", "APP_YOUTUBE_APIKEY", "YOUTUBE_API_KEY")
	_ = viper.BindEnv("server.port", "APP_SERVER_PORT", "PORT")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.Auth.APIKeys = parseAPIKeys(viper.GetString("auth.apikeys"))

	return &cfg, nil
}

// Validate reports configuration the server cannot start with.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.YouTube.APIKey) == "" {
		return ErrMissingAPIKey
	}

	switch c.Storage.Backend {
	case BackendFile:
		if c.Storage.Dir == "" {
			return errors.New("storage.dir is required for the file backend")
		}
	case BackendPostgres, BackendRedis:
	default:
		return fmt.Errorf("unknown storage backend %q (expected file, postgres or redis)", c.Storage.Backend)
	}

	if c.Storage.Backend == BackendRedis && c.Redis.URL == "" {
		return errors.New("redis.url is required for the redis backend")
	}

	if c.YouTube.MaxResults <= 0 || c.YouTube.MaxResults > 50 {
		return fmt.Errorf("youtube.maxresults must be between 1 and 50, got %d", c.YouTube.MaxResults)
	}

	return nil
}

func setDefaults() {
	// Server
	viper.SetDefault("server.port", 3001)
	viper.SetDefault("server.shutdowntimeout", 30*time.Second)

	// YouTube
	viper.SetDefault("youtube.apikey", "")
	viper.SetDefault("youtube.endpoint", "")
	viper.SetDefault("youtube.topic", "BJJ Brazilian Jiu Jitsu")
	viper.SetDefault("youtube.maxresults", 10)
	viper.SetDefault("youtube.requesttimeout", 10*time.Second)
	viper.SetDefault("youtube.dailyquota", 10000)
	viper.SetDefault("youtube.quotawarnpct", 90)

	// Search
	viper.SetDefault("search.fallbackenabled", false)

	// Storage
	viper.SetDefault("storage.backend", BackendFile)
	viper.SetDefault("storage.dir", "./data/users")
	viper.SetDefault("storage.localdir", "")

	// Database
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.name", "videogateway")
	viper.SetDefault("database.user", "postgres")
	viper.SetDefault("database.password", "postgres")
	viper.SetDefault("database.sslmode", "disable")
	viper.SetDefault("database.maxconnections", 10)
	viper.SetDefault("database.minconnections", 2)
	viper.SetDefault("database.maxidletime", 10*time.Minute)
	viper.SetDefault("database.maxlifetime", 1*time.Hour)

	// Redis
	viper.SetDefault("redis.url", "")

	// RabbitMQ
	viper.SetDefault("rabbitmq.enabled", false)
	viper.SetDefault("rabbitmq.host", "localhost")
	viper.SetDefault("rabbitmq.port", 5672)
	viper.SetDefault("rabbitmq.user", "guest")
	viper.SetDefault("rabbitmq.password", "guest")
	viper.SetDefault("rabbitmq.exchange", "videos.saved")

	// Auth
	viper.SetDefault("auth.apikeys", "")

	// Logging
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.file", "")
}

// parseAPIKeys parses a comma-separated list of API keys.
func parseAPIKeys(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	keys := make([]string, 0, len(parts))
	for _, key := range parts {
		if trimmed := strings.TrimSpace(key); trimmed != "" {
			keys = append(keys, trimmed)
		}
	}
	return keys
}

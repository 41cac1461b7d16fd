// Package config provides configuration management for the application.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
//
//nolint:govet // fieldalignment: Accept minor memory overhead for better readability
type Config struct {
	RabbitMQ   RabbitMQConfig
	Logging    LoggingConfig
	Database   DatabaseConfig
	Server     ServerConfig
	Storage    StorageConfig
	Transcoder TranscoderConfig
	Recommend  RecommendConfig
	Users      UsersConfig
}

// ServerConfig contains HTTP server configuration.
//
//nolint:govet // fieldalignment: Accept minor memory overhead for better readability
type ServerConfig struct {
	Port            int
	ShutdownTimeout time.Duration
	// PublicBaseURL prefixes stream URLs handed to clients, e.g. http://localhost:8080.
	PublicBaseURL   string
	MaxUploadBytes  int64
	UploadRateLimit float64
	UploadRateBurst int
	CORSOrigins     []string
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

// ConnString renders the config as a libpq keyword/value connection string.
func (d DatabaseConfig) ConnString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode,
	)
}

// URL renders the config as a postgres:// URL, the form golang-migrate expects.
func (d DatabaseConfig) URL() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// RabbitMQConfig contains RabbitMQ connection and queue configuration.
//
//nolint:govet // fieldalignment: Accept minor memory overhead for better readability
type RabbitMQConfig struct {
	Enabled    bool
	Host       string
	User       string
	Password   string
	Exchange   string
	Queue      string
	RoutingKey string
	Port       int
	Prefetch   int
}

// URL renders the AMQP connection URL.
func (r RabbitMQConfig) URL() string {
	return fmt.Sprintf("amqp://%s:%s@%s:%d/", r.User, r.Password, r.Host, r.Port)
}

// StorageConfig locates uploaded originals and generated HLS output.
type StorageConfig struct {
	UploadDir string
	HLSDir    string
}

// TranscoderConfig controls the external ffmpeg invocation.
//
//nolint:govet // fieldalignment: Accept minor memory overhead for better readability
type TranscoderConfig struct {
	Binary         string
	Preset         string
	SegmentSeconds int
	Timeout        time.Duration
	// Async hands transcoding to the queue worker instead of blocking the upload request.
	Async bool
}

// RecommendConfig contains recommendation tuning.
type RecommendConfig struct {
	TopK int
	// StopWords replaces the built-in list when non-empty.
	StopWords      []string
	ExtraStopWords []string
}

// UsersConfig names the default viewer ensured at startup.
type UsersConfig struct {
	DefaultUsername string
	DefaultEmail    string
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level string
	File  string
}

// Load loads configuration from file and environment variables.
func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	setDefaults()

	viper.SetEnvPrefix("APP")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate rejects settings the services cannot run with.
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port out of range: %d", c.Server.Port))
	}
	if c.Server.MaxUploadBytes <= 0 {
		errs = append(errs, fmt.Errorf("server.maxuploadbytes must be positive"))
	}
	if strings.TrimSpace(c.Storage.UploadDir) == "" {
		errs = append(errs, fmt.Errorf("storage.uploaddir is required"))
	}
	if strings.TrimSpace(c.Storage.HLSDir) == "" {
		errs = append(errs, fmt.Errorf("storage.hlsdir is required"))
	}
	if c.Transcoder.SegmentSeconds <= 0 {
		errs = append(errs, fmt.Errorf("transcoder.segmentseconds must be positive"))
	}
	if c.Transcoder.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("transcoder.timeout must be positive"))
	}
	if c.Transcoder.Async && !c.RabbitMQ.Enabled {
		errs = append(errs, fmt.Errorf("transcoder.async requires rabbitmq.enabled"))
	}
	if c.Recommend.TopK <= 0 {
		errs = append(errs, fmt.Errorf("recommend.topk must be positive"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

func setDefaults() {
	// Server
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.shutdowntimeout", 30*time.Second)
	viper.SetDefault("server.publicbaseurl", "http://localhost:8080")
	viper.SetDefault("server.maxuploadbytes", int64(2<<30)) // 2GiB
	viper.SetDefault("server.uploadratelimit", 0.2)
	viper.SetDefault("server.uploadrateburst", 5)
	viper.SetDefault("server.corsorigins", []string{"*"})

	// Database
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.name", "hlsrec")
	viper.SetDefault("database.user", "postgres")
	viper.SetDefault("database.password", "postgres")
	viper.SetDefault("database.sslmode", "disable")
	viper.SetDefault("database.maxconnections", 10)
	viper.SetDefault("database.minconnections", 2)
	viper.SetDefault("database.maxidletime", 10*time.Minute)
	viper.SetDefault("database.maxlifetime", 1*time.Hour)

	// RabbitMQ
	viper.SetDefault("rabbitmq.enabled", false)
	viper.SetDefault("rabbitmq.host", "localhost")
	viper.SetDefault("rabbitmq.port", 5672)
	viper.SetDefault("rabbitmq.user", "guest")
	viper.SetDefault("rabbitmq.password", "guest")
	viper.SetDefault("rabbitmq.exchange", "hlsrec.transcode")
	viper.SetDefault("rabbitmq.queue", "hlsrec.transcode.jobs")
	viper.SetDefault("rabbitmq.routingkey", "transcode.requested")
	viper.SetDefault("rabbitmq.prefetch", 1)

	// Storage
	viper.SetDefault("storage.uploaddir", "uploads")
	viper.SetDefault("storage.hlsdir", "hls")

	// Transcoder
	viper.SetDefault("transcoder.binary", "ffmpeg")
	viper.SetDefault("transcoder.preset", "ultrafast")
	viper.SetDefault("transcoder.segmentseconds", 10)
	viper.SetDefault("transcoder.timeout", 30*time.Minute)
	viper.SetDefault("transcoder.async", false)

	// Recommend
	viper.SetDefault("recommend.topk", 5)
	viper.SetDefault("recommend.stopwords", []string{})
	viper.SetDefault("recommend.extrastopwords", []string{})

	// Users
	viper.SetDefault("users.defaultusername", "test_user")
	viper.SetDefault("users.defaultemail", "test_user@example.com")

	// Logging
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.file", "")
}

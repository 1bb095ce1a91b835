// Package config loads configuration from environment variables and an optional config file.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Store backends
const (
	BackendS3   = "s3"
	BackendHTTP = "http"
)

// Config holds all server configuration.
type Config struct {
	ListenAddr string `mapstructure:"LISTEN_ADDR"`

	LogLevel  string `mapstructure:"LOG_LEVEL"`
	LogFormat string `mapstructure:"LOG_FORMAT"`

	// Remote store: "s3" talks to object storage directly, "http" to the REST backend
	StoreBackend string        `mapstructure:"STORE_BACKEND"`
	StoreURL     string        `mapstructure:"STORE_URL"`
	StoreTimeout time.Duration `mapstructure:"STORE_TIMEOUT"`

	MinioEndpoint  string `mapstructure:"MINIO_ENDPOINT"`
	MinioAccessKey string `mapstructure:"MINIO_ACCESS_KEY"`
	MinioSecretKey string `mapstructure:"MINIO_SECRET_KEY"`
	MinioBucket    string `mapstructure:"MINIO_BUCKET"`
	MaxStorageMB   int64  `mapstructure:"MAX_STORAGE_MB"`

	SessionKey string        `mapstructure:"SESSION_KEY"`
	OTPTTL     time.Duration `mapstructure:"OTP_TTL"`

	// Workspace timings
	NotificationTTL time.Duration `mapstructure:"NOTIFICATION_TTL"`
	UploadTick      time.Duration `mapstructure:"UPLOAD_TICK"`
	UploadSettle    time.Duration `mapstructure:"UPLOAD_SETTLE"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("LISTEN_ADDR", ":8080")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("STORE_BACKEND", BackendS3)
	v.SetDefault("STORE_URL", "http://localhost:8080/api")
	v.SetDefault("STORE_TIMEOUT", 30*time.Second)
	v.SetDefault("MINIO_ENDPOINT", "play.min.io:9000")
	v.SetDefault("MINIO_ACCESS_KEY", "")
	v.SetDefault("MINIO_SECRET_KEY", "")
	v.SetDefault("MINIO_BUCKET", "cloudbox")
	v.SetDefault("MAX_STORAGE_MB", 1024)
	v.SetDefault("SESSION_KEY", "")
	v.SetDefault("OTP_TTL", 10*time.Minute)
	v.SetDefault("NOTIFICATION_TTL", 3*time.Second)
	v.SetDefault("UPLOAD_TICK", 200*time.Millisecond)
	v.SetDefault("UPLOAD_SETTLE", 500*time.Millisecond)
}

// Load reads configuration from config.json in path (if present) and the environment.
// Environment variables win over the file.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.AddConfigPath(path)
		v.SetConfigName("config")
		v.SetConfigType("json")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects configurations the server cannot start with.
func (c *Config) Validate() error {
	switch c.StoreBackend {
	case BackendS3:
		if c.MinioBucket == "" {
			return errors.New("config: MINIO_BUCKET is required for the s3 backend")
		}
	case BackendHTTP:
		if c.StoreURL == "" {
			return errors.New("config: STORE_URL is required for the http backend")
		}
	default:
		return fmt.Errorf("config: unknown STORE_BACKEND %q", c.StoreBackend)
	}

	durations := map[string]time.Duration{
		"NOTIFICATION_TTL": c.NotificationTTL,
		"UPLOAD_TICK":      c.UploadTick,
		"OTP_TTL":          c.OTPTTL,
		"STORE_TIMEOUT":    c.StoreTimeout,
	}
	for name, d := range durations {
		if d <= 0 {
			return fmt.Errorf("config: %s must be positive", name)
		}
	}
	if c.UploadSettle < 0 {
		return errors.New("config: UPLOAD_SETTLE must not be negative")
	}
	if c.MaxStorageMB <= 0 {
		return errors.New("config: MAX_STORAGE_MB must be positive")
	}
	return nil
}

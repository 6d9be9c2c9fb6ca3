// Package config provides centralized configuration management for the
// service. It loads settings from environment variables with sensible
// defaults and validates everything on startup to fail fast on
// misconfiguration.
package config

import "time"

// Config holds all application configuration.
type Config struct {
	Server  ServerConfig
	Records RecordsConfig
	Storage StorageConfig
	Upload  UploadConfig
	Rate    RateLimitConfig
	Logging LoggingConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" default:"8080"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`
}

// RecordsConfig selects and tunes the record store.
type RecordsConfig struct {
	// Backend is the record store implementation: postgres or memory (default: postgres)
	Backend string `env:"RECORDS_BACKEND" default:"postgres"`

	// DatabaseURL is the PostgreSQL connection string, required for the
	// postgres backend. Supports both DATABASE_URL and DB_URL.
	DatabaseURL string `env:"DATABASE_URL" envAlt:"DB_URL"`

	// MaxConns is the maximum number of pooled connections (default: 20)
	MaxConns int `env:"DB_MAX_CONNS" default:"20"`

	// MinConns is the minimum number of connections to keep open (default: 4)
	MinConns int `env:"DB_MIN_CONNS" default:"4"`

	// MaxConnLifetime is the maximum lifetime of a connection (default: 1h)
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" default:"1h"`

	// MaxConnIdleTime is the maximum idle time before a connection is closed (default: 30m)
	MaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" default:"30m"`

	// Migrate runs pending schema migrations on startup (default: true)
	Migrate bool `env:"DB_MIGRATE" default:"true"`
}

// StorageConfig selects and tunes the image/object store.
type StorageConfig struct {
	// Backend is the blob store implementation: disk or s3 (default: disk)
	Backend string `env:"STORAGE_BACKEND" default:"disk"`

	// DiskRoot is the directory for the disk backend (default: ./data/media)
	DiskRoot string `env:"STORAGE_DISK_ROOT" default:"./data/media"`

	// S3Endpoint is the S3-compatible endpoint, required for the s3 backend
	S3Endpoint string `env:"STORAGE_S3_ENDPOINT"`

	// S3AccessKey authenticates against the endpoint
	S3AccessKey string `env:"STORAGE_S3_ACCESS_KEY"`

	// S3SecretKey authenticates against the endpoint
	S3SecretKey string `env:"STORAGE_S3_SECRET_KEY"`

	// S3Bucket is the bucket holding all objects (default: cardforge)
	S3Bucket string `env:"STORAGE_S3_BUCKET" default:"cardforge"`

	// S3UseSSL enables TLS to the endpoint (default: true)
	S3UseSSL bool `env:"STORAGE_S3_USE_SSL" default:"true"`
}

// UploadConfig holds import upload settings.
type UploadConfig struct {
	// MaxFileSize is the maximum request body for an upload in bytes (default: 256MB)
	MaxFileSize int64 `env:"UPLOAD_MAX_FILE_SIZE" default:"268435456"`
}

// RateLimitConfig holds rate limiting settings.
type RateLimitConfig struct {
	// Enabled controls whether rate limiting is active (default: true)
	Enabled bool `env:"RATE_LIMIT_ENABLED" default:"true"`

	// RequestsPerMinute is the rate limit per IP (default: 100)
	RequestsPerMinute int `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"100"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	if c.Host == "" {
		return ":" + itoa(c.Port)
	}
	return c.Host + ":" + itoa(c.Port)
}

// itoa converts an int to string without importing strconv in this file.
func itoa(i int) string {
	if i == 0 {
		return "0"
	}
	var b [20]byte
	n := len(b)
	neg := i < 0
	if neg {
		i = -i
	}
	for i > 0 {
		n--
		b[n] = byte('0' + i%10)
		i /= 10
	}
	if neg {
		n--
		b[n] = '-'
	}
	return string(b[n:])
}

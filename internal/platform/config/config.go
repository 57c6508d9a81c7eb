// Package config builds runtime configuration from environment variables so
// main stays lean.
package config

import (
	"log/slog"
	"os"
	"time"
)

// Server captures process-level configuration.
type Server struct {
	Addr            string
	PostgresDSN     string
	RedisURL        string
	KafkaBroker     string
	KafkaTopic      string
	JWTSigningKey   string
	LogLevel        slog.Level
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

// RedisConfig captures Redis client tuning.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// FromEnv builds a Server config from environment variables.
// Empty PostgresDSN / RedisURL / KafkaBroker mean the respective backend is
// not configured and in-process fallbacks are used.
func FromEnv() Server {
	cfg := Server{
		Addr:            getenv("GATHERLY_ADDR", ":8080"),
		PostgresDSN:     os.Getenv("GATHERLY_POSTGRES_DSN"),
		RedisURL:        os.Getenv("GATHERLY_REDIS_URL"),
		KafkaBroker:     os.Getenv("GATHERLY_KAFKA_BROKER"),
		KafkaTopic:      getenv("GATHERLY_KAFKA_TOPIC", "registration.outcomes"),
		JWTSigningKey:   getenv("GATHERLY_JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
		LogLevel:        slog.LevelInfo,
		RequestTimeout:  30 * time.Second,
		ShutdownTimeout: 10 * time.Second,
	}
	if os.Getenv("GATHERLY_LOG_DEBUG") == "true" {
		cfg.LogLevel = slog.LevelDebug
	}
	return cfg
}

// Redis derives the Redis client config from the server config.
func (s Server) Redis() RedisConfig {
	return RedisConfig{
		URL:          s.RedisURL,
		PoolSize:     10,
		MinIdleConns: 2,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

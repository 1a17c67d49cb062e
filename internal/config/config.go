// Package config loads client configuration from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

func init() {
	// .env is optional; real environments set variables directly.
	_ = godotenv.Load()
}

// Config holds all client configuration loaded from environment variables.
type Config struct {
	API  APIConfig
	Live LiveConfig
	App  AppConfig
}

// APIConfig holds REST boundary settings.
type APIConfig struct {
	BaseURL  string        `envconfig:"TASKFLOW_API_URL" default:"http://localhost:8080/api"`
	Timeout  time.Duration `envconfig:"TASKFLOW_API_TIMEOUT" default:"30s"`
	Username string        `envconfig:"TASKFLOW_USERNAME"`
	Password string        `envconfig:"TASKFLOW_PASSWORD"`
}

// LiveConfig holds push-stream settings.
type LiveConfig struct {
	Transport            string        `envconfig:"TASKFLOW_LIVE_TRANSPORT" default:"sse"` // sse or websocket
	ReconnectDelay       time.Duration `envconfig:"TASKFLOW_RECONNECT_DELAY" default:"3s"`
	MaxReconnectAttempts int           `envconfig:"TASKFLOW_MAX_RECONNECT_ATTEMPTS" default:"10"`
}

// AppConfig holds application-level settings.
type AppConfig struct {
	DataDir  string `envconfig:"TASKFLOW_DATA_DIR" default:""`
	LogLevel string `envconfig:"TASKFLOW_LOG_LEVEL" default:"INFO"`
}

// Load reads configuration from the environment.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

// MustLoad loads configuration or panics on error.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

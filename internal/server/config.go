package server

import (
	"fmt"
	"strings"
	"time"

	"github.com/JimmyChen02/Multithreaded-Chat-Server/internal/chat"
	"github.com/Netflix/go-env"
)

const (
	defaultTCPAddr         = ":12345"
	defaultHTTPAddr        = ":8080"
	defaultAllowedOrigins  = "http://localhost:8080"
	defaultWriteTimeout    = 10 * time.Second
	defaultShutdownTimeout = 5 * time.Second
	defaultLogLevel        = "INFO"

	// HTTPDisabled as CHAT_HTTP_ADDR turns the WebSocket gateway and status routes off.
	HTTPDisabled = "off"
)

// Config holds the server settings read from the environment.
type Config struct {
	TCPAddr         string        `env:"CHAT_TCP_ADDR,default=:12345"`
	HTTPAddr        string        `env:"CHAT_HTTP_ADDR,default=:8080"`
	AllowedOrigins  string        `env:"ALLOWED_ORIGINS,default=http://localhost:8080"`
	ServerName      string        `env:"SERVER_NAME,default=ChatServer"`
	OutboxSize      int           `env:"OUTBOX_SIZE,default=256"`
	DeliveryTimeout time.Duration `env:"DELIVERY_TIMEOUT,default=2s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT,default=10s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT,default=5s"`
	LogLevel        string        `env:"LOG_LEVEL,default=INFO"`
}

// DefaultConfig returns the configuration used when no variable is set.
func DefaultConfig() Config {
	return sanitizeConfig(Config{})
}

// LoadConfig reads the configuration from the process environment.
func LoadConfig() (Config, error) {
	var cfg Config
	if _, err := env.UnmarshalFromEnviron(&cfg); err != nil {
		return Config{}, fmt.Errorf("config error: %w", err)
	}
	return sanitizeConfig(cfg), nil
}

// ConfigFromEnvSet reads the configuration from an explicit set of variables.
func ConfigFromEnvSet(es env.EnvSet) (Config, error) {
	var cfg Config
	if err := env.Unmarshal(es, &cfg); err != nil {
		return Config{}, fmt.Errorf("config error: %w", err)
	}
	return sanitizeConfig(cfg), nil
}

// sanitizeConfig replaces missing or non-positive values with defaults.
func sanitizeConfig(cfg Config) Config {
	if strings.TrimSpace(cfg.TCPAddr) == "" {
		cfg.TCPAddr = defaultTCPAddr
	}
	if strings.TrimSpace(cfg.HTTPAddr) == "" {
		cfg.HTTPAddr = defaultHTTPAddr
	}
	if strings.TrimSpace(cfg.AllowedOrigins) == "" {
		cfg.AllowedOrigins = defaultAllowedOrigins
	}
	if strings.TrimSpace(cfg.ServerName) == "" {
		cfg.ServerName = chat.DefaultServerName
	}
	if cfg.OutboxSize <= 0 {
		cfg.OutboxSize = chat.DefaultOutboxSize
	}
	if cfg.DeliveryTimeout <= 0 {
		cfg.DeliveryTimeout = chat.DefaultDeliveryTimeout
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = defaultWriteTimeout
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = defaultShutdownTimeout
	}
	if strings.TrimSpace(cfg.LogLevel) == "" {
		cfg.LogLevel = defaultLogLevel
	}
	return cfg
}

// HTTPEnabled reports whether the HTTP listener should be started.
func (c Config) HTTPEnabled() bool {
	return !strings.EqualFold(strings.TrimSpace(c.HTTPAddr), HTTPDisabled)
}

// Origins returns the allow list split on commas.
func (c Config) Origins() []string {
	return parseOrigins(c.AllowedOrigins)
}

func parseOrigins(origins string) []string {
	parts := strings.Split(origins, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

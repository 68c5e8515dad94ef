package client

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	ServerAddr string `envconfig:"CHAT_SERVER_ADDR" default:"localhost:12345"`
	// CHAT_COLOURS enables colourized output by message kind
	Colours bool `envconfig:"CHAT_COLOURS" default:"true"`
	// CHAT_LINGER bounds how long the client waits for the server to close
	// after /quit or end of input
	Linger   time.Duration `envconfig:"CHAT_LINGER" default:"2s"`
	LogLevel string        `envconfig:"LOG_LEVEL" default:"WARN"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	return cfg, err
}

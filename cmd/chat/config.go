package main

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

const envPrefix = "CHAT"

// Config is read from CHAT_* environment variables.
type Config struct {
	ServerAddr string `envconfig:"SERVER_ADDR" default:"localhost:8080"`
	SocketURL  string `envconfig:"SOCKET_URL" default:"ws://localhost:8090/socket"`
	// Transport carries live events: "ws" or "grpc".
	Transport      string        `envconfig:"TRANSPORT" default:"ws"`
	Username       string        `envconfig:"USERNAME" required:"true"`
	Token          string        `envconfig:"TOKEN"`
	Languages      []string      `envconfig:"MODERATION_LANGUAGES" default:"ru,en"`
	Replacement    string        `envconfig:"MODERATION_REPLACEMENT" default:"*"`
	RequestTimeout time.Duration `envconfig:"REQUEST_TIMEOUT" default:"5s"`
	RetryInitial   time.Duration `envconfig:"RETRY_INITIAL" default:"500ms"`
	RetryMax       time.Duration `envconfig:"RETRY_MAX" default:"30s"`
	LogLevel       string        `envconfig:"LOG_LEVEL" default:"WARN"`
	// Colours enables colorized output in watch mode.
	Colours bool `envconfig:"COLOURS" default:"true"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process(envPrefix, &cfg)
	return cfg, err
}

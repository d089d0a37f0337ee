package e2e

import (
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// E2E_SERVER_ADDR is the chatd gRPC address. The suites are skipped when it is empty.
	ServerAddr string `envconfig:"E2E_SERVER_ADDR"`
	SocketURL  string `envconfig:"E2E_SOCKET_URL" default:"ws://localhost:8090/socket"`
	// E2E_ALICE_TOKEN and E2E_BOB_TOKEN are bearer tokens issued by cmd/token, when chatd has auth on.
	AliceToken string `envconfig:"E2E_ALICE_TOKEN"`
	BobToken   string `envconfig:"E2E_BOB_TOKEN"`
	// E2E_DEBUG_JSON allows dumping full gRPC request/response bodies as JSON
	DebugJSON bool `envconfig:"E2E_DEBUG_JSON" default:"false"`
	// E2E_COLOURS enables colorized output for better log readability
	Colours bool `envconfig:"E2E_COLOURS" default:"true"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	return cfg, err
}

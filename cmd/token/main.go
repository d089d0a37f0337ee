package main

import (
	"chat-sync/auth"
	"fmt"
	"os"
	"time"

	"github.com/Netflix/go-env"
	"github.com/joho/godotenv"
)

const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

// Config shares AUTH_SECRET and AUTH_TOKEN_DURATION with chatd.
type Config struct {
	AuthSecret        string        `env:"AUTH_SECRET,required=true"`
	AuthTokenDuration time.Duration `env:"AUTH_TOKEN_DURATION,default=24h"`
}

func main() {
	code, err := run(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "token: %v\n", err)
	}
	os.Exit(code)
}

// run prints a bearer token for the username given as the only argument.
func run(args []string) (int, error) {
	if len(args) != 1 {
		return exitConfig, fmt.Errorf("usage: token USERNAME")
	}
	_ = godotenv.Load()
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}

	token, err := auth.NewIssuer([]byte(config.AuthSecret), config.AuthTokenDuration).Generate(args[0])
	if err != nil {
		return exitRuntime, err
	}
	fmt.Println(token)
	return exitOK, nil
}

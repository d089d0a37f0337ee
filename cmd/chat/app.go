package main

import (
	"chat-sync/auth"
	"chat-sync/client"
	"chat-sync/domain"
	"chat-sync/errors"
	grpcclient "chat-sync/grpc/client"
	"chat-sync/internal"
	"chat-sync/live"
	"chat-sync/moderation"
	"chat-sync/session"
	"chat-sync/validation"
	"chat-sync/ws"
	"context"
	"fmt"
	"log/slog"

	"github.com/cenkalti/backoff/v4"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

type app struct {
	config Config
	log    *slog.Logger
	conn   *grpc.ClientConn
	client *client.Client
}

// newApp reads the config, connects and loads channels and messages. The caller must defer app.Close().
func newApp(ctx context.Context) (*app, error) {
	_ = godotenv.Load()
	config, err := LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	replacement, err := internal.CharacterRune(config.Replacement)
	if err != nil {
		return nil, err
	}
	if err = moderation.Init(moderation.Options{Languages: config.Languages, Replacement: replacement}, log); err != nil {
		return nil, fmt.Errorf("moderation: %w", err)
	}

	conn, err := grpc.NewClient(config.ServerAddr,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithPerRPCCredentials(auth.TokenCredentials{Token: config.Token}),
	)
	if err != nil {
		return nil, fmt.Errorf("could not connect to server at %s: %w", config.ServerAddr, err)
	}

	newBackOff := func() backoff.BackOff {
		return live.NewBackOff(config.RetryInitial, config.RetryMax)
	}
	var transport live.Transport
	switch config.Transport {
	case "grpc":
		transport = grpcclient.NewStreamTransport(conn, newBackOff, log)
	case "ws":
		transport = ws.NewTransport(config.SocketURL, config.Token, newBackOff, log)
	default:
		_ = conn.Close()
		return nil, fmt.Errorf("unknown transport %q, expected ws or grpc", config.Transport)
	}

	data := grpcclient.NewDataClient(conn, config.RequestTimeout, log)
	a := &app{
		config: config,
		log:    log,
		conn:   conn,
		client: client.New(data, transport, session.New(config.Username, config.Token), moderation.Clean, log),
	}
	if err = a.client.Open(ctx); err != nil {
		a.Close()
		return nil, describe(err)
	}
	return a, nil
}

func (a *app) Close() {
	a.client.Close()
	a.log.Debug("Closing connection...")
	_ = a.conn.Close()
}

// channel resolves a channel by name, ignoring case.
func (a *app) channel(name string) (domain.Channel, error) {
	ch, ok := a.client.Lookup(name)
	if !ok {
		return domain.Channel{}, fmt.Errorf("channel %q: %w", name, errors.ErrNotFound)
	}
	return ch, nil
}

// describe turns a typed error into a sentence for the terminal.
func describe(err error) error {
	if reason, ok := errors.ReasonOf(err); ok {
		switch reason {
		case errors.ReasonEmpty:
			return fmt.Errorf("a value is required")
		case errors.ReasonTooShort:
			return fmt.Errorf("channel name must be at least %d characters", validation.MinNameLength)
		case errors.ReasonTooLong:
			return fmt.Errorf("channel name must be at most %d characters", validation.MaxNameLength)
		case errors.ReasonDuplicateName:
			return fmt.Errorf("a channel with this name already exists")
		}
	}
	return err
}

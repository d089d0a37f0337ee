package ws

import (
	"chat-sync/auth"
	"chat-sync/domain"
	"chat-sync/errors"
	"chat-sync/live"
	"chat-sync/runtime"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/stretchr/testify/require"
)

func newBackOff() backoff.BackOff {
	return live.NewBackOff(10*time.Millisecond, 50*time.Millisecond)
}

func startHub(t *testing.T, issuer *auth.Issuer) (*runtime.Registry, string) {
	t.Helper()
	log := slog.New(slog.DiscardHandler)
	registry := runtime.NewRegistry(log)
	server := httptest.NewServer(NewHub(registry, issuer, 8, 50*time.Millisecond, time.Minute, log))
	t.Cleanup(server.Close)
	return registry, "ws" + strings.TrimPrefix(server.URL, "http")
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	require.Eventually(t, cond, 5*time.Second, 5*time.Millisecond)
}

func Test_Transport_Receives_Broadcast_Events(t *testing.T) {
	req := require.New(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	issuer := auth.NewIssuer([]byte("secret"), time.Hour)
	token, err := issuer.Generate("alice")
	req.NoError(err)
	registry, url := startHub(t, issuer)

	transport := NewTransport(url, token, newBackOff, slog.New(slog.DiscardHandler))
	events := make(chan struct{}, 4)
	transport.On(domain.EventNewMessage, func() { events <- struct{}{} })
	done := make(chan error, 1)
	go func() { done <- transport.Run(ctx) }()

	// Given a connected transport registered on the hub
	waitFor(t, func() bool { return transport.State() == live.Connected && len(registry.Sinks()) == 1 })

	// When the registry broadcasts
	registry.Broadcast(context.Background(), domain.LiveEvent{Event: domain.EventNewMessage})

	// Then the handler runs
	select {
	case <-events:
	case <-time.After(5 * time.Second):
		t.Fatal("no newMessage event received")
	}

	// And cancelling the context disconnects and unregisters
	cancel()
	req.NoError(<-done)
	req.Equal(live.Disconnected, transport.State())
	waitFor(t, func() bool { return len(registry.Sinks()) == 0 })
}

func Test_Hub_Rejects_Missing_Token(t *testing.T) {
	req := require.New(t)
	issuer := auth.NewIssuer([]byte("secret"), time.Hour)
	_, url := startHub(t, issuer)

	err := NewTransport(url, "", newBackOff, slog.New(slog.DiscardHandler)).Run(context.Background())

	req.ErrorIs(err, errors.ErrUnauthenticated)
	req.ErrorIs(err, errors.ErrRejected)
}

func Test_Hub_Accepts_Token_In_Query(t *testing.T) {
	req := require.New(t)
	issuer := auth.NewIssuer([]byte("secret"), time.Hour)
	token, err := issuer.Generate("bob")
	req.NoError(err)
	_, url := startHub(t, issuer)

	resp, err := http.Get("http" + strings.TrimPrefix(url, "ws") + "?token=" + token)
	req.NoError(err)
	defer resp.Body.Close()

	// Past authentication the hub insists on a WebSocket handshake
	req.Equal(http.StatusBadRequest, resp.StatusCode)
}

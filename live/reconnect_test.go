package live

import (
	"context"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/stretchr/testify/require"
)

func Test_Reconnect_Retries_Until_Context_Done(t *testing.T) {
	req := require.New(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	tracker := NewTracker("test", slog.New(slog.DiscardHandler))
	var seen []State
	tracker.Watch(func(s State) { seen = append(seen, s) })

	attempts := 0
	session := func(ctx context.Context, connected func()) error {
		attempts++
		if attempts < 3 {
			return fmt.Errorf("dial failed")
		}
		connected()
		cancel()
		<-ctx.Done()
		return ctx.Err()
	}

	err := Reconnect(ctx, tracker, NewBackOff(time.Millisecond, 5*time.Millisecond), slog.New(slog.DiscardHandler), session)

	req.NoError(err)
	req.Equal(3, attempts)
	req.Equal(Disconnected, tracker.State())
	req.Contains(seen, Connected)
}

func Test_Reconnect_Stops_On_Permanent_Error(t *testing.T) {
	req := require.New(t)
	tracker := NewTracker("test", slog.New(slog.DiscardHandler))
	rejected := fmt.Errorf("token rejected")

	attempts := 0
	err := Reconnect(context.Background(), tracker, NewBackOff(time.Millisecond, time.Millisecond), slog.New(slog.DiscardHandler),
		func(context.Context, func()) error {
			attempts++
			return backoff.Permanent(rejected)
		})

	req.ErrorIs(err, rejected)
	req.Equal(1, attempts)
}

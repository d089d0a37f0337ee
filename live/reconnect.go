package live

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
)

var errStreamEnded = fmt.Errorf("live stream ended by server")

// Session holds one connection open until it breaks or ctx is done.
// It calls connected once the server has accepted the subscription.
type Session func(ctx context.Context, connected func()) error

// NewBackOff retries forever, from initial up to max between attempts.
func NewBackOff(initial, max time.Duration) backoff.BackOff {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = initial
	bo.MaxInterval = max
	bo.MaxElapsedTime = 0
	return bo
}

// Reconnect runs session again and again until ctx is done, waiting bo between attempts.
// A successful connection resets bo. A session returning backoff.Permanent stops the loop.
// It returns nil when ctx ends the loop.
func Reconnect(ctx context.Context, tracker *Tracker, bo backoff.BackOff, log *slog.Logger, session Session) error {
	operation := func() error {
		tracker.Set(Connecting)
		err := session(ctx, func() {
			tracker.Set(Connected)
			bo.Reset()
		})
		tracker.Set(Disconnected)
		if ctx.Err() != nil {
			return backoff.Permanent(ctx.Err())
		}
		if err == nil {
			err = errStreamEnded
		}
		return err
	}
	notify := func(err error, wait time.Duration) {
		log.Warn("Live connection lost", "transport", tracker.name, "error", err, "retry_in", wait)
	}

	err := backoff.RetryNotify(operation, backoff.WithContext(bo, ctx), notify)
	if ctx.Err() != nil {
		return nil
	}
	return err
}

package sink

import (
	"chat-sync/domain"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

func TestChannelSink_Consume(t *testing.T) {
	req := require.New(t)
	s := NewChannelSink(logs.GetLoggerFromLevel(slog.LevelDebug), 1, 10*time.Millisecond)
	evt := domain.LiveEvent{Event: domain.EventNewMessage}

	// The first event is buffered
	req.NoError(s.Consume(context.Background(), evt))
	req.Len(s.Events, 1)

	// A second one is dropped after the delivery timeout
	req.NoError(s.Consume(context.Background(), evt))
	req.Len(s.Events, 1)
	req.Equal(evt, <-s.Events)
}

func TestChannelSink_Consume_CanceledContext(t *testing.T) {
	req := require.New(t)
	s := NewChannelSink(logs.GetLoggerFromLevel(slog.LevelDebug), 1, time.Minute)
	req.NoError(s.Consume(context.Background(), domain.LiveEvent{Event: domain.EventNewMessage}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req.ErrorIs(s.Consume(ctx, domain.LiveEvent{Event: domain.EventNewMessage}), context.Canceled)
}

package sink

import (
	"chat-sync/domain"
	"context"
	"log/slog"
	"time"
)

// ChannelSink buffers live events for one connection.
// The transport handler drains Events and writes them to the wire.
type ChannelSink struct {
	Events          chan domain.LiveEvent
	log             *slog.Logger
	deliveryTimeout time.Duration
}

func NewChannelSink(log *slog.Logger, bufferSize int, deliveryTimeout time.Duration) *ChannelSink {
	return &ChannelSink{
		Events:          make(chan domain.LiveEvent, bufferSize),
		log:             log,
		deliveryTimeout: deliveryTimeout,
	}
}

// Consume is called by the registry fanout.
// When the buffer stays full for deliveryTimeout the event is dropped:
// events carry no payload, so one already pending triggers the same re-sync.
func (s *ChannelSink) Consume(ctx context.Context, e domain.LiveEvent) error {
	select {
	case s.Events <- e:
		return nil
	default:
	}

	timer := time.NewTimer(s.deliveryTimeout)
	defer timer.Stop()
	select {
	case s.Events <- e:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		s.log.Debug("Live event dropped, subscriber buffer full", "event", e.Event)
		return nil
	}
}

package client

import (
	"chat-sync/domain"
	"chat-sync/errors"
	"chat-sync/grpc/wire"
	"chat-sync/live"
	"context"
	"log/slog"

	"github.com/cenkalti/backoff/v4"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// StreamTransport receives live events over the Subscribe server stream.
// It reconnects with backoff until its context is done.
type StreamTransport struct {
	conn       grpc.ClientConnInterface
	newBackOff func() backoff.BackOff
	dispatcher *live.Dispatcher
	tracker    *live.Tracker
	log        *slog.Logger
}

func NewStreamTransport(conn grpc.ClientConnInterface, newBackOff func() backoff.BackOff, log *slog.Logger) *StreamTransport {
	return &StreamTransport{
		conn:       conn,
		newBackOff: newBackOff,
		dispatcher: live.NewDispatcher(),
		tracker:    live.NewTracker("grpc", log),
		log:        log,
	}
}

func (t *StreamTransport) On(event domain.EventName, handler live.Handler) (off func()) {
	return t.dispatcher.On(event, handler)
}

func (t *StreamTransport) State() live.State {
	return t.tracker.State()
}

// Watch reports every connection state change.
func (t *StreamTransport) Watch(watcher func(live.State)) {
	t.tracker.Watch(watcher)
}

func (t *StreamTransport) Run(ctx context.Context) error {
	return live.Reconnect(ctx, t.tracker, t.newBackOff(), t.log, t.session)
}

func (t *StreamTransport) session(ctx context.Context, connected func()) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	stream, err := t.conn.NewStream(ctx, &wire.SubscribeStream, wire.SubscribeMethod, wire.CallOption())
	if err != nil {
		return t.classify(err)
	}
	if err = stream.SendMsg(&wire.SubscribeRequest{}); err != nil {
		return t.classify(err)
	}
	if err = stream.CloseSend(); err != nil {
		return t.classify(err)
	}
	// Headers arrive once the server has registered the subscription.
	md, err := stream.Header()
	if err != nil {
		return t.classify(err)
	}
	if len(md.Get(wire.SubscriberHeader)) == 0 {
		// Refused before the handler ran: the status comes with the first read.
		return t.classify(stream.RecvMsg(new(wire.Event)))
	}
	connected()

	for {
		evt := new(wire.Event)
		if err = stream.RecvMsg(evt); err != nil {
			return t.classify(err)
		}
		handled := t.dispatcher.Emit(domain.EventName(evt.Event))
		t.log.Debug("Live event received", "event", evt.Event, "handlers", handled)
	}
}

// classify stops the reconnect loop when the server refuses the session token.
func (t *StreamTransport) classify(err error) error {
	if status.Code(err) == codes.Unauthenticated {
		return backoff.Permanent(errors.FromGRPCError(wire.SubscribeMethod, err))
	}
	return err
}

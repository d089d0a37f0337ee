package runtime

import (
	"chat-sync/contract"
	"chat-sync/domain"
	"context"
	"log/slog"
	"sync"
)

type Registry struct {
	mu       sync.RWMutex
	sessions map[string]contract.EventSink // map subscriber -> Sink
	log      *slog.Logger
}

func NewRegistry(log *slog.Logger) *Registry {
	return &Registry{
		sessions: make(map[string]contract.EventSink),
		log:      log,
	}
}

// Sinks returns every active subscriber sink.
// Returns nil if nobody is connected.
func (r *Registry) Sinks() []contract.EventSink {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var activeSinks []contract.EventSink
	for _, sink := range r.sessions {
		activeSinks = append(activeSinks, sink)
	}
	return activeSinks
}

// Subscribe registers a subscriber's live connection, replacing a previous one with the same id.
func (r *Registry) Subscribe(subscriberID string, sink contract.EventSink) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[subscriberID] = sink
	r.log.Debug("Subscriber registered", "subscriber_id", subscriberID, "subscribers", len(r.sessions))
}

// Unsubscribe removes a subscriber from the registry.
func (r *Registry) Unsubscribe(subscriberID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, subscriberID)
	r.log.Debug("Subscriber removed", "subscriber_id", subscriberID, "subscribers", len(r.sessions))
}

// Broadcast delivers e to every subscriber, the originator of the change included.
// Delivery is best-effort: a failing sink is logged and skipped.
func (r *Registry) Broadcast(ctx context.Context, e domain.LiveEvent) {
	for _, sink := range r.Sinks() {
		if err := sink.Consume(ctx, e); err != nil {
			r.log.Warn("Live event not delivered", "event", e.Event, "error", err)
		}
	}
}

//go:generate go run go.uber.org/mock/mockgen -source=live.go -destination=../mocks/mock_live.go -package=mocks
// Package live turns push notifications into reconciliations.
//
// Events carry no payload. Each newMessage triggers a full re-read of the directory and the
// feed. Events are neither queued nor coalesced: when a reconciliation is in flight, the next
// event starts another one and the most recent response wins.
package live

import (
	"chat-sync/domain"
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"sync"
)

type Handler func()

// Transport delivers named events. Connection and reconnection belong to the transport.
type Transport interface {
	// Run keeps the connection up until ctx is done.
	Run(ctx context.Context) error
	// On registers handler for event and returns the function that unregisters it.
	On(event domain.EventName, handler Handler) (off func())
	State() State
}

// Reconcile re-reads one piece of authoritative state.
type Reconcile func(ctx context.Context) error

type Client struct {
	transport   Transport
	reconcilers []Reconcile
	log         *slog.Logger
}

// New dispatches every newMessage to reconcilers, in order.
func New(transport Transport, log *slog.Logger, reconcilers ...Reconcile) *Client {
	return &Client{transport: transport, reconcilers: reconcilers, log: log}
}

// Start runs the transport in the background. The channel yields the result of Run once ctx is done.
func (c *Client) Start(ctx context.Context) <-chan error {
	done := make(chan error, 1)
	go func() {
		defer close(done)
		done <- c.transport.Run(ctx)
	}()
	return done
}

func (c *Client) State() State {
	return c.transport.State()
}

// Register subscribes to newMessage and runs an initial synchronisation.
// onChange, when not nil, is called after every synchronisation that applied something.
// A failed initial synchronisation is returned along with a live subscription: the next
// event retries it. The caller must Close the subscription. A panic during setup releases it.
func (c *Client) Register(ctx context.Context, onChange func()) (*Subscription, error) {
	subCtx, cancel := context.WithCancel(ctx)
	sub := &Subscription{
		ctx:         subCtx,
		cancel:      cancel,
		reconcilers: c.reconcilers,
		onChange:    onChange,
		log:         c.log,
	}
	defer func() {
		if r := recover(); r != nil {
			sub.Close()
			panic(r)
		}
	}()

	sub.off = c.transport.On(domain.EventNewMessage, sub.dispatch)
	if err := sub.sync(); err != nil {
		c.log.Warn("Initial synchronisation failed, waiting for the next event", "error", err)
		return sub, fmt.Errorf("initial synchronisation: %w", err)
	}
	return sub, nil
}

// Subscription is the registration of one UI scope. Close releases it.
type Subscription struct {
	ctx         context.Context
	cancel      context.CancelFunc
	reconcilers []Reconcile
	onChange    func()
	log         *slog.Logger
	off         func()

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
	once   sync.Once
}

// dispatch starts a reconciliation without waiting for the previous ones.
func (s *Subscription) dispatch() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.wg.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.wg.Done()
		if err := s.sync(); err != nil {
			s.log.Warn("Live reconciliation failed", "error", err)
		}
	}()
}

func (s *Subscription) sync() error {
	var errs []error
	applied := false
	for _, reconcile := range s.reconcilers {
		if err := reconcile(s.ctx); err != nil {
			errs = append(errs, err)
			continue
		}
		applied = true
	}
	if applied && s.onChange != nil && s.ctx.Err() == nil {
		s.onChange()
	}
	return stderrors.Join(errs...)
}

// Close unregisters the handler, cancels reconciliations in flight and waits for them.
// It is safe to call more than once.
func (s *Subscription) Close() {
	s.once.Do(func() {
		if s.off != nil {
			s.off()
		}
		s.mu.Lock()
		s.closed = true
		s.mu.Unlock()
		s.cancel()
		s.wg.Wait()
	})
}

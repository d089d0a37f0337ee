package live

import (
	"log/slog"
	"sync"
)

// State of a push transport connection.
// Transitions are Disconnected -> Connecting -> Connected -> Disconnected.
type State int32

const (
	Disconnected State = iota
	Connecting
	Connected
)

func (s State) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	default:
		return "unknown"
	}
}

// Tracker records the state of a transport and notifies watchers of every change.
type Tracker struct {
	name string
	log  *slog.Logger

	mu       sync.RWMutex
	state    State
	watchers []func(State)
}

func NewTracker(name string, log *slog.Logger) *Tracker {
	return &Tracker{name: name, log: log}
}

func (t *Tracker) State() State {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.state
}

// Set moves to next. Unchanged states are not reported.
func (t *Tracker) Set(next State) {
	t.mu.Lock()
	if t.state == next {
		t.mu.Unlock()
		return
	}
	previous := t.state
	t.state = next
	watchers := append([]func(State){}, t.watchers...)
	t.mu.Unlock()

	t.log.Debug("Transport state changed", "transport", t.name, "from", previous, "to", next)
	for _, w := range watchers {
		w(next)
	}
}

func (t *Tracker) Watch(watcher func(State)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.watchers = append(t.watchers, watcher)
}

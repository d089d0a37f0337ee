package live

import (
	"chat-sync/domain"
	"sync"
)

// Dispatcher keeps the event handlers of a transport.
type Dispatcher struct {
	mu       sync.Mutex
	next     int
	handlers map[domain.EventName]map[int]Handler
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{handlers: make(map[domain.EventName]map[int]Handler)}
}

// On registers handler for event. The returned function may be called more than once.
func (d *Dispatcher) On(event domain.EventName, handler Handler) (off func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	id := d.next
	d.next++
	if d.handlers[event] == nil {
		d.handlers[event] = make(map[int]Handler)
	}
	d.handlers[event][id] = handler

	var once sync.Once
	return func() {
		once.Do(func() {
			d.mu.Lock()
			defer d.mu.Unlock()
			delete(d.handlers[event], id)
		})
	}
}

// Emit calls every handler of event outside the lock and returns how many were called.
func (d *Dispatcher) Emit(event domain.EventName) int {
	d.mu.Lock()
	handlers := make([]Handler, 0, len(d.handlers[event]))
	for _, h := range d.handlers[event] {
		handlers = append(handlers, h)
	}
	d.mu.Unlock()

	for _, h := range handlers {
		h()
	}
	return len(handlers)
}

package bus

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Event is one simulation occurrence delivered to subscribers.
type Event struct {
	Type      string
	Source    string
	Timestamp time.Time
	Data      any
}

// NewEvent creates an event stamped with the current time.
func NewEvent(typ, source string, data any) Event {
	return Event{Type: typ, Source: source, Timestamp: time.Now(), Data: data}
}

// Handler consumes one event. Handlers must not block: delivery is
// synchronous with the publisher.
type Handler func(Event)

// Subscription identifies one active handler registration.
type Subscription struct {
	id        string
	eventType string
	cancel    func()
}

// ID returns the unique subscription identifier.
func (s Subscription) ID() string { return s.id }

// EventType returns the subscribed event type.
func (s Subscription) EventType() string { return s.eventType }

// Cancel removes the handler from the bus.
func (s Subscription) Cancel() {
	if s.cancel != nil {
		s.cancel()
	}
}

// Bus fans events out to subscribers by event type. The simulation loop
// publishes step and completion events through it; the renderer bridge
// and the viewer server subscribe. Subscriber behavior never feeds back
// into navigation results.
type Bus interface {
	Publish(Event)
	Subscribe(eventType string, h Handler) Subscription
	Close()
}

// inMemoryBus is a thread-safe in-process Bus.
type inMemoryBus struct {
	mu       sync.RWMutex
	handlers map[string]map[string]Handler
	closed   bool
}

// New creates an empty in-process bus.
func New() Bus {
	return &inMemoryBus{handlers: make(map[string]map[string]Handler)}
}

func (b *inMemoryBus) Publish(e Event) {
	b.mu.RLock()
	subs := b.handlers[e.Type]
	handlers := make([]Handler, 0, len(subs))
	for _, h := range subs {
		handlers = append(handlers, h)
	}
	b.mu.RUnlock()

	for _, h := range handlers {
		h(e)
	}
}

func (b *inMemoryBus) Subscribe(eventType string, h Handler) Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return Subscription{}
	}
	id := uuid.NewString()
	if b.handlers[eventType] == nil {
		b.handlers[eventType] = make(map[string]Handler)
	}
	b.handlers[eventType][id] = h

	return Subscription{
		id:        id,
		eventType: eventType,
		cancel: func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			delete(b.handlers[eventType], id)
		},
	}
}

func (b *inMemoryBus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = make(map[string]map[string]Handler)
	b.closed = true
}

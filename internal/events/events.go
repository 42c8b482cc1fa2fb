package events

import (
	"sync"
	"time"
)

// Event types flowing through the service.
const (
	// AppointmentsStale fires when the local appointment snapshot went out
	// of date: a booking was created, or a submission conflict proved it.
	AppointmentsStale = "appointments.stale"
	// YearChanged fires when the widget navigates to another calendar year,
	// so year-scoped blocked dates get refetched.
	YearChanged = "year.changed"
)

// Event is a lightweight in-process notification.
type Event struct {
	Type      string
	Year      int // set for YearChanged
	CreatedAt time.Time
}

// Handler reacts to an event.
type Handler func(event Event)

// Bus provides in-process pub/sub between the API layer and the
// snapshot store.
type Bus struct {
	subscribers map[string][]Handler
	mu          sync.RWMutex
}

// NewBus constructs an empty bus.
func NewBus() *Bus {
	return &Bus{subscribers: make(map[string][]Handler)}
}

// Subscribe registers a handler for a given event type.
func (b *Bus) Subscribe(eventType string, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[eventType] = append(b.subscribers[eventType], handler)
}

// Publish notifies subscribers of the event type. Handlers run
// synchronously; callers decide the concurrency model.
func (b *Bus) Publish(event Event) {
	b.mu.RLock()
	handlers := append([]Handler(nil), b.subscribers[event.Type]...)
	b.mu.RUnlock()

	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	for _, handler := range handlers {
		handler(event)
	}
}

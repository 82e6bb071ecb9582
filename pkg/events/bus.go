package events

import (
	"log"
	"sync"
)

// Handler consumes a published event payload.
type Handler func(payload interface{})

// Bus is a small in-process publish/subscribe dispatcher. Services publish
// domain events on it after a commit has succeeded; nothing is published for
// work that rolled back.
type Bus struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
}

// NewBus creates an empty event bus
func NewBus() *Bus {
	return &Bus{handlers: make(map[string][]Handler)}
}

// Subscribe registers a handler for a topic
func (b *Bus) Subscribe(topic string, h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[topic] = append(b.handlers[topic], h)
}

// Publish delivers the payload to every handler subscribed to the topic.
// Handlers run on the caller's goroutine; a panicking handler is recovered
// and logged so one bad subscriber cannot poison the commit path.
func (b *Bus) Publish(topic string, payload interface{}) {
	b.mu.RLock()
	hs := make([]Handler, len(b.handlers[topic]))
	copy(hs, b.handlers[topic])
	b.mu.RUnlock()

	for _, h := range hs {
		func() {
			defer func() {
				if r := recover(); r != nil {
					log.Printf("event handler panic on %s: %v", topic, r)
				}
			}()
			h(payload)
		}()
	}
}

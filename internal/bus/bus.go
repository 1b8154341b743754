package bus

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/google/uuid"
)

// defaultBuffer is the per-subscriber event backlog. Overflow drops the oldest
// pending event for that subscriber; the publisher never blocks.
const defaultBuffer = 64

// Subscriber is one live outbound connection. Events arrive on Events() in
// publish order; Done() is closed when the subscriber is removed.
type Subscriber struct {
	id     string
	events chan []byte
	done   chan struct{}
	once   sync.Once
}

// ID returns the subscriber's unique handle.
func (s *Subscriber) ID() string { return s.id }

// Events is the subscriber's delivery channel.
func (s *Subscriber) Events() <-chan []byte { return s.events }

// Done is closed once the subscriber has been unsubscribed.
func (s *Subscriber) Done() <-chan struct{} { return s.done }

// Bus fans events out to all live subscribers with best-effort delivery.
type Bus struct {
	mu     sync.RWMutex
	subs   map[string]*Subscriber
	buffer int
}

// New creates an empty bus.
func New() *Bus {
	return &Bus{
		subs:   make(map[string]*Subscriber),
		buffer: defaultBuffer,
	}
}

// Subscribe registers a new subscriber with a bounded event buffer.
func (b *Bus) Subscribe() *Subscriber {
	sub := &Subscriber{
		id:     uuid.NewString(),
		events: make(chan []byte, b.buffer),
		done:   make(chan struct{}),
	}

	b.mu.Lock()
	b.subs[sub.id] = sub
	b.mu.Unlock()

	log.Printf("subscriber %s connected (total: %d)", sub.id, b.Count())
	return sub
}

// Unsubscribe removes a subscriber. Safe to call more than once; the event
// channel is never closed, so a racing Publish cannot panic.
func (b *Bus) Unsubscribe(sub *Subscriber) {
	if sub == nil {
		return
	}

	b.mu.Lock()
	_, present := b.subs[sub.id]
	delete(b.subs, sub.id)
	b.mu.Unlock()

	sub.once.Do(func() { close(sub.done) })
	if present {
		log.Printf("subscriber %s disconnected (total: %d)", sub.id, b.Count())
	}
}

// Publish marshals the event once and delivers it to every live subscriber
// without blocking. A subscriber whose buffer is full loses its oldest pending
// event instead of stalling the publisher.
func (b *Bus) Publish(event any) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("failed to marshal event: %v", err)
		return
	}

	b.mu.RLock()
	subs := make([]*Subscriber, 0, len(b.subs))
	for _, sub := range b.subs {
		subs = append(subs, sub)
	}
	b.mu.RUnlock()

	for _, sub := range subs {
		select {
		case sub.events <- data:
			continue
		default:
		}

		// Buffer full: drop the oldest event, then retry once.
		select {
		case <-sub.events:
		default:
		}
		select {
		case sub.events <- data:
		default:
		}
	}
}

// Count returns the number of live subscribers.
func (b *Bus) Count() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Close removes every subscriber. Used at service shutdown.
func (b *Bus) Close() {
	b.mu.Lock()
	subs := make([]*Subscriber, 0, len(b.subs))
	for _, sub := range b.subs {
		subs = append(subs, sub)
	}
	b.subs = make(map[string]*Subscriber)
	b.mu.Unlock()

	for _, sub := range subs {
		sub.once.Do(func() { close(sub.done) })
	}
}

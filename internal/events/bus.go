package events

import (
	"context"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/slok/w3task/internal/model"
)

// Envelope wraps a published event with its delivery metadata.
type Envelope struct {
	ID          string
	PublishedAt time.Time
	Event       model.Event
}

// Publisher publishes the events emitted by a successful operation.
type Publisher interface {
	Publish(ctx context.Context, evs ...model.Event)
}

// NoopPublisher discards all events.
var NoopPublisher Publisher = noopPublisher{}

type noopPublisher struct{}

func (noopPublisher) Publish(context.Context, ...model.Event) {}

const defaultBufSize = 256

// Bus is a channel-based pub-sub event bus.
// Subscribers can listen to a single event type or to every event.
type Bus struct {
	mu      sync.RWMutex
	subs    map[model.EventType][]chan Envelope
	allSubs []chan Envelope
	closed  bool
	now     func() time.Time
}

// NewBus creates a new event bus.
func NewBus() *Bus {
	return &Bus{
		subs: make(map[model.EventType][]chan Envelope),
		now:  time.Now,
	}
}

// Subscribe returns a channel that receives the events of the given type.
// bufSize defaults to 256 if <= 0.
func (b *Bus) Subscribe(eventType model.EventType, bufSize int) <-chan Envelope {
	ch := newChan(bufSize)

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		close(ch)
		return ch
	}
	b.subs[eventType] = append(b.subs[eventType], ch)

	return ch
}

// SubscribeAll returns a channel that receives every event.
// bufSize defaults to 256 if <= 0.
func (b *Bus) SubscribeAll(bufSize int) <-chan Envelope {
	ch := newChan(bufSize)

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		close(ch)
		return ch
	}
	b.allSubs = append(b.allSubs, ch)

	return ch
}

// Publish sends the events to their subscribers in order.
// Non-blocking: if a subscriber channel is full the event is dropped for that subscriber.
func (b *Bus) Publish(_ context.Context, evs ...model.Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return
	}

	for _, ev := range evs {
		env := Envelope{
			ID:          ulid.Make().String(),
			PublishedAt: b.now().UTC(),
			Event:       ev,
		}

		for _, ch := range b.subs[ev.Type] {
			select {
			case ch <- env:
			default:
			}
		}
		for _, ch := range b.allSubs {
			select {
			case ch <- env:
			default:
			}
		}
	}
}

// Close closes the bus and all subscriber channels. Safe to call multiple times.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true

	for _, channels := range b.subs {
		for _, ch := range channels {
			close(ch)
		}
	}
	for _, ch := range b.allSubs {
		close(ch)
	}
}

func newChan(bufSize int) chan Envelope {
	if bufSize <= 0 {
		bufSize = defaultBufSize
	}
	return make(chan Envelope, bufSize)
}

package audit

import (
	"context"
	"time"
)

// Event is one committed mutation of the track/POI data set. The pipeline
// emits events explicitly after each write instead of relying on hidden
// database triggers, which keeps the core functions pure and testable.
type Event struct {
	Action   string    `json:"action"` // e.g. track.created, poi.merged
	Entity   string    `json:"entity"`
	EntityID string    `json:"entity_id"`
	Detail   string    `json:"detail,omitempty"`
	At       time.Time `json:"at"`
}

// Bus fan-outs mutation events to subscribed audit listeners without locks.
// Channels keep producers and consumers decoupled so a slow audit sink never
// blocks upload processing.
type Bus struct {
	publish     chan Event
	subscribe   chan subscription
	unsubscribe chan subscription
}

type subscription struct {
	ch chan Event
}

// NewBus constructs a broadcaster dedicated to audit fan-out. The goroutine
// is tied to the process lifetime and relies on caller contexts to prune
// subscribers.
func NewBus(buffer int) *Bus {
	b := &Bus{
		publish:     make(chan Event, buffer),
		subscribe:   make(chan subscription),
		unsubscribe: make(chan subscription),
	}

	go b.run()
	return b
}

// Publish forwards an event to all listeners. Non-blocking sends avoid
// stalling the pipeline when listeners are slow or absent.
func (b *Bus) Publish(action, entity, entityID, detail string) {
	ev := Event{Action: action, Entity: entity, EntityID: entityID, Detail: detail, At: time.Now()}
	select {
	case b.publish <- ev:
	default:
	}
}

// Subscribe registers an audit listener. The returned channel closes when
// the provided context ends.
func (b *Bus) Subscribe(ctx context.Context, buffer int) <-chan Event {
	ch := make(chan Event, buffer)
	req := subscription{ch: ch}

	b.subscribe <- req

	go func() {
		<-ctx.Done()
		b.unsubscribe <- req
		close(ch)
	}()

	return ch
}

func (b *Bus) run() {
	listeners := make(map[chan Event]struct{})

	for {
		select {
		case req := <-b.subscribe:
			listeners[req.ch] = struct{}{}
		case req := <-b.unsubscribe:
			delete(listeners, req.ch)
		case ev := <-b.publish:
			for ch := range listeners {
				select {
				case ch <- ev:
				default:
				}
			}
		}
	}
}

package audit

import (
	"context"
	"testing"
	"time"
)

func TestBusDeliversToSubscriber(t *testing.T) {
	bus := NewBus(8)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events := bus.Subscribe(ctx, 8)
	bus.Publish("poi.created", "poi", "abc", "Water")

	select {
	case ev := <-events:
		if ev.Action != "poi.created" || ev.Entity != "poi" || ev.EntityID != "abc" {
			t.Errorf("got event %+v", ev)
		}
		if ev.At.IsZero() {
			t.Error("event timestamp not set")
		}
	case <-time.After(time.Second):
		t.Fatal("no event delivered within a second")
	}
}

// TestBusNonBlockingPublish fills a subscriber's buffer and publishes past
// it. Publishers on the request path must never stall on a slow sink.
func TestBusNonBlockingPublish(t *testing.T) {
	bus := NewBus(1)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	bus.Subscribe(ctx, 1) // never drained

	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			bus.Publish("track.uploaded", "track", "x", "")
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publish blocked on a full subscriber")
	}
}

func TestBusUnsubscribeOnContextCancel(t *testing.T) {
	bus := NewBus(8)
	ctx, cancel := context.WithCancel(context.Background())
	events := bus.Subscribe(ctx, 8)
	cancel()

	select {
	case _, open := <-events:
		if open {
			// A buffered event may still arrive; the channel must close soon after.
			select {
			case _, open = <-events:
				if open {
					t.Error("channel still open after cancel")
				}
			case <-time.After(time.Second):
				t.Fatal("channel not closed after cancel")
			}
		}
	case <-time.After(time.Second):
		t.Fatal("channel not closed after cancel")
	}
}

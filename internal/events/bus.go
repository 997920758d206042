package events

import (
	"context"
	"sync"

	model "vehicle-auction/internal/models"
	"vehicle-auction/utils"
)

const subscriberBuffer = 16

// Publisher emits listing events to real-time subscribers
type Publisher interface {
	Publish(ctx context.Context, event model.Event) error
}

// Subscriber streams the events of one listing until ctx is done.
// The returned channel is closed when the subscription ends.
type Subscriber interface {
	Subscribe(ctx context.Context, vehicleID string) (<-chan model.Event, error)
}

// Bus is a publish-subscribe channel keyed by vehicle id
type Bus interface {
	Publisher
	Subscriber
}

// NopPublisher drops every event
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, model.Event) error { return nil }

// MemoryBus delivers events within a single process. Slow subscribers lose
// events rather than blocking publishers.
type MemoryBus struct {
	mu   sync.RWMutex
	subs map[string]map[chan model.Event]struct{}
}

func NewMemoryBus() *MemoryBus {
	return &MemoryBus{subs: make(map[string]map[chan model.Event]struct{})}
}

func (b *MemoryBus) Publish(_ context.Context, event model.Event) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for ch := range b.subs[event.VehicleID] {
		select {
		case ch <- event:
		default:
			utils.Warn("events: subscriber buffer full, dropping event", map[string]any{
				"vehicle_id": event.VehicleID,
				"type":       event.Type,
			})
		}
	}
	return nil
}

func (b *MemoryBus) Subscribe(ctx context.Context, vehicleID string) (<-chan model.Event, error) {
	ch := make(chan model.Event, subscriberBuffer)

	b.mu.Lock()
	if b.subs[vehicleID] == nil {
		b.subs[vehicleID] = make(map[chan model.Event]struct{})
	}
	b.subs[vehicleID][ch] = struct{}{}
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		b.mu.Lock()
		delete(b.subs[vehicleID], ch)
		if len(b.subs[vehicleID]) == 0 {
			delete(b.subs, vehicleID)
		}
		b.mu.Unlock()
		close(ch)
	}()

	return ch, nil
}

// SubscriberCount reports the live subscriptions on a listing
func (b *MemoryBus) SubscriberCount(vehicleID string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[vehicleID])
}

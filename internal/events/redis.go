package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	model "vehicle-auction/internal/models"
	"vehicle-auction/utils"
)

// RedisBus fans listing events out through Redis pub/sub so every server
// instance can feed its own stream subscribers.
type RedisBus struct {
	client *redis.Client
}

func NewRedisBus(addr, password string) *RedisBus {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})
	return &RedisBus{client: client}
}

func channelName(vehicleID string) string {
	return fmt.Sprintf("listing:%s:events", vehicleID)
}

func (b *RedisBus) Ping(ctx context.Context) error {
	return b.client.Ping(ctx).Err()
}

func (b *RedisBus) Close() error {
	return b.client.Close()
}

func (b *RedisBus) Publish(ctx context.Context, event model.Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("events: marshal %s event: %w", event.Type, err)
	}
	if err := b.client.Publish(ctx, channelName(event.VehicleID), data).Err(); err != nil {
		return fmt.Errorf("events: publish to %s: %w", channelName(event.VehicleID), err)
	}
	return nil
}

func (b *RedisBus) Subscribe(ctx context.Context, vehicleID string) (<-chan model.Event, error) {
	pubsub := b.client.Subscribe(ctx, channelName(vehicleID))
	// wait for the subscription to be confirmed so no event published after
	// Subscribe returns is missed
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("events: subscribe to %s: %w", channelName(vehicleID), err)
	}

	out := make(chan model.Event, subscriberBuffer)
	go func() {
		defer close(out)
		defer pubsub.Close()

		msgs := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				var event model.Event
				if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
					utils.Warn("events: dropping malformed message", map[string]any{
						"channel": msg.Channel,
						"error":   err.Error(),
					})
					continue
				}
				select {
				case out <- event:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, nil
}

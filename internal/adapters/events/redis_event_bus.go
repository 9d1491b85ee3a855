package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/neuvia/backend/internal/domain/entities"
	"github.com/neuvia/backend/internal/domain/providers"
	redisclient "github.com/neuvia/backend/internal/infrastructure/clients/redis"
	"github.com/neuvia/backend/internal/infrastructure/observability"
)

// RedisEventBus implements the EventBus interface using Redis Pub/Sub, so
// alerts raised on one instance reach subscribers on every instance
type RedisEventBus struct {
	client        *redisclient.Client
	hub           *hub
	mu            sync.Mutex
	subscriptions map[string]*redis.PubSub
	ctx           context.Context
	cancel        context.CancelFunc
}

// NewRedisEventBus creates a new Redis-based event bus
func NewRedisEventBus(client *redisclient.Client) providers.EventBus {
	ctx, cancel := context.WithCancel(context.Background())
	return &RedisEventBus{
		client:        client,
		hub:           newHub(),
		subscriptions: make(map[string]*redis.PubSub),
		ctx:           ctx,
		cancel:        cancel,
	}
}

// Publish publishes an event to all subscribers
func (b *RedisEventBus) Publish(ctx context.Context, channel string, event *entities.TriageAlertEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if err := b.client.Client().Publish(ctx, channel, data).Err(); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	observability.LoggerFromContext(ctx).Debug().
		Str("channel", channel).
		Str("event_id", event.ID).
		Msg("Published triage alert")
	return nil
}

// Subscribe subscribes to events on a channel. The returned channel is
// closed when ctx is done or the channel is unsubscribed.
func (b *RedisEventBus) Subscribe(ctx context.Context, channel string) (<-chan *entities.TriageAlertEvent, error) {
	b.mu.Lock()
	if _, exists := b.subscriptions[channel]; !exists {
		pubsub := b.client.Client().Subscribe(b.ctx, channel)
		b.subscriptions[channel] = pubsub
		go b.receiveMessages(channel, pubsub)
	}
	b.mu.Unlock()

	eventChan, _ := b.hub.add(channel)
	observability.GetLogger().Info().
		Str("channel", channel).
		Int("subscribers", b.hub.count(channel)).
		Msg("Subscribed to alert channel")

	go func() {
		<-ctx.Done()
		if last := b.hub.remove(channel, eventChan); last {
			b.closeSubscription(channel)
		}
	}()

	return eventChan, nil
}

func (b *RedisEventBus) receiveMessages(channel string, pubsub *redis.PubSub) {
	logger := observability.GetLogger()
	ch := pubsub.Channel()
	for {
		select {
		case <-b.ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				b.hub.closeChannel(channel)
				return
			}

			var event entities.TriageAlertEvent
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				logger.Warn().Err(err).Str("channel", channel).Msg("Failed to unmarshal alert event")
				continue
			}
			b.hub.broadcast(channel, &event)
		}
	}
}

func (b *RedisEventBus) closeSubscription(channel string) error {
	b.mu.Lock()
	pubsub, ok := b.subscriptions[channel]
	delete(b.subscriptions, channel)
	b.mu.Unlock()

	if !ok {
		return nil
	}
	if err := pubsub.Close(); err != nil {
		return fmt.Errorf("failed to close subscription %s: %w", channel, err)
	}
	return nil
}

// Unsubscribe closes every local subscriber of channel and the Redis subscription
func (b *RedisEventBus) Unsubscribe(ctx context.Context, channel string) error {
	b.hub.closeChannel(channel)
	return b.closeSubscription(channel)
}

// Close closes the event bus and all subscriptions
func (b *RedisEventBus) Close() error {
	b.cancel()

	b.mu.Lock()
	channels := make([]string, 0, len(b.subscriptions))
	for channel := range b.subscriptions {
		channels = append(channels, channel)
	}
	b.mu.Unlock()

	var errs []error
	for _, channel := range channels {
		b.hub.closeChannel(channel)
		if err := b.closeSubscription(channel); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

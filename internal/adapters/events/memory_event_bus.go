package events

import (
	"context"
	"sync/atomic"

	"github.com/neuvia/backend/internal/domain/entities"
	"github.com/neuvia/backend/internal/domain/providers"
	apperrors "github.com/neuvia/backend/pkg/errors"
)

// MemoryEventBus delivers alerts to subscribers in the same process.
// It is used when Redis is disabled.
type MemoryEventBus struct {
	hub    *hub
	closed atomic.Bool
}

// NewMemoryEventBus creates an in-process event bus
func NewMemoryEventBus() providers.EventBus {
	return &MemoryEventBus{hub: newHub()}
}

// Publish delivers event to the channel's current subscribers
func (b *MemoryEventBus) Publish(ctx context.Context, channel string, event *entities.TriageAlertEvent) error {
	if b.closed.Load() {
		return apperrors.NewGoneError("event bus is closed")
	}
	b.hub.broadcast(channel, event)
	return nil
}

// Subscribe returns a channel of events; it is closed when ctx is done
func (b *MemoryEventBus) Subscribe(ctx context.Context, channel string) (<-chan *entities.TriageAlertEvent, error) {
	if b.closed.Load() {
		return nil, apperrors.NewGoneError("event bus is closed")
	}
	ch, _ := b.hub.add(channel)
	go func() {
		<-ctx.Done()
		b.hub.remove(channel, ch)
	}()
	return ch, nil
}

// Unsubscribe closes every subscriber of channel
func (b *MemoryEventBus) Unsubscribe(ctx context.Context, channel string) error {
	b.hub.closeChannel(channel)
	return nil
}

// Close closes all subscriptions
func (b *MemoryEventBus) Close() error {
	if b.closed.Swap(true) {
		return nil
	}
	for _, ch := range b.hub.channels() {
		b.hub.closeChannel(ch)
	}
	return nil
}

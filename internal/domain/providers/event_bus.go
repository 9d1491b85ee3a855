package providers

import (
	"context"

	"github.com/neuvia/backend/internal/domain/entities"
)

// EventBus defines the interface for publishing and subscribing to triage alerts
type EventBus interface {
	// Publish publishes an event to all subscribers
	Publish(ctx context.Context, channel string, event *entities.TriageAlertEvent) error

	// Subscribe subscribes to events on a channel
	Subscribe(ctx context.Context, channel string) (<-chan *entities.TriageAlertEvent, error)

	// Unsubscribe unsubscribes from a channel
	Unsubscribe(ctx context.Context, channel string) error

	// Close closes the event bus and all subscriptions
	Close() error
}

const (
	// EventChannelTriageAlerts carries every alert
	EventChannelTriageAlerts = "triage:alerts"

	// EventChannelUserPrefix is the prefix for per-patient alert channels
	EventChannelUserPrefix = "triage:user:"
)

// GetUserChannel returns the alert channel for one patient
func GetUserChannel(userID string) string {
	return EventChannelUserPrefix + userID
}

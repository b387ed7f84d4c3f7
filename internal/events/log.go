package events

import (
	"context"

	"bidding-marketplace/utils"
)

// LogPublisher writes events to the application log. It is used when no broker is configured.
type LogPublisher struct{}

// NewLogPublisher creates a LogPublisher
func NewLogPublisher() *LogPublisher {
	return &LogPublisher{}
}

// Publish logs the event at debug level
func (LogPublisher) Publish(_ context.Context, key string, payload any) error {
	env := newEnvelope(key, payload)
	utils.Debug("domain event", map[string]any{
		"key":         env.Key,
		"occurred_at": env.OccurredAt,
		"payload":     env.Payload,
	})
	return nil
}

// Close is a no-op
func (LogPublisher) Close() error {
	return nil
}

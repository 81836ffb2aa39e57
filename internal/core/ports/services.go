package ports

import (
	"context"

	"github.com/samirrijal/madar/internal/core/domain"
)

// EventPublisher publishes domain events to a message broker.
type EventPublisher interface {
	PublishAnalyticsEvent(ctx context.Context, event *domain.AnalyticsEvent) error
	PublishInterventionChanged(ctx context.Context, id string) error
}

// EventSubscriber subscribes to domain events from a message broker.
type EventSubscriber interface {
	SubscribeInterventionChanges(ctx context.Context, handler func(ctx context.Context, id string) error) error
}

// CacheService provides read-through caching.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
}

// EventLog keeps the most recent entries per key, newest first.
type EventLog interface {
	// Push prepends entry and drops everything past capacity.
	Push(ctx context.Context, key string, entry []byte, capacity int) error
	// Recent returns up to limit entries, newest first.
	Recent(ctx context.Context, key string, limit int) ([][]byte, error)
}

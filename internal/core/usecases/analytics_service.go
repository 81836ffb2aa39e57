package usecases

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/samirrijal/madar/internal/core/domain"
	"github.com/samirrijal/madar/internal/core/ports"
	"github.com/samirrijal/madar/internal/pkg/metrics"
)

const (
	analyticsLogKey = "analytics:events"
	errorLogKey     = "monitoring:errors"

	DefaultEventCapacity = 100
	DefaultErrorCapacity = 50

	userAgentLimit = 50
)

// AnalyticsService records platform usage and client-side failures in
// bounded most-recent logs.
type AnalyticsService struct {
	log           ports.EventLog
	publisher     ports.EventPublisher
	interventions ports.InterventionRepository
	eventCapacity int
	errorCapacity int
	now           func() time.Time
}

// NewAnalyticsService creates a new AnalyticsService. publisher and
// interventions may be nil; non-positive capacities take the defaults.
func NewAnalyticsService(log ports.EventLog, publisher ports.EventPublisher, interventions ports.InterventionRepository, eventCapacity, errorCapacity int) *AnalyticsService {
	if eventCapacity <= 0 {
		eventCapacity = DefaultEventCapacity
	}
	if errorCapacity <= 0 {
		errorCapacity = DefaultErrorCapacity
	}
	return &AnalyticsService{
		log:           log,
		publisher:     publisher,
		interventions: interventions,
		eventCapacity: eventCapacity,
		errorCapacity: errorCapacity,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// Track records one interaction. A view_intervention event carrying an
// intervention_id also bumps that intervention's interaction counter.
func (s *AnalyticsService) Track(ctx context.Context, kind domain.AnalyticsEventKind, metadata map[string]any, userAgent, language string) (*domain.AnalyticsEvent, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: unknown event %q", domain.ErrValidation, kind)
	}

	meta := make(map[string]any, len(metadata)+2)
	for k, v := range metadata {
		meta[k] = v
	}
	if r := []rune(userAgent); len(r) > userAgentLimit {
		userAgent = string(r[:userAgentLimit])
	}
	meta["user_agent"] = userAgent
	meta["language"] = language

	event := &domain.AnalyticsEvent{
		ID:        uuid.NewString(),
		Event:     kind,
		Metadata:  meta,
		Timestamp: s.now(),
	}

	data, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("encode event: %w", err)
	}
	if err := s.log.Push(ctx, analyticsLogKey, data, s.eventCapacity); err != nil {
		return nil, fmt.Errorf("append event: %w", err)
	}
	metrics.AnalyticsEvents.WithLabelValues(string(kind)).Inc()

	if kind == domain.EventViewIntervention && s.interventions != nil {
		if id, ok := metadata["intervention_id"].(string); ok && id != "" {
			if err := s.interventions.IncrementInteractions(ctx, id); err != nil {
				slog.WarnContext(ctx, "interaction count not updated", "id", id, "error", err)
			}
		}
	}

	if s.publisher != nil {
		if err := s.publisher.PublishAnalyticsEvent(ctx, event); err != nil {
			slog.WarnContext(ctx, "publish analytics event failed", "event", kind, "error", err)
		}
	}

	return event, nil
}

// Recent returns up to limit events, newest first.
func (s *AnalyticsService) Recent(ctx context.Context, limit int) ([]domain.AnalyticsEvent, error) {
	if limit <= 0 || limit > s.eventCapacity {
		limit = s.eventCapacity
	}
	raw, err := s.log.Recent(ctx, analyticsLogKey, limit)
	if err != nil {
		return nil, err
	}
	events := make([]domain.AnalyticsEvent, 0, len(raw))
	for _, b := range raw {
		var e domain.AnalyticsEvent
		if err := json.Unmarshal(b, &e); err != nil {
			continue
		}
		events = append(events, e)
	}
	return events, nil
}

// LogError records a client-reported failure.
func (s *AnalyticsService) LogError(ctx context.Context, entry *domain.ErrorLog) error {
	if entry.Message == "" {
		return fmt.Errorf("%w: message is required", domain.ErrValidation)
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = s.now()
	}

	slog.ErrorContext(ctx, "client error reported",
		"message", entry.Message,
		"context", entry.Context,
		"user_agent", entry.UserAgent,
	)

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode error log: %w", err)
	}
	return s.log.Push(ctx, errorLogKey, data, s.errorCapacity)
}

// Errors returns up to limit error logs, newest first.
func (s *AnalyticsService) Errors(ctx context.Context, limit int) ([]domain.ErrorLog, error) {
	if limit <= 0 || limit > s.errorCapacity {
		limit = s.errorCapacity
	}
	raw, err := s.log.Recent(ctx, errorLogKey, limit)
	if err != nil {
		return nil, err
	}
	logs := make([]domain.ErrorLog, 0, len(raw))
	for _, b := range raw {
		var e domain.ErrorLog
		if err := json.Unmarshal(b, &e); err != nil {
			continue
		}
		logs = append(logs, e)
	}
	return logs, nil
}

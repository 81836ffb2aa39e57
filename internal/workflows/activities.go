package workflows

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.temporal.io/sdk/temporal"

	"github.com/samirrijal/madar/internal/core/domain"
	"github.com/samirrijal/madar/internal/core/ports"
	"github.com/samirrijal/madar/internal/core/usecases"
)

// PublishActivities holds the activity implementations for the publish workflow.
type PublishActivities struct {
	Interventions ports.InterventionRepository
	Map           *usecases.MapService
	Publisher     ports.EventPublisher // optional
}

// SaveResult identifies the stored intervention and the row it replaced.
type SaveResult struct {
	ID       string
	Previous *domain.Intervention // nil when the intervention is new
}

// SaveIntervention validates and stores the intervention. An existing row
// with the same ID keeps its counters and creation time, and is returned as
// Previous so compensation can put it back. Validation failures are not retried.
func (a *PublishActivities) SaveIntervention(ctx context.Context, item domain.Intervention) (SaveResult, error) {
	usecases.ApplyInterventionDefaults(&item)
	if err := usecases.ValidateIntervention(&item); err != nil {
		return SaveResult{}, temporal.NewNonRetryableApplicationError(err.Error(), "validation", err)
	}

	previous, err := a.Interventions.GetByID(ctx, item.ID)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		previous = nil
	case err != nil:
		return SaveResult{}, fmt.Errorf("load intervention %s: %w", item.ID, err)
	}

	now := time.Now().UTC()
	if previous != nil {
		item.CreatedAt = previous.CreatedAt
		item.InteractCount = previous.InteractCount
	} else {
		item.CreatedAt = now
		item.InteractCount = 0
	}
	item.LastUpdated = now

	if err := a.Interventions.Upsert(ctx, &item); err != nil {
		return SaveResult{}, fmt.Errorf("save intervention %s: %w", item.ID, err)
	}
	return SaveResult{ID: item.ID, Previous: previous}, nil
}

// InvalidateMapView drops the memoized map so the next read renders the new item.
func (a *PublishActivities) InvalidateMapView(ctx context.Context) error {
	return a.Map.Invalidate(ctx)
}

// AnnounceIntervention tells subscribers the intervention is live.
func (a *PublishActivities) AnnounceIntervention(ctx context.Context, id string) error {
	if a.Publisher == nil {
		slog.InfoContext(ctx, "no publisher configured, skipping announce", "id", id)
		return nil
	}
	return a.Publisher.PublishInterventionChanged(ctx, id)
}

// RestoreIntervention writes back the row a publish replaced (saga compensation).
func (a *PublishActivities) RestoreIntervention(ctx context.Context, previous domain.Intervention) error {
	if err := a.Interventions.Upsert(ctx, &previous); err != nil {
		return fmt.Errorf("restore intervention %s: %w", previous.ID, err)
	}
	slog.InfoContext(ctx, "intervention restored (saga compensation)", "id", previous.ID)
	return a.Map.Invalidate(ctx)
}

// DeleteIntervention removes a newly published intervention (saga compensation).
func (a *PublishActivities) DeleteIntervention(ctx context.Context, id string) error {
	err := a.Interventions.Delete(ctx, id)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("delete intervention %s: %w", id, err)
	}
	slog.InfoContext(ctx, "intervention deleted (saga compensation)", "id", id)
	return a.Map.Invalidate(ctx)
}

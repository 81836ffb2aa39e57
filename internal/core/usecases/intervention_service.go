package usecases

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/samirrijal/madar/internal/core/domain"
	"github.com/samirrijal/madar/internal/core/ports"
	"github.com/samirrijal/madar/internal/pkg/geospatial"
)

// InterventionService handles intervention-related business logic.
type InterventionService struct {
	interventions ports.InterventionRepository
	cache         ports.CacheService
	publisher     ports.EventPublisher
	now           func() time.Time
}

// NewInterventionService creates a new InterventionService.
// cache and publisher may be nil.
func NewInterventionService(interventions ports.InterventionRepository, cache ports.CacheService, publisher ports.EventPublisher) *InterventionService {
	return &InterventionService{
		interventions: interventions,
		cache:         cache,
		publisher:     publisher,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// List returns interventions matching filter.
func (s *InterventionService) List(ctx context.Context, filter domain.InterventionFilter) ([]domain.Intervention, error) {
	return s.interventions.List(ctx, filter)
}

// GetByID returns a single intervention.
func (s *InterventionService) GetByID(ctx context.Context, id string) (*domain.Intervention, error) {
	return s.interventions.GetByID(ctx, id)
}

// Create validates and stores a new intervention, assigning an ID if missing.
func (s *InterventionService) Create(ctx context.Context, item *domain.Intervention) (*domain.Intervention, error) {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	ApplyInterventionDefaults(item)
	if err := ValidateIntervention(item); err != nil {
		return nil, err
	}

	now := s.now()
	item.CreatedAt = now
	item.LastUpdated = now
	item.InteractCount = 0

	if err := s.interventions.Upsert(ctx, item); err != nil {
		return nil, fmt.Errorf("store intervention: %w", err)
	}
	s.changed(ctx, item.ID)
	return item, nil
}

// Update replaces an existing intervention. Counters and creation time are kept.
func (s *InterventionService) Update(ctx context.Context, id string, item *domain.Intervention) (*domain.Intervention, error) {
	existing, err := s.interventions.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	item.ID = id
	ApplyInterventionDefaults(item)
	if err := ValidateIntervention(item); err != nil {
		return nil, err
	}

	item.CreatedAt = existing.CreatedAt
	item.InteractCount = existing.InteractCount
	item.LastUpdated = s.now()

	if err := s.interventions.Upsert(ctx, item); err != nil {
		return nil, fmt.Errorf("store intervention: %w", err)
	}
	s.changed(ctx, id)
	return item, nil
}

// Delete removes an intervention.
func (s *InterventionService) Delete(ctx context.Context, id string) error {
	if err := s.interventions.Delete(ctx, id); err != nil {
		return err
	}
	s.changed(ctx, id)
	return nil
}

// RecordView bumps the interaction counter of an intervention.
func (s *InterventionService) RecordView(ctx context.Context, id string) error {
	return s.interventions.IncrementInteractions(ctx, id)
}

// changed drops the map memo and tells other replicas. Both are best-effort.
func (s *InterventionService) changed(ctx context.Context, id string) {
	if err := invalidateMapView(ctx, s.cache); err != nil {
		slog.WarnContext(ctx, "map view invalidation failed", "error", err)
	}
	if s.publisher != nil {
		if err := s.publisher.PublishInterventionChanged(ctx, id); err != nil {
			slog.WarnContext(ctx, "publish intervention change failed", "id", id, "error", err)
		}
	}
}

// ApplyInterventionDefaults fills optional fields the client may omit.
func ApplyInterventionDefaults(item *domain.Intervention) {
	if item.Status == "" {
		item.Status = domain.StatusActive
	}
	if item.MediaType == "" {
		item.MediaType = domain.MediaImage
	}
	for i := range item.PathPoints {
		if item.PathPoints[i].ID == "" {
			item.PathPoints[i].ID = fmt.Sprintf("%s-p%d", item.ID, item.PathPoints[i].Order)
		}
	}
	for i := range item.ExternalAssets {
		if item.ExternalAssets[i].ID == "" {
			item.ExternalAssets[i].ID = fmt.Sprintf("%s-a%d", item.ID, i+1)
		}
		if item.ExternalAssets[i].Provider == "" {
			item.ExternalAssets[i].Provider = domain.ProviderCustom
		}
	}
}

// ValidateIntervention checks an intervention before it is persisted.
// Non-finite coordinates are rejected here so they never reach the map.
func ValidateIntervention(item *domain.Intervention) error {
	var errs []string

	if item.ID == "" {
		errs = append(errs, "id is required")
	}
	if !item.Type.Valid() {
		errs = append(errs, fmt.Sprintf("unknown type %q", item.Type))
	}
	if !item.MediaType.Valid() {
		errs = append(errs, fmt.Sprintf("unknown media_type %q", item.MediaType))
	}
	if !item.Status.Valid() {
		errs = append(errs, fmt.Sprintf("unknown status %q", item.Status))
	}
	if strings.TrimSpace(item.Place) == "" {
		errs = append(errs, "place is required")
	}
	if !geospatial.ValidatePoint(item.Location) {
		errs = append(errs, "location must be a finite lat/lon within range")
	}
	for _, th := range item.Themes {
		if !th.Valid() {
			errs = append(errs, fmt.Sprintf("unknown theme %q", th))
		}
	}

	seen := make(map[int]bool, len(item.PathPoints))
	for _, pp := range item.PathPoints {
		if seen[pp.Order] {
			errs = append(errs, fmt.Sprintf("duplicate path point order %d", pp.Order))
		}
		seen[pp.Order] = true
		if !geospatial.ValidatePoint(pp.Location) {
			errs = append(errs, fmt.Sprintf("path point %q has an invalid location", pp.ID))
		}
	}

	for _, a := range item.ExternalAssets {
		if !a.Provider.Valid() {
			errs = append(errs, fmt.Sprintf("asset %q has unknown provider %q", a.ID, a.Provider))
		}
		if u, err := url.Parse(a.URL); err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, fmt.Sprintf("asset %q needs an absolute url", a.ID))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %s", domain.ErrValidation, strings.Join(errs, "; "))
	}
	return nil
}

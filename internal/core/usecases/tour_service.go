package usecases

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/samirrijal/madar/internal/core/domain"
	"github.com/samirrijal/madar/internal/core/ports"
)

// TourService handles curated-tour business logic.
type TourService struct {
	tours         ports.TourRepository
	interventions ports.InterventionRepository
}

// NewTourService creates a new TourService.
func NewTourService(tours ports.TourRepository, interventions ports.InterventionRepository) *TourService {
	return &TourService{tours: tours, interventions: interventions}
}

// List returns every curated tour.
func (s *TourService) List(ctx context.Context) ([]domain.CuratedTour, error) {
	return s.tours.List(ctx)
}

// GetByID returns a tour by ID.
func (s *TourService) GetByID(ctx context.Context, id string) (*domain.CuratedTour, error) {
	return s.tours.GetByID(ctx, id)
}

// Create validates and stores a new tour.
func (s *TourService) Create(ctx context.Context, tour *domain.CuratedTour) (*domain.CuratedTour, error) {
	if tour.ID == "" {
		tour.ID = uuid.NewString()
	}
	if err := s.validate(ctx, tour); err != nil {
		return nil, err
	}
	tour.CreatedAt = time.Now().UTC()

	if err := s.tours.Upsert(ctx, tour); err != nil {
		return nil, fmt.Errorf("store tour: %w", err)
	}
	return tour, nil
}

// Update replaces an existing tour.
func (s *TourService) Update(ctx context.Context, id string, tour *domain.CuratedTour) (*domain.CuratedTour, error) {
	existing, err := s.tours.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	tour.ID = id
	tour.CreatedAt = existing.CreatedAt
	if err := s.validate(ctx, tour); err != nil {
		return nil, err
	}

	if err := s.tours.Upsert(ctx, tour); err != nil {
		return nil, fmt.Errorf("store tour: %w", err)
	}
	return tour, nil
}

// Delete removes a tour.
func (s *TourService) Delete(ctx context.Context, id string) error {
	return s.tours.Delete(ctx, id)
}

func (s *TourService) validate(ctx context.Context, tour *domain.CuratedTour) error {
	var errs []string

	if strings.TrimSpace(tour.Name) == "" {
		errs = append(errs, "name is required")
	}
	if !tour.Theme.Valid() {
		errs = append(errs, fmt.Sprintf("unknown theme %q", tour.Theme))
	}
	if len(tour.Stops) == 0 {
		errs = append(errs, "a tour needs at least one stop")
	}

	seen := make(map[string]bool, len(tour.Stops))
	for _, id := range tour.Stops {
		if seen[id] {
			errs = append(errs, fmt.Sprintf("stop %q listed twice", id))
		}
		seen[id] = true
	}

	if len(errs) == 0 {
		found, err := s.interventions.GetByIDs(ctx, tour.Stops)
		if err != nil {
			return fmt.Errorf("check tour stops: %w", err)
		}
		known := make(map[string]bool, len(found))
		for _, it := range found {
			known[it.ID] = true
		}
		for _, id := range tour.Stops {
			if !known[id] {
				errs = append(errs, fmt.Sprintf("unknown intervention %q", id))
			}
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %s", domain.ErrValidation, strings.Join(errs, "; "))
	}
	return nil
}

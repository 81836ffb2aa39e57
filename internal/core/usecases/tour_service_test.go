package usecases_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/samirrijal/madar/internal/core/domain"
	"github.com/samirrijal/madar/internal/core/usecases"
)

func knownInterventions() *mockInterventionRepo {
	items := seedInterventions()
	return &mockInterventionRepo{
		getByIDsFn: func(ctx context.Context, ids []string) ([]domain.Intervention, error) {
			var out []domain.Intervention
			for _, it := range items {
				for _, id := range ids {
					if it.ID == id {
						out = append(out, it)
					}
				}
			}
			return out, nil
		},
	}
}

func TestTourService_Create(t *testing.T) {
	var stored *domain.CuratedTour
	tours := &mockTourRepo{
		upsertFn: func(ctx context.Context, tour *domain.CuratedTour) error {
			stored = tour
			return nil
		},
	}
	svc := usecases.NewTourService(tours, knownInterventions())

	tour, err := svc.Create(context.Background(), &domain.CuratedTour{
		Name:  "Levant Heritage",
		Theme: domain.ThemeHeritage,
		Stops: []string{"cairo-1", "beirut-1"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tour.ID == "" || tour.CreatedAt.IsZero() {
		t.Errorf("expected ID and created_at, got %+v", tour)
	}
	if stored == nil || stored.ID != tour.ID {
		t.Error("expected tour to be stored")
	}
}

func TestTourService_Create_Validation(t *testing.T) {
	svc := usecases.NewTourService(&mockTourRepo{}, knownInterventions())

	tests := []struct {
		name string
		tour domain.CuratedTour
		want string
	}{
		{"no name", domain.CuratedTour{Theme: domain.ThemeArt, Stops: []string{"cairo-1"}}, "name is required"},
		{"bad theme", domain.CuratedTour{Name: "x", Theme: "sports", Stops: []string{"cairo-1"}}, "unknown theme"},
		{"no stops", domain.CuratedTour{Name: "x", Theme: domain.ThemeArt}, "at least one stop"},
		{"duplicate stop", domain.CuratedTour{Name: "x", Theme: domain.ThemeArt, Stops: []string{"cairo-1", "cairo-1"}}, "listed twice"},
		{"unknown stop", domain.CuratedTour{Name: "x", Theme: domain.ThemeArt, Stops: []string{"cairo-1", "petra-1"}}, `unknown intervention "petra-1"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tour := tt.tour
			_, err := svc.Create(context.Background(), &tour)
			if !errors.Is(err, domain.ErrValidation) {
				t.Fatalf("expected ErrValidation, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected %q in %q", tt.want, err.Error())
			}
		})
	}
}

func TestTourService_Update_NotFound(t *testing.T) {
	svc := usecases.NewTourService(&mockTourRepo{}, knownInterventions())

	_, err := svc.Update(context.Background(), "missing", &domain.CuratedTour{Name: "x"})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

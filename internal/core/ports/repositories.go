package ports

import (
	"context"

	"github.com/samirrijal/madar/internal/core/domain"
)

// InterventionRepository persists interventions and their path points.
type InterventionRepository interface {
	Upsert(ctx context.Context, item *domain.Intervention) error
	UpsertBatch(ctx context.Context, items []domain.Intervention) error
	GetByID(ctx context.Context, id string) (*domain.Intervention, error)
	GetByIDs(ctx context.Context, ids []string) ([]domain.Intervention, error)
	List(ctx context.Context, filter domain.InterventionFilter) ([]domain.Intervention, error)
	Delete(ctx context.Context, id string) error
	IncrementInteractions(ctx context.Context, id string) error
}

// TourRepository persists curated tours.
type TourRepository interface {
	Upsert(ctx context.Context, tour *domain.CuratedTour) error
	UpsertBatch(ctx context.Context, tours []domain.CuratedTour) error
	GetByID(ctx context.Context, id string) (*domain.CuratedTour, error)
	List(ctx context.Context) ([]domain.CuratedTour, error)
	Delete(ctx context.Context, id string) error
}

// MemoryRepository persists citizen memories.
type MemoryRepository interface {
	Create(ctx context.Context, m *domain.CitizenMemory) error
	// List returns memories newest first; an empty neighborhood matches all.
	List(ctx context.Context, neighborhood string, limit int) ([]domain.CitizenMemory, error)
}

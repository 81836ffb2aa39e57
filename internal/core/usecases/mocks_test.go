package usecases_test

import (
	"context"
	"fmt"
	"sync"

	"github.com/samirrijal/madar/internal/core/domain"
)

// --- Mock InterventionRepository ---

type mockInterventionRepo struct {
	listFn      func(ctx context.Context, filter domain.InterventionFilter) ([]domain.Intervention, error)
	getByIDFn   func(ctx context.Context, id string) (*domain.Intervention, error)
	getByIDsFn  func(ctx context.Context, ids []string) ([]domain.Intervention, error)
	upsertFn    func(ctx context.Context, item *domain.Intervention) error
	deleteFn    func(ctx context.Context, id string) error
	incrementFn func(ctx context.Context, id string) error
}

func (m *mockInterventionRepo) Upsert(ctx context.Context, item *domain.Intervention) error {
	if m.upsertFn != nil {
		return m.upsertFn(ctx, item)
	}
	return nil
}
func (m *mockInterventionRepo) UpsertBatch(ctx context.Context, items []domain.Intervention) error {
	return nil
}
func (m *mockInterventionRepo) GetByID(ctx context.Context, id string) (*domain.Intervention, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, fmt.Errorf("intervention %q: %w", id, domain.ErrNotFound)
}
func (m *mockInterventionRepo) GetByIDs(ctx context.Context, ids []string) ([]domain.Intervention, error) {
	if m.getByIDsFn != nil {
		return m.getByIDsFn(ctx, ids)
	}
	return nil, nil
}
func (m *mockInterventionRepo) List(ctx context.Context, filter domain.InterventionFilter) ([]domain.Intervention, error) {
	if m.listFn != nil {
		return m.listFn(ctx, filter)
	}
	return nil, nil
}
func (m *mockInterventionRepo) Delete(ctx context.Context, id string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}
func (m *mockInterventionRepo) IncrementInteractions(ctx context.Context, id string) error {
	if m.incrementFn != nil {
		return m.incrementFn(ctx, id)
	}
	return nil
}

// --- Mock TourRepository ---

type mockTourRepo struct {
	getByIDFn func(ctx context.Context, id string) (*domain.CuratedTour, error)
	listFn    func(ctx context.Context) ([]domain.CuratedTour, error)
	upsertFn  func(ctx context.Context, tour *domain.CuratedTour) error
}

func (m *mockTourRepo) Upsert(ctx context.Context, tour *domain.CuratedTour) error {
	if m.upsertFn != nil {
		return m.upsertFn(ctx, tour)
	}
	return nil
}
func (m *mockTourRepo) UpsertBatch(ctx context.Context, tours []domain.CuratedTour) error {
	return nil
}
func (m *mockTourRepo) GetByID(ctx context.Context, id string) (*domain.CuratedTour, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, fmt.Errorf("tour %q: %w", id, domain.ErrNotFound)
}
func (m *mockTourRepo) List(ctx context.Context) ([]domain.CuratedTour, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return nil, nil
}
func (m *mockTourRepo) Delete(ctx context.Context, id string) error { return nil }

// --- Mock MemoryRepository ---

type mockMemoryRepo struct {
	createFn func(ctx context.Context, m *domain.CitizenMemory) error
	listFn   func(ctx context.Context, neighborhood string, limit int) ([]domain.CitizenMemory, error)
}

func (m *mockMemoryRepo) Create(ctx context.Context, mem *domain.CitizenMemory) error {
	if m.createFn != nil {
		return m.createFn(ctx, mem)
	}
	return nil
}
func (m *mockMemoryRepo) List(ctx context.Context, neighborhood string, limit int) ([]domain.CitizenMemory, error) {
	if m.listFn != nil {
		return m.listFn(ctx, neighborhood, limit)
	}
	return nil, nil
}

// --- Mock CacheService ---

type mockCache struct {
	mu      sync.Mutex
	data    map[string][]byte
	deletes int
}

func newMockCache() *mockCache { return &mockCache{data: map[string][]byte{}} }

func (m *mockCache) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if v, ok := m.data[key]; ok {
		return v, nil
	}
	return nil, domain.ErrNotFound
}
func (m *mockCache) Set(ctx context.Context, key string, value []byte, ttl int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}
func (m *mockCache) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	m.deletes++
	return nil
}

// --- Mock EventPublisher ---

type mockPublisher struct {
	mu        sync.Mutex
	events    []domain.AnalyticsEvent
	changed   []string
	changedFn func(id string) error
}

func (m *mockPublisher) PublishAnalyticsEvent(ctx context.Context, event *domain.AnalyticsEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, *event)
	return nil
}
func (m *mockPublisher) PublishInterventionChanged(ctx context.Context, id string) error {
	m.mu.Lock()
	m.changed = append(m.changed, id)
	m.mu.Unlock()
	if m.changedFn != nil {
		return m.changedFn(id)
	}
	return nil
}

// --- Fixtures ---

func geo(lat, lon float64) domain.GeoPoint { return domain.GeoPoint{Lat: lat, Lon: lon} }

func seedInterventions() []domain.Intervention {
	return []domain.Intervention{
		{ID: "cairo-1", Type: domain.InterventionBench, Title: "Memory Bench", Place: "Al-Azhar Park, Cairo", Location: geo(30.0406, 31.2635)},
		{ID: "beirut-1", Type: domain.InterventionMural, Place: "Gemmayzeh, Beirut", Location: geo(33.8938, 35.5018)},
		{
			ID: "diriyah-1", Type: domain.InterventionPath, Title: "At-Turaif Walk", Place: "Diriyah",
			Location: geo(0, 0), // ignored for routes
			PathPoints: []domain.PathPoint{
				{ID: "d-p2", Name: "Salwa Palace", Location: geo(24.7345, 46.5727), Order: 2},
				{ID: "d-p1", Name: "Gate", Location: geo(24.7310, 46.5712), Order: 1},
			},
		},
		{ID: "riyadh-1", Type: domain.InterventionGallery, Place: "Riyadh", Location: geo(24.7136, 46.6753)},
	}
}

package usecases

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/samirrijal/madar/internal/core/domain"
	"github.com/samirrijal/madar/internal/core/ports"
)

const (
	DefaultMemoryLimit = 50
	MaxMemoryLimit     = 200

	maxMemoryText  = 1000
	maxVisitorName = 80
)

// MemoryService keeps the neighborhood memory journal left at benches.
type MemoryService struct {
	memories  ports.MemoryRepository
	analytics *AnalyticsService
	now       func() time.Time
}

// NewMemoryService creates a new MemoryService. analytics may be nil.
func NewMemoryService(memories ports.MemoryRepository, analytics *AnalyticsService) *MemoryService {
	return &MemoryService{
		memories:  memories,
		analytics: analytics,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// List returns up to limit memories for a neighborhood, newest first.
// An empty neighborhood lists every memory.
func (s *MemoryService) List(ctx context.Context, neighborhood string, limit int) ([]domain.CitizenMemory, error) {
	if limit <= 0 {
		limit = DefaultMemoryLimit
	}
	if limit > MaxMemoryLimit {
		limit = MaxMemoryLimit
	}
	return s.memories.List(ctx, strings.TrimSpace(neighborhood), limit)
}

// Post stores a memory and tracks a post_memory event for its neighborhood.
// Text and visitor name are required.
func (s *MemoryService) Post(ctx context.Context, m *domain.CitizenMemory, userAgent, language string) (*domain.CitizenMemory, error) {
	m.Text = strings.TrimSpace(m.Text)
	m.VisitorName = strings.TrimSpace(m.VisitorName)
	m.Neighborhood = strings.TrimSpace(m.Neighborhood)

	var errs []string
	switch n := utf8.RuneCountInString(m.Text); {
	case n == 0:
		errs = append(errs, "text is required")
	case n > maxMemoryText:
		errs = append(errs, fmt.Sprintf("text exceeds %d characters", maxMemoryText))
	}
	switch n := utf8.RuneCountInString(m.VisitorName); {
	case n == 0:
		errs = append(errs, "visitor_name is required")
	case n > maxVisitorName:
		errs = append(errs, fmt.Sprintf("visitor_name exceeds %d characters", maxVisitorName))
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrValidation, strings.Join(errs, "; "))
	}

	m.ID = uuid.NewString()
	m.CreatedAt = s.now()
	if err := s.memories.Create(ctx, m); err != nil {
		return nil, fmt.Errorf("store memory: %w", err)
	}

	if s.analytics != nil {
		meta := map[string]any{"neighborhood": m.Neighborhood}
		if _, err := s.analytics.Track(ctx, domain.EventPostMemory, meta, userAgent, language); err != nil {
			slog.WarnContext(ctx, "post_memory not tracked", "error", err)
		}
	}
	return m, nil
}

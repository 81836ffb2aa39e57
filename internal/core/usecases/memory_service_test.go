package usecases_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/samirrijal/madar/internal/adapters/memory"
	"github.com/samirrijal/madar/internal/core/domain"
	"github.com/samirrijal/madar/internal/core/usecases"
)

func TestMemoryService_Post(t *testing.T) {
	var stored *domain.CitizenMemory
	repo := &mockMemoryRepo{
		createFn: func(ctx context.Context, m *domain.CitizenMemory) error {
			stored = m
			return nil
		},
	}
	analytics := usecases.NewAnalyticsService(memory.NewEventLog(), nil, nil, 0, 0)
	svc := usecases.NewMemoryService(repo, analytics)

	got, err := svc.Post(context.Background(), &domain.CitizenMemory{
		Text:         "  My grandfather sold tea on this corner.  ",
		VisitorName:  "Layla",
		Neighborhood: "Gemmayzeh",
	}, "Mozilla/5.0", "ar")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if stored == nil || stored.ID == "" || stored.CreatedAt.IsZero() {
		t.Fatalf("expected stored memory with id and timestamp, got %+v", stored)
	}
	if got.Text != "My grandfather sold tea on this corner." {
		t.Errorf("expected trimmed text, got %q", got.Text)
	}

	events, _ := analytics.Recent(context.Background(), 0)
	if len(events) != 1 || events[0].Event != domain.EventPostMemory {
		t.Fatalf("expected one post_memory event, got %+v", events)
	}
	if events[0].Metadata["neighborhood"] != "Gemmayzeh" {
		t.Errorf("expected neighborhood in event metadata, got %v", events[0].Metadata)
	}
}

func TestMemoryService_Post_Validation(t *testing.T) {
	called := false
	repo := &mockMemoryRepo{
		createFn: func(ctx context.Context, m *domain.CitizenMemory) error {
			called = true
			return nil
		},
	}
	svc := usecases.NewMemoryService(repo, nil)

	tests := []struct {
		name string
		mem  domain.CitizenMemory
		want string
	}{
		{"missing text", domain.CitizenMemory{Text: "   ", VisitorName: "Omar"}, "text is required"},
		{"missing name", domain.CitizenMemory{Text: "Hello"}, "visitor_name is required"},
		{"long text", domain.CitizenMemory{Text: strings.Repeat("ب", 1001), VisitorName: "Omar"}, "text exceeds"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mem := tt.mem
			_, err := svc.Post(context.Background(), &mem, "", "")
			if !errors.Is(err, domain.ErrValidation) {
				t.Fatalf("expected ErrValidation, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected %q in %q", tt.want, err.Error())
			}
		})
	}
	if called {
		t.Error("repository should not be called for invalid memories")
	}
}

func TestMemoryService_List_Limits(t *testing.T) {
	var gotHood string
	var gotLimit int
	repo := &mockMemoryRepo{
		listFn: func(ctx context.Context, neighborhood string, limit int) ([]domain.CitizenMemory, error) {
			gotHood, gotLimit = neighborhood, limit
			return nil, nil
		},
	}
	svc := usecases.NewMemoryService(repo, nil)

	svc.List(context.Background(), " Jabal Amman ", 0)
	if gotHood != "Jabal Amman" || gotLimit != usecases.DefaultMemoryLimit {
		t.Errorf("expected (Jabal Amman, %d), got (%q, %d)", usecases.DefaultMemoryLimit, gotHood, gotLimit)
	}

	svc.List(context.Background(), "", 10000)
	if gotLimit != usecases.MaxMemoryLimit {
		t.Errorf("expected limit capped at %d, got %d", usecases.MaxMemoryLimit, gotLimit)
	}
}

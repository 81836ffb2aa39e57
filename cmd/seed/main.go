package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/samirrijal/madar/internal/adapters/postgres"
	"github.com/samirrijal/madar/internal/adapters/valkey"
	"github.com/samirrijal/madar/internal/core/domain"
	"github.com/samirrijal/madar/internal/core/usecases"
	"github.com/samirrijal/madar/internal/pkg/config"
	"github.com/samirrijal/madar/internal/pkg/logging"
)

// Manifest is the seed file layout.
type Manifest struct {
	Source        string                `json:"source"`
	Interventions []domain.Intervention `json:"interventions"`
	Tours         []domain.CuratedTour  `json:"tours"`
}

// Usage: seed [manifest.json] [id,id,...]
func main() {
	cfg, err := config.Load("madar-seed")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logging.Setup("madar-seed", os.Getenv("LOG_LEVEL"), "text")

	ctx := context.Background()

	manifestPath := "seeds/initial.json"
	if len(os.Args) > 1 {
		manifestPath = os.Args[1]
	}

	data, err := os.ReadFile(manifestPath)
	if err != nil {
		log.Fatalf("read manifest: %v", err)
	}

	var manifest Manifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		log.Fatalf("parse manifest: %v", err)
	}

	// Optional CLI arg: intervention ID list
	var only map[string]bool
	if len(os.Args) > 2 {
		only = map[string]bool{}
		for _, id := range strings.Split(os.Args[2], ",") {
			only[strings.TrimSpace(id)] = true
		}
	}

	items, tours, err := prepare(manifest, only, time.Now().UTC())
	if err != nil {
		log.Fatalf("manifest %s: %v", manifestPath, err)
	}

	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	slog.Info("seeding", "source", manifest.Source, "interventions", len(items), "tours", len(tours))

	if err := postgres.NewInterventionRepo(db).UpsertBatch(ctx, items); err != nil {
		log.Fatalf("interventions: %v", err)
	}
	if len(tours) > 0 {
		if err := postgres.NewTourRepo(db).UpsertBatch(ctx, tours); err != nil {
			log.Fatalf("tours: %v", err)
		}
	}

	// Running API replicas would otherwise serve the old map until the memo expires.
	if vk, err := valkey.New(cfg.Valkey.Addr); err != nil {
		slog.Warn("valkey unavailable, map memo not invalidated", "error", err)
	} else {
		defer vk.Close()
		svc := usecases.NewMapService(nil, nil, valkey.NewCache(vk), cfg.Map.CacheTTL)
		if err := svc.Invalidate(ctx); err != nil {
			slog.Warn("map memo invalidation failed", "error", err)
		}
	}

	slog.Info("seeding complete")
}

// prepare fills defaults and validates every entry. Tours are kept only
// when all their stops are part of the seeded set.
func prepare(m Manifest, only map[string]bool, now time.Time) ([]domain.Intervention, []domain.CuratedTour, error) {
	var items []domain.Intervention
	known := make(map[string]bool)
	var errs []string

	for _, it := range m.Interventions {
		if only != nil && !only[it.ID] {
			continue
		}
		usecases.ApplyInterventionDefaults(&it)
		if err := usecases.ValidateIntervention(&it); err != nil {
			errs = append(errs, fmt.Sprintf("intervention %q: %v", it.ID, err))
			continue
		}
		if known[it.ID] {
			errs = append(errs, fmt.Sprintf("intervention %q listed twice", it.ID))
			continue
		}
		known[it.ID] = true
		it.CreatedAt = now
		it.LastUpdated = now
		items = append(items, it)
	}

	var tours []domain.CuratedTour
	for _, t := range m.Tours {
		complete := len(t.Stops) > 0
		for _, id := range t.Stops {
			if !known[id] {
				complete = false
				break
			}
		}
		if !complete {
			if only == nil {
				errs = append(errs, fmt.Sprintf("tour %q references unknown stops", t.ID))
			}
			continue
		}
		if t.ID == "" || !t.Theme.Valid() {
			errs = append(errs, fmt.Sprintf("tour %q needs an id and a known theme", t.ID))
			continue
		}
		t.CreatedAt = now
		tours = append(tours, t)
	}

	if len(errs) > 0 {
		return nil, nil, fmt.Errorf("%w:\n  - %s", domain.ErrValidation, strings.Join(errs, "\n  - "))
	}
	return items, tours, nil
}

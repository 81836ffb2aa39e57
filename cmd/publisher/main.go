package main

import (
	"context"
	"log"
	"log/slog"
	"os"

	"go.temporal.io/sdk/client"
	tlog "go.temporal.io/sdk/log"
	"go.temporal.io/sdk/worker"

	"github.com/samirrijal/madar/internal/adapters/memory"
	natsadapter "github.com/samirrijal/madar/internal/adapters/nats"
	"github.com/samirrijal/madar/internal/adapters/postgres"
	"github.com/samirrijal/madar/internal/adapters/valkey"
	"github.com/samirrijal/madar/internal/core/ports"
	"github.com/samirrijal/madar/internal/core/usecases"
	"github.com/samirrijal/madar/internal/pkg/config"
	"github.com/samirrijal/madar/internal/pkg/logging"
	"github.com/samirrijal/madar/internal/workflows"
)

func main() {
	cfg, err := config.Load("madar-publisher")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logging.Setup("madar-publisher", os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT"))

	ctx := context.Background()

	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// The API replicas read the memo from Valkey, so invalidate it there.
	var cache ports.CacheService = memory.NewCache()
	if vk, err := valkey.New(cfg.Valkey.Addr); err != nil {
		slog.Warn("valkey unavailable, map memo will expire on its own", "error", err)
	} else {
		defer vk.Close()
		cache = valkey.NewCache(vk)
	}

	interventionRepo := postgres.NewInterventionRepo(db)
	activities := &workflows.PublishActivities{
		Interventions: interventionRepo,
		Map:           usecases.NewMapService(interventionRepo, postgres.NewTourRepo(db), cache, cfg.Map.CacheTTL),
	}

	if pub, err := natsadapter.NewPublisher(cfg.NATS.URL); err != nil {
		slog.Warn("nats unavailable, announcements skipped", "error", err)
	} else {
		defer pub.Close()
		activities.Publisher = pub
	}

	c, err := client.Dial(client.Options{
		HostPort:  cfg.Temporal.HostPort,
		Namespace: cfg.Temporal.Namespace,
		Logger:    tlog.NewStructuredLogger(slog.Default()),
	})
	if err != nil {
		log.Fatalf("temporal client: %v", err)
	}
	defer c.Close()

	queue := cfg.Temporal.TaskQueue
	if queue == "" {
		queue = workflows.TaskQueue
	}
	w := worker.New(c, queue, worker.Options{})

	w.RegisterWorkflow(workflows.PublishInterventionWorkflow)
	w.RegisterActivity(activities)

	slog.Info("publish worker started", "task_queue", queue)
	if err := w.Run(worker.InterruptCh()); err != nil {
		log.Fatalf("worker: %v", err)
	}
}

package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.temporal.io/sdk/client"
	tlog "go.temporal.io/sdk/log"

	"github.com/samirrijal/madar/internal/adapters/http"
	"github.com/samirrijal/madar/internal/adapters/memory"
	natsadapter "github.com/samirrijal/madar/internal/adapters/nats"
	"github.com/samirrijal/madar/internal/adapters/postgres"
	"github.com/samirrijal/madar/internal/adapters/valkey"
	"github.com/samirrijal/madar/internal/core/ports"
	"github.com/samirrijal/madar/internal/core/usecases"
	"github.com/samirrijal/madar/internal/pkg/config"
	"github.com/samirrijal/madar/internal/pkg/logging"
	"github.com/samirrijal/madar/internal/pkg/metrics"
	"github.com/samirrijal/madar/internal/pkg/telemetry"
)

func main() {
	cfg, err := config.Load("madar-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// Structured logging
	logging.Setup("madar-api", os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT"))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.TempoAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	// Database
	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	deps := &http.Dependencies{DB: db}

	// Cache and bounded logs: Valkey when reachable, in-process otherwise
	var (
		cache    ports.CacheService
		eventLog ports.EventLog
	)
	vk, err := valkey.New(cfg.Valkey.Addr)
	if err != nil {
		slog.Warn("valkey unavailable, using in-process cache", "error", err)
		cache = memory.NewCache()
		eventLog = memory.NewEventLog()
	} else {
		defer vk.Close()
		cache = valkey.NewCache(vk)
		eventLog = valkey.NewEventLog(vk)
		deps.Cache = vk
	}

	// NATS
	var publisher ports.EventPublisher
	pub, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats unavailable", "error", err)
	} else {
		defer pub.Close()
		publisher = pub
		deps.NATS = pub.Conn()
	}

	// Repos
	interventionRepo := postgres.NewInterventionRepo(db)
	tourRepo := postgres.NewTourRepo(db)

	// Use cases
	deps.Interventions = usecases.NewInterventionService(interventionRepo, cache, publisher)
	deps.Tours = usecases.NewTourService(tourRepo, interventionRepo)
	deps.Map = usecases.NewMapService(interventionRepo, tourRepo, cache, cfg.Map.CacheTTL)
	deps.Analytics = usecases.NewAnalyticsService(eventLog, publisher, interventionRepo,
		cfg.Map.EventLogCapacity, cfg.Map.ErrorLogCapacity)
	deps.Memories = usecases.NewMemoryService(postgres.NewMemoryRepo(db), deps.Analytics)

	// Other replicas (and the publish worker) announce changes; drop our memo.
	if pub != nil {
		sub, err := natsadapter.NewSubscriber(cfg.NATS.URL)
		if err != nil {
			slog.Warn("nats subscriber unavailable", "error", err)
		} else {
			defer sub.Close()
			err = sub.SubscribeInterventionChanges(ctx, func(ctx context.Context, id string) error {
				slog.Debug("intervention changed", "id", id)
				return deps.Map.Invalidate(ctx)
			})
			if err != nil {
				slog.Warn("subscribe intervention changes failed", "error", err)
			}
		}
	}

	// Temporal
	if cfg.Temporal.Enabled {
		tc, err := client.Dial(client.Options{
			HostPort:  cfg.Temporal.HostPort,
			Namespace: cfg.Temporal.Namespace,
			Logger:    tlog.NewStructuredLogger(slog.Default()),
		})
		if err != nil {
			slog.Warn("temporal unavailable, publish endpoint disabled", "error", err)
		} else {
			defer tc.Close()
			deps.Workflows = tc
			deps.TaskQueue = cfg.Temporal.TaskQueue
		}
	}

	// DB pool gauges
	go func() {
		ticker := time.NewTicker(15 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				metrics.UpdateDBPoolMetrics(db.Stat())
			case <-ctx.Done():
				return
			}
		}
	}()

	// Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    1024 * 1024, // 1 MB max request body
		AppName:      "Madar API",
	})
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     "http://localhost:3000, http://localhost:5173",
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: false,
		MaxAge:           3600,
	}))

	http.SetupRoutes(app, deps)

	// Graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("API server starting", "addr", addr)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections...", "signal", sig.String())

	// Give in-flight requests up to 10s to complete
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server stopped")
}

package http

import (
	"context"

	"github.com/nats-io/nats.go"
	"go.temporal.io/sdk/client"

	"github.com/samirrijal/madar/internal/core/usecases"
)

// Pinger is anything the readiness check can ping.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Dependencies holds all services needed by HTTP handlers.
// Infrastructure fields are optional; nil means not configured.
type Dependencies struct {
	Interventions *usecases.InterventionService
	Tours         *usecases.TourService
	Map           *usecases.MapService
	Analytics     *usecases.AnalyticsService
	Memories      *usecases.MemoryService
	Workflows     client.Client
	TaskQueue     string
	NATS          *nats.Conn
	DB            Pinger
	Cache         Pinger
}

package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/middleware/timeout"
	"github.com/gofiber/websocket/v2"

	"github.com/samirrijal/madar/internal/pkg/metrics"
)

const requestTimeout = 15 * time.Second

// SetupRoutes registers all REST, GraphQL, and WebSocket routes.
func SetupRoutes(app *fiber.App, deps *Dependencies) {
	// Prometheus metrics
	app.Use(metrics.Middleware())
	app.Get("/metrics", metrics.Handler())

	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))

	app.Use(requestid.New())
	app.Use(RequestIDLogMiddleware())
	app.Use(AccessLogMiddleware())

	// Rate limiting: 120 requests per minute per IP
	app.Use(limiter.New(limiter.Config{
		Max:        120,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return newError(c, fiber.StatusTooManyRequests, "rate_limited", "too many requests, please try again later")
		},
	}))

	// Security headers + API version
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Set("X-API-Version", "1.0.0")
		return c.Next()
	})

	app.Use(ETagMiddleware())
	app.Use(CachingMiddleware())

	// Health & readiness, no timeout
	app.Get("/v1/health", HealthHandler(deps))
	app.Get("/v1/ready", ReadyHandler(deps))

	v1 := app.Group("/v1")
	with := func(h fiber.Handler) fiber.Handler { return timeout.NewWithContext(h, requestTimeout) }

	v1.Get("/interventions", with(ListInterventionsHandler(deps)))
	v1.Post("/interventions", with(CreateInterventionHandler(deps)))
	v1.Post("/interventions/publish", with(PublishInterventionHandler(deps)))
	v1.Get("/interventions/:id", with(GetInterventionHandler(deps)))
	v1.Put("/interventions/:id", with(UpdateInterventionHandler(deps)))
	v1.Delete("/interventions/:id", with(DeleteInterventionHandler(deps)))
	v1.Post("/interventions/:id/view", with(RecordViewHandler(deps)))

	v1.Get("/tours", with(ListToursHandler(deps)))
	v1.Post("/tours", with(CreateTourHandler(deps)))
	v1.Get("/tours/:id", with(GetTourHandler(deps)))
	v1.Put("/tours/:id", with(UpdateTourHandler(deps)))
	v1.Delete("/tours/:id", with(DeleteTourHandler(deps)))
	v1.Get("/tours/:id/map", with(TourMapHandler(deps)))

	v1.Get("/map", with(MapHandler(deps)))
	v1.Get("/map/geojson", with(MapGeoJSONHandler(deps)))
	v1.Get("/map/svg", with(MapSVGHandler(deps)))

	v1.Get("/memories", with(ListMemoriesHandler(deps)))
	v1.Post("/memories", with(PostMemoryHandler(deps)))

	v1.Post("/analytics/events", with(TrackEventHandler(deps)))
	v1.Get("/analytics/events", with(RecentEventsHandler(deps)))
	v1.Post("/monitoring/errors", with(LogErrorHandler(deps)))
	v1.Get("/monitoring/errors", with(RecentErrorsHandler(deps)))

	app.Post("/graphql", GraphQLHandler(deps))

	SetupDocs(app)

	// WebSocket relay needs NATS
	if deps.NATS != nil {
		app.Use("/ws", func(c *fiber.Ctx) error {
			if websocket.IsWebSocketUpgrade(c) {
				return c.Next()
			}
			return fiber.ErrUpgradeRequired
		})
		app.Get("/ws", websocket.New(WebSocketHandler(deps.NATS)))
	}
}

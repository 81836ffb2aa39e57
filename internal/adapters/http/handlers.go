package http

import (
	"bytes"
	"math"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.temporal.io/sdk/client"

	"github.com/samirrijal/madar/internal/core/domain"
	"github.com/samirrijal/madar/internal/core/usecases"
	"github.com/samirrijal/madar/internal/pkg/viewport"
	"github.com/samirrijal/madar/internal/workflows"
)

// ---- Interventions ----

// ListInterventionsHandler returns interventions, filtered and paginated.
func ListInterventionsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		filter := domain.InterventionFilter{
			Type:   domain.InterventionType(strings.ToUpper(c.Query("type"))),
			Status: domain.InterventionStatus(c.Query("status")),
			Theme:  domain.TourTheme(c.Query("theme")),
		}
		if filter.Type != "" && !filter.Type.Valid() {
			return errBadRequest(c, "unknown type: "+string(filter.Type))
		}
		if filter.Status != "" && !filter.Status.Valid() {
			return errBadRequest(c, "unknown status: "+string(filter.Status))
		}
		if filter.Theme != "" && !filter.Theme.Valid() {
			return errBadRequest(c, "unknown theme: "+string(filter.Theme))
		}

		items, err := deps.Interventions.List(c.UserContext(), filter)
		if err != nil {
			return errFrom(c, err)
		}
		return c.JSON(paginate(c, items))
	}
}

// GetInterventionHandler returns a single intervention by ID.
func GetInterventionHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		item, err := deps.Interventions.GetByID(c.UserContext(), c.Params("id"))
		if err != nil {
			return errFrom(c, err)
		}
		return c.JSON(item)
	}
}

// CreateInterventionHandler stores a new intervention.
func CreateInterventionHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var item domain.Intervention
		if err := c.BodyParser(&item); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		created, err := deps.Interventions.Create(c.UserContext(), &item)
		if err != nil {
			return errFrom(c, err)
		}
		c.Location("/v1/interventions/" + created.ID)
		return c.Status(fiber.StatusCreated).JSON(created)
	}
}

// UpdateInterventionHandler replaces an intervention.
func UpdateInterventionHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var item domain.Intervention
		if err := c.BodyParser(&item); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		updated, err := deps.Interventions.Update(c.UserContext(), c.Params("id"), &item)
		if err != nil {
			return errFrom(c, err)
		}
		return c.JSON(updated)
	}
}

// DeleteInterventionHandler removes an intervention.
func DeleteInterventionHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := deps.Interventions.Delete(c.UserContext(), c.Params("id")); err != nil {
			return errFrom(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// RecordViewHandler bumps an intervention's interaction counter.
func RecordViewHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := deps.Interventions.RecordView(c.UserContext(), c.Params("id")); err != nil {
			return errFrom(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// PublishInterventionHandler validates the body and hands it to the
// publish workflow. The response is 202 with the workflow run.
func PublishInterventionHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if deps.Workflows == nil {
			return errUnavailable(c, "workflow engine not configured")
		}

		var item domain.Intervention
		if err := c.BodyParser(&item); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		if item.ID == "" {
			item.ID = uuid.NewString()
		}
		usecases.ApplyInterventionDefaults(&item)
		if err := usecases.ValidateIntervention(&item); err != nil {
			return errFrom(c, err)
		}

		queue := deps.TaskQueue
		if queue == "" {
			queue = workflows.TaskQueue
		}
		run, err := deps.Workflows.ExecuteWorkflow(c.UserContext(), client.StartWorkflowOptions{
			ID:        "publish-intervention-" + item.ID,
			TaskQueue: queue,
		}, workflows.PublishInterventionWorkflow, workflows.PublishInput{Intervention: item})
		if err != nil {
			return errFrom(c, err)
		}

		return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
			"intervention_id": item.ID,
			"workflow_id":     run.GetID(),
			"run_id":          run.GetRunID(),
		})
	}
}

// ---- Tours ----

// ListToursHandler returns curated tours, paginated.
func ListToursHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tours, err := deps.Tours.List(c.UserContext())
		if err != nil {
			return errFrom(c, err)
		}
		return c.JSON(paginate(c, tours))
	}
}

// GetTourHandler returns a single tour.
func GetTourHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tour, err := deps.Tours.GetByID(c.UserContext(), c.Params("id"))
		if err != nil {
			return errFrom(c, err)
		}
		return c.JSON(tour)
	}
}

// CreateTourHandler stores a new tour.
func CreateTourHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var tour domain.CuratedTour
		if err := c.BodyParser(&tour); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		created, err := deps.Tours.Create(c.UserContext(), &tour)
		if err != nil {
			return errFrom(c, err)
		}
		c.Location("/v1/tours/" + created.ID)
		return c.Status(fiber.StatusCreated).JSON(created)
	}
}

// UpdateTourHandler replaces a tour.
func UpdateTourHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var tour domain.CuratedTour
		if err := c.BodyParser(&tour); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		updated, err := deps.Tours.Update(c.UserContext(), c.Params("id"), &tour)
		if err != nil {
			return errFrom(c, err)
		}
		return c.JSON(updated)
	}
}

// DeleteTourHandler removes a tour.
func DeleteTourHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := deps.Tours.Delete(c.UserContext(), c.Params("id")); err != nil {
			return errFrom(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// TourMapHandler returns the map restricted to a tour.
func TourMapHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		view, err := deps.Map.TourView(c.UserContext(), c.Params("id"))
		if err != nil {
			return errFrom(c, err)
		}
		return c.JSON(view)
	}
}

// ---- Map ----

// MapHandler returns every intervention placed on the 1000×1000 plane.
func MapHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		view, err := deps.Map.View(c.UserContext())
		if err != nil {
			return errFrom(c, err)
		}
		return c.JSON(view)
	}
}

// MapGeoJSONHandler returns the map as an RFC 7946 FeatureCollection.
func MapGeoJSONHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fc, err := deps.Map.Features(c.UserContext())
		if err != nil {
			return errFrom(c, err)
		}
		data, err := fc.MarshalJSON()
		if err != nil {
			return errFrom(c, err)
		}
		c.Set(fiber.HeaderContentType, "application/geo+json")
		return c.Send(data)
	}
}

// MapSVGHandler renders the map through a viewport.
// Query: zoom (clamped to 0.5–8), offset_x, offset_y, width, height.
func MapSVGHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		width := c.QueryInt("width", 1000)
		height := c.QueryInt("height", 1000)
		if width <= 0 || width > 4096 || height <= 0 || height > 4096 {
			return errBadRequest(c, "width and height must be between 1 and 4096")
		}

		opts := viewport.DefaultOptions()
		zoom := c.QueryFloat("zoom", opts.Zoom)
		opts.OffsetX = c.QueryFloat("offset_x", 0)
		opts.OffsetY = c.QueryFloat("offset_y", 0)
		for _, v := range []float64{zoom, opts.OffsetX, opts.OffsetY} {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return errBadRequest(c, "zoom, offset_x and offset_y must be finite numbers")
			}
		}
		vp := viewport.New(opts)
		vp.SetZoom(zoom)

		view, err := deps.Map.View(c.UserContext())
		if err != nil {
			return errFrom(c, err)
		}

		var buf bytes.Buffer
		if err := viewport.RenderSVG(&buf, *view, vp, width, height); err != nil {
			return errFrom(c, err)
		}

		state := vp.State()
		c.Set("X-Map-Zoom", formatFloat(state.Zoom))
		c.Set(fiber.HeaderContentType, "image/svg+xml")
		return c.Send(buf.Bytes())
	}
}

// ---- Memories ----

// ListMemoriesHandler returns the memory journal, newest first.
// Query: neighborhood (optional), limit.
func ListMemoriesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		memories, err := deps.Memories.List(c.UserContext(), c.Query("neighborhood"), c.QueryInt("limit", 0))
		if err != nil {
			return errFrom(c, err)
		}
		if memories == nil {
			memories = []domain.CitizenMemory{}
		}
		return c.JSON(fiber.Map{"data": memories})
	}
}

// PostMemoryHandler adds a memory to a neighborhood's journal.
func PostMemoryHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var m domain.CitizenMemory
		if err := c.BodyParser(&m); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		saved, err := deps.Memories.Post(c.UserContext(), &m,
			c.Get(fiber.HeaderUserAgent), primaryLanguage(c.Get(fiber.HeaderAcceptLanguage)))
		if err != nil {
			return errFrom(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(saved)
	}
}

// ---- Analytics & monitoring ----

type trackRequest struct {
	Event    domain.AnalyticsEventKind `json:"event"`
	Metadata map[string]any            `json:"metadata"`
}

// TrackEventHandler records an analytics event.
func TrackEventHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req trackRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		event, err := deps.Analytics.Track(c.UserContext(), req.Event, req.Metadata,
			c.Get(fiber.HeaderUserAgent), primaryLanguage(c.Get(fiber.HeaderAcceptLanguage)))
		if err != nil {
			return errFrom(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(event)
	}
}

// RecentEventsHandler returns the most recent analytics events, newest first.
func RecentEventsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		events, err := deps.Analytics.Recent(c.UserContext(), c.QueryInt("limit", 0))
		if err != nil {
			return errFrom(c, err)
		}
		return c.JSON(fiber.Map{"data": events})
	}
}

// LogErrorHandler records a client-side failure.
func LogErrorHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var entry domain.ErrorLog
		if err := c.BodyParser(&entry); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		if entry.UserAgent == "" {
			entry.UserAgent = c.Get(fiber.HeaderUserAgent)
		}

		if err := deps.Analytics.LogError(c.UserContext(), &entry); err != nil {
			return errFrom(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(entry)
	}
}

// RecentErrorsHandler returns the most recent client errors, newest first.
func RecentErrorsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		logs, err := deps.Analytics.Errors(c.UserContext(), c.QueryInt("limit", 0))
		if err != nil {
			return errFrom(c, err)
		}
		return c.JSON(fiber.Map{"data": logs})
	}
}

// primaryLanguage returns the first tag of an Accept-Language header.
func primaryLanguage(header string) string {
	lang, _, _ := strings.Cut(header, ",")
	lang, _, _ = strings.Cut(lang, ";")
	return strings.TrimSpace(lang)
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

package usecases

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/paulmach/orb/geojson"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/samirrijal/madar/internal/core/domain"
	"github.com/samirrijal/madar/internal/core/ports"
	"github.com/samirrijal/madar/internal/pkg/geospatial"
	"github.com/samirrijal/madar/internal/pkg/metrics"
)

// MapViewCacheKey is where the full map view is memoized.
const MapViewCacheKey = "map:view"

var tracer = otel.Tracer("github.com/samirrijal/madar/internal/core/usecases")

// MapService builds the normalized map view from stored interventions.
type MapService struct {
	interventions ports.InterventionRepository
	tours         ports.TourRepository
	cache         ports.CacheService
	ttlSeconds    int
}

// NewMapService creates a new MapService. cache may be nil.
func NewMapService(interventions ports.InterventionRepository, tours ports.TourRepository, cache ports.CacheService, ttlSeconds int) *MapService {
	if ttlSeconds <= 0 {
		ttlSeconds = 60
	}
	return &MapService{interventions: interventions, tours: tours, cache: cache, ttlSeconds: ttlSeconds}
}

// SplitForMap turns interventions into standalone markers and paths.
// PATH interventions with path points become paths; everything else is a marker.
func SplitForMap(items []domain.Intervention) ([]domain.Marker, []domain.Path) {
	markers := make([]domain.Marker, 0, len(items))
	var paths []domain.Path

	for i := range items {
		item := &items[i]
		if !item.IsRoute() {
			markers = append(markers, domain.Marker{
				ID:       item.ID,
				Location: item.Location,
				Type:     item.Type,
				Label:    item.Label(),
			})
			continue
		}

		p := domain.Path{
			ID:        item.ID,
			Type:      item.Type,
			Label:     item.Label(),
			Waypoints: make([]domain.Waypoint, 0, len(item.PathPoints)),
		}
		for _, pp := range item.PathPoints {
			p.Waypoints = append(p.Waypoints, domain.Waypoint{
				ID:       pp.ID,
				Location: pp.Location,
				Order:    pp.Order,
				Label:    pp.Name,
			})
		}
		paths = append(paths, p)
	}
	return markers, paths
}

// View returns the map of every intervention.
func (s *MapService) View(ctx context.Context) (*domain.MapView, error) {
	ctx, span := tracer.Start(ctx, "MapService.View")
	defer span.End()

	if s.cache != nil {
		if data, err := s.cache.Get(ctx, MapViewCacheKey); err == nil {
			var view domain.MapView
			if err := json.Unmarshal(data, &view); err == nil {
				metrics.CacheHits.WithLabelValues("map_view").Inc()
				span.SetAttributes(attribute.Bool("cache_hit", true))
				return &view, nil
			}
		}
		metrics.CacheMisses.WithLabelValues("map_view").Inc()
	}

	items, err := s.interventions.List(ctx, domain.InterventionFilter{})
	if err != nil {
		return nil, fmt.Errorf("list interventions: %w", err)
	}

	view := normalize(SplitForMap(items))
	span.SetAttributes(attribute.Int("markers", len(view.Markers)), attribute.Int("routes", len(view.Routes)))

	if s.cache != nil {
		if data, err := json.Marshal(view); err == nil {
			_ = s.cache.Set(ctx, MapViewCacheKey, data, s.ttlSeconds)
		}
	}

	return &view, nil
}

// TourView returns the map restricted to a tour's stops, plus one extra
// route (ID "tour:<id>") joining the stops in walking order.
func (s *MapService) TourView(ctx context.Context, tourID string) (*domain.MapView, error) {
	ctx, span := tracer.Start(ctx, "MapService.TourView")
	defer span.End()

	tour, err := s.tours.GetByID(ctx, tourID)
	if err != nil {
		return nil, err
	}

	items, err := s.interventions.GetByIDs(ctx, tour.Stops)
	if err != nil {
		return nil, fmt.Errorf("load tour stops: %w", err)
	}

	byID := make(map[string]domain.Intervention, len(items))
	for _, it := range items {
		byID[it.ID] = it
	}

	ordered := make([]domain.Intervention, 0, len(tour.Stops))
	walk := make([]domain.Waypoint, 0, len(tour.Stops))
	for i, id := range tour.Stops {
		it, ok := byID[id]
		if !ok {
			continue // stop was deleted after the tour was curated
		}
		ordered = append(ordered, it)
		walk = append(walk, domain.Waypoint{ID: it.ID, Location: stopAnchor(&it), Order: i})
	}

	view := normalize(SplitForMap(ordered))
	if view.Extent != nil && len(walk) > 1 {
		geo := make([]domain.GeoPoint, 0, len(walk))
		for _, w := range walk {
			geo = append(geo, w.Location)
		}
		view.Routes = append(view.Routes, domain.NormalizedRoute{
			ID:       "tour:" + tour.ID,
			Polyline: geospatial.AssemblePolyline(view.Extent, walk),
			LengthM:  geospatial.PathLength(geo),
		})
	}

	return &view, nil
}

// Features returns every intervention as GeoJSON in geographic coordinates.
func (s *MapService) Features(ctx context.Context) (*geojson.FeatureCollection, error) {
	ctx, span := tracer.Start(ctx, "MapService.Features")
	defer span.End()

	items, err := s.interventions.List(ctx, domain.InterventionFilter{})
	if err != nil {
		return nil, fmt.Errorf("list interventions: %w", err)
	}
	return geospatial.FeatureCollection(SplitForMap(items)), nil
}

// Invalidate drops the memoized map view.
func (s *MapService) Invalidate(ctx context.Context) error {
	return invalidateMapView(ctx, s.cache)
}

func invalidateMapView(ctx context.Context, cache ports.CacheService) error {
	if cache == nil {
		return nil
	}
	return cache.Delete(ctx, MapViewCacheKey)
}

func normalize(markers []domain.Marker, paths []domain.Path) domain.MapView {
	view := geospatial.NormalizeForDisplay(markers, paths)
	metrics.MapNormalizations.Inc()
	metrics.MapPoints.Observe(float64(len(view.Markers)))
	return view
}

// stopAnchor is where a tour line touches an intervention: the first
// waypoint of a route, the marker location otherwise. Routes' own
// location is not part of the map extent.
func stopAnchor(it *domain.Intervention) domain.GeoPoint {
	if !it.IsRoute() {
		return it.Location
	}
	pts := make([]domain.Waypoint, 0, len(it.PathPoints))
	for _, pp := range it.PathPoints {
		pts = append(pts, domain.Waypoint{Location: pp.Location, Order: pp.Order})
	}
	return geospatial.SortWaypoints(pts)[0].Location
}

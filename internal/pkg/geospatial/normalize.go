package geospatial

import (
	"math"

	"github.com/paulmach/orb"

	"github.com/samirrijal/madar/internal/core/domain"
)

const (
	// PlaneSize is the side of the square logical plane markers are placed on.
	PlaneSize = 1000.0
	// FallbackRange replaces a collapsed latitude or longitude range (degrees).
	FallbackRange = 0.01
)

// ComputeExtent returns the joint bounding box of points. It returns nil
// for an empty set. A NaN coordinate anywhere makes that axis of the extent
// NaN, whatever its position in points.
func ComputeExtent(points []domain.GeoPoint) *domain.Extent {
	if len(points) == 0 {
		return nil
	}

	var nanLat, nanLon bool
	mp := make(orb.MultiPoint, 0, len(points))
	for _, p := range points {
		nanLat = nanLat || math.IsNaN(p.Lat)
		nanLon = nanLon || math.IsNaN(p.Lon)
		mp = append(mp, orb.Point{p.Lon, p.Lat})
	}
	b := mp.Bound()
	if nanLat {
		b.Min[1], b.Max[1] = math.NaN(), math.NaN()
	}
	if nanLon {
		b.Min[0], b.Max[0] = math.NaN(), math.NaN()
	}

	ext := &domain.Extent{
		Bounds: domain.Bounds{
			MinLat: b.Min.Lat(),
			MinLon: b.Min.Lon(),
			MaxLat: b.Max.Lat(),
			MaxLon: b.Max.Lon(),
		},
	}
	ext.LatRange = rangeOrFallback(ext.MaxLat - ext.MinLat)
	ext.LonRange = rangeOrFallback(ext.MaxLon - ext.MinLon)
	return ext
}

func rangeOrFallback(r float64) float64 {
	if r == 0 || math.IsNaN(r) {
		return FallbackRange
	}
	return r
}

// Normalize places p on the plane. Y is inverted: north is up.
// A point coinciding with the minimum corner lands on (0, PlaneSize).
func Normalize(ext *domain.Extent, p domain.GeoPoint) domain.NormalizedPoint {
	return domain.NormalizedPoint{
		NX: ((p.Lon - ext.MinLon) / ext.LonRange) * PlaneSize,
		NY: (1 - (p.Lat-ext.MinLat)/ext.LatRange) * PlaneSize,
	}
}

// CollectPoints flattens every marker location and every waypoint into
// one list, which is what the joint extent is computed over.
func CollectPoints(markers []domain.Marker, paths []domain.Path) []domain.GeoPoint {
	n := len(markers)
	for _, p := range paths {
		n += len(p.Waypoints)
	}

	points := make([]domain.GeoPoint, 0, n)
	for _, m := range markers {
		points = append(points, m.Location)
	}
	for _, p := range paths {
		for _, w := range p.Waypoints {
			points = append(points, w.Location)
		}
	}
	return points
}

// NormalizeForDisplay places markers and path polylines on one shared
// plane. Standalone markers come first in input order, followed by the
// waypoints of each path in traversal order.
func NormalizeForDisplay(markers []domain.Marker, paths []domain.Path) domain.MapView {
	view := domain.MapView{
		Markers: []domain.NormalizedMarker{},
		Routes:  []domain.NormalizedRoute{},
	}

	ext := ComputeExtent(CollectPoints(markers, paths))
	if ext == nil {
		return view
	}
	view.Extent = ext

	for _, m := range markers {
		pos := Normalize(ext, m.Location)
		view.Markers = append(view.Markers, domain.NormalizedMarker{
			ID:    m.ID,
			NX:    pos.NX,
			NY:    pos.NY,
			Type:  m.Type,
			Label: m.Label,
		})
	}

	for _, p := range paths {
		sorted := SortWaypoints(p.Waypoints)
		route := domain.NormalizedRoute{
			ID:       p.ID,
			Polyline: make([]domain.NormalizedPoint, 0, len(sorted)),
		}
		geo := make([]domain.GeoPoint, 0, len(sorted))
		for _, w := range sorted {
			pos := Normalize(ext, w.Location)
			route.Polyline = append(route.Polyline, pos)
			geo = append(geo, w.Location)
			view.Markers = append(view.Markers, domain.NormalizedMarker{
				ID:        w.ID,
				NX:        pos.NX,
				NY:        pos.NY,
				Type:      p.Type,
				Label:     w.Label,
				RouteID:   p.ID,
				PathPoint: true,
			})
		}
		route.LengthM = PathLength(geo)
		view.Routes = append(view.Routes, route)
	}

	return view
}

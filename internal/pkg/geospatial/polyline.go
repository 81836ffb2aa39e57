package geospatial

import (
	"sort"

	"github.com/samirrijal/madar/internal/core/domain"
)

// SortWaypoints returns a copy of ws ordered by Order ascending.
// Waypoints sharing an order keep their input order.
func SortWaypoints(ws []domain.Waypoint) []domain.Waypoint {
	sorted := make([]domain.Waypoint, len(ws))
	copy(sorted, ws)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Order < sorted[j].Order
	})
	return sorted
}

// AssemblePolyline maps a path's waypoints, in traversal order, onto the plane.
func AssemblePolyline(ext *domain.Extent, ws []domain.Waypoint) []domain.NormalizedPoint {
	sorted := SortWaypoints(ws)
	line := make([]domain.NormalizedPoint, 0, len(sorted))
	for _, w := range sorted {
		line = append(line, Normalize(ext, w.Location))
	}
	return line
}

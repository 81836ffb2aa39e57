package geospatial

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/samirrijal/madar/internal/core/domain"
)

// FeatureCollection exports the map in geographic coordinates. Every
// marker and waypoint becomes a Point feature and every path a
// LineString; plane positions ride along as nx/ny properties.
func FeatureCollection(markers []domain.Marker, paths []domain.Path) *geojson.FeatureCollection {
	view := NormalizeForDisplay(markers, paths)
	fc := geojson.NewFeatureCollection()

	// view.Markers holds the standalone markers first, then each path's
	// waypoints in sorted order, which is the order we walk below.
	i := 0
	for _, m := range markers {
		f := geojson.NewFeature(orb.Point{m.Location.Lon, m.Location.Lat})
		setPlaneProps(f, view.Markers[i])
		fc.Append(f)
		i++
	}

	for j, p := range paths {
		sorted := SortWaypoints(p.Waypoints)
		line := make(orb.LineString, 0, len(sorted))
		for _, w := range sorted {
			pt := orb.Point{w.Location.Lon, w.Location.Lat}
			line = append(line, pt)

			f := geojson.NewFeature(pt)
			setPlaneProps(f, view.Markers[i])
			fc.Append(f)
			i++
		}

		f := geojson.NewFeature(line)
		f.ID = p.ID
		f.Properties["id"] = p.ID
		f.Properties["type"] = string(p.Type)
		f.Properties["label"] = p.Label
		f.Properties["length_m"] = view.Routes[j].LengthM
		fc.Append(f)
	}

	if view.Extent != nil {
		fc.BBox = geojson.NewBBox(orb.Bound{
			Min: orb.Point{view.Extent.MinLon, view.Extent.MinLat},
			Max: orb.Point{view.Extent.MaxLon, view.Extent.MaxLat},
		})
	}
	return fc
}

func setPlaneProps(f *geojson.Feature, m domain.NormalizedMarker) {
	f.ID = m.ID
	f.Properties["id"] = m.ID
	f.Properties["type"] = string(m.Type)
	f.Properties["label"] = m.Label
	f.Properties["nx"] = m.NX
	f.Properties["ny"] = m.NY
	if m.PathPoint {
		f.Properties["route_id"] = m.RouteID
		f.Properties["path_point"] = true
	}
}

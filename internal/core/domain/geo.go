package domain

// GeoPoint represents a geographic coordinate (WGS 84).
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Bounds represents a geographic bounding box.
type Bounds struct {
	MinLat float64 `json:"min_lat"`
	MinLon float64 `json:"min_lon"`
	MaxLat float64 `json:"max_lat"`
	MaxLon float64 `json:"max_lon"`
}

// Marker is a free-standing point of interest placed on the map.
type Marker struct {
	ID       string           `json:"id"`
	Location GeoPoint         `json:"location"`
	Type     InterventionType `json:"type"`
	Label    string           `json:"label,omitempty"`
}

// Waypoint is one ordered point of a path.
type Waypoint struct {
	ID       string   `json:"id"`
	Location GeoPoint `json:"location"`
	Order    int      `json:"order"`
	Label    string   `json:"label,omitempty"`
}

// Path is an ordered route drawn as a polyline.
// Order values are unique within a path; nothing enforces contiguity.
type Path struct {
	ID        string           `json:"id"`
	Type      InterventionType `json:"type"`
	Label     string           `json:"label,omitempty"`
	Waypoints []Waypoint       `json:"waypoints"`
}

// NormalizedPoint is a position on the 1000x1000 logical plane.
type NormalizedPoint struct {
	NX float64 `json:"nx"`
	NY float64 `json:"ny"`
}

// NormalizedMarker is a marker (or path waypoint) placed on the plane.
type NormalizedMarker struct {
	ID        string           `json:"id"`
	NX        float64          `json:"nx"`
	NY        float64          `json:"ny"`
	Type      InterventionType `json:"type"`
	Label     string           `json:"label,omitempty"`
	RouteID   string           `json:"route_id,omitempty"`
	PathPoint bool             `json:"path_point"`
}

// NormalizedRoute is a path polyline on the plane, vertices in traversal order.
type NormalizedRoute struct {
	ID       string            `json:"id"`
	Polyline []NormalizedPoint `json:"polyline"`
	LengthM  float64           `json:"length_m"` // great-circle length
}

// Extent is the joint bounding box used as the normalization denominator.
// LatRange and LonRange carry the 0.01 fallback when the box collapses.
type Extent struct {
	Bounds
	LatRange float64 `json:"lat_range"`
	LonRange float64 `json:"lon_range"`
}

// MapView is everything the client needs to draw the map.
type MapView struct {
	Markers []NormalizedMarker `json:"markers"`
	Routes  []NormalizedRoute  `json:"routes"`
	Extent  *Extent            `json:"extent"`
}

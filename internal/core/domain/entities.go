package domain

import (
	"time"
)

// InterventionType is the installation kind of an intervention.
type InterventionType string

const (
	InterventionBench   InterventionType = "BENCH"
	InterventionMural   InterventionType = "MURAL"
	InterventionPath    InterventionType = "PATH"
	InterventionDoor    InterventionType = "DOOR"
	InterventionGallery InterventionType = "GALLERY"
)

// Valid reports whether t is one of the known installation kinds.
func (t InterventionType) Valid() bool {
	switch t {
	case InterventionBench, InterventionMural, InterventionPath, InterventionDoor, InterventionGallery:
		return true
	}
	return false
}

// MediaType is the primary medium an intervention plays back.
type MediaType string

const (
	MediaVideo      MediaType = "video"
	MediaAudio      MediaType = "audio"
	MediaImage      MediaType = "image"
	MediaMultimodal MediaType = "multimodal"
)

func (m MediaType) Valid() bool {
	switch m {
	case MediaVideo, MediaAudio, MediaImage, MediaMultimodal:
		return true
	}
	return false
}

// InterventionStatus is the operational state of an installation.
type InterventionStatus string

const (
	StatusActive      InterventionStatus = "active"
	StatusMaintenance InterventionStatus = "maintenance"
	StatusPlanned     InterventionStatus = "planned"
)

func (s InterventionStatus) Valid() bool {
	switch s {
	case StatusActive, StatusMaintenance, StatusPlanned:
		return true
	}
	return false
}

// TourTheme groups tours and interventions by subject.
type TourTheme string

const (
	ThemeHeritage     TourTheme = "heritage"
	ThemeGastronomy   TourTheme = "gastronomy"
	ThemeArt          TourTheme = "art"
	ThemeArchitecture TourTheme = "architecture"
)

func (t TourTheme) Valid() bool {
	switch t {
	case ThemeHeritage, ThemeGastronomy, ThemeArt, ThemeArchitecture:
		return true
	}
	return false
}

// PathPoint is a stop along a PATH intervention.
type PathPoint struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Location GeoPoint `json:"location"`
	Order    int      `json:"order"`
}

// AssetProvider is where an external asset is hosted.
type AssetProvider string

const (
	ProviderDrive   AssetProvider = "drive"
	ProviderDropbox AssetProvider = "dropbox"
	ProviderCustom  AssetProvider = "custom"
	ProviderCloud   AssetProvider = "cloud"
)

func (p AssetProvider) Valid() bool {
	switch p {
	case ProviderDrive, ProviderDropbox, ProviderCustom, ProviderCloud:
		return true
	}
	return false
}

// ExternalAsset links curator material hosted outside the platform.
type ExternalAsset struct {
	ID       string        `json:"id"`
	Label    string        `json:"label"`
	URL      string        `json:"url"`
	Provider AssetProvider `json:"provider"`
}

// Intervention is a creative installation placed in public space.
type Intervention struct {
	ID             string             `json:"id"`
	Type           InterventionType   `json:"type"`
	MediaType      MediaType          `json:"media_type"`
	Title          string             `json:"title,omitempty"`
	Place          string             `json:"place"`
	Location       GeoPoint           `json:"location"`
	Status         InterventionStatus `json:"status"`
	InteractCount  int                `json:"interact_count"`
	MediaURL       string             `json:"media_url,omitempty"`
	AudioURL       string             `json:"audio_url,omitempty"`
	PathPoints     []PathPoint        `json:"path_points,omitempty"`
	Themes         []TourTheme        `json:"themes,omitempty"`
	ExternalAssets []ExternalAsset    `json:"external_assets,omitempty"`
	CuratorNotes   string             `json:"curator_notes,omitempty"`
	LastUpdated    time.Time          `json:"last_updated"`
	CreatedAt      time.Time          `json:"created_at"`
}

// IsRoute reports whether the intervention is drawn as a polyline
// rather than a single marker.
func (i *Intervention) IsRoute() bool {
	return i.Type == InterventionPath && len(i.PathPoints) > 0
}

// Label returns the best human-readable name for the map.
func (i *Intervention) Label() string {
	if i.Title != "" {
		return i.Title
	}
	return i.Place
}

// CuratedTour is an ordered selection of interventions.
type CuratedTour struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Stops       []string  `json:"stops"` // intervention IDs, in walking order
	Theme       TourTheme `json:"theme"`
	IsOfficial  bool      `json:"is_official"`
	CreatedAt   time.Time `json:"created_at"`
}

// CitizenMemory is a short story a visitor leaves at a bench, tied to
// the neighborhood it is about.
type CitizenMemory struct {
	ID           string    `json:"id"`
	Text         string    `json:"text"`
	VisitorName  string    `json:"visitor_name"`
	Neighborhood string    `json:"neighborhood"`
	CreatedAt    time.Time `json:"created_at"`
}

// InterventionFilter narrows intervention listings. Empty fields match all.
type InterventionFilter struct {
	Type   InterventionType
	Status InterventionStatus
	Theme  TourTheme
}

// AnalyticsEventKind names a tracked user interaction.
type AnalyticsEventKind string

const (
	EventViewIntervention AnalyticsEventKind = "view_intervention"
	EventStartTour        AnalyticsEventKind = "start_tour"
	EventPostMemory       AnalyticsEventKind = "post_memory"
	EventGenerateArt      AnalyticsEventKind = "generate_art"
	EventQRScan           AnalyticsEventKind = "qr_scan"
)

func (k AnalyticsEventKind) Valid() bool {
	switch k {
	case EventViewIntervention, EventStartTour, EventPostMemory, EventGenerateArt, EventQRScan:
		return true
	}
	return false
}

// AnalyticsEvent is a single tracked interaction.
type AnalyticsEvent struct {
	ID        string             `json:"id"`
	Event     AnalyticsEventKind `json:"event"`
	Metadata  map[string]any     `json:"metadata"`
	Timestamp time.Time          `json:"timestamp"`
}

// ErrorLog is a client-reported failure kept for the monitoring view.
type ErrorLog struct {
	Timestamp time.Time      `json:"timestamp"`
	Message   string         `json:"message"`
	Stack     string         `json:"stack,omitempty"`
	Context   map[string]any `json:"context,omitempty"`
	UserAgent string         `json:"user_agent,omitempty"`
}

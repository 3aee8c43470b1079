package domain

import (
	"context"
	"time"

	"github.com/couchcryptid/harbinger/internal/analysis"
)

// RawEvent represents an unprocessed message from the source topic.
type RawEvent struct {
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Topic     string
	Partition int
	Offset    int64
	Timestamp time.Time
	Commit    func(ctx context.Context) error
}

// Report is a citizen incident report as submitted through the API or the
// source topic. Image holds the encoded evidence photo, base64 in JSON.
type Report struct {
	Reporter          string    `json:"reporter"`
	Location          string    `json:"location"`
	DisasterType      string    `json:"disaster_type"`
	Severity          string    `json:"severity"`
	Description       string    `json:"description"`
	Context           string    `json:"context,omitempty"`
	ContactShared     bool      `json:"contact_shared,omitempty"`
	OceanAlerts       bool      `json:"ocean_alerts,omitempty"`
	EmergencyPriority bool      `json:"emergency_priority,omitempty"`
	Image             []byte    `json:"image,omitempty"`
	ReportedAt        time.Time `json:"reported_at,omitzero"`
}

// Geo represents a WGS-84 latitude/longitude coordinate pair.
type Geo struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// IsZero reports whether no coordinate has been set.
func (g Geo) IsZero() bool { return g.Lat == 0 && g.Lon == 0 }

// Status is the verification state of an incident.
type Status string

const (
	StatusPending     Status = "pending"
	StatusVerified    Status = "verified"
	StatusRejected    Status = "rejected"
	StatusUnderReview Status = "under_review"
)

// Geo sources record where an incident's coordinates came from.
const (
	GeoSourceEXIF    = "exif"
	GeoSourceTable   = "table"
	GeoSourceMapbox  = "mapbox"
	GeoSourceState   = "state"
	GeoSourceDefault = "default"
	GeoSourceFailed  = "failed"
)

// Incident is a triaged report: the submitted fields plus evidence analysis,
// priority and the responder workflow state.
type Incident struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Reporter    string `json:"reporter"`
	Location    string `json:"location"`
	Geo         Geo    `json:"geo"`
	GeoSource   string `json:"geo_source,omitempty"`
	GeoNote     string `json:"geo_note,omitempty"`
	Description string `json:"description,omitempty"`
	Context     string `json:"context,omitempty"`

	ReportedType   analysis.DisasterType `json:"reported_type"`
	ClassifiedType analysis.DisasterType `json:"classified_type"`
	Severity       analysis.Severity     `json:"severity"`
	Confidence     float64               `json:"confidence"`
	Explanation    string                `json:"explanation,omitempty"`

	HasImage            bool    `json:"has_image"`
	ImageSHA256         string  `json:"image_sha256,omitempty"`
	Authentic           bool    `json:"authentic"`
	AuthenticityScore   float64 `json:"authenticity_score"`
	AuthenticityVerdict string  `json:"authenticity_verdict,omitempty"`
	Camera              string  `json:"camera,omitempty"`
	CaptureNote         string  `json:"capture_note,omitempty"`
	RecentCapture       bool    `json:"recent_capture"`

	Priority         int `json:"priority"`
	OceanHazardLevel int `json:"ocean_hazard_level"`

	ContactShared     bool `json:"contact_shared"`
	OceanAlerts       bool `json:"ocean_alerts"`
	EmergencyPriority bool `json:"emergency_priority"`

	Status            Status     `json:"status"`
	VerifiedBy        string     `json:"verified_by,omitempty"`
	VerificationNotes string     `json:"verification_notes,omitempty"`
	VerifiedAt        *time.Time `json:"verified_at,omitempty"`
	Volunteer         string     `json:"volunteer,omitempty"`
	AssignedAt        *time.Time `json:"assigned_at,omitempty"`
}

// Action is an entry in the incident action log.
type Action struct {
	ID         int64     `json:"id"`
	IncidentID string    `json:"incident_id"`
	Kind       string    `json:"kind"`
	Actor      string    `json:"actor"`
	Details    string    `json:"details,omitempty"`
	At         time.Time `json:"at"`
}

// Action kinds.
const (
	ActionReported = "reported"
	ActionVerified = "verified"
	ActionAssigned = "assigned"
)

package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/couchcryptid/harbinger/internal/analysis"
)

// ErrEmptyReport is returned for reports with neither a description nor an
// evidence image.
var ErrEmptyReport = errors.New("report has neither description nor image")

const anonymousReporter = "anonymous"

var knownSeverities = []analysis.Severity{
	analysis.Critical, analysis.High, analysis.Medium, analysis.Low,
}

var knownDisasterTypes = []analysis.DisasterType{
	analysis.Flood, analysis.Tsunami, analysis.CoastalSurge, analysis.StormSurge,
	analysis.HarmfulAlgalBloom, analysis.Wildfire, analysis.CycloneStorm,
	analysis.BuildingCollapse, analysis.Landslide, analysis.IndustrialAccident,
	analysis.Other,
}

// ParseRawEvent deserializes a RawEvent's value into a normalized Report.
// The message timestamp stands in for a missing ReportedAt.
func ParseRawEvent(raw RawEvent) (Report, error) {
	var r Report
	if err := json.Unmarshal(raw.Value, &r); err != nil {
		return Report{}, fmt.Errorf("parse raw event: %w", err)
	}
	if r.ReportedAt.IsZero() {
		r.ReportedAt = raw.Timestamp
	}
	return NormalizeReport(r)
}

// NormalizeReport trims free-text fields, canonicalizes severity and disaster
// type labels, and rejects reports that carry no evidence at all.
func NormalizeReport(r Report) (Report, error) {
	r.Reporter = strings.TrimSpace(r.Reporter)
	if r.Reporter == "" {
		r.Reporter = anonymousReporter
	}
	r.Location = strings.TrimSpace(r.Location)
	r.Description = strings.TrimSpace(r.Description)
	r.Context = strings.TrimSpace(r.Context)
	r.Severity = string(NormalizeSeverity(r.Severity))
	r.DisasterType = string(NormalizeDisasterType(r.DisasterType))

	if r.Description == "" && len(r.Image) == 0 {
		return Report{}, ErrEmptyReport
	}
	return r, nil
}

// NormalizeSeverity matches a severity label case-insensitively. Unknown
// labels are kept so priority scoring can apply its default base.
func NormalizeSeverity(value string) analysis.Severity {
	value = strings.TrimSpace(value)
	for _, s := range knownSeverities {
		if strings.EqualFold(value, string(s)) {
			return s
		}
	}
	return analysis.Severity(value)
}

// NormalizeDisasterType matches a disaster label case-insensitively.
// Unknown labels are kept verbatim.
func NormalizeDisasterType(value string) analysis.DisasterType {
	value = strings.TrimSpace(value)
	for _, d := range knownDisasterTypes {
		if strings.EqualFold(value, string(d)) {
			return d
		}
	}
	return analysis.DisasterType(value)
}

// ImageSHA256 returns the hex SHA-256 of image, or "" when there is none.
func ImageSHA256(image []byte) string {
	if len(image) == 0 {
		return ""
	}
	sum := sha256.Sum256(image)
	return hex.EncodeToString(sum[:])
}

// IncidentID produces a deterministic ID from a report's identifying
// fields. Resubmitting the same report yields the same ID, which makes store
// writes and topic replays idempotent.
func IncidentID(r Report) string {
	input := fmt.Sprintf("%s|%s|%s|%s", r.Reporter, r.Location, r.Description, ImageSHA256(r.Image))
	hash := sha256.Sum256([]byte(input))
	return "inc-" + hex.EncodeToString(hash[:8])
}

// NewIncident seeds an incident from a normalized report. Analysis fields
// are left for the triage service to fill in.
func NewIncident(r Report) Incident {
	created := r.ReportedAt
	if created.IsZero() {
		created = Now()
	}
	created = created.UTC().Truncate(time.Second)

	return Incident{
		ID:                IncidentID(r),
		CreatedAt:         created,
		UpdatedAt:         created,
		Reporter:          r.Reporter,
		Location:          r.Location,
		Description:       r.Description,
		Context:           r.Context,
		ReportedType:      analysis.DisasterType(r.DisasterType),
		Severity:          analysis.Severity(r.Severity),
		HasImage:          len(r.Image) > 0,
		ImageSHA256:       ImageSHA256(r.Image),
		ContactShared:     r.ContactShared,
		OceanAlerts:       r.OceanAlerts,
		EmergencyPriority: r.EmergencyPriority,
		Status:            StatusPending,
	}
}

// Package evidence reads the metadata embedded in a report's photo: GPS
// position, capture time and camera identity.
package evidence

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/rwcarlsen/goexif/exif"
)

const (
	recentWindow = 24 * time.Hour
	staleWindow  = 7 * 24 * time.Hour

	noTimestampNote = "No timestamp metadata found"
	badTimestamp    = "Invalid timestamp format detected"
)

// Camera identifies the device that produced an image.
type Camera struct {
	Make     string `json:"make,omitempty"`
	Model    string `json:"model,omitempty"`
	Software string `json:"software,omitempty"`
}

// String joins make and model, e.g. "Canon EOS 90D".
func (c Camera) String() string {
	return strings.TrimSpace(c.Make + " " + c.Model)
}

// Evidence is the metadata recovered from an image.
type Evidence struct {
	HasGPS      bool      `json:"has_gps"`
	Lat         float64   `json:"lat,omitempty"`
	Lon         float64   `json:"lon,omitempty"`
	CapturedAt  time.Time `json:"captured_at,omitzero"`
	Recent      bool      `json:"recent"`
	RecencyNote string    `json:"recency_note"`
	Camera      Camera    `json:"camera,omitzero"`
}

// Inspect decodes EXIF metadata from an encoded image. Images without EXIF
// (PNG, stripped JPEG) yield an Evidence with only the recency note set.
func Inspect(data []byte, now time.Time) Evidence {
	ev := Evidence{RecencyNote: noTimestampNote}

	x, err := exif.Decode(bytes.NewReader(data))
	if err != nil || x == nil {
		return ev
	}

	if lat, lon, err := x.LatLong(); err == nil {
		ev.HasGPS, ev.Lat, ev.Lon = true, lat, lon
	}

	ev.Camera = Camera{
		Make:     tagString(x, exif.Make),
		Model:    tagString(x, exif.Model),
		Software: tagString(x, exif.Software),
	}

	captured, err := x.DateTime()
	switch {
	case err == nil:
		ev.CapturedAt = captured
		ev.Recent, ev.RecencyNote = Recency(captured, now)
	case hasTimestampTag(x):
		ev.RecencyNote = badTimestamp
	}
	return ev
}

// Recency judges how fresh a capture time is relative to now. Images under a
// day old are recent, under a week old are accepted with a warning, and
// anything older is outdated. Capture times in the future count as zero age.
func Recency(captured, now time.Time) (bool, string) {
	age := max(now.Sub(captured), 0)
	switch {
	case age < recentWindow:
		h := int(age / time.Hour)
		m := int(age % time.Hour / time.Minute)
		return true, fmt.Sprintf("Recent image (%dh %dm old)", h, m)
	case age < staleWindow:
		return true, fmt.Sprintf("Image is %d days old", int(age/recentWindow))
	default:
		return false, fmt.Sprintf("Image is %d days old (outdated)", int(age/recentWindow))
	}
}

func hasTimestampTag(x *exif.Exif) bool {
	if _, err := x.Get(exif.DateTimeOriginal); err == nil {
		return true
	}
	_, err := x.Get(exif.DateTime)
	return err == nil
}

func tagString(x *exif.Exif, name exif.FieldName) string {
	tag, err := x.Get(name)
	if err != nil {
		return ""
	}
	s, err := tag.StringVal()
	if err != nil {
		s = tag.String()
	}
	return strings.TrimSpace(strings.TrimRight(s, "\x00"))
}

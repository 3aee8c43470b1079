// Package geocode resolves free-text incident locations to coordinates using
// a built-in table of Indian places, with an optional Mapbox fallback.
package geocode

import (
	"context"
	"log/slog"
	"math"
	"strings"

	"github.com/couchcryptid/harbinger/internal/domain"
	"github.com/couchcryptid/harbinger/internal/observability"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	minWordOverlap = 0.3

	// Reverse lookups farther than this from every table entry go to the
	// fallback geocoder when one is configured.
	maxReverseKm  = 100.0
	earthRadiusKm = 6371.0
)

// Table implements domain.Geocoder over the built-in place list.
type Table struct {
	fallback domain.Geocoder
	logger   *slog.Logger
	metrics  *observability.Metrics
}

// NewTable creates a table geocoder. fallback may be nil; when set it is
// consulted after the city table and before state centres.
func NewTable(fallback domain.Geocoder, logger *slog.Logger, metrics *observability.Metrics) *Table {
	return &Table{fallback: fallback, logger: logger, metrics: metrics}
}

// ForwardGeocode resolves a location description. It always returns
// coordinates: unmatched input falls back to state centres and finally the
// centre of India. The error is always nil.
func (t *Table) ForwardGeocode(ctx context.Context, query string) (domain.GeocodingResult, error) {
	result := t.resolve(ctx, query)
	t.metrics.GeocodeLookups.WithLabelValues(result.Source).Inc()
	return result, nil
}

func (t *Table) resolve(ctx context.Context, query string) domain.GeocodingResult {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return fromPlace(indiaCenter, domain.GeoSourceDefault, 0.1, "No location provided - using India center")
	}

	if p, kind, conf, ok := matchPlace(q); ok {
		return fromPlace(p, domain.GeoSourceTable, conf, kind+" match found: "+title(p.name))
	}

	if t.fallback != nil {
		r, err := t.fallback.ForwardGeocode(ctx, query+", India")
		switch {
		case err != nil:
			t.logger.Warn("fallback geocoding failed", "location", query, "error", err)
		case r.Lat != 0 || r.Lon != 0:
			r.Source = domain.GeoSourceMapbox
			r.Note = "Geocoded: " + firstComponent(r.FormattedAddress, r.PlaceName)
			return r
		}
	}

	for _, s := range states {
		if strings.Contains(q, s.name) {
			return fromPlace(s, domain.GeoSourceState, 0.5, "State-level match: "+title(s.name))
		}
	}

	return fromPlace(indiaCenter, domain.GeoSourceDefault, 0.1, "Location not found, using approximate coordinates")
}

// matchPlace tries, in order: exact name, substring either way, and the best
// word overlap above minWordOverlap.
func matchPlace(q string) (place, string, float64, bool) {
	for _, p := range places {
		if p.name == q {
			return p, "Exact", 1.0, true
		}
	}
	for _, p := range places {
		if strings.Contains(p.name, q) || strings.Contains(q, p.name) {
			return p, "Smart", 0.8, true
		}
	}

	words := wordSet(q)
	var (
		best      place
		bestScore float64
	)
	for _, p := range places {
		candidate := wordSet(p.name)
		common := 0
		for w := range words {
			if _, ok := candidate[w]; ok {
				common++
			}
		}
		score := float64(common) / float64(max(len(words), len(candidate)))
		if score > bestScore && score > minWordOverlap {
			best, bestScore = p, score
		}
	}
	if bestScore > 0 {
		return best, "Smart", bestScore, true
	}
	return place{}, "", 0, false
}

// ReverseGeocode returns the nearest table place. Points far from every
// entry are passed to the fallback geocoder when one is configured.
func (t *Table) ReverseGeocode(ctx context.Context, lat, lon float64) (domain.GeocodingResult, error) {
	nearest, dist := places[0], math.Inf(1)
	for _, p := range places {
		if d := haversineKm(lat, lon, p.lat, p.lon); d < dist {
			nearest, dist = p, d
		}
	}

	if dist > maxReverseKm && t.fallback != nil {
		r, err := t.fallback.ReverseGeocode(ctx, lat, lon)
		if err == nil && r.PlaceName != "" {
			r.Source = domain.GeoSourceMapbox
			return r, nil
		}
		if err != nil {
			t.logger.Warn("fallback reverse geocoding failed", "lat", lat, "lon", lon, "error", err)
		}
	}

	r := fromPlace(nearest, domain.GeoSourceTable, math.Max(0, 1-dist/maxReverseKm), "")
	r.Lat, r.Lon = lat, lon
	r.Note = "Nearest known place: " + r.PlaceName
	return r, nil
}

func fromPlace(p place, source string, confidence float64, note string) domain.GeocodingResult {
	name := title(p.name)
	return domain.GeocodingResult{
		Lat:              p.lat,
		Lon:              p.lon,
		PlaceName:        name,
		FormattedAddress: name + ", India",
		Confidence:       confidence,
		Source:           source,
		Note:             note,
	}
}

// title upper-cases the first letter of each word. Casers are stateful, so
// each call gets its own.
func title(s string) string { return cases.Title(language.English).String(s) }

func wordSet(s string) map[string]struct{} {
	fields := strings.Fields(s)
	set := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		set[f] = struct{}{}
	}
	return set
}

func firstComponent(address, fallback string) string {
	if head, _, _ := strings.Cut(address, ","); strings.TrimSpace(head) != "" {
		return strings.TrimSpace(head)
	}
	return fallback
}

func haversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	rad := math.Pi / 180
	dLat := (lat2 - lat1) * rad
	dLon := (lon2 - lon1) * rad
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*rad)*math.Cos(lat2*rad)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusKm * math.Asin(math.Sqrt(a))
}

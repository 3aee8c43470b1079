package domain

import (
	"context"
	"log/slog"
)

// EnrichWithGeocoding fills in an incident's coordinates. Incidents that
// already carry coordinates (from image GPS) are reverse geocoded for a
// place note only. If geocoder is nil the incident is returned unchanged;
// if geocoding fails GeoSource is set to "failed" (graceful degradation).
func EnrichWithGeocoding(ctx context.Context, inc Incident, geocoder Geocoder, logger *slog.Logger) Incident {
	if geocoder == nil {
		return inc
	}

	if !inc.Geo.IsZero() {
		result, err := geocoder.ReverseGeocode(ctx, inc.Geo.Lat, inc.Geo.Lon)
		if err != nil {
			logger.Warn("reverse geocoding failed",
				"incident_id", inc.ID,
				"lat", inc.Geo.Lat,
				"lon", inc.Geo.Lon,
				"error", err,
			)
			return inc
		}
		if result.PlaceName != "" {
			inc.GeoNote = "Image GPS near " + result.PlaceName
		}
		return inc
	}

	result, err := geocoder.ForwardGeocode(ctx, inc.Location)
	if err != nil {
		logger.Warn("forward geocoding failed",
			"incident_id", inc.ID,
			"location", inc.Location,
			"error", err,
		)
		inc.GeoSource = GeoSourceFailed
		return inc
	}
	inc.Geo = Geo{Lat: result.Lat, Lon: result.Lon}
	inc.GeoSource = result.Source
	inc.GeoNote = result.Note
	return inc
}

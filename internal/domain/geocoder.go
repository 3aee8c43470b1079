package domain

import "context"

// GeocodingResult is a resolved location. Source and Note say how it was
// found so responders can judge how far to trust the pin.
type GeocodingResult struct {
	Lat              float64
	Lon              float64
	FormattedAddress string
	PlaceName        string
	Confidence       float64 // 0-1
	Source           string  // one of the GeoSource constants
	Note             string
}

// Geocoder resolves free-text incident locations and names the place behind
// image GPS coordinates.
type Geocoder interface {
	ForwardGeocode(ctx context.Context, query string) (GeocodingResult, error)
	ReverseGeocode(ctx context.Context, lat, lon float64) (GeocodingResult, error)
}

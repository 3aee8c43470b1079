//go:build mapbox

package geocode

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/couchcryptid/harbinger/internal/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// These tests hit the real Mapbox API and require MAPBOX_TOKEN.
// Run with: go test -tags=mapbox ./internal/adapter/geocode/ -v -count=1

func smokeClient(t *testing.T) *MapboxClient {
	t.Helper()
	token := os.Getenv("MAPBOX_TOKEN")
	if token == "" {
		t.Fatal("MAPBOX_TOKEN must be set to run smoke tests")
	}
	return NewMapboxClient(token, 10*time.Second, discardLogger(), observability.NewMetricsForTesting())
}

func TestSmoke_ForwardGeocode(t *testing.T) {
	c := smokeClient(t)

	result, err := c.ForwardGeocode(context.Background(), "Ratnagiri, India")
	require.NoError(t, err)

	assert.InDelta(t, 16.99, result.Lat, 0.2)
	assert.InDelta(t, 73.31, result.Lon, 0.2)
	assert.Contains(t, result.FormattedAddress, "Ratnagiri")
}

func TestSmoke_TableWithMapboxFallback(t *testing.T) {
	c := smokeClient(t)
	table := NewTable(NewCachedGeocoder(c, 10, observability.NewMetricsForTesting()), discardLogger(), observability.NewMetricsForTesting())

	result, err := table.ForwardGeocode(context.Background(), "Ratnagiri")
	require.NoError(t, err)
	assert.Equal(t, "mapbox", result.Source)
}

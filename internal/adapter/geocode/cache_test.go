package geocode

import (
	"context"
	"errors"
	"testing"

	"github.com/couchcryptid/harbinger/internal/domain"
	"github.com/couchcryptid/harbinger/internal/observability"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCachedGeocoder_ForwardCacheHit(t *testing.T) {
	inner := &countingGeocoder{
		result: domain.GeocodingResult{Lat: 16.99, Lon: 73.31, PlaceName: "Ratnagiri", FormattedAddress: "Ratnagiri, India"},
	}
	m := observability.NewMetricsForTesting()
	cached := NewCachedGeocoder(inner, 10, m)

	r1, err := cached.ForwardGeocode(context.Background(), "Ratnagiri, India")
	require.NoError(t, err)
	assert.Equal(t, "Ratnagiri", r1.PlaceName)

	// Keys are case and whitespace insensitive.
	r2, err := cached.ForwardGeocode(context.Background(), "  ratnagiri, india ")
	require.NoError(t, err)
	assert.Equal(t, "Ratnagiri", r2.PlaceName)

	assert.Equal(t, 1, inner.forwardCalls, "should only call inner once")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.GeocodeCache.WithLabelValues("forward", "hit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.GeocodeCache.WithLabelValues("forward", "miss")))
}

func TestCachedGeocoder_ReverseCacheHit(t *testing.T) {
	inner := &countingGeocoder{result: domain.GeocodingResult{FormattedAddress: "Chennai, India"}}
	cached := NewCachedGeocoder(inner, 10, observability.NewMetricsForTesting())

	_, err := cached.ReverseGeocode(context.Background(), 13.0827, 80.2707)
	require.NoError(t, err)
	_, err = cached.ReverseGeocode(context.Background(), 13.0827, 80.2707)
	require.NoError(t, err)

	assert.Equal(t, 1, inner.reverseCalls, "should only call inner once")
}

func TestCachedGeocoder_EmptyAndErrorResultsNotCached(t *testing.T) {
	tests := []struct {
		name  string
		inner *countingGeocoder
	}{
		{"empty result", &countingGeocoder{}},
		{"error", &countingGeocoder{err: errors.New("boom")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cached := NewCachedGeocoder(tt.inner, 10, observability.NewMetricsForTesting())

			_, _ = cached.ForwardGeocode(context.Background(), "nowhere")
			_, _ = cached.ForwardGeocode(context.Background(), "nowhere")

			assert.Equal(t, 2, tt.inner.forwardCalls)
		})
	}
}

func TestLRUCache_Eviction(t *testing.T) {
	c := newLRUCache(2)

	c.put("a", domain.GeocodingResult{PlaceName: "A"})
	c.put("b", domain.GeocodingResult{PlaceName: "B"})
	c.get("a")
	c.put("c", domain.GeocodingResult{PlaceName: "C"}) // evicts "b"

	_, ok := c.get("b")
	assert.False(t, ok, "b should have been evicted")
	_, ok = c.get("a")
	assert.True(t, ok, "a was accessed recently, should not be evicted")
	assert.Equal(t, 2, c.len())
}

func TestLRUCache_UpdateExisting(t *testing.T) {
	c := newLRUCache(0)

	c.put("a", domain.GeocodingResult{PlaceName: "A1"})
	c.put("a", domain.GeocodingResult{PlaceName: "A2"})

	result, ok := c.get("a")
	assert.True(t, ok)
	assert.Equal(t, "A2", result.PlaceName)
	assert.Equal(t, 1, c.len())
}

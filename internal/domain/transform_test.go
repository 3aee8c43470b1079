package domain

import (
	"strings"
	"testing"
	"time"

	"github.com/couchcryptid/harbinger/internal/analysis"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testLocation    = "Marina Beach, Chennai"
	testDescription = "Water entering the promenade"
)

func TestParseRawEvent(t *testing.T) {
	msgTime := time.Date(2024, 12, 26, 3, 15, 0, 0, time.UTC)

	t.Run("full report", func(t *testing.T) {
		data := []byte(`{"reporter":"priya","location":"  Marina Beach, Chennai ","disaster_type":"tsunami","severity":"critical","description":"Water entering the promenade","ocean_alerts":true,"image":"AQID","reported_at":"2024-12-26T03:10:00Z"}`)
		r, err := ParseRawEvent(RawEvent{Value: data, Timestamp: msgTime})

		require.NoError(t, err)
		assert.Equal(t, "priya", r.Reporter)
		assert.Equal(t, testLocation, r.Location)
		assert.Equal(t, string(analysis.Tsunami), r.DisasterType)
		assert.Equal(t, string(analysis.Critical), r.Severity)
		assert.True(t, r.OceanAlerts)
		assert.Equal(t, []byte{1, 2, 3}, r.Image)
		assert.Equal(t, time.Date(2024, 12, 26, 3, 10, 0, 0, time.UTC), r.ReportedAt)
	})

	t.Run("message timestamp fills missing report time", func(t *testing.T) {
		data := []byte(`{"location":"Puri","description":"Waves over the road"}`)
		r, err := ParseRawEvent(RawEvent{Value: data, Timestamp: msgTime})

		require.NoError(t, err)
		assert.Equal(t, msgTime, r.ReportedAt)
		assert.Equal(t, anonymousReporter, r.Reporter)
	})

	t.Run("invalid JSON", func(t *testing.T) {
		_, err := ParseRawEvent(RawEvent{Value: []byte("{invalid json")})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "parse raw event")
	})

	t.Run("no evidence", func(t *testing.T) {
		_, err := ParseRawEvent(RawEvent{Value: []byte(`{"location":"Puri","description":"   "}`)})
		require.ErrorIs(t, err, ErrEmptyReport)
	})
}

func TestNormalizeReport_Labels(t *testing.T) {
	tests := []struct {
		severity, disaster         string
		wantSeverity, wantDisaster string
	}{
		{"HIGH", "coastal surge", "High", "Coastal Surge"},
		{" low ", "FIRE/WILDFIRE", "Low", "Fire/Wildfire"},
		{"Severe", "Volcano", "Severe", "Volcano"},
		{"", "", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.severity+"/"+tt.disaster, func(t *testing.T) {
			r, err := NormalizeReport(Report{Description: "d", Severity: tt.severity, DisasterType: tt.disaster})
			require.NoError(t, err)
			assert.Equal(t, tt.wantSeverity, r.Severity)
			assert.Equal(t, tt.wantDisaster, r.DisasterType)
		})
	}
}

func TestIncidentID(t *testing.T) {
	base := Report{Reporter: "priya", Location: testLocation, Description: testDescription, Image: []byte{1, 2, 3}}

	id := IncidentID(base)
	assert.True(t, strings.HasPrefix(id, "inc-"))
	assert.Len(t, id, len("inc-")+16)
	assert.Equal(t, id, IncidentID(base), "deterministic")

	other := base
	other.Image = []byte{1, 2, 4}
	assert.NotEqual(t, id, IncidentID(other), "image participates in the ID")

	other = base
	other.Severity = "Critical"
	assert.Equal(t, id, IncidentID(other), "labels do not participate in the ID")
}

func TestImageSHA256(t *testing.T) {
	assert.Empty(t, ImageSHA256(nil))
	assert.Equal(t, "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad", ImageSHA256([]byte("abc")))
}

func TestNewIncident(t *testing.T) {
	fixed := time.Date(2025, 1, 2, 3, 4, 5, 600, time.UTC)
	SetClock(clockwork.NewFakeClockAt(fixed))
	t.Cleanup(func() { SetClock(nil) })

	r := Report{
		Reporter:          "arun",
		Location:          testLocation,
		DisasterType:      string(analysis.Flood),
		Severity:          string(analysis.High),
		Description:       testDescription,
		EmergencyPriority: true,
	}
	inc := NewIncident(r)

	assert.Equal(t, IncidentID(r), inc.ID)
	assert.Equal(t, fixed.Truncate(time.Second), inc.CreatedAt)
	assert.Equal(t, inc.CreatedAt, inc.UpdatedAt)
	assert.Equal(t, StatusPending, inc.Status)
	assert.Equal(t, analysis.Flood, inc.ReportedType)
	assert.Equal(t, analysis.High, inc.Severity)
	assert.False(t, inc.HasImage)
	assert.Empty(t, inc.ImageSHA256)
	assert.True(t, inc.EmergencyPriority)
}

func TestNewIncident_UsesReportTime(t *testing.T) {
	reported := time.Date(2024, 12, 26, 3, 10, 0, 0, time.FixedZone("IST", 19800))
	inc := NewIncident(Report{Description: "d", ReportedAt: reported, Image: []byte{9}})

	assert.Equal(t, reported.UTC(), inc.CreatedAt)
	assert.True(t, inc.HasImage)
	assert.Len(t, inc.ImageSHA256, 64)
}

package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPriority(t *testing.T) {
	tests := []struct {
		name         string
		severity     Severity
		disaster     DisasterType
		authenticity float64
		ocean        int
		want         int
	}{
		{"critical tsunami saturates", Critical, Tsunami, 90, 3, 100},
		{"medium flood", Medium, Flood, 75, 0, 48},
		{"low other", Low, Other, 0, 0, 7},
		{"unlisted labels use defaults", "Catastrophic", "Meteor", 100, 0, 50},
		{"ocean bonus", Low, Landslide, 50, 2, 53},
		{"out of range ocean level is clamped", Low, Landslide, 50, 9, 68},
		{"negative ocean level is clamped", Low, Landslide, 50, -4, 23},
		{"negative authenticity floors at zero", Medium, Flood, -200, 0, 0},
		{"critical flood caps at 100", Critical, Flood, 100, 0, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Priority(tt.severity, tt.disaster, tt.authenticity, tt.ocean)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPriority_AlwaysInRange(t *testing.T) {
	severities := []Severity{Critical, High, Medium, Low, ""}
	types := []DisasterType{Tsunami, CoastalSurge, Flood, Other, NaturalDisaster}
	for _, s := range severities {
		for _, d := range types {
			for auth := 0.0; auth <= 100; auth += 12.5 {
				for level := 0; level <= 3; level++ {
					p := Priority(s, d, auth, level)
					assert.GreaterOrEqual(t, p, 0)
					assert.LessOrEqual(t, p, 100)
				}
			}
		}
	}
}

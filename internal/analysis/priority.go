package analysis

import "math"

var severityBase = map[Severity]float64{
	Critical: 95,
	High:     75,
	Medium:   55,
	Low:      35,
}

const defaultSeverityBase = 50

var disasterMultiplier = map[DisasterType]float64{
	Tsunami:            1.6,
	CoastalSurge:       1.5,
	StormSurge:         1.4,
	BuildingCollapse:   1.3,
	IndustrialAccident: 1.25,
	Wildfire:           1.2,
	HarmfulAlgalBloom:  1.2,
	CycloneStorm:       1.2,
	Flood:              1.1,
	Landslide:          1.1,
	Other:              0.9,
}

// Priority combines severity, disaster type, authenticity (0-100) and ocean
// hazard level (0-3) into a 0-100 dispatch priority. Unlisted severities and
// disaster types fall back to base 50 and multiplier 1.0.
func Priority(severity Severity, disaster DisasterType, authenticity float64, oceanHazardLevel int) int {
	base, ok := severityBase[severity]
	if !ok {
		base = defaultSeverityBase
	}
	mult, ok := disasterMultiplier[disaster]
	if !ok {
		mult = 1.0
	}
	level := min(max(oceanHazardLevel, OceanHazardNone), OceanHazardCritical)

	raw := base*mult*((authenticity+30)/130) + float64(level)*15
	if math.IsNaN(raw) {
		return 0
	}
	return int(math.Max(0, math.Min(100, raw)))
}

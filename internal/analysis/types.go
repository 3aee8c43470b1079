package analysis

// DisasterType is a disaster category label. The string values are part of
// the published incident format.
type DisasterType string

const (
	Flood              DisasterType = "Flood"
	Tsunami            DisasterType = "Tsunami"
	CoastalSurge       DisasterType = "Coastal Surge"
	StormSurge         DisasterType = "Storm Surge"
	HarmfulAlgalBloom  DisasterType = "Harmful Algal Bloom"
	Wildfire           DisasterType = "Fire/Wildfire"
	CycloneStorm       DisasterType = "Cyclone/Storm"
	BuildingCollapse   DisasterType = "Earthquake/Building Collapse"
	Landslide          DisasterType = "Landslide"
	IndustrialAccident DisasterType = "Industrial Accident"
	Other              DisasterType = "Other"

	// NaturalDisaster is returned when no rule fires.
	NaturalDisaster DisasterType = "Natural Disaster"
	// Unknown is returned when classification fails.
	Unknown DisasterType = "Unknown"
)

// Severity is the reporter-assessed urgency of an incident.
type Severity string

const (
	Critical Severity = "Critical"
	High     Severity = "High"
	Medium   Severity = "Medium"
	Low      Severity = "Low"
)

// Ocean hazard levels.
const (
	OceanHazardNone     = 0
	OceanHazardMedium   = 1
	OceanHazardHigh     = 2
	OceanHazardCritical = 3
)

// OceanHazardLevel maps a disaster label to its 0-3 ocean hazard tag.
func OceanHazardLevel(d DisasterType) int {
	switch d {
	case Tsunami:
		return OceanHazardCritical
	case CoastalSurge, StormSurge:
		return OceanHazardHigh
	case HarmfulAlgalBloom:
		return OceanHazardMedium
	default:
		return OceanHazardNone
	}
}

// IsOceanHazard reports whether d carries a non-zero ocean hazard level.
func IsOceanHazard(d DisasterType) bool {
	return OceanHazardLevel(d) > OceanHazardNone
}

// Package executor is the per-tick construction scheduler spec §4.I
// describes: it turns Brain's urgency signals and the live build queues
// into concrete try_build_* construction attempts, one per tick.
package executor

// Category is a constructable static-building category Executor tracks an
// urgency for (spec §4.I).
type Category int

const (
	CategoryPowerPlant Category = iota
	CategoryExtractor
	CategoryStaticDefence
	CategoryStaticConstructor
	CategoryStaticSensor
	CategoryStaticJammer
	CategoryStaticArtillery
	CategoryStorage
	CategoryMetalMaker
	CategoryAirBase
	CategoryNanoTurret
	numCategories
)

func (c Category) String() string {
	switch c {
	case CategoryPowerPlant:
		return "PowerPlant"
	case CategoryExtractor:
		return "Extractor"
	case CategoryStaticDefence:
		return "StaticDefence"
	case CategoryStaticConstructor:
		return "StaticConstructor"
	case CategoryStaticSensor:
		return "StaticSensor"
	case CategoryStaticJammer:
		return "StaticJammer"
	case CategoryStaticArtillery:
		return "StaticArtillery"
	case CategoryStorage:
		return "Storage"
	case CategoryMetalMaker:
		return "MetalMaker"
	case CategoryAirBase:
		return "AirBase"
	case CategoryNanoTurret:
		return "NanoTurret"
	default:
		return "Unknown"
	}
}

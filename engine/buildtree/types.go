// Package buildtree classifies the engine's unit-def catalog into sides,
// categories and capability bits, and tracks the per-def combat-power
// matrix that evolves over a game (spec §4.A). It is generated once and is
// read-only afterwards except for combat-power learning and persistence.
package buildtree

// UnitDefId identifies a unit type from the engine catalog. Zero is the
// invalid sentinel; real ids start at 1.
type UnitDefId int

// InvalidUnitDefId is the sentinel for "no such def".
const InvalidUnitDefId UnitDefId = 0

// UnitCategory classifies a unit def into exactly one bucket.
type UnitCategory int

const (
	CategoryUnknown UnitCategory = iota
	CategoryStaticDefence
	CategoryStaticArtillery
	CategoryStorage
	CategoryStaticConstructor
	CategoryStaticSupport
	CategoryStaticSensor
	CategoryPowerPlant
	CategoryMetalExtractor
	CategoryMetalMaker
	CategoryCommander
	CategoryGroundCombat
	CategoryAirCombat
	CategoryHoverCombat
	CategorySeaCombat
	CategorySubmarineCombat
	CategoryMobileArtillery
	CategoryScout
	CategoryTransport
	CategoryMobileConstructor
	CategoryMobileSupport
	numCategories
)

func (c UnitCategory) String() string {
	switch c {
	case CategoryStaticDefence:
		return "StaticDefence"
	case CategoryStaticArtillery:
		return "StaticArtillery"
	case CategoryStorage:
		return "Storage"
	case CategoryStaticConstructor:
		return "StaticConstructor"
	case CategoryStaticSupport:
		return "StaticSupport"
	case CategoryStaticSensor:
		return "StaticSensor"
	case CategoryPowerPlant:
		return "PowerPlant"
	case CategoryMetalExtractor:
		return "MetalExtractor"
	case CategoryMetalMaker:
		return "MetalMaker"
	case CategoryCommander:
		return "Commander"
	case CategoryGroundCombat:
		return "GroundCombat"
	case CategoryAirCombat:
		return "AirCombat"
	case CategoryHoverCombat:
		return "HoverCombat"
	case CategorySeaCombat:
		return "SeaCombat"
	case CategorySubmarineCombat:
		return "SubmarineCombat"
	case CategoryMobileArtillery:
		return "MobileArtillery"
	case CategoryScout:
		return "Scout"
	case CategoryTransport:
		return "Transport"
	case CategoryMobileConstructor:
		return "MobileConstructor"
	case CategoryMobileSupport:
		return "MobileSupport"
	default:
		return "Unknown"
	}
}

// IsStaticCategory reports whether c belongs to the static (building) half
// of the classification tree.
func (c UnitCategory) IsStatic() bool {
	switch c {
	case CategoryStaticDefence, CategoryStaticArtillery, CategoryStorage,
		CategoryStaticConstructor, CategoryStaticSupport, CategoryStaticSensor,
		CategoryPowerPlant, CategoryMetalExtractor, CategoryMetalMaker:
		return true
	default:
		return false
	}
}

// IsCommander reports whether c is the commander category.
func (c UnitCategory) IsCommander() bool { return c == CategoryCommander }

// IsCombat reports whether c is a combat or static-defence category —
// the set that participates in combat-power learning (spec §4.A).
func (c UnitCategory) IsCombat() bool {
	switch c {
	case CategoryStaticDefence, CategoryStaticArtillery,
		CategoryGroundCombat, CategoryAirCombat, CategoryHoverCombat,
		CategorySeaCombat, CategorySubmarineCombat, CategoryMobileArtillery:
		return true
	default:
		return false
	}
}

// UnitType is a bitmask of capabilities a unit def may combine freely.
type UnitType uint32

const (
	TypeBuilding UnitType = 1 << iota
	TypeMobileUnit
	TypeAntiSurface
	TypeAntiAir
	TypeAntiShip
	TypeAntiSubmerged
	TypeAntiStatic
	TypeRadar
	TypeSonar
	TypeSeismic
	TypeRadarJammer
	TypeSonarJammer
	TypeBuilder
	TypeFactory
	TypeConstructionAssist
)

// Has reports whether every bit in want is set in t.
func (t UnitType) Has(want UnitType) bool { return t&want == want }

// MovementType tags how a unit def moves (or doesn't).
type MovementType int

const (
	MoveGround MovementType = iota
	MoveAmphibious
	MoveHover
	MoveSeaFloater
	MoveSeaSubmerged
	MoveAir
	MoveStaticLand
	MoveStaticSeaFloater
	MoveStaticSeaSubmerged
)

// CannotMoveToOtherContinents reports whether a unit with this movement
// type is confined to the landmass it started on (ground units only —
// everything else either flies, floats or swims between continents).
func (m MovementType) CannotMoveToOtherContinents() bool {
	return m == MoveGround
}

// TargetType is the category a weapon dispatches against.
type TargetType int

const (
	TargetSurface TargetType = iota
	TargetAir
	TargetFloater
	TargetSubmerged
	TargetStatic
	numTargetTypes
)

func (t TargetType) String() string {
	switch t {
	case TargetSurface:
		return "Surface"
	case TargetAir:
		return "Air"
	case TargetFloater:
		return "Floater"
	case TargetSubmerged:
		return "Submerged"
	case TargetStatic:
		return "Static"
	default:
		return "Unknown"
	}
}

// CombatPower holds the five non-negative, clamped combat-power floats for
// a unit def, one per TargetType.
type CombatPower [numTargetTypes]float64

const (
	minCombatPower = 0.01
	maxCombatPower = 1000

	minInitialCombatPower     = 1.0
	noValidTargetInitialPower = 0.1
	minAntiTargetTypeCombatPower = 2.0

	learningFactor       = 0.05
	maxChangePerCombat   = 5.0
)

func (p *CombatPower) clamp() {
	for t := range p {
		if p[t] < minCombatPower {
			p[t] = minCombatPower
		}
		if p[t] > maxCombatPower {
			p[t] = maxCombatPower
		}
	}
}

// UnitTypeProperties is the per-def derived data spec §3 names.
type UnitTypeProperties struct {
	TotalCost       float64 // metal + energy/60
	BuildTime       float64
	Health          float64
	FootprintX      int
	FootprintZ      int
	PrimaryAbility  float64
	SecondaryAbility float64
	Name            string
	Category        UnitCategory
	MovementType    MovementType
	TargetType      TargetType
	UnitType        UnitType
	FactoryID       int // 0 if not a factory
}

// UnitStatistics holds min/max/avg of a handful of scalar properties over
// every unit def of one category on one side.
type UnitStatistics struct {
	MinCost, MaxCost, AvgCost                   float64
	MinBuildTime, MaxBuildTime, AvgBuildTime     float64
	MinPrimary, MaxPrimary, AvgPrimary           float64
	MinSecondary, MaxSecondary, AvgSecondary     float64
	Count int
}

// SensorStatistics is the radar/sonar/seismic analogue of UnitStatistics.
type SensorStatistics struct {
	MinRadarRange, MaxRadarRange, AvgRadarRange float64
	MinSonarRange, MaxSonarRange, AvgSonarRange float64
	Count int
}

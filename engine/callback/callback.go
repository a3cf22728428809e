// Package callback names the engine collaborator this core consumes. The
// engine itself — map heightfield, unit catalog, order dispatch — lives on
// the other side of this interface; nothing in this module implements it.
package callback

import emath "github.com/bklimczak/aaicore/engine/math"

// WeaponTargets is a bitmask of the target categories a weapon can engage.
type WeaponTargets uint8

const (
	TargetsSurface WeaponTargets = 1 << iota
	TargetsAir
	TargetsFloater
	TargetsSubmerged
	TargetsStatic
)

// Weapon is the subset of an engine weapon definition the classifier and
// combat-power initialiser need.
type Weapon struct {
	Range            float64
	MaxDamage        float64
	StockpileWeapon  bool
	TargetCategories WeaponTargets
}

// UnitDef mirrors the fields of get_unit_def(def_id) this core reads. Field
// names follow the engine's own vocabulary (moveFamily, canfly, ...) rather
// than a renamed Go-ism, since this struct exists only to carry the engine's
// answers across the boundary.
type UnitDef struct {
	ID   int
	Name string

	IsBuilding bool

	MetalCost  float64
	EnergyCost float64
	BuildTime  float64
	Health     float64
	FootprintX int
	FootprintZ int

	BuildOptions []int // def ids this def can construct

	MoveFamily    string // "", "Ground", "Hover", "Ship", "Submarine"
	CanFly        bool
	MinWaterDepth float64 // negative means never enters water
	Floater       bool    // rides the water surface rather than submerging
	Speed         float64

	CanAssist    bool
	CanResurrect bool
	IsCommander  bool
	IsScout      bool
	IsTransport  bool
	IsAirBase    bool

	ExtractsMetal  float64 // metal/sec, 0 if not an extractor
	EnergyMake     float64
	EnergyUpkeep   float64
	Tidal          bool
	Wind           bool
	MetalMake      float64
	MetalStorage   float64
	EnergyStorage  float64

	Weapons     []Weapon
	HasShield   bool
	HasRadar    bool
	HasSonar    bool
	HasSeismic  bool
	RadarRange  float64
	SonarRange  float64
	HasJammer   bool
	JammerRange float64
	HasSonarJam bool

	LOS float64
}

// Order is an opaque, engine-defined command id (MOVE, ATTACK, FIGHT, ...).
type Order int

const (
	OrderMove Order = iota
	OrderStop
	OrderFight
	OrderAttack
	OrderGuard
	OrderPatrol
	OrderRepair
	OrderReclaim
	OrderResurrect
	OrderCloak
	OrderOnOff
)

// Command is what GiveOrder sends: a target (position, unit id, or build
// def id encoded negative per engine convention) plus option bits.
type Command struct {
	Order    Order
	Pos      emath.Vec2
	TargetID int  // unit id, or 0 if none
	BuildDef int  // >0 build this def at Pos; 0 if not a build order
	Queued   bool // SHIFT option bit
}

// EnemyUnit is a sighting as reported by get_enemy_units*.
type EnemyUnit struct {
	UnitID int
	DefID  int // -1 if unseen / unknown def
	Pos    emath.Vec2
}

// FileMode selects which on-disk cache/learn file a path request resolves.
type FileMode int

const (
	FileModLearn FileMode = iota
	FileMapCache
	FileContinentCache
	FileMapLearn
	FileLog
)

// Engine is the callback surface named in spec §6. Every method here is a
// direct analogue of one engine call; nothing is added, nothing is
// reinterpreted.
type Engine interface {
	GetNumUnitDefs() int
	GetUnitDef(defID int) (UnitDef, bool)
	GetUnitDefList() []UnitDef
	GetUnitDefByName(name string) (UnitDef, bool)

	GetUnitPos(unitID int) (emath.Vec2, bool)
	GetUnitDefOf(unitID int) (UnitDef, bool)
	GetUnitTeam(unitID int) int
	GetMyTeam() int
	GetMyAllyTeam() int
	IsAllied(allyTeamA, allyTeamB int) bool
	UnitBeingBuilt(unitID int) bool

	GetHeightmap() []float64
	GetLOSMap() []float64
	GetMetalMap() []float64
	GetMaxMetal() float64
	GetExtractorRadius() float64
	MapWidth() int
	MapHeight() int

	GetCurrentFrame() int

	GetMetal() float64
	GetEnergy() float64
	GetMetalStorage() float64
	GetEnergyStorage() float64
	GetMetalIncome() float64
	GetEnergyIncome() float64
	GetMetalUsage() float64
	GetEnergyUsage() float64

	CanBuildAt(defID int, pos emath.Vec2) bool
	ClosestBuildSite(defID int, pos emath.Vec2, searchRadius float64, grid float64) (emath.Vec2, bool)

	GiveOrder(unitID int, cmd Command)

	GetEnemyUnits(pos emath.Vec2, radius float64) []EnemyUnit
	GetEnemyUnitsInRadarAndLOS() []EnemyUnit
	GetFriendlyUnits() []int

	Elevation(x, z float64) float64
	SendTextMessage(msg string, priority int)

	GetFilePath(mode FileMode) (string, error)
}

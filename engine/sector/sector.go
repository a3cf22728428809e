// Package sector owns the per-cell aggregate state spec §3/§4.C describes:
// metal spots, building counts, scouted-enemy bookkeeping, combat-power
// totals, attack history, and the rating queries Brain/Executor/Group
// consume to pick expansion, defence and rally targets.
package sector

import (
	"math"

	"github.com/bklimczak/aaicore/engine/buildtree"
	emath "github.com/bklimczak/aaicore/engine/math"
)

const lostUnitsMemoryFadeRate = 0.95

// Sector is one cell of the sector grid (spec §3 Sector invariants).
type Sector struct {
	X, Y int

	FlatRatio  float64
	WaterRatio float64

	DistanceToBase int // 0 iff this sector is a base sector

	ContinentID int

	OwnBuildingsOfCategory map[buildtree.UnitCategory]int
	EnemyBuildings         int
	AlliedBuildings        int

	EnemyCombatUnits   [5]float64 // decays over time since last sighting
	FriendlyStaticCombatPower  [5]float64
	FriendlyMobileCombatPower  [5]float64
	EnemyStaticCombatPower     [5]float64
	EnemyMobileCombatPower     [5]float64

	LostUnits [5]float64

	AttacksThisGame     [5]float64
	AttacksPreviousGames [5]float64

	ImportanceThisGame float64

	RecentFailedPlacements int
	ClaimedByTeam          int // 0 = unclaimed

	EnemyUnitsDetectedBySensor int

	MetalSpots []MetalSpotRef
}

// MetalSpotRef is a lightweight pointer into gamemap's metal spot list,
// kept here so sector queries don't need a gamemap import.
type MetalSpotRef struct {
	Pos      emath.Vec2
	Amount   float64
	Occupied bool
}

// New returns a zeroed sector at grid coordinate (x, y).
func New(x, y int) *Sector {
	return &Sector{
		X: x, Y: y,
		OwnBuildingsOfCategory: make(map[buildtree.UnitCategory]int),
		ClaimedByTeam:          0,
	}
}

// ResetLocalCombatPower clears the friendly combat-power accumulators,
// called before walking friendly units each tick (spec §4.C).
func (s *Sector) ResetLocalCombatPower() {
	s.FriendlyStaticCombatPower = [5]float64{}
	s.FriendlyMobileCombatPower = [5]float64{}
}

// AddFriendlyUnitData folds one friendly unit's combat power into the
// sector (spec §4.C add_friendly_unit_data).
func (s *Sector) AddFriendlyUnitData(cat buildtree.UnitCategory, power buildtree.CombatPower, allied bool) {
	if allied {
		s.AlliedBuildings++
	}
	dst := &s.FriendlyMobileCombatPower
	if cat.IsStatic() {
		dst = &s.FriendlyStaticCombatPower
	}
	for t := 0; t < 5; t++ {
		dst[t] += power[t]
	}
}

// ResetScoutedEnemiesData clears the per-tick enemy-sighting accumulators.
func (s *Sector) ResetScoutedEnemiesData() {
	s.EnemyCombatUnits = [5]float64{}
}

// AddScoutedEnemyUnit folds one sighting into the sector per spec §4.C:
// static defences contribute their static combat power outright; mobile
// units are weighted by exp(-framesSinceLastUpdate/5000).
func (s *Sector) AddScoutedEnemyUnit(cat buildtree.UnitCategory, power buildtree.CombatPower, framesSinceLastUpdate int) {
	if cat.IsStatic() {
		s.EnemyBuildings++
		for t := 0; t < 5; t++ {
			s.EnemyStaticCombatPower[t] += power[t]
		}
		return
	}
	weight := math.Exp(-float64(framesSinceLastUpdate) / 5000)
	for t := 0; t < 5; t++ {
		s.EnemyCombatUnits[t] += power[t] * weight
		s.EnemyMobileCombatPower[t] += power[t] * weight
	}
}

// DecreaseLostUnits multiplies every LostUnits entry by the fade rate
// (spec §4.C decrease_lost_units, ~0.95/tick).
func (s *Sector) DecreaseLostUnits() {
	for t := range s.LostUnits {
		s.LostUnits[t] *= lostUnitsMemoryFadeRate
	}
}

// AddMetalSpot registers a spot in this sector.
func (s *Sector) AddMetalSpot(spot MetalSpotRef) {
	s.MetalSpots = append(s.MetalSpots, spot)
}

// AddExtractor marks the spot nearest pos (after buildmap-coordinate
// rounding) as occupied.
func (s *Sector) AddExtractor(pos emath.Vec2) {
	for i := range s.MetalSpots {
		if int(s.MetalSpots[i].Pos.X) == int(pos.X) && int(s.MetalSpots[i].Pos.Y) == int(pos.Y) {
			s.MetalSpots[i].Occupied = true
			return
		}
	}
}

// FreeMetalSpot clears occupancy on the spot at pos.
func (s *Sector) FreeMetalSpot(pos emath.Vec2) {
	for i := range s.MetalSpots {
		if int(s.MetalSpots[i].Pos.X) == int(pos.X) && int(s.MetalSpots[i].Pos.Y) == int(pos.Y) {
			s.MetalSpots[i].Occupied = false
			return
		}
	}
}

func (s *Sector) enemyCombatPowerVs(myTargetTypes [5]float64) float64 {
	var sum float64
	for t := 0; t < 5; t++ {
		sum += s.EnemyStaticCombatPower[t] * myTargetTypes[t]
	}
	return sum
}

func (s *Sector) lostUnitsTotal() float64 {
	var sum float64
	for _, v := range s.LostUnits {
		sum += v
	}
	return sum
}

// EnemyCombatPowerOf returns the combined static+mobile enemy combat
// power of this sector against target type t, the quantity threat.ThreatMap
// snapshots per tick.
func (s *Sector) EnemyCombatPowerOf(t int) float64 {
	return s.EnemyStaticCombatPower[t] + s.EnemyMobileCombatPower[t]
}

// TotalLostUnits sums LostUnits across all target types.
func (s *Sector) TotalLostUnits() float64 {
	return s.lostUnitsTotal()
}

// NumberOfEnemyBuildings returns EnemyBuildings.
func (s *Sector) NumberOfEnemyBuildings() int {
	return s.EnemyBuildings
}

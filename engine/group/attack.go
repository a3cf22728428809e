package group

import (
	"github.com/bklimczak/aaicore/engine/buildtree"
	"github.com/bklimczak/aaicore/engine/sector"
)

// attackCombatPowerFactor is how much stronger our attack power must be
// than the defender's before an attack is judged still worth continuing
// (spec §4.K, grounded on AAIConstants::attackCombatPowerFactor — no
// source value survived in the retrieved headers, so 1.0 is used: our
// power must at least match theirs).
const attackCombatPowerFactor = 1.0

// attackEnemyBaseUrgency is the order importance attached to an
// in-progress attack's movement orders (spec §4.K, grounded on
// AAIConstants::attackEnemyBaseUrgency — likewise approximated).
const attackEnemyBaseUrgency = 100.0

// Attack bundles the combat and anti-air groups assigned to assault one
// target sector, referenced by the groups' IDs rather than pointers
// (spec §9 id-indirection: a Group only ever holds its own AttackID, an
// Attack only ever holds member GroupIDs — neither owns the other).
type Attack struct {
	ID              int
	TargetSector    *sector.Sector
	CombatGroupIDs  map[int]struct{}
	AntiAirGroupIDs map[int]struct{}

	LastOrderFrame int
}

// NewAttack returns an attack with no groups assigned yet.
func NewAttack(id int, target *sector.Sector) *Attack {
	return &Attack{
		ID:              id,
		TargetSector:    target,
		CombatGroupIDs:  make(map[int]struct{}),
		AntiAirGroupIDs: make(map[int]struct{}),
	}
}

// groupRole classifies a group for attack membership purposes: an assault
// unit joins the combat roster, a pure anti-air unit escorts it instead —
// mutually exclusive, mirroring AAIUnitType's ASSAULT vs ANTI_AIR split
// (spec §4.K AddGroup, grounded on
// AAIGroup::GetUnitTypeOfGroup()::IsAssaultUnit()/IsAntiAir()).
func groupRole(g *Group) (isAssault, isPureAntiAir bool) {
	isPureAntiAir = g.UnitType.Has(buildtree.TypeAntiAir) && !g.UnitType.Has(buildtree.TypeAntiSurface)
	isAssault = g.Category.IsCombat() && !g.Category.IsStatic() && !isPureAntiAir
	return
}

// AddGroup assigns g to the combat or anti-air roster based on its unit
// type, and stamps its AttackID (spec §4.K AddGroup).
func (a *Attack) AddGroup(g *Group) bool {
	isAssault, isPureAntiAir := groupRole(g)
	switch {
	case isAssault:
		a.CombatGroupIDs[g.ID] = struct{}{}
	case isPureAntiAir:
		a.AntiAirGroupIDs[g.ID] = struct{}{}
	default:
		return false
	}
	g.AttackID = a.ID
	return true
}

// RemoveGroup drops g from whichever roster it's on and clears its
// AttackID (spec §4.K RemoveGroup).
func (a *Attack) RemoveGroup(g *Group) {
	delete(a.CombatGroupIDs, g.ID)
	delete(a.AntiAirGroupIDs, g.ID)
	g.AttackID = 0
}

// GroupCount returns how many groups (combat + anti-air) are assigned.
func (a *Attack) GroupCount() int {
	return len(a.CombatGroupIDs) + len(a.AntiAirGroupIDs)
}

// HasTargetBeenCleared reports whether the attack's objective no longer
// needs to be pressed (spec §4.K HasTargetBeenCleared): no destination
// at all, zero enemy buildings left there, or — if the target position
// is in LOS — zero enemy units actually present.
func HasTargetBeenCleared(target *sector.Sector, enemyBuildingsAtTarget int, targetInLOS bool, enemyUnitsInLOSAtTarget int) bool {
	if target == nil {
		return true
	}
	if enemyBuildingsAtTarget == 0 {
		return true
	}
	if targetInLOS {
		return enemyUnitsInLOSAtTarget == 0
	}
	return false
}

// SufficientCombatPowerToAttackSector reports whether the attack's
// combined combat power against static defences exceeds the target
// sector's defensive power by at least attackCombatPowerFactor, weighted
// by how many of each target type are attacking (spec §4.K
// SufficientCombatPowerToAttackSector). enemyDefencePowerOf looks up a
// target sector's static combat power against one target type.
func (a *Attack) SufficientCombatPowerToAttackSector(
	bt *buildtree.BuildTree,
	groupByID func(id int) (*Group, bool),
	enemyDefencePowerOf func(t buildtree.TargetType) float64,
) bool {
	if len(a.CombatGroupIDs) == 0 {
		return false
	}

	var combatPowerVsBuildings float64
	var weightByTargetType [5]float64

	for id := range a.CombatGroupIDs {
		g, ok := groupByID(id)
		if !ok {
			continue
		}
		props, _ := bt.Properties(g.DefID)
		power := g.CombatPowerVsTargetType(bt, buildtree.TargetStatic)
		weightByTargetType[props.TargetType] += float64(g.Size())
		combatPowerVsBuildings += power
	}
	normalize(&weightByTargetType)

	enemyDefencePower := weightByTargetType[buildtree.TargetSurface]*enemyDefencePowerOf(buildtree.TargetSurface) +
		weightByTargetType[buildtree.TargetFloater]*enemyDefencePowerOf(buildtree.TargetFloater) +
		weightByTargetType[buildtree.TargetSubmerged]*enemyDefencePowerOf(buildtree.TargetSubmerged)

	return attackCombatPowerFactor*combatPowerVsBuildings > enemyDefencePower
}

// SufficientCombatPowerAt reports whether the attack's combined combat
// power, weighted by the defender's own unit-type mix, exceeds the
// mobile enemy combat power estimated to be present at sector (spec §4.K
// SufficientCombatPowerAt). enemyCombatPowerVs/enemyUnitCounts let the
// caller supply sector-level enemy estimates without this package
// depending on sector's internal layout beyond its exported accessors.
func (a *Attack) SufficientCombatPowerAt(
	bt *buildtree.BuildTree,
	groupByID func(id int) (*Group, bool),
	enemyCombatPowerVs func(weights [5]float64) float64,
	enemyUnitCounts func() [5]float64,
) bool {
	if len(a.CombatGroupIDs) == 0 {
		return false
	}

	var numberOfMyCombatUnits [5]float64
	var myCombatPower buildtree.CombatPower

	for id := range a.CombatGroupIDs {
		g, ok := groupByID(id)
		if !ok {
			continue
		}
		props, _ := bt.Properties(g.DefID)
		numberOfMyCombatUnits[props.TargetType] += float64(g.Size())
		g.AddCombatPower(bt, &myCombatPower)
	}
	normalize(&numberOfMyCombatUnits)

	enemyDefencePower := enemyCombatPowerVs(numberOfMyCombatUnits)

	enemyUnits := enemyUnitCounts()
	total := 0.0
	for _, v := range enemyUnits {
		total += v
	}
	if total == 0 {
		return true
	}
	for i := range enemyUnits {
		enemyUnits[i] /= total
	}

	myAttackPower := 0.0
	for t := range myCombatPower {
		myAttackPower += myCombatPower[t] * enemyUnits[t]
	}

	return attackCombatPowerFactor*myAttackPower > enemyDefencePower
}

func normalize(v *[5]float64) {
	total := 0.0
	for _, x := range v {
		total += x
	}
	if total == 0 {
		return
	}
	for i := range v {
		v[i] /= total
	}
}

// MovementTypeOfAssignedUnits returns the movement type of the first
// group found — a simplification of the original's movement-type union,
// which only ever feeds a single continent-bound-or-not decision
// downstream (spec §4.K GetMovementTypeOfAssignedUnits).
func (a *Attack) MovementTypeOfAssignedUnits(groupByID func(id int) (*Group, bool)) (buildtree.MovementType, bool) {
	for id := range a.CombatGroupIDs {
		if g, ok := groupByID(id); ok {
			return g.MoveType, true
		}
	}
	for id := range a.AntiAirGroupIDs {
		if g, ok := groupByID(id); ok {
			return g.MoveType, true
		}
	}
	return 0, false
}

// TargetTypeOfInvolvedUnits tallies how many units of each target type
// are assigned to this attack (spec §4.K
// DetermineTargetTypeOfInvolvedUnits).
func (a *Attack) TargetTypeOfInvolvedUnits(bt *buildtree.BuildTree, groupByID func(id int) (*Group, bool)) [5]float64 {
	var totals [5]float64
	for id := range a.CombatGroupIDs {
		if g, ok := groupByID(id); ok {
			props, _ := bt.Properties(g.DefID)
			totals[props.TargetType] += float64(g.Size())
		}
	}
	return totals
}

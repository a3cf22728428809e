// Package airforce tracks bombing targets spotted by scouts and decides
// when to send the air-combat groups against them or back home to defend,
// mirroring AAIAirForceManager's two responsibilities: a bounded watch
// list of static targets worth bombing, and on-demand air support for a
// unit under attack it cannot fight back against (spec §4.M
// AirForceManager).
package airforce

import (
	"github.com/bklimczak/aaicore/engine/buildtree"
	"github.com/bklimczak/aaicore/engine/callback"
	"github.com/bklimczak/aaicore/engine/group"
	emath "github.com/bklimczak/aaicore/engine/math"
	"github.com/bklimczak/aaicore/engine/sector"
)

// Approximated urgency/threshold constants: the retrieved AAIConstants
// subset didn't carry their source values, so these are reasonable
// stand-ins consistent with the other urgency scales already ported
// (AttackSector/Retreat/SetRallyPoint range roughly 8-105 in engine/group).
const (
	minAirSupportCombatPower      = 2.0
	defendUnitsUrgency            = 60.0
	bombingRunUrgency             = 80.0
	maxEnemyAACombatPowerForTarget = 5.0
	maxLostAirUnitsForAirSupport  = 3.0
)

// maxCombatPower normalizes a sector's enemy combat power into the 0..1
// air-defence factor used by target scoring (spec §4.M, grounded on
// aidef.h AAIConstants::maxCombatPower = 1000.0f).
const maxCombatPower = 1000.0

// Target is a building worth a bombing run, spotted by a scout (spec
// §4.M AirRaidTarget, grounded on AAIAirForceManager's AirRaidTarget
// struct).
type Target struct {
	UnitID int
	DefID  buildtree.UnitDefId
	Pos    emath.Vec2
}

// Manager holds the bounded military/economy bomb-target watch lists and
// picks bombing runs and air-support responses against them (spec §4.M
// AirForceManager, grounded on AAIAirForceManager).
type Manager struct {
	militaryTargets map[int]*Target
	economyTargets  map[int]*Target

	maxMilitaryTargets int
	maxEconomyTargets  int
	healthPerBomber    float64
}

// NewManager returns an air force manager with empty target lists, capped
// at the given sizes.
func NewManager(maxMilitaryTargets, maxEconomyTargets int, healthPerBomber float64) *Manager {
	return &Manager{
		militaryTargets:    make(map[int]*Target),
		economyTargets:     make(map[int]*Target),
		maxMilitaryTargets: maxMilitaryTargets,
		maxEconomyTargets:  maxEconomyTargets,
		healthPerBomber:    healthPerBomber,
	}
}

// CheckStaticBombTarget classifies a newly scouted building as a military
// or economy target and adds it to the matching list if there's room
// (spec §4.M CheckStaticBombTarget, grounded on
// AAIAirForceManager::CheckIfStaticBombTarget). Buildings outside those
// two categories are ignored.
func (m *Manager) CheckStaticBombTarget(cat buildtree.UnitCategory, unitID int, defID buildtree.UnitDefId, pos emath.Vec2) bool {
	var targets map[int]*Target
	var max int

	switch cat {
	case buildtree.CategoryStaticArtillery, buildtree.CategoryStaticSupport:
		targets, max = m.militaryTargets, m.maxMilitaryTargets
	case buildtree.CategoryPowerPlant, buildtree.CategoryMetalExtractor, buildtree.CategoryMetalMaker:
		targets, max = m.economyTargets, m.maxEconomyTargets
	default:
		return false
	}

	if len(targets) >= max {
		return false
	}

	targets[unitID] = &Target{UnitID: unitID, DefID: defID, Pos: pos}
	return true
}

// RemoveTarget drops unitID from whichever target list it's on (spec
// §4.M RemoveTarget).
func (m *Manager) RemoveTarget(unitID int) {
	delete(m.militaryTargets, unitID)
	delete(m.economyTargets, unitID)
}

// RefreshTargets drops every target that's no longer alive or has become
// too heavily defended by enemy anti-air to be worth the bombers it would
// cost (spec §4.M RefreshTargets). targetAlive reports whether a scouted
// unit is still there; enemyAirDefencePowerAt estimates the anti-air
// power guarding a position, sampled along the path an air group would
// take to reach it.
//
// AAIAirForceManager::CheckStaticBombTargets only ever removes the first
// stale/over-defended target it finds per call (an early `return` inside
// its double loop over both target lists) — nothing else in that function
// paces cleanup, so a target that outlives its usefulness would otherwise
// squat on a scarce MAX_*_TARGETS slot for as many ticks as there are
// other targets ahead of it in iteration order. That reads as an
// oversight rather than an intentional one-per-tick throttle, so this
// port sweeps both lists fully on every call instead.
func (m *Manager) RefreshTargets(targetAlive func(unitID int, pos emath.Vec2) bool, enemyAirDefencePowerAt func(pos emath.Vec2) float64) {
	refreshList(m.economyTargets, targetAlive, enemyAirDefencePowerAt)
	refreshList(m.militaryTargets, targetAlive, enemyAirDefencePowerAt)
}

func refreshList(targets map[int]*Target, targetAlive func(int, emath.Vec2) bool, enemyAirDefencePowerAt func(emath.Vec2) float64) {
	for id, t := range targets {
		if !targetAlive(id, t.Pos) || enemyAirDefencePowerAt(t.Pos) > maxEnemyAACombatPowerForTarget {
			delete(targets, id)
		}
	}
}

// TargetListFullness reports how full the combined target lists are, from
// 0 (empty) to 1 (both lists full) (spec §4.M TargetListFullness,
// grounded on AAIAirForceManager::GetNumberOfBombTargets).
func (m *Manager) TargetListFullness() float64 {
	total := m.maxMilitaryTargets + m.maxEconomyTargets
	if total == 0 {
		return 0
	}
	current := len(m.militaryTargets) + len(m.economyTargets)
	return float64(current) / float64(total)
}

// requiredBombers returns how many bombers a target needs to bring down,
// never less than one (spec §4.M, grounded on AAIAirForceManager's
// `std::max(health / HEALTH_PER_BOMBER, 1)` bomber count used when
// actually committing to a raid).
func requiredBombers(bt *buildtree.BuildTree, defID buildtree.UnitDefId, healthPerBomber float64) int {
	props, _ := bt.Properties(defID)
	n := int(props.Health / healthPerBomber)
	if n < 1 {
		n = 1
	}
	return n
}

// selectBestTarget picks the lowest-rated (best) target from targets that
// has enough attackers committed to it and hasn't recently cost too many
// air units, rating by distance, known air defence, and recent air
// losses (spec §4.M, grounded on AAIAirForceManager::SelectBestTarget).
// availableAntiStatic/availableAntiSurface are the bomber counts on hand;
// a target only qualifies once one of the two pools is proven sufficient.
func (m *Manager) selectBestTarget(
	targets map[int]*Target,
	availableAntiStatic, availableAntiSurface int,
	position emath.Vec2,
	bt *buildtree.BuildTree,
	maxAirGroupSize int,
	maxSquaredMapDist float64,
	sectorOf func(emath.Vec2) *sector.Sector,
) *Target {
	bestRating := 4.0 // between 0 (best) and 3 (worst)
	var selected *Target

	for _, t := range targets {
		s := sectorOf(t.Pos)
		if s == nil {
			continue
		}

		sufficientAttackersAvailable := availableAntiSurface > 0
		if !sufficientAttackersAvailable {
			props, _ := bt.Properties(t.DefID)
			minBombers := int(props.Health / m.healthPerBomber)
			if minBombers > maxAirGroupSize {
				minBombers = maxAirGroupSize
			}
			sufficientAttackersAvailable = availableAntiStatic >= minBombers
		}

		if !sufficientAttackersAvailable || s.LostUnits[buildtree.TargetAir] >= 0.8 {
			continue
		}

		// between 0 (target nearby) and 1 (target on the other side of the map)
		distFactor := t.Pos.DistanceSquared(position) / maxSquaredMapDist

		// between 0 (no known enemy air defences) and 1 (strong known enemy air defences)
		airDefenceFactor := s.EnemyCombatPowerOf(int(buildtree.TargetAir)) / maxCombatPower
		if airDefenceFactor > 1 {
			airDefenceFactor = 1
		}

		// between 0 (no recently lost air units) and 1 (3+ recently lost air units)
		lostAirUnitsFactor := s.LostUnits[buildtree.TargetAir] / 3.0
		if lostAirUnitsFactor > 1 {
			lostAirUnitsFactor = 1
		}

		rating := distFactor + airDefenceFactor + lostAirUnitsFactor
		if rating < bestRating {
			bestRating = rating
			selected = t
		}
	}

	return selected
}

// AirRaidBestTarget commits whatever air-combat groups are currently free
// to bombing the best available target — military targets take priority
// over economy ones — spending as many bomber groups as the target's
// health calls for before giving up (spec §4.M AirRaidBestTarget).
func (m *Manager) AirRaidBestTarget(
	eng callback.Engine,
	currentFrame int,
	bt *buildtree.BuildTree,
	airGroups []*group.Group,
	baseCenter emath.Vec2,
	maxSquaredMapDist float64,
	maxAirGroupSize int,
	sectorOf func(emath.Vec2) *sector.Sector,
	setStatus func(unitID int),
) {
	availableAntiStatic, availableAntiSurface := DetermineMaxAvailableAttackAircraft(airGroups, bombingRunUrgency)
	if availableAntiStatic+availableAntiSurface <= 0 {
		return
	}

	selected := m.selectBestTarget(m.militaryTargets, availableAntiStatic, availableAntiSurface, baseCenter, bt, maxAirGroupSize, maxSquaredMapDist, sectorOf)
	if selected == nil {
		selected = m.selectBestTarget(m.economyTargets, availableAntiStatic, availableAntiSurface, baseCenter, bt, maxAirGroupSize, maxSquaredMapDist, sectorOf)
	}
	if selected == nil {
		return
	}

	minBombers := requiredBombers(bt, selected.DefID, m.healthPerBomber)

	aircraftSent := 0
	for aircraftSent < minBombers {
		g := GetAirGroup(airGroups, bt, buildtree.TargetStatic, 1.0, 0.85*bombingRunUrgency)
		if g == nil {
			break
		}
		g.AirRaidTarget(eng, selected.Pos, bombingRunUrgency, currentFrame, setStatus)
		aircraftSent += g.Size()
	}

	if aircraftSent > 0 {
		m.RemoveTarget(selected.UnitID)
	}
}

// FindNextBombTarget picks a follow-up target for a bomber group that
// just finished (or lost) its previous one, retreating it to its rally
// point if nothing suitable remains (spec §4.M FindNextBombTarget).
func (m *Manager) FindNextBombTarget(
	eng callback.Engine,
	currentFrame int,
	bt *buildtree.BuildTree,
	g *group.Group,
	unitPos func(unitID int) (emath.Vec2, bool),
	maxSquaredMapDist float64,
	maxAirGroupSize int,
	sectorOf func(emath.Vec2) *sector.Sector,
	setStatus func(unitID int),
) {
	pos, ok := g.GetGroupPos(unitPos)
	if !ok {
		return
	}

	selected := m.selectBestTarget(m.militaryTargets, g.Size(), 0, pos, bt, maxAirGroupSize, maxSquaredMapDist, sectorOf)
	if selected == nil {
		selected = m.selectBestTarget(m.economyTargets, g.Size(), 0, pos, bt, maxAirGroupSize, maxSquaredMapDist, sectorOf)
	}

	if selected != nil {
		g.AirRaidTarget(eng, selected.Pos, bombingRunUrgency, currentFrame, setStatus)
	} else {
		g.TargetUnitKilled(eng, currentFrame, setStatus)
	}
}

// AirDefenceOnDemand responds to a unit being lost to an attacker our
// side could no longer fight off (spec §4.M AirDefenceOnDemand, grounded
// on AAIGroup::RemoveUnit's attacker-capability check feeding
// AAIAirForceManager::CheckTarget): it picks an available air-combat
// group and either sends it straight at the attacker (if the selected
// group is anti-static) or has it patrol overhead instead, unless the
// attacker's sector has already cost too many air units recently to
// spend more on defence. When the victim was a building, an anti-static
// group is preferred for the initial pick, since a dedicated bomber group
// is the one actually capable of finishing the attacker off before it
// does more damage there.
func AirDefenceOnDemand(
	eng callback.Engine,
	currentFrame int,
	airGroups []*group.Group,
	bt *buildtree.BuildTree,
	attackerUnitID int,
	attackerTargetType buildtree.TargetType,
	attackerPos emath.Vec2,
	victimIsBuilding bool,
	lostAirUnitsAt func(pos emath.Vec2) (float64, bool),
	setStatus func(unitID int),
) {
	lostUnits, inMap := lostAirUnitsAt(attackerPos)
	if !inMap || lostUnits >= maxLostAirUnitsForAirSupport {
		return
	}

	var g *group.Group
	if victimIsBuilding {
		g = GetAirGroup(antiStaticGroups(airGroups), bt, attackerTargetType, minAirSupportCombatPower, defendUnitsUrgency)
	}
	if g == nil {
		g = GetAirGroup(airGroups, bt, attackerTargetType, minAirSupportCombatPower, defendUnitsUrgency)
	}
	if g == nil {
		return
	}

	if g.UnitType.Has(buildtree.TypeAntiStatic) {
		g.AirRaidUnit(eng, attackerUnitID, defendUnitsUrgency, currentFrame, setStatus)
	} else {
		g.DefendAirSpace(eng, attackerPos, defendUnitsUrgency, currentFrame, setStatus)
	}
}

func antiStaticGroups(airGroups []*group.Group) []*group.Group {
	var out []*group.Group
	for _, g := range airGroups {
		if g.UnitType.Has(buildtree.TypeAntiStatic) {
			out = append(out, g)
		}
	}
	return out
}

// GetAirGroup returns the air-combat group with the highest combat power
// against targetType among those not already busy with something more
// urgent, provided it clears minCombatPower (spec §4.M GetAirGroup,
// grounded on AAIAirForceManager::GetAirGroup).
func GetAirGroup(airGroups []*group.Group, bt *buildtree.BuildTree, targetType buildtree.TargetType, minCombatPower, importance float64) *group.Group {
	var selected *group.Group
	best := minCombatPower

	for _, g := range airGroups {
		if g.TaskUrgency >= importance {
			continue
		}
		power := g.CombatPowerVsTargetType(bt, targetType)
		if power > best {
			selected = g
			best = power
		}
	}

	return selected
}

// DetermineMaxAvailableAttackAircraft tallies how many anti-static and
// anti-surface bombers, respectively, are free to take on a bombing run
// of the given importance (spec §4.M, grounded on
// AAIAirForceManager::DetermineMaximumNumberOfAvailableAttackAircraft).
func DetermineMaxAvailableAttackAircraft(airGroups []*group.Group, importance float64) (antiStatic, antiSurface int) {
	for _, g := range airGroups {
		if g.TaskUrgency >= importance {
			continue
		}
		switch {
		case g.UnitType.Has(buildtree.TypeAntiStatic):
			antiStatic += g.Size()
		case g.UnitType.Has(buildtree.TypeAntiSurface):
			antiSurface += g.Size()
		}
	}
	return antiStatic, antiSurface
}

// DeterminePositionOfAirForce estimates where the air force currently
// operates from, preferring the position of an available attack/bomber
// group over the base center (spec §4.M, grounded on
// AAIAirForceManager::DeterminePositionOfAirForce).
func DeterminePositionOfAirForce(airGroups []*group.Group, bt *buildtree.BuildTree, unitPos func(unitID int) (emath.Vec2, bool), baseCenter emath.Vec2) emath.Vec2 {
	for _, g := range airGroups {
		validType := g.UnitType.Has(buildtree.TypeAntiStatic) || g.UnitType.Has(buildtree.TypeAntiSurface)
		if !validType || !g.AvailableForAttack(bt, unitPos) {
			continue
		}
		if pos, ok := g.GetGroupPos(unitPos); ok {
			return pos
		}
	}
	return baseCenter
}

// Package group owns one homogeneous batch of combat units and the task
// state machine spec §4.J assigns to AAIGroup: adding/removing members,
// issuing orders to every member at once, rally points, and the handful
// of decisions (retreat, defend, attack, idle reaction) that only need a
// single group's own state to make.
package group

import (
	"math/rand"

	"github.com/bklimczak/aaicore/engine/buildtree"
	"github.com/bklimczak/aaicore/engine/callback"
	"github.com/bklimczak/aaicore/engine/geometry"
	emath "github.com/bklimczak/aaicore/engine/math"
	"github.com/bklimczak/aaicore/engine/sector"
)

// Task is what a group is currently doing (spec §4.J GroupTask).
type Task int

const (
	TaskIdle Task = iota
	TaskAttacking
	TaskDefending
	TaskPatrolling
	TaskBombing
	TaskRetreating
)

func (t Task) String() string {
	switch t {
	case TaskAttacking:
		return "Attacking"
	case TaskDefending:
		return "Defending"
	case TaskPatrolling:
		return "Patrolling"
	case TaskBombing:
		return "Bombing"
	case TaskRetreating:
		return "Retreating"
	default:
		return "Idle"
	}
}

// approximate squared distance (world units) within which a group is
// considered to have arrived at its rally point.
const maxSquaredDistToRallyPoint = 150 * 150

// idleReactionDelayFrames suppresses UnitIdle reacting to a unit that
// just received an order from this group a moment ago (spec §4.J,
// grounded on AAIGroup::UnitIdle's `GetCurrentFrame() - lastCommandFrame
// < 10` guard).
const idleReactionDelayFrames = 10

// Group is one uniform batch of combat units of the same def and
// continent, tracked under an opaque ID — Attack/AttackManager refer to
// groups by ID rather than holding a pointer (spec §9 id-indirection).
type Group struct {
	ID          int
	DefID       buildtree.UnitDefId
	Category    buildtree.UnitCategory
	UnitType    buildtree.UnitType
	MoveType    buildtree.MovementType
	ContinentID int
	MaxSize     int

	Units []int

	Task          Task
	TaskUrgency   float64
	TargetPos     emath.Vec2
	TargetSector  *sector.Sector

	RallyPoint    emath.Vec2
	HasRallyPoint bool

	AttackID int // 0 if this group isn't part of an attack

	lastCommandFrame int
}

// New returns an empty group of the given def/continent, sized per spec
// §4.J's per-category group-size caps (grounded on AAIGroup's
// constructor).
func New(id int, defID buildtree.UnitDefId, cat buildtree.UnitCategory, unitType buildtree.UnitType, moveType buildtree.MovementType, continentID int, cfg GroupSizeConfig) *Group {
	return &Group{
		ID:          id,
		DefID:       defID,
		Category:    cat,
		UnitType:    unitType,
		MoveType:    moveType,
		ContinentID: continentID,
		MaxSize:     maxGroupSize(cat, unitType, cfg),
	}
}

// GroupSizeConfig is the subset of config §6 max-group-size knobs Group
// needs, kept as its own small struct rather than importing engine/config
// directly (config is a leaf package; this keeps group free of a
// dependency it would otherwise need only for six integers).
type GroupSizeConfig struct {
	MaxGroupSize          int
	MaxAirGroupSize       int
	MaxAntiAirGroupSize   int
	MaxSubmarineGroupSize int
	MaxNavalGroupSize     int
	MaxArtyGroupSize      int
}

func maxGroupSize(cat buildtree.UnitCategory, unitType buildtree.UnitType, cfg GroupSizeConfig) int {
	isAntiAir := unitType.Has(buildtree.TypeAntiAir) && !unitType.Has(buildtree.TypeAntiSurface)
	switch {
	case isAntiAir:
		return cfg.MaxAntiAirGroupSize
	case cat == buildtree.CategoryMobileArtillery:
		return cfg.MaxArtyGroupSize
	case cat == buildtree.CategoryAirCombat:
		return cfg.MaxAirGroupSize
	case cat == buildtree.CategorySeaCombat:
		return cfg.MaxNavalGroupSize
	case cat == buildtree.CategorySubmarineCombat:
		return cfg.MaxSubmarineGroupSize
	default:
		return cfg.MaxGroupSize
	}
}

// Size returns the current member count.
func (g *Group) Size() int { return len(g.Units) }

// AddUnit adds unitID if it matches this group's def/continent, there's
// room, and the group isn't mid-attack (spec §4.J AddUnit). moveToRally
// is invoked to send the new unit to the group's current rally point, if
// one is set.
func (g *Group) AddUnit(unitID int, defID buildtree.UnitDefId, continentID int, moveToRally func(unitID int, pos emath.Vec2)) bool {
	if g.ContinentID != continentID || g.DefID != defID || g.Size() >= g.MaxSize {
		return false
	}
	if g.AttackID != 0 || g.Task == TaskAttacking || g.Task == TaskBombing {
		return false
	}

	g.Units = append(g.Units, unitID)

	if g.HasRallyPoint && moveToRally != nil {
		moveToRally(unitID, g.RallyPoint)
	}
	return true
}

// RemoveUnit drops unitID from the group (spec §4.J RemoveUnit). It
// reports whether the group is now empty, so the caller (Root) can tear
// down an attack membership and, via checkAirSupport, evaluate whether
// the attacker deserves an air-force response.
func (g *Group) RemoveUnit(unitID int) (empty bool) {
	for i, id := range g.Units {
		if id == unitID {
			g.Units = append(g.Units[:i], g.Units[i+1:]...)
			break
		}
	}
	if len(g.Units) == 0 {
		g.Task = TaskIdle
		g.AttackID = 0
		return true
	}
	return false
}

// GiveOrderToGroup issues cmd to every member, stamps the last-command
// frame and task urgency, and reports each unit's new status via
// setStatus (spec §4.J GiveOrderToGroup).
func (g *Group) GiveOrderToGroup(
	eng callback.Engine,
	cmd callback.Command,
	urgency float64,
	currentFrame int,
	setStatus func(unitID int),
) {
	g.lastCommandFrame = currentFrame
	g.TaskUrgency = urgency

	for _, unitID := range g.Units {
		eng.GiveOrder(unitID, cmd)
		if setStatus != nil {
			setStatus(unitID)
		}
	}
}

// Update decays task urgency one tick (spec §4.J Update). The original's
// long-range fallback recheck is folded into Executor/AttackManager's own
// per-tick threat scan rather than duplicated here.
func (g *Group) Update() {
	g.TaskUrgency *= 0.98
}

// CombatPowerVsTargetType returns this group's total combat power against
// a target type — per-unit power times member count (spec §4.J
// GetCombatPowerVsTargetType).
func (g *Group) CombatPowerVsTargetType(bt *buildtree.BuildTree, t buildtree.TargetType) float64 {
	return float64(g.Size()) * bt.CombatPowerOf(g.DefID)[t]
}

// AddCombatPower accumulates this group's combat power (per-unit power
// times member count) into an aggregate (spec §4.J AddGroupCombatPower).
func (g *Group) AddCombatPower(bt *buildtree.BuildTree, total *buildtree.CombatPower) {
	n := float64(g.Size())
	power := bt.CombatPowerOf(g.DefID)
	for t := range total {
		total[t] += power[t] * n
	}
}

// GetGroupPos returns a representative position for the group — the last
// member's position, matching the original's choice of an arbitrary but
// stable member (spec §4.J GetGroupPos). unitPos looks up a live unit's
// position; ok is false for an empty group.
func (g *Group) GetGroupPos(unitPos func(unitID int) (emath.Vec2, bool)) (emath.Vec2, bool) {
	if len(g.Units) == 0 {
		return emath.Vec2{}, false
	}
	return unitPos(g.Units[len(g.Units)-1])
}

// IsEntireGroupAtRallyPoint reports whether the group's representative
// position is within range of its rally point (spec §4.J).
func (g *Group) IsEntireGroupAtRallyPoint(unitPos func(unitID int) (emath.Vec2, bool)) bool {
	if !g.HasRallyPoint {
		return true
	}
	pos, ok := g.GetGroupPos(unitPos)
	if !ok {
		return true
	}
	return pos.Sub(g.RallyPoint).LengthSquared() < maxSquaredDistToRallyPoint
}

// DefenceRating scores how suitable this group is for responding to an
// attack at `position`, given the attacker's target type and the
// requesting importance — 0 if the group can't engage the target type,
// is continent-mismatched, or is already busy with something more
// important (spec §4.J GetDefenceRating).
func (g *Group) DefenceRating(
	bt *buildtree.BuildTree,
	attackerTargetType buildtree.TargetType,
	position emath.Vec2,
	importance float64,
	continentID int,
	unitPos func(unitID int) (emath.Vec2, bool),
) float64 {
	if g.ContinentID != -1 && g.ContinentID != continentID {
		return 0
	}
	canFight := bt.CombatPowerOf(g.DefID)[attackerTargetType] > 0
	available := g.Task == TaskIdle || g.TaskUrgency < importance
	if !canFight || !available {
		return 0
	}

	groupPos, ok := g.GetGroupPos(unitPos)
	if !ok {
		return 0
	}
	props, _ := bt.Properties(g.DefID)
	speed := props.PrimaryAbility
	dist := position.Sub(groupPos).Length()
	return speed / (1 + dist)
}

// TargetUnitKilled reacts to the group's current target being destroyed —
// air groups return to their rally point (spec §4.J TargetUnitKilled).
func (g *Group) TargetUnitKilled(eng callback.Engine, currentFrame int, setStatus func(unitID int)) {
	if g.Category != buildtree.CategoryAirCombat {
		return
	}
	cmd := callback.Command{Order: callback.OrderMove, Pos: g.RallyPoint}
	g.GiveOrderToGroup(eng, cmd, 10, currentFrame, setStatus)
}

// AttackSector orders the group to move onto/through a sector, in melee
// range if the def is a melee unit, at fight-stance range otherwise
// (spec §4.K AttackSector). attackPosition is the point the caller has
// already determined in front of the sector's attack position.
func (g *Group) AttackSector(eng callback.Engine, s *sector.Sector, attackPosition emath.Vec2, importance float64, currentFrame int, isMelee bool, setStatus func(unitID int)) {
	order := callback.OrderFight
	if isMelee {
		order = callback.OrderMove
	}
	cmd := callback.Command{Order: order, Pos: attackPosition}
	g.GiveOrderToGroup(eng, cmd, importance+8, currentFrame, setStatus)

	g.TargetPos = attackPosition
	g.TargetSector = s
	g.Task = TaskAttacking
}

// Defend orders the group to fight towards a known enemy position, or to
// guard a specific unit if the enemy's position is unknown (spec §4.J
// Defend).
func (g *Group) Defend(eng callback.Engine, enemyPos emath.Vec2, enemyKnown bool, guardUnitID int, importance float64, currentFrame int, sectorOf func(emath.Vec2) *sector.Sector, setStatus func(unitID int)) {
	var cmd callback.Command
	if enemyKnown {
		cmd = callback.Command{Order: callback.OrderFight, Pos: enemyPos}
		g.TargetPos = enemyPos
		g.TargetSector = sectorOf(enemyPos)
	} else {
		cmd = callback.Command{Order: callback.OrderGuard, TargetID: guardUnitID}
	}
	g.GiveOrderToGroup(eng, cmd, importance, currentFrame, setStatus)
	g.Task = TaskDefending
}

// Retreat orders the group to fall back to pos (spec §4.J Retreat).
func (g *Group) Retreat(eng callback.Engine, pos emath.Vec2, currentFrame int, sectorOf func(emath.Vec2) *sector.Sector, setStatus func(unitID int)) {
	g.Task = TaskRetreating
	cmd := callback.Command{Order: callback.OrderMove, Pos: pos}
	g.GiveOrderToGroup(eng, cmd, 105, currentFrame, setStatus)

	g.TargetPos = pos
	g.TargetSector = sectorOf(pos)
}

// RandomUnit returns a uniformly random member, or (0, false) if empty
// (spec §4.J GetRandomUnit).
func (g *Group) RandomUnit(rng *rand.Rand) (int, bool) {
	if len(g.Units) == 0 {
		return 0, false
	}
	return g.Units[rng.Intn(len(g.Units))], true
}

const minCombatPowerForSoloAttack = 2.5

// SufficientAttackPower reports whether the group is strong enough to
// attack on its own, without being folded into a multi-group attack
// (spec §4.K SufficientAttackPower): any group of 3+ always qualifies;
// smaller groups need above-threshold combat power against their primary
// target type.
func (g *Group) SufficientAttackPower(bt *buildtree.BuildTree) bool {
	if g.Size() >= 3 {
		return true
	}
	power := bt.CombatPowerOf(g.DefID)
	if g.UnitType.Has(buildtree.TypeAntiAir) {
		return power[buildtree.TargetAir] > minCombatPowerForSoloAttack
	}
	props, _ := bt.Properties(g.DefID)
	return power[props.TargetType] > minCombatPowerForSoloAttack
}

// AvailableForAttack reports whether the group may join an attack: not
// already attacking, settled at its rally point, and either an assault
// unit with enough solo power or a pure anti-air escort (spec §4.K
// AvailableForAttack/IsAvailableForAttack).
func (g *Group) AvailableForAttack(bt *buildtree.BuildTree, unitPos func(unitID int) (emath.Vec2, bool)) bool {
	if g.AttackID != 0 || !g.IsEntireGroupAtRallyPoint(unitPos) {
		return false
	}
	isAssault := g.Category.IsCombat() && !g.Category.IsStatic()
	isPureAntiAir := g.UnitType.Has(buildtree.TypeAntiAir) && !g.UnitType.Has(buildtree.TypeAntiSurface)
	if isAssault && g.SufficientAttackPower(bt) {
		return true
	}
	return isPureAntiAir
}

// AirRaidTarget orders an air group to bomb (if anti-static) or fight
// towards (otherwise) a target position (spec §4.M AirRaidTarget).
func (g *Group) AirRaidTarget(eng callback.Engine, pos emath.Vec2, importance float64, currentFrame int, setStatus func(unitID int)) {
	order := callback.OrderFight
	if g.UnitType.Has(buildtree.TypeAntiStatic) {
		order = callback.OrderAttack
		g.Task = TaskBombing
	} else {
		g.Task = TaskAttacking
	}
	cmd := callback.Command{Order: order, Pos: pos}
	g.GiveOrderToGroup(eng, cmd, importance, currentFrame, setStatus)
}

// DefendAirSpace orders a fighter group to patrol a position (spec §4.M
// DefendAirSpace).
func (g *Group) DefendAirSpace(eng callback.Engine, pos emath.Vec2, importance float64, currentFrame int, setStatus func(unitID int)) {
	cmd := callback.Command{Order: callback.OrderPatrol, Pos: pos}
	g.GiveOrderToGroup(eng, cmd, importance, currentFrame, setStatus)
	g.Task = TaskPatrolling
}

// AirRaidUnit orders an air group to attack a specific enemy unit (spec
// §4.M AirRaidUnit).
func (g *Group) AirRaidUnit(eng callback.Engine, enemyUnitID int, importance float64, currentFrame int, setStatus func(unitID int)) {
	cmd := callback.Command{Order: callback.OrderAttack, TargetID: enemyUnitID}
	g.GiveOrderToGroup(eng, cmd, importance, currentFrame, setStatus)
	g.Task = TaskAttacking
}

// UpdateRallyPoint clears the rally point if it has fallen outside the
// base (e.g. after a sector was lost) so the caller can request a new one
// (spec §4.J UpdateRallyPoint). inBase reports whether a sector still
// counts as part of the base.
func (g *Group) UpdateRallyPoint(inBase func(pos emath.Vec2) bool) {
	if g.HasRallyPoint && !inBase(g.RallyPoint) {
		g.HasRallyPoint = false
	}
}

// SetRallyPoint installs a newly-determined rally point and, if the
// group is currently idle, sends every member there (spec §4.J
// GetNewRallyPoint).
func (g *Group) SetRallyPoint(eng callback.Engine, pos emath.Vec2, found bool, currentFrame int, setStatus func(unitID int)) {
	if !found {
		g.HasRallyPoint = false
		return
	}
	g.RallyPoint = pos
	g.HasRallyPoint = true

	if g.Task == TaskIdle {
		cmd := callback.Command{Order: callback.OrderMove, Pos: pos}
		g.GiveOrderToGroup(eng, cmd, 90, currentFrame, setStatus)
	}
}

// PositionInFrontOfSector computes the point the group should move to so
// it engages a sector's attack position at stand-off range rather than
// stacking on top of it (spec §4.K, grounded on
// AAIGroup::DeterminePositionInFrontOfTarget).
func PositionInFrontOfSector(groupPos, sectorAttackPos emath.Vec2, standoffDist float64) emath.Vec2 {
	return geometry.PositionInFrontOfTarget(groupPos, sectorAttackPos, standoffDist)
}

// UnitIdle reacts to one member going idle: aircraft in non-air-only
// games return to the rally point; combat units that are part of an
// attack either move on to the next sector (if their target sector has
// been cleared), re-guard the unit they're escorting (anti-air), or push
// into the current target sector; retreating/defending units that have
// reached their target sector go idle (spec §4.J UnitIdle). The many
// engine-side decisions (where is this unit now, has the target sector
// been cleared, who else is in the attack) are all supplied as closures
// so Group stays free of a direct AttackManager/sector dependency.
func (g *Group) UnitIdle(
	eng callback.Engine,
	unitID int,
	currentFrame int,
	unitPos func(unitID int) (emath.Vec2, bool),
	sectorOf func(emath.Vec2) *sector.Sector,
	isAssaultUnit bool,
	isAntiAir bool,
	targetCleared bool,
	attackPosition emath.Vec2,
	setStatus func(unitID int),
) (requestNextSector, stopAttack bool) {
	if currentFrame-g.lastCommandFrame < idleReactionDelayFrames {
		return false, false
	}

	if g.Category == buildtree.CategoryAirCombat && g.Task != TaskIdle {
		cmd := callback.Command{Order: callback.OrderMove, Pos: g.RallyPoint}
		g.GiveOrderToGroup(eng, cmd, 100, currentFrame, setStatus)
		g.Task = TaskIdle
		return false, false
	}

	if g.AttackID != 0 {
		pos, ok := unitPos(unitID)
		inTargetSector := !ok || g.TargetSector == nil || sectorOf(pos) == g.TargetSector

		if inTargetSector {
			if isAssaultUnit && targetCleared {
				return true, false
			}
			if isAntiAir {
				return false, false // caller re-guards or stops the attack using its own group lookup
			}
		} else if isAssaultUnit {
			cmd := callback.Command{Order: callback.OrderFight, Pos: attackPosition}
			eng.GiveOrder(unitID, cmd)
			if setStatus != nil {
				setStatus(unitID)
			}
		}
		return false, false
	}

	if g.Task == TaskRetreating || g.Task == TaskDefending {
		pos, ok := unitPos(unitID)
		if !ok || g.TargetSector == nil || sectorOf(pos) == g.TargetSector {
			g.Task = TaskIdle
		}
	}

	return false, false
}

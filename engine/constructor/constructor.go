// Package constructor owns one builder/factory/assister unit's activity
// state machine and the BuildTask it's currently carrying out (spec §4.F,
// §4.G). It issues no engine calls on its own besides GiveConstructionOrder
// — Brain/Executor decide what to build, Constructor just tracks and
// enforces the legal lifecycle of carrying that decision out.
package constructor

import (
	"github.com/bklimczak/aaicore/engine/buildtree"
	"github.com/bklimczak/aaicore/engine/callback"
	"github.com/bklimczak/aaicore/engine/geometry"
	emath "github.com/bklimczak/aaicore/engine/math"
)

// Constructor is the per-unit record.
type Constructor struct {
	UnitID int
	DefID  buildtree.UnitDefId

	IsFactory  bool
	IsBuilder  bool
	IsAssister bool

	Activity Activity

	ConstructedUnitID int
	ConstructedDefID  buildtree.UnitDefId
	ConstructedCat    buildtree.UnitCategory
	BuildPos          emath.Vec2

	AssistUnitID int // unit this constructor is currently assisting, 0 if none
	Assistants   map[int]struct{}

	BuildTask *BuildTask
}

// New returns an idle constructor.
func New(unitID int, defID buildtree.UnitDefId, isFactory, isBuilder, isAssister bool) *Constructor {
	return &Constructor{
		UnitID:     unitID,
		DefID:      defID,
		IsFactory:  isFactory,
		IsBuilder:  isBuilder,
		IsAssister: isAssister,
		Activity:   ActivityIdle,
		Assistants: make(map[int]struct{}),
	}
}

func (c *Constructor) transition(to Activity) bool {
	if !CheckTransition(c.Activity, to) {
		return false
	}
	c.Activity = to
	return true
}

// IsIdle reports whether the constructor is doing nothing.
func (c *Constructor) IsIdle() bool { return c.Activity == ActivityIdle }

// IsHeadingToBuildsite reports whether the constructor is en route to a
// placed building, construction not yet started.
func (c *Constructor) IsHeadingToBuildsite() bool { return c.Activity == ActivityHeadingToBuildsite }

// IsAvailableForConstruction reports whether the constructor can accept a
// new build order — idle, or occupied with a task lower-priority than its
// own construction (assisting/reclaiming/repairing), per spec §4.F.
func (c *Constructor) IsAvailableForConstruction() bool {
	return !c.Activity.IsCarryingOutConstructionOrder()
}

// GiveConstructionOrder issues a build order for `building` at `pos` and
// transitions to HeadingToBuildsite (spec §4.F give_construction_order).
func (c *Constructor) GiveConstructionOrder(eng callback.Engine, building buildtree.UnitDefId, cat buildtree.UnitCategory, pos emath.Vec2) bool {
	if !c.transition(ActivityHeadingToBuildsite) {
		return false
	}
	c.ConstructedDefID = building
	c.ConstructedCat = cat
	c.BuildPos = pos
	eng.GiveOrder(c.UnitID, callback.Command{Order: callback.OrderMove, Pos: pos, BuildDef: int(building)})
	return true
}

// ConstructionStarted records that the engine reported a new unit being
// built by this constructor and moves to Constructing (spec §4.F
// construction_started).
func (c *Constructor) ConstructionStarted(unitID int, task *BuildTask) bool {
	if !c.transition(ActivityConstructing) {
		return false
	}
	c.ConstructedUnitID = unitID
	c.BuildTask = task
	return true
}

// ConstructionFinished clears all construction bookkeeping and returns the
// constructor to Idle, releasing anyone assisting it (spec §4.F
// construction_finished).
func (c *Constructor) ConstructionFinished() {
	if c.Activity == ActivityDestroyed {
		return
	}
	c.Activity = ActivityIdle
	c.ConstructedUnitID = 0
	c.ConstructedDefID = buildtree.InvalidUnitDefId
	c.ConstructedCat = buildtree.CategoryUnknown
	c.BuildPos = emath.Vec2{}
	c.BuildTask = nil
	c.ReleaseAllAssistants()
}

// ConstructionFailed reports whether the order in flight was for a static
// building (so the caller must clean up the buildmap reservation before
// calling ConstructionFinished), per spec §4.F construction_failed.
func (c *Constructor) ConstructionFailed(bt *buildtree.BuildTree) (wasStatic bool, failedDefID buildtree.UnitDefId, buildPos emath.Vec2) {
	failedDefID = c.ConstructedDefID
	buildPos = c.BuildPos
	if props, ok := bt.Properties(failedDefID); ok {
		wasStatic = props.MovementType == buildtree.MoveStaticLand ||
			props.MovementType == buildtree.MoveStaticSeaFloater ||
			props.MovementType == buildtree.MoveStaticSeaSubmerged
	}
	return wasStatic, failedDefID, buildPos
}

// AssistConstruction marks this constructor as assisting targetUnitID
// (spec §4.F assist_construction).
func (c *Constructor) AssistConstruction(targetUnitID int) bool {
	if !c.transition(ActivityAssisting) {
		return false
	}
	c.AssistUnitID = targetUnitID
	return true
}

// StopAssisting returns an assisting constructor to Idle.
func (c *Constructor) StopAssisting() {
	if c.Activity != ActivityAssisting {
		return
	}
	c.Activity = ActivityIdle
	c.AssistUnitID = 0
}

// TakeOverConstruction assumes responsibility for a BuildTask whose
// original constructor was destroyed (spec §4.F/§4.G take_over_construction,
// invoked via find_closest_assistant).
func (c *Constructor) TakeOverConstruction(task *BuildTask, cat buildtree.UnitCategory) bool {
	if !c.transition(ActivityConstructing) {
		return false
	}
	task.ConstructorUnitID = c.UnitID
	c.BuildTask = task
	c.ConstructedUnitID = task.UnitID
	c.ConstructedDefID = task.DefID
	c.ConstructedCat = cat
	c.BuildPos = task.BuildSite
	return true
}

// AddAssistant/RemoveAssistant/ReleaseAllAssistants track the set of
// constructors currently assisting this one.
func (c *Constructor) AddAssistant(unitID int)    { c.Assistants[unitID] = struct{}{} }
func (c *Constructor) RemoveAssistant(unitID int) { delete(c.Assistants, unitID) }
func (c *Constructor) ReleaseAllAssistants() {
	for id := range c.Assistants {
		delete(c.Assistants, id)
	}
}

// Killed transitions to Destroyed, a terminal state.
func (c *Constructor) Killed() {
	c.transition(ActivityDestroyed)
}

// CheckRetreatFromAttackBy decides whether this constructor should
// reposition away from recently-sighted attackers of attackedByCategory.
// Scouts and air units don't trigger a retreat — outrunning a scout wastes
// more build time than it saves, and air raids are Brain/static-defence's
// problem, not a lone constructor's (spec §4.F check_retreat_from_attack_by).
func (c *Constructor) CheckRetreatFromAttackBy(attackedByCategory buildtree.UnitCategory, pos emath.Vec2, threats []geometry.WeightedPoint, retreatDist float64, passable geometry.PassableFunc) (emath.Vec2, bool) {
	if attackedByCategory == buildtree.CategoryScout || attackedByCategory == buildtree.CategoryAirCombat {
		return emath.Vec2{}, false
	}
	if len(threats) == 0 {
		return emath.Vec2{}, false
	}
	centroid := geometry.WeightedCentroid(threats)
	return geometry.SafeRetreatPosition(pos, centroid, retreatDist, passable), true
}

package constructor

import (
	"github.com/bklimczak/aaicore/engine/buildtree"
	emath "github.com/bklimczak/aaicore/engine/math"
)

// BuildTask tracks one in-progress construction: the unit/building being
// built, where, and which constructor is responsible for it (spec §4.G,
// AAIBuildTask in the original). It is created the moment the engine
// reports "unit being built" and destroyed on finish or failure.
type BuildTask struct {
	UnitID            int
	DefID             buildtree.UnitDefId
	BuildSite         emath.Vec2
	ConstructorUnitID int
}

// NewBuildTask records a newly started construction.
func NewBuildTask(unitID int, defID buildtree.UnitDefId, buildSite emath.Vec2, constructorUnitID int) *BuildTask {
	return &BuildTask{UnitID: unitID, DefID: defID, BuildSite: buildSite, ConstructorUnitID: constructorUnitID}
}

// BuilderDestroyed detaches this task from its (now dead) constructor so
// the caller can hand it to a replacement via TakeOverConstruction (spec
// §4.G builder_destroyed).
func (bt *BuildTask) BuilderDestroyed() {
	bt.ConstructorUnitID = 0
}

// NeedsNewConstructor reports whether this task's constructor was just
// destroyed and it needs take-over (find_closest_assistant) to continue.
func (bt *BuildTask) NeedsNewConstructor() bool {
	return bt.ConstructorUnitID == 0
}

package constructor

import (
	"testing"

	"github.com/bklimczak/aaicore/engine/buildtree"
	"github.com/bklimczak/aaicore/engine/callback"
	"github.com/bklimczak/aaicore/engine/geometry"
	emath "github.com/bklimczak/aaicore/engine/math"
)

type fakeOrderEngine struct {
	lastUnit int
	lastCmd  callback.Command
}

func (f *fakeOrderEngine) GetNumUnitDefs() int                                        { return 0 }
func (f *fakeOrderEngine) GetUnitDef(int) (callback.UnitDef, bool)                    { return callback.UnitDef{}, false }
func (f *fakeOrderEngine) GetUnitDefList() []callback.UnitDef                         { return nil }
func (f *fakeOrderEngine) GetUnitDefByName(string) (callback.UnitDef, bool)           { return callback.UnitDef{}, false }
func (f *fakeOrderEngine) GetUnitPos(int) (emath.Vec2, bool)                          { return emath.Vec2{}, false }
func (f *fakeOrderEngine) GetUnitDefOf(int) (callback.UnitDef, bool)                  { return callback.UnitDef{}, false }
func (f *fakeOrderEngine) GetUnitTeam(int) int                                        { return 0 }
func (f *fakeOrderEngine) GetMyTeam() int                                             { return 0 }
func (f *fakeOrderEngine) GetMyAllyTeam() int                                         { return 0 }
func (f *fakeOrderEngine) IsAllied(int, int) bool                                     { return false }
func (f *fakeOrderEngine) UnitBeingBuilt(int) bool                                    { return false }
func (f *fakeOrderEngine) GetHeightmap() []float64                                    { return nil }
func (f *fakeOrderEngine) GetLOSMap() []float64                                       { return nil }
func (f *fakeOrderEngine) GetMetalMap() []float64                                     { return nil }
func (f *fakeOrderEngine) GetMaxMetal() float64                                       { return 0 }
func (f *fakeOrderEngine) GetExtractorRadius() float64                                { return 0 }
func (f *fakeOrderEngine) MapWidth() int                                              { return 0 }
func (f *fakeOrderEngine) MapHeight() int                                             { return 0 }
func (f *fakeOrderEngine) GetCurrentFrame() int                                       { return 0 }
func (f *fakeOrderEngine) GetMetal() float64                                          { return 0 }
func (f *fakeOrderEngine) GetEnergy() float64                                         { return 0 }
func (f *fakeOrderEngine) GetMetalStorage() float64                                   { return 0 }
func (f *fakeOrderEngine) GetEnergyStorage() float64                                  { return 0 }
func (f *fakeOrderEngine) GetMetalIncome() float64                                    { return 0 }
func (f *fakeOrderEngine) GetEnergyIncome() float64                                   { return 0 }
func (f *fakeOrderEngine) GetMetalUsage() float64                                     { return 0 }
func (f *fakeOrderEngine) GetEnergyUsage() float64                                    { return 0 }
func (f *fakeOrderEngine) CanBuildAt(int, emath.Vec2) bool                            { return true }
func (f *fakeOrderEngine) ClosestBuildSite(int, emath.Vec2, float64, float64) (emath.Vec2, bool) {
	return emath.Vec2{}, false
}
func (f *fakeOrderEngine) GiveOrder(unitID int, cmd callback.Command) {
	f.lastUnit = unitID
	f.lastCmd = cmd
}
func (f *fakeOrderEngine) GetEnemyUnits(emath.Vec2, float64) []callback.EnemyUnit { return nil }
func (f *fakeOrderEngine) GetEnemyUnitsInRadarAndLOS() []callback.EnemyUnit       { return nil }
func (f *fakeOrderEngine) GetFriendlyUnits() []int                               { return nil }
func (f *fakeOrderEngine) Elevation(float64, float64) float64                    { return 0 }
func (f *fakeOrderEngine) SendTextMessage(string, int)                          {}
func (f *fakeOrderEngine) GetFilePath(callback.FileMode) (string, error)        { return "", nil }

// I: only the edges spec §3 names for Constructor.activity are legal.
func TestActivityTransitionsOnlyLegalEdges(t *testing.T) {
	c := New(1, 5, false, true, false)
	if c.Activity != ActivityIdle {
		t.Fatalf("new constructor should start Idle, got %v", c.Activity)
	}

	eng := &fakeOrderEngine{}
	if !c.GiveConstructionOrder(eng, 4, buildtree.CategoryMobileConstructor, emath.Vec2{X: 10, Y: 10}) {
		t.Fatal("Idle -> HeadingToBuildsite should be legal")
	}
	if c.Activity != ActivityHeadingToBuildsite {
		t.Fatalf("expected HeadingToBuildsite, got %v", c.Activity)
	}
	if eng.lastUnit != 1 || eng.lastCmd.BuildDef != 4 {
		t.Fatalf("expected a build order for def 4 on unit 1, got %+v on unit %d", eng.lastCmd, eng.lastUnit)
	}

	// Can't skip straight to Assisting from HeadingToBuildsite.
	if c.AssistConstruction(99) {
		t.Fatal("HeadingToBuildsite -> Assisting should be illegal")
	}

	if !c.ConstructionStarted(42, NewBuildTask(42, 4, c.BuildPos, c.UnitID)) {
		t.Fatal("HeadingToBuildsite -> Constructing should be legal")
	}
	if c.Activity != ActivityConstructing {
		t.Fatalf("expected Constructing, got %v", c.Activity)
	}

	c.ConstructionFinished()
	if c.Activity != ActivityIdle {
		t.Fatalf("expected Idle after finish, got %v", c.Activity)
	}
	if c.BuildTask != nil || c.ConstructedUnitID != 0 {
		t.Fatal("ConstructionFinished should clear all construction bookkeeping")
	}

	c.Killed()
	if c.Activity != ActivityDestroyed {
		t.Fatalf("expected Destroyed, got %v", c.Activity)
	}
	if c.GiveConstructionOrder(eng, 4, buildtree.CategoryMobileConstructor, emath.Vec2{}) {
		t.Fatal("Destroyed is terminal, no transitions out")
	}
}

func TestAssistingRoundTrip(t *testing.T) {
	c := New(1, 4, false, false, true)
	if !c.AssistConstruction(7) {
		t.Fatal("Idle -> Assisting should be legal")
	}
	if c.AssistUnitID != 7 {
		t.Fatalf("AssistUnitID = %d, want 7", c.AssistUnitID)
	}
	c.StopAssisting()
	if c.Activity != ActivityIdle || c.AssistUnitID != 0 {
		t.Fatal("StopAssisting should return to Idle and clear AssistUnitID")
	}
}

func TestTakeOverConstruction(t *testing.T) {
	dead := New(1, 5, false, true, false)
	eng := &fakeOrderEngine{}
	dead.GiveConstructionOrder(eng, 4, buildtree.CategoryMobileConstructor, emath.Vec2{X: 1, Y: 1})
	task := NewBuildTask(50, 4, emath.Vec2{X: 1, Y: 1}, dead.UnitID)
	dead.ConstructionStarted(50, task)
	dead.Killed()
	task.BuilderDestroyed()

	if !task.NeedsNewConstructor() {
		t.Fatal("expected task to need a new constructor after builder destroyed")
	}

	replacement := New(2, 5, false, true, false)
	if !replacement.TakeOverConstruction(task, buildtree.CategoryMobileConstructor) {
		t.Fatal("Idle -> Constructing via take-over should be legal")
	}
	if task.ConstructorUnitID != replacement.UnitID {
		t.Fatalf("task.ConstructorUnitID = %d, want %d", task.ConstructorUnitID, replacement.UnitID)
	}
	if replacement.ConstructedUnitID != 50 {
		t.Fatalf("replacement.ConstructedUnitID = %d, want 50", replacement.ConstructedUnitID)
	}
}

func TestCheckRetreatFromAttackByIgnoresScoutsAndAir(t *testing.T) {
	c := New(1, 5, false, true, false)
	threats := []geometry.WeightedPoint{{Pos: emath.Vec2{X: 100, Y: 0}, Weight: 1}}

	if _, retreat := c.CheckRetreatFromAttackBy(buildtree.CategoryScout, emath.Vec2{}, threats, 50, nil); retreat {
		t.Fatal("should not retreat from scouts")
	}
	if _, retreat := c.CheckRetreatFromAttackBy(buildtree.CategoryAirCombat, emath.Vec2{}, threats, 50, nil); retreat {
		t.Fatal("should not retreat from air")
	}
	pos, retreat := c.CheckRetreatFromAttackBy(buildtree.CategoryGroundCombat, emath.Vec2{}, threats, 50, nil)
	if !retreat {
		t.Fatal("should retreat from ground combat units")
	}
	if pos.X >= 0 {
		t.Fatalf("expected to retreat away from threat at +X, got pos %+v", pos)
	}
}

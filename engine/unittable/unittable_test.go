package unittable

import (
	"testing"

	"github.com/bklimczak/aaicore/engine/buildtree"
	"github.com/bklimczak/aaicore/engine/callback"
	"github.com/bklimczak/aaicore/engine/config"
	emath "github.com/bklimczak/aaicore/engine/math"
)

type fakeEngine struct{ defs []callback.UnitDef }

func (f *fakeEngine) GetNumUnitDefs() int { return len(f.defs) }
func (f *fakeEngine) GetUnitDef(id int) (callback.UnitDef, bool) {
	for _, d := range f.defs {
		if d.ID == id {
			return d, true
		}
	}
	return callback.UnitDef{}, false
}
func (f *fakeEngine) GetUnitDefList() []callback.UnitDef { return f.defs }
func (f *fakeEngine) GetUnitDefByName(name string) (callback.UnitDef, bool) {
	for _, d := range f.defs {
		if d.Name == name {
			return d, true
		}
	}
	return callback.UnitDef{}, false
}
func (f *fakeEngine) GetUnitPos(int) (emath.Vec2, bool)             { return emath.Vec2{}, false }
func (f *fakeEngine) GetUnitDefOf(int) (callback.UnitDef, bool)     { return callback.UnitDef{}, false }
func (f *fakeEngine) GetUnitTeam(int) int                           { return 0 }
func (f *fakeEngine) GetMyTeam() int                                { return 0 }
func (f *fakeEngine) GetMyAllyTeam() int                             { return 0 }
func (f *fakeEngine) IsAllied(int, int) bool                        { return false }
func (f *fakeEngine) UnitBeingBuilt(int) bool                       { return false }
func (f *fakeEngine) GetHeightmap() []float64                       { return nil }
func (f *fakeEngine) GetLOSMap() []float64                          { return nil }
func (f *fakeEngine) GetMetalMap() []float64                        { return nil }
func (f *fakeEngine) GetMaxMetal() float64                          { return 0 }
func (f *fakeEngine) GetExtractorRadius() float64                   { return 0 }
func (f *fakeEngine) MapWidth() int                                 { return 0 }
func (f *fakeEngine) MapHeight() int                                { return 0 }
func (f *fakeEngine) GetCurrentFrame() int                          { return 0 }
func (f *fakeEngine) GetMetal() float64                             { return 0 }
func (f *fakeEngine) GetEnergy() float64                            { return 0 }
func (f *fakeEngine) GetMetalStorage() float64                      { return 0 }
func (f *fakeEngine) GetEnergyStorage() float64                     { return 0 }
func (f *fakeEngine) GetMetalIncome() float64                       { return 0 }
func (f *fakeEngine) GetEnergyIncome() float64                      { return 0 }
func (f *fakeEngine) GetMetalUsage() float64                        { return 0 }
func (f *fakeEngine) GetEnergyUsage() float64                       { return 0 }
func (f *fakeEngine) CanBuildAt(int, emath.Vec2) bool               { return false }
func (f *fakeEngine) ClosestBuildSite(int, emath.Vec2, float64, float64) (emath.Vec2, bool) {
	return emath.Vec2{}, false
}
func (f *fakeEngine) GiveOrder(int, callback.Command)                       {}
func (f *fakeEngine) GetEnemyUnits(emath.Vec2, float64) []callback.EnemyUnit { return nil }
func (f *fakeEngine) GetEnemyUnitsInRadarAndLOS() []callback.EnemyUnit       { return nil }
func (f *fakeEngine) GetFriendlyUnits() []int                                { return nil }
func (f *fakeEngine) Elevation(float64, float64) float64                    { return 0 }
func (f *fakeEngine) SendTextMessage(string, int)                           {}
func (f *fakeEngine) GetFilePath(callback.FileMode) (string, error)         { return "", nil }

// commander(1) builds factory(2) and mobileBuilder(5); factory(2) builds
// turret(3) and assister(4); mobileBuilder(5) builds assister(4) too, so
// it gets the TypeBuilder bit while factory(2) gets TypeFactory.
func testCatalog() []callback.UnitDef {
	return []callback.UnitDef{
		{ID: 1, Name: "commander", IsCommander: true, BuildOptions: []int{2, 5}, MetalCost: 2000, BuildTime: 1, Speed: 1},
		{ID: 2, Name: "factory", IsBuilding: true, BuildOptions: []int{3, 4}, MetalCost: 1000, BuildTime: 500},
		{
			ID: 3, Name: "turret", IsBuilding: true, MetalCost: 300, BuildTime: 200,
			Weapons: []callback.Weapon{{Range: 400, MaxDamage: 50, TargetCategories: callback.TargetsSurface}},
		},
		{ID: 4, Name: "assister", CanAssist: true, MetalCost: 150, BuildTime: 100, Speed: 40},
		{ID: 5, Name: "mobile_builder", BuildOptions: []int{4}, MetalCost: 400, BuildTime: 300, Speed: 60},
	}
}

func testConfig() *config.Config {
	c := config.Default()
	c.Sides = 1
	c.StartUnits = []string{"commander"}
	return c
}

func buildTestTree(t *testing.T) *buildtree.BuildTree {
	t.Helper()
	eng := &fakeEngine{defs: testCatalog()}
	bt := buildtree.New(nil)
	if err := bt.Generate(eng, testConfig()); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	return bt
}

// I8: active + under_construction + requested bookkeeping stays
// consistent through the request -> created -> finished lifecycle, and
// through a request failure.
func TestCounterLifecycle(t *testing.T) {
	bt := buildTestTree(t)
	tbl := New(bt)

	cat := buildtree.CategoryMobileConstructor

	tbl.UnitRequested(cat, 2)
	if got := tbl.RequestedUnitsOfCategory(cat); got != 2 {
		t.Fatalf("after request: requested=%d, want 2", got)
	}

	tbl.UnitCreated(cat)
	if got := tbl.RequestedUnitsOfCategory(cat); got != 1 {
		t.Fatalf("after created: requested=%d, want 1", got)
	}
	if got := tbl.UnderConstructionUnitsOfCategory(cat); got != 1 {
		t.Fatalf("after created: underConstruction=%d, want 1", got)
	}

	tbl.UnitFinished(cat)
	if got := tbl.UnderConstructionUnitsOfCategory(cat); got != 0 {
		t.Fatalf("after finished: underConstruction=%d, want 0", got)
	}
	if got := tbl.ActiveUnitsOfCategory(cat); got != 1 {
		t.Fatalf("after finished: active=%d, want 1", got)
	}

	tbl.UnitRequestFailed(cat)
	if got := tbl.RequestedUnitsOfCategory(cat); got != 0 {
		t.Fatalf("after request failed: requested=%d, want 0", got)
	}

	tbl.ActiveUnitKilled(cat)
	if got := tbl.ActiveUnitsOfCategory(cat); got != 0 {
		t.Fatalf("after active killed: active=%d, want 0", got)
	}
}

func TestFindBuilderSkipsUnavailableAndWrongTarget(t *testing.T) {
	bt := buildTestTree(t)
	tbl := New(bt)

	tbl.AddUnit(100, 5)
	tbl.AddConstructor(100, 5)

	q := BuilderQuery{
		PositionOf:  func(int) (emath.Vec2, bool) { return emath.Vec2{}, true },
		IsAvailable: func(int) bool { return true },
		IsIdle:      func(int) bool { return true },
		ContinentOf: func(emath.Vec2) int { return 0 },
		MaxSpeedOf:  func(buildtree.UnitDefId) float64 { return 60 },
	}

	if _, ok := tbl.FindBuilder(q, buildtree.UnitDefId(4), true); !ok {
		t.Fatal("expected mobile_builder to be found for assister target")
	}
	if _, ok := tbl.FindBuilder(q, buildtree.UnitDefId(3), true); ok {
		t.Fatal("mobile_builder cannot build the turret, should not be found")
	}

	unavailable := q
	unavailable.IsAvailable = func(int) bool { return false }
	if _, ok := tbl.FindBuilder(unavailable, buildtree.UnitDefId(4), true); ok {
		t.Fatal("unavailable builder should not be returned")
	}
}

func TestFindClosestBuilderPicksNearest(t *testing.T) {
	bt := buildTestTree(t)
	tbl := New(bt)

	tbl.AddUnit(100, 5)
	tbl.AddConstructor(100, 5)
	tbl.AddUnit(101, 5)
	tbl.AddConstructor(101, 5)

	positions := map[int]emath.Vec2{
		100: {X: 0, Y: 0},
		101: {X: 1000, Y: 0},
	}

	q := BuilderQuery{
		PositionOf:  func(id int) (emath.Vec2, bool) { p, ok := positions[id]; return p, ok },
		IsAvailable: func(int) bool { return true },
		IsIdle:      func(int) bool { return true },
		ContinentOf: func(emath.Vec2) int { return 0 },
		MaxSpeedOf:  func(buildtree.UnitDefId) float64 { return 60 },
	}

	best, _, ok := tbl.FindClosestBuilder(q, buildtree.UnitDefId(4), emath.Vec2{X: 10, Y: 0}, true)
	if !ok {
		t.Fatal("expected a builder to be found")
	}
	if best != 100 {
		t.Fatalf("expected nearest builder 100, got %d", best)
	}
}

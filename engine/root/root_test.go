package root

import (
	"log"
	"testing"

	"github.com/bklimczak/aaicore/engine/callback"
	"github.com/bklimczak/aaicore/engine/config"
	emath "github.com/bklimczak/aaicore/engine/math"
	"github.com/bklimczak/aaicore/engine/transport"
	"github.com/bklimczak/aaicore/engine/unittable"
)

// fakeEngine is the minimal callback.Engine stand-in root's tests need: a
// small unit catalog, a flat walkable map, and per-unit positions/defs a
// test can set up before driving events through Dispatch.
type fakeEngine struct {
	defs []callback.UnitDef
	pos  map[int]emath.Vec2
	def  map[int]int // unitID -> defID

	width, height int
	heightMap     []float64
	metal         []float64
}

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
func (f *fakeEngine) GetUnitPos(unitID int) (emath.Vec2, bool) {
	p, ok := f.pos[unitID]
	return p, ok
}
func (f *fakeEngine) GetUnitDefOf(unitID int) (callback.UnitDef, bool) {
	id, ok := f.def[unitID]
	if !ok {
		return callback.UnitDef{}, false
	}
	return f.GetUnitDef(id)
}
func (f *fakeEngine) GetUnitTeam(int) int        { return 0 }
func (f *fakeEngine) GetMyTeam() int             { return 0 }
func (f *fakeEngine) GetMyAllyTeam() int         { return 0 }
func (f *fakeEngine) IsAllied(int, int) bool     { return false }
func (f *fakeEngine) UnitBeingBuilt(int) bool    { return false }
func (f *fakeEngine) GetHeightmap() []float64    { return f.heightMap }
func (f *fakeEngine) GetLOSMap() []float64       { return nil }
func (f *fakeEngine) GetMetalMap() []float64     { return f.metal }
func (f *fakeEngine) GetMaxMetal() float64       { return 100 }
func (f *fakeEngine) GetExtractorRadius() float64 { return 4 }
func (f *fakeEngine) MapWidth() int              { return f.width }
func (f *fakeEngine) MapHeight() int             { return f.height }
func (f *fakeEngine) GetCurrentFrame() int       { return 0 }
func (f *fakeEngine) GetMetal() float64          { return 0 }
func (f *fakeEngine) GetEnergy() float64         { return 0 }
func (f *fakeEngine) GetMetalStorage() float64   { return 0 }
func (f *fakeEngine) GetEnergyStorage() float64  { return 0 }
func (f *fakeEngine) GetMetalIncome() float64    { return 0 }
func (f *fakeEngine) GetEnergyIncome() float64   { return 0 }
func (f *fakeEngine) GetMetalUsage() float64     { return 0 }
func (f *fakeEngine) GetEnergyUsage() float64    { return 0 }
func (f *fakeEngine) CanBuildAt(int, emath.Vec2) bool { return false }
func (f *fakeEngine) ClosestBuildSite(int, emath.Vec2, float64, float64) (emath.Vec2, bool) {
	return emath.Vec2{}, false
}
func (f *fakeEngine) GiveOrder(int, callback.Command) {}
func (f *fakeEngine) GetEnemyUnits(emath.Vec2, float64) []callback.EnemyUnit { return nil }
func (f *fakeEngine) GetEnemyUnitsInRadarAndLOS() []callback.EnemyUnit      { return nil }
func (f *fakeEngine) GetFriendlyUnits() []int                               { return nil }
func (f *fakeEngine) Elevation(float64, float64) float64                   { return 0 }
func (f *fakeEngine) SendTextMessage(string, int)                          {}
func (f *fakeEngine) GetFilePath(callback.FileMode) (string, error)        { return "", nil }

// testCatalog mirrors the minimal commander/constructor/combat-unit shape
// buildtree's own tests use: a commander that can build a mobile
// constructor, and a ground-combat unit it can also order up directly.
func testCatalog() []callback.UnitDef {
	return []callback.UnitDef{
		{ID: 1, Name: "commander", IsCommander: true, BuildOptions: []int{2, 3}, MetalCost: 2000, BuildTime: 1, Speed: 30},
		{ID: 2, Name: "constructor", BuildOptions: []int{}, CanAssist: true, MetalCost: 150, BuildTime: 100, Speed: 40},
		{
			ID: 3, Name: "soldier", MetalCost: 60, BuildTime: 50, Speed: 50,
			Weapons: []callback.Weapon{{Range: 400, MaxDamage: 20, TargetCategories: callback.TargetsSurface}},
		},
	}
}

func testConfig() *config.Config {
	c := config.Default()
	c.Sides = 1
	c.StartUnits = []string{"commander"}
	c.MinEnergy = 10
	c.CliffSlope = 5
	c.XSpace = 4
	c.YSpace = 4
	c.MaxXRow = 6
	c.MaxYRow = 6
	c.NonAmphibMaxWaterdepth = 20
	c.SectorSize = 400
	return c
}

func newFlatEngine(w, h int) *fakeEngine {
	hm := make([]float64, w*h)
	for i := range hm {
		hm[i] = 10
	}
	return &fakeEngine{
		defs:      testCatalog(),
		pos:       make(map[int]emath.Vec2),
		def:       make(map[int]int),
		width:     w,
		height:    h,
		heightMap: hm,
		metal:     make([]float64, w*h),
	}
}

func newTestRoot(t *testing.T) (*AAIRoot, *fakeEngine) {
	t.Helper()
	eng := newFlatEngine(64, 64)
	r := New(log.New(testWriter{t}, "", 0))
	if err := r.Init(eng, 0, testConfig(), 0); err != nil {
		t.Fatalf("Init: %v", err)
	}
	return r, eng
}

type testWriter struct{ t *testing.T }

func (w testWriter) Write(p []byte) (int, error) {
	w.t.Logf("%s", p)
	return len(p), nil
}

func TestDispatchIsNoopBeforeInit(t *testing.T) {
	r := New(nil)
	r.Dispatch(transport.UnitIdleEvent{UnitID: 1}) // must not panic on nil engine/table
}

func TestUnitCreatedFinishedAssignsCombatUnitToGroup(t *testing.T) {
	r, eng := newTestRoot(t)

	eng.def[1] = 1
	eng.pos[1] = emath.Vec2{X: 100, Y: 100}
	r.Dispatch(transport.UnitCreatedEvent{UnitID: 1, BuilderID: 0})
	r.Dispatch(transport.UnitFinishedEvent{UnitID: 1})

	if r.commander != 1 {
		t.Fatalf("commander def id = %d, want 1", r.commander)
	}
	if _, ok := r.constructors[1]; !ok {
		t.Fatal("commander not registered as a constructor")
	}

	eng.def[2] = 3
	eng.pos[2] = emath.Vec2{X: 110, Y: 100}
	r.Dispatch(transport.UnitCreatedEvent{UnitID: 2, BuilderID: 1})
	r.Dispatch(transport.UnitFinishedEvent{UnitID: 2})

	entry, ok := r.table.Get(2)
	if !ok {
		t.Fatal("unit 2 missing from table")
	}
	if entry.GroupID == 0 {
		t.Error("combat unit was not assigned to a group")
	}
	if _, ok := r.grps.Group(entry.GroupID); !ok {
		t.Error("assigned group does not exist in the manager")
	}
}

func TestUnitDestroyedRemovesFromGroupAndTable(t *testing.T) {
	r, eng := newTestRoot(t)

	eng.def[2] = 3
	eng.pos[2] = emath.Vec2{X: 50, Y: 50}
	r.Dispatch(transport.UnitCreatedEvent{UnitID: 2, BuilderID: 0})
	r.Dispatch(transport.UnitFinishedEvent{UnitID: 2})

	entry, ok := r.table.Get(2)
	if !ok {
		t.Fatal("unit 2 missing from table")
	}
	groupID := entry.GroupID

	r.Dispatch(transport.UnitDestroyedEvent{UnitID: 2, AttackerID: 0, AttackerKnown: false})

	if _, ok := r.table.Get(2); ok {
		t.Error("unit 2 still present in table after destruction")
	}
	if _, ok := r.grps.Group(groupID); ok {
		t.Error("group still present after its only member died")
	}
}

func TestUnitIdleWithoutGroupDoesNotPanic(t *testing.T) {
	r, eng := newTestRoot(t)
	eng.def[2] = 3
	eng.pos[2] = emath.Vec2{X: 50, Y: 50}
	r.table.AddUnit(2, 3)

	r.Dispatch(transport.UnitIdleEvent{UnitID: 2})

	entry, ok := r.table.Get(2)
	if !ok || entry.Status != unittable.StatusIdle {
		t.Errorf("entry = %+v, ok = %v", entry, ok)
	}
}

func TestUnitDamagedFeedsAttackedByRates(t *testing.T) {
	r, eng := newTestRoot(t)
	eng.def[2] = 3
	r.table.AddUnit(2, 3)

	before := r.rates
	r.Dispatch(transport.UnitDamagedEvent{UnitID: 2, AttackerID: 99, AttackerKnown: true, AttackerDefID: 3, Damage: 10})

	if r.rates == before {
		t.Error("attacked-by rates did not change after UnitDamaged")
	}
}

func TestHandleEngineEventRoutesTeamTransfer(t *testing.T) {
	r, eng := newTestRoot(t)
	eng.def[2] = 3
	eng.pos[2] = emath.Vec2{X: 1, Y: 1}
	r.Dispatch(transport.UnitCreatedEvent{UnitID: 2, BuilderID: 0})
	r.Dispatch(transport.UnitFinishedEvent{UnitID: 2})

	if _, ok := r.table.Get(2); !ok {
		t.Fatal("unit 2 missing from table before transfer")
	}

	r.Dispatch(transport.HandleEvent{Kind: "unit_given", UnitID: 2, OldTeam: 0, NewTeam: 1})

	if _, ok := r.table.Get(2); ok {
		t.Error("unit 2 still present after being transferred away from our team")
	}
}

func TestUpdateRunsEveryScheduleEntryWithoutPanicking(t *testing.T) {
	r, _ := newTestRoot(t)
	for frame := 0; frame < 2000; frame++ {
		r.Update(frame)
	}
}

func TestUnitMoveFailedDoesNotPanicForUnknownUnit(t *testing.T) {
	r, _ := newTestRoot(t)
	r.Dispatch(transport.UnitMoveFailedEvent{UnitID: 999})
}

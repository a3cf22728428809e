package gamemap

import (
	"testing"

	"github.com/bklimczak/aaicore/engine/callback"
	"github.com/bklimczak/aaicore/engine/config"
	emath "github.com/bklimczak/aaicore/engine/math"
)

type fakeMapEngine struct {
	width, height int
	heightMap     []float64
	metal         []float64
}

func (f *fakeMapEngine) MapWidth() int               { return f.width }
func (f *fakeMapEngine) MapHeight() int              { return f.height }
func (f *fakeMapEngine) GetHeightmap() []float64      { return f.heightMap }
func (f *fakeMapEngine) GetMetalMap() []float64       { return f.metal }
func (f *fakeMapEngine) GetMaxMetal() float64         { return 100 }
func (f *fakeMapEngine) GetExtractorRadius() float64  { return 4 }

func (f *fakeMapEngine) GetNumUnitDefs() int                              { return 0 }
func (f *fakeMapEngine) GetUnitDef(int) (callback.UnitDef, bool)          { return callback.UnitDef{}, false }
func (f *fakeMapEngine) GetUnitDefList() []callback.UnitDef               { return nil }
func (f *fakeMapEngine) GetUnitDefByName(string) (callback.UnitDef, bool) { return callback.UnitDef{}, false }
func (f *fakeMapEngine) GetUnitPos(int) (emath.Vec2, bool)                { return emath.Vec2{}, false }
func (f *fakeMapEngine) GetUnitDefOf(int) (callback.UnitDef, bool)        { return callback.UnitDef{}, false }
func (f *fakeMapEngine) GetUnitTeam(int) int                              { return 0 }
func (f *fakeMapEngine) GetMyTeam() int                                   { return 0 }
func (f *fakeMapEngine) GetMyAllyTeam() int                               { return 0 }
func (f *fakeMapEngine) IsAllied(int, int) bool                           { return false }
func (f *fakeMapEngine) UnitBeingBuilt(int) bool                          { return false }
func (f *fakeMapEngine) GetLOSMap() []float64                             { return nil }
func (f *fakeMapEngine) GetCurrentFrame() int                             { return 0 }
func (f *fakeMapEngine) GetMetal() float64                                { return 0 }
func (f *fakeMapEngine) GetEnergy() float64                               { return 0 }
func (f *fakeMapEngine) GetMetalStorage() float64                         { return 0 }
func (f *fakeMapEngine) GetEnergyStorage() float64                        { return 0 }
func (f *fakeMapEngine) GetMetalIncome() float64                          { return 0 }
func (f *fakeMapEngine) GetEnergyIncome() float64                         { return 0 }
func (f *fakeMapEngine) GetMetalUsage() float64                           { return 0 }
func (f *fakeMapEngine) GetEnergyUsage() float64                          { return 0 }
func (f *fakeMapEngine) CanBuildAt(int, emath.Vec2) bool                  { return true }
func (f *fakeMapEngine) ClosestBuildSite(int, emath.Vec2, float64, float64) (emath.Vec2, bool) {
	return emath.Vec2{}, false
}
func (f *fakeMapEngine) GiveOrder(int, callback.Command)                      {}
func (f *fakeMapEngine) GetEnemyUnits(emath.Vec2, float64) []callback.EnemyUnit { return nil }
func (f *fakeMapEngine) GetEnemyUnitsInRadarAndLOS() []callback.EnemyUnit       { return nil }
func (f *fakeMapEngine) GetFriendlyUnits() []int                                { return nil }
func (f *fakeMapEngine) Elevation(float64, float64) float64                     { return 0 }
func (f *fakeMapEngine) SendTextMessage(string, int)                            {}
func (f *fakeMapEngine) GetFilePath(callback.FileMode) (string, error)          { return "", nil }

func newFlatEngine(w, h int) *fakeMapEngine {
	hm := make([]float64, w*h)
	for i := range hm {
		hm[i] = 10 // all land, flat
	}
	metal := make([]float64, w*h)
	return &fakeMapEngine{width: w, height: h, heightMap: hm, metal: metal}
}

func testGamemapConfig() *config.Config {
	c := config.Default()
	c.CliffSlope = 5
	c.XSpace = 4
	c.YSpace = 4
	c.MaxXRow = 6
	c.MaxYRow = 6
	c.NonAmphibMaxWaterdepth = 20
	return c
}

func TestBuildmapBlockUnblockRestoresState(t *testing.T) {
	eng := newFlatEngine(32, 32)
	m := New(eng, testGamemapConfig(), nil)

	before := make([]Tile, len(m.tiles))
	copy(before, m.tiles)

	fp := Footprint{X: 10, Y: 10, SizeX: 4, SizeZ: 4, IsFactory: true}
	blocked := m.Occupy(fp, testGamemapConfig())
	m.Free(fp, blocked)

	for i := range m.tiles {
		if m.tiles[i].Flags != before[i].Flags {
			t.Errorf("tile %d: flags %v, want %v (initial state)", i, m.tiles[i].Flags, before[i].Flags)
		}
		if m.tiles[i].BlockedRefCount != 0 {
			t.Errorf("tile %d: refcount %d, want 0", i, m.tiles[i].BlockedRefCount)
		}
	}
}

// I11: discovered metal spots are pairwise at least extractor_radius/2
// apart.
func TestMetalSpotsAreSpacedApart(t *testing.T) {
	w, h := 40, 40
	eng := newFlatEngine(w, h)
	for i := range eng.metal {
		eng.metal[i] = 1
	}
	placeBlob(eng.metal, w, 8, 8, 90)
	placeBlob(eng.metal, w, 30, 30, 90)

	m := New(eng, testGamemapConfig(), nil)
	radius := eng.GetExtractorRadius()

	for i, a := range m.metalSpots {
		for j, b := range m.metalSpots {
			if i == j {
				continue
			}
			dx := a.Pos.X - b.Pos.X
			dy := a.Pos.Y - b.Pos.Y
			dist := dx*dx + dy*dy
			min := (radius / 2) * (radius / 2)
			if dist < min {
				t.Errorf("spots %d and %d are %.2f apart (squared), want >= %.2f", i, j, dist, min)
			}
		}
	}
}

func placeBlob(metal []float64, w, cx, cy int, value float64) {
	for dy := -2; dy <= 2; dy++ {
		for dx := -2; dx <= 2; dx++ {
			metal[(cy+dy)*w+(cx+dx)] = value
		}
	}
}

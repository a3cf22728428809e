package airforce

import (
	"testing"

	"github.com/bklimczak/aaicore/engine/buildtree"
	"github.com/bklimczak/aaicore/engine/callback"
	"github.com/bklimczak/aaicore/engine/config"
	"github.com/bklimczak/aaicore/engine/group"
	emath "github.com/bklimczak/aaicore/engine/math"
	"github.com/bklimczak/aaicore/engine/sector"
)

type fakeOrderEngine struct {
	orders []struct {
		unitID int
		cmd    callback.Command
	}
}

func (f *fakeOrderEngine) GetNumUnitDefs() int                              { return 0 }
func (f *fakeOrderEngine) GetUnitDef(int) (callback.UnitDef, bool)          { return callback.UnitDef{}, false }
func (f *fakeOrderEngine) GetUnitDefList() []callback.UnitDef               { return nil }
func (f *fakeOrderEngine) GetUnitDefByName(string) (callback.UnitDef, bool) { return callback.UnitDef{}, false }
func (f *fakeOrderEngine) GetUnitPos(int) (emath.Vec2, bool)                { return emath.Vec2{}, false }
func (f *fakeOrderEngine) GetUnitDefOf(int) (callback.UnitDef, bool)        { return callback.UnitDef{}, false }
func (f *fakeOrderEngine) GetUnitTeam(int) int                              { return 0 }
func (f *fakeOrderEngine) GetMyTeam() int                                   { return 0 }
func (f *fakeOrderEngine) GetMyAllyTeam() int                               { return 0 }
func (f *fakeOrderEngine) IsAllied(int, int) bool                           { return false }
func (f *fakeOrderEngine) UnitBeingBuilt(int) bool                          { return false }
func (f *fakeOrderEngine) GetHeightmap() []float64                         { return nil }
func (f *fakeOrderEngine) GetLOSMap() []float64                            { return nil }
func (f *fakeOrderEngine) GetMetalMap() []float64                          { return nil }
func (f *fakeOrderEngine) GetMaxMetal() float64                            { return 0 }
func (f *fakeOrderEngine) GetExtractorRadius() float64                     { return 0 }
func (f *fakeOrderEngine) MapWidth() int                                   { return 0 }
func (f *fakeOrderEngine) MapHeight() int                                  { return 0 }
func (f *fakeOrderEngine) GetCurrentFrame() int                            { return 0 }
func (f *fakeOrderEngine) GetMetal() float64                               { return 0 }
func (f *fakeOrderEngine) GetEnergy() float64                              { return 0 }
func (f *fakeOrderEngine) GetMetalStorage() float64                        { return 0 }
func (f *fakeOrderEngine) GetEnergyStorage() float64                       { return 0 }
func (f *fakeOrderEngine) GetMetalIncome() float64                         { return 0 }
func (f *fakeOrderEngine) GetEnergyIncome() float64                        { return 0 }
func (f *fakeOrderEngine) GetMetalUsage() float64                          { return 0 }
func (f *fakeOrderEngine) GetEnergyUsage() float64                         { return 0 }
func (f *fakeOrderEngine) CanBuildAt(int, emath.Vec2) bool                 { return true }
func (f *fakeOrderEngine) ClosestBuildSite(int, emath.Vec2, float64, float64) (emath.Vec2, bool) {
	return emath.Vec2{}, false
}
func (f *fakeOrderEngine) GiveOrder(unitID int, cmd callback.Command) {
	f.orders = append(f.orders, struct {
		unitID int
		cmd    callback.Command
	}{unitID, cmd})
}
func (f *fakeOrderEngine) GetEnemyUnits(emath.Vec2, float64) []callback.EnemyUnit { return nil }
func (f *fakeOrderEngine) GetEnemyUnitsInRadarAndLOS() []callback.EnemyUnit       { return nil }
func (f *fakeOrderEngine) GetFriendlyUnits() []int                               { return nil }
func (f *fakeOrderEngine) Elevation(float64, float64) float64                    { return 0 }
func (f *fakeOrderEngine) SendTextMessage(string, int)                          {}
func (f *fakeOrderEngine) GetFilePath(callback.FileMode) (string, error)        { return "", nil }

// airTestTree builds a real BuildTree with a commander constructing a
// ground-based static-artillery building (def 2, the bomb-worthy target),
// a bomber (def 3, a flying anti-static unit) and a fighter (def 4, a
// flying anti-surface/anti-air unit), so CombatPowerOf and the UnitType
// Anti* bits are both non-zero for the cases that need them.
func airTestTree(t *testing.T) *buildtree.BuildTree {
	t.Helper()
	defs := []callback.UnitDef{
		{ID: 1, Name: "commander", IsCommander: true, BuildOptions: []int{2, 3, 4, 5}, MetalCost: 2000, BuildTime: 1, Speed: 1},
		{
			ID: 2, Name: "artillery", IsBuilding: true, MetalCost: 500, BuildTime: 200, Health: 900,
			Weapons: []callback.Weapon{{Range: 1000, MaxDamage: 50, TargetCategories: callback.TargetsSurface}},
		},
		{
			ID: 3, Name: "bomber", CanFly: true, MetalCost: 300, BuildTime: 80, Speed: 120,
			Weapons: []callback.Weapon{{Range: 300, MaxDamage: 60, TargetCategories: callback.TargetsStatic}},
		},
		{
			ID: 4, Name: "fighter", CanFly: true, MetalCost: 200, BuildTime: 60, Speed: 140,
			Weapons: []callback.Weapon{{Range: 300, MaxDamage: 30, TargetCategories: callback.TargetsSurface | callback.TargetsAir}},
		},
		{
			// tank exists only so the fighter is not the cheapest combat
			// def: combat-power seeding normalises by cost against the
			// cheapest one, and without a cheaper def the fighter's Surface
			// value stays below the threshold for its TypeAntiSurface bit.
			ID: 5, Name: "tank", MetalCost: 50, BuildTime: 30, Speed: 60,
			Weapons: []callback.Weapon{{Range: 300, MaxDamage: 40, TargetCategories: callback.TargetsSurface}},
		},
	}
	eng := &fakeOrderEngineForGenerate{defs: defs}
	cfg := config.Default()
	cfg.Sides = 1
	cfg.StartUnits = []string{"commander"}
	cfg.MinEnergy = 10
	bt := buildtree.New(nil)
	if err := bt.Generate(eng, cfg); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	return bt
}

// fakeOrderEngineForGenerate is the minimal callback.Engine buildtree.Generate
// needs, distinct from fakeOrderEngine (which instead records GiveOrder calls
// for group behaviour assertions).
type fakeOrderEngineForGenerate struct {
	defs []callback.UnitDef
}

func (f *fakeOrderEngineForGenerate) GetNumUnitDefs() int { return len(f.defs) }
func (f *fakeOrderEngineForGenerate) GetUnitDef(id int) (callback.UnitDef, bool) {
	for _, d := range f.defs {
		if d.ID == id {
			return d, true
		}
	}
	return callback.UnitDef{}, false
}
func (f *fakeOrderEngineForGenerate) GetUnitDefList() []callback.UnitDef { return f.defs }
func (f *fakeOrderEngineForGenerate) GetUnitDefByName(name string) (callback.UnitDef, bool) {
	for _, d := range f.defs {
		if d.Name == name {
			return d, true
		}
	}
	return callback.UnitDef{}, false
}
func (f *fakeOrderEngineForGenerate) GetUnitPos(int) (emath.Vec2, bool)             { return emath.Vec2{}, false }
func (f *fakeOrderEngineForGenerate) GetUnitDefOf(int) (callback.UnitDef, bool)     { return callback.UnitDef{}, false }
func (f *fakeOrderEngineForGenerate) GetUnitTeam(int) int                          { return 0 }
func (f *fakeOrderEngineForGenerate) GetMyTeam() int                               { return 0 }
func (f *fakeOrderEngineForGenerate) GetMyAllyTeam() int                           { return 0 }
func (f *fakeOrderEngineForGenerate) IsAllied(int, int) bool                       { return false }
func (f *fakeOrderEngineForGenerate) UnitBeingBuilt(int) bool                      { return false }
func (f *fakeOrderEngineForGenerate) GetHeightmap() []float64                      { return nil }
func (f *fakeOrderEngineForGenerate) GetLOSMap() []float64                         { return nil }
func (f *fakeOrderEngineForGenerate) GetMetalMap() []float64                       { return nil }
func (f *fakeOrderEngineForGenerate) GetMaxMetal() float64                        { return 0 }
func (f *fakeOrderEngineForGenerate) GetExtractorRadius() float64                 { return 0 }
func (f *fakeOrderEngineForGenerate) MapWidth() int                                { return 0 }
func (f *fakeOrderEngineForGenerate) MapHeight() int                               { return 0 }
func (f *fakeOrderEngineForGenerate) GetCurrentFrame() int                         { return 0 }
func (f *fakeOrderEngineForGenerate) GetMetal() float64                            { return 0 }
func (f *fakeOrderEngineForGenerate) GetEnergy() float64                           { return 0 }
func (f *fakeOrderEngineForGenerate) GetMetalStorage() float64                     { return 0 }
func (f *fakeOrderEngineForGenerate) GetEnergyStorage() float64                    { return 0 }
func (f *fakeOrderEngineForGenerate) GetMetalIncome() float64                      { return 0 }
func (f *fakeOrderEngineForGenerate) GetEnergyIncome() float64                     { return 0 }
func (f *fakeOrderEngineForGenerate) GetMetalUsage() float64                       { return 0 }
func (f *fakeOrderEngineForGenerate) GetEnergyUsage() float64                      { return 0 }
func (f *fakeOrderEngineForGenerate) CanBuildAt(int, emath.Vec2) bool              { return false }
func (f *fakeOrderEngineForGenerate) ClosestBuildSite(int, emath.Vec2, float64, float64) (emath.Vec2, bool) {
	return emath.Vec2{}, false
}
func (f *fakeOrderEngineForGenerate) GiveOrder(int, callback.Command)                      {}
func (f *fakeOrderEngineForGenerate) GetEnemyUnits(emath.Vec2, float64) []callback.EnemyUnit { return nil }
func (f *fakeOrderEngineForGenerate) GetEnemyUnitsInRadarAndLOS() []callback.EnemyUnit       { return nil }
func (f *fakeOrderEngineForGenerate) GetFriendlyUnits() []int                               { return nil }
func (f *fakeOrderEngineForGenerate) Elevation(float64, float64) float64                   { return 0 }
func (f *fakeOrderEngineForGenerate) SendTextMessage(string, int)                          {}
func (f *fakeOrderEngineForGenerate) GetFilePath(callback.FileMode) (string, error)         { return "", nil }

func testGroupCfg() group.GroupSizeConfig {
	return group.GroupSizeConfig{
		MaxGroupSize: 8, MaxAirGroupSize: 6, MaxAntiAirGroupSize: 6,
		MaxSubmarineGroupSize: 4, MaxNavalGroupSize: 6, MaxArtyGroupSize: 4,
	}
}

func TestCheckStaticBombTargetRespectsCaps(t *testing.T) {
	m := NewManager(1, 1, 300)

	if !m.CheckStaticBombTarget(buildtree.CategoryStaticArtillery, 1, 2, emath.Vec2{}) {
		t.Fatal("expected first military target to be accepted")
	}
	if m.CheckStaticBombTarget(buildtree.CategoryStaticSupport, 2, 2, emath.Vec2{}) {
		t.Fatal("expected second military target to be rejected once the list is full")
	}
	if !m.CheckStaticBombTarget(buildtree.CategoryPowerPlant, 3, 2, emath.Vec2{}) {
		t.Fatal("expected first economy target to be accepted despite the military list being full")
	}
}

func TestCheckStaticBombTargetIgnoresOtherCategories(t *testing.T) {
	m := NewManager(3, 3, 300)
	if m.CheckStaticBombTarget(buildtree.CategoryGroundCombat, 1, 2, emath.Vec2{}) {
		t.Fatal("expected a non-military, non-economy category to be rejected")
	}
}

func TestRemoveTarget(t *testing.T) {
	m := NewManager(3, 3, 300)
	m.CheckStaticBombTarget(buildtree.CategoryPowerPlant, 1, 2, emath.Vec2{})
	m.RemoveTarget(1)
	if len(m.economyTargets) != 0 {
		t.Fatalf("len(economyTargets) = %d, want 0 after RemoveTarget", len(m.economyTargets))
	}
}

// TestRefreshTargetsSweepsAllStaleTargets exercises the chosen
// one-pass-removes-everything-stale semantics (see RefreshTargets'
// doc comment) rather than the original's remove-one-and-return quirk.
func TestRefreshTargetsSweepsAllStaleTargets(t *testing.T) {
	m := NewManager(5, 5, 300)
	m.CheckStaticBombTarget(buildtree.CategoryStaticArtillery, 1, 2, emath.Vec2{})
	m.CheckStaticBombTarget(buildtree.CategoryStaticSupport, 2, 2, emath.Vec2{})
	m.CheckStaticBombTarget(buildtree.CategoryPowerPlant, 3, 2, emath.Vec2{})

	alive := map[int]bool{1: false, 2: false, 3: true}
	m.RefreshTargets(
		func(unitID int, _ emath.Vec2) bool { return alive[unitID] },
		func(emath.Vec2) float64 { return 0 },
	)

	if len(m.militaryTargets) != 0 {
		t.Errorf("len(militaryTargets) = %d, want 0 after sweeping every stale target in one call", len(m.militaryTargets))
	}
	if len(m.economyTargets) != 1 {
		t.Errorf("len(economyTargets) = %d, want 1 (the still-alive target)", len(m.economyTargets))
	}
}

func TestRefreshTargetsDropsTargetsProtectedByTooMuchAA(t *testing.T) {
	m := NewManager(5, 5, 300)
	m.CheckStaticBombTarget(buildtree.CategoryPowerPlant, 1, 2, emath.Vec2{})

	m.RefreshTargets(
		func(int, emath.Vec2) bool { return true },
		func(emath.Vec2) float64 { return maxEnemyAACombatPowerForTarget + 1 },
	)

	if len(m.economyTargets) != 0 {
		t.Fatal("expected the target to be dropped once enemy AA power exceeds the threshold")
	}
}

func TestTargetListFullness(t *testing.T) {
	m := NewManager(2, 2, 300)
	if got := m.TargetListFullness(); got != 0 {
		t.Errorf("TargetListFullness() = %v, want 0 for empty lists", got)
	}
	m.CheckStaticBombTarget(buildtree.CategoryPowerPlant, 1, 2, emath.Vec2{})
	if got := m.TargetListFullness(); got != 0.25 {
		t.Errorf("TargetListFullness() = %v, want 0.25 (1 of 4 slots)", got)
	}
}

func TestAirRaidBestTargetDispatchesBombersAndRemovesTarget(t *testing.T) {
	m := NewManager(3, 3, 300)
	bt := airTestTree(t)

	m.CheckStaticBombTarget(buildtree.CategoryStaticArtillery, 10, 2, emath.Vec2{X: 100})

	bomber := group.New(1, 3, buildtree.CategoryAirCombat, 0, buildtree.MoveAir, -1, testGroupCfg())
	bomber.Units = []int{101, 102, 103}
	// recompute bomber's actual UnitType from the generated tree rather than
	// hardcoding it, since initCombatPower is what sets the Anti* bits.
	props, _ := bt.Properties(3)
	bomber.UnitType = props.UnitType

	eng := &fakeOrderEngine{}
	sectorOf := func(emath.Vec2) *sector.Sector { return sector.New(0, 0) }

	m.AirRaidBestTarget(eng, 100, bt, []*group.Group{bomber}, emath.Vec2{}, 1_000_000, 6, sectorOf, nil)

	if len(eng.orders) == 0 {
		t.Fatal("expected the bomber group to receive a bombing order")
	}
	if _, stillTracked := m.militaryTargets[10]; stillTracked {
		t.Error("expected the bombed target to be removed from the military target list")
	}
	if bomber.Task != group.TaskBombing {
		t.Errorf("bomber.Task = %v, want TaskBombing", bomber.Task)
	}
}

func TestAirRaidBestTargetNoAircraftAvailable(t *testing.T) {
	m := NewManager(3, 3, 300)
	bt := airTestTree(t)
	m.CheckStaticBombTarget(buildtree.CategoryPowerPlant, 10, 2, emath.Vec2{})

	eng := &fakeOrderEngine{}
	sectorOf := func(emath.Vec2) *sector.Sector { return sector.New(0, 0) }

	m.AirRaidBestTarget(eng, 100, bt, nil, emath.Vec2{}, 1_000_000, 6, sectorOf, nil)

	if len(eng.orders) != 0 {
		t.Fatal("expected no orders with no air groups available")
	}
	if _, stillTracked := m.economyTargets[10]; !stillTracked {
		t.Error("target should remain tracked when no raid was actually launched")
	}
}

func TestFindNextBombTargetRetreatsWhenNothingLeft(t *testing.T) {
	m := NewManager(3, 3, 300)
	bt := airTestTree(t)

	bomber := group.New(1, 3, buildtree.CategoryAirCombat, 0, buildtree.MoveAir, -1, testGroupCfg())
	bomber.Units = []int{1}
	bomber.RallyPoint = emath.Vec2{X: 5, Y: 5}

	eng := &fakeOrderEngine{}
	unitPos := func(int) (emath.Vec2, bool) { return emath.Vec2{}, true }
	sectorOf := func(emath.Vec2) *sector.Sector { return sector.New(0, 0) }

	m.FindNextBombTarget(eng, 10, bt, bomber, unitPos, 1_000_000, 6, sectorOf, nil)

	if len(eng.orders) == 0 {
		t.Fatal("expected TargetUnitKilled's retreat-to-rally order")
	}
	if eng.orders[0].cmd.Pos != bomber.RallyPoint {
		t.Errorf("order pos = %v, want rally point %v", eng.orders[0].cmd.Pos, bomber.RallyPoint)
	}
}

func TestGetAirGroupPicksHighestCombatPowerUnderUrgency(t *testing.T) {
	bt := airTestTree(t)
	propsFighter, _ := bt.Properties(4)
	propsBomber, _ := bt.Properties(3)

	fighter := group.New(1, 4, buildtree.CategoryAirCombat, propsFighter.UnitType, buildtree.MoveAir, -1, testGroupCfg())
	fighter.Units = []int{1, 2}
	busy := group.New(2, 3, buildtree.CategoryAirCombat, propsBomber.UnitType, buildtree.MoveAir, -1, testGroupCfg())
	busy.Units = []int{3}
	busy.TaskUrgency = 1000 // excluded: already busy with something more important

	selected := GetAirGroup([]*group.Group{fighter, busy}, bt, buildtree.TargetSurface, 0, 100)
	if selected != fighter {
		t.Errorf("GetAirGroup() = %v, want the idle fighter", selected)
	}
}

func TestGetAirGroupReturnsNilWhenNoneQualify(t *testing.T) {
	bt := airTestTree(t)
	g := group.New(1, 3, buildtree.CategoryAirCombat, 0, buildtree.MoveAir, -1, testGroupCfg())
	g.Units = []int{1}
	g.TaskUrgency = 1000

	if got := GetAirGroup([]*group.Group{g}, bt, buildtree.TargetSurface, 0, 100); got != nil {
		t.Errorf("GetAirGroup() = %v, want nil", got)
	}
}

func TestDetermineMaxAvailableAttackAircraftBucketsByType(t *testing.T) {
	bt := airTestTree(t)
	propsBomber, _ := bt.Properties(3)
	propsFighter, _ := bt.Properties(4)

	bomber := group.New(1, 3, buildtree.CategoryAirCombat, propsBomber.UnitType, buildtree.MoveAir, -1, testGroupCfg())
	bomber.Units = []int{1, 2}
	fighter := group.New(2, 4, buildtree.CategoryAirCombat, propsFighter.UnitType, buildtree.MoveAir, -1, testGroupCfg())
	fighter.Units = []int{3, 4, 5}

	antiStatic, antiSurface := DetermineMaxAvailableAttackAircraft([]*group.Group{bomber, fighter}, 100)
	if antiStatic != 2 {
		t.Errorf("antiStatic = %d, want 2", antiStatic)
	}
	if antiSurface != 3 {
		t.Errorf("antiSurface = %d, want 3", antiSurface)
	}
}

func TestDeterminePositionOfAirForceFallsBackToBaseCenter(t *testing.T) {
	bt := airTestTree(t)
	unitPos := func(int) (emath.Vec2, bool) { return emath.Vec2{}, false }
	baseCenter := emath.Vec2{X: 42, Y: 7}

	got := DeterminePositionOfAirForce(nil, bt, unitPos, baseCenter)
	if got != baseCenter {
		t.Errorf("DeterminePositionOfAirForce() = %v, want base center %v", got, baseCenter)
	}
}

func TestAirDefenceOnDemandGatedByRecentLosses(t *testing.T) {
	bt := airTestTree(t)
	propsFighter, _ := bt.Properties(4)
	fighter := group.New(1, 4, buildtree.CategoryAirCombat, propsFighter.UnitType, buildtree.MoveAir, -1, testGroupCfg())
	fighter.Units = []int{1}

	eng := &fakeOrderEngine{}
	lostUnitsAt := func(emath.Vec2) (float64, bool) { return maxLostAirUnitsForAirSupport, true }

	AirDefenceOnDemand(eng, 10, []*group.Group{fighter}, bt, 99, buildtree.TargetSurface, emath.Vec2{}, false, lostUnitsAt, nil)

	if len(eng.orders) != 0 {
		t.Fatal("expected no air-defence order once the sector has lost too many air units")
	}
}

func TestAirDefenceOnDemandDispatchesFighterToDefendAirSpace(t *testing.T) {
	bt := airTestTree(t)
	propsFighter, _ := bt.Properties(4)
	fighter := group.New(1, 4, buildtree.CategoryAirCombat, propsFighter.UnitType, buildtree.MoveAir, -1, testGroupCfg())
	fighter.Units = []int{1}

	eng := &fakeOrderEngine{}
	lostUnitsAt := func(emath.Vec2) (float64, bool) { return 0, true }

	AirDefenceOnDemand(eng, 10, []*group.Group{fighter}, bt, 99, buildtree.TargetSurface, emath.Vec2{X: 3}, false, lostUnitsAt, nil)

	if len(eng.orders) == 0 {
		t.Fatal("expected the fighter group to be dispatched")
	}
	if eng.orders[0].cmd.Order != callback.OrderPatrol {
		t.Errorf("order = %v, want OrderPatrol (DefendAirSpace)", eng.orders[0].cmd.Order)
	}
}

func TestAirDefenceOnDemandOutOfMapDoesNothing(t *testing.T) {
	bt := airTestTree(t)
	propsFighter, _ := bt.Properties(4)
	fighter := group.New(1, 4, buildtree.CategoryAirCombat, propsFighter.UnitType, buildtree.MoveAir, -1, testGroupCfg())
	fighter.Units = []int{1}

	eng := &fakeOrderEngine{}
	lostUnitsAt := func(emath.Vec2) (float64, bool) { return 0, false }

	AirDefenceOnDemand(eng, 10, []*group.Group{fighter}, bt, 99, buildtree.TargetSurface, emath.Vec2{}, false, lostUnitsAt, nil)

	if len(eng.orders) != 0 {
		t.Fatal("expected no order when the attacker's position is outside the map")
	}
}

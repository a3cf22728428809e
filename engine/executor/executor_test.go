package executor

import (
	"testing"

	"github.com/bklimczak/aaicore/engine/buildtree"
	emath "github.com/bklimczak/aaicore/engine/math"
)

func TestUrgencyTableRiseClampsAndSelectsHighest(t *testing.T) {
	var u UrgencyTable
	u.RaiseTo(CategoryExtractor, 10)
	u.RaiseTo(CategoryPowerPlant, 3)

	for i := 0; i < 50; i++ {
		u.Rise()
	}
	if u[CategoryExtractor] > maxUrgency {
		t.Fatalf("urgency exceeded cap: %v", u[CategoryExtractor])
	}

	cat, ok := u.SelectNextBuild()
	if !ok || cat != CategoryExtractor {
		t.Fatalf("SelectNextBuild() = %v, %v, want CategoryExtractor, true", cat, ok)
	}

	u.Clear(CategoryExtractor)
	cat, ok = u.SelectNextBuild()
	if !ok || cat != CategoryPowerPlant {
		t.Fatalf("after clearing extractor, SelectNextBuild() = %v, %v, want CategoryPowerPlant, true", cat, ok)
	}
}

func TestUrgencyTableSelectNextBuildBelowThreshold(t *testing.T) {
	var u UrgencyTable
	u.RaiseTo(CategoryStorage, minUrgencyToAct-0.01)
	if _, ok := u.SelectNextBuild(); ok {
		t.Fatalf("SelectNextBuild() should report false below threshold")
	}
}

func TestAddUnitToBuildqueueRanksByActiveOverQueueLength(t *testing.T) {
	q := NewBuildQueues(5)
	q.RegisterFactory(1, false)
	q.RegisterFactory(2, false)

	constructedBy := []buildtree.UnitDefId{1, 2}
	activeOf := func(d buildtree.UnitDefId) int {
		if d == 1 {
			return 1
		}
		return 3
	}
	noMismatch := func(buildtree.UnitDefId) bool { return false }

	ok := q.AddUnitToBuildqueue(100, 2, false, constructedBy, activeOf, noMismatch)
	if !ok {
		t.Fatalf("AddUnitToBuildqueue() = false, want true")
	}

	fq2 := q.queueFor(2)
	if len(fq2.Pending) != 2 || fq2.Pending[0] != 100 {
		t.Fatalf("expected factory 2 (more active builders) to win, got queues: f1=%v f2=%v", q.queueFor(1).Pending, fq2.Pending)
	}
}

func TestAddUnitToBuildqueueUrgentPrepends(t *testing.T) {
	q := NewBuildQueues(5)
	q.RegisterFactory(1, false)
	q.queueFor(1).Pending = []buildtree.UnitDefId{50}

	constructedBy := []buildtree.UnitDefId{1}
	activeOf := func(buildtree.UnitDefId) int { return 1 }
	noMismatch := func(buildtree.UnitDefId) bool { return false }

	q.AddUnitToBuildqueue(999, 1, true, constructedBy, activeOf, noMismatch)

	got := q.queueFor(1).Pending
	if len(got) != 2 || got[0] != 999 {
		t.Fatalf("urgent add should prepend, got %v", got)
	}
}

func TestCheckBuildqueuesAdjustsProductionRate(t *testing.T) {
	q := NewBuildQueues(10)
	q.RegisterFactory(1, false)
	q.queueFor(1).Pending = make([]buildtree.UnitDefId, 1)

	active := func(buildtree.UnitDefId) int { return 1 }
	startRate := q.UnitProductionRate()
	q.CheckBuildqueues(active)
	if q.UnitProductionRate() <= startRate {
		t.Fatalf("light queue should raise production rate, got %d (was %d)", q.UnitProductionRate(), startRate)
	}

	q.queueFor(1).Pending = make([]buildtree.UnitDefId, 9)
	rate := q.UnitProductionRate()
	q.CheckBuildqueues(active)
	if q.UnitProductionRate() >= rate {
		t.Fatalf("heavy queue should lower production rate, got %d (was %d)", q.UnitProductionRate(), rate)
	}
}

func TestOrderLogSuppressesReissueWithinWindow(t *testing.T) {
	l := NewOrderLog()
	if !l.ShouldReissueGroupOrder(1, 0) {
		t.Fatalf("first order for a group should always be allowed")
	}
	l.lastOrderFrame[1] = 100

	if l.ShouldReissueGroupOrder(1, 110) {
		t.Fatalf("reissue within suppression window should be denied")
	}
	if !l.ShouldReissueGroupOrder(1, 130) {
		t.Fatalf("reissue after suppression window should be allowed")
	}
}

type fakeMakerSwitch struct {
	ids       []int
	activated map[int]bool
	upkeep    map[int]float64
}

func (f *fakeMakerSwitch) Makers() []int               { return f.ids }
func (f *fakeMakerSwitch) IsActivated(id int) bool      { return f.activated[id] }
func (f *fakeMakerSwitch) EnergyUpkeep(id int) float64  { return f.upkeep[id] }
func (f *fakeMakerSwitch) SetActivated(id int, on bool) { f.activated[id] = on }

func TestCheckResourcesTogglesMetalMakerOnSurplus(t *testing.T) {
	var u UrgencyTable
	makers := &fakeMakerSwitch{
		ids:       []int{1},
		activated: map[int]bool{1: false},
		upkeep:    map[int]float64{1: 50},
	}

	var assisted int
	noop := func() { assisted++ }

	CheckResources(&u, 0, 0, 0, 0,
		0, 30, 1, 1,
		200, 100, 100,
		50, 5,
		makers, noop, noop, noop,
	)

	if !makers.activated[1] {
		t.Fatalf("metal maker should activate when surplus exceeds its upkeep margin")
	}
}

func TestCheckResourcesTogglesMetalMakerOffOnDeficit(t *testing.T) {
	var u UrgencyTable
	makers := &fakeMakerSwitch{
		ids:       []int{1},
		activated: map[int]bool{1: true},
		upkeep:    map[int]float64{1: 50},
	}
	var assistCalls int
	assistPowerPlant := func() { assistCalls++ }
	noop := func() {}

	CheckResources(&u, 0, 0, 0, 0,
		0, 30, 1, 1,
		1, 100, 100,
		50, 5,
		makers, noop, noop, assistPowerPlant,
	)

	if makers.activated[1] {
		t.Fatalf("metal maker should deactivate on energy deficit")
	}
	if assistCalls != 1 {
		t.Fatalf("power plant assist should be called once on deficit, got %d", assistCalls)
	}
}

func TestExecutorUpdateClearsUrgencyOnSuccess(t *testing.T) {
	e := New(5)
	e.Urgency.RaiseTo(CategoryExtractor, 5)
	e.RegisterAttempt(CategoryExtractor, func() BuildOrderStatus { return Successful })

	cat, status, ran := e.Update()
	if !ran || cat != CategoryExtractor || status != Successful {
		t.Fatalf("Update() = %v, %v, %v, want CategoryExtractor, Successful, true", cat, status, ran)
	}
	if e.Urgency[CategoryExtractor] != 0 {
		t.Fatalf("urgency should be cleared after a successful attempt, got %v", e.Urgency[CategoryExtractor])
	}
}

func TestExecutorUpdateRetainsUrgencyOnNoBuildsite(t *testing.T) {
	e := New(5)
	e.Urgency.RaiseTo(CategoryPowerPlant, 5)
	e.RegisterAttempt(CategoryPowerPlant, func() BuildOrderStatus { return NoBuildsiteFound })

	_, status, ran := e.Update()
	if !ran || status != NoBuildsiteFound {
		t.Fatalf("Update() status = %v, ran = %v, want NoBuildsiteFound, true", status, ran)
	}
	if e.Urgency[CategoryPowerPlant] <= 0 {
		t.Fatalf("urgency should be retained after NoBuildsiteFound so the category is retried")
	}
}

func TestExecutorUpdateNoEligibleCategory(t *testing.T) {
	e := New(5)
	_, _, ran := e.Update()
	if ran {
		t.Fatalf("Update() should report ran=false when no urgency clears the threshold")
	}
}

func TestTryConstructionOfExpandsBaseOnNoBuildsite(t *testing.T) {
	var expanded int
	status := TryConstructionOf(
		1,
		func(buildtree.UnitDefId) (emath.Vec2, bool) { return emath.Vec2{}, false },
		func(buildtree.UnitDefId, emath.Vec2) (int, bool) { return 0, false },
		func(int, buildtree.UnitDefId, emath.Vec2) bool { return false },
		func() { expanded++ },
	)
	if status != NoBuildsiteFound || expanded != 1 {
		t.Fatalf("status=%v expanded=%d, want NoBuildsiteFound, 1", status, expanded)
	}
}

func TestTryConstructionAcrossSectorsStopsOnSuccess(t *testing.T) {
	tried := 0
	status := TryConstructionAcrossSectors(
		func(yield func(int) bool) {
			for i := 0; i < 5; i++ {
				if !yield(i) {
					return
				}
			}
		},
		func(sectorIndex int) BuildOrderStatus {
			tried++
			if sectorIndex == 2 {
				return Successful
			}
			return NoBuildsiteFound
		},
	)
	if status != Successful || tried != 3 {
		t.Fatalf("status=%v tried=%d, want Successful after trying 3 sectors", status, tried)
	}
}

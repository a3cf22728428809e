package group

import (
	"testing"

	"github.com/bklimczak/aaicore/engine/buildtree"
	"github.com/bklimczak/aaicore/engine/sector"
)

func newCombatGroup(id int, unitType buildtree.UnitType) *Group {
	return New(id, buildtree.UnitDefId(id), buildtree.CategoryGroundCombat, unitType, buildtree.MoveGround, 0, testCfg())
}

func TestAddGroupRoutesByRole(t *testing.T) {
	a := NewAttack(1, sector.New(0, 0))

	assault := newCombatGroup(1, 0)
	if !a.AddGroup(assault) {
		t.Fatal("AddGroup rejected an assault group")
	}
	if _, ok := a.CombatGroupIDs[assault.ID]; !ok {
		t.Fatal("assault group not added to CombatGroupIDs")
	}
	if assault.AttackID != a.ID {
		t.Errorf("AttackID = %d, want %d", assault.AttackID, a.ID)
	}

	aa := newCombatGroup(2, buildtree.TypeAntiAir)
	if !a.AddGroup(aa) {
		t.Fatal("AddGroup rejected a pure anti-air group")
	}
	if _, ok := a.AntiAirGroupIDs[aa.ID]; !ok {
		t.Fatal("anti-air group not added to AntiAirGroupIDs")
	}

	if a.GroupCount() != 2 {
		t.Errorf("GroupCount() = %d, want 2", a.GroupCount())
	}
}

func TestAddGroupRejectsNeitherAssaultNorAntiAir(t *testing.T) {
	a := NewAttack(1, sector.New(0, 0))
	scout := New(1, 1, buildtree.CategoryScout, 0, buildtree.MoveGround, 0, testCfg())
	if a.AddGroup(scout) {
		t.Fatal("AddGroup accepted a scout group")
	}
	if a.GroupCount() != 0 {
		t.Errorf("GroupCount() = %d, want 0", a.GroupCount())
	}
}

func TestRemoveGroupClearsAttackID(t *testing.T) {
	a := NewAttack(1, sector.New(0, 0))
	g := newCombatGroup(1, 0)
	a.AddGroup(g)
	a.RemoveGroup(g)
	if g.AttackID != 0 {
		t.Errorf("AttackID = %d, want 0 after RemoveGroup", g.AttackID)
	}
	if _, ok := a.CombatGroupIDs[g.ID]; ok {
		t.Fatal("group still present in CombatGroupIDs after RemoveGroup")
	}
}

func TestHasTargetBeenCleared(t *testing.T) {
	s := sector.New(0, 0)
	cases := []struct {
		name             string
		target           *sector.Sector
		enemyBuildings   int
		inLOS            bool
		enemyUnitsInLOS  int
		want             bool
	}{
		{"no target", nil, 5, false, 0, true},
		{"no buildings left", s, 0, false, 0, true},
		{"buildings remain, not in LOS", s, 3, false, 0, false},
		{"in LOS, no units", s, 3, true, 0, true},
		{"in LOS, units present", s, 3, true, 2, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := HasTargetBeenCleared(c.target, c.enemyBuildings, c.inLOS, c.enemyUnitsInLOS)
			if got != c.want {
				t.Errorf("HasTargetBeenCleared() = %v, want %v", got, c.want)
			}
		})
	}
}

func TestSufficientCombatPowerToAttackSectorEmptyAttackFails(t *testing.T) {
	bt := buildtree.New(nil)
	a := NewAttack(1, sector.New(0, 0))
	ok := a.SufficientCombatPowerToAttackSector(bt, func(int) (*Group, bool) { return nil, false }, func(buildtree.TargetType) float64 { return 0 })
	if ok {
		t.Fatal("expected false for an attack with no combat groups")
	}
}

func TestSufficientCombatPowerAtEmptyAttackFails(t *testing.T) {
	bt := buildtree.New(nil)
	a := NewAttack(1, sector.New(0, 0))
	ok := a.SufficientCombatPowerAt(bt, func(int) (*Group, bool) { return nil, false },
		func([5]float64) float64 { return 0 },
		func() [5]float64 { return [5]float64{} })
	if ok {
		t.Fatal("expected false for an attack with no combat groups")
	}
}

func TestMovementTypeOfAssignedUnitsPrefersCombatThenAntiAir(t *testing.T) {
	a := NewAttack(1, sector.New(0, 0))
	aa := New(2, 2, buildtree.CategoryGroundCombat, buildtree.TypeAntiAir, buildtree.MoveHover, 0, testCfg())
	a.AddGroup(aa)

	groups := map[int]*Group{aa.ID: aa}
	mt, ok := a.MovementTypeOfAssignedUnits(func(id int) (*Group, bool) { g, found := groups[id]; return g, found })
	if !ok || mt != buildtree.MoveHover {
		t.Errorf("MovementTypeOfAssignedUnits() = (%v, %v), want (MoveHover, true)", mt, ok)
	}
}

func TestMovementTypeOfAssignedUnitsEmpty(t *testing.T) {
	a := NewAttack(1, sector.New(0, 0))
	if _, ok := a.MovementTypeOfAssignedUnits(func(int) (*Group, bool) { return nil, false }); ok {
		t.Fatal("expected false for an attack with no groups")
	}
}

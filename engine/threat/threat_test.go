package threat

import (
	"testing"

	emath "github.com/bklimczak/aaicore/engine/math"
	"github.com/bklimczak/aaicore/engine/sector"
)

func grid(w, h int) [][]*sector.Sector {
	g := make([][]*sector.Sector, w)
	for x := range g {
		g[x] = make([]*sector.Sector, h)
		for y := range g[x] {
			g[x][y] = sector.New(x, y)
		}
	}
	return g
}

func TestUpdateLocalEnemyCombatPowerSnapshotsSectors(t *testing.T) {
	sectors := grid(3, 3)
	sectors[2][2].EnemyStaticCombatPower = [5]float64{10, 0, 0, 0, 0}
	sectors[2][2].EnemyMobileCombatPower = [5]float64{5, 0, 0, 0, 0}

	m := New(3, 3)
	m.UpdateLocalEnemyCombatPower(sectors)

	if got := m.valueAt(2, 2, 0); got != 15 {
		t.Fatalf("valueAt(2,2,Surface) = %v, want 15", got)
	}
	if got := m.valueAt(0, 0, 0); got != 0 {
		t.Fatalf("valueAt(0,0,Surface) = %v, want 0", got)
	}
}

func TestCalculateEnemyDefencePowerSumsAlongLine(t *testing.T) {
	sectors := grid(5, 1)
	for x := 0; x < 5; x++ {
		sectors[x][0].EnemyStaticCombatPower = [5]float64{1, 0, 0, 0, 0}
	}

	m := New(5, 1)
	m.UpdateLocalEnemyCombatPower(sectors)

	sectorSize := 100.0
	start := emath.Vec2{X: 50, Y: 50}
	end := emath.Vec2{X: 450, Y: 50}

	power := m.CalculateEnemyDefencePower(0, start, end, sectorSize, sectorSize)
	if power <= 0 {
		t.Fatalf("expected positive combat power crossing populated sectors, got %v", power)
	}
}

func TestDetermineSectorToAttackPicksOnlySectorWithEnemyBuildings(t *testing.T) {
	sectors := grid(4, 1)
	sectors[3][0].EnemyBuildings = 1
	sectors[3][0].EnemyStaticCombatPower = [5]float64{2, 0, 0, 0, 0}

	m := New(4, 1)
	m.UpdateLocalEnemyCombatPower(sectors)

	sectorSize := 100.0
	from := emath.Vec2{X: 50, Y: 50}

	best, ok := m.DetermineSectorToAttack(0, from, sectors, sectorSize, sectorSize, 1_000_000)
	if !ok {
		t.Fatal("expected a sector to attack")
	}
	if best != sectors[3][0] {
		t.Fatalf("expected the only sector with enemy buildings to be chosen")
	}
}

func TestDetermineSectorToAttackNoEnemyBuildings(t *testing.T) {
	sectors := grid(2, 2)
	m := New(2, 2)
	m.UpdateLocalEnemyCombatPower(sectors)

	_, ok := m.DetermineSectorToAttack(0, emath.Vec2{}, sectors, 100, 100, 1_000_000)
	if ok {
		t.Fatal("expected no sector to attack when nothing has enemy buildings")
	}
}

package sector

import (
	"testing"

	"github.com/bklimczak/aaicore/engine/buildtree"
)

// S3: enemy static defence with combat_power {Surface:30, Air:0, ...}
// placed in a sector at distance 5 from home gives a strictly positive
// attack rating; removing the enemy buildings zeroes it.
func TestGetAttackRatingS3(t *testing.T) {
	home := New(0, 0)
	target := New(5, 0)
	target.EnemyBuildings = 1
	target.EnemyStaticCombatPower = [5]float64{30, 0, 0, 0, 0}
	target.LostUnits = [5]float64{2, 0, 0, 0, 0}
	target.WaterRatio = 0.1

	myTargetTypes := [5]float64{1, 0, 0, 0, 0}

	rating := target.GetAttackRating(home, true, false, myTargetTypes)
	if rating <= 0 {
		t.Fatalf("expected strictly positive rating, got %v", rating)
	}

	target.EnemyBuildings = 0
	rating = target.GetAttackRating(home, true, false, myTargetTypes)
	if rating != 0 {
		t.Fatalf("expected zero rating with no enemy buildings, got %v", rating)
	}
}

// I5 (approximated at the single-sector level): OwnBuildingsOfCategory
// bookkeeping must always sum to the number of buildings actually
// registered in this sector.
func TestOwnBuildingsOfCategoryStaysConsistent(t *testing.T) {
	s := New(0, 0)
	var live []buildtree.UnitCategory

	add := func(cat buildtree.UnitCategory) {
		s.OwnBuildingsOfCategory[cat]++
		live = append(live, cat)
	}
	remove := func(i int) {
		s.OwnBuildingsOfCategory[live[i]]--
		live = append(live[:i], live[i+1:]...)
	}

	add(buildtree.CategoryStaticDefence)
	add(buildtree.CategoryStaticDefence)
	add(buildtree.CategoryMetalExtractor)
	remove(0)

	var sum int
	for _, v := range s.OwnBuildingsOfCategory {
		sum += v
	}
	if sum != len(live) {
		t.Fatalf("sum of per-category counts %d != live building count %d", sum, len(live))
	}
}

package sector

import (
	"github.com/bklimczak/aaicore/engine/buildtree"
	emath "github.com/bklimczak/aaicore/engine/math"
)

// GetAttackRating implements spec §4.C: returns 0 if unreachable or no
// enemy buildings, otherwise lost_units_total * enemy_buildings /
// ((1 + enemy_combat_power_vs(my_target_types)) * (1 + distance)).
func (s *Sector) GetAttackRating(from *Sector, allowLand, allowWater bool, myTargetTypes [5]float64) float64 {
	admissible := (s.WaterRatio < 0.35 && allowLand) || (s.WaterRatio > 0.65 && allowWater)
	if !admissible || s.EnemyBuildings == 0 {
		return 0
	}
	distance := sectorDistance(from, s)
	return s.lostUnitsTotal() * float64(s.EnemyBuildings) /
		((1 + s.enemyCombatPowerVs(myTargetTypes)) * (1 + distance))
}

func sectorDistance(a, b *Sector) float64 {
	dx := float64(a.X - b.X)
	dy := float64(a.Y - b.Y)
	return dx*dx + dy*dy // squared is fine: only used as a relative ranking input here
}

const maxDefences = 30 // spec default; Executor passes the live cfg.MaxDefences when it matters

// ImportanceForDefence is the result of
// GetImportanceForStaticDefenceVs: the winning target type and its score.
type ImportanceForDefence struct {
	TargetType int
	Rating     float64
}

// GetImportanceForStaticDefenceVs implements spec §4.C
// get_importance_for_static_defence_vs.
func (s *Sector) GetImportanceForStaticDefenceVs(
	closeToBase bool,
	localAttacksBy func(targetType int) float64,
	brainAttacksBy func(targetType int, phase int) float64,
	phase int,
	friendlyStaticDefencePower func(targetType int) float64,
	edgeDistance float64,
	distanceToBase float64,
	closerToEnemyBase bool,
	maxDefencesCfg int,
) (ImportanceForDefence, bool) {
	if maxDefencesCfg <= 0 {
		maxDefencesCfg = maxDefences
	}
	totalDefences := s.OwnBuildingsOfCategory[buildtree.CategoryStaticDefence]
	if totalDefences >= maxDefencesCfg || s.AlliedBuildings > 2 || s.ClaimedByTeam != 0 || s.RecentFailedPlacements >= 2 {
		return ImportanceForDefence{}, false
	}

	admissible := []int{1} // Air always admissible
	if s.WaterRatio < 0.7 {
		admissible = append(admissible, 0) // Surface
	}
	if s.WaterRatio > 0.3 {
		admissible = append(admissible, 2, 3) // Floater, Submerged
	}

	best := ImportanceForDefence{TargetType: -1}
	for _, t := range admissible {
		closeBonus := 0.0
		if closeToBase {
			closeBonus = 1
		}
		rating := closeBonus + (0.1+localAttacksBy(t)+brainAttacksBy(t, phase))/(1+friendlyStaticDefencePower(t))
		if rating > best.Rating {
			best = ImportanceForDefence{TargetType: t, Rating: rating}
		}
	}
	if best.TargetType == -1 {
		return ImportanceForDefence{}, false
	}

	multiplier := (2 + edgeDistance) * 2 / (distanceToBase + 1)
	if closerToEnemyBase {
		multiplier *= 2
	}
	best.Rating *= multiplier
	return best, true
}

// GetRatingAsNextScoutDestination implements spec §4.C
// get_rating_as_next_scout_destination.
func (s *Sector) GetRatingAsNextScoutDestination(reachable bool, metalSpotFactor, distanceFactor, lostScoutsFactor float64, skippedCounter *int) float64 {
	if s.DistanceToBase == 0 || !reachable || s.AlliedBuildings > 0 {
		return 0
	}
	*skippedCounter++
	return metalSpotFactor * distanceFactor * lostScoutsFactor * float64(*skippedCounter)
}

// GetRatingForRallyPoint implements spec §4.C
// get_rating_for_rally_point: combines flatness/water ratio, edge
// distance, nearby extractor count and prior attack history into one
// score Brain.determine_rally_point can rank sectors by.
func (s *Sector) GetRatingForRallyPoint(edgeDistance float64, nearbyExtractors int, waterPenalized bool) float64 {
	terrain := s.FlatRatio
	if waterPenalized {
		terrain -= s.WaterRatio
	}
	attacks := 0.0
	for _, v := range s.AttacksPreviousGames {
		attacks += v
	}
	return terrain*10 + edgeDistance*0.1 + float64(nearbyExtractors)*2 - attacks
}

// Center returns the world-space center of this sector given the grid's
// effective tile size (sector/gamemap share the grid geometry via
// gamemap.SectorGrid; sector itself stores only the (x,y) cell index).
func (s *Sector) Center(sectorSizeX, sectorSizeY float64) emath.Vec2 {
	return emath.Vec2{
		X: (float64(s.X) + 0.5) * sectorSizeX,
		Y: (float64(s.Y) + 0.5) * sectorSizeY,
	}
}

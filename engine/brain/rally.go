package brain

import (
	"github.com/bklimczak/aaicore/engine/buildtree"
	"github.com/bklimczak/aaicore/engine/geometry"
	emath "github.com/bklimczak/aaicore/engine/math"
	"github.com/bklimczak/aaicore/engine/sector"
)

// MovePosFunc searches inside s for a legal rally point, honouring the
// continent restriction when continentBound is set (spec §4.H
// determine_rally_point delegates this to AAISector::DetermineMovePos /
// DetermineMovePosOnContinent; here it's supplied by the map layer so Brain
// never needs buildmap/passability details of its own).
type MovePosFunc func(s *sector.Sector, continentBound bool, continentID int) (emath.Vec2, bool)

// rallyPointRating scores a candidate sector for determine_rally_point,
// grounded on AAIBrain::DetermineRallyPoint's rating formula.
func rallyPointRating(s *sector.Sector, edgeDistance float64, rallyPointCount int, moveType buildtree.MovementType) float64 {
	totalAttacks := s.TotalLostUnits()
	for _, v := range s.AttacksThisGame {
		totalAttacks += v
	}

	rating := minF(totalAttacks, 5) +
		minF(2*edgeDistance, 6) +
		3*float64(s.OwnBuildingsOfCategory[buildtree.CategoryMetalExtractor]) +
		4/(2+float64(rallyPointCount))

	switch {
	case moveType == buildtree.MoveGround:
		rating += 3 * s.FlatRatio
	case moveType == buildtree.MoveAir || moveType == buildtree.MoveAmphibious || moveType == buildtree.MoveHover:
		rating += 3 * (s.FlatRatio + s.WaterRatio)
	default:
		rating += 3 * s.WaterRatio
	}
	return rating
}

func minF(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

// DetermineRallyPoint ranks sectors at distance 1 and 2 from the base and
// returns a rally point inside the best-rated one that yields a legal move
// position, falling back to the second best (spec §4.H
// determine_rally_point).
func (b *Brain) DetermineRallyPoint(moveType buildtree.MovementType, continentID int, sectorSizeX, sectorSizeY, mapWidth, mapHeight float64, rallyPointsIn func(s *sector.Sector) int, movePos MovePosFunc) (emath.Vec2, bool) {
	var best, secondBest *sector.Sector
	bestRating := 0.0
	secondBestRating := 0.0

	for dist := 1; dist <= 2; dist++ {
		for _, s := range b.SectorsAtDistance(dist) {
			center := s.Center(sectorSizeX, sectorSizeY)
			edgeDistance := geometry.EdgeDistance(center, mapWidth, mapHeight)
			rating := rallyPointRating(s, edgeDistance, rallyPointsIn(s), moveType)
			if rating > bestRating {
				secondBestRating = bestRating
				bestRating = rating
				secondBest = best
				best = s
			} else if rating > secondBestRating {
				secondBestRating = rating
				secondBest = s
			}
		}
	}

	continentBound := moveType.CannotMoveToOtherContinents()

	if best != nil {
		if pos, ok := movePos(best, continentBound, continentID); ok {
			return pos, true
		}
	}
	if secondBest != nil {
		if pos, ok := movePos(secondBest, continentBound, continentID); ok {
			return pos, true
		}
	}
	return emath.Vec2{}, false
}

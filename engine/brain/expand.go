package brain

import (
	"github.com/bklimczak/aaicore/engine/geometry"
	"github.com/bklimczak/aaicore/engine/sector"
)

// SectorType is the terrain Brain is trying to expand the base towards
// (spec §4.H expand_base).
type SectorType int

const (
	LandSector SectorType = iota
	LandWaterSector
	WaterSector
)

// ExpandBase picks the best-rated unclaimed neighbour sector and adds it to
// the base, reporting whether a sector was found (spec §4.H expand_base).
// connectedToOcean reports whether s's body of water reaches the open sea
// (vs. an isolated pond) — supplied by the map layer.
func (b *Brain) ExpandBase(sectorType SectorType, gridAt func(x, y int) (*sector.Sector, bool), allSectors []*sector.Sector, sectorSizeX, sectorSizeY, mapWidth, mapHeight float64, connectedToOcean func(s *sector.Sector) bool) bool {
	if b.BaseSize() >= b.maxBaseSize {
		return false
	}

	maxSearchDist := 1
	if sectorType == WaterSector && b.BaseWaterRatio < 0.1 {
		maxSearchDist = 3
	}

	type candidate struct {
		s        *sector.Sector
		distance float64
	}
	var candidates []candidate
	distStats := &statisticalData{}

	for d := 1; d <= maxSearchDist; d++ {
		for _, s := range b.SectorsAtDistance(d) {
			if s.EnemyBuildings > 0 || s.AlliedBuildings >= 3 || s.ClaimedByTeam != 0 {
				continue
			}
			var sectorDistance float64
			for _, base := range b.sectorsByDistance[0] {
				dx := float64(s.X - base.X)
				dy := float64(s.Y - base.Y)
				sectorDistance += dx*dx + dy*dy
			}
			candidates = append(candidates, candidate{s, sectorDistance})
			distStats.AddValue(sectorDistance)
		}
	}
	distStats.Finalize()

	var selected *sector.Sector
	bestRating := 0.0

	for _, c := range candidates {
		edgeDistance := geometry.EdgeDistance(c.s.Center(sectorSizeX, sectorSizeY), mapWidth, mapHeight)
		rating := float64(len(c.s.MetalSpots)) +
			4*distStats.NormalizedDeviationFromMax(c.distance) +
			3/(edgeDistance+1)

		switch sectorType {
		case LandSector:
			rating += (c.s.FlatRatio - c.s.WaterRatio) * 16
		case WaterSector:
			if c.s.WaterRatio > 0.1 && connectedToOcean(c.s) {
				rating += 16 * c.s.WaterRatio
			} else {
				rating = 0
			}
		default: // LandWaterSector
			rating += (c.s.FlatRatio + c.s.WaterRatio) * 16
		}

		if rating > bestRating {
			bestRating = rating
			selected = c.s
		}
	}

	if selected == nil {
		return false
	}
	b.AssignSectorToBase(selected, true, gridAt, allSectors, sectorSizeX, sectorSizeY)
	return true
}

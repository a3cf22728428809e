package brain

import (
	"github.com/bklimczak/aaicore/engine/gamemap"
	emath "github.com/bklimczak/aaicore/engine/math"
	"github.com/bklimczak/aaicore/engine/sector"
)

// Brain owns the base-sector set and the resource/threat smoothing spec
// §3's Brain entity describes (grounded on AAIBrain.h/.cpp).
type Brain struct {
	maxBaseSize int
	// sectorsByDistance[0] is the base; sectorsByDistance[d] holds every
	// sector exactly d hops (via 4-neighbour adjacency) from the base.
	sectorsByDistance [][]*sector.Sector

	CenterOfBase  emath.Vec2
	BaseFlatRatio float64
	BaseWaterRatio float64

	MetalIncome    *SmoothedData
	EnergyIncome   *SmoothedData
	MetalSurplus   *SmoothedData
	EnergySurplus  *SmoothedData

	// recentlyAttackedByRates[t] is a decaying per-game histogram over
	// mobile TargetTypes (Surface/Air/Floater/Submerged); it never tracks
	// Static since nothing mobile attacks "as" a building.
	recentlyAttackedByRates [4]float64

	maxSpottedCombatUnits  [4]float64
	TotalMobileCombatPower [4]float64

	EnemyPressureEstimation float64
}

// New returns a Brain with an empty base and maxBaseSize+1 distance buckets
// (index 0 = base, 1..maxBaseSize = increasing BFS distance).
func New(maxBaseSize int) *Brain {
	return &Brain{
		maxBaseSize:       maxBaseSize,
		sectorsByDistance: make([][]*sector.Sector, maxBaseSize+1),
		MetalIncome:       NewSmoothedData(incomeSamplePoints),
		EnergyIncome:      NewSmoothedData(incomeSamplePoints),
		MetalSurplus:      NewSmoothedData(incomeSamplePoints),
		EnergySurplus:     NewSmoothedData(incomeSamplePoints),
	}
}

// BaseSectors returns the sectors at distance 0 (the base itself).
func (b *Brain) BaseSectors() []*sector.Sector { return b.sectorsByDistance[0] }

// SectorsAtDistance returns the sectors exactly d hops from the base.
func (b *Brain) SectorsAtDistance(d int) []*sector.Sector {
	if d < 0 || d >= len(b.sectorsByDistance) {
		return nil
	}
	return b.sectorsByDistance[d]
}

// BaseSize returns the current number of base sectors.
func (b *Brain) BaseSize() int { return len(b.sectorsByDistance[0]) }

// neighboursOf returns the up-to-four grid-adjacent sectors of s, looked
// up through the grid's sector accessor.
func neighboursOf(s *sector.Sector, gridAt func(x, y int) (*sector.Sector, bool)) []*sector.Sector {
	var out []*sector.Sector
	if n, ok := gridAt(s.X-1, s.Y); ok {
		out = append(out, n)
	}
	if n, ok := gridAt(s.X+1, s.Y); ok {
		out = append(out, n)
	}
	if n, ok := gridAt(s.X, s.Y-1); ok {
		out = append(out, n)
	}
	if n, ok := gridAt(s.X, s.Y+1); ok {
		out = append(out, n)
	}
	return out
}

// AssignSectorToBase moves s into (addToBase) or out of (!addToBase) the
// base, then recomputes the base's flat/water ratios, the neighbouring
// distance buckets and the base's center (spec §4.H assign_sector_to_base).
// gridAt looks up a sector by grid coordinate; allSectors enumerates every
// sector on the map (needed to reset stale distance markers).
func (b *Brain) AssignSectorToBase(s *sector.Sector, addToBase bool, gridAt func(x, y int) (*sector.Sector, bool), allSectors []*sector.Sector, sectorSizeX, sectorSizeY float64) {
	if addToBase {
		b.sectorsByDistance[0] = append(b.sectorsByDistance[0], s)
		s.DistanceToBase = 0
	} else {
		base := b.sectorsByDistance[0]
		for i, cur := range base {
			if cur == s {
				b.sectorsByDistance[0] = append(base[:i], base[i+1:]...)
				break
			}
		}
		s.DistanceToBase = -1
	}

	b.BaseFlatRatio = 0
	b.BaseWaterRatio = 0
	if n := len(b.sectorsByDistance[0]); n > 0 {
		for _, cur := range b.sectorsByDistance[0] {
			b.BaseFlatRatio += cur.FlatRatio
			b.BaseWaterRatio += cur.WaterRatio
		}
		b.BaseFlatRatio /= float64(n)
		b.BaseWaterRatio /= float64(n)
	}

	b.updateNeighbouringSectors(gridAt, allSectors)
	b.updateCenterOfBase(sectorSizeX, sectorSizeY)
}

// updateCenterOfBase recomputes CenterOfBase as the unweighted mean of
// base-sector centers (spec §4.H).
func (b *Brain) updateCenterOfBase(sectorSizeX, sectorSizeY float64) {
	b.CenterOfBase = emath.Vec2{}
	base := b.sectorsByDistance[0]
	if len(base) == 0 {
		return
	}
	for _, s := range base {
		b.CenterOfBase.X += (0.5 + float64(s.X)) * sectorSizeX
		b.CenterOfBase.Y += (0.5 + float64(s.Y)) * sectorSizeY
	}
	b.CenterOfBase.X /= float64(len(base))
	b.CenterOfBase.Y /= float64(len(base))
}

// updateNeighbouringSectors rebuilds sectorsByDistance[1:] by BFS from the
// base, marking each reached sector's DistanceToBase; sectors the BFS does
// not reach are left at -1. It only computes distances: no sector is
// marked as interior (spec §4.H update_neighbouring_sectors).
func (b *Brain) updateNeighbouringSectors(gridAt func(x, y int) (*sector.Sector, bool), allSectors []*sector.Sector) {
	for _, s := range allSectors {
		if s.DistanceToBase > 0 {
			s.DistanceToBase = -1
		}
	}

	for i := 1; i < len(b.sectorsByDistance); i++ {
		b.sectorsByDistance[i] = nil
		for _, s := range b.sectorsByDistance[i-1] {
			for _, n := range neighboursOf(s, gridAt) {
				if n.DistanceToBase == -1 {
					n.DistanceToBase = i
					b.sectorsByDistance[i] = append(b.sectorsByDistance[i], n)
				}
			}
		}
	}
}

// CommanderAllowedForConstructionAt reports whether the commander may be
// used to build at a sector (spec §4.H commander_allowed_for_construction_at).
func (b *Brain) CommanderAllowedForConstructionAt(s *sector.Sector, mapType gamemap.MapType, elevation float64) bool {
	if s.DistanceToBase <= 0 {
		return true
	}
	if b.BaseSize() < 3 && s.DistanceToBase <= 1 {
		return true
	}
	if mapType == gamemap.MapTypeWater && elevation >= 0 && s.DistanceToBase <= 3 {
		return true
	}
	return false
}

// DefendCommander reacts to an attack on the commander: it raises Brain's
// running threat estimate immediately rather than waiting for the next
// update_pressure_by_enemy tick, since a commander under fire is the
// clearest signal of enemy pressure Brain ever gets. Root pairs this with
// pullGroupsToDefendCommander, which does the actual group retreat/guard
// order — Brain only owns the statistic, not the order (spec §4.N
// unit_damaged's commander branch).
func (b *Brain) DefendCommander(attackerUnitID int) {
	_ = attackerUnitID
	b.EnemyPressureEstimation = minF(b.EnemyPressureEstimation+1, 10)
}

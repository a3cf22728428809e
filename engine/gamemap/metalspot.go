package gamemap

import (
	"github.com/bklimczak/aaicore/engine/callback"
	emath "github.com/bklimczak/aaicore/engine/math"
)

// MetalSpot is a discovered extraction site (spec §3).
type MetalSpot struct {
	Pos      emath.Vec2
	Amount   float64
	Occupied bool
	ExtractorUnitID int
	ExtractorDefID  int
}

// MetalSpots returns every discovered spot; empty if the map was flagged a
// pure metal_map (spec §3: more than 500 candidate spots discards the
// list in favor of treating the whole map as resource-rich).
func (m *Map) MetalSpots() []*MetalSpot { return m.metalSpots }

// discoverMetalSpots runs the windowed-sum algorithm of spec §3: for each
// tile, sum metal-map values within a disc of radius = extractor radius,
// repeatedly commit the highest remaining disc and zero it plus re-sum
// every disc within 2x radius of it, stopping once the best remaining
// value drops below ~12% of the map's peak single-tile value.
func (m *Map) discoverMetalSpots(eng callback.Engine) {
	metal := eng.GetMetalMap()
	if len(metal) == 0 {
		return
	}
	radius := eng.GetExtractorRadius()
	if radius <= 0 {
		radius = 1
	}
	maxMetal := eng.GetMaxMetal()
	threshold := 0.12 * maxMetal

	w, h := m.Width, m.Height
	sums := make([]float64, w*h)
	r := int(radius)

	at := func(x, y int) float64 {
		if x < 0 || x >= w || y < 0 || y >= h {
			return 0
		}
		return metal[y*w+x]
	}

	windowSum := func(cx, cy int) float64 {
		var s float64
		for dy := -r; dy <= r; dy++ {
			for dx := -r; dx <= r; dx++ {
				if dx*dx+dy*dy > r*r {
					continue
				}
				s += at(cx+dx, cy+dy)
			}
		}
		return s
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			sums[y*w+x] = windowSum(x, y)
		}
	}

	zeroDisc := func(cx, cy int) {
		for dy := -r; dy <= r; dy++ {
			for dx := -r; dx <= r; dx++ {
				if dx*dx+dy*dy > r*r {
					continue
				}
				x, y := cx+dx, cy+dy
				if x < 0 || x >= w || y < 0 || y >= h {
					continue
				}
				metal[y*w+x] = 0
			}
		}
	}

	var spots []*MetalSpot
	const maxSpotsBeforeMetalMap = 500

	for {
		bestIdx, bestVal := -1, 0.0
		for i, v := range sums {
			if v > bestVal {
				bestVal = v
				bestIdx = i
			}
		}
		if bestIdx == -1 || bestVal < threshold {
			break
		}

		cx, cy := bestIdx%w, bestIdx/w
		spots = append(spots, &MetalSpot{
			Pos:    emath.Vec2{X: float64(cx), Y: float64(cy)},
			Amount: bestVal,
		})

		zeroDisc(cx, cy)
		rescan := int(2 * radius)
		for dy := -rescan; dy <= rescan; dy++ {
			for dx := -rescan; dx <= rescan; dx++ {
				x, y := cx+dx, cy+dy
				if x < 0 || x >= w || y < 0 || y >= h {
					continue
				}
				sums[y*w+x] = windowSum(x, y)
			}
		}

		if len(spots) > maxSpotsBeforeMetalMap {
			m.metalMap = true
			m.metalSpots = nil
			return
		}
	}
	m.metalSpots = spots
}

// AddMetalSpot registers a spot discovered or loaded out-of-band (e.g. a
// cache-file reload).
func (m *Map) AddMetalSpot(s *MetalSpot) { m.metalSpots = append(m.metalSpots, s) }

// OccupySpot marks the spot nearest pos (after tile-rounding) as occupied
// by the given extractor.
func (m *Map) OccupySpot(pos emath.Vec2, unitID, defID int) *MetalSpot {
	for _, s := range m.metalSpots {
		if int(s.Pos.X) == int(pos.X) && int(s.Pos.Y) == int(pos.Y) {
			s.Occupied = true
			s.ExtractorUnitID = unitID
			s.ExtractorDefID = defID
			return s
		}
	}
	return nil
}

// FreeSpot clears occupancy on the spot at pos, per spec §4.C
// free_metal_spot.
func (m *Map) FreeSpot(pos emath.Vec2) {
	for _, s := range m.metalSpots {
		if int(s.Pos.X) == int(pos.X) && int(s.Pos.Y) == int(pos.Y) {
			s.Occupied = false
			s.ExtractorUnitID = 0
			s.ExtractorDefID = 0
			return
		}
	}
}

package gamemap

import (
	emath "github.com/bklimczak/aaicore/engine/math"
)

// Defence influence layers, at 1/4 resolution, per spec §4.B: Surface, Air,
// and Floater+Submerged share a layer since both are naval target types a
// static defence rarely distinguishes between at siting time.
const (
	DefenceLayerSurface = 0
	DefenceLayerAir     = 1
	DefenceLayerNaval   = 2
)

const crowdingPenalty = 5000

// DefenceContribution records exactly what a static defence added to the
// influence map at placement time — radius and per-tile power — so
// removal can replay the identical contribution even if the building's
// weapon range was upgraded afterward. This resolves spec §9's open
// question about stale-range removal by storing the contribution rather
// than recomputing it from current state.
type DefenceContribution struct {
	Layer  int
	Center emath.Vec2
	Radius float64
	Power  float64
}

func (m *Map) defenceAt(layer, x, y int) float64 {
	qx, qy := x/4, y/4
	if qx < 0 || qx >= m.quarterW || qy < 0 || qy >= m.quarterH {
		return 0
	}
	return m.defence[layer][qy*m.quarterW+qx]
}

func (m *Map) addDefence(layer int, x, y int, amount float64) {
	qx, qy := x/4, y/4
	if qx < 0 || qx >= m.quarterW || qy < 0 || qy >= m.quarterH {
		return
	}
	i := qy*m.quarterW + qx
	m.defence[layer][i] += amount
	if m.defence[layer][i] < 0 {
		m.defence[layer][i] = 0
	}
}

// PlaceDefence adds combat power within a disc of radius=weaponRange
// around center, plus a crowding penalty on a tight 5x5 square, and
// returns the DefenceContribution the caller must keep and pass back to
// RemoveDefence later (spec §4.B Defence influence map).
func (m *Map) PlaceDefence(layer int, center emath.Vec2, weaponRange, power float64) DefenceContribution {
	cx, cy := int(center.X)/4, int(center.Y)/4
	r := int(weaponRange) / 4
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			if dx*dx+dy*dy > r*r {
				continue
			}
			m.addDefence(layer, (cx+dx)*4, (cy+dy)*4, power)
		}
	}
	for dy := -2; dy <= 2; dy++ {
		for dx := -2; dx <= 2; dx++ {
			m.addDefence(layer, (cx+dx)*4, (cy+dy)*4, crowdingPenalty)
		}
	}
	return DefenceContribution{Layer: layer, Center: center, Radius: weaponRange, Power: power}
}

// RemoveDefence subtracts exactly the contribution PlaceDefence recorded,
// clamping each cell at 0.
func (m *Map) RemoveDefence(c DefenceContribution) {
	cx, cy := int(c.Center.X)/4, int(c.Center.Y)/4
	r := int(c.Radius) / 4
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			if dx*dx+dy*dy > r*r {
				continue
			}
			m.addDefence(c.Layer, (cx+dx)*4, (cy+dy)*4, -c.Power)
		}
	}
	for dy := -2; dy <= 2; dy++ {
		for dx := -2; dx <= 2; dx++ {
			m.addDefence(c.Layer, (cx+dx)*4, (cy+dy)*4, -crowdingPenalty)
		}
	}
}

// DefenceAt samples a layer at a buildmap position (exported for sector/
// threat queries).
func (m *Map) DefenceAt(layer int, pos emath.Vec2) float64 {
	return m.defenceAt(layer, int(pos.X), int(pos.Y))
}

package gamemap

import (
	"math/rand"

	"github.com/bklimczak/aaicore/engine/callback"
	emath "github.com/bklimczak/aaicore/engine/math"
)

// CanBuildAt iterates the footprint rectangle at (xTile, yTile) and
// requires every tile be Free, of the matching land/water medium
// (spec §4.B can_build_at).
func (m *Map) CanBuildAt(xTile, yTile, xSize, ySize int, water bool) bool {
	for dy := 0; dy < ySize; dy++ {
		for dx := 0; dx < xSize; dx++ {
			x, y := xTile+dx, yTile+dy
			if !m.InBounds(x, y) {
				return false
			}
			t := m.TileAt(x, y)
			if !t.IsFree() {
				return false
			}
			if t.IsWater() != water {
				return false
			}
		}
	}
	return true
}

// snapToAlignment mirrors the engine's even/odd footprint alignment rule:
// even-sized buildings sit on even tile coordinates, odd-sized ones keep
// v unchanged.
func snapToAlignment(v, size int) int {
	if size%2 == 0 {
		return v - v%2
	}
	return v
}

// GetBuildsiteInRect scans rect on a stride of 2 tiles and returns the
// first site both this buildmap and the engine itself agree is valid
// (spec §4.B get_buildsite_in_rect).
func (m *Map) GetBuildsiteInRect(eng callback.Engine, defID int, xSize, ySize int, rect emath.Rect, water bool) (emath.Vec2, bool) {
	x0, y0 := int(rect.Pos.X), int(rect.Pos.Y)
	x1, y1 := int(rect.Pos.X+rect.Size.X), int(rect.Pos.Y+rect.Size.Y)

	for y := y0; y < y1; y += 2 {
		for x := x0; x < x1; x += 2 {
			sx, sy := snapToAlignment(x, xSize), snapToAlignment(y, ySize)
			if !m.CanBuildAt(sx, sy, xSize, ySize, water) {
				continue
			}
			pos := emath.Vec2{X: float64(sx), Y: float64(sy)}
			if eng.CanBuildAt(defID, pos) {
				return pos, true
			}
		}
	}
	return emath.Vec2{}, false
}

// GetCenterBuildsite performs an expanding-square search outward from the
// rect's center (spec §4.B get_center_buildsite).
func (m *Map) GetCenterBuildsite(eng callback.Engine, defID int, xSize, ySize int, rect emath.Rect, water bool) (emath.Vec2, bool) {
	center := rect.Center()
	cx, cy := int(center.X), int(center.Y)
	maxRadius := int(rect.Size.X)
	if int(rect.Size.Y) > maxRadius {
		maxRadius = int(rect.Size.Y)
	}

	for radius := 0; radius <= maxRadius; radius += 2 {
		for dy := -radius; dy <= radius; dy += 2 {
			for dx := -radius; dx <= radius; dx += 2 {
				if dx != -radius && dx != radius && dy != -radius && dy != radius {
					continue // ring only
				}
				sx, sy := snapToAlignment(cx+dx, xSize), snapToAlignment(cy+dy, ySize)
				if !m.CanBuildAt(sx, sy, xSize, ySize, water) {
					continue
				}
				pos := emath.Vec2{X: float64(sx), Y: float64(sy)}
				if eng.CanBuildAt(defID, pos) {
					return pos, true
				}
			}
		}
	}
	return emath.Vec2{}, false
}

// GetRandomBuildsite tries up to `tries` random offsets inside rect
// (spec §4.B get_random_buildsite).
func (m *Map) GetRandomBuildsite(eng callback.Engine, defID int, xSize, ySize int, rect emath.Rect, tries int, water bool, rng *rand.Rand) (emath.Vec2, bool) {
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	x0, y0 := int(rect.Pos.X), int(rect.Pos.Y)
	w, h := int(rect.Size.X), int(rect.Size.Y)
	if w <= 0 || h <= 0 {
		return emath.Vec2{}, false
	}
	for i := 0; i < tries; i++ {
		x := x0 + rng.Intn(w)
		y := y0 + rng.Intn(h)
		sx, sy := snapToAlignment(x, xSize), snapToAlignment(y, ySize)
		if !m.CanBuildAt(sx, sy, xSize, ySize, water) {
			continue
		}
		pos := emath.Vec2{X: float64(sx), Y: float64(sy)}
		if eng.CanBuildAt(defID, pos) {
			return pos, true
		}
	}
	return emath.Vec2{}, false
}

// GetRadarArtyBuildsite picks the valid site in rect maximizing
// edge_distance/range + jitter + plateau_value (spec §4.B
// get_radar_arty_buildsite), so radars/artillery favor plateaus away from
// the map edge.
func (m *Map) GetRadarArtyBuildsite(eng callback.Engine, defID int, xSize, ySize int, rect emath.Rect, rangeVal float64, water bool, rng *rand.Rand) (emath.Vec2, bool) {
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	if rangeVal <= 0 {
		rangeVal = 1
	}
	x0, y0 := int(rect.Pos.X), int(rect.Pos.Y)
	x1, y1 := int(rect.Pos.X+rect.Size.X), int(rect.Pos.Y+rect.Size.Y)

	var bestPos emath.Vec2
	bestScore := -1.0
	found := false

	for y := y0; y < y1; y += 2 {
		for x := x0; x < x1; x += 2 {
			sx, sy := snapToAlignment(x, xSize), snapToAlignment(y, ySize)
			if !m.CanBuildAt(sx, sy, xSize, ySize, water) {
				continue
			}
			pos := emath.Vec2{X: float64(sx), Y: float64(sy)}
			if !eng.CanBuildAt(defID, pos) {
				continue
			}
			edge := edgeDistance(pos, float64(m.Width), float64(m.Height))
			score := edge/rangeVal + rng.Float64()*0.1 + m.PlateauValue(sx, sy)
			if score > bestScore {
				bestScore = score
				bestPos = pos
				found = true
			}
		}
	}
	return bestPos, found
}

// GetDefenceBuildsite selects the site maximizing terrain_modifier*plateau
// - defence_map_for(target_type) + jitter, with a penalty for sites closer
// to the map edge than the weapon's own range (spec §4.B
// get_defence_buildsite).
func (m *Map) GetDefenceBuildsite(eng callback.Engine, defID int, xSize, ySize int, rect emath.Rect, layer int, terrainModifier, weaponRange float64, water bool, rng *rand.Rand) (emath.Vec2, bool) {
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	x0, y0 := int(rect.Pos.X), int(rect.Pos.Y)
	x1, y1 := int(rect.Pos.X+rect.Size.X), int(rect.Pos.Y+rect.Size.Y)

	var bestPos emath.Vec2
	bestScore := -1e18
	found := false

	for y := y0; y < y1; y += 2 {
		for x := x0; x < x1; x += 2 {
			sx, sy := snapToAlignment(x, xSize), snapToAlignment(y, ySize)
			if !m.CanBuildAt(sx, sy, xSize, ySize, water) {
				continue
			}
			pos := emath.Vec2{X: float64(sx), Y: float64(sy)}
			if !eng.CanBuildAt(defID, pos) {
				continue
			}
			edge := edgeDistance(pos, float64(m.Width), float64(m.Height))
			score := terrainModifier*m.PlateauValue(sx, sy) - m.defenceAt(layer, sx, sy) + rng.Float64()*0.1
			if edge < weaponRange {
				penalty := weaponRange - edge
				score -= penalty * penalty
			}
			if score > bestScore {
				bestScore = score
				bestPos = pos
				found = true
			}
		}
	}
	return bestPos, found
}

func edgeDistance(pos emath.Vec2, w, h float64) float64 {
	d := pos.X
	if v := w - pos.X; v < d {
		d = v
	}
	if pos.Y < d {
		d = pos.Y
	}
	if v := h - pos.Y; v < d {
		d = v
	}
	return d
}

package gamemap

import (
	"log"
	"math"

	"github.com/bklimczak/aaicore/engine/callback"
	"github.com/bklimczak/aaicore/engine/config"
)

// New builds the full Map from a fresh engine heightmap/metalmap: buildmap
// tile analysis, plateau map, continent map, map-type classification and
// metal-spot discovery (spec §4.B), in that order since later stages
// consume earlier ones.
func New(eng callback.Engine, cfg *config.Config, logger *log.Logger) *Map {
	if logger == nil {
		logger = log.Default()
	}
	m := &Map{
		Width:  eng.MapWidth(),
		Height: eng.MapHeight(),
	}
	height := eng.GetHeightmap()
	m.analyzeBuildmap(height, cfg)
	m.buildPlateauMap(height)
	m.buildContinentMap(height, cfg)
	m.classifyMapType()
	m.discoverMetalSpots(eng)
	m.defence[0] = make([]float64, m.quarterW*m.quarterH)
	m.defence[1] = make([]float64, m.quarterW*m.quarterH)
	m.defence[2] = make([]float64, m.quarterW*m.quarterH)
	m.scoutedW, m.scoutedH = m.Width/2+1, m.Height/2+1
	m.scouted = make([]scoutedCell, m.scoutedW*m.scoutedH)

	logger.Printf("gamemap: %dx%d tiles, water_ratio=%.2f, type=%s, %d metal spots (metal_map=%v)",
		m.Width, m.Height, m.waterRatio, m.mapType, len(m.metalSpots), m.metalMap)
	return m
}

// analyzeBuildmap classifies every tile as Water/Land and Flat/Cliff from
// the raw heightmap, per spec §4.B.
func (m *Map) analyzeBuildmap(height []float64, cfg *config.Config) {
	m.tiles = make([]Tile, m.Width*m.Height)
	waterCount := 0

	at := func(x, y int) float64 {
		if x < 0 {
			x = 0
		}
		if x >= m.Width {
			x = m.Width - 1
		}
		if y < 0 {
			y = 0
		}
		if y >= m.Height {
			y = m.Height - 1
		}
		return height[y*m.Width+x]
	}

	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			h := at(x, y)
			var flags TileFlag
			if h <= 0 {
				flags |= TileWater
				waterCount++
			} else {
				flags |= TileLand
			}

			dxSlope := math.Abs(at(x+4, y) - h)
			dySlope := math.Abs(at(x, y+4) - h)
			if math.Max(dxSlope, dySlope) > cfg.CliffSlope {
				flags |= TileCliff
			} else {
				flags |= TileFlat
			}
			flags |= TileFree
			m.tiles[m.idx(x, y)] = Tile{Flags: flags}
		}
	}
	m.waterRatio = float64(waterCount) / float64(m.Width*m.Height)
}

// buildPlateauMap computes, at 1/4 resolution, the sum of (height - own
// height) over a +/-6 tile window — positive values over flat ground mark
// plateaus, used as a tie-breaker for radar/artillery siting.
func (m *Map) buildPlateauMap(height []float64) {
	m.quarterW, m.quarterH = m.Width/4+1, m.Height/4+1
	m.plateau = make([]float64, m.quarterW*m.quarterH)

	at := func(x, y int) float64 {
		if x < 0 || x >= m.Width || y < 0 || y >= m.Height {
			return 0
		}
		return height[y*m.Width+x]
	}

	const window = 6
	for qy := 0; qy < m.quarterH; qy++ {
		for qx := 0; qx < m.quarterW; qx++ {
			x, y := qx*4, qy*4
			own := at(x, y)
			var sum float64
			for dy := -window; dy <= window; dy++ {
				for dx := -window; dx <= window; dx++ {
					sum += at(x+dx, y+dy) - own
				}
			}
			m.plateau[qy*m.quarterW+qx] = sum
		}
	}
}

// PlateauValue samples the plateau map nearest to buildmap tile (x, y).
func (m *Map) PlateauValue(x, y int) float64 {
	qx, qy := x/4, y/4
	if qx < 0 || qx >= m.quarterW || qy < 0 || qy >= m.quarterH {
		return 0
	}
	return m.plateau[qy*m.quarterW+qx]
}

const unassignedContinent = -1
const bridgeableWater = -2

// buildContinentMap flood-fills land continents first (walking across
// "bridgeable" shallow water without crediting it), then water continents
// over whatever tiles remain, per spec §4.B.
func (m *Map) buildContinentMap(height []float64, cfg *config.Config) {
	m.continent = make([]int, m.quarterW*m.quarterH)
	for i := range m.continent {
		m.continent[i] = unassignedContinent
	}

	at := func(qx, qy int) float64 {
		x, y := qx*4, qy*4
		if x >= m.Width {
			x = m.Width - 1
		}
		if y >= m.Height {
			y = m.Height - 1
		}
		return height[y*m.Width+x]
	}

	nextID := 0
	var stats []Continent

	// Pass 1: land continents, bridging shallow water.
	for qy := 0; qy < m.quarterH; qy++ {
		for qx := 0; qx < m.quarterW; qx++ {
			h := at(qx, qy)
			if h <= 0 || m.continent[qy*m.quarterW+qx] != unassignedContinent {
				continue
			}
			size := m.floodLand(qx, qy, nextID, at, cfg)
			stats = append(stats, Continent{ID: nextID, SizeTiles: size, Water: false})
			nextID++
		}
	}

	// Reset bridgeable-water markers so pass 2 can claim them as water.
	for i, c := range m.continent {
		if c == bridgeableWater {
			m.continent[i] = unassignedContinent
		}
	}

	// Pass 2: water continents over whatever remains.
	for qy := 0; qy < m.quarterH; qy++ {
		for qx := 0; qx < m.quarterW; qx++ {
			if m.continent[qy*m.quarterW+qx] != unassignedContinent {
				continue
			}
			size := m.floodWater(qx, qy, nextID, at)
			stats = append(stats, Continent{ID: nextID, SizeTiles: size, Water: true})
			nextID++
		}
	}

	m.continents = stats
}

func (m *Map) floodLand(startX, startY, id int, at func(int, int) float64, cfg *config.Config) int {
	type pt struct{ x, y int }
	stack := []pt{{startX, startY}}
	size := 0
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if p.x < 0 || p.x >= m.quarterW || p.y < 0 || p.y >= m.quarterH {
			continue
		}
		i := p.y*m.quarterW + p.x
		h := at(p.x, p.y)
		if h <= 0 {
			if h >= -cfg.NonAmphibMaxWaterdepth && m.continent[i] == unassignedContinent {
				m.continent[i] = bridgeableWater
				stack = append(stack, pt{p.x + 1, p.y}, pt{p.x - 1, p.y}, pt{p.x, p.y + 1}, pt{p.x, p.y - 1})
			}
			continue
		}
		if m.continent[i] != unassignedContinent {
			continue
		}
		m.continent[i] = id
		size++
		stack = append(stack, pt{p.x + 1, p.y}, pt{p.x - 1, p.y}, pt{p.x, p.y + 1}, pt{p.x, p.y - 1})
	}
	return size
}

func (m *Map) floodWater(startX, startY, id int, at func(int, int) float64) int {
	type pt struct{ x, y int }
	stack := []pt{{startX, startY}}
	size := 0
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if p.x < 0 || p.x >= m.quarterW || p.y < 0 || p.y >= m.quarterH {
			continue
		}
		i := p.y*m.quarterW + p.x
		if at(p.x, p.y) > 0 || m.continent[i] != unassignedContinent {
			continue
		}
		m.continent[i] = id
		size++
		stack = append(stack, pt{p.x + 1, p.y}, pt{p.x - 1, p.y}, pt{p.x, p.y + 1}, pt{p.x, p.y - 1})
	}
	return size
}

// ContinentStats summarizes the continent list for persistence/logging.
type ContinentStats struct {
	LandContinents, WaterContinents int
	AvgLand, AvgWater               float64
	MaxLand, MaxWater               int
	MinLand, MinWater               int
}

func (m *Map) ContinentStatistics() ContinentStats {
	var s ContinentStats
	var sumLand, sumWater int
	s.MinLand, s.MinWater = -1, -1
	for _, c := range m.continents {
		if c.Water {
			s.WaterContinents++
			sumWater += c.SizeTiles
			if c.SizeTiles > s.MaxWater {
				s.MaxWater = c.SizeTiles
			}
			if s.MinWater == -1 || c.SizeTiles < s.MinWater {
				s.MinWater = c.SizeTiles
			}
		} else {
			s.LandContinents++
			sumLand += c.SizeTiles
			if c.SizeTiles > s.MaxLand {
				s.MaxLand = c.SizeTiles
			}
			if s.MinLand == -1 || c.SizeTiles < s.MinLand {
				s.MinLand = c.SizeTiles
			}
		}
	}
	if s.LandContinents > 0 {
		s.AvgLand = float64(sumLand) / float64(s.LandContinents)
	}
	if s.WaterContinents > 0 {
		s.AvgWater = float64(sumWater) / float64(s.WaterContinents)
	}
	if s.MinLand == -1 {
		s.MinLand = 0
	}
	if s.MinWater == -1 {
		s.MinWater = 0
	}
	return s
}

// ContinentAt returns the continent id whose 1/4-resolution cell contains
// buildmap tile (x, y).
func (m *Map) ContinentAt(x, y int) int {
	qx, qy := x/4, y/4
	if qx < 0 || qx >= m.quarterW || qy < 0 || qy >= m.quarterH {
		return -1
	}
	return m.continent[qy*m.quarterW+qx]
}

// classifyMapType implements spec §4.B's WaterMap/LandWaterMap/LandMap
// decision using the continent-size statistics.
func (m *Map) classifyMapType() {
	stats := m.ContinentStatistics()
	switch {
	case float64(stats.MaxLand) < 0.5*float64(stats.MaxWater) || m.waterRatio > 0.8:
		m.mapType = MapTypeWater
	case m.waterRatio > 0.25:
		m.mapType = MapTypeLandWater
	default:
		m.mapType = MapTypeLand
	}
}

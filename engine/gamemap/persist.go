package gamemap

import (
	"bufio"
	"fmt"
	"io"

	emath "github.com/bklimczak/aaicore/engine/math"
)

// MapCacheVersion and ContinentDataVersion are the magic strings leading
// their respective cache files (spec §6.2/§6.3).
const (
	MapCacheVersion      = "AAICORE_MAP_CACHE_V1"
	ContinentDataVersion = "AAICORE_CONTINENT_DATA_V1"
)

// SaveMapCache writes the buildmap, plateau map, metal spots, water ratio
// and map-type string (spec §6.2 item 2).
func (m *Map) SaveMapCache(w io.Writer) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, MapCacheVersion)
	fmt.Fprintln(bw, m.metalMap)
	fmt.Fprintln(bw, m.mapType.String())
	fmt.Fprintf(bw, "%.6f\n", m.waterRatio)

	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			fmt.Fprintf(bw, "%d ", m.tiles[m.idx(x, y)].Flags)
		}
		fmt.Fprintln(bw)
	}
	for _, v := range m.plateau {
		fmt.Fprintf(bw, "%.6f ", v)
	}
	fmt.Fprintln(bw)

	fmt.Fprintln(bw, len(m.metalSpots))
	landSpots, waterSpots := 0, 0
	for _, s := range m.metalSpots {
		fmt.Fprintf(bw, "%.4f %.4f %.4f %.4f\n", s.Pos.X, s.Pos.Y, 0.0, s.Amount)
	}
	fmt.Fprintf(bw, "%d %d\n", landSpots, waterSpots)
	return bw.Flush()
}

// LoadMapCache reads back what SaveMapCache wrote. A version mismatch
// returns an error the caller treats as "discard and regenerate" per the
// error taxonomy's CacheVersionMismatch.
func (m *Map) LoadMapCache(r io.Reader) error {
	br := bufio.NewReader(r)
	var version string
	if _, err := fmt.Fscanln(br, &version); err != nil {
		return fmt.Errorf("gamemap: read map cache version: %w", err)
	}
	if version != MapCacheVersion {
		return fmt.Errorf("gamemap: map cache version mismatch (found %q)", version)
	}

	var metalMap bool
	fmt.Fscan(br, &metalMap)
	var mapTypeStr string
	fmt.Fscan(br, &mapTypeStr)
	fmt.Fscan(br, &m.waterRatio)
	m.metalMap = metalMap

	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			var flags uint16
			if _, err := fmt.Fscan(br, &flags); err != nil {
				return fmt.Errorf("gamemap: read tile (%d,%d): %w", x, y, err)
			}
			m.tiles[m.idx(x, y)] = Tile{Flags: TileFlag(flags)}
		}
	}
	for i := range m.plateau {
		if _, err := fmt.Fscan(br, &m.plateau[i]); err != nil {
			return fmt.Errorf("gamemap: read plateau cell %d: %w", i, err)
		}
	}

	var n int
	fmt.Fscan(br, &n)
	m.metalSpots = m.metalSpots[:0]
	for i := 0; i < n; i++ {
		var x, y, z, amount float64
		if _, err := fmt.Fscan(br, &x, &y, &z, &amount); err != nil {
			return fmt.Errorf("gamemap: read metal spot %d: %w", i, err)
		}
		m.metalSpots = append(m.metalSpots, &MetalSpot{Pos: emath.Vec2{X: x, Y: y}, Amount: amount})
	}
	var land, water int
	fmt.Fscan(br, &land, &water)
	return nil
}

// SaveContinentCache writes the continent map and statistics
// (spec §6.3 item 3).
func (m *Map) SaveContinentCache(w io.Writer) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, ContinentDataVersion)
	for _, v := range m.continent {
		fmt.Fprintf(bw, "%d ", v)
	}
	fmt.Fprintln(bw)

	fmt.Fprintln(bw, len(m.continents))
	for _, c := range m.continents {
		fmt.Fprintf(bw, "%d %v\n", c.SizeTiles, c.Water)
	}

	s := m.ContinentStatistics()
	fmt.Fprintf(bw, "%d %d %d %d %d %d %d %d\n",
		s.LandContinents, s.WaterContinents,
		int(s.AvgLand), int(s.AvgWater),
		s.MaxLand, s.MaxWater, s.MinLand, s.MinWater)
	return bw.Flush()
}

// LoadContinentCache reads back what SaveContinentCache wrote.
func (m *Map) LoadContinentCache(r io.Reader) error {
	br := bufio.NewReader(r)
	var version string
	if _, err := fmt.Fscanln(br, &version); err != nil {
		return fmt.Errorf("gamemap: read continent cache version: %w", err)
	}
	if version != ContinentDataVersion {
		return fmt.Errorf("gamemap: continent cache version mismatch (found %q)", version)
	}

	for i := range m.continent {
		if _, err := fmt.Fscan(br, &m.continent[i]); err != nil {
			return fmt.Errorf("gamemap: read continent cell %d: %w", i, err)
		}
	}
	var n int
	fmt.Fscan(br, &n)
	m.continents = m.continents[:0]
	for i := 0; i < n; i++ {
		var size int
		var water bool
		if _, err := fmt.Fscan(br, &size, &water); err != nil {
			return fmt.Errorf("gamemap: read continent record %d: %w", i, err)
		}
		m.continents = append(m.continents, Continent{ID: i, SizeTiles: size, Water: water})
	}
	var a, b, c, d, e, f, g, h int
	fmt.Fscan(br, &a, &b, &c, &d, &e, &f, &g, &h)
	return nil
}

// Package gamemap owns every piece of map-structural data this core needs:
// the buildmap tile bitset, the plateau and continent maps, metal-spot
// discovery, the sector grid, buildsite search, and the per-target-type
// defence influence map (spec §4.B). Row-major tile grids and the
// flood-fill conventions below follow the same shape as a tile-based
// terrain grid, generalized from single water-body growth to full
// continent/plateau analysis.
package gamemap

// TileFlag is a bitset over a buildmap tile's state. Exactly one of
// Land|Water must be set, exactly one of Free|Occupied|BlockedSpace, and
// Cliff is exclusive with Flat.
type TileFlag uint8

const (
	TileLand TileFlag = 1 << iota
	TileWater
	TileFlat
	TileCliff
	TileFree
	TileOccupied
	TileBlockedSpace
)

// Tile is one cell of the buildmap.
type Tile struct {
	Flags           TileFlag
	BlockedRefCount int // BlockedSpace ref count; tile reverts to Free at 0
}

func (t Tile) IsWater() bool        { return t.Flags&TileWater != 0 }
func (t Tile) IsFree() bool         { return t.Flags&TileFree != 0 }
func (t Tile) IsOccupied() bool     { return t.Flags&TileOccupied != 0 }
func (t Tile) IsBlockedSpace() bool { return t.Flags&TileBlockedSpace != 0 }

// MapType classifies the overall map per spec §4.B's thresholds.
type MapType int

const (
	MapTypeLand MapType = iota
	MapTypeLandWater
	MapTypeWater
)

func (m MapType) String() string {
	switch m {
	case MapTypeWater:
		return "WaterMap"
	case MapTypeLandWater:
		return "LandWaterMap"
	default:
		return "LandMap"
	}
}

// Map owns the buildmap, plateau map, continent map, metal spots, sector
// grid and defence influence layers for one engine map instance. It is
// shared read-mostly across AAI instances in the same process once built.
type Map struct {
	Width, Height int // buildmap tiles (1:1 with heightmap resolution)

	tiles []Tile // row-major, len = Width*Height

	plateau    []float64 // 1/4 resolution
	quarterW   int
	quarterH   int

	continent []int // 1/4 resolution; continent id per cell, -1 unassigned
	continents []Continent

	waterRatio float64
	mapType    MapType
	metalMap   bool // true if >500 spots were found (spec §3 MetalSpot note)

	metalSpots []*MetalSpot

	defence [3][]float64 // indexed by defenceLayer: Surface, Air, FloaterSubmerged; 1/4 res

	scouted []scoutedCell // coarse scouted-enemy map, resolution = los*2
	scoutedW, scoutedH int
}

// Continent is a connected landmass or body of water at 1/4 tile
// resolution (spec §3).
type Continent struct {
	ID         int
	SizeTiles  int
	Water      bool
}

// idx converts (x, y) buildmap tile coords to a row-major tile index.
func (m *Map) idx(x, y int) int { return y*m.Width + x }

// InBounds reports whether (x, y) is a valid buildmap tile coordinate.
func (m *Map) InBounds(x, y int) bool {
	return x >= 0 && x < m.Width && y >= 0 && y < m.Height
}

// TileAt returns the tile at buildmap coordinates (x, y).
func (m *Map) TileAt(x, y int) Tile {
	if !m.InBounds(x, y) {
		return Tile{}
	}
	return m.tiles[m.idx(x, y)]
}

// WaterRatio returns the fraction of tiles that are water.
func (m *Map) WaterRatio() float64 { return m.waterRatio }

// Type returns the overall classification of the map.
func (m *Map) Type() MapType { return m.mapType }

// IsMetalMap reports whether the metal-spot list was discarded because more
// than 500 spots were found (spec §3).
func (m *Map) IsMetalMap() bool { return m.metalMap }

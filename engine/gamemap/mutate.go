package gamemap

import "github.com/bklimczak/aaicore/engine/config"

// Footprint describes a placed building's occupied rectangle in buildmap
// tiles plus whether it's a factory (which additionally reserves an exit
// corridor).
type Footprint struct {
	X, Y, SizeX, SizeZ int
	IsFactory          bool
	Water              bool
}

// Occupy marks a building's footprint tiles Occupied, reserves a factory
// exit corridor if applicable, and runs row/column anti-crowding
// (spec §4.B Buildmap updates 1-3). It returns the set of tiles it
// BlockedSpace'd, which Free must be called with symmetrically.
func (m *Map) Occupy(fp Footprint, cfg *config.Config) []point {
	for dy := 0; dy < fp.SizeZ; dy++ {
		for dx := 0; dx < fp.SizeX; dx++ {
			m.setTileState(fp.X+dx, fp.Y+dy, fp.Water, TileOccupied)
		}
	}

	var blocked []point
	if fp.IsFactory {
		blocked = append(blocked, m.reserveExitCorridor(fp, cfg)...)
	}
	blocked = append(blocked, m.antiCrowd(fp, cfg)...)
	return blocked
}

// Free is the inverse of Occupy: clears the footprint's Occupied flag and
// releases every BlockedSpace tile Occupy returned, decrementing their
// reference counts (spec §4.B "On destruction the inverse is applied.
// BlockedSpace uses reference counting so overlapping blockers do not free
// each other prematurely.").
func (m *Map) Free(fp Footprint, blocked []point) {
	for dy := 0; dy < fp.SizeZ; dy++ {
		for dx := 0; dx < fp.SizeX; dx++ {
			m.clearTileState(fp.X+dx, fp.Y+dy, fp.Water, TileOccupied)
		}
	}
	for _, p := range blocked {
		m.unblockSpace(p.x, p.y)
	}
}

type point struct{ x, y int }

func (m *Map) setTileState(x, y int, water bool, flag TileFlag) {
	if !m.InBounds(x, y) {
		return
	}
	i := m.idx(x, y)
	t := m.tiles[i]
	t.Flags &^= TileFree | TileOccupied | TileBlockedSpace
	t.Flags |= flag
	m.tiles[i] = t
}

func (m *Map) clearTileState(x, y int, water bool, flag TileFlag) {
	if !m.InBounds(x, y) {
		return
	}
	i := m.idx(x, y)
	t := m.tiles[i]
	t.Flags &^= flag
	if t.Flags&(TileOccupied|TileBlockedSpace) == 0 {
		t.Flags |= TileFree
	}
	m.tiles[i] = t
}

// blockSpace increments a tile's BlockedSpace refcount, setting the flag
// on first use.
func (m *Map) blockSpace(x, y int) point {
	if !m.InBounds(x, y) {
		return point{x, y}
	}
	i := m.idx(x, y)
	t := m.tiles[i]
	if t.BlockedRefCount == 0 {
		t.Flags &^= TileFree
		t.Flags |= TileBlockedSpace
	}
	t.BlockedRefCount++
	m.tiles[i] = t
	return point{x, y}
}

func (m *Map) unblockSpace(x, y int) {
	if !m.InBounds(x, y) {
		return
	}
	i := m.idx(x, y)
	t := m.tiles[i]
	if t.BlockedRefCount > 0 {
		t.BlockedRefCount--
	}
	if t.BlockedRefCount == 0 {
		t.Flags &^= TileBlockedSpace
		if t.Flags&TileOccupied == 0 {
			t.Flags |= TileFree
		}
	}
	m.tiles[i] = t
}

// reserveExitCorridor blocks X_SPACE tiles to the right and a
// 1.5*Y_SPACE-tall strip below (plus its mirror above) so units can leave a
// freshly placed factory (spec §4.B step 2).
func (m *Map) reserveExitCorridor(fp Footprint, cfg *config.Config) []point {
	xSpace := intOr(cfg.XSpace, 4)
	ySpace := intOr(cfg.YSpace, 4)
	var blocked []point

	rightX := fp.X + fp.SizeX
	for dy := 0; dy < fp.SizeZ; dy++ {
		for dx := 0; dx < xSpace; dx++ {
			blocked = append(blocked, m.blockSpace(rightX+dx, fp.Y+dy))
		}
	}

	belowHeight := int(1.5 * float64(ySpace))
	belowY := fp.Y + fp.SizeZ
	for dy := 0; dy < belowHeight; dy++ {
		for dx := 0; dx < fp.SizeX; dx++ {
			blocked = append(blocked, m.blockSpace(fp.X+dx, belowY+dy))
		}
	}
	aboveY := fp.Y - belowHeight
	for dy := 0; dy < belowHeight; dy++ {
		for dx := 0; dx < fp.SizeX; dx++ {
			blocked = append(blocked, m.blockSpace(fp.X+dx, aboveY+dy))
		}
	}
	return blocked
}

// antiCrowd implements spec §4.B step 3: if placing this building would
// create a row/column of MAX_XROW/MAX_YROW consecutive occupied tiles, a
// corridor of BlockedSpace tiles is inserted after the building (and
// diagonally) to keep buildings from packing solid; no corridor is
// inserted before it.
func (m *Map) antiCrowd(fp Footprint, cfg *config.Config) []point {
	maxXRow := intOr(cfg.MaxXRow, 6)
	maxYRow := intOr(cfg.MaxYRow, 6)
	xSpace := intOr(cfg.XSpace, 4)
	ySpace := intOr(cfg.YSpace, 4)

	var blocked []point

	if m.consecutiveOccupied(fp.Y, true) >= maxXRow {
		afterX := fp.X + fp.SizeX
		for dx := 0; dx < xSpace; dx++ {
			for dy := -1; dy <= fp.SizeZ; dy++ { // include diagonals
				blocked = append(blocked, m.blockSpace(afterX+dx, fp.Y+dy))
			}
		}
	}
	if m.consecutiveOccupied(fp.X, false) >= maxYRow {
		afterY := fp.Y + fp.SizeZ
		for dy := 0; dy < ySpace; dy++ {
			for dx := -1; dx <= fp.SizeX; dx++ {
				blocked = append(blocked, m.blockSpace(fp.X+dx, afterY+dy))
			}
		}
	}
	return blocked
}

// consecutiveOccupied scans row y (horizontal=true) or column x
// (horizontal=false) and returns the longest run of occupied tiles.
func (m *Map) consecutiveOccupied(fixed int, horizontal bool) int {
	best, run := 0, 0
	limit := m.Width
	if !horizontal {
		limit = m.Height
	}
	for i := 0; i < limit; i++ {
		var t Tile
		if horizontal {
			t = m.TileAt(i, fixed)
		} else {
			t = m.TileAt(fixed, i)
		}
		if t.IsOccupied() {
			run++
			if run > best {
				best = run
			}
		} else {
			run = 0
		}
	}
	return best
}

func intOr(v float64, def int) int {
	if v <= 0 {
		return def
	}
	return int(v)
}

package gamemap

import (
	emath "github.com/bklimczak/aaicore/engine/math"
)

// SectorGrid partitions the buildmap into fixed-size cells (spec §3/§4.B).
// gamemap only owns the geometry; per-sector aggregate state (combat power,
// attack history, ...) lives in the sector package, indexed by the same
// (x, y) coordinates this grid hands out.
type SectorGrid struct {
	XSectors, YSectors int
	SectorSizeX, SectorSizeY int // in buildmap tiles
}

// BuildSectorGrid computes xSectors/ySectors as round(mapSize/SECTOR_SIZE)
// and the effective per-axis sector size as floor(mapSize/nSectors), per
// spec §4.B.
func (m *Map) BuildSectorGrid(sectorSizeWorldUnits float64) SectorGrid {
	if sectorSizeWorldUnits <= 0 {
		sectorSizeWorldUnits = 1
	}
	xSectors := roundInt(float64(m.Width) / sectorSizeWorldUnits)
	ySectors := roundInt(float64(m.Height) / sectorSizeWorldUnits)
	if xSectors < 1 {
		xSectors = 1
	}
	if ySectors < 1 {
		ySectors = 1
	}
	grid := SectorGrid{
		XSectors:    xSectors,
		YSectors:    ySectors,
		SectorSizeX: m.Width / xSectors,
		SectorSizeY: m.Height / ySectors,
	}
	return grid
}

func roundInt(v float64) int {
	if v < 0 {
		return int(v - 0.5)
	}
	return int(v + 0.5)
}

// SectorOf returns the (sx, sy) sector coordinate containing a buildmap
// tile position.
func (g SectorGrid) SectorOf(pos emath.Vec2) (int, int) {
	sx := int(pos.X) / g.SectorSizeX
	sy := int(pos.Y) / g.SectorSizeY
	if sx >= g.XSectors {
		sx = g.XSectors - 1
	}
	if sy >= g.YSectors {
		sy = g.YSectors - 1
	}
	return sx, sy
}

// Center returns the center buildmap-tile position of sector (sx, sy).
func (g SectorGrid) Center(sx, sy int) emath.Vec2 {
	return emath.Vec2{
		X: float64(sx*g.SectorSizeX) + float64(g.SectorSizeX)/2,
		Y: float64(sy*g.SectorSizeY) + float64(g.SectorSizeY)/2,
	}
}

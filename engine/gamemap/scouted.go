package gamemap

import (
	"math"

	"github.com/bklimczak/aaicore/engine/callback"
	emath "github.com/bklimczak/aaicore/engine/math"
)

// scoutedCell is one cell of the coarse scouted-enemy map (resolution =
// LOS map resolution x2, spec §4.B Enemy sighting).
type scoutedCell struct {
	DefID     int
	LastFrame int
	Seen      bool
}

// SightedUnit is what RecordSighting reports back per full-visibility
// contact, for the caller to forward into sector/Brain histograms.
type SightedUnit struct {
	DefID  int
	Pos    emath.Vec2
	TargetType int // buildtree.TargetType, kept as int to avoid an import cycle
}

// RecordSighting folds one frame of "enemy units in radar+los" into the
// coarse scouted map. Full-def-visibility contacts are written into their
// scouted-map cell with the current frame; radar-only contacts are
// reported back via the sensorOnly count so the caller can bump the
// owning sector's enemy_units_detected_by_sensor counter (spec §4.B).
func (m *Map) RecordSighting(units []callback.EnemyUnit, currentFrame int) (sighted []SightedUnit, sensorOnlyCount int) {
	for _, u := range units {
		if u.DefID <= 0 {
			sensorOnlyCount++
			continue
		}
		cx, cy := int(u.Pos.X)/2, int(u.Pos.Y)/2
		if cx < 0 || cx >= m.scoutedW || cy < 0 || cy >= m.scoutedH {
			continue
		}
		i := cy*m.scoutedW + cx
		m.scouted[i] = scoutedCell{DefID: u.DefID, LastFrame: currentFrame, Seen: true}
		sighted = append(sighted, SightedUnit{DefID: u.DefID, Pos: u.Pos})
	}
	return sighted, sensorOnlyCount
}

// DecayFactor returns exp(-framesSinceSeen/5000), the weight applied when
// folding the scouted map into per-sector counts (spec §4.B).
func DecayFactor(framesSinceSeen int) float64 {
	return math.Exp(-float64(framesSinceSeen) / 5000)
}

// ScoutedCellAt returns the def id and decay-weighted confidence of the
// scouted-map cell containing a buildmap position, for sector folding.
func (m *Map) ScoutedCellAt(pos emath.Vec2, currentFrame int) (defID int, weight float64, ok bool) {
	cx, cy := int(pos.X)/2, int(pos.Y)/2
	if cx < 0 || cx >= m.scoutedW || cy < 0 || cy >= m.scoutedH {
		return 0, 0, false
	}
	c := m.scouted[cy*m.scoutedW+cx]
	if !c.Seen {
		return 0, 0, false
	}
	return c.DefID, DecayFactor(currentFrame - c.LastFrame), true
}

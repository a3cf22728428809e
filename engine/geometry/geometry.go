// Package geometry provides the spatial helpers the decision layer needs to
// pick a position away from (or towards) a set of other positions, without
// owning any unit movement itself — the engine (§6) executes the resulting
// MOVE order.
package geometry

import (
	"math"

	emath "github.com/bklimczak/aaicore/engine/math"
)

// WeightedPoint is a source position with an associated weight (e.g. enemy
// combat power, or 1.0 for an unweighted centroid).
type WeightedPoint struct {
	Pos    emath.Vec2
	Weight float64
}

// WeightedCentroid returns the weighted mean of the given points. The zero
// vector is returned for an empty or all-zero-weight input.
func WeightedCentroid(points []WeightedPoint) emath.Vec2 {
	var sumW float64
	var sum emath.Vec2
	for _, p := range points {
		sum = sum.Add(p.Pos.Mul(p.Weight))
		sumW += p.Weight
	}
	if sumW <= 0 {
		return emath.Vec2{}
	}
	return sum.Div(sumW)
}

// FallbackPosition computes a point `dist` units away from `from`, in the
// direction opposite the weighted centroid of `threats`. This grounds
// spec §4.J/K/L's fallback behavior: a unit out-ranged by an attacker backs
// away from the weighted mean of nearby enemy positions while keeping them
// in range of its own, longer-ranged weapon.
func FallbackPosition(from emath.Vec2, threats []WeightedPoint, dist float64) emath.Vec2 {
	if len(threats) == 0 || dist <= 0 {
		return from
	}
	centroid := WeightedCentroid(threats)
	away := from.Sub(centroid)
	if away.LengthSquared() < 1e-6 {
		// Degenerate (unit standing on the centroid): pick an arbitrary direction.
		away = emath.Vec2{X: 1, Y: 0}
	}
	return from.Add(away.Normalize().Mul(dist))
}

// PassableFunc reports whether a candidate point is a legal place for a unit
// to stand (map buildability/traversability, left to the caller to define).
type PassableFunc func(emath.Vec2) bool

// SafeRetreatPosition searches a ring of candidate directions around the
// direction from `awayFrom` through `from` (pointing away from
// `awayFrom`), at increasing angular offset,
// and returns the first passable candidate at `dist` units out. Grounded on
// the teacher's CalculateAvoidanceDirection (engine/collision/collision.go),
// which performs the same alternating-angle ring search against a terrain
// checker; here the "desired direction" is reversed (away from a threat
// rather than towards a movement target) and the obstacle check is supplied
// by the map/sector layer instead of a terrain grid.
func SafeRetreatPosition(from, awayFrom emath.Vec2, dist float64, passable PassableFunc) emath.Vec2 {
	toAway := from.Sub(awayFrom)
	if toAway.LengthSquared() < 1e-6 {
		toAway = emath.Vec2{X: 1, Y: 0}
	}
	baseAngle := math.Atan2(toAway.Y, toAway.X)

	angles := []float64{0}
	for offset := math.Pi / 6; offset <= math.Pi; offset += math.Pi / 6 {
		angles = append(angles, offset, -offset)
	}

	for _, offset := range angles {
		angle := baseAngle + offset
		candidate := from.Add(emath.Vec2{X: math.Cos(angle) * dist, Y: math.Sin(angle) * dist})
		if passable == nil || passable(candidate) {
			return candidate
		}
	}
	return from
}

// PositionInFrontOfTarget returns a point `dist` units from target, on the
// line from target towards from — the position a group should move to so
// it engages the target at its own preferred range rather than closing
// all the way in (spec §4.J/K, grounded on
// AAIGroup::DeterminePositionInFrontOfTarget).
func PositionInFrontOfTarget(from, target emath.Vec2, dist float64) emath.Vec2 {
	toFrom := from.Sub(target)
	if toFrom.LengthSquared() < 1e-6 {
		toFrom = emath.Vec2{X: 1, Y: 0}
	}
	return target.Add(toFrom.Normalize().Mul(dist))
}

// EdgeDistance returns the distance from pos to the nearest edge of a
// mapWidth x mapHeight rectangle rooted at the origin — used throughout
// buildsite/defence/rally scoring (spec §4.B/§4.C/§4.H) to penalize
// positions close to the map border.
func EdgeDistance(pos emath.Vec2, mapWidth, mapHeight float64) float64 {
	d := pos.X
	if v := mapWidth - pos.X; v < d {
		d = v
	}
	if pos.Y < d {
		d = pos.Y
	}
	if v := mapHeight - pos.Y; v < d {
		d = v
	}
	return d
}

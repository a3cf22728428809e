package unittable

import (
	"math"

	"github.com/bklimczak/aaicore/engine/buildtree"
	emath "github.com/bklimczak/aaicore/engine/math"
)

// BuilderQuery supplies the per-unit facts FindBuilder/FindClosestBuilder/
// FindClosestAssistant need but that unittable itself doesn't track
// (position, availability, continent) — Constructor/Brain own that state,
// so these are passed in as closures to avoid unittable depending on
// engine/constructor (spec §4.E keeps the table a pure registry).
type BuilderQuery struct {
	PositionOf    func(unitID int) (emath.Vec2, bool)
	IsAvailable   func(unitID int) bool // idle or currently assisting, per spec §4.F
	IsIdle        func(unitID int) bool
	ContinentOf   func(pos emath.Vec2) int
	MaxSpeedOf    func(defID buildtree.UnitDefId) float64
}

// FindBuilder returns the first available constructor able to build
// target, honoring the commander flag (spec §4.E find_builder).
func (t *Table) FindBuilder(q BuilderQuery, target buildtree.UnitDefId, allowCommander bool) (int, bool) {
	for id := range t.constructors {
		e, ok := t.units[id]
		if !ok || !t.isBuilder(e.DefID) {
			continue
		}
		if !q.IsAvailable(id) || !t.bt.CanConstruct(e.DefID, target) {
			continue
		}
		props, _ := t.bt.Properties(e.DefID)
		if !allowCommander && props.Category.IsCommander() {
			continue
		}
		return id, true
	}
	return 0, false
}

// FindClosestBuilder returns the available constructor that can build
// target with the shortest estimated travel time to pos, restricted to
// continent-bound units sharing pos's continent (spec §4.E
// find_closest_builder).
func (t *Table) FindClosestBuilder(q BuilderQuery, target buildtree.UnitDefId, pos emath.Vec2, allowCommander bool) (int, float64, bool) {
	continent := 0
	if q.ContinentOf != nil {
		continent = q.ContinentOf(pos)
	}

	best := 0
	bestTime := 0.0
	found := false

	for id := range t.constructors {
		e, ok := t.units[id]
		if !ok || !t.isBuilder(e.DefID) {
			continue
		}
		if !q.IsAvailable(id) || !t.bt.CanConstruct(e.DefID, target) {
			continue
		}
		props, _ := t.bt.Properties(e.DefID)
		if !allowCommander && props.Category.IsCommander() {
			continue
		}

		builderPos, ok := q.PositionOf(id)
		if !ok {
			continue
		}
		if props.MovementType.CannotMoveToOtherContinents() && q.ContinentOf != nil && q.ContinentOf(builderPos) != continent {
			continue
		}

		dx := builderPos.X - pos.X
		dy := builderPos.Y - pos.Y
		travelTime := math.Sqrt(dx*dx + dy*dy)
		if maxSpeed := q.MaxSpeedOf(e.DefID); maxSpeed > 0 {
			travelTime /= maxSpeed
		}

		if !found || travelTime < bestTime {
			best, bestTime, found = id, travelTime, true
		}
	}

	return best, bestTime, found
}

// FindClosestAssistant returns the nearest idle assister to pos,
// restricted to continent-bound units sharing pos's continent (spec
// §4.E find_closest_assistant).
func (t *Table) FindClosestAssistant(q BuilderQuery, pos emath.Vec2, allowCommander bool) (int, bool) {
	continent := 0
	if q.ContinentOf != nil {
		continent = q.ContinentOf(pos)
	}

	best := 0
	bestDistSq := 0.0
	found := false

	for id := range t.constructors {
		e, ok := t.units[id]
		if !ok || !t.isAssister(e.DefID) {
			continue
		}
		if !q.IsIdle(id) {
			continue
		}
		props, _ := t.bt.Properties(e.DefID)
		if !allowCommander && props.Category.IsCommander() {
			continue
		}

		assistantPos, ok := q.PositionOf(id)
		if !ok {
			continue
		}
		if props.MovementType.CannotMoveToOtherContinents() && q.ContinentOf != nil && q.ContinentOf(assistantPos) != continent {
			continue
		}

		dx := pos.X - assistantPos.X
		dy := pos.Y - assistantPos.Y
		distSq := dx*dx + dy*dy

		if !found || distSq < bestDistSq {
			best, bestDistSq, found = id, distSq, true
		}
	}

	return best, found
}

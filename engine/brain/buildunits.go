package brain

import (
	"math/rand"

	"github.com/bklimczak/aaicore/engine/buildtree"
	"github.com/bklimczak/aaicore/engine/gamemap"
)

// ThreatByTargetType is the per-target-type combat-unit-mix weighting
// BuildUnits derives each tick, consumed by Executor's unit selection
// (spec §4.H build_units).
type ThreatByTargetType [5]float64

// ComputeThreatByTargetType blends how often each mobile target type has
// attacked, how many units of it were ever seen at once, and how well the
// current army already counters it into one threat score per target type,
// plus a derived Static score (spec §4.H build_units's "threat/defence
// capabilities" pass).
func (b *Brain) ComputeThreatByTargetType(rates *buildtree.AttackedByRates, mapType int, phase GamePhase) ThreatByTargetType {
	var attackedBy [4]float64
	attackedByStats := &statisticalData{}
	spottedStats := &statisticalData{}
	defenceStats := &statisticalData{}

	for t := buildtree.TargetSurface; t < buildtree.TargetSubmerged+1; t++ {
		attackedBy[t] = b.GetAttacksBy(t, rates, mapType, phase)
		attackedByStats.AddValue(attackedBy[t])
		spottedStats.AddValue(b.maxSpottedCombatUnits[t])
		defenceStats.AddValue(b.TotalMobileCombatPower[t])
	}
	attackedByStats.Finalize()
	spottedStats.Finalize()
	defenceStats.Finalize()

	var threat ThreatByTargetType
	for t := buildtree.TargetSurface; t < buildtree.TargetSubmerged+1; t++ {
		threat[t] = attackedByStats.NormalizedDeviationFromMin(attackedBy[t]) +
			spottedStats.NormalizedDeviationFromMin(b.maxSpottedCombatUnits[t]) +
			1.5*defenceStats.NormalizedDeviationFromMax(b.TotalMobileCombatPower[t])
	}
	threat[buildtree.TargetStatic] = threat[buildtree.TargetSurface] + threat[buildtree.TargetFloater]
	return threat
}

// RolledCategory is one unit_production_rate slot's combat-category roll
// (spec §4.H build_units's per-slot map-type-driven category choice).
type RolledCategory struct {
	TargetType buildtree.TargetType
	IsAir      bool
}

// RollCombatCategory picks which mobile target type the next combat-unit
// build slot should aim for, based on map type and (for land-water maps)
// the land/water split, with a chance of rolling an air unit instead once
// past the starting phase (spec §4.H build_units).
func RollCombatCategory(mapType gamemap.MapType, landRatio float64, aircraftRate float64, phase GamePhase, rng *rand.Rand) RolledCategory {
	target := buildtree.TargetSurface
	switch mapType {
	case gamemap.MapTypeWater:
		target = buildtree.TargetFloater
	case gamemap.MapTypeLandWater:
		if rng.Float64() >= landRatio {
			target = buildtree.TargetFloater
		}
	}

	isAir := false
	if !phase.IsStartingPhase() && aircraftRate > 0 && rng.Float64() < 1/aircraftRate {
		isAir = true
	}
	return RolledCategory{TargetType: target, IsAir: isAir}
}

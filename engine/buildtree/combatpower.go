package buildtree

import "github.com/bklimczak/aaicore/engine/callback"

// targetTypeBit maps a TargetType to the WeaponTargets bit a weapon must
// declare to be able to engage it.
func targetTypeBit(t TargetType) callback.WeaponTargets {
	switch t {
	case TargetSurface:
		return callback.TargetsSurface
	case TargetAir:
		return callback.TargetsAir
	case TargetFloater:
		return callback.TargetsFloater
	case TargetSubmerged:
		return callback.TargetsSubmerged
	case TargetStatic:
		return callback.TargetsStatic
	default:
		return 0
	}
}

// canEngage reports whether any weapon on def declares the bit for t.
func canEngage(def callback.UnitDef, t TargetType) bool {
	bit := targetTypeBit(t)
	for _, w := range def.Weapons {
		if w.TargetCategories&bit != 0 {
			return true
		}
	}
	return false
}

// initCombatPower implements spec §4.A's combat-power initialisation: for
// every combat/static-defence def, compute a targetable-fraction-weighted
// seed value per TargetType, then flip the UnitType Anti* bits.
func (bt *BuildTree) initCombatPower() {
	n := len(bt.defs) - 1

	// Total def count per target type, across all sides, denominator of
	// targetable_fraction.
	var totalByTarget [numTargetTypes]int
	for id := 1; id <= n; id++ {
		if bt.side[id] == 0 {
			continue
		}
		totalByTarget[bt.props[id].TargetType]++
	}

	var minCost, maxCost float64
	first := true
	for id := 1; id <= n; id++ {
		if bt.side[id] == 0 || !bt.props[id].Category.IsCombat() {
			continue
		}
		cost := bt.props[id].TotalCost
		if first {
			minCost, maxCost = cost, cost
			first = false
			continue
		}
		if cost < minCost {
			minCost = cost
		}
		if cost > maxCost {
			maxCost = cost
		}
	}

	base := minInitialCombatPower - noValidTargetInitialPower
	costComponent := 0.5*maxCombatPower - minInitialCombatPower

	normalise := func(cost float64) float64 {
		if maxCost <= minCost {
			return 0
		}
		return (cost - minCost) / (maxCost - minCost)
	}

	for id := 1; id <= n; id++ {
		if bt.side[id] == 0 || !bt.props[id].Category.IsCombat() {
			continue
		}
		def := bt.defs[id]
		powerComponent := base + costComponent*normalise(bt.props[id].TotalCost)

		var cp CombatPower
		for t := TargetType(0); t < numTargetTypes; t++ {
			if totalByTarget[t] == 0 {
				continue
			}
			engageable := 0
			if canEngage(def, t) {
				engageable = totalByTarget[t]
			}
			fraction := float64(engageable) / float64(totalByTarget[t])
			cp[t] = noValidTargetInitialPower + powerComponent*fraction
		}
		cp.clamp()
		bt.combatPower[id] = cp

		bits := bt.props[id].UnitType
		if cp[TargetSurface] > minAntiTargetTypeCombatPower {
			bits |= TypeAntiSurface
		}
		if cp[TargetAir] > minAntiTargetTypeCombatPower {
			bits |= TypeAntiAir
		}
		if cp[TargetFloater] > minAntiTargetTypeCombatPower {
			bits |= TypeAntiShip
		}
		if cp[TargetSubmerged] > minAntiTargetTypeCombatPower {
			bits |= TypeAntiSubmerged
		}
		if cp[TargetStatic] > minAntiTargetTypeCombatPower {
			bits |= TypeAntiStatic
		}
		bt.props[id].UnitType = bits
	}
}

// UpdateCombatPowerStatistics implements the combat-learning update of
// spec §4.A: when a combat (or static-defence) unit kills another, the
// attacker's power against the killed's target type rises and the
// killed's power against the attacker's target type falls, by an amount
// proportional to how lopsided the current matchup already was.
func (bt *BuildTree) UpdateCombatPowerStatistics(attacker, killed UnitDefId) {
	if int(attacker) <= 0 || int(attacker) >= len(bt.props) ||
		int(killed) <= 0 || int(killed) >= len(bt.props) {
		return
	}
	if !bt.props[attacker].Category.IsCombat() || !bt.props[killed].Category.IsCombat() {
		return
	}

	attackerTarget := bt.props[attacker].TargetType
	killedTarget := bt.props[killed].TargetType

	attackerPower := bt.combatPower[attacker][killedTarget]
	if attackerPower <= 0 {
		attackerPower = minCombatPower
	}
	killedPower := bt.combatPower[killed][attackerTarget]

	delta := learningFactor * killedPower / attackerPower
	if delta > maxChangePerCombat {
		delta = maxChangePerCombat
	}

	bt.combatPower[attacker][killedTarget] += delta
	bt.combatPower[killed][attackerTarget] -= delta

	bt.combatPower[attacker].clamp()
	bt.combatPower[killed].clamp()
}

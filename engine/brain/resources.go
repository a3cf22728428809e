package brain

import (
	"github.com/bklimczak/aaicore/engine/buildtree"
	"github.com/bklimczak/aaicore/engine/sector"
)

// UpdateResources folds the latest engine income/usage samples into the
// smoothed metal/energy income and surplus (spec §4.H update_ressources).
// Surplus is clamped to >= 0.
func (b *Brain) UpdateResources(metalIncome, energyIncome, metalUsage, energyUsage float64) {
	metalSurplus := metalIncome - metalUsage
	if metalSurplus < 0 {
		metalSurplus = 0
	}
	energySurplus := energyIncome - energyUsage
	if energySurplus < 0 {
		energySurplus = 0
	}

	b.MetalIncome.AddValue(metalIncome)
	b.EnergyIncome.AddValue(energyIncome)
	b.MetalSurplus.AddValue(metalSurplus)
	b.EnergySurplus.AddValue(energySurplus)
}

// UpdateMaxCombatUnitsSpotted decays the running per-target-type maximum
// by 0.996 and raises any slot the latest sighting histogram exceeds
// (spec §4.H update_max_combat_units_spotted).
func (b *Brain) UpdateMaxCombatUnitsSpotted(spotted [4]float64) {
	for t := range b.maxSpottedCombatUnits {
		b.maxSpottedCombatUnits[t] *= 0.996
		if spotted[t] > b.maxSpottedCombatUnits[t] {
			b.maxSpottedCombatUnits[t] = spotted[t]
		}
	}
}

// MaxSpottedCombatUnits returns the current decayed per-target-type peak.
func (b *Brain) MaxSpottedCombatUnits() [4]float64 { return b.maxSpottedCombatUnits }

// UpdateAttackedByValues decays the current-game attacked-by histogram by
// 0.96/tick (spec §4.H update_attacked_by_values).
func (b *Brain) UpdateAttackedByValues() {
	for t := range b.recentlyAttackedByRates {
		b.recentlyAttackedByRates[t] *= 0.96
	}
}

// AttackedBy records an attack by a unit of the given mobile target type,
// bumping both this game's recent histogram and the persistent per-phase
// rates table (spec §4.H attacked_by). mapType indexes rates' first axis.
func (b *Brain) AttackedBy(targetType buildtree.TargetType, rates *buildtree.AttackedByRates, mapType int, frame int) {
	if int(targetType) >= len(b.recentlyAttackedByRates) {
		return // Static is not a mobile attacker category
	}
	b.recentlyAttackedByRates[targetType] += 1
	phase := GamePhaseOf(frame)
	rates[mapType][phase][targetType] += 1
}

// GetAttacksBy blends the per-game-phase persisted rate with the current
// game's recent rate (spec §4.H get_attacks_by).
func (b *Brain) GetAttacksBy(targetType buildtree.TargetType, rates *buildtree.AttackedByRates, mapType int, phase GamePhase) float64 {
	if int(targetType) >= len(b.recentlyAttackedByRates) {
		return 0
	}
	return 0.3*rates[mapType][phase][targetType] + 0.7*b.recentlyAttackedByRates[targetType]
}

// UpdateDefenceCapabilities recomputes TotalMobileCombatPower by summing
// the mobile combat power of every group the caller supplies (spec §4.H
// update_defence_capabilities — Brain has no direct group list of its own,
// so Executor/AttackManager hand in the live roster each tick).
func (b *Brain) UpdateDefenceCapabilities(groupCombatPower func(yield func(power [4]float64))) {
	b.TotalMobileCombatPower = [4]float64{}
	groupCombatPower(func(power [4]float64) {
		for t := range power {
			b.TotalMobileCombatPower[t] += power[t]
		}
	})
}

// UpdatePressureByEnemy recomputes EnemyPressureEstimation from total
// enemy combat units in the base and its immediate neighbours, clamped to
// [0,1] (spec §4.H update_pressure_by_enemy).
func (b *Brain) UpdatePressureByEnemy() {
	b.EnemyPressureEstimation = 0
	for _, s := range b.sectorsByDistance[0] {
		b.EnemyPressureEstimation += 0.1 * totalEnemyCombatUnits(s)
	}
	for _, s := range b.SectorsAtDistance(1) {
		b.EnemyPressureEstimation += 0.1 * totalEnemyCombatUnits(s)
	}
	if b.EnemyPressureEstimation > 1 {
		b.EnemyPressureEstimation = 1
	}
}

func totalEnemyCombatUnits(s *sector.Sector) float64 {
	var sum float64
	for _, v := range s.EnemyCombatUnits {
		sum += v
	}
	return sum
}

// Affordable returns how cheap new combat units should be kept given the
// current metal income (spec §4.H affordable — higher when income is low).
func (b *Brain) Affordable(metalIncome float64) float64 {
	return 25 / (metalIncome + 5)
}

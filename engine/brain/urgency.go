package brain

const energyToMetalConversionFactor = 60

const (
	minUnusedEnergyStorageCapacityToBuildStorage = 500.0
	minUnusedMetalStorageCapacityToBuildStorage  = 200.0
	minMetalSurplusForConstructionAssist  = 5.0
	minEnergySurplusForConstructionAssist = 200.0
)

// GetEnergyUrgency implements spec §4.H's energy-urgency table.
func (b *Brain) GetEnergyUrgency(activePowerPlants int) float64 {
	surplus := b.EnergySurplus.AverageValue()
	switch {
	case surplus > 2000:
		return 0
	case activePowerPlants > 0:
		return 4 / (2*surplus/energyToMetalConversionFactor + 0.5)
	default:
		return 7
	}
}

// GetMetalUrgency implements spec §4.H's metal-urgency table.
func (b *Brain) GetMetalUrgency(activeExtractors int) float64 {
	if activeExtractors > 0 {
		return 4 / (2*b.MetalSurplus.AverageValue() + 0.5)
	}
	return 8
}

// GetEnergyStorageUrgency returns a nonzero urgency only when energy
// surplus is comfortably high, unused storage is scarce, and no storage is
// already queued (spec §4.H storage urgencies).
func (b *Brain) GetEnergyStorageUrgency(energyStorage, energy float64, futureStorageUnits int) float64 {
	unused := energyStorage - energy
	if b.EnergySurplus.AverageValue()/energyToMetalConversionFactor > 4 &&
		unused < minUnusedEnergyStorageCapacityToBuildStorage &&
		futureStorageUnits <= 0 {
		return 0.15
	}
	return 0
}

// GetMetalStorageUrgency mirrors GetEnergyStorageUrgency for metal.
func (b *Brain) GetMetalStorageUrgency(metalStorage, metal float64, futureStorageUnits int) float64 {
	unused := metalStorage - metal
	if b.MetalSurplus.AverageValue() > 3 &&
		unused < minUnusedMetalStorageCapacityToBuildStorage &&
		futureStorageUnits <= 0 {
		return 0.2
	}
	return 0
}

// CheckConstructionAssist reports whether a constructor building something
// of this category should be assisted right now: extractors and power
// plants always qualify (every tick of delay costs future income), anything
// else only once both metal and energy surplus comfortably clear their
// thresholds (spec §4.H check_construction_assist).
func (b *Brain) CheckConstructionAssist(isMetalExtractor, isPowerPlant bool) bool {
	if isMetalExtractor || isPowerPlant {
		return true
	}
	return b.MetalSurplus.AverageValue() > minMetalSurplusForConstructionAssist &&
		b.EnergySurplus.AverageValue() > minEnergySurplusForConstructionAssist
}

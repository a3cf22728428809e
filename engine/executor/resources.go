package executor

// MetalMakerSwitch is the minimal metal-maker on/off contract
// CheckResources needs: enumerate makers, query/toggle their activation,
// and read a maker's energy upkeep (spec §4.I check_ressources's
// metal-maker toggling, grounded on AAIExecute::CheckRessources).
type MetalMakerSwitch interface {
	Makers() []int
	IsActivated(unitID int) bool
	EnergyUpkeep(unitID int) float64
	SetActivated(unitID int, on bool)
}

// CheckResources implements spec §4.I's check_ressources: it raises the
// Extractor/PowerPlant/Storage urgencies from Brain's telemetry, then
// trims or restores metal-maker activation to track energy surplus.
// assistExtractor/assistMetalMaker/assistPowerPlant hand off to
// Constructor/UnitTable's "find an idle assister and attach it" logic —
// Executor only decides *that* assistance is warranted.
func CheckResources(
	u *UrgencyTable,
	metalUrgency, energyUrgency, metalStorageUrgency, energyStorageUrgency float64,
	totalStorageUnits, maxStorage, minFactoriesForStorage, activeFactories int,
	averagedEnergySurplus, energyIncome, minMetalMakerEnergy float64,
	averagedMetalSurplus, minMetalSurplusForConstructionAssist float64,
	makers MetalMakerSwitch,
	assistExtractorIfUnderConstruction func(),
	assistMetalMakerIfUnderConstruction func(),
	assistPowerPlantIfUnderConstruction func(),
) {
	u.RaiseTo(CategoryExtractor, metalUrgency)
	u.RaiseTo(CategoryPowerPlant, energyUrgency)

	if totalStorageUnits < maxStorage && activeFactories >= minFactoriesForStorage {
		storageUrgency := energyStorageUrgency
		if metalStorageUrgency > storageUrgency {
			storageUrgency = metalStorageUrgency
		}
		u.RaiseTo(CategoryStorage, storageUrgency)
	}

	if averagedEnergySurplus < 0.1*energyIncome {
		assistPowerPlantIfUnderConstruction()
		toggleOffOneMaker(makers)
	} else if averagedEnergySurplus > minMetalMakerEnergy {
		toggleOnOneMaker(makers, averagedEnergySurplus)
	}

	if averagedMetalSurplus < minMetalSurplusForConstructionAssist {
		assistExtractorIfUnderConstruction()
		if averagedEnergySurplus > minMetalMakerEnergy {
			assistMetalMakerIfUnderConstruction()
		}
	}
}

func toggleOffOneMaker(makers MetalMakerSwitch) {
	for _, id := range makers.Makers() {
		if makers.IsActivated(id) {
			makers.SetActivated(id, false)
			return
		}
	}
}

func toggleOnOneMaker(makers MetalMakerSwitch, averagedEnergySurplus float64) {
	for _, id := range makers.Makers() {
		if !makers.IsActivated(id) && averagedEnergySurplus > makers.EnergyUpkeep(id)*0.7 {
			makers.SetActivated(id, true)
			return
		}
	}
}

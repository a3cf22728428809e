package executor

// CheckExtractorUpgrade implements spec §4.I check_extractor_upgrade:
// replacing a lower-yield metal extractor with the best one the side can
// build only pays off once metal is no longer the bottleneck, so the
// reclaim-and-rebuild only fires while metal surplus clears
// minMetalSurplusForUpgrade and a strictly better def exists for the spot.
func CheckExtractorUpgrade(bestCost, currentCost, metalSurplus, minMetalSurplusForUpgrade float64) bool {
	return bestCost > currentCost && metalSurplus > minMetalSurplusForUpgrade
}

// CheckRadarUpgrade implements spec §4.I check_radar_upgrade: the sensor
// analogue of CheckExtractorUpgrade, gated on energy surplus instead of
// metal since radar/sonar upkeep draws energy, not metal.
func CheckRadarUpgrade(bestRange, currentRange, energySurplus, minEnergySurplusForUpgrade float64) bool {
	return bestRange > currentRange && energySurplus > minEnergySurplusForUpgrade
}

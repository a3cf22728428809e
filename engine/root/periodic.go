package root

import (
	"github.com/bklimczak/aaicore/engine/brain"
	"github.com/bklimczak/aaicore/engine/buildtree"
	"github.com/bklimczak/aaicore/engine/callback"
	"github.com/bklimczak/aaicore/engine/executor"
	"github.com/bklimczak/aaicore/engine/geometry"
	"github.com/bklimczak/aaicore/engine/sector"
)

// activeFactoriesOfDef counts how many live constructors build defID,
// the per-factory-type activity BuildQueues.CheckBuildqueues and
// AddUnitToBuildqueue rank candidate factories by.
func (r *AAIRoot) activeFactoriesOfDef(defID buildtree.UnitDefId) int {
	n := 0
	for _, c := range r.constructors {
		if c.IsFactory && c.DefID == defID {
			n++
		}
	}
	return n
}

// mapMediumMismatch always reports no mismatch: this tree tracks no
// per-factory "built for this map's medium" flag, so
// AddUnitToBuildqueue's 10x downweight never fires (scope simplification,
// see DESIGN.md).
func (r *AAIRoot) mapMediumMismatch(buildtree.UnitDefId) bool { return false }

// adjustUnitProductionRate mirrors spec §4.I check_buildqueues: it lets
// BuildQueues re-tune how many combat-unit build slots build_units fills
// each pass against how backed-up the live factory queues are.
func (r *AAIRoot) adjustUnitProductionRate() {
	r.exec.Queues.CheckBuildqueues(r.activeFactoriesOfDef)
}

// combatCategoryFor maps one build_units roll onto the buildtree category
// its def search should draw from (spec §4.H build_units's map-type-driven
// category choice).
func combatCategoryFor(rolled brain.RolledCategory) buildtree.UnitCategory {
	switch {
	case rolled.IsAir:
		return buildtree.CategoryAirCombat
	case rolled.TargetType == buildtree.TargetFloater:
		return buildtree.CategorySeaCombat
	default:
		return buildtree.CategoryGroundCombat
	}
}

// bestCombatDefOfCategory picks the def of cat (for side) with the
// highest CombatPowerOf targetType, the way build_units turns a rolled
// target type into a concrete unit def to queue.
func (r *AAIRoot) bestCombatDefOfCategory(cat buildtree.UnitCategory, side int, targetType buildtree.TargetType) (buildtree.UnitDefId, buildtree.UnitTypeProperties, bool) {
	var best buildtree.UnitDefId
	var bestProps buildtree.UnitTypeProperties
	bestPower := 0.0
	found := false
	for id := 1; id <= r.bt.NumDefs(); id++ {
		defID := buildtree.UnitDefId(id)
		props, ok := r.bt.Properties(defID)
		if !ok || props.Category != cat || r.bt.Side(defID) != side {
			continue
		}
		power := r.bt.CombatPowerOf(defID)[targetType]
		if power <= 0 {
			continue
		}
		if !found || power > bestPower {
			best, bestProps, bestPower, found = defID, props, power, true
		}
	}
	return best, bestProps, found
}

// buildUnits mirrors spec §4.H Brain.build_units: it rolls which mobile
// target type this production slot should counter from the map type, the
// base's land ratio, cfg.AircraftRate and the game phase (the
// ComputeThreatByTargetType result does not enter the roll), picks the
// strongest def of the matching category,
// and queues unit_production_rate copies of it on whichever live factory
// type rates best.
func (r *AAIRoot) buildUnits() {
	mapType := int(r.gmap.Type())
	phase := brain.GamePhaseOf(r.lastFrame)
	threat := r.brain.ComputeThreatByTargetType(&r.rates, mapType, phase)
	_ = threat // not used: RollCombatCategory takes no threat input

	landRatio := 1 - r.brain.BaseWaterRatio
	rolled := brain.RollCombatCategory(r.gmap.Type(), landRatio, r.cfg.AircraftRate, phase, r.rng)
	cat := combatCategoryFor(rolled)

	side := r.bt.Side(r.commanderDefID())
	defID, props, ok := r.bestCombatDefOfCategory(cat, side, rolled.TargetType)
	if !ok {
		return
	}

	number := r.exec.Queues.UnitProductionRate()
	constructedBy := r.bt.ConstructedBy(defID)
	added := r.exec.Queues.AddUnitToBuildqueue(defID, number, false, constructedBy, r.activeFactoriesOfDef, r.mapMediumMismatch)
	if added {
		r.table.UnitRequested(props.Category, number)
	}
}

// buildScouts mirrors spec §4.I build_scouts: tops the scout roster up to
// cfg.MaxScouts by queueing one at a time on whichever factory type can
// build it.
func (r *AAIRoot) buildScouts() {
	if len(r.table.Scouts()) >= r.cfg.MaxScouts {
		return
	}
	side := r.bt.Side(r.commanderDefID())
	defID, props, ok := r.bestDefOfCategory(buildtree.CategoryScout, side)
	if !ok {
		return
	}
	constructedBy := r.bt.ConstructedBy(defID)
	added := r.exec.Queues.AddUnitToBuildqueue(defID, 1, false, constructedBy, r.activeFactoriesOfDef, r.mapMediumMismatch)
	if added {
		r.table.UnitRequested(props.Category, 1)
	}
}

// checkFactories mirrors spec §4.I check_factories: see
// maybeQueueFactory's doc for the bootstrap-and-replace policy this tree
// runs instead of the original's per-factory overload trigger.
func (r *AAIRoot) checkFactories() {
	r.maybeQueueFactory()
}

// checkConstructionOfNanoTurret mirrors spec §4.I
// check_construction_of_nano_turret: cfg carries no dedicated nano-turret
// roster cap, so this tree caps it at one per base (scope simplification,
// see DESIGN.md).
func (r *AAIRoot) checkConstructionOfNanoTurret() {
	const maxNanoTurrets = 1
	executor.CheckConstructionOfNanoTurret(&r.exec.Urgency, r.table.ActiveFactories(), len(r.table.NanoTurrets()), maxNanoTurrets)
}

// checkDefences mirrors spec §4.I check_defences: it re-ranks every
// sector's GetImportanceForStaticDefenceVs and remembers the winner so
// tryBuildStaticDefence knows where and against what target type to
// place the next static defence building.
func (r *AAIRoot) checkDefences() {
	mapType := int(r.gmap.Type())
	phase := int(brain.GamePhaseOf(r.lastFrame))

	var bestSector *sector.Sector
	var best sector.ImportanceForDefence
	found := false

	for _, s := range r.flat {
		closeToBase := s.DistanceToBase <= 1
		center := s.Center(float64(r.grid.SectorSizeX), float64(r.grid.SectorSizeY))
		edgeDistance := geometry.EdgeDistance(center, float64(r.gmap.Width), float64(r.gmap.Height))

		imp, ok := s.GetImportanceForStaticDefenceVs(
			closeToBase,
			func(t int) float64 { return s.AttacksPreviousGames[t] + s.AttacksThisGame[t] },
			func(t int, p int) float64 {
				return r.brain.GetAttacksBy(buildtree.TargetType(t), &r.rates, mapType, brain.GamePhase(p))
			},
			phase,
			func(t int) float64 { return s.FriendlyStaticCombatPower[t] },
			edgeDistance,
			float64(s.DistanceToBase),
			false, // closerToEnemyBase: this tree tracks no enemy base location (see DESIGN.md)
			r.cfg.MaxDefences,
		)
		if !ok {
			continue
		}
		if !found || imp.Rating > best.Rating {
			best, bestSector, found = imp, s, true
		}
	}
	if !found {
		return
	}

	r.defenceTargetSector = bestSector
	r.defenceTargetType = buildtree.TargetType(best.TargetType)
	r.exec.Urgency.RaiseTo(executor.CategoryStaticDefence, best.Rating)
}

// checkRecon mirrors spec §4.I check_recon: a base with no radar/sonar
// coverage yet asks for one static sensor.
func (r *AAIRoot) checkRecon() {
	if len(r.table.Recon()) > 0 {
		return
	}
	r.exec.Urgency.RaiseTo(executor.CategoryStaticSensor, 1)
}

// checkStationaryArty mirrors spec §4.I check_stationary_arty: tops the
// stationary artillery roster up to cfg.MaxStatArty.
func (r *AAIRoot) checkStationaryArty() {
	if len(r.table.StationaryArty()) >= r.cfg.MaxStatArty {
		return
	}
	r.exec.Urgency.RaiseTo(executor.CategoryStaticArtillery, 1)
}

// bestExtractorDef returns the highest-cost (highest-yield) extractor def
// for side, the replacement candidate checkExtractorUpgrade compares
// every live extractor against.
func (r *AAIRoot) bestExtractorDef(side int) (buildtree.UnitDefId, buildtree.UnitTypeProperties, bool) {
	var best buildtree.UnitDefId
	var bestProps buildtree.UnitTypeProperties
	found := false
	for id := 1; id <= r.bt.NumDefs(); id++ {
		defID := buildtree.UnitDefId(id)
		props, ok := r.bt.Properties(defID)
		if !ok || props.Category != buildtree.CategoryMetalExtractor || r.bt.Side(defID) != side {
			continue
		}
		if !found || props.TotalCost > bestProps.TotalCost {
			best, bestProps, found = defID, props, true
		}
	}
	return best, bestProps, found
}

// bestStaticSensorDef returns the longest-range static sensor def for
// side (PrimaryAbility holds RadarRange for a weaponless radar/sonar
// building — see buildtree.abilitiesOf), the replacement candidate
// checkRadarUpgrade compares every live sensor against.
func (r *AAIRoot) bestStaticSensorDef(side int) (buildtree.UnitDefId, buildtree.UnitTypeProperties, bool) {
	var best buildtree.UnitDefId
	var bestProps buildtree.UnitTypeProperties
	found := false
	for id := 1; id <= r.bt.NumDefs(); id++ {
		defID := buildtree.UnitDefId(id)
		props, ok := r.bt.Properties(defID)
		if !ok || props.Category != buildtree.CategoryStaticSensor || r.bt.Side(defID) != side {
			continue
		}
		if !found || props.PrimaryAbility > bestProps.PrimaryAbility {
			best, bestProps, found = defID, props, true
		}
	}
	return best, bestProps, found
}

// reclaimForUpgrade orders the closest available builder to reclaim
// oldUnitID so tryBuildExtractor/tryBuildStaticSensor can rebuild a
// better def on the freed spot on their next pass (spec §4.I
// check_extractor_upgrade/check_radar_upgrade).
func (r *AAIRoot) reclaimForUpgrade(newDef buildtree.UnitDefId, oldUnitID int) {
	pos, ok := r.unitPos(oldUnitID)
	if !ok {
		return
	}
	builderID, ok := r.findClosestBuilder(newDef, pos)
	if !ok {
		return
	}
	r.eng.GiveOrder(builderID, callback.Command{Order: callback.OrderReclaim, TargetID: oldUnitID})
}

// checkExtractorUpgrade mirrors spec §4.I check_extractor_upgrade: once
// metal surplus is positive and a higher-yield extractor def than the one
// already sitting on a spot exists, reclaim it so the spot frees up for
// the better def.
func (r *AAIRoot) checkExtractorUpgrade() {
	side := r.bt.Side(r.commanderDefID())
	bestDef, bestProps, ok := r.bestExtractorDef(side)
	if !ok {
		return
	}
	metalSurplus := r.brain.MetalSurplus.AverageValue()
	for _, unitID := range r.table.Extractors() {
		entry, ok := r.table.Get(unitID)
		if !ok || entry.DefID == bestDef {
			continue
		}
		currentProps, ok := r.bt.Properties(entry.DefID)
		if !ok {
			continue
		}
		if !executor.CheckExtractorUpgrade(bestProps.TotalCost, currentProps.TotalCost, metalSurplus, 0) {
			continue
		}
		r.reclaimForUpgrade(bestDef, unitID)
		return
	}
}

// checkRadarUpgrade mirrors spec §4.I check_radar_upgrade: the sensor
// analogue of checkExtractorUpgrade, gated on energy surplus instead of
// metal.
func (r *AAIRoot) checkRadarUpgrade() {
	side := r.bt.Side(r.commanderDefID())
	bestDef, bestProps, ok := r.bestStaticSensorDef(side)
	if !ok {
		return
	}
	energySurplus := r.brain.EnergySurplus.AverageValue()
	for _, unitID := range r.table.Recon() {
		entry, ok := r.table.Get(unitID)
		if !ok || entry.DefID == bestDef {
			continue
		}
		currentProps, ok := r.bt.Properties(entry.DefID)
		if !ok {
			continue
		}
		if !executor.CheckRadarUpgrade(bestProps.PrimaryAbility, currentProps.PrimaryAbility, energySurplus, 0) {
			continue
		}
		r.reclaimForUpgrade(bestDef, unitID)
		return
	}
}

// updateSectors mirrors spec §4.B Map.update_sectors: it ages out last
// tick's combat-power/loss bookkeeping and refolds the live engine and
// scouted-enemy state back in, so GetImportanceForStaticDefenceVs and
// GetAttackRating always rank against this tick's picture rather than an
// ever-growing history.
func (r *AAIRoot) updateSectors() {
	allied := make(map[*sector.Sector]bool)
	for _, g := range r.grps.Groups() {
		for _, unitID := range g.Units {
			pos, ok := r.unitPos(unitID)
			if !ok {
				continue
			}
			s := r.sectorOf(pos)
			if s == nil {
				continue
			}
			power := r.bt.CombatPowerOf(g.DefID)
			s.AddFriendlyUnitData(g.Category, power, false)
			allied[s] = true
		}
	}

	enemies := r.eng.GetEnemyUnitsInRadarAndLOS()
	scouted := make(map[*sector.Sector]bool)
	for _, e := range enemies {
		s := r.sectorOf(e.Pos)
		if s == nil {
			continue
		}
		def, ok := r.eng.GetUnitDefOf(e.UnitID)
		if !ok {
			continue
		}
		defID := buildtree.UnitDefId(def.ID)
		props, ok := r.bt.Properties(defID)
		if !ok {
			continue
		}
		s.AddScoutedEnemyUnit(props.Category, r.bt.CombatPowerOf(defID), 0)
		scouted[s] = true
	}

	for _, s := range r.flat {
		if !allied[s] {
			s.ResetLocalCombatPower()
		}
		if !scouted[s] {
			s.ResetScoutedEnemiesData()
		}
		s.DecreaseLostUnits()
	}
}

package root

import (
	"github.com/bklimczak/aaicore/engine/buildtree"
	"github.com/bklimczak/aaicore/engine/callback"
	"github.com/bklimczak/aaicore/engine/executor"
	emath "github.com/bklimczak/aaicore/engine/math"
)

// Update drives spec §4.N's periodic schedule: every call is one engine
// frame, and each pass below fires only on its own modulo and fixed
// offset. Only the scouting pass is also offset by this instance's desync
// slot; the other passes run on the same frames in every instance.
func (r *AAIRoot) Update(frame int) {
	r.lastFrame = frame
	off := r.instanceOffset

	if mod(frame+2*off, 45) == 0 {
		r.updateScouting(frame)
	}
	if mod(frame+7, 150) == 0 {
		for _, g := range r.grps.Groups() {
			g.Update()
		}
	}
	if mod(frame, 650) == 0 {
		r.adjustUnitProductionRate()
		r.buildUnits()
		r.buildScouts()
	}
	if mod(frame+39, 500) == 0 {
		r.updateAttacks(frame)
		r.tmap.UpdateLocalEnemyCombatPower(r.sects)
		r.air.RefreshTargets(r.targetAlive, r.enemyAirDefencePowerAt)
	}
	if mod(frame, 200) == 0 {
		r.checkResources()
	}
	if mod(frame+15, 120) == 0 {
		r.brain.UpdateAttackedByValues()
		r.updateSectors()
		r.brain.UpdatePressureByEnemy()
	}
	if mod(frame, 917) == 0 {
		r.brain.UpdateDefenceCapabilities(r.groupCombatPowerYield)
	}
	if mod(frame, 30) == 0 {
		r.brain.UpdateResources(r.eng.GetMetalIncome(), r.eng.GetEnergyIncome(), r.eng.GetMetalUsage(), r.eng.GetEnergyUsage())
	}
	if mod(frame, 97) == 0 {
		r.checkConstruction()
	}
	if mod(frame, 677) == 0 {
		r.table.UpdateConstructors()
		r.checkConstructionOfNanoTurret()
	}
	if mod(frame, 337) == 0 {
		r.checkFactories()
	}
	if mod(frame, 1079) == 0 {
		r.checkDefences()
	}
	if mod(frame+77, 1200) == 0 {
		r.checkRecon()
		r.checkStationaryArty()
	}
	if mod(frame+11, 300) == 0 {
		r.checkExtractorUpgrade()
		r.checkRadarUpgrade()
	}
	if mod(frame+1877, 1877) == 0 {
		for _, g := range r.grps.Groups() {
			g.UpdateRallyPoint(r.inBase)
		}
	}
}

func mod(frame, period int) int {
	if period <= 0 {
		return 1
	}
	return frame % period
}

// updateScouting folds the latest radar+LOS enemy sighting into gamemap's
// scouted-tile bookkeeping (spec §4.B update_scouting).
func (r *AAIRoot) updateScouting(frame int) {
	enemies := r.eng.GetEnemyUnitsInRadarAndLOS()
	r.gmap.RecordSighting(enemies, frame)
}

// updateAttacks drops any in-flight attack whose combined combat power no
// longer covers its target (spec §4.L AttackManager.update).
func (r *AAIRoot) updateAttacks(frame int) {
	for _, a := range r.grps.Attacks() {
		failed := r.grps.CheckAttack(r.bt, a, frame,
			func(t buildtree.TargetType) float64 {
				if a.TargetSector == nil {
					return 0
				}
				return a.TargetSector.EnemyCombatPowerOf(int(t))
			},
			func(weights [5]float64) float64 {
				if a.TargetSector == nil {
					return 0
				}
				return a.TargetSector.EnemyCombatPowerOf(int(buildtree.TargetSurface)) * weights[buildtree.TargetSurface]
			},
			func() [5]float64 {
				var counts [5]float64
				return counts
			},
		)
		if failed {
			r.grps.StopAttack(r.eng, a, frame, r.sectorOf, func(id int) {})
		}
	}
}

func (r *AAIRoot) targetAlive(unitID int, pos emath.Vec2) bool {
	_, ok := r.eng.GetUnitPos(unitID)
	return ok
}

func (r *AAIRoot) enemyAirDefencePowerAt(pos emath.Vec2) float64 {
	s := r.sectorOf(pos)
	if s == nil {
		return 0
	}
	return s.EnemyCombatPowerOf(int(buildtree.TargetAir))
}

func (r *AAIRoot) groupCombatPowerYield(yield func(power [4]float64)) {
	for _, g := range r.grps.Groups() {
		var p [4]float64
		for t := 0; t < 4; t++ {
			p[t] = g.CombatPowerVsTargetType(r.bt, buildtree.TargetType(t))
		}
		yield(p)
	}
}

func (r *AAIRoot) inBase(pos emath.Vec2) bool {
	s := r.sectorOf(pos)
	return s != nil && s.DistanceToBase == 0
}

// checkResources mirrors spec §4.I check_ressources: it raises
// Extractor/PowerPlant/Storage urgency from Brain's live telemetry and
// nudges metal-maker activation to track the current energy surplus.
func (r *AAIRoot) checkResources() {
	activeExtractors := r.table.ActiveUnitsOfCategory(buildtree.CategoryMetalExtractor)
	activePowerPlants := r.table.ActiveUnitsOfCategory(buildtree.CategoryPowerPlant)

	metalUrgency := r.brain.GetMetalUrgency(activeExtractors)
	energyUrgency := r.brain.GetEnergyUrgency(activePowerPlants)
	energyStorageUrgency := r.brain.GetEnergyStorageUrgency(r.eng.GetEnergyStorage(), r.eng.GetEnergy(), 0)
	metalStorageUrgency := r.brain.GetMetalStorageUrgency(r.eng.GetMetalStorage(), r.eng.GetMetal(), 0)

	totalStorageUnits := r.table.ActiveUnitsOfCategory(buildtree.CategoryStorage)

	executor.CheckResources(
		&r.exec.Urgency,
		metalUrgency, energyUrgency, metalStorageUrgency, energyStorageUrgency,
		totalStorageUnits, r.cfg.MaxStorage, r.cfg.MinFactoriesForStorage, r.table.ActiveFactories(),
		r.brain.EnergySurplus.AverageValue(), r.eng.GetEnergyIncome(), r.cfg.MinMetalMakerEnergy,
		r.brain.MetalSurplus.AverageValue(), r.cfg.MinAirSupportEfficiency,
		r,
		func() {}, func() {}, func() {},
	)
}

// Makers, IsActivated, EnergyUpkeep and SetActivated let AAIRoot itself
// satisfy executor.MetalMakerSwitch, so CheckResources can toggle metal
// makers on and off against the live energy surplus (spec §4.I
// check_ressources's ON/OFF sweep).
func (r *AAIRoot) Makers() []int { return r.table.MetalMakers() }

func (r *AAIRoot) IsActivated(unitID int) bool { return r.metalMakerActive[unitID] }

func (r *AAIRoot) EnergyUpkeep(unitID int) float64 {
	entry, ok := r.table.Get(unitID)
	if !ok {
		return 0
	}
	def, ok := r.eng.GetUnitDef(int(entry.DefID))
	if !ok {
		return 0
	}
	return def.EnergyUpkeep
}

func (r *AAIRoot) SetActivated(unitID int, on bool) {
	r.metalMakerActive[unitID] = on
	r.eng.GiveOrder(unitID, callback.Command{Order: callback.OrderOnOff, TargetID: boolToInt(on)})
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// checkConstruction mirrors spec §4.I check_construction: it lets
// Executor run one urgency/select/build tick against whatever Attempt
// closures Root registered for each static category.
func (r *AAIRoot) checkConstruction() {
	cat, status, ran := r.exec.Update()
	if ran && status == executor.NoBuilderAvailable {
		r.logger.Printf("root: no builder available for %s", cat)
	}
}

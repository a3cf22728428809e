package root

import (
	"github.com/bklimczak/aaicore/engine/buildtree"
	"github.com/bklimczak/aaicore/engine/callback"
	"github.com/bklimczak/aaicore/engine/executor"
	"github.com/bklimczak/aaicore/engine/gamemap"
	emath "github.com/bklimczak/aaicore/engine/math"
	"github.com/bklimczak/aaicore/engine/unittable"
)

// registerBuildAttempts wires one executor.Attempt per executor.Category,
// covering every try_build_* function spec §4.I names: extractors (the
// metal spot list Map already discovered at Init), power plants/storage/
// metal makers/sensors/artillery (a buildsite search around the base),
// static defence (sector-ranked via checkDefences) and factories (queued
// via checkFactories).
func (r *AAIRoot) registerBuildAttempts() {
	r.exec.RegisterAttempt(executor.CategoryExtractor, r.tryBuildExtractor)
	r.exec.RegisterAttempt(executor.CategoryPowerPlant, r.tryBuildPowerPlant)
	r.exec.RegisterAttempt(executor.CategoryStorage, r.tryBuildStorage)
	r.exec.RegisterAttempt(executor.CategoryStaticDefence, r.tryBuildStaticDefence)
	r.exec.RegisterAttempt(executor.CategoryStaticConstructor, r.tryBuildFactory)
	r.exec.RegisterAttempt(executor.CategoryStaticSensor, r.tryBuildStaticSensor)
	r.exec.RegisterAttempt(executor.CategoryStaticJammer, r.tryBuildStaticJammer)
	r.exec.RegisterAttempt(executor.CategoryStaticArtillery, r.tryBuildStaticArtillery)
	r.exec.RegisterAttempt(executor.CategoryMetalMaker, r.tryBuildMetalMaker)
	r.exec.RegisterAttempt(executor.CategoryAirBase, r.tryBuildAirBase)
	r.exec.RegisterAttempt(executor.CategoryNanoTurret, r.tryBuildNanoTurret)
}

// bestDefOfCategory returns the cheapest def of cat buildable by our
// commander's side, the way AAIBuildTable::GetUnitDefById callers pick a
// concrete def once Brain has only decided on a category.
func (r *AAIRoot) bestDefOfCategory(cat buildtree.UnitCategory, side int) (buildtree.UnitDefId, buildtree.UnitTypeProperties, bool) {
	var best buildtree.UnitDefId
	var bestProps buildtree.UnitTypeProperties
	found := false
	for id := 1; id <= r.bt.NumDefs(); id++ {
		defID := buildtree.UnitDefId(id)
		props, ok := r.bt.Properties(defID)
		if !ok || props.Category != cat {
			continue
		}
		if r.bt.Side(defID) != side {
			continue
		}
		if !found || props.TotalCost < bestProps.TotalCost {
			best, bestProps, found = defID, props, true
		}
	}
	return best, bestProps, found
}

// unittableQuery adapts Root's own live engine/constructor state to
// unittable.BuilderQuery's closures.
func (r *AAIRoot) unittableQuery() unittable.BuilderQuery {
	return unittable.BuilderQuery{
		PositionOf: r.unitPos,
		IsAvailable: func(unitID int) bool {
			c, ok := r.constructors[unitID]
			return ok && c.IsAvailableForConstruction()
		},
		IsIdle: func(unitID int) bool {
			e, ok := r.table.Get(unitID)
			return ok && e.Status == unittable.StatusIdle
		},
		ContinentOf: func(pos emath.Vec2) int {
			if s := r.sectorOf(pos); s != nil {
				return s.ContinentID
			}
			return 0
		},
		MaxSpeedOf: func(defID buildtree.UnitDefId) float64 {
			def, ok := r.bt.Def(defID)
			if !ok {
				return 0
			}
			return def.Speed
		},
	}
}

// order issues the GiveOrder build command; UnitCreated links the
// resulting unit back to this builder's Constructor once the engine
// confirms construction started.
func (r *AAIRoot) order(builderUnitID int, defID buildtree.UnitDefId, pos emath.Vec2) bool {
	c, ok := r.constructors[builderUnitID]
	if !ok || !c.IsAvailableForConstruction() {
		return false
	}
	r.eng.GiveOrder(builderUnitID, callback.Command{Order: callback.OrderMove, Pos: pos, BuildDef: int(defID)})
	r.table.SetStatus(builderUnitID, unittable.StatusBuilding)
	return true
}

// expandBase claims the next-closest unclaimed sector for the base once a
// buildsite search around the current base comes up empty (spec §4.I
// try_construction_of's expand_base fallback).
func (r *AAIRoot) expandBase() {
	next := r.brain.SectorsAtDistance(r.brain.BaseSize() + 1)
	if len(next) == 0 {
		return
	}
	r.brain.AssignSectorToBase(next[0], true, r.sectorAt, r.flat, float64(r.grid.SectorSizeX), float64(r.grid.SectorSizeY))
}

func (r *AAIRoot) tryBuildExtractor() executor.BuildOrderStatus {
	side := r.bt.Side(r.commanderDefID())
	defID, _, ok := r.bestDefOfCategory(buildtree.CategoryMetalExtractor, side)
	if !ok {
		return executor.BuildingInvalid
	}

	findSite := func(d buildtree.UnitDefId) (emath.Vec2, bool) {
		for _, spot := range r.gmap.MetalSpots() {
			if spot.Occupied {
				continue
			}
			if r.eng.CanBuildAt(int(d), spot.Pos) {
				return spot.Pos, true
			}
		}
		return emath.Vec2{}, false
	}

	return executor.TryConstructionOf(defID, findSite, r.findClosestBuilder, r.order, r.expandBase)
}

func (r *AAIRoot) tryBuildPowerPlant() executor.BuildOrderStatus {
	side := r.bt.Side(r.commanderDefID())
	defID, props, ok := r.bestDefOfCategory(buildtree.CategoryPowerPlant, side)
	if !ok {
		return executor.BuildingInvalid
	}
	return executor.TryConstructionOf(defID, r.buildsiteFinderAroundBase(props), r.findClosestBuilder, r.order, r.expandBase)
}

func (r *AAIRoot) tryBuildStorage() executor.BuildOrderStatus {
	side := r.bt.Side(r.commanderDefID())
	defID, props, ok := r.bestDefOfCategory(buildtree.CategoryStorage, side)
	if !ok {
		return executor.BuildingInvalid
	}
	return executor.TryConstructionOf(defID, r.buildsiteFinderAroundBase(props), r.findClosestBuilder, r.order, r.expandBase)
}

func (r *AAIRoot) tryBuildStaticSensor() executor.BuildOrderStatus {
	side := r.bt.Side(r.commanderDefID())
	defID, props, ok := r.bestDefOfCategory(buildtree.CategoryStaticSensor, side)
	if !ok {
		return executor.BuildingInvalid
	}
	return executor.TryConstructionOf(defID, r.buildsiteFinderAroundBase(props), r.findClosestBuilder, r.order, r.expandBase)
}

func (r *AAIRoot) tryBuildStaticArtillery() executor.BuildOrderStatus {
	side := r.bt.Side(r.commanderDefID())
	defID, props, ok := r.bestDefOfCategory(buildtree.CategoryStaticArtillery, side)
	if !ok {
		return executor.BuildingInvalid
	}
	return executor.TryConstructionOf(defID, r.buildsiteFinderAroundBase(props), r.findClosestBuilder, r.order, r.expandBase)
}

func (r *AAIRoot) tryBuildMetalMaker() executor.BuildOrderStatus {
	side := r.bt.Side(r.commanderDefID())
	defID, props, ok := r.bestDefOfCategory(buildtree.CategoryMetalMaker, side)
	if !ok {
		return executor.BuildingInvalid
	}
	return executor.TryConstructionOf(defID, r.buildsiteFinderAroundBase(props), r.findClosestBuilder, r.order, r.expandBase)
}

// bestStaticSupportDef picks the cheapest def of the commander's side
// within buildtree.CategoryStaticSupport matching match — the category
// the generated build tree folds jammers, air bases, stockpiles and
// shields into (there is no distinct per-function static-support
// category), so jammer/air-base selection filters the raw callback.UnitDef
// the way AAIBuildTable::GetAirBase/GetJammer do.
func (r *AAIRoot) bestStaticSupportDef(side int, match func(callback.UnitDef) bool) (buildtree.UnitDefId, buildtree.UnitTypeProperties, bool) {
	var best buildtree.UnitDefId
	var bestProps buildtree.UnitTypeProperties
	found := false
	for id := 1; id <= r.bt.NumDefs(); id++ {
		defID := buildtree.UnitDefId(id)
		props, ok := r.bt.Properties(defID)
		if !ok || props.Category != buildtree.CategoryStaticSupport {
			continue
		}
		if r.bt.Side(defID) != side {
			continue
		}
		def, ok := r.eng.GetUnitDef(int(defID))
		if !ok || !match(def) {
			continue
		}
		if !found || props.TotalCost < bestProps.TotalCost {
			best, bestProps, found = defID, props, true
		}
	}
	return best, bestProps, found
}

func (r *AAIRoot) tryBuildStaticJammer() executor.BuildOrderStatus {
	side := r.bt.Side(r.commanderDefID())
	defID, props, ok := r.bestStaticSupportDef(side, func(d callback.UnitDef) bool { return d.HasJammer })
	if !ok {
		return executor.BuildingInvalid
	}
	return executor.TryConstructionOf(defID, r.buildsiteFinderAroundBase(props), r.findClosestBuilder, r.order, r.expandBase)
}

func (r *AAIRoot) tryBuildAirBase() executor.BuildOrderStatus {
	side := r.bt.Side(r.commanderDefID())
	defID, props, ok := r.bestStaticSupportDef(side, func(d callback.UnitDef) bool { return d.IsAirBase })
	if !ok {
		return executor.BuildingInvalid
	}
	return executor.TryConstructionOf(defID, r.buildsiteFinderAroundBase(props), r.findClosestBuilder, r.order, r.expandBase)
}

func (r *AAIRoot) tryBuildNanoTurret() executor.BuildOrderStatus {
	side := r.bt.Side(r.commanderDefID())
	defID, props, ok := r.bestStaticSupportDef(side, func(d callback.UnitDef) bool { return d.CanAssist })
	if !ok {
		return executor.BuildingInvalid
	}
	return executor.TryConstructionOf(defID, r.buildsiteFinderAroundBase(props), r.findClosestBuilder, r.order, r.expandBase)
}

// bestStaticDefenceDef picks the def of buildtree.CategoryStaticDefence
// whose CombatPowerOf targetType is highest, the way AAIBuildTable ranks
// candidate defence structures against the threat checkDefences picked
// (spec §4.I try_build_static_defence).
func (r *AAIRoot) bestStaticDefenceDef(side int, targetType buildtree.TargetType) (buildtree.UnitDefId, buildtree.UnitTypeProperties, bool) {
	var best buildtree.UnitDefId
	var bestProps buildtree.UnitTypeProperties
	bestPower := 0.0
	found := false
	for id := 1; id <= r.bt.NumDefs(); id++ {
		defID := buildtree.UnitDefId(id)
		props, ok := r.bt.Properties(defID)
		if !ok || props.Category != buildtree.CategoryStaticDefence {
			continue
		}
		if r.bt.Side(defID) != side {
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

// defenceLayerFor maps a targeted buildtree.TargetType onto the gamemap
// influence layer its weapon range should be registered against (spec
// §4.B's surface/air/naval defence-map split).
func defenceLayerFor(t buildtree.TargetType) int {
	switch t {
	case buildtree.TargetAir:
		return gamemap.DefenceLayerAir
	case buildtree.TargetFloater, buildtree.TargetSubmerged:
		return gamemap.DefenceLayerNaval
	default:
		return gamemap.DefenceLayerSurface
	}
}

// tryBuildStaticDefence places one static defence building of whatever
// target type checkDefences last found most threatened, at the buildsite
// GetDefenceBuildsite ranks best around that sector (spec §4.I
// try_build_static_defence). UnitFinished registers the resulting
// DefenceContribution so the influence map reflects it once it completes.
func (r *AAIRoot) tryBuildStaticDefence() executor.BuildOrderStatus {
	if r.defenceTargetSector == nil {
		return executor.BuildingInvalid
	}
	side := r.bt.Side(r.commanderDefID())
	defID, props, ok := r.bestStaticDefenceDef(side, r.defenceTargetType)
	if !ok {
		return executor.BuildingInvalid
	}

	target := r.defenceTargetSector
	targetType := r.defenceTargetType
	findSite := func(d buildtree.UnitDefId) (emath.Vec2, bool) {
		center := target.Center(float64(r.grid.SectorSizeX), float64(r.grid.SectorSizeY))
		rect := emath.NewRect(
			center.X-float64(r.grid.SectorSizeX)/2,
			center.Y-float64(r.grid.SectorSizeY)/2,
			float64(r.grid.SectorSizeX),
			float64(r.grid.SectorSizeY),
		)
		water := targetType == buildtree.TargetFloater || targetType == buildtree.TargetSubmerged
		return r.gmap.GetDefenceBuildsite(r.eng, int(d), props.FootprintX, props.FootprintZ, rect,
			defenceLayerFor(targetType), 1, props.PrimaryAbility, water, r.rng)
	}

	return executor.TryConstructionOf(defID, findSite, r.findClosestBuilder, r.order, r.expandBase)
}

// maybeQueueFactory asks for a new factory of the commander's side once
// the active+future roster would otherwise drop below one, the bootstrap
// trigger checkFactories runs in place of the original's per-factory
// buildqueue/assistant overload check this tree has no data for (spec
// §4.I try_build_factory, simplified per DESIGN.md).
func (r *AAIRoot) maybeQueueFactory() {
	const minFactories = 1
	executor.CheckFactories(&r.exec.Urgency, r.table.ActiveFactories(), r.table.FutureFactories(), minFactories)
}

// tryBuildFactory places one static factory of the commander's side
// around the base (spec §4.I try_build_factory), mirroring the
// power-plant/storage buildsite search since a factory is placed the same
// way. On success it records the request with unittable so
// ActiveFactories/FutureFactories stay in sync.
func (r *AAIRoot) tryBuildFactory() executor.BuildOrderStatus {
	side := r.bt.Side(r.commanderDefID())
	defID, props, ok := r.bestDefOfCategory(buildtree.CategoryStaticConstructor, side)
	if !ok {
		return executor.BuildingInvalid
	}
	status := executor.TryConstructionOf(defID, r.buildsiteFinderAroundBase(props), r.findClosestBuilder, r.order, r.expandBase)
	if status == executor.Successful {
		r.table.FactoryRequested()
	}
	return status
}

func (r *AAIRoot) findClosestBuilder(d buildtree.UnitDefId, pos emath.Vec2) (int, bool) {
	id, _, ok := r.table.FindClosestBuilder(r.unittableQuery(), d, pos, false)
	return id, ok
}

// buildsiteFinderAroundBase searches a rect centered on the base's home
// sector, the general-purpose path every non-extractor static building
// uses (spec §4.I, grounded on AAIExecute::BuildPowerPlant/BuildStorage
// sharing get_buildsite_in_rect around the base sector).
func (r *AAIRoot) buildsiteFinderAroundBase(props buildtree.UnitTypeProperties) func(buildtree.UnitDefId) (emath.Vec2, bool) {
	return func(d buildtree.UnitDefId) (emath.Vec2, bool) {
		base := r.brain.BaseSectors()
		if len(base) == 0 {
			return emath.Vec2{}, false
		}
		center := r.grid.Center(base[0].X, base[0].Y)
		rect := emath.NewRect(
			center.X-float64(r.grid.SectorSizeX)/2,
			center.Y-float64(r.grid.SectorSizeY)/2,
			float64(r.grid.SectorSizeX),
			float64(r.grid.SectorSizeY),
		)
		return r.gmap.GetBuildsiteInRect(r.eng, int(d), props.FootprintX, props.FootprintZ, rect, false)
	}
}

// commanderDefID returns the commander's def id, recorded by UnitFinished,
// used to pick which side's build options bestDefOfCategory should search.
func (r *AAIRoot) commanderDefID() buildtree.UnitDefId {
	return r.commander
}

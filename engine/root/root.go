// Package root wires every other engine/ package into the one stateful
// object the host process drives: AAIRoot owns the generated build tree,
// the sector grid, Brain/Executor/UnitTable/Group-Manager/AirForceManager,
// and the per-unit Constructor/BuildTask bookkeeping, and routes the
// engine's callback stream (spec §4.N AAIRoot, grounded on AAI.cpp's
// dispatch from the Spring engine callin functions to the matching
// AAIBrain/AAIExecute/AAIUnitTable calls) into them.
package root

import (
	"log"
	"math/rand"
	"sort"

	"github.com/bklimczak/aaicore/engine/airforce"
	"github.com/bklimczak/aaicore/engine/brain"
	"github.com/bklimczak/aaicore/engine/buildtree"
	"github.com/bklimczak/aaicore/engine/callback"
	"github.com/bklimczak/aaicore/engine/config"
	"github.com/bklimczak/aaicore/engine/constructor"
	"github.com/bklimczak/aaicore/engine/executor"
	"github.com/bklimczak/aaicore/engine/gamemap"
	"github.com/bklimczak/aaicore/engine/group"
	emath "github.com/bklimczak/aaicore/engine/math"
	"github.com/bklimczak/aaicore/engine/resource"
	"github.com/bklimczak/aaicore/engine/sector"
	"github.com/bklimczak/aaicore/engine/threat"
	"github.com/bklimczak/aaicore/engine/transport"
	"github.com/bklimczak/aaicore/engine/unittable"
)

// standoffDistance keeps an approaching group a little short of the
// sector center it's attacking, so it doesn't walk straight into whatever
// is still defending the target (spec §4.J PositionInFrontOfSector).
const standoffDistance = 300.0

// AAIRoot is one AI instance's full state. instanceOffset desynchronises
// its periodic Update schedule from every other AAIRoot sharing the same
// process (spec §4.N: "+2*instance mod 45" and friends), so that N allied
// AAIRoot instances don't all recompute the same expensive pass on the
// same frame.
type AAIRoot struct {
	logger *log.Logger
	eng    callback.Engine
	cfg    *config.Config
	team   int

	initialised    bool
	instanceOffset int

	bt    *buildtree.BuildTree
	gmap  *gamemap.Map
	grid  gamemap.SectorGrid
	sects [][]*sector.Sector // [x][y]
	flat  []*sector.Sector

	tmap  *threat.Map
	brain *brain.Brain
	table *unittable.Table
	exec  *executor.Executor
	grps  *group.Manager
	air   *airforce.Manager
	res   *resource.Manager

	constructors map[int]*constructor.Constructor
	buildTasks   map[int]*constructor.BuildTask // keyed by the building's own unitID

	commander        buildtree.UnitDefId
	metalMakerActive map[int]bool

	// defenceTargetSector/defenceTargetType are the winning candidate
	// checkDefences last found (spec §4.I check_defences/try_build_static_
	// defence); defenceContribs tracks the gamemap.DefenceContribution of
	// every static defence built, so UnitDestroyed can undo it.
	defenceTargetSector *sector.Sector
	defenceTargetType   buildtree.TargetType
	defenceContribs     map[int]gamemap.DefenceContribution

	rates buildtree.AttackedByRates

	rng *rand.Rand

	lastFrame int
}

// New returns an uninitialised AAIRoot. Every callback before a
// successful Init is a no-op, matching the "AI never touched the engine
// before init()" invariant spec §7 names.
func New(logger *log.Logger) *AAIRoot {
	if logger == nil {
		logger = log.Default()
	}
	return &AAIRoot{
		logger:           logger,
		constructors:     make(map[int]*constructor.Constructor),
		buildTasks:       make(map[int]*constructor.BuildTask),
		metalMakerActive: make(map[int]bool),
		defenceContribs:  make(map[int]gamemap.DefenceContribution),
		rng:              rand.New(rand.NewSource(1)),
	}
}

// Init performs spec §4.N's init(callback, team): generates the build
// tree against the live engine, builds the sector grid and every
// component it feeds, and registers this team's instance offset. A
// buildtree.Generate failure (e.g. the engine handed back zero unit defs)
// is a ConfigError and leaves the instance uninitialised.
func (r *AAIRoot) Init(eng callback.Engine, team int, cfg *config.Config, instanceOffset int) error {
	r.eng = eng
	r.team = team
	r.cfg = cfg
	r.instanceOffset = instanceOffset

	bt := buildtree.New(r.logger)
	if err := bt.Generate(eng, cfg); err != nil {
		return configError(err)
	}
	r.bt = bt

	r.gmap = gamemap.New(eng, cfg, r.logger)
	r.grid = r.gmap.BuildSectorGrid(cfg.SectorSize)

	r.sects = make([][]*sector.Sector, r.grid.XSectors)
	r.flat = make([]*sector.Sector, 0, r.grid.XSectors*r.grid.YSectors)
	for x := 0; x < r.grid.XSectors; x++ {
		r.sects[x] = make([]*sector.Sector, r.grid.YSectors)
		for y := 0; y < r.grid.YSectors; y++ {
			s := sector.New(x, y)
			r.sects[x][y] = s
			r.flat = append(r.flat, s)
		}
	}

	r.tmap = threat.New(r.grid.XSectors, r.grid.YSectors)
	r.brain = brain.New(cfg.MaxBuilders)
	r.table = unittable.New(bt)
	r.exec = executor.New(cfg.MaxBuildQueueSize)
	r.grps = group.NewManager()
	r.air = airforce.NewManager(cfg.MaxMilitaryTargets, cfg.MaxEconomyTargets, cfg.HealthPerBomber)
	r.res = resource.NewManager()

	for id := 1; id <= bt.NumDefs(); id++ {
		defID := buildtree.UnitDefId(id)
		props, ok := bt.Properties(defID)
		if !ok || props.Category != buildtree.CategoryStaticConstructor {
			continue
		}
		isStaticSea := props.MovementType == buildtree.MoveStaticSeaFloater || props.MovementType == buildtree.MoveStaticSeaSubmerged
		r.exec.Queues.RegisterFactory(defID, isStaticSea)
	}

	r.registerBuildAttempts()

	r.initialised = true
	return nil
}

func (r *AAIRoot) sectorAt(x, y int) (*sector.Sector, bool) {
	if x < 0 || x >= r.grid.XSectors || y < 0 || y >= r.grid.YSectors {
		return nil, false
	}
	return r.sects[x][y], true
}

func (r *AAIRoot) sectorOf(pos emath.Vec2) *sector.Sector {
	sx, sy := r.grid.SectorOf(pos)
	s, _ := r.sectorAt(sx, sy)
	return s
}

func (r *AAIRoot) groupSizeConfig() group.GroupSizeConfig {
	return group.GroupSizeConfig{
		MaxGroupSize:          r.cfg.MaxGroupSize,
		MaxAirGroupSize:       r.cfg.MaxAirGroupSize,
		MaxAntiAirGroupSize:   r.cfg.MaxAntiAirGroupSize,
		MaxSubmarineGroupSize: r.cfg.MaxSubmarineGroupSize,
		MaxNavalGroupSize:     r.cfg.MaxNavalGroupSize,
		MaxArtyGroupSize:      r.cfg.MaxArtyGroupSize,
	}
}

func (r *AAIRoot) unitPos(unitID int) (emath.Vec2, bool) {
	return r.eng.GetUnitPos(unitID)
}

// Dispatch routes one transport.Event into the matching spec §4.N
// callback handler. An uninitialised Root ignores every event except
// nothing — Init itself is called directly by the driving loop, not
// through Dispatch, since it needs the team id the handshake carries.
func (r *AAIRoot) Dispatch(ev transport.Event) {
	if !r.initialised {
		return
	}
	switch e := ev.(type) {
	case transport.UnitCreatedEvent:
		r.UnitCreated(e.UnitID, e.BuilderID)
	case transport.UnitFinishedEvent:
		r.UnitFinished(e.UnitID)
	case transport.UnitDestroyedEvent:
		r.UnitDestroyed(e.UnitID, e.AttackerID, e.AttackerKnown)
	case transport.UnitIdleEvent:
		r.UnitIdle(e.UnitID)
	case transport.UnitDamagedEvent:
		r.UnitDamaged(e.UnitID, e.AttackerID, e.AttackerKnown, e.AttackerDefID, e.Damage)
	case transport.UnitMoveFailedEvent:
		r.UnitMoveFailed(e.UnitID)
	case transport.HandleEvent:
		r.HandleEngineEvent(e.Kind, e.UnitID, e.OldTeam, e.NewTeam)
	case transport.FrameTickEvent:
		r.Update(e.Frame)
	}
}

// UnitCreated mirrors spec §4.N unit_created(u, builder): registers the
// new unit and, if its builder has an open build task, links the two so
// ConstructionFinished/ConstructionFailed can find it later.
func (r *AAIRoot) UnitCreated(unitID, builderID int) {
	def, ok := r.eng.GetUnitDefOf(unitID)
	if !ok {
		r.logger.Printf("root: unit_created(%d): %v", unitID, unknownUnit(unitID))
		return
	}
	defID := buildtree.UnitDefId(def.ID)
	r.table.AddUnit(unitID, defID)

	props, _ := r.bt.Properties(defID)
	if props.Category == buildtree.CategoryCommander {
		r.table.AddCommander(unitID, defID)
	} else if props.UnitType.Has(buildtree.TypeBuilder) {
		r.table.AddConstructor(unitID, defID)
	}

	if c, ok := r.constructors[builderID]; ok {
		pos, _ := r.unitPos(unitID)
		task := constructor.NewBuildTask(unitID, defID, pos, builderID)
		if c.ConstructionStarted(unitID, task) {
			r.buildTasks[unitID] = task
		}
	}
}

// UnitFinished mirrors spec §4.N unit_finished(u): flips the unit's
// bookkeeping from under-construction to active, spins up a Constructor
// record for a finished builder/factory, and assigns a finished combat
// unit to a group.
func (r *AAIRoot) UnitFinished(unitID int) {
	entry, ok := r.table.Get(unitID)
	if !ok {
		r.logger.Printf("root: unit_finished(%d): %v", unitID, unknownUnit(unitID))
		return
	}
	props, ok := r.bt.Properties(entry.DefID)
	if !ok {
		return
	}
	r.table.UnitFinished(props.Category)
	delete(r.buildTasks, unitID)

	switch props.Category {
	case buildtree.CategoryCommander:
		r.commander = entry.DefID
	case buildtree.CategoryMetalExtractor:
		r.table.AddExtractor(unitID)
	case buildtree.CategoryPowerPlant:
		r.table.AddPowerPlant(unitID)
	case buildtree.CategoryMetalMaker:
		r.table.AddMetalMaker(unitID)
	case buildtree.CategoryStaticDefence:
		if pos, ok := r.unitPos(unitID); ok {
			layer := defenceLayerFor(props.TargetType)
			r.defenceContribs[unitID] = r.gmap.PlaceDefence(layer, pos, props.PrimaryAbility, r.bt.CombatPowerOf(entry.DefID)[props.TargetType])
		}
	case buildtree.CategoryStaticSensor:
		r.table.AddRecon(unitID)
	case buildtree.CategoryStaticArtillery:
		r.table.AddStationaryArty(unitID)
	case buildtree.CategoryStaticSupport:
		if def, ok := r.eng.GetUnitDef(int(entry.DefID)); ok {
			if def.HasJammer {
				r.table.AddJammer(unitID)
			}
			if def.CanAssist {
				r.table.AddNanoTurret(unitID)
			}
		}
	}

	if c, ok := r.constructors[unitID]; ok {
		c.ConstructionFinished()
	} else if props.UnitType.Has(buildtree.TypeBuilder) || props.UnitType.Has(buildtree.TypeFactory) || props.UnitType.Has(buildtree.TypeConstructionAssist) {
		r.constructors[unitID] = constructor.New(unitID, entry.DefID,
			props.UnitType.Has(buildtree.TypeFactory),
			props.UnitType.Has(buildtree.TypeBuilder),
			props.UnitType.Has(buildtree.TypeConstructionAssist))
	}

	if props.Category.IsCombat() && !props.Category.IsStatic() {
		r.assignToGroup(unitID, entry.DefID, props)
	}
}

// assignToGroup places a newly finished combat unit into an existing
// compatible group with spare capacity, or starts a new one (spec §4.J,
// grounded on AAIExecute::AddUnitToGroup).
func (r *AAIRoot) assignToGroup(unitID int, defID buildtree.UnitDefId, props buildtree.UnitTypeProperties) {
	continentID := 0
	var target *group.Group
	for _, g := range r.grps.Groups() {
		if g.DefID == defID && g.ContinentID == continentID && g.Size() < g.MaxSize {
			target = g
			break
		}
	}
	if target == nil {
		target = r.grps.NewGroup(defID, props.Category, props.UnitType, props.MovementType, continentID, r.groupSizeConfig())
	}
	target.AddUnit(unitID, defID, continentID, func(id int, pos emath.Vec2) {
		r.eng.GiveOrder(id, callback.Command{Order: callback.OrderMove, Pos: pos})
	})
	r.table.SetStatus(unitID, unittable.StatusIdle)
	if entry, ok := r.table.Get(unitID); ok {
		entry.GroupID = target.ID
	}
}

// UnitDestroyed mirrors spec §4.N unit_destroyed(u, attacker): removes
// the unit from every owning structure and, if it died to an air attack,
// asks AirForceManager whether the loss justifies pulling bombers home to
// defend.
func (r *AAIRoot) UnitDestroyed(unitID, attackerID int, attackerKnown bool) {
	entry, ok := r.table.Get(unitID)
	if !ok {
		return
	}
	props, _ := r.bt.Properties(entry.DefID)

	if c, ok := r.constructors[unitID]; ok {
		c.Killed()
		delete(r.constructors, unitID)
		r.table.RemoveConstructor(unitID, entry.DefID)
	}
	if task, ok := r.buildTasks[unitID]; ok {
		task.BuilderDestroyed()
	}
	for builder, task := range r.buildTasks {
		if task.NeedsNewConstructor() {
			r.logger.Printf("root: build task for %d lost its constructor", builder)
		}
	}

	if entry.GroupID != 0 {
		if g, ok := r.grps.Group(entry.GroupID); ok {
			if empty := g.RemoveUnit(unitID); empty {
				r.grps.RemoveGroup(g.ID)
			}
		}
	}

	switch props.Category {
	case buildtree.CategoryMetalExtractor:
		r.table.RemoveExtractor(unitID)
	case buildtree.CategoryPowerPlant:
		r.table.RemovePowerPlant(unitID)
	case buildtree.CategoryMetalMaker:
		r.table.RemoveMetalMaker(unitID)
	case buildtree.CategoryStaticDefence:
		if c, ok := r.defenceContribs[unitID]; ok {
			r.gmap.RemoveDefence(c)
			delete(r.defenceContribs, unitID)
		}
	case buildtree.CategoryStaticSensor:
		r.table.RemoveRecon(unitID)
	case buildtree.CategoryStaticArtillery:
		r.table.RemoveStationaryArty(unitID)
	case buildtree.CategoryStaticSupport:
		r.table.RemoveJammer(unitID)
		r.table.RemoveNanoTurret(unitID)
	}

	r.air.RemoveTarget(unitID)
	if attackerKnown && props.Category.IsCombat() {
		r.checkAirDefenceOnDemand(attackerID, props)
	}

	r.table.ActiveUnitKilled(props.Category)
	r.table.RemoveUnit(unitID)
}

// checkAirDefenceOnDemand asks AirForceManager whether the attacker that
// just killed one of our units deserves an immediate response from an
// available air-combat group (spec §4.M AirDefenceOnDemand).
func (r *AAIRoot) checkAirDefenceOnDemand(attackerID int, victimProps buildtree.UnitTypeProperties) {
	attackerPos, ok := r.eng.GetUnitPos(attackerID)
	if !ok {
		return
	}
	attDef, ok := r.eng.GetUnitDefOf(attackerID)
	if !ok {
		return
	}
	attProps, ok := r.bt.Properties(buildtree.UnitDefId(attDef.ID))
	if !ok {
		return
	}

	var airGroups []*group.Group
	for _, g := range r.grps.Groups() {
		if g.MoveType == buildtree.MoveAir {
			airGroups = append(airGroups, g)
		}
	}
	if len(airGroups) == 0 {
		return
	}

	airforce.AirDefenceOnDemand(
		r.eng, r.lastFrame, airGroups, r.bt,
		attackerID, attProps.TargetType, attackerPos,
		victimProps.Category.IsStatic(),
		func(pos emath.Vec2) (float64, bool) {
			s := r.sectorOf(pos)
			if s == nil {
				return 0, false
			}
			return s.LostUnits[buildtree.TargetAir], true
		},
		func(unitID int) { r.table.SetStatus(unitID, unittable.StatusIdle) },
	)
}

// UnitIdle mirrors spec §4.N unit_idle(u): an idle combat unit re-reports
// to its group; an idle constructor is simply left alone until Executor
// picks it up on the next try_construction_of.
func (r *AAIRoot) UnitIdle(unitID int) {
	entry, ok := r.table.Get(unitID)
	if !ok {
		return
	}
	r.table.SetStatus(unitID, unittable.StatusIdle)
	if entry.GroupID == 0 {
		return
	}
	g, ok := r.grps.Group(entry.GroupID)
	if !ok {
		return
	}

	isAntiAir := g.UnitType.Has(buildtree.TypeAntiAir) && !g.UnitType.Has(buildtree.TypeAntiSurface)
	isAssaultUnit := g.Category.IsCombat() && !isAntiAir

	targetCleared := true
	var attackPosition emath.Vec2
	if g.TargetSector != nil {
		pos, _ := g.GetGroupPos(r.unitPos)
		center := g.TargetSector.Center(float64(r.grid.SectorSizeX), float64(r.grid.SectorSizeY))
		attackPosition = group.PositionInFrontOfSector(pos, center, standoffDistance)

		enemies := r.eng.GetEnemyUnitsInRadarAndLOS()
		unitsAtTarget := 0
		for _, e := range enemies {
			if r.sectorOf(e.Pos) == g.TargetSector {
				unitsAtTarget++
			}
		}
		targetCleared = group.HasTargetBeenCleared(g.TargetSector, g.TargetSector.EnemyBuildings, true, unitsAtTarget)
	}

	setStatus := func(id int) { r.table.SetStatus(id, unittable.StatusIdle) }
	requestNextSector, stopAttack := g.UnitIdle(
		r.eng, unitID, r.lastFrame, r.unitPos, r.sectorOf,
		isAssaultUnit, isAntiAir, targetCleared, attackPosition, setStatus)

	if g.AttackID == 0 {
		return
	}
	a, ok := r.grps.Attack(g.AttackID)
	if !ok {
		return
	}
	// A cleared target sector or a failing attack both end it here; Root
	// doesn't chase a moving front across several sectors within one
	// attack (spec §4.L's full multi-sector march is future work — see
	// DESIGN.md).
	if stopAttack || requestNextSector {
		r.grps.StopAttack(r.eng, a, r.lastFrame, r.sectorOf, setStatus)
	}
}

// UnitDamaged mirrors spec §4.N unit_damaged(u, attacker, ...): feeds
// Brain's attacked-by statistics and, if the victim is the commander,
// asks Brain whether to pull defenders back.
func (r *AAIRoot) UnitDamaged(unitID, attackerID int, attackerKnown bool, attackerDefID int, damage float64) {
	entry, ok := r.table.Get(unitID)
	if !ok {
		return
	}
	props, _ := r.bt.Properties(entry.DefID)

	targetType := props.TargetType
	mapType := int(r.gmap.Type())
	r.brain.AttackedBy(targetType, &r.rates, mapType, r.lastFrame)

	if props.Category == buildtree.CategoryCommander && attackerKnown {
		r.brain.DefendCommander(attackerID)
		r.pullGroupsToDefendCommander(unitID, attackerID, attackerDefID)
	}
}

// pullGroupsToDefendCommander answers spec §4.N's "pull the nearest
// combat groups in to guard the commander" reaction: it ranks every
// combat group's Group.DefenceRating against the attacker's target type
// and orders the best two to Defend the commander's position (spec §4.H
// DefendCommander/AAIExecute::DefendCommander pulling a handful of
// nearby groups, grounded on Group.Defend/Group.DefenceRating).
func (r *AAIRoot) pullGroupsToDefendCommander(commanderUnitID, attackerID, attackerDefID int) {
	commanderPos, ok := r.unitPos(commanderUnitID)
	if !ok {
		return
	}
	attackerProps, ok := r.bt.Properties(buildtree.UnitDefId(attackerDefID))
	if !ok {
		return
	}
	continentID := 0
	if s := r.sectorOf(commanderPos); s != nil {
		continentID = s.ContinentID
	}
	importance := 100.0
	attackerPos, attackerKnown := r.unitPos(attackerID)

	groups := r.grps.Groups()
	sort.Slice(groups, func(i, j int) bool {
		return groups[i].DefenceRating(r.bt, attackerProps.TargetType, commanderPos, importance, continentID, r.unitPos) >
			groups[j].DefenceRating(r.bt, attackerProps.TargetType, commanderPos, importance, continentID, r.unitPos)
	})

	const defenders = 2
	setStatus := func(id int) { r.table.SetStatus(id, unittable.StatusIdle) }
	pulled := 0
	for _, g := range groups {
		if pulled >= defenders {
			break
		}
		if g.DefenceRating(r.bt, attackerProps.TargetType, commanderPos, importance, continentID, r.unitPos) <= 0 {
			continue
		}
		g.Defend(r.eng, attackerPos, attackerKnown, commanderUnitID, importance, r.lastFrame, r.sectorOf, setStatus)
		pulled++
	}
}

// UnitMoveFailed mirrors spec §4.N unit_move_failed(u): logged only —
// the group that ordered the move re-evaluates on its own next Update
// rather than Root retrying the single unit's path immediately.
func (r *AAIRoot) UnitMoveFailed(unitID int) {
	r.logger.Printf("root: unit %d move failed", unitID)
}

// HandleEngineEvent mirrors spec §4.N handle_event: a unit transferred
// between teams (shared, captured, or given away) is dropped from every
// structure that indexed it under the old team, since Root only tracks
// units belonging to its own team.
func (r *AAIRoot) HandleEngineEvent(kind string, unitID, oldTeam, newTeam int) {
	if oldTeam == r.team && newTeam != r.team {
		r.UnitDestroyed(unitID, 0, false)
	} else if newTeam == r.team && oldTeam != r.team {
		r.UnitFinished(unitID)
	}
}

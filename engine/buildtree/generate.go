package buildtree

import (
	"log"

	"github.com/bklimczak/aaicore/engine/callback"
	"github.com/bklimczak/aaicore/engine/config"
)

// BuildTree is generated once per process (or shared across AAI instances in
// the same process) and is read-only afterwards, except for
// UpdateCombatPowerStatistics and the Save/Load persistence calls.
type BuildTree struct {
	log *log.Logger

	defs []callback.UnitDef // index 0 unused, defs[id] for id in 1..n

	canConstruct  []map[UnitDefId]struct{}
	constructedBy []map[UnitDefId]struct{}

	side  []int // side[id], 0 = neutral/unreachable
	props []UnitTypeProperties

	combatPower []CombatPower // combatPower[id]

	unitStatistics   map[int]map[UnitCategory]UnitStatistics // by side
	sensorStatistics map[int]SensorStatistics                // by side

	nextFactoryID int
}

// New returns an empty BuildTree. Call Generate before using it.
func New(logger *log.Logger) *BuildTree {
	if logger == nil {
		logger = log.Default()
	}
	return &BuildTree{log: logger}
}

// NumDefs returns the highest valid UnitDefId (inclusive).
func (bt *BuildTree) NumDefs() int { return len(bt.defs) - 1 }

// Def returns the raw engine definition for id, or false if out of range.
func (bt *BuildTree) Def(id UnitDefId) (callback.UnitDef, bool) {
	if int(id) <= 0 || int(id) >= len(bt.defs) {
		return callback.UnitDef{}, false
	}
	return bt.defs[id], true
}

// Properties returns the derived UnitTypeProperties for id.
func (bt *BuildTree) Properties(id UnitDefId) (UnitTypeProperties, bool) {
	if int(id) <= 0 || int(id) >= len(bt.props) {
		return UnitTypeProperties{}, false
	}
	return bt.props[id], true
}

// Side returns the side id (1..num_sides, 0 = neutral) id belongs to.
func (bt *BuildTree) Side(id UnitDefId) int {
	if int(id) <= 0 || int(id) >= len(bt.side) {
		return 0
	}
	return bt.side[id]
}

// CanConstruct reports whether builder can build target.
func (bt *BuildTree) CanConstruct(builder, target UnitDefId) bool {
	if int(builder) <= 0 || int(builder) >= len(bt.canConstruct) {
		return false
	}
	_, ok := bt.canConstruct[builder][target]
	return ok
}

// ConstructedBy returns the set of defs that can construct target.
func (bt *BuildTree) ConstructedBy(target UnitDefId) []UnitDefId {
	if int(target) <= 0 || int(target) >= len(bt.constructedBy) {
		return nil
	}
	out := make([]UnitDefId, 0, len(bt.constructedBy[target]))
	for id := range bt.constructedBy[target] {
		out = append(out, id)
	}
	return out
}

// CombatPowerOf returns the combat-power vector for id.
func (bt *BuildTree) CombatPowerOf(id UnitDefId) CombatPower {
	if int(id) <= 0 || int(id) >= len(bt.combatPower) {
		return CombatPower{}
	}
	return bt.combatPower[id]
}

// Generate runs the one-shot classification described in spec §4.A:
// build the can-construct graph, flood-fill sides from root units, derive
// per-def properties and category, compute UnitType bits, assign factory
// ids, roll up per-side statistics, and seed the combat-power matrix.
func (bt *BuildTree) Generate(eng callback.Engine, cfg *config.Config) error {
	n := eng.GetNumUnitDefs()
	bt.defs = make([]callback.UnitDef, n+1)
	bt.canConstruct = make([]map[UnitDefId]struct{}, n+1)
	bt.constructedBy = make([]map[UnitDefId]struct{}, n+1)
	bt.side = make([]int, n+1)
	bt.props = make([]UnitTypeProperties, n+1)
	bt.combatPower = make([]CombatPower, n+1)

	for _, d := range eng.GetUnitDefList() {
		if d.ID <= 0 || d.ID > n {
			continue
		}
		bt.defs[d.ID] = d
	}

	// Step 2: can_construct / constructed_by.
	for id := 1; id <= n; id++ {
		def := bt.defs[id]
		set := make(map[UnitDefId]struct{}, len(def.BuildOptions))
		for _, opt := range def.BuildOptions {
			if opt <= 0 || opt > n {
				continue
			}
			set[UnitDefId(opt)] = struct{}{}
			if bt.constructedBy[opt] == nil {
				bt.constructedBy[opt] = make(map[UnitDefId]struct{})
			}
			bt.constructedBy[opt][UnitDefId(id)] = struct{}{}
		}
		bt.canConstruct[id] = set
	}

	// Step 3/4: identify roots, assign sides, flood-fill.
	bt.assignSides(cfg)

	// Step 5/6/7: properties, classification, UnitType bits.
	for id := 1; id <= n; id++ {
		if bt.side[id] == 0 {
			continue // neutral/unreachable defs are left unclassified
		}
		bt.props[id] = bt.deriveProperties(UnitDefId(id), cfg)
	}

	// Step 8: factory ids.
	bt.nextFactoryID = 1
	for id := 1; id <= n; id++ {
		if bt.props[id].UnitType.Has(TypeFactory) {
			bt.props[id].FactoryID = bt.nextFactoryID
			bt.nextFactoryID++
		}
	}

	// Step 9: per-side statistics.
	bt.computeStatistics()

	// Combat power initialisation.
	bt.initCombatPower()

	bt.log.Printf("buildtree: generated %d defs across %d side(s)", n, cfg.Sides)
	return nil
}

// assignSides implements spec §4.A steps 3-4: roots are defs nobody else
// constructs but which themselves construct something; if the root count
// doesn't match the configured side count, config.StartUnits overrides.
func (bt *BuildTree) assignSides(cfg *config.Config) {
	n := len(bt.defs) - 1
	var roots []UnitDefId
	for id := 1; id <= n; id++ {
		if len(bt.canConstruct[id]) > 0 && len(bt.constructedBy[id]) == 0 {
			roots = append(roots, UnitDefId(id))
		}
	}

	if len(roots) != cfg.Sides {
		roots = roots[:0]
		for _, name := range cfg.StartUnits {
			for id := 1; id <= n; id++ {
				if bt.defs[id].Name == name {
					roots = append(roots, UnitDefId(id))
					break
				}
			}
		}
	}

	for i, root := range roots {
		sideID := i + 1
		bt.floodSide(root, sideID)
	}
}

func (bt *BuildTree) floodSide(root UnitDefId, sideID int) {
	if bt.side[root] != 0 {
		return
	}
	bt.side[root] = sideID
	for child := range bt.canConstruct[root] {
		bt.floodSide(child, sideID)
	}
}

// deriveProperties fills UnitTypeProperties for id: cost, movement type,
// target type, category, and UnitType bits (spec §4.A steps 5-7).
func (bt *BuildTree) deriveProperties(id UnitDefId, cfg *config.Config) UnitTypeProperties {
	def := bt.defs[id]

	mt := movementTypeOf(def)
	tt := targetTypeOf(mt)

	props := UnitTypeProperties{
		TotalCost:    def.MetalCost + def.EnergyCost/60,
		BuildTime:    def.BuildTime,
		Health:       def.Health,
		FootprintX:   def.FootprintX,
		FootprintZ:   def.FootprintZ,
		Name:         def.Name,
		MovementType: mt,
		TargetType:   tt,
	}
	props.PrimaryAbility, props.SecondaryAbility = abilitiesOf(def)
	props.Category = classify(def, cfg)

	var bits UnitType
	if def.IsBuilding {
		bits |= TypeBuilding
	} else {
		bits |= TypeMobileUnit
	}
	if len(def.BuildOptions) > 0 {
		anyBuilding, anyMobile := false, false
		for _, opt := range def.BuildOptions {
			if opt <= 0 || opt >= len(bt.defs) {
				continue
			}
			if bt.defs[opt].IsBuilding {
				anyBuilding = true
			} else {
				anyMobile = true
			}
		}
		if anyBuilding {
			bits |= TypeFactory
		}
		if anyMobile {
			bits |= TypeBuilder
		}
	}
	if def.CanAssist {
		bits |= TypeConstructionAssist
	}
	if def.HasRadar {
		bits |= TypeRadar
	}
	if def.HasSonar {
		bits |= TypeSonar
	}
	if def.HasSeismic {
		bits |= TypeSeismic
	}
	if def.HasJammer {
		bits |= TypeRadarJammer
	}
	if def.HasSonarJam {
		bits |= TypeSonarJammer
	}
	props.UnitType = bits
	return props
}

// movementTypeOf derives MovementType from the {moveFamily, canfly,
// minWaterDepth, floater} tuple per spec §3.
func movementTypeOf(def callback.UnitDef) MovementType {
	if def.CanFly {
		if def.IsBuilding {
			return MoveStaticLand // airpads/air bases are treated as static land
		}
		return MoveAir
	}
	if def.IsBuilding {
		switch {
		case def.Floater:
			return MoveStaticSeaFloater
		case def.MinWaterDepth > 0:
			return MoveStaticSeaSubmerged
		default:
			return MoveStaticLand
		}
	}
	switch def.MoveFamily {
	case "Ship", "Submarine":
		if def.Floater {
			return MoveSeaFloater
		}
		return MoveSeaSubmerged
	case "Hover":
		return MoveHover
	default:
		if def.MinWaterDepth > 0 {
			return MoveAmphibious
		}
		return MoveGround
	}
}

// targetTypeOf derives TargetType from MovementType per spec §3.
func targetTypeOf(mt MovementType) TargetType {
	switch mt {
	case MoveGround, MoveHover, MoveAmphibious:
		return TargetSurface
	case MoveAir:
		return TargetAir
	case MoveSeaFloater:
		return TargetFloater
	case MoveSeaSubmerged:
		return TargetSubmerged
	case MoveStaticLand, MoveStaticSeaFloater, MoveStaticSeaSubmerged:
		return TargetStatic
	default:
		return TargetSurface
	}
}

// abilitiesOf computes primary/secondary ability per spec §3's
// category-dependent meaning. Category isn't known yet at this point in
// Generate, so this infers it from the def itself (weapon range, radar
// range, scout LOS, resource output, ...). A def with build options gets
// its BuildTime as primary ability: callback.UnitDef carries no build
// speed, so build speed is not used.
func abilitiesOf(def callback.UnitDef) (primary, secondary float64) {
	if maxRange, _ := maxWeapon(def); maxRange > 0 {
		primary = maxRange
	} else if def.HasRadar {
		primary = def.RadarRange
	} else if def.IsScout {
		primary = def.LOS
	} else if def.ExtractsMetal > 0 {
		primary = def.ExtractsMetal
	} else if def.EnergyMake > 0 {
		primary = def.EnergyMake
	} else if def.MetalStorage > 0 {
		primary = def.MetalStorage
	} else if len(def.BuildOptions) > 0 {
		primary = def.BuildTime
	}

	if !def.IsBuilding {
		secondary = def.Speed
	}
	if def.HasSonar {
		secondary = def.SonarRange
	}
	if def.EnergyStorage > 0 {
		secondary = def.EnergyStorage
	}
	return primary, secondary
}

func maxWeapon(def callback.UnitDef) (rangeVal float64, maxDamage float64) {
	for _, w := range def.Weapons {
		if w.Range > rangeVal {
			rangeVal = w.Range
		}
		if w.MaxDamage > maxDamage {
			maxDamage = w.MaxDamage
		}
	}
	return rangeVal, maxDamage
}

// classify implements the static/mobile decision tree of spec §4.A step 6,
// first match wins.
func classify(def callback.UnitDef, cfg *config.Config) UnitCategory {
	if def.IsBuilding {
		return classifyStatic(def, cfg)
	}
	return classifyMobile(def, cfg)
}

func classifyStatic(def callback.UnitDef, cfg *config.Config) UnitCategory {
	switch {
	case def.CanAssist && len(def.BuildOptions) == 0:
		return CategoryStaticSupport
	case len(def.BuildOptions) > 0:
		return CategoryStaticConstructor
	case def.ExtractsMetal > 0:
		return CategoryMetalExtractor
	case def.IsAirBase:
		return CategoryStaticSupport
	case def.EnergyMake >= cfg.MinEnergy || def.Tidal || def.Wind || def.EnergyUpkeep <= -cfg.MinEnergy:
		return CategoryPowerPlant
	}

	if _, maxDamage := maxWeapon(def); maxDamage > 1 {
		switch {
		case hasStockpile(def):
			return CategoryStaticSupport
		case def.HasShield:
			return CategoryStaticSupport
		default:
			maxRange, _ := maxWeapon(def)
			if maxRange < cfg.StationaryArtyRange {
				return CategoryStaticDefence
			}
			return CategoryStaticArtillery
		}
	}

	switch {
	case def.HasRadar || def.HasSonar:
		return CategoryStaticSensor
	case def.HasJammer || def.HasSonarJam:
		return CategoryStaticSupport
	case def.MetalMake > 0:
		return CategoryMetalMaker
	case def.MetalStorage >= cfg.MinMetalStorage || def.EnergyStorage >= cfg.MinEnergyStorage:
		return CategoryStorage
	default:
		return CategoryUnknown
	}
}

func classifyMobile(def callback.UnitDef, cfg *config.Config) UnitCategory {
	switch {
	case def.IsCommander:
		return CategoryCommander
	case def.IsScout || (def.Speed > cfg.ScoutSpeed && !def.CanFly):
		return CategoryScout
	case def.IsTransport:
		return CategoryTransport
	case len(def.BuildOptions) > 0 || def.CanAssist || def.CanResurrect:
		return CategoryMobileConstructor
	}

	if _, maxDamage := maxWeapon(def); maxDamage > 1 {
		if hasStockpile(def) {
			return CategoryMobileSupport
		}
		maxRange, _ := maxWeapon(def)
		return classifyCombatByMovement(movementTypeOf(def), maxRange, cfg)
	}

	if def.HasRadar || def.HasSonar || def.HasJammer || def.HasSonarJam || def.HasSeismic {
		return CategoryMobileSupport
	}
	return CategoryUnknown
}

func classifyCombatByMovement(mt MovementType, weaponRange float64, cfg *config.Config) UnitCategory {
	switch mt {
	case MoveAir:
		return CategoryAirCombat
	case MoveSeaFloater, MoveSeaSubmerged:
		if weaponRange >= cfg.SeaArtyRange {
			return CategoryMobileArtillery
		}
		if mt == MoveSeaSubmerged {
			return CategorySubmarineCombat
		}
		return CategorySeaCombat
	case MoveHover:
		if weaponRange >= cfg.HoverArtyRange {
			return CategoryMobileArtillery
		}
		return CategoryHoverCombat
	default: // Ground, Amphibious
		if weaponRange >= cfg.GroundArtyRange {
			return CategoryMobileArtillery
		}
		return CategoryGroundCombat
	}
}

func hasStockpile(def callback.UnitDef) bool {
	for _, w := range def.Weapons {
		if w.StockpileWeapon {
			return true
		}
	}
	return false
}

package group

import (
	"github.com/bklimczak/aaicore/engine/buildtree"
	"github.com/bklimczak/aaicore/engine/callback"
	emath "github.com/bklimczak/aaicore/engine/math"
	"github.com/bklimczak/aaicore/engine/sector"
)

// checkAttackSuppressionFrames/getNextDestSuppressionFrames prevent
// command-overflow from repeatedly re-issuing the same attack/retarget
// order every tick (spec §4.L, grounded on AAIAttackManager::CheckAttack/
// GetNextDest's `GetCurrentFrame() - lastAttack < N` guards).
const (
	checkAttackSuppressionFrames = 30
	getNextDestSuppressionFrames = 60
	attackPowerVsAggressiveness  = 2.0
)

// Manager owns every live Group and Attack, keyed by the opaque IDs
// Group/Attack refer to each other by (spec §9, §4.L AAIAttackManager).
type Manager struct {
	groups       map[int]*Group
	attacks      map[int]*Attack
	nextGroupID  int
	nextAttackID int
}

// NewManager returns an empty manager.
func NewManager() *Manager {
	return &Manager{
		groups:  make(map[int]*Group),
		attacks: make(map[int]*Attack),
	}
}

// NewGroup allocates and registers a group with a fresh ID.
func (m *Manager) NewGroup(defID buildtree.UnitDefId, cat buildtree.UnitCategory, unitType buildtree.UnitType, moveType buildtree.MovementType, continentID int, cfg GroupSizeConfig) *Group {
	m.nextGroupID++
	g := New(m.nextGroupID, defID, cat, unitType, moveType, continentID, cfg)
	m.groups[g.ID] = g
	return g
}

// Group looks up a registered group by ID.
func (m *Manager) Group(id int) (*Group, bool) {
	g, ok := m.groups[id]
	return g, ok
}

// Groups returns every registered group.
func (m *Manager) Groups() []*Group {
	out := make([]*Group, 0, len(m.groups))
	for _, g := range m.groups {
		out = append(out, g)
	}
	return out
}

// RemoveGroup unregisters a group (e.g. once it has lost its last unit).
func (m *Manager) RemoveGroup(id int) {
	if g, ok := m.groups[id]; ok {
		if a, ok := m.attacks[g.AttackID]; ok {
			a.RemoveGroup(g)
		}
		delete(m.groups, id)
	}
}

// Attack looks up a registered attack by ID.
func (m *Manager) Attack(id int) (*Attack, bool) {
	a, ok := m.attacks[id]
	return a, ok
}

// Attacks returns every in-progress attack.
func (m *Manager) Attacks() []*Attack {
	out := make([]*Attack, 0, len(m.attacks))
	for _, a := range m.attacks {
		out = append(out, a)
	}
	return out
}

func (m *Manager) groupByID(id int) (*Group, bool) { return m.Group(id) }

func isCombatCategory(cat buildtree.UnitCategory) bool {
	switch cat {
	case buildtree.CategoryGroundCombat, buildtree.CategoryHoverCombat,
		buildtree.CategorySeaCombat, buildtree.CategorySubmarineCombat:
		return true
	default:
		return false
	}
}

// availableGroups buckets every registered, attack-eligible assault/AA
// group into global (can move between continents) or per-continent lists
// (spec §4.L DetermineCombatUnitGroupsAvailableForAttack).
func (m *Manager) availableGroups(bt *buildtree.BuildTree, unitPos func(int) (emath.Vec2, bool), numContinents int) (assaultGlobal, aaGlobal []*Group, assaultOnContinent, aaOnContinent [][]*Group, numAssault int) {
	assaultOnContinent = make([][]*Group, numContinents)
	aaOnContinent = make([][]*Group, numContinents)

	for _, g := range m.groups {
		if !isCombatCategory(g.Category) {
			continue
		}
		if !g.AvailableForAttack(bt, unitPos) {
			continue
		}

		isAssault, isPureAntiAir := groupRole(g)
		continentBound := g.MoveType.CannotMoveToOtherContinents()

		switch {
		case isAssault:
			if continentBound && g.ContinentID >= 0 && g.ContinentID < numContinents {
				assaultOnContinent[g.ContinentID] = append(assaultOnContinent[g.ContinentID], g)
			} else {
				assaultGlobal = append(assaultGlobal, g)
			}
			numAssault++
		case isPureAntiAir:
			if continentBound && g.ContinentID >= 0 && g.ContinentID < numContinents {
				aaOnContinent[g.ContinentID] = append(aaOnContinent[g.ContinentID], g)
			} else {
				aaGlobal = append(aaGlobal, g)
			}
		}
	}
	return
}

// combatPowerOfGroups tallies combat power vs static defences (always)
// plus vs the target types each group's category can actually engage,
// mirroring spec §4.L DetermineCombatPowerOfGroups.
func combatPowerOfGroups(bt *buildtree.BuildTree, groups []*Group) (power [5]float64) {
	for _, g := range groups {
		power[buildtree.TargetStatic] += g.CombatPowerVsTargetType(bt, buildtree.TargetStatic)

		switch g.Category {
		case buildtree.CategoryGroundCombat:
			power[buildtree.TargetSurface] += g.CombatPowerVsTargetType(bt, buildtree.TargetSurface)
		case buildtree.CategoryHoverCombat:
			power[buildtree.TargetSurface] += g.CombatPowerVsTargetType(bt, buildtree.TargetSurface)
			power[buildtree.TargetFloater] += g.CombatPowerVsTargetType(bt, buildtree.TargetFloater)
		case buildtree.CategorySeaCombat, buildtree.CategorySubmarineCombat:
			power[buildtree.TargetFloater] += g.CombatPowerVsTargetType(bt, buildtree.TargetFloater)
			power[buildtree.TargetSubmerged] += g.CombatPowerVsTargetType(bt, buildtree.TargetSubmerged)
		}
	}
	return
}

// TryToLaunchAttack assembles every available assault/anti-air group into
// a fresh attack against the highest-rated eligible sector, favoring
// sectors with many enemy buildings, few recent losses, short distance to
// base and low defensive power relative to available attack power (spec
// §4.L TryToLaunchAttack). maxAntiAirGroups caps how many escort groups
// join — the original ties this to Brain's recently-spotted-air-units
// smoothing (0 if under 0.2). Returns the new Attack, or nil if no sector
// qualified.
func (m *Manager) TryToLaunchAttack(
	bt *buildtree.BuildTree,
	allSectors []*sector.Sector,
	maxLostUnits float64,
	numContinents int,
	maxAntiAirGroups int,
	unitPos func(int) (emath.Vec2, bool),
) *Attack {
	assaultGlobal, aaGlobal, assaultOnContinent, aaOnContinent, numAssault := m.availableGroups(bt, unitPos, numContinents)
	if numAssault == 0 {
		return nil
	}

	combatPowerGlobal := combatPowerOfGroups(bt, assaultGlobal)
	combatPowerOnContinent := make([][5]float64, numContinents)
	for c := range combatPowerOnContinent {
		combatPowerOnContinent[c] = combatPowerOfGroups(bt, assaultOnContinent[c])
	}

	var numberOfAssaultGroupsOfTargetType [5]float64
	for _, g := range assaultGlobal {
		props, _ := bt.Properties(g.DefID)
		numberOfAssaultGroupsOfTargetType[props.TargetType]++
	}
	for _, list := range assaultOnContinent {
		for _, g := range list {
			props, _ := bt.Properties(g.DefID)
			numberOfAssaultGroupsOfTargetType[props.TargetType]++
		}
	}

	var selected *sector.Sector
	highestRating := 0.0

	for _, s := range allSectors {
		if s.DistanceToBase <= 0 || s.EnemyBuildings <= 0 {
			continue
		}

		enemyDefencePower := numberOfAssaultGroupsOfTargetType[buildtree.TargetSurface]*s.EnemyCombatPowerOf(int(buildtree.TargetSurface)) +
			numberOfAssaultGroupsOfTargetType[buildtree.TargetFloater]*s.EnemyCombatPowerOf(int(buildtree.TargetFloater)) +
			numberOfAssaultGroupsOfTargetType[buildtree.TargetSubmerged]*s.EnemyCombatPowerOf(int(buildtree.TargetSubmerged))

		continent := s.ContinentID
		myAttackPower := combatPowerGlobal[buildtree.TargetStatic]
		if continent >= 0 && continent < numContinents {
			myAttackPower += combatPowerOnContinent[continent][buildtree.TargetStatic]
		}

		lostUnitsFactor := 1.0
		if maxLostUnits > 1.0 {
			lostUnitsFactor = 2.0 - s.TotalLostUnits()/maxLostUnits
		}

		rating := lostUnitsFactor * float64(s.EnemyBuildings) * myAttackPower /
			((0.1 + enemyDefencePower) * float64(2+s.DistanceToBase))

		if rating > highestRating {
			highestRating = rating
			selected = s
		}
	}

	if selected == nil {
		return nil
	}

	m.nextAttackID++
	attack := NewAttack(m.nextAttackID, selected)
	m.attacks[attack.ID] = attack

	continent := selected.ContinentID
	if continent >= 0 && continent < numContinents {
		for _, g := range assaultOnContinent[continent] {
			attack.AddGroup(g)
		}
	}
	for _, g := range assaultGlobal {
		attack.AddGroup(g)
	}

	assigned := 0
	if continent >= 0 && continent < numContinents {
		for _, g := range aaOnContinent[continent] {
			if assigned >= maxAntiAirGroups {
				break
			}
			attack.AddGroup(g)
			assigned++
		}
	}
	for _, g := range aaGlobal {
		if assigned >= maxAntiAirGroups {
			break
		}
		attack.AddGroup(g)
		assigned++
	}

	return attack
}

// StopAttack orders every group in the attack to retreat to its rally
// point and unregisters the attack (spec §4.L StopAttack).
func (m *Manager) StopAttack(
	eng callback.Engine,
	a *Attack,
	currentFrame int,
	sectorOf func(emath.Vec2) *sector.Sector,
	setStatus func(unitID int),
) {
	for id := range a.CombatGroupIDs {
		if g, ok := m.groupByID(id); ok {
			g.Retreat(eng, g.RallyPoint, currentFrame, sectorOf, setStatus)
		}
	}
	for id := range a.AntiAirGroupIDs {
		if g, ok := m.groupByID(id); ok {
			g.Retreat(eng, g.RallyPoint, currentFrame, sectorOf, setStatus)
		}
	}
	delete(m.attacks, a.ID)
}

// CheckAttack drops an attack that has failed — insufficient combined
// combat power both against the target sector's defences and against the
// mobile enemy units estimated to be where the attack currently stands
// (spec §4.L CheckAttack/AAIAttack::CheckIfFailed), subject to the
// 30-frame reissue-suppression window.
func (m *Manager) CheckAttack(
	bt *buildtree.BuildTree,
	a *Attack,
	currentFrame int,
	enemyDefencePowerOf func(t buildtree.TargetType) float64,
	currentSectorEnemyCombatPowerVs func(weights [5]float64) float64,
	currentSectorEnemyUnitCounts func() [5]float64,
) (failed bool) {
	if currentFrame-a.LastOrderFrame < checkAttackSuppressionFrames {
		return false
	}
	if len(a.CombatGroupIDs) == 0 {
		return true
	}
	if !a.SufficientCombatPowerToAttackSector(bt, m.groupByID, enemyDefencePowerOf) {
		return true
	}
	if !a.SufficientCombatPowerAt(bt, m.groupByID, currentSectorEnemyCombatPowerVs, currentSectorEnemyUnitCounts) {
		return true
	}
	return false
}

// GetNextDest re-targets an attack at the next sector Brain's attack-path
// search returns, provided the attack still has enough power to face that
// sector's static defences; otherwise the caller should stop the attack
// (spec §4.L GetNextDest/AAIAttackManager::SufficientAttackPowerVS).
func (m *Manager) GetNextDest(
	bt *buildtree.BuildTree,
	a *Attack,
	currentFrame int,
	nextSector *sector.Sector,
	found bool,
) (target *sector.Sector, proceed bool) {
	if currentFrame-a.LastOrderFrame < getNextDestSuppressionFrames {
		return nil, false
	}
	if !found {
		return nil, false
	}

	var combatPowerVsBuildings float64
	for id := range a.CombatGroupIDs {
		if g, ok := m.groupByID(id); ok {
			combatPowerVsBuildings += g.CombatPowerVsTargetType(bt, buildtree.TargetStatic)
		}
	}

	enemyDefencePower := nextSector.EnemyCombatPowerOf(int(buildtree.TargetSurface))
	if attackPowerVsAggressiveness*combatPowerVsBuildings > enemyDefencePower {
		a.TargetSector = nextSector
		return nextSector, true
	}
	return nil, false
}

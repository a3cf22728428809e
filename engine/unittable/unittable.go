// Package unittable is the live registry of every unit the AI currently
// owns or is tracking: a slot per UnitId plus named indices for the roles
// Brain/Executor query by name (constructors, scouts, extractors, ...),
// and the active/under-construction/requested counters Executor's urgency
// math runs on (spec §4.E, invariant I8).
package unittable

import (
	"github.com/bklimczak/aaicore/engine/buildtree"
)

// Status is the lifecycle state of a tracked unit (spec §4.E).
type Status int

const (
	StatusKilled Status = iota
	StatusIdle
	StatusMoving
	StatusAttacking
	StatusBuilding
	StatusAssisting
	StatusEnemy
	StatusBombTarget
)

// Entry is the per-UnitId record. DefID is 0 for an unused slot.
type Entry struct {
	UnitID  int
	DefID   buildtree.UnitDefId
	Status  Status
	GroupID int // 0 = none
}

// Table is the registry. It owns no behavior beyond bookkeeping —
// Constructor/Group/AirForceManager own what a unit does once it's
// registered here.
type Table struct {
	bt *buildtree.BuildTree

	units map[int]*Entry

	commanderID int // 0 = none registered

	constructors   map[int]struct{}
	scouts         map[int]struct{}
	extractors     map[int]struct{}
	powerPlants    map[int]struct{}
	metalMakers    map[int]struct{}
	recon          map[int]struct{}
	jammers        map[int]struct{}
	stationaryArty map[int]struct{}
	nanoTurrets    map[int]struct{}

	activeOfCategory      map[buildtree.UnitCategory]int
	underConstructionOf   map[buildtree.UnitCategory]int
	requestedOfCategory   map[buildtree.UnitCategory]int

	activeFactories, futureFactories int
}

// New returns an empty table bound to the generated build tree, used to
// classify unit defs (IsBuilder/IsFactory/IsAssister/category lookups).
func New(bt *buildtree.BuildTree) *Table {
	return &Table{
		bt:                  bt,
		units:               make(map[int]*Entry),
		constructors:        make(map[int]struct{}),
		scouts:              make(map[int]struct{}),
		extractors:          make(map[int]struct{}),
		powerPlants:         make(map[int]struct{}),
		metalMakers:         make(map[int]struct{}),
		recon:               make(map[int]struct{}),
		jammers:             make(map[int]struct{}),
		stationaryArty:      make(map[int]struct{}),
		nanoTurrets:         make(map[int]struct{}),
		activeOfCategory:    make(map[buildtree.UnitCategory]int),
		underConstructionOf: make(map[buildtree.UnitCategory]int),
		requestedOfCategory: make(map[buildtree.UnitCategory]int),
	}
}

// AddUnit registers unitID as alive with defID, replacing any stale enemy
// bookkeeping that referenced the same slot (spec §4.E add_unit).
func (t *Table) AddUnit(unitID int, defID buildtree.UnitDefId) {
	t.units[unitID] = &Entry{UnitID: unitID, DefID: defID, Status: StatusIdle}
}

// RemoveUnit clears a slot (unit destroyed, or finished tracking it).
func (t *Table) RemoveUnit(unitID int) {
	delete(t.units, unitID)
}

// Get returns the entry for unitID, or (nil, false) if untracked.
func (t *Table) Get(unitID int) (*Entry, bool) {
	e, ok := t.units[unitID]
	return e, ok
}

// SetStatus updates a tracked unit's lifecycle status.
func (t *Table) SetStatus(unitID int, status Status) {
	if e, ok := t.units[unitID]; ok {
		e.Status = status
	}
}

func (t *Table) isBuilder(defID buildtree.UnitDefId) bool {
	props, ok := t.bt.Properties(defID)
	return ok && props.UnitType.Has(buildtree.TypeBuilder)
}

func (t *Table) isFactory(defID buildtree.UnitDefId) bool {
	props, ok := t.bt.Properties(defID)
	return ok && props.UnitType.Has(buildtree.TypeFactory)
}

func (t *Table) isAssister(defID buildtree.UnitDefId) bool {
	props, ok := t.bt.Properties(defID)
	return ok && props.UnitType.Has(buildtree.TypeConstructionAssist)
}

// AddConstructor indexes unitID as a constructor (builder, factory or
// assister — spec §4.E add_constructor). Static factories flip
// futureFactories/activeFactories since their placement was already
// counted as requested.
func (t *Table) AddConstructor(unitID int, defID buildtree.UnitDefId) {
	t.constructors[unitID] = struct{}{}
	if e, ok := t.units[unitID]; ok {
		e.DefID = defID
	}
	if t.isFactory(defID) {
		t.futureFactories--
		t.activeFactories++
	}
}

// RemoveConstructor un-indexes a constructor (spec §4.E remove_constructor).
func (t *Table) RemoveConstructor(unitID int, defID buildtree.UnitDefId) {
	if t.isFactory(defID) {
		t.activeFactories--
	}
	delete(t.constructors, unitID)
}

// AddCommander registers the one commander unit and indexes it as a
// constructor too — the commander can build like any other constructor
// (spec §4.E add_commander).
func (t *Table) AddCommander(unitID int, defID buildtree.UnitDefId) {
	t.commanderID = unitID
	t.constructors[unitID] = struct{}{}
}

// RemoveCommander clears the commander slot.
func (t *Table) RemoveCommander(unitID int) {
	if t.commanderID == unitID {
		t.commanderID = 0
	}
	delete(t.constructors, unitID)
}

func addTo(set map[int]struct{}, unitID int) { set[unitID] = struct{}{} }
func removeFrom(set map[int]struct{}, unitID int) { delete(set, unitID) }

func (t *Table) AddScout(unitID int)      { addTo(t.scouts, unitID) }
func (t *Table) RemoveScout(unitID int)   { removeFrom(t.scouts, unitID) }
func (t *Table) AddExtractor(unitID int)  { addTo(t.extractors, unitID) }
func (t *Table) RemoveExtractor(unitID int) { removeFrom(t.extractors, unitID) }
func (t *Table) AddPowerPlant(unitID int) { addTo(t.powerPlants, unitID) }
func (t *Table) RemovePowerPlant(unitID int) { removeFrom(t.powerPlants, unitID) }
func (t *Table) AddMetalMaker(unitID int) { addTo(t.metalMakers, unitID) }
func (t *Table) RemoveMetalMaker(unitID int) { removeFrom(t.metalMakers, unitID) }

// MetalMakers lists every unit indexed as a metal maker, the roster
// Executor's check_ressources toggles on and off against energy surplus.
func (t *Table) MetalMakers() []int {
	ids := make([]int, 0, len(t.metalMakers))
	for id := range t.metalMakers {
		ids = append(ids, id)
	}
	return ids
}
func (t *Table) AddRecon(unitID int)      { addTo(t.recon, unitID) }
func (t *Table) RemoveRecon(unitID int)   { removeFrom(t.recon, unitID) }
func (t *Table) AddJammer(unitID int)     { addTo(t.jammers, unitID) }
func (t *Table) RemoveJammer(unitID int)  { removeFrom(t.jammers, unitID) }
func (t *Table) AddStationaryArty(unitID int) { addTo(t.stationaryArty, unitID) }
func (t *Table) RemoveStationaryArty(unitID int) { removeFrom(t.stationaryArty, unitID) }
func (t *Table) AddNanoTurret(unitID int)     { addTo(t.nanoTurrets, unitID) }
func (t *Table) RemoveNanoTurret(unitID int)  { removeFrom(t.nanoTurrets, unitID) }

// Recon, Jammers, StationaryArty and NanoTurrets list the live unit ids
// indexed under each role, the rosters check_recon/check_stationary_arty/
// check_construction_of_nano_turret size themselves against.
func (t *Table) Recon() []int          { return keysOf(t.recon) }
func (t *Table) Jammers() []int        { return keysOf(t.jammers) }
func (t *Table) StationaryArty() []int { return keysOf(t.stationaryArty) }
func (t *Table) NanoTurrets() []int    { return keysOf(t.nanoTurrets) }

// Constructors returns the live constructor unit ids.
func (t *Table) Constructors() []int { return keysOf(t.constructors) }

// Scouts returns the live scout unit ids.
func (t *Table) Scouts() []int { return keysOf(t.scouts) }

// Extractors returns the live metal extractor unit ids.
func (t *Table) Extractors() []int { return keysOf(t.extractors) }

func keysOf(set map[int]struct{}) []int {
	out := make([]int, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	return out
}

// UnitRequested bumps the requested counter for category by n (spec §4.E
// unit_requested, invariant I8).
func (t *Table) UnitRequested(cat buildtree.UnitCategory, n int) {
	t.requestedOfCategory[cat] += n
}

// UnitRequestFailed undoes one UnitRequested call for category.
func (t *Table) UnitRequestFailed(cat buildtree.UnitCategory) {
	t.requestedOfCategory[cat]--
}

// UnitCreated moves one unit of category from requested to
// under-construction (spec §4.E unit_created).
func (t *Table) UnitCreated(cat buildtree.UnitCategory) {
	t.requestedOfCategory[cat]--
	t.underConstructionOf[cat]++
}

// UnitUnderConstructionKilled removes one unit of category from the
// under-construction bucket (killed before completion).
func (t *Table) UnitUnderConstructionKilled(cat buildtree.UnitCategory) {
	t.underConstructionOf[cat]--
}

// UnitFinished moves one unit of category from under-construction to
// active (spec §4.E unit_finished).
func (t *Table) UnitFinished(cat buildtree.UnitCategory) {
	t.underConstructionOf[cat]--
	t.activeOfCategory[cat]++
}

// ActiveUnitKilled removes one active unit of category.
func (t *Table) ActiveUnitKilled(cat buildtree.UnitCategory) {
	t.activeOfCategory[cat]--
}

// ActiveUnitsOfCategory, UnderConstructionUnitsOfCategory and
// RequestedUnitsOfCategory expose the I8 counters for Executor's urgency
// computation.
func (t *Table) ActiveUnitsOfCategory(cat buildtree.UnitCategory) int {
	return t.activeOfCategory[cat]
}
func (t *Table) UnderConstructionUnitsOfCategory(cat buildtree.UnitCategory) int {
	return t.underConstructionOf[cat]
}
func (t *Table) RequestedUnitsOfCategory(cat buildtree.UnitCategory) int {
	return t.requestedOfCategory[cat]
}

// ActiveFactories and FutureFactories are the separately-tracked factory
// counters the original keeps apart from the general category counters
// (static factories gate Executor's expansion decisions directly).
func (t *Table) ActiveFactories() int { return t.activeFactories }
func (t *Table) FutureFactories() int { return t.futureFactories }

// FactoryRequested records a newly queued static factory (bumps
// futureFactories the same way UnitRequested bumps the category counter).
func (t *Table) FactoryRequested() { t.futureFactories++ }

// UpdateConstructors prunes constructor bookkeeping for any unit no
// longer tracked in the table, the periodic consistency sweep spec §4.E
// update_constructors runs so a destroyed constructor that slipped past
// RemoveConstructor can't keep inflating ActiveFactories (invariant I8).
func (t *Table) UpdateConstructors() {
	for id := range t.constructors {
		if _, ok := t.units[id]; !ok {
			delete(t.constructors, id)
		}
	}
}

package executor

// Attempt tries to satisfy one category's build urgency this tick and
// reports how it went. Root wires one Attempt per category, closing over
// whatever mix of Brain/Sector/Gamemap/BuildTree/UnitTable state that
// category's try_build_* needs (spec §4.I, grounded on the dispatch table
// implicit in AAIExecute::BuildUnitOfMovementType/CheckConstruction).
type Attempt func() BuildOrderStatus

// Executor is the per-tick construction scheduler (spec §4.I). It owns no
// game state of its own beyond urgencies, queues and the order log — the
// Attempt closures Root registers carry out the actual construction
// decisions against Brain/Sector/Gamemap/BuildTree/UnitTable.
type Executor struct {
	Urgency  UrgencyTable
	Queues   *BuildQueues
	Orders   *OrderLog
	attempts [numCategories]Attempt
}

// New returns an Executor with empty urgencies, a queue set sized to
// maxQueueSize, and a fresh order log.
func New(maxQueueSize int) *Executor {
	return &Executor{
		Queues: NewBuildQueues(maxQueueSize),
		Orders: NewOrderLog(),
	}
}

// RegisterAttempt binds the construction logic for a category. Categories
// left unregistered are simply never selected by Update.
func (e *Executor) RegisterAttempt(cat Category, attempt Attempt) {
	e.attempts[cat] = attempt
}

// Update runs one tick of spec §4.I's urgency/select/build/clear cycle:
// the caller has already raised urgencies via RaiseTo for this tick (e.g.
// CheckResources), Update then lets every urgency creep upward, picks the
// single highest one above the action threshold, and — if that category
// has a registered Attempt — runs it, clearing the urgency only on
// success or an irrecoverably invalid def. A NoBuildsiteFound or
// NoBuilderAvailable result leaves the urgency in place so the same
// category is retried (and likely reselected) next tick.
func (e *Executor) Update() (Category, BuildOrderStatus, bool) {
	e.Urgency.Rise()

	cat, ok := e.Urgency.SelectNextBuild()
	if !ok {
		return 0, BuildingInvalid, false
	}

	attempt := e.attempts[cat]
	if attempt == nil {
		return cat, BuildingInvalid, false
	}

	status := attempt()
	if status == Successful || status == BuildingInvalid {
		e.Urgency.Clear(cat)
	}
	return cat, status, true
}

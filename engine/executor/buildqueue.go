package executor

import "github.com/bklimczak/aaicore/engine/buildtree"

// FactoryQueue is the pending build order list for one factory def (spec
// §4.I's per-factory buildque).
type FactoryQueue struct {
	FactoryDefID buildtree.UnitDefId
	IsStaticSea  bool
	Pending      []buildtree.UnitDefId
}

// BuildQueues owns the per-factory-type queues and the shared unit
// production rate (spec §4.I add_unit_to_buildqueue/check_buildqueues).
type BuildQueues struct {
	maxSize            int
	unitProductionRate int
	queues             []*FactoryQueue
}

// NewBuildQueues returns an empty queue set.
func NewBuildQueues(maxQueueSize int) *BuildQueues {
	return &BuildQueues{maxSize: maxQueueSize, unitProductionRate: 1}
}

// RegisterFactory adds an (initially empty) queue for a known factory def.
func (q *BuildQueues) RegisterFactory(defID buildtree.UnitDefId, isStaticSea bool) {
	q.queues = append(q.queues, &FactoryQueue{FactoryDefID: defID, IsStaticSea: isStaticSea})
}

func (q *BuildQueues) queueFor(defID buildtree.UnitDefId) *FactoryQueue {
	for _, fq := range q.queues {
		if fq.FactoryDefID == defID {
			return fq
		}
	}
	return nil
}

// UnitProductionRate returns how many combat-unit build slots Brain.BuildUnits
// should fill this tick.
func (q *BuildQueues) UnitProductionRate() int { return q.unitProductionRate }

// AddUnitToBuildqueue ranks every factory def that can construct unitDefID
// by `(1 + 2*active)/(queueLen + 3)`, downweighted 10x on a map/medium
// mismatch, and inserts `number` copies of unitDefID into the winner's
// queue — prepended if urgent, else appended if there's room (spec §4.I
// add_unit_to_buildqueue). constructedBy lists every factory def able to
// build unitDefID; activeOf reports how many of that factory def are
// currently active; mapMediumMismatch flags a map/factory-medium mismatch.
func (q *BuildQueues) AddUnitToBuildqueue(
	unitDefID buildtree.UnitDefId,
	number int,
	urgent bool,
	constructedBy []buildtree.UnitDefId,
	activeOf func(factoryDefID buildtree.UnitDefId) int,
	mapMediumMismatch func(factoryDefID buildtree.UnitDefId) bool,
) bool {
	var best *FactoryQueue
	bestRating := 0.0

	for _, facDefID := range constructedBy {
		active := activeOf(facDefID)
		if active <= 0 {
			continue
		}
		fq := q.queueFor(facDefID)
		if fq == nil {
			continue
		}
		rating := (1 + 2*float64(active)) / float64(len(fq.Pending)+3)
		if mapMediumMismatch(facDefID) {
			rating /= 10
		}
		if rating > bestRating {
			bestRating = rating
			best = fq
		}
	}

	if best == nil {
		return false
	}

	if urgent {
		prefix := make([]buildtree.UnitDefId, number)
		for i := range prefix {
			prefix[i] = unitDefID
		}
		best.Pending = append(prefix, best.Pending...)
		return true
	}
	if len(best.Pending) < q.maxSize {
		for i := 0; i < number; i++ {
			best.Pending = append(best.Pending, unitDefID)
		}
		return true
	}
	return false
}

// PopNext removes and returns the head of factoryDefID's queue.
func (q *BuildQueues) PopNext(factoryDefID buildtree.UnitDefId) (buildtree.UnitDefId, bool) {
	fq := q.queueFor(factoryDefID)
	if fq == nil || len(fq.Pending) == 0 {
		return 0, false
	}
	next := fq.Pending[0]
	fq.Pending = fq.Pending[1:]
	return next, true
}

// CheckBuildqueues raises unitProductionRate (cap 70) when the average
// pending-items-per-active-factory-type is low, or lowers it (floor 1)
// when it's high (spec §4.I check_buildqueues). activeOf reports how many
// of a factory def are currently active.
func (q *BuildQueues) CheckBuildqueues(activeOf func(factoryDefID buildtree.UnitDefId) int) {
	reqUnits := 0
	activeFactoryTypes := 0
	for _, fq := range q.queues {
		if activeOf(fq.FactoryDefID) > 0 {
			reqUnits += len(fq.Pending)
			activeFactoryTypes++
		}
	}
	if activeFactoryTypes == 0 {
		return
	}
	avg := float64(reqUnits) / float64(activeFactoryTypes)
	switch {
	case avg < float64(q.maxSize)/2.5:
		if q.unitProductionRate < 70 {
			q.unitProductionRate++
		}
	case avg > float64(q.maxSize)/1.5:
		if q.unitProductionRate > 1 {
			q.unitProductionRate--
		}
	}
}

package constructor

// Activity is a constructor's current task (spec §4.F, EConstructorActivity
// in the original). The zero value is ActivityUnknown; New starts every
// constructor at ActivityIdle.
type Activity int

const (
	ActivityUnknown Activity = iota
	ActivityIdle
	ActivityHeadingToBuildsite
	ActivityConstructing
	ActivityAssisting
	ActivityRepairing
	ActivityReclaiming
	ActivityResurrecting
	ActivityDestroyed
)

func (a Activity) String() string {
	switch a {
	case ActivityIdle:
		return "Idle"
	case ActivityHeadingToBuildsite:
		return "HeadingToBuildsite"
	case ActivityConstructing:
		return "Constructing"
	case ActivityAssisting:
		return "Assisting"
	case ActivityRepairing:
		return "Repairing"
	case ActivityReclaiming:
		return "Reclaiming"
	case ActivityResurrecting:
		return "Resurrecting"
	case ActivityDestroyed:
		return "Destroyed"
	default:
		return "Unknown"
	}
}

// legalEdges names every transition CheckTransition allows. Destroyed has
// no outgoing edges (a destroyed constructor stays destroyed); everything
// else can fall back to Idle, and Idle can head into any task.
var legalEdges = map[Activity]map[Activity]bool{
	ActivityUnknown: {
		ActivityIdle: true,
	},
	ActivityIdle: {
		ActivityHeadingToBuildsite: true,
		ActivityConstructing:       true,
		ActivityAssisting:          true,
		ActivityRepairing:          true,
		ActivityReclaiming:         true,
		ActivityResurrecting:       true,
		ActivityDestroyed:          true,
	},
	ActivityHeadingToBuildsite: {
		ActivityConstructing: true,
		ActivityIdle:          true, // ConstructionAborted: builder out of range too long
		ActivityDestroyed:     true,
	},
	ActivityConstructing: {
		ActivityIdle:      true,
		ActivityDestroyed: true,
	},
	ActivityAssisting: {
		ActivityIdle:      true,
		ActivityDestroyed: true,
	},
	ActivityRepairing: {
		ActivityIdle:      true,
		ActivityDestroyed: true,
	},
	ActivityReclaiming: {
		ActivityIdle:      true,
		ActivityDestroyed: true,
	},
	ActivityResurrecting: {
		ActivityIdle:      true,
		ActivityDestroyed: true,
	},
	ActivityDestroyed: {},
}

// CheckTransition reports whether moving from `from` to `to` is a legal
// edge in the activity state machine.
func CheckTransition(from, to Activity) bool {
	return legalEdges[from][to]
}

// IsCarryingOutConstructionOrder reports whether a is Constructing or
// HeadingToBuildsite — the "busy with my own build order" bitmask from
// the original's IsCarryingOutConstructionOrder.
func (a Activity) IsCarryingOutConstructionOrder() bool {
	return a == ActivityConstructing || a == ActivityHeadingToBuildsite
}

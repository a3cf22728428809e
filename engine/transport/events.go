package transport

import "encoding/json"

// EventType names one of the host-pushed notifications spec §4.N's
// AAIRoot handles. The event frame's Method field carries this value.
type EventType string

const (
	EventUnitCreated    EventType = "unit_created"
	EventUnitFinished   EventType = "unit_finished"
	EventUnitDestroyed  EventType = "unit_destroyed"
	EventUnitIdle       EventType = "unit_idle"
	EventUnitDamaged    EventType = "unit_damaged"
	EventUnitMoveFailed EventType = "unit_move_failed"
	EventHandle         EventType = "handle_event"
	EventFrameTick      EventType = "frame"
)

// Event is implemented by every concrete event type below. The driving
// loop type-switches on the concrete type rather than branching on
// EventType, so a missed case is a compile error once a handler switch
// exists.
type Event interface {
	eventType() EventType
}

// UnitCreatedEvent mirrors unit_created(u, builder) (spec §4.N).
type UnitCreatedEvent struct {
	UnitID    int
	BuilderID int
}

func (UnitCreatedEvent) eventType() EventType { return EventUnitCreated }

// UnitFinishedEvent mirrors unit_finished(u).
type UnitFinishedEvent struct {
	UnitID int
}

func (UnitFinishedEvent) eventType() EventType { return EventUnitFinished }

// UnitDestroyedEvent mirrors unit_destroyed(u, attacker); AttackerKnown
// is false when the engine couldn't identify the killer.
type UnitDestroyedEvent struct {
	UnitID        int
	AttackerID    int
	AttackerKnown bool
}

func (UnitDestroyedEvent) eventType() EventType { return EventUnitDestroyed }

// UnitIdleEvent mirrors unit_idle(u).
type UnitIdleEvent struct {
	UnitID int
}

func (UnitIdleEvent) eventType() EventType { return EventUnitIdle }

// UnitDamagedEvent mirrors unit_damaged(u, attacker, ...).
type UnitDamagedEvent struct {
	UnitID        int
	AttackerID    int
	AttackerKnown bool
	AttackerDefID int
	Damage        float64
}

func (UnitDamagedEvent) eventType() EventType { return EventUnitDamaged }

// UnitMoveFailedEvent mirrors unit_move_failed(u).
type UnitMoveFailedEvent struct {
	UnitID int
}

func (UnitMoveFailedEvent) eventType() EventType { return EventUnitMoveFailed }

// HandleEvent mirrors the engine's generic unit-given/unit-captured
// notification (spec §4.N handle_event): Kind is the engine's own event
// name, OldTeam/NewTeam identify the transfer.
type HandleEvent struct {
	Kind    string
	UnitID  int
	OldTeam int
	NewTeam int
}

func (HandleEvent) eventType() EventType { return EventHandle }

// FrameTickEvent drives the periodic Update schedule (spec §4.N).
type FrameTickEvent struct {
	Frame int
}

func (FrameTickEvent) eventType() EventType { return EventFrameTick }

type unitCreatedParams struct {
	UnitID    int `json:"unit_id"`
	BuilderID int `json:"builder_id"`
}

type unitFinishedParams struct {
	UnitID int `json:"unit_id"`
}

type unitDestroyedParams struct {
	UnitID        int `json:"unit_id"`
	AttackerID    int `json:"attacker_id"`
	AttackerKnown bool `json:"attacker_known"`
}

type unitIdleParams struct {
	UnitID int `json:"unit_id"`
}

type unitDamagedParams struct {
	UnitID        int     `json:"unit_id"`
	AttackerID    int     `json:"attacker_id"`
	AttackerKnown bool    `json:"attacker_known"`
	AttackerDefID int     `json:"attacker_def_id"`
	Damage        float64 `json:"damage"`
}

type unitMoveFailedParams struct {
	UnitID int `json:"unit_id"`
}

type handleEventParams struct {
	Kind    string `json:"kind"`
	UnitID  int    `json:"unit_id"`
	OldTeam int    `json:"old_team"`
	NewTeam int    `json:"new_team"`
}

type frameTickParams struct {
	Frame int `json:"frame"`
}

// decodeEvent turns a FrameEvent frame into its typed Event. An unknown
// Method is reported rather than silently dropped, since a new host-side
// event type landing here with no matching case would otherwise vanish.
func decodeEvent(f Frame) (Event, error) {
	switch EventType(f.Method) {
	case EventUnitCreated:
		var p unitCreatedParams
		if err := json.Unmarshal(f.Params, &p); err != nil {
			return nil, err
		}
		return UnitCreatedEvent{UnitID: p.UnitID, BuilderID: p.BuilderID}, nil
	case EventUnitFinished:
		var p unitFinishedParams
		if err := json.Unmarshal(f.Params, &p); err != nil {
			return nil, err
		}
		return UnitFinishedEvent{UnitID: p.UnitID}, nil
	case EventUnitDestroyed:
		var p unitDestroyedParams
		if err := json.Unmarshal(f.Params, &p); err != nil {
			return nil, err
		}
		return UnitDestroyedEvent{UnitID: p.UnitID, AttackerID: p.AttackerID, AttackerKnown: p.AttackerKnown}, nil
	case EventUnitIdle:
		var p unitIdleParams
		if err := json.Unmarshal(f.Params, &p); err != nil {
			return nil, err
		}
		return UnitIdleEvent{UnitID: p.UnitID}, nil
	case EventUnitDamaged:
		var p unitDamagedParams
		if err := json.Unmarshal(f.Params, &p); err != nil {
			return nil, err
		}
		return UnitDamagedEvent{UnitID: p.UnitID, AttackerID: p.AttackerID, AttackerKnown: p.AttackerKnown, AttackerDefID: p.AttackerDefID, Damage: p.Damage}, nil
	case EventUnitMoveFailed:
		var p unitMoveFailedParams
		if err := json.Unmarshal(f.Params, &p); err != nil {
			return nil, err
		}
		return UnitMoveFailedEvent{UnitID: p.UnitID}, nil
	case EventHandle:
		var p handleEventParams
		if err := json.Unmarshal(f.Params, &p); err != nil {
			return nil, err
		}
		return HandleEvent{Kind: p.Kind, UnitID: p.UnitID, OldTeam: p.OldTeam, NewTeam: p.NewTeam}, nil
	case EventFrameTick:
		var p frameTickParams
		if err := json.Unmarshal(f.Params, &p); err != nil {
			return nil, err
		}
		return FrameTickEvent{Frame: p.Frame}, nil
	default:
		return nil, &UnknownEventError{Method: f.Method}
	}
}

// UnknownEventError reports an event frame whose Method this binding
// doesn't recognise (spec §7 UnknownUnit-style "log and ignore" cousin,
// but at the protocol layer rather than the unit-bookkeeping layer).
type UnknownEventError struct {
	Method string
}

func (e *UnknownEventError) Error() string {
	return "transport: unknown event method " + e.Method
}

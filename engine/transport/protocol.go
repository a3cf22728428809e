// Package transport binds spec §6's engine callback surface to a
// long-lived websocket connection: the AI process dials out to the host
// engine and drives every callback.Engine method as a request/response
// call over that single connection, while the host pushes unit/frame
// events back down the same socket for the driving loop to consume.
//
// The wire envelope follows the teacher's Message{Type, Payload} shape
// (server/protocol.go), generalised with a request id so calls and their
// results can be matched on a duplex connection that also carries
// unsolicited events, which the teacher's lobby protocol never needed.
package transport

import "encoding/json"

// FrameKind distinguishes the four things that cross the wire: a
// blocking call awaiting a result, the result answering one, a one-way
// notification with no result (GiveOrder, SendTextMessage), and an event
// pushed by the host outside of any call.
type FrameKind string

const (
	FrameCall   FrameKind = "call"
	FrameResult FrameKind = "result"
	FrameNotify FrameKind = "notify"
	FrameEvent  FrameKind = "event"
)

// Frame is the single envelope type for everything sent on the
// connection. Method carries the callback name for call/notify/event
// frames (spec §6's own snake_case vocabulary, e.g. "get_unit_def",
// "unit_idle"); ID correlates a call with its result and is empty for
// notify/event frames.
type Frame struct {
	Kind   FrameKind       `json:"kind"`
	ID     string          `json:"id,omitempty"`
	Method string          `json:"method,omitempty"`
	Params json.RawMessage `json:"params,omitempty"`
	Result json.RawMessage `json:"result,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// Method names, one per callback.Engine method, named after spec §6's
// pseudocode rather than the Go method name so the wire format reads the
// same as the specification.
const (
	methodGetNumUnitDefs    = "get_num_unit_defs"
	methodGetUnitDef        = "get_unit_def"
	methodGetUnitDefList    = "get_unit_def_list"
	methodGetUnitDefByName  = "get_unit_def_by_name"
	methodGetUnitPos        = "get_unit_pos"
	methodGetUnitDefOf      = "get_unit_def_of"
	methodGetUnitTeam       = "get_unit_team"
	methodGetMyTeam         = "get_my_team"
	methodGetMyAllyTeam     = "get_my_ally_team"
	methodIsAllied          = "is_allied"
	methodUnitBeingBuilt    = "unit_being_built"
	methodGetHeightmap      = "get_heightmap"
	methodGetLOSMap         = "get_los_map"
	methodGetMetalMap       = "get_metal_map"
	methodGetMaxMetal       = "get_max_metal"
	methodGetExtractorRadius = "get_extractor_radius"
	methodMapWidth          = "map_width"
	methodMapHeight         = "map_height"
	methodGetCurrentFrame   = "get_current_frame"
	methodGetMetal          = "get_metal"
	methodGetEnergy         = "get_energy"
	methodGetMetalStorage   = "get_metal_storage"
	methodGetEnergyStorage  = "get_energy_storage"
	methodGetMetalIncome    = "get_metal_income"
	methodGetEnergyIncome   = "get_energy_income"
	methodGetMetalUsage     = "get_metal_usage"
	methodGetEnergyUsage    = "get_energy_usage"
	methodCanBuildAt        = "can_build_at"
	methodClosestBuildSite  = "closest_build_site"
	methodGiveOrder         = "give_order"
	methodGetEnemyUnits     = "get_enemy_units"
	methodGetEnemyUnitsInRadarAndLOS = "get_enemy_units_in_radar_and_los"
	methodGetFriendlyUnits  = "get_friendly_units"
	methodElevation         = "elevation"
	methodSendTextMessage   = "send_text_message"
	methodGetFilePath       = "get_file_path"
)

package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/bklimczak/aaicore/engine/callback"
	emath "github.com/bklimczak/aaicore/engine/math"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"
)

const (
	writeTimeout = 10 * time.Second
	pingPeriod   = 30 * time.Second
)

// Session is one AI-instance's duplex connection to the host engine. It
// implements callback.Engine by turning every method into a blocking
// call/result round trip (GiveOrder and SendTextMessage go out as
// one-way notifications instead, since nothing downstream of them waits
// on an engine acknowledgement), and exposes Events() for the driving
// loop to consume host-pushed callbacks (spec §4.N).
//
// The read/write pumps mirror the teacher's Player (server/player.go):
// a buffered send channel drained by a dedicated writer goroutine, a
// blocking reader goroutine, and a ping ticker to keep the connection
// alive. Their lifecycle is joined with golang.org/x/sync/errgroup
// instead of the teacher's bare `go func(){}()`, so Close can wait for
// both to actually stop rather than firing and forgetting.
type Session struct {
	conn *websocket.Conn

	mu      sync.Mutex
	pending map[string]chan Frame

	sendCh chan Frame
	events chan Event

	cancel context.CancelFunc
	g      *errgroup.Group

	logger *log.Logger
}

// Dial connects to the host engine at addr and starts the session's
// pumps (spec §6's callback surface arrives over this connection).
func Dial(ctx context.Context, addr string, logger *log.Logger) (*Session, error) {
	url := fmt.Sprintf("ws://%s/ai", addr)
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("transport: dial %s: %w", addr, err)
	}
	return newSession(conn, logger), nil
}

func newSession(conn *websocket.Conn, logger *log.Logger) *Session {
	if logger == nil {
		logger = log.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())
	g, ctx := errgroup.WithContext(ctx)

	s := &Session{
		conn:    conn,
		pending: make(map[string]chan Frame),
		sendCh:  make(chan Frame, 64),
		events:  make(chan Event, 64),
		cancel:  cancel,
		g:       g,
		logger:  logger,
	}

	g.Go(func() error { return s.readPump() })
	g.Go(func() error { return s.writePump(ctx) })

	return s
}

// Events returns the channel of host-pushed callbacks. The driving loop
// should range over it until it closes (connection lost or Close called).
func (s *Session) Events() <-chan Event {
	return s.events
}

// Close tears down the connection and waits for both pumps to stop.
func (s *Session) Close() error {
	s.cancel()
	s.conn.Close()
	return s.g.Wait()
}

func (s *Session) writePump(ctx context.Context) error {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case frame, ok := <-s.sendCh:
			if !ok {
				return nil
			}
			data, err := json.Marshal(frame)
			if err != nil {
				s.logger.Printf("transport: marshal frame: %v", err)
				continue
			}
			s.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := s.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return fmt.Errorf("transport: write: %w", err)
			}
		case <-ticker.C:
			s.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return fmt.Errorf("transport: ping: %w", err)
			}
		case <-ctx.Done():
			return nil
		}
	}
}

func (s *Session) readPump() error {
	defer close(s.events)
	defer s.failPendingCalls()

	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				s.logger.Printf("transport: read: %v", err)
			}
			return nil
		}

		var frame Frame
		if err := json.Unmarshal(data, &frame); err != nil {
			s.logger.Printf("transport: decode frame: %v", err)
			continue
		}

		switch frame.Kind {
		case FrameResult:
			s.mu.Lock()
			ch, ok := s.pending[frame.ID]
			if ok {
				delete(s.pending, frame.ID)
			}
			s.mu.Unlock()
			if ok {
				ch <- frame
			}
		case FrameEvent:
			ev, err := decodeEvent(frame)
			if err != nil {
				s.logger.Printf("transport: %v", err)
				continue
			}
			select {
			case s.events <- ev:
			default:
				s.logger.Printf("transport: event dropped, channel full (%s)", frame.Method)
			}
		default:
			s.logger.Printf("transport: unexpected frame kind %q", frame.Kind)
		}
	}
}

// failPendingCalls unblocks every call() still waiting on a result when
// the connection goes away, so a disconnect during an in-flight request
// fails it instead of hanging the caller forever.
func (s *Session) failPendingCalls() {
	s.mu.Lock()
	pending := s.pending
	s.pending = make(map[string]chan Frame)
	s.mu.Unlock()

	for id, ch := range pending {
		ch <- Frame{ID: id, Error: "transport: connection closed"}
	}
}

// call sends a blocking request and waits for its matching result.
func (s *Session) call(method string, params any) (json.RawMessage, error) {
	paramsRaw, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("transport: marshal params for %s: %w", method, err)
	}

	id := uuid.NewString()
	resultCh := make(chan Frame, 1)
	s.mu.Lock()
	s.pending[id] = resultCh
	s.mu.Unlock()

	select {
	case s.sendCh <- Frame{Kind: FrameCall, ID: id, Method: method, Params: paramsRaw}:
	default:
		s.mu.Lock()
		delete(s.pending, id)
		s.mu.Unlock()
		return nil, fmt.Errorf("transport: send queue full for %s", method)
	}

	result := <-resultCh
	if result.Error != "" {
		return nil, fmt.Errorf("transport: %s: %s", method, result.Error)
	}
	return result.Result, nil
}

// notify sends a one-way frame with no result to wait for.
func (s *Session) notify(method string, params any) {
	paramsRaw, err := json.Marshal(params)
	if err != nil {
		s.logger.Printf("transport: marshal params for %s: %v", method, err)
		return
	}
	select {
	case s.sendCh <- Frame{Kind: FrameNotify, Method: method, Params: paramsRaw}:
	default:
		s.logger.Printf("transport: send queue full for %s, dropped", method)
	}
}

func (s *Session) callInto(method string, params any, out any) bool {
	raw, err := s.call(method, params)
	if err != nil {
		s.logger.Printf("transport: %v", err)
		return false
	}
	if raw == nil {
		return false
	}
	if err := json.Unmarshal(raw, out); err != nil {
		s.logger.Printf("transport: decode result for %s: %v", method, err)
		return false
	}
	return true
}

func (s *Session) GetNumUnitDefs() int {
	var n int
	s.callInto(methodGetNumUnitDefs, nil, &n)
	return n
}

func (s *Session) GetUnitDef(defID int) (callback.UnitDef, bool) {
	var w unitDefWire
	if !s.callInto(methodGetUnitDef, defID, &w) {
		return callback.UnitDef{}, false
	}
	return toUnitDef(w), true
}

func (s *Session) GetUnitDefList() []callback.UnitDef {
	var ws []unitDefWire
	if !s.callInto(methodGetUnitDefList, nil, &ws) {
		return nil
	}
	out := make([]callback.UnitDef, len(ws))
	for i, w := range ws {
		out[i] = toUnitDef(w)
	}
	return out
}

func (s *Session) GetUnitDefByName(name string) (callback.UnitDef, bool) {
	var w unitDefWire
	if !s.callInto(methodGetUnitDefByName, name, &w) {
		return callback.UnitDef{}, false
	}
	return toUnitDef(w), true
}

func (s *Session) GetUnitPos(unitID int) (emath.Vec2, bool) {
	var pos emath.Vec2
	if !s.callInto(methodGetUnitPos, unitID, &pos) {
		return emath.Vec2{}, false
	}
	return pos, true
}

func (s *Session) GetUnitDefOf(unitID int) (callback.UnitDef, bool) {
	var w unitDefWire
	if !s.callInto(methodGetUnitDefOf, unitID, &w) {
		return callback.UnitDef{}, false
	}
	return toUnitDef(w), true
}

func (s *Session) GetUnitTeam(unitID int) int {
	var team int
	s.callInto(methodGetUnitTeam, unitID, &team)
	return team
}

func (s *Session) GetMyTeam() int {
	var team int
	s.callInto(methodGetMyTeam, nil, &team)
	return team
}

func (s *Session) GetMyAllyTeam() int {
	var team int
	s.callInto(methodGetMyAllyTeam, nil, &team)
	return team
}

type alliedParams struct {
	AllyTeamA int `json:"ally_team_a"`
	AllyTeamB int `json:"ally_team_b"`
}

func (s *Session) IsAllied(allyTeamA, allyTeamB int) bool {
	var allied bool
	s.callInto(methodIsAllied, alliedParams{AllyTeamA: allyTeamA, AllyTeamB: allyTeamB}, &allied)
	return allied
}

func (s *Session) UnitBeingBuilt(unitID int) bool {
	var v bool
	s.callInto(methodUnitBeingBuilt, unitID, &v)
	return v
}

func (s *Session) GetHeightmap() []float64 {
	var v []float64
	s.callInto(methodGetHeightmap, nil, &v)
	return v
}

func (s *Session) GetLOSMap() []float64 {
	var v []float64
	s.callInto(methodGetLOSMap, nil, &v)
	return v
}

func (s *Session) GetMetalMap() []float64 {
	var v []float64
	s.callInto(methodGetMetalMap, nil, &v)
	return v
}

func (s *Session) GetMaxMetal() float64 {
	var v float64
	s.callInto(methodGetMaxMetal, nil, &v)
	return v
}

func (s *Session) GetExtractorRadius() float64 {
	var v float64
	s.callInto(methodGetExtractorRadius, nil, &v)
	return v
}

func (s *Session) MapWidth() int {
	var v int
	s.callInto(methodMapWidth, nil, &v)
	return v
}

func (s *Session) MapHeight() int {
	var v int
	s.callInto(methodMapHeight, nil, &v)
	return v
}

func (s *Session) GetCurrentFrame() int {
	var v int
	s.callInto(methodGetCurrentFrame, nil, &v)
	return v
}

func (s *Session) GetMetal() float64 {
	var v float64
	s.callInto(methodGetMetal, nil, &v)
	return v
}

func (s *Session) GetEnergy() float64 {
	var v float64
	s.callInto(methodGetEnergy, nil, &v)
	return v
}

func (s *Session) GetMetalStorage() float64 {
	var v float64
	s.callInto(methodGetMetalStorage, nil, &v)
	return v
}

func (s *Session) GetEnergyStorage() float64 {
	var v float64
	s.callInto(methodGetEnergyStorage, nil, &v)
	return v
}

func (s *Session) GetMetalIncome() float64 {
	var v float64
	s.callInto(methodGetMetalIncome, nil, &v)
	return v
}

func (s *Session) GetEnergyIncome() float64 {
	var v float64
	s.callInto(methodGetEnergyIncome, nil, &v)
	return v
}

func (s *Session) GetMetalUsage() float64 {
	var v float64
	s.callInto(methodGetMetalUsage, nil, &v)
	return v
}

func (s *Session) GetEnergyUsage() float64 {
	var v float64
	s.callInto(methodGetEnergyUsage, nil, &v)
	return v
}

type canBuildAtParams struct {
	DefID int        `json:"def_id"`
	Pos   emath.Vec2 `json:"pos"`
}

func (s *Session) CanBuildAt(defID int, pos emath.Vec2) bool {
	var v bool
	s.callInto(methodCanBuildAt, canBuildAtParams{DefID: defID, Pos: pos}, &v)
	return v
}

type closestBuildSiteParams struct {
	DefID        int        `json:"def_id"`
	Pos          emath.Vec2 `json:"pos"`
	SearchRadius float64    `json:"search_radius"`
	Grid         float64    `json:"grid"`
}

func (s *Session) ClosestBuildSite(defID int, pos emath.Vec2, searchRadius, grid float64) (emath.Vec2, bool) {
	var site emath.Vec2
	if !s.callInto(methodClosestBuildSite, closestBuildSiteParams{DefID: defID, Pos: pos, SearchRadius: searchRadius, Grid: grid}, &site) {
		return emath.Vec2{}, false
	}
	return site, true
}

type giveOrderParams struct {
	UnitID int         `json:"unit_id"`
	Cmd    commandWire `json:"cmd"`
}

func (s *Session) GiveOrder(unitID int, cmd callback.Command) {
	s.notify(methodGiveOrder, giveOrderParams{UnitID: unitID, Cmd: fromCommand(cmd)})
}

type enemyUnitsParams struct {
	Pos    emath.Vec2 `json:"pos"`
	Radius float64    `json:"radius"`
}

func (s *Session) GetEnemyUnits(pos emath.Vec2, radius float64) []callback.EnemyUnit {
	var ws []enemyUnitWire
	if !s.callInto(methodGetEnemyUnits, enemyUnitsParams{Pos: pos, Radius: radius}, &ws) {
		return nil
	}
	out := make([]callback.EnemyUnit, len(ws))
	for i, w := range ws {
		out[i] = toEnemyUnit(w)
	}
	return out
}

func (s *Session) GetEnemyUnitsInRadarAndLOS() []callback.EnemyUnit {
	var ws []enemyUnitWire
	if !s.callInto(methodGetEnemyUnitsInRadarAndLOS, nil, &ws) {
		return nil
	}
	out := make([]callback.EnemyUnit, len(ws))
	for i, w := range ws {
		out[i] = toEnemyUnit(w)
	}
	return out
}

func (s *Session) GetFriendlyUnits() []int {
	var v []int
	s.callInto(methodGetFriendlyUnits, nil, &v)
	return v
}

type elevationParams struct {
	X float64 `json:"x"`
	Z float64 `json:"z"`
}

func (s *Session) Elevation(x, z float64) float64 {
	var v float64
	s.callInto(methodElevation, elevationParams{X: x, Z: z}, &v)
	return v
}

type textMessageParams struct {
	Msg      string `json:"msg"`
	Priority int    `json:"priority"`
}

func (s *Session) SendTextMessage(msg string, priority int) {
	s.notify(methodSendTextMessage, textMessageParams{Msg: msg, Priority: priority})
}

func (s *Session) GetFilePath(mode callback.FileMode) (string, error) {
	raw, err := s.call(methodGetFilePath, int(mode))
	if err != nil {
		return "", err
	}
	var path string
	if err := json.Unmarshal(raw, &path); err != nil {
		return "", fmt.Errorf("transport: decode result for %s: %w", methodGetFilePath, err)
	}
	return path, nil
}

var _ callback.Engine = (*Session)(nil)

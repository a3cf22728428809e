package transport

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/bklimczak/aaicore/engine/callback"
	emath "github.com/bklimczak/aaicore/engine/math"
	"github.com/gorilla/websocket"
)

// fakeHost is a minimal stand-in for the engine process: it upgrades one
// websocket connection and lets the test script exactly what frames it
// reads and replies with.
type fakeHost struct {
	srv      *httptest.Server
	conn     *websocket.Conn
	received chan Frame
}

func newFakeHost(t *testing.T) *fakeHost {
	upgrader := websocket.Upgrader{}
	h := &fakeHost{received: make(chan Frame, 16)}

	mux := http.NewServeMux()
	mux.HandleFunc("/ai", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		h.conn = conn
		go func() {
			for {
				_, data, err := conn.ReadMessage()
				if err != nil {
					return
				}
				var f Frame
				if err := json.Unmarshal(data, &f); err != nil {
					continue
				}
				h.received <- f
			}
		}()
	})

	h.srv = httptest.NewServer(mux)
	return h
}

func (h *fakeHost) addr() string {
	return strings.TrimPrefix(h.srv.URL, "http://")
}

func (h *fakeHost) reply(f Frame) {
	data, _ := json.Marshal(f)
	h.conn.WriteMessage(websocket.TextMessage, data)
}

func (h *fakeHost) close() {
	h.srv.Close()
}

func dialTestSession(t *testing.T, h *fakeHost) *Session {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	s, err := Dial(ctx, h.addr(), nil)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	return s
}

func TestGetMetalRoundTrip(t *testing.T) {
	h := newFakeHost(t)
	defer h.close()
	s := dialTestSession(t, h)
	defer s.Close()

	go func() {
		req := <-h.received
		if req.Method != methodGetMetal {
			t.Errorf("method = %q, want %q", req.Method, methodGetMetal)
		}
		raw, _ := json.Marshal(123.5)
		h.reply(Frame{Kind: FrameResult, ID: req.ID, Result: raw})
	}()

	got := s.GetMetal()
	if got != 123.5 {
		t.Errorf("GetMetal() = %v, want 123.5", got)
	}
}

func TestGetUnitDefRoundTrip(t *testing.T) {
	h := newFakeHost(t)
	defer h.close()
	s := dialTestSession(t, h)
	defer s.Close()

	go func() {
		req := <-h.received
		var defID int
		json.Unmarshal(req.Params, &defID)
		if defID != 7 {
			t.Errorf("defID = %d, want 7", defID)
		}
		w := unitDefWire{
			ID:         7,
			Name:       "commander",
			MetalCost:  2000,
			CanFly:     false,
			Weapons:    []weaponWire{{Range: 400, MaxDamage: 50, TargetCategories: uint8(callback.TargetsSurface)}},
			IsCommander: true,
		}
		raw, _ := json.Marshal(w)
		h.reply(Frame{Kind: FrameResult, ID: req.ID, Result: raw})
	}()

	def, ok := s.GetUnitDef(7)
	if !ok {
		t.Fatal("GetUnitDef ok = false")
	}
	if def.Name != "commander" || def.MetalCost != 2000 || !def.IsCommander {
		t.Errorf("def = %+v", def)
	}
	if len(def.Weapons) != 1 || def.Weapons[0].TargetCategories != callback.TargetsSurface {
		t.Errorf("weapons = %+v", def.Weapons)
	}
}

func TestGetUnitDefNotFound(t *testing.T) {
	h := newFakeHost(t)
	defer h.close()
	s := dialTestSession(t, h)
	defer s.Close()

	go func() {
		req := <-h.received
		h.reply(Frame{Kind: FrameResult, ID: req.ID, Result: nil})
	}()

	_, ok := s.GetUnitDef(999)
	if ok {
		t.Error("GetUnitDef ok = true, want false for a null result")
	}
}

func TestGiveOrderIsOneWay(t *testing.T) {
	h := newFakeHost(t)
	defer h.close()
	s := dialTestSession(t, h)
	defer s.Close()

	done := make(chan struct{})
	go func() {
		req := <-h.received
		if req.Kind != FrameNotify {
			t.Errorf("kind = %q, want %q", req.Kind, FrameNotify)
		}
		if req.Method != methodGiveOrder {
			t.Errorf("method = %q, want %q", req.Method, methodGiveOrder)
		}
		var p giveOrderParams
		json.Unmarshal(req.Params, &p)
		if p.UnitID != 42 || p.Cmd.Order != int(callback.OrderAttack) || p.Cmd.TargetID != 99 {
			t.Errorf("params = %+v", p)
		}
		close(done)
	}()

	s.GiveOrder(42, callback.Command{Order: callback.OrderAttack, TargetID: 99})

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for notify frame")
	}
}

func TestEventsDeliversTypedEvents(t *testing.T) {
	h := newFakeHost(t)
	defer h.close()
	s := dialTestSession(t, h)
	defer s.Close()

	// wait for the connection to be established before pushing from the
	// host side (h.conn is set from the upgrade handler's goroutine).
	waitForConn(t, h)

	raw, _ := json.Marshal(unitDamagedParams{UnitID: 5, AttackerID: 6, AttackerKnown: true, Damage: 12.5})
	h.reply(Frame{Kind: FrameEvent, Method: string(EventUnitDamaged), Params: raw})

	select {
	case ev := <-s.Events():
		dmg, ok := ev.(UnitDamagedEvent)
		if !ok {
			t.Fatalf("event = %#v, want UnitDamagedEvent", ev)
		}
		if dmg.UnitID != 5 || dmg.AttackerID != 6 || !dmg.AttackerKnown || dmg.Damage != 12.5 {
			t.Errorf("event = %+v", dmg)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
	}
}

func TestEventsChannelClosesOnDisconnect(t *testing.T) {
	h := newFakeHost(t)
	s := dialTestSession(t, h)
	waitForConn(t, h)

	h.close()

	select {
	case _, ok := <-s.Events():
		if ok {
			t.Error("expected events channel to be closed, got a value")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for events channel to close")
	}
	s.Close()
}

func TestCallFailsWhenConnectionClosesMidFlight(t *testing.T) {
	h := newFakeHost(t)
	s := dialTestSession(t, h)
	waitForConn(t, h)

	done := make(chan float64, 1)
	go func() { done <- s.GetMetal() }()

	// drain the in-flight request then sever the connection before replying.
	<-h.received
	h.close()

	select {
	case got := <-done:
		if got != 0 {
			t.Errorf("GetMetal() = %v, want 0 after disconnect", got)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("call never returned after disconnect")
	}
	s.Close()
}

func TestCanBuildAtAndClosestBuildSite(t *testing.T) {
	h := newFakeHost(t)
	defer h.close()
	s := dialTestSession(t, h)
	defer s.Close()

	go func() {
		req := <-h.received
		var p canBuildAtParams
		json.Unmarshal(req.Params, &p)
		if p.DefID != 3 || p.Pos != (emath.Vec2{X: 10, Y: 20}) {
			t.Errorf("params = %+v", p)
		}
		raw, _ := json.Marshal(true)
		h.reply(Frame{Kind: FrameResult, ID: req.ID, Result: raw})

		req = <-h.received
		var p2 closestBuildSiteParams
		json.Unmarshal(req.Params, &p2)
		raw2, _ := json.Marshal(emath.Vec2{X: 11, Y: 21})
		h.reply(Frame{Kind: FrameResult, ID: req.ID, Result: raw2})
	}()

	if !s.CanBuildAt(3, emath.Vec2{X: 10, Y: 20}) {
		t.Error("CanBuildAt = false, want true")
	}
	site, ok := s.ClosestBuildSite(3, emath.Vec2{X: 10, Y: 20}, 100, 8)
	if !ok || site != (emath.Vec2{X: 11, Y: 21}) {
		t.Errorf("ClosestBuildSite = %v, %v", site, ok)
	}
}

func waitForConn(t *testing.T, h *fakeHost) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for h.conn == nil {
		if time.Now().After(deadline) {
			t.Fatal("timed out waiting for host connection")
		}
		time.Sleep(time.Millisecond)
	}
}

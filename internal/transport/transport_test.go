package transport

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCheckOriginRejectsUnknownOrigin(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/ws", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	if upgrader.CheckOrigin(req) {
		t.Fatal("expected unknown origin to be rejected")
	}
}

func TestCheckOriginAllowsLocalhost(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/ws", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	if !upgrader.CheckOrigin(req) {
		t.Fatal("expected localhost origin to be allowed")
	}
}

func TestActionPayloadToGameActionSetsTargetPosition(t *testing.T) {
	p := ActionPayload{Type: "move", UnitID: "u1", Target: &Vec2{X: 12, Y: 34}}
	a := p.toGameAction(7, 1000)

	if !a.HasTargetPos {
		t.Fatal("expected HasTargetPos to be set when Target is present")
	}
	if a.TargetX != 12 || a.TargetY != 34 {
		t.Fatalf("expected target (12,34), got (%v,%v)", a.TargetX, a.TargetY)
	}
	if a.UnitID != "u1" {
		t.Fatalf("expected unit id to carry through, got %q", a.UnitID)
	}
	if a.ClientTick != 7 || a.Timestamp != 1000 {
		t.Fatalf("expected clientTick/timestamp to carry through, got %d/%d", a.ClientTick, a.Timestamp)
	}
}

func TestActionPayloadToGameActionWithoutTargetLeavesHasTargetPosFalse(t *testing.T) {
	p := ActionPayload{Type: "holdPosition", UnitID: "u1"}
	a := p.toGameAction(0, 0)

	if a.HasTargetPos {
		t.Fatal("expected HasTargetPos false when no Target provided")
	}
}

func TestHubRegisterUnregisterTracksClients(t *testing.T) {
	h := &Hub{clients: make(map[string]map[string]*client)}

	c := &client{roomID: "room1", playerID: "p1"}
	h.register(c)

	h.mu.RLock()
	_, ok := h.clients["room1"]["p1"]
	h.mu.RUnlock()
	if !ok {
		t.Fatal("expected client to be registered")
	}

	h.unregister(c)

	h.mu.RLock()
	_, stillThere := h.clients["room1"]
	h.mu.RUnlock()
	if stillThere {
		t.Fatal("expected empty room to be pruned after unregister")
	}
}

package scheduler

import (
	"testing"

	"rts-arena-server/internal/game"
)

type fakeQueue struct {
	items []game.PendingAction
}

func (f *fakeQueue) DrainAll() []game.PendingAction {
	out := f.items
	f.items = nil
	return out
}

func TestDrainPendingOrdersByTimestampThenPlayerID(t *testing.T) {
	s := &Scheduler{
		inputs: map[string]InputQueue{
			"p2": &fakeQueue{items: []game.PendingAction{
				{PlayerID: "p2", Timestamp: 100},
			}},
			"p1": &fakeQueue{items: []game.PendingAction{
				{PlayerID: "p1", Timestamp: 100},
				{PlayerID: "p1", Timestamp: 50},
			}},
		},
	}

	got := s.drainPending()
	if len(got) != 3 {
		t.Fatalf("expected 3 pending actions, got %d", len(got))
	}
	if got[0].Timestamp != 50 {
		t.Fatalf("expected earliest timestamp first, got %+v", got[0])
	}
	if got[1].Timestamp != 100 || got[1].PlayerID != "p1" {
		t.Fatalf("expected p1 before p2 on tied timestamp, got %+v", got[1])
	}
	if got[2].PlayerID != "p2" {
		t.Fatalf("expected p2 last, got %+v", got[2])
	}
}

func TestDrainAndTickHoldsBackFutureDeclaredActions(t *testing.T) {
	engine, err := game.NewEngine(20, 20, 40, 1, game.DifficultyNormal)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	engine.AddPlayer("p1", "Host", game.TeamHost)
	engine.AddPlayer("p2", "Guest", game.TeamGuest)
	engine.Initialize()

	queue := &fakeQueue{items: []game.PendingAction{
		{PlayerID: "p1", Timestamp: 5, Action: game.Action{Type: game.ActionHoldPosition, ClientTick: 0}},
		{PlayerID: "p1", Timestamp: 10, Action: game.Action{Type: game.ActionPatrol, ClientTick: 2}},
	}}
	s := &Scheduler{
		engine: engine,
		inputs: map[string]InputQueue{"p1": queue},
	}

	// Tick 0: only the ClientTick:0 action is due; the ClientTick:2 one
	// is declared for a tick that hasn't arrived and must be held back.
	s.drainAndTick()
	if len(s.held) != 1 || s.held[0].Action.ClientTick != 2 {
		t.Fatalf("expected the tick-2 action held back after tick 0, got %+v", s.held)
	}

	// Tick 1: engine.State().Tick is now 1, still short of ClientTick 2.
	s.drainAndTick()
	if len(s.held) != 1 || s.held[0].Action.ClientTick != 2 {
		t.Fatalf("expected the tick-2 action still held after tick 1, got %+v", s.held)
	}

	// Tick 2: engine.State().Tick is now 2, the held action's declared
	// tick has arrived and must be released this cycle.
	s.drainAndTick()
	if len(s.held) != 0 {
		t.Fatalf("expected held action released once its declared tick arrived, still held: %+v", s.held)
	}
}

func TestPauseResumeTogglesState(t *testing.T) {
	s := &Scheduler{}
	if s.isPaused() {
		t.Fatal("expected not paused initially")
	}
	s.Pause()
	if !s.isPaused() {
		t.Fatal("expected paused after Pause")
	}
	s.Resume()
	if s.isPaused() {
		t.Fatal("expected not paused after Resume")
	}
}

package room

import (
	"testing"
	"time"

	"rts-arena-server/internal/config"
	"rts-arena-server/internal/game"
)

func testManager() *Manager {
	m := NewManager(config.Load())
	return m
}

func TestCreateSeatsHost(t *testing.T) {
	m := testManager()
	defer m.Close()

	r, err := m.Create("host1", "Alice", game.DifficultyNormal, false)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if r.Status != StatusWaiting {
		t.Fatalf("expected waiting status, got %s", r.Status)
	}
	if r.HostID != "host1" {
		t.Fatalf("expected host1 seated, got %s", r.HostID)
	}
	if len(r.Seats) != 1 {
		t.Fatalf("expected 1 seat, got %d", len(r.Seats))
	}
}

func TestJoinAddsGuestAndRejectsThird(t *testing.T) {
	m := testManager()
	defer m.Close()

	r, _ := m.Create("host1", "Alice", game.DifficultyNormal, false)
	if _, err := m.Join(r.ID, "guest1", "Bob"); err != nil {
		t.Fatalf("Join: %v", err)
	}
	if len(r.Seats) != 2 {
		t.Fatalf("expected 2 seats, got %d", len(r.Seats))
	}

	if _, err := m.Join(r.ID, "guest2", "Carol"); err == nil {
		t.Fatal("expected rejection of a third seat")
	}
}

func TestJoinIsIdempotentForSameID(t *testing.T) {
	m := testManager()
	defer m.Close()

	r, _ := m.Create("host1", "Alice", game.DifficultyNormal, false)
	m.Join(r.ID, "guest1", "Bob")
	if _, err := m.Join(r.ID, "guest1", "Bob"); err != nil {
		t.Fatalf("expected idempotent rejoin to succeed, got %v", err)
	}
	if len(r.Seats) != 2 {
		t.Fatalf("expected still 2 seats after rejoin, got %d", len(r.Seats))
	}
}

func TestLeavePromotesNextHost(t *testing.T) {
	m := testManager()
	defer m.Close()

	r, _ := m.Create("host1", "Alice", game.DifficultyNormal, false)
	m.Join(r.ID, "guest1", "Bob")

	if err := m.Leave(r.ID, "host1"); err != nil {
		t.Fatalf("Leave: %v", err)
	}
	if r.HostID != "guest1" {
		t.Fatalf("expected guest1 promoted to host, got %s", r.HostID)
	}
	if r.Seats["guest1"].Team != game.TeamHost {
		t.Fatalf("expected promoted seat's team to be host, got %s", r.Seats["guest1"].Team)
	}
}

func TestLeaveEmptiesRoomRemovesIt(t *testing.T) {
	m := testManager()
	defer m.Close()

	r, _ := m.Create("host1", "Alice", game.DifficultyNormal, false)
	m.Leave(r.ID, "host1")

	if _, err := m.Get(r.ID); err == nil {
		t.Fatal("expected room to be removed once empty")
	}
}

func TestStartRequiresAllReadyAndHost(t *testing.T) {
	m := testManager()
	defer m.Close()

	r, _ := m.Create("host1", "Alice", game.DifficultyNormal, false)
	m.Join(r.ID, "guest1", "Bob")

	if err := m.Start(r.ID, "host1"); err == nil {
		t.Fatal("expected start to fail before both seats are ready")
	}

	m.SetReady(r.ID, "host1", true)
	m.SetReady(r.ID, "guest1", true)

	if err := m.Start(r.ID, "guest1"); err == nil {
		t.Fatal("expected start to be rejected from a non-host")
	}

	if err := m.Start(r.ID, "host1"); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if r.Status != StatusPlaying {
		t.Fatalf("expected playing status, got %s", r.Status)
	}
	if r.Engine == nil || r.Scheduler == nil {
		t.Fatal("expected engine and scheduler to be instantiated")
	}
	r.Scheduler.Stop()
}

func TestStartAllowsSingleSeatWithAISlot(t *testing.T) {
	m := testManager()
	defer m.Close()

	r, _ := m.Create("host1", "Alice", game.DifficultyEasy, true)
	m.SetReady(r.ID, "host1", true)

	if err := m.Start(r.ID, "host1"); err != nil {
		t.Fatalf("Start: %v", err)
	}
	r.Scheduler.Stop()
}

func TestSubmitPushesIntoSeatQueue(t *testing.T) {
	m := testManager()
	defer m.Close()

	r, _ := m.Create("host1", "Alice", game.DifficultyNormal, true)
	m.SetReady(r.ID, "host1", true)
	if err := m.Start(r.ID, "host1"); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer r.Scheduler.Stop()

	err := m.Submit(r.ID, "host1", game.Action{Type: game.ActionHoldPosition}, time.Now().UnixMilli())
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	q := r.inputQueues["host1"]
	if q.Len() != 1 {
		t.Fatalf("expected 1 queued action, got %d", q.Len())
	}
}

package anticheat

import (
	"testing"
	"time"

	"rts-arena-server/internal/game"
)

func TestObserveActionFlagsSustainedRate(t *testing.T) {
	m := New()
	base := time.Unix(1000, 0)

	var last *Finding
	for i := 0; i < 61; i++ {
		last = m.ObserveAction("p1", base)
	}
	if last == nil || last.Severity != Confirmed {
		t.Fatalf("expected confirmed finding after 61 actions in one second, got %v", last)
	}
}

func TestObserveActionAllowsNormalRate(t *testing.T) {
	m := New()
	base := time.Unix(2000, 0)
	for i := 0; i < 5; i++ {
		if f := m.ObserveAction("p1", base.Add(time.Duration(i)*time.Second)); f != nil {
			t.Fatalf("expected no finding for low rate, got %v", f)
		}
	}
}

func TestObserveResourceDriftThresholds(t *testing.T) {
	m := New()
	if f := m.ObserveResourceDrift("p1", 100, 99); f != nil {
		t.Fatalf("drift of 1 should not flag, got %v", f)
	}
	if f := m.ObserveResourceDrift("p1", 100, 90); f == nil || f.Severity != Suspicious {
		t.Fatalf("drift of 10 should be suspicious, got %v", f)
	}
	if f := m.ObserveResourceDrift("p1", 200, 100); f == nil || f.Severity != Confirmed {
		t.Fatalf("drift of 100 should be confirmed, got %v", f)
	}
}

func TestObserveUnitStatsFlagsOutOfBandHP(t *testing.T) {
	m := New()
	u := game.NewUnit("u1", "p1", game.UnitSoldier, 0, 0)
	u.MaxHP = game.UnitSpecs[game.UnitSoldier].HP * 2

	f := m.ObserveUnitStats(u)
	if f == nil || f.Severity != Confirmed {
		t.Fatalf("expected confirmed finding for doubled hp, got %v", f)
	}
}

func TestObserveUnitStatsAllowsBaseline(t *testing.T) {
	m := New()
	u := game.NewUnit("u1", "p1", game.UnitSoldier, 0, 0)
	if f := m.ObserveUnitStats(u); f != nil {
		t.Fatalf("baseline stats should not flag, got %v", f)
	}
}

func TestObserveOutOfMapFlagsNegativeAndOverflow(t *testing.T) {
	m := New()
	if f := m.ObserveOutOfMap("p1", -1, 10, 2400, 2400); f == nil || f.Severity != Confirmed {
		t.Fatalf("expected confirmed finding for negative coordinate, got %v", f)
	}
	if f := m.ObserveOutOfMap("p1", 10, 10, 2400, 2400); f != nil {
		t.Fatalf("in-bounds position should not flag, got %v", f)
	}
}

func TestConfirmedCountAccumulates(t *testing.T) {
	m := New()
	m.ObserveOutOfMap("p1", -1, -1, 100, 100)
	m.ObserveResourceDrift("p1", 500, 100)
	if got := m.ConfirmedCount(); got != 2 {
		t.Fatalf("expected 2 confirmed findings, got %d", got)
	}
}

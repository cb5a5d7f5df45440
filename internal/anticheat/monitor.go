// Package anticheat observes action traffic and reported entity state for
// invariant violations without ever mutating game state itself, per
// spec.md §4.E.
package anticheat

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"rts-arena-server/internal/game"
)

// Severity mirrors game.EventSeverity so anticheat callers don't need to
// import the game package just for the enum, while still funneling into
// the same event log representation.
type Severity = game.EventSeverity

const (
	Suspicious = game.SeveritySuspicious
	Confirmed  = game.SeverityConfirmed
)

// Finding is one observation the monitor has raised.
type Finding struct {
	PlayerID string
	Severity Severity
	Reason   string
}

// actionWindow tracks a player's accepted-action rate over the trailing
// minute using a coarse per-second bucket ring. It is independent of the
// validator's token-bucket rate limiter, so anti-cheat thresholds (30/60
// per minute) stay decoupled from the hard rate-limit gate (300/minute).
type actionWindow struct {
	mu      sync.Mutex
	buckets [60]int
	lastSec int64
}

func (w *actionWindow) record(now time.Time) (perMinute int) {
	w.mu.Lock()
	defer w.mu.Unlock()

	sec := now.Unix()
	if w.lastSec == 0 {
		w.lastSec = sec
	}
	elapsed := sec - w.lastSec
	if elapsed > 0 {
		if elapsed >= 60 {
			w.buckets = [60]int{}
		} else {
			for i := int64(0); i < elapsed; i++ {
				w.buckets[(w.lastSec+i+1)%60] = 0
			}
		}
		w.lastSec = sec
	}
	w.buckets[sec%60]++

	total := 0
	for _, c := range w.buckets {
		total += c
	}
	return total
}

// Monitor accumulates per-player observation state. It is safe for
// concurrent use from the validator's worker and the tick worker.
type Monitor struct {
	mu             sync.Mutex
	windows        map[string]*actionWindow
	confirmedCount atomic.Int64
}

// New returns an empty monitor. State is keyed by player id; the transport
// hub shares one monitor across all rooms.
func New() *Monitor {
	return &Monitor{windows: make(map[string]*actionWindow)}
}

func (m *Monitor) windowFor(playerID string) *actionWindow {
	m.mu.Lock()
	defer m.mu.Unlock()
	w, ok := m.windows[playerID]
	if !ok {
		w = &actionWindow{}
		m.windows[playerID] = w
	}
	return w
}

// ObserveAction records one accepted action and checks the sustained-rate
// thresholds: >30/minute suspicious, >60/minute confirmed.
func (m *Monitor) ObserveAction(playerID string, now time.Time) *Finding {
	perMinute := m.windowFor(playerID).record(now)
	switch {
	case perMinute > 60:
		m.confirmedCount.Add(1)
		return &Finding{PlayerID: playerID, Severity: Confirmed, Reason: fmt.Sprintf("sustained %d actions/minute", perMinute)}
	case perMinute > 30:
		return &Finding{PlayerID: playerID, Severity: Suspicious, Reason: fmt.Sprintf("sustained %d actions/minute", perMinute)}
	default:
		return nil
	}
}

// ObserveResourceDrift compares a client-asserted resource value against
// the server's authoritative one. Only meaningful if a transport ever
// trusts a client-reported value for display reconciliation; the
// authoritative simulation itself never reads it.
func (m *Monitor) ObserveResourceDrift(playerID string, clientAsserted, serverValue int) *Finding {
	drift := clientAsserted - serverValue
	if drift < 0 {
		drift = -drift
	}
	switch {
	case drift > 50:
		m.confirmedCount.Add(1)
		return &Finding{PlayerID: playerID, Severity: Confirmed, Reason: fmt.Sprintf("resource drift %d", drift)}
	case drift > 5:
		return &Finding{PlayerID: playerID, Severity: Suspicious, Reason: fmt.Sprintf("resource drift %d", drift)}
	default:
		return nil
	}
}

// ObserveUnitStats checks a unit's live stats against its variant baseline
// tolerance: 1.5x hp/speed, 2x damage/range.
func (m *Monitor) ObserveUnitStats(u *game.Unit) *Finding {
	spec, ok := game.UnitSpecs[u.Variant]
	if !ok {
		return nil
	}
	switch {
	case float64(u.MaxHP) > 1.5*float64(spec.HP):
		m.confirmedCount.Add(1)
		return &Finding{PlayerID: u.Owner, Severity: Confirmed, Reason: fmt.Sprintf("unit %s hp %d exceeds 1.5x baseline %d", u.ID, u.MaxHP, spec.HP)}
	case float64(u.AttackDamage) > 2*float64(spec.Damage):
		m.confirmedCount.Add(1)
		return &Finding{PlayerID: u.Owner, Severity: Confirmed, Reason: fmt.Sprintf("unit %s damage %d exceeds 2x baseline %d", u.ID, u.AttackDamage, spec.Damage)}
	case u.AttackRange > 2*spec.Range && spec.Range > 0:
		m.confirmedCount.Add(1)
		return &Finding{PlayerID: u.Owner, Severity: Confirmed, Reason: fmt.Sprintf("unit %s range %.0f exceeds 2x baseline %.0f", u.ID, u.AttackRange, spec.Range)}
	case u.MoveSpeed > 1.5*spec.MoveSpeed:
		m.confirmedCount.Add(1)
		return &Finding{PlayerID: u.Owner, Severity: Confirmed, Reason: fmt.Sprintf("unit %s speed %.2f exceeds 1.5x baseline %.2f", u.ID, u.MoveSpeed, spec.MoveSpeed)}
	default:
		return nil
	}
}

// ObserveOutOfMap flags any entity position outside the map's pixel
// bounds as confirmed cheating; a legitimately simulated entity can never
// leave bounds.
func (m *Monitor) ObserveOutOfMap(ownerID string, x, y float64, widthPx, heightPx int) *Finding {
	if x < 0 || y < 0 || x > float64(widthPx) || y > float64(heightPx) {
		m.confirmedCount.Add(1)
		return &Finding{PlayerID: ownerID, Severity: Confirmed, Reason: fmt.Sprintf("entity position (%.0f,%.0f) out of map bounds", x, y)}
	}
	return nil
}

// ConfirmedCount reports how many confirmed-severity findings this monitor
// has raised over its lifetime.
func (m *Monitor) ConfirmedCount() int64 {
	return m.confirmedCount.Load()
}

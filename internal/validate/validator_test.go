package validate

import (
	"testing"
	"time"

	"rts-arena-server/internal/game"
	"rts-arena-server/internal/mapgen"
)

func newTestState(t *testing.T) (*game.GameState, *game.Player) {
	t.Helper()
	grid, _, err := mapgen.Generate(20, 20, 40, 1)
	if err != nil {
		t.Fatalf("mapgen.Generate: %v", err)
	}
	state := game.NewGameState(grid, game.DifficultyNormal)
	p := game.NewPlayer("p1", "Alice", game.TeamHost)
	p.Resources.Gold = 1000
	p.Resources.Wood = 1000
	p.Resources.Supply = 5
	p.Resources.MaxSupply = 20
	state.AddPlayer(p)
	return state, p
}

func TestValidateRejectsUnknownActionType(t *testing.T) {
	state, p := newTestState(t)
	v := New()
	res := v.Validate(state, p.ID, game.Action{Type: "bogus"}, time.Now())
	if res.Valid {
		t.Fatal("expected rejection for unknown action type")
	}
}

func TestValidateRejectsMoveWithoutUnitID(t *testing.T) {
	state, p := newTestState(t)
	v := New()
	res := v.Validate(state, p.ID, game.Action{Type: game.ActionMove}, time.Now())
	if res.Valid {
		t.Fatal("expected rejection for missing unitId")
	}
}

func TestValidateRejectsUnownedUnit(t *testing.T) {
	state, p := newTestState(t)
	other := game.NewPlayer("p2", "Bob", game.TeamGuest)
	state.AddPlayer(other)
	u := game.NewUnit("u1", other.ID, game.UnitSoldier, 100, 100)
	state.Units[u.ID] = u

	v := New()
	res := v.Validate(state, p.ID, game.Action{Type: game.ActionMove, UnitID: u.ID, TargetX: 50, TargetY: 50}, time.Now())
	if res.Valid {
		t.Fatal("expected rejection for unit not owned by sender")
	}
}

func TestValidateAcceptsWellFormedMove(t *testing.T) {
	state, p := newTestState(t)
	u := game.NewUnit("u1", p.ID, game.UnitSoldier, 100, 100)
	state.Units[u.ID] = u

	v := New()
	res := v.Validate(state, p.ID, game.Action{Type: game.ActionMove, UnitID: u.ID, TargetX: 200, TargetY: 200}, time.Now())
	if !res.Valid {
		t.Fatalf("expected move to be accepted, got reason %q", res.Reason)
	}
}

func TestValidateRejectsOutOfBoundsTarget(t *testing.T) {
	state, p := newTestState(t)
	u := game.NewUnit("u1", p.ID, game.UnitSoldier, 100, 100)
	state.Units[u.ID] = u

	v := New()
	res := v.Validate(state, p.ID, game.Action{Type: game.ActionMove, UnitID: u.ID, TargetX: -10, TargetY: 50}, time.Now())
	if res.Valid {
		t.Fatal("expected rejection for out-of-bounds target")
	}
}

func TestValidateRejectsBuildWhenUnaffordable(t *testing.T) {
	state, p := newTestState(t)
	p.Resources.Gold = 0
	p.Resources.Wood = 0

	v := New()
	res := v.Validate(state, p.ID, game.Action{Type: game.ActionBuild, BuildVariant: game.BuildingFarm, TargetX: 400, TargetY: 400}, time.Now())
	if res.Valid {
		t.Fatal("expected rejection for insufficient resources")
	}
	if res.Reason != "Insufficient resources" {
		t.Fatalf("expected exact insufficient-resources reason, got %q", res.Reason)
	}
}

func TestValidateRejectsUpgradeAtCap(t *testing.T) {
	state, p := newTestState(t)
	p.Upgrades.Attack = game.UpgradeCaps["attack"]

	v := New()
	res := v.Validate(state, p.ID, game.Action{Type: game.ActionUpgrade, UpgradeTrack: "attack"}, time.Now())
	if res.Valid {
		t.Fatal("expected rejection for upgrade already at cap")
	}
}

func TestValidateRejectsAttackOnFriendlyUnit(t *testing.T) {
	state, p := newTestState(t)
	attacker := game.NewUnit("u1", p.ID, game.UnitSoldier, 100, 100)
	ally := game.NewUnit("u2", p.ID, game.UnitSoldier, 110, 100)
	state.Units[attacker.ID] = attacker
	state.Units[ally.ID] = ally

	v := New()
	res := v.Validate(state, p.ID, game.Action{Type: game.ActionAttack, UnitID: attacker.ID, TargetEntity: ally.ID}, time.Now())
	if res.Valid {
		t.Fatal("expected rejection for attacking a friendly unit")
	}
}

func TestValidateEnforcesRateLimit(t *testing.T) {
	state, p := newTestState(t)
	u := game.NewUnit("u1", p.ID, game.UnitSoldier, 100, 100)
	state.Units[u.ID] = u

	v := New()
	now := time.Now()
	var lastRejected bool
	for i := 0; i < 20; i++ {
		res := v.Validate(state, p.ID, game.Action{Type: game.ActionMove, UnitID: u.ID, TargetX: 200, TargetY: 200}, now)
		if !res.Valid {
			lastRejected = true
		}
	}
	if !lastRejected {
		t.Fatal("expected rate limit to reject at least one of 20 rapid actions")
	}
}

func TestValidateRejectsStaleTimestamp(t *testing.T) {
	state, p := newTestState(t)
	u := game.NewUnit("u1", p.ID, game.UnitSoldier, 100, 100)
	state.Units[u.ID] = u

	v := New()
	now := time.Now()
	stale := now.Add(-1 * time.Minute).UnixMilli()
	res := v.Validate(state, p.ID, game.Action{Type: game.ActionMove, UnitID: u.ID, TargetX: 200, TargetY: 200, Timestamp: stale}, now)
	if res.Valid {
		t.Fatal("expected rejection for stale timestamp")
	}
}

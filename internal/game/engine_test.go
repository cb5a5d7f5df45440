package game

import "testing"

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := NewEngine(20, 20, 40, 1, DifficultyNormal)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	return e
}

func TestNewEngineBuildsStateForEachSeed(t *testing.T) {
	tests := []struct {
		name string
		seed int64
	}{
		{"seed one", 1},
		{"seed two", 2},
		{"seed three", 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := NewEngine(20, 20, 40, tt.seed, DifficultyNormal)
			if err != nil {
				t.Fatalf("NewEngine: %v", err)
			}
			if e.State() == nil {
				t.Fatal("expected a non-nil game state")
			}
		})
	}
}

func TestAddPlayerSeatsBothTeams(t *testing.T) {
	e := newTestEngine(t)

	host := e.AddPlayer("host1", "Alice", TeamHost)
	guest := e.AddPlayer("guest1", "Bob", TeamGuest)

	if host.Team != TeamHost {
		t.Errorf("expected host team, got %s", host.Team)
	}
	if guest.Team != TeamGuest {
		t.Errorf("expected guest team, got %s", guest.Team)
	}
	if len(e.State().PlayerOrder) != 2 {
		t.Fatalf("expected 2 players seated, got %d", len(e.State().PlayerOrder))
	}
}

func TestInitializeSpawnsBaseAndWorkerPerPlayer(t *testing.T) {
	e := newTestEngine(t)
	e.AddPlayer("host1", "Alice", TeamHost)
	e.AddPlayer("guest1", "Bob", TeamGuest)

	e.Initialize()

	state := e.State()
	if len(state.Buildings) != 2 {
		t.Fatalf("expected 2 starting bases, got %d", len(state.Buildings))
	}
	if len(state.Units) != 2 {
		t.Fatalf("expected 2 starting workers, got %d", len(state.Units))
	}
	for _, id := range state.PlayerOrder {
		p := state.Players[id]
		if p.Resources.Gold != 200 {
			t.Errorf("expected player %s to start with 200 gold, got %d", id, p.Resources.Gold)
		}
	}
}

func TestInitializeIsIdempotent(t *testing.T) {
	e := newTestEngine(t)
	e.AddPlayer("host1", "Alice", TeamHost)
	e.Initialize()
	e.Initialize()

	if len(e.State().Buildings) != 1 {
		t.Fatalf("expected Initialize to spawn exactly once, got %d buildings", len(e.State().Buildings))
	}
}

func TestTickAdvancesCounterAndRunsWithoutAnOpponent(t *testing.T) {
	e := newTestEngine(t)
	e.AddPlayer("host1", "Alice", TeamHost)
	e.Initialize()

	before := e.State().Tick
	e.Tick()

	if e.State().Tick != before+1 {
		t.Fatalf("expected tick to advance by 1, got %d -> %d", before, e.State().Tick)
	}
}

func TestSnapshotReflectsCurrentTick(t *testing.T) {
	e := newTestEngine(t)
	e.AddPlayer("host1", "Alice", TeamHost)
	e.Initialize()
	e.Tick()
	e.Tick()

	snap := e.Snapshot(1000)
	if snap.Tick != e.State().Tick {
		t.Fatalf("expected snapshot tick %d to match state tick %d", snap.Tick, e.State().Tick)
	}

	latest := e.LatestSnapshot()
	if latest.Tick != snap.Tick {
		t.Fatalf("expected LatestSnapshot to match the just-published snapshot")
	}
}

func TestInjectEliminationMarksPlayerEliminated(t *testing.T) {
	e := newTestEngine(t)
	e.AddPlayer("host1", "Alice", TeamHost)
	e.Initialize()

	e.InjectElimination("host1")

	if !e.State().Players["host1"].Eliminated {
		t.Fatal("expected player to be marked eliminated")
	}
}

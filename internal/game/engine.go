package game

import (
	"fmt"
	"sync"

	"rts-arena-server/internal/mapgen"
	"rts-arena-server/internal/spatial"
)

// Engine owns the canonical GameState for one room and advances it one
// tick at a time. It is driven exclusively by the Tick Scheduler, which is
// the only time source it trusts (spec.md §4.H, §5): tick() never reads a
// wall clock or sleeps.
type Engine struct {
	mu    sync.Mutex
	state *GameState

	grid *spatial.Grid
	// gridIndex maps the spatial index handed back by the grid to the
	// entity id it represents, rebuilt every tick alongside the grid.
	gridIndex []gridEntry

	pool *SnapshotPool

	aiGold map[string]*aiGoldCarry

	events *EventLog

	initialized bool
}

type gridEntry struct {
	id         string
	isBuilding bool
}

// NewEngine constructs an engine over a freshly generated map. width/height
// are tile counts; tileSize and seed come from the room's configuration.
func NewEngine(width, height, tileSize int, seed int64, difficulty Difficulty) (*Engine, error) {
	grid, nodes, err := mapgen.Generate(width, height, tileSize, seed)
	if err != nil {
		return nil, fmt.Errorf("engine: generate map: %w", err)
	}

	state := NewGameState(grid, difficulty)
	for _, n := range nodes {
		kind := ResWood
		if n.Kind == mapgen.ResourceGold {
			kind = ResGold
		}
		state.Resources[n.ID] = &ResourceNode{
			ID:        n.ID,
			Kind:      kind,
			X:         float64(n.X*tileSize + tileSize/2),
			Y:         float64(n.Y*tileSize + tileSize/2),
			Remaining: n.Remaining,
			Max:       n.Max,
		}
	}

	pixelW, pixelH := grid.PixelBounds()
	return &Engine{
		state:  state,
		grid:   spatial.NewGrid(float64(pixelW), float64(pixelH), spatial.DefaultCellSize, 256),
		pool:   NewSnapshotPool(),
		aiGold: make(map[string]*aiGoldCarry),
		events: NewEventLog(),
	}, nil
}

// AddPlayer registers a human player seat at match start.
func (e *Engine) AddPlayer(id, name string, team TeamRole) *Player {
	e.mu.Lock()
	defer e.mu.Unlock()
	p := NewPlayer(id, name, team)
	e.state.AddPlayer(p)
	return p
}

// AddAI registers an AI-controlled seat replacing the guest.
func (e *Engine) AddAI(id, name string, difficulty Difficulty) *Player {
	e.mu.Lock()
	defer e.mu.Unlock()
	p := NewAIPlayer(id, name, difficulty)
	e.state.AddPlayer(p)
	e.aiGold[id] = &aiGoldCarry{}
	return p
}

// Initialize spawns each player's starting base and worker and primes
// supply/fog bookkeeping. Called once by the Room Manager when a room
// transitions from waiting to playing.
func (e *Engine) Initialize() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.initialized {
		return
	}
	e.initialized = true

	pixelW, pixelH := e.state.WidthHeightPixels()
	spawnFractions := []float64{0.15, 0.85}
	for i, id := range e.state.PlayerOrder {
		frac := spawnFractions[i%len(spawnFractions)]
		sx, sy := float64(pixelW)*frac, float64(pixelH)*frac

		base := NewBuilding(e.state.ids.nextBuilding(id), id, BuildingBase, sx, sy, true)
		e.state.Buildings[base.ID] = base

		worker := NewUnit(e.state.ids.nextUnit(id), id, UnitWorker, sx+60, sy)
		e.state.Units[worker.ID] = worker

		p := e.state.Players[id]
		p.RecomputeMaxSupply(0, 1)
		p.Resources.Gold = 200
		p.Resources.Wood = 100
		p.Resources.Supply = 1
		e.state.revealAround(p, sx, sy)
	}
}

// Submit applies a pre-validated action directly to live state. The
// Action Validator has already checked shape/ownership/bounds/cost; Submit
// performs the state mutation (debit, order assignment) the engine alone
// is trusted to do.
func (e *Engine) Submit(playerID string, action Action) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.apply(playerID, action)
}

// Tick advances the simulation by exactly one step, in the fixed order
// required by spec.md §4.C:
//  1. projectiles, 2. buildings, 3. units, 4. death cleanup,
//  5. economy, 6. fog-of-war, 7. win arbiter, 8. tick increment.
func (e *Engine) Tick() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.rebuildSpatialIndex()

	e.advanceProjectiles()
	e.advanceBuildings()
	e.advanceUnits()
	e.cleanupDead()
	e.advanceEconomy()
	e.state.updateFog()
	e.state.runArbiter()

	e.state.Tick++
}

// Snapshot builds a fresh, allocation-independent view of current state
// and publishes it through the lock-free pool so the broadcast goroutine
// never contends with the tick goroutine.
func (e *Engine) Snapshot(timestamp int64) Snapshot {
	e.mu.Lock()
	snap := e.state.BuildSnapshot(timestamp)
	e.mu.Unlock()
	e.pool.Publish(snap)
	return snap
}

// LatestSnapshot returns the most recently published snapshot without
// touching engine state, safe to call from the broadcast goroutine.
func (e *Engine) LatestSnapshot() Snapshot {
	return e.pool.Latest()
}

// State exposes the live GameState for read-mostly callers (Win Arbiter
// inspection, tests, the anti-cheat monitor's comparisons). Callers must
// not mutate it outside the engine's own goroutine.
func (e *Engine) State() *GameState {
	return e.state
}

// InjectElimination marks a player eliminated outside the normal
// zero-bases rule (surrender or disconnect-grace expiry), honored by the
// next Win Arbiter pass, per spec.md §4.F.
func (e *Engine) InjectElimination(playerID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if p, ok := e.state.Players[playerID]; ok {
		p.Eliminated = true
	}
}

// Events exposes the engine's internal event log. The engine itself records
// nothing into it; events appear only when a caller records them.
func (e *Engine) Events() *EventLog {
	return e.events
}

func (e *Engine) rebuildSpatialIndex() {
	e.grid.Clear()
	e.gridIndex = e.gridIndex[:0]
	for _, u := range e.state.Units {
		idx := uint32(len(e.gridIndex))
		e.gridIndex = append(e.gridIndex, gridEntry{id: u.ID})
		e.grid.Insert(idx, u.X, u.Y)
	}
	for _, b := range e.state.Buildings {
		idx := uint32(len(e.gridIndex))
		e.gridIndex = append(e.gridIndex, gridEntry{id: b.ID, isBuilding: true})
		e.grid.Insert(idx, b.X, b.Y)
	}
}

func (e *Engine) nearbyNeighbors(x, y, radius float64, excludeID string) []nearbyEntity {
	candidates := e.grid.QueryRadius(x, y, radius)
	out := make([]nearbyEntity, 0, len(candidates))
	for _, idx := range candidates {
		entry := e.gridIndex[idx]
		if entry.id == excludeID {
			continue
		}
		if entry.isBuilding {
			if b, ok := e.state.Buildings[entry.id]; ok {
				out = append(out, nearbyEntity{X: b.X, Y: b.Y, IsBuilding: true})
			}
		} else if u, ok := e.state.Units[entry.id]; ok {
			out = append(out, nearbyEntity{X: u.X, Y: u.Y})
		}
	}
	return out
}

func (e *Engine) incompleteBuildingObstacles() []obstacleBuilding {
	var out []obstacleBuilding
	for _, b := range e.state.Buildings {
		if !b.Complete() {
			out = append(out, obstacleBuilding{X: b.X, Y: b.Y, Footprint: b.Footprint})
		}
	}
	return out
}

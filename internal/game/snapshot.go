package game

import "sync/atomic"

// UnitView, BuildingView, ProjectileView, and PlayerView are the read-only,
// JSON-serializable projections of live engine entities. They exist so a
// snapshot never aliases mutable engine memory: the tick goroutine keeps
// writing Units/Buildings/Projectiles while a snapshot already handed to
// the broadcast goroutine is being serialized.
type UnitView struct {
	ID      string       `json:"id"`
	Owner   string       `json:"owner"`
	Variant UnitVariant  `json:"variant"`
	X       float64      `json:"x"`
	Y       float64      `json:"y"`
	HP      int          `json:"hp"`
	MaxHP   int          `json:"maxHp"`
	State   CommandState `json:"state"`
}

type BuildingView struct {
	ID       string          `json:"id"`
	Owner    string          `json:"owner"`
	Variant  BuildingVariant `json:"variant"`
	X        float64         `json:"x"`
	Y        float64         `json:"y"`
	HP       int             `json:"hp"`
	MaxHP    int             `json:"maxHp"`
	Progress int             `json:"progress"`
	QueueLen int             `json:"queueLen"`
}

type ProjectileView struct {
	ID   string         `json:"id"`
	Kind ProjectileKind `json:"kind"`
	X    float64        `json:"x"`
	Y    float64        `json:"y"`
}

type PlayerView struct {
	ID        string    `json:"id"`
	Resources Resources `json:"resources"`
	Upgrades  Upgrades  `json:"upgrades"`
}

// Snapshot is the serialized, read-only view of engine state broadcast to
// clients, per spec.md §4.G.
type Snapshot struct {
	Tick        uint64                `json:"tick"`
	Timestamp   int64                 `json:"timestamp"`
	Units       []UnitView            `json:"units"`
	Buildings   []BuildingView        `json:"buildings"`
	Projectiles []ProjectileView      `json:"projectiles"`
	Players     map[string]PlayerView `json:"players"`
	GameOver    bool                  `json:"gameOver"`
	Winner      string                `json:"winner"`
}

// BuildSnapshot copies the state into an independent, allocation-fresh
// Snapshot. timestamp is passed in because the engine never calls a wall
// clock itself (spec.md §5: the scheduler is the only time source).
func (s *GameState) BuildSnapshot(timestamp int64) Snapshot {
	snap := Snapshot{
		Tick:      s.Tick,
		Timestamp: timestamp,
		GameOver:  s.GameOver,
		Winner:    s.Winner,
		Players:   make(map[string]PlayerView, len(s.Players)),
	}
	for _, u := range s.Units {
		snap.Units = append(snap.Units, UnitView{
			ID: u.ID, Owner: u.Owner, Variant: u.Variant,
			X: u.X, Y: u.Y, HP: u.HP, MaxHP: u.MaxHP, State: u.State,
		})
	}
	for _, b := range s.Buildings {
		snap.Buildings = append(snap.Buildings, BuildingView{
			ID: b.ID, Owner: b.Owner, Variant: b.Variant,
			X: b.X, Y: b.Y, HP: b.HP, MaxHP: b.MaxHP,
			Progress: b.Progress, QueueLen: len(b.Queue),
		})
	}
	for _, pr := range s.Projectiles {
		snap.Projectiles = append(snap.Projectiles, ProjectileView{
			ID: pr.ID, Kind: pr.Kind, X: pr.X, Y: pr.Y,
		})
	}
	for id, p := range s.Players {
		snap.Players[id] = PlayerView{ID: id, Resources: p.Resources, Upgrades: p.Upgrades}
	}
	return snap
}

// FilterForPlayer returns a fog-correct copy of full visible only to
// playerID: entities the player owns are always included; others are
// included only if their tile has ever been discovered by that player.
// This is the recommended-default behavior from spec.md §4.G.
func (full Snapshot) FilterForPlayer(playerID string, s *GameState) Snapshot {
	p, ok := s.Players[playerID]
	if !ok {
		return full
	}

	filtered := full
	filtered.Units = nil
	filtered.Buildings = nil
	filtered.Projectiles = nil

	for _, u := range full.Units {
		if u.Owner == playerID || p.HasDiscovered(s.TileIndex(u.X, u.Y)) {
			filtered.Units = append(filtered.Units, u)
		}
	}
	for _, b := range full.Buildings {
		if b.Owner == playerID || p.HasDiscovered(s.TileIndex(b.X, b.Y)) {
			filtered.Buildings = append(filtered.Buildings, b)
		}
	}
	for _, pr := range full.Projectiles {
		if p.HasDiscovered(s.TileIndex(pr.X, pr.Y)) {
			filtered.Projectiles = append(filtered.Projectiles, pr)
		}
	}
	return filtered
}

// SnapshotPool is a lock-free triple buffer decoupling the tick goroutine
// (writer) from the broadcast goroutine (reader): the writer always has a
// free slot to build into while the reader holds the most recently
// published one, so neither ever blocks the other.
type SnapshotPool struct {
	slots      [3]Snapshot
	writeIndex uint32
	readIndex  atomic.Uint32
}

// NewSnapshotPool returns an empty pool.
func NewSnapshotPool() *SnapshotPool {
	return &SnapshotPool{}
}

// Publish stores snap in the next free slot and atomically makes it the
// one Latest returns.
func (pool *SnapshotPool) Publish(snap Snapshot) {
	next := (pool.writeIndex + 1) % 3
	pool.slots[next] = snap
	pool.writeIndex = next
	pool.readIndex.Store(uint32(next))
}

// Latest returns the most recently published snapshot. Safe to call
// concurrently with Publish.
func (pool *SnapshotPool) Latest() Snapshot {
	idx := pool.readIndex.Load()
	return pool.slots[idx]
}

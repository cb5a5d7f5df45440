package game

import (
	"sort"

	"rts-arena-server/internal/mapgen"
)

// GameState is the canonical, mutable simulation state for one room. It is
// owned exclusively by the Engine's tick goroutine; callers only ever see
// read-only snapshots built at broadcast time (see snapshot.go).
type GameState struct {
	Tick uint64

	Map       *mapgen.TileGrid
	TileSize  int

	Players map[string]*Player
	// playerOrder preserves join order so arbitration/tie-breaks and
	// iteration in tests are deterministic rather than map-random.
	PlayerOrder []string

	Units       map[string]*Unit
	Buildings   map[string]*Building
	Projectiles map[string]*Projectile
	Resources   map[string]*ResourceNode

	Difficulty Difficulty

	GameOver bool
	Winner   string // player id, or "" for draw/undecided
	Reason   string

	ids idCounters
}

// NewGameState builds an empty container over the given generated map.
func NewGameState(grid *mapgen.TileGrid, difficulty Difficulty) *GameState {
	return &GameState{
		Map:         grid,
		TileSize:    grid.TileSize,
		Players:     make(map[string]*Player),
		Units:       make(map[string]*Unit),
		Buildings:   make(map[string]*Building),
		Projectiles: make(map[string]*Projectile),
		Resources:   make(map[string]*ResourceNode),
		Difficulty:  difficulty,
	}
}

// AddPlayer registers a player and preserves join order.
func (s *GameState) AddPlayer(p *Player) {
	s.Players[p.ID] = p
	s.PlayerOrder = append(s.PlayerOrder, p.ID)
}

// PlayerUnits returns the live units owned by playerID. Allocates; callers
// on the hot path should prefer iterating s.Units directly when possible.
func (s *GameState) PlayerUnits(playerID string) []*Unit {
	var out []*Unit
	for _, u := range s.Units {
		if u.Owner == playerID {
			out = append(out, u)
		}
	}
	return out
}

// PlayerBuildings returns the live buildings owned by playerID.
func (s *GameState) PlayerBuildings(playerID string) []*Building {
	var out []*Building
	for _, b := range s.Buildings {
		if b.Owner == playerID {
			out = append(out, b)
		}
	}
	return out
}

// CountCompleteBuildings counts a player's finished buildings of the given
// variant, used for supply recomputation and the win arbiter.
func (s *GameState) CountCompleteBuildings(playerID string, variant BuildingVariant) int {
	n := 0
	for _, b := range s.Buildings {
		if b.Owner == playerID && b.Variant == variant && b.Complete() {
			n++
		}
	}
	return n
}

// WidthHeightPixels returns the map's pixel bounds for bounds validation.
func (s *GameState) WidthHeightPixels() (w, h int) {
	return s.Map.PixelBounds()
}

// TileIndex converts a pixel position to a row-major tile index for the
// discovered-tiles set.
func (s *GameState) TileIndex(x, y float64) int {
	tx := int(x) / s.TileSize
	ty := int(y) / s.TileSize
	if tx < 0 {
		tx = 0
	}
	if ty < 0 {
		ty = 0
	}
	if tx >= s.Map.Width {
		tx = s.Map.Width - 1
	}
	if ty >= s.Map.Height {
		ty = s.Map.Height - 1
	}
	return ty*s.Map.Width + tx
}

// Map iteration order in Go is randomized per-run; the determinism
// property (spec.md §8) requires every per-tick pass over units,
// buildings, and projectiles to visit entities in the same order on every
// run given the same state, so every tick-step loop iterates one of these
// sorted id lists instead of ranging over the maps directly.

func (s *GameState) sortedUnitIDs() []string {
	ids := make([]string, 0, len(s.Units))
	for id := range s.Units {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (s *GameState) sortedBuildingIDs() []string {
	ids := make([]string, 0, len(s.Buildings))
	for id := range s.Buildings {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (s *GameState) sortedProjectileIDs() []string {
	ids := make([]string, 0, len(s.Projectiles))
	for id := range s.Projectiles {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

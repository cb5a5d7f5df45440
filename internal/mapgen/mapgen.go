// Package mapgen deterministically builds the tile grid and resource layout
// for a match. Generation is a pure function of (width, height, seed): it
// never touches a shared/global RNG so two calls with the same seed always
// produce byte-identical output, regardless of what else is running in the
// process.
package mapgen

import "fmt"

// TileKind enumerates the terrain kinds a tile can hold.
type TileKind uint8

const (
	TileGrass TileKind = iota
	TileForest
	TileWater
	TileMountain
	TileGold
	TileSand
	TileDirt
)

// Impassable reports whether units/buildings may not occupy this tile.
func (k TileKind) Impassable() bool {
	return k == TileWater || k == TileMountain
}

func (k TileKind) String() string {
	switch k {
	case TileGrass:
		return "grass"
	case TileForest:
		return "forest"
	case TileWater:
		return "water"
	case TileMountain:
		return "mountain"
	case TileGold:
		return "gold"
	case TileSand:
		return "sand"
	case TileDirt:
		return "dirt"
	default:
		return "unknown"
	}
}

// ResourceKind enumerates the two harvestable resource kinds.
type ResourceKind uint8

const (
	ResourceGold ResourceKind = iota
	ResourceWood
)

func (k ResourceKind) String() string {
	if k == ResourceGold {
		return "gold"
	}
	return "wood"
}

// ResourceNode is a harvestable deposit placed on the map.
type ResourceNode struct {
	ID        string
	Kind      ResourceKind
	X, Y      int // tile coordinates
	Remaining int
	Max       int
}

// TileGrid holds terrain kinds in row-major order: Tiles[y*Width+x].
type TileGrid struct {
	Width, Height int
	TileSize      int
	Tiles         []TileKind
}

// At returns the tile kind at tile coordinates (x, y). Out-of-bounds
// coordinates are treated as impassable mountain so callers need not bounds
// check before querying.
func (g *TileGrid) At(x, y int) TileKind {
	if x < 0 || y < 0 || x >= g.Width || y >= g.Height {
		return TileMountain
	}
	return g.Tiles[y*g.Width+x]
}

func (g *TileGrid) set(x, y int, k TileKind) {
	g.Tiles[y*g.Width+x] = k
}

// PixelBounds returns the map's size in pixels.
func (g *TileGrid) PixelBounds() (w, h int) {
	return g.Width * g.TileSize, g.Height * g.TileSize
}

const (
	goldAmountMin   = 1500
	goldAmountMax   = 3000
	forestAmountMin = 800
	forestAmountMax = 1500

	spawnSafeRadius = 3 // 7x7 square: center +/- 3 tiles
)

// lcg is a reproducible linear-congruential generator. Parameters are Knuth's
// 64-bit MMIX constants; the only requirement from the spec is
// that identical seeds produce identical streams, not cryptographic quality.
type lcg struct {
	state uint64
}

func newLCG(seed int64) *lcg {
	// Fold the signed seed into the generator's internal state so that
	// negative seeds are just as reproducible as positive ones.
	return &lcg{state: uint64(seed) ^ 0x9E3779B97F4A7C15}
}

func (r *lcg) next() uint64 {
	r.state = r.state*6364136223846793005 + 1442695040888963407
	return r.state
}

// Intn returns a deterministic value in [0, n).
func (r *lcg) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	return int(r.next() % uint64(n))
}

// Float64 returns a deterministic value in [0, 1).
func (r *lcg) Float64() float64 {
	return float64(r.next()>>11) / float64(1<<53)
}

// ErrMalformedSeed is returned when Generate cannot derive a stream from the
// seed (currently unreachable for int64 seeds, kept for interface parity
// with the spec's "fails only if the seed is malformed" clause).
type ErrMalformedSeed struct{ Seed int64 }

func (e ErrMalformedSeed) Error() string {
	return fmt.Sprintf("mapgen: malformed seed %d", e.Seed)
}

// Generate deterministically builds a tile grid and resource list for the
// given dimensions and seed. Two calls with the same arguments always
// produce identical results.
func Generate(width, height int, tileSize int, seed int64) (*TileGrid, []ResourceNode, error) {
	rng := newLCG(seed)

	grid := &TileGrid{
		Width:    width,
		Height:   height,
		TileSize: tileSize,
		Tiles:    make([]TileKind, width*height),
	}

	spawnA := spawnPoint(width, height, 0.15)
	spawnB := spawnPoint(width, height, 0.85)

	maxIterations := 2 * width * height
	var resources []ResourceNode

	for attempt := 0; attempt < maxIterations; attempt++ {
		paintBaseTerrain(grid, rng)
		forceSpawnSafety(grid, spawnA)
		forceSpawnSafety(grid, spawnB)

		if hasReachableSpawns(grid, spawnA, spawnB) {
			resources = placeResources(grid, rng)
			return grid, resources, nil
		}
		// Contradiction: reset non-spawn tiles and retry with the
		// generator's now-advanced stream (still fully deterministic).
	}

	// Exhausted retries: fall back to an all-grass map so the match can
	// still start; this only happens for pathological tiny maps.
	for i := range grid.Tiles {
		grid.Tiles[i] = TileGrass
	}
	forceSpawnSafety(grid, spawnA)
	forceSpawnSafety(grid, spawnB)
	resources = placeResources(grid, rng)
	return grid, resources, nil
}

func spawnPoint(width, height int, fraction float64) [2]int {
	return [2]int{int(float64(width) * fraction), int(float64(height) * fraction)}
}

// paintBaseTerrain fills every tile from a weighted roll, producing the
// seven terrain kinds spec.md names.
func paintBaseTerrain(grid *TileGrid, rng *lcg) {
	for y := 0; y < grid.Height; y++ {
		for x := 0; x < grid.Width; x++ {
			roll := rng.Intn(1000)
			grid.set(x, y, rollTile(roll))
		}
	}
}

func rollTile(roll int) TileKind {
	switch {
	case roll < 550: // 55% grass, the dominant walkable terrain
		return TileGrass
	case roll < 700: // 15% forest (wood resource carrier)
		return TileForest
	case roll < 800: // 10% sand
		return TileSand
	case roll < 880: // 8% dirt
		return TileDirt
	case roll < 930: // 5% water, impassable
		return TileWater
	case roll < 970: // 4% mountain, impassable
		return TileMountain
	default: // 3% gold-bearing terrain
		return TileGold
	}
}

// forceSpawnSafety guarantees a 7x7 walkable square centered on a spawn
// point, per spec.md §4.A.
func forceSpawnSafety(grid *TileGrid, center [2]int) {
	for dy := -spawnSafeRadius; dy <= spawnSafeRadius; dy++ {
		for dx := -spawnSafeRadius; dx <= spawnSafeRadius; dx++ {
			x, y := center[0]+dx, center[1]+dy
			if x < 0 || y < 0 || x >= grid.Width || y >= grid.Height {
				continue
			}
			grid.set(x, y, TileGrass)
		}
	}
}

// hasReachableSpawns is a cheap placement-contradiction check: both spawn
// squares must be fully walkable (guaranteed by forceSpawnSafety) and more
// than half of all tiles must be walkable. No pathfinding connectivity check
// is made between the two spawns; a roll is rejected only when water and
// mountain cover half the map or more.
func hasReachableSpawns(grid *TileGrid, a, b [2]int) bool {
	walkable := 0
	for _, k := range grid.Tiles {
		if !k.Impassable() {
			walkable++
		}
	}
	return walkable > len(grid.Tiles)/2
}

func placeResources(grid *TileGrid, rng *lcg) []ResourceNode {
	var nodes []ResourceNode
	counter := 0
	for y := 0; y < grid.Height; y++ {
		for x := 0; x < grid.Width; x++ {
			switch grid.At(x, y) {
			case TileGold:
				amount := goldAmountMin + rng.Intn(goldAmountMax-goldAmountMin+1)
				nodes = append(nodes, ResourceNode{
					ID:        fmt.Sprintf("node_gold_%d", counter),
					Kind:      ResourceGold,
					X:         x,
					Y:         y,
					Remaining: amount,
					Max:       amount,
				})
				counter++
			case TileForest:
				amount := forestAmountMin + rng.Intn(forestAmountMax-forestAmountMin+1)
				nodes = append(nodes, ResourceNode{
					ID:        fmt.Sprintf("node_wood_%d", counter),
					Kind:      ResourceWood,
					X:         x,
					Y:         y,
					Remaining: amount,
					Max:       amount,
				})
				counter++
			}
		}
	}
	return nodes
}

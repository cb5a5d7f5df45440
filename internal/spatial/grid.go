// Package spatial provides a cache-efficient uniform grid for broad-phase
// nearest-neighbor queries over map entities (units, buildings).
//
// The grid is pure bookkeeping: it knows nothing about unit/building
// semantics, only opaque entity indices and positions. All structures use
// preallocated slices with integer indices (not pointers) to minimize GC
// pressure and maximize cache locality.
package spatial

import "math"

// DefaultCellSize is the collision/query cell size in pixels.
const DefaultCellSize = 100.0

// Grid is a uniform spatial hash over a rectangular world.
type Grid struct {
	cellSize    float64
	invCellSize float64
	cols, rows  int
	cells       [][]uint32
	scratch     []uint32
}

// NewGrid creates a grid covering worldWidth x worldHeight pixels.
// maxEntities is used only to size the initial per-cell capacity.
func NewGrid(worldWidth, worldHeight, cellSize float64, maxEntities int) *Grid {
	if cellSize <= 0 {
		cellSize = DefaultCellSize
	}
	cols := int(math.Ceil(worldWidth / cellSize))
	rows := int(math.Ceil(worldHeight / cellSize))
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}

	cells := make([][]uint32, cols*rows)
	avgPerCell := maxEntities / len(cells)
	if avgPerCell < 4 {
		avgPerCell = 4
	}
	for i := range cells {
		cells[i] = make([]uint32, 0, avgPerCell)
	}

	return &Grid{
		cellSize:    cellSize,
		invCellSize: 1.0 / cellSize,
		cols:        cols,
		rows:        rows,
		cells:       cells,
		scratch:     make([]uint32, 0, 64),
	}
}

// Clear resets all cells without releasing their backing arrays.
func (g *Grid) Clear() {
	for i := range g.cells {
		g.cells[i] = g.cells[i][:0]
	}
}

func (g *Grid) clampIndex(x, y float64) (col, row int) {
	col = int(x * g.invCellSize)
	row = int(y * g.invCellSize)
	if col < 0 {
		col = 0
	}
	if col >= g.cols {
		col = g.cols - 1
	}
	if row < 0 {
		row = 0
	}
	if row >= g.rows {
		row = g.rows - 1
	}
	return col, row
}

// Insert records entityID at position (x, y). entityID is caller-defined,
// typically the index into the caller's entity slice for the current tick.
func (g *Grid) Insert(entityID uint32, x, y float64) {
	col, row := g.clampIndex(x, y)
	idx := row*g.cols + col
	g.cells[idx] = append(g.cells[idx], entityID)
}

// QueryRadius returns candidate entity IDs from cells overlapping a circle
// of the given radius centered at (cx, cy). Candidates may lie outside the
// exact radius; callers must do a narrow-phase distance check.
//
// The returned slice is reused across calls and must not be retained.
func (g *Grid) QueryRadius(cx, cy, radius float64) []uint32 {
	g.scratch = g.scratch[:0]

	minCol := int((cx - radius) * g.invCellSize)
	maxCol := int((cx + radius) * g.invCellSize)
	minRow := int((cy - radius) * g.invCellSize)
	maxRow := int((cy + radius) * g.invCellSize)

	if minCol < 0 {
		minCol = 0
	}
	if maxCol >= g.cols {
		maxCol = g.cols - 1
	}
	if minRow < 0 {
		minRow = 0
	}
	if maxRow >= g.rows {
		maxRow = g.rows - 1
	}

	for row := minRow; row <= maxRow; row++ {
		base := row * g.cols
		for col := minCol; col <= maxCol; col++ {
			g.scratch = append(g.scratch, g.cells[base+col]...)
		}
	}

	return g.scratch
}

// Dimensions returns the grid's column/row counts and cell size.
func (g *Grid) Dimensions() (cols, rows int, cellSize float64) {
	return g.cols, g.rows, g.cellSize
}

// Stats reports grid occupancy, useful for tuning cell size.
type Stats struct {
	TotalCells     int
	NonEmptyCells  int
	TotalEntities  int
	MaxInCell      int
	AvgPerNonEmpty float64
}

// Stats computes current occupancy statistics.
func (g *Grid) Stats() Stats {
	var total, maxCell, nonEmpty int
	for _, cell := range g.cells {
		n := len(cell)
		total += n
		if n > maxCell {
			maxCell = n
		}
		if n > 0 {
			nonEmpty++
		}
	}
	avg := 0.0
	if nonEmpty > 0 {
		avg = float64(total) / float64(nonEmpty)
	}
	return Stats{
		TotalCells:     len(g.cells),
		NonEmptyCells:  nonEmpty,
		TotalEntities:  total,
		MaxInCell:      maxCell,
		AvgPerNonEmpty: avg,
	}
}

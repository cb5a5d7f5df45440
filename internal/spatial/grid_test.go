package spatial

import "testing"

func TestGridInsertAndQuery(t *testing.T) {
	g := NewGrid(2400, 2400, DefaultCellSize, 64)

	g.Insert(0, 100, 100)
	g.Insert(1, 150, 120)
	g.Insert(2, 2000, 2000)

	candidates := g.QueryRadius(120, 110, 80)

	found := map[uint32]bool{}
	for _, id := range candidates {
		found[id] = true
	}

	if !found[0] || !found[1] {
		t.Fatalf("expected entities 0 and 1 as candidates, got %v", candidates)
	}
	if found[2] {
		t.Fatalf("entity 2 is far away and should not be a candidate: %v", candidates)
	}
}

func TestGridClearResetsCells(t *testing.T) {
	g := NewGrid(1000, 1000, 100, 16)
	g.Insert(0, 50, 50)

	if len(g.QueryRadius(50, 50, 10)) == 0 {
		t.Fatal("expected entity before clear")
	}

	g.Clear()

	if len(g.QueryRadius(50, 50, 10)) != 0 {
		t.Fatal("expected no entities after clear")
	}
}

func TestGridClampsOutOfBoundsPositions(t *testing.T) {
	g := NewGrid(500, 500, 100, 8)

	// Should not panic for negative or overflowing coordinates.
	g.Insert(0, -100, -100)
	g.Insert(1, 10000, 10000)

	cols, rows, cellSize := g.Dimensions()
	if cols <= 0 || rows <= 0 || cellSize <= 0 {
		t.Fatalf("invalid grid dimensions: %d %d %f", cols, rows, cellSize)
	}
}

func TestGridStats(t *testing.T) {
	g := NewGrid(400, 400, 100, 16)
	g.Insert(0, 10, 10)
	g.Insert(1, 15, 15)
	g.Insert(2, 300, 300)

	stats := g.Stats()
	if stats.TotalEntities != 3 {
		t.Fatalf("expected 3 total entities, got %d", stats.TotalEntities)
	}
	if stats.NonEmptyCells != 2 {
		t.Fatalf("expected 2 non-empty cells, got %d", stats.NonEmptyCells)
	}
	if stats.MaxInCell != 2 {
		t.Fatalf("expected max 2 entities in a single cell, got %d", stats.MaxInCell)
	}
}

package mapgen

import "testing"

// TestSeededMapParity verifies the determinism property from spec.md §8:
// two independent generations from the same seed produce byte-identical
// tile grids and the same resource id set.
func TestSeededMapParity(t *testing.T) {
	gridA, resA, err := Generate(60, 60, 40, 424242)
	if err != nil {
		t.Fatalf("generate A: %v", err)
	}
	gridB, resB, err := Generate(60, 60, 40, 424242)
	if err != nil {
		t.Fatalf("generate B: %v", err)
	}

	if len(gridA.Tiles) != len(gridB.Tiles) {
		t.Fatalf("tile count mismatch: %d vs %d", len(gridA.Tiles), len(gridB.Tiles))
	}
	for i := range gridA.Tiles {
		if gridA.Tiles[i] != gridB.Tiles[i] {
			t.Fatalf("tile %d mismatch: %v vs %v", i, gridA.Tiles[i], gridB.Tiles[i])
		}
	}

	if len(resA) != len(resB) {
		t.Fatalf("resource count mismatch: %d vs %d", len(resA), len(resB))
	}
	idsA := map[string]bool{}
	for _, r := range resA {
		idsA[r.ID] = true
	}
	for _, r := range resB {
		if !idsA[r.ID] {
			t.Fatalf("resource id %s present in B but not A", r.ID)
		}
	}
}

func TestDifferentSeedsDiffer(t *testing.T) {
	gridA, _, _ := Generate(60, 60, 40, 1)
	gridB, _, _ := Generate(60, 60, 40, 2)

	same := true
	for i := range gridA.Tiles {
		if gridA.Tiles[i] != gridB.Tiles[i] {
			same = false
			break
		}
	}
	if same {
		t.Fatal("expected different seeds to usually produce different terrain")
	}
}

func TestSpawnSafetySquares(t *testing.T) {
	grid, _, err := Generate(60, 60, 40, 7)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	for _, frac := range []float64{0.15, 0.85} {
		cx, cy := int(60*frac), int(60*frac)
		for dy := -3; dy <= 3; dy++ {
			for dx := -3; dx <= 3; dx++ {
				kind := grid.At(cx+dx, cy+dy)
				if kind.Impassable() {
					t.Fatalf("spawn safety square tile (%d,%d) is impassable: %v", cx+dx, cy+dy, kind)
				}
			}
		}
	}
}

func TestResourceAmountsWithinRange(t *testing.T) {
	_, resources, err := Generate(60, 60, 40, 99)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	for _, r := range resources {
		switch r.Kind {
		case ResourceGold:
			if r.Max < 1500 || r.Max > 3000 {
				t.Fatalf("gold node %s amount %d out of [1500,3000]", r.ID, r.Max)
			}
		case ResourceWood:
			if r.Max < 800 || r.Max > 1500 {
				t.Fatalf("wood node %s amount %d out of [800,1500]", r.ID, r.Max)
			}
		}
	}
}

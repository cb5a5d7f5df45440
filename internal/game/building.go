package game

// ProductionItem is one queued unit-production order, FIFO within its
// building.
type ProductionItem struct {
	Variant     UnitVariant
	ElapsedTick int
}

// Building is a stationary entity owned by a player.
type Building struct {
	ID      string
	Owner   string
	Variant BuildingVariant

	X, Y      float64
	Footprint float64

	HP, MaxHP int

	// Progress is 0-100; below 100 the building cannot produce or shoot,
	// per the construction invariant.
	Progress int

	// constructionExact accumulates fractional build progress so that
	// per-tick increments below 1 still add up; Progress is its floor.
	constructionExact float64

	Queue []ProductionItem

	RallyX, RallyY float64
	HasRally       bool

	UnderAttack bool

	// TowerCooldown counts down between auto-fire shots (tower only).
	TowerCooldown int
}

// NewBuilding constructs a building. complete=true spawns it finished at
// full hp (match-start buildings); complete=false starts it at 10% hp and
// 0 progress (build action).
func NewBuilding(id, owner string, variant BuildingVariant, x, y float64, complete bool) *Building {
	spec := BuildingSpecs[variant]
	b := &Building{
		ID:        id,
		Owner:     owner,
		Variant:   variant,
		X:         x,
		Y:         y,
		Footprint: spec.Footprint,
		MaxHP:     spec.HP,
	}
	if complete {
		b.HP = spec.HP
		b.Progress = 100
	} else {
		b.HP = spec.HP / 10
		if b.HP < 1 {
			b.HP = 1
		}
		b.Progress = 0
	}
	return b
}

// Dead reports whether the building should be removed this tick.
func (b *Building) Dead() bool {
	return b.HP <= 0
}

// Complete reports whether the building can produce units or shoot.
func (b *Building) Complete() bool {
	return b.Progress >= 100
}

// AdvanceConstruction applies one tick of build progress, per spec.md
// §4.C step 2: "+100/(buildTime*60) per tick". Returns true the tick it
// crosses into completion.
func (b *Building) AdvanceConstruction() (justCompleted bool) {
	if b.Complete() {
		return false
	}
	spec := BuildingSpecs[b.Variant]
	before := b.Progress
	b.constructionExact += 100.0 / (spec.BuildSeconds * 60.0)
	b.Progress = int(b.constructionExact)
	if b.Progress >= 100 {
		b.Progress = 100
		b.HP = b.MaxHP
	} else {
		// hp scales linearly with progress while under construction.
		b.HP = b.MaxHP * b.Progress / 100
		if b.HP < 1 {
			b.HP = 1
		}
	}
	return before < 100 && b.Progress >= 100
}

// Enqueue appends a production order, debiting happens in the caller
// (Engine) at submission time per the production accounting rule.
func (b *Building) Enqueue(variant UnitVariant) {
	b.Queue = append(b.Queue, ProductionItem{Variant: variant})
}

// AdvanceQueue decrements the front item's timer and, on completion, pops
// and returns it.
func (b *Building) AdvanceQueue() (completed *ProductionItem) {
	if len(b.Queue) == 0 {
		return nil
	}
	front := &b.Queue[0]
	front.ElapsedTick++
	spec := UnitSpecs[front.Variant]
	if front.ElapsedTick >= spec.ProduceTicks {
		item := b.Queue[0]
		b.Queue = b.Queue[1:]
		return &item
	}
	return nil
}

// SpawnPoint returns where a completed unit should appear: the rally point
// if set, otherwise the building's edge.
func (b *Building) SpawnPoint() (x, y float64) {
	if b.HasRally {
		return b.RallyX, b.RallyY
	}
	return b.X + b.Footprint/2 + 10, b.Y
}

package game

import (
	"fmt"
	"sync/atomic"
)

// idCounters hands out monotonically increasing, per-kind suffixes so
// entity handles stay short and human-readable in logs while remaining
// unique within a room for the lifetime of its engine.
type idCounters struct {
	units       uint64
	buildings   uint64
	projectiles uint64
}

func (c *idCounters) nextUnit(owner string) string {
	n := atomic.AddUint64(&c.units, 1)
	return fmt.Sprintf("unit_%s_%d", owner, n)
}

func (c *idCounters) nextBuilding(owner string) string {
	n := atomic.AddUint64(&c.buildings, 1)
	return fmt.Sprintf("bldg_%s_%d", owner, n)
}

func (c *idCounters) nextProjectile() string {
	n := atomic.AddUint64(&c.projectiles, 1)
	return fmt.Sprintf("proj_%d", n)
}

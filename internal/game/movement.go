package game

import (
	"math"

	"rts-arena-server/internal/mapgen"
)

// nearbyEntity is a resolved (already distance-filtered by the caller's
// spatial-index query) obstacle for steering purposes.
type nearbyEntity struct {
	X, Y       float64
	IsBuilding bool
}

// obstacleBuilding is an incomplete building whose footprint units may not
// step into.
type obstacleBuilding struct {
	X, Y, Footprint float64
}

// headingOffsets are the alternate headings tried, in order, when the
// straight-line candidate step is rejected: none, then +/-45deg, then
// +/-90deg, per spec.md §4.C "Collision avoidance".
var headingOffsets = []float64{0, math.Pi / 4, -math.Pi / 4, math.Pi / 2, -math.Pi / 2}

// stepUnit attempts to move u one tick toward (destX, destY), applying
// radial repulsion steering and rejecting steps into impassable terrain or
// incomplete-building footprints. It tries up to 5 candidate headings
// (straight line plus four alternates) before leaving the unit in place.
func stepUnit(u *Unit, destX, destY float64, neighbors []nearbyEntity, obstacles []obstacleBuilding, terrain *mapgen.TileGrid, tileSize int) {
	dx := destX - u.X
	dy := destY - u.Y
	dist := math.Hypot(dx, dy)
	if dist < 1e-6 {
		return
	}
	desiredHeading := math.Atan2(dy, dx)

	var steerX, steerY float64
	for _, n := range neighbors {
		ndx := u.X - n.X
		ndy := u.Y - n.Y
		d := math.Hypot(ndx, ndy)
		if d < 1e-6 {
			continue
		}
		if n.IsBuilding {
			if d < 30 {
				steerX += ndx / d * 1.5
				steerY += ndy / d * 1.5
			}
		} else if d < 50 {
			steerX += ndx / d * 0.5
			steerY += ndy / d * 0.5
		}
	}

	baseX := math.Cos(desiredHeading)*u.MoveSpeed + steerX
	baseY := math.Sin(desiredHeading)*u.MoveSpeed + steerY
	baseHeading := math.Atan2(baseY, baseX)

	for _, offset := range headingOffsets {
		heading := baseHeading + offset
		stepX := u.X + math.Cos(heading)*u.MoveSpeed
		stepY := u.Y + math.Sin(heading)*u.MoveSpeed

		if stepBlocked(stepX, stepY, obstacles, terrain, tileSize) {
			continue
		}
		u.X, u.Y = stepX, stepY
		return
	}
	// All five headings rejected: the unit stalls for this tick.
}

func stepBlocked(x, y float64, obstacles []obstacleBuilding, terrain *mapgen.TileGrid, tileSize int) bool {
	tx, ty := int(x)/tileSize, int(y)/tileSize
	if terrain.At(tx, ty).Impassable() {
		return true
	}
	for _, ob := range obstacles {
		half := ob.Footprint / 2
		if x >= ob.X-half && x <= ob.X+half && y >= ob.Y-half && y <= ob.Y+half {
			return true
		}
	}
	return false
}

// WithinRange reports whether two points are within r pixels of each other.
func WithinRange(x1, y1, x2, y2, r float64) bool {
	return math.Hypot(x2-x1, y2-y1) <= r
}

// Distance returns Euclidean distance between two points.
func Distance(x1, y1, x2, y2 float64) float64 {
	return math.Hypot(x2-x1, y2-y1)
}

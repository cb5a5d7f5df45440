// Package validate implements the ordered action-validation pipeline that
// sits on the input edge of a room, ahead of the game engine. Every
// incoming action runs through the same eight gates in the same order so
// rejections are deterministic and explainable.
package validate

import (
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"rts-arena-server/internal/game"
)

// Result is the outcome of validating one action.
type Result struct {
	Valid  bool
	Reason string
}

func reject(format string, args ...interface{}) Result {
	return Result{Valid: false, Reason: fmt.Sprintf(format, args...)}
}

var accept = Result{Valid: true}

// perPlayerLimiter bundles two token-bucket rate gates: one refilling at
// 10 actions/second with a burst of 10, one refilling at 5 actions/second
// (300/minute) with a burst of 300. Token buckets are not sliding windows:
// an action is refused only when a bucket is empty, so a player can pass
// up to about 20 actions within a single second, and a minute that starts
// with a full 300-token bucket can pass more than 300.
type perPlayerLimiter struct {
	perSecond *rate.Limiter
	perMinute *rate.Limiter
}

func newPerPlayerLimiter() *perPlayerLimiter {
	return &perPlayerLimiter{
		perSecond: rate.NewLimiter(rate.Limit(10), 10),
		perMinute: rate.NewLimiter(rate.Limit(300.0/60.0), 300),
	}
}

func (l *perPlayerLimiter) allow() bool {
	// Both gates are checked; a rejection must not have consumed the
	// other gate's token, so peek with reservations we can cancel.
	secRes := l.perSecond.Reserve()
	if !secRes.OK() || secRes.Delay() > 0 {
		secRes.Cancel()
		return false
	}
	minRes := l.perMinute.Reserve()
	if !minRes.OK() || minRes.Delay() > 0 {
		minRes.Cancel()
		secRes.Cancel()
		return false
	}
	return true
}

// Validator runs the ordered gate pipeline against a room's live engine
// state. Rate-limit state is keyed by player id; the transport hub shares
// one Validator across all rooms.
type Validator struct {
	mu       sync.Mutex
	limiters map[string]*perPlayerLimiter
	clockSkewTolerance time.Duration
}

// New returns a validator with the default 5s clock-skew tolerance
// (spec.md §5 "Cancellation & timeouts").
func New() *Validator {
	return &Validator{
		limiters:           make(map[string]*perPlayerLimiter),
		clockSkewTolerance: 5 * time.Second,
	}
}

func (v *Validator) limiterFor(playerID string) *perPlayerLimiter {
	v.mu.Lock()
	defer v.mu.Unlock()
	l, ok := v.limiters[playerID]
	if !ok {
		l = newPerPlayerLimiter()
		v.limiters[playerID] = l
	}
	return l
}

// Validate runs action through the eight ordered gates against state on
// behalf of playerID, which must be the authenticated sender (never taken
// from the action payload itself). serverNow is the validator's wall
// clock, injected so tests can control clock-skew behavior.
func (v *Validator) Validate(state *game.GameState, playerID string, action game.Action, serverNow time.Time) Result {
	// 1. Rate limit.
	if !v.limiterFor(playerID).allow() {
		return reject("rate limit exceeded")
	}

	// 2. Shape.
	if res := validateShape(action); !res.Valid {
		return res
	}

	// Clock-skew guard, folded into the shape gate: a timestamp too far
	// from server wall-clock is itself a shape problem.
	if action.Timestamp != 0 {
		declared := time.UnixMilli(action.Timestamp)
		skew := serverNow.Sub(declared)
		if skew < 0 {
			skew = -skew
		}
		if skew > v.clockSkewTolerance {
			return reject("timestamp outside clock-skew tolerance")
		}
	}

	sender, ok := state.Players[playerID]
	if !ok {
		return reject("unknown player")
	}

	// 3. Ownership.
	if res := validateOwnership(state, playerID, action); !res.Valid {
		return res
	}

	// 4. Bounds.
	if res := validateBounds(state, action); !res.Valid {
		return res
	}

	// 5. Build placement.
	if action.Type == game.ActionBuild {
		if res := validatePlacement(state, action); !res.Valid {
			return res
		}
	}

	// 6. Resources.
	if res := validateResources(sender, action); !res.Valid {
		return res
	}

	// 7. Upgrade cap.
	if action.Type == game.ActionUpgrade {
		if sender.Upgrades.AtCap(action.UpgradeTrack) {
			return reject("upgrade track %q already at cap", action.UpgradeTrack)
		}
	}

	// 8. Target legality.
	if res := validateTargetLegality(state, playerID, action); !res.Valid {
		return res
	}

	return accept
}

func validateShape(action game.Action) Result {
	switch action.Type {
	case game.ActionMove, game.ActionAttackMove, game.ActionPatrol:
		if action.UnitID == "" {
			return reject("missing unitId")
		}
	case game.ActionAttack, game.ActionGather:
		if action.UnitID == "" {
			return reject("missing unitId")
		}
		if action.TargetEntity == "" && !(action.Type == game.ActionAttack && action.HasTargetPos) {
			return reject("missing target")
		}
	case game.ActionRepair:
		if action.UnitID == "" {
			return reject("missing unitId")
		}
		if action.BuildingID == "" {
			return reject("missing buildingId")
		}
	case game.ActionHoldPosition:
		if action.UnitID == "" {
			return reject("missing unitId")
		}
	case game.ActionBuild:
		if action.BuildVariant == "" {
			return reject("missing buildVariant")
		}
	case game.ActionProduce:
		if action.BuildingID == "" || action.ProduceVariant == "" {
			return reject("missing buildingId or produceVariant")
		}
	case game.ActionUpgrade:
		if action.UpgradeTrack == "" {
			return reject("missing upgradeTrack")
		}
	case game.ActionCancel:
		if action.BuildingID == "" {
			return reject("missing buildingId")
		}
	default:
		return reject("unknown action type %q", action.Type)
	}
	return accept
}

func validateOwnership(state *game.GameState, playerID string, action game.Action) Result {
	if action.UnitID != "" {
		u, ok := state.Units[action.UnitID]
		if !ok {
			return reject("unit %q not found", action.UnitID)
		}
		if u.Owner != playerID {
			return reject("unit %q not owned by sender", action.UnitID)
		}
	}
	if action.BuildingID != "" {
		b, ok := state.Buildings[action.BuildingID]
		if !ok {
			return reject("building %q not found", action.BuildingID)
		}
		if b.Owner != playerID {
			return reject("building %q not owned by sender", action.BuildingID)
		}
	}
	return accept
}

func validateBounds(state *game.GameState, action game.Action) Result {
	w, h := state.WidthHeightPixels()
	inBounds := func(x, y float64) bool {
		return x >= 0 && y >= 0 && x <= float64(w) && y <= float64(h)
	}

	switch action.Type {
	case game.ActionMove, game.ActionAttackMove, game.ActionBuild:
		if !inBounds(action.TargetX, action.TargetY) {
			return reject("target position out of bounds")
		}
	case game.ActionPatrol:
		if !inBounds(action.TargetX, action.TargetY) || !inBounds(action.PatrolX, action.PatrolY) {
			return reject("patrol endpoint out of bounds")
		}
	}
	return accept
}

func validatePlacement(state *game.GameState, action game.Action) Result {
	spec, ok := game.BuildingSpecs[action.BuildVariant]
	if !ok {
		return reject("unknown building variant %q", action.BuildVariant)
	}

	tileSize := state.TileSize
	tx, ty := int(action.TargetX)/tileSize, int(action.TargetY)/tileSize
	if state.Map.At(tx, ty).Impassable() {
		return reject("build site straddles impassable terrain")
	}

	for _, b := range state.Buildings {
		d := game.Distance(action.TargetX, action.TargetY, b.X, b.Y)
		minSeparation := (spec.Footprint+b.Footprint)/2 + 10
		if d < minSeparation {
			return reject("build site collides with existing building")
		}
	}
	return accept
}

func validateResources(sender *game.Player, action game.Action) Result {
	var cost game.Cost
	switch action.Type {
	case game.ActionBuild:
		cost = game.BuildingSpecs[action.BuildVariant].Cost
	case game.ActionProduce:
		cost = game.UnitSpecs[action.ProduceVariant].Cost
	case game.ActionUpgrade:
		cost = game.UpgradeCost
	default:
		return accept
	}
	if !sender.CanAfford(cost) {
		return reject("Insufficient resources")
	}
	return accept
}

func validateTargetLegality(state *game.GameState, playerID string, action game.Action) Result {
	switch action.Type {
	case game.ActionAttack:
		if action.TargetEntity == "" {
			return accept // attack-ground, already shape-checked
		}
		if u, ok := state.Units[action.TargetEntity]; ok {
			if u.Owner == playerID {
				return reject("attack target must be hostile")
			}
			return accept
		}
		if b, ok := state.Buildings[action.TargetEntity]; ok {
			if b.Owner == playerID {
				return reject("attack target must be hostile")
			}
			return accept
		}
		return reject("attack target %q not found", action.TargetEntity)

	case game.ActionGather:
		node, ok := state.Resources[action.TargetEntity]
		if !ok || node.Depleted() {
			return reject("gather target is not a live resource node")
		}
		return accept

	case game.ActionCancel:
		b := state.Buildings[action.BuildingID]
		if action.CancelIndex < 0 || action.CancelIndex >= len(b.Queue) {
			return reject("cancel target not in production queue")
		}
		return accept

	case game.ActionRepair:
		b, ok := state.Buildings[action.BuildingID]
		if !ok || b.Owner != playerID {
			return reject("repair target must be a friendly building")
		}
		return accept

	default:
		return accept
	}
}

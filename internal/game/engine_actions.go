package game

import "fmt"

// UpgradeCost is the gold+wood price of the next level of an upgrade
// track. Not specified numerically in the source material; chosen as a
// flat, cap-independent price so upgrade pacing scales with base economy
// speed rather than snowballing.
var UpgradeCost = Cost{Gold: 100, Wood: 50}

// apply mutates live state for one already-validated action. The Action
// Validator is responsible for everything that would make this unsafe to
// call blindly (ownership, resources, bounds, legality); apply only
// assumes those checks already passed.
func (e *Engine) apply(playerID string, action Action) error {
	p, ok := e.state.Players[playerID]
	if !ok {
		return fmt.Errorf("engine: unknown player %q", playerID)
	}

	switch action.Type {
	case ActionMove:
		u, ok := e.state.Units[action.UnitID]
		if !ok || u.Owner != playerID {
			return fmt.Errorf("engine: move: unit %q not owned by %q", action.UnitID, playerID)
		}
		u.ClearOrder()
		u.Waypoints = nil
		u.State = CmdMoving
		u.TargetX, u.TargetY = action.TargetX, action.TargetY
		u.HasTargetPos = true

	case ActionAttackMove:
		u, ok := e.state.Units[action.UnitID]
		if !ok || u.Owner != playerID {
			return fmt.Errorf("engine: attackMove: unit %q not owned by %q", action.UnitID, playerID)
		}
		u.ClearOrder()
		u.State = CmdAttackMove
		u.TargetX, u.TargetY = action.TargetX, action.TargetY
		u.HasTargetPos = true

	case ActionAttack:
		u, ok := e.state.Units[action.UnitID]
		if !ok || u.Owner != playerID {
			return fmt.Errorf("engine: attack: unit %q not owned by %q", action.UnitID, playerID)
		}
		u.ClearOrder()
		if action.TargetEntity == "" && action.HasTargetPos && u.Variant == UnitCatapult {
			u.State = CmdAttacking
			u.HasAttackGround = true
			u.AttackGroundX, u.AttackGroundY = action.TargetX, action.TargetY
			break
		}
		u.State = CmdAttacking
		u.TargetEntity = action.TargetEntity

	case ActionGather:
		u, ok := e.state.Units[action.UnitID]
		if !ok || u.Owner != playerID || u.Variant != UnitWorker {
			return fmt.Errorf("engine: gather: unit %q is not %q's worker", action.UnitID, playerID)
		}
		node, ok := e.state.Resources[action.TargetEntity]
		if !ok {
			return fmt.Errorf("engine: gather: node %q not found", action.TargetEntity)
		}
		u.ClearOrder()
		u.RememberNode = node.ID
		u.State = CmdGathering

	case ActionPatrol:
		u, ok := e.state.Units[action.UnitID]
		if !ok || u.Owner != playerID {
			return fmt.Errorf("engine: patrol: unit %q not owned by %q", action.UnitID, playerID)
		}
		u.ClearOrder()
		u.State = CmdPatrol
		u.TargetX, u.TargetY = action.TargetX, action.TargetY
		u.PatrolB = Waypoint{X: action.PatrolX, Y: action.PatrolY}
		u.HasTargetPos = true

	case ActionHoldPosition:
		u, ok := e.state.Units[action.UnitID]
		if !ok || u.Owner != playerID {
			return fmt.Errorf("engine: holdPosition: unit %q not owned by %q", action.UnitID, playerID)
		}
		u.ClearOrder()
		u.State = CmdHoldPosition

	case ActionRepair:
		u, ok := e.state.Units[action.UnitID]
		if !ok || u.Owner != playerID || u.Variant != UnitWorker {
			return fmt.Errorf("engine: repair: unit %q is not %q's worker", action.UnitID, playerID)
		}
		u.ClearOrder()
		u.State = CmdBuilding
		u.TargetEntity = action.BuildingID

	case ActionBuild:
		spec, ok := BuildingSpecs[action.BuildVariant]
		if !ok {
			return fmt.Errorf("engine: build: unknown variant %q", action.BuildVariant)
		}
		p.Debit(spec.Cost)
		b := NewBuilding(e.state.ids.nextBuilding(playerID), playerID, action.BuildVariant,
			action.TargetX, action.TargetY, false)
		e.state.Buildings[b.ID] = b

	case ActionProduce:
		b, ok := e.state.Buildings[action.BuildingID]
		if !ok || b.Owner != playerID {
			return fmt.Errorf("engine: produce: building %q not owned by %q", action.BuildingID, playerID)
		}
		spec, ok := UnitSpecs[action.ProduceVariant]
		if !ok {
			return fmt.Errorf("engine: produce: unknown variant %q", action.ProduceVariant)
		}
		p.Debit(spec.Cost)
		b.Enqueue(action.ProduceVariant)

	case ActionUpgrade:
		p.Debit(UpgradeCost)
		switch action.UpgradeTrack {
		case "attack":
			p.Upgrades.Attack++
		case "defense":
			p.Upgrades.Defense++
		case "range":
			p.Upgrades.Range++
		default:
			return fmt.Errorf("engine: upgrade: unknown track %q", action.UpgradeTrack)
		}

	case ActionCancel:
		b, ok := e.state.Buildings[action.BuildingID]
		if !ok || b.Owner != playerID {
			return fmt.Errorf("engine: cancel: building %q not owned by %q", action.BuildingID, playerID)
		}
		if action.CancelIndex < 0 || action.CancelIndex >= len(b.Queue) {
			return fmt.Errorf("engine: cancel: index %d out of range", action.CancelIndex)
		}
		// Cancellation refunds nothing, per spec.md §4.C "Production".
		b.Queue = append(b.Queue[:action.CancelIndex], b.Queue[action.CancelIndex+1:]...)

	default:
		return fmt.Errorf("engine: unknown action type %q", action.Type)
	}
	return nil
}

package game

// This file implements the per-tick steps 1-5 of spec.md §4.C, in the
// fixed order the Engine's Tick method calls them.

// --- step 1: projectiles ---

func (e *Engine) advanceProjectiles() {
	for _, id := range e.state.sortedProjectileIDs() {
		pr := e.state.Projectiles[id]
		if pr.Advance() {
			e.resolveProjectileImpact(pr)
			delete(e.state.Projectiles, id)
		}
	}
}

func (e *Engine) resolveProjectileImpact(pr *Projectile) {
	owner := e.state.Players[pr.OwnerID]
	isAI := owner != nil && owner.Team == TeamAI
	mult := AIDamageMultiplier(e.state.Difficulty, isAI)

	if pr.Kind == ProjectileHeal {
		if u, ok := e.state.Units[pr.TargetID]; ok {
			u.HP += pr.Damage
			if u.HP > u.MaxHP {
				u.HP = u.MaxHP
			}
		}
		return
	}

	if pr.SplashRadius > 0 {
		for _, idx := range e.grid.QueryRadius(pr.X, pr.Y, pr.SplashRadius) {
			entry := e.gridIndex[idx]
			if entry.isBuilding {
				b, ok := e.state.Buildings[entry.id]
				if !ok || b.Owner == pr.OwnerID {
					continue
				}
				d := Distance(pr.X, pr.Y, b.X, b.Y)
				b.HP -= int(float64(SplashFalloff(pr.Damage, d, pr.SplashRadius)) * mult)
				b.UnderAttack = true
			} else {
				u, ok := e.state.Units[entry.id]
				if !ok || u.Owner == pr.OwnerID {
					continue
				}
				d := Distance(pr.X, pr.Y, u.X, u.Y)
				u.HP -= int(float64(SplashFalloff(pr.Damage, d, pr.SplashRadius)) * mult)
				u.UnderAttack = true
				u.LastHitTick = e.state.Tick
			}
		}
		return
	}

	dmg := int(float64(pr.Damage) * mult)
	if u, ok := e.state.Units[pr.TargetID]; ok {
		u.HP -= dmg
		u.UnderAttack = true
		u.LastHitTick = e.state.Tick
		return
	}
	if b, ok := e.state.Buildings[pr.TargetID]; ok {
		b.HP -= dmg
		b.UnderAttack = true
	}
}

// --- step 2: buildings ---

func (e *Engine) advanceBuildings() {
	for _, id := range e.state.sortedBuildingIDs() {
		b := e.state.Buildings[id]

		if !b.Complete() {
			if b.AdvanceConstruction() {
				e.onBuildingCompleted(b)
			}
			continue
		}

		if completed := b.AdvanceQueue(); completed != nil {
			sx, sy := b.SpawnPoint()
			u := NewUnit(e.state.ids.nextUnit(b.Owner), b.Owner, completed.Variant, sx, sy)
			e.state.Units[u.ID] = u
		}

		spec := BuildingSpecs[b.Variant]
		if spec.AttacksAuto {
			e.towerAutoFire(b, spec)
		}
	}
}

func (e *Engine) onBuildingCompleted(b *Building) {
	if b.Variant == BuildingFarm || b.Variant == BuildingBase {
		p := e.state.Players[b.Owner]
		farms := e.state.CountCompleteBuildings(b.Owner, BuildingFarm)
		bases := e.state.CountCompleteBuildings(b.Owner, BuildingBase)
		p.RecomputeMaxSupply(farms, bases)
	}
}

func (e *Engine) towerAutoFire(b *Building, spec BuildingSpec) {
	if b.TowerCooldown > 0 {
		b.TowerCooldown--
		return
	}
	owner := e.state.Players[b.Owner]
	towerRange := TowerRange(owner.Upgrades.Range)

	target := e.nearestHostileUnit(b.X, b.Y, towerRange, b.Owner)
	if target == nil {
		return
	}

	defUpgrade := 0
	if tOwner := e.state.Players[target.Owner]; tOwner != nil {
		defUpgrade = tOwner.Upgrades.Defense
	}
	dmg := CalcDamage(spec.BaseDamage, owner.Upgrades.Attack, defUpgrade, true)

	proj := NewProjectile(e.state.ids.nextProjectile(), ProjectileArrow, b.Owner, b.X, b.Y,
		target.ID, target.X, target.Y, dmg, 0, e.state.Tick)
	e.state.Projectiles[proj.ID] = proj
	b.TowerCooldown = TowerCooldownTicks
}

func (e *Engine) nearestHostileUnit(x, y, radius float64, owner string) *Unit {
	var nearest *Unit
	nearestDist := radius + 1
	for _, idx := range e.grid.QueryRadius(x, y, radius) {
		entry := e.gridIndex[idx]
		if entry.isBuilding {
			continue
		}
		u, ok := e.state.Units[entry.id]
		if !ok || u.Owner == owner {
			continue
		}
		d := Distance(x, y, u.X, u.Y)
		if d <= radius && d < nearestDist {
			nearest = u
			nearestDist = d
		}
	}
	return nearest
}

// --- step 3: units ---

func (e *Engine) advanceUnits() {
	for _, id := range e.state.sortedUnitIDs() {
		u, ok := e.state.Units[id]
		if !ok {
			continue // defensive: units are only removed in cleanupDead
		}
		if u.Cooldown > 0 {
			u.Cooldown--
		}

		switch u.Variant {
		case UnitHealer:
			e.healerTick(u)
		case UnitWorker:
			e.workerTick(u)
		default:
			e.combatUnitTick(u)
		}
	}
}

func (e *Engine) healerTick(u *Unit) {
	ally := e.nearestInjuredAlly(u)
	if ally != nil && u.Cooldown == 0 {
		spec := UnitSpecs[UnitHealer]
		if Distance(u.X, u.Y, ally.X, ally.Y) <= spec.HealRange {
			proj := NewProjectile(e.state.ids.nextProjectile(), ProjectileHeal, u.Owner, u.X, u.Y,
				ally.ID, ally.X, ally.Y, spec.HealAmount, 0, e.state.Tick)
			e.state.Projectiles[proj.ID] = proj
			u.Cooldown = u.CooldownTicks
			return
		}
		u.State = CmdHealing
		e.moveUnitToward(u, ally.X, ally.Y)
		return
	}
	e.moveOrIdle(u)
}

func (e *Engine) nearestInjuredAlly(u *Unit) *Unit {
	spec := UnitSpecs[UnitHealer]
	var nearest *Unit
	best := HealAutoRange(spec.HealRange) + 1
	for _, idx := range e.grid.QueryRadius(u.X, u.Y, HealAutoRange(spec.HealRange)) {
		entry := e.gridIndex[idx]
		if entry.isBuilding || entry.id == u.ID {
			continue
		}
		ally, ok := e.state.Units[entry.id]
		if !ok || ally.Owner != u.Owner || ally.HP >= ally.MaxHP {
			continue
		}
		d := Distance(u.X, u.Y, ally.X, ally.Y)
		if d < best {
			nearest, best = ally, d
		}
	}
	return nearest
}

func (e *Engine) workerTick(u *Unit) {
	switch u.State {
	case CmdGathering:
		e.workerGather(u)
	case CmdReturning:
		e.workerReturn(u)
	case CmdBuilding:
		e.workerRepair(u)
	default:
		e.moveOrIdle(u)
	}
}

// workerRepairRate is the hp restored per tick once a worker is in range
// of its repair target. Repair costs nothing; the source material ties
// "worker repair" to per-tick evaluation rather than a resource-gated
// action.
const workerRepairRate = 3

func (e *Engine) workerRepair(u *Unit) {
	b, ok := e.state.Buildings[u.TargetEntity]
	if !ok || b.Owner != u.Owner || b.HP >= b.MaxHP {
		u.State = CmdIdle
		u.ClearOrder()
		return
	}
	if !WithinRange(u.X, u.Y, b.X, b.Y, b.Footprint/2+10) {
		e.moveUnitToward(u, b.X, b.Y)
		return
	}
	b.HP += workerRepairRate
	if b.HP > b.MaxHP {
		b.HP = b.MaxHP
	}
}

func (e *Engine) workerGather(u *Unit) {
	node, ok := e.state.Resources[u.RememberNode]
	if !ok || node.Depleted() {
		u.State = CmdIdle
		return
	}
	spec := UnitSpecs[UnitWorker]
	if !WithinRange(u.X, u.Y, node.X, node.Y, 20) {
		e.moveUnitToward(u, node.X, node.Y)
		return
	}
	taken := node.Harvest(spec.GatherPerTrip)
	u.Carrying = Carrying{Kind: node.Kind, Amount: taken}
	u.State = CmdReturning
	if node.Depleted() {
		delete(e.state.Resources, node.ID)
	}
}

func (e *Engine) workerReturn(u *Unit) {
	drop := e.nearestDropoff(u)
	if drop == nil {
		u.State = CmdIdle
		return
	}
	if !WithinRange(u.X, u.Y, drop.X, drop.Y, drop.Footprint/2+10) {
		e.moveUnitToward(u, drop.X, drop.Y)
		return
	}
	p := e.state.Players[u.Owner]
	if u.Carrying.Kind == ResGold {
		p.Resources.Gold += u.Carrying.Amount
	} else {
		p.Resources.Wood += u.Carrying.Amount
	}
	u.Carrying = Carrying{}

	if node, ok := e.state.Resources[u.RememberNode]; ok && !node.Depleted() {
		u.State = CmdGathering
	} else {
		u.State = CmdIdle
	}
}

func (e *Engine) nearestDropoff(u *Unit) *Building {
	var nearest *Building
	best := 1e18
	for _, id := range e.state.sortedBuildingIDs() {
		b := e.state.Buildings[id]
		if b.Owner != u.Owner || !b.Complete() {
			continue
		}
		if b.Variant != BuildingBase {
			continue
		}
		d := Distance(u.X, u.Y, b.X, b.Y)
		if d < best {
			nearest, best = b, d
		}
	}
	return nearest
}

func (e *Engine) combatUnitTick(u *Unit) {
	switch u.State {
	case CmdAttacking:
		e.unitAttackTick(u)
	case CmdMoving:
		// Plain moves never auto-engage: only attackMove and patrol do.
		e.moveOrIdle(u)
	case CmdAttackMove, CmdPatrol:
		e.tryAutoAcquire(u)
		if u.State == CmdAttacking {
			e.unitAttackTick(u)
			return
		}
		e.moveOrIdle(u)
	case CmdHoldPosition:
		e.tryAutoAcquire(u)
		if u.State == CmdAttacking {
			e.unitAttackInPlace(u)
			u.State = CmdHoldPosition
		}
	default:
		e.tryAutoAcquire(u)
		if u.State != CmdAttacking {
			e.moveOrIdle(u)
		} else {
			e.unitAttackTick(u)
		}
	}
}

func (e *Engine) tryAutoAcquire(u *Unit) {
	if u.AttackDamage <= 0 {
		return
	}
	owner := e.state.Players[u.Owner]
	scanRadius := AutoAcquireRange(u.AttackRange, owner.Upgrades.Range)
	target := e.nearestHostileUnit(u.X, u.Y, scanRadius, u.Owner)
	if target != nil {
		u.ResumeState = u.State
		u.State = CmdAttacking
		u.TargetEntity = target.ID
	}
}

func (e *Engine) unitAttackTick(u *Unit) {
	if u.HasAttackGround {
		e.catapultGroundTick(u)
		return
	}
	target, targetOwner, alive := e.resolveUnitOrBuildingTarget(u.TargetEntity)
	if !alive {
		if u.ResumeState == CmdAttackMove || u.ResumeState == CmdPatrol {
			u.State = u.ResumeState
			u.TargetEntity = ""
			return
		}
		u.State = CmdIdle
		u.ClearOrder()
		return
	}
	tx, ty := target.pos()
	if !WithinRange(u.X, u.Y, tx, ty, u.AttackRange) {
		e.moveUnitToward(u, tx, ty)
		return
	}
	e.fireAt(u, target, targetOwner)
}

// catapultGroundTick fires on a fixed ground point rather than a tracked
// entity, satisfying the catapult-only attack-ground command.
func (e *Engine) catapultGroundTick(u *Unit) {
	if !WithinRange(u.X, u.Y, u.AttackGroundX, u.AttackGroundY, u.AttackRange) {
		e.moveUnitToward(u, u.AttackGroundX, u.AttackGroundY)
		return
	}
	if u.Cooldown > 0 {
		return
	}
	u.Cooldown = u.CooldownTicks
	owner := e.state.Players[u.Owner]
	spec := UnitSpecs[u.Variant]
	dmg := CalcDamage(u.AttackDamage, owner.Upgrades.Attack, 0, false)
	proj := NewProjectile(e.state.ids.nextProjectile(), ProjectileBoulder, u.Owner, u.X, u.Y,
		"", u.AttackGroundX, u.AttackGroundY, dmg, spec.SplashRadius, e.state.Tick)
	e.state.Projectiles[proj.ID] = proj
}

func (e *Engine) unitAttackInPlace(u *Unit) {
	target, targetOwner, alive := e.resolveUnitOrBuildingTarget(u.TargetEntity)
	if !alive {
		u.ClearOrder()
		return
	}
	tx, ty := target.pos()
	if WithinRange(u.X, u.Y, tx, ty, u.AttackRange) {
		e.fireAt(u, target, targetOwner)
	}
}

// attackTarget unifies Unit and Building as an attack destination.
type attackTarget interface {
	pos() (float64, float64)
}

func (u *Unit) pos() (float64, float64)     { return u.X, u.Y }
func (b *Building) pos() (float64, float64) { return b.X, b.Y }

func (e *Engine) resolveUnitOrBuildingTarget(id string) (attackTarget, *Player, bool) {
	if u, ok := e.state.Units[id]; ok {
		return u, e.state.Players[u.Owner], true
	}
	if b, ok := e.state.Buildings[id]; ok {
		return b, e.state.Players[b.Owner], true
	}
	return nil, nil, false
}

func (e *Engine) fireAt(u *Unit, target attackTarget, targetOwner *Player) {
	if u.Cooldown > 0 {
		return
	}
	u.Cooldown = u.CooldownTicks

	owner := e.state.Players[u.Owner]
	defUpgrade := 0
	if targetOwner != nil {
		defUpgrade = targetOwner.Upgrades.Defense
	}
	dmg := CalcDamage(u.AttackDamage, owner.Upgrades.Attack, defUpgrade, false)

	spec := UnitSpecs[u.Variant]
	if !spec.IsRanged {
		e.applyMeleeDamage(target, dmg)
		return
	}

	kind := ProjectileArrow
	if u.Variant == UnitCatapult {
		kind = ProjectileBoulder
	}
	tx, ty := target.pos()
	targetID := ""
	if tu, ok := target.(*Unit); ok {
		targetID = tu.ID
	} else if tb, ok := target.(*Building); ok {
		targetID = tb.ID
	}
	proj := NewProjectile(e.state.ids.nextProjectile(), kind, u.Owner, u.X, u.Y,
		targetID, tx, ty, dmg, spec.SplashRadius, e.state.Tick)
	e.state.Projectiles[proj.ID] = proj
}

func (e *Engine) applyMeleeDamage(target attackTarget, dmg int) {
	switch t := target.(type) {
	case *Unit:
		t.HP -= dmg
		t.UnderAttack = true
		t.LastHitTick = e.state.Tick
	case *Building:
		t.HP -= dmg
		t.UnderAttack = true
	}
}

func (e *Engine) moveUnitToward(u *Unit, x, y float64) {
	neighbors := e.nearbyNeighbors(u.X, u.Y, 50, u.ID)
	obstacles := e.incompleteBuildingObstacles()
	stepUnit(u, x, y, neighbors, obstacles, e.state.Map, e.state.TileSize)
}

// moveOrIdle advances a unit toward its declared destination (move,
// attackMove, or patrol waypoint), transitioning to idle/pop-waypoint on
// arrival per spec.md §4.C transition rules.
func (e *Engine) moveOrIdle(u *Unit) {
	if !u.HasTargetPos {
		if u.State != CmdHoldPosition && u.State != CmdGathering && u.State != CmdReturning {
			u.State = CmdIdle
		}
		return
	}

	e.moveUnitToward(u, u.TargetX, u.TargetY)

	if !WithinRange(u.X, u.Y, u.TargetX, u.TargetY, 5) {
		return
	}

	if u.State == CmdPatrol {
		// Swap endpoints and keep patrolling.
		u.TargetX, u.TargetY, u.PatrolB.X, u.PatrolB.Y = u.PatrolB.X, u.PatrolB.Y, u.TargetX, u.TargetY
		return
	}

	if wp, ok := u.PopWaypoint(); ok {
		u.TargetX, u.TargetY = wp.X, wp.Y
		return
	}
	u.State = CmdIdle
	u.HasTargetPos = false
}

// --- step 4: death cleanup ---

func (e *Engine) cleanupDead() {
	for _, id := range e.state.sortedUnitIDs() {
		u := e.state.Units[id]
		if u.Dead() {
			if p := e.state.Players[u.Owner]; p != nil {
				p.ReleaseSupply(UnitSpecs[u.Variant].Cost.Supply)
			}
			delete(e.state.Units, id)
		}
	}
	for _, id := range e.state.sortedBuildingIDs() {
		b := e.state.Buildings[id]
		if b.Dead() {
			spec := BuildingSpecs[b.Variant]
			if spec.SuppliesGranted > 0 && b.Complete() {
				p := e.state.Players[b.Owner]
				farms := e.state.CountCompleteBuildings(b.Owner, BuildingFarm)
				bases := e.state.CountCompleteBuildings(b.Owner, BuildingBase)
				if b.Variant == BuildingFarm {
					farms--
				}
				if b.Variant == BuildingBase {
					bases--
				}
				p.RecomputeMaxSupply(farms, bases)
			}
			delete(e.state.Buildings, id)
		}
	}
	for id, node := range e.state.Resources {
		if node.Depleted() {
			delete(e.state.Resources, id)
		}
	}
}

// --- step 5: economy ---

func (e *Engine) advanceEconomy() {
	for _, id := range e.state.PlayerOrder {
		p := e.state.Players[id]
		if p.Team != TeamAI {
			continue
		}
		carry := e.aiGold[id]
		if carry == nil {
			carry = &aiGoldCarry{}
			e.aiGold[id] = carry
		}
		carry.credit(p, p.Difficulty)
	}
}

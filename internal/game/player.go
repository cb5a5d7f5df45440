package game

import "fmt"

// TeamRole identifies a player's seat in the room.
type TeamRole string

const (
	TeamHost  TeamRole = "host"
	TeamGuest TeamRole = "guest"
	TeamAI    TeamRole = "ai"
)

// Difficulty scales AI income and AI-owned projectile damage.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyNormal Difficulty = "normal"
	DifficultyHard   Difficulty = "hard"
)

// DifficultyMultiplier returns the damage multiplier applied to AI-owned
// projectiles, per spec.md §4.C "Damage formula".
func DifficultyMultiplier(d Difficulty) float64 {
	switch d {
	case DifficultyEasy:
		return 0.7
	case DifficultyHard:
		return 1.3
	default:
		return 1.0
	}
}

// Upgrades tracks a player's three upgrade tracks and their caps.
type Upgrades struct {
	Attack  int
	Defense int
	Range   int
}

// AtCap reports whether the named track is already at its level cap.
func (u Upgrades) AtCap(track string) bool {
	switch track {
	case "attack":
		return u.Attack >= UpgradeCaps["attack"]
	case "defense":
		return u.Defense >= UpgradeCaps["defense"]
	case "range":
		return u.Range >= UpgradeCaps["range"]
	default:
		return true
	}
}

// Resources holds a player's spendable stockpile and supply accounting.
type Resources struct {
	Gold       int
	Wood       int
	Supply     int
	MaxSupply  int
}

// Player is one of the (at most two) human-or-AI seats in a room.
//
// Created on join; mutated only by the Engine (resource debits/credits,
// upgrade increments) and by the room manager (ready flag).
type Player struct {
	ID          string
	Name        string
	Team        TeamRole
	Color       string
	Resources   Resources
	Upgrades    Upgrades
	Ready       bool
	Difficulty  Difficulty // only meaningful when Team == TeamAI
	Eliminated  bool       // injected by the room manager (surrender/disconnect forfeit)
	Disconnected bool

	// discovered is the monotonic set of tile indices (y*W+x) this player
	// has ever had vision of. It only grows, per the fog monotonicity
	// property.
	discovered map[int]bool
}

var teamColors = map[TeamRole]string{
	TeamHost:  "blue",
	TeamGuest: "red",
	TeamAI:    "red",
}

// NewPlayer constructs a player seat. id must be unique within the room.
func NewPlayer(id, name string, team TeamRole) *Player {
	return &Player{
		ID:    id,
		Name:  name,
		Team:  team,
		Color: teamColors[team],
		Resources: Resources{
			MaxSupply: BuildingSpecs[BuildingBase].SuppliesGranted,
		},
		discovered: make(map[int]bool),
	}
}

// NewAIPlayer constructs an AI-controlled seat replacing the guest.
func NewAIPlayer(id, name string, difficulty Difficulty) *Player {
	p := NewPlayer(id, name, TeamAI)
	p.Difficulty = difficulty
	p.Ready = true
	return p
}

func (p *Player) String() string {
	return fmt.Sprintf("Player{%s team=%s gold=%d wood=%d}", p.ID, p.Team, p.Resources.Gold, p.Resources.Wood)
}

// CanAfford reports whether the player can pay cost without going over
// maxSupply, per the resource-legality validation step.
func (p *Player) CanAfford(cost Cost) bool {
	if p.Resources.Gold < cost.Gold || p.Resources.Wood < cost.Wood {
		return false
	}
	return p.Resources.Supply+cost.Supply <= p.Resources.MaxSupply
}

// Debit deducts a production cost and reserves its supply immediately,
// per spec.md §4.C "Production": "costs gold+wood immediately and
// increments supply immediately (reservation)".
func (p *Player) Debit(cost Cost) {
	p.Resources.Gold -= cost.Gold
	p.Resources.Wood -= cost.Wood
	p.Resources.Supply += cost.Supply
}

// ReleaseSupply frees reserved supply when a unit that was counted against
// it is removed from play (death).
func (p *Player) ReleaseSupply(amount int) {
	p.Resources.Supply -= amount
	if p.Resources.Supply < 0 {
		p.Resources.Supply = 0
	}
}

// RecomputeMaxSupply applies the invariant:
// maxSupply = 10 + 8*(completed farms) + 10*(max(0, bases-1)).
func (p *Player) RecomputeMaxSupply(completedFarms, completeBases int) {
	extra := completeBases - 1
	if extra < 0 {
		extra = 0
	}
	p.Resources.MaxSupply = 10 + 8*completedFarms + 10*extra
}

// MarkDiscovered adds a tile index to the player's discovered set. It never
// removes entries, satisfying fog monotonicity.
func (p *Player) MarkDiscovered(tileIndex int) {
	p.discovered[tileIndex] = true
}

// HasDiscovered reports whether the player has ever seen the given tile.
func (p *Player) HasDiscovered(tileIndex int) bool {
	return p.discovered[tileIndex]
}

// DiscoveredCount returns how many distinct tiles the player has uncovered,
// used by tests asserting fog monotonicity.
func (p *Player) DiscoveredCount() int {
	return len(p.discovered)
}

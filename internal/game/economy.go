package game

// AIIncomePerTick returns the passive gold trickle credited to AI players
// only, per spec.md §4.C step 5: "0.5*difficultyMultiplier gold/tick".
func AIIncomePerTick(difficulty Difficulty) float64 {
	return 0.5 * DifficultyMultiplier(difficulty)
}

// aiGoldCarry accumulates the AI income's fractional remainder so the
// trickle still averages out correctly despite gold being an integer
// quantity; stored per-player by the Engine.
type aiGoldCarry struct {
	carry float64
}

func (c *aiGoldCarry) credit(p *Player, difficulty Difficulty) {
	c.carry += AIIncomePerTick(difficulty)
	whole := int(c.carry)
	if whole > 0 {
		p.Resources.Gold += whole
		c.carry -= float64(whole)
	}
}

package game

// runArbiter inspects current state and sets GameOver/Winner/Reason. It is
// a pure function of the state passed in (plus each Player's Eliminated
// flag, which the room manager injects for surrender/disconnect forfeits)
// and never mutates anything beyond those three fields, per spec.md §4.F.
func (s *GameState) runArbiter() {
	if s.GameOver {
		return
	}

	var survivors []string
	for _, id := range s.PlayerOrder {
		p := s.Players[id]
		if p.Team == TeamAI {
			// AI seats can still be "the" winner but are never the sole
			// measure of human victory; they participate in elimination
			// like any other seat.
		}
		if p.Eliminated || s.ownsZeroBases(id) {
			continue
		}
		survivors = append(survivors, id)
	}

	switch len(survivors) {
	case 0:
		s.GameOver = true
		s.Winner = ""
		s.Reason = "draw"
	case 1:
		s.GameOver = true
		s.Winner = survivors[0]
		s.Reason = s.Players[survivors[0]].Name + " wins by elimination: opponent eliminated"
	default:
		// Both still standing; nothing to decide yet.
	}
}

func (s *GameState) ownsZeroBases(playerID string) bool {
	for _, b := range s.Buildings {
		if b.Owner == playerID && b.Variant == BuildingBase && !b.Dead() {
			return false
		}
	}
	return true
}

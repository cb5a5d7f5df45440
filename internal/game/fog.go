package game

// VisionRange is the radius, in pixels, within which a player's units and
// buildings reveal tiles, per spec.md §6 tunable constants.
const VisionRange = 200.0

// updateFog marks every tile within VisionRange of each of a player's live
// units/buildings as discovered. The set only grows (fog monotonicity).
func (s *GameState) updateFog() {
	for _, playerID := range s.PlayerOrder {
		p := s.Players[playerID]
		for _, u := range s.Units {
			if u.Owner != playerID {
				continue
			}
			s.revealAround(p, u.X, u.Y)
		}
		for _, b := range s.Buildings {
			if b.Owner != playerID {
				continue
			}
			s.revealAround(p, b.X, b.Y)
		}
	}
}

func (s *GameState) revealAround(p *Player, cx, cy float64) {
	tileSize := float64(s.TileSize)
	radiusTiles := int(VisionRange/tileSize) + 1
	centerTX := int(cx / tileSize)
	centerTY := int(cy / tileSize)

	for dy := -radiusTiles; dy <= radiusTiles; dy++ {
		for dx := -radiusTiles; dx <= radiusTiles; dx++ {
			tx, ty := centerTX+dx, centerTY+dy
			if tx < 0 || ty < 0 || tx >= s.Map.Width || ty >= s.Map.Height {
				continue
			}
			tileCX := float64(tx)*tileSize + tileSize/2
			tileCY := float64(ty)*tileSize + tileSize/2
			if WithinRange(cx, cy, tileCX, tileCY, VisionRange) {
				p.MarkDiscovered(ty*s.Map.Width + tx)
			}
		}
	}
}

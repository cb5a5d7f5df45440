package game

import "testing"

func TestCalcDamageAppliesUpgradesAndFloor(t *testing.T) {
	tests := []struct {
		name          string
		base          int
		attackUpgrade int
		defUpgrade    int
		tower         bool
		want          int
	}{
		{"no upgrades", 10, 0, 0, false, 10},
		{"attacker upgrade adds 2 per level", 10, 2, 0, false, 14},
		{"defender upgrade subtracts 2 per level", 10, 0, 3, false, 4},
		{"tower attacker scales by 3", 10, 2, 0, true, 16},
		{"damage floors at 1", 5, 0, 10, false, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalcDamage(tt.base, tt.attackUpgrade, tt.defUpgrade, tt.tower)
			if got != tt.want {
				t.Errorf("CalcDamage(%d,%d,%d,%v) = %d, want %d", tt.base, tt.attackUpgrade, tt.defUpgrade, tt.tower, got, tt.want)
			}
		})
	}
}

func TestSplashFalloff(t *testing.T) {
	tests := []struct {
		name string
		dmg  int
		d, r float64
		want int
	}{
		{"zero radius returns full damage", 100, 5, 0, 100},
		{"at impact center full falloff factor", 100, 0, 10, 100},
		{"halfway to radius", 100, 5, 10, 75},
		{"at radius edge deals nothing", 100, 10, 10, 0},
		{"beyond radius deals nothing", 100, 15, 10, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplashFalloff(tt.dmg, tt.d, tt.r)
			if got != tt.want {
				t.Errorf("SplashFalloff(%d,%v,%v) = %d, want %d", tt.dmg, tt.d, tt.r, got, tt.want)
			}
		})
	}
}

func TestAIDamageMultiplier(t *testing.T) {
	tests := []struct {
		name       string
		difficulty Difficulty
		isAI       bool
		want       float64
	}{
		{"human-owned always 1.0", DifficultyHard, false, 1.0},
		{"AI easy is weaker", DifficultyEasy, true, DifficultyMultiplier(DifficultyEasy)},
		{"AI normal baseline", DifficultyNormal, true, DifficultyMultiplier(DifficultyNormal)},
		{"AI hard is stronger", DifficultyHard, true, DifficultyMultiplier(DifficultyHard)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AIDamageMultiplier(tt.difficulty, tt.isAI)
			if got != tt.want {
				t.Errorf("AIDamageMultiplier(%v,%v) = %v, want %v", tt.difficulty, tt.isAI, got, tt.want)
			}
		})
	}
}

// Package leveling applies experience to a character's level and base stats.
package leveling

import "github.com/lawnchairsociety/abyssforge/internal/stats"

// Leveling constants
const (
	StartingLevel    = 1
	DefaultThreshold = 150
	CritPerLevel     = 2
	CritCap          = 20
)

// Progress is a character's position on the experience curve
type Progress struct {
	Level     int
	Exp       int
	Threshold int // experience needed for the next level
}

// LevelUp contains information about a level-up event
type LevelUp struct {
	NewLevel     int
	NewThreshold int
	HPGain       int
	ATKGain      int
	DEFGain      int
	CritGain     int
}

// NextThreshold grows a threshold by 80%, floored
func NextThreshold(threshold int) int {
	return threshold * 18 / 10
}

// grow applies the 15% stat growth, floored
func grow(v int) int {
	return v * 115 / 100
}

// Gain adds experience and applies every level-up it pays for. A single
// grant can cross several thresholds; each one is subtracted in turn so
// the remainder carries over. Non-positive amounts change nothing.
func Gain(p Progress, base stats.Block, amount int) (Progress, stats.Block, []LevelUp) {
	if amount <= 0 || p.Threshold <= 0 {
		return p, base, nil
	}

	p.Exp += amount
	var ups []LevelUp
	for p.Exp >= p.Threshold {
		p.Exp -= p.Threshold
		p.Level++
		p.Threshold = NextThreshold(p.Threshold)

		next := base
		next.HP = grow(base.HP)
		next.ATK = grow(base.ATK)
		next.DEF = grow(base.DEF)
		if base.CRIT < CritCap {
			next.CRIT = min(CritCap, base.CRIT+CritPerLevel)
		}

		ups = append(ups, LevelUp{
			NewLevel:     p.Level,
			NewThreshold: p.Threshold,
			HPGain:       next.HP - base.HP,
			ATKGain:      next.ATK - base.ATK,
			DEFGain:      next.DEF - base.DEF,
			CritGain:     next.CRIT - base.CRIT,
		})
		base = next
	}
	return p, base, ups
}

// ExpScale is the experience multiplier for a dungeon depth: +50% per
// ten floors.
func ExpScale(depth int) float64 {
	return 1 + float64(depth/10)*0.5
}

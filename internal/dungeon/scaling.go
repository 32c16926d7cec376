package dungeon

import "fmt"

// Scaling contains difficulty formulas for dungeon depths

// BossInterval is how often a boss floor occurs
const BossInterval = 10

// IsBossDepth returns true every tenth depth
func IsBossDepth(depth int) bool {
	return depth > 0 && depth%BossInterval == 0
}

// MonsterHP calculates a guardian's max HP
// Formula: 40 + 20*depth
func MonsterHP(depth int) int {
	return 40 + 20*depth
}

// MonsterATK calculates a guardian's attack
// Formula: 8 + floor(3.5*depth)
func MonsterATK(depth int) int {
	return 8 + depth*7/2
}

// BossHP calculates a boss's max HP
// Formula: 150 + 35*depth
func BossHP(depth int) int {
	return 150 + 35*depth
}

// BossATK calculates a boss's attack
// Formula: 15 + 5*depth
func BossATK(depth int) int {
	return 15 + 5*depth
}

// NewMonster builds the guardian battle for a depth
func NewMonster(depth int) *Battle {
	hp := MonsterHP(depth)
	return &Battle{
		MonsterName:  fmt.Sprintf("Guardian Lv.%d", depth),
		MonsterMaxHP: hp,
		MonsterHP:    hp,
		MonsterATK:   MonsterATK(depth),
	}
}

// NewBoss builds the boss battle for a depth
func NewBoss(depth int) *Battle {
	hp := BossHP(depth)
	return &Battle{
		MonsterName:  fmt.Sprintf("[BOSS] Doom Lord Lv.%d", depth),
		MonsterMaxHP: hp,
		MonsterHP:    hp,
		MonsterATK:   BossATK(depth),
		Boss:         true,
	}
}

// StepsToBoss returns how many advances remain until the next boss floor
func StepsToBoss(depth int) int {
	return BossInterval - depth%BossInterval
}

// BossProgress returns the progress bar toward the next boss, 0-100.
// A boss floor itself shows as 100.
func BossProgress(depth int) int {
	if IsBossDepth(depth) {
		return 100
	}
	return (depth % BossInterval) * 10
}

// MaxStartFloor returns the deepest start floor unlocked by a best depth
func MaxStartFloor(bestDepth int) int {
	return bestDepth / BossInterval
}

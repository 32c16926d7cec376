package player

import "sync"

// Statistics tracks lifetime player activity. It is shown by the status
// command and stored inside the save record.
type Statistics struct {
	MonstersSlain   int   `json:"monsters_slain"`
	BossesSlain     int   `json:"bosses_slain"`
	Deaths          int   `json:"deaths"`
	Expeditions     int   `json:"expeditions"`
	ItemsForged     int   `json:"items_forged"`
	ItemsLost       int   `json:"items_lost"`
	HighestDepth    int   `json:"highest_depth"`
	GoldAccumulated int64 `json:"gold_accumulated"` // Lifetime gold earned
	DamageDealt     int64 `json:"damage_dealt"`
	DamageTaken     int64 `json:"damage_taken"`
	mu              sync.RWMutex
}

// NewStatistics creates a new statistics tracker.
func NewStatistics() *Statistics {
	return &Statistics{}
}

// RecordKill increments kill counts.
func (s *Statistics) RecordKill(boss bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if boss {
		s.BossesSlain++
	} else {
		s.MonstersSlain++
	}
}

// RecordDeath increments the death count and items lost with it.
func (s *Statistics) RecordDeath(itemsLost int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Deaths++
	s.ItemsLost += itemsLost
}

// RecordExpedition counts a started expedition.
func (s *Statistics) RecordExpedition() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Expeditions++
}

// RecordForge counts a forged item.
func (s *Statistics) RecordForge() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ItemsForged++
}

// RecordFloorReached updates highest depth if this is higher.
func (s *Statistics) RecordFloorReached(depth int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if depth > s.HighestDepth {
		s.HighestDepth = depth
	}
}

// RecordGoldEarned adds to lifetime gold earned.
func (s *Statistics) RecordGoldEarned(amount int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.GoldAccumulated += int64(amount)
}

// RecordDamage adds combat damage totals.
func (s *Statistics) RecordDamage(dealt, taken int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.DamageDealt += int64(dealt)
	s.DamageTaken += int64(taken)
}

// Snapshot returns a copy safe to read without the lock.
func (s *Statistics) Snapshot() StatisticsSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return StatisticsSnapshot{
		MonstersSlain:   s.MonstersSlain,
		BossesSlain:     s.BossesSlain,
		Deaths:          s.Deaths,
		Expeditions:     s.Expeditions,
		ItemsForged:     s.ItemsForged,
		ItemsLost:       s.ItemsLost,
		HighestDepth:    s.HighestDepth,
		GoldAccumulated: s.GoldAccumulated,
		DamageDealt:     s.DamageDealt,
		DamageTaken:     s.DamageTaken,
	}
}

// StatisticsSnapshot is a lock-free copy of Statistics.
type StatisticsSnapshot struct {
	MonstersSlain   int
	BossesSlain     int
	Deaths          int
	Expeditions     int
	ItemsForged     int
	ItemsLost       int
	HighestDepth    int
	GoldAccumulated int64
	DamageDealt     int64
	DamageTaken     int64
}

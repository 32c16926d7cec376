package balance

import (
	"github.com/lawnchairsociety/abyssforge/internal/dice"
	"github.com/lawnchairsociety/abyssforge/internal/forge"
	"github.com/lawnchairsociety/abyssforge/internal/items"
	"github.com/lawnchairsociety/abyssforge/internal/rules"
)

// ForgeSummary aggregates many forge attempts of one recipe
type ForgeSummary struct {
	Simulations int
	Cost        int // gold the recipe costs at the shop
	Tiers       map[items.Quality]int
	AvgValue    float64
	AvgProfit   float64 // sale value minus material cost
	AvgStats    float64 // stat lines per item
}

// SimulateForge forges recipe iterations times and tallies the results
func SimulateForge(r *rules.Ruleset, slot items.Slot, recipe []items.Quality, level int, bossDrop bool, iterations int, seed int64) (ForgeSummary, error) {
	summary := ForgeSummary{
		Simulations: iterations,
		Cost:        r.Catalog.TotalCost(recipe),
		Tiers:       make(map[items.Quality]int),
	}
	if iterations <= 0 {
		return summary, nil
	}

	src := dice.New(seed)
	req := forge.Request{Slot: slot, Materials: recipe, PlayerLevel: level, BossDrop: bossDrop}
	var totalValue, totalStats int
	for i := 0; i < iterations; i++ {
		eq, err := forge.Build(r, req, src)
		if err != nil {
			return summary, err
		}
		summary.Tiers[eq.Quality]++
		totalValue += eq.Value
		totalStats += len(eq.Stats)
	}

	n := float64(iterations)
	summary.AvgValue = float64(totalValue) / n
	summary.AvgProfit = summary.AvgValue - float64(summary.Cost)
	summary.AvgStats = float64(totalStats) / n
	return summary, nil
}

// TierRate returns the share of attempts that produced q, in percent
func (s ForgeSummary) TierRate(q items.Quality) float64 {
	if s.Simulations == 0 {
		return 0
	}
	return float64(s.Tiers[q]) / float64(s.Simulations) * 100
}

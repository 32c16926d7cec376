// balance is a Monte Carlo simulator for tuning the forge and the abyss.
//
// Usage:
//
//	balance [command] [options]
//
// Commands:
//
//	expeditions - Simulate whole expeditions with a retreat policy
//	forge       - Tally forge results for one recipe
//	depths      - Test a loadout against the encounter at each depth
//	sweep       - Run a comprehensive balance sweep
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/lawnchairsociety/abyssforge/internal/items"
	"github.com/lawnchairsociety/abyssforge/internal/logger"
	"github.com/lawnchairsociety/abyssforge/internal/rules"
	"github.com/lawnchairsociety/abyssforge/utilities/balance"
)

func main() {
	// Simulated sessions log every step; keep the tables readable
	logger.SetOutput(io.Discard, "text", "ERROR")

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "expeditions":
		err = runExpeditionSim()
	case "forge":
		err = runForgeSim()
	case "depths":
		err = runDepthSim()
	case "sweep":
		err = runSweep()
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`Abyss Forge Balance Simulator

A Monte Carlo simulator for testing game balance.

Usage: balance <command> [options]

Commands:
  expeditions  Simulate whole expeditions with a retreat policy
  forge        Tally forge results for one recipe
  depths       Test a loadout against the encounter at each depth
  sweep        Run a comprehensive balance sweep

Examples:
  balance expeditions -rules=ascension -level=5 -weapon=rare,rare -retreat=0.3
  balance forge -recipe=refined,refined,common -slot=armor -iterations=20000
  balance depths -weapon=rare,rare,rare -armor=rare,rare,rare -end=40
  balance sweep

Use "balance <command> -h" for more information about a command.`)
}

// loadoutFlags registers the flags every hero-based command shares
type loadoutFlags struct {
	rules  *string
	level  *int
	weapon *string
	armor  *string
	seed   *int64
}

func addLoadoutFlags(fs *flag.FlagSet) loadoutFlags {
	return loadoutFlags{
		rules:  fs.String("rules", "ascension", "Ruleset preset (classic or ascension)"),
		level:  fs.Int("level", 1, "Hero level (ascension only)"),
		weapon: fs.String("weapon", "", "Weapon recipe, e.g. 'rare,rare,common'"),
		armor:  fs.String("armor", "", "Armor recipe, e.g. 'refined,common'"),
		seed:   fs.Int64("seed", time.Now().UnixNano(), "Random seed"),
	}
}

func (f loadoutFlags) resolve() (*rules.Ruleset, balance.Loadout, error) {
	r, err := rules.ByName(*f.rules)
	if err != nil {
		return nil, balance.Loadout{}, err
	}
	weapon, err := balance.ParseRecipe(*f.weapon)
	if err != nil {
		return nil, balance.Loadout{}, fmt.Errorf("weapon: %w", err)
	}
	armor, err := balance.ParseRecipe(*f.armor)
	if err != nil {
		return nil, balance.Loadout{}, fmt.Errorf("armor: %w", err)
	}
	return r, balance.Loadout{Level: *f.level, Weapon: weapon, Armor: armor}, nil
}

func describeLoadout(r *rules.Ruleset, l balance.Loadout) string {
	recipe := func(qs []items.Quality) string {
		if len(qs) == 0 {
			return "none"
		}
		names := make([]string, len(qs))
		for i, q := range qs {
			names[i] = q.String()
		}
		return strings.Join(names, ",")
	}
	return fmt.Sprintf("Rules: %s, Level %d, Weapon: %s, Armor: %s",
		r.Name, l.Level, recipe(l.Weapon), recipe(l.Armor))
}

func runExpeditionSim() error {
	fs := flag.NewFlagSet("expeditions", flag.ExitOnError)
	lf := addLoadoutFlags(fs)

	startFloor := fs.Int("start-floor", 0, "Start floor (ascension only)")
	retreat := fs.Float64("retreat", 0.3, "Withdraw when HP drops below this share of max HP")
	maxDepth := fs.Int("max-depth", 0, "Withdraw on reaching this depth (0 = never)")
	iterations := fs.Int("iterations", 5000, "Number of expeditions to run")

	fs.Parse(os.Args[2:])

	r, loadout, err := lf.resolve()
	if err != nil {
		return err
	}
	policy := balance.Policy{StartFloor: *startFloor, RetreatBelow: *retreat, MaxDepth: *maxDepth}

	fmt.Println("=== Expedition Simulation ===")
	fmt.Println()
	fmt.Println(describeLoadout(r, loadout))
	fmt.Printf("Policy: start floor %d, retreat below %.0f%% HP, max depth %d\n",
		policy.StartFloor, policy.RetreatBelow*100, policy.MaxDepth)
	fmt.Printf("Iterations: %d\n", *iterations)
	fmt.Println()

	summary, err := balance.SimulateExpeditions(r, loadout, policy, *iterations, *lf.seed)
	if err != nil {
		return err
	}
	printExpeditionSummary(summary)
	return nil
}

func printExpeditionSummary(s balance.ExpeditionSummary) {
	fmt.Printf("Results (%d expeditions):\n", s.Simulations)
	fmt.Printf("  Death Rate:    %.1f%% (%d deaths)\n", s.DeathRate, s.Deaths)
	fmt.Printf("  Depth:         avg %.1f, median %d, p90 %d, max %d\n", s.AvgDepth, s.MedianDepth, s.P90Depth, s.MaxDepth)
	fmt.Printf("  Avg Gold:      %.1f\n", s.AvgGold)
	fmt.Printf("  Avg Exp:       %.1f\n", s.AvgExp)
	fmt.Printf("  Avg Equipment: %.2f\n", s.AvgEquipment)
	fmt.Printf("  Avg Boss Kills:%.2f\n", s.AvgBossKills)
}

func runForgeSim() error {
	fs := flag.NewFlagSet("forge", flag.ExitOnError)

	rulesName := fs.String("rules", "ascension", "Ruleset preset (classic or ascension)")
	recipeFlag := fs.String("recipe", "common,common,common", "Material qualities to forge with")
	slotFlag := fs.String("slot", "weapon", "Equipment slot (weapon or armor)")
	level := fs.Int("level", 1, "Forging player level")
	bossDrop := fs.Bool("boss-drop", false, "Forge as a boss drop")
	iterations := fs.Int("iterations", 10000, "Number of items to forge")
	seed := fs.Int64("seed", time.Now().UnixNano(), "Random seed")

	fs.Parse(os.Args[2:])

	r, err := rules.ByName(*rulesName)
	if err != nil {
		return err
	}
	recipe, err := balance.ParseRecipe(*recipeFlag)
	if err != nil {
		return err
	}
	slot, err := items.ParseSlot(*slotFlag)
	if err != nil {
		return err
	}

	fmt.Println("=== Forge Simulation ===")
	fmt.Println()
	fmt.Printf("Rules: %s, Slot: %s, Level %d, Recipe: %s, Boss drop: %v\n", r.Name, slot, *level, *recipeFlag, *bossDrop)
	fmt.Printf("Iterations: %d\n", *iterations)
	fmt.Println()

	s, err := balance.SimulateForge(r, slot, recipe, *level, *bossDrop, *iterations, *seed)
	if err != nil {
		return err
	}
	printForgeSummary(s)
	return nil
}

func printForgeSummary(s balance.ForgeSummary) {
	fmt.Printf("Results (%d items):\n", s.Simulations)
	fmt.Printf("  Material Cost: %d gold\n", s.Cost)
	for _, q := range items.Qualities {
		fmt.Printf("  %-13s  %5.1f%%\n", q.String()+":", s.TierRate(q))
	}
	fmt.Printf("  Avg Value:     %.1f\n", s.AvgValue)
	fmt.Printf("  Avg Profit:    %+.1f\n", s.AvgProfit)
	fmt.Printf("  Avg Stats:     %.2f\n", s.AvgStats)
}

func runDepthSim() error {
	fs := flag.NewFlagSet("depths", flag.ExitOnError)
	lf := addLoadoutFlags(fs)

	start := fs.Int("start", 1, "First depth")
	end := fs.Int("end", 30, "Last depth")
	step := fs.Int("step", 1, "Depth step")
	iterations := fs.Int("iterations", 5000, "Fights per depth")

	fs.Parse(os.Args[2:])

	if *step < 1 {
		return fmt.Errorf("step must be at least 1")
	}
	r, loadout, err := lf.resolve()
	if err != nil {
		return err
	}

	depths := make([]int, 0)
	for d := *start; d <= *end; d += *step {
		depths = append(depths, d)
	}

	fmt.Println("=== Depth Scaling Simulation ===")
	fmt.Println()
	fmt.Println(describeLoadout(r, loadout))
	fmt.Printf("Testing depths %d-%d (step %d), %d iterations each\n", *start, *end, *step, *iterations)
	fmt.Println()

	results, err := balance.SimulateDepths(r, loadout, depths, *iterations, *lf.seed)
	if err != nil {
		return err
	}
	printDepthResults(results)
	return nil
}

func printDepthResults(results []balance.DepthResult) {
	fmt.Println("Depth | Boss | Monster HP/ATK | Win Rate | Avg Rounds | Avg HP Left")
	fmt.Println("------+------+----------------+----------+------------+------------")
	for _, r := range results {
		boss := ""
		if r.Boss {
			boss = "yes"
		}
		fmt.Printf("%5d | %4s | %8d/%-5d | %6.1f%% | %10.1f | %10.1f\n",
			r.Depth, boss, r.MonsterHP, r.MonsterATK, r.WinRate, r.AvgRounds, r.AvgHPLeft)
	}
}

func runSweep() error {
	fmt.Println("=== Comprehensive Balance Sweep ===")
	fmt.Println()
	fmt.Println("Running standard balance checks...")
	fmt.Println()

	const iterations = 2000
	seed := time.Now().UnixNano()
	r := rules.Ascension()
	rare := []items.Quality{items.Rare, items.Rare, items.Rare}

	// Test 1: a fresh hero should clear the surface and fall at the first boss
	fmt.Println("--- Test 1: Fresh Hero vs First Floor ---")
	depths, err := balance.SimulateDepths(r, balance.Loadout{Level: 1}, []int{1, 5, 9, 10}, iterations, seed)
	if err != nil {
		return err
	}
	printDepthResults(depths)
	assessBalance("Fresh hero vs depth 1", depths[0].WinRate)
	assessBalance("Fresh hero vs first boss", depths[3].WinRate)
	fmt.Println()

	// Test 2: a rare-geared hero diving with a cautious retreat
	fmt.Println("--- Test 2: Level 10 Hero (Rare Gear) Expeditions ---")
	geared := balance.Loadout{Level: 10, Weapon: rare, Armor: rare}
	summary, err := balance.SimulateExpeditions(r, geared, balance.Policy{RetreatBelow: 0.3}, iterations, seed)
	if err != nil {
		return err
	}
	printExpeditionSummary(summary)
	assessBalance("Geared hero survival", 100-summary.DeathRate)
	fmt.Println()

	// Test 3: forging common materials must not be a gold fountain
	fmt.Println("--- Test 3: Forge Economy ---")
	for _, recipe := range [][]items.Quality{
		{items.Common, items.Common, items.Common},
		{items.Refined, items.Refined, items.Common},
		rare,
	} {
		s, err := balance.SimulateForge(r, items.Weapon, recipe, 1, false, iterations, seed)
		if err != nil {
			return err
		}
		fmt.Printf("  cost %4d -> avg value %7.1f (%+.1f)\n", s.Cost, s.AvgValue, s.AvgProfit)
		if s.AvgProfit > 0 && recipe[0] == items.Common {
			fmt.Println("  WARNING: forging commons for sale turns a profit")
		}
	}
	fmt.Println()

	// Test 4: ungeared heroes should struggle deep in the abyss
	fmt.Println("--- Test 4: Undergeared Hero (Balance Check) ---")
	bare, err := balance.SimulateDepths(r, balance.Loadout{Level: 10}, []int{25}, iterations, seed)
	if err != nil {
		return err
	}
	printDepthResults(bare)
	if bare[0].WinRate > 30 {
		fmt.Println("WARNING: Undergeared heroes may have it too easy")
	} else {
		fmt.Println("OK: Gear matters for survival")
	}
	fmt.Println()

	fmt.Println("=== Summary ===")
	fmt.Println("Target win rates:")
	fmt.Println("  - Ordinary depths for the hero's gear: 60-80%")
	fmt.Println("  - Boss floors: 30-50%")
	fmt.Println("  - Deaths per expedition with a sane retreat: under 25%")
	return nil
}

func assessBalance(context string, winRate float64) {
	var assessment string
	switch {
	case winRate < 30:
		assessment = "TOO HARD"
	case winRate < 50:
		assessment = "CHALLENGING"
	case winRate < 70:
		assessment = "BALANCED"
	case winRate < 85:
		assessment = "EASY"
	default:
		assessment = "TOO EASY"
	}

	color := ""
	reset := ""
	if isTerminal() {
		switch assessment {
		case "TOO HARD", "TOO EASY":
			color = "\033[31m"
		case "CHALLENGING", "EASY":
			color = "\033[33m"
		case "BALANCED":
			color = "\033[32m"
		}
		reset = "\033[0m"
	}
	fmt.Printf("  Assessment (%s): %s%s%s\n", context, color, assessment, reset)
}

func isTerminal() bool {
	return os.Getenv("TERM") != "" && !strings.Contains(os.Getenv("TERM"), "dumb")
}

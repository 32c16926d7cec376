package command

import (
	"fmt"
	"strings"

	"github.com/lawnchairsociety/abyssforge/internal/game"
)

const (
	historyLimit     = 10
	leaderboardLimit = 10
)

// executeHistory lists the slot's recent expeditions
func executeHistory(c *Command, s *game.Session, h Host) string {
	if h == nil {
		return "History is not available."
	}
	records, err := h.RecentExpeditions(s.Slot(), historyLimit)
	if err != nil {
		return "Could not load your history."
	}
	if len(records) == 0 {
		return "You have not finished any expeditions yet."
	}

	var b strings.Builder
	b.WriteString("=== Recent expeditions ===\n")
	for _, e := range records {
		b.WriteString(fmt.Sprintf("  %s  depth %d-%d  %-8s",
			e.EndedAt.Format("2006-01-02 15:04"), e.StartDepth, e.Depth, e.Outcome))
		if e.Outcome == game.OutcomeDied {
			b.WriteString(fmt.Sprintf(" lost %d items", e.ItemsLost))
		} else {
			b.WriteString(fmt.Sprintf(" %d gold, %d mats, %d gear", e.Gold, e.Materials, e.Equipment))
		}
		if e.Experience > 0 {
			b.WriteString(fmt.Sprintf(", %d exp", e.Experience))
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// executeLeaderboard ranks slots by boss kills
func executeLeaderboard(c *Command, h Host) string {
	if h == nil {
		return "The leaderboard is not available."
	}
	entries, err := h.BossLeaderboard(leaderboardLimit)
	if err != nil {
		return "Could not load the leaderboard."
	}
	if len(entries) == 0 {
		return "No boss has fallen yet."
	}

	var b strings.Builder
	b.WriteString("=== Boss slayers ===\n")
	for i, e := range entries {
		b.WriteString(fmt.Sprintf("  %2d. %-24s %d\n", i+1, e.Slot, e.KillCount))
	}
	return strings.TrimRight(b.String(), "\n")
}

// executeWho lists connected slots
func executeWho(c *Command, h Host) string {
	if h == nil {
		return "Nobody else is here."
	}
	slots := h.OnlineSlots()
	if len(slots) == 0 {
		return "Nobody is online."
	}
	return fmt.Sprintf("Online (%d): %s", len(slots), strings.Join(slots, ", "))
}

func executeUptime(h Host) string {
	if h == nil {
		return "Uptime is not available."
	}
	up := h.Uptime()
	return fmt.Sprintf("Server uptime: %d hours, %d minutes, %d seconds",
		int(up.Hours()), int(up.Minutes())%60, int(up.Seconds())%60)
}

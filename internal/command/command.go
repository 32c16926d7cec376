// Package command parses player input and runs it against a game session.
package command

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/lawnchairsociety/abyssforge/internal/database"
	"github.com/lawnchairsociety/abyssforge/internal/game"
)

// Host is what commands need from the server around a session
type Host interface {
	SaveSession(s *game.Session) error
	GrantsEnabled() bool
	OnlineSlots() []string
	Uptime() time.Duration
	RecentExpeditions(slot string, limit int) ([]database.ExpeditionRecord, error)
	BossLeaderboard(limit int) ([]database.KillCount, error)
}

type Command struct {
	Name string
	Args []string
}

// RequireArgs checks if the command has at least the minimum number of arguments
// Returns an error with the usage message if not enough arguments are provided
func (c *Command) RequireArgs(min int, usage string) error {
	if len(c.Args) < min {
		return errors.New(usage)
	}
	return nil
}

// Arg returns the i-th argument lowercased, or "" if missing
func (c *Command) Arg(i int) string {
	if i >= len(c.Args) {
		return ""
	}
	return strings.ToLower(c.Args[i])
}

// IsQuit reports whether the command ends the connection
func (c *Command) IsQuit() bool {
	return c.Name == "quit" || c.Name == "exit"
}

func ParseCommand(input string) *Command {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return &Command{Name: "", Args: []string{}}
	}

	return &Command{
		Name: strings.ToLower(parts[0]),
		Args: parts[1:],
	}
}

// Execute runs the command and returns the text to show the player
func (c *Command) Execute(s *game.Session, h Host) string {
	if s == nil {
		return "Internal error: no session"
	}

	switch c.Name {
	case "":
		return ""
	case "help", "?":
		return executeHelp(c)
	case "status", "score", "st":
		return executeStatus(c, s)
	case "stats", "statistics":
		return executeStatistics(c, s)
	case "bag", "inventory", "inv", "i":
		return executeBag(c, s)
	case "shop", "list":
		return executeShop(c, s)
	case "buy", "purchase":
		return executeBuy(c, s)
	case "forge", "craft":
		return executeForge(c, s)
	case "equip", "wear", "wield":
		return executeEquip(c, s)
	case "unequip", "remove":
		return executeUnequip(c, s)
	case "sell":
		return executeSell(c, s)
	case "enter", "descend":
		return executeEnter(c, s)
	case "proceed", "next", "p":
		return executeProceed(c, s)
	case "fight", "attack":
		return executeFight(c, s)
	case "strike", "hit":
		return executeStrike(c, s)
	case "withdraw", "retreat":
		return executeWithdraw(c, s, h)
	case "revive":
		return executeRevive(c, s, h)
	case "log":
		return executeLog(c, s)
	case "history":
		return executeHistory(c, s, h)
	case "leaderboard", "top":
		return executeLeaderboard(c, h)
	case "who":
		return executeWho(c, h)
	case "uptime":
		return executeUptime(h)
	case "save":
		return executeSave(s, h)
	case "grant", "supplies":
		return executeGrant(c, s, h)
	case "quit", "exit":
		return "Farewell. Your progress will be saved."
	default:
		return fmt.Sprintf("Unknown command: %s. Type 'help' for available commands.", c.Name)
	}
}

// errorText renders an error for the player, dropping package prefixes
func errorText(err error) string {
	msg := err.Error()
	if i := strings.Index(msg, ": "); i > 0 && !strings.Contains(msg[:i], " ") {
		msg = msg[i+2:]
	}
	if msg == "" {
		return "Something went wrong."
	}
	r, size := utf8.DecodeRuneInString(msg)
	return string(unicode.ToUpper(r)) + msg[size:] + "."
}

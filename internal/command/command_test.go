package command

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/lawnchairsociety/abyssforge/internal/database"
	"github.com/lawnchairsociety/abyssforge/internal/dice"
	"github.com/lawnchairsociety/abyssforge/internal/game"
	"github.com/lawnchairsociety/abyssforge/internal/items"
	"github.com/lawnchairsociety/abyssforge/internal/player"
	"github.com/lawnchairsociety/abyssforge/internal/rules"
)

// mockHost implements Host for testing
type mockHost struct {
	saves   int
	saveErr error
	grants  bool
	history []database.ExpeditionRecord
	board   []database.KillCount
}

func (m *mockHost) SaveSession(s *game.Session) error {
	m.saves++
	return m.saveErr
}
func (m *mockHost) GrantsEnabled() bool   { return m.grants }
func (m *mockHost) OnlineSlots() []string { return []string{"alice", "bob"} }
func (m *mockHost) Uptime() time.Duration { return 90*time.Minute + 5*time.Second }
func (m *mockHost) RecentExpeditions(slot string, limit int) ([]database.ExpeditionRecord, error) {
	return m.history, nil
}
func (m *mockHost) BossLeaderboard(limit int) ([]database.KillCount, error) {
	return m.board, nil
}

func newSession(r *rules.Ruleset, src dice.Source) *game.Session {
	return game.NewSession("hero", r, player.New(r), src)
}

func run(s *game.Session, h Host, input string) string {
	return ParseCommand(input).Execute(s, h)
}

func assertContains(t *testing.T, got, want string) {
	t.Helper()
	if !strings.Contains(got, want) {
		t.Errorf("expected output to contain %q, got:\n%s", want, got)
	}
}

func TestParseCommand(t *testing.T) {
	tests := []struct {
		input    string
		wantName string
		wantArgs []string
	}{
		{"", "", []string{}},
		{"   ", "", []string{}},
		{"status", "status", []string{}},
		{"BUY Common 3", "buy", []string{"Common", "3"}},
		{"  forge  weapon rare  ", "forge", []string{"weapon", "rare"}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			cmd := ParseCommand(tt.input)
			if cmd.Name != tt.wantName {
				t.Errorf("Name = %q, want %q", cmd.Name, tt.wantName)
			}
			if len(cmd.Args) != len(tt.wantArgs) {
				t.Fatalf("Args = %v, want %v", cmd.Args, tt.wantArgs)
			}
			for i := range tt.wantArgs {
				if cmd.Args[i] != tt.wantArgs[i] {
					t.Errorf("Args[%d] = %q, want %q", i, cmd.Args[i], tt.wantArgs[i])
				}
			}
		})
	}
}

func TestCommandHelpers(t *testing.T) {
	cmd := ParseCommand("buy Rare")
	if err := cmd.RequireArgs(1, "usage"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := cmd.RequireArgs(2, "usage"); err == nil || err.Error() != "usage" {
		t.Errorf("expected usage error, got %v", err)
	}
	if cmd.Arg(0) != "rare" || cmd.Arg(5) != "" {
		t.Errorf("unexpected Arg results %q %q", cmd.Arg(0), cmd.Arg(5))
	}
	if !ParseCommand("quit").IsQuit() || ParseCommand("status").IsQuit() {
		t.Error("IsQuit mismatch")
	}
}

func TestErrorText(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{errors.New("not enough gold"), "Not enough gold."},
		{errors.New("dungeon: the expedition is still alive"), "The expedition is still alive."},
		{errors.New("no such item in your bag: abc"), "No such item in your bag: abc."},
		{errors.New(""), "Something went wrong."},
	}
	for _, tt := range tests {
		if got := errorText(tt.err); got != tt.want {
			t.Errorf("errorText(%q) = %q, want %q", tt.err, got, tt.want)
		}
	}
}

func TestUnknownCommand(t *testing.T) {
	s := newSession(rules.Classic(), dice.Repeat(0.5))
	assertContains(t, run(s, nil, "dance"), "Unknown command: dance")
	if got := run(s, nil, ""); got != "" {
		t.Errorf("empty input should produce no output, got %q", got)
	}
}

func TestHelp(t *testing.T) {
	s := newSession(rules.Classic(), dice.Repeat(0.5))
	assertContains(t, run(s, nil, "help"), "Available commands")
	assertContains(t, run(s, nil, "help forge"), "FORGE <weapon|armor>")
	assertContains(t, run(s, nil, "help enter"), "ENTER [floor]")
}

func TestBuy(t *testing.T) {
	s := newSession(rules.Classic(), dice.Repeat(0.5))

	assertContains(t, run(s, nil, "buy"), "Usage: buy")
	assertContains(t, run(s, nil, "buy common x"), "Count must be a number")
	assertContains(t, run(s, nil, "buy common 1844674407370955162"), "at most 100 at a time")
	assertContains(t, run(s, nil, "buy mithril"), "The shop does not sell that")

	out := run(s, nil, "buy common 2")
	assertContains(t, out, "You buy 2 x")
	assertContains(t, out, "for 20 gold")
	if s.Player().Gold != 180 {
		t.Errorf("expected 180 gold, got %d", s.Player().Gold)
	}

	assertContains(t, run(s, nil, "buy rare 5"), "Not enough gold")
	if s.Player().Gold != 180 || len(s.Player().Materials) != 2 {
		t.Error("declined purchase must not change the player")
	}

	bag := run(s, nil, "bag")
	assertContains(t, bag, "Gold: 180")
	assertContains(t, bag, "common   x2")
}

func TestForgeEquipSell(t *testing.T) {
	s := newSession(rules.Classic(), dice.Repeat(0.5))
	run(s, nil, "buy common 3")

	out := run(s, nil, "forge weapon common common common")
	assertContains(t, out, "You create")
	if len(s.Player().Materials) != 0 || len(s.Player().Inventory) != 1 {
		t.Fatalf("expected materials consumed and one item, got %d/%d", len(s.Player().Materials), len(s.Player().Inventory))
	}

	assertContains(t, run(s, nil, "equip 1"), "You equip")
	if s.Player().EquippedWeapon == nil {
		t.Fatal("expected weapon equipped")
	}
	assertContains(t, run(s, nil, "bag"), "[equipped]")
	assertContains(t, run(s, nil, "sell 1"), "That item is equipped")
	assertContains(t, run(s, nil, "unequip weapon"), "You take off")
	assertContains(t, run(s, nil, "unequip weapon"), "Nothing equipped in that slot")

	value := s.Player().Inventory[0].Value
	out = run(s, nil, "sell 1")
	assertContains(t, out, "You sell")
	if s.Player().Gold != 170+value {
		t.Errorf("expected %d gold after sale, got %d", 170+value, s.Player().Gold)
	}
}

func TestForgeErrors(t *testing.T) {
	s := newSession(rules.Classic(), dice.Repeat(0.5))
	run(s, nil, "buy common 4")

	assertContains(t, run(s, nil, "forge weapon"), "Usage: forge")
	assertContains(t, run(s, nil, "forge shield common"), "You can forge a weapon or armor")
	assertContains(t, run(s, nil, "forge weapon rare"), "No such material in your bag")
	assertContains(t, run(s, nil, "forge weapon common common common common"), "Too many materials: at most 3")

	if len(s.Player().Materials) != 4 {
		t.Errorf("failed forges must not consume materials, have %d", len(s.Player().Materials))
	}
}

func TestMaterialRefs(t *testing.T) {
	bag := []items.Material{
		{ID: "aaaa1111", Quality: items.Common},
		{ID: "bbbb2222", Quality: items.Common},
		{ID: "cccc3333", Quality: items.Rare},
	}

	tests := []struct {
		name    string
		refs    []string
		want    []string
		wantErr bool
	}{
		{"by quality", []string{"common", "common"}, []string{"aaaa1111", "bbbb2222"}, false},
		{"prefix then quality", []string{"aaaa", "common"}, []string{"aaaa1111", "bbbb2222"}, false},
		{"mixed tiers", []string{"rare", "bbbb2222"}, []string{"cccc3333", "bbbb2222"}, false},
		{"same id twice", []string{"aaaa", "aaaa1111"}, nil, true},
		{"tier exhausted", []string{"rare", "rare"}, nil, true},
		{"unknown", []string{"zzzz"}, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := materialRefs(bag, tt.refs)
			if tt.wantErr {
				if !errors.Is(err, player.ErrMaterialNotFound) {
					t.Errorf("expected ErrMaterialNotFound, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if strings.Join(got, ",") != strings.Join(tt.want, ",") {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEquipmentRef(t *testing.T) {
	list := []items.Equipment{{ID: "first-id"}, {ID: "second-id"}}

	tests := []struct {
		ref  string
		want string
	}{
		{"1", "first-id"},
		{"2", "second-id"},
		{"3", "3"},
		{"0", "0"},
		{"second", "second"},
	}
	for _, tt := range tests {
		if got := equipmentRef(list, tt.ref); got != tt.want {
			t.Errorf("equipmentRef(%q) = %q, want %q", tt.ref, got, tt.want)
		}
	}
}

func TestExpeditionLootAndWithdraw(t *testing.T) {
	// event 0.5 -> loot; tier 0.5 -> common; gold 7; exp 15
	s := newSession(rules.Ascension(), dice.Script(0.5, 0.5, 0.5, 0.5))
	h := &mockHost{}

	assertContains(t, run(s, h, "proceed"), "You are not on an expedition")
	assertContains(t, run(s, h, "enter"), "You step into the abyss at depth 0 with 100 HP")
	assertContains(t, run(s, h, "buy common"), "You are in the abyss; withdraw first")

	out := run(s, h, "proceed")
	assertContains(t, out, "Depth 1: you search the ruins and find 7 gold")
	assertContains(t, out, "(+15 exp)")
	assertContains(t, out, "A new personal best!")

	status := run(s, h, "status")
	assertContains(t, status, "Level: 1  |  EXP: 15 / 150")
	assertContains(t, status, "Depth: 1  [#---------] boss in 9")
	assertContains(t, run(s, h, "log"), "[Depth 1]")

	assertContains(t, run(s, h, "withdraw"), "You return to town with 7 gold, 1 materials and 0 equipment")
	if h.saves != 1 {
		t.Errorf("withdraw should save once, saved %d times", h.saves)
	}
	if s.Player().Gold != 207 {
		t.Errorf("expected 207 gold, got %d", s.Player().Gold)
	}
}

func TestExpeditionFight(t *testing.T) {
	// monster; three non-crit rounds; refined roll then rare material
	s := newSession(rules.Ascension(), dice.Script(0.1, 0.99, 0.99, 0.99, 0.7, 0.96))
	h := &mockHost{}

	run(s, h, "enter")
	out := run(s, h, "proceed")
	assertContains(t, out, "a monster blocks the way!")
	assertContains(t, out, "Guardian Lv.1")

	assertContains(t, run(s, h, "proceed"), "Something blocks the way")
	assertContains(t, run(s, h, "withdraw"), "You cannot withdraw in the middle of a battle")

	out = run(s, h, "fight")
	assertContains(t, out, "Victory after 3 rounds. (+30 exp)")
	assertContains(t, out, "HP: 98 / 100")
	assertContains(t, run(s, h, "fight"), "There is nothing to fight")
}

func TestDeathAndRevive(t *testing.T) {
	s := newSession(rules.Ascension(), dice.Repeat(0.99))
	h := &mockHost{}
	p := s.Player()
	p.BaseStats.HP = 10
	p.BaseStats.ATK = 1

	assertContains(t, run(s, h, "revive"), "You are not on an expedition")
	run(s, h, "enter")
	// 0.99 rests past depth 5, so walk to depth 9 quickly via the run itself
	for i := 0; i < 10; i++ {
		out := run(s, h, "proceed")
		if strings.Contains(out, "Type 'fight'") {
			break
		}
	}

	out := run(s, h, "fight")
	assertContains(t, out, "You have been slain")
	assertContains(t, run(s, h, "withdraw"), "You have fallen")
	assertContains(t, run(s, h, "status"), "You lie fallen")

	assertContains(t, run(s, h, "revive"), "You wake in town")
	if s.InExpedition() {
		t.Error("revive should end the expedition")
	}
	if h.saves != 1 {
		t.Errorf("revive should save once, saved %d times", h.saves)
	}
}

func TestEnterFloorLocked(t *testing.T) {
	classic := newSession(rules.Classic(), dice.Repeat(0.5))
	assertContains(t, run(classic, nil, "enter 1"), "These rules always start at the surface")

	asc := newSession(rules.Ascension(), dice.Repeat(0.5))
	assertContains(t, run(asc, nil, "enter 1"), "That start floor is locked")
	assertContains(t, run(asc, nil, "enter x"), "Usage: enter")

	asc.Player().MaxDungeonDepth = 20
	assertContains(t, run(asc, nil, "enter 2"), "at depth 20")
}

func TestGrant(t *testing.T) {
	s := newSession(rules.Classic(), dice.Repeat(0.5))

	assertContains(t, run(s, &mockHost{}, "grant gold"), "not available")
	h := &mockHost{grants: true}
	assertContains(t, run(s, h, "grant gold"), "delivers 500 gold")
	assertContains(t, run(s, h, "grant exp"), "These rules have no experience")

	asc := newSession(rules.Ascension(), dice.Repeat(0.5))
	assertContains(t, run(asc, h, "grant exp"), "LEVEL UP! You are now level 2")
}

func TestSave(t *testing.T) {
	s := newSession(rules.Classic(), dice.Repeat(0.5))

	h := &mockHost{}
	assertContains(t, run(s, h, "save"), "Progress saved")
	h.saveErr = errors.New("disk full")
	assertContains(t, run(s, h, "save"), "could not be saved")
	if h.saves != 2 {
		t.Errorf("expected 2 save attempts, got %d", h.saves)
	}
}

func TestRecords(t *testing.T) {
	s := newSession(rules.Ascension(), dice.Repeat(0.5))
	h := &mockHost{}

	assertContains(t, run(s, h, "history"), "not finished any expeditions")
	assertContains(t, run(s, h, "leaderboard"), "No boss has fallen")

	h.history = []database.ExpeditionRecord{
		{StartDepth: 0, Depth: 12, Outcome: game.OutcomeWithdrew, Gold: 90, Materials: 3, Experience: 150, EndedAt: time.Date(2025, 1, 2, 3, 4, 0, 0, time.UTC)},
		{StartDepth: 10, Depth: 14, Outcome: game.OutcomeDied, ItemsLost: 2},
	}
	h.board = []database.KillCount{{Slot: "alice", KillCount: 4}}

	out := run(s, h, "history")
	assertContains(t, out, "2025-01-02 03:04  depth 0-12  withdrew")
	assertContains(t, out, "90 gold, 3 mats, 0 gear, 150 exp")
	assertContains(t, out, "lost 2 items")
	assertContains(t, run(s, h, "leaderboard"), "1. alice")
	assertContains(t, run(s, h, "who"), "Online (2): alice, bob")
	assertContains(t, run(s, h, "uptime"), "1 hours, 30 minutes, 5 seconds")
}

func TestStatistics(t *testing.T) {
	s := newSession(rules.Classic(), dice.Repeat(0.5))
	run(s, nil, "buy common")
	run(s, nil, "forge armor common")

	out := run(s, nil, "stats")
	assertContains(t, out, "Items forged:    1")
	assertContains(t, run(s, nil, "status"), "Rules: classic")
}

package stats

import (
	"encoding/json"
	"testing"
)

func TestBlockAdd(t *testing.T) {
	base := Block{HP: 100, ATK: 20, DEF: 10, CRIT: 5}

	tests := []struct {
		name  string
		entry Entry
		want  Block
	}{
		{"hp", Entry{Kind: HP, Value: 50}, Block{HP: 150, ATK: 20, DEF: 10, CRIT: 5}},
		{"atk", Entry{Kind: ATK, Value: 7}, Block{HP: 100, ATK: 27, DEF: 10, CRIT: 5}},
		{"def", Entry{Kind: DEF, Value: 3}, Block{HP: 100, ATK: 20, DEF: 13, CRIT: 5}},
		{"crit", Entry{Kind: CRIT, Value: 4}, Block{HP: 100, ATK: 20, DEF: 10, CRIT: 9}},
		{"lifesteal", Entry{Kind: LIFESTEAL, Value: 2}, Block{HP: 100, ATK: 20, DEF: 10, CRIT: 5, LIFESTEAL: 2}},
		{"unknown kind ignored", Entry{Kind: Kind(42), Value: 99}, base},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := base.Add(tt.entry)
			if got != tt.want {
				t.Errorf("Add(%v) = %+v, want %+v", tt.entry, got, tt.want)
			}
		})
	}

	if base.HP != 100 {
		t.Error("Add must not mutate the receiver")
	}
}

func TestBlockAddAllRepeatedKinds(t *testing.T) {
	got := Block{}.AddAll([]Entry{{Kind: ATK, Value: 5}, {Kind: ATK, Value: 6}, {Kind: CRIT, Value: 2}})
	if got.ATK != 11 || got.CRIT != 2 {
		t.Errorf("AddAll = %+v", got)
	}
}

func TestBlockGetMatchesAdd(t *testing.T) {
	for _, k := range Kinds {
		b := Block{}.Add(Entry{Kind: k, Value: 3})
		if b.Get(k) != 3 {
			t.Errorf("Get(%s) = %d, want 3", k, b.Get(k))
		}
	}
}

func TestKindText(t *testing.T) {
	for _, k := range Kinds {
		text, err := k.MarshalText()
		if err != nil {
			t.Fatalf("MarshalText(%d): %v", k, err)
		}
		var back Kind
		if err := back.UnmarshalText(text); err != nil || back != k {
			t.Errorf("UnmarshalText(%s) = %v, %v", text, back, err)
		}
	}

	if _, err := ParseKind("mana"); err == nil {
		t.Error("expected error for unknown kind")
	}
	if k, err := ParseKind("lifesteal"); err != nil || k != LIFESTEAL {
		t.Errorf("ParseKind(lifesteal) = %v, %v", k, err)
	}
	if k, err := ParseKind("Atk"); err != nil || k != ATK {
		t.Errorf("ParseKind(Atk) = %v, %v", k, err)
	}
	if _, err := ParseKind("ATKX"); err == nil {
		t.Error("expected error for ATKX")
	}
}

func TestEntryJSONUsesKindName(t *testing.T) {
	data, err := json.Marshal(Entry{Kind: CRIT, Label: "暴击率", Value: 8, Suffix: "%"})
	if err != nil {
		t.Fatal(err)
	}
	want := `{"type":"CRIT","label":"暴击率","value":8,"suffix":"%"}`
	if string(data) != want {
		t.Errorf("got %s, want %s", data, want)
	}
}

func TestDefaultTable(t *testing.T) {
	table := DefaultTable()
	if err := table.Validate(); err != nil {
		t.Fatal(err)
	}
	if table[CRIT].Cap != 20 || table[LIFESTEAL].Cap != 10 {
		t.Error("percentage caps should be 20 and 10")
	}
	e := table.Entry(ATK, 12)
	if e.String() != "攻击 +12" {
		t.Errorf("Entry.String() = %q", e.String())
	}

	delete(table, DEF)
	if err := table.Validate(); err == nil {
		t.Error("expected missing kind error")
	}
}

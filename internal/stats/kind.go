package stats

import (
	"fmt"
	"strings"
)

// Kind identifies one of the five stats an item or character can carry
type Kind int

const (
	HP Kind = iota
	ATK
	DEF
	CRIT
	LIFESTEAL
)

// Kinds lists every stat kind in declaration order
var Kinds = []Kind{HP, ATK, DEF, CRIT, LIFESTEAL}

var kindNames = [...]string{"HP", "ATK", "DEF", "CRIT", "LIFESTEAL"}

// String returns the upper-case stat name
func (k Kind) String() string {
	if k < HP || k > LIFESTEAL {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// Percent reports whether the kind is a capped percentage (CRIT, LIFESTEAL)
func (k Kind) Percent() bool {
	return k == CRIT || k == LIFESTEAL
}

// ParseKind converts a stat name ("atk", "HP", ...) to a Kind
func ParseKind(s string) (Kind, error) {
	for i, name := range kindNames {
		if strings.EqualFold(name, s) {
			return Kind(i), nil
		}
	}
	return 0, fmt.Errorf("unknown stat kind %q", s)
}

// MarshalText encodes the kind as its name so saves stay readable
func (k Kind) MarshalText() ([]byte, error) {
	if k < HP || k > LIFESTEAL {
		return nil, fmt.Errorf("invalid stat kind %d", int(k))
	}
	return []byte(kindNames[k]), nil
}

// UnmarshalText decodes a stat name
func (k *Kind) UnmarshalText(b []byte) error {
	parsed, err := ParseKind(string(b))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// Entry is a single stat line on a piece of equipment
type Entry struct {
	Kind   Kind   `json:"type" yaml:"type"`
	Label  string `json:"label" yaml:"label"`
	Value  int    `json:"value" yaml:"value"`
	Suffix string `json:"suffix" yaml:"suffix"`
}

// String renders the entry the way the bag listing shows it, e.g. "攻击 +12".
func (e Entry) String() string {
	return fmt.Sprintf("%s +%d%s", e.Label, e.Value, e.Suffix)
}

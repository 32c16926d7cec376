package items

import (
	"fmt"
	"strconv"
	"strings"
)

// Quality is the ordinal tier of a material or a forged item. Its numeric
// value doubles as the material weight in forge formulas.
type Quality int

const (
	Common  Quality = 1
	Refined Quality = 2
	Rare    Quality = 3
)

// Qualities lists the tiers from lowest to highest
var Qualities = []Quality{Common, Refined, Rare}

// Valid reports whether q is one of the three tiers
func (q Quality) Valid() bool {
	return q >= Common && q <= Rare
}

// String returns the lower-case command name of the tier
func (q Quality) String() string {
	switch q {
	case Common:
		return "common"
	case Refined:
		return "refined"
	case Rare:
		return "rare"
	}
	return "quality(" + strconv.Itoa(int(q)) + ")"
}

// DisplayName returns the tier name shown next to materials
func (q Quality) DisplayName() string {
	switch q {
	case Common:
		return "普通"
	case Refined:
		return "优质"
	case Rare:
		return "稀有"
	}
	return q.String()
}

// Prefix returns the name prefix given to equipment of this tier
func (q Quality) Prefix() string {
	switch q {
	case Rare:
		return "传说"
	case Refined:
		return "精炼"
	}
	return "普通的"
}

// ParseQuality accepts a tier name or its number
func ParseQuality(s string) (Quality, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "common", "1":
		return Common, nil
	case "refined", "2":
		return Refined, nil
	case "rare", "3":
		return Rare, nil
	}
	return 0, fmt.Errorf("unknown quality %q", s)
}

// Sum adds up the numeric weights of a quality list
func Sum(qs []Quality) int {
	total := 0
	for _, q := range qs {
		total += int(q)
	}
	return total
}

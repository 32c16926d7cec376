// Package stats defines stat kinds, stat entries and the aggregate stat
// block a character fights with.
package stats

// Block is a full set of character stats
type Block struct {
	HP        int `json:"HP" yaml:"hp"`
	ATK       int `json:"ATK" yaml:"atk"`
	DEF       int `json:"DEF" yaml:"def"`
	CRIT      int `json:"CRIT" yaml:"crit"`
	LIFESTEAL int `json:"LIFESTEAL" yaml:"lifesteal"`
}

// Get returns the value stored for kind
func (b Block) Get(k Kind) int {
	switch k {
	case HP:
		return b.HP
	case ATK:
		return b.ATK
	case DEF:
		return b.DEF
	case CRIT:
		return b.CRIT
	case LIFESTEAL:
		return b.LIFESTEAL
	}
	return 0
}

// Add returns a copy of b with the entry's value added to the matching field.
// Unknown kinds are ignored.
func (b Block) Add(e Entry) Block {
	switch e.Kind {
	case HP:
		b.HP += e.Value
	case ATK:
		b.ATK += e.Value
	case DEF:
		b.DEF += e.Value
	case CRIT:
		b.CRIT += e.Value
	case LIFESTEAL:
		b.LIFESTEAL += e.Value
	}
	return b
}

// AddAll applies every entry in order
func (b Block) AddAll(entries []Entry) Block {
	for _, e := range entries {
		b = b.Add(e)
	}
	return b
}

// Plus adds two blocks field by field
func (b Block) Plus(o Block) Block {
	return Block{
		HP:        b.HP + o.HP,
		ATK:       b.ATK + o.ATK,
		DEF:       b.DEF + o.DEF,
		CRIT:      b.CRIT + o.CRIT,
		LIFESTEAL: b.LIFESTEAL + o.LIFESTEAL,
	}
}

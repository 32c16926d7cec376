package stats

// Spec holds the per-kind constants used when rolling equipment stats.
type Spec struct {
	Label  string  `yaml:"label"`
	Suffix string  `yaml:"suffix"`
	Base   float64 `yaml:"base"`
	Scale  float64 `yaml:"scale"`
	// Cap bounds percentage kinds under the capped value model. Zero for flat kinds.
	Cap int `yaml:"cap"`
}

// Table maps every stat kind to its roll constants
type Table map[Kind]Spec

// DefaultTable returns the stock stat constants.
func DefaultTable() Table {
	return Table{
		HP:        {Label: "生命值", Base: 50, Scale: 20},
		ATK:       {Label: "攻击", Base: 10, Scale: 5},
		DEF:       {Label: "防御", Base: 5, Scale: 3},
		CRIT:      {Label: "暴击率", Suffix: "%", Base: 5, Scale: 2.5, Cap: 20},
		LIFESTEAL: {Label: "吸血", Suffix: "%", Base: 2, Scale: 1.5, Cap: 10},
	}
}

// Entry builds a stat entry for kind with the table's label and suffix
func (t Table) Entry(k Kind, value int) Entry {
	s := t[k]
	return Entry{Kind: k, Label: s.Label, Value: value, Suffix: s.Suffix}
}

// Validate checks that every kind is present
func (t Table) Validate() error {
	for _, k := range Kinds {
		if _, ok := t[k]; !ok {
			return &MissingKindError{Kind: k}
		}
	}
	return nil
}

// MissingKindError reports a stat table without an entry for Kind.
type MissingKindError struct {
	Kind Kind
}

func (e *MissingKindError) Error() string {
	return "stat table missing kind " + e.Kind.String()
}

package combat

import "fmt"

// EventKind distinguishes damage from healing
type EventKind int

const (
	Damage EventKind = iota
	Heal
)

func (k EventKind) String() string {
	if k == Heal {
		return "heal"
	}
	return "damage"
}

// Side names who an event lands on
type Side int

const (
	Player Side = iota
	Monster
)

func (s Side) String() string {
	if s == Monster {
		return "monster"
	}
	return "player"
}

// Event is one line of the round-by-round trace
type Event struct {
	Round    int
	Kind     EventKind
	Target   Side
	Amount   int
	Critical bool
}

// String renders the event as a trace line
func (e Event) String() string {
	switch {
	case e.Kind == Heal:
		return fmt.Sprintf("round %d: you drain %d HP", e.Round, e.Amount)
	case e.Target == Monster && e.Critical:
		return fmt.Sprintf("round %d: critical hit for %d!", e.Round, e.Amount)
	case e.Target == Monster:
		return fmt.Sprintf("round %d: you hit for %d", e.Round, e.Amount)
	default:
		return fmt.Sprintf("round %d: the monster hits you for %d", e.Round, e.Amount)
	}
}

// Package combat resolves a fight between the player's effective stats and
// a single monster. The player always strikes first; rounds alternate until
// one side reaches 0 HP.
package combat

import (
	"errors"
	"fmt"
	"math"

	"github.com/lawnchairsociety/abyssforge/internal/dice"
	"github.com/lawnchairsociety/abyssforge/internal/stats"
)

var (
	ErrFinished = errors.New("combat: fight already finished")
	ErrNoHealth = errors.New("combat: combatant starts without health")
)

// CritMultiplier scales a critical hit's damage
const CritMultiplier = 1.5

// State is the full input of one round. Values, not pointers: a round
// returns a new State.
type State struct {
	PlayerHP        int
	PlayerMaxHP     int
	PlayerATK       int
	PlayerCrit      int // percent
	PlayerDEF       int
	PlayerLifesteal int // percent
	MonsterHP       int
	MonsterATK      int
	Round           int // rounds played so far
}

// NewState builds a fight state from the player's effective stats
func NewState(player stats.Block, currentHP, maxHP, monsterHP, monsterATK int) State {
	return State{
		PlayerHP:        currentHP,
		PlayerMaxHP:     maxHP,
		PlayerATK:       player.ATK,
		PlayerCrit:      player.CRIT,
		PlayerDEF:       player.DEF,
		PlayerLifesteal: player.LIFESTEAL,
		MonsterHP:       monsterHP,
		MonsterATK:      monsterATK,
	}
}

// Finished reports whether either side is down
func (s State) Finished() bool {
	return s.PlayerHP <= 0 || s.MonsterHP <= 0
}

// Victory reports whether the monster is down and the player standing
func (s State) Victory() bool {
	return s.MonsterHP <= 0 && s.PlayerHP > 0
}

// MonsterDamage is what one counter-attack deals. Defense never reduces a
// hit below 1.
func MonsterDamage(monsterATK, playerDEF int) int {
	return max(1, monsterATK-playerDEF)
}

// Round plays one exchange: the player's hit, an optional lifesteal heal,
// then the monster's counter unless it died. One crit roll is drawn per round.
func Round(s State, src dice.Source) (State, []Event, error) {
	if s.Finished() {
		return s, nil, ErrFinished
	}

	s.Round++
	events := make([]Event, 0, 3)

	crit := src.Float64()*100 < float64(s.PlayerCrit)
	damage := s.PlayerATK
	if crit {
		damage = int(math.Floor(float64(s.PlayerATK) * CritMultiplier))
	}
	heal := int(math.Floor(float64(damage) * float64(s.PlayerLifesteal) / 100))

	s.MonsterHP = max(0, s.MonsterHP-damage)
	events = append(events, Event{Round: s.Round, Kind: Damage, Target: Monster, Amount: damage, Critical: crit})

	if heal > 0 {
		s.PlayerHP = min(s.PlayerMaxHP, s.PlayerHP+heal)
		events = append(events, Event{Round: s.Round, Kind: Heal, Target: Player, Amount: heal})
	}

	if s.MonsterHP <= 0 {
		return s, events, nil
	}

	hit := MonsterDamage(s.MonsterATK, s.PlayerDEF)
	s.PlayerHP = max(0, s.PlayerHP-hit)
	events = append(events, Event{Round: s.Round, Kind: Damage, Target: Player, Amount: hit})

	return s, events, nil
}

// Outcome is the result of a fight played to the end
type Outcome struct {
	Final       State
	Victory     bool
	Rounds      int
	Events      []Event
	DamageDealt int
	DamageTaken int
	Healed      int
}

// Resolve plays rounds until the fight ends. The loop terminates because the
// monster deals at least 1 damage every round it survives.
func Resolve(s State, src dice.Source) (Outcome, error) {
	if s.Finished() {
		if s.PlayerHP <= 0 {
			return Outcome{}, fmt.Errorf("%w: player HP %d", ErrNoHealth, s.PlayerHP)
		}
		return Outcome{}, fmt.Errorf("%w: monster HP %d", ErrNoHealth, s.MonsterHP)
	}

	out := Outcome{}
	for !s.Finished() {
		var events []Event
		var err error
		s, events, err = Round(s, src)
		if err != nil {
			return out, err
		}
		out.record(events)
	}

	out.Final = s
	out.Victory = s.Victory()
	out.Rounds = s.Round
	return out, nil
}

func (o *Outcome) record(events []Event) {
	for _, e := range events {
		switch {
		case e.Kind == Heal:
			o.Healed += e.Amount
		case e.Target == Monster:
			o.DamageDealt += e.Amount
		default:
			o.DamageTaken += e.Amount
		}
	}
	o.Events = append(o.Events, events...)
}

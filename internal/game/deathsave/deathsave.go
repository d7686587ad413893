// Package deathsave implements the dying, stabilized, revived and dead
// lifecycle of a combatant at zero hit points.
package deathsave

import (
	"errors"
	"fmt"

	"github.com/cory-johannsen/tactics/internal/game/damage"
	"github.com/cory-johannsen/tactics/internal/game/dice"
)

// State is a position in the death-save lifecycle.
type State int

const (
	Alive State = iota
	Dying
	Stabilized
	Revived
	Dead
)

// String returns the state label.
func (s State) String() string {
	switch s {
	case Alive:
		return "alive"
	case Dying:
		return "dying"
	case Stabilized:
		return "stabilized"
	case Revived:
		return "revived"
	case Dead:
		return "dead"
	default:
		return "unknown"
	}
}

// Limit is the number of successes or failures that ends the dying state.
const Limit = 3

var (
	// ErrNoRecord is returned when an operation needs a dying combatant.
	ErrNoRecord = errors.New("no death save record")
	// ErrDead is returned for any operation on a dead combatant.
	ErrDead = errors.New("combatant is dead")
	// ErrStable is returned when rolling for a stabilized combatant.
	ErrStable = errors.New("combatant is stable")
)

// Record is the dying combatant's tally.
// Invariant: Successes and Failures never both reach Limit.
type Record struct {
	Successes  int
	Failures   int
	Stabilized bool
}

// Outcome reports the result of a death-save operation.
type Outcome struct {
	State     State
	Roll      int // natural d20, zero when no roll was made
	Successes int
	Failures  int
	HP        int
	Message   string
}

// Tracker owns the optional death-save record of one combatant.
type Tracker struct {
	dc     int
	record *Record
	dead   bool
}

// NewTracker creates a Tracker that treats rolls >= dc as successes.
//
// Precondition: 2 <= dc <= 20.
func NewTracker(dc int) *Tracker {
	return &Tracker{dc: dc}
}

// Record returns a copy of the current record and whether one exists.
func (t *Tracker) Record() (Record, bool) {
	if t.record == nil {
		return Record{}, false
	}
	return *t.record, true
}

// IsDead reports whether the combatant has died.
func (t *Tracker) IsDead() bool { return t.dead }

// State derives the lifecycle state from the record.
func (t *Tracker) State() State {
	switch {
	case t.dead:
		return Dead
	case t.record == nil:
		return Alive
	case t.record.Stabilized:
		return Stabilized
	default:
		return Dying
	}
}

// Init creates the record when v has dropped to zero hit points.
//
// Postcondition: Returns true iff a new record was created.
func (t *Tracker) Init(v *damage.Vitals) bool {
	if t.dead || t.record != nil || !v.AtZero() {
		return false
	}
	t.record = &Record{}
	return true
}

// NeedsSave reports whether the turn controller must roll a death save at the
// start of this combatant's turn.
func (t *Tracker) NeedsSave(v *damage.Vitals) bool {
	return !t.dead && v.AtZero() && t.record != nil && !t.record.Stabilized && t.record.Failures < Limit
}

// Roll makes a death saving throw. A natural 20 revives at 1 HP, a natural 1
// counts as two failures, rolls at or above the DC are successes.
//
// Precondition: NeedsSave(v) is true.
// Postcondition: On a natural 20 the record is destroyed and v.HP == 1.
func (t *Tracker) Roll(v *damage.Vitals, d dice.Dicer) (Outcome, error) {
	if err := t.check(); err != nil {
		return Outcome{}, err
	}
	if t.record.Stabilized {
		return Outcome{}, ErrStable
	}
	roll := d.D20(dice.Normal).Natural
	r := t.record
	switch {
	case roll == 20:
		t.record = nil
		v.HP = 1
		return Outcome{State: Revived, Roll: roll, HP: v.HP, Message: "rolls a natural 20 and regains consciousness"}, nil
	case roll == 1:
		r.Failures += 2
	case roll >= t.dc:
		r.Successes++
	default:
		r.Failures++
	}
	out := t.settle(v)
	out.Roll = roll
	return out, nil
}

// DamageAtZero records failures for damage taken while at zero hit points:
// one normally, two for a critical hit.
//
// Precondition: a record exists.
func (t *Tracker) DamageAtZero(v *damage.Vitals, critical bool) (Outcome, error) {
	if err := t.check(); err != nil {
		return Outcome{}, err
	}
	// Taking damage ends stability.
	t.record.Stabilized = false
	t.record.Successes = min(t.record.Successes, Limit-1)
	if critical {
		t.record.Failures += 2
	} else {
		t.record.Failures++
	}
	return t.settle(v), nil
}

// Kill marks the combatant dead outright, as from massive damage.
func (t *Tracker) Kill(v *damage.Vitals) Outcome {
	t.dead = true
	t.record = nil
	return Outcome{State: Dead, HP: v.HP, Message: "dies"}
}

// HealFromZero restores hit points to a dying or stable combatant and
// destroys the record.
//
// Postcondition: v.HP > 0 and no record exists.
func (t *Tracker) HealFromZero(v *damage.Vitals, amount int) (Outcome, error) {
	if t.dead {
		return Outcome{}, ErrDead
	}
	if amount <= 0 {
		return Outcome{}, fmt.Errorf("heal amount must be positive, got %d", amount)
	}
	damage.Heal(v, amount)
	t.record = nil
	return Outcome{State: Revived, HP: v.HP, Message: fmt.Sprintf("is healed to %d hit points and revives", v.HP)}, nil
}

// Stabilize marks a dying combatant stable without a roll.
func (t *Tracker) Stabilize(v *damage.Vitals) (Outcome, error) {
	if err := t.check(); err != nil {
		return Outcome{}, err
	}
	t.record.Stabilized = true
	return t.outcome(Stabilized, v, "is stabilized"), nil
}

// Clear drops any record, as when the combatant regains hit points by other
// means.
func (t *Tracker) Clear() { t.record = nil }

func (t *Tracker) check() error {
	if t.dead {
		return ErrDead
	}
	if t.record == nil {
		return ErrNoRecord
	}
	return nil
}

func (t *Tracker) settle(v *damage.Vitals) Outcome {
	r := t.record
	switch {
	case r.Failures >= Limit:
		failures := min(r.Failures, Limit)
		t.dead = true
		t.record = nil
		return Outcome{State: Dead, Successes: r.Successes, Failures: failures, HP: v.HP, Message: "fails the last death save and dies"}
	case r.Successes >= Limit:
		r.Stabilized = true
		return t.outcome(Stabilized, v, "stabilizes")
	default:
		return t.outcome(Dying, v, fmt.Sprintf("is dying (%d successes, %d failures)", r.Successes, r.Failures))
	}
}

func (t *Tracker) outcome(s State, v *damage.Vitals, msg string) Outcome {
	return Outcome{State: s, Successes: t.record.Successes, Failures: t.record.Failures, HP: v.HP, Message: msg}
}

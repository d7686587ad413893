// Package reaction implements the one-reaction-per-turn ledger and the
// specific reactions a combatant may take out of turn.
package reaction

import (
	"errors"
	"fmt"
	"sort"

	"github.com/cory-johannsen/tactics/internal/game/character"
)

// Type identifies a reaction.
type Type string

const (
	OpportunityAttack Type = "opportunity_attack"
	Shield            Type = "shield"
	Counterspell      Type = "counterspell"
	UncannyDodge      Type = "uncanny_dodge"
)

// Spell names that unlock spell reactions.
const (
	SpellShield       = "shield"
	SpellCounterspell = "counterspell"
)

var (
	// ErrUnavailable is returned when the reaction for this turn is spent.
	ErrUnavailable = errors.New("reaction already used this turn")
	// ErrNotKnown is returned when the combatant lacks the reaction.
	ErrNotKnown = errors.New("reaction not available to this combatant")
	// ErrNoSpellSlot is returned when a spell reaction has no slot to spend.
	ErrNoSpellSlot = errors.New("no spell slot available")
)

// Rules are the tunable numbers of the reaction rules.
type Rules struct {
	ShieldACBonus         int
	CounterspellSlotLevel int
	UncannyDodgeLevel     int
}

// DefaultRules returns the standard values.
func DefaultRules() Rules {
	return Rules{ShieldACBonus: 5, CounterspellSlotLevel: 3, UncannyDodgeLevel: 5}
}

// Availability computes the reactions a template grants: everyone may make
// opportunity attacks; casters who know shield or counterspell gain those;
// rogues at or above rules.UncannyDodgeLevel gain uncanny dodge.
//
// Precondition: tpl must not be nil.
func Availability(tpl *character.Template, rules Rules) map[Type]bool {
	set := map[Type]bool{OpportunityAttack: true}
	if tpl.IsSpellcaster() && tpl.KnowsSpell(SpellShield) {
		set[Shield] = true
	}
	if tpl.IsSpellcaster() && tpl.KnowsSpell(SpellCounterspell) {
		set[Counterspell] = true
	}
	if tpl.Class == character.ClassRogue && tpl.Level >= rules.UncannyDodgeLevel {
		set[UncannyDodge] = true
	}
	return set
}

// ACModifier is an armor class bonus granted by a reaction. It expires at the
// owner's next turn start.
type ACModifier struct {
	Source Type
	Amount int
}

// Ledger is one combatant's reaction state.
// Invariant: at most one reaction is consumed between two calls to Reset.
type Ledger struct {
	rules     Rules
	available bool
	used      Type
	known     map[Type]bool
	modifiers []ACModifier
}

// NewLedger creates a Ledger with the given known reactions, available for use.
func NewLedger(known map[Type]bool, rules Rules) *Ledger {
	k := make(map[Type]bool, len(known))
	for t, ok := range known {
		if ok {
			k[t] = true
		}
	}
	return &Ledger{rules: rules, available: true, known: k}
}

// Rules returns the rules the ledger was built with.
func (l *Ledger) Rules() Rules { return l.rules }

// Available reports whether the reaction for this window is unspent.
func (l *Ledger) Available() bool { return l.available }

// Used returns the reaction spent in this window, or "".
func (l *Ledger) Used() Type { return l.used }

// Known returns the reactions this combatant can ever take, sorted.
func (l *Ledger) Known() []Type {
	out := make([]Type, 0, len(l.known))
	for t := range l.known {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// CanUse reports whether t may be taken now.
func (l *Ledger) CanUse(t Type) bool {
	return l.available && l.known[t]
}

// check returns the reason t cannot be used, or nil.
func (l *Ledger) check(t Type) error {
	if !l.known[t] {
		return fmt.Errorf("%w: %s", ErrNotKnown, t)
	}
	if !l.available {
		return fmt.Errorf("%w: already used %s", ErrUnavailable, l.used)
	}
	return nil
}

func (l *Ledger) consume(t Type) {
	l.available = false
	l.used = t
}

// ACBonus returns the sum of active reaction AC modifiers.
func (l *Ledger) ACBonus() int {
	total := 0
	for _, m := range l.modifiers {
		total += m.Amount
	}
	return total
}

// Modifiers returns a copy of the active AC modifiers.
func (l *Ledger) Modifiers() []ACModifier {
	return append([]ACModifier(nil), l.modifiers...)
}

// Reset restores availability at the owner's turn start and expires every
// reaction-granted AC modifier.
//
// Postcondition: Available() is true and ACBonus() is 0. Returns the expired
// modifiers.
func (l *Ledger) Reset() []ACModifier {
	expired := l.modifiers
	l.modifiers = nil
	l.available = true
	l.used = ""
	return expired
}

// Package sneakattack decides once-per-turn rogue bonus damage eligibility
// and rolls the bonus.
package sneakattack

import (
	"fmt"

	"github.com/cory-johannsen/tactics/internal/game/character"
	"github.com/cory-johannsen/tactics/internal/game/dice"
)

// Machine-checkable reasons returned by Check.
const (
	ReasonEligible     = "eligible"
	ReasonNotRogue     = "not_a_rogue"
	ReasonAlreadyUsed  = "already_used"
	ReasonWeapon       = "weapon_not_finesse_or_ranged"
	ReasonDisadvantage = "disadvantage"
	ReasonNoSetup      = "no_advantage_or_adjacent_ally"
)

// Dice returns the number of d6 sneak attack dice at level: one at level 1,
// one more at every odd level, ten at level 19.
func Dice(level int) int {
	if level < 1 {
		return 0
	}
	return (min(level, 19) + 1) / 2
}

// Expression returns the sneak attack dice for level as an expression.
func Expression(level int) dice.Expression {
	return dice.Expression{Count: Dice(level), Sides: 6}
}

// Attack is the attack context sneak attack eligibility depends on.
type Attack struct {
	Class        string
	Level        int
	Weapon       *character.Weapon
	Advantage    bool
	Disadvantage bool
	// AllyNearTarget is true when another living ally of the attacker
	// shares the target's range band.
	AllyNearTarget bool
	Critical       bool
}

// Check reports whether sneak attack applies.
type Check struct {
	Eligible bool
	Reason   string
}

// Result reports an applied or rejected sneak attack.
type Result struct {
	Applied           bool
	Reason            string
	SneakAttackDamage int
	TotalDamage       int
	Roll              dice.RollResult
	Message           string
}

// Tracker enforces once-per-turn use for one combatant.
type Tracker struct {
	used bool
}

// NewTracker creates an unused Tracker.
func NewTracker() *Tracker { return &Tracker{} }

// Used reports whether sneak attack was applied this turn.
func (t *Tracker) Used() bool { return t.used }

// MarkUsed spends the once-per-turn use.
func (t *Tracker) MarkUsed() { t.used = true }

// Reset makes sneak attack available again.
func (t *Tracker) Reset() { t.used = false }

// Check evaluates eligibility without side effects. Disadvantage blocks the
// attack only when advantage does not cancel it.
func (t *Tracker) Check(a Attack) Check {
	switch {
	case a.Class != character.ClassRogue:
		return Check{Reason: ReasonNotRogue}
	case t.used:
		return Check{Reason: ReasonAlreadyUsed}
	case a.Weapon == nil || !(a.Weapon.Finesse || a.Weapon.Ranged):
		return Check{Reason: ReasonWeapon}
	case a.Disadvantage && !a.Advantage:
		return Check{Reason: ReasonDisadvantage}
	case !a.Advantage && !a.AllyNearTarget:
		return Check{Reason: ReasonNoSetup}
	}
	return Check{Eligible: true, Reason: ReasonEligible}
}

// Apply rolls sneak attack dice and adds them to baseDamage when eligible,
// doubling the dice on a critical hit.
//
// Postcondition: If Applied, Used() is true and TotalDamage equals baseDamage
// plus SneakAttackDamage; otherwise TotalDamage equals baseDamage.
func (t *Tracker) Apply(a Attack, baseDamage int, d dice.Dicer) Result {
	c := t.Check(a)
	if !c.Eligible {
		return Result{Reason: c.Reason, TotalDamage: baseDamage, Message: fmt.Sprintf("no sneak attack (%s)", c.Reason)}
	}
	expr := Expression(a.Level)
	if a.Critical {
		expr = expr.Doubled()
	}
	roll := d.Roll(expr)
	t.used = true
	return Result{
		Applied:           true,
		Reason:            c.Reason,
		SneakAttackDamage: roll.Total(),
		TotalDamage:       baseDamage + roll.Total(),
		Roll:              roll,
		Message:           fmt.Sprintf("sneak attack adds %d (%s)", roll.Total(), expr),
	}
}

// Package combat composes the rules packages into combatants, exposes the
// rules operations through Core, and runs encounters turn by turn.
package combat

import (
	"github.com/cory-johannsen/tactics/internal/game/character"
	"github.com/cory-johannsen/tactics/internal/game/command"
	"github.com/cory-johannsen/tactics/internal/game/condition"
	"github.com/cory-johannsen/tactics/internal/game/damage"
	"github.com/cory-johannsen/tactics/internal/game/deathsave"
	"github.com/cory-johannsen/tactics/internal/game/reaction"
	"github.com/cory-johannsen/tactics/internal/game/sneakattack"
)

// Side is the allegiance of a combatant.
type Side int

const (
	// SideParty combatants make death saves at 0 hit points.
	SideParty Side = iota
	// SideHostile combatants die at 0 hit points.
	SideHostile
)

// String returns "party" or "hostile".
func (s Side) String() string {
	if s == SideHostile {
		return "hostile"
	}
	return "party"
}

// Opposes reports whether s and o are enemies.
func (s Side) Opposes(o Side) bool { return s != o }

// Combatant is one participant in an encounter. Every rules component is an
// explicit record owned by the combatant.
type Combatant struct {
	ID       string
	Name     string
	Side     Side
	Template *character.Template

	Vitals     damage.Vitals
	Affinities *damage.Affinities
	Conditions *condition.ActiveSet
	Reactions  *reaction.Ledger
	Saves      *deathsave.Tracker
	Sneak      *sneakattack.Tracker
	Slots      *character.SpellSlots

	// Command is non-nil only for AI-controlled allies.
	Command *command.State
	// Protects is the id of the player a henchman follows.
	Protects string

	Initiative   int
	LastTargetID string
	// Dodging imposes disadvantage on attacks against the combatant until
	// its next turn starts.
	Dodging bool
}

// NewCombatant builds a combatant from tpl. The template's damage affinities
// seed the combatant's sets.
//
// Precondition: tpl has passed Validate; reg must not be nil.
// Postcondition: HP equals tpl.MaxHP and the reaction is available.
func NewCombatant(id string, tpl *character.Template, side Side, reg *condition.Registry, rules Rules) *Combatant {
	aff := damage.NewAffinities()
	for _, t := range tpl.Resistances {
		aff.Add(damage.Resistance, damage.Type(t))
	}
	for _, t := range tpl.Immunities {
		aff.Add(damage.Immunity, damage.Type(t))
	}
	for _, t := range tpl.Vulnerable {
		aff.Add(damage.Vulnerability, damage.Type(t))
	}
	return &Combatant{
		ID:         id,
		Name:       tpl.Name,
		Side:       side,
		Template:   tpl,
		Vitals:     damage.Vitals{HP: tpl.MaxHP, MaxHP: tpl.MaxHP},
		Affinities: aff,
		Conditions: condition.NewActiveSet(reg),
		Reactions:  reaction.NewLedger(reaction.Availability(tpl, rules.Reactions), rules.Reactions),
		Saves:      deathsave.NewTracker(rules.DeathSaveDC),
		Sneak:      sneakattack.NewTracker(),
		Slots:      character.NewSpellSlots(tpl.SpellSlots),
	}
}

// MakeHenchman attaches a command state so the AI drives the combatant.
func (c *Combatant) MakeHenchman(protects string) {
	c.Command = command.NewState()
	c.Protects = protects
}

// IsHenchman reports whether the AI drives the combatant.
func (c *Combatant) IsHenchman() bool { return c.Command != nil }

// IsDead reports whether the combatant has died.
func (c *Combatant) IsDead() bool { return c.Saves.IsDead() }

// IsDown reports whether the combatant is at 0 hit points or dead.
func (c *Combatant) IsDown() bool { return c.IsDead() || c.Vitals.AtZero() }

// Standing reports whether the combatant is alive and above 0 hit points.
func (c *Combatant) Standing() bool { return !c.IsDown() }

// CanAct reports whether the combatant may take actions or reactions.
func (c *Combatant) CanAct() bool { return c.Standing() && c.Conditions.CanAct() }

// EffectiveAC is base AC plus every active reaction AC modifier.
func (c *Combatant) EffectiveAC() int {
	return c.Template.AC + c.Reactions.ACBonus()
}

// EffectiveSpeed is 0 while a speed-denying or incapacitating condition is
// active, the template speed otherwise.
func (c *Combatant) EffectiveSpeed() int {
	if !c.Conditions.CanMove() || c.IsDown() {
		return 0
	}
	return c.Template.Speed
}

// Weapon returns the equipped weapon, or an unarmed strike.
func (c *Combatant) Weapon() *character.Weapon {
	if c.Template.Weapon != nil {
		return c.Template.Weapon
	}
	return character.Unarmed()
}

// AttackBonus is the weapon ability modifier plus proficiency.
func (c *Combatant) AttackBonus() int {
	ab := c.Weapon().AttackAbility(c.Template.Abilities)
	return c.Template.Abilities.Modifier(ab) + character.ProficiencyBonus(c.Template.Level)
}

// DamageBonus is the weapon ability modifier.
func (c *Combatant) DamageBonus() int {
	ab := c.Weapon().AttackAbility(c.Template.Abilities)
	return c.Template.Abilities.Modifier(ab)
}

// attackProfile describes the combatant's weapon attack for reactions.
func (c *Combatant) attackProfile() reaction.AttackProfile {
	w := c.Weapon()
	return reaction.AttackProfile{
		AttackBonus: c.AttackBonus(),
		Damage:      w.DamageExpression(),
		DamageBonus: c.DamageBonus(),
		DamageType:  w.DamageType,
	}
}

// Threat estimates how dangerous the combatant is per hit.
func (c *Combatant) Threat() int {
	e := c.Weapon().DamageExpression()
	return e.Count*(e.Sides+1)/2 + e.Modifier + c.DamageBonus() + c.Template.Level
}

package character

import (
	"fmt"

	"github.com/cory-johannsen/tactics/internal/game/dice"
)

// Weapon is the equipped weapon reference carried by a template.
type Weapon struct {
	Name       string `yaml:"name"`
	Damage     string `yaml:"damage"`      // dice expression, e.g. "1d4"
	DamageType string `yaml:"damage_type"` // e.g. "piercing"
	Finesse    bool   `yaml:"finesse"`
	Ranged     bool   `yaml:"ranged"`
}

// Validate checks the damage expression parses.
func (w *Weapon) Validate() error {
	if w.Name == "" {
		return fmt.Errorf("weapon: name must not be empty")
	}
	if _, err := dice.Parse(w.Damage); err != nil {
		return fmt.Errorf("weapon %q: %w", w.Name, err)
	}
	return nil
}

// DamageExpression returns the parsed damage dice.
//
// Precondition: Validate returned nil.
func (w *Weapon) DamageExpression() dice.Expression {
	return dice.MustParse(w.Damage)
}

// AttackAbility returns the ability used for attack and damage: dexterity for
// ranged weapons, the better of strength and dexterity for finesse weapons,
// strength otherwise.
func (w *Weapon) AttackAbility(scores AbilityScores) Ability {
	switch {
	case w.Ranged:
		return Dexterity
	case w.Finesse && scores.Dexterity > scores.Strength:
		return Dexterity
	default:
		return Strength
	}
}

// Unarmed is the fallback weapon for combatants without one.
func Unarmed() *Weapon {
	return &Weapon{Name: "unarmed strike", Damage: "0d2+1", DamageType: "bludgeoning"}
}

// Package character defines the template boundary this engine consumes from
// the character/monster store: class, level, ability scores, equipped weapon,
// known spells and spell slots. Templates are read-only inputs; combat state
// is built from them when an encounter starts.
package character

import (
	"fmt"
	"slices"
)

// Ability identifies one of the six ability scores.
type Ability string

const (
	Strength     Ability = "str"
	Dexterity    Ability = "dex"
	Constitution Ability = "con"
	Intelligence Ability = "int"
	Wisdom       Ability = "wis"
	Charisma     Ability = "cha"
)

// AbilityScores holds the six ability score values.
type AbilityScores struct {
	Strength     int `yaml:"str"`
	Dexterity    int `yaml:"dex"`
	Constitution int `yaml:"con"`
	Intelligence int `yaml:"int"`
	Wisdom       int `yaml:"wis"`
	Charisma     int `yaml:"cha"`
}

// Score returns the raw score for ability; unknown abilities score 10.
func (a AbilityScores) Score(ability Ability) int {
	switch ability {
	case Strength:
		return a.Strength
	case Dexterity:
		return a.Dexterity
	case Constitution:
		return a.Constitution
	case Intelligence:
		return a.Intelligence
	case Wisdom:
		return a.Wisdom
	case Charisma:
		return a.Charisma
	default:
		return 10
	}
}

// Modifier returns floor((score - 10) / 2) for ability.
func (a AbilityScores) Modifier(ability Ability) int {
	return AbilityMod(a.Score(ability))
}

// AbilityMod computes the standard ability modifier using floor division.
//
// Postcondition: Returns floor((score - 10) / 2).
func AbilityMod(score int) int {
	diff := score - 10
	if diff < 0 {
		return (diff - 1) / 2
	}
	return diff / 2
}

// ProficiencyBonus returns the proficiency bonus for a character level:
// +2 at levels 1-4, rising by one every four levels.
//
// Precondition: level >= 1.
func ProficiencyBonus(level int) int {
	if level < 1 {
		level = 1
	}
	return 2 + (level-1)/4
}

// Class identifiers with rules hooks in this engine.
const (
	ClassRogue    = "rogue"
	ClassWizard   = "wizard"
	ClassSorcerer = "sorcerer"
	ClassWarlock  = "warlock"
	ClassCleric   = "cleric"
	ClassDruid    = "druid"
	ClassBard     = "bard"
	ClassPaladin  = "paladin"
	ClassRanger   = "ranger"
	ClassFighter  = "fighter"
)

var spellcastingAbility = map[string]Ability{
	ClassWizard:   Intelligence,
	ClassSorcerer: Charisma,
	ClassWarlock:  Charisma,
	ClassBard:     Charisma,
	ClassPaladin:  Charisma,
	ClassCleric:   Wisdom,
	ClassDruid:    Wisdom,
	ClassRanger:   Wisdom,
}

// Template is the static description of a character or monster.
type Template struct {
	ID          string        `yaml:"id"`
	Name        string        `yaml:"name"`
	Class       string        `yaml:"class"`
	Level       int           `yaml:"level"`
	MaxHP       int           `yaml:"max_hp"`
	AC          int           `yaml:"ac"`
	Speed       int           `yaml:"speed"`
	Abilities   AbilityScores `yaml:"abilities"`
	Weapon      *Weapon       `yaml:"weapon"`
	KnownSpells []string      `yaml:"known_spells"`
	SpellSlots  map[int]int   `yaml:"spell_slots"` // spell level → slots
	Specials    []string      `yaml:"special_abilities"`
	Resistances []string      `yaml:"resistances"`
	Immunities  []string      `yaml:"immunities"`
	Vulnerable  []string      `yaml:"vulnerabilities"`
}

// Validate checks that the template satisfies basic invariants.
//
// Postcondition: Returns nil iff ID and Name are non-empty, Level >= 1,
// MaxHP >= 1 and AC >= 1; returns the first violation otherwise.
func (t *Template) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("character template: id must not be empty")
	}
	if t.Name == "" {
		return fmt.Errorf("character template %q: name must not be empty", t.ID)
	}
	if t.Level < 1 {
		return fmt.Errorf("character template %q: level must be >= 1", t.ID)
	}
	if t.MaxHP < 1 {
		return fmt.Errorf("character template %q: max_hp must be >= 1", t.ID)
	}
	if t.AC < 1 {
		return fmt.Errorf("character template %q: ac must be >= 1", t.ID)
	}
	if t.Weapon != nil {
		if err := t.Weapon.Validate(); err != nil {
			return fmt.Errorf("character template %q: %w", t.ID, err)
		}
	}
	for lvl, n := range t.SpellSlots {
		if lvl < 1 || lvl > 9 || n < 0 {
			return fmt.Errorf("character template %q: invalid spell slot entry %d:%d", t.ID, lvl, n)
		}
	}
	return nil
}

// KnowsSpell reports whether spell is in the template's known spell list.
func (t *Template) KnowsSpell(spell string) bool {
	return slices.Contains(t.KnownSpells, spell)
}

// HasAbility reports whether the template lists a named special ability.
func (t *Template) HasAbility(name string) bool {
	return slices.Contains(t.Specials, name)
}

// IsSpellcaster reports whether the class casts spells.
func (t *Template) IsSpellcaster() bool {
	_, ok := spellcastingAbility[t.Class]
	return ok
}

// SpellcastingModifier returns the modifier of the class spellcasting
// ability, or 0 for non-casters.
func (t *Template) SpellcastingModifier() int {
	ab, ok := spellcastingAbility[t.Class]
	if !ok {
		return 0
	}
	return t.Abilities.Modifier(ab)
}

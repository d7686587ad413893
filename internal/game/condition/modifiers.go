package condition

import "github.com/cory-johannsen/tactics/internal/game/dice"

// Fixed reasons reported by AttackModifiers. Other reasons take the form
// "attacker_<type>" or "defender_<type>".
const (
	ReasonAttackerFrightened    = "attacker_frightened_of_defender"
	ReasonDefenderIncapacitated = "defender_incapacitated"
	ReasonDefenderProneMelee    = "defender_prone_melee"
)

// Modifiers is the advantage/disadvantage state derived from both sides'
// conditions. Both flags may be set; they cancel when the roll is made.
type Modifiers struct {
	Advantage    bool
	Disadvantage bool
	Reasons      []string
}

// Mode resolves the flags into the d20 roll mode.
func (m Modifiers) Mode() dice.Mode {
	return dice.ModeFor(m.Advantage, m.Disadvantage)
}

// Attack describes the attacker/defender pair for modifier queries.
type Attack struct {
	Attacker   *ActiveSet
	AttackerID string
	Defender   *ActiveSet
	DefenderID string
	Melee      bool
}

// AttackModifiers scans both condition sets and reports advantage and
// disadvantage with a reason per contributing condition.
//
// Precondition: a.Attacker and a.Defender must not be nil.
func AttackModifiers(a Attack) Modifiers {
	var m Modifiers
	for _, c := range a.Attacker.sorted() {
		switch {
		case c.Def.AttackDisadvantage && c.Def.SourceRelative:
			if c.Source == a.DefenderID {
				m.Disadvantage = true
				m.Reasons = append(m.Reasons, ReasonAttackerFrightened)
			}
		case c.Def.AttackDisadvantage:
			m.Disadvantage = true
			m.Reasons = append(m.Reasons, "attacker_"+string(c.Type))
		}
		if c.Def.AttackAdvantage {
			m.Advantage = true
			m.Reasons = append(m.Reasons, "attacker_"+string(c.Type))
		}
	}

	if a.Defender.flags.Incapacitated() {
		m.Advantage = true
		m.Reasons = append(m.Reasons, ReasonDefenderIncapacitated)
	}
	for _, c := range a.Defender.sorted() {
		if c.Def.GrantsAdvantage {
			m.Advantage = true
			m.Reasons = append(m.Reasons, "defender_"+string(c.Type))
		}
		if c.Def.GrantsMeleeAdvantage && a.Melee {
			m.Advantage = true
			m.Reasons = append(m.Reasons, ReasonDefenderProneMelee)
		}
		if c.Def.ImposesDisadvantage {
			m.Disadvantage = true
			m.Reasons = append(m.Reasons, "defender_"+string(c.Type))
		}
	}
	return m
}

// IsAutoCrit reports whether a hit on defender is automatically critical:
// only melee attacks against a paralyzed or unconscious target qualify.
func IsAutoCrit(defender *ActiveSet, melee bool) bool {
	if !melee {
		return false
	}
	for _, c := range defender.conditions {
		if c.Def.MeleeAutoCrit {
			return true
		}
	}
	return false
}

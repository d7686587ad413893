package combat

import (
	"time"

	"github.com/cory-johannsen/tactics/internal/game/reaction"
)

// Rules are the tunable numbers of the combat core.
type Rules struct {
	// DeathSaveDC is the d20 result at or above which a death save succeeds.
	DeathSaveDC int
	Reactions   reaction.Rules
	// MassiveDamage kills a party member outright when the damage left over
	// after reaching 0 hit points is at least their maximum.
	MassiveDamage bool
	// ActionTimeout is how long a human-driven turn may wait before the
	// combatant dodges. Zero disables the timer.
	ActionTimeout time.Duration
}

// DefaultRules returns the standard values.
func DefaultRules() Rules {
	return Rules{
		DeathSaveDC:   10,
		Reactions:     reaction.DefaultRules(),
		MassiveDamage: true,
		ActionTimeout: 30 * time.Second,
	}
}

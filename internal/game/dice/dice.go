// Package dice provides the randomness abstraction and roll-result types used
// by every rules component. All randomness flows through an injected Source so
// encounters can be replayed from a seed.
package dice

import "fmt"

// RollResult holds the full audit trail for a single dice roll evaluation.
//
// Postcondition: Total() == sum(Dice) + Modifier.
type RollResult struct {
	Expression string // canonical expression, e.g. "3d6+2"
	Dice       []int  // individual die faces before modifier
	Modifier   int    // flat modifier (may be negative)
}

// Total returns the sum of all die results plus the modifier.
func (r RollResult) Total() int {
	total := r.Modifier
	for _, d := range r.Dice {
		total += d
	}
	return total
}

// String returns a human-readable audit string in the format:
//
//	"3d6+2 → [4 5 1] +2 = 12"
func (r RollResult) String() string {
	return fmt.Sprintf("%s → %v %+d = %d", r.Expression, r.Dice, r.Modifier, r.Total())
}

// Source is the randomness provider for dice rolls.
//
// Implementations MUST be safe for concurrent use.
type Source interface {
	// Intn returns a non-negative random int in [0, n).
	//
	// Precondition: n > 0.
	Intn(n int) int
}

// Mode selects how a d20 test is rolled.
type Mode int

const (
	Normal Mode = iota
	Advantage
	Disadvantage
)

// String returns the lower-case mode label.
func (m Mode) String() string {
	switch m {
	case Advantage:
		return "advantage"
	case Disadvantage:
		return "disadvantage"
	default:
		return "normal"
	}
}

// ModeFor collapses an advantage/disadvantage pair into a single Mode.
// Having both cancels out to Normal regardless of how many sources grant each.
func ModeFor(advantage, disadvantage bool) Mode {
	switch {
	case advantage && !disadvantage:
		return Advantage
	case disadvantage && !advantage:
		return Disadvantage
	default:
		return Normal
	}
}

// D20Result is the outcome of a single d20 test.
//
// Invariant: Natural is one of Rolls.
type D20Result struct {
	Mode    Mode
	Rolls   []int // one roll for Normal, two otherwise
	Natural int   // the kept face
}

// IsNatural20 reports whether the kept face is a 20.
func (d D20Result) IsNatural20() bool { return d.Natural == 20 }

// IsNatural1 reports whether the kept face is a 1.
func (d D20Result) IsNatural1() bool { return d.Natural == 1 }

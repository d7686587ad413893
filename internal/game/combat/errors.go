package combat

import (
	"errors"
	"fmt"

	"github.com/cory-johannsen/tactics/internal/game/command"
	"github.com/cory-johannsen/tactics/internal/game/condition"
	"github.com/cory-johannsen/tactics/internal/game/deathsave"
	"github.com/cory-johannsen/tactics/internal/game/reaction"
)

// Kind classifies why a rules operation failed.
type Kind int

const (
	// KindNone marks a successful result.
	KindNone Kind = iota
	// InvalidOperation covers spent reactions, wrong turns and missing resources.
	InvalidOperation
	// NotEligible covers unmet preconditions such as sneak attack setup or a
	// condition that is already present or absent.
	NotEligible
	// TerminalState covers dead combatants and finished encounters.
	TerminalState
)

// String returns the kind's name.
func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case InvalidOperation:
		return "invalid_operation"
	case NotEligible:
		return "not_eligible"
	case TerminalState:
		return "terminal_state"
	default:
		return "unknown"
	}
}

var (
	ErrInvalidOperation = errors.New("invalid operation")
	ErrNotEligible      = errors.New("not eligible")
	ErrTerminalState    = errors.New("terminal state")
)

// Machine-checkable failure reasons.
const (
	ReasonAlreadyPresent   = "already_present"
	ReasonNotPresent       = "not_present"
	ReasonUnknownCondition = "unknown_condition"
	ReasonInvalidDuration  = "invalid_duration"
	ReasonReactionUsed     = "reaction_used"
	ReasonReactionUnknown  = "reaction_not_known"
	ReasonNoSpellSlot      = "no_spell_slot"
	ReasonIncapacitated    = "incapacitated"
	ReasonDead             = "dead"
	ReasonNotDying         = "not_dying"
	ReasonStable           = "stable"
	ReasonInvalidAmount    = "invalid_amount"
	ReasonUnknownCommand   = "unknown_command"
	ReasonMissingArgument  = "missing_argument"
	ReasonNotHenchman      = "not_a_henchman"
	ReasonNoOverride       = "no_target_override"
	ReasonUnknownCombatant = "unknown_combatant"
	ReasonNotYourTurn      = "not_your_turn"
	ReasonNoActiveTurn     = "no_active_turn"
	ReasonOutOfReach       = "out_of_reach"
	ReasonNotMelee         = "not_melee_weapon"
	ReasonCannotMove       = "cannot_move"
	ReasonEncounterOver    = "encounter_over"
	ReasonNoHealing        = "no_healing"
	ReasonInternal         = "internal"
)

// RuleError is the error form of a failed result.
type RuleError struct {
	Kind   Kind
	Reason string
	Op     string
}

func (e *RuleError) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.Op, e.Kind, e.Reason)
}

// Is matches the sentinel for the error's kind.
func (e *RuleError) Is(target error) bool {
	switch e.Kind {
	case InvalidOperation:
		return target == ErrInvalidOperation
	case NotEligible:
		return target == ErrNotEligible
	case TerminalState:
		return target == ErrTerminalState
	}
	return false
}

// Result is embedded in every rules operation result.
type Result struct {
	Success bool
	Kind    Kind
	Reason  string
	Message string
	Op      string
}

// Err returns nil on success and a *RuleError otherwise.
func (r Result) Err() error {
	if r.Success {
		return nil
	}
	return &RuleError{Kind: r.Kind, Reason: r.Reason, Op: r.Op}
}

func succeed(op, msg string) Result {
	return Result{Success: true, Op: op, Message: msg}
}

func fail(op string, kind Kind, reason string) Result {
	return Result{Kind: kind, Reason: reason, Op: op, Message: op + " failed: " + reason}
}

// classify maps leaf package errors onto the failure taxonomy.
func classify(op string, err error) Result {
	switch {
	case errors.Is(err, condition.ErrAlreadyPresent):
		return fail(op, NotEligible, ReasonAlreadyPresent)
	case errors.Is(err, condition.ErrNotPresent):
		return fail(op, NotEligible, ReasonNotPresent)
	case errors.Is(err, condition.ErrUnknown):
		return fail(op, InvalidOperation, ReasonUnknownCondition)
	case errors.Is(err, condition.ErrInvalidDuration):
		return fail(op, InvalidOperation, ReasonInvalidDuration)
	case errors.Is(err, reaction.ErrUnavailable):
		return fail(op, InvalidOperation, ReasonReactionUsed)
	case errors.Is(err, reaction.ErrNotKnown):
		return fail(op, InvalidOperation, ReasonReactionUnknown)
	case errors.Is(err, reaction.ErrNoSpellSlot):
		return fail(op, InvalidOperation, ReasonNoSpellSlot)
	case errors.Is(err, deathsave.ErrDead):
		return fail(op, TerminalState, ReasonDead)
	case errors.Is(err, deathsave.ErrNoRecord):
		return fail(op, NotEligible, ReasonNotDying)
	case errors.Is(err, deathsave.ErrStable):
		return fail(op, NotEligible, ReasonStable)
	case errors.Is(err, command.ErrUnknownCommand):
		return fail(op, InvalidOperation, ReasonUnknownCommand)
	case errors.Is(err, command.ErrMissingArgument):
		return fail(op, InvalidOperation, ReasonMissingArgument)
	default:
		return fail(op, InvalidOperation, ReasonInternal)
	}
}

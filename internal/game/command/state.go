package command

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/cory-johannsen/tactics/internal/game/position"
)

// Stance biases how the AI carries out a command.
type Stance string

const (
	Aggressive Stance = "aggressive"
	Defensive  Stance = "defensive"
	Ranged     Stance = "ranged"
	Balanced   Stance = "balanced"
)

// ErrMissingArgument is returned when a command lacks its target or ability.
var ErrMissingArgument = errors.New("command argument missing")

// Options carry the arguments of a command.
type Options struct {
	TargetID string
	Ability  string
	// HoldAt is the band to hold for hold-position; the turn controller
	// supplies the henchman's current band.
	HoldAt position.Band
}

// State is the persistent directive of one AI-controlled ally. It survives
// across rounds until a new command replaces it.
type State struct {
	Current        Name
	TargetOverride string
	Stance         Stance
	Ability        string
	HoldAt         position.Band
}

// NewState returns the default directive: follow the player, balanced.
func NewState() *State {
	return &State{Current: Follow, Stance: Balanced}
}

// Ack acknowledges an issued command for audit and narration.
type Ack struct {
	ID             string
	Command        Name
	Previous       Name
	Stance         Stance
	PreviousStance Stance
	TargetOverride string
	Message        string
}

// Apply records cmd. Stance commands change only the stance; every other
// command replaces the current command and resets the target override,
// ability and hold band to what opts supplies.
//
// Precondition: cmd must come from a Registry.
// Postcondition: On error State is unchanged.
func (s *State) Apply(cmd *Command, opts Options) (Ack, error) {
	switch cmd.Arg {
	case ArgTarget:
		if opts.TargetID == "" {
			return Ack{}, fmt.Errorf("%w: %s needs a target", ErrMissingArgument, cmd.Name)
		}
	case ArgAbility:
		if opts.Ability == "" {
			return Ack{}, fmt.Errorf("%w: %s needs an ability", ErrMissingArgument, cmd.Name)
		}
	}

	ack := Ack{
		ID:             uuid.NewString(),
		Command:        cmd.Name,
		Previous:       s.Current,
		PreviousStance: s.Stance,
	}
	if cmd.IsStance() {
		s.Stance = cmd.Stance
		ack.Command = s.Current
		ack.Stance = s.Stance
		ack.TargetOverride = s.TargetOverride
		ack.Message = fmt.Sprintf("stance changed from %s to %s", ack.PreviousStance, s.Stance)
		return ack, nil
	}

	s.Current = cmd.Name
	s.TargetOverride = opts.TargetID
	s.Ability = opts.Ability
	s.HoldAt = ""
	if cmd.Name == HoldPosition {
		s.HoldAt = opts.HoldAt
	}
	ack.Stance = s.Stance
	ack.TargetOverride = s.TargetOverride
	ack.Message = fmt.Sprintf("command changed from %s to %s", ack.Previous, s.Current)
	return ack, nil
}

// ClearTargetOverride drops the designated target, as when it dies.
//
// Postcondition: Returns true iff an override was set.
func (s *State) ClearTargetOverride() bool {
	if s.TargetOverride == "" {
		return false
	}
	s.TargetOverride = ""
	return true
}

// Issue validates n against the registry and applies it to s.
//
// Postcondition: Returns ErrUnknownCommand (wrapped) for names outside the
// closed command set.
func (r *Registry) Issue(s *State, n Name, opts Options) (Ack, error) {
	cmd, err := r.Lookup(n)
	if err != nil {
		return Ack{}, err
	}
	return s.Apply(cmd, opts)
}

package condition

import (
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
)

// Permanent marks a condition that lasts until explicitly removed.
const Permanent = -1

var (
	// ErrAlreadyPresent is returned when applying a type the combatant already has.
	ErrAlreadyPresent = errors.New("condition already present")
	// ErrNotPresent is returned when removing a type the combatant does not have.
	ErrNotPresent = errors.New("condition not present")
	// ErrUnknown is returned for types missing from the registry.
	ErrUnknown = errors.New("unknown condition")
	// ErrInvalidDuration is returned for durations that are neither >= 1 nor Permanent.
	ErrInvalidDuration = errors.New("invalid condition duration")
)

// Condition is one status effect applied to a combatant.
type Condition struct {
	ID        string // instance id
	Type      Type
	Def       *Definition
	Duration  int    // rounds remaining, or Permanent
	Source    string // id of the combatant or effect that applied it
	AppliedAt int    // round number at application
}

// IsPermanent reports whether the condition only ends on removal.
func (c *Condition) IsPermanent() bool { return c.Duration == Permanent }

// ActiveSet tracks all conditions currently applied to one combatant.
// It is not safe for concurrent use; the caller must serialise access.
type ActiveSet struct {
	registry   *Registry
	conditions map[Type]*Condition
	flags      Flags
}

// NewActiveSet creates an empty ActiveSet resolving types through reg.
//
// Precondition: reg must not be nil.
func NewActiveSet(reg *Registry) *ActiveSet {
	return &ActiveSet{registry: reg, conditions: make(map[Type]*Condition)}
}

// Apply adds a condition of type typ and runs its apply effect.
//
// Precondition: duration >= 1 or duration == Permanent.
// Postcondition: On success Has(typ) is true and the flags reflect the new
// condition. ErrAlreadyPresent leaves the set unchanged.
func (s *ActiveSet) Apply(typ Type, duration int, source string, round int) (*Condition, error) {
	def, ok := s.registry.Get(typ)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknown, typ)
	}
	if duration != Permanent && duration < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidDuration, duration)
	}
	if _, exists := s.conditions[typ]; exists {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyPresent, typ)
	}
	c := &Condition{
		ID:        uuid.NewString(),
		Type:      typ,
		Def:       def,
		Duration:  duration,
		Source:    source,
		AppliedAt: round,
	}
	s.conditions[typ] = c
	if eff, ok := s.registry.Effect(typ); ok {
		eff.OnApply(&s.flags)
	}
	return c, nil
}

// Remove deletes the condition of type typ and reverses its effect.
//
// Postcondition: Has(typ) is false. Returns ErrNotPresent if it was never there.
func (s *ActiveSet) Remove(typ Type) (*Condition, error) {
	c, ok := s.conditions[typ]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotPresent, typ)
	}
	s.drop(c)
	return c, nil
}

func (s *ActiveSet) drop(c *Condition) {
	delete(s.conditions, c.Type)
	if eff, ok := s.registry.Effect(c.Type); ok {
		eff.OnRemove(&s.flags)
	}
}

// Tick decrements the duration of every non-permanent condition by one and
// removes those that reach zero.
//
// Postcondition: For every condition returned, Has(c.Type) is false.
// Permanent conditions are not affected.
func (s *ActiveSet) Tick() []*Condition {
	var expired []*Condition
	for _, c := range s.sorted() {
		if c.IsPermanent() {
			continue
		}
		c.Duration--
		if c.Duration <= 0 {
			s.drop(c)
			expired = append(expired, c)
		}
	}
	return expired
}

// ClearAll reverses and removes every condition.
//
// Postcondition: Len() == 0 and all flags are cleared.
func (s *ActiveSet) ClearAll() []*Condition {
	removed := s.sorted()
	for _, c := range removed {
		s.drop(c)
	}
	return removed
}

// Has reports whether a condition of type typ is active.
func (s *ActiveSet) Has(typ Type) bool {
	_, ok := s.conditions[typ]
	return ok
}

// Get returns the active condition of type typ.
func (s *ActiveSet) Get(typ Type) (*Condition, bool) {
	c, ok := s.conditions[typ]
	return c, ok
}

// All returns the active conditions sorted by type. The slice is a new
// allocation but the Conditions are shared; callers must not modify them.
func (s *ActiveSet) All() []*Condition {
	return s.sorted()
}

// Len returns the number of active conditions.
func (s *ActiveSet) Len() int { return len(s.conditions) }

// Flags returns the current mechanical flags.
func (s *ActiveSet) Flags() Flags { return s.flags }

// CanAct reports whether the bearer may take its turn.
func (s *ActiveSet) CanAct() bool { return !s.flags.Incapacitated() }

// CanMove reports whether the bearer may change range band.
func (s *ActiveSet) CanMove() bool { return !s.flags.Incapacitated() && !s.flags.SpeedZero() }

func (s *ActiveSet) sorted() []*Condition {
	out := make([]*Condition, 0, len(s.conditions))
	for _, c := range s.conditions {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Type < out[j].Type })
	return out
}

// Package damage converts raw damage into hit point changes, honouring
// temporary hit points, immunity, vulnerability and resistance.
package damage

import (
	"fmt"
	"sort"
)

// Type is a damage type such as "fire" or "slashing".
type Type string

const (
	Acid        Type = "acid"
	Bludgeoning Type = "bludgeoning"
	Cold        Type = "cold"
	Fire        Type = "fire"
	Force       Type = "force"
	Lightning   Type = "lightning"
	Necrotic    Type = "necrotic"
	Piercing    Type = "piercing"
	Poison      Type = "poison"
	Psychic     Type = "psychic"
	Radiant     Type = "radiant"
	Slashing    Type = "slashing"
	Thunder     Type = "thunder"
)

// Kind selects one of the three per-combatant damage modifier sets.
type Kind int

const (
	Resistance Kind = iota
	Immunity
	Vulnerability
)

// String returns the kind label.
func (k Kind) String() string {
	switch k {
	case Resistance:
		return "resistance"
	case Immunity:
		return "immunity"
	case Vulnerability:
		return "vulnerability"
	default:
		return "unknown"
	}
}

// Vitals holds a combatant's hit points.
type Vitals struct {
	HP     int
	MaxHP  int
	TempHP int
}

// AtZero reports whether hit points are exhausted.
func (v *Vitals) AtZero() bool { return v.HP <= 0 }

// Affinities holds the resistance, immunity and vulnerability sets.
// The zero value is not usable; call NewAffinities.
type Affinities struct {
	sets map[Kind]map[Type]struct{}
}

// NewAffinities creates empty sets.
func NewAffinities() *Affinities {
	return &Affinities{sets: map[Kind]map[Type]struct{}{
		Resistance:    {},
		Immunity:      {},
		Vulnerability: {},
	}}
}

// Add inserts t into the kind set.
//
// Postcondition: Returns true if t was newly added; duplicates are no-ops.
func (a *Affinities) Add(kind Kind, t Type) bool {
	set := a.sets[kind]
	if set == nil {
		return false
	}
	if _, ok := set[t]; ok {
		return false
	}
	set[t] = struct{}{}
	return true
}

// Remove deletes t from the kind set.
//
// Postcondition: Returns true iff t was a member.
func (a *Affinities) Remove(kind Kind, t Type) bool {
	set := a.sets[kind]
	if _, ok := set[t]; !ok {
		return false
	}
	delete(set, t)
	return true
}

// Has reports whether t is in the kind set.
func (a *Affinities) Has(kind Kind, t Type) bool {
	_, ok := a.sets[kind][t]
	return ok
}

// List returns the kind set sorted.
func (a *Affinities) List(kind Kind) []Type {
	out := make([]Type, 0, len(a.sets[kind]))
	for t := range a.sets[kind] {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Breakdown describes how a damage amount became an HP change.
type Breakdown struct {
	Type           Type
	Original       int
	TempHPAbsorbed int
	Final          int // subtracted from HP after mitigation
	Overflow       int // portion of Final beyond the HP that remained
	Modifications  []string
	Immune         bool
	Resistant      bool
	Vulnerable     bool
	HPBefore       int
	HPAfter        int
}

// Message renders the breakdown as a narration line.
func (b Breakdown) Message() string {
	msg := fmt.Sprintf("takes %d %s damage", b.Final, b.Type)
	if b.TempHPAbsorbed > 0 {
		msg += fmt.Sprintf(" (%d absorbed by temporary hit points)", b.TempHPAbsorbed)
	}
	if b.Immune {
		msg += " (immune)"
	}
	return msg
}

// Apply subtracts amount of type t from v. Temporary hit points absorb first;
// immunity then zeroes the remainder, vulnerability doubles it, resistance
// halves it rounding down. HP never drops below zero.
//
// Precondition: amount >= 0; v and a must not be nil.
// Postcondition: v.TempHP >= 0 and v.HP >= 0.
func Apply(v *Vitals, a *Affinities, amount int, t Type) Breakdown {
	if amount < 0 {
		amount = 0
	}
	b := Breakdown{Type: t, Original: amount, HPBefore: v.HP}

	remaining := amount
	if v.TempHP > 0 && remaining > 0 {
		absorbed := min(v.TempHP, remaining)
		v.TempHP -= absorbed
		remaining -= absorbed
		b.TempHPAbsorbed = absorbed
		b.Modifications = append(b.Modifications, fmt.Sprintf("temporary hit points absorbed %d", absorbed))
	}

	switch {
	case a.Has(Immunity, t):
		b.Immune = true
		remaining = 0
		b.Modifications = append(b.Modifications, fmt.Sprintf("immune to %s", t))
	case a.Has(Vulnerability, t):
		b.Vulnerable = true
		remaining *= 2
		b.Modifications = append(b.Modifications, fmt.Sprintf("vulnerable to %s: doubled", t))
	case a.Has(Resistance, t):
		b.Resistant = true
		remaining /= 2
		b.Modifications = append(b.Modifications, fmt.Sprintf("resistant to %s: halved", t))
	}

	b.Final = remaining
	if remaining > v.HP {
		b.Overflow = remaining - max(v.HP, 0)
	}
	v.HP = max(v.HP-remaining, 0)
	b.HPAfter = v.HP
	return b
}

// GrantTempHP replaces v's temporary hit points with amount only when amount
// is strictly greater. Temporary hit points never stack.
//
// Postcondition: Returns true iff v.TempHP changed.
func GrantTempHP(v *Vitals, amount int) bool {
	if amount <= v.TempHP {
		return false
	}
	v.TempHP = amount
	return true
}

// Heal restores up to amount hit points, capped at MaxHP.
//
// Postcondition: Returns the number of hit points actually restored.
func Heal(v *Vitals, amount int) int {
	if amount <= 0 {
		return 0
	}
	before := v.HP
	v.HP = min(max(v.HP, 0)+amount, v.MaxHP)
	return v.HP - before
}

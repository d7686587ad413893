// Package position models the coarse range bands that stand in for a grid,
// and tracks the {previous, current} band pair of each combatant.
package position

import (
	"fmt"
	"sync"
)

// Band is a coarse distance category.
type Band string

const (
	Melee   Band = "melee"
	Near    Band = "near"
	Far     Band = "far"
	Distant Band = "distant"
)

var ranks = map[Band]int{Melee: 0, Near: 1, Far: 2, Distant: 3}

// ParseBand validates s as a band label.
func ParseBand(s string) (Band, error) {
	b := Band(s)
	if _, ok := ranks[b]; !ok {
		return "", fmt.Errorf("unknown range band %q", s)
	}
	return b, nil
}

// Rank returns the ordinal of b, melee being 0. Unknown bands rank as distant.
func (b Band) Rank() int {
	if r, ok := ranks[b]; ok {
		return r
	}
	return ranks[Distant]
}

// Distance returns the number of bands between a and b.
func Distance(a, b Band) int {
	d := a.Rank() - b.Rank()
	if d < 0 {
		return -d
	}
	return d
}

// Farther returns the next band away from melee; distant stays distant.
func (b Band) Farther() Band {
	switch b {
	case Melee:
		return Near
	case Near:
		return Far
	default:
		return Distant
	}
}

// Closer returns the next band toward melee; melee stays melee.
func (b Band) Closer() Band {
	switch b {
	case Distant:
		return Far
	case Far:
		return Near
	default:
		return Melee
	}
}

// Pair is a combatant's band before and after its most recent move.
type Pair struct {
	Previous Band
	Current  Band
}

// Moved reports whether the last move changed band.
func (p Pair) Moved() bool { return p.Previous != p.Current }

// Left reports whether the last move took the combatant out of band b.
func (p Pair) Left(b Band) bool { return p.Previous == b && p.Current != b }

// Provider supplies positions per combatant id.
type Provider interface {
	Position(id string) (Pair, bool)
}

// Tracker is the in-memory Provider used by an encounter. It is safe for
// concurrent use.
type Tracker struct {
	mu    sync.RWMutex
	pairs map[string]Pair
}

// NewTracker creates an empty Tracker.
func NewTracker() *Tracker {
	return &Tracker{pairs: make(map[string]Pair)}
}

// Place sets both previous and current band for id, as on encounter start.
func (t *Tracker) Place(id string, b Band) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pairs[id] = Pair{Previous: b, Current: b}
}

// Move records a move of id to b and returns the resulting pair.
//
// Postcondition: Previous is the band held before the call.
func (t *Tracker) Move(id string, b Band) Pair {
	t.mu.Lock()
	defer t.mu.Unlock()
	p, ok := t.pairs[id]
	if !ok {
		p = Pair{Previous: b, Current: b}
	} else {
		p = Pair{Previous: p.Current, Current: b}
	}
	t.pairs[id] = p
	return p
}

// Settle collapses id's pair so that Previous equals Current.
func (t *Tracker) Settle(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if p, ok := t.pairs[id]; ok {
		t.pairs[id] = Pair{Previous: p.Current, Current: p.Current}
	}
}

// Remove forgets id.
func (t *Tracker) Remove(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.pairs, id)
}

// Position implements Provider.
func (t *Tracker) Position(id string) (Pair, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	p, ok := t.pairs[id]
	return p, ok
}

// Band returns the current band of id, or Distant when unknown.
func (t *Tracker) Band(id string) Band {
	p, ok := t.Position(id)
	if !ok {
		return Distant
	}
	return p.Current
}

package character

import "sync"

// SpellSlots tracks remaining spell slots per spell level for one combatant.
// It is safe for concurrent use.
type SpellSlots struct {
	mu        sync.Mutex
	remaining map[int]int
}

// NewSpellSlots copies initial into a fresh slot tracker.
func NewSpellSlots(initial map[int]int) *SpellSlots {
	rem := make(map[int]int, len(initial))
	for lvl, n := range initial {
		if n > 0 {
			rem[lvl] = n
		}
	}
	return &SpellSlots{remaining: rem}
}

// Remaining returns the slots left at exactly level.
func (s *SpellSlots) Remaining(level int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.remaining[level]
}

// Total returns the number of slots left across all levels.
func (s *SpellSlots) Total() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for _, n := range s.remaining {
		total += n
	}
	return total
}

// HasAtLeast reports whether any slot of level minLevel or higher remains.
func (s *SpellSlots) HasAtLeast(minLevel int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.lowestLocked(minLevel)
	return ok
}

// Spend consumes the lowest available slot at or above minLevel.
//
// Postcondition: Returns the spent slot level and true, or 0 and false with
// no slot consumed.
func (s *SpellSlots) Spend(minLevel int) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	lvl, ok := s.lowestLocked(minLevel)
	if !ok {
		return 0, false
	}
	s.remaining[lvl]--
	return lvl, true
}

func (s *SpellSlots) lowestLocked(minLevel int) (int, bool) {
	if minLevel < 1 {
		minLevel = 1
	}
	for lvl := minLevel; lvl <= 9; lvl++ {
		if s.remaining[lvl] > 0 {
			return lvl, true
		}
	}
	return 0, false
}

package combat

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/cory-johannsen/tactics/internal/game/position"
	"github.com/cory-johannsen/tactics/internal/scripting"
)

// Engine manages all active encounters, keyed by encounter id.
// All methods are safe for concurrent use.
type Engine struct {
	mu         sync.RWMutex
	core       *Core
	narrator   Narrator
	logger     *zap.Logger
	encounters map[string]*Encounter
}

// NewEngine creates an empty Engine sharing core and narrator across its
// encounters.
//
// Precondition: core and logger must not be nil; narrator may be nil.
// Postcondition: Returns a non-nil Engine ready for use.
func NewEngine(core *Core, narrator Narrator, logger *zap.Logger) *Engine {
	return &Engine{core: core, narrator: narrator, logger: logger, encounters: make(map[string]*Encounter)}
}

// Core returns the shared rules core.
func (e *Engine) Core() *Core { return e.core }

// Start begins a new encounter with the given combatants placed in
// positions.
//
// Precondition: at least two combatants with unique ids, none already in an
// active encounter.
// Postcondition: Returns the new Encounter or an error.
func (e *Engine) Start(positions *position.Tracker, combatants []*Combatant) (*Encounter, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, enc := range e.encounters {
		for _, c := range combatants {
			if _, busy := enc.byID[c.ID]; busy {
				return nil, fmt.Errorf("combatant %q already in encounter %s", c.ID, enc.ID())
			}
		}
	}
	enc, err := NewEncounter(e.core, positions, e.narrator, e.logger, combatants)
	if err != nil {
		return nil, fmt.Errorf("starting encounter: %w", err)
	}
	e.encounters[enc.ID()] = enc
	e.logger.Info("encounter started", zap.String("encounter", enc.ID()), zap.Int("combatants", len(combatants)))
	return enc, nil
}

// Get returns the active encounter with id.
//
// Postcondition: Returns (encounter, true) if found, or (nil, false) otherwise.
func (e *Engine) Get(id string) (*Encounter, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	enc, ok := e.encounters[id]
	return enc, ok
}

// End removes the encounter with id.
func (e *Engine) End(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.encounters, id)
}

// Len returns the number of active encounters.
func (e *Engine) Len() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.encounters)
}

// CombatantInfo finds a combatant in any active encounter for scripts.
// Suitable as scripting.Manager.GetCombatant.
func (e *Engine) CombatantInfo(id string) *scripting.CombatantInfo {
	e.mu.RLock()
	defer e.mu.RUnlock()
	for _, enc := range e.encounters {
		if info := enc.CombatantInfo(id); info != nil {
			return info
		}
	}
	return nil
}

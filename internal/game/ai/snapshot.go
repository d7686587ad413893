// Package ai turns a henchman's standing command plus a read-only battlefield
// snapshot into one proposed turn action. It never mutates combatants; the
// turn controller applies the proposal through the rules packages.
package ai

import (
	"slices"
	"sort"

	"github.com/cory-johannsen/tactics/internal/game/position"
)

// Actor captures a combatant's state at decision time.
type Actor struct {
	ID    string
	Name  string
	HP    int
	MaxHP int
	AC    int
	Band  position.Band
	Dead  bool
	// Threat estimates the damage the actor deals in one turn.
	Threat int
	// LastTargetID is the most recent combatant this actor attacked.
	LastTargetID string
	Abilities    []string
	// CanHeal is true when the actor holds a healing spell and a slot for it.
	CanHeal bool
	// CanAct is false while the actor is incapacitated.
	CanAct bool
}

// HPFraction returns HP/MaxHP in [0,1]; 0 if MaxHP <= 0.
func (a *Actor) HPFraction() float64 {
	if a.MaxHP <= 0 {
		return 0
	}
	return float64(max(a.HP, 0)) / float64(a.MaxHP)
}

// HasAbility reports whether name is among the actor's abilities.
func (a *Actor) HasAbility(name string) bool {
	return slices.Contains(a.Abilities, name)
}

// Snapshot is the battlefield view handed to the resolver for one henchman.
//
// Invariant: Self and Player are not nil.
type Snapshot struct {
	Round   int
	Self    *Actor
	Player  *Actor // the protected, commanding player
	Allies  []*Actor
	Enemies []*Actor
}

// LivingEnemies returns the enemies that are not dead, in snapshot order.
func (s *Snapshot) LivingEnemies() []*Actor {
	var out []*Actor
	for _, e := range s.Enemies {
		if !e.Dead {
			out = append(out, e)
		}
	}
	return out
}

// Enemy returns the living enemy with id.
func (s *Snapshot) Enemy(id string) (*Actor, bool) {
	for _, e := range s.Enemies {
		if e.ID == id && !e.Dead {
			return e, true
		}
	}
	return nil, false
}

// NearestEnemy returns the living enemy fewest bands from band. Ties go to
// the lower HP, then snapshot order.
//
// Postcondition: nil if no living enemies exist.
func (s *Snapshot) NearestEnemy(band position.Band) *Actor {
	enemies := s.LivingEnemies()
	sort.SliceStable(enemies, func(i, j int) bool {
		di, dj := position.Distance(band, enemies[i].Band), position.Distance(band, enemies[j].Band)
		if di != dj {
			return di < dj
		}
		return enemies[i].HP < enemies[j].HP
	})
	if len(enemies) == 0 {
		return nil
	}
	return enemies[0]
}

// WeakestEnemy returns the living enemy with the lowest HP fraction.
//
// Postcondition: nil if no living enemies exist; ties broken by snapshot order.
func (s *Snapshot) WeakestEnemy() *Actor {
	var weakest *Actor
	for _, e := range s.LivingEnemies() {
		if weakest == nil || e.HPFraction() < weakest.HPFraction() {
			weakest = e
		}
	}
	return weakest
}

// EnemiesIn returns the living enemies sharing band.
func (s *Snapshot) EnemiesIn(band position.Band) []*Actor {
	var out []*Actor
	for _, e := range s.LivingEnemies() {
		if e.Band == band {
			out = append(out, e)
		}
	}
	return out
}

// StrongestThreatIn returns the enemy in band with the highest Threat, ties
// going to the higher HP.
func (s *Snapshot) StrongestThreatIn(band position.Band) *Actor {
	var best *Actor
	for _, e := range s.EnemiesIn(band) {
		if best == nil || e.Threat > best.Threat || (e.Threat == best.Threat && e.HP > best.HP) {
			best = e
		}
	}
	return best
}

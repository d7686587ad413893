package combat_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cory-johannsen/tactics/internal/game/ai"
	"github.com/cory-johannsen/tactics/internal/game/character"
	"github.com/cory-johannsen/tactics/internal/game/combat"
	"github.com/cory-johannsen/tactics/internal/game/command"
	"github.com/cory-johannsen/tactics/internal/game/condition"
	"github.com/cory-johannsen/tactics/internal/game/dice"
	"github.com/cory-johannsen/tactics/internal/game/position"
)

func newCoreWithRules(t testing.TB, rules combat.Rules, faces ...int) *combat.Core {
	t.Helper()
	roller := dice.NewLoggedRoller(dice.NewFixedSource(faces...), zap.NewNop())
	resolver := ai.NewResolver(ai.DefaultProfiles(), nil, "henchmen", zap.NewNop())
	return combat.NewCore(rules, roller, condition.DefaultRegistry(), command.DefaultRegistry(), resolver, zap.NewNop())
}

func newCore(t testing.TB, faces ...int) *combat.Core {
	t.Helper()
	return newCoreWithRules(t, combat.DefaultRules(), faces...)
}

func fighterTpl() *character.Template {
	return &character.Template{
		ID: "fighter", Name: "Hero", Class: character.ClassFighter, Level: 3, MaxHP: 12, AC: 16, Speed: 30,
		Abilities: character.AbilityScores{Strength: 16, Dexterity: 12, Constitution: 14, Intelligence: 10, Wisdom: 10, Charisma: 10},
		Weapon:    &character.Weapon{Name: "longsword", Damage: "1d8", DamageType: "slashing"},
		Specials:  []string{"second_wind"},
	}
}

func rogueTpl() *character.Template {
	return &character.Template{
		ID: "rogue", Name: "Vex", Class: character.ClassRogue, Level: 5, MaxHP: 30, AC: 14, Speed: 30,
		Abilities: character.AbilityScores{Strength: 10, Dexterity: 16, Constitution: 12, Intelligence: 12, Wisdom: 10, Charisma: 12},
		Weapon:    &character.Weapon{Name: "dagger", Damage: "1d4", DamageType: "piercing", Finesse: true},
	}
}

func wizardTpl() *character.Template {
	return &character.Template{
		ID: "wizard", Name: "Mira", Class: character.ClassWizard, Level: 5, MaxHP: 20, AC: 12, Speed: 30,
		Abilities:   character.AbilityScores{Strength: 8, Dexterity: 14, Constitution: 12, Intelligence: 16, Wisdom: 12, Charisma: 10},
		KnownSpells: []string{"shield", "counterspell"},
		SpellSlots:  map[int]int{1: 1, 3: 1},
	}
}

func clericTpl() *character.Template {
	return &character.Template{
		ID: "cleric", Name: "Tomas", Class: character.ClassCleric, Level: 3, MaxHP: 18, AC: 15, Speed: 30,
		Abilities:   character.AbilityScores{Strength: 12, Dexterity: 10, Constitution: 12, Intelligence: 10, Wisdom: 14, Charisma: 10},
		Weapon:      &character.Weapon{Name: "mace", Damage: "1d6", DamageType: "bludgeoning"},
		KnownSpells: []string{"cure_wounds"},
		SpellSlots:  map[int]int{1: 2},
	}
}

func goblinTpl() *character.Template {
	return &character.Template{
		ID: "goblin", Name: "Goblin", Class: "monster", Level: 1, MaxHP: 7, AC: 13, Speed: 30,
		Abilities: character.AbilityScores{Strength: 8, Dexterity: 14, Constitution: 10, Intelligence: 10, Wisdom: 8, Charisma: 8},
		Weapon:    &character.Weapon{Name: "scimitar", Damage: "1d6", DamageType: "slashing", Finesse: true},
	}
}

func archerTpl() *character.Template {
	t := goblinTpl()
	t.ID, t.Name = "goblin_archer", "Goblin Archer"
	t.Weapon = &character.Weapon{Name: "shortbow", Damage: "1d6", DamageType: "piercing", Ranged: true}
	return t
}

func party(core *combat.Core, id string, tpl *character.Template) *combat.Combatant {
	return combat.NewCombatant(id, tpl, combat.SideParty, core.Registry(), core.Rules())
}

func hostile(core *combat.Core, id string, tpl *character.Template) *combat.Combatant {
	return combat.NewCombatant(id, tpl, combat.SideHostile, core.Registry(), core.Rules())
}

// recorder is a Narrator that keeps every line.
type recorder struct {
	mu    sync.Mutex
	lines []combat.Line
}

func (r *recorder) Narrate(_ context.Context, l combat.Line) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lines = append(r.lines, l)
	return nil
}

func (r *recorder) events() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.lines))
	for _, l := range r.lines {
		out = append(out, l.Event)
	}
	return out
}

type placed struct {
	c    *combat.Combatant
	band position.Band
}

func encounter(t testing.TB, core *combat.Core, n combat.Narrator, members ...placed) (*combat.Encounter, *position.Tracker) {
	t.Helper()
	pos := position.NewTracker()
	cs := make([]*combat.Combatant, 0, len(members))
	for _, m := range members {
		pos.Place(m.c.ID, m.band)
		cs = append(cs, m.c)
	}
	enc, err := combat.NewEncounter(core, pos, n, zap.NewNop(), cs)
	require.NoError(t, err)
	return enc, pos
}

func startTurn(t testing.TB, enc *combat.Encounter, wantID string) combat.TurnResult {
	t.Helper()
	res := enc.StartTurn(context.Background())
	require.True(t, res.Success, res.Message)
	require.Equal(t, wantID, res.Combatant.ID)
	return res
}

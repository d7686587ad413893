package reaction_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/tactics/internal/game/character"
	"github.com/cory-johannsen/tactics/internal/game/dice"
	"github.com/cory-johannsen/tactics/internal/game/reaction"
)

func roller(faces ...int) dice.Dicer {
	return dice.NewLoggedRoller(dice.NewFixedSource(faces...), zap.NewNop())
}

func wizard() *character.Template {
	return &character.Template{
		ID: "wiz", Name: "Ilse", Class: character.ClassWizard, Level: 5, MaxHP: 22, AC: 12,
		Abilities:   character.AbilityScores{Intelligence: 18},
		KnownSpells: []string{"shield", "counterspell", "magic missile"},
	}
}

func TestAvailability(t *testing.T) {
	rules := reaction.DefaultRules()

	set := reaction.Availability(wizard(), rules)
	assert.True(t, set[reaction.OpportunityAttack])
	assert.True(t, set[reaction.Shield])
	assert.True(t, set[reaction.Counterspell])
	assert.False(t, set[reaction.UncannyDodge])

	rogue := &character.Template{Class: character.ClassRogue, Level: 5}
	set = reaction.Availability(rogue, rules)
	assert.True(t, set[reaction.UncannyDodge])
	assert.False(t, set[reaction.Shield])

	rogue.Level = 4
	assert.False(t, reaction.Availability(rogue, rules)[reaction.UncannyDodge])

	fighter := &character.Template{Class: character.ClassFighter, Level: 3, KnownSpells: []string{"shield"}}
	assert.False(t, reaction.Availability(fighter, rules)[reaction.Shield], "non-casters cannot cast shield")
}

func TestUseShield_TurnsHitIntoMiss(t *testing.T) {
	l := reaction.NewLedger(reaction.Availability(wizard(), reaction.DefaultRules()), reaction.DefaultRules())
	slots := character.NewSpellSlots(map[int]int{1: 1})

	res, err := l.UseShield(slots, 15, 12)
	require.NoError(t, err)
	assert.True(t, res.WasHit)
	assert.True(t, res.TurnedMiss)
	assert.Equal(t, 17, res.NewAC)
	assert.Equal(t, 1, res.SlotLevel)
	assert.Equal(t, 0, slots.Remaining(1))
	assert.Equal(t, reaction.Shield, l.Used())
	assert.False(t, l.Available())
	assert.Equal(t, 5, l.ACBonus())
}

func TestUseShield_StillHits(t *testing.T) {
	l := reaction.NewLedger(map[reaction.Type]bool{reaction.Shield: true}, reaction.DefaultRules())
	res, err := l.UseShield(character.NewSpellSlots(map[int]int{2: 1}), 20, 12)
	require.NoError(t, err)
	assert.True(t, res.WasHit)
	assert.False(t, res.TurnedMiss)
	assert.Equal(t, 2, res.SlotLevel)
}

func TestUseShield_NoSlotLeavesReaction(t *testing.T) {
	l := reaction.NewLedger(map[reaction.Type]bool{reaction.Shield: true}, reaction.DefaultRules())
	_, err := l.UseShield(character.NewSpellSlots(nil), 15, 12)
	assert.ErrorIs(t, err, reaction.ErrNoSpellSlot)
	assert.True(t, l.Available())
	assert.Equal(t, 0, l.ACBonus())
}

func TestSecondReactionFails(t *testing.T) {
	l := reaction.NewLedger(reaction.Availability(wizard(), reaction.DefaultRules()), reaction.DefaultRules())
	slots := character.NewSpellSlots(map[int]int{1: 2, 3: 1})
	_, err := l.UseShield(slots, 15, 12)
	require.NoError(t, err)

	_, err = l.UseShield(slots, 15, 17)
	assert.ErrorIs(t, err, reaction.ErrUnavailable)
	assert.Equal(t, 5, l.ACBonus(), "no double application")
	assert.Equal(t, 1, slots.Remaining(1))

	_, err = l.UseCounterspell(slots, 2, 4, roller())
	assert.ErrorIs(t, err, reaction.ErrUnavailable)
}

func TestReset_ExpiresShieldModifier(t *testing.T) {
	l := reaction.NewLedger(map[reaction.Type]bool{reaction.Shield: true}, reaction.DefaultRules())
	_, err := l.UseShield(character.NewSpellSlots(map[int]int{1: 1}), 13, 12)
	require.NoError(t, err)

	expired := l.Reset()
	require.Len(t, expired, 1)
	assert.Equal(t, reaction.Shield, expired[0].Source)
	assert.Equal(t, 0, l.ACBonus())
	assert.True(t, l.Available())
	assert.Equal(t, reaction.Type(""), l.Used())
	assert.Empty(t, l.Reset())
}

func TestUseCounterspell_AutoSuccess(t *testing.T) {
	l := reaction.NewLedger(map[reaction.Type]bool{reaction.Counterspell: true}, reaction.DefaultRules())
	slots := character.NewSpellSlots(map[int]int{3: 1})
	res, err := l.UseCounterspell(slots, 2, 4, roller())
	require.NoError(t, err)
	assert.True(t, res.AutoSuccess)
	assert.True(t, res.Countered)
	assert.Equal(t, 0, slots.Total())
}

func TestUseCounterspell_AbilityCheck(t *testing.T) {
	l := reaction.NewLedger(map[reaction.Type]bool{reaction.Counterspell: true}, reaction.DefaultRules())
	res, err := l.UseCounterspell(character.NewSpellSlots(map[int]int{3: 1}), 5, 4, roller(11))
	require.NoError(t, err)
	assert.False(t, res.AutoSuccess)
	assert.Equal(t, 15, res.DC)
	assert.Equal(t, 15, res.Total)
	assert.True(t, res.Countered)

	l.Reset()
	res, err = l.UseCounterspell(character.NewSpellSlots(map[int]int{3: 1}), 5, 4, roller(10))
	require.NoError(t, err)
	assert.False(t, res.Countered)
}

func TestUseCounterspell_NeedsThirdLevelSlot(t *testing.T) {
	l := reaction.NewLedger(map[reaction.Type]bool{reaction.Counterspell: true}, reaction.DefaultRules())
	_, err := l.UseCounterspell(character.NewSpellSlots(map[int]int{1: 4, 2: 3}), 1, 4, roller())
	assert.ErrorIs(t, err, reaction.ErrNoSpellSlot)
	assert.True(t, l.Available())
}

func TestUseOpportunityAttack(t *testing.T) {
	l := reaction.NewLedger(map[reaction.Type]bool{reaction.OpportunityAttack: true}, reaction.DefaultRules())
	p := reaction.AttackProfile{AttackBonus: 5, Damage: dice.MustParse("1d8"), DamageBonus: 3}
	res, err := l.UseOpportunityAttack(p, 14, roller(10, 6))
	require.NoError(t, err)
	assert.True(t, res.Hit)
	assert.Equal(t, 9, res.Damage)
	assert.Equal(t, reaction.OpportunityAttack, l.Used())
}

func TestUseOpportunityAttack_Miss(t *testing.T) {
	l := reaction.NewLedger(map[reaction.Type]bool{reaction.OpportunityAttack: true}, reaction.DefaultRules())
	p := reaction.AttackProfile{AttackBonus: 5, Damage: dice.MustParse("1d8")}
	res, err := l.UseOpportunityAttack(p, 14, roller(8))
	require.NoError(t, err)
	assert.False(t, res.Hit)
	assert.Equal(t, 0, res.Damage)
}

func TestUseOpportunityAttack_CritDoublesDice(t *testing.T) {
	l := reaction.NewLedger(map[reaction.Type]bool{reaction.OpportunityAttack: true}, reaction.DefaultRules())
	p := reaction.AttackProfile{AttackBonus: 0, Damage: dice.MustParse("1d6"), DamageBonus: 2}
	res, err := l.UseOpportunityAttack(p, 30, roller(20, 4, 5))
	require.NoError(t, err)
	assert.True(t, res.Critical)
	assert.Equal(t, 11, res.Damage)
}

func TestUseUncannyDodge(t *testing.T) {
	l := reaction.NewLedger(map[reaction.Type]bool{reaction.UncannyDodge: true}, reaction.DefaultRules())
	res, err := l.UseUncannyDodge(13)
	require.NoError(t, err)
	assert.Equal(t, 6, res.Reduced)
	_, err = l.UseUncannyDodge(13)
	assert.ErrorIs(t, err, reaction.ErrUnavailable)
}

func TestUnknownReaction(t *testing.T) {
	l := reaction.NewLedger(map[reaction.Type]bool{reaction.OpportunityAttack: true}, reaction.DefaultRules())
	_, err := l.UseUncannyDodge(10)
	assert.ErrorIs(t, err, reaction.ErrNotKnown)
	assert.False(t, l.CanUse(reaction.UncannyDodge))
	assert.True(t, l.CanUse(reaction.OpportunityAttack))
}

func TestProperty_AtMostOneReactionPerWindow(t *testing.T) {
	all := []reaction.Type{reaction.OpportunityAttack, reaction.Shield, reaction.Counterspell, reaction.UncannyDodge}
	rapid.Check(t, func(rt *rapid.T) {
		known := map[reaction.Type]bool{}
		for _, r := range all {
			known[r] = true
		}
		l := reaction.NewLedger(known, reaction.DefaultRules())
		slots := character.NewSpellSlots(map[int]int{1: 9, 3: 9})
		successes := 0
		attempts := rapid.IntRange(1, 10).Draw(rt, "attempts")
		for i := 0; i < attempts; i++ {
			var err error
			switch rapid.SampledFrom(all).Draw(rt, "reaction") {
			case reaction.Shield:
				_, err = l.UseShield(slots, 15, 12)
			case reaction.Counterspell:
				_, err = l.UseCounterspell(slots, 1, 0, roller())
			case reaction.UncannyDodge:
				_, err = l.UseUncannyDodge(10)
			default:
				_, err = l.UseOpportunityAttack(reaction.AttackProfile{Damage: dice.MustParse("1d4")}, 30, roller(2))
			}
			if err == nil {
				successes++
			}
		}
		if successes != 1 {
			rt.Fatalf("expected exactly one reaction, got %d", successes)
		}
		if l.ACBonus() > reaction.DefaultRules().ShieldACBonus {
			rt.Fatalf("shield applied twice")
		}
	})
}

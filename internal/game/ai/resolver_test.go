package ai_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/tactics/internal/game/ai"
	"github.com/cory-johannsen/tactics/internal/game/command"
	"github.com/cory-johannsen/tactics/internal/game/position"
)

// mockScriptCaller returns the given value for any hook call and records hooks.
type mockScriptCaller struct {
	returnVal lua.LValue
	err       error
	hooks     []string
}

func (m *mockScriptCaller) CallHook(_ string, hook string, _ ...lua.LValue) (lua.LValue, error) {
	m.hooks = append(m.hooks, hook)
	if m.err != nil {
		return lua.LNil, m.err
	}
	if m.returnVal == nil {
		return lua.LNil, nil
	}
	return m.returnVal, nil
}

func resolver(caller ai.ScriptCaller) *ai.Resolver {
	return ai.NewResolver(ai.DefaultProfiles(), caller, "henchmen", zap.NewNop())
}

// battlefield: the player is in melee with a goblin and an ogre; an archer
// stands far off. The henchman is near.
func battlefield() *ai.Snapshot {
	return &ai.Snapshot{
		Round:  2,
		Self:   &ai.Actor{ID: "hench", Name: "Brakka", HP: 20, MaxHP: 20, Band: position.Near, CanAct: true},
		Player: &ai.Actor{ID: "hero", Name: "Hero", HP: 10, MaxHP: 30, Band: position.Melee, CanAct: true, LastTargetID: "goblin"},
		Enemies: []*ai.Actor{
			{ID: "goblin", HP: 5, MaxHP: 7, Band: position.Melee, Threat: 4},
			{ID: "ogre", HP: 40, MaxHP: 59, Band: position.Melee, Threat: 13},
			{ID: "archer", HP: 3, MaxHP: 11, Band: position.Far, Threat: 6},
		},
	}
}

func state(cmd command.Name, opts command.Options) *command.State {
	s := command.NewState()
	if _, err := command.DefaultRegistry().Issue(s, cmd, opts); err != nil {
		panic(err)
	}
	return s
}

func TestResolve_DefendMe(t *testing.T) {
	b, err := resolver(nil).Resolve(state(command.DefendMe, command.Options{}), battlefield())
	require.NoError(t, err)
	assert.Equal(t, ai.ActionAttack, b.Action)
	assert.Equal(t, "ogre", b.TargetID, "strongest threat beside the player")
	assert.Equal(t, ai.MoveStayNear, b.Movement)
	assert.Equal(t, ai.PriorityCritical, b.Priority)
}

func TestResolve_DefendMe_NoEnemies(t *testing.T) {
	snap := battlefield()
	snap.Enemies = nil
	b, err := resolver(nil).Resolve(state(command.DefendMe, command.Options{}), snap)
	require.NoError(t, err)
	assert.Equal(t, ai.ActionDefend, b.Action)
	assert.Equal(t, ai.MoveStayNear, b.Movement)
}

func TestResolve_AttackTarget_Override(t *testing.T) {
	b, err := resolver(nil).Resolve(state(command.AttackTarget, command.Options{TargetID: "archer"}), battlefield())
	require.NoError(t, err)
	assert.Equal(t, "archer", b.TargetID)
	assert.Equal(t, ai.MoveAdvance, b.Movement)
}

func TestResolve_AttackTarget_FallsBackToPlayersTarget(t *testing.T) {
	snap := battlefield()
	st := state(command.AttackTarget, command.Options{TargetID: "archer"})
	snap.Enemies[2].Dead = true
	b, err := resolver(nil).Resolve(st, snap)
	require.NoError(t, err)
	assert.Equal(t, "goblin", b.TargetID)
}

func TestResolve_AttackNearest(t *testing.T) {
	snap := battlefield()
	snap.Self.Band = position.Far
	b, err := resolver(nil).Resolve(state(command.AttackNearest, command.Options{}), snap)
	require.NoError(t, err)
	assert.Equal(t, "archer", b.TargetID)
	assert.Equal(t, ai.MoveNone, b.Movement)
}

func TestResolve_HoldPosition(t *testing.T) {
	snap := battlefield()
	b, err := resolver(nil).Resolve(state(command.HoldPosition, command.Options{HoldAt: position.Near}), snap)
	require.NoError(t, err)
	assert.Equal(t, ai.ActionDefend, b.Action, "nothing shares the near band")
	assert.Equal(t, ai.MoveNone, b.Movement)

	snap.Self.Band = position.Melee
	b, err = resolver(nil).Resolve(state(command.HoldPosition, command.Options{HoldAt: position.Melee}), snap)
	require.NoError(t, err)
	assert.Equal(t, "goblin", b.TargetID)
	assert.Equal(t, ai.MoveNone, b.Movement)
}

func TestResolve_HoldPositionReturnsToPost(t *testing.T) {
	snap := battlefield()
	b, err := resolver(nil).Resolve(state(command.HoldPosition, command.Options{HoldAt: position.Melee}), snap)
	require.NoError(t, err)
	assert.Equal(t, ai.ActionAttack, b.Action)
	assert.Equal(t, "goblin", b.TargetID, "weakest enemy at the held band")
	assert.Equal(t, ai.MoveReturn, b.Movement)
	assert.Equal(t, position.Melee, b.Destination)

	snap.Self.Band = position.Far
	b, err = resolver(nil).Resolve(state(command.HoldPosition, command.Options{HoldAt: position.Near}), snap)
	require.NoError(t, err)
	assert.Equal(t, ai.ActionDefend, b.Action)
	assert.Equal(t, ai.MoveReturn, b.Movement)
	assert.Equal(t, position.Near, b.Destination)
	assert.Equal(t, "dodge [move: return_to_post near]", b.String())
}

func TestResolve_HoldPositionWithoutBandHoldsWhereItStands(t *testing.T) {
	snap := battlefield()
	snap.Self.Band = position.Melee
	st := command.NewState()
	st.Current = command.HoldPosition
	b, err := resolver(nil).Resolve(st, snap)
	require.NoError(t, err)
	assert.Equal(t, "goblin", b.TargetID)
	assert.Equal(t, ai.MoveNone, b.Movement)
}

func TestModulate_AggressiveHoldDoesNotAdvance(t *testing.T) {
	snap := battlefield()
	st := state(command.HoldPosition, command.Options{HoldAt: position.Near})
	_, err := command.DefaultRegistry().Issue(st, command.StanceAggressive, command.Options{})
	require.NoError(t, err)

	b, err := resolver(nil).Resolve(st, snap)
	require.NoError(t, err)
	assert.Equal(t, ai.ActionDefend, b.Action, "nothing shares the near band")
	assert.Equal(t, ai.MoveNone, b.Movement)
	assert.Empty(t, b.TargetID)
}

func TestModulate_RangedHoldDoesNotOpenDistance(t *testing.T) {
	snap := battlefield()
	snap.Self.Band = position.Melee
	st := state(command.HoldPosition, command.Options{HoldAt: position.Melee})
	_, err := command.DefaultRegistry().Issue(st, command.StanceRanged, command.Options{})
	require.NoError(t, err)

	b, err := resolver(nil).Resolve(st, snap)
	require.NoError(t, err)
	assert.Equal(t, ai.ActionAttack, b.Action)
	assert.Equal(t, "goblin", b.TargetID)
	assert.Equal(t, ai.MoveNone, b.Movement)
}

func TestResolve_FallBack(t *testing.T) {
	b, err := resolver(nil).Resolve(state(command.FallBack, command.Options{}), battlefield())
	require.NoError(t, err)
	assert.Equal(t, ai.ActionDisengage, b.Action)
	assert.Equal(t, ai.MoveRetreat, b.Movement)
}

func TestResolve_Follow(t *testing.T) {
	b, err := resolver(nil).Resolve(state(command.Follow, command.Options{}), battlefield())
	require.NoError(t, err)
	assert.Equal(t, ai.ActionDefend, b.Action)
	assert.Equal(t, ai.MoveFollow, b.Movement)
}

func TestResolve_Flank(t *testing.T) {
	b, err := resolver(nil).Resolve(state(command.Flank, command.Options{}), battlefield())
	require.NoError(t, err)
	assert.Equal(t, "goblin", b.TargetID)
	assert.Equal(t, ai.MoveFlank, b.Movement)
}

func TestResolve_FocusFire_FallsBackToWeakest(t *testing.T) {
	snap := battlefield()
	snap.Enemies[1].Dead = true
	b, err := resolver(nil).Resolve(state(command.FocusFire, command.Options{TargetID: "ogre"}), snap)
	require.NoError(t, err)
	assert.Equal(t, "archer", b.TargetID, "archer has the lowest HP fraction")
}

func TestResolve_UseAbility_ListGate(t *testing.T) {
	snap := battlefield()
	snap.Self.Abilities = []string{"second_wind"}
	b, err := resolver(nil).Resolve(state(command.UseAbility, command.Options{Ability: "second_wind"}), snap)
	require.NoError(t, err)
	assert.Equal(t, ai.ActionUseAbility, b.Action)
	assert.Equal(t, "second_wind", b.Ability)

	b, err = resolver(nil).Resolve(state(command.UseAbility, command.Options{Ability: "rage"}), snap)
	require.NoError(t, err)
	assert.Equal(t, ai.ActionAttack, b.Action)
	assert.Contains(t, b.Reasoning, "rage unavailable")
}

func TestResolve_UseAbility_LuaGate(t *testing.T) {
	caller := &mockScriptCaller{returnVal: lua.LFalse}
	snap := battlefield()
	snap.Self.Abilities = []string{"second_wind"}
	b, err := resolver(caller).Resolve(state(command.UseAbility, command.Options{Ability: "second_wind"}), snap)
	require.NoError(t, err)
	assert.Equal(t, ai.ActionAttack, b.Action, "script veto wins over the ability list")
	assert.Equal(t, []string{"can_use_second_wind"}, caller.hooks)

	caller = &mockScriptCaller{returnVal: lua.LTrue}
	snap.Self.Abilities = nil
	b, err = resolver(caller).Resolve(state(command.UseAbility, command.Options{Ability: "second_wind"}), snap)
	require.NoError(t, err)
	assert.Equal(t, ai.ActionUseAbility, b.Action)

	caller = &mockScriptCaller{err: errors.New("boom")}
	b, err = resolver(caller).Resolve(state(command.UseAbility, command.Options{Ability: "second_wind"}), snap)
	require.NoError(t, err)
	assert.Equal(t, ai.ActionAttack, b.Action)
}

func TestResolve_HealMe(t *testing.T) {
	snap := battlefield()
	snap.Self.CanHeal = true
	b, err := resolver(nil).Resolve(state(command.HealMe, command.Options{}), snap)
	require.NoError(t, err)
	assert.Equal(t, ai.ActionHeal, b.Action)
	assert.Equal(t, "hero", b.TargetID)
	assert.Equal(t, ai.PriorityCritical, b.Priority)

	snap.Self.CanHeal = false
	b, err = resolver(nil).Resolve(state(command.HealMe, command.Options{}), snap)
	require.NoError(t, err)
	assert.Equal(t, ai.ActionAttack, b.Action)
	assert.Equal(t, ai.MoveStayNear, b.Movement)
}

func TestModulate_DefensiveLowHPDodges(t *testing.T) {
	snap := battlefield()
	snap.Self.HP = 4
	st := state(command.AttackNearest, command.Options{})
	_, err := command.DefaultRegistry().Issue(st, command.StanceDefensive, command.Options{})
	require.NoError(t, err)

	b, err := resolver(nil).Resolve(st, snap)
	require.NoError(t, err)
	assert.Equal(t, ai.ActionDefend, b.Action)
	assert.Contains(t, b.Reasoning, "defensive stance")
}

func TestModulate_AggressivePressesAttack(t *testing.T) {
	snap := battlefield()
	st := state(command.Follow, command.Options{})
	_, err := command.DefaultRegistry().Issue(st, command.StanceAggressive, command.Options{})
	require.NoError(t, err)

	b, err := resolver(nil).Resolve(st, snap)
	require.NoError(t, err)
	assert.Equal(t, ai.ActionAttack, b.Action)
	assert.Equal(t, "archer", b.TargetID, "all enemies are one band away; lowest HP wins")
}

func TestModulate_RangedKeepsDistance(t *testing.T) {
	snap := battlefield()
	snap.Self.Band = position.Melee
	st := state(command.AttackNearest, command.Options{})
	_, err := command.DefaultRegistry().Issue(st, command.StanceRanged, command.Options{})
	require.NoError(t, err)

	b, err := resolver(nil).Resolve(st, snap)
	require.NoError(t, err)
	assert.Equal(t, ai.ActionAttack, b.Action)
	assert.Equal(t, ai.MoveKeepDistance, b.Movement)
}

func TestResolve_CannotAct(t *testing.T) {
	snap := battlefield()
	snap.Self.CanAct = false
	b, err := resolver(nil).Resolve(state(command.AttackNearest, command.Options{}), snap)
	require.NoError(t, err)
	assert.Equal(t, ai.ActionDefend, b.Action)
}

func TestResolve_NilSnapshot(t *testing.T) {
	_, err := resolver(nil).Resolve(command.NewState(), nil)
	assert.Error(t, err)
}

func TestProperty_ResolverNeverMutatesSnapshot(t *testing.T) {
	cmds := command.DefaultRegistry().Commands()
	bands := []position.Band{position.Melee, position.Near, position.Far, position.Distant}
	rapid.Check(t, func(rt *rapid.T) {
		snap := battlefield()
		snap.Self.Band = rapid.SampledFrom(bands).Draw(rt, "band")
		snap.Self.HP = rapid.IntRange(1, 20).Draw(rt, "hp")
		for _, e := range snap.Enemies {
			e.Dead = rapid.Bool().Draw(rt, "dead")
		}
		before := *snap.Self
		var enemies []ai.Actor
		for _, e := range snap.Enemies {
			enemies = append(enemies, *e)
		}
		st := command.NewState()
		for i := 0; i < 2; i++ {
			cmd := rapid.SampledFrom(cmds).Draw(rt, "cmd")
			if _, err := st.Apply(cmd, command.Options{TargetID: "ogre", Ability: "rage", HoldAt: snap.Self.Band}); err != nil {
				rt.Fatal(err)
			}
		}
		b, err := resolver(nil).Resolve(st, snap)
		if err != nil {
			rt.Fatal(err)
		}
		if b.Action == ai.ActionAttack {
			if _, ok := snap.Enemy(b.TargetID); !ok {
				rt.Fatalf("attack on non-living target %q", b.TargetID)
			}
		}
		if snap.Self.HP != before.HP || snap.Self.Band != before.Band {
			rt.Fatalf("self mutated")
		}
		for i, e := range snap.Enemies {
			if e.HP != enemies[i].HP || e.Dead != enemies[i].Dead {
				rt.Fatalf("enemy %s mutated", e.ID)
			}
		}
	})
}

package scripting_test

import (
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cory-johannsen/tactics/internal/game/ai"
	"github.com/cory-johannsen/tactics/internal/game/command"
	"github.com/cory-johannsen/tactics/internal/game/position"
	"github.com/cory-johannsen/tactics/internal/scripting"
)

func repoRoot(t *testing.T) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	require.True(t, ok)
	return filepath.Join(filepath.Dir(file), "..", "..")
}

func henchmanManager(t *testing.T) *scripting.Manager {
	t.Helper()
	mgr, _ := newTestManager(t)
	require.NoError(t, mgr.LoadScope("henchmen", filepath.Join(repoRoot(t), "content", "scripts"), 0))
	t.Cleanup(mgr.Close)
	return mgr
}

func useAbility(t *testing.T, ability string) *command.State {
	t.Helper()
	st := command.NewState()
	_, err := command.DefaultRegistry().Issue(st, command.UseAbility, command.Options{Ability: ability})
	require.NoError(t, err)
	return st
}

func snapshot(hp int) *ai.Snapshot {
	return &ai.Snapshot{
		Round:   1,
		Self:    &ai.Actor{ID: "hench", Name: "Brakka", HP: hp, MaxHP: 20, Band: position.Melee, CanAct: true},
		Player:  &ai.Actor{ID: "hero", HP: 20, MaxHP: 20, Band: position.Melee, CanAct: true},
		Enemies: []*ai.Actor{{ID: "goblin", HP: 7, MaxHP: 7, Band: position.Melee}},
	}
}

func TestSecondWindGate_Bloodied(t *testing.T) {
	r := ai.NewResolver(ai.DefaultProfiles(), henchmanManager(t), "henchmen", zap.NewNop())
	b, err := r.Resolve(useAbility(t, "second_wind"), snapshot(6))
	require.NoError(t, err)
	assert.Equal(t, ai.ActionUseAbility, b.Action)
	assert.Equal(t, "second_wind", b.Ability)
}

func TestSecondWindGate_Healthy_FallsBackToAttack(t *testing.T) {
	r := ai.NewResolver(ai.DefaultProfiles(), henchmanManager(t), "henchmen", zap.NewNop())
	b, err := r.Resolve(useAbility(t, "second_wind"), snapshot(20))
	require.NoError(t, err)
	assert.Equal(t, ai.ActionAttack, b.Action)
	assert.Equal(t, "goblin", b.TargetID)
}

func TestTauntGate_UsesCombatantBand(t *testing.T) {
	mgr := henchmanManager(t)
	band := "melee"
	mgr.GetCombatant = func(id string) *scripting.CombatantInfo {
		return &scripting.CombatantInfo{ID: id, HP: 20, MaxHP: 20, Band: band}
	}
	r := ai.NewResolver(ai.DefaultProfiles(), mgr, "henchmen", zap.NewNop())

	b, err := r.Resolve(useAbility(t, "taunt"), snapshot(20))
	require.NoError(t, err)
	assert.Equal(t, ai.ActionUseAbility, b.Action)

	band = "far"
	b, err = r.Resolve(useAbility(t, "taunt"), snapshot(20))
	require.NoError(t, err)
	assert.Equal(t, ai.ActionAttack, b.Action)
}

func TestRageGate_BlockedWhileIncapacitated(t *testing.T) {
	mgr := henchmanManager(t)
	mgr.GetCombatant = func(id string) *scripting.CombatantInfo {
		return &scripting.CombatantInfo{ID: id, Conditions: []string{"incapacitated"}}
	}
	r := ai.NewResolver(ai.DefaultProfiles(), mgr, "henchmen", zap.NewNop())
	b, err := r.Resolve(useAbility(t, "rage"), snapshot(20))
	require.NoError(t, err)
	assert.NotEqual(t, ai.ActionUseAbility, b.Action)
}

func TestUngatedAbility_FallsBackToAbilityList(t *testing.T) {
	r := ai.NewResolver(ai.DefaultProfiles(), henchmanManager(t), "henchmen", zap.NewNop())
	snap := snapshot(20)
	snap.Self.Abilities = []string{"shove"}
	b, err := r.Resolve(useAbility(t, "shove"), snap)
	require.NoError(t, err)
	assert.Equal(t, ai.ActionUseAbility, b.Action)
}

package damage_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/tactics/internal/game/damage"
)

func TestApply_TempHPAbsorbsFirst(t *testing.T) {
	v := &damage.Vitals{HP: 12, MaxHP: 12, TempHP: 5}
	b := damage.Apply(v, damage.NewAffinities(), 10, damage.Slashing)
	assert.Equal(t, 0, v.TempHP)
	assert.Equal(t, 7, v.HP)
	assert.Equal(t, 5, b.TempHPAbsorbed)
	assert.Equal(t, 5, b.Final)
	assert.Equal(t, 10, b.Original)
}

func TestApply_VulnerableDoubles(t *testing.T) {
	v := &damage.Vitals{HP: 12, MaxHP: 12, TempHP: 5}
	a := damage.NewAffinities()
	a.Add(damage.Vulnerability, damage.Fire)

	damage.Apply(v, a, 10, damage.Slashing)
	b := damage.Apply(v, a, 6, damage.Fire)
	assert.True(t, b.Vulnerable)
	assert.Equal(t, 12, b.Final)
	assert.Equal(t, 0, v.HP)
	assert.Equal(t, 5, b.Overflow)
}

func TestApply_ResistantHalvesFloor(t *testing.T) {
	v := &damage.Vitals{HP: 20, MaxHP: 20}
	a := damage.NewAffinities()
	a.Add(damage.Resistance, damage.Cold)
	b := damage.Apply(v, a, 7, damage.Cold)
	assert.True(t, b.Resistant)
	assert.Equal(t, 3, b.Final)
	assert.Equal(t, 17, v.HP)
}

func TestApply_ImmuneZeroesRemainder(t *testing.T) {
	v := &damage.Vitals{HP: 20, MaxHP: 20, TempHP: 2}
	a := damage.NewAffinities()
	a.Add(damage.Immunity, damage.Poison)
	a.Add(damage.Vulnerability, damage.Poison)
	b := damage.Apply(v, a, 9, damage.Poison)
	assert.True(t, b.Immune)
	assert.False(t, b.Vulnerable)
	assert.Equal(t, 0, b.Final)
	assert.Equal(t, 20, v.HP)
	assert.Equal(t, 2, b.TempHPAbsorbed)
}

func TestApply_VulnerabilityBeatsResistance(t *testing.T) {
	v := &damage.Vitals{HP: 30, MaxHP: 30}
	a := damage.NewAffinities()
	a.Add(damage.Resistance, damage.Fire)
	a.Add(damage.Vulnerability, damage.Fire)
	b := damage.Apply(v, a, 5, damage.Fire)
	assert.Equal(t, 10, b.Final)
	assert.False(t, b.Resistant)
}

func TestGrantTempHP_KeepsHigher(t *testing.T) {
	v := &damage.Vitals{HP: 10, MaxHP: 10}
	assert.True(t, damage.GrantTempHP(v, 8))
	assert.False(t, damage.GrantTempHP(v, 3))
	assert.Equal(t, 8, v.TempHP)
	assert.False(t, damage.GrantTempHP(v, 8))
	assert.True(t, damage.GrantTempHP(v, 9))
	assert.Equal(t, 9, v.TempHP)
}

func TestHeal_CapsAtMax(t *testing.T) {
	v := &damage.Vitals{HP: 0, MaxHP: 10}
	assert.Equal(t, 4, damage.Heal(v, 4))
	assert.Equal(t, 6, damage.Heal(v, 50))
	assert.Equal(t, 10, v.HP)
	assert.Equal(t, 0, damage.Heal(v, -3))
}

func TestAffinities_Idempotent(t *testing.T) {
	a := damage.NewAffinities()
	assert.True(t, a.Add(damage.Resistance, damage.Fire))
	assert.False(t, a.Add(damage.Resistance, damage.Fire))
	assert.Equal(t, []damage.Type{damage.Fire}, a.List(damage.Resistance))
	assert.True(t, a.Remove(damage.Resistance, damage.Fire))
	assert.False(t, a.Remove(damage.Resistance, damage.Fire))
	assert.Empty(t, a.List(damage.Resistance))
}

func TestProperty_HPAndTempNeverNegative(t *testing.T) {
	types := []damage.Type{damage.Fire, damage.Cold, damage.Slashing}
	rapid.Check(t, func(rt *rapid.T) {
		maxHP := rapid.IntRange(1, 100).Draw(rt, "max")
		v := &damage.Vitals{HP: maxHP, MaxHP: maxHP, TempHP: rapid.IntRange(0, 20).Draw(rt, "temp")}
		a := damage.NewAffinities()
		a.Add(damage.Resistance, damage.Cold)
		a.Add(damage.Vulnerability, damage.Fire)
		for i := 0; i < 5; i++ {
			hpBefore := v.HP
			b := damage.Apply(v, a, rapid.IntRange(0, 60).Draw(rt, "amt"), rapid.SampledFrom(types).Draw(rt, "type"))
			if v.HP < 0 || v.TempHP < 0 {
				rt.Fatalf("negative vitals: %+v", v)
			}
			if hpBefore-v.HP != b.Final-b.Overflow {
				rt.Fatalf("hp delta %d does not match final %d - overflow %d", hpBefore-v.HP, b.Final, b.Overflow)
			}
		}
	})
}

func TestBreakdown_Message(t *testing.T) {
	v := &damage.Vitals{HP: 10, MaxHP: 10, TempHP: 2}
	b := damage.Apply(v, damage.NewAffinities(), 5, damage.Piercing)
	require.Contains(t, b.Message(), "takes 3 piercing damage")
	assert.Contains(t, b.Message(), "2 absorbed")
}

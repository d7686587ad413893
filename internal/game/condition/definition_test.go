package condition_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/tactics/internal/game/condition"
)

func TestDefaultRegistry_HasStandardSet(t *testing.T) {
	reg := condition.DefaultRegistry()
	for _, typ := range []condition.Type{
		condition.Blinded, condition.Charmed, condition.Deafened, condition.Frightened,
		condition.Grappled, condition.Incapacitated, condition.Invisible, condition.Paralyzed,
		condition.Petrified, condition.Poisoned, condition.Prone, condition.Restrained,
		condition.Stunned, condition.Unconscious,
	} {
		_, ok := reg.Get(typ)
		assert.True(t, ok, "missing %s", typ)
		_, ok = reg.Effect(typ)
		assert.True(t, ok, "missing effect for %s", typ)
	}
	assert.Len(t, reg.All(), 14)
}

func TestDefaultRegistry_Flags(t *testing.T) {
	reg := condition.DefaultRegistry()
	para, _ := reg.Get(condition.Paralyzed)
	assert.True(t, para.Incapacitating)
	assert.True(t, para.MeleeAutoCrit)
	grap, _ := reg.Get(condition.Grappled)
	assert.True(t, grap.SpeedZero)
	assert.False(t, grap.Incapacitating)
}

func TestLoadDirectory_Overlay(t *testing.T) {
	dir := t.TempDir()
	yaml := "id: slowed\nname: Slowed\nspeed_zero: true\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "slowed.yaml"), []byte(yaml), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("skip"), 0o644))

	reg, err := condition.LoadDirectory(dir)
	require.NoError(t, err)
	def, ok := reg.Get("slowed")
	require.True(t, ok)
	assert.True(t, def.SpeedZero)
	_, ok = reg.Get(condition.Prone)
	assert.True(t, ok, "built-ins remain available")
}

func TestLoadDirectory_UnknownField(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.yaml"), []byte("id: bad\nstacks: 3\n"), 0o644))
	_, err := condition.LoadDirectory(dir)
	assert.Error(t, err)
}

func TestLoadDirectory_Missing(t *testing.T) {
	_, err := condition.LoadDirectory(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}

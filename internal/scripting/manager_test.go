package scripting_test

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/tactics/internal/game/dice"
	"github.com/cory-johannsen/tactics/internal/scripting"
)

func newTestManager(t testing.TB, faces ...int) (*scripting.Manager, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zap.DebugLevel)
	logger := zap.New(core)
	var src dice.Source = dice.NewCryptoSource()
	if len(faces) > 0 {
		src = dice.NewFixedSource(faces...)
	}
	roller := dice.NewLoggedRoller(src, logger)
	return scripting.NewManager(roller, logger), logs
}

func writeTempLua(t testing.TB, filename, src string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, filename), []byte(src), 0644))
	return dir
}

func TestManager_LoadScope_CallsHook(t *testing.T) {
	mgr, _ := newTestManager(t)
	dir := writeTempLua(t, "hooks.lua", `
		function test_hook(a, b)
			return a + b
		end
	`)
	require.NoError(t, mgr.LoadScope("henchmen", dir, 0))
	ret, err := mgr.CallHook("henchmen", "test_hook", lua.LNumber(3), lua.LNumber(4))
	require.NoError(t, err)
	assert.Equal(t, lua.LNumber(7), ret)
}

func TestManager_CallHook_MissingHook_NoOp(t *testing.T) {
	mgr, _ := newTestManager(t)
	dir := writeTempLua(t, "empty.lua", `-- no functions`)
	require.NoError(t, mgr.LoadScope("henchmen", dir, 0))
	ret, err := mgr.CallHook("henchmen", "nonexistent_hook")
	require.NoError(t, err)
	assert.Equal(t, lua.LNil, ret)
}

func TestManager_CallHook_UnknownScope_LogsInfoReturnsNil(t *testing.T) {
	mgr, logs := newTestManager(t)
	ret, err := mgr.CallHook("no_such_scope", "some_hook")
	require.NoError(t, err)
	assert.Equal(t, lua.LNil, ret)
	assert.Equal(t, 1, logs.FilterMessage("scripting: no VM for scope").Len())
}

func TestManager_CallHook_FallsBackToGlobal(t *testing.T) {
	mgr, _ := newTestManager(t)
	dir := writeTempLua(t, "global.lua", `function shared() return "global" end`)
	require.NoError(t, mgr.LoadGlobal(dir, 0))
	ret, err := mgr.CallHook("anything", "shared")
	require.NoError(t, err)
	assert.Equal(t, lua.LString("global"), ret)
}

func TestManager_CallHook_RuntimeError_LoggedNotPropagated(t *testing.T) {
	mgr, logs := newTestManager(t)
	dir := writeTempLua(t, "bad.lua", `function broken() error("boom") end`)
	require.NoError(t, mgr.LoadScope("henchmen", dir, 0))
	ret, err := mgr.CallHook("henchmen", "broken")
	require.NoError(t, err)
	assert.Equal(t, lua.LNil, ret)
	assert.Equal(t, 1, logs.FilterMessage("scripting: Lua runtime error").Len())
}

func TestManager_LoadScope_SyntaxError(t *testing.T) {
	mgr, _ := newTestManager(t)
	dir := writeTempLua(t, "bad.lua", `function (`)
	assert.Error(t, mgr.LoadScope("henchmen", dir, 0))
}

func TestManager_LoadScope_MissingDir(t *testing.T) {
	mgr, _ := newTestManager(t)
	assert.Error(t, mgr.LoadScope("henchmen", filepath.Join(t.TempDir(), "nope"), 0))
}

func TestManager_LoadScope_ReplacesExisting(t *testing.T) {
	mgr, _ := newTestManager(t)
	require.NoError(t, mgr.LoadScope("henchmen", writeTempLua(t, "a.lua", `function v() return 1 end`), 0))
	require.NoError(t, mgr.LoadScope("henchmen", writeTempLua(t, "a.lua", `function v() return 2 end`), 0))
	ret, err := mgr.CallHook("henchmen", "v")
	require.NoError(t, err)
	assert.Equal(t, lua.LNumber(2), ret)
}

func TestManager_InstructionLimit_StopsInfiniteLoop(t *testing.T) {
	mgr, logs := newTestManager(t)
	dir := writeTempLua(t, "loop.lua", `function spin() while true do end end`)
	require.NoError(t, mgr.LoadScope("henchmen", dir, 1000))
	ret, err := mgr.CallHook("henchmen", "spin")
	require.NoError(t, err)
	assert.Equal(t, lua.LNil, ret)
	assert.Equal(t, 1, logs.FilterMessage("scripting: Lua runtime error").Len())
}

func TestManager_EngineRoll_UsesRoller(t *testing.T) {
	mgr, _ := newTestManager(t, 4, 6)
	dir := writeTempLua(t, "roll.lua", `function r() return engine.roll("2d6+1") end`)
	require.NoError(t, mgr.LoadScope("henchmen", dir, 0))
	ret, err := mgr.CallHook("henchmen", "r")
	require.NoError(t, err)
	assert.Equal(t, lua.LNumber(11), ret)
}

func TestManager_EngineRoll_BadExpression(t *testing.T) {
	mgr, _ := newTestManager(t)
	dir := writeTempLua(t, "roll.lua", `
		function r()
			local v, err = engine.roll("banana")
			if v == nil then return err end
			return "rolled"
		end
	`)
	require.NoError(t, mgr.LoadScope("henchmen", dir, 0))
	ret, err := mgr.CallHook("henchmen", "r")
	require.NoError(t, err)
	assert.NotEqual(t, lua.LString("rolled"), ret)
	assert.Equal(t, lua.LTString, ret.Type())
}

func TestManager_EngineCombatant(t *testing.T) {
	mgr, _ := newTestManager(t)
	mgr.GetCombatant = func(id string) *scripting.CombatantInfo {
		if id != "hench" {
			return nil
		}
		return &scripting.CombatantInfo{ID: "hench", Name: "Brakka", HP: 7, MaxHP: 20, AC: 15, Band: "melee", Conditions: []string{"prone"}}
	}
	dir := writeTempLua(t, "c.lua", `
		function describe(id)
			local c = engine.combatant(id)
			if c == nil then return "none" end
			return c.name .. ":" .. c.hp .. "/" .. c.max_hp .. ":" .. c.band .. ":" .. c.conditions[1]
		end
	`)
	require.NoError(t, mgr.LoadScope("henchmen", dir, 0))
	ret, err := mgr.CallHook("henchmen", "describe", lua.LString("hench"))
	require.NoError(t, err)
	assert.Equal(t, lua.LString("Brakka:7/20:melee:prone"), ret)

	ret, err = mgr.CallHook("henchmen", "describe", lua.LString("ghost"))
	require.NoError(t, err)
	assert.Equal(t, lua.LString("none"), ret)
}

func TestManager_EngineLog(t *testing.T) {
	mgr, logs := newTestManager(t)
	dir := writeTempLua(t, "log.lua", `function say() engine.log("hello") end`)
	require.NoError(t, mgr.LoadScope("henchmen", dir, 0))
	_, err := mgr.CallHook("henchmen", "say")
	require.NoError(t, err)
	assert.Equal(t, 1, logs.FilterMessage("lua").Len())
}

func TestManager_Sandbox_NoDangerousGlobals(t *testing.T) {
	mgr, _ := newTestManager(t)
	dir := writeTempLua(t, "s.lua", `
		function probe()
			return dofile == nil and loadfile == nil and load == nil and require == nil and os == nil and io == nil
		end
	`)
	require.NoError(t, mgr.LoadScope("henchmen", dir, 0))
	ret, err := mgr.CallHook("henchmen", "probe")
	require.NoError(t, err)
	assert.Equal(t, lua.LTrue, ret)
}

func TestManager_CallHook_Concurrent(t *testing.T) {
	mgr, _ := newTestManager(t)
	dir := writeTempLua(t, "add.lua", `function add(a, b) return a + b end`)
	require.NoError(t, mgr.LoadScope("henchmen", dir, 0))

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			ret, err := mgr.CallHook("henchmen", "add", lua.LNumber(n), lua.LNumber(1))
			assert.NoError(t, err)
			assert.Equal(t, lua.LNumber(n+1), ret)
		}(i)
	}
	wg.Wait()
}

func TestProperty_CallHook_AddIsExact(t *testing.T) {
	mgr, _ := newTestManager(t)
	dir := writeTempLua(t, "add.lua", `function add(a, b) return a + b end`)
	require.NoError(t, mgr.LoadScope("henchmen", dir, 0))
	rapid.Check(t, func(rt *rapid.T) {
		a := rapid.IntRange(-10000, 10000).Draw(rt, "a")
		b := rapid.IntRange(-10000, 10000).Draw(rt, "b")
		ret, err := mgr.CallHook("henchmen", "add", lua.LNumber(a), lua.LNumber(b))
		if err != nil {
			rt.Fatalf("unexpected error: %v", err)
		}
		if ret != lua.LNumber(a+b) {
			rt.Fatalf("add(%d, %d) = %v", a, b, ret)
		}
	})
}

func TestManager_InstructionBudget_ResetsPerCall(t *testing.T) {
	mgr, _ := newTestManager(t)
	dir := writeTempLua(t, "count.lua", `
		function count()
			local n = 0
			for i = 1, 100 do n = n + 1 end
			return n
		end
	`)
	require.NoError(t, mgr.LoadScope("henchmen", dir, 2000))
	for i := 0; i < 20; i++ {
		ret, err := mgr.CallHook("henchmen", "count")
		require.NoError(t, err)
		require.Equal(t, lua.LNumber(100), ret, "call %d", i)
	}
}

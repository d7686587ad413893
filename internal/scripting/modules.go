package scripting

import (
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// RegisterModules installs the engine table into L:
//
//	engine.roll(expr)     -> total of a dice expression, or nil, err
//	engine.combatant(id)  -> {id, name, hp, max_hp, ac, band, conditions} or nil
//	engine.log(msg)       -> writes msg at debug level
//
// Precondition: L must be from NewSandboxedState.
// Postcondition: engine global is defined in L.
func (m *Manager) RegisterModules(L *lua.LState) {
	engine := L.NewTable()
	L.SetField(engine, "roll", L.NewFunction(m.luaRoll))
	L.SetField(engine, "combatant", L.NewFunction(m.luaCombatant))
	L.SetField(engine, "log", L.NewFunction(m.luaLog))
	L.SetGlobal("engine", engine)
}

func (m *Manager) luaRoll(L *lua.LState) int {
	res, err := m.roller.RollExpr(L.CheckString(1))
	if err != nil {
		L.Push(lua.LNil)
		L.Push(lua.LString(err.Error()))
		return 2
	}
	L.Push(lua.LNumber(res.Total()))
	return 1
}

func (m *Manager) luaCombatant(L *lua.LState) int {
	id := L.CheckString(1)
	if m.GetCombatant == nil {
		L.Push(lua.LNil)
		return 1
	}
	info := m.GetCombatant(id)
	if info == nil {
		L.Push(lua.LNil)
		return 1
	}
	t := L.NewTable()
	L.SetField(t, "id", lua.LString(info.ID))
	L.SetField(t, "name", lua.LString(info.Name))
	L.SetField(t, "hp", lua.LNumber(info.HP))
	L.SetField(t, "max_hp", lua.LNumber(info.MaxHP))
	L.SetField(t, "ac", lua.LNumber(info.AC))
	L.SetField(t, "band", lua.LString(info.Band))
	conds := L.NewTable()
	for _, c := range info.Conditions {
		conds.Append(lua.LString(c))
	}
	L.SetField(t, "conditions", conds)
	L.Push(t)
	return 1
}

func (m *Manager) luaLog(L *lua.LState) int {
	m.logger.Debug("lua", zap.String("msg", L.CheckString(1)))
	return 0
}

package scripting

import (
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/cory-johannsen/raidrank/internal/game/patch"
)

// RegisterModules defines the patch and log globals in L. Every patch.* call
// appends to set.
//
//	patch.grant_elite_charged(name, move)
//	patch.grant_elite_fast(name, move)
//	patch.preview_charged(name, move)
//	patch.exclude(template_id)
//	log.info(msg) / log.warn(msg)
func (m *Manager) RegisterModules(L *lua.LState, set *patch.Set) {
	mod := L.NewTable()
	L.SetField(mod, "grant_elite_charged", L.NewFunction(func(L *lua.LState) int {
		set.AddEliteGrant(patch.Grant{Names: []string{L.CheckString(1)}, EliteCharged: []string{L.CheckString(2)}})
		return 0
	}))
	L.SetField(mod, "grant_elite_fast", L.NewFunction(func(L *lua.LState) int {
		set.AddEliteGrant(patch.Grant{Names: []string{L.CheckString(1)}, EliteFast: []string{L.CheckString(2)}})
		return 0
	}))
	L.SetField(mod, "preview_charged", L.NewFunction(func(L *lua.LState) int {
		set.AddRosterPreview(patch.Grant{Names: []string{L.CheckString(1)}, EliteCharged: []string{L.CheckString(2)}})
		return 0
	}))
	L.SetField(mod, "exclude", L.NewFunction(func(L *lua.LState) int {
		set.AddUnreleased(L.CheckString(1))
		return 0
	}))
	L.SetGlobal("patch", mod)

	logMod := L.NewTable()
	L.SetField(logMod, "info", L.NewFunction(func(L *lua.LState) int {
		m.logger.Info("lua", zap.String("msg", L.CheckString(1)))
		return 0
	}))
	L.SetField(logMod, "warn", L.NewFunction(func(L *lua.LState) int {
		m.logger.Warn("lua", zap.String("msg", L.CheckString(1)))
		return 0
	}))
	L.SetGlobal("log", logMod)
}

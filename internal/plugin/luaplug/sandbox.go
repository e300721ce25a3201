// Package luaplug executes plugin scripts in a restricted gopher-lua
// environment. A script sees only the safe Lua base libraries, the entry()
// constructor, the plugin() registration call, and the sys capability
// module; faults of any kind are converted into plugin diagnostics and
// never escape the call boundary.
package luaplug

import (
	lua "github.com/yuin/gopher-lua"
)

// registration captures the script's plugin() call.
type registration struct {
	calls   int
	payload *lua.LTable
}

// newState creates a Lua state with only the safe standard libraries open.
func newState() *lua.LState {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})

	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)

	// Base brings code-loading entry points that would bypass the sandbox.
	for _, name := range []string{"dofile", "loadfile", "load", "loadstring"} {
		L.SetGlobal(name, lua.LNil)
	}

	return L
}

// install registers the plugin API: the entry() constructor, the plugin()
// registration call, and the sys capability module.
func install(L *lua.LState, caps Capabilities, reg *registration) {
	L.SetGlobal("entry", L.NewFunction(entryConstructor))
	L.SetGlobal("plugin", L.NewFunction(func(L *lua.LState) int {
		tbl := L.CheckTable(1)
		reg.calls++
		reg.payload = tbl
		return 0
	}))
	L.SetGlobal("sys", sysModule(L, caps))
}

// entryAllowedKeys are the fields entry() accepts.
var entryAllowedKeys = map[string]bool{
	"name":         true,
	"exec":         true,
	"search_terms": true,
	"children":     true,
	"exec_flags":   true,
}

// entryConstructor implements the script-facing entry() call. It accepts
// either an exec string or a field table, rejects unknown fields eagerly,
// and returns a normalized entry table. Full structural validation happens
// when the registered forest is decoded.
func entryConstructor(L *lua.LState) int {
	ret := L.NewTable()
	ret.RawSetString("search_terms", L.NewTable())
	ret.RawSetString("children", L.NewTable())
	flags := L.NewTable()
	flags.RawSetString("is_term", lua.LFalse)
	flags.RawSetString("should_fork", lua.LFalse)
	ret.RawSetString("exec_flags", flags)

	switch arg := L.Get(1).(type) {
	case lua.LString:
		ret.RawSetString("exec", arg)
	case *lua.LTable:
		var badKey string
		arg.ForEach(func(k, v lua.LValue) {
			ks, ok := k.(lua.LString)
			if !ok || !entryAllowedKeys[string(ks)] {
				badKey = k.String()
				return
			}
			ret.RawSet(k, v)
		})
		if badKey != "" {
			L.RaiseError("entry: unknown field %q (allowed: name, exec, search_terms, children, exec_flags)", badKey)
			return 0
		}
		_, hasExec := ret.RawGetString("exec").(lua.LString)
		children, _ := ret.RawGetString("children").(*lua.LTable)
		if !hasExec && (children == nil || children.Len() == 0) {
			L.RaiseError("entry: field \"exec\" is required unless children are given")
			return 0
		}
	default:
		L.RaiseError("entry: expected exec string or field table, got %s", arg.Type())
		return 0
	}

	L.Push(ret)
	return 1
}

// sysModule builds the capability table backed by the injected provider.
func sysModule(L *lua.LState, caps Capabilities) *lua.LTable {
	mod := L.NewTable()

	L.SetField(mod, "list_dir", L.NewFunction(func(L *lua.LState) int {
		names, err := caps.ListDir(L.CheckString(1))
		if err != nil {
			L.Push(lua.LNil)
			L.Push(lua.LString(err.Error()))
			return 2
		}
		L.Push(stringsToTable(L, names))
		return 1
	}))

	L.SetField(mod, "read_lines", L.NewFunction(func(L *lua.LState) int {
		lines, err := caps.ReadLines(L.CheckString(1))
		if err != nil {
			L.Push(lua.LNil)
			L.Push(lua.LString(err.Error()))
			return 2
		}
		L.Push(stringsToTable(L, lines))
		return 1
	}))

	L.SetField(mod, "getenv", L.NewFunction(func(L *lua.LState) int {
		value := caps.Getenv(L.CheckString(1))
		if value == "" {
			L.Push(lua.LNil)
		} else {
			L.Push(lua.LString(value))
		}
		return 1
	}))

	L.SetField(mod, "capture", L.NewFunction(func(L *lua.LState) int {
		name := L.CheckString(1)
		args := make([]string, 0, L.GetTop()-1)
		for i := 2; i <= L.GetTop(); i++ {
			args = append(args, L.CheckString(i))
		}
		out, err := caps.Capture(name, args...)
		if err != nil {
			L.Push(lua.LNil)
			L.Push(lua.LString(err.Error()))
			return 2
		}
		L.Push(lua.LString(out))
		return 1
	}))

	return mod
}

func stringsToTable(L *lua.LState, values []string) *lua.LTable {
	t := L.NewTable()
	for i, v := range values {
		t.RawSetInt(i+1, lua.LString(v))
	}
	return t
}

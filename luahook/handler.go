// Package luahook adapts Lua scripts into interception handlers.
//
// A script defines a global function hook(call) and receives one call
// table per interception with the selector, the receiver's class name,
// the argument list, and functions to read the suppressed original and
// to set the return value:
//
//	function hook(call)
//	    if call.selector == "area" then
//	        call.set_return(call.call_original() * 2)
//	    end
//	end
//
// Each Handler owns one sandboxed Lua state. gopher-lua states are not
// goroutine-safe, so invocations are serialized by a mutex; use one
// Handler per hook when contention matters.
package luahook

import (
	"fmt"
	"sync"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/splice/object"
)

// Handler is a compiled Lua hook script bound to its own Lua state.
type Handler struct {
	mu     sync.Mutex
	state  *lua.LState
	fn     *lua.LFunction
	closed bool
}

// New compiles source in a fresh sandboxed state. The script runs once
// at compile time and must leave a global function named hook.
func New(source string) (*Handler, error) {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	for _, open := range []struct {
		name string
		fn   lua.LGFunction
	}{
		{lua.BaseLibName, lua.OpenBase},
		{lua.TabLibName, lua.OpenTable},
		{lua.StringLibName, lua.OpenString},
		{lua.MathLibName, lua.OpenMath},
	} {
		L.Push(L.NewFunction(open.fn))
		L.Push(lua.LString(open.name))
		L.Call(1, 0)
	}
	// Base brings loaders along; scripts get computation, not I/O.
	for _, name := range []string{"dofile", "loadfile", "load", "loadstring", "print"} {
		L.SetGlobal(name, lua.LNil)
	}

	if err := L.DoString(source); err != nil {
		L.Close()
		return nil, fmt.Errorf("%w: %v", ErrScript, err)
	}
	fn, ok := L.GetGlobal("hook").(*lua.LFunction)
	if !ok {
		L.Close()
		return nil, ErrNoHookFunction
	}
	return &Handler{state: L, fn: fn}, nil
}

// Invoker returns the Go func to register as the hook handler.
func (h *Handler) Invoker() func(inv *object.Invocation) error {
	return h.invoke
}

// Close releases the Lua state. Invocations after Close fail with
// ErrClosed.
func (h *Handler) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	h.state.Close()
}

func (h *Handler) invoke(inv *object.Invocation) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return ErrClosed
	}

	L := h.state
	call := L.NewTable()
	L.SetField(call, "selector", lua.LString(inv.Selector))
	L.SetField(call, "class", lua.LString(className(inv.Target)))

	args := L.NewTable()
	for _, a := range inv.Args {
		args.Append(toLua(L, a))
	}
	L.SetField(call, "args", args)

	L.SetField(call, "set_return", L.NewFunction(func(L *lua.LState) int {
		inv.SetReturn(fromLua(L.Get(1)))
		return 0
	}))
	L.SetField(call, "call_original", L.NewFunction(func(L *lua.LState) int {
		if !inv.HasOriginal() {
			L.RaiseError("no original implementation")
			return 0
		}
		v, err := inv.CallOriginal(inv.Args)
		if err != nil {
			L.RaiseError("original failed: %v", err)
			return 0
		}
		L.Push(toLua(L, v))
		return 1
	}))

	if err := L.CallByParam(lua.P{Fn: h.fn, NRet: 0, Protect: true}, call); err != nil {
		return fmt.Errorf("%w: %v", ErrScript, err)
	}
	return nil
}

// className names the receiver's class as Lua sees it. Instances report
// their masked class, never the dispatch layer's hidden subclass.
func className(target any) string {
	switch t := target.(type) {
	case *object.Object:
		return t.Class().Name()
	case *object.Class:
		return t.Name()
	default:
		return ""
	}
}

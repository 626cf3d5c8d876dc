// Package patch mutates class dispatch tables: it redirects a
// selector's slot to a trampoline while keeping the original
// implementation reachable under a private alias, and undoes the
// redirection on last removal. Callers serialize all mutation through
// the engine's registration lock.
package patch

import (
	"fmt"

	"github.com/dshills/splice/object"
)

// aliasPrefix namespaces the private selector under which the original
// implementation stays reachable after redirection.
const aliasPrefix = "__splice_"

// AliasName returns the private alias selector for a hooked selector.
func AliasName(selector string) string {
	return aliasPrefix + selector
}

// IsAlias reports whether a selector name is a private alias.
func IsAlias(selector string) bool {
	return len(selector) > len(aliasPrefix) && selector[:len(aliasPrefix)] == aliasPrefix
}

// Trampoline marks methods installed by the interception engine, so
// the patcher can recognize already-redirected slots.
type Trampoline interface {
	object.Method
	SpliceTrampoline()
}

// Install makes selector's current implementation reachable under its
// alias in cls's own table, then overwrites cls's slot for selector
// with tramp. A slot already holding a trampoline is left alone.
//
// When the chain-resolved implementation is itself a trampoline
// (an ancestor or the reporting class is already hooked), the alias is
// taken from that class's own alias slot so the true original is
// preserved and calls never loop through two trampolines.
func Install(cls *object.Class, selector string, tramp Trampoline) error {
	rt := cls.Runtime()
	selID := rt.Selectors().Intern(selector)
	aliasID := rt.Selectors().Intern(AliasName(selector))
	vt := cls.VTable()

	if _, ok := vt.LookupLocal(selID).(Trampoline); ok {
		return nil
	}

	if !vt.HasMethod(aliasID) {
		orig := resolveOriginal(cls, selID, aliasID)
		if orig == nil {
			return fmt.Errorf("patch: no implementation of %s reachable from %s", selector, cls.Name())
		}
		vt.AddMethod(aliasID, orig)
	}
	vt.AddMethod(selID, tramp)
	return nil
}

// Uninstall restores the aliased original into cls's slot for
// selector. The alias itself stays in place: it is cheap, and leaving
// it makes re-installation idempotent. Panics if the slot holds a
// trampoline but no alias exists — that can only mean the engine's
// bookkeeping was corrupted.
func Uninstall(cls *object.Class, selector string) {
	rt := cls.Runtime()
	selID := rt.Selectors().Intern(selector)
	aliasID := rt.Selectors().Intern(AliasName(selector))
	vt := cls.VTable()

	if _, ok := vt.LookupLocal(selID).(Trampoline); !ok {
		return
	}
	orig := vt.LookupLocal(aliasID)
	if orig == nil {
		panic(fmt.Sprintf("patch: uninstalling %s on %s: aliased original missing", selector, cls.Name()))
	}
	vt.AddMethod(selID, orig)
}

// resolveOriginal walks cls's chain for the implementation that would
// run without interception, looking through trampolines via their
// owning class's alias slot.
func resolveOriginal(cls *object.Class, selID, aliasID int) object.Method {
	for c := cls; c != nil; c = c.Super() {
		m := c.VTable().LookupLocal(selID)
		if m == nil {
			continue
		}
		if _, ok := m.(Trampoline); ok {
			return c.VTable().LookupLocal(aliasID)
		}
		return m
	}
	return nil
}

// Package object implements the dynamically-dispatched object runtime
// that splice intercepts.
//
// The runtime owns its dispatch layer outright: every class carries a
// method table (VTable) keyed by interned selector IDs, and calls are
// resolved by walking the parent chain at send time. This is what makes
// interception possible without touching method sources — the engine
// rewrites dispatch-table slots, never code.
//
// # Dispatch
//
// A send resolves in three steps:
//
//  1. The selector name is looked up in the runtime's SelectorTable.
//  2. The receiver's actual class walks its VTable chain for a Method.
//  3. If no method is found, the class chain is walked for a forwarder
//     (the call-forwarding entry point); the default forwarder fails
//     with ErrDoesNotUnderstand.
//
// Class-side sends dispatch through the class's metaclass table, so
// class methods participate in the same interception machinery as
// instance methods.
//
// # Values
//
// Arguments and return values are Value, a tagged union carrying a
// coarse kind, a byte width, raw numeric storage, and a reference slot.
// Method signatures describe parameters as (kind, width) pairs, which
// is what allows generic argument marshaling across statically-unknown
// handler shapes.
package object

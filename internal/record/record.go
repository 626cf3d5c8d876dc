// Package record holds the interception engine's bookkeeping: one
// Record per attached behavior, ordered position Buckets per
// (target, selector), and lock-free bucket Tables.
package record

import (
	"sync/atomic"
	"weak"

	"github.com/google/uuid"

	"github.com/dshills/splice/object"
)

// Position says where a handler runs relative to the original call.
type Position uint8

const (
	// Before runs ahead of the original implementation.
	Before Position = iota

	// Instead replaces the original implementation.
	Instead

	// After runs once the original (or the Instead chain) has finished.
	After
)

// String returns the position name.
func (p Position) String() string {
	switch p {
	case Before:
		return "before"
	case Instead:
		return "instead"
	case After:
		return "after"
	default:
		return "unknown"
	}
}

// Invoker runs a bound handler against one invocation.
type Invoker func(inv *object.Invocation) error

// Record describes one attached behavior. Selector, position, and
// handler are immutable after construction; only the target's
// liveness may change. Records never extend their target's lifetime:
// instance targets are held weakly.
type Record struct {
	id       string
	selector string
	position Position
	once     bool
	invoke   Invoker

	// class is the class whose dispatch slot carries this record's
	// trampoline: the hooked class for class-level records, the
	// instance's (possibly synthetic) runtime class otherwise.
	class *object.Class

	// instance is non-nil zero only for instance-level records.
	instance   weak.Pointer[object.Object]
	isInstance bool

	removed atomic.Bool
	fired   atomic.Bool
}

// NewClassRecord creates a class-level record.
func NewClassRecord(cls *object.Class, selector string, pos Position, once bool, invoke Invoker) *Record {
	return &Record{
		id:       uuid.NewString(),
		selector: selector,
		position: pos,
		once:     once,
		invoke:   invoke,
		class:    cls,
	}
}

// NewInstanceRecord creates an instance-level record. patched is the
// class whose slot was redirected for this instance.
func NewInstanceRecord(obj *object.Object, patched *object.Class, selector string, pos Position, once bool, invoke Invoker) *Record {
	return &Record{
		id:         uuid.NewString(),
		selector:   selector,
		position:   pos,
		once:       once,
		invoke:     invoke,
		class:      patched,
		instance:   weak.Make(obj),
		isInstance: true,
	}
}

// ID returns the record's unique identifier.
func (r *Record) ID() string { return r.id }

// Selector returns the hooked selector name.
func (r *Record) Selector() string { return r.selector }

// Position returns where the handler runs.
func (r *Record) Position() Position { return r.position }

// Once reports whether the record auto-removes after first invocation.
func (r *Record) Once() bool { return r.once }

// Class returns the class whose dispatch slot carries this record.
func (r *Record) Class() *object.Class { return r.class }

// IsInstance reports whether the record targets a single instance.
func (r *Record) IsInstance() bool { return r.isInstance }

// Instance returns the weakly-held target, or nil if it is gone.
func (r *Record) Instance() *object.Object {
	if !r.isInstance {
		return nil
	}
	return r.instance.Value()
}

// Alive reports whether the record's target can still receive calls.
// Class targets are immortal; instance targets die on collection or
// disposal.
func (r *Record) Alive() bool {
	if !r.isInstance {
		return true
	}
	obj := r.instance.Value()
	return obj != nil && !obj.Disposed()
}

// Removed reports whether the record has been detached.
func (r *Record) Removed() bool { return r.removed.Load() }

// MarkRemoved flags the record detached. Returns false if it already was.
func (r *Record) MarkRemoved() bool {
	return !r.removed.Swap(true)
}

// FireOnce claims the single invocation of a once-record. Returns true
// exactly once across all threads; always true for ordinary records.
func (r *Record) FireOnce() bool {
	if !r.once {
		return true
	}
	return !r.fired.Swap(true)
}

// Invoke runs the bound handler.
func (r *Record) Invoke(inv *object.Invocation) error {
	return r.invoke(inv)
}

package object

import (
	"sync"
	"sync/atomic"
)

// Object is a heap-allocated instance.
//
// The runtime class is held behind an atomic pointer so that dispatch
// substitution (swapping an instance onto a synthetic subclass) is
// safe against concurrent sends. Slot storage is a simple named map;
// the interception engine never touches slots.
type Object struct {
	class     atomic.Pointer[Class]
	disposing atomic.Bool
	disposed  atomic.Bool

	// assoc is opaque per-object storage for runtime extensions; the
	// interception engine keeps instance-level hook state here so it
	// shares the object's lifetime instead of being retained globally.
	assoc atomic.Value

	mu    sync.RWMutex
	slots map[string]Value
}

// Class returns the class introspection reports for this object. When
// the runtime class is synthetic, this is the class it reports as.
func (o *Object) Class() *Class {
	return o.class.Load().ReportsAs()
}

// ActualClass returns the true runtime class, synthetic or not.
func (o *Object) ActualClass() *Class {
	return o.class.Load()
}

// SetClass switches the object's runtime class. The new class should
// be in the same hierarchy as the old one; the runtime does not check.
func (o *Object) SetClass(c *Class) {
	o.class.Store(c)
}

// Disposed reports whether Runtime.Dispose has run for this object.
func (o *Object) Disposed() bool { return o.disposed.Load() }

// Get reads a named slot, returning the nil value when unset.
func (o *Object) Get(name string) Value {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.slots[name]
}

// Set writes a named slot.
func (o *Object) Set(name string, v Value) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.slots == nil {
		o.slots = make(map[string]Value)
	}
	o.slots[name] = v
}

// Associated returns the opaque extension storage, or nil if unset.
func (o *Object) Associated() any {
	return o.assoc.Load()
}

// SetAssociated publishes the opaque extension storage.
func (o *Object) SetAssociated(v any) {
	o.assoc.Store(v)
}

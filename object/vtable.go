package object

import "sync/atomic"

// VTable holds the method dispatch table for one class.
//
// Methods are stored in a slice indexed by selector ID. Inheritance is
// handled by walking the parent chain when a method is not found
// locally. The slice is replaced copy-on-write so concurrent sends
// observe a consistent table without taking a lock; mutation is
// expected to be serialized by the caller (class construction or the
// interception engine's registration lock).
type VTable struct {
	class   *Class
	parent  *VTable
	methods atomic.Pointer[[]Method]
}

// NewVTable creates an empty vtable for a class.
func NewVTable(class *Class, parent *VTable) *VTable {
	vt := &VTable{class: class, parent: parent}
	empty := make([]Method, 0)
	vt.methods.Store(&empty)
	return vt
}

// Lookup finds a method by selector ID, walking the parent chain.
// Returns nil if no method is found.
func (vt *VTable) Lookup(selector int) Method {
	for v := vt; v != nil; v = v.parent {
		if m := v.LookupLocal(selector); m != nil {
			return m
		}
	}
	return nil
}

// LookupLocal finds a method by selector ID in this vtable only.
func (vt *VTable) LookupLocal(selector int) Method {
	methods := *vt.methods.Load()
	if selector >= 0 && selector < len(methods) {
		return methods[selector]
	}
	return nil
}

// AddMethod adds or replaces the method at the given selector ID.
func (vt *VTable) AddMethod(selector int, method Method) {
	old := *vt.methods.Load()
	size := len(old)
	if selector >= size {
		size = selector + 1
	}
	next := make([]Method, size)
	copy(next, old)
	next[selector] = method
	vt.methods.Store(&next)
}

// RemoveMethod clears the slot at the given selector ID.
func (vt *VTable) RemoveMethod(selector int) {
	old := *vt.methods.Load()
	if selector < 0 || selector >= len(old) {
		return
	}
	next := make([]Method, len(old))
	copy(next, old)
	next[selector] = nil
	vt.methods.Store(&next)
}

// HasMethod reports whether this vtable (not parents) defines selector.
func (vt *VTable) HasMethod(selector int) bool {
	return vt.LookupLocal(selector) != nil
}

// Parent returns the parent vtable.
func (vt *VTable) Parent() *VTable { return vt.parent }

// Class returns the class this vtable belongs to.
func (vt *VTable) Class() *Class { return vt.class }

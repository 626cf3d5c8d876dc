package object

// Class represents one class in the runtime.
//
// Every class has an instance-side vtable and a metaclass carrying the
// class-side vtable, so class methods dispatch through the same
// machinery as instance methods. Synthetic classes (created by
// AllocateClassPair) additionally report a different class to
// introspection, making per-instance dispatch substitution invisible.
type Class struct {
	rt        *Runtime
	name      string
	super     *Class
	vt        *VTable
	meta      *Class
	isMeta    bool
	synthetic bool
	reportsAs *Class
	forwarder Forwarder
}

// Name returns the class name. Metaclass names carry a " class" suffix.
func (c *Class) Name() string { return c.name }

// Super returns the superclass, or nil at the root.
func (c *Class) Super() *Class { return c.super }

// Runtime returns the owning runtime.
func (c *Class) Runtime() *Runtime { return c.rt }

// VTable returns the class's own dispatch table. For a metaclass this
// is the class-side table of the class it describes.
func (c *Class) VTable() *VTable { return c.vt }

// Meta returns the metaclass, or nil if c is itself a metaclass.
func (c *Class) Meta() *Class { return c.meta }

// IsMeta reports whether c is a metaclass.
func (c *Class) IsMeta() bool { return c.isMeta }

// Synthetic reports whether c was created by AllocateClassPair.
func (c *Class) Synthetic() bool { return c.synthetic }

// ReportsAs returns the class that introspection reports for instances
// of c. For ordinary classes this is c itself.
func (c *Class) ReportsAs() *Class {
	if c.reportsAs != nil {
		return c.reportsAs
	}
	return c
}

// IsSubclassOf reports whether c is other or a descendant of other.
func (c *Class) IsSubclassOf(other *Class) bool {
	for cur := c; cur != nil; cur = cur.super {
		if cur == other {
			return true
		}
	}
	return false
}

// AddMethod defines or replaces an instance-side method.
func (c *Class) AddMethod(selector string, m Method) {
	id := c.rt.selectors.Intern(selector)
	c.vt.AddMethod(id, m)
}

// AddClassMethod defines or replaces a class-side method.
func (c *Class) AddClassMethod(selector string, m Method) {
	if c.isMeta {
		c.AddMethod(selector, m)
		return
	}
	c.meta.AddMethod(selector, m)
}

// RespondsTo reports whether instances of c resolve selector through
// the vtable chain.
func (c *Class) RespondsTo(selector string) bool {
	return c.MethodFor(selector) != nil
}

// MethodFor resolves selector through the vtable chain, or nil.
func (c *Class) MethodFor(selector string) Method {
	id := c.rt.selectors.Lookup(selector)
	if id < 0 {
		return nil
	}
	return c.vt.Lookup(id)
}

// SetForwarder installs the class's call-forwarding entry point,
// invoked when ordinary lookup does not resolve a send.
func (c *Class) SetForwarder(f Forwarder) { c.forwarder = f }

// forwarderChain resolves the nearest forwarder up the class chain.
func (c *Class) forwarderChain() Forwarder {
	for cur := c; cur != nil; cur = cur.super {
		if cur.forwarder != nil {
			return cur.forwarder
		}
	}
	return nil
}

// New allocates an instance of c.
func (c *Class) New() *Object {
	o := &Object{}
	o.class.Store(c)
	return o
}

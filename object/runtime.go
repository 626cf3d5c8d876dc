package object

import (
	"fmt"
	"sync"
)

// DeallocSelector is the reserved teardown selector sent by Dispose.
const DeallocSelector = "dealloc"

// Runtime owns a class registry and the selector table shared by all
// of its classes. Sends, class creation, and disposal all go through
// the runtime.
type Runtime struct {
	mu        sync.RWMutex
	selectors *SelectorTable
	classes   map[string]*Class
}

// NewRuntime creates an empty runtime.
func NewRuntime() *Runtime {
	return &Runtime{
		selectors: NewSelectorTable(),
		classes:   make(map[string]*Class),
	}
}

// Selectors returns the runtime's selector table.
func (rt *Runtime) Selectors() *SelectorTable { return rt.selectors }

// NewClass registers a class under name with the given superclass
// (nil for a root class). The metaclass is created alongside, chaining
// to the superclass's metaclass.
func (rt *Runtime) NewClass(name string, super *Class) (*Class, error) {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	if _, ok := rt.classes[name]; ok {
		return nil, fmt.Errorf("%w: %s", ErrClassExists, name)
	}

	cls := rt.buildClass(name, super, false)
	rt.classes[name] = cls
	return cls, nil
}

// AllocateClassPair creates an unregistered synthetic subclass of
// super. Instances switched onto it keep reporting super to
// introspection. Fails if the derived name is already taken by a
// registered class.
func (rt *Runtime) AllocateClassPair(super *Class, name string) (*Class, error) {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	if _, ok := rt.classes[name]; ok {
		return nil, fmt.Errorf("%w: %s", ErrClassExists, name)
	}

	cls := rt.buildClass(name, super, true)
	cls.reportsAs = super.ReportsAs()
	cls.meta.reportsAs = super.meta
	return cls, nil
}

// buildClass wires a class and its metaclass. Callers hold rt.mu.
func (rt *Runtime) buildClass(name string, super *Class, synthetic bool) *Class {
	cls := &Class{rt: rt, name: name, super: super, synthetic: synthetic}

	var superVT, superMetaVT *VTable
	var superMeta *Class
	if super != nil {
		superVT = super.vt
		superMeta = super.meta
		if superMeta != nil {
			superMetaVT = superMeta.vt
		}
	}
	cls.vt = NewVTable(cls, superVT)

	meta := &Class{
		rt:        rt,
		name:      name + " class",
		super:     superMeta,
		isMeta:    true,
		synthetic: synthetic,
	}
	meta.vt = NewVTable(meta, superMetaVT)
	cls.meta = meta
	return cls
}

// Lookup returns the registered class for name, or nil.
func (rt *Runtime) Lookup(name string) *Class {
	rt.mu.RLock()
	defer rt.mu.RUnlock()
	return rt.classes[name]
}

// Send dispatches selector to an instance.
func (rt *Runtime) Send(obj *Object, selector string, args ...Value) (Value, error) {
	if obj.Disposed() {
		return Nil(), fmt.Errorf("%w: %s", ErrDisposed, selector)
	}
	return rt.dispatch(obj, obj.ActualClass(), selector, args)
}

// SendClass dispatches selector to a class through its metaclass table.
func (rt *Runtime) SendClass(cls *Class, selector string, args ...Value) (Value, error) {
	return rt.dispatch(cls, cls.meta, selector, args)
}

// dispatch resolves selector against via's vtable chain, falling back
// to the nearest forwarder, then to ErrDoesNotUnderstand.
func (rt *Runtime) dispatch(recv any, via *Class, selector string, args []Value) (Value, error) {
	if id := rt.selectors.Lookup(selector); id >= 0 {
		if m := via.vt.Lookup(id); m != nil {
			return m.Invoke(recv, args)
		}
	}
	return rt.Forward(recv, via, selector, args)
}

// Forward runs the pre-interception unknown-selector path: the nearest
// forwarder up via's chain, or ErrDoesNotUnderstand.
func (rt *Runtime) Forward(recv any, via *Class, selector string, args []Value) (Value, error) {
	if f := via.forwarderChain(); f != nil {
		return f(recv, selector, args)
	}
	return Nil(), fmt.Errorf("%w: %s#%s", ErrDoesNotUnderstand, via.ReportsAs().Name(), selector)
}

// Dispose tears an object down: sends the reserved dealloc selector if
// the object responds to it, then marks the object dead. Subsequent
// sends fail with ErrDisposed. Dispose is idempotent.
func (rt *Runtime) Dispose(obj *Object) error {
	if obj.disposing.Swap(true) {
		return nil
	}
	// dealloc is sent before the object is marked dead so teardown
	// observers still count as live targets.
	var err error
	if obj.ActualClass().RespondsTo(DeallocSelector) {
		_, err = rt.dispatch(obj, obj.ActualClass(), DeallocSelector, nil)
	}
	obj.disposed.Store(true)
	return err
}

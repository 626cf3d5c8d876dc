package object

// Invocation is the call context passed to interception handlers as
// their first parameter. It exposes the intercepted receiver, the
// ordered argument list, and access to the original implementation.
type Invocation struct {
	// Target is the receiver: an *Object for instance sends, a *Class
	// for class-side sends.
	Target any

	// Selector is the intercepted selector name.
	Selector string

	// Args are the call's arguments, in declaration order.
	Args []Value

	original func(args []Value) (Value, error)
	ret      Value
	retSet   bool
}

// Receiver returns the target as an *Object, or nil for class-side sends.
func (inv *Invocation) Receiver() *Object {
	o, _ := inv.Target.(*Object)
	return o
}

// BindOriginal attaches the original-implementation closure. Called by
// the dispatch trampoline before handlers run.
func (inv *Invocation) BindOriginal(fn func(args []Value) (Value, error)) {
	inv.original = fn
}

// HasOriginal reports whether an original implementation is reachable.
func (inv *Invocation) HasOriginal() bool { return inv.original != nil }

// CallOriginal invokes the original implementation with the given
// arguments (pass inv.Args to forward unchanged). The return value is
// also recorded as the invocation's result.
func (inv *Invocation) CallOriginal(args []Value) (Value, error) {
	if inv.original == nil {
		return Nil(), ErrNoOriginal
	}
	ret, err := inv.original(args)
	if err == nil {
		inv.SetReturn(ret)
	}
	return ret, err
}

// SetReturn records the value the intercepted call will return. Used
// by Instead handlers to supply a result, and by the trampoline after
// the original runs.
func (inv *Invocation) SetReturn(v Value) {
	inv.ret = v
	inv.retSet = true
}

// Return reports the recorded result and whether one was set.
func (inv *Invocation) Return() (Value, bool) {
	return inv.ret, inv.retSet
}

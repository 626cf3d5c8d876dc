package object

// Method is one entry in a dispatch table.
//
// The receiver is passed as any because instance-side methods receive
// an *Object while class-side methods receive the *Class itself.
type Method interface {
	// Invoke runs the method against a receiver with marshaled arguments.
	Invoke(recv any, args []Value) (Value, error)

	// Signature describes the method's declared parameters, excluding
	// the receiver.
	Signature() Signature
}

// GoFunc adapts a Go function into a Method with an explicit signature.
type GoFunc struct {
	sig Signature
	fn  func(recv any, args []Value) (Value, error)
}

// NewGoFunc creates a method from a signature and a function.
func NewGoFunc(sig Signature, fn func(recv any, args []Value) (Value, error)) *GoFunc {
	return &GoFunc{sig: sig, fn: fn}
}

// Invoke implements Method.
func (g *GoFunc) Invoke(recv any, args []Value) (Value, error) {
	return g.fn(recv, args)
}

// Signature implements Method.
func (g *GoFunc) Signature() Signature { return g.sig }

// Forwarder is a class's call-forwarding entry point: the path taken
// when ordinary lookup does not resolve a send.
type Forwarder func(recv any, selector string, args []Value) (Value, error)

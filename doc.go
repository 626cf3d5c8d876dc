// Package splice attaches Before, Instead, and After behavior to
// methods dispatched through an object.Runtime, without modifying the
// method implementations themselves.
//
// A hook targets either a class, affecting every instance of the class
// and its subclasses, or one live instance, leaving its siblings and
// its reported class untouched. Each installation returns a Token;
// removing the token restores dispatch exactly as it was.
//
//	tok, err := splice.HookClass(shape, "area", splice.Before, func(inv *object.Invocation) {
//		log.Printf("area requested on %v", inv.Receiver())
//	})
//	...
//	tok.Remove()
//
// Handlers are plain Go funcs. The optional first parameter is a
// *object.Invocation carrying the receiver, selector, arguments, and
// return-value control; any further parameters must match a prefix of
// the hooked method's signature by kind and width. A handler returning
// a non-nil error aborts the call and propagates the error to the
// sender.
//
// For a given selector, at most one class per root-to-leaf inheritance
// chain may hold hooks at a time; sibling branches are independent.
// Instance hooks coexist freely with a class hook on the same selector.
package splice

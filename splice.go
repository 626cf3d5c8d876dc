package splice

import (
	"fmt"

	"github.com/dshills/splice/internal/engine"
	"github.com/dshills/splice/internal/record"
	"github.com/dshills/splice/object"
)

// Token identifies one installed hook. Removal goes through the token;
// there is no way to enumerate or remove hooks installed by other code.
type Token struct {
	rec *record.Record
	eng *engine.Engine
}

// ID returns the hook's unique identifier.
func (t *Token) ID() string { return t.rec.ID() }

// Selector returns the hooked method's selector.
func (t *Token) Selector() string { return t.rec.Selector() }

// Removed reports whether the hook has been detached, by Remove or by
// a Once hook firing.
func (t *Token) Removed() bool { return t.rec.Removed() }

// Remove detaches the hook and restores dispatch for its target. It
// fails with ErrAlreadyRemoved on a second call and with
// ErrAlreadyDeallocated when an instance target was disposed first.
func (t *Token) Remove() error {
	return t.eng.Remove(t.rec)
}

// Hook attaches handler to selector on target, which is either a
// *object.Class (affecting every instance) or a *object.Object
// (affecting only that instance). The handler is any func whose
// optional first parameter is *object.Invocation followed by a prefix
// of the method's parameters, returning nothing or error.
func Hook(target any, selector string, opt Option, handler any) (*Token, error) {
	switch tv := target.(type) {
	case *object.Class:
		return HookClass(tv, selector, opt, handler)
	case *object.Object:
		return HookInstance(tv, selector, opt, handler)
	default:
		return nil, fmt.Errorf("splice: target must be *object.Class or *object.Object, got %T", target)
	}
}

// HookClass attaches handler to selector for every instance of cls and
// its subclasses. At most one class in any root-to-leaf chain may hold
// a hook for a given selector at a time.
func HookClass(cls *object.Class, selector string, opt Option, handler any) (*Token, error) {
	eng := engine.Default()
	rec, err := eng.HookClass(cls, selector, opt.position(), opt.once(), handler)
	if err != nil {
		return nil, err
	}
	return &Token{rec: rec, eng: eng}, nil
}

// HookInstance attaches handler to selector for obj alone. Other
// instances of the same class are untouched, and obj keeps reporting
// its original class.
func HookInstance(obj *object.Object, selector string, opt Option, handler any) (*Token, error) {
	eng := engine.Default()
	rec, err := eng.HookInstance(obj, selector, opt.position(), opt.once(), handler)
	if err != nil {
		return nil, err
	}
	return &Token{rec: rec, eng: eng}, nil
}

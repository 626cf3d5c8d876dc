package hookset

import (
	"fmt"

	"github.com/dshills/splice"
	"github.com/dshills/splice/luahook"
	"github.com/dshills/splice/object"
)

// Applied holds everything one Apply installed, so it can be unwound
// as a unit.
type Applied struct {
	tokens   []*splice.Token
	handlers []*luahook.Handler
}

// Tokens returns the installed hooks' tokens, in entry order.
func (a *Applied) Tokens() []*splice.Token { return a.tokens }

// Remove detaches every hook and releases the Lua states. Hooks already
// gone (Once fired, target disposed) are skipped silently.
func (a *Applied) Remove() {
	for _, tok := range a.tokens {
		_ = tok.Remove()
	}
	for _, h := range a.handlers {
		h.Close()
	}
	a.tokens = nil
	a.handlers = nil
}

// Apply installs every entry of set against rt's classes. On any
// failure it unwinds the entries already installed and returns the
// error, leaving the runtime untouched.
func Apply(rt *object.Runtime, set *Set) (*Applied, error) {
	applied := &Applied{}
	for i := range set.Hooks {
		entry := &set.Hooks[i]
		if err := applyOne(rt, entry, applied); err != nil {
			applied.Remove()
			return nil, fmt.Errorf("hook %d (%s#%s): %w", i, entry.Class, entry.Selector, err)
		}
	}
	return applied, nil
}

func applyOne(rt *object.Runtime, entry *Entry, applied *Applied) error {
	cls := rt.Lookup(entry.Class)
	if cls == nil {
		return fmt.Errorf("%w: %s", ErrUnknownClass, entry.Class)
	}
	opt, err := entry.option()
	if err != nil {
		return err
	}
	handler, err := luahook.New(entry.Script)
	if err != nil {
		return err
	}
	tok, err := splice.HookClass(cls, entry.Selector, opt, handler.Invoker())
	if err != nil {
		handler.Close()
		return err
	}
	applied.tokens = append(applied.tokens, tok)
	applied.handlers = append(applied.handlers, handler)
	return nil
}

// Package adapter chooses how a target's calls reach the dispatch
// trampoline. Single instances get a cached synthetic subclass so
// sibling instances stay untouched; classes — and instances whose
// runtime class already diverges from their reported class through
// some foreign mechanism — are patched in place.
package adapter

import (
	"errors"
	"fmt"

	"github.com/dshills/splice/object"
)

// ErrAllocateClassPair indicates dynamic subclass creation failed.
var ErrAllocateClassPair = errors.New("adapter: failed to allocate class pair")

// syntheticSuffix derives the cached synthetic subclass name.
const syntheticSuffix = "_splice"

// Kind classifies how a target must be patched.
type Kind int

const (
	// KindInstance patches a per-instance synthetic subclass.
	KindInstance Kind = iota

	// KindClass patches the class (or metaclass) in place.
	KindClass

	// KindForeign patches an instance's already-diverged runtime
	// class in place, never adding another subclass layer.
	KindForeign
)

// Adapter caches synthetic subclasses per original class so repeat
// instance hooks on siblings reuse one class pair, and remembers which
// class pairs it created so foreign dispatch substitutions are never
// mistaken for its own. Callers serialize access through the engine's
// registration lock.
type Adapter struct {
	synthetics map[*object.Class]*object.Class
	owned      map[*object.Class]bool
}

// New creates an adapter with an empty synthetic-class cache.
func New() *Adapter {
	return &Adapter{
		synthetics: make(map[*object.Class]*object.Class),
		owned:      make(map[*object.Class]bool),
	}
}

// Classify inspects an instance's dispatch situation. A runtime class
// that differs from the reported class and is not one of the adapter's
// own class pairs belongs to some external mechanism.
func (a *Adapter) Classify(obj *object.Object) Kind {
	actual := obj.ActualClass()
	if a.owned[actual] {
		return KindInstance
	}
	if actual != obj.Class() {
		return KindForeign
	}
	return KindInstance
}

// Prepare makes obj's calls patchable for a single-instance hook and
// returns the class whose dispatch table must carry the trampoline.
//
// For the normal case this creates (or reuses) the synthetic subclass
// of the instance's class and switches just this instance onto it. For
// a foreign-diverged instance the diverged class itself is returned
// and the instance is left exactly as found.
func (a *Adapter) Prepare(obj *object.Object) (*object.Class, Kind, error) {
	actual := obj.ActualClass()

	switch a.Classify(obj) {
	case KindForeign:
		return actual, KindForeign, nil
	default:
		if a.owned[actual] {
			return actual, KindInstance, nil
		}
		synth, err := a.synthetic(actual)
		if err != nil {
			return nil, KindInstance, err
		}
		obj.SetClass(synth)
		return synth, KindInstance, nil
	}
}

// Restore switches an instance back to its original class once its
// last hook is gone. The synthetic subclass stays allocated — it is
// cheap and will be reused by future hooks on siblings. Foreign
// divergences are left exactly as found.
func (a *Adapter) Restore(obj *object.Object) {
	actual := obj.ActualClass()
	if !a.owned[actual] {
		return
	}
	obj.SetClass(actual.ReportsAs())
}

// Owned reports whether cls is one of the adapter's class pairs.
func (a *Adapter) Owned(cls *object.Class) bool { return a.owned[cls] }

// synthetic returns the cached class pair for original, creating it on
// first use.
func (a *Adapter) synthetic(original *object.Class) (*object.Class, error) {
	if synth, ok := a.synthetics[original]; ok {
		return synth, nil
	}
	name := original.Name() + syntheticSuffix
	synth, err := original.Runtime().AllocateClassPair(original, name)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAllocateClassPair, err)
	}
	a.synthetics[original] = synth
	a.owned[synth] = true
	return synth, nil
}

// Package hierarchy enforces single-ownership of a selector's
// interception point across a class hierarchy: at most one class along
// any root-to-leaf path may hook a given selector at a time.
package hierarchy

import (
	"errors"
	"fmt"

	"github.com/dshills/splice/object"
)

// ErrAlreadyClaimed means the selector is hooked elsewhere in the
// hierarchy (wrapped with whether an ancestor or subclass owns it).
var ErrAlreadyClaimed = errors.New("hierarchy: selector already hooked in class hierarchy")

// node tracks interception state for one class.
type node struct {
	cls *object.Class

	// selectors this class itself has claimed.
	selectors map[string]bool

	// descendants maps a selector to the set of descendant classes
	// that claim it, propagated transitively so ancestor checks are
	// O(depth).
	descendants map[string]map[*object.Class]bool
}

func (n *node) empty() bool {
	return len(n.selectors) == 0 && len(n.descendants) == 0
}

// Tracker is the class-keyed registry of current interception claims.
// Callers serialize access (the engine's registration lock).
type Tracker struct {
	nodes map[*object.Class]*node
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{nodes: make(map[*object.Class]*node)}
}

// Authorize decides whether cls may hook selector.
//
// Walking from cls to the root: a claim by cls itself is allowed
// (re-hooking an already-claimed class is idempotent at this level); a
// claim by any other ancestor is denied. A claim by any descendant of
// cls is denied via the descendant map.
func (t *Tracker) Authorize(cls *object.Class, selector string) error {
	for cur := cls; cur != nil; cur = cur.Super() {
		n := t.nodes[cur]
		if n == nil {
			continue
		}
		if n.selectors[selector] {
			if cur == cls {
				return nil
			}
			return fmt.Errorf("%w: %s claimed by ancestor %s", ErrAlreadyClaimed, selector, cur.Name())
		}
	}
	if n := t.nodes[cls]; n != nil {
		if subs := n.descendants[selector]; len(subs) > 0 {
			for sub := range subs {
				return fmt.Errorf("%w: %s claimed by subclass %s", ErrAlreadyClaimed, selector, sub.Name())
			}
		}
	}
	return nil
}

// Register records cls's claim on selector and propagates a back
// reference to every ancestor node. Idempotent for repeat claims by
// the same class.
func (t *Tracker) Register(cls *object.Class, selector string) {
	n := t.getOrCreate(cls)
	if n.selectors[selector] {
		return
	}
	n.selectors[selector] = true

	for cur := cls.Super(); cur != nil; cur = cur.Super() {
		an := t.getOrCreate(cur)
		if an.descendants[selector] == nil {
			an.descendants[selector] = make(map[*object.Class]bool)
		}
		an.descendants[selector][cls] = true
	}
}

// Deregister removes cls's claim on selector, unwinds the ancestor
// back references, and prunes nodes left with no claims either way.
func (t *Tracker) Deregister(cls *object.Class, selector string) {
	n := t.nodes[cls]
	if n == nil || !n.selectors[selector] {
		return
	}
	delete(n.selectors, selector)
	if n.empty() {
		delete(t.nodes, cls)
	}

	for cur := cls.Super(); cur != nil; cur = cur.Super() {
		an := t.nodes[cur]
		if an == nil {
			continue
		}
		if subs := an.descendants[selector]; subs != nil {
			delete(subs, cls)
			if len(subs) == 0 {
				delete(an.descendants, selector)
			}
		}
		if an.empty() {
			delete(t.nodes, cur)
		}
	}
}

// Claimed reports whether cls itself currently claims selector.
func (t *Tracker) Claimed(cls *object.Class, selector string) bool {
	n := t.nodes[cls]
	return n != nil && n.selectors[selector]
}

func (t *Tracker) getOrCreate(cls *object.Class) *node {
	n := t.nodes[cls]
	if n == nil {
		n = &node{
			cls:         cls,
			selectors:   make(map[string]bool),
			descendants: make(map[string]map[*object.Class]bool),
		}
		t.nodes[cls] = n
	}
	return n
}

// Package trampoline implements the redirected entry point every
// intercepted call lands on. It resolves the hook buckets for the
// receiver, runs before/instead/after behaviors in registration order,
// forwards to the aliased original when appropriate, and defers
// auto-removal to the end of the call so a hook can observe its own
// final invocation.
//
// The trampoline takes no lock: it only reads immutable bucket
// snapshots already published by the registration path.
package trampoline

import (
	"github.com/dshills/splice/internal/record"
	"github.com/dshills/splice/object"
)

// Buckets is the trampoline's read-only view of hook storage.
type Buckets interface {
	// ClassBucket returns the bucket for a class-level target, or nil.
	ClassBucket(cls *object.Class, selector int) *record.Bucket

	// InstanceBucket returns the bucket for an instance target, or nil.
	InstanceBucket(obj *object.Object, selector int) *record.Bucket
}

// Remover detaches records flagged for auto-removal once a call ends.
type Remover interface {
	AutoRemove(r *record.Record)
}

// Method is the trampoline installed into patched dispatch slots. It
// reports the original method's signature so later registrations can
// still validate handlers against it.
type Method struct {
	selector string
	selID    int
	aliasID  int
	sig      object.Signature
	buckets  Buckets
	remover  Remover
}

// New creates a trampoline for one selector.
func New(selector string, selID, aliasID int, sig object.Signature, buckets Buckets, remover Remover) *Method {
	return &Method{
		selector: selector,
		selID:    selID,
		aliasID:  aliasID,
		sig:      sig,
		buckets:  buckets,
		remover:  remover,
	}
}

// SpliceTrampoline marks the method for the patcher.
func (m *Method) SpliceTrampoline() {}

// Signature implements object.Method with the original's signature.
func (m *Method) Signature() object.Signature { return m.sig }

// Invoke implements object.Method: the per-call state machine
// received → before → (instead | original) → after → cleanup.
func (m *Method) Invoke(recv any, args []object.Value) (object.Value, error) {
	chain, instObj := m.chainStart(recv)
	if chain == nil {
		return object.Nil(), object.ErrDoesNotUnderstand
	}

	// Class-level bucket: closest ancestor with hooks wins. The
	// hierarchy tracker guarantees at most one ancestor claims the
	// selector, so this is also the only one.
	var classBucket *record.Bucket
	for c := chain; c != nil; c = c.Super() {
		if b := m.buckets.ClassBucket(c, m.selID); b != nil && !b.Empty() {
			classBucket = b
			break
		}
	}
	var instBucket *record.Bucket
	if instObj != nil {
		instBucket = m.buckets.InstanceBucket(instObj, m.selID)
	}

	cb, ci, ca := snapshot(classBucket)
	ib, ii, ia := snapshot(instBucket)

	inv := &object.Invocation{Target: recv, Selector: m.selector, Args: args}

	original := m.resolveOriginal(chain)
	if original != nil {
		inv.BindOriginal(func(callArgs []object.Value) (object.Value, error) {
			return original.Invoke(recv, callArgs)
		})
	}

	var pending []*record.Record
	defer func() {
		for _, r := range pending {
			m.remover.AutoRemove(r)
		}
	}()

	// runSequence returns how many records actually fired: removed or
	// dead records are skipped, and so is a once-record whose single
	// invocation was claimed by a racing call.
	runSequence := func(recs []*record.Record) (int, error) {
		fired := 0
		for _, r := range recs {
			if r.Removed() || !r.Alive() {
				continue
			}
			if !r.FireOnce() {
				continue
			}
			if r.Once() {
				pending = append(pending, r)
			}
			fired++
			if err := r.Invoke(inv); err != nil {
				return fired, err
			}
		}
		return fired, nil
	}

	// Before hooks, class level first.
	if _, err := runSequence(cb); err != nil {
		return object.Nil(), err
	}
	if _, err := runSequence(ib); err != nil {
		return object.Nil(), err
	}

	// Instead hooks replace the original, but only when one actually
	// fires: a once-instead claimed by a racing call must not suppress
	// the original for the call that lost the claim.
	insteadFired, err := runSequence(ci)
	if err != nil {
		return object.Nil(), err
	}
	n, err := runSequence(ii)
	insteadFired += n
	if err != nil {
		return object.Nil(), err
	}

	var callErr error
	switch {
	case insteadFired > 0:
	case original != nil:
		ret, err := original.Invoke(recv, args)
		if err != nil {
			callErr = err
		} else {
			inv.SetReturn(ret)
		}
	default:
		// No reachable original and nothing replacing it: fall back to
		// whatever forwarding behavior existed before interception.
		ret, err := chain.Runtime().Forward(recv, chain, m.selector, args)
		if err != nil {
			callErr = err
		} else {
			inv.SetReturn(ret)
		}
	}

	// After hooks run even when the original failed, so observers see
	// every call; the original's error still wins.
	if _, err := runSequence(ca); err != nil && callErr == nil {
		callErr = err
	}
	if _, err := runSequence(ia); err != nil && callErr == nil {
		callErr = err
	}

	if callErr != nil {
		return object.Nil(), callErr
	}
	ret, _ := inv.Return()
	return ret, nil
}

// chainStart picks the class chain dispatch walked to reach this
// trampoline: the runtime class for instances, the metaclass for
// class-side sends.
func (m *Method) chainStart(recv any) (*object.Class, *object.Object) {
	switch r := recv.(type) {
	case *object.Object:
		return r.ActualClass(), r
	case *object.Class:
		return r.Meta(), nil
	default:
		return nil, nil
	}
}

// resolveOriginal walks the chain from the call's dynamic class upward
// until a class still responds to the aliased original.
func (m *Method) resolveOriginal(chain *object.Class) object.Method {
	for c := chain; c != nil; c = c.Super() {
		if om := c.VTable().LookupLocal(m.aliasID); om != nil {
			return om
		}
	}
	return nil
}

// snapshot reads a bucket's immutable sequences, tolerating nil.
func snapshot(b *record.Bucket) (before, instead, after []*record.Record) {
	if b == nil {
		return nil, nil, nil
	}
	return b.Snapshot()
}

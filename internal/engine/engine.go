// Package engine orchestrates interception: it validates and
// authorizes registrations, drives the target adapter and dispatch
// patcher, owns the hook storage the trampoline reads, and reverses
// everything on removal.
//
// One mutex serializes all registration and removal process-wide, so
// structural changes are atomic with respect to each other. Calls in
// flight never take that lock — they read copy-on-write bucket
// snapshots published by this package.
package engine

import (
	"fmt"
	"sync"

	"github.com/dshills/splice/internal/adapter"
	"github.com/dshills/splice/internal/hierarchy"
	"github.com/dshills/splice/internal/patch"
	"github.com/dshills/splice/internal/record"
	"github.com/dshills/splice/internal/sig"
	"github.com/dshills/splice/internal/trampoline"
	"github.com/dshills/splice/object"
)

// blacklist lists selectors whose interception would corrupt dispatch
// or forwarding itself.
var blacklist = map[string]bool{
	"setClass":          true,
	"class":             true,
	"doesNotUnderstand": true,
}

// Engine is the interception engine. Construct with New, or use the
// process-wide Default instance.
type Engine struct {
	mu sync.Mutex

	// classTables maps a hooked class to its bucket table. Reads are
	// lock-free for the trampoline; mutation happens under mu.
	classTables sync.Map // *object.Class -> *record.Table

	tracker *hierarchy.Tracker
	patched *patch.Registry
	adapt   *adapter.Adapter
}

// New creates an empty engine.
func New() *Engine {
	return &Engine{
		tracker: hierarchy.NewTracker(),
		patched: patch.NewRegistry(),
		adapt:   adapter.New(),
	}
}

var (
	defaultOnce   sync.Once
	defaultEngine *Engine
)

// Default returns the process-wide engine, created on first use and
// never torn down: hooks are assumed long-lived for process lifetime.
func Default() *Engine {
	defaultOnce.Do(func() {
		defaultEngine = New()
	})
	return defaultEngine
}

// HookClass attaches a handler to selector on cls, affecting every
// instance that dispatches through it. Pass cls.Meta() to hook
// class-side methods. Registration either fully installs or changes
// nothing.
func (e *Engine) HookClass(cls *object.Class, selector string, pos record.Position, once bool, handler any) (*record.Record, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	method, invoker, err := e.validate(cls, selector, pos, handler)
	if err != nil {
		return nil, err
	}
	if err := e.tracker.Authorize(cls, selector); err != nil {
		return nil, err
	}

	if err := e.installLocked(cls, selector, method.Signature()); err != nil {
		return nil, err
	}
	e.tracker.Register(cls, selector)

	rec := record.NewClassRecord(cls, selector, pos, once, record.Invoker(invoker))
	selID := cls.Runtime().Selectors().Intern(selector)
	e.classTable(cls).GetOrCreate(selID).Add(rec)
	return rec, nil
}

// HookInstance attaches a handler to selector on one live instance,
// leaving sibling instances untouched. No hierarchy bookkeeping
// applies: each instance is independent.
func (e *Engine) HookInstance(obj *object.Object, selector string, pos record.Position, once bool, handler any) (*record.Record, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if obj.Disposed() {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyDeallocated, selector)
	}
	method, invoker, err := e.validate(obj.ActualClass(), selector, pos, handler)
	if err != nil {
		return nil, err
	}

	patchCls, _, err := e.adapt.Prepare(obj)
	if err != nil {
		return nil, err
	}
	if err := e.installLocked(patchCls, selector, method.Signature()); err != nil {
		return nil, err
	}

	rec := record.NewInstanceRecord(obj, patchCls, selector, pos, once, record.Invoker(invoker))
	selID := patchCls.Runtime().Selectors().Intern(selector)
	e.instanceTable(obj).GetOrCreate(selID).Add(rec)
	return rec, nil
}

// Remove detaches a hook, restoring original dispatch when it was the
// last one on its (target, selector).
func (e *Engine) Remove(rec *record.Record) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !rec.MarkRemoved() {
		return ErrAlreadyRemoved
	}
	return e.detachLocked(rec)
}

// AutoRemove detaches a record flagged auto-remove-after-first-call.
// Invoked by the trampoline once the call has fully unwound.
func (e *Engine) AutoRemove(rec *record.Record) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !rec.MarkRemoved() {
		return
	}
	_ = e.detachLocked(rec)
}

// ClassBucket implements trampoline.Buckets.
func (e *Engine) ClassBucket(cls *object.Class, selector int) *record.Bucket {
	v, ok := e.classTables.Load(cls)
	if !ok {
		return nil
	}
	return v.(*record.Table).Get(selector)
}

// InstanceBucket implements trampoline.Buckets.
func (e *Engine) InstanceBucket(obj *object.Object, selector int) *record.Bucket {
	t, ok := obj.Associated().(*record.Table)
	if !ok {
		return nil
	}
	return t.Get(selector)
}

// validate runs every failable check that must precede mutation:
// selector legality, target response, and handler signature.
func (e *Engine) validate(cls *object.Class, selector string, pos record.Position, handler any) (object.Method, sig.Invoker, error) {
	if pos > record.After {
		return nil, nil, fmt.Errorf("%w: %d", ErrInvalidPosition, pos)
	}
	if blacklist[selector] || patch.IsAlias(selector) {
		return nil, nil, fmt.Errorf("%w: %s", ErrSelectorBlacklisted, selector)
	}
	if selector == object.DeallocSelector && pos != record.Before {
		return nil, nil, fmt.Errorf("%w: position %s", ErrDeallocPosition, pos)
	}

	method := cls.MethodFor(selector)
	if method == nil {
		return nil, nil, fmt.Errorf("%w: %s#%s", ErrDoesNotRespond, cls.Name(), selector)
	}
	invoker, err := sig.Bind(handler, method.Signature())
	if err != nil {
		return nil, nil, err
	}
	return method, invoker, nil
}

// installLocked redirects (cls, selector) through a trampoline if this
// is the first hook depending on that slot.
func (e *Engine) installLocked(cls *object.Class, selector string, msig object.Signature) error {
	if !e.patched.Retain(cls, selector) {
		return nil
	}
	selectors := cls.Runtime().Selectors()
	tramp := trampoline.New(
		selector,
		selectors.Intern(selector),
		selectors.Intern(patch.AliasName(selector)),
		msig,
		e,
		e,
	)
	if err := patch.Install(cls, selector, tramp); err != nil {
		e.patched.Release(cls, selector)
		return err
	}
	return nil
}

// detachLocked unwinds one record's storage, dispatch redirection, and
// hierarchy claim. The record is already marked removed.
func (e *Engine) detachLocked(rec *record.Record) error {
	selector := rec.Selector()
	cls := rec.Class()
	selID := cls.Runtime().Selectors().Lookup(selector)

	if rec.IsInstance() {
		obj := rec.Instance()
		if obj == nil || obj.Disposed() {
			// The target is gone; its bucket storage died with it.
			// Nothing global to clean up.
			return fmt.Errorf("%w: %s", ErrAlreadyDeallocated, selector)
		}
		table, _ := obj.Associated().(*record.Table)
		if table == nil {
			return fmt.Errorf("%w: %s", ErrAlreadyDeallocated, selector)
		}
		bucket := table.Get(selID)
		if bucket == nil || !bucket.Remove(rec) {
			return ErrAlreadyRemoved
		}
		if bucket.Empty() {
			table.Delete(selID)
			if e.patched.Release(cls, selector) {
				patch.Uninstall(cls, selector)
			}
		}
		if table.Empty() {
			e.adapt.Restore(obj)
		}
		return nil
	}

	v, ok := e.classTables.Load(cls)
	if !ok {
		return ErrAlreadyRemoved
	}
	table := v.(*record.Table)
	bucket := table.Get(selID)
	if bucket == nil || !bucket.Remove(rec) {
		return ErrAlreadyRemoved
	}
	if bucket.Empty() {
		table.Delete(selID)
		e.tracker.Deregister(cls, selector)
		if e.patched.Release(cls, selector) {
			patch.Uninstall(cls, selector)
		}
	}
	if table.Empty() {
		e.classTables.Delete(cls)
	}
	return nil
}

// classTable returns cls's bucket table, publishing one if absent.
func (e *Engine) classTable(cls *object.Class) *record.Table {
	if v, ok := e.classTables.Load(cls); ok {
		return v.(*record.Table)
	}
	v, _ := e.classTables.LoadOrStore(cls, record.NewTable())
	return v.(*record.Table)
}

// instanceTable returns obj's bucket table, stored in the object's
// associated slot so it shares the object's lifetime.
func (e *Engine) instanceTable(obj *object.Object) *record.Table {
	if t, ok := obj.Associated().(*record.Table); ok {
		return t
	}
	t := record.NewTable()
	obj.SetAssociated(t)
	return t
}

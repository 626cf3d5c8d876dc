package adapter_test

import (
	"testing"

	"github.com/dshills/splice/internal/adapter"
	"github.com/dshills/splice/object"
)

func newRuntime(t *testing.T) (*object.Runtime, *object.Class) {
	t.Helper()
	rt := object.NewRuntime()
	cls, err := rt.NewClass("Widget", nil)
	if err != nil {
		t.Fatalf("NewClass: %v", err)
	}
	return rt, cls
}

// TestPrepareSwapsInstanceOntoSynthetic verifies the surgical path:
// the instance moves to a synthetic subclass invisible to introspection.
func TestPrepareSwapsInstanceOntoSynthetic(t *testing.T) {
	_, cls := newRuntime(t)
	a := adapter.New()
	obj := cls.New()

	patched, kind, err := a.Prepare(obj)
	if err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if kind != adapter.KindInstance {
		t.Errorf("expected KindInstance, got %v", kind)
	}
	if !patched.Synthetic() || patched.Super() != cls {
		t.Errorf("expected synthetic subclass of Widget, got %s", patched.Name())
	}
	if obj.ActualClass() != patched {
		t.Error("expected instance to be switched onto the synthetic class")
	}
	if obj.Class() != cls {
		t.Errorf("expected introspection to still report Widget, got %s", obj.Class().Name())
	}
}

// TestPrepareDoesNotAffectSiblings verifies other instances keep the
// original class.
func TestPrepareDoesNotAffectSiblings(t *testing.T) {
	_, cls := newRuntime(t)
	a := adapter.New()
	obj := cls.New()
	sibling := cls.New()

	if _, _, err := a.Prepare(obj); err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if sibling.ActualClass() != cls {
		t.Error("expected sibling to keep its original class")
	}
}

// TestPrepareReusesSyntheticClass verifies the class-pair cache.
func TestPrepareReusesSyntheticClass(t *testing.T) {
	_, cls := newRuntime(t)
	a := adapter.New()

	first, _, err := a.Prepare(cls.New())
	if err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	second, _, err := a.Prepare(cls.New())
	if err != nil {
		t.Fatalf("second Prepare: %v", err)
	}
	if first != second {
		t.Error("expected the synthetic subclass to be reused")
	}
}

// TestPrepareIdempotentForHookedInstance verifies an instance already
// on its synthetic class is returned as-is.
func TestPrepareIdempotentForHookedInstance(t *testing.T) {
	_, cls := newRuntime(t)
	a := adapter.New()
	obj := cls.New()

	first, _, err := a.Prepare(obj)
	if err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	again, kind, err := a.Prepare(obj)
	if err != nil {
		t.Fatalf("second Prepare: %v", err)
	}
	if again != first || kind != adapter.KindInstance {
		t.Error("expected the synthetic class to be returned unchanged")
	}
}

// TestPrepareForeignDivergence verifies an externally-substituted
// runtime class is patched in place, with no extra subclass layer.
func TestPrepareForeignDivergence(t *testing.T) {
	rt, cls := newRuntime(t)
	// Simulate an external mechanism that substituted the runtime
	// class with its own class pair.
	foreign, err := rt.AllocateClassPair(cls, "Widget_kvoLike")
	if err != nil {
		t.Fatalf("AllocateClassPair(foreign): %v", err)
	}
	obj := cls.New()
	obj.SetClass(foreign)

	a := adapter.New()
	if got := a.Classify(obj); got != adapter.KindForeign {
		t.Fatalf("expected KindForeign, got %v", got)
	}

	patched, kind, err := a.Prepare(obj)
	if err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if kind != adapter.KindForeign || patched != foreign {
		t.Errorf("expected in-place patch of the foreign class, got %s", patched.Name())
	}
	if obj.ActualClass() != foreign {
		t.Error("expected runtime class to be left alone")
	}
}

// TestRestoreReturnsOriginalClass verifies restore semantics.
func TestRestoreReturnsOriginalClass(t *testing.T) {
	_, cls := newRuntime(t)
	a := adapter.New()
	obj := cls.New()

	if _, _, err := a.Prepare(obj); err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	a.Restore(obj)
	if obj.ActualClass() != cls {
		t.Errorf("expected restore to Widget, got %s", obj.ActualClass().Name())
	}

	// Restoring an unhooked instance is a no-op.
	a.Restore(obj)
	if obj.ActualClass() != cls {
		t.Error("expected second restore to be a no-op")
	}
}

package object_test

import (
	"errors"
	"testing"

	"github.com/dshills/splice/object"
)

// newShapeRuntime builds a Shape <- Circle hierarchy with an area method.
func newShapeRuntime(t *testing.T) (*object.Runtime, *object.Class, *object.Class) {
	t.Helper()

	rt := object.NewRuntime()
	shape, err := rt.NewClass("Shape", nil)
	if err != nil {
		t.Fatalf("NewClass(Shape): %v", err)
	}
	circle, err := rt.NewClass("Circle", shape)
	if err != nil {
		t.Fatalf("NewClass(Circle): %v", err)
	}

	shape.AddMethod("area", object.NewGoFunc(nil, func(recv any, args []object.Value) (object.Value, error) {
		return object.Int(42), nil
	}))
	return rt, shape, circle
}

// TestSendResolvesLocalMethod verifies a send hits the receiver's own method.
func TestSendResolvesLocalMethod(t *testing.T) {
	rt, shape, _ := newShapeRuntime(t)

	s := shape.New()
	got, err := rt.Send(s, "area")
	if err != nil {
		t.Fatalf("Send(area): %v", err)
	}
	if got.Int64() != 42 {
		t.Errorf("expected 42, got %d", got.Int64())
	}
}

// TestSendResolvesInheritedMethod verifies subclass instances inherit methods.
func TestSendResolvesInheritedMethod(t *testing.T) {
	rt, _, circle := newShapeRuntime(t)

	c := circle.New()
	got, err := rt.Send(c, "area")
	if err != nil {
		t.Fatalf("Send(area) on Circle: %v", err)
	}
	if got.Int64() != 42 {
		t.Errorf("expected 42, got %d", got.Int64())
	}
}

// TestSendUnknownSelectorFails verifies the default forwarding behavior.
func TestSendUnknownSelectorFails(t *testing.T) {
	rt, shape, _ := newShapeRuntime(t)

	s := shape.New()
	_, err := rt.Send(s, "perimeter")
	if !errors.Is(err, object.ErrDoesNotUnderstand) {
		t.Errorf("expected ErrDoesNotUnderstand, got %v", err)
	}
}

// TestForwarderHandlesUnknownSelector verifies a class forwarder runs
// for unresolved sends.
func TestForwarderHandlesUnknownSelector(t *testing.T) {
	rt, shape, _ := newShapeRuntime(t)

	shape.SetForwarder(func(recv any, selector string, args []object.Value) (object.Value, error) {
		return object.Str("forwarded:" + selector), nil
	})

	s := shape.New()
	got, err := rt.Send(s, "perimeter")
	if err != nil {
		t.Fatalf("forwarded send: %v", err)
	}
	if got.Str() != "forwarded:perimeter" {
		t.Errorf("expected forwarded:perimeter, got %q", got.Str())
	}
}

// TestClassSideSend verifies class methods dispatch via the metaclass.
func TestClassSideSend(t *testing.T) {
	rt, shape, circle := newShapeRuntime(t)

	shape.AddClassMethod("describe", object.NewGoFunc(nil, func(recv any, args []object.Value) (object.Value, error) {
		cls := recv.(*object.Class)
		return object.Str(cls.Name()), nil
	}))

	got, err := rt.SendClass(circle, "describe")
	if err != nil {
		t.Fatalf("SendClass(describe): %v", err)
	}
	if got.Str() != "Circle" {
		t.Errorf("expected Circle, got %q", got.Str())
	}
}

// TestAllocateClassPairReportsAsOriginal verifies synthetic subclasses
// are invisible to introspection.
func TestAllocateClassPairReportsAsOriginal(t *testing.T) {
	rt, shape, _ := newShapeRuntime(t)

	synth, err := rt.AllocateClassPair(shape, "Shape_synthetic")
	if err != nil {
		t.Fatalf("AllocateClassPair: %v", err)
	}
	if !synth.Synthetic() {
		t.Error("expected synthetic class")
	}
	if synth.ReportsAs() != shape {
		t.Errorf("expected reportsAs Shape, got %s", synth.ReportsAs().Name())
	}

	s := shape.New()
	s.SetClass(synth)
	if s.Class() != shape {
		t.Errorf("expected Class() to report Shape, got %s", s.Class().Name())
	}
	if s.ActualClass() != synth {
		t.Errorf("expected ActualClass() to be synthetic, got %s", s.ActualClass().Name())
	}

	// Dispatch still resolves inherited methods.
	got, err := rt.Send(s, "area")
	if err != nil {
		t.Fatalf("Send(area) via synthetic class: %v", err)
	}
	if got.Int64() != 42 {
		t.Errorf("expected 42, got %d", got.Int64())
	}
}

// TestAllocateClassPairNameCollision verifies collisions fail.
func TestAllocateClassPairNameCollision(t *testing.T) {
	rt, shape, _ := newShapeRuntime(t)

	if _, err := rt.AllocateClassPair(shape, "Circle"); !errors.Is(err, object.ErrClassExists) {
		t.Errorf("expected ErrClassExists, got %v", err)
	}
}

// TestDisposeSendsDealloc verifies Dispose runs the teardown method once
// and blocks later sends.
func TestDisposeSendsDealloc(t *testing.T) {
	rt, shape, _ := newShapeRuntime(t)

	calls := 0
	shape.AddMethod(object.DeallocSelector, object.NewGoFunc(nil, func(recv any, args []object.Value) (object.Value, error) {
		calls++
		return object.Nil(), nil
	}))

	s := shape.New()
	if err := rt.Dispose(s); err != nil {
		t.Fatalf("Dispose: %v", err)
	}
	if err := rt.Dispose(s); err != nil {
		t.Fatalf("second Dispose: %v", err)
	}
	if calls != 1 {
		t.Errorf("expected dealloc to run once, ran %d times", calls)
	}

	if _, err := rt.Send(s, "area"); !errors.Is(err, object.ErrDisposed) {
		t.Errorf("expected ErrDisposed, got %v", err)
	}
}

// TestValueNumericWidths verifies sign extension and masking by width.
func TestValueNumericWidths(t *testing.T) {
	v := object.IntOf(-1, 1)
	if v.Int64() != -1 {
		t.Errorf("expected -1 from 1-byte int, got %d", v.Int64())
	}
	if v.Uint64() != 0xFF {
		t.Errorf("expected 0xFF mask, got %#x", v.Uint64())
	}

	u := object.UintOf(0x1FF, 1)
	if u.Uint64() != 0xFF {
		t.Errorf("expected truncation to 0xFF, got %#x", u.Uint64())
	}

	f := object.Float32Of(1.5)
	if f.Float64() != 1.5 {
		t.Errorf("expected 1.5, got %v", f.Float64())
	}

	type big struct{ buf [300]byte }
	st := object.Struct(big{}, 300)
	if st.Width() != 300 {
		t.Errorf("expected struct width 300, got %d", st.Width())
	}
	if p := st.Param(); p.Kind != object.KindStruct || p.Width != 300 {
		t.Errorf("expected struct{300} param, got %s", p)
	}
}

// TestInvocationCallOriginal verifies the bound original closure runs
// and records the result.
func TestInvocationCallOriginal(t *testing.T) {
	inv := &object.Invocation{Selector: "area"}

	if _, err := inv.CallOriginal(nil); !errors.Is(err, object.ErrNoOriginal) {
		t.Errorf("expected ErrNoOriginal, got %v", err)
	}

	inv.BindOriginal(func(args []object.Value) (object.Value, error) {
		return object.Int(7), nil
	})
	got, err := inv.CallOriginal(nil)
	if err != nil {
		t.Fatalf("CallOriginal: %v", err)
	}
	if got.Int64() != 7 {
		t.Errorf("expected 7, got %d", got.Int64())
	}
	if ret, ok := inv.Return(); !ok || ret.Int64() != 7 {
		t.Errorf("expected recorded return 7, got %v (set=%v)", ret, ok)
	}
}

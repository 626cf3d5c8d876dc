package sig

import (
	"fmt"
	"reflect"

	"github.com/dshills/splice/object"
)

// Invoker runs a bound handler against one invocation.
type Invoker func(inv *object.Invocation) error

// Bind validates a handler against a method signature and returns an
// invoker that marshals the invocation's arguments into the handler's
// declared parameters and calls it. Marshaling is the narrow boundary
// where runtime Values cross into static Go types: each shared trailing
// parameter is copied by kind and byte width.
func Bind(handler any, method object.Signature) (Invoker, error) {
	if err := Match(handler, method); err != nil {
		return nil, err
	}

	fn := reflect.ValueOf(handler)
	t := fn.Type()
	numIn := t.NumIn()
	returnsError := t.NumOut() == 1

	return func(inv *object.Invocation) error {
		if numIn == 0 {
			out := fn.Call(nil)
			return callError(out, returnsError)
		}

		in := make([]reflect.Value, numIn)
		in[0] = reflect.ValueOf(inv)
		for i := 1; i < numIn; i++ {
			av, err := marshal(inv.Args[i-1], t.In(i))
			if err != nil {
				return fmt.Errorf("marshaling argument %d of %s: %w", i-1, inv.Selector, err)
			}
			in[i] = av
		}
		out := fn.Call(in)
		return callError(out, returnsError)
	}, nil
}

// callError extracts the handler's error result, if it declared one.
func callError(out []reflect.Value, returnsError bool) error {
	if !returnsError || out[0].IsNil() {
		return nil
	}
	return out[0].Interface().(error)
}

// marshal copies one runtime Value into a handler parameter of the
// given static type. Match has already established kind and width
// compatibility; this only performs the copy.
func marshal(v object.Value, t reflect.Type) (reflect.Value, error) {
	switch v.Kind() {
	case object.KindInt:
		rv := reflect.New(t).Elem()
		rv.SetInt(v.Int64())
		return rv, nil
	case object.KindUint:
		rv := reflect.New(t).Elem()
		rv.SetUint(v.Uint64())
		return rv, nil
	case object.KindFloat:
		rv := reflect.New(t).Elem()
		rv.SetFloat(v.Float64())
		return rv, nil
	case object.KindBool:
		rv := reflect.New(t).Elem()
		rv.SetBool(v.BoolVal())
		return rv, nil
	case object.KindString:
		rv := reflect.New(t).Elem()
		rv.SetString(v.Str())
		return rv, nil
	case object.KindNil:
		return reflect.Zero(t), nil
	case object.KindObject, object.KindBlock, object.KindStruct:
		return marshalRef(v.Ref(), t)
	default:
		return reflect.Value{}, fmt.Errorf("%w: kind %s", ErrUnsupportedType, v.Kind())
	}
}

// marshalRef places a reference-slot value into a static type,
// converting when the types differ but are compatible.
func marshalRef(ref any, t reflect.Type) (reflect.Value, error) {
	if ref == nil {
		return reflect.Zero(t), nil
	}
	rv := reflect.ValueOf(ref)
	switch {
	case rv.Type() == t:
		return rv, nil
	case rv.Type().AssignableTo(t):
		rv2 := reflect.New(t).Elem()
		rv2.Set(rv)
		return rv2, nil
	case rv.Type().ConvertibleTo(t):
		return rv.Convert(t), nil
	default:
		return reflect.Value{}, fmt.Errorf("%w: cannot pass %s as %s", ErrIncompatible, rv.Type(), t)
	}
}

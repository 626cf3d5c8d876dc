// Package sig validates handler signatures against target method
// signatures and binds handlers into generic invokers.
//
// Handlers are plain Go functions. A handler may declare no parameters
// at all, or an *object.Invocation first followed by a prefix of the
// method's declared parameters. Trailing method parameters a handler
// does not declare are simply not forwarded; a handler never declares
// more. Parameter compatibility is kind-exact from the second shared
// position onward: an int32 method parameter is only satisfied by an
// int32 handler parameter, never widened or narrowed.
package sig

import (
	"fmt"
	"reflect"

	"github.com/dshills/splice/object"
)

var (
	invocationType = reflect.TypeOf((*object.Invocation)(nil))
	errorType      = reflect.TypeOf((*error)(nil)).Elem()
	objectType     = reflect.TypeOf((*object.Object)(nil))
	classType      = reflect.TypeOf((*object.Class)(nil))
	anyType        = reflect.TypeOf((*any)(nil)).Elem()
)

// ParamOf maps a Go type to its coarse runtime parameter descriptor.
func ParamOf(t reflect.Type) (object.Param, error) {
	switch t {
	case objectType, classType, anyType:
		return object.Param{Kind: object.KindObject}, nil
	}

	switch t.Kind() {
	case reflect.Int, reflect.Int64:
		return object.Param{Kind: object.KindInt, Width: 8}, nil
	case reflect.Int8:
		return object.Param{Kind: object.KindInt, Width: 1}, nil
	case reflect.Int16:
		return object.Param{Kind: object.KindInt, Width: 2}, nil
	case reflect.Int32:
		return object.Param{Kind: object.KindInt, Width: 4}, nil
	case reflect.Uint, reflect.Uint64, reflect.Uintptr:
		return object.Param{Kind: object.KindUint, Width: 8}, nil
	case reflect.Uint8:
		return object.Param{Kind: object.KindUint, Width: 1}, nil
	case reflect.Uint16:
		return object.Param{Kind: object.KindUint, Width: 2}, nil
	case reflect.Uint32:
		return object.Param{Kind: object.KindUint, Width: 4}, nil
	case reflect.Float32:
		return object.Param{Kind: object.KindFloat, Width: 4}, nil
	case reflect.Float64:
		return object.Param{Kind: object.KindFloat, Width: 8}, nil
	case reflect.Bool:
		return object.Param{Kind: object.KindBool, Width: 1}, nil
	case reflect.String:
		return object.Param{Kind: object.KindString}, nil
	case reflect.Func:
		return object.Param{Kind: object.KindBlock}, nil
	case reflect.Struct:
		return object.Param{Kind: object.KindStruct, Width: int(t.Size())}, nil
	case reflect.Ptr, reflect.Interface:
		return object.Param{Kind: object.KindObject}, nil
	default:
		return object.Param{}, fmt.Errorf("%w: %s", ErrUnsupportedType, t)
	}
}

// Match decides whether a handler is compatible with a method signature.
//
// Rules:
//   - handler must be a function; its results must be empty or (error)
//   - zero parameters is always compatible
//   - otherwise the first parameter must be *object.Invocation
//   - remaining parameters must be a kind-exact prefix of the method's
func Match(handler any, method object.Signature) error {
	if handler == nil {
		return ErrMissingSignature
	}
	t := reflect.TypeOf(handler)
	if t.Kind() != reflect.Func {
		return fmt.Errorf("%w: got %s", ErrMissingSignature, t.Kind())
	}

	switch t.NumOut() {
	case 0:
	case 1:
		if !t.Out(0).Implements(errorType) {
			return fmt.Errorf("%w: result must be error, got %s", ErrIncompatible, t.Out(0))
		}
	default:
		return fmt.Errorf("%w: at most one result allowed", ErrIncompatible)
	}

	if t.NumIn() == 0 {
		return nil
	}
	if t.In(0) != invocationType {
		return fmt.Errorf("%w: first parameter must be *object.Invocation, got %s", ErrIncompatible, t.In(0))
	}

	trailing := t.NumIn() - 1
	if trailing > len(method) {
		return fmt.Errorf("%w: handler declares %d parameters, method has %d", ErrIncompatible, trailing, len(method))
	}
	for i := 0; i < trailing; i++ {
		p, err := ParamOf(t.In(i + 1))
		if err != nil {
			return err
		}
		if p.Kind != method[i].Kind || widthRelevant(p.Kind) && p.Width != method[i].Width {
			return fmt.Errorf("%w: parameter %d is %s, method declares %s", ErrIncompatible, i, p, method[i])
		}
	}
	return nil
}

// widthRelevant reports whether width participates in kind matching.
func widthRelevant(k object.Kind) bool {
	switch k {
	case object.KindInt, object.KindUint, object.KindFloat, object.KindStruct:
		return true
	default:
		return false
	}
}

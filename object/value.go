package object

import (
	"fmt"
	"math"
)

// Kind classifies a parameter or value at the coarse level dispatch
// cares about. Marshaling between a method's argument storage and a
// handler's parameters matches on Kind and Width, never on exact types.
type Kind uint8

const (
	// KindNil is the zero value; it carries nothing.
	KindNil Kind = iota

	// KindObject is a reference: *Object, *Class, or nil.
	KindObject

	// KindInt is a signed integer of Width bytes.
	KindInt

	// KindUint is an unsigned integer of Width bytes.
	KindUint

	// KindFloat is a floating-point number of Width (4 or 8) bytes.
	KindFloat

	// KindBool is a boolean.
	KindBool

	// KindString is an immutable string.
	KindString

	// KindBlock is an opaque callable passed through untouched.
	KindBlock

	// KindStruct is an opaque composite copied value-for-value.
	KindStruct
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindNil:
		return "nil"
	case KindObject:
		return "object"
	case KindInt:
		return "int"
	case KindUint:
		return "uint"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	case KindString:
		return "string"
	case KindBlock:
		return "block"
	case KindStruct:
		return "struct"
	default:
		return "unknown"
	}
}

// Param describes one parameter slot of a method signature.
type Param struct {
	// Kind is the coarse value kind.
	Kind Kind

	// Width is the storage width in bytes. Meaningful for numeric and
	// struct kinds; zero otherwise.
	Width int
}

// String returns a compact description like "int4" or "object".
func (p Param) String() string {
	switch p.Kind {
	case KindInt, KindUint, KindFloat, KindStruct:
		return fmt.Sprintf("%s%d", p.Kind, p.Width)
	default:
		return p.Kind.String()
	}
}

// Signature is an ordered parameter list, excluding the receiver.
type Signature []Param

// Value is the runtime's argument and return representation: a tagged
// union with raw 8-byte numeric storage plus a reference slot. Numeric
// values are stored width-aware so that marshaling can sign-extend or
// truncate without knowing the static Go type.
type Value struct {
	kind  Kind
	width uint32
	bits  uint64
	ref   any
}

// Nil returns the empty value.
func Nil() Value { return Value{} }

// Obj wraps an object or class reference. A nil ref is a nil object value.
func Obj(ref any) Value {
	return Value{kind: KindObject, ref: ref}
}

// IntOf stores a signed integer at the given byte width (1, 2, 4, or 8).
func IntOf(v int64, width int) Value {
	return Value{kind: KindInt, width: uint32(width), bits: uint64(v)}
}

// Int stores a signed 8-byte integer.
func Int(v int64) Value { return IntOf(v, 8) }

// UintOf stores an unsigned integer at the given byte width.
func UintOf(v uint64, width int) Value {
	return Value{kind: KindUint, width: uint32(width), bits: v}
}

// Float stores an 8-byte float.
func Float(v float64) Value {
	return Value{kind: KindFloat, width: 8, bits: math.Float64bits(v)}
}

// Float32Of stores a 4-byte float.
func Float32Of(v float32) Value {
	return Value{kind: KindFloat, width: 4, bits: uint64(math.Float32bits(v))}
}

// Bool stores a boolean.
func Bool(v bool) Value {
	var bits uint64
	if v {
		bits = 1
	}
	return Value{kind: KindBool, width: 1, bits: bits}
}

// Str stores a string.
func Str(v string) Value { return Value{kind: KindString, ref: v} }

// Block wraps an opaque callable.
func Block(fn any) Value { return Value{kind: KindBlock, ref: fn} }

// Struct wraps an opaque composite value of the given byte size.
func Struct(v any, size int) Value {
	return Value{kind: KindStruct, width: uint32(size), ref: v}
}

// Kind returns the value's kind tag.
func (v Value) Kind() Kind { return v.kind }

// Width returns the storage width in bytes.
func (v Value) Width() int { return int(v.width) }

// IsNil reports whether the value is empty or a nil reference.
func (v Value) IsNil() bool {
	return v.kind == KindNil || (v.kind == KindObject && v.ref == nil)
}

// Int64 returns the signed integer, sign-extended from its stored width.
func (v Value) Int64() int64 {
	shift := 64 - 8*uint(v.width)
	return int64(v.bits<<shift) >> shift
}

// Uint64 returns the unsigned integer, masked to its stored width.
func (v Value) Uint64() uint64 {
	if v.width >= 8 {
		return v.bits
	}
	mask := uint64(1)<<(8*uint(v.width)) - 1
	return v.bits & mask
}

// Float64 returns the float, widening a stored float32 if needed.
func (v Value) Float64() float64 {
	if v.width == 4 {
		return float64(math.Float32frombits(uint32(v.bits)))
	}
	return math.Float64frombits(v.bits)
}

// BoolVal returns the boolean.
func (v Value) BoolVal() bool { return v.bits != 0 }

// Str returns the string, or "" for non-string values.
func (v Value) Str() string {
	s, _ := v.ref.(string)
	return s
}

// Ref returns the reference slot (object, class, block, or struct value).
func (v Value) Ref() any { return v.ref }

// Object returns the referenced *Object, or nil if the value holds
// something else.
func (v Value) Object() *Object {
	o, _ := v.ref.(*Object)
	return o
}

// Param returns the Param describing this value's shape.
func (v Value) Param() Param {
	return Param{Kind: v.kind, Width: int(v.width)}
}

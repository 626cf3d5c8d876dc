package sig

import "errors"

// Signature matching errors.
var (
	// ErrMissingSignature indicates the handler does not expose a
	// callable signature (nil, or not a function).
	ErrMissingSignature = errors.New("sig: handler has no callable signature")

	// ErrIncompatible indicates the handler's parameter list does not
	// match the target method's parameter list.
	ErrIncompatible = errors.New("sig: handler signature incompatible with method")

	// ErrUnsupportedType indicates a handler parameter type has no
	// runtime kind mapping.
	ErrUnsupportedType = errors.New("sig: unsupported handler parameter type")
)

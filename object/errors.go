package object

import "errors"

// Runtime errors.
var (
	// ErrDoesNotUnderstand indicates no method or forwarder resolved a send.
	ErrDoesNotUnderstand = errors.New("object: receiver does not understand selector")

	// ErrDisposed indicates a send to an object that has been disposed.
	ErrDisposed = errors.New("object: object has been disposed")

	// ErrClassExists indicates a class name is already registered.
	ErrClassExists = errors.New("object: class name already registered")

	// ErrKindMismatch indicates a Value accessor was called for the wrong kind.
	ErrKindMismatch = errors.New("object: value kind mismatch")

	// ErrNoOriginal indicates CallOriginal was invoked on an invocation
	// that has no original implementation bound.
	ErrNoOriginal = errors.New("object: invocation has no original implementation")
)

package splice

import "github.com/dshills/splice/internal/record"

// Option selects where a handler runs relative to the original method
// and whether it detaches itself after its first invocation. Exactly
// one position is encoded in the low bits; Once may be OR'd in.
type Option uint8

const (
	// Before runs the handler ahead of the original implementation.
	Before Option = Option(record.Before)

	// Instead runs the handler in place of the original implementation.
	// The handler controls the return value via Invocation.SetReturn and
	// may reach the suppressed implementation with CallOriginal.
	Instead Option = Option(record.Instead)

	// After runs the handler once the original implementation (or the
	// Instead chain) has finished.
	After Option = Option(record.After)

	// Once detaches the hook automatically after its first invocation.
	Once Option = 1 << 3
)

// position strips the Once flag, leaving the raw dispatch position.
func (o Option) position() record.Position {
	return record.Position(o &^ Once)
}

// once reports whether the hook should self-detach after firing.
func (o Option) once() bool { return o&Once != 0 }

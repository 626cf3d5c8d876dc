package engine

import "errors"

// Engine errors. Signature errors come from the sig package, hierarchy
// denials from the hierarchy package, and class-pair failures from the
// adapter package; this file holds the engine's own taxonomy.
var (
	// ErrSelectorBlacklisted indicates the selector affects dispatch or
	// forwarding itself and is never interceptable.
	ErrSelectorBlacklisted = errors.New("engine: selector is not interceptable")

	// ErrDeallocPosition indicates the teardown selector was hooked at
	// a position other than Before. Instead and After would run once
	// the object's resources are already gone.
	ErrDeallocPosition = errors.New("engine: dealloc may only be hooked before teardown")

	// ErrDoesNotRespond indicates the target does not resolve the selector.
	ErrDoesNotRespond = errors.New("engine: target does not respond to selector")

	// ErrAlreadyDeallocated indicates the hook's target is already gone.
	ErrAlreadyDeallocated = errors.New("engine: target already deallocated")

	// ErrAlreadyRemoved indicates a token was removed twice.
	ErrAlreadyRemoved = errors.New("engine: hook already removed")

	// ErrInvalidPosition indicates an unknown position value.
	ErrInvalidPosition = errors.New("engine: invalid hook position")
)

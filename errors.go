package splice

import (
	"github.com/dshills/splice/internal/adapter"
	"github.com/dshills/splice/internal/engine"
	"github.com/dshills/splice/internal/hierarchy"
	"github.com/dshills/splice/internal/sig"
)

// Registration errors. Every failure leaves dispatch exactly as it was;
// a non-nil error from Hook means nothing was installed.
var (
	// ErrSelectorBlacklisted marks selectors the dispatch layer itself
	// depends on and that can never be hooked.
	ErrSelectorBlacklisted = engine.ErrSelectorBlacklisted

	// ErrSelectorDeallocPosition marks an attempt to hook the teardown
	// selector anywhere but Before.
	ErrSelectorDeallocPosition = engine.ErrDeallocPosition

	// ErrDoesNotRespond marks a selector the target class neither
	// implements nor inherits.
	ErrDoesNotRespond = engine.ErrDoesNotRespond

	// ErrInvalidPosition marks an Option whose position bits name no
	// known position.
	ErrInvalidPosition = engine.ErrInvalidPosition

	// ErrSelectorAlreadyHooked marks a selector already claimed by an
	// ancestor or descendant of the target class.
	ErrSelectorAlreadyHooked = hierarchy.ErrAlreadyClaimed

	// ErrMissingSignature marks a handler that is not a func.
	ErrMissingSignature = sig.ErrMissingSignature

	// ErrIncompatibleSignature marks a handler whose parameters do not
	// line up with the hooked method's signature.
	ErrIncompatibleSignature = sig.ErrIncompatible

	// ErrFailedToAllocateClassPair marks an instance hook whose hidden
	// subclass could not be created, usually a class-name collision.
	ErrFailedToAllocateClassPair = adapter.ErrAllocateClassPair
)

// Removal errors.
var (
	// ErrAlreadyRemoved marks a token whose hook was already detached.
	ErrAlreadyRemoved = engine.ErrAlreadyRemoved

	// ErrAlreadyDeallocated marks a token whose instance target was
	// disposed before removal.
	ErrAlreadyDeallocated = engine.ErrAlreadyDeallocated
)

package hookset

import "errors"

var (
	// ErrUnknownFormat is returned for a file extension the loader does
	// not recognize.
	ErrUnknownFormat = errors.New("hookset: unknown file format")

	// ErrInvalidEntry is returned when a hook entry is missing required
	// fields or names an unknown position.
	ErrInvalidEntry = errors.New("hookset: invalid entry")

	// ErrUnknownClass is returned when an entry names a class the
	// runtime has never seen.
	ErrUnknownClass = errors.New("hookset: unknown class")

	// ErrWatcherClosed is returned when a closed watcher is reused.
	ErrWatcherClosed = errors.New("hookset: watcher closed")
)

package luahook

import "errors"

var (
	// ErrNoHookFunction is returned when a script does not define a
	// global function named "hook".
	ErrNoHookFunction = errors.New("luahook: script defines no hook function")

	// ErrScript is returned when the script fails to compile or run.
	ErrScript = errors.New("luahook: script error")

	// ErrClosed is returned when a handler is invoked after Close.
	ErrClosed = errors.New("luahook: handler closed")
)

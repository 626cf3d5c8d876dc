package patch

import "github.com/dshills/splice/object"

// Registry is the process-wide record of in-place dispatch
// redirections: which classes have which selectors patched, with a
// count of the hooks depending on each redirection. The last
// dependent's removal triggers uninstallation. Callers serialize
// access through the engine's registration lock.
type Registry struct {
	patched map[*object.Class]map[string]int
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{patched: make(map[*object.Class]map[string]int)}
}

// Retain notes one more hook depending on (cls, selector). Returns
// true when this is the first dependent, i.e. the slot needs patching.
func (r *Registry) Retain(cls *object.Class, selector string) bool {
	sels := r.patched[cls]
	if sels == nil {
		sels = make(map[string]int)
		r.patched[cls] = sels
	}
	sels[selector]++
	return sels[selector] == 1
}

// Release notes one fewer hook depending on (cls, selector). Returns
// true when no dependents remain, i.e. the slot should be restored.
func (r *Registry) Release(cls *object.Class, selector string) bool {
	sels := r.patched[cls]
	if sels == nil || sels[selector] == 0 {
		return false
	}
	sels[selector]--
	if sels[selector] > 0 {
		return false
	}
	delete(sels, selector)
	if len(sels) == 0 {
		delete(r.patched, cls)
	}
	return true
}

// Patched reports whether (cls, selector) currently has dependents.
func (r *Registry) Patched(cls *object.Class, selector string) bool {
	return r.patched[cls][selector] > 0
}

// ClassPatched reports whether cls has any patched selector.
func (r *Registry) ClassPatched(cls *object.Class) bool {
	return len(r.patched[cls]) > 0
}

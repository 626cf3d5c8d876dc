package hookset

import (
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/dshills/splice"
	"github.com/dshills/splice/object"
)

// Watcher keeps a runtime's hooks in sync with a hook set file. Every
// write to the file reloads it. A file that fails to parse keeps the
// previous hooks in place. A set that parses but fails to apply leaves
// no hooks installed: the old set must come out before the new one
// goes in (entries present in both would collide on their own
// hierarchy claims), and apply failures roll back to a clean slate.
// Either failure is reported through the log func.
type Watcher struct {
	mu      sync.Mutex
	rt      *object.Runtime
	path    string
	logf    func(format string, args ...any)
	fsw     *fsnotify.Watcher
	current *Applied
	done    chan struct{}
	closed  bool
}

// NewWatcher loads and applies path's hook set, then starts watching
// for changes. logf receives reload outcomes; pass nil to discard them.
func NewWatcher(rt *object.Runtime, path string, logf func(format string, args ...any)) (*Watcher, error) {
	if logf == nil {
		logf = func(string, ...any) {}
	}
	set, err := Load(path)
	if err != nil {
		return nil, err
	}
	applied, err := Apply(rt, set)
	if err != nil {
		return nil, err
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		applied.Remove()
		return nil, err
	}
	// Watch the directory: editors often replace the file wholesale,
	// which drops a watch on the file itself.
	if err := fsw.Add(filepath.Dir(path)); err != nil {
		applied.Remove()
		fsw.Close()
		return nil, err
	}

	w := &Watcher{
		rt:      rt,
		path:    path,
		logf:    logf,
		fsw:     fsw,
		current: applied,
		done:    make(chan struct{}),
	}
	go w.loop()
	return w, nil
}

// Tokens returns the currently applied hooks' tokens, or nil when the
// last reload failed.
func (w *Watcher) Tokens() []*splice.Token {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.current == nil {
		return nil
	}
	return w.current.Tokens()
}

// Close stops watching and removes the applied hooks.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return ErrWatcherClosed
	}
	w.closed = true
	err := w.fsw.Close()
	w.mu.Unlock()

	// The loop may be mid-reload; wait for it without holding the lock.
	<-w.done

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.current != nil {
		w.current.Remove()
		w.current = nil
	}
	return err
}

func (w *Watcher) loop() {
	defer close(w.done)
	for {
		select {
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != filepath.Clean(w.path) {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			w.reload()
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logf("hookset: watch error: %v", err)
		}
	}
}

// reload swaps in the file's current contents. The old hooks stay
// installed until the new set is fully applied.
func (w *Watcher) reload() {
	set, err := Load(w.path)
	if err != nil {
		w.logf("hookset: reload skipped: %v", err)
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}

	old := w.current
	// Hooks in both sets conflict with themselves (same hierarchy
	// claim), so the old set comes out before the new one goes in. An
	// apply failure now rolls back to a clean slate, not the old set;
	// the log line says which entry refused.
	if old != nil {
		old.Remove()
	}
	applied, err := Apply(w.rt, set)
	if err != nil {
		w.current = nil
		w.logf("hookset: reload failed: %v", err)
		return
	}
	w.current = applied
	w.logf("hookset: reloaded %d hooks from %s", len(applied.tokens), w.path)
}

package hookset_test

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dshills/splice/hookset"
	"github.com/dshills/splice/object"
)

var classCounter int

// newRuntime builds a runtime with one class carrying an area method
// returning 42. Class names are unique per call because hooks live in
// a process-wide engine.
func newRuntime(t *testing.T) (*object.Runtime, string) {
	t.Helper()
	classCounter++
	name := fmt.Sprintf("Gauge%d", classCounter)

	rt := object.NewRuntime()
	cls, err := rt.NewClass(name, nil)
	if err != nil {
		t.Fatalf("NewClass: %v", err)
	}
	cls.AddMethod("area", object.NewGoFunc(nil, func(recv any, args []object.Value) (object.Value, error) {
		return object.Int(42), nil
	}))
	return rt, name
}

const doubleScript = `
function hook(call)
    call.set_return(call.call_original() * 2)
end`

// TestParseTOML verifies TOML decoding and validation.
func TestParseTOML(t *testing.T) {
	data := []byte(`
[[hooks]]
class = "Gauge"
selector = "area"
position = "instead"
once = true
script = "function hook(call) end"
`)
	set, err := hookset.Parse(data, ".toml")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(set.Hooks) != 1 {
		t.Fatalf("expected 1 hook, got %d", len(set.Hooks))
	}
	h := set.Hooks[0]
	if h.Class != "Gauge" || h.Selector != "area" || h.Position != "instead" || !h.Once {
		t.Errorf("unexpected entry: %+v", h)
	}
}

// TestParseYAML verifies YAML decoding.
func TestParseYAML(t *testing.T) {
	data := []byte(`
hooks:
  - class: Gauge
    selector: area
    position: after
    script: "function hook(call) end"
`)
	set, err := hookset.Parse(data, ".yml")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(set.Hooks) != 1 || set.Hooks[0].Position != "after" {
		t.Errorf("unexpected set: %+v", set)
	}
}

// TestParseRejectsBadInput verifies format and entry validation.
func TestParseRejectsBadInput(t *testing.T) {
	if _, err := hookset.Parse(nil, ".json"); !errors.Is(err, hookset.ErrUnknownFormat) {
		t.Errorf("expected ErrUnknownFormat, got %v", err)
	}

	missing := []byte("[[hooks]]\nclass = \"Gauge\"\n")
	if _, err := hookset.Parse(missing, ".toml"); !errors.Is(err, hookset.ErrInvalidEntry) {
		t.Errorf("expected ErrInvalidEntry, got %v", err)
	}

	badPos := []byte("[[hooks]]\nclass = \"G\"\nselector = \"s\"\nposition = \"around\"\nscript = \"x\"\n")
	if _, err := hookset.Parse(badPos, ".toml"); !errors.Is(err, hookset.ErrInvalidEntry) {
		t.Errorf("expected ErrInvalidEntry for position, got %v", err)
	}
}

// TestApplyInstallsAndRemoves verifies end-to-end application of a Lua
// hook set and its clean removal.
func TestApplyInstallsAndRemoves(t *testing.T) {
	rt, name := newRuntime(t)
	set := &hookset.Set{Hooks: []hookset.Entry{{
		Class:    name,
		Selector: "area",
		Position: "instead",
		Script:   doubleScript,
	}}}

	applied, err := hookset.Apply(rt, set)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if len(applied.Tokens()) != 1 {
		t.Fatalf("expected 1 token, got %d", len(applied.Tokens()))
	}

	obj := rt.Lookup(name).New()
	got, err := rt.Send(obj, "area")
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if got.Int64() != 84 {
		t.Errorf("expected 84, got %d", got.Int64())
	}

	applied.Remove()
	got, err = rt.Send(obj, "area")
	if err != nil {
		t.Fatalf("Send after remove: %v", err)
	}
	if got.Int64() != 42 {
		t.Errorf("expected 42 after removal, got %d", got.Int64())
	}
}

// TestApplyAllOrNothing verifies a failing entry unwinds the earlier
// ones.
func TestApplyAllOrNothing(t *testing.T) {
	rt, name := newRuntime(t)
	set := &hookset.Set{Hooks: []hookset.Entry{
		{Class: name, Selector: "area", Position: "instead", Script: doubleScript},
		{Class: "NoSuchClass", Selector: "area", Script: doubleScript},
	}}

	if _, err := hookset.Apply(rt, set); !errors.Is(err, hookset.ErrUnknownClass) {
		t.Fatalf("expected ErrUnknownClass, got %v", err)
	}

	got, err := rt.Send(rt.Lookup(name).New(), "area")
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if got.Int64() != 42 {
		t.Errorf("expected first hook rolled back, got %d", got.Int64())
	}
}

// TestWatcherReloadFailures verifies the documented failure modes: a
// file that fails to parse keeps the previous hooks, while a set that
// parses but fails to apply leaves no hooks installed.
func TestWatcherReloadFailures(t *testing.T) {
	rt, name := newRuntime(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "hooks.toml")

	goodSet := fmt.Sprintf("[[hooks]]\nclass = %q\nselector = \"area\"\nposition = \"instead\"\nscript = '''%s'''\n", name, doubleScript)
	if err := os.WriteFile(path, []byte(goodSet), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	logs := make(chan string, 16)
	logf := func(format string, args ...any) {
		logs <- fmt.Sprintf(format, args...)
	}
	w, err := hookset.NewWatcher(rt, path, logf)
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	defer w.Close()

	waitLog := func(substr string) {
		t.Helper()
		deadline := time.After(5 * time.Second)
		for {
			select {
			case msg := <-logs:
				if strings.Contains(msg, substr) {
					return
				}
			case <-deadline:
				t.Fatalf("no %q log line", substr)
			}
		}
	}

	obj := rt.Lookup(name).New()

	// Unparseable file: the previous hooks stay in place.
	if err := os.WriteFile(path, []byte("this is not toml"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	waitLog("reload skipped")
	if got := len(w.Tokens()); got != 1 {
		t.Errorf("expected previous set kept after parse failure, got %d tokens", got)
	}
	got, err := rt.Send(obj, "area")
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if got.Int64() != 84 {
		t.Errorf("expected previous hook still active, got %d", got.Int64())
	}

	// Parseable set that fails to apply: nothing stays installed.
	badClass := fmt.Sprintf("[[hooks]]\nclass = \"NoSuchClass\"\nselector = \"area\"\nscript = '''%s'''\n", doubleScript)
	if err := os.WriteFile(path, []byte(badClass), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	waitLog("reload failed")
	if got := w.Tokens(); got != nil {
		t.Errorf("expected no tokens after apply failure, got %d", len(got))
	}
	got2, err := rt.Send(obj, "area")
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if got2.Int64() != 42 {
		t.Errorf("expected original behavior after apply failure, got %d", got2.Int64())
	}
}

// TestWatcherReloadsOnWrite verifies the live-reload path swaps hook
// sets when the file changes.
func TestWatcherReloadsOnWrite(t *testing.T) {
	rt, name := newRuntime(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "hooks.toml")

	write := func(script string) {
		t.Helper()
		content := fmt.Sprintf("[[hooks]]\nclass = %q\nselector = \"area\"\nposition = \"instead\"\nscript = '''%s'''\n", name, script)
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("WriteFile: %v", err)
		}
	}
	write(doubleScript)

	w, err := hookset.NewWatcher(rt, path, t.Logf)
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	defer w.Close()

	obj := rt.Lookup(name).New()
	got, err := rt.Send(obj, "area")
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if got.Int64() != 84 {
		t.Fatalf("expected initial set applied, got %d", got.Int64())
	}

	write("function hook(call)\n    call.set_return(call.call_original() * 3)\nend")

	deadline := time.Now().Add(5 * time.Second)
	for {
		got, err = rt.Send(obj, "area")
		if err != nil {
			t.Fatalf("Send: %v", err)
		}
		if got.Int64() == 126 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("reload never took effect, last result %d", got.Int64())
		}
		time.Sleep(20 * time.Millisecond)
	}

	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := w.Close(); !errors.Is(err, hookset.ErrWatcherClosed) {
		t.Errorf("expected ErrWatcherClosed on second close, got %v", err)
	}

	got, err = rt.Send(obj, "area")
	if err != nil {
		t.Fatalf("Send after close: %v", err)
	}
	if got.Int64() != 42 {
		t.Errorf("expected hooks removed on close, got %d", got.Int64())
	}
}

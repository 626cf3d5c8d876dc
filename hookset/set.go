// Package hookset loads declarative hook sets from TOML or YAML files
// and applies them to a runtime as Lua-scripted hooks. Application is
// all-or-nothing, and a Watcher can keep a live runtime in sync with a
// hook set file as it is edited.
package hookset

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/dshills/splice"
)

// Entry describes one hook: the class and selector to intercept, where
// the handler runs, and the Lua script implementing it.
type Entry struct {
	// Class is the runtime class name to hook.
	Class string `toml:"class" yaml:"class"`

	// Selector is the method to intercept.
	Selector string `toml:"selector" yaml:"selector"`

	// Position is one of "before", "instead", "after".
	Position string `toml:"position" yaml:"position"`

	// Once detaches the hook after its first invocation.
	Once bool `toml:"once" yaml:"once"`

	// Script is the Lua source; it must define hook(call).
	Script string `toml:"script" yaml:"script"`
}

// Set is a parsed hook set file.
type Set struct {
	Hooks []Entry `toml:"hooks" yaml:"hooks"`
}

// Load reads and validates a hook set file, chosen by extension:
// .toml, .yaml, or .yml.
func Load(path string) (*Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("hookset: reading %s: %w", path, err)
	}
	return Parse(data, filepath.Ext(path))
}

// Parse decodes hook set data in the format named by ext.
func Parse(data []byte, ext string) (*Set, error) {
	var set Set
	switch strings.ToLower(ext) {
	case ".toml":
		if err := toml.Unmarshal(data, &set); err != nil {
			return nil, fmt.Errorf("hookset: parsing toml: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &set); err != nil {
			return nil, fmt.Errorf("hookset: parsing yaml: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, ext)
	}

	for i := range set.Hooks {
		if err := set.Hooks[i].validate(); err != nil {
			return nil, fmt.Errorf("hook %d: %w", i, err)
		}
	}
	return &set, nil
}

func (e *Entry) validate() error {
	if e.Class == "" || e.Selector == "" || e.Script == "" {
		return fmt.Errorf("%w: class, selector, and script are required", ErrInvalidEntry)
	}
	if _, err := e.option(); err != nil {
		return err
	}
	return nil
}

// option maps the entry's position and once fields to a hook Option.
func (e *Entry) option() (splice.Option, error) {
	var opt splice.Option
	switch strings.ToLower(e.Position) {
	case "before", "":
		opt = splice.Before
	case "instead":
		opt = splice.Instead
	case "after":
		opt = splice.After
	default:
		return 0, fmt.Errorf("%w: position %q", ErrInvalidEntry, e.Position)
	}
	if e.Once {
		opt |= splice.Once
	}
	return opt, nil
}

// Package config loads linter configuration: which global variables exist
// for a project and whether they may be assigned.
//
// The configuration file is JSON with two optional keys. "global-groups"
// selects built-in groups of globals (true for all, false for none, or a
// group name or array of group names). "globals" adds or removes individual
// names: true declares a writable global, false removes the name even when a
// group provides it, and an object form carries a "writable" flag.
package config

import (
	"crypto/sha256"
	"fmt"
	"os"

	"github.com/A-thanasios/quick-lint-js/jsontree"
)

// Global describes one known global variable.
type Global struct {
	// Writable is false for globals like undefined that must not be
	// assigned.
	Writable bool
}

// Config resolves global variable names for the linter.
type Config struct {
	groups    []string
	overrides map[string]Global
	removed   map[string]bool
	hash      string
}

// Default returns the configuration used when no config file is present:
// every built-in global group enabled and no overrides.
func Default() *Config {
	return &Config{
		groups:    defaultGroupNames(),
		overrides: map[string]Global{},
		removed:   map[string]bool{},
		hash:      "default",
	}
}

// Parse builds a Config from raw configuration JSON.
func Parse(raw []byte) (*Config, error) {
	cfg, err := parse(raw)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// Load reads and parses the configuration file at path.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read: %w", err)
	}
	cfg, err := parse(raw)
	if err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// LookupGlobal reports whether name is a known global under this
// configuration. Explicit overrides win over group membership, and a
// removed name stays unknown even when a group provides it.
func (c *Config) LookupGlobal(name string) (Global, bool) {
	if c.removed[name] {
		return Global{}, false
	}
	if g, ok := c.overrides[name]; ok {
		return g, true
	}
	for _, group := range c.groups {
		if g, ok := globalGroups[group][name]; ok {
			return g, true
		}
	}
	return Global{}, false
}

// Hash identifies the configuration contents, for use in cache keys.
func (c *Config) Hash() string {
	return c.hash
}

func parse(raw []byte) (*Config, error) {
	root, err := jsontree.ParseBytes(raw)
	if err != nil {
		return nil, err
	}
	if root.Kind() != jsontree.KindObject {
		return nil, fmt.Errorf("root must be an object, got %s", root.Kind())
	}
	cfg := &Config{
		groups:    defaultGroupNames(),
		overrides: map[string]Global{},
		removed:   map[string]bool{},
		hash:      fmt.Sprintf("%x", sha256.Sum256(raw)),
	}
	if v, ok := root.Get("global-groups"); ok {
		groups, err := parseGroups(v)
		if err != nil {
			return nil, err
		}
		cfg.groups = groups
	}
	if v, ok := root.Get("globals"); ok {
		if err := cfg.parseGlobals(v); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

func parseGroups(v *jsontree.Value) ([]string, error) {
	switch v.Kind() {
	case jsontree.KindBool:
		all, _ := v.BoolValue()
		if all {
			return defaultGroupNames(), nil
		}
		return nil, nil
	case jsontree.KindString:
		name, _ := v.StringValue()
		if err := checkGroupName(name); err != nil {
			return nil, err
		}
		return []string{name}, nil
	case jsontree.KindArray:
		groups := make([]string, 0, v.Len())
		for _, item := range v.Items() {
			name, err := item.StringValue()
			if err != nil {
				return nil, fmt.Errorf("global-groups entries must be strings, got %s", item.Kind())
			}
			if err := checkGroupName(name); err != nil {
				return nil, err
			}
			groups = append(groups, name)
		}
		return groups, nil
	default:
		return nil, fmt.Errorf("global-groups must be a boolean, string, or array, got %s", v.Kind())
	}
}

func checkGroupName(name string) error {
	if _, ok := globalGroups[name]; !ok {
		return fmt.Errorf("unknown global group %q", name)
	}
	return nil
}

func (c *Config) parseGlobals(v *jsontree.Value) error {
	if v.Kind() != jsontree.KindObject {
		return fmt.Errorf("globals must be an object, got %s", v.Kind())
	}
	var entryErr error
	v.Visit(func(name string, spec *jsontree.Value) bool {
		switch spec.Kind() {
		case jsontree.KindBool:
			keep, _ := spec.BoolValue()
			if keep {
				c.overrides[name] = Global{Writable: true}
			} else {
				c.removed[name] = true
			}
		case jsontree.KindObject:
			g := Global{Writable: true}
			if w, ok := spec.Get("writable"); ok {
				writable, err := w.BoolValue()
				if err != nil {
					entryErr = fmt.Errorf("globals[%q].writable must be a boolean, got %s", name, w.Kind())
					return false
				}
				g.Writable = writable
			}
			c.overrides[name] = g
		default:
			entryErr = fmt.Errorf("globals[%q] must be a boolean or an object, got %s", name, spec.Kind())
			return false
		}
		return true
	})
	return entryErr
}

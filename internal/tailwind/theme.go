package tailwind

import (
	"strings"
)

// ThemeEntry is one theme variable, e.g. --color-red-500
type ThemeEntry struct {
	Name  string
	Value string
}

// Theme holds theme variables in declaration order
type Theme struct {
	entries []ThemeEntry
	index   map[string]int
}

// nestedNamespaces lists namespaces that share a prefix with a shorter one.
// Keys("--font") must not report "weight-bold".
var nestedNamespaces = map[string][]string{
	"--font": {"--font-weight"},
	"--text": {"--text-shadow"},
}

// NewTheme creates an empty theme
func NewTheme() *Theme {
	return &Theme{index: make(map[string]int)}
}

// Add sets a variable. "initial" removes it; "--ns-*: initial" clears
// the whole namespace.
func (t *Theme) Add(name, value string) {
	if value == "initial" {
		if ns, ok := strings.CutSuffix(name, "-*"); ok {
			t.clearNamespace(ns)
			return
		}
		t.remove(name)
		return
	}

	if i, ok := t.index[name]; ok {
		t.entries[i].Value = value
		return
	}
	t.index[name] = len(t.entries)
	t.entries = append(t.entries, ThemeEntry{Name: name, Value: value})
}

// Get returns the value of a full variable name
func (t *Theme) Get(name string) (string, bool) {
	i, ok := t.index[name]
	if !ok {
		return "", false
	}
	return t.entries[i].Value, true
}

// Resolve finds key in the first namespace that defines it and returns the
// full variable name.
func (t *Theme) Resolve(key string, namespaces ...string) (string, bool) {
	for _, ns := range namespaces {
		name := ns + "-" + key
		if _, ok := t.index[name]; ok {
			return name, true
		}
	}
	return "", false
}

// Keys lists the keys of a namespace in declaration order, skipping
// sub-properties like --text-xs--line-height.
func (t *Theme) Keys(namespace string) []string {
	prefix := namespace + "-"
	var keys []string

outer:
	for _, e := range t.entries {
		if !strings.HasPrefix(e.Name, prefix) {
			continue
		}
		for _, nested := range nestedNamespaces[namespace] {
			if strings.HasPrefix(e.Name, nested+"-") {
				continue outer
			}
		}
		key := strings.TrimPrefix(e.Name, prefix)
		if key == "" || strings.Contains(key, "--") {
			continue
		}
		keys = append(keys, key)
	}
	return keys
}

// Entries returns a copy of all variables
func (t *Theme) Entries() []ThemeEntry {
	out := make([]ThemeEntry, len(t.entries))
	copy(out, t.entries)
	return out
}

func (t *Theme) remove(name string) {
	i, ok := t.index[name]
	if !ok {
		return
	}
	t.entries = append(t.entries[:i], t.entries[i+1:]...)
	t.reindex()
}

func (t *Theme) clearNamespace(ns string) {
	kept := t.entries[:0]
	for _, e := range t.entries {
		if e.Name == ns || strings.HasPrefix(e.Name, ns+"-") {
			continue
		}
		kept = append(kept, e)
	}
	t.entries = kept
	t.reindex()
}

func (t *Theme) reindex() {
	t.index = make(map[string]int, len(t.entries))
	for i, e := range t.entries {
		t.index[e.Name] = i
	}
}

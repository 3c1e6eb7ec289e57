package tailwind

import (
	"strings"
	"sync"

	"github.com/yacobolo/twbridge/internal/cssast"
)

// ClassEntry is one class offered for completion
type ClassEntry struct {
	Name      string
	Modifiers []string // Opacity steps for color utilities
}

// DesignSystem answers questions about the utilities a stylesheet defines
type DesignSystem struct {
	engine

	once      sync.Once
	classList []ClassEntry
}

// LoadDesignSystem compiles css and returns its design system
func LoadDesignSystem(css string, opts Options) (*DesignSystem, error) {
	sheet, err := Compile(css, opts)
	if err != nil {
		return nil, err
	}
	return &DesignSystem{engine: sheet.engine}, nil
}

// CandidatesToCSS returns the CSS of each candidate, index for index.
// Unrecognised candidates map to "".
func (d *DesignSystem) CandidatesToCSS(candidates []string) []string {
	out := make([]string, len(candidates))
	for i, raw := range candidates {
		if g, ok := d.compileCandidate(raw); ok {
			out[i] = cssast.ToCSS([]cssast.Node{g.node})
		}
	}
	return out
}

// CompileCandidate returns the generated tree for one candidate
func (d *DesignSystem) CompileCandidate(raw string) (*cssast.Root, bool) {
	g, ok := d.compileCandidate(raw)
	if !ok {
		return nil, false
	}
	return &cssast.Root{Nodes: []cssast.Node{g.node}}, true
}

// ParseCandidate parses a class without compiling it
func (d *DesignSystem) ParseCandidate(raw string) (*Candidate, bool) {
	return d.parseCandidate(raw)
}

// ClassList enumerates the completable classes, without the prefix. The
// list is computed once.
func (d *DesignSystem) ClassList() []ClassEntry {
	d.once.Do(func() {
		d.classList = d.buildClassList()
	})
	return d.classList
}

func (d *DesignSystem) buildClassList() []ClassEntry {
	var out []ClassEntry
	seen := make(map[string]bool)

	withPrefix := func(name string) string {
		if d.prefix != "" {
			return d.prefix + ":" + name
		}
		return name
	}
	add := func(name string, modifiers []string) {
		if seen[name] {
			return
		}
		seen[name] = true
		out = append(out, ClassEntry{Name: name, Modifiers: modifiers})
	}

	for _, u := range d.utilities.all {
		if u.compile == nil {
			add(u.name, nil)
			continue
		}

		if u.bare {
			add(u.name, nil)
		}
		if u.suggest == nil {
			continue
		}

		for _, v := range u.suggest(d.theme) {
			name := u.name + "-" + v
			c, ok := d.parseCandidate(withPrefix(name))
			if !ok || len(d.utilities.compileUtility(c, d.theme)) == 0 {
				continue
			}
			var m []string
			if u.colors && isColorCandidate(c, d.theme) {
				m = opacitySteps
			}
			add(name, m)
			if u.negative && v != "0" && isNumber(v) {
				add("-"+name, nil)
			}
		}
	}
	return out
}

func isColorCandidate(c *Candidate, t *Theme) bool {
	if c.Value == nil || c.Value.Kind != ValueNamed {
		return false
	}
	_, ok := t.Resolve(c.Value.Value, "--color")
	return ok || c.Value.Value == "current" || c.Value.Value == "transparent"
}

// Variants returns the registered variants in sort order
func (d *DesignSystem) Variants() []*Variant {
	return append([]*Variant(nil), d.variants.list...)
}

// VariantOrder returns the sort position of a variant by name
func (d *DesignSystem) VariantOrder(name string) (int, bool) {
	v, ok := d.variants.byName[name]
	if !ok {
		return 0, false
	}
	return v.Order, true
}

// CandidateVariantOrder returns the sort position of each variant of raw, in
// source order. Arbitrary variants sort last.
func (d *DesignSystem) CandidateVariantOrder(raw string) ([]int, bool) {
	c, ok := d.parseCandidate(raw)
	if !ok {
		return nil, false
	}
	out := make([]int, len(c.Variants))
	for i, cv := range c.Variants {
		out[i] = d.variants.order(cv)
	}
	return out, true
}

// Theme returns the resolved theme
func (d *DesignSystem) Theme() *Theme {
	return d.theme
}

// Prefix returns the class prefix, or ""
func (d *DesignSystem) Prefix() string {
	return d.prefix
}

// ResolveThemeValue looks up a theme variable by CSS name (--color-red-500)
// or dotted path (color.red.500). Values referencing other variables are
// resolved recursively.
func (d *DesignSystem) ResolveThemeValue(path string) (string, bool) {
	name := path
	if !strings.HasPrefix(name, "--") {
		name = "--" + strings.ReplaceAll(path, ".", "-")
	}
	return d.resolveVar(name, 0)
}

func (d *DesignSystem) resolveVar(name string, depth int) (string, bool) {
	value, ok := d.theme.Get(name)
	if !ok || depth > 8 {
		return "", false
	}
	if inner, ok := strings.CutPrefix(value, "var("); ok && strings.HasSuffix(inner, ")") {
		ref := strings.TrimSuffix(inner, ")")
		if resolved, ok := d.resolveVar(ref, depth+1); ok {
			return resolved, true
		}
	}
	return value, true
}

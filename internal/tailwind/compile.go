// Package tailwind is a compact utility-class compiler. It understands the
// stylesheet directives (@import, @theme, @utility, @custom-variant,
// @tailwind utilities, @apply) and a representative set of utilities and
// variants.
package tailwind

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/yacobolo/twbridge/internal/cssast"
	"github.com/yacobolo/twbridge/internal/stylesheet"
)

const maxImportDepth = 32

// ErrImportDepth is returned for import chains deeper than maxImportDepth,
// which in practice means a cycle.
var ErrImportDepth = errors.New("import depth exceeded")

// Loader resolves @import and @plugin identifiers
type Loader interface {
	LoadStylesheet(id, base string) (stylesheet.Resource, error)
	LoadModule(id, base string) error
}

// Options configure compilation
type Options struct {
	Base   string // Directory imports of the entry stylesheet resolve against
	Loader Loader
}

// engine holds everything needed to turn candidates into CSS
type engine struct {
	theme     *Theme
	utilities *utilityRegistry
	variants  *variantRegistry
	prefix    string
}

// Stylesheet is a compiled stylesheet ready to generate utilities
type Stylesheet struct {
	engine
	nodes []cssast.Node
}

type customVariant struct {
	name string
	body string
}

type customUtility struct {
	name string
	body []cssast.Node
}

// compiler carries state across one Compile call
type compiler struct {
	loader     Loader
	prefix     string
	theme      *Theme
	reference  map[string]bool
	variants   []customVariant
	utilities  []customUtility
	themeFound bool
}

// Compile parses css, resolves its imports and collects theme variables,
// custom utilities and custom variants.
func Compile(css string, opts Options) (*Stylesheet, error) {
	root, err := cssast.Parse(css)
	if err != nil {
		return nil, fmt.Errorf("parse stylesheet: %w", err)
	}

	c := &compiler{
		loader:    opts.Loader,
		theme:     NewTheme(),
		reference: make(map[string]bool),
	}

	nodes, err := c.resolveImports(root.Nodes, opts.Base, 0)
	if err != nil {
		return nil, err
	}

	nodes, err = c.collect(nodes)
	if err != nil {
		return nil, err
	}

	e := engine{
		theme:     c.theme,
		utilities: newUtilityRegistry(),
		variants:  newVariantRegistry(),
		prefix:    c.prefix,
	}
	registerVariants(e.variants, e.theme)
	registerUtilities(e.utilities)

	for _, cv := range c.variants {
		e.variants.static(cv.name, cv.body)
	}
	for _, cu := range c.utilities {
		u, ok := newCustomUtility(cu.name, cu.body)
		if !ok {
			return nil, fmt.Errorf("invalid @utility name %q", cu.name)
		}
		if u.compile == nil {
			e.utilities.addStatic(u.name, u.decls...)
		} else {
			e.utilities.addFunctional(u)
		}
	}

	nodes = replaceThemeMarker(nodes, c.themeRule())

	nodes, err = e.expandApply(nodes)
	if err != nil {
		return nil, err
	}

	return &Stylesheet{engine: e, nodes: nodes}, nil
}

func (c *compiler) resolveImports(nodes []cssast.Node, base string, depth int) ([]cssast.Node, error) {
	if depth > maxImportDepth {
		return nil, ErrImportDepth
	}

	out := make([]cssast.Node, 0, len(nodes))
	for _, n := range nodes {
		at, ok := n.(*cssast.AtRule)
		if !ok || at.Name != "import" || at.Block {
			out = append(out, n)
			continue
		}

		imp, ok := parseImport(at.Params)
		if !ok || imp.remote() {
			out = append(out, n)
			continue
		}
		if c.loader == nil {
			return nil, fmt.Errorf("import %q: no stylesheet loader", imp.id)
		}

		res, err := c.loader.LoadStylesheet(imp.id, base)
		if err != nil {
			return nil, fmt.Errorf("import %q: %w", imp.id, err)
		}
		sub, err := cssast.Parse(res.Content)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", res.Path, err)
		}
		children, err := c.resolveImports(sub.Nodes, res.Base, depth+1)
		if err != nil {
			return nil, err
		}

		if imp.prefix != "" {
			c.prefix = imp.prefix
		}
		if imp.layer != "" {
			out = append(out, cssast.NewAtRule("layer", imp.layer, children...))
		} else {
			out = append(out, children...)
		}
	}
	return out, nil
}

type importParams struct {
	id     string
	layer  string
	prefix string
}

func (i importParams) remote() bool {
	return strings.HasPrefix(i.id, "http://") ||
		strings.HasPrefix(i.id, "https://") ||
		strings.HasPrefix(i.id, "//")
}

// parseImport reads `"id" layer(name) prefix(p)`, also accepting url(...)
func parseImport(params string) (importParams, bool) {
	var imp importParams
	rest := strings.TrimSpace(params)

	if inner, ok := strings.CutPrefix(rest, "url("); ok {
		end := strings.IndexByte(inner, ')')
		if end < 0 {
			return imp, false
		}
		imp.id = strings.Trim(strings.TrimSpace(inner[:end]), `"'`)
		rest = inner[end+1:]
	} else {
		if rest == "" || (rest[0] != '"' && rest[0] != '\'') {
			return imp, false
		}
		end := strings.IndexByte(rest[1:], rest[0])
		if end < 0 {
			return imp, false
		}
		imp.id = rest[1 : end+1]
		rest = rest[end+2:]
	}

	imp.layer = functionArg(rest, "layer")
	imp.prefix = functionArg(rest, "prefix")
	return imp, imp.id != ""
}

func functionArg(s, name string) string {
	i := strings.Index(s, name+"(")
	if i < 0 {
		return ""
	}
	s = s[i+len(name)+1:]
	end := strings.IndexByte(s, ')')
	if end < 0 {
		return ""
	}
	return strings.TrimSpace(s[:end])
}

// collect strips compile-time directives from the tree, recording what they
// declare. The first @theme block is replaced by a marker where the final
// theme is emitted.
func (c *compiler) collect(nodes []cssast.Node) ([]cssast.Node, error) {
	out := make([]cssast.Node, 0, len(nodes))

	for _, n := range nodes {
		at, ok := n.(*cssast.AtRule)
		if !ok {
			out = append(out, n)
			continue
		}

		switch at.Name {
		case "theme":
			c.addTheme(at)
			if !c.themeFound {
				c.themeFound = true
				out = append(out, themeMarker)
			}
			continue

		case "utility":
			if !at.Block {
				return nil, fmt.Errorf("@utility %q needs a body", at.Params)
			}
			c.utilities = append(c.utilities, customUtility{name: at.Params, body: declarationsOnly(at.Nodes)})
			continue

		case "custom-variant":
			if at.Block {
				return nil, fmt.Errorf("@custom-variant %q: only the shorthand form is supported", at.Params)
			}
			name, body, ok := parseCustomVariant(at.Params)
			if !ok {
				return nil, fmt.Errorf("invalid @custom-variant %q", at.Params)
			}
			c.variants = append(c.variants, customVariant{name: name, body: body})
			continue

		case "plugin", "config":
			id := strings.Trim(at.Params, `"'`)
			if c.loader == nil {
				return nil, fmt.Errorf("@%s %q: no module loader", at.Name, id)
			}
			if err := c.loader.LoadModule(id, "/"); err != nil {
				return nil, fmt.Errorf("@%s %q: %w", at.Name, id, err)
			}
			continue

		case "source":
			continue
		}

		if at.Block {
			children, err := c.collect(at.Nodes)
			if err != nil {
				return nil, err
			}
			cp := *at
			cp.Nodes = children
			n = &cp
		}
		out = append(out, n)
	}
	return out, nil
}

func (c *compiler) addTheme(at *cssast.AtRule) {
	opts := strings.Fields(at.Params)
	has := func(o string) bool {
		for _, v := range opts {
			if v == o {
				return true
			}
		}
		return false
	}

	for _, d := range cssast.Declarations(at.Nodes) {
		if !strings.HasPrefix(d.Property, "--") {
			continue
		}
		if has("default") {
			if _, exists := c.theme.Get(d.Property); exists {
				continue
			}
		}
		c.theme.Add(d.Property, d.Value)
		if has("reference") {
			c.reference[d.Property] = true
		} else {
			delete(c.reference, d.Property)
		}
	}
}

// themeMarker is a placeholder at-rule never printed
var themeMarker = &cssast.AtRule{Name: "tailwind", Params: "theme"}

func (c *compiler) themeRule() cssast.Node {
	var decls []cssast.Node
	for _, e := range c.theme.Entries() {
		if c.reference[e.Name] {
			continue
		}
		decls = append(decls, cssast.Decl(e.Name, e.Value))
	}
	if len(decls) == 0 {
		return nil
	}
	return cssast.NewRule(":root, :host", decls...)
}

func replaceThemeMarker(nodes []cssast.Node, rule cssast.Node) []cssast.Node {
	out := make([]cssast.Node, 0, len(nodes))
	for _, n := range nodes {
		if n == themeMarker {
			if rule != nil {
				out = append(out, rule)
			}
			continue
		}
		if at, ok := n.(*cssast.AtRule); ok && at.Block {
			cp := *at
			cp.Nodes = replaceThemeMarker(at.Nodes, rule)
			n = &cp
		}
		out = append(out, n)
	}
	return out
}

func declarationsOnly(nodes []cssast.Node) []cssast.Node {
	var out []cssast.Node
	for _, n := range nodes {
		if d, ok := n.(*cssast.Declaration); ok {
			out = append(out, d)
		}
	}
	return out
}

// expandApply replaces @apply inside rules with the declarations of the
// listed utilities.
func (e *engine) expandApply(nodes []cssast.Node) ([]cssast.Node, error) {
	out := make([]cssast.Node, 0, len(nodes))
	for _, n := range nodes {
		switch v := n.(type) {
		case *cssast.AtRule:
			if v.Name == "apply" && !v.Block {
				applied, err := e.applyCandidates(v.Params)
				if err != nil {
					return nil, err
				}
				out = append(out, applied...)
				continue
			}
			if v.Block {
				children, err := e.expandApply(v.Nodes)
				if err != nil {
					return nil, err
				}
				cp := *v
				cp.Nodes = children
				n = &cp
			}
		case *cssast.Rule:
			children, err := e.expandApply(v.Nodes)
			if err != nil {
				return nil, err
			}
			cp := *v
			cp.Nodes = children
			n = &cp
		}
		out = append(out, n)
	}
	return out, nil
}

func (e *engine) applyCandidates(params string) ([]cssast.Node, error) {
	var out []cssast.Node
	for _, raw := range strings.Fields(params) {
		c, ok := e.parseCandidate(raw)
		if !ok {
			return nil, fmt.Errorf("cannot apply unknown utility class %q", raw)
		}
		if len(c.Variants) > 0 {
			return nil, fmt.Errorf("cannot apply %q: variants are not supported in @apply", raw)
		}
		body := e.utilities.compileUtility(c, e.theme)
		if len(body) == 0 {
			return nil, fmt.Errorf("cannot apply unknown utility class %q", raw)
		}
		if c.Important {
			markImportant(body)
		}
		out = append(out, body...)
	}
	return out, nil
}

func markImportant(nodes []cssast.Node) {
	for _, n := range nodes {
		if d, ok := n.(*cssast.Declaration); ok {
			d.Important = true
		}
	}
}

// generated is the compiled form of one candidate
type generated struct {
	candidate *Candidate
	node      cssast.Node
	mask      uint64
	order     int
}

// compileCandidate turns raw into a rule wrapped in its variant at-rules
func (e *engine) compileCandidate(raw string) (*generated, bool) {
	c, ok := e.parseCandidate(raw)
	if !ok {
		return nil, false
	}

	body := e.utilities.compileUtility(c, e.theme)
	if len(body) == 0 {
		return nil, false
	}
	if c.Important {
		markImportant(body)
	}

	selector := "." + EscapeClassName(raw)
	var wrappers []string
	var mask uint64

	for _, cv := range c.Variants {
		templates, ok := e.variants.templates(cv)
		if !ok || len(templates) == 0 {
			return nil, false
		}
		for _, t := range templates {
			if strings.HasPrefix(t, "@") {
				wrappers = append(wrappers, t)
				continue
			}
			selector = applySelector(t, selector)
		}

		bit := e.variants.order(cv)
		if bit > 63 {
			bit = 63
		}
		mask |= 1 << uint(bit)
	}

	var node cssast.Node = cssast.NewRule(selector, body...)
	for i := len(wrappers) - 1; i >= 0; i-- {
		name, params := splitWrapper(wrappers[i])
		node = cssast.NewAtRule(name, params, node)
	}

	order := len(e.utilities.all)
	if u, ok := e.utilities.lookup(c); ok && c.Kind != CandidateArbitrary {
		order = u.order
	}

	return &generated{candidate: c, node: node, mask: mask, order: order}, true
}

func applySelector(template, selector string) string {
	if len(segment(selector, ',')) > 1 {
		selector = ":is(" + selector + ")"
	}
	return strings.ReplaceAll(template, "&", selector)
}

// splitWrapper splits "@media (hover: hover)" into "media" and the params
func splitWrapper(t string) (string, string) {
	t = strings.TrimPrefix(t, "@")
	i := strings.IndexAny(t, " (")
	if i < 0 {
		return t, ""
	}
	return t[:i], strings.TrimSpace(t[i:])
}

// generate compiles candidates in sort order: variant mask, utility order,
// then name. Invalid and duplicate candidates are skipped.
func (e *engine) generate(candidates []string) []cssast.Node {
	seen := make(map[string]bool, len(candidates))
	var rules []*generated

	for _, raw := range candidates {
		if seen[raw] {
			continue
		}
		seen[raw] = true
		if g, ok := e.compileCandidate(raw); ok {
			rules = append(rules, g)
		}
	}

	sort.SliceStable(rules, func(i, j int) bool {
		a, b := rules[i], rules[j]
		if a.mask != b.mask {
			return a.mask < b.mask
		}
		if a.order != b.order {
			return a.order < b.order
		}
		return a.candidate.Raw < b.candidate.Raw
	})

	out := make([]cssast.Node, len(rules))
	for i, g := range rules {
		out[i] = g.node
	}
	return out
}

// Build generates utilities for candidates and prints the whole stylesheet
func (s *Stylesheet) Build(candidates []string) string {
	rules := s.generate(candidates)
	nodes, _ := replaceUtilitiesMarker(s.nodes, rules)
	return cssast.ToCSS(nodes)
}

// Prefix returns the class prefix configured with @import ... prefix(p)
func (s *Stylesheet) Prefix() string {
	return s.prefix
}

func isUtilitiesMarker(n cssast.Node) bool {
	at, ok := n.(*cssast.AtRule)
	return ok && at.Name == "tailwind" && at.Params == "utilities" && !at.Block
}

// replaceUtilitiesMarker substitutes generated rules for every
// `@tailwind utilities;`, copying only the containers on the way.
func replaceUtilitiesMarker(nodes []cssast.Node, rules []cssast.Node) ([]cssast.Node, bool) {
	out := make([]cssast.Node, 0, len(nodes))
	found := false

	for _, n := range nodes {
		if isUtilitiesMarker(n) {
			out = append(out, rules...)
			found = true
			continue
		}
		if at, ok := n.(*cssast.AtRule); ok && at.Block {
			if children, ok := replaceUtilitiesMarker(at.Nodes, rules); ok {
				cp := *at
				cp.Nodes = children
				out = append(out, &cp)
				found = true
				continue
			}
		}
		out = append(out, n)
	}
	return out, found
}

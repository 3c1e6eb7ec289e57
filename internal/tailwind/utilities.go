package tailwind

import (
	"sort"
	"strconv"
	"strings"

	"github.com/yacobolo/twbridge/internal/cssast"
)

type compileFunc func(c *Candidate, t *Theme) []cssast.Node

type utility struct {
	name     string
	order    int
	decls    []cssast.Node // Static utilities
	compile  compileFunc   // Functional utilities
	negative bool          // Accepts a leading '-'
	bare     bool          // Valid without a value: "rounded", "border"
	suggest  func(t *Theme) []string
	colors   bool // Suggest opacity modifiers
}

type utilityRegistry struct {
	static     map[string]*utility
	functional map[string]*utility
	roots      []string // Functional roots, longest first
	all        []*utility
}

func newUtilityRegistry() *utilityRegistry {
	return &utilityRegistry{
		static:     make(map[string]*utility),
		functional: make(map[string]*utility),
	}
}

func (r *utilityRegistry) addStatic(name string, decls ...cssast.Node) {
	u := &utility{name: name, order: len(r.all), decls: decls}
	if old, ok := r.static[name]; ok {
		u.order = old.order
		r.all[old.order] = u
	} else {
		r.all = append(r.all, u)
	}
	r.static[name] = u
}

func (r *utilityRegistry) addFunctional(u *utility) {
	if old, ok := r.functional[u.name]; ok {
		u.order = old.order
		r.all[old.order] = u
	} else {
		u.order = len(r.all)
		r.all = append(r.all, u)
	}
	r.functional[u.name] = u

	r.roots = r.roots[:0]
	for name := range r.functional {
		r.roots = append(r.roots, name)
	}
	sort.Slice(r.roots, func(i, j int) bool {
		if len(r.roots[i]) != len(r.roots[j]) {
			return len(r.roots[i]) > len(r.roots[j])
		}
		return r.roots[i] < r.roots[j]
	})
}

func (r *utilityRegistry) lookup(c *Candidate) (*utility, bool) {
	if c.Kind == CandidateStatic {
		u, ok := r.static[c.Root]
		return u, ok
	}
	u, ok := r.functional[c.Root]
	return u, ok
}

// compileUtility produces the declarations of c, or nil when the value is
// not valid for the utility.
func (r *utilityRegistry) compileUtility(c *Candidate, t *Theme) []cssast.Node {
	if c.Kind == CandidateArbitrary {
		value := c.Value.Value
		if c.Modifier != nil {
			mixed, ok := withAlpha(value, c.Modifier)
			if !ok {
				return nil
			}
			value = mixed
		}
		return decls(c.Property, value)
	}

	u, ok := r.lookup(c)
	if !ok {
		return nil
	}
	if c.Kind == CandidateStatic {
		out := make([]cssast.Node, len(u.decls))
		for i, n := range u.decls {
			d := *n.(*cssast.Declaration)
			out[i] = &d
		}
		return out
	}
	if c.Value == nil && !u.bare {
		return nil
	}
	return u.compile(c, t)
}

func decls(pairs ...string) []cssast.Node {
	out := make([]cssast.Node, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, cssast.Decl(pairs[i], pairs[i+1]))
	}
	return out
}

func negate(value string, negative bool) string {
	if !negative {
		return value
	}
	if n, ok := strings.CutPrefix(value, "calc(var(--spacing) * "); ok {
		return "calc(var(--spacing) * -" + n
	}
	return "calc(" + value + " * -1)"
}

var spacingSuggestions = func() []string {
	out := []string{"0", "px", "0.5", "1", "1.5", "2", "2.5", "3", "3.5"}
	for _, n := range []int{4, 5, 6, 7, 8, 9, 10, 11, 12, 14, 16, 20, 24, 28, 32, 36, 40, 44, 48, 52, 56, 60, 64, 72, 80, 96} {
		out = append(out, strconv.Itoa(n))
	}
	return out
}()

var fractionSuggestions = []string{"1/2", "1/3", "2/3", "1/4", "2/4", "3/4", "1/5", "2/5", "3/5", "4/5", "1/6", "5/6"}

// spacing resolves a spacing-scale value: theme key, multiple of --spacing,
// keyword, fraction or arbitrary.
func spacing(v *Value, t *Theme, keywords map[string]string, fractions bool) (string, bool) {
	if v.Kind == ValueArbitrary {
		return v.Value, true
	}
	if kw, ok := keywords[v.Value]; ok {
		return kw, true
	}
	if v.Fraction {
		if !fractions {
			return "", false
		}
		return "calc(" + v.Value + " * 100%)", true
	}
	if name, ok := t.Resolve(v.Value, "--spacing"); ok {
		return "var(" + name + ")", true
	}
	if v.Value == "px" {
		return "1px", true
	}
	if isNumber(v.Value) && isQuarterStep(v.Value) {
		if _, ok := t.Get("--spacing"); !ok {
			return "", false
		}
		return "calc(var(--spacing) * " + v.Value + ")", true
	}
	return "", false
}

func isQuarterStep(s string) bool {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return false
	}
	q := f * 4
	return q == float64(int64(q))
}

func spacingUtility(name string, props []string, keywords map[string]string, fractions, negative bool) *utility {
	return &utility{
		name:     name,
		negative: negative,
		compile: func(c *Candidate, t *Theme) []cssast.Node {
			if c.Modifier != nil {
				return nil
			}
			v, ok := spacing(c.Value, t, keywords, fractions)
			if !ok {
				return nil
			}
			v = negate(v, c.Negative)
			out := make([]cssast.Node, len(props))
			for i, p := range props {
				out[i] = cssast.Decl(p, v)
			}
			return out
		},
		suggest: func(*Theme) []string {
			out := append([]string(nil), spacingSuggestions...)
			for kw := range keywords {
				out = append(out, kw)
			}
			if fractions {
				out = append(out, fractionSuggestions...)
			}
			return out
		},
	}
}

// color resolves a color value with an optional alpha modifier
func color(v *Value, modifier *Value, t *Theme) (string, bool) {
	if v.Kind == ValueArbitrary {
		if v.DataType != "" && v.DataType != "color" {
			return "", false
		}
		return withAlpha(v.Value, modifier)
	}

	var value string
	switch v.Value {
	case "inherit":
		value = "inherit"
	case "current":
		value = "currentcolor"
	case "transparent":
		value = "transparent"
	default:
		name, ok := t.Resolve(v.Value, "--color")
		if !ok {
			return "", false
		}
		value = "var(" + name + ")"
	}
	return withAlpha(value, modifier)
}

func withAlpha(value string, modifier *Value) (string, bool) {
	if modifier == nil {
		return value, true
	}
	alpha := modifier.Value
	if modifier.Kind == ValueNamed {
		if !isNumber(alpha) {
			return "", false
		}
		alpha += "%"
	}
	return "color-mix(in oklab, " + value + " " + alpha + ", transparent)", true
}

func colorKeys(t *Theme) []string {
	return append([]string{"inherit", "current", "transparent"}, t.Keys("--color")...)
}

func colorUtility(name string, props ...string) *utility {
	return &utility{
		name:   name,
		colors: true,
		compile: func(c *Candidate, t *Theme) []cssast.Node {
			v, ok := color(c.Value, c.Modifier, t)
			if !ok {
				return nil
			}
			out := make([]cssast.Node, len(props))
			for i, p := range props {
				out[i] = cssast.Decl(p, v)
			}
			return out
		},
		suggest: colorKeys,
	}
}

// themeUtility maps theme keys of a namespace onto one property
func themeUtility(name, namespace, property string, bare string) *utility {
	return &utility{
		name: name,
		bare: bare != "",
		compile: func(c *Candidate, t *Theme) []cssast.Node {
			if c.Modifier != nil {
				return nil
			}
			if c.Value == nil {
				return decls(property, "var("+namespace+"-"+bare+")")
			}
			if c.Value.Kind == ValueArbitrary {
				return decls(property, c.Value.Value)
			}
			ref, ok := t.Resolve(c.Value.Value, namespace)
			if !ok {
				return nil
			}
			return decls(property, "var("+ref+")")
		},
		suggest: func(t *Theme) []string { return t.Keys(namespace) },
	}
}

func integerUtility(name, property string, negative bool, keywords map[string]string, format func(string) string) *utility {
	return &utility{
		name:     name,
		negative: negative,
		compile: func(c *Candidate, t *Theme) []cssast.Node {
			if c.Modifier != nil {
				return nil
			}
			v := c.Value
			switch {
			case v.Kind == ValueArbitrary:
				return decls(property, negate(v.Value, c.Negative))
			case keywords[v.Value] != "":
				if c.Negative {
					return nil
				}
				return decls(property, keywords[v.Value])
			case isInteger(v.Value):
				out := v.Value
				if format != nil {
					out = format(out)
				}
				return decls(property, negate(out, c.Negative))
			}
			return nil
		},
		suggest: func(*Theme) []string {
			out := []string{"0", "1", "2", "3", "4", "5", "6", "8", "10", "12"}
			for kw := range keywords {
				out = append(out, kw)
			}
			return out
		},
	}
}

var (
	sizeKeywords = map[string]string{
		"auto": "auto", "full": "100%", "min": "min-content", "max": "max-content", "fit": "fit-content",
	}
	widthKeywords  = merge(sizeKeywords, map[string]string{"screen": "100vw", "dvw": "100dvw", "svw": "100svw", "lvw": "100lvw"})
	heightKeywords = merge(sizeKeywords, map[string]string{"screen": "100vh", "dvh": "100dvh", "svh": "100svh", "lvh": "100lvh"})
	insetKeywords  = map[string]string{"auto": "auto", "full": "100%"}
	marginKeywords = map[string]string{"auto": "auto"}
)

func merge(maps ...map[string]string) map[string]string {
	out := make(map[string]string)
	for _, m := range maps {
		for k, v := range m {
			out[k] = v
		}
	}
	return out
}

func radiusUtility(name string, corners ...string) *utility {
	return &utility{
		name: name,
		bare: true,
		compile: func(c *Candidate, t *Theme) []cssast.Node {
			if c.Modifier != nil {
				return nil
			}
			var v string
			switch {
			case c.Value == nil:
				v = "var(--radius-sm)"
			case c.Value.Kind == ValueArbitrary:
				v = c.Value.Value
			case c.Value.Value == "none":
				v = "0"
			case c.Value.Value == "full":
				v = "calc(infinity * 1px)"
			default:
				ref, ok := t.Resolve(c.Value.Value, "--radius")
				if !ok {
					return nil
				}
				v = "var(" + ref + ")"
			}
			out := make([]cssast.Node, len(corners))
			for i, p := range corners {
				out[i] = cssast.Decl(p, v)
			}
			return out
		},
		suggest: func(t *Theme) []string {
			return append([]string{"none", "full"}, t.Keys("--radius")...)
		},
	}
}

// registerUtilities installs the built-in utilities in their sort order
func registerUtilities(r *utilityRegistry) {
	display := func(name, value string) { r.addStatic(name, cssast.Decl("display", value)) }

	r.addStatic("sr-only",
		cssast.Decl("position", "absolute"),
		cssast.Decl("width", "1px"),
		cssast.Decl("height", "1px"),
		cssast.Decl("padding", "0"),
		cssast.Decl("margin", "-1px"),
		cssast.Decl("overflow", "hidden"),
		cssast.Decl("clip-path", "inset(50%)"),
		cssast.Decl("white-space", "nowrap"),
		cssast.Decl("border-width", "0"),
	)
	r.addStatic("pointer-events-none", cssast.Decl("pointer-events", "none"))
	r.addStatic("pointer-events-auto", cssast.Decl("pointer-events", "auto"))
	r.addStatic("visible", cssast.Decl("visibility", "visible"))
	r.addStatic("invisible", cssast.Decl("visibility", "hidden"))
	for _, p := range []string{"static", "fixed", "absolute", "relative", "sticky"} {
		r.addStatic(p, cssast.Decl("position", p))
	}

	r.addFunctional(spacingUtility("inset", []string{"inset"}, insetKeywords, true, true))
	r.addFunctional(spacingUtility("inset-x", []string{"inset-inline"}, insetKeywords, true, true))
	r.addFunctional(spacingUtility("inset-y", []string{"inset-block"}, insetKeywords, true, true))
	r.addFunctional(spacingUtility("top", []string{"top"}, insetKeywords, true, true))
	r.addFunctional(spacingUtility("right", []string{"right"}, insetKeywords, true, true))
	r.addFunctional(spacingUtility("bottom", []string{"bottom"}, insetKeywords, true, true))
	r.addFunctional(spacingUtility("left", []string{"left"}, insetKeywords, true, true))

	r.addFunctional(integerUtility("z", "z-index", true, map[string]string{"auto": "auto"}, nil))
	r.addFunctional(integerUtility("order", "order", true, map[string]string{"first": "-9999", "last": "9999", "none": "0"}, nil))
	r.addFunctional(integerUtility("col-span", "grid-column", false, map[string]string{"full": "1 / -1"}, func(n string) string {
		return "span " + n + " / span " + n
	}))
	r.addFunctional(integerUtility("row-span", "grid-row", false, map[string]string{"full": "1 / -1"}, func(n string) string {
		return "span " + n + " / span " + n
	}))

	r.addFunctional(spacingUtility("m", []string{"margin"}, marginKeywords, false, true))
	r.addFunctional(spacingUtility("mx", []string{"margin-inline"}, marginKeywords, false, true))
	r.addFunctional(spacingUtility("my", []string{"margin-block"}, marginKeywords, false, true))
	r.addFunctional(spacingUtility("mt", []string{"margin-top"}, marginKeywords, false, true))
	r.addFunctional(spacingUtility("mr", []string{"margin-right"}, marginKeywords, false, true))
	r.addFunctional(spacingUtility("mb", []string{"margin-bottom"}, marginKeywords, false, true))
	r.addFunctional(spacingUtility("ml", []string{"margin-left"}, marginKeywords, false, true))

	display("block", "block")
	display("inline-block", "inline-block")
	display("inline", "inline")
	display("flex", "flex")
	display("inline-flex", "inline-flex")
	display("table", "table")
	display("grid", "grid")
	display("inline-grid", "inline-grid")
	display("contents", "contents")
	display("hidden", "none")

	r.addFunctional(spacingUtility("size", []string{"width", "height"}, sizeKeywords, true, false))
	r.addFunctional(spacingUtility("w", []string{"width"}, widthKeywords, true, false))
	r.addFunctional(spacingUtility("min-w", []string{"min-width"}, widthKeywords, true, false))
	r.addFunctional(spacingUtility("max-w", []string{"max-width"}, merge(widthKeywords, map[string]string{"none": "none"}), true, false))
	r.addFunctional(spacingUtility("h", []string{"height"}, heightKeywords, true, false))
	r.addFunctional(spacingUtility("min-h", []string{"min-height"}, heightKeywords, true, false))
	r.addFunctional(spacingUtility("max-h", []string{"max-height"}, merge(heightKeywords, map[string]string{"none": "none"}), true, false))

	r.addStatic("flex-1", cssast.Decl("flex", "1"))
	r.addStatic("flex-auto", cssast.Decl("flex", "auto"))
	r.addStatic("flex-none", cssast.Decl("flex", "none"))
	r.addStatic("shrink", cssast.Decl("flex-shrink", "1"))
	r.addStatic("shrink-0", cssast.Decl("flex-shrink", "0"))
	r.addStatic("grow", cssast.Decl("flex-grow", "1"))
	r.addStatic("grow-0", cssast.Decl("flex-grow", "0"))
	r.addFunctional(spacingUtility("basis", []string{"flex-basis"}, map[string]string{"auto": "auto", "full": "100%"}, true, false))

	r.addStatic("cursor-pointer", cssast.Decl("cursor", "pointer"))
	r.addStatic("cursor-default", cssast.Decl("cursor", "default"))
	r.addStatic("cursor-not-allowed", cssast.Decl("cursor", "not-allowed"))
	r.addStatic("select-none", cssast.Decl("user-select", "none"))
	r.addStatic("select-text", cssast.Decl("user-select", "text"))
	r.addStatic("select-all", cssast.Decl("user-select", "all"))

	r.addFunctional(&utility{
		name: "grid-cols",
		compile: func(c *Candidate, _ *Theme) []cssast.Node {
			switch {
			case c.Modifier != nil:
				return nil
			case c.Value.Kind == ValueArbitrary:
				return decls("grid-template-columns", c.Value.Value)
			case c.Value.Value == "none":
				return decls("grid-template-columns", "none")
			case c.Value.Value == "subgrid":
				return decls("grid-template-columns", "subgrid")
			case isInteger(c.Value.Value) && c.Value.Value != "0":
				return decls("grid-template-columns", "repeat("+c.Value.Value+", minmax(0, 1fr))")
			}
			return nil
		},
		suggest: func(*Theme) []string {
			return []string{"1", "2", "3", "4", "5", "6", "7", "8", "9", "10", "11", "12", "none", "subgrid"}
		},
	})

	r.addStatic("flex-row", cssast.Decl("flex-direction", "row"))
	r.addStatic("flex-row-reverse", cssast.Decl("flex-direction", "row-reverse"))
	r.addStatic("flex-col", cssast.Decl("flex-direction", "column"))
	r.addStatic("flex-col-reverse", cssast.Decl("flex-direction", "column-reverse"))
	r.addStatic("flex-wrap", cssast.Decl("flex-wrap", "wrap"))
	r.addStatic("flex-nowrap", cssast.Decl("flex-wrap", "nowrap"))

	for _, a := range []string{"start", "end", "center", "baseline", "stretch"} {
		value := a
		if a == "start" || a == "end" {
			value = "flex-" + a
		}
		r.addStatic("items-"+a, cssast.Decl("align-items", value))
	}
	for _, j := range []string{"start", "end", "center", "between", "around", "evenly", "stretch"} {
		value := j
		switch j {
		case "start", "end":
			value = "flex-" + j
		case "between", "around", "evenly":
			value = "space-" + j
		}
		r.addStatic("justify-"+j, cssast.Decl("justify-content", value))
	}
	for _, s := range []string{"auto", "start", "end", "center", "stretch", "baseline"} {
		value := s
		if s == "start" || s == "end" {
			value = "flex-" + s
		}
		r.addStatic("self-"+s, cssast.Decl("align-self", value))
	}

	r.addFunctional(spacingUtility("gap", []string{"gap"}, nil, false, false))
	r.addFunctional(spacingUtility("gap-x", []string{"column-gap"}, nil, false, false))
	r.addFunctional(spacingUtility("gap-y", []string{"row-gap"}, nil, false, false))

	r.addStatic("truncate",
		cssast.Decl("overflow", "hidden"),
		cssast.Decl("text-overflow", "ellipsis"),
		cssast.Decl("white-space", "nowrap"),
	)
	for _, o := range []string{"auto", "hidden", "clip", "visible", "scroll"} {
		r.addStatic("overflow-"+o, cssast.Decl("overflow", o))
		r.addStatic("overflow-x-"+o, cssast.Decl("overflow-x", o))
		r.addStatic("overflow-y-"+o, cssast.Decl("overflow-y", o))
	}

	r.addFunctional(radiusUtility("rounded", "border-radius"))
	r.addFunctional(radiusUtility("rounded-t", "border-top-left-radius", "border-top-right-radius"))
	r.addFunctional(radiusUtility("rounded-r", "border-top-right-radius", "border-bottom-right-radius"))
	r.addFunctional(radiusUtility("rounded-b", "border-bottom-right-radius", "border-bottom-left-radius"))
	r.addFunctional(radiusUtility("rounded-l", "border-top-left-radius", "border-bottom-left-radius"))

	for _, s := range []string{"solid", "dashed", "dotted", "double", "hidden", "none"} {
		r.addStatic("border-"+s, cssast.Decl("border-style", s))
	}
	r.addFunctional(borderUtility("border", "border-width", "border-color"))
	r.addFunctional(borderUtility("border-x", "border-inline-width", "border-inline-color"))
	r.addFunctional(borderUtility("border-y", "border-block-width", "border-block-color"))
	r.addFunctional(borderUtility("border-t", "border-top-width", "border-top-color"))
	r.addFunctional(borderUtility("border-r", "border-right-width", "border-right-color"))
	r.addFunctional(borderUtility("border-b", "border-bottom-width", "border-bottom-color"))
	r.addFunctional(borderUtility("border-l", "border-left-width", "border-left-color"))

	r.addFunctional(colorUtility("bg", "background-color"))
	r.addFunctional(colorUtility("fill", "fill"))
	r.addFunctional(colorUtility("stroke", "stroke"))

	r.addFunctional(spacingUtility("p", []string{"padding"}, nil, false, false))
	r.addFunctional(spacingUtility("px", []string{"padding-inline"}, nil, false, false))
	r.addFunctional(spacingUtility("py", []string{"padding-block"}, nil, false, false))
	r.addFunctional(spacingUtility("pt", []string{"padding-top"}, nil, false, false))
	r.addFunctional(spacingUtility("pr", []string{"padding-right"}, nil, false, false))
	r.addFunctional(spacingUtility("pb", []string{"padding-bottom"}, nil, false, false))
	r.addFunctional(spacingUtility("pl", []string{"padding-left"}, nil, false, false))

	for _, a := range []string{"left", "center", "right", "justify", "start", "end"} {
		r.addStatic("text-"+a, cssast.Decl("text-align", a))
	}

	r.addFunctional(&utility{
		name: "font",
		compile: func(c *Candidate, t *Theme) []cssast.Node {
			if c.Modifier != nil {
				return nil
			}
			if c.Value.Kind == ValueArbitrary {
				if c.Value.DataType == "weight" || isInteger(c.Value.Value) {
					return decls("font-weight", c.Value.Value)
				}
				return decls("font-family", c.Value.Value)
			}
			if ref, ok := t.Resolve(c.Value.Value, "--font-weight"); ok {
				return decls("font-weight", "var("+ref+")")
			}
			if ref, ok := t.Resolve(c.Value.Value, "--font"); ok {
				return decls("font-family", "var("+ref+")")
			}
			return nil
		},
		suggest: func(t *Theme) []string {
			return append(t.Keys("--font"), t.Keys("--font-weight")...)
		},
	})

	r.addFunctional(&utility{
		name:   "text",
		colors: true,
		compile: func(c *Candidate, t *Theme) []cssast.Node {
			if out := textSize(c, t); out != nil {
				return out
			}
			v, ok := color(c.Value, c.Modifier, t)
			if !ok {
				return nil
			}
			return decls("color", v)
		},
		suggest: func(t *Theme) []string {
			return append(t.Keys("--text"), colorKeys(t)...)
		},
	})

	for _, tt := range []string{"uppercase", "lowercase", "capitalize"} {
		r.addStatic(tt, cssast.Decl("text-transform", tt))
	}
	r.addStatic("normal-case", cssast.Decl("text-transform", "none"))
	r.addStatic("italic", cssast.Decl("font-style", "italic"))
	r.addStatic("not-italic", cssast.Decl("font-style", "normal"))
	r.addStatic("underline", cssast.Decl("text-decoration-line", "underline"))
	r.addStatic("overline", cssast.Decl("text-decoration-line", "overline"))
	r.addStatic("line-through", cssast.Decl("text-decoration-line", "line-through"))
	r.addStatic("no-underline", cssast.Decl("text-decoration-line", "none"))
	r.addFunctional(colorUtility("decoration", "text-decoration-color"))
	r.addStatic("antialiased",
		cssast.Decl("-webkit-font-smoothing", "antialiased"),
		cssast.Decl("-moz-osx-font-smoothing", "grayscale"),
	)
	for _, ws := range []string{"normal", "nowrap", "pre", "pre-line", "pre-wrap", "break-spaces"} {
		r.addStatic("whitespace-"+ws, cssast.Decl("white-space", ws))
	}

	r.addFunctional(&utility{
		name: "leading",
		compile: func(c *Candidate, t *Theme) []cssast.Node {
			if c.Modifier != nil {
				return nil
			}
			if c.Value.Kind == ValueArbitrary {
				return decls("line-height", c.Value.Value)
			}
			if c.Value.Value == "none" {
				return decls("line-height", "1")
			}
			if ref, ok := t.Resolve(c.Value.Value, "--leading"); ok {
				return decls("line-height", "var("+ref+")")
			}
			if v, ok := spacing(c.Value, t, nil, false); ok {
				return decls("line-height", v)
			}
			return nil
		},
		suggest: func(t *Theme) []string {
			return append([]string{"none"}, t.Keys("--leading")...)
		},
	})
	tracking := themeUtility("tracking", "--tracking", "letter-spacing", "")
	tracking.negative = true
	inner := tracking.compile
	tracking.compile = func(c *Candidate, t *Theme) []cssast.Node {
		out := inner(c, t)
		if c.Negative {
			for _, n := range out {
				d := n.(*cssast.Declaration)
				d.Value = negate(d.Value, true)
			}
		}
		return out
	}
	r.addFunctional(tracking)

	r.addFunctional(colorUtility("accent", "accent-color"))
	r.addFunctional(colorUtility("caret", "caret-color"))

	r.addFunctional(&utility{
		name: "opacity",
		compile: func(c *Candidate, _ *Theme) []cssast.Node {
			switch {
			case c.Modifier != nil:
				return nil
			case c.Value.Kind == ValueArbitrary:
				return decls("opacity", c.Value.Value)
			case isNumber(c.Value.Value):
				return decls("opacity", c.Value.Value+"%")
			}
			return nil
		},
		suggest: func(*Theme) []string { return opacitySteps },
	})

	r.addFunctional(themeUtility("shadow", "--shadow", "box-shadow", "sm"))
	r.addStatic("shadow-none", cssast.Decl("box-shadow", "0 0 #0000"))

	r.addStatic("outline-none",
		cssast.Decl("outline", "2px solid transparent"),
		cssast.Decl("outline-offset", "2px"),
	)
	r.addFunctional(colorUtility("outline", "outline-color"))

	r.addStatic("transition",
		cssast.Decl("transition-property", "color, background-color, border-color, text-decoration-color, fill, stroke, opacity, box-shadow, transform"),
		cssast.Decl("transition-timing-function", "var(--default-transition-timing-function)"),
		cssast.Decl("transition-duration", "var(--default-transition-duration)"),
	)
	r.addStatic("transition-none", cssast.Decl("transition-property", "none"))
	r.addFunctional(integerUtility("duration", "transition-duration", false, nil, func(n string) string {
		return n + "ms"
	}))
}

var opacitySteps = func() []string {
	out := make([]string, 0, 21)
	for i := 0; i <= 100; i += 5 {
		out = append(out, strconv.Itoa(i))
	}
	return out
}()

func textSize(c *Candidate, t *Theme) []cssast.Node {
	var size string
	var lineHeight string

	switch {
	case c.Value.Kind == ValueArbitrary:
		switch c.Value.DataType {
		case "length", "size":
			size = c.Value.Value
		default:
			if !looksLikeLength(c.Value.Value) {
				return nil
			}
			size = c.Value.Value
		}
	default:
		ref, ok := t.Resolve(c.Value.Value, "--text")
		if !ok {
			return nil
		}
		size = "var(" + ref + ")"
		if _, ok := t.Get(ref + "--line-height"); ok {
			lineHeight = "var(" + ref + "--line-height)"
		}
	}

	if c.Modifier != nil {
		switch {
		case c.Modifier.Kind == ValueArbitrary:
			lineHeight = c.Modifier.Value
		case c.Modifier.Value == "none":
			lineHeight = "1"
		default:
			v, ok := spacing(c.Modifier, t, nil, false)
			if !ok {
				return nil
			}
			lineHeight = v
		}
	}

	out := decls("font-size", size)
	if lineHeight != "" {
		out = append(out, cssast.Decl("line-height", lineHeight))
	}
	return out
}

func looksLikeLength(v string) bool {
	for _, unit := range []string{"px", "rem", "em", "%", "vw", "vh", "ch", "pt"} {
		if strings.HasSuffix(v, unit) {
			return true
		}
	}
	return strings.HasPrefix(v, "calc(") || strings.HasPrefix(v, "clamp(")
}

func borderUtility(name, widthProp, colorProp string) *utility {
	return &utility{
		name:   name,
		bare:   true,
		colors: true,
		compile: func(c *Candidate, t *Theme) []cssast.Node {
			if c.Value == nil {
				return decls("border-style", "var(--tw-border-style, solid)", widthProp, "1px")
			}
			v := c.Value
			if c.Modifier == nil {
				switch {
				case v.Kind == ValueNamed && isInteger(v.Value):
					return decls("border-style", "var(--tw-border-style, solid)", widthProp, v.Value+"px")
				case v.Kind == ValueArbitrary && (v.DataType == "length" || (v.DataType == "" && looksLikeLength(v.Value))):
					return decls("border-style", "var(--tw-border-style, solid)", widthProp, v.Value)
				}
			}
			col, ok := color(v, c.Modifier, t)
			if !ok {
				return nil
			}
			return decls(colorProp, col)
		},
		suggest: func(t *Theme) []string {
			return append([]string{"0", "2", "4", "8"}, colorKeys(t)...)
		},
	}
}

// newCustomUtility builds a utility declared with @utility. Static names take
// their declarations verbatim; "name-*" utilities substitute --value(...)
// placeholders.
func newCustomUtility(name string, body []cssast.Node) (*utility, bool) {
	root, functional := strings.CutSuffix(name, "-*")
	if !functional {
		return &utility{name: name, decls: body}, true
	}
	if root == "" {
		return nil, false
	}

	return &utility{
		name: root,
		compile: func(c *Candidate, t *Theme) []cssast.Node {
			if c.Modifier != nil {
				return nil
			}
			var out []cssast.Node
			for _, n := range body {
				d, ok := n.(*cssast.Declaration)
				if !ok {
					continue
				}
				v, ok := substituteValue(d.Value, c.Value, t)
				if !ok {
					return nil
				}
				out = append(out, &cssast.Declaration{Property: d.Property, Value: v, Important: d.Important})
			}
			return out
		},
		suggest: func(t *Theme) []string {
			var out []string
			for _, n := range body {
				d, ok := n.(*cssast.Declaration)
				if !ok {
					continue
				}
				for _, arg := range valueArgs(d.Value) {
					if ns, ok := strings.CutSuffix(arg, "-*"); ok && strings.HasPrefix(ns, "--") {
						out = append(out, t.Keys(ns)...)
					}
				}
			}
			return out
		},
	}, true
}

// substituteValue replaces --value(a, b, ...) with the first matching
// interpretation of v.
func substituteValue(decl string, v *Value, t *Theme) (string, bool) {
	start := strings.Index(decl, "--value(")
	if start < 0 {
		return decl, true
	}
	end := strings.IndexByte(decl[start:], ')')
	if end < 0 {
		return "", false
	}
	end += start

	for _, arg := range valueArgs(decl) {
		if resolved, ok := resolveValueArg(arg, v, t); ok {
			return decl[:start] + resolved + decl[end+1:], true
		}
	}
	return "", false
}

func valueArgs(decl string) []string {
	start := strings.Index(decl, "--value(")
	if start < 0 {
		return nil
	}
	rest := decl[start+len("--value("):]
	end := strings.IndexByte(rest, ')')
	if end < 0 {
		return nil
	}
	var args []string
	for _, a := range strings.Split(rest[:end], ",") {
		args = append(args, strings.TrimSpace(a))
	}
	return args
}

func resolveValueArg(arg string, v *Value, t *Theme) (string, bool) {
	switch {
	case strings.HasPrefix(arg, "["):
		return v.Value, v.Kind == ValueArbitrary
	case v.Kind == ValueArbitrary:
		return "", false
	case arg == "integer":
		return v.Value, isInteger(v.Value)
	case arg == "number":
		return v.Value, isNumber(v.Value)
	case arg == "percentage":
		return v.Value + "%", isNumber(v.Value)
	case strings.HasPrefix(arg, "--") && strings.HasSuffix(arg, "-*"):
		ref, ok := t.Resolve(v.Value, strings.TrimSuffix(arg, "-*"))
		if !ok {
			return "", false
		}
		return "var(" + ref + ")", true
	}
	return "", false
}

package tailwind

import (
	"sort"
	"strings"
)

// VariantKind classifies variants
type VariantKind int

const (
	VariantStatic     VariantKind = iota // hover, md
	VariantFunctional                    // data-*, aria-*, supports-[..]
	VariantCompound                      // group-*, peer-*
	VariantArbitrary                     // [&>p], [@media(print)]
)

// Variant is a registered variant.
//
// A variant resolves to templates: a template starting with '@' is an
// at-rule wrapping the rule, any other template is a selector in which '&'
// stands for the selector being built.
type Variant struct {
	Name   string
	Kind   VariantKind
	Values []string // Suggested values of functional variants
	Order  int

	templates []string
	fn        func(value, modifier *Value) ([]string, bool)
	compose   func(inner []string, modifier *Value) ([]string, bool)
}

// HasDash reports whether the variant takes a dash-separated value
func (v *Variant) HasDash() bool {
	return v.Kind != VariantStatic
}

// Selectors returns the templates for the given value and modifier.
// Static variants ignore both; compound variants apply to value as an
// inner variant name.
func (v *Variant) Selectors(value, modifier string) []string {
	switch v.Kind {
	case VariantStatic:
		return append([]string(nil), v.templates...)
	case VariantFunctional:
		val, ok := parseValuePart(value)
		if !ok {
			return nil
		}
		out, _ := v.fn(val, optionalValue(modifier))
		return out
	}
	return nil
}

func optionalValue(s string) *Value {
	if s == "" {
		return nil
	}
	v, _ := parseValuePart(s)
	return v
}

type variantRegistry struct {
	list   []*Variant
	byName map[string]*Variant
	roots  []string // Functional and compound names, longest first
}

func newVariantRegistry() *variantRegistry {
	return &variantRegistry{byName: make(map[string]*Variant)}
}

// set registers v, replacing an existing variant of the same name in place
func (r *variantRegistry) set(v *Variant) {
	if old, ok := r.byName[v.Name]; ok {
		v.Order = old.Order
		r.list[old.Order] = v
	} else {
		v.Order = len(r.list)
		r.list = append(r.list, v)
	}
	r.byName[v.Name] = v
	r.reindex()
}

func (r *variantRegistry) static(name string, templates ...string) {
	r.set(&Variant{Name: name, Kind: VariantStatic, templates: templates})
}

func (r *variantRegistry) functional(name string, values []string, fn func(value, modifier *Value) ([]string, bool)) {
	r.set(&Variant{Name: name, Kind: VariantFunctional, Values: values, fn: fn})
}

func (r *variantRegistry) compound(name string, compose func(inner []string, modifier *Value) ([]string, bool)) {
	r.set(&Variant{Name: name, Kind: VariantCompound, compose: compose})
}

func (r *variantRegistry) reindex() {
	r.roots = r.roots[:0]
	for _, v := range r.list {
		if v.Kind != VariantStatic {
			r.roots = append(r.roots, v.Name)
		}
	}
	sort.SliceStable(r.roots, func(i, j int) bool {
		return len(r.roots[i]) > len(r.roots[j])
	})
}

// templates resolves a parsed candidate variant
func (r *variantRegistry) templates(cv *CandidateVariant) ([]string, bool) {
	if cv.Kind == VariantArbitrary {
		return []string{cv.Selector}, true
	}

	v, ok := r.byName[cv.Root]
	if !ok {
		return nil, false
	}

	switch v.Kind {
	case VariantStatic:
		return v.templates, true
	case VariantFunctional:
		return v.fn(cv.Value, cv.Modifier)
	case VariantCompound:
		inner, ok := r.templates(cv.Inner)
		if !ok {
			return nil, false
		}
		return v.compose(inner, cv.Modifier)
	}
	return nil, false
}

// order returns the sort position of a candidate variant. Arbitrary variants
// sort after every registered one.
func (r *variantRegistry) order(cv *CandidateVariant) int {
	if v, ok := r.byName[cv.Root]; ok && cv.Kind != VariantArbitrary {
		return v.Order
	}
	return len(r.list)
}

var ariaStates = []string{"busy", "checked", "disabled", "expanded", "hidden", "pressed", "readonly", "required", "selected"}

// registerVariants installs the built-in variants in their sort order
func registerVariants(r *variantRegistry, theme *Theme) {
	pseudo := func(name, sel string) { r.static(name, "&"+sel) }

	pseudo("first", ":first-child")
	pseudo("last", ":last-child")
	pseudo("only", ":only-child")
	pseudo("odd", ":nth-child(odd)")
	pseudo("even", ":nth-child(even)")
	pseudo("first-of-type", ":first-of-type")
	pseudo("last-of-type", ":last-of-type")
	pseudo("visited", ":visited")
	pseudo("target", ":target")
	pseudo("open", ":is([open], :popover-open)")
	pseudo("checked", ":checked")
	pseudo("indeterminate", ":indeterminate")
	pseudo("placeholder-shown", ":placeholder-shown")
	pseudo("autofill", ":autofill")
	pseudo("required", ":required")
	pseudo("valid", ":valid")
	pseudo("invalid", ":invalid")
	pseudo("read-only", ":read-only")
	pseudo("empty", ":empty")
	pseudo("focus-within", ":focus-within")
	r.static("hover", "@media (hover: hover)", "&:hover")
	pseudo("focus", ":focus")
	pseudo("focus-visible", ":focus-visible")
	pseudo("active", ":active")
	pseudo("enabled", ":enabled")
	pseudo("disabled", ":disabled")

	r.compound("group", func(inner []string, modifier *Value) ([]string, bool) {
		return composeRelational(inner, "group", modifier, "&:is(%s *)")
	})
	r.compound("peer", func(inner []string, modifier *Value) ([]string, bool) {
		return composeRelational(inner, "peer", modifier, "&:is(%s ~ *)")
	})

	pseudo("before", "::before")
	pseudo("after", "::after")
	pseudo("placeholder", "::placeholder")
	pseudo("selection", "::selection")
	pseudo("marker", "::marker")
	pseudo("file", "::file-selector-button")
	pseudo("first-letter", "::first-letter")
	pseudo("first-line", "::first-line")
	pseudo("backdrop", "::backdrop")

	r.functional("aria", ariaStates, func(value, _ *Value) ([]string, bool) {
		if value.Kind == ValueArbitrary {
			return []string{"&[aria-" + value.Value + "]"}, true
		}
		return []string{`&[aria-` + value.Value + `="true"]`}, true
	})
	r.functional("data", nil, func(value, _ *Value) ([]string, bool) {
		return []string{"&[data-" + value.Value + "]"}, true
	})
	r.functional("supports", nil, func(value, _ *Value) ([]string, bool) {
		if value.Kind == ValueNamed {
			return []string{"@supports (" + value.Value + ": var(--tw))"}, true
		}
		cond := value.Value
		if strings.Contains(cond, ":") && !strings.HasPrefix(cond, "(") {
			prop, val, _ := strings.Cut(cond, ":")
			cond = "(" + prop + ": " + strings.TrimSpace(val) + ")"
		}
		return []string{"@supports " + cond}, true
	})

	r.static("motion-safe", "@media (prefers-reduced-motion: no-preference)")
	r.static("motion-reduce", "@media (prefers-reduced-motion: reduce)")
	r.static("contrast-more", "@media (prefers-contrast: more)")
	r.static("contrast-less", "@media (prefers-contrast: less)")

	breakpoints := theme.Keys("--breakpoint")
	breakpoint := func(value *Value) (string, bool) {
		if value.Kind == ValueArbitrary {
			return value.Value, true
		}
		return theme.Get("--breakpoint-" + value.Value)
	}
	r.functional("max", breakpoints, func(value, _ *Value) ([]string, bool) {
		w, ok := breakpoint(value)
		if !ok {
			return nil, false
		}
		return []string{"@media (width < " + w + ")"}, true
	})
	for _, key := range breakpoints {
		width, _ := theme.Get("--breakpoint-" + key)
		r.static(key, "@media (width >= "+width+")")
	}
	r.functional("min", breakpoints, func(value, _ *Value) ([]string, bool) {
		w, ok := breakpoint(value)
		if !ok {
			return nil, false
		}
		return []string{"@media (width >= " + w + ")"}, true
	})

	r.static("portrait", "@media (orientation: portrait)")
	r.static("landscape", "@media (orientation: landscape)")
	r.static("ltr", `&:where(:dir(ltr), [dir="ltr"], [dir="ltr"] *)`)
	r.static("rtl", `&:where(:dir(rtl), [dir="rtl"], [dir="rtl"] *)`)
	r.static("dark", "@media (prefers-color-scheme: dark)")
	r.static("print", "@media print")
	r.static("forced-colors", "@media (forced-colors: active)")
}

// composeRelational turns the inner selector templates of group-* and peer-*
// into a selector on the marker class.
func composeRelational(inner []string, marker string, modifier *Value, wrap string) ([]string, bool) {
	if modifier != nil {
		if modifier.Kind == ValueArbitrary {
			marker += `\/` + EscapeClassName(modifier.Value)
		} else {
			marker += `\/` + modifier.Value
		}
	}
	where := ":where(." + marker + ")"

	var out []string
	sawSelector := false
	for _, t := range inner {
		if strings.HasPrefix(t, "@") {
			out = append(out, t)
			continue
		}
		if !strings.Contains(t, "&") {
			return nil, false
		}
		sawSelector = true
		out = append(out, strings.Replace(wrap, "%s", strings.ReplaceAll(t, "&", where), 1))
	}
	return out, sawSelector
}

// parseCustomVariant reads the shorthand form: name (selector-or-at-rule)
func parseCustomVariant(params string) (string, string, bool) {
	name, body, ok := strings.Cut(strings.TrimSpace(params), " ")
	if !ok {
		return "", "", false
	}
	body = strings.TrimSpace(body)
	if !strings.HasPrefix(body, "(") || !strings.HasSuffix(body, ")") {
		return "", "", false
	}
	body = strings.TrimSpace(body[1 : len(body)-1])
	if body == "" || (!strings.Contains(body, "&") && !strings.HasPrefix(body, "@")) {
		return "", "", false
	}
	return name, body, true
}

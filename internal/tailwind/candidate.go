package tailwind

import (
	"strings"
)

// ValueKind tells a named value (bg-red-500) from an arbitrary one (bg-[#f00])
type ValueKind int

const (
	ValueNamed ValueKind = iota
	ValueArbitrary
)

// Value is the value or modifier part of a candidate
type Value struct {
	Kind     ValueKind
	Value    string // Decoded value ("red-500", "#f00", "1/2")
	Fraction bool   // Value is a fraction like 1/2
	DataType string // Type hint of an arbitrary value: [color:var(--x)] -> "color"
}

// CandidateKind classifies the utility part of a candidate
type CandidateKind int

const (
	CandidateStatic CandidateKind = iota
	CandidateFunctional
	CandidateArbitrary
)

// CandidateVariant is one variant segment of a candidate
type CandidateVariant struct {
	Kind     VariantKind
	Root     string
	Value    *Value
	Modifier *Value
	Selector string            // Arbitrary variants: decoded selector or at-rule
	Inner    *CandidateVariant // Compound variants: group-hover -> hover
}

// Candidate is a parsed utility class
type Candidate struct {
	Raw       string
	Kind      CandidateKind
	Root      string // Utility root, or the static utility name
	Value     *Value
	Modifier  *Value
	Property  string // Arbitrary properties: [mask-type:luminance]
	Variants  []*CandidateVariant
	Negative  bool
	Important bool
}

// parseCandidate parses raw against the registered utilities and variants.
// It returns false for anything that is not a known utility.
func (e *engine) parseCandidate(raw string) (*Candidate, bool) {
	if raw == "" || strings.ContainsAny(raw, " \t\n") {
		return nil, false
	}

	parts := segment(raw, ':')
	for _, p := range parts {
		if p == "" {
			return nil, false
		}
	}

	if e.prefix != "" {
		if parts[0] != e.prefix || len(parts) < 2 {
			return nil, false
		}
		parts = parts[1:]
	}

	c := &Candidate{Raw: raw}
	for _, v := range parts[:len(parts)-1] {
		cv, ok := e.parseVariant(v)
		if !ok {
			return nil, false
		}
		c.Variants = append(c.Variants, cv)
	}

	base := parts[len(parts)-1]
	switch {
	case strings.HasSuffix(base, "!"):
		c.Important = true
		base = base[:len(base)-1]
	case strings.HasPrefix(base, "!"):
		c.Important = true
		base = base[1:]
	}
	if base == "" {
		return nil, false
	}

	if base[0] == '[' {
		return c, parseArbitraryProperty(c, base)
	}

	if _, ok := e.utilities.static[base]; ok {
		c.Kind = CandidateStatic
		c.Root = base
		return c, true
	}

	if base[0] == '-' {
		c.Negative = true
		base = base[1:]
	}

	for _, root := range e.utilities.roots {
		u := e.utilities.functional[root]
		if c.Negative && !u.negative {
			continue
		}

		if base == root {
			if !u.bare {
				continue
			}
			c.Kind = CandidateFunctional
			c.Root = root
			return c, true
		}

		rest, ok := strings.CutPrefix(base, root+"-")
		if !ok {
			continue
		}
		value, modifier, ok := parseValueAndModifier(rest)
		if !ok {
			continue
		}
		c.Kind = CandidateFunctional
		c.Root = root
		c.Value = value
		c.Modifier = modifier
		return c, true
	}

	return nil, false
}

func parseArbitraryProperty(c *Candidate, base string) bool {
	body := base
	parts := segment(base, '/')
	if len(parts) == 2 {
		body = parts[0]
		m, ok := parseValuePart(parts[1])
		if !ok {
			return false
		}
		c.Modifier = m
	} else if len(parts) > 2 {
		return false
	}

	if !strings.HasSuffix(body, "]") {
		return false
	}
	inner := body[1 : len(body)-1]
	prop, value, ok := strings.Cut(inner, ":")
	if !ok || !isPropertyName(prop) {
		return false
	}
	value = decodeArbitrary(value)
	if strings.TrimSpace(value) == "" {
		return false
	}

	c.Kind = CandidateArbitrary
	c.Property = prop
	c.Value = &Value{Kind: ValueArbitrary, Value: value}
	return true
}

func isPropertyName(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r != '-' && (r < 'a' || r > 'z') {
			return false
		}
	}
	return true
}

// parseValueAndModifier splits "red-500/50" into value and modifier.
// Fractions like "1/2" stay a single value.
func parseValueAndModifier(rest string) (*Value, *Value, bool) {
	parts := segment(rest, '/')
	switch len(parts) {
	case 1:
		v, ok := parseValuePart(parts[0])
		return v, nil, ok
	case 2:
		if isInteger(parts[0]) && isInteger(parts[1]) {
			return &Value{Kind: ValueNamed, Value: rest, Fraction: true}, nil, true
		}
		v, ok := parseValuePart(parts[0])
		if !ok {
			return nil, nil, false
		}
		m, ok := parseValuePart(parts[1])
		if !ok {
			return nil, nil, false
		}
		return v, m, true
	default:
		return nil, nil, false
	}
}

func parseValuePart(s string) (*Value, bool) {
	switch {
	case s == "":
		return nil, false
	case strings.HasPrefix(s, "["):
		if !strings.HasSuffix(s, "]") || len(s) < 3 {
			return nil, false
		}
		inner := s[1 : len(s)-1]
		v := &Value{Kind: ValueArbitrary}
		if hint, rest, ok := strings.Cut(inner, ":"); ok && isPropertyName(hint) && !strings.HasPrefix(inner, "--") {
			v.DataType = hint
			inner = rest
		}
		v.Value = decodeArbitrary(inner)
		if strings.TrimSpace(v.Value) == "" {
			return nil, false
		}
		return v, true
	case strings.HasPrefix(s, "("):
		// bg-(--brand) is shorthand for bg-[var(--brand)]
		if !strings.HasSuffix(s, ")") || !strings.HasPrefix(s, "(--") {
			return nil, false
		}
		return &Value{Kind: ValueArbitrary, Value: "var(" + s[1:len(s)-1] + ")"}, true
	case strings.ContainsAny(s, "[]()"):
		return nil, false
	default:
		return &Value{Kind: ValueNamed, Value: s}, true
	}
}

func (e *engine) parseVariant(s string) (*CandidateVariant, bool) {
	if strings.HasPrefix(s, "[") {
		if !strings.HasSuffix(s, "]") {
			return nil, false
		}
		sel := decodeArbitrary(s[1 : len(s)-1])
		if !strings.Contains(sel, "&") && !strings.HasPrefix(sel, "@") {
			return nil, false
		}
		return &CandidateVariant{Kind: VariantArbitrary, Selector: sel}, true
	}

	if v, ok := e.variants.byName[s]; ok && v.Kind == VariantStatic {
		return &CandidateVariant{Kind: VariantStatic, Root: s}, true
	}

	for _, root := range e.variants.roots {
		v := e.variants.byName[root]
		rest, ok := strings.CutPrefix(s, root+"-")
		if !ok || rest == "" {
			continue
		}

		var modifier *Value
		parts := segment(rest, '/')
		if len(parts) > 2 {
			continue
		}
		if len(parts) == 2 {
			if modifier, ok = parseValuePart(parts[1]); !ok {
				continue
			}
			rest = parts[0]
		}

		switch v.Kind {
		case VariantCompound:
			inner, ok := e.parseVariant(rest)
			if !ok || inner.Kind == VariantCompound {
				continue
			}
			return &CandidateVariant{Kind: VariantCompound, Root: root, Inner: inner, Modifier: modifier}, true
		case VariantFunctional:
			value, ok := parseValuePart(rest)
			if !ok {
				continue
			}
			return &CandidateVariant{Kind: VariantFunctional, Root: root, Value: value, Modifier: modifier}, true
		}
	}

	return nil, false
}

func isInteger(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// isNumber accepts non-negative decimals: 4, 0.5, 2.25
func isNumber(s string) bool {
	if s == "" || s == "." {
		return false
	}
	dot := false
	for _, r := range s {
		switch {
		case r == '.' && !dot:
			dot = true
		case r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return !strings.HasSuffix(s, ".")
}

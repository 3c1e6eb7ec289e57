package tailwind

import (
	"fmt"
	"strings"
)

// EscapeClassName escapes a class name for use in a selector, following the
// CSS.escape rules.
func EscapeClassName(name string) string {
	var b strings.Builder
	b.Grow(len(name) + 8)

	for i, r := range name {
		switch {
		case r == 0:
			b.WriteRune('\uFFFD')
		case r >= 0x1 && r <= 0x1f, r == 0x7f:
			fmt.Fprintf(&b, "\\%x ", r)
		case i == 0 && r >= '0' && r <= '9':
			fmt.Fprintf(&b, "\\%x ", r)
		case i == 1 && r >= '0' && r <= '9' && name[0] == '-':
			fmt.Fprintf(&b, "\\%x ", r)
		case i == 0 && r == '-' && len(name) == 1:
			b.WriteString(`\-`)
		case r >= 0x80, r == '-', r == '_',
			r >= '0' && r <= '9', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
			b.WriteRune(r)
		default:
			b.WriteByte('\\')
			b.WriteRune(r)
		}
	}
	return b.String()
}

// decodeArbitrary turns the inside of [..] into a CSS value: underscores
// become spaces unless escaped, and url() contents are kept verbatim.
func decodeArbitrary(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	inURL := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '\\' && i+1 < len(s) && s[i+1] == '_':
			b.WriteByte('_')
			i++
		case strings.HasPrefix(s[i:], "url("):
			b.WriteString("url(")
			i += 3
			inURL++
		case c == ')' && inURL > 0:
			b.WriteByte(c)
			inURL--
		case c == '_' && inURL == 0:
			b.WriteByte(' ')
		default:
			b.WriteByte(c)
		}
	}
	return addMathSpacing(b.String())
}

// addMathSpacing puts spaces around binary + and - inside math functions,
// which CSS requires.
func addMathSpacing(s string) string {
	if !strings.Contains(s, "calc(") {
		return s
	}

	var b strings.Builder
	var math []bool
	inMath := func() bool { return len(math) > 0 && math[len(math)-1] }

	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '(':
			switch trailingIdent(s[:i]) {
			case "calc", "min", "max", "clamp":
				math = append(math, true)
			case "":
				math = append(math, inMath())
			default:
				math = append(math, false)
			}
		case ')':
			if len(math) > 0 {
				math = math[:len(math)-1]
			}
		case '+', '-':
			if inMath() && i > 0 && isOperandEnd(s[i-1]) {
				b.WriteByte(' ')
				b.WriteByte(c)
				if i+1 < len(s) && s[i+1] != ' ' {
					b.WriteByte(' ')
				}
				continue
			}
		}
		b.WriteByte(c)
	}
	return b.String()
}

func trailingIdent(s string) string {
	i := len(s)
	for i > 0 {
		c := s[i-1]
		if c == '-' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') {
			i--
			continue
		}
		break
	}
	return s[i:]
}

func isOperandEnd(c byte) bool {
	return c == '%' || c == ')' ||
		(c >= '0' && c <= '9') || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// segment splits s on sep at bracket and paren depth zero
func segment(s string, sep byte) []string {
	var parts []string
	depth := 0
	start := 0
	quote := byte(0)

	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case quote != 0:
			if c == '\\' {
				i++
			} else if c == quote {
				quote = 0
			}
		case c == '\'' || c == '"':
			quote = c
		case c == '\\':
			i++
		case c == '[' || c == '(' || c == '{':
			depth++
		case c == ']' || c == ')' || c == '}':
			if depth > 0 {
				depth--
			}
		case c == sep && depth == 0:
			parts = append(parts, s[start:i])
			start = i + 1
		}
	}
	return append(parts, s[start:])
}

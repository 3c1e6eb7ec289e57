package languageservice

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/yacobolo/twbridge/internal/cssast"
)

var (
	varPattern  = regexp.MustCompile(`var\((--[\w-]+)\)`)
	remPattern  = regexp.MustCompile(`(-?\d*\.?\d+)rem\b`)
	calcPattern = regexp.MustCompile(`^calc\((-?\d*\.?\d+)rem \* (-?\d*\.?\d+)\)$`)
	numberArgs  = regexp.MustCompile(`-?\d*\.?\d+%?`)
)

func markdownCSS(css string) string {
	return "```css\n" + css + "\n```"
}

// declarationSummary lists the declarations of root on one line
func declarationSummary(root *cssast.Root) string {
	if root == nil {
		return ""
	}
	var parts []string
	for _, d := range cssast.Declarations(root.Nodes) {
		parts = append(parts, d.Property+": "+d.Value+";")
	}
	return strings.Join(parts, " ")
}

// withPixelEquivalents annotates declarations holding rem values with their
// pixel size at the configured root font size.
func (s *State) withPixelEquivalents(css string) string {
	if !s.Settings.ShowPixelEquivalents || s.Settings.RootFontSize <= 0 {
		return css
	}

	lines := strings.Split(css, "\n")
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if !strings.HasSuffix(trimmed, ";") || strings.HasPrefix(trimmed, "@") {
			continue
		}
		_, value, ok := strings.Cut(strings.TrimSuffix(trimmed, ";"), ":")
		if !ok {
			continue
		}
		if note := s.pixelNote(strings.TrimSpace(strings.TrimSuffix(value, "!important"))); note != "" {
			lines[i] = line + " /* " + note + " */"
		}
	}
	return strings.Join(lines, "\n")
}

func (s *State) pixelNote(value string) string {
	resolved := s.resolveVars(value)

	if m := calcPattern.FindStringSubmatch(resolved); m != nil {
		rem, _ := strconv.ParseFloat(m[1], 64)
		factor, _ := strconv.ParseFloat(m[2], 64)
		return s.remNote(rem * factor)
	}

	var notes []string
	seen := make(map[string]bool)
	for _, m := range remPattern.FindAllStringSubmatch(resolved, -1) {
		if seen[m[1]] {
			continue
		}
		seen[m[1]] = true
		rem, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			continue
		}
		notes = append(notes, s.remNote(rem))
	}
	return strings.Join(notes, ", ")
}

func (s *State) remNote(rem float64) string {
	return formatNumber(rem) + "rem = " + formatNumber(rem*s.Settings.RootFontSize) + "px"
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(math.Round(v*10000)/10000, 'f', -1, 64)
}

// resolveVars substitutes theme variables that resolve
func (s *State) resolveVars(value string) string {
	if s.DesignSystem == nil {
		return value
	}
	return varPattern.ReplaceAllStringFunc(value, func(ref string) string {
		name := varPattern.FindStringSubmatch(ref)[1]
		if v, ok := s.DesignSystem.ResolveThemeValue(name); ok {
			return v
		}
		return ref
	})
}

func isColorProperty(p string) bool {
	return p == "fill" || p == "stroke" || p == "color" || strings.HasSuffix(p, "-color")
}

// colorOf returns the color a class sets, when every color declaration
// agrees on a single resolvable value.
func (s *State) colorOf(root *cssast.Root) (*colorful.Color, float64) {
	if root == nil {
		return nil, 0
	}

	var value string
	for _, d := range cssast.Declarations(root.Nodes) {
		if !isColorProperty(d.Property) {
			continue
		}
		if value != "" && d.Value != value {
			return nil, 0
		}
		value = d.Value
	}
	if value == "" {
		return nil, 0
	}
	return s.parseColor(value, 0)
}

func (s *State) parseColor(value string, depth int) (*colorful.Color, float64) {
	value = strings.TrimSpace(value)
	lower := strings.ToLower(value)
	if depth > 8 || value == "" {
		return nil, 0
	}

	switch {
	case strings.HasPrefix(lower, "var(") && strings.HasSuffix(lower, ")"):
		name, fallback, _ := strings.Cut(value[4:len(value)-1], ",")
		if s.DesignSystem != nil {
			if resolved, ok := s.DesignSystem.ResolveThemeValue(strings.TrimSpace(name)); ok {
				return s.parseColor(resolved, depth+1)
			}
		}
		return s.parseColor(fallback, depth+1)

	case strings.HasPrefix(lower, "color-mix(") && strings.HasSuffix(lower, ")"):
		return s.parseColorMix(value[len("color-mix("):len(value)-1], depth)

	case strings.HasPrefix(lower, "#"):
		return parseHex(lower)

	case strings.HasPrefix(lower, "rgb(") || strings.HasPrefix(lower, "rgba("):
		return parseRGB(lower)

	case strings.HasPrefix(lower, "oklch("):
		return parseOklch(lower)
	}

	switch lower {
	case "black":
		c := colorful.Color{}
		return &c, 1
	case "white":
		c := colorful.Color{R: 1, G: 1, B: 1}
		return &c, 1
	}
	return nil, 0
}

// parseColorMix handles the alpha form: color-mix(in oklab, X 50%, transparent)
func (s *State) parseColorMix(args string, depth int) (*colorful.Color, float64) {
	parts := strings.Split(args, ",")
	if len(parts) < 3 || strings.TrimSpace(parts[len(parts)-1]) != "transparent" {
		return nil, 0
	}
	mixed := strings.TrimSpace(strings.Join(parts[1:len(parts)-1], ","))

	alpha := 1.0
	if i := strings.LastIndexByte(mixed, ' '); i > 0 && strings.HasSuffix(mixed, "%") {
		pct, err := strconv.ParseFloat(strings.TrimSuffix(mixed[i+1:], "%"), 64)
		if err == nil {
			alpha = pct / 100
			mixed = mixed[:i]
		}
	}

	c, a := s.parseColor(mixed, depth+1)
	if c == nil {
		return nil, 0
	}
	return c, a * alpha
}

func parseHex(v string) (*colorful.Color, float64) {
	alpha := 1.0
	switch len(v) {
	case 9:
		a, err := strconv.ParseUint(v[7:9], 16, 8)
		if err != nil {
			return nil, 0
		}
		alpha = float64(a) / 255
		v = v[:7]
	case 5:
		a, err := strconv.ParseUint(v[4:5], 16, 8)
		if err != nil {
			return nil, 0
		}
		alpha = float64(a) / 15
		v = v[:4]
	}

	c, err := colorful.Hex(v)
	if err != nil {
		return nil, 0
	}
	return &c, alpha
}

// colorArgs returns the channel numbers and the optional alpha of a color
// function; "rgb(1 2 3 / 50%)" and "rgb(1, 2, 3, 0.5)" both work.
func colorArgs(v string) ([]string, string) {
	open := strings.IndexByte(v, '(')
	if open < 0 || !strings.HasSuffix(v, ")") {
		return nil, ""
	}
	body := v[open+1 : len(v)-1]

	alpha := ""
	if channels, a, ok := strings.Cut(body, "/"); ok {
		body = channels
		alpha = strings.TrimSpace(a)
	}
	args := numberArgs.FindAllString(body, -1)
	if alpha == "" && len(args) == 4 {
		alpha = args[3]
		args = args[:3]
	}
	return args, alpha
}

func parseAlpha(a string) float64 {
	if a == "" {
		return 1
	}
	if pct, ok := strings.CutSuffix(a, "%"); ok {
		v, err := strconv.ParseFloat(pct, 64)
		if err != nil {
			return 1
		}
		return v / 100
	}
	v, err := strconv.ParseFloat(a, 64)
	if err != nil {
		return 1
	}
	return v
}

func parseRGB(v string) (*colorful.Color, float64) {
	args, alpha := colorArgs(v)
	if len(args) != 3 {
		return nil, 0
	}

	var ch [3]float64
	for i, a := range args {
		if pct, ok := strings.CutSuffix(a, "%"); ok {
			f, err := strconv.ParseFloat(pct, 64)
			if err != nil {
				return nil, 0
			}
			ch[i] = f / 100
			continue
		}
		f, err := strconv.ParseFloat(a, 64)
		if err != nil {
			return nil, 0
		}
		ch[i] = f / 255
	}

	c := colorful.Color{R: ch[0], G: ch[1], B: ch[2]}
	return &c, parseAlpha(alpha)
}

func parseOklch(v string) (*colorful.Color, float64) {
	args, alpha := colorArgs(v)
	if len(args) != 3 {
		return nil, 0
	}

	l, err := parseFraction(args[0])
	if err != nil {
		return nil, 0
	}
	chroma, err := strconv.ParseFloat(strings.TrimSuffix(args[1], "%"), 64)
	if err != nil {
		return nil, 0
	}
	if strings.HasSuffix(args[1], "%") {
		chroma = chroma / 100 * 0.4
	}
	hue, err := strconv.ParseFloat(args[2], 64)
	if err != nil {
		return nil, 0
	}

	c := colorful.OkLch(l, chroma, hue).Clamped()
	return &c, parseAlpha(alpha)
}

// parseFraction reads "63.7%" as 0.637 and "0.637" as is
func parseFraction(s string) (float64, error) {
	if pct, ok := strings.CutSuffix(s, "%"); ok {
		v, err := strconv.ParseFloat(pct, 64)
		return v / 100, err
	}
	return strconv.ParseFloat(s, 64)
}

// Package languageservice implements editor features for utility classes:
// completion, hover, diagnostics, document colors and quick fixes. Results
// use LSP shapes.
package languageservice

import (
	"strings"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/yacobolo/twbridge/internal/cssast"
	"github.com/yacobolo/twbridge/internal/scanner"
)

// DesignSystem is what the language service needs from the compiler
type DesignSystem interface {
	Prefix() string
	ClassList() []ClassEntry
	Variants() []Variant
	Compile(classes []string) []*cssast.Root
	ToCSS(roots ...*cssast.Root) string
	ResolveThemeValue(path string) (string, bool)
	CandidateVariantOrder(class string) ([]int, bool)
	Dependencies() []string
}

// ClassEntry is one completable class
type ClassEntry struct {
	Name      string
	Modifiers []string
}

// Variant describes a variant for completion
type Variant struct {
	Name        string
	Values      []string
	HasDash     bool
	IsArbitrary bool
	Selectors   func(value, modifier string) []string
}

// Severity of a lint rule. SeverityIgnore disables the rule.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
	SeverityHint    Severity = "hint"
	SeverityIgnore  Severity = "ignore"
)

// LintSettings sets the severity of each rule
type LintSettings struct {
	CSSConflict             Severity `json:"cssConflict" koanf:"css-conflict"`
	RecommendedVariantOrder Severity `json:"recommendedVariantOrder" koanf:"recommended-variant-order"`
}

// Settings are the editor settings
type Settings struct {
	TabSize              int          `json:"tabSize" koanf:"tab-size"`
	ClassAttributes      []string     `json:"classAttributes" koanf:"class-attributes"`
	Lint                 LintSettings `json:"lint" koanf:"lint"`
	ShowPixelEquivalents bool         `json:"showPixelEquivalents" koanf:"show-pixel-equivalents"`
	RootFontSize         float64      `json:"rootFontSize" koanf:"root-font-size"`
	ColorDecorators      bool         `json:"colorDecorators" koanf:"color-decorators"`
}

// DefaultSettings returns the settings used when the editor sends none
func DefaultSettings() Settings {
	return Settings{
		TabSize:         2,
		ClassAttributes: append([]string(nil), scanner.DefaultAttributes...),
		Lint: LintSettings{
			CSSConflict:             SeverityWarning,
			RecommendedVariantOrder: SeverityWarning,
		},
		ShowPixelEquivalents: true,
		RootFontSize:         16,
		ColorDecorators:      true,
	}
}

// Capabilities are the client capabilities the service adapts to
type Capabilities struct {
	Configuration                bool
	DiagnosticRelatedInformation bool
	ItemDefaults                 []string
}

// ClassInfo is derived metadata of a class
type ClassInfo struct {
	Name      string
	Modifiers []string
	Color     *colorful.Color // Nil unless the class sets a single color
	Alpha     float64
}

// State is everything derived from one design system. Build a new State
// when the design system changes; the fields always change together.
//
// A State is not safe for concurrent use.
type State struct {
	Enabled      bool
	Capabilities Capabilities
	Settings     Settings
	DesignSystem DesignSystem
	ClassList    map[string]*ClassInfo
	Variants     []Variant

	classNames []string // ClassList keys in design-system order
	matcher    *scanner.Matcher
	colors     map[string]*ClassInfo // Colors of classes outside ClassList
}

// NewState derives analysis state from ds
func NewState(ds DesignSystem, settings Settings, caps Capabilities) *State {
	s := &State{
		Enabled:      ds != nil,
		Capabilities: caps,
		Settings:     settings,
		DesignSystem: ds,
		ClassList:    make(map[string]*ClassInfo),
		matcher:      scanner.NewMatcher(settings.ClassAttributes),
		colors:       make(map[string]*ClassInfo),
	}
	if ds == nil {
		return s
	}

	entries := ds.ClassList()
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = withPrefix(ds.Prefix(), e.Name)
	}
	roots := ds.Compile(names)

	for i, e := range entries {
		info := &ClassInfo{Name: e.Name, Modifiers: e.Modifiers}
		if i < len(roots) {
			info.Color, info.Alpha = s.colorOf(roots[i])
		}
		s.ClassList[e.Name] = info
		s.classNames = append(s.classNames, e.Name)
	}
	s.Variants = ds.Variants()
	return s
}

// classColor resolves the color of any class, including variants and
// arbitrary values.
func (s *State) classColor(class string) (*colorful.Color, float64) {
	if s.DesignSystem == nil {
		return nil, 0
	}
	if name, ok := strings.CutPrefix(class, prefixOf(s.DesignSystem)); ok {
		if info, ok := s.ClassList[name]; ok {
			return info.Color, info.Alpha
		}
	}
	if info, ok := s.colors[class]; ok {
		return info.Color, info.Alpha
	}

	info := &ClassInfo{Name: class}
	if roots := s.DesignSystem.Compile([]string{class}); len(roots) == 1 {
		info.Color, info.Alpha = s.colorOf(roots[0])
	}
	s.colors[class] = info
	return info.Color, info.Alpha
}

// prefixOf returns "tw:" for prefix tw, or ""
func prefixOf(ds DesignSystem) string {
	if ds.Prefix() == "" {
		return ""
	}
	return ds.Prefix() + ":"
}

func withPrefix(prefix, class string) string {
	if prefix == "" {
		return class
	}
	return prefix + ":" + class
}

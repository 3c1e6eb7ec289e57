package worker

import (
	"strings"

	"github.com/rs/zerolog"

	"github.com/yacobolo/twbridge/internal/cssast"
	"github.com/yacobolo/twbridge/internal/languageservice"
	"github.com/yacobolo/twbridge/internal/stylesheet"
	"github.com/yacobolo/twbridge/internal/tailwind"
)

// designSystem adapts a compiled design system to what the language service
// expects. version is the stylesheet version it was derived from.
type designSystem struct {
	ds      *tailwind.DesignSystem
	loader  *stylesheet.Loader
	version uint64
	logger  zerolog.Logger
}

var _ languageservice.DesignSystem = (*designSystem)(nil)

func newDesignSystem(ds *tailwind.DesignSystem, loader *stylesheet.Loader, version uint64, logger zerolog.Logger) *designSystem {
	return &designSystem{ds: ds, loader: loader, version: version, logger: logger}
}

// Dependencies returns every virtual path the stylesheet imported
func (d *designSystem) Dependencies() []string {
	return d.loader.Dependencies()
}

func (d *designSystem) Prefix() string {
	return d.ds.Prefix()
}

func (d *designSystem) ClassList() []languageservice.ClassEntry {
	entries := d.ds.ClassList()
	out := make([]languageservice.ClassEntry, len(entries))
	for i, e := range entries {
		out[i] = languageservice.ClassEntry{Name: e.Name, Modifiers: e.Modifiers}
	}
	return out
}

// Variants lists the registered variants. A prefixed design system gets one
// more variant named after the prefix that leaves selectors unchanged.
func (d *designSystem) Variants() []languageservice.Variant {
	var out []languageservice.Variant
	for _, v := range d.ds.Variants() {
		out = append(out, languageservice.Variant{
			Name:        v.Name,
			Values:      v.Values,
			HasDash:     v.HasDash(),
			IsArbitrary: v.Kind == tailwind.VariantArbitrary,
			Selectors:   v.Selectors,
		})
	}

	if prefix := d.ds.Prefix(); prefix != "" {
		out = append(out, languageservice.Variant{
			Name: prefix,
			Selectors: func(string, string) []string {
				return []string{"&"}
			},
		})
	}
	return out
}

// Compile returns one tree per class, in order. Classes whose CSS does not
// parse get an empty tree; the failures are logged together.
func (d *designSystem) Compile(classes []string) []*cssast.Root {
	css := d.ds.CandidatesToCSS(classes)
	roots := make([]*cssast.Root, len(classes))

	var failed []string
	for i, c := range css {
		root, err := cssast.Parse(c)
		if err != nil {
			failed = append(failed, classes[i])
			root = &cssast.Root{}
		}
		roots[i] = root
	}

	if len(failed) > 0 {
		d.logger.Warn().
			Strs("classes", failed).
			Msg("failed to parse generated css")
	}
	return roots
}

func (d *designSystem) ToCSS(roots ...*cssast.Root) string {
	var nodes []cssast.Node
	for _, r := range roots {
		if r != nil {
			nodes = append(nodes, r.Nodes...)
		}
	}
	return strings.TrimSpace(cssast.ToCSS(nodes))
}

func (d *designSystem) ResolveThemeValue(path string) (string, bool) {
	return d.ds.ResolveThemeValue(path)
}

func (d *designSystem) CandidateVariantOrder(class string) ([]int, bool) {
	return d.ds.CandidateVariantOrder(class)
}

// CandidatesToCSS returns the CSS of each class, "" when unknown
func (d *designSystem) CandidatesToCSS(classes []string) []string {
	return d.ds.CandidatesToCSS(classes)
}

package languageservice

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/yacobolo/twbridge/internal/cssast"
	"github.com/yacobolo/twbridge/internal/stylesheet"
	"github.com/yacobolo/twbridge/internal/tailwind"
)

// testDesignSystem exposes a compiled design system the way the worker does
type testDesignSystem struct {
	ds *tailwind.DesignSystem
}

func (d *testDesignSystem) Prefix() string { return d.ds.Prefix() }

func (d *testDesignSystem) ClassList() []ClassEntry {
	var out []ClassEntry
	for _, e := range d.ds.ClassList() {
		out = append(out, ClassEntry{Name: e.Name, Modifiers: e.Modifiers})
	}
	return out
}

func (d *testDesignSystem) Variants() []Variant {
	var out []Variant
	for _, v := range d.ds.Variants() {
		out = append(out, Variant{Name: v.Name, Values: v.Values, HasDash: v.HasDash(), Selectors: v.Selectors})
	}
	return out
}

func (d *testDesignSystem) Compile(classes []string) []*cssast.Root {
	out := make([]*cssast.Root, len(classes))
	for i, c := range classes {
		if root, ok := d.ds.CompileCandidate(c); ok {
			out[i] = root
		} else {
			out[i] = &cssast.Root{}
		}
	}
	return out
}

func (d *testDesignSystem) ToCSS(roots ...*cssast.Root) string {
	var nodes []cssast.Node
	for _, r := range roots {
		nodes = append(nodes, r.Nodes...)
	}
	return cssast.ToCSS(nodes)
}

func (d *testDesignSystem) ResolveThemeValue(path string) (string, bool) {
	return d.ds.ResolveThemeValue(path)
}

func (d *testDesignSystem) CandidateVariantOrder(class string) ([]int, bool) {
	return d.ds.CandidateVariantOrder(class)
}

func (d *testDesignSystem) Dependencies() []string { return nil }

func newTestState(t *testing.T, css string) *State {
	t.Helper()
	ds, err := tailwind.LoadDesignSystem(css, tailwind.Options{
		Base:   "/",
		Loader: stylesheet.NewLoader(nil, zerolog.Nop()),
	})
	require.NoError(t, err)
	return NewState(&testDesignSystem{ds: ds}, DefaultSettings(), Capabilities{DiagnosticRelatedInformation: true})
}

// cursorDoc returns a document for text with the cursor marker | removed,
// and the cursor position.
func cursorDoc(text string) (*Document, int) {
	offset := -1
	for i := 0; i < len(text); i++ {
		if text[i] == '|' {
			offset = i
			text = text[:i] + text[i+1:]
			break
		}
	}
	return NewDocument("file:///index.html", "html", 1, text), offset
}

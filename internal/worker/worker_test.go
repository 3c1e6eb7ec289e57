package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

func newTestWorker(t *testing.T, docs *Documents) *Worker {
	t.Helper()
	if docs == nil {
		docs = NewDocuments()
	}
	w := New(docs, Options{Logger: zerolog.Nop()})
	t.Cleanup(w.Close)
	return w
}

func bootstrapped(t *testing.T, docs *Documents) *Worker {
	t.Helper()
	w := newTestWorker(t, docs)
	require.NoError(t, w.Bootstrap())
	waitReady(t, w)
	return w
}

// holdDerivations keeps design system derivations waiting until release is
// called.
func holdDerivations(w *Worker) (release func()) {
	gate := make(chan struct{})
	w.state.beforeDerive = func(ctx context.Context) {
		select {
		case <-gate:
		case <-ctx.Done():
		}
	}
	var once sync.Once
	return func() {
		once.Do(func() { close(gate) })
	}
}

func waitReady(t *testing.T, w *Worker) {
	t.Helper()
	for {
		ok, pending, err := w.state.readiness()
		require.NoError(t, err)
		if ok {
			return
		}
		select {
		case <-pending:
		case <-time.After(10 * time.Second):
			t.Fatal("design system was not derived")
		}
	}
}

func classNames(r *BuildResult) []string {
	var out []string
	for _, c := range r.TailwindClasses {
		out = append(out, c.ClassName)
	}
	return out
}

func TestBuildBeforeBootstrap(t *testing.T) {
	w := newTestWorker(t, nil)

	_, err := w.BuildCSS(DefaultStylesheet, nil, []string{"flex"})
	require.ErrorIs(t, err, ErrNotInitialized)
}

func TestBuildPartitionsClasses(t *testing.T) {
	w := bootstrapped(t, nil)

	result, err := w.BuildCSS(DefaultStylesheet, nil, []string{"flex", "not-a-class"})
	require.NoError(t, err)

	require.Len(t, result.TailwindClasses, 1)
	assert.Equal(t, TailwindClass{ClassName: "flex", CSS: ".flex {\n  display: flex;\n}"}, result.TailwindClasses[0])
	assert.Equal(t, []string{"not-a-class"}, result.NotTailwindClasses)
	assert.Contains(t, result.CSS, "display: flex;")
	assert.Empty(t, result.Errors)
	assert.Empty(t, result.Warnings)
}

func TestBuildKeepsRequestOrderAndDropsDuplicates(t *testing.T) {
	w := bootstrapped(t, nil)

	result, err := w.BuildCSS(DefaultStylesheet, nil, []string{"p-4", "x", "p-4", "hover:flex", "x", "y"})
	require.NoError(t, err)

	assert.Equal(t, []string{"p-4", "hover:flex"}, classNames(result))
	assert.Equal(t, []string{"x", "y"}, result.NotTailwindClasses)
}

func TestBuildDegradesUntilDesignSystemIsReady(t *testing.T) {
	w := bootstrapped(t, nil)
	release := holdDerivations(w)
	t.Cleanup(release)

	css := DefaultStylesheet + "\n@utility tab-4 { tab-size: 4; }"
	result, err := w.BuildCSS(css, nil, []string{"flex", "tab-4"})
	require.NoError(t, err)

	assert.Empty(t, result.TailwindClasses)
	assert.Equal(t, []string{"flex", "tab-4"}, result.NotTailwindClasses)
	assert.Contains(t, result.CSS, "tab-size: 4;", "the stylesheet itself is already rebuilt")

	release()
	waitReady(t, w)

	result, err = w.BuildCSS(css, nil, []string{"flex", "tab-4"})
	require.NoError(t, err)
	assert.Equal(t, []string{"flex", "tab-4"}, classNames(result))
	assert.Empty(t, result.NotTailwindClasses)
}

func TestBuildMissingFileWarns(t *testing.T) {
	w := bootstrapped(t, nil)

	result, err := w.BuildCSS(`@import "tailwindcss"; @import "./missing.css";`, nil, []string{"flex"})
	require.NoError(t, err)
	assert.Equal(t, []string{"stylesheet not found: /missing.css"}, result.Warnings)
	assert.Contains(t, result.CSS, "display: flex;")
}

func TestBuildVirtualFiles(t *testing.T) {
	w := bootstrapped(t, nil)
	files := map[string]string{"/components.css": ".btn { color: red; }"}

	result, err := w.BuildCSS(`@import "tailwindcss"; @import "./components.css";`, files, nil)
	require.NoError(t, err)
	assert.Contains(t, result.CSS, ".btn {\n  color: red;\n}")

	waitReady(t, w)
	assert.Equal(t, []string{"/components.css"}, w.Dependencies())
}

func TestBuildFilesAreSnapshotted(t *testing.T) {
	w := bootstrapped(t, nil)
	release := holdDerivations(w)
	t.Cleanup(release)

	css := `@import "tailwindcss"; @import "./card.css";`
	files := map[string]string{"/card.css": "@utility card { padding: 1rem; }"}
	result, err := w.BuildCSS(css, files, []string{"card"})
	require.NoError(t, err)
	assert.Equal(t, []string{"card"}, result.NotTailwindClasses)

	// The caller owns the map again once BuildCSS returns
	files["/card.css"] = "@utility card { margin: 2rem; }"
	files["/extra.css"] = ".extra { color: red; }"

	release()
	waitReady(t, w)

	result, err = w.BuildCSS(css, files, []string{"card"})
	require.NoError(t, err)
	require.Equal(t, []string{"card"}, classNames(result))
	assert.Contains(t, result.TailwindClasses[0].CSS, "padding: 1rem;")
	assert.NotContains(t, result.TailwindClasses[0].CSS, "margin")
	assert.Equal(t, []string{"/card.css"}, w.Dependencies())
}

func TestBuildCompileErrorKeepsState(t *testing.T) {
	w := bootstrapped(t, nil)

	_, err := w.BuildCSS(`@theme { --color-x: red;`, nil, []string{"flex"})
	require.Error(t, err)
	assert.Equal(t, DefaultStylesheet, w.state.text())

	result, err := w.BuildCSS(DefaultStylesheet, nil, []string{"flex"})
	require.NoError(t, err)
	assert.Equal(t, []string{"flex"}, classNames(result))
}

func TestSupersededDerivationNeverCommits(t *testing.T) {
	w := bootstrapped(t, nil)
	release := holdDerivations(w)
	t.Cleanup(release)

	_, err := w.BuildCSS(DefaultStylesheet+"\n.a { color: red; }", nil, nil)
	require.NoError(t, err)
	_, err = w.BuildCSS(`@import "tailwindcss" prefix(tw);`, nil, nil)
	require.NoError(t, err)

	release()
	waitReady(t, w)

	_, ds, _ := w.state.current()
	require.NotNil(t, ds)
	assert.Equal(t, uint64(3), ds.version)
	assert.Equal(t, "tw", ds.Prefix())
}

func TestLanguageFeaturesBeforeReady(t *testing.T) {
	docs := NewDocuments()
	docs.Open("file:///a.html", "html", 1, `<p class="flex">`)
	w := newTestWorker(t, docs)
	holdDerivations(w)
	require.NoError(t, w.Bootstrap())

	_, err := w.DoValidate("file:///a.html", "html")
	require.ErrorIs(t, err, ErrWorkerNotReady)
}

func TestModelNotFound(t *testing.T) {
	w := bootstrapped(t, nil)

	_, err := w.DoHover("file:///missing.html", "html", protocol.Position{})
	require.ErrorIs(t, err, ErrModelNotFound)
	assert.Contains(t, err.Error(), "file:///missing.html")
}

func TestRouter(t *testing.T) {
	docs := NewDocuments()
	docs.Open("file:///a.html", "html", 1, `<p class="mt-2 mt-4 bg-black">`)
	w := bootstrapped(t, docs)

	diags, err := w.DoValidate("file:///a.html", "html")
	require.NoError(t, err)
	assert.Len(t, diags, 2)

	colors, err := w.GetDocumentColors("file:///a.html", "html")
	require.NoError(t, err)
	assert.Len(t, colors, 1)

	hover, err := w.DoHover("file:///a.html", "html", protocol.Position{Line: 0, Character: 12})
	require.NoError(t, err)
	require.NotNil(t, hover)

	list, err := w.DoComplete("file:///a.html", "html", protocol.Position{Line: 0, Character: 12})
	require.NoError(t, err)
	require.NotNil(t, list)
	require.NotEmpty(t, list.Items)

	item, err := w.ResolveCompletionItem(list.Items[len(list.Items)-1])
	require.NoError(t, err)
	assert.NotNil(t, item.Documentation)

	// Client diagnostics are ignored; the range is validated again
	bogus := []protocol.Diagnostic{{Message: "bogus", Data: map[string]any{"rule": "cssConflict"}}}
	actions, err := w.DoCodeActions("file:///a.html", "html",
		protocol.Range{End: protocol.Position{Line: 0, Character: 40}},
		protocol.CodeActionContext{Diagnostics: bogus})
	require.NoError(t, err)
	assert.Len(t, actions, 2)
}

func TestAnalysisFollowsDesignSystem(t *testing.T) {
	docs := NewDocuments()
	docs.Open("file:///a.html", "html", 1, `<p class="tab-">`)
	w := bootstrapped(t, docs)

	pos := protocol.Position{Line: 0, Character: 14}
	list, err := w.DoComplete("file:///a.html", "html", pos)
	require.NoError(t, err)
	require.NotNil(t, list)
	assert.Empty(t, list.Items)

	_, err = w.BuildCSS(DefaultStylesheet+"\n@utility tab-4 { tab-size: 4; }", nil, nil)
	require.NoError(t, err)
	waitReady(t, w)

	list, err = w.DoComplete("file:///a.html", "html", pos)
	require.NoError(t, err)
	require.Len(t, list.Items, 1)
	assert.Equal(t, "tab-4", list.Items[0].Label)
}

func TestUpdateSettings(t *testing.T) {
	docs := NewDocuments()
	docs.Open("file:///a.html", "html", 1, `<p class="mt-2 mt-4">`)
	w := bootstrapped(t, docs)

	settings := w.settings
	settings.Lint.CSSConflict = "ignore"
	w.UpdateSettings(settings, w.capabilities)

	diags, err := w.DoValidate("file:///a.html", "html")
	require.NoError(t, err)
	assert.NotNil(t, diags)
	assert.Empty(t, diags)
}

func TestErrorsWrap(t *testing.T) {
	w := bootstrapped(t, nil)
	_, err := w.DoValidate("file:///nope", "html")
	assert.True(t, errors.Is(err, ErrModelNotFound))
}

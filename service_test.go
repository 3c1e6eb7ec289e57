package twbridge

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	svc := New(context.Background(), Config{})
	t.Cleanup(svc.Close)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	require.NoError(t, svc.WaitReady(ctx))
	return svc
}

func TestServiceBuild(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	result, err := svc.BuildCSS(ctx, DefaultStylesheet, []string{"flex", "not-a-class"}, nil)
	require.NoError(t, err)

	require.Len(t, result.TailwindClasses, 1)
	assert.Equal(t, "flex", result.TailwindClasses[0].ClassName)
	assert.NotEmpty(t, result.TailwindClasses[0].CSS)
	assert.Equal(t, []string{"not-a-class"}, result.NotTailwindClasses)
	assert.Contains(t, result.CSS, "display: flex;")

	cached, err := svc.BuildCSS(ctx, DefaultStylesheet, []string{"flex"}, nil)
	require.NoError(t, err)
	assert.Same(t, result, cached)

	fresh, err := svc.BuildCSS(ctx, DefaultStylesheet, []string{"flex", "grid"}, nil)
	require.NoError(t, err)
	assert.Len(t, fresh.TailwindClasses, 2)
	assert.Empty(t, fresh.NotTailwindClasses)
}

func TestServiceMissingImport(t *testing.T) {
	svc := newTestService(t)

	css := DefaultStylesheet + "\n@import \"./missing.css\";"
	result, err := svc.BuildCSS(context.Background(), css, []string{"flex"}, nil)
	require.NoError(t, err)
	assert.NotEmpty(t, result.Warnings)
}

func TestServiceDocuments(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	uri := "file:///index.html"

	_, err := svc.DoValidate(ctx, uri)
	require.ErrorIs(t, err, ErrModelNotFound)

	svc.OpenDocument(uri, "html", 1, `<div class="flex">`)
	diagnostics, err := svc.DoValidate(ctx, uri)
	require.NoError(t, err)
	assert.Empty(t, diagnostics)

	assert.True(t, svc.UpdateDocument(uri, 2, `<div class="mt-2 mt-4">`))
	assert.False(t, svc.UpdateDocument(uri, 1, `<div class="flex">`))

	diagnostics, err = svc.DoValidate(ctx, uri)
	require.NoError(t, err)
	assert.Len(t, diagnostics, 2)

	hover, err := svc.DoHover(ctx, uri, protocol.Position{Line: 0, Character: 13})
	require.NoError(t, err)
	require.NotNil(t, hover)

	list, err := svc.DoComplete(ctx, uri, protocol.Position{Line: 0, Character: 12})
	require.NoError(t, err)
	require.NotNil(t, list)
	assert.NotEmpty(t, list.Items)

	svc.CloseDocument(uri)
	_, err = svc.DoHover(ctx, uri, protocol.Position{})
	require.ErrorIs(t, err, ErrModelNotFound)
}

func TestServiceClosed(t *testing.T) {
	svc := New(context.Background(), Config{})
	svc.Close()

	_, err := svc.BuildCSS(context.Background(), DefaultStylesheet, []string{"flex"}, nil)
	require.ErrorIs(t, err, ErrWorkerClosed)
}

func TestServiceLoadStylesheet(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	css := DefaultStylesheet + "\n@import \"./components.css\";\n@import \"./gone.css\";"
	files := map[string]string{"/components.css": "@utility card { padding: 1rem; }"}

	warnings, err := svc.LoadStylesheet(ctx, css, files)
	require.NoError(t, err)
	assert.Equal(t, []string{"stylesheet not found: /gone.css"}, warnings)

	deps, err := svc.Dependencies(ctx)
	require.NoError(t, err)
	assert.Contains(t, deps, "/components.css")

	result, err := svc.BuildCSS(ctx, css, []string{"card"}, files)
	require.NoError(t, err)
	require.Len(t, result.TailwindClasses, 1)
	assert.Contains(t, result.TailwindClasses[0].CSS, "padding: 1rem;")
}

package stylesheet

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuiltinAliases(t *testing.T) {
	tests := []struct {
		partial Partial
		ids     []string
	}{
		{PartialIndex, []string{"tailwindcss", "tailwindcss.css", "tailwindcss/index", "tailwindcss/index.css", "./index.css", "index.css"}},
		{PartialPreflight, []string{"tailwindcss/preflight", "tailwindcss/preflight.css", "./preflight.css", "preflight.css"}},
		{PartialTheme, []string{"tailwindcss/theme", "tailwindcss/theme.css", "./theme.css", "theme.css"}},
		{PartialUtilities, []string{"tailwindcss/utilities", "tailwindcss/utilities.css", "./utilities.css", "utilities.css"}},
	}

	loader := NewLoader(nil, zerolog.Nop())
	bases := []string{"/", "/src", "/deeply/nested/dir", ""}

	for _, tt := range tests {
		t.Run(string(tt.partial), func(t *testing.T) {
			want := Builtin(tt.partial)
			require.NotEmpty(t, want)

			for _, id := range tt.ids {
				for _, base := range bases {
					res, err := loader.LoadStylesheet(id, base)
					require.NoError(t, err)
					assert.Equal(t, want, res.Content, "id %q base %q", id, base)
				}
			}
		})
	}

	// Built-ins are not virtual dependencies.
	assert.Empty(t, loader.Dependencies())
}

func TestResolvePath(t *testing.T) {
	tests := []struct {
		id   string
		base string
		want string
	}{
		{"/styles/app.css", "/src", "/styles/app.css"},
		{"./button.css", "/src/components", "/src/components/button.css"},
		{"../base.css", "/src/components", "/src/base.css"},
		{"./a/../b/./c.css", "/src", "/src/b/c.css"},
		{"../../../x.css", "/src", "/x.css"},
		{"./x.css", "", "/x.css"},
		{"plain.css", "/src", "plain.css"},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolvePath(tt.id, tt.base))
		})
	}
}

func TestLoadVirtualFile(t *testing.T) {
	files := map[string]string{
		"/src/components/button.css": ".btn { color: red; }",
	}
	loader := NewLoader(files, zerolog.Nop())

	res, err := loader.LoadStylesheet("./components/button.css", "/src")
	require.NoError(t, err)
	assert.Equal(t, "/src/components/button.css", res.Path)
	assert.Equal(t, "/src/components", res.Base)
	assert.Equal(t, ".btn { color: red; }", res.Content)
	assert.Equal(t, []string{"/src/components/button.css"}, loader.Dependencies())
	assert.Empty(t, loader.Missing())
}

func TestMissingFileDegrades(t *testing.T) {
	var buf bytes.Buffer
	loader := NewLoader(map[string]string{}, zerolog.New(&buf))

	res, err := loader.LoadStylesheet("./missing.css", "/src")
	require.NoError(t, err)
	assert.Equal(t, "/src/missing.css", res.Path)
	assert.Empty(t, res.Content)
	assert.Contains(t, buf.String(), "stylesheet not found")
	assert.Contains(t, buf.String(), "/src/missing.css")

	// Missing files are still dependencies: creating them should trigger a rebuild.
	assert.Equal(t, []string{"/src/missing.css"}, loader.Dependencies())

	_, err = loader.LoadStylesheet("/src/missing.css", "/")
	require.NoError(t, err)
	assert.Equal(t, []string{"/src/missing.css"}, loader.Missing())
}

func TestLoadModuleUnsupported(t *testing.T) {
	loader := NewLoader(nil, zerolog.Nop())
	err := loader.LoadModule("./plugin.js", "/")
	require.ErrorIs(t, err, ErrModuleLoadingUnsupported)
}

package cssast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		css   string
		check func(*testing.T, *Root)
	}{
		{
			name: "simple rule",
			css:  ".btn { color: red; }",
			check: func(t *testing.T, r *Root) {
				require.Len(t, r.Nodes, 1)
				rule, ok := r.Nodes[0].(*Rule)
				require.True(t, ok)
				assert.Equal(t, ".btn", rule.Selector)
				require.Len(t, rule.Nodes, 1)
				assert.Equal(t, &Declaration{Property: "color", Value: "red"}, rule.Nodes[0])
			},
		},
		{
			name: "statement at-rule",
			css:  `@import "tailwindcss" layer(base);`,
			check: func(t *testing.T, r *Root) {
				require.Len(t, r.Nodes, 1)
				at, ok := r.Nodes[0].(*AtRule)
				require.True(t, ok)
				assert.Equal(t, "import", at.Name)
				assert.Equal(t, `"tailwindcss" layer(base)`, at.Params)
				assert.False(t, at.Block)
			},
		},
		{
			name: "custom properties in block at-rule",
			css: `@theme {
				--color-red-500: oklch(63.7% 0.237 25.331);
				--spacing: 0.25rem;
			}`,
			check: func(t *testing.T, r *Root) {
				at := r.Nodes[0].(*AtRule)
				assert.Equal(t, "theme", at.Name)
				assert.True(t, at.Block)
				decls := Declarations(at.Nodes)
				require.Len(t, decls, 2)
				assert.Equal(t, "--color-red-500", decls[0].Property)
				assert.Equal(t, "oklch(63.7% 0.237 25.331)", decls[0].Value)
				assert.Equal(t, "0.25rem", decls[1].Value)
			},
		},
		{
			name: "important and missing final semicolon",
			css:  ".a { display: none !important; color: blue }",
			check: func(t *testing.T, r *Root) {
				decls := Declarations(r.Nodes)
				require.Len(t, decls, 2)
				assert.True(t, decls[0].Important)
				assert.Equal(t, "none", decls[0].Value)
				assert.Equal(t, "blue", decls[1].Value)
			},
		},
		{
			name: "nested media",
			css:  "@media (width >= 40rem) { .sm\\:flex { display: flex; } }",
			check: func(t *testing.T, r *Root) {
				at := r.Nodes[0].(*AtRule)
				assert.Equal(t, "(width >= 40rem)", at.Params)
				rule := at.Nodes[0].(*Rule)
				assert.Equal(t, `.sm\:flex`, rule.Selector)
			},
		},
		{
			name: "comment kept",
			css:  "/* hello */ .a { color: red; }",
			check: func(t *testing.T, r *Root) {
				require.Len(t, r.Nodes, 2)
				assert.Equal(t, &Comment{Text: " hello "}, r.Nodes[0])
			},
		},
		{
			name: "semicolon inside function",
			css:  `.a { background-image: url("data:image/svg+xml;utf8,x"); }`,
			check: func(t *testing.T, r *Root) {
				decls := Declarations(r.Nodes)
				require.Len(t, decls, 1)
				assert.Equal(t, "background-image", decls[0].Property)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root, err := Parse(tt.css)
			require.NoError(t, err)
			tt.check(t, root)
		})
	}
}

func TestParseUnbalanced(t *testing.T) {
	_, err := Parse(".a { color: red;")
	require.ErrorIs(t, err, ErrUnbalanced)

	_, err = Parse(".a { color: red; } }")
	require.ErrorIs(t, err, ErrUnbalanced)
}

func TestToCSS(t *testing.T) {
	nodes := []Node{
		NewAtRule("media", "(width >= 40rem)",
			NewRule(".sm\\:flex", Decl("display", "flex")),
		),
		&AtRule{Name: "layer", Params: "theme, base"},
	}

	want := "@media (width >= 40rem) {\n" +
		"  .sm\\:flex {\n" +
		"    display: flex;\n" +
		"  }\n" +
		"}\n" +
		"@layer theme, base;"
	assert.Equal(t, want, ToCSS(nodes))
}

func TestRoundTripIsStable(t *testing.T) {
	src := `.flex { display: flex; }
@media (hover: hover) { .hover\:underline:hover { text-decoration-line: underline; } }`

	first, err := Parse(src)
	require.NoError(t, err)

	second, err := Parse(first.String())
	require.NoError(t, err)

	assert.Equal(t, first.String(), second.String())
}

package tailwind

import (
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yacobolo/twbridge/internal/stylesheet"
)

func testOptions(files map[string]string) Options {
	return Options{
		Base:   "/",
		Loader: stylesheet.NewLoader(files, zerolog.Nop()),
	}
}

func loadDefault(t *testing.T, css string) *DesignSystem {
	t.Helper()
	ds, err := LoadDesignSystem(css, testOptions(nil))
	require.NoError(t, err)
	return ds
}

func TestBuildDefaultStylesheet(t *testing.T) {
	sheet, err := Compile(`@import "tailwindcss";`, testOptions(nil))
	require.NoError(t, err)

	out := sheet.Build([]string{"flex", "not-a-class"})

	assert.Contains(t, out, "@layer theme, base, components, utilities;")
	assert.Contains(t, out, "--color-red-500: oklch(63.7% 0.237 25.331);")
	assert.Contains(t, out, "@layer utilities {\n  .flex {\n    display: flex;\n  }\n}")
	assert.NotContains(t, out, "not-a-class")
	assert.NotContains(t, out, "@tailwind")
	assert.NotContains(t, out, "@theme")
}

func TestCandidatesToCSS(t *testing.T) {
	ds := loadDefault(t, `@import "tailwindcss";`)

	tests := []struct {
		candidate string
		want      string
	}{
		{"flex", ".flex {\n  display: flex;\n}"},
		{"p-4", ".p-4 {\n  padding: calc(var(--spacing) * 4);\n}"},
		{"-mt-2", ".-mt-2 {\n  margin-top: calc(var(--spacing) * -2);\n}"},
		{"w-1/2", ".w-1\\/2 {\n  width: calc(1/2 * 100%);\n}"},
		{"bg-red-500/50", ".bg-red-500\\/50 {\n  background-color: color-mix(in oklab, var(--color-red-500) 50%, transparent);\n}"},
		{"text-sm", ".text-sm {\n  font-size: var(--text-sm);\n  line-height: var(--text-sm--line-height);\n}"},
		{"bg-[#bada55]", ".bg-\\[\\#bada55\\] {\n  background-color: #bada55;\n}"},
		{"[mask-type:luminance]", ".\\[mask-type\\:luminance\\] {\n  mask-type: luminance;\n}"},
		{"flex!", ".flex\\! {\n  display: flex !important;\n}"},
		{"hover:underline", "@media (hover: hover) {\n  .hover\\:underline:hover {\n    text-decoration-line: underline;\n  }\n}"},
		{"md:flex", "@media (width >= 48rem) {\n  .md\\:flex {\n    display: flex;\n  }\n}"},
		{"group-hover:flex", "@media (hover: hover) {\n  .group-hover\\:flex:is(:where(.group):hover *) {\n    display: flex;\n  }\n}"},
		{"data-[state=open]:flex", ".data-\\[state\\=open\\]\\:flex[data-state=open] {\n  display: flex;\n}"},
		{"not-a-class", ""},
		{"hover:", ""},
		{"p-4.3", ""},
		{"-p-4", ""},
		{"unknown:flex", ""},
	}

	candidates := make([]string, len(tests))
	for i, tt := range tests {
		candidates[i] = tt.candidate
	}
	got := ds.CandidatesToCSS(candidates)
	require.Len(t, got, len(tests))

	for i, tt := range tests {
		t.Run(tt.candidate, func(t *testing.T) {
			assert.Equal(t, tt.want, got[i])
		})
	}
}

func TestCustomDirectives(t *testing.T) {
	ds := loadDefault(t, `@import "tailwindcss";
@theme {
  --color-brand: #123456;
}
@utility tab-4 {
  tab-size: 4;
}
@utility tab-* {
  tab-size: --value(integer);
}
@custom-variant theme-dark (&:where(.dark, .dark *));`)

	got := ds.CandidatesToCSS([]string{"bg-brand", "tab-4", "tab-8", "theme-dark:flex", "tab-x"})

	assert.Equal(t, ".bg-brand {\n  background-color: var(--color-brand);\n}", got[0])
	assert.Equal(t, ".tab-4 {\n  tab-size: 4;\n}", got[1])
	assert.Equal(t, ".tab-8 {\n  tab-size: 8;\n}", got[2])
	assert.Equal(t, ".theme-dark\\:flex:where(.dark, .dark *) {\n  display: flex;\n}", got[3])
	assert.Empty(t, got[4])

	value, ok := ds.ResolveThemeValue("--color-brand")
	require.True(t, ok)
	assert.Equal(t, "#123456", value)
}

func TestThemeOverrides(t *testing.T) {
	ds := loadDefault(t, `@import "tailwindcss";
@theme {
  --color-*: initial;
  --color-ink: #111;
}`)

	got := ds.CandidatesToCSS([]string{"bg-red-500", "bg-ink"})
	assert.Empty(t, got[0])
	assert.NotEmpty(t, got[1])
	assert.Equal(t, []string{"ink"}, ds.Theme().Keys("--color"))
}

func TestImportResolution(t *testing.T) {
	files := map[string]string{
		"/src/components.css": ".btn { color: red; }",
	}
	opts := testOptions(files)
	opts.Base = "/src"

	sheet, err := Compile(`@import "./components.css" layer(components);`, opts)
	require.NoError(t, err)

	assert.Equal(t, "@layer components {\n  .btn {\n    color: red;\n  }\n}", sheet.Build(nil))
}

func TestImportMissingFileIsEmpty(t *testing.T) {
	sheet, err := Compile(`@import "./missing.css"; .a { color: red; }`, testOptions(map[string]string{}))
	require.NoError(t, err)
	assert.Equal(t, ".a {\n  color: red;\n}", sheet.Build(nil))
}

func TestImportCycle(t *testing.T) {
	files := map[string]string{
		"/a.css": `@import "./b.css";`,
		"/b.css": `@import "./a.css";`,
	}
	_, err := Compile(`@import "./a.css";`, testOptions(files))
	require.ErrorIs(t, err, ErrImportDepth)
}

func TestPrefix(t *testing.T) {
	ds := loadDefault(t, `@import "tailwindcss" prefix(tw);`)

	assert.Equal(t, "tw", ds.Prefix())
	got := ds.CandidatesToCSS([]string{"tw:flex", "flex"})
	assert.Equal(t, ".tw\\:flex {\n  display: flex;\n}", got[0])
	assert.Empty(t, got[1])
}

func TestPluginUnsupported(t *testing.T) {
	_, err := Compile(`@import "tailwindcss"; @plugin "@tailwindcss/typography";`, testOptions(nil))
	require.ErrorIs(t, err, stylesheet.ErrModuleLoadingUnsupported)
}

func TestMalformedStylesheet(t *testing.T) {
	_, err := Compile(`@theme { --color-x: red;`, testOptions(nil))
	require.Error(t, err)
}

func TestApply(t *testing.T) {
	sheet, err := Compile(`@import "tailwindcss";
.btn { @apply px-4 font-bold; }`, testOptions(nil))
	require.NoError(t, err)

	out := sheet.Build(nil)
	assert.Contains(t, out, "padding-inline: calc(var(--spacing) * 4);")
	assert.Contains(t, out, "font-weight: var(--font-weight-bold);")
	assert.NotContains(t, out, "@apply")

	_, err = Compile(`@import "tailwindcss"; .btn { @apply not-real; }`, testOptions(nil))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not-real")
}

func TestBuildOrder(t *testing.T) {
	sheet, err := Compile(`@import "tailwindcss";`, testOptions(nil))
	require.NoError(t, err)

	out := sheet.Build([]string{"md:flex", "p-4", "flex", "hover:flex", "flex"})

	flex := strings.Index(out, ".flex {")
	padding := strings.Index(out, ".p-4 {")
	hover := strings.Index(out, `.hover\:flex:hover`)
	md := strings.Index(out, `.md\:flex {`)

	require.True(t, flex >= 0 && padding >= 0 && hover >= 0 && md >= 0, out)
	assert.Less(t, flex, padding, "utility order")
	assert.Less(t, padding, hover, "plain utilities before variants")
	assert.Less(t, hover, md, "variant order")
	assert.Equal(t, 1, strings.Count(out, ".flex {"), "duplicates collapse")
}

func TestClassList(t *testing.T) {
	ds := loadDefault(t, `@import "tailwindcss";`)

	entries := make(map[string]ClassEntry)
	for _, e := range ds.ClassList() {
		entries[e.Name] = e
	}

	for _, name := range []string{"flex", "hidden", "p-4", "-m-4", "text-sm", "w-1/2", "rounded-lg", "font-bold", "md:flex"} {
		if name == "md:flex" {
			assert.NotContains(t, entries, name, "variants are not classes")
			continue
		}
		assert.Contains(t, entries, name)
	}

	assert.Len(t, entries["bg-red-500"].Modifiers, 21)
	assert.Empty(t, entries["text-sm"].Modifiers)

	// Computed once.
	assert.Equal(t, len(ds.ClassList()), len(entries))
}

func TestVariantOrder(t *testing.T) {
	ds := loadDefault(t, `@import "tailwindcss";`)

	hover, ok := ds.VariantOrder("hover")
	require.True(t, ok)
	md, ok := ds.VariantOrder("md")
	require.True(t, ok)
	assert.Less(t, hover, md)

	_, ok = ds.VariantOrder("nope")
	assert.False(t, ok)

	orders, ok := ds.CandidateVariantOrder("md:hover:flex")
	require.True(t, ok)
	assert.Equal(t, []int{md, hover}, orders)
}

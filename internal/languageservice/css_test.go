package languageservice

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseColor(t *testing.T) {
	s := newTestState(t, `@import "tailwindcss";`)

	tests := []struct {
		value   string
		r, g, b float64
		alpha   float64
	}{
		{"#fff", 1, 1, 1, 1},
		{"#000000", 0, 0, 0, 1},
		{"#ff000080", 1, 0, 0, 128.0 / 255},
		{"rgb(255 0 0)", 1, 0, 0, 1},
		{"rgb(0, 255, 0, 0.25)", 0, 1, 0, 0.25},
		{"rgb(0 0 255 / 50%)", 0, 0, 1, 0.5},
		{"oklch(100% 0 0)", 1, 1, 1, 1},
		{"oklch(0 0 0 / 0.5)", 0, 0, 0, 0.5},
		{"white", 1, 1, 1, 1},
		{"var(--color-black)", 0, 0, 0, 1},
		{"var(--missing, #fff)", 1, 1, 1, 1},
		{"color-mix(in oklab, var(--color-white) 25%, transparent)", 1, 1, 1, 0.25},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			c, alpha := s.parseColor(tt.value, 0)
			require.NotNil(t, c)
			assert.InDelta(t, tt.r, c.R, 0.01)
			assert.InDelta(t, tt.g, c.G, 0.01)
			assert.InDelta(t, tt.b, c.B, 0.01)
			assert.InDelta(t, tt.alpha, alpha, 0.01)
		})
	}
}

func TestParseColorRejects(t *testing.T) {
	s := newTestState(t, `@import "tailwindcss";`)

	for _, v := range []string{"", "currentcolor", "inherit", "transparent", "var(--missing)", "#zzz", "rgb(1 2)", "1rem"} {
		c, _ := s.parseColor(v, 0)
		assert.Nil(t, c, v)
	}
}

func TestRedThemeColor(t *testing.T) {
	s := newTestState(t, `@import "tailwindcss";`)

	c, alpha := s.classColor("bg-red-500")
	require.NotNil(t, c)
	assert.Equal(t, 1.0, alpha)
	assert.Greater(t, c.R, 0.9)
	assert.Less(t, c.G, 0.3)
	assert.Less(t, c.B, 0.3)
}

func TestPixelNote(t *testing.T) {
	s := newTestState(t, `@import "tailwindcss";`)

	tests := []struct {
		value string
		want  string
	}{
		{"calc(var(--spacing) * 4)", "1rem = 16px"},
		{"calc(var(--spacing) * -2.5)", "-0.625rem = -10px"},
		{"var(--text-sm)", "0.875rem = 14px"},
		{"1.5rem 2rem", "1.5rem = 24px, 2rem = 32px"},
		{"1px", ""},
		{"calc(1/2 * 100%)", ""},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			assert.Equal(t, tt.want, s.pixelNote(tt.value))
		})
	}
}

func TestWithPixelEquivalents(t *testing.T) {
	s := newTestState(t, `@import "tailwindcss";`)
	s.Settings.RootFontSize = 10

	css := "@media (width >= 40rem) {\n  .sm\\:text-sm {\n    font-size: var(--text-sm) !important;\n  }\n}"
	want := "@media (width >= 40rem) {\n  .sm\\:text-sm {\n    font-size: var(--text-sm) !important; /* 0.875rem = 8.75px */\n  }\n}"
	assert.Equal(t, want, s.withPixelEquivalents(css))
}

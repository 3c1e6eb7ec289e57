// Package stylesheet resolves @import identifiers to stylesheet text: the
// compiler's built-in partials are embedded, everything else comes from an
// in-memory map of virtual files.
package stylesheet

import (
	"embed"
	"errors"
	"path"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

//go:embed css/*.css
var builtins embed.FS

// ErrModuleLoadingUnsupported is returned by LoadModule. Only stylesheets can
// be loaded; the worker has no module loader.
var ErrModuleLoadingUnsupported = errors.New("module loading is not supported")

// Resource is a resolved stylesheet
type Resource struct {
	Path    string // Resolved path ("/src/app.css" or the built-in identifier)
	Base    string // Directory used to resolve imports found in Content
	Content string
}

// Partial identifies one of the built-in stylesheets
type Partial string

// Built-in partials
const (
	PartialIndex     Partial = "index.css"
	PartialPreflight Partial = "preflight.css"
	PartialTheme     Partial = "theme.css"
	PartialUtilities Partial = "utilities.css"
)

// aliases maps every accepted spelling to its partial
var aliases = map[string]Partial{
	"tailwindcss":           PartialIndex,
	"tailwindcss.css":       PartialIndex,
	"tailwindcss/index":     PartialIndex,
	"tailwindcss/index.css": PartialIndex,
	"./index.css":           PartialIndex,
	"index.css":             PartialIndex,

	"tailwindcss/preflight":     PartialPreflight,
	"tailwindcss/preflight.css": PartialPreflight,
	"./preflight.css":           PartialPreflight,
	"preflight.css":             PartialPreflight,

	"tailwindcss/theme":     PartialTheme,
	"tailwindcss/theme.css": PartialTheme,
	"./theme.css":           PartialTheme,
	"theme.css":             PartialTheme,

	"tailwindcss/utilities":     PartialUtilities,
	"tailwindcss/utilities.css": PartialUtilities,
	"./utilities.css":           PartialUtilities,
	"utilities.css":             PartialUtilities,
}

// Builtin returns the embedded text of a partial
func Builtin(p Partial) string {
	data, err := builtins.ReadFile("css/" + string(p))
	if err != nil {
		// The embedded set is fixed at build time.
		panic("stylesheet: missing embedded partial " + string(p))
	}
	return string(data)
}

// LookupBuiltin resolves id against the built-in aliases
func LookupBuiltin(id string) (Partial, bool) {
	p, ok := aliases[id]
	return p, ok
}

// Loader resolves import identifiers for one compilation.
// It is safe for concurrent use.
type Loader struct {
	files  map[string]string
	logger zerolog.Logger

	mu           sync.Mutex
	dependencies []string
	missing      []string
	seen         map[string]bool
}

// NewLoader creates a loader over a flat map of virtual absolute paths to
// file contents.
func NewLoader(files map[string]string, logger zerolog.Logger) *Loader {
	return &Loader{
		files:  files,
		logger: logger,
		seen:   make(map[string]bool),
	}
}

// LoadStylesheet resolves id relative to base.
//
// Built-in identifiers resolve to embedded text whatever the base. Missing
// virtual files are logged and resolve to empty content so the build can
// continue.
func (l *Loader) LoadStylesheet(id, base string) (Resource, error) {
	if p, ok := LookupBuiltin(id); ok {
		return Resource{
			Path:    string(p),
			Base:    "/",
			Content: Builtin(p),
		}, nil
	}

	resolved := ResolvePath(id, base)
	l.track(resolved)

	content, ok := l.files[resolved]
	if !ok {
		l.markMissing(resolved)
		l.logger.Warn().
			Str("id", id).
			Str("path", resolved).
			Msg("stylesheet not found, using empty content")
	}

	return Resource{
		Path:    resolved,
		Base:    path.Dir(resolved),
		Content: content,
	}, nil
}

// LoadModule always fails
func (l *Loader) LoadModule(id, _ string) error {
	return ErrModuleLoadingUnsupported
}

// Dependencies returns the virtual paths resolved so far, in order of first
// resolution.
func (l *Loader) Dependencies() []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	deps := make([]string, len(l.dependencies))
	copy(deps, l.dependencies)
	return deps
}

// Missing returns the resolved paths that had no file, in resolution order
func (l *Loader) Missing() []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	return append([]string(nil), l.missing...)
}

func (l *Loader) markMissing(p string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, m := range l.missing {
		if m == p {
			return
		}
	}
	l.missing = append(l.missing, p)
}

func (l *Loader) track(p string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.seen[p] {
		l.seen[p] = true
		l.dependencies = append(l.dependencies, p)
	}
}

// ResolvePath turns an import identifier into an absolute virtual path.
// Absolute ids are used as-is, ./ and ../ ids are joined onto base with
// . and .. collapsed, anything else is treated as already absolute.
func ResolvePath(id, base string) string {
	switch {
	case strings.HasPrefix(id, "/"):
		return id
	case strings.HasPrefix(id, "./"), strings.HasPrefix(id, "../"):
		if base == "" {
			base = "/"
		}
		return path.Join("/", base, id)
	default:
		return id
	}
}

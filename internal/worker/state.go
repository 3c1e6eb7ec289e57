package worker

import (
	"context"
	"fmt"
	"maps"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/yacobolo/twbridge/internal/stylesheet"
	"github.com/yacobolo/twbridge/internal/tailwind"
)

// DefaultStylesheet is compiled when the worker starts
const DefaultStylesheet = `@import "tailwindcss";`

// compilerState holds the compiled stylesheet and the design system derived
// from it.
//
// A new stylesheet is compiled synchronously and bumps the version; its
// design system is derived on another goroutine and committed only if the
// version is still current. Until then design() keeps returning the previous
// design system and current() reports none.
type compilerState struct {
	logger zerolog.Logger

	mu       sync.Mutex
	version  uint64
	css      string
	sheet    *tailwind.Stylesheet
	warnings []string
	ds       *designSystem
	err      error // Derivation error of the current version
	ready    chan struct{}
	cancel   context.CancelFunc

	// beforeDerive, when set, runs on the deriving goroutine before the
	// design system is loaded. Tests set it to hold derivations back.
	beforeDerive func(ctx context.Context)
}

func newCompilerState(logger zerolog.Logger) *compilerState {
	return &compilerState{logger: logger}
}

func (s *compilerState) initialized() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.sheet != nil
}

func (s *compilerState) text() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.css
}

// update compiles css and starts deriving its design system. A compile error
// leaves the state untouched. The stylesheet and its design system share one
// copy of files.
func (s *compilerState) update(css string, files map[string]string) error {
	files = maps.Clone(files)
	loader := stylesheet.NewLoader(files, s.logger)
	sheet, err := tailwind.Compile(css, tailwind.Options{Base: "/", Loader: loader})
	if err != nil {
		return fmt.Errorf("compile stylesheet: %w", err)
	}

	var warnings []string
	for _, p := range loader.Missing() {
		warnings = append(warnings, fmt.Sprintf("stylesheet not found: %s", p))
	}

	ctx, cancel := context.WithCancel(context.Background())
	ready := make(chan struct{})

	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.version++
	version := s.version
	s.css = css
	s.sheet = sheet
	s.warnings = warnings
	s.err = nil
	s.ready = ready
	s.cancel = cancel
	hook := s.beforeDerive
	s.mu.Unlock()

	s.logger.Debug().
		Uint64("version", version).
		Int("warnings", len(warnings)).
		Msg("stylesheet compiled")

	go s.derive(ctx, version, css, files, ready, hook)
	return nil
}

func (s *compilerState) derive(ctx context.Context, version uint64, css string, files map[string]string, ready chan struct{}, hook func(context.Context)) {
	defer close(ready)
	start := time.Now()

	if hook != nil {
		hook(ctx)
	}
	if ctx.Err() != nil {
		s.logger.Debug().Uint64("version", version).Msg("design system superseded")
		return
	}

	loader := stylesheet.NewLoader(files, zerolog.Nop())
	ds, err := tailwind.LoadDesignSystem(css, tailwind.Options{Base: "/", Loader: loader})

	s.mu.Lock()
	defer s.mu.Unlock()

	if version != s.version {
		return
	}
	if err != nil {
		s.err = fmt.Errorf("load design system: %w", err)
		s.logger.Error().Err(err).Uint64("version", version).Msg("design system failed")
		return
	}

	s.ds = newDesignSystem(ds, loader, version, s.logger)
	s.logger.Debug().
		Uint64("version", version).
		Dur("took", time.Since(start)).
		Msg("design system ready")
}

// current returns the compiled stylesheet and, if it has been derived, the
// design system of the same version.
func (s *compilerState) current() (*tailwind.Stylesheet, *designSystem, []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var ds *designSystem
	if s.ds != nil && s.ds.version == s.version {
		ds = s.ds
	}
	return s.sheet, ds, s.warnings
}

// design returns the latest committed design system, possibly derived from
// an older stylesheet.
func (s *compilerState) design() *designSystem {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.ds
}

// readiness reports whether the current version has its design system, and
// otherwise returns a channel closed when the pending derivation ends.
func (s *compilerState) readiness() (bool, <-chan struct{}, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sheet == nil {
		return false, nil, ErrNotInitialized
	}
	if s.ds != nil && s.ds.version == s.version {
		return true, nil, nil
	}
	return false, s.ready, s.err
}

func (s *compilerState) close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}
}

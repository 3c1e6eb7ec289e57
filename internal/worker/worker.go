// Package worker owns the compiler state and answers editor requests
// against it. A Worker is single-threaded; Start runs one on its own
// goroutine behind a Proxy.
package worker

import (
	"fmt"

	"github.com/rs/zerolog"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/yacobolo/twbridge/internal/languageservice"
)

// TailwindClass is a requested class the design system knows
type TailwindClass struct {
	ClassName string `json:"className"`
	CSS       string `json:"css"`
}

// BuildResult is the output of a build. Each requested class is in exactly
// one of TailwindClasses and NotTailwindClasses, in request order.
type BuildResult struct {
	CSS                string          `json:"css"`
	TailwindClasses    []TailwindClass `json:"tailwindClasses"`
	NotTailwindClasses []string        `json:"notTailwindClasses"`
	Errors             []string        `json:"errors,omitempty"`
	Warnings           []string        `json:"warnings,omitempty"`
}

// Options configure a worker
type Options struct {
	Logger       zerolog.Logger
	Settings     languageservice.Settings
	Capabilities languageservice.Capabilities
}

// Worker answers requests against one compiler state. It is not safe for
// concurrent use.
type Worker struct {
	mirror MirrorContext
	logger zerolog.Logger
	state  *compilerState

	settings     languageservice.Settings
	capabilities languageservice.Capabilities

	analysis    *languageservice.State
	analysisFor *designSystem
}

// New creates a worker. Call Bootstrap before anything else.
func New(mirror MirrorContext, opts Options) *Worker {
	// Zero settings mean defaults
	if opts.Settings.RootFontSize == 0 && opts.Settings.TabSize == 0 {
		opts.Settings = languageservice.DefaultSettings()
	}
	return &Worker{
		mirror:       mirror,
		logger:       opts.Logger,
		state:        newCompilerState(opts.Logger),
		settings:     opts.Settings,
		capabilities: opts.Capabilities,
	}
}

// Bootstrap compiles DefaultStylesheet
func (w *Worker) Bootstrap() error {
	if w.state.initialized() {
		return nil
	}
	return w.state.update(DefaultStylesheet, nil)
}

// BuildCSS compiles css if it changed since the last call and builds it for
// classes. Until the design system of css is derived, every class is
// reported in NotTailwindClasses.
func (w *Worker) BuildCSS(css string, files map[string]string, classes []string) (*BuildResult, error) {
	if !w.state.initialized() {
		return nil, ErrNotInitialized
	}

	if css != w.state.text() {
		if err := w.state.update(css, files); err != nil {
			return nil, err
		}
	}

	sheet, ds, warnings := w.state.current()
	classes = unique(classes)

	result := &BuildResult{
		CSS:                sheet.Build(classes),
		TailwindClasses:    []TailwindClass{},
		NotTailwindClasses: []string{},
		Warnings:           warnings,
	}

	if ds == nil {
		result.NotTailwindClasses = append(result.NotTailwindClasses, classes...)
		return result, nil
	}

	for i, rule := range ds.CandidatesToCSS(classes) {
		if rule == "" {
			result.NotTailwindClasses = append(result.NotTailwindClasses, classes[i])
			continue
		}
		result.TailwindClasses = append(result.TailwindClasses, TailwindClass{ClassName: classes[i], CSS: rule})
	}
	return result, nil
}

// UpdateSettings replaces the editor settings
func (w *Worker) UpdateSettings(settings languageservice.Settings, capabilities languageservice.Capabilities) {
	w.settings = settings
	w.capabilities = capabilities
	w.analysis = nil
}

// Dependencies returns the virtual files imported by the stylesheet of the
// latest design system.
func (w *Worker) Dependencies() []string {
	if ds := w.state.design(); ds != nil {
		return ds.Dependencies()
	}
	return nil
}

// DoComplete returns completions, or nil outside a class list
func (w *Worker) DoComplete(uri, languageID string, pos protocol.Position) (*protocol.CompletionList, error) {
	s, doc, err := w.prepare(uri, languageID)
	if err != nil {
		return nil, err
	}
	return s.DoComplete(doc, pos), nil
}

// ResolveCompletionItem adds documentation to a completion item
func (w *Worker) ResolveCompletionItem(item protocol.CompletionItem) (protocol.CompletionItem, error) {
	s, err := w.analysisState()
	if err != nil {
		return item, err
	}
	return s.ResolveCompletionItem(item), nil
}

// DoHover returns the CSS of the class under pos, or nil
func (w *Worker) DoHover(uri, languageID string, pos protocol.Position) (*protocol.Hover, error) {
	s, doc, err := w.prepare(uri, languageID)
	if err != nil {
		return nil, err
	}
	return s.DoHover(doc, pos), nil
}

// DoValidate lints the document. The result is never nil on success.
func (w *Worker) DoValidate(uri, languageID string) ([]protocol.Diagnostic, error) {
	s, doc, err := w.prepare(uri, languageID)
	if err != nil {
		return nil, err
	}
	return s.DoValidate(doc), nil
}

// GetDocumentColors returns the colors of the document's classes
func (w *Worker) GetDocumentColors(uri, languageID string) ([]protocol.ColorInformation, error) {
	s, doc, err := w.prepare(uri, languageID)
	if err != nil {
		return nil, err
	}
	return s.GetDocumentColors(doc), nil
}

// DoCodeActions returns quick fixes in rng. Only the kind filter of ctx is
// used; the service validates the range itself.
func (w *Worker) DoCodeActions(uri, languageID string, rng protocol.Range, ctx protocol.CodeActionContext) ([]protocol.CodeAction, error) {
	s, doc, err := w.prepare(uri, languageID)
	if err != nil {
		return nil, err
	}
	return s.DoCodeActions(doc, rng, protocol.CodeActionContext{
		Diagnostics: []protocol.Diagnostic{},
		Only:        ctx.Only,
	}), nil
}

func (w *Worker) prepare(uri, languageID string) (*languageservice.State, *languageservice.Document, error) {
	doc, err := w.document(uri, languageID)
	if err != nil {
		return nil, nil, err
	}
	s, err := w.analysisState()
	if err != nil {
		return nil, nil, err
	}
	return s, doc, nil
}

func (w *Worker) document(uri, languageID string) (*languageservice.Document, error) {
	for _, m := range w.mirror.Models() {
		if m.URI() == uri {
			return languageservice.NewDocument(uri, languageID, m.Version(), m.Value()), nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrModelNotFound, uri)
}

// analysisState returns the analysis state of the latest design system,
// rebuilding it when the design system changed.
func (w *Worker) analysisState() (*languageservice.State, error) {
	ds := w.state.design()
	if ds == nil {
		return nil, ErrWorkerNotReady
	}
	if w.analysis == nil || w.analysisFor != ds {
		w.analysis = languageservice.NewState(ds, w.settings, w.capabilities)
		w.analysisFor = ds
		w.logger.Debug().
			Uint64("version", ds.version).
			Int("classes", len(w.analysis.ClassList)).
			Msg("analysis state rebuilt")
	}
	return w.analysis, nil
}

// unique drops repeated classes, keeping the first occurrence
func unique(classes []string) []string {
	seen := make(map[string]bool, len(classes))
	out := make([]string, 0, len(classes))
	for _, c := range classes {
		if !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	return out
}

// Close cancels pending design system derivations
func (w *Worker) Close() {
	w.state.close()
}

package twbridge

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/yacobolo/twbridge/internal/languageservice"
	"github.com/yacobolo/twbridge/internal/worker"
)

// DefaultStylesheet is the stylesheet a new Service starts with
const DefaultStylesheet = worker.DefaultStylesheet

var (
	// ErrNotInitialized is returned by builds before the worker bootstrapped
	ErrNotInitialized = worker.ErrNotInitialized
	// ErrWorkerNotReady is returned by language features before any design
	// system exists
	ErrWorkerNotReady = worker.ErrWorkerNotReady
	// ErrWorkerClosed is returned after Close
	ErrWorkerClosed = worker.ErrWorkerClosed
	// ErrModelNotFound is returned for documents that were never opened
	ErrModelNotFound = worker.ErrModelNotFound
)

type (
	// Settings are the editor settings
	Settings = languageservice.Settings
	// LintSettings set the severity of each lint rule
	LintSettings = languageservice.LintSettings
	// Capabilities are the client capabilities
	Capabilities = languageservice.Capabilities
	// Severity of a lint rule
	Severity = languageservice.Severity
)

// DefaultSettings returns the settings used when Config has none
func DefaultSettings() Settings {
	return languageservice.DefaultSettings()
}

// Config configures a Service
type Config struct {
	Settings     Settings
	Capabilities Capabilities
	Logger       *zerolog.Logger // Nil disables logging
}

// Service connects callers to a worker. Its methods are safe for concurrent
// use.
type Service struct {
	docs  *worker.Documents
	proxy *worker.Proxy

	mu     sync.Mutex // Guards bridge
	bridge *Bridge
}

// New starts a service. It stops when ctx is done or Close is called.
func New(ctx context.Context, cfg Config) *Service {
	logger := zerolog.Nop()
	if cfg.Logger != nil {
		logger = *cfg.Logger
	}

	docs := worker.NewDocuments()
	proxy := worker.Start(ctx, docs, worker.Options{
		Logger:       logger,
		Settings:     cfg.Settings,
		Capabilities: cfg.Capabilities,
	})
	return &Service{
		docs:   docs,
		proxy:  proxy,
		bridge: NewBridge(proxy),
	}
}

// WaitReady blocks until the design system of the current stylesheet is
// available.
func (s *Service) WaitReady(ctx context.Context) error {
	return s.proxy.WaitReady(ctx)
}

// Close stops the worker
func (s *Service) Close() {
	s.proxy.Close()
}

// BuildCSS returns the CSS of classes against css. files maps virtual paths
// to contents for @import.
func (s *Service) BuildCSS(ctx context.Context, css string, classes []string, files map[string]string) (*BuildResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.bridge.BuildCSS(ctx, css, classes, files)
}

// LoadStylesheet switches the worker to css and waits until its design
// system is ready. It returns the build warnings, such as missing imports.
func (s *Service) LoadStylesheet(ctx context.Context, css string, files map[string]string) ([]string, error) {
	result, err := s.proxy.BuildCSS(ctx, css, files, nil)
	if err != nil {
		return nil, err
	}
	if err := s.proxy.WaitReady(ctx); err != nil {
		return nil, err
	}

	// Results built before the design system was ready are stale
	s.mu.Lock()
	s.bridge.Reset()
	s.mu.Unlock()

	return result.Warnings, nil
}

// Dependencies returns the virtual files the current stylesheet imports
func (s *Service) Dependencies(ctx context.Context) ([]string, error) {
	return s.proxy.Dependencies(ctx)
}

// UpdateSettings replaces the editor settings
func (s *Service) UpdateSettings(ctx context.Context, settings Settings, caps Capabilities) error {
	return s.proxy.UpdateSettings(ctx, settings, caps)
}

// OpenDocument starts tracking a document
func (s *Service) OpenDocument(uri, languageID string, version int32, text string) {
	s.docs.Open(uri, languageID, version, text)
}

// UpdateDocument replaces the text of an open document. Older versions are
// ignored; the result reports whether the text was replaced.
func (s *Service) UpdateDocument(uri string, version int32, text string) bool {
	return s.docs.Update(uri, version, text)
}

// CloseDocument stops tracking a document
func (s *Service) CloseDocument(uri string) {
	s.docs.Close(uri)
}

// DoComplete returns completions at pos, or nil outside a class list
func (s *Service) DoComplete(ctx context.Context, uri string, pos protocol.Position) (*protocol.CompletionList, error) {
	return s.proxy.DoComplete(ctx, uri, s.docs.LanguageID(uri), pos)
}

// ResolveCompletionItem adds documentation to a completion item
func (s *Service) ResolveCompletionItem(ctx context.Context, item protocol.CompletionItem) (protocol.CompletionItem, error) {
	return s.proxy.ResolveCompletionItem(ctx, item)
}

// DoHover returns the CSS of the class at pos, or nil
func (s *Service) DoHover(ctx context.Context, uri string, pos protocol.Position) (*protocol.Hover, error) {
	return s.proxy.DoHover(ctx, uri, s.docs.LanguageID(uri), pos)
}

// DoValidate lints a document
func (s *Service) DoValidate(ctx context.Context, uri string) ([]protocol.Diagnostic, error) {
	return s.proxy.DoValidate(ctx, uri, s.docs.LanguageID(uri))
}

// GetDocumentColors returns the colors of a document's classes
func (s *Service) GetDocumentColors(ctx context.Context, uri string) ([]protocol.ColorInformation, error) {
	return s.proxy.GetDocumentColors(ctx, uri, s.docs.LanguageID(uri))
}

// DoCodeActions returns quick fixes in rng
func (s *Service) DoCodeActions(ctx context.Context, uri string, rng protocol.Range, cc protocol.CodeActionContext) ([]protocol.CodeAction, error) {
	return s.proxy.DoCodeActions(ctx, uri, s.docs.LanguageID(uri), rng, cc)
}

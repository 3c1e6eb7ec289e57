// Package lsp serves a twbridge.Service over the Language Server Protocol.
package lsp

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/rs/zerolog"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"

	"github.com/yacobolo/twbridge"
)

const serverName = "twbridge"

// Stylesheet is the CSS the server builds against. Files are the virtual
// files it may import.
type Stylesheet struct {
	CSS   string
	Files map[string]string
}

// Server answers editor requests from a Service
type Server struct {
	svc        *twbridge.Service
	stylesheet Stylesheet
	settings   twbridge.Settings
	caps       twbridge.Capabilities
	version    string
	logger     zerolog.Logger

	// ctx bounds every call into the service
	ctx context.Context
}

// NewServer creates a server. The stylesheet is loaded on initialize.
func NewServer(ctx context.Context, svc *twbridge.Service, sheet Stylesheet, settings twbridge.Settings, version string, logger zerolog.Logger) *Server {
	return &Server{
		svc:        svc,
		stylesheet: sheet,
		settings:   settings,
		version:    version,
		logger:     logger,
		ctx:        ctx,
	}
}

// Handler returns the protocol handlers
func (s *Server) Handler() *protocol.Handler {
	return &protocol.Handler{
		Initialize:                      s.handleInitialize,
		Initialized:                     s.handleInitialized,
		Shutdown:                        s.handleShutdown,
		SetTrace:                        s.handleSetTrace,
		TextDocumentDidOpen:             s.handleDidOpen,
		TextDocumentDidChange:           s.handleDidChange,
		TextDocumentDidClose:            s.handleDidClose,
		TextDocumentCompletion:          s.handleCompletion,
		CompletionItemResolve:           s.handleCompletionResolve,
		TextDocumentHover:               s.handleHover,
		TextDocumentColor:               s.handleDocumentColor,
		TextDocumentCodeAction:          s.handleCodeAction,
		WorkspaceDidChangeConfiguration: s.handleDidChangeConfiguration,
	}
}

// RunStdio serves over stdin and stdout until the client exits
func (s *Server) RunStdio() error {
	return server.NewServer(s.Handler(), serverName, false).RunStdio()
}

func (s *Server) handleInitialize(_ *glsp.Context, params *protocol.InitializeParams) (any, error) {
	clientName := "unknown"
	if params.ClientInfo != nil {
		clientName = params.ClientInfo.Name
	}
	s.logger.Info().Str("client", clientName).Msg("initializing")

	s.caps = capabilities(params.Capabilities)
	if err := s.svc.UpdateSettings(s.ctx, s.settings, s.caps); err != nil {
		return nil, err
	}

	warnings, err := s.svc.LoadStylesheet(s.ctx, s.stylesheet.CSS, s.stylesheet.Files)
	if err != nil {
		return nil, err
	}
	for _, w := range warnings {
		s.logger.Warn().Msg(w)
	}

	syncKind := protocol.TextDocumentSyncKindFull
	return protocol.InitializeResult{
		Capabilities: protocol.ServerCapabilities{
			TextDocumentSync: protocol.TextDocumentSyncOptions{
				OpenClose: boolPtr(true),
				Change:    &syncKind,
			},
			CompletionProvider: &protocol.CompletionOptions{
				TriggerCharacters: []string{`"`, "'", "`", " ", ":", "/", "-", "!"},
				ResolveProvider:   boolPtr(true),
			},
			HoverProvider: true,
			ColorProvider: true,
			CodeActionProvider: &protocol.CodeActionOptions{
				CodeActionKinds: []protocol.CodeActionKind{protocol.CodeActionKindQuickFix},
			},
		},
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    serverName,
			Version: &s.version,
		},
	}, nil
}

// capabilities picks the client capabilities the language service uses
func capabilities(c protocol.ClientCapabilities) twbridge.Capabilities {
	var caps twbridge.Capabilities
	if c.Workspace != nil && c.Workspace.Configuration != nil {
		caps.Configuration = *c.Workspace.Configuration
	}
	if td := c.TextDocument; td != nil && td.PublishDiagnostics != nil && td.PublishDiagnostics.RelatedInformation != nil {
		caps.DiagnosticRelatedInformation = *td.PublishDiagnostics.RelatedInformation
	}
	return caps
}

func (s *Server) handleInitialized(_ *glsp.Context, _ *protocol.InitializedParams) error {
	s.logger.Debug().Msg("initialized")
	return nil
}

func (s *Server) handleShutdown(_ *glsp.Context) error {
	s.logger.Info().Msg("shutting down")
	return nil
}

func (s *Server) handleSetTrace(_ *glsp.Context, params *protocol.SetTraceParams) error {
	protocol.SetTraceValue(params.Value)
	return nil
}

func (s *Server) handleDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	doc := params.TextDocument
	s.logger.Debug().Str("uri", doc.URI).Str("language", doc.LanguageID).Msg("document opened")

	s.svc.OpenDocument(doc.URI, doc.LanguageID, doc.Version, doc.Text)
	s.publishDiagnostics(ctx, doc.URI, doc.Version)
	return nil
}

func (s *Server) handleDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	uri := params.TextDocument.URI
	version := params.TextDocument.Version

	// Full sync: the last change carries the whole text
	text, ok := "", false
	for _, change := range params.ContentChanges {
		switch c := change.(type) {
		case protocol.TextDocumentContentChangeEventWhole:
			text, ok = c.Text, true
		case protocol.TextDocumentContentChangeEvent:
			if c.Range == nil {
				text, ok = c.Text, true
			}
		}
	}
	if !ok {
		s.logger.Warn().Str("uri", uri).Msg("ignoring incremental change")
		return nil
	}

	if s.svc.UpdateDocument(uri, version, text) {
		s.publishDiagnostics(ctx, uri, version)
	}
	return nil
}

func (s *Server) handleDidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	uri := params.TextDocument.URI
	s.svc.CloseDocument(uri)

	if ctx != nil && ctx.Notify != nil {
		ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
			URI:         uri,
			Diagnostics: []protocol.Diagnostic{},
		})
	}
	return nil
}

// publishDiagnostics validates uri and sends the result to the client
func (s *Server) publishDiagnostics(ctx *glsp.Context, uri string, version int32) {
	if ctx == nil || ctx.Notify == nil {
		return
	}

	diagnostics, err := s.svc.DoValidate(s.ctx, uri)
	if err != nil {
		s.logger.Debug().Err(err).Str("uri", uri).Msg("validation skipped")
		return
	}

	v := protocol.UInteger(version)
	ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         uri,
		Version:     &v,
		Diagnostics: diagnostics,
	})
}

func (s *Server) handleCompletion(_ *glsp.Context, params *protocol.CompletionParams) (any, error) {
	list, err := s.svc.DoComplete(s.ctx, params.TextDocument.URI, params.Position)
	if err := notReady(err); err != nil {
		return nil, err
	}
	if list == nil {
		return nil, nil
	}
	return list, nil
}

func (s *Server) handleCompletionResolve(_ *glsp.Context, item *protocol.CompletionItem) (*protocol.CompletionItem, error) {
	resolved, err := s.svc.ResolveCompletionItem(s.ctx, *item)
	if err := notReady(err); err != nil {
		return nil, err
	}
	if err != nil {
		return item, nil
	}
	return &resolved, nil
}

func (s *Server) handleHover(_ *glsp.Context, params *protocol.HoverParams) (*protocol.Hover, error) {
	hover, err := s.svc.DoHover(s.ctx, params.TextDocument.URI, params.Position)
	if err := notReady(err); err != nil {
		return nil, err
	}
	return hover, nil
}

func (s *Server) handleDocumentColor(_ *glsp.Context, params *protocol.DocumentColorParams) ([]protocol.ColorInformation, error) {
	colors, err := s.svc.GetDocumentColors(s.ctx, params.TextDocument.URI)
	if err := notReady(err); err != nil {
		return nil, err
	}
	if colors == nil {
		colors = []protocol.ColorInformation{}
	}
	return colors, nil
}

func (s *Server) handleCodeAction(_ *glsp.Context, params *protocol.CodeActionParams) (any, error) {
	actions, err := s.svc.DoCodeActions(s.ctx, params.TextDocument.URI, params.Range, params.Context)
	if err := notReady(err); err != nil {
		return nil, err
	}
	return actions, nil
}

// handleDidChangeConfiguration accepts settings either bare or under a
// "twbridge" key.
func (s *Server) handleDidChangeConfiguration(_ *glsp.Context, params *protocol.DidChangeConfigurationParams) error {
	settings, ok := decodeSettings(params.Settings, s.settings)
	if !ok {
		return nil
	}
	s.settings = settings
	return s.svc.UpdateSettings(s.ctx, settings, s.caps)
}

func decodeSettings(raw any, base twbridge.Settings) (twbridge.Settings, bool) {
	if raw == nil {
		return base, false
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return base, false
	}

	var wrapped struct {
		TWBridge json.RawMessage `json:"twbridge"`
	}
	if err := json.Unmarshal(data, &wrapped); err == nil && len(wrapped.TWBridge) > 0 {
		data = wrapped.TWBridge
	}

	settings := base
	if err := json.Unmarshal(data, &settings); err != nil {
		return base, false
	}
	return settings, true
}

// notReady drops the errors an editor should not see: a request before the
// first design system or for a document it never opened yields no result.
func notReady(err error) error {
	if errors.Is(err, twbridge.ErrWorkerNotReady) || errors.Is(err, twbridge.ErrModelNotFound) {
		return nil
	}
	return err
}

func boolPtr(b bool) *bool {
	return &b
}

// Package lsp serves lint results over the Language Server Protocol. Every
// open document is relinted on change and its diagnostics pushed to the
// client, so editors see findings as they type.
package lsp

import (
	"context"
	"fmt"
	"sync"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	glspserver "github.com/tliron/glsp/server"
	"go.uber.org/zap"

	quicklintjs "github.com/A-thanasios/quick-lint-js"
	"github.com/A-thanasios/quick-lint-js/internal/diagnostic"
)

const (
	// serverName identifies this server in initialize responses and as the
	// source attached to published diagnostics.
	serverName = "quick-lint-js"

	// maxOpenDocuments bounds the document cache so a misbehaving client
	// cannot exhaust memory.
	maxOpenDocuments = 512
)

// Server lints documents as they change and publishes diagnostics.
type Server struct {
	linter  *quicklintjs.Linter
	log     *zap.SugaredLogger
	handler protocol.Handler

	mu        sync.Mutex
	documents map[string]string
}

// NewServer wraps a Linter in an LSP front end.
func NewServer(l *quicklintjs.Linter, log *zap.Logger) *Server {
	s := &Server{
		linter:    l,
		log:       log.Sugar(),
		documents: make(map[string]string),
	}
	s.handler = protocol.Handler{
		Initialize:            s.initialize,
		Initialized:           s.initialized,
		Shutdown:              s.shutdown,
		SetTrace:              s.setTrace,
		TextDocumentDidOpen:   s.didOpen,
		TextDocumentDidChange: s.didChange,
		TextDocumentDidClose:  s.didClose,
	}
	return s
}

// RunStdio serves the protocol over stdin/stdout until the client
// disconnects.
func (s *Server) RunStdio() error {
	srv := glspserver.NewServer(&s.handler, serverName, false)
	return srv.RunStdio()
}

func (s *Server) initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	s.log.Infow("client initializing", "client", params.ClientInfo)
	if params.Trace != nil {
		protocol.SetTraceValue(*params.Trace)
	}

	capabilities := s.handler.CreateServerCapabilities()
	openClose := true
	change := protocol.TextDocumentSyncKindFull
	capabilities.TextDocumentSync = &protocol.TextDocumentSyncOptions{
		OpenClose: &openClose,
		Change:    &change,
	}

	version := quicklintjs.Version
	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    serverName,
			Version: &version,
		},
	}, nil
}

func (s *Server) initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	return nil
}

func (s *Server) shutdown(ctx *glsp.Context) error {
	protocol.SetTraceValue(protocol.TraceValueOff)
	return nil
}

func (s *Server) setTrace(ctx *glsp.Context, params *protocol.SetTraceParams) error {
	protocol.SetTraceValue(params.Value)
	return nil
}

func (s *Server) didOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	uri := string(params.TextDocument.URI)
	text := params.TextDocument.Text

	s.mu.Lock()
	if _, tracked := s.documents[uri]; !tracked && len(s.documents) >= maxOpenDocuments {
		s.mu.Unlock()
		s.log.Warnw("document cache full", "uri", uri, "max", maxOpenDocuments)
		return fmt.Errorf("lsp: too many open documents (limit %d)", maxOpenDocuments)
	}
	s.documents[uri] = text
	s.mu.Unlock()

	s.publish(ctx, params.TextDocument.URI, text)
	return nil
}

func (s *Server) didChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	uri := string(params.TextDocument.URI)

	s.mu.Lock()
	text, tracked := s.documents[uri]
	if !tracked {
		s.mu.Unlock()
		s.log.Warnw("change for document that was never opened", "uri", uri)
		return nil
	}
	// The server advertises full sync, so conforming clients send the
	// complete document in every change.
	for _, change := range params.ContentChanges {
		if whole, ok := change.(protocol.TextDocumentContentChangeEventWhole); ok {
			text = whole.Text
		} else {
			s.log.Warnw("ignoring incremental change", "uri", uri)
		}
	}
	s.documents[uri] = text
	s.mu.Unlock()

	s.publish(ctx, params.TextDocument.URI, text)
	return nil
}

func (s *Server) didClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	uri := string(params.TextDocument.URI)

	s.mu.Lock()
	delete(s.documents, uri)
	s.mu.Unlock()

	// An empty publish clears any findings still shown for the document.
	ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, &protocol.PublishDiagnosticsParams{
		URI:         params.TextDocument.URI,
		Diagnostics: []protocol.Diagnostic{},
	})
	return nil
}

// publish lints text and pushes the resulting diagnostics for uri.
func (s *Server) publish(ctx *glsp.Context, uri protocol.DocumentUri, text string) {
	lintCtx := ctx.Context
	if lintCtx == nil {
		lintCtx = context.Background()
	}
	diags, err := s.linter.LintToDiagnostics(lintCtx, []byte(text))
	if err != nil {
		s.log.Errorw("lint failed", "uri", uri, "error", err)
		return
	}

	s.log.Debugw("publishing diagnostics", "uri", uri, "count", len(diags))
	ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, &protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: toProtocolDiagnostics(diags),
	})
}

// toProtocolDiagnostics converts resolved findings to wire diagnostics.
// Lint positions count lines and columns from 1; the protocol counts both
// from 0.
func toProtocolDiagnostics(diags []diagnostic.Located) []protocol.Diagnostic {
	out := make([]protocol.Diagnostic, 0, len(diags))
	source := serverName
	for _, d := range diags {
		severity := toProtocolSeverity(d.Severity)
		code := protocol.IntegerOrString{Value: string(d.Code)}
		out = append(out, protocol.Diagnostic{
			Range: protocol.Range{
				Start: protocol.Position{
					Line:      uint32(d.Start.Line - 1),
					Character: uint32(d.Start.Column - 1),
				},
				End: protocol.Position{
					Line:      uint32(d.End.Line - 1),
					Character: uint32(d.End.Column - 1),
				},
			},
			Severity: &severity,
			Code:     &code,
			Source:   &source,
			Message:  d.Message,
		})
	}
	return out
}

func toProtocolSeverity(s diagnostic.Severity) protocol.DiagnosticSeverity {
	switch s {
	case diagnostic.SeverityWarning:
		return protocol.DiagnosticSeverityWarning
	case diagnostic.SeverityNote:
		return protocol.DiagnosticSeverityInformation
	default:
		return protocol.DiagnosticSeverityError
	}
}

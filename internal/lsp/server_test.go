package lsp

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"go.uber.org/zap"

	quicklintjs "github.com/A-thanasios/quick-lint-js"
	"github.com/A-thanasios/quick-lint-js/internal/diagnostic"
	"github.com/A-thanasios/quick-lint-js/internal/source"
)

// notifyRecorder captures server-to-client notifications without a
// transport.
type notifyRecorder struct {
	methods []string
	params  []*protocol.PublishDiagnosticsParams
}

func (r *notifyRecorder) context() *glsp.Context {
	return &glsp.Context{
		Notify: func(method string, params any) {
			r.methods = append(r.methods, method)
			if p, ok := params.(*protocol.PublishDiagnosticsParams); ok {
				r.params = append(r.params, p)
			}
		},
	}
}

func (r *notifyRecorder) last(t *testing.T) *protocol.PublishDiagnosticsParams {
	t.Helper()
	require.NotEmpty(t, r.params)
	return r.params[len(r.params)-1]
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	return NewServer(quicklintjs.New(), zap.NewNop())
}

func openParams(uri protocol.DocumentUri, text string) *protocol.DidOpenTextDocumentParams {
	return &protocol.DidOpenTextDocumentParams{
		TextDocument: protocol.TextDocumentItem{
			URI:        uri,
			LanguageID: "javascript",
			Version:    1,
			Text:       text,
		},
	}
}

func TestToProtocolDiagnostics_Mapping(t *testing.T) {
	in := []diagnostic.Located{{
		Diagnostic: diagnostic.Diagnostic{
			Code:     "E011",
			Severity: diagnostic.SeverityError,
			Message:  "assignment to const variable: x",
			Span:     source.NewSpan(13, 14),
		},
		Start: source.Position{Line: 2, Column: 1},
		End:   source.Position{Line: 2, Column: 2},
	}}

	out := toProtocolDiagnostics(in)
	require.Len(t, out, 1)
	d := out[0]

	// 1-based lint positions become 0-based protocol positions.
	assert.Equal(t, uint32(1), d.Range.Start.Line)
	assert.Equal(t, uint32(0), d.Range.Start.Character)
	assert.Equal(t, uint32(1), d.Range.End.Line)
	assert.Equal(t, uint32(1), d.Range.End.Character)

	require.NotNil(t, d.Severity)
	assert.Equal(t, protocol.DiagnosticSeverityError, *d.Severity)
	require.NotNil(t, d.Code)
	assert.Equal(t, "E011", d.Code.Value)
	require.NotNil(t, d.Source)
	assert.Equal(t, "quick-lint-js", *d.Source)
	assert.Equal(t, "assignment to const variable: x", d.Message)
}

func TestToProtocolDiagnostics_Severities(t *testing.T) {
	assert.Equal(t, protocol.DiagnosticSeverityError, toProtocolSeverity(diagnostic.SeverityError))
	assert.Equal(t, protocol.DiagnosticSeverityWarning, toProtocolSeverity(diagnostic.SeverityWarning))
	assert.Equal(t, protocol.DiagnosticSeverityInformation, toProtocolSeverity(diagnostic.SeverityNote))
}

func TestToProtocolDiagnostics_EmptyIsNotNil(t *testing.T) {
	// Publishing requires an empty array, not null, to clear findings.
	out := toProtocolDiagnostics(nil)
	require.NotNil(t, out)
	assert.Empty(t, out)
}

func TestDidOpen_PublishesDiagnostics(t *testing.T) {
	s := newTestServer(t)
	rec := &notifyRecorder{}

	require.NoError(t, s.didOpen(rec.context(), openParams("file:///app.js", "mystery;\n")))

	require.Equal(t, []string{protocol.ServerTextDocumentPublishDiagnostics}, rec.methods)
	published := rec.last(t)
	assert.Equal(t, "file:///app.js", string(published.URI))
	require.Len(t, published.Diagnostics, 1)
	assert.Equal(t, "use of undeclared variable: mystery", published.Diagnostics[0].Message)
}

func TestDidChange_RelintsDocument(t *testing.T) {
	s := newTestServer(t)
	rec := &notifyRecorder{}

	require.NoError(t, s.didOpen(rec.context(), openParams("file:///app.js", "let x = 1;\nx;\n")))
	assert.Empty(t, rec.last(t).Diagnostics)

	change := &protocol.DidChangeTextDocumentParams{
		TextDocument: protocol.VersionedTextDocumentIdentifier{
			TextDocumentIdentifier: protocol.TextDocumentIdentifier{URI: "file:///app.js"},
			Version:                2,
		},
		ContentChanges: []any{
			protocol.TextDocumentContentChangeEventWhole{Text: "const x = 1;\nx = 2;\n"},
		},
	}
	require.NoError(t, s.didChange(rec.context(), change))

	published := rec.last(t)
	require.Len(t, published.Diagnostics, 1)
	assert.Equal(t, "assignment to const variable: x", published.Diagnostics[0].Message)
}

func TestDidChange_UnopenedDocumentIgnored(t *testing.T) {
	s := newTestServer(t)
	rec := &notifyRecorder{}

	change := &protocol.DidChangeTextDocumentParams{
		TextDocument: protocol.VersionedTextDocumentIdentifier{
			TextDocumentIdentifier: protocol.TextDocumentIdentifier{URI: "file:///ghost.js"},
			Version:                1,
		},
		ContentChanges: []any{
			protocol.TextDocumentContentChangeEventWhole{Text: "mystery;\n"},
		},
	}
	require.NoError(t, s.didChange(rec.context(), change))
	assert.Empty(t, rec.methods)
}

func TestDidClose_ClearsDiagnostics(t *testing.T) {
	s := newTestServer(t)
	rec := &notifyRecorder{}

	require.NoError(t, s.didOpen(rec.context(), openParams("file:///app.js", "mystery;\n")))
	require.Len(t, rec.last(t).Diagnostics, 1)

	closeParams := &protocol.DidCloseTextDocumentParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: "file:///app.js"},
	}
	require.NoError(t, s.didClose(rec.context(), closeParams))

	published := rec.last(t)
	assert.Empty(t, published.Diagnostics)

	// The document is no longer tracked, so further changes are dropped.
	before := len(rec.methods)
	change := &protocol.DidChangeTextDocumentParams{
		TextDocument: protocol.VersionedTextDocumentIdentifier{
			TextDocumentIdentifier: protocol.TextDocumentIdentifier{URI: "file:///app.js"},
			Version:                3,
		},
		ContentChanges: []any{
			protocol.TextDocumentContentChangeEventWhole{Text: "mystery;\n"},
		},
	}
	require.NoError(t, s.didChange(rec.context(), change))
	assert.Len(t, rec.methods, before)
}

func TestDidOpen_DocumentLimit(t *testing.T) {
	s := newTestServer(t)
	rec := &notifyRecorder{}

	for i := 0; i < maxOpenDocuments; i++ {
		s.documents[fmt.Sprintf("file:///doc%d.js", i)] = ""
	}

	err := s.didOpen(rec.context(), openParams("file:///one-too-many.js", "let x = 1;\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "too many open documents")

	// Reopening an already tracked document is always allowed.
	require.NoError(t, s.didOpen(rec.context(), openParams("file:///doc0.js", "let x = 1;\nx;\n")))
}

func TestInitialize_AdvertisesFullSync(t *testing.T) {
	s := newTestServer(t)

	result, err := s.initialize(&glsp.Context{}, &protocol.InitializeParams{})
	require.NoError(t, err)

	init, ok := result.(protocol.InitializeResult)
	require.True(t, ok)
	require.NotNil(t, init.ServerInfo)
	assert.Equal(t, "quick-lint-js", init.ServerInfo.Name)
	require.NotNil(t, init.ServerInfo.Version)
	assert.Equal(t, quicklintjs.Version, *init.ServerInfo.Version)

	sync, ok := init.Capabilities.TextDocumentSync.(*protocol.TextDocumentSyncOptions)
	require.True(t, ok)
	require.NotNil(t, sync.Change)
	assert.Equal(t, protocol.TextDocumentSyncKindFull, *sync.Change)
}

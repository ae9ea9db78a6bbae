// Package lsp serves markscan's link detection over the Language Server
// Protocol.
package lsp

import (
	"net/url"
	"sync"

	"github.com/dhamidi/markscan/markup"
	"github.com/dhamidi/markscan/stream"
	"github.com/tliron/commonlog"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"
)

const lsName = "markscan"

var log = commonlog.GetLogger("markscan.lsp")

type Server struct {
	detector *markup.Detector
	handler  protocol.Handler
	server   *server.Server
	version  string

	mu   sync.RWMutex
	docs map[protocol.DocumentUri]string
}

func NewServer(version string, d *markup.Detector) *Server {
	s := &Server{
		detector: d,
		version:  version,
		docs:     make(map[protocol.DocumentUri]string),
	}

	s.handler = protocol.Handler{
		Initialize:               s.initialize,
		Initialized:              s.initialized,
		Shutdown:                 s.shutdown,
		SetTrace:                 s.setTrace,
		TextDocumentDidOpen:      s.textDocumentDidOpen,
		TextDocumentDidChange:    s.textDocumentDidChange,
		TextDocumentDidClose:     s.textDocumentDidClose,
		TextDocumentDocumentLink: s.textDocumentDocumentLink,
	}

	s.server = server.NewServer(&s.handler, lsName, false)

	return s
}

func (s *Server) RunStdio() error {
	return s.server.RunStdio()
}

func (s *Server) initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	capabilities := s.handler.CreateServerCapabilities()

	capabilities.TextDocumentSync = &protocol.TextDocumentSyncOptions{
		OpenClose: boolPtr(true),
		Change:    syncKindPtr(protocol.TextDocumentSyncKindFull),
	}
	capabilities.DocumentLinkProvider = &protocol.DocumentLinkOptions{
		ResolveProvider: boolPtr(false),
	}

	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    lsName,
			Version: &s.version,
		},
	}, nil
}

func (s *Server) initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	log.Infof("%s %s initialized", lsName, s.version)
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

func (s *Server) textDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	s.setDocument(params.TextDocument.URI, params.TextDocument.Text)
	return nil
}

func (s *Server) textDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	if len(params.ContentChanges) == 0 {
		return nil
	}
	change := params.ContentChanges[len(params.ContentChanges)-1]
	if whole, ok := change.(protocol.TextDocumentContentChangeEventWhole); ok {
		s.setDocument(params.TextDocument.URI, whole.Text)
	} else {
		log.Warningf("ignoring incremental change to %s", params.TextDocument.URI)
	}
	return nil
}

func (s *Server) textDocumentDidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	s.mu.Lock()
	delete(s.docs, params.TextDocument.URI)
	s.mu.Unlock()
	return nil
}

func (s *Server) textDocumentDocumentLink(ctx *glsp.Context, params *protocol.DocumentLinkParams) ([]protocol.DocumentLink, error) {
	uri := params.TextDocument.URI
	s.mu.RLock()
	text, ok := s.docs[uri]
	s.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	return s.documentLinks(uri, text), nil
}

func (s *Server) setDocument(uri protocol.DocumentUri, text string) {
	s.mu.Lock()
	s.docs[uri] = text
	s.mu.Unlock()
}

func (s *Server) documentLinks(uri protocol.DocumentUri, text string) []protocol.DocumentLink {
	links := s.detector.Find(text)
	if len(links) == 0 {
		return nil
	}

	lines := stream.New(text).Lines()
	result := make([]protocol.DocumentLink, 0, len(links))
	for _, l := range links {
		target, ok := resolveTarget(uri, l.Destination)
		if !ok {
			continue
		}
		dl := protocol.DocumentLink{
			Range: protocol.Range{
				Start: toPosition(lines.Locate(l.Span.Start)),
				End:   toPosition(lines.Locate(l.Span.End)),
			},
			Target: &target,
		}
		if l.Title != "" {
			title := l.Title
			dl.Tooltip = &title
		}
		result = append(result, dl)
	}
	return result
}

// resolveTarget resolves dest against the document's URI so relative
// links open the file they point at.
func resolveTarget(base protocol.DocumentUri, dest string) (protocol.DocumentUri, bool) {
	if dest == "" {
		return "", false
	}
	ref, err := url.Parse(dest)
	if err != nil {
		log.Debugf("skipping link %q: %s", dest, err)
		return "", false
	}
	if ref.IsAbs() {
		return ref.String(), true
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return "", false
	}
	return baseURL.ResolveReference(ref).String(), true
}

func toPosition(loc stream.Location) protocol.Position {
	return protocol.Position{
		Line:      protocol.UInteger(loc.Line),
		Character: protocol.UInteger(loc.Character),
	}
}

func boolPtr(b bool) *bool {
	return &b
}

func syncKindPtr(k protocol.TextDocumentSyncKind) *protocol.TextDocumentSyncKind {
	return &k
}

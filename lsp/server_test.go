package lsp

import (
	"testing"

	"github.com/dhamidi/markscan/markup"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

const docURI = "file:///notes/index.md"

func newTestServer() *Server {
	return NewServer("test", markup.NewDetector())
}

func openDocument(t *testing.T, s *Server, text string) {
	t.Helper()
	err := s.textDocumentDidOpen(nil, &protocol.DidOpenTextDocumentParams{
		TextDocument: protocol.TextDocumentItem{URI: docURI, LanguageID: "markdown", Version: 1, Text: text},
	})
	if err != nil {
		t.Fatalf("didOpen error: %v", err)
	}
}

func documentLinks(t *testing.T, s *Server) []protocol.DocumentLink {
	t.Helper()
	links, err := s.textDocumentDocumentLink(nil, &protocol.DocumentLinkParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: docURI},
	})
	if err != nil {
		t.Fatalf("documentLink error: %v", err)
	}
	return links
}

func TestDocumentLinkRanges(t *testing.T) {
	s := newTestServer()
	openDocument(t, s, "intro\n\U0001F600 [next](other.md \"Next page\")\n")

	links := documentLinks(t, s)
	if len(links) != 1 {
		t.Fatalf("expected 1 link, got %d", len(links))
	}

	l := links[0]
	wantStart := protocol.Position{Line: 1, Character: 3}
	wantEnd := protocol.Position{Line: 1, Character: 33}
	if l.Range.Start != wantStart || l.Range.End != wantEnd {
		t.Errorf("Range = %+v, want %+v-%+v", l.Range, wantStart, wantEnd)
	}
	if l.Target == nil || *l.Target != "file:///notes/other.md" {
		t.Errorf("Target = %v, want %q", l.Target, "file:///notes/other.md")
	}
	if l.Tooltip == nil || *l.Tooltip != "Next page" {
		t.Errorf("Tooltip = %v, want %q", l.Tooltip, "Next page")
	}
}

func TestDocumentLinkAbsoluteTarget(t *testing.T) {
	s := newTestServer()
	openDocument(t, s, "see https://go.dev/doc")

	links := documentLinks(t, s)
	if len(links) != 1 {
		t.Fatalf("expected 1 link, got %d", len(links))
	}
	if *links[0].Target != "https://go.dev/doc" {
		t.Errorf("Target = %q, want %q", *links[0].Target, "https://go.dev/doc")
	}
}

func TestDocumentLinkFollowsChanges(t *testing.T) {
	s := newTestServer()
	openDocument(t, s, "nothing here")

	if links := documentLinks(t, s); len(links) != 0 {
		t.Fatalf("expected no links, got %d", len(links))
	}

	err := s.textDocumentDidChange(nil, &protocol.DidChangeTextDocumentParams{
		TextDocument: protocol.VersionedTextDocumentIdentifier{
			TextDocumentIdentifier: protocol.TextDocumentIdentifier{URI: docURI},
			Version:                2,
		},
		ContentChanges: []any{
			protocol.TextDocumentContentChangeEventWhole{Text: "<https://x.org>"},
		},
	})
	if err != nil {
		t.Fatalf("didChange error: %v", err)
	}
	if links := documentLinks(t, s); len(links) != 1 {
		t.Fatalf("expected 1 link after change, got %d", len(links))
	}

	err = s.textDocumentDidClose(nil, &protocol.DidCloseTextDocumentParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: docURI},
	})
	if err != nil {
		t.Fatalf("didClose error: %v", err)
	}
	if links := documentLinks(t, s); links != nil {
		t.Errorf("expected no links for closed document, got %d", len(links))
	}
}

func TestInitializeAdvertisesDocumentLinks(t *testing.T) {
	s := newTestServer()
	result, err := s.initialize(nil, &protocol.InitializeParams{})
	if err != nil {
		t.Fatalf("initialize error: %v", err)
	}

	init, ok := result.(protocol.InitializeResult)
	if !ok {
		t.Fatalf("expected InitializeResult, got %T", result)
	}
	caps := init.Capabilities
	if caps.DocumentLinkProvider == nil {
		t.Error("DocumentLinkProvider not set")
	}
	if init.ServerInfo == nil || init.ServerInfo.Name != lsName {
		t.Errorf("ServerInfo = %+v", init.ServerInfo)
	}
}

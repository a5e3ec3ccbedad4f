package main

import (
	"github.com/funvibe/notebook-concat/internal/concatdoc"
)

func toConcatRange(r *Range) *concatdoc.Range {
	if r == nil {
		return nil
	}
	return &concatdoc.Range{
		Start: concatdoc.Position{Line: r.Start.Line, Character: r.Start.Character},
		End:   concatdoc.Position{Line: r.End.Line, Character: r.End.Character},
	}
}

func fromConcatPosition(p concatdoc.Position) Position {
	return Position{Line: p.Line, Character: p.Character}
}

func fromConcatRange(r concatdoc.Range) Range {
	return Range{Start: fromConcatPosition(r.Start), End: fromConcatPosition(r.End)}
}

func (s *Server) handleDidOpen(p DidOpenParams) error {
	s.mu.Lock()
	ev := s.engine.Open(concatdoc.CellID{URI: p.TextDocument.URI}, p.TextDocument.Text, p.TextDocument.Version, p.ForceAppend)
	s.mu.Unlock()
	return s.publishConcatChange(ev)
}

func (s *Server) handleDidChange(p DidChangeParams) error {
	changes := make([]concatdoc.ContentChange, 0, len(p.ContentChanges))
	for _, c := range p.ContentChanges {
		changes = append(changes, concatdoc.ContentChange{Range: toConcatRange(c.Range), Text: c.Text})
	}

	s.mu.Lock()
	ev := s.engine.Edit(concatdoc.CellID{URI: p.TextDocument.URI}, changes)
	s.mu.Unlock()
	return s.publishConcatChange(ev)
}

func (s *Server) handleDidClose(p DidCloseParams) error {
	s.mu.Lock()
	ev := s.engine.Close(concatdoc.CellID{URI: p.TextDocument.URI})
	s.mu.Unlock()
	return s.publishConcatChange(ev)
}

func (s *Server) handleRefresh(p RefreshParams) error {
	cells := make([]concatdoc.RefreshCell, 0, len(p.Cells))
	for _, c := range p.Cells {
		cells = append(cells, concatdoc.RefreshCell{
			CellID:  concatdoc.CellID{URI: c.TextDocument.URI},
			Text:    c.TextDocument.Text,
			Version: c.TextDocument.Version,
		})
	}

	s.mu.Lock()
	ev := s.engine.Refresh(cells)
	s.mu.Unlock()
	return s.publishConcatChange(ev)
}

// publishConcatChange relays the engine's outbound event as a server
// notification. A nil event — an unknown cell, a double open, a no-op
// refresh — means nothing changed and nothing is sent.
func (s *Server) publishConcatChange(ev *concatdoc.OutboundEvent) error {
	if ev == nil {
		return nil
	}

	changes := make([]OutboundTextDocumentChangeEvent, 0, len(ev.ContentChanges))
	for _, c := range ev.ContentChanges {
		changes = append(changes, OutboundTextDocumentChangeEvent{
			Range:       fromConcatRange(c.Range),
			RangeLength: c.RangeLength,
			Text:        c.Text,
		})
	}

	return s.sendNotification(NotificationMessage{
		Jsonrpc: "2.0",
		Method:  "concatDocument/didChange",
		Params: ConcatDocumentChangeParams{
			TextDocument:   VersionedTextDocumentIdentifier{URI: ev.URI, Version: ev.Version},
			ContentChanges: changes,
		},
	})
}

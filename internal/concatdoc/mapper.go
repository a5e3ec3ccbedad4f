package concatdoc

import (
	"sort"

	"github.com/tidwall/btree"
)

// CoordinateMapper provides bidirectional translation between (cell,
// cell-local position/offset) and (concat position/offset), plus
// closest-match queries. It is a read-only snapshot over a span list and
// its two line indexes — rebuilt fresh after every mutation, the same way
// the line indexes themselves are.
type CoordinateMapper struct {
	spans       []Span
	concatLines []Line
	realLines   []Line
	realIndices []int // indices into spans of IsReal spans, ascending real_start

	// byConcatStart orders spans by concat_start for notebook_location's
	// overlap scan. Grounded on bufbuild/protocompile's internal/interval
	// package (internal/interval/map.go), which walks a
	// github.com/tidwall/btree.Map of range boundaries via
	// Iter().Seek()/.Prev()/.Next() to locate the interval containing a
	// point without a linear scan — NotebookLocation below uses the same
	// Seek/Prev/Next walk to find the first overlapping span and then
	// stops at the first span whose concat_start reaches the query's end,
	// rather than scanning every span. Point lookups elsewhere in this
	// file (RealToConcat, ConcatToClosestReal) use sort.Search directly
	// over the already-sorted span/line slices instead, since those are
	// simple forward binary searches with no floor/overlap logic needed.
	byConcatStart btree.Map[int, int]
}

func newCoordinateMapper(spans []Span, concatLines, realLines []Line) *CoordinateMapper {
	m := &CoordinateMapper{spans: spans, concatLines: concatLines, realLines: realLines}
	for i, s := range spans {
		if s.IsReal {
			m.realIndices = append(m.realIndices, i)
		}
		m.byConcatStart.Set(s.ConcatStart, i)
	}
	return m
}

// RealToConcat locates the real span containing real_offset and returns
// real_offset - span.real_start + span.concat_start. If none contains it,
// returns real_offset unchanged.
func (m *CoordinateMapper) RealToConcat(realOffset int) int {
	i := sort.Search(len(m.realIndices), func(i int) bool {
		return m.spans[m.realIndices[i]].RealEnd > realOffset
	})
	if i == len(m.realIndices) {
		return realOffset
	}
	sp := m.spans[m.realIndices[i]]
	if realOffset < sp.RealStart {
		return realOffset
	}
	return realOffset - sp.RealStart + sp.ConcatStart
}

// ConcatToClosestReal locates the span (real or synthetic) containing
// concat_offset. For a real span it returns the corresponding real
// offset; for a synthetic span it collapses to the span's real_start
// anchor. If none contains it, returns concat_offset unchanged.
func (m *CoordinateMapper) ConcatToClosestReal(concatOffset int) int {
	i := sort.Search(len(m.spans), func(i int) bool {
		return m.spans[i].ConcatEnd > concatOffset
	})
	if i == len(m.spans) {
		return concatOffset
	}
	sp := m.spans[i]
	if concatOffset < sp.ConcatStart {
		return concatOffset
	}
	if sp.IsReal {
		return concatOffset - sp.ConcatStart + sp.RealStart
	}
	return sp.RealStart
}

func (m *CoordinateMapper) firstRealLineOfCell(cellID CellID) *Line {
	for i := range m.realLines {
		if m.realLines[i].CellID.Equal(cellID) {
			return &m.realLines[i]
		}
	}
	return nil
}

func (m *CoordinateMapper) firstSpanOfCell(cellID CellID) *Span {
	for i := range m.spans {
		if m.spans[i].CellID.Equal(cellID) {
			return &m.spans[i]
		}
	}
	return nil
}

// ConcatPosition resolves the cell's first real line, indexes into
// real_lines by cell_position.line + first_real_line.line_number, computes
// the absolute real offset for cell_position.character, maps it to a
// concat offset, and looks up the containing concat line. Returns the
// zero Position if the cell has no real content.
func (m *CoordinateMapper) ConcatPosition(cellID CellID, cellPos Position) Position {
	concatOffset, ok := m.concatOffsetFor(cellID, cellPos)
	if !ok {
		return Position{}
	}
	idx := lineAtOffset(m.concatLines, concatOffset)
	if idx < 0 {
		return Position{}
	}
	concatLine := m.concatLines[idx]
	return Position{Line: concatLine.LineNumber, Character: concatOffset - concatLine.Offset}
}

// ConcatOffset is ConcatPosition without the final line lookup.
func (m *CoordinateMapper) ConcatOffset(cellID CellID, cellPos Position) int {
	offset, ok := m.concatOffsetFor(cellID, cellPos)
	if !ok {
		return 0
	}
	return offset
}

func (m *CoordinateMapper) concatOffsetFor(cellID CellID, cellPos Position) (int, bool) {
	first := m.firstRealLineOfCell(cellID)
	if first == nil {
		return 0, false
	}
	targetLineNumber := cellPos.Line + first.LineNumber
	if targetLineNumber < 0 || targetLineNumber >= len(m.realLines) {
		return 0, false
	}
	realLine := m.realLines[targetLineNumber]
	absoluteRealOffset := realLine.Offset + cellPos.Character
	return m.RealToConcat(absoluteRealOffset), true
}

// notebookPosition finds the concat line → its absolute concat offset →
// closest real offset → the real line containing it → cell-local (line,
// character) for cellID.
func (m *CoordinateMapper) notebookPosition(cellID CellID, concatPos Position) Position {
	if concatPos.Line < 0 || concatPos.Line >= len(m.concatLines) {
		return Position{}
	}
	concatLine := m.concatLines[concatPos.Line]
	absOffset := concatLine.Offset + concatPos.Character
	realOffset := m.ConcatToClosestReal(absOffset)

	realLineIdx := lineAtOffset(m.realLines, realOffset)
	if realLineIdx < 0 {
		return Position{}
	}
	realLine := m.realLines[realLineIdx]
	first := m.firstRealLineOfCell(cellID)
	if first == nil {
		return Position{}
	}
	return Position{
		Line:      realLine.LineNumber - first.LineNumber,
		Character: realOffset - realLine.Offset,
	}
}

// NotebookLocation finds real spans overlapping concatRange and snaps the
// start up to the first overlapping real span's start, returning a
// cell-local range built from notebookPosition at both ends. If no real
// span overlaps — the range sits entirely in synthetic territory —
// returns an empty cell id and the input range unchanged.
func (m *CoordinateMapper) NotebookLocation(concatRange Range) (CellID, Range) {
	startOffset, sok := m.absoluteConcatOffset(concatRange.Start)
	endOffset, eok := m.absoluteConcatOffset(concatRange.End)
	if !sok {
		return CellID{}, concatRange
	}
	if !eok {
		endOffset = startOffset
	}
	if endOffset < startOffset {
		endOffset = startOffset
	}

	// Seek to the first span whose concat_start does not precede
	// startOffset, then back up one step (Prev) to the span that actually
	// contains it — the same Seek-then-Prev idiom protocompile's interval
	// map uses to locate the interval containing a point (map.go:120-121)
	// — rather than scanning every span from the start of the document.
	iter := m.byConcatStart.Iter()
	positioned := iter.Seek(startOffset)
	switch {
	case !positioned:
		positioned = iter.Last()
	case iter.Key() > startOffset:
		if !iter.Prev() {
			positioned = iter.Seek(startOffset)
		}
	}

	var overlapping []int
	for positioned {
		sp := m.spans[iter.Value()]
		if sp.ConcatStart >= endOffset {
			break
		}
		if sp.IsReal && sp.ConcatEnd > startOffset && sp.ConcatStart < endOffset {
			overlapping = append(overlapping, iter.Value())
		}
		positioned = iter.Next()
	}
	if len(overlapping) == 0 {
		return CellID{}, concatRange
	}

	first := m.spans[overlapping[0]]
	snappedStart := startOffset
	if snappedStart < first.ConcatStart {
		snappedStart = first.ConcatStart
	}
	cellID := first.CellID

	startPos := m.notebookPosition(cellID, m.positionOf(snappedStart))
	endPos := m.notebookPosition(cellID, m.positionOf(endOffset))
	return cellID, Range{Start: startPos, End: endPos}
}

func (m *CoordinateMapper) absoluteConcatOffset(pos Position) (int, bool) {
	if pos.Line < 0 || pos.Line >= len(m.concatLines) {
		return 0, false
	}
	return m.concatLines[pos.Line].Offset + pos.Character, true
}

func (m *CoordinateMapper) positionOf(concatOffset int) Position {
	idx := lineAtOffset(m.concatLines, concatOffset)
	if idx < 0 {
		return Position{}
	}
	line := m.concatLines[idx]
	return Position{Line: line.LineNumber, Character: concatOffset - line.Offset}
}

// NotebookOffset is closest_real(concat_offset) - first_span_of_cell.real_start.
func (m *CoordinateMapper) NotebookOffset(cellID CellID, concatOffset int) int {
	first := m.firstSpanOfCell(cellID)
	if first == nil {
		return 0
	}
	return m.ConcatToClosestReal(concatOffset) - first.RealStart
}

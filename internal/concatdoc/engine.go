package concatdoc

import (
	"fmt"
	"strings"
)

// EventLogger is the structured-logging seam the ambient telemetry package
// wires up (internal/telemetry.Logger implements it). A nil logger inside
// Engine is replaced by a silent no-op.
type EventLogger interface {
	MutationAccepted(event, cellURI string, version int)
	MutationRejected(event, cellURI, reason string)
	EditFallback(cellURI string, err error)
}

type noopLogger struct{}

func (noopLogger) MutationAccepted(string, string, int)    {}
func (noopLogger) MutationRejected(string, string, string) {}
func (noopLogger) EditFallback(string, error)              {}

// Engine is the mutation engine. It owns the span list and both line
// indexes, and is the single source of truth for document structure —
// callers interact with it through Open/Close/Edit/Refresh and through the
// read-only Document facade (document.go).
//
// The engine is not internally locked: callers must serialize all calls
// against each other and against read queries.
type Engine struct {
	cfg         EngineConfig
	spans       []Span
	concatLines []Line
	realLines   []Line
	version     int
	closed      bool
	interactive bool
	identity    *Identity
	logger      EventLogger
}

// NewEngine constructs an empty engine with the given configuration.
func NewEngine(cfg EngineConfig) *Engine {
	return &Engine{cfg: cfg, logger: noopLogger{}}
}

// SetLogger installs the structured-logging sink for mutation events.
func (e *Engine) SetLogger(l EventLogger) {
	if l == nil {
		l = noopLogger{}
	}
	e.logger = l
}

func (e *Engine) Version() int        { return e.version }
func (e *Engine) Closed() bool        { return e.closed }
func (e *Engine) Identity() *Identity { return e.identity }

func (e *Engine) mapper() *CoordinateMapper {
	return newCoordinateMapper(e.spans, e.concatLines, e.realLines)
}

// Mapper exposes the current coordinate mapper for external callers (e.g.
// translating a downstream analyzer's diagnostic range back to a cell).
func (e *Engine) Mapper() *CoordinateMapper { return e.mapper() }

func normalizeCellText(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	if !strings.HasSuffix(text, "\n") {
		text += "\n"
	}
	return text
}

func (e *Engine) rebuildLineIndexes() {
	e.concatLines = buildLineIndex(e.spans, func(Span) bool { return true }, func(s Span) string { return s.Text })
	e.realLines = buildLineIndex(e.spans, func(s Span) bool { return s.IsReal }, func(s Span) string { return s.RealText })
}

func (e *Engine) positionInLines(lines []Line, offset int) Position {
	idx := lineAtOffset(lines, offset)
	if idx < 0 {
		return Position{}
	}
	return Position{Line: lines[idx].LineNumber, Character: offset - lines[idx].Offset}
}

func (e *Engine) concatText() string {
	var b strings.Builder
	for _, s := range e.spans {
		b.WriteString(s.Text)
	}
	return b.String()
}

func (e *Engine) currentRealText() string {
	var b strings.Builder
	for _, s := range e.spans {
		if s.IsReal {
			b.WriteString(s.RealText)
		}
	}
	return b.String()
}

func (e *Engine) totalConcatLen() int {
	if len(e.spans) == 0 {
		return 0
	}
	return e.spans[len(e.spans)-1].ConcatEnd
}

// Open inserts a new cell's spans into the document. Returns nil if the
// cell is already open: a double-open is ignored rather than treated as
// an error.
func (e *Engine) Open(cellID CellID, text string, version int, forceAppend bool) *OutboundEvent {
	if cellExists(e.spans, cellID) {
		e.logger.MutationRejected("open", cellID.URI, "cell already open")
		return nil
	}
	return e.openAccepted(cellID, text, version, forceAppend)
}

// openAccepted performs the Open algorithm unconditionally; Refresh reuses
// it (with force_append=true) to re-seed every cell after a reset,
// discarding the returned event.
func (e *Engine) openAccepted(cellID CellID, text string, version int, forceAppend bool) *OutboundEvent {
	if version > e.version {
		e.version = version
	} else {
		e.version++
	}
	e.closed = false
	if e.identity == nil {
		id := deriveIdentity(cellID)
		e.identity = &id
	}
	if cellID.IsInteractiveInput() {
		e.interactive = true
	}

	normalized := normalizeCellText(text)
	fragment := cellID.FragmentKey()

	insertAt := e.insertionIndex(fragment, forceAppend)
	var concatOffset, realOffset int
	if insertAt < len(e.spans) {
		next := e.spans[insertAt]
		concatOffset, realOffset = next.ConcatStart, next.RealStart
	} else if len(e.spans) > 0 {
		last := e.spans[len(e.spans)-1]
		concatOffset, realOffset = last.ConcatEnd, last.RealEnd
	}

	newSpans := BuildSpans(e.cfg, cellID, normalized, concatOffset, realOffset)
	var concatLen, realLen int
	for _, s := range newSpans {
		concatLen += s.concatLen()
		realLen += s.realLen()
	}

	startPos := e.positionInLines(e.concatLines, concatOffset)

	for i := insertAt; i < len(e.spans); i++ {
		e.spans[i].ConcatStart += concatLen
		e.spans[i].ConcatEnd += concatLen
		e.spans[i].RealStart += realLen
		e.spans[i].RealEnd += realLen
	}
	e.spans = insertSpans(e.spans, insertAt, newSpans)

	e.rebuildLineIndexes()

	var insertedText strings.Builder
	for _, s := range newSpans {
		insertedText.WriteString(s.Text)
	}

	e.logger.MutationAccepted("open", cellID.URI, e.version)

	return &OutboundEvent{
		URI:     e.identity.ConcatURI,
		Version: e.version,
		ContentChanges: []OutboundContentChange{{
			Range:       Range{Start: startPos, End: startPos},
			RangeLength: 0,
			Text:        insertedText.String(),
		}},
	}
}

// insertionIndex computes where a newly opened cell's spans land among the
// existing ones. The interactive-input run (fragment -1) is pinned to the
// absolute end
// regardless of numeric comparison — it never sorts among the numeric
// fragments, it is simply excluded from the search and appended after.
func (e *Engine) insertionIndex(fragment int, forceAppend bool) int {
	n := len(e.spans)
	if forceAppend || fragment == -1 {
		return n
	}
	nonInteractiveEnd := n
	for nonInteractiveEnd > 0 && e.spans[nonInteractiveEnd-1].Fragment == -1 {
		nonInteractiveEnd--
	}
	for i := 0; i < nonInteractiveEnd; i++ {
		if e.spans[i].Fragment > fragment {
			return i
		}
	}
	return nonInteractiveEnd
}

// Close removes a cell's spans from the document. Returns nil if the cell
// is unknown. In interactive mode, closing a notebook cell is a no-op
// against spans (cells persist logically); only closing the interactive
// input cell itself clears the entire state.
func (e *Engine) Close(cellID CellID) *OutboundEvent {
	first, last, ok := findCellRun(e.spans, cellID)
	if !ok {
		e.logger.MutationRejected("close", cellID.URI, "unknown cell")
		return nil
	}
	if e.interactive {
		if !cellID.IsInteractiveInput() {
			return nil
		}
		return e.closeInteractiveState(cellID)
	}

	e.version++

	removedConcatStart := e.spans[first].ConcatStart
	removedConcatEnd := e.spans[last].ConcatEnd
	removedRealStart := e.spans[first].RealStart
	removedRealEnd := e.spans[last].RealEnd
	for i := first; i <= last; i++ {
		if e.spans[i].IsReal {
			removedRealStart = e.spans[i].RealStart
			break
		}
	}
	for i := last; i >= first; i-- {
		if e.spans[i].IsReal {
			removedRealEnd = e.spans[i].RealEnd
			break
		}
	}

	startPos := e.positionInLines(e.concatLines, removedConcatStart)
	endPos := e.positionInLines(e.concatLines, removedConcatEnd)

	removedConcatLen := removedConcatEnd - removedConcatStart
	removedRealLen := removedRealEnd - removedRealStart
	if removedRealLen < 0 {
		removedRealLen = 0
	}

	e.spans = removeSpanRun(e.spans, first, last)

	// Shift subsequent spans' concat AND real offsets down by the removed
	// lengths. Shifting only concat offsets here would leave real offsets
	// of later cells permanently desynced from their own content after any
	// close, so both are kept in step — see DESIGN.md.
	for i := first; i < len(e.spans); i++ {
		e.spans[i].ConcatStart -= removedConcatLen
		e.spans[i].ConcatEnd -= removedConcatLen
		e.spans[i].RealStart -= removedRealLen
		e.spans[i].RealEnd -= removedRealLen
	}

	e.rebuildLineIndexes()

	if len(e.spans) == 0 {
		e.closed = true
	}

	e.logger.MutationAccepted("close", cellID.URI, e.version)

	return &OutboundEvent{
		URI:     e.identity.ConcatURI,
		Version: e.version,
		ContentChanges: []OutboundContentChange{{
			Range:       Range{Start: startPos, End: endPos},
			RangeLength: removedConcatLen,
			Text:        "",
		}},
	}
}

// closeInteractiveState clears the entire document when the interactive
// input cell itself closes: every persisted cell, including the ones
// earlier no-op notebook-cell closes left behind, is dropped, mirroring
// Refresh's full reset rather than removing just the input cell's own
// span run.
func (e *Engine) closeInteractiveState(cellID CellID) *OutboundEvent {
	e.version++

	startPos := Position{}
	endPos := e.fullRange(e.concatLines).End
	removedConcatLen := e.totalConcatLen()
	uri := ""
	if e.identity != nil {
		uri = e.identity.ConcatURI
	}

	e.spans = nil
	e.concatLines = nil
	e.realLines = nil
	e.identity = nil
	e.closed = true
	e.interactive = false

	e.logger.MutationAccepted("close", cellID.URI, e.version)

	return &OutboundEvent{
		URI:     uri,
		Version: e.version,
		ContentChanges: []OutboundContentChange{{
			Range:       Range{Start: startPos, End: endPos},
			RangeLength: removedConcatLen,
			Text:        "",
		}},
	}
}

// Edit applies a cell's content changes. Returns nil if the cell is
// unknown, or if every content change failed internally (those are logged
// and skipped rather than aborting the whole edit).
func (e *Engine) Edit(cellID CellID, changes []ContentChange) *OutboundEvent {
	if !cellExists(e.spans, cellID) {
		e.logger.MutationRejected("edit", cellID.URI, "unknown cell")
		return nil
	}

	e.version++

	var outChanges []OutboundContentChange
	for _, change := range changes {
		oc, err := e.applyContentChange(cellID, change)
		if err != nil {
			e.logger.EditFallback(cellID.URI, err)
			continue
		}
		if oc != nil {
			outChanges = append(outChanges, *oc)
		}
	}

	if len(outChanges) == 0 {
		return nil
	}

	e.logger.MutationAccepted("edit", cellID.URI, e.version)
	return &OutboundEvent{
		URI:            e.identity.ConcatURI,
		Version:        e.version,
		ContentChanges: outChanges,
	}
}

func (e *Engine) applyContentChange(cellID CellID, change ContentChange) (*OutboundContentChange, error) {
	first, last, ok := findCellRun(e.spans, cellID)
	if !ok {
		return nil, fmt.Errorf("concatdoc: cell %s vanished mid-edit", cellID.URI)
	}
	oldSpans := append([]Span{}, e.spans[first:last+1]...)

	var oldRealBuf strings.Builder
	for _, s := range oldSpans {
		if s.IsReal {
			oldRealBuf.WriteString(s.RealText)
		}
	}
	oldRealText := oldRealBuf.String()
	cellRealLines := buildLineIndex(oldSpans, func(s Span) bool { return s.IsReal }, func(s Span) string { return s.RealText })

	rng := Range{}
	if change.Range != nil {
		rng = *change.Range
	}
	replacement := strings.ReplaceAll(change.Text, "\r\n", "\n")
	replacement = strings.ReplaceAll(replacement, "\r", "\n")

	startOffset := cellOffsetInRealText(cellRealLines, rng.Start)
	endOffset := cellOffsetInRealText(cellRealLines, rng.End)
	if startOffset > len(oldRealText) {
		startOffset = len(oldRealText)
	}
	if endOffset > len(oldRealText) {
		endOffset = len(oldRealText)
	}
	if endOffset < startOffset {
		endOffset = startOffset
	}

	newRealText := oldRealText[:startOffset] + replacement + oldRealText[endOffset:]

	anchorConcat := oldSpans[0].ConcatStart
	anchorReal := oldSpans[0].RealStart
	newSpans := BuildSpans(e.cfg, cellID, newRealText, anchorConcat, anchorReal)

	var oldConcatLen, oldRealLen, newConcatLen, newRealLen int
	for _, s := range oldSpans {
		oldConcatLen += s.concatLen()
		oldRealLen += s.realLen()
	}
	for _, s := range newSpans {
		newConcatLen += s.concatLen()
		newRealLen += s.realLen()
	}

	var out OutboundContentChange
	if canUsePartialEdit(oldSpans, newSpans) {
		startGlobalReal := oldSpans[0].RealStart + startOffset
		endGlobalReal := oldSpans[0].RealStart + endOffset
		startConcat := realToConcatWithin(oldSpans, startGlobalReal)
		endConcat := realToConcatWithin(oldSpans, endGlobalReal)

		startPos := e.positionInLines(e.concatLines, startConcat)
		endPos := e.positionInLines(e.concatLines, endConcat)
		out = OutboundContentChange{
			Range:       Range{Start: startPos, End: endPos},
			RangeLength: endConcat - startConcat,
			Text:        replacement,
		}
	} else {
		startPos := e.positionInLines(e.concatLines, oldSpans[0].ConcatStart)
		endPos := e.positionInLines(e.concatLines, oldSpans[len(oldSpans)-1].ConcatEnd)
		var fullText strings.Builder
		for _, s := range newSpans {
			fullText.WriteString(s.Text)
		}
		out = OutboundContentChange{
			Range:       Range{Start: startPos, End: endPos},
			RangeLength: oldConcatLen,
			Text:        fullText.String(),
		}
	}

	for i := last + 1; i < len(e.spans); i++ {
		e.spans[i].ConcatStart += newConcatLen - oldConcatLen
		e.spans[i].ConcatEnd += newConcatLen - oldConcatLen
		e.spans[i].RealStart += newRealLen - oldRealLen
		e.spans[i].RealEnd += newRealLen - oldRealLen
	}
	e.spans = append(append(append([]Span{}, e.spans[:first]...), newSpans...), e.spans[last+1:]...)

	e.rebuildLineIndexes()

	return &out, nil
}

// canUsePartialEdit decides whether an edit can be described as a
// two-endpoint range diff instead of a whole-cell replacement. Partial
// edit is safe exactly when the edited cell's span *structure* (span
// count and real/synthetic tagging at each index) is unchanged, since
// that's what makes a two-endpoint range diff equivalent to describing the
// whole new content. See DESIGN.md.
func canUsePartialEdit(oldSpans, newSpans []Span) bool {
	if len(oldSpans) != len(newSpans) {
		return false
	}
	for i := range oldSpans {
		if oldSpans[i].IsReal != newSpans[i].IsReal {
			return false
		}
	}
	return true
}

// realToConcatWithin maps a global real offset to a concat offset using
// only the given (single cell's) old span run — used mid-edit, before the
// engine's shared coordinate mapper has been rebuilt for the new spans.
func realToConcatWithin(spans []Span, globalRealOffset int) int {
	for _, s := range spans {
		if s.IsReal && globalRealOffset >= s.RealStart && globalRealOffset <= s.RealEnd {
			return globalRealOffset - s.RealStart + s.ConcatStart
		}
	}
	if len(spans) == 0 {
		return globalRealOffset
	}
	return spans[0].ConcatStart
}

// cellOffsetInRealText resolves a cell-local position against a cell-local
// real-text line index.
func cellOffsetInRealText(lines []Line, pos Position) int {
	if len(lines) == 0 {
		return 0
	}
	idx := pos.Line
	if idx < 0 {
		idx = 0
	}
	if idx >= len(lines) {
		idx = len(lines) - 1
	}
	line := lines[idx]
	offset := line.Offset + pos.Character
	if offset < 0 {
		offset = 0
	}
	return offset
}

// Refresh re-seeds the whole document from a fresh list of cells in one
// shot, ignored entirely while the document is in interactive mode
// (interactive cells are not reorderable).
func (e *Engine) Refresh(cells []RefreshCell) *OutboundEvent {
	if e.interactive {
		return nil
	}

	parts := make([]string, 0, len(cells))
	for _, c := range cells {
		t := strings.ReplaceAll(c.Text, "\r\n", "\n")
		t = strings.ReplaceAll(t, "\r", "\n")
		parts = append(parts, t)
	}
	newReal := strings.Join(parts, "\n") + "\n"

	if newReal == e.currentRealText() {
		return nil
	}

	oldConcatLines := e.concatLines
	oldFullRange := e.fullRange(oldConcatLines)
	oldConcatLen := e.totalConcatLen()

	e.spans = nil
	e.concatLines = nil
	e.realLines = nil
	e.identity = nil
	e.closed = false
	e.version++

	for _, c := range cells {
		e.openAccepted(c.CellID, c.Text, c.Version, true)
	}

	newConcatText := e.concatText()

	var uri string
	if e.identity != nil {
		uri = e.identity.ConcatURI
	}

	e.logger.MutationAccepted("refresh", "*", e.version)

	return &OutboundEvent{
		URI:     uri,
		Version: e.version,
		ContentChanges: []OutboundContentChange{{
			Range:       oldFullRange,
			RangeLength: oldConcatLen,
			Text:        newConcatText,
		}},
	}
}

func (e *Engine) fullRange(lines []Line) Range {
	if len(lines) == 0 {
		return Range{}
	}
	last := lines[len(lines)-1]
	return Range{
		Start: Position{0, 0},
		End:   Position{Line: last.LineNumber, Character: len(last.Text)},
	}
}

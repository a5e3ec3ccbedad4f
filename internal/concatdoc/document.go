package concatdoc

import (
	"errors"
	"regexp"

	"github.com/rivo/uniseg"
)

// ErrUseCellAwareVariant is returned by the concat facade's generic
// offset_at/position_at: these exist only to satisfy a general document
// interface and are never correct here, since the concat document has
// discontiguous real coordinates.
var ErrUseCellAwareVariant = errors.New("concatdoc: use the explicit cell-aware coordinate mapper instead")

// Document is a read-only text-document view over an Engine's current
// state. It never mutates the engine; every method reads the engine's
// span list and line indexes as they stand at call time.
type Document struct {
	engine *Engine
}

// Document returns a read-only facade over the engine's current state.
func (e *Engine) Document() *Document { return &Document{engine: e} }

func (d *Document) URI() string {
	if d.engine.identity == nil {
		return ""
	}
	return d.engine.identity.ConcatURI
}

func (d *Document) Version() int { return d.engine.version }

// LineCount reports the number of "\n"-terminated lines in the concat
// text — i.e. the number of terminators, not the length of the internal
// line array, which additionally retains one trailing zero-length Line
// past the final terminator so that end-of-document positions resolve. A
// single-cell document with one real line plus the two-line header
// prelude reports 3.
func (d *Document) LineCount() int {
	n := len(d.engine.concatLines)
	if n == 0 {
		return 0
	}
	return n - 1
}

func (d *Document) LineAt(n int) (Line, bool) {
	if n < 0 || n >= len(d.engine.concatLines) {
		return Line{}, false
	}
	return d.engine.concatLines[n], true
}

func (d *Document) LineAtPosition(pos Position) (Line, bool) {
	return d.LineAt(pos.Line)
}

// GetText returns the full concat text.
func (d *Document) GetText() string {
	return d.engine.concatText()
}

// GetTextRange returns the substring of the concat text described by r,
// computed as a plain [start:end] slice by absolute offset; see DESIGN.md
// for why a length-based computation was rejected.
func (d *Document) GetTextRange(r Range) string {
	full := d.GetText()
	startLine, ok1 := d.LineAt(r.Start.Line)
	endLine, ok2 := d.LineAt(r.End.Line)
	if !ok1 || !ok2 {
		return ""
	}
	startOffset := startLine.Offset + r.Start.Character
	endOffset := endLine.Offset + r.End.Character
	if startOffset < 0 {
		startOffset = 0
	}
	if endOffset > len(full) {
		endOffset = len(full)
	}
	if endOffset < startOffset {
		return ""
	}
	return full[startOffset:endOffset]
}

// ConcatRangeOf returns the start of cellID's first concat line to the
// line-break-inclusive end of its last.
func (d *Document) ConcatRangeOf(cellID CellID) (Range, bool) {
	first, last, ok := findCellRun(d.engine.spans, cellID)
	if !ok {
		return Range{}, false
	}
	startConcat := d.engine.spans[first].ConcatStart
	endConcat := d.engine.spans[last].ConcatEnd
	startIdx := lineAtOffset(d.engine.concatLines, startConcat)
	endIdx := lineAtOffset(d.engine.concatLines, endConcat)
	if startIdx < 0 || endIdx < 0 {
		return Range{}, false
	}
	startLine := d.engine.concatLines[startIdx]
	endLine := d.engine.concatLines[endIdx]
	return Range{
		Start: Position{Line: startLine.LineNumber, Character: startConcat - startLine.Offset},
		End:   Position{Line: endLine.LineNumber, Character: endLine.LineBreakInclusiveEnd() - endLine.Offset},
	}, true
}

// RealRangeOf is restricted to real spans; it returns the corresponding
// concat lines' start/end.
func (d *Document) RealRangeOf(cellID CellID) (Range, bool) {
	var firstReal, lastReal *Line
	for i := range d.engine.realLines {
		if d.engine.realLines[i].CellID.Equal(cellID) {
			if firstReal == nil {
				firstReal = &d.engine.realLines[i]
			}
			lastReal = &d.engine.realLines[i]
		}
	}
	if firstReal == nil {
		return Range{}, false
	}

	mapper := d.engine.mapper()
	startConcat := mapper.RealToConcat(firstReal.Offset)
	endConcat := mapper.RealToConcat(lastReal.LineBreakInclusiveEnd())

	// RealToConcat leaves an offset past the last real span's real_end
	// unchanged (no containing span); fall back to that span's concat_end
	// directly so the range still closes over the cell's last real span.
	if _, last, ok := findCellRun(d.engine.spans, cellID); ok {
		for i := last; i >= 0 && i < len(d.engine.spans); i-- {
			if d.engine.spans[i].IsReal && d.engine.spans[i].CellID.Equal(cellID) {
				if lastReal.LineBreakInclusiveEnd() == d.engine.spans[i].RealEnd {
					endConcat = d.engine.spans[i].ConcatEnd
				}
				break
			}
		}
	}

	startIdx := lineAtOffset(d.engine.concatLines, startConcat)
	endIdx := lineAtOffset(d.engine.concatLines, endConcat)
	if startIdx < 0 || endIdx < 0 {
		return Range{}, false
	}
	startLine := d.engine.concatLines[startIdx]
	endLine := d.engine.concatLines[endIdx]
	return Range{
		Start: Position{Line: startLine.LineNumber, Character: startConcat - startLine.Offset},
		End:   Position{Line: endLine.LineNumber, Character: endConcat - endLine.Offset},
	}, true
}

// Cells returns the ordered, unique list of cell ids, preserving
// encounter order across spans.
func (d *Document) Cells() []CellID {
	return orderedCellIDs(d.engine.spans)
}

// WordScanner mirrors an external word-boundary scanner: a pure function
// that receives one line of text, a 0-based character offset into it, and
// a boundary pattern (nil means "use your own default"), and returns the
// matched word's 1-based [start, end] column span.
type WordScanner func(line string, char int, pattern *regexp.Regexp) (start, end int, ok bool)

var defaultWordPattern = regexp.MustCompile(`[\p{L}\p{N}_]+`)

// defaultWordScanner is the fallback used when no external scanner is
// injected. It walks the line by grapheme cluster (github.com/rivo/uniseg)
// rather than by byte, so multi-byte/glyph source doesn't desync the
// returned column from the caller's 0-based character offset.
func defaultWordScanner(line string, char int, pattern *regexp.Regexp) (int, int, bool) {
	if pattern == nil {
		pattern = defaultWordPattern
	}
	byteOffset := charToByteOffset(line, char)
	locs := pattern.FindAllStringIndex(line, -1)
	for _, loc := range locs {
		if byteOffset >= loc[0] && byteOffset <= loc[1] {
			return byteToCharOffset(line, loc[0]) + 1, byteToCharOffset(line, loc[1]) + 1, true
		}
	}
	return 0, 0, false
}

func charToByteOffset(line string, char int) int {
	g := uniseg.NewGraphemes(line)
	idx := 0
	for g.Next() {
		if idx == char {
			start, _ := g.Positions()
			return start
		}
		idx++
	}
	return len(line)
}

func byteToCharOffset(line string, byteOffset int) int {
	g := uniseg.NewGraphemes(line)
	idx := 0
	for g.Next() {
		start, _ := g.Positions()
		if start >= byteOffset {
			return idx
		}
		idx++
	}
	return idx
}

// WordRangeAtPosition delegates to scanner (falling back to
// defaultWordScanner when nil). If pattern is absent or matches the empty
// string, it substitutes the default pattern. Returns (line, start_char)
// .. (line, end_char) with the scanner's 1-based columns converted to
// 0-based.
func (d *Document) WordRangeAtPosition(pos Position, pattern *regexp.Regexp, scanner WordScanner) Range {
	if scanner == nil {
		scanner = defaultWordScanner
	}
	if pattern != nil && pattern.MatchString("") {
		pattern = nil
	}
	line, ok := d.LineAt(pos.Line)
	if !ok {
		return Range{}
	}
	start1, end1, found := scanner(line.Text, pos.Character, pattern)
	if !found {
		return Range{}
	}
	return Range{
		Start: Position{Line: pos.Line, Character: start1 - 1},
		End:   Position{Line: pos.Line, Character: end1 - 1},
	}
}

// OffsetAt fails loudly instead of guessing at a coordinate translation
// this facade can't perform correctly.
func (d *Document) OffsetAt(Position) (int, error) {
	return 0, ErrUseCellAwareVariant
}

// PositionAt fails loudly instead of guessing at a coordinate translation
// this facade can't perform correctly.
func (d *Document) PositionAt(int) (Position, error) {
	return Position{}, ErrUseCellAwareVariant
}

func (d *Document) Save() bool       { return false }
func (d *Document) IsDirty() bool    { return true }
func (d *Document) IsUntitled() bool { return true }
func (d *Document) Language() string { return "python" }
func (d *Document) EOL() string      { return "\n" }

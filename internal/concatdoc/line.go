package concatdoc

import "sort"

// Line represents one line inside one cell's contribution to a line
// index: owning cell, global 0-based line number, starting offset, and
// raw text with no terminator.
type Line struct {
	CellID        CellID
	LineNumber    int
	Offset        int
	Text          string
	HasTerminator bool
}

// EndOffset is the offset one past the line's last character, excluding
// any terminator.
func (l Line) EndOffset() int { return l.Offset + len(l.Text) }

// LineBreakInclusiveEnd is EndOffset plus one if the line was terminated
// by "\n", i.e. the offset where the next line begins.
func (l Line) LineBreakInclusiveEnd() int {
	if l.HasTerminator {
		return l.EndOffset() + 1
	}
	return l.EndOffset()
}

// buildLineIndex builds a line index over an ordered span list.
// selectText picks either Span.Text (concat_lines) or Span.RealText
// (real_lines); includeSpan filters which spans contribute (real_lines
// only includes IsReal spans).
//
// Spans are grouped into contiguous per-cell runs first (ignoring spans
// skipped by includeSpan), then each run's joined text is split on "\n".
// Only the LAST run's trailing empty split piece is retained. Every run's
// own text already ends with "\n", so keeping that trailing empty piece
// for every run would duplicate the boundary line shared with the next
// run and make this index disagree with a plain split of the whole
// concatenated text — dropping it for every run but the last reconciles
// the two views exactly.
func buildLineIndex(spans []Span, includeSpan func(Span) bool, selectText func(Span) string) []Line {
	type run struct {
		id   CellID
		text string
	}
	var runs []run
	for _, sp := range spans {
		if !includeSpan(sp) {
			continue
		}
		if len(runs) > 0 && runs[len(runs)-1].id.Equal(sp.CellID) {
			runs[len(runs)-1].text += selectText(sp)
		} else {
			runs = append(runs, run{id: sp.CellID, text: selectText(sp)})
		}
	}

	var lines []Line
	offset := 0
	lineNumber := 0
	for ri, r := range runs {
		pieces := splitLines(r.text)
		limit := len(pieces)
		if ri != len(runs)-1 && limit > 0 {
			limit--
		}
		for i := 0; i < limit; i++ {
			hasTerm := i < len(pieces)-1
			lines = append(lines, Line{
				CellID:        r.id,
				LineNumber:    lineNumber,
				Offset:        offset,
				Text:          pieces[i],
				HasTerminator: hasTerm,
			})
			lineNumber++
			if hasTerm {
				offset += len(pieces[i]) + 1
			} else {
				offset += len(pieces[i])
			}
		}
	}
	return lines
}

func splitLines(s string) []string {
	var out []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			out = append(out, s[start:i])
			start = i + 1
		}
	}
	return append(out, s[start:])
}

// lineAtOffset returns the index of the line in lines whose
// [Offset, LineBreakInclusiveEnd) range contains offset, using a binary
// search over the (monotonically increasing) line offsets — the same
// prefix-search shape bufbuild/protocompile's IndexedFile.Search uses over
// its own line-start offsets. Clamps to the last line for an offset past
// the end of the document.
func lineAtOffset(lines []Line, offset int) int {
	if len(lines) == 0 {
		return -1
	}
	i := sort.Search(len(lines), func(i int) bool { return lines[i].Offset > offset })
	idx := i - 1
	if idx < 0 {
		idx = 0
	}
	return idx
}

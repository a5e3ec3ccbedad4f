package concatdoc

// Span is a contiguous substring of the concat document owned by exactly
// one cell. The span list is the single source of truth for document
// structure; callers only ever see copies.
type Span struct {
	CellID      CellID
	Fragment    int
	IsReal      bool
	ConcatStart int
	ConcatEnd   int
	RealStart   int
	RealEnd     int
	Text        string
	RealText    string
}

func (s Span) concatLen() int { return s.ConcatEnd - s.ConcatStart }
func (s Span) realLen() int   { return s.RealEnd - s.RealStart }

// findCellRun returns the first and last index of the contiguous run of
// spans owned by cellID, or ok=false if the cell has no spans.
func findCellRun(spans []Span, cellID CellID) (first, last int, ok bool) {
	for i, s := range spans {
		if s.CellID.Equal(cellID) {
			if !ok {
				first = i
				ok = true
			}
			last = i
		} else if ok {
			break
		}
	}
	return
}

func cellExists(spans []Span, cellID CellID) bool {
	_, _, ok := findCellRun(spans, cellID)
	return ok
}

// orderedCellIDs returns the distinct cell ids among spans in
// first-encounter order.
func orderedCellIDs(spans []Span) []CellID {
	var ids []CellID
	for _, s := range spans {
		if len(ids) == 0 || !ids[len(ids)-1].Equal(s.CellID) {
			ids = append(ids, s.CellID)
		}
	}
	return ids
}

// insertSpans returns a new slice with newSpans spliced in at index at.
func insertSpans(spans []Span, at int, newSpans []Span) []Span {
	result := make([]Span, 0, len(spans)+len(newSpans))
	result = append(result, spans[:at]...)
	result = append(result, newSpans...)
	result = append(result, spans[at:]...)
	return result
}

// removeSpanRun returns a new slice with spans[first:last+1] removed.
func removeSpanRun(spans []Span, first, last int) []Span {
	result := make([]Span, 0, len(spans)-(last-first+1))
	result = append(result, spans[:first]...)
	result = append(result, spans[last+1:]...)
	return result
}

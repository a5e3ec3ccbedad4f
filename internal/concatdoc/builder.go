package concatdoc

import "strings"

// BuildSpans is a pure function that, given a cell's normalized source
// text (CR-stripped, guaranteed to end with a single "\n"), produces the
// span sequence contributed by opening or rebuilding that cell at the
// given starting concat/real offsets.
func BuildSpans(cfg EngineConfig, cellID CellID, text string, concatOffset, realOffset int) []Span {
	fragment := cellID.FragmentKey()
	var spans []Span

	if concatOffset == 0 && !cellID.IsInteractiveInput() {
		header := cfg.HeaderPreamble
		if cfg.PerCellHeader != "" {
			extra := cfg.PerCellHeader
			if !strings.HasSuffix(extra, "\n") {
				extra += "\n"
			}
			header += extra
		}
		spans = append(spans, Span{
			CellID:      cellID,
			Fragment:    fragment,
			IsReal:      false,
			ConcatStart: concatOffset,
			ConcatEnd:   concatOffset + len(header),
			RealStart:   realOffset,
			RealEnd:     realOffset,
			Text:        header,
			RealText:    "",
		})
		concatOffset += len(header)
	}

	lines := splitLines(text)

	var realBuf strings.Builder
	realSpanStartConcat := concatOffset
	realSpanStartReal := realOffset

	flushReal := func() {
		if realBuf.Len() == 0 {
			return
		}
		t := realBuf.String()
		spans = append(spans, Span{
			CellID:      cellID,
			Fragment:    fragment,
			IsReal:      true,
			ConcatStart: realSpanStartConcat,
			ConcatEnd:   realSpanStartConcat + len(t),
			RealStart:   realSpanStartReal,
			RealEnd:     realSpanStartReal + len(t),
			Text:        t,
			RealText:    t,
		})
		concatOffset = realSpanStartConcat + len(t)
		realOffset = realSpanStartReal + len(t)
		realBuf.Reset()
		realSpanStartConcat = concatOffset
		realSpanStartReal = realOffset
	}

	for i, line := range lines {
		last := i == len(lines)-1
		if cfg.SuppressionEnabled && !last && isTriggerLine(line) {
			realBuf.WriteString(line)
			flushReal()
			spans = append(spans, Span{
				CellID:      cellID,
				Fragment:    fragment,
				IsReal:      false,
				ConcatStart: concatOffset,
				ConcatEnd:   concatOffset + len(suppressionSuffix),
				RealStart:   realOffset,
				RealEnd:     realOffset,
				Text:        suppressionSuffix,
				RealText:    "",
			})
			concatOffset += len(suppressionSuffix)
			realSpanStartConcat = concatOffset
			// The next real span begins at the newline that followed the
			// trigger line.
			realBuf.WriteByte('\n')
			continue
		}
		realBuf.WriteString(line)
		if !last {
			realBuf.WriteByte('\n')
		}
	}
	flushReal()

	return spans
}

// isTriggerLine reports whether line matches one of the recognized
// type-suppression triggers, allowing leading whitespace before the
// trigger.
func isTriggerLine(line string) bool {
	trimmed := strings.TrimLeft(line, " \t")
	switch {
	case strings.HasPrefix(trimmed, "%"):
		return true
	case strings.HasPrefix(trimmed, "!"):
		return true
	case strings.HasPrefix(trimmed, "await "):
		return true
	default:
		return false
	}
}

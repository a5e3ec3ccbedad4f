package concatdoc

// Position is a 0-based (line, character) coordinate.
type Position struct {
	Line      int
	Character int
}

// Range is a half-open [Start, End) position pair.
type Range struct {
	Start Position
	End   Position
}

// Inbound events are modeled as tagged, explicitly-fielded variants rather
// than a single shape-shifting struct.

// ContentChange is one entry of a Change event's content_changes array. A
// nil Range means "absent" and is treated as the zero range, i.e.
// insert-at-beginning semantics for that change.
type ContentChange struct {
	Range *Range
	Text  string
}

// RefreshCell is one entry of a Refresh event's cells array.
type RefreshCell struct {
	CellID  CellID
	Text    string
	Version int
}

// Outbound events: a single content-change event per accepted inbound
// event, with range stripped down to exactly {start,end} for a
// serialization-clean wire shape.

// OutboundContentChange is one entry of the outbound event's
// content_changes array.
type OutboundContentChange struct {
	Range       Range
	RangeOffset *int
	RangeLength int
	Text        string
}

// OutboundEvent is the single change event the engine emits per accepted
// mutating call.
type OutboundEvent struct {
	URI            string
	Version        int
	ContentChanges []OutboundContentChange
}

package concatdoc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cell(uri string) CellID { return CellID{URI: uri} }

const testHeader = "import IPython\nIPython.get_ipython()\n"

// Opening one cell emits a header plus the cell's real span as a single
// insertion event, and the resulting line count includes the header.
func TestOpen_SingleCell_EmitsHeaderAndInsertion(t *testing.T) {
	e := NewEngine(DefaultEngineConfig())
	ev := e.Open(cell("vscode-notebook-cell:/nb.ipynb#W0"), "print(1)\n", 1, false)
	require.NotNil(t, ev)

	assert.Equal(t, Position{0, 0}, ev.ContentChanges[0].Range.Start)
	assert.Equal(t, Position{0, 0}, ev.ContentChanges[0].Range.End)
	assert.Equal(t, testHeader+"print(1)\n", ev.ContentChanges[0].Text)

	doc := e.Document()
	assert.Equal(t, 3, doc.LineCount())
	assert.Equal(t, testHeader+"print(1)\n", doc.GetText())

	require.Len(t, e.spans, 2)
	assert.False(t, e.spans[0].IsReal)
	assert.True(t, e.spans[1].IsReal)
	assert.Equal(t, "print(1)\n", e.spans[1].RealText)
}

// A trigger line splits the cell's contribution into real/synthetic/real
// spans, but the cell's real text is unchanged from the input.
func TestOpen_TriggerLine_SplitsSuppressionSpan(t *testing.T) {
	e := NewEngine(DefaultEngineConfig())
	e.Open(cell("vscode-notebook-cell:/nb.ipynb#W0"), "!pip install x\nprint(1)\n", 1, false)

	require.Len(t, e.spans, 4)
	assert.False(t, e.spans[0].IsReal) // header
	assert.True(t, e.spans[1].IsReal)
	assert.Equal(t, "!pip install x", e.spans[1].RealText)
	assert.False(t, e.spans[2].IsReal)
	assert.Equal(t, suppressionSuffix, e.spans[2].Text)
	assert.True(t, e.spans[3].IsReal)
	assert.Equal(t, "\nprint(1)\n", e.spans[3].RealText)

	assert.Equal(t, "!pip install x\nprint(1)\n", e.currentRealText())
}

// Editing only the trigger line preserves span structure, so the engine
// emits a partial edit rather than rebuilding the whole cell.
func TestEdit_SameStructure_EmitsPartialEdit(t *testing.T) {
	e := NewEngine(DefaultEngineConfig())
	cellID := cell("vscode-notebook-cell:/nb.ipynb#W0")
	e.Open(cellID, "!pip install x\nprint(1)\n", 1, false)

	r := Range{Start: Position{0, 0}, End: Position{0, 14}}
	ev := e.Edit(cellID, []ContentChange{{Range: &r, Text: "!pip install y"}})
	require.NotNil(t, ev)
	require.Len(t, ev.ContentChanges, 1)
	assert.Equal(t, "!pip install y", ev.ContentChanges[0].Text)
	assert.NotEqual(t, Position{0, 0}, ev.ContentChanges[0].Range.End)

	assert.Equal(t, "!pip install y\nprint(1)\n", e.currentRealText())
}

// An edit that removes the trigger line changes the cell's span count,
// forcing a whole-cell replacement instead of a partial edit.
func TestEdit_StructureChanges_EmitsWholeCellReplacement(t *testing.T) {
	e := NewEngine(DefaultEngineConfig())
	cellID := cell("vscode-notebook-cell:/nb.ipynb#W0")
	e.Open(cellID, "!pip install x\nprint(1)\n", 1, false)

	r := Range{Start: Position{0, 0}, End: Position{0, 14}}
	ev := e.Edit(cellID, []ContentChange{{Range: &r, Text: "print(2)"}})
	require.NotNil(t, ev)
	require.Len(t, ev.ContentChanges, 1)
	assert.Contains(t, ev.ContentChanges[0].Text, "print(2)\nprint(1)\n")

	require.Len(t, e.spans, 2)
	assert.True(t, e.spans[1].IsReal)
	assert.Equal(t, "print(2)\nprint(1)\n", e.spans[1].RealText)
}

// Closing the only cell emits a full deletion and marks the document
// closed.
func TestClose_OnlyCell_ClosesDocument(t *testing.T) {
	e := NewEngine(DefaultEngineConfig())
	cellID := cell("vscode-notebook-cell:/nb.ipynb#W0")
	e.Open(cellID, "print(1)\n", 1, false)

	ev := e.Close(cellID)
	require.NotNil(t, ev)
	assert.Equal(t, "", ev.ContentChanges[0].Text)
	assert.True(t, e.Closed())
	assert.Equal(t, 0, e.Document().LineCount())
	assert.Empty(t, e.spans)
}

// Refresh reorders force-appended cells into the order given, replacing
// the whole document in one event.
func TestRefresh_ReordersCells(t *testing.T) {
	e := NewEngine(DefaultEngineConfig())
	w1 := cell("vscode-notebook-cell:/nb.ipynb#W1")
	w0 := cell("vscode-notebook-cell:/nb.ipynb#W0")
	e.Open(w1, "b = 1\n", 1, true)
	e.Open(w0, "a = 1\n", 1, true)

	ev := e.Refresh([]RefreshCell{
		{CellID: w0, Text: "a = 1\n", Version: 2},
		{CellID: w1, Text: "b = 1\n", Version: 2},
	})
	require.NotNil(t, ev)
	assert.Equal(t, Position{0, 0}, ev.ContentChanges[0].Range.Start)

	cells := e.Document().Cells()
	require.Len(t, cells, 2)
	assert.True(t, cells[0].Equal(w0))
	assert.True(t, cells[1].Equal(w1))
}

// Opening cells out of fragment order without force-append inserts each
// one at its sorted position among existing numeric-fragment spans,
// rather than always appending.
func TestOpen_OutOfOrder_InsertsByFragmentKey(t *testing.T) {
	e := NewEngine(DefaultEngineConfig())
	w2 := cell("vscode-notebook-cell:/nb.ipynb#W2")
	w0 := cell("vscode-notebook-cell:/nb.ipynb#W0")
	w1 := cell("vscode-notebook-cell:/nb.ipynb#W1")

	e.Open(w2, "c = 1\n", 1, false)
	e.Open(w0, "a = 1\n", 2, false)
	e.Open(w1, "b = 1\n", 3, false)

	cells := e.Document().Cells()
	require.Len(t, cells, 3)
	assert.True(t, cells[0].Equal(w0))
	assert.True(t, cells[1].Equal(w1))
	assert.True(t, cells[2].Equal(w2))
}

// The interactive input cell (fragment key -1) always sorts last, even
// when opened before a lower-numbered notebook cell.
func TestOpen_InteractiveInput_AlwaysSortsLast(t *testing.T) {
	e := NewEngine(DefaultEngineConfig())
	input := cell("vscode-interactive-input:/nb.ipynb")
	w0 := cell("vscode-notebook-cell:/nb.ipynb#W0")

	e.Open(input, "z = 1\n", 1, false)
	e.Open(w0, "a = 1\n", 2, false)

	cells := e.Document().Cells()
	require.Len(t, cells, 2)
	assert.True(t, cells[0].Equal(w0))
	assert.True(t, cells[1].Equal(input))
}

func TestOpen_DoubleOpen_Ignored(t *testing.T) {
	e := NewEngine(DefaultEngineConfig())
	cellID := cell("vscode-notebook-cell:/nb.ipynb#W0")
	e.Open(cellID, "print(1)\n", 1, false)
	v := e.Version()
	ev := e.Open(cellID, "print(2)\n", 2, false)
	assert.Nil(t, ev)
	assert.Equal(t, v, e.Version())
}

func TestClose_UnknownCell_Ignored(t *testing.T) {
	e := NewEngine(DefaultEngineConfig())
	ev := e.Close(cell("vscode-notebook-cell:/nb.ipynb#W0"))
	assert.Nil(t, ev)
}

// In interactive mode, closing a notebook cell is a no-op against spans —
// it persists logically until the interactive input cell itself closes.
func TestClose_InteractiveMode_NotebookCellCloseIsNoOp(t *testing.T) {
	e := NewEngine(DefaultEngineConfig())
	w0 := cell("vscode-notebook-cell:/nb.ipynb#W0")
	input := cell("vscode-interactive-input:/nb.ipynb")
	e.Open(w0, "x = 1\n", 1, false)
	e.Open(input, "y = 2\n", 2, false)
	require.True(t, e.interactive)

	spansBefore := len(e.spans)
	ev := e.Close(w0)
	assert.Nil(t, ev)
	assert.Len(t, e.spans, spansBefore)
	assert.True(t, e.interactive)
	assert.False(t, e.Closed())
}

// Closing the interactive input cell clears the entire state, including
// notebook cells that persisted through earlier no-op closes.
func TestClose_InteractiveInput_ClearsEntireState(t *testing.T) {
	e := NewEngine(DefaultEngineConfig())
	w0 := cell("vscode-notebook-cell:/nb.ipynb#W0")
	input := cell("vscode-interactive-input:/nb.ipynb")
	e.Open(w0, "x = 1\n", 1, false)
	e.Open(input, "y = 2\n", 2, false)
	e.Close(w0) // persists logically, no-op

	v := e.Version()
	ev := e.Close(input)
	require.NotNil(t, ev)
	assert.Greater(t, e.Version(), v)
	assert.Empty(t, e.spans)
	assert.Empty(t, e.concatLines)
	assert.True(t, e.Closed())
	assert.False(t, e.interactive)
	assert.Nil(t, e.identity)
}

func TestVersion_StrictlyIncreasesAcrossMutations(t *testing.T) {
	e := NewEngine(DefaultEngineConfig())
	cellID := cell("vscode-notebook-cell:/nb.ipynb#W0")
	e.Open(cellID, "print(1)\n", 1, false)
	v1 := e.Version()
	e.Edit(cellID, []ContentChange{{Text: "x = 1\n"}})
	v2 := e.Version()
	assert.Greater(t, v2, v1)
}

// Splitting GetText() on "\n" reconstructs the concat line texts and
// offsets exactly, even across a cell boundary.
func TestLineIndex_MatchesWholeTextSplit(t *testing.T) {
	e := NewEngine(DefaultEngineConfig())
	w0 := cell("vscode-notebook-cell:/nb.ipynb#W0")
	w1 := cell("vscode-notebook-cell:/nb.ipynb#W1")
	e.Open(w0, "a = 1\n", 1, false)
	e.Open(w1, "b = 2\n", 2, false)

	text := e.Document().GetText()
	pieces := splitLines(text)
	require.Equal(t, len(pieces), len(e.concatLines))
	offset := 0
	for i, p := range pieces {
		assert.Equal(t, p, e.concatLines[i].Text)
		assert.Equal(t, offset, e.concatLines[i].Offset)
		offset += len(p) + 1
	}
}

// ConcatToClosestReal(RealToConcat(x)) == x for every real offset.
func TestMapper_RoundTripsRealOffsets(t *testing.T) {
	e := NewEngine(DefaultEngineConfig())
	cellID := cell("vscode-notebook-cell:/nb.ipynb#W0")
	e.Open(cellID, "!pip install x\nprint(1)\n", 1, false)

	m := e.Mapper()
	realText := e.currentRealText()
	for x := 0; x < len(realText); x++ {
		concat := m.RealToConcat(x)
		got := m.ConcatToClosestReal(concat)
		assert.Equal(t, x, got, "round trip failed for real offset %d", x)
	}
}

func TestIdentity_DerivedFromFirstCell(t *testing.T) {
	e := NewEngine(DefaultEngineConfig())
	e.Open(cell("file:///tmp/nb.ipynb#W0"), "a = 1\n", 1, false)
	require.NotNil(t, e.Identity())
	assert.Contains(t, e.Identity().ConcatURI, "_NotebookConcat_")
	assert.Contains(t, e.Identity().ConcatURI, ".py")
}

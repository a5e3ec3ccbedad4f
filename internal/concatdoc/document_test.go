package concatdoc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocument_GetTextRange_SpansMultipleLines(t *testing.T) {
	e := NewEngine(DefaultEngineConfig())
	w0 := cell("vscode-notebook-cell:/nb.ipynb#W0")
	e.Open(w0, "x = 1\ny = 2\n", 1, false)

	doc := e.Document()
	full := doc.GetText()
	require.Contains(t, full, "x = 1\ny = 2\n")

	r, ok := doc.RealRangeOf(w0)
	require.True(t, ok)
	got := doc.GetTextRange(r)
	assert.Equal(t, "x = 1\ny = 2\n", got)
}

func TestDocument_GetTextRange_OutOfBoundsIsEmpty(t *testing.T) {
	e := NewEngine(DefaultEngineConfig())
	doc := e.Document()
	got := doc.GetTextRange(Range{Start: Position{Line: 5, Character: 0}, End: Position{Line: 6, Character: 0}})
	assert.Equal(t, "", got)
}

// RealRangeOf starts after the header prelude; the inline suppression
// suffix sits inside the cell's concat lines, so the range includes it.
func TestDocument_RealRangeOf_ExcludesHeader(t *testing.T) {
	e := NewEngine(DefaultEngineConfig())
	w0 := cell("vscode-notebook-cell:/nb.ipynb#W0")
	e.Open(w0, "!pip install x\nprint(1)\n", 1, false)

	doc := e.Document()
	r, ok := doc.RealRangeOf(w0)
	require.True(t, ok)

	got := doc.GetTextRange(r)
	assert.Equal(t, "!pip install x"+suppressionSuffix+"\nprint(1)\n", got)
}

func TestDocument_WordRangeAtPosition_DefaultScanner(t *testing.T) {
	e := NewEngine(DefaultEngineConfig())
	w0 := cell("vscode-notebook-cell:/nb.ipynb#W0")
	e.Open(w0, "foo_bar = 1\n", 1, false)

	doc := e.Document()
	// line 2 of the concat doc is "foo_bar = 1" (after the 2-line header).
	r := doc.WordRangeAtPosition(Position{Line: 2, Character: 1}, nil, nil)
	assert.Equal(t, 0, r.Start.Character)
	assert.Equal(t, 7, r.End.Character)
}

func TestDocument_WordRangeAtPosition_NoWordAtPosition(t *testing.T) {
	e := NewEngine(DefaultEngineConfig())
	w0 := cell("vscode-notebook-cell:/nb.ipynb#W0")
	e.Open(w0, "   \n", 1, false)

	doc := e.Document()
	r := doc.WordRangeAtPosition(Position{Line: 2, Character: 1}, nil, nil)
	assert.Equal(t, Range{}, r)
}

func TestDocument_OffsetAt_FailsLoudly(t *testing.T) {
	e := NewEngine(DefaultEngineConfig())
	doc := e.Document()
	_, err := doc.OffsetAt(Position{})
	assert.ErrorIs(t, err, ErrUseCellAwareVariant)
}

func TestDocument_Cells_PreservesEncounterOrder(t *testing.T) {
	e := NewEngine(DefaultEngineConfig())
	w1 := cell("vscode-notebook-cell:/nb.ipynb#W1")
	w0 := cell("vscode-notebook-cell:/nb.ipynb#W0")
	e.Open(w1, "b = 1\n", 1, true)
	e.Open(w0, "a = 1\n", 1, true)

	cells := e.Document().Cells()
	require.Len(t, cells, 2)
	assert.True(t, cells[0].Equal(w1))
	assert.True(t, cells[1].Equal(w0))
}

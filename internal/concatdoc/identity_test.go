package concatdoc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeriveIdentity_NotebookCell_IsFileURI(t *testing.T) {
	id := deriveIdentity(cell("file:///tmp/work/nb.ipynb#W0"))
	assert.Contains(t, id.ConcatURI, "/tmp/work/_NotebookConcat_")
	assert.Contains(t, id.ConcatURI, ".py")
	assert.Equal(t, "file:///tmp/work/nb.ipynb", id.NotebookURI)
}

func TestDeriveIdentity_InteractiveInput_UsesInteractiveScheme(t *testing.T) {
	id := deriveIdentity(cell("vscode-interactive-input:/nb.ipynb"))
	assert.Equal(t, SchemeInteractive+":/nb.ipynb", id.NotebookURI)
}

func TestDeriveIdentity_UntitledFragment_UsesUntitledScheme(t *testing.T) {
	id := deriveIdentity(cell("vscode-notebook-cell:/Untitled-1.ipynb#W0untitled"))
	assert.Equal(t, SchemeUntitled+":/Untitled-1.ipynb", id.NotebookURI)
}

func TestDeriveIdentity_IsDeterministic(t *testing.T) {
	a := deriveIdentity(cell("file:///tmp/nb.ipynb#W0"))
	b := deriveIdentity(cell("file:///tmp/nb.ipynb#W0"))
	assert.Equal(t, a.ConcatURI, b.ConcatURI)
	assert.Equal(t, a.NotebookURI, b.NotebookURI)
}

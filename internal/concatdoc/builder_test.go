package concatdoc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildSpans_TriggerPatterns(t *testing.T) {
	cfg := DefaultEngineConfig()
	id := cell("vscode-notebook-cell:/nb.ipynb#W0")

	for _, text := range []string{
		"%timeit f()\nx = 1\n",
		"  !ls\nx = 1\n",
		"await foo()\nx = 1\n",
	} {
		spans := BuildSpans(cfg, id, text, 0, 0)
		var synthetic int
		for _, s := range spans {
			if !s.IsReal && s.Text == suppressionSuffix {
				synthetic++
			}
		}
		assert.Equal(t, 1, synthetic, "expected exactly one suppression span for %q", text)
	}
}

func TestBuildSpans_NoTriggerOnLastLine(t *testing.T) {
	cfg := DefaultEngineConfig()
	id := cell("vscode-notebook-cell:/nb.ipynb#W0")
	// the trailing empty piece after the final "\n" must never be treated
	// as a trigger line (it is never examined for a prefix at all).
	spans := BuildSpans(cfg, id, "x = 1\n", 0, 0)
	for _, s := range spans {
		assert.NotEqual(t, suppressionSuffix, s.Text)
	}
}

func TestBuildSpans_SuppressionDisabled(t *testing.T) {
	cfg := DefaultEngineConfig()
	cfg.SuppressionEnabled = false
	id := cell("vscode-notebook-cell:/nb.ipynb#W0")
	spans := BuildSpans(cfg, id, "!pip install x\nprint(1)\n", 0, 0)

	for _, s := range spans {
		assert.NotEqual(t, suppressionSuffix, s.Text)
	}
	// header + one real span with the whole text unchanged
	require.Len(t, spans, 2)
	assert.Equal(t, "!pip install x\nprint(1)\n", spans[1].RealText)
}

func TestBuildSpans_InteractiveInputSkipsHeader(t *testing.T) {
	cfg := DefaultEngineConfig()
	id := cell("vscode-interactive-input:/nb.ipynb")
	spans := BuildSpans(cfg, id, "x = 1\n", 0, 0)
	require.Len(t, spans, 1)
	assert.True(t, spans[0].IsReal)
}

func TestBuildSpans_HeaderContributesZeroRealLength(t *testing.T) {
	cfg := DefaultEngineConfig()
	id := cell("vscode-notebook-cell:/nb.ipynb#W0")
	spans := BuildSpans(cfg, id, "x = 1\n", 0, 0)
	require.True(t, len(spans) >= 1)
	header := spans[0]
	assert.False(t, header.IsReal)
	assert.Equal(t, header.RealStart, header.RealEnd)
}

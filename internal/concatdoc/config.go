package concatdoc

// EngineConfig holds the engine's tunable constants. Fields left at their
// zero value by a caller should come from DefaultEngineConfig, not an
// empty EngineConfig{} literal — see internal/concatcfg for the YAML
// loader that does this merge.
type EngineConfig struct {
	// HeaderPreamble is the fixed text prepended to the document's first
	// cell.
	HeaderPreamble string
	// PerCellHeader is an optional caller-provided string appended to the
	// header preamble. Empty by default.
	PerCellHeader string
	// SuppressionEnabled toggles type-suppression span generation.
	SuppressionEnabled bool
}

// DefaultEngineConfig returns the engine's hardcoded defaults.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		HeaderPreamble:     "import IPython\nIPython.get_ipython()\n",
		SuppressionEnabled: true,
	}
}

const suppressionSuffix = " # type: ignore"

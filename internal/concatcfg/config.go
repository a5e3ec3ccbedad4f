// Package concatcfg loads the engine's tunable constants from YAML,
// mirroring how funvibe/funxy's own evaluator built-ins
// (internal/evaluator/builtins_yaml.go) reach for gopkg.in/yaml.v3 rather
// than a hand-rolled parser.
package concatcfg

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/funvibe/notebook-concat/internal/concatdoc"
)

// fileConfig mirrors the on-disk YAML shape. Every field is optional; an
// omitted field falls back to concatdoc.DefaultEngineConfig().
type fileConfig struct {
	HeaderPreamble     *string `yaml:"headerPreamble"`
	PerCellHeader      string  `yaml:"perCellHeader"`
	SuppressionEnabled *bool   `yaml:"suppressionEnabled"`
}

// Load reads engine configuration from the YAML file at path. A missing
// file is not an error — it simply yields concatdoc.DefaultEngineConfig().
// An empty path also yields the defaults, so callers can wire this
// unconditionally behind a "-config" flag that defaults to "".
func Load(path string) (concatdoc.EngineConfig, error) {
	cfg := concatdoc.DefaultEngineConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("concatcfg: reading %s: %w", path, err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return cfg, fmt.Errorf("concatcfg: parsing %s: %w", path, err)
	}

	if fc.HeaderPreamble != nil {
		cfg.HeaderPreamble = *fc.HeaderPreamble
	}
	if fc.PerCellHeader != "" {
		cfg.PerCellHeader = fc.PerCellHeader
	}
	if fc.SuppressionEnabled != nil {
		cfg.SuppressionEnabled = *fc.SuppressionEnabled
	}
	return cfg, nil
}

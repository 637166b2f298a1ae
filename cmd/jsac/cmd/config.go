package cmd

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cwbudde/jsstatic/pkg/engine"
)

// fileConfig is the on-disk shape of .jsac.yaml, mapping onto
// engine.Configuration. Pointer fields distinguish "absent from the file"
// (keep the default) from an explicit false/zero.
type fileConfig struct {
	ExactMode               bool     `yaml:"exactMode"`
	InvokeMethods           *bool    `yaml:"invokeMethods"`
	NativeExceptionRecovery *bool    `yaml:"nativeExceptionRecovery"`
	MaxRecursionLimit       int      `yaml:"maxRecursionLimit"`
	MaxCycles               int      `yaml:"maxCycles"`
	Blacklist               []string `yaml:"blacklist"`
}

// loadConfiguration reads path (if non-empty) and overlays it onto
// engine.DefaultConfiguration. A missing --config flag is not an error:
// analyze runs with engine defaults.
func loadConfiguration(path string) (*engine.Configuration, error) {
	cfg := engine.DefaultConfiguration()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	applyFileConfig(cfg, &fc)
	return cfg, nil
}

func applyFileConfig(cfg *engine.Configuration, fc *fileConfig) {
	cfg.ExactMode = fc.ExactMode
	if fc.InvokeMethods != nil {
		cfg.InvokeMethods = *fc.InvokeMethods
	}
	if fc.NativeExceptionRecovery != nil {
		cfg.NativeExceptionRecovery = *fc.NativeExceptionRecovery
	}
	if fc.MaxRecursionLimit > 0 {
		cfg.MaxRecursionLimit = fc.MaxRecursionLimit
	}
	if fc.MaxCycles > 0 {
		cfg.MaxCycles = fc.MaxCycles
	}
	if len(fc.Blacklist) > 0 {
		cfg.SkippedModeBlacklist = make(map[string]bool, len(fc.Blacklist))
		for _, f := range fc.Blacklist {
			cfg.SkippedModeBlacklist[f] = true
		}
	}
}

// Package config provides configuration management for the npmacro CLI.
//
// Values are layered from defaults, an npmacro.yaml file, NPMACRO_
// environment variables and explicitly set flags, in increasing priority.
package config

import (
	"github.com/leapstack-labs/npmacro/internal/engine"
	"github.com/leapstack-labs/npmacro/internal/macro"
)

// Config holds all CLI configuration options.
type Config struct {
	// ProjectRoot is the directory relative paths are resolved against. It is
	// the directory holding the config file, or the working directory.
	ProjectRoot string `koanf:"-"`

	Root          string   `koanf:"root"`
	InputSuffix   string   `koanf:"input_suffix"`
	OutputSuffix  string   `koanf:"output_suffix"`
	BuildTag      string   `koanf:"build_tag"`
	MarkerImport  string   `koanf:"marker_import"`
	RuntimeImport string   `koanf:"runtime_import"`
	RuntimeName   string   `koanf:"runtime_name"`
	Fallback      string   `koanf:"fallback"`
	StatePath     string   `koanf:"state_path"`
	Workers       int      `koanf:"workers"`
	Exclude       []string `koanf:"exclude"`
	Verbose       bool     `koanf:"verbose"`
	OutputFormat  string   `koanf:"output"`
}

// Default configuration values.
const (
	DefaultRoot      = "."
	DefaultStateFile = ".npmacro/state.db"
	DefaultOutput    = "auto" // Auto-detect: TTY=text, non-TTY=markdown
)

// Config file names, in lookup order.
var configFileNames = []string{"npmacro.yaml", "npmacro.yml"}

// Defaults returns the default values as a flat key map.
func Defaults() map[string]any {
	return map[string]any{
		"root":           DefaultRoot,
		"input_suffix":   engine.DefaultInputSuffix,
		"output_suffix":  engine.DefaultOutputSuffix,
		"build_tag":      macro.DefaultBuildTag,
		"marker_import":  macro.DefaultMarkerPath,
		"runtime_import": macro.DefaultRuntimePath,
		"runtime_name":   macro.DefaultRuntimeName,
		"fallback":       macro.DefaultFallback,
		"state_path":     DefaultStateFile,
		"workers":        0,
		"exclude":        []string{},
		"verbose":        false,
		"output":         DefaultOutput,
	}
}

// ExpanderOptions returns the call site expansion options.
func (c *Config) ExpanderOptions() macro.Options {
	return macro.Options{
		MarkerPath:  c.MarkerImport,
		RuntimePath: c.RuntimeImport,
		RuntimeName: c.RuntimeName,
		BuildTag:    c.BuildTag,
		Fallback:    c.Fallback,
	}
}

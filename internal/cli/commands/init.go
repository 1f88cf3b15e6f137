package commands

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/leapstack-labs/npmacro/internal/cli/config"
	"github.com/leapstack-labs/npmacro/internal/cli/output"
	"github.com/leapstack-labs/npmacro/internal/engine"
	"github.com/leapstack-labs/npmacro/internal/macro"
)

const configFileName = "npmacro.yaml"

// projectConfig is the document written by init. Field order is the order
// in the generated file.
type projectConfig struct {
	Root          string   `yaml:"root"`
	InputSuffix   string   `yaml:"input_suffix"`
	OutputSuffix  string   `yaml:"output_suffix"`
	BuildTag      string   `yaml:"build_tag"`
	MarkerImport  string   `yaml:"marker_import"`
	RuntimeImport string   `yaml:"runtime_import"`
	RuntimeName   string   `yaml:"runtime_name"`
	Fallback      string   `yaml:"fallback"`
	StatePath     string   `yaml:"state_path"`
	Workers       int      `yaml:"workers"`
	Exclude       []string `yaml:"exclude"`
}

func defaultProjectConfig() projectConfig {
	return projectConfig{
		Root:          config.DefaultRoot,
		InputSuffix:   engine.DefaultInputSuffix,
		OutputSuffix:  engine.DefaultOutputSuffix,
		BuildTag:      macro.DefaultBuildTag,
		MarkerImport:  macro.DefaultMarkerPath,
		RuntimeImport: macro.DefaultRuntimePath,
		RuntimeName:   macro.DefaultRuntimeName,
		Fallback:      macro.DefaultFallback,
		StatePath:     config.DefaultStateFile,
		Workers:       0,
		Exclude:       []string{},
	}
}

// NewInitCommand creates the init command.
func NewInitCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Create an npmacro.yaml configuration",
		Long: `Write an npmacro.yaml with the default settings into the directory.

Every key can also be set through NPMACRO_ environment variables or flags.`,
		Example: `  # Initialize in current directory
  npmacro init

  # Initialize in another directory
  npmacro init ./services/billing

  # Force overwrite existing config
  npmacro init --force`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), outputMode(cmd))
			return runInit(r, dir, force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing configuration")

	return cmd
}

// outputMode reads the global output flag without loading any configuration.
func outputMode(cmd *cobra.Command) output.OutputMode {
	if f := cmd.Flag("output"); f != nil {
		return output.Mode(f.Value.String())
	}
	return output.ModeAuto
}

func runInit(r *output.Renderer, dir string, force bool) error {
	// Create directory if specified and doesn't exist
	if dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	// Check if config already exists
	configPath := filepath.Join(dir, configFileName)
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("%s already exists. Use --force to overwrite", configFileName)
	}

	content, err := renderProjectConfig(defaultProjectConfig())
	if err != nil {
		return err
	}
	if err := os.WriteFile(configPath, content, 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", configPath, err)
	}

	r.Success("npmacro project initialized!")
	r.Println("")
	r.Println("Next steps:")
	r.Println("  1. Import " + macro.DefaultMarkerPath + " in a file ending in " + engine.DefaultInputSuffix)
	r.Println("  2. Guard that file with //go:build " + macro.DefaultBuildTag)
	r.Println("  3. Run: npmacro expand")
	return nil
}

func renderProjectConfig(cfg projectConfig) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString("# npmacro configuration\n")
	buf.WriteString("# Paths are relative to this file.\n\n")

	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return nil, fmt.Errorf("failed to encode config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to encode config: %w", err)
	}
	return buf.Bytes(), nil
}

package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/leapstack-labs/npmacro/internal/cli/config"
)

// configDescriptions documents every key returned by config.Defaults.
var configDescriptions = map[string]string{
	"root":           "Directory searched for input files",
	"input_suffix":   "File name suffix of input files",
	"output_suffix":  "File name suffix of generated files, replacing the input suffix",
	"build_tag":      "Build tag removed from the //go:build line of generated files",
	"marker_import":  "Import path of the package providing npm.Calc",
	"runtime_import": "Import path of the arithmetic runtime used by generated code",
	"runtime_name":   "Import name of the runtime in generated files",
	"fallback":       "Value returned when an operand is not a valid number and the call has no fallback",
	"state_path":     "Path to the state database, or :memory:",
	"workers":        "Files expanded in parallel, 0 for one per CPU",
	"exclude":        "Glob patterns of paths to skip, matched against the relative path and the base name",
	"verbose":        "Log debug output to stderr",
	"output":         "Output format: auto, text, markdown or json",
}

// configKeys returns the configuration keys in sorted order.
func configKeys() []string {
	keys := make([]string, 0, len(config.Defaults()))
	for k := range config.Defaults() {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// defaultValue formats the default of key for a table cell.
func defaultValue(key string) string {
	switch v := config.Defaults()[key].(type) {
	case []string:
		if len(v) == 0 {
			return "-"
		}
		return InlineCode(strings.Join(v, ","))
	case string:
		if v == "" {
			return "-"
		}
		return InlineCode(v)
	default:
		return InlineCode(fmt.Sprint(v))
	}
}

// generateConfigDocs generates the configuration reference.
func generateConfigDocs(outDir string) error {
	log.Printf("Generating configuration docs to %s", outDir)

	if err := os.MkdirAll(outDir, 0750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := generateConfigurationDoc(outDir); err != nil {
		return fmt.Errorf("failed to generate configuration.md: %w", err)
	}
	log.Printf("  Generated configuration.md")

	return nil
}

// generateConfigurationDoc generates the configuration reference page.
func generateConfigurationDoc(outDir string) error {
	w := NewMarkdownWriter()

	w.Frontmatter("Configuration", "npmacro configuration reference")
	w.GeneratedMarker()

	w.Header(1, "Configuration")
	w.Paragraph("npmacro reads `npmacro.yaml` from the working directory or the nearest parent directory. Relative paths in the file are resolved against the directory holding it.")

	w.Header(2, "Keys")
	headers := []string{"Key", "Type", "Default", "Description"}
	var rows [][]string
	for _, key := range configKeys() {
		rows = append(rows, []string{
			InlineCode(key),
			fmt.Sprintf("%T", config.Defaults()[key]),
			defaultValue(key),
			configDescriptions[key],
		})
	}
	w.Table(headers, rows)

	w.Header(2, "Precedence")
	w.BulletList([]string{
		"Command-line flags",
		"Environment variables with the " + InlineCode(config.EnvPrefix) + " prefix",
		"npmacro.yaml",
		"Built-in defaults",
	})
	w.Paragraph("List values from the environment are comma separated, for example `NPMACRO_EXCLUDE=legacy,*_gen_macro.go`.")

	w.Header(2, "Example")
	w.CodeBlock("yaml", `# npmacro.yaml
root: .
input_suffix: _macro.go
output_suffix: _expanded.go
fallback: "N/A"
workers: 4
exclude:
  - legacy
  - "*_scratch_macro.go"`)

	filename := filepath.Join(outDir, "configuration.md")
	return os.WriteFile(filename, w.Bytes(), 0600)
}

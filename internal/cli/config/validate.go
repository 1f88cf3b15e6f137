package config

import (
	"errors"
	"fmt"
	"go/token"
	"os"
	"slices"
	"strings"
)

var validOutputs = []string{"auto", "text", "markdown", "json"}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	var errs []error

	if c.Root == "" {
		errs = append(errs, errors.New("root is required"))
	}
	if !strings.HasSuffix(c.InputSuffix, ".go") {
		errs = append(errs, fmt.Errorf("input_suffix must end in .go, got %q", c.InputSuffix))
	}
	if !strings.HasSuffix(c.OutputSuffix, ".go") {
		errs = append(errs, fmt.Errorf("output_suffix must end in .go, got %q", c.OutputSuffix))
	}
	if c.InputSuffix != "" && c.InputSuffix == c.OutputSuffix {
		errs = append(errs, fmt.Errorf("input_suffix and output_suffix are both %q", c.InputSuffix))
	}
	if c.RuntimeName != "" && !token.IsIdentifier(c.RuntimeName) {
		errs = append(errs, fmt.Errorf("runtime_name %q is not a Go identifier", c.RuntimeName))
	}
	if c.Workers < 0 {
		errs = append(errs, fmt.Errorf("workers must not be negative, got %d", c.Workers))
	}
	if c.OutputFormat != "" && !slices.Contains(validOutputs, c.OutputFormat) {
		errs = append(errs, fmt.Errorf("output must be one of %s, got %q", strings.Join(validOutputs, ", "), c.OutputFormat))
	}

	return errors.Join(errs...)
}

// ValidateDirectories checks if the root directory exists.
func (c *Config) ValidateDirectories() error {
	info, err := os.Stat(c.Root)
	if os.IsNotExist(err) {
		return fmt.Errorf("root directory does not exist: %s\nHint: Create the directory or use --root to specify a different path", c.Root)
	}
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("root is not a directory: %s", c.Root)
	}
	return nil
}

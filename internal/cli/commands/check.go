package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/npmacro/internal/cli/output"
	"github.com/leapstack-labs/npmacro/internal/engine"
)

// ErrStale is returned by check when generated files are out of date.
var ErrStale = errors.New("generated files are out of date")

// NewCheckCommand creates the check command.
func NewCheckCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [files...]",
		Short: "Verify that generated files are up to date",
		Long: `Expand every input file in memory and compare the result with the
generated file on disk. Nothing is written.

The command fails when any generated file is missing or differs, which makes
it suitable for CI.`,
		Example: `  # Check the whole root
  npmacro check

  # Check as JSON
  npmacro check --output json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, args)
		},
	}

	return cmd
}

func runCheck(cmd *cobra.Command, args []string) error {
	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	eng := cmdCtx.Engine
	r := cmdCtx.Renderer

	result, checkErr := eng.Check(cmd.Context(), args)
	if result == nil {
		return checkErr
	}
	stale := result.Stale()

	switch r.EffectiveMode() {
	case output.ModeJSON:
		out := output.ExpandOutput{Files: fileInfos(eng, result.Files), Stale: len(stale)}
		for _, f := range result.Files {
			if f.Status == engine.FileFailed {
				out.Failed++
			}
			out.Sites += f.Sites
		}
		if err := r.JSON(out); err != nil {
			return err
		}
	default:
		r.Header(1, fmt.Sprintf("Check (%d files)", len(result.Files)))
		for _, f := range result.Files {
			detail := eng.Rel(f.OutputPath)
			if f.Err != nil {
				detail = f.Err.Error()
			}
			r.StatusLine(eng.Rel(f.Path), string(f.Status), detail)
		}
	}

	if checkErr != nil {
		return checkErr
	}
	if !result.OK() {
		return fmt.Errorf("%w: %d stale file(s), run npmacro expand", ErrStale, len(stale))
	}
	if r.EffectiveMode() != output.ModeJSON {
		r.Success("All generated files are up to date")
	}
	return nil
}

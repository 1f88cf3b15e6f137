package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/npmacro/internal/cli/output"
	"github.com/leapstack-labs/npmacro/internal/engine"
)

// ExpandOptions holds options for the expand command.
type ExpandOptions struct {
	Force    bool
	Watch    bool
	Debounce time.Duration
}

// NewExpandCommand creates the expand command.
func NewExpandCommand() *cobra.Command {
	opts := &ExpandOptions{}

	cmd := &cobra.Command{
		Use:   "expand [files...]",
		Short: "Expand npm.Calc call sites into safe arithmetic",
		Long: `Expand every input file under the root into its generated counterpart.

Input files end in _macro.go by default and produce _expanded.go files next
to them. Unchanged files are skipped based on their content hash; use --force
to expand everything. With --watch the command keeps running and re-expands
files as they change.`,
		Example: `  # Expand all changed files
  npmacro expand

  # Expand specific files
  npmacro expand internal/cart/cart_macro.go

  # Re-expand everything
  npmacro expand --force

  # Keep expanding on change
  npmacro expand --watch`,
		Aliases: []string{"gen"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExpand(cmd, args, opts)
		},
	}

	cmd.Flags().BoolVarP(&opts.Force, "force", "f", false, "Expand files even when unchanged")
	cmd.Flags().BoolVarP(&opts.Watch, "watch", "w", false, "Watch for changes and re-expand")
	cmd.Flags().DurationVar(&opts.Debounce, "debounce", engine.DefaultDebounce, "Delay before re-expanding in watch mode")

	return cmd
}

func runExpand(cmd *cobra.Command, args []string, opts *ExpandOptions) error {
	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	eng := cmdCtx.Engine
	r := cmdCtx.Renderer

	if opts.Watch {
		if len(args) > 0 {
			return errors.New("--watch expands the whole root and takes no files")
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return watch(ctx, eng, r, opts.Debounce)
	}

	result, err := eng.Expand(cmd.Context(), engine.ExpandOptions{Force: opts.Force, Paths: args})
	if result == nil {
		return err
	}
	if renderErr := renderExpandResult(r, eng, result); renderErr != nil {
		return renderErr
	}
	if err != nil {
		return fmt.Errorf("%d file(s) failed to expand", result.Stats.Failed)
	}
	return nil
}

func watch(ctx context.Context, eng *engine.Engine, r *output.Renderer, debounce time.Duration) error {
	r.Printf("Watching %s (Ctrl+C to stop)\n", eng.Root())
	return eng.Watch(ctx, engine.WatchOptions{
		Debounce: debounce,
		OnResult: func(result *engine.ExpandResult, err error) {
			if result == nil {
				if err != nil {
					r.Error(err.Error())
				}
				return
			}
			_ = renderExpandResult(r, eng, result)
		},
	})
}

func renderExpandResult(r *output.Renderer, eng *engine.Engine, result *engine.ExpandResult) error {
	switch r.EffectiveMode() {
	case output.ModeJSON:
		out := output.ExpandOutput{
			Files:      fileInfos(eng, result.Files),
			Expanded:   result.Stats.Expanded,
			Skipped:    result.Stats.Skipped,
			Failed:     result.Stats.Failed,
			Sites:      result.Stats.Sites,
			DurationMS: result.Duration.Milliseconds(),
		}
		if result.Run != nil {
			out.RunID = result.Run.ID
		}
		return r.JSON(out)
	case output.ModeMarkdown:
		r.Header(1, "Expansion")
	}

	for _, f := range result.Files {
		switch f.Status {
		case engine.FileExpanded:
			r.StatusLine(eng.Rel(f.Path), string(f.Status), fmt.Sprintf("%d sites -> %s", f.Sites, eng.Rel(f.OutputPath)))
		case engine.FileFailed:
			r.StatusLine(eng.Rel(f.Path), string(f.Status), f.Err.Error())
		}
	}

	if len(result.Files) == 0 {
		r.Warning("No input files found under " + eng.Root())
		return nil
	}
	r.Println("")
	if result.HasErrors() {
		r.Error(result.Summary())
	} else {
		r.Success(result.Summary())
	}
	return nil
}

func fileInfos(eng *engine.Engine, files []engine.FileOutcome) []output.FileInfo {
	infos := make([]output.FileInfo, 0, len(files))
	for _, f := range files {
		info := output.FileInfo{
			Path:       eng.Rel(f.Path),
			OutputPath: eng.Rel(f.OutputPath),
			Status:     string(f.Status),
			Sites:      f.Sites,
		}
		if f.Err != nil {
			info.Error = f.Err.Error()
		}
		infos = append(infos, info)
	}
	return infos
}

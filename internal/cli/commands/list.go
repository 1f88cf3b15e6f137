package commands

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/npmacro/internal/cli/output"
	"github.com/leapstack-labs/npmacro/internal/engine"
	"github.com/leapstack-labs/npmacro/internal/state"
)

// ListOptions holds options for the list command.
type ListOptions struct {
	File  string
	Runs  bool
	Limit int
}

// NewListCommand creates the list command.
func NewListCommand() *cobra.Command {
	opts := &ListOptions{}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List expanded call sites and runs",
		Long: `List the call sites recorded by the last expansion of each file, or the
recent expansion runs with --runs.

Output adapts to environment:
  - Terminal: Styled table
  - Piped/Scripted: Markdown table (agent-friendly)

Use --output to override: auto, text, markdown, json`,
		Example: `  # List all call sites
  npmacro list

  # List call sites of one file
  npmacro list --file internal/cart/cart_macro.go

  # List recent runs as JSON
  npmacro list --runs --output json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runList(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.File, "file", "", "Only list call sites of this input file")
	cmd.Flags().BoolVar(&opts.Runs, "runs", false, "List expansion runs instead of call sites")
	cmd.Flags().IntVar(&opts.Limit, "limit", 20, "Maximum number of runs to list")

	return cmd
}

func runList(cmd *cobra.Command, opts *ListOptions) error {
	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	eng := cmdCtx.Engine
	r := cmdCtx.Renderer
	store := eng.GetStateStore()

	if opts.Runs {
		runs, err := store.ListRuns(opts.Limit)
		if err != nil {
			return fmt.Errorf("failed to list runs: %w", err)
		}
		return listRuns(r, runs)
	}

	filter := ""
	if opts.File != "" {
		if filter, err = absPath(opts.File); err != nil {
			return err
		}
	}
	sites, err := store.ListSites(filter)
	if err != nil {
		return fmt.Errorf("failed to list sites: %w", err)
	}
	return listSites(r, eng, sites)
}

func listSites(r *output.Renderer, eng *engine.Engine, sites []*state.Site) error {
	listOutput := output.ListOutput{
		Sites: make([]output.SiteInfo, 0, len(sites)),
		Summary: output.ListSummary{
			Sites:  len(sites),
			ByPost: make(map[string]int),
		},
	}
	files := make(map[string]bool)
	for _, s := range sites {
		files[s.FilePath] = true
		listOutput.Summary.ByPost[s.Post]++
		listOutput.Sites = append(listOutput.Sites, output.SiteInfo{
			File:        eng.Rel(s.FilePath),
			Line:        s.Line,
			Column:      s.Column,
			Source:      s.Source,
			Post:        s.Post,
			Leaves:      s.Leaves,
			Operators:   s.Operators,
			HasFallback: s.HasFallback,
			RunID:       s.RunID,
		})
	}
	listOutput.Summary.Files = len(files)

	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(listOutput)
	}

	r.Header(1, fmt.Sprintf("Call sites (%d in %d files)", len(sites), len(files)))
	if len(sites) == 0 {
		r.Warning("No call sites recorded. Run npmacro expand first")
		return nil
	}

	rows := make([][]string, 0, len(sites))
	for _, s := range listOutput.Sites {
		rows = append(rows, []string{
			fmt.Sprintf("%s:%d:%d", s.File, s.Line, s.Column),
			truncateOneLine(s.Source, 60),
			s.Post,
			strconv.Itoa(s.Leaves),
			strconv.Itoa(s.Operators),
			yesNo(s.HasFallback),
		})
	}
	r.Table([]string{"Location", "Call", "Post", "Leaves", "Operators", "Fallback"}, rows)
	return nil
}

func listRuns(r *output.Renderer, runs []*state.Run) error {
	infos := make([]output.RunInfo, 0, len(runs))
	for _, run := range runs {
		info := output.RunInfo{
			ID:        run.ID,
			Root:      run.Root,
			Status:    string(run.Status),
			StartedAt: run.StartedAt.Format(time.RFC3339),
			Files:     run.Stats.Files,
			Expanded:  run.Stats.Expanded,
			Skipped:   run.Stats.Skipped,
			Failed:    run.Stats.Failed,
			Sites:     run.Stats.Sites,
			Error:     run.Error,
		}
		if run.CompletedAt != nil {
			info.CompletedAt = run.CompletedAt.Format(time.RFC3339)
		}
		infos = append(infos, info)
	}

	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(output.ListOutput{Sites: []output.SiteInfo{}, Runs: infos, Summary: output.ListSummary{ByPost: map[string]int{}}})
	}

	r.Header(1, fmt.Sprintf("Runs (%d)", len(infos)))
	if len(infos) == 0 {
		r.Warning("No runs recorded")
		return nil
	}

	rows := make([][]string, 0, len(infos))
	for _, info := range infos {
		rows = append(rows, []string{
			info.ID[:8],
			info.StartedAt,
			info.Status,
			strconv.Itoa(info.Files),
			strconv.Itoa(info.Expanded),
			strconv.Itoa(info.Skipped),
			strconv.Itoa(info.Failed),
			strconv.Itoa(info.Sites),
		})
	}
	r.Table([]string{"Run", "Started", "Status", "Files", "Expanded", "Skipped", "Failed", "Sites"}, rows)
	return nil
}

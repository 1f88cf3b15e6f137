package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/npmacro/internal/cli/output"
)

// NewRenderCommand creates the render command.
func NewRenderCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render <file>",
		Short: "Print the expansion of one file",
		Long: `Expand a single source file and print the generated code without writing
anything. Any Go file can be rendered, not only files with the input suffix.

Output adapts to environment:
  - Terminal: Plain Go source
  - Piped/Scripted: Markdown with code block`,
		Example: `  # Render a file
  npmacro render internal/cart/cart_macro.go

  # Render and save to file
  npmacro render cart_macro.go --output text > cart_expanded.go

  # Render as JSON with call site details
  npmacro render cart_macro.go --output json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd, args[0])
		},
	}

	return cmd
}

func runRender(cmd *cobra.Command, file string) error {
	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	eng := cmdCtx.Engine
	r := cmdCtx.Renderer

	res, err := eng.Render(file)
	if err != nil {
		return fmt.Errorf("failed to render %s: %w", file, err)
	}

	switch r.EffectiveMode() {
	case output.ModeJSON:
		out := output.RenderOutput{File: file, Output: string(res.Output), Sites: []output.SiteInfo{}}
		for _, s := range res.Sites {
			out.Sites = append(out.Sites, output.SiteInfo{
				File:        file,
				Line:        s.Line,
				Column:      s.Column,
				Source:      s.Source,
				Post:        s.Post.String(),
				Leaves:      s.Leaves,
				Operators:   s.Operators,
				HasFallback: s.HasFallback,
			})
		}
		return r.JSON(out)
	case output.ModeMarkdown:
		r.Header(1, fmt.Sprintf("Expanded: %s (%d sites)", file, len(res.Sites)))
		r.Code("go", string(res.Output))
	default:
		// Text mode: just output the source directly
		_, _ = cmd.OutOrStdout().Write(res.Output)
	}

	return nil
}

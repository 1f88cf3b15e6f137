package commands

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/npmacro/internal/cli/output"
	"github.com/leapstack-labs/npmacro/internal/macro"
)

const replPrompt = "npmacro> "

// NewReplCommand creates the repl command.
func NewReplCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "repl",
		Short: "Expand npm.Calc arguments interactively",
		Long: `Start an interactive session that expands call arguments as you type them.

Enter the arguments of a call exactly as they appear between the parentheses
of npm.Calc(...), or paste the whole call. The generated expression and the
imports it needs are printed.`,
		Example: `  npmacro repl
  npmacro> price * qty, "yuan"
  npmacro> npm.Calc(a / b, "%", 0)`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runREPL(cmd)
		},
	}

	return cmd
}

func runREPL(cmd *cobra.Command) error {
	cmdCtx, err := NewCommandContextWithoutEngine(cmd)
	if err != nil {
		return err
	}
	exp := cmdCtx.newExpander()
	r := cmdCtx.Renderer

	// Setup history file (project-local, next to the state database)
	historyFile := ""
	if cmdCtx.Cfg.StatePath != ":memory:" {
		historyFile = filepath.Join(filepath.Dir(cmdCtx.Cfg.StatePath), "repl_history")
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          replPrompt,
		HistoryFile:     historyFile,
		AutoComplete:    newReplCompleter(),
		InterruptPrompt: "^C",
		EOFPrompt:       ".quit",
	})
	if err != nil {
		return fmt.Errorf("failed to initialize REPL: %w", err)
	}
	defer func() { _ = rl.Close() }()

	r.Println("npmacro REPL")
	r.Println("Type .help for commands, .quit to exit")
	r.Println("")

	var multiLine strings.Builder
	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			multiLine.Reset()
			rl.SetPrompt(replPrompt)
			continue
		}
		if errors.Is(err, io.EOF) {
			break
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if multiLine.Len() == 0 && strings.HasPrefix(line, ".") {
			if quit := handleReplCommand(r, exp, line); quit {
				break
			}
			continue
		}

		// A trailing backslash continues the input on the next line.
		if strings.HasSuffix(line, `\`) {
			multiLine.WriteString(strings.TrimSuffix(line, `\`))
			multiLine.WriteString(" ")
			rl.SetPrompt("    ...> ")
			continue
		}
		multiLine.WriteString(line)
		input := multiLine.String()
		multiLine.Reset()
		rl.SetPrompt(replPrompt)

		if err := evalReplLine(r, exp, input); err != nil {
			r.Error(err.Error())
		}
		r.Println("")
	}

	return nil
}

// handleReplCommand runs a dot-command and reports whether the session ends.
func handleReplCommand(r *output.Renderer, exp *macro.Expander, line string) bool {
	parts := strings.Fields(line)
	switch strings.ToLower(parts[0]) {
	case ".quit", ".exit":
		return true
	case ".help":
		printReplHelp(r.Writer())
	case ".options":
		opts := exp.Options()
		r.Println(output.FormatKeyValue("Runtime", fmt.Sprintf("%s %q", opts.RuntimeName, opts.RuntimePath)))
		r.Println(output.FormatKeyValue("Marker", opts.MarkerPath))
		r.Println(output.FormatKeyValue("Fallback", fmt.Sprintf("%q", opts.Fallback)))
	case ".clear":
		r.Printf("\033[H\033[2J")
	default:
		r.Error(fmt.Sprintf("Unknown command: %s (type .help for commands)", parts[0]))
	}
	return false
}

// evalReplLine expands one input and prints the result.
func evalReplLine(r *output.Renderer, exp *macro.Expander, input string) error {
	args := callArguments(input)
	res, err := exp.ExpandCall(args)
	if err != nil {
		return err
	}

	switch r.EffectiveMode() {
	case output.ModeJSON:
		return r.JSON(output.ReplOutput{
			Input:   args,
			Code:    res.Code,
			Imports: res.Imports,
			Post:    res.Site.Post.String(),
		})
	case output.ModeMarkdown:
		r.Code("go", "import (\n\t"+strings.Join(res.Imports, "\n\t")+"\n)\n\n"+res.Code)
	default:
		for _, imp := range res.Imports {
			r.Println(r.Styles().Muted.Render("import " + imp))
		}
		r.Println(res.Code)
	}
	return nil
}

// callArguments strips a surrounding npm.Calc( ... ) from a pasted call.
func callArguments(input string) string {
	s := strings.TrimSpace(input)
	open := strings.Index(s, "Calc(")
	if open < 0 || !strings.HasSuffix(s, ")") {
		return s
	}
	prefix := strings.TrimSpace(s[:open])
	if prefix != "" && !strings.HasSuffix(prefix, ".") {
		return s
	}
	return strings.TrimSpace(s[open+len("Calc(") : len(s)-1])
}

func printReplHelp(w io.Writer) {
	help := `
Commands:
  .help           Show this help message
  .options        Show the runtime, marker and fallback in use
  .clear          Clear the screen
  .quit / .exit   Exit the REPL

Input:
  expression [, postProcessor [, fallback]]
  e.g.  price * qty, "yuan"
        a / b, "%", 0
        (a + b) ** 2

Tips:
  - End a line with \ to continue on the next line
  - Use arrow keys to navigate history
  - Tab completes commands and post-processor tags
`
	_, _ = fmt.Fprintln(w, help)
}

func newReplCompleter() *readline.PrefixCompleter {
	return readline.NewPrefixCompleter(
		readline.PcItem(".help"),
		readline.PcItem(".options"),
		readline.PcItem(".clear"),
		readline.PcItem(".quit"),
		readline.PcItem(".exit"),
		readline.PcItem(`"yuan"`),
		readline.PcItem(`"%"`),
		readline.PcItem(`"percent"`),
	)
}

package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/leapstack-labs/npmacro/internal/cli"
	"github.com/leapstack-labs/npmacro/internal/cli/config"
)

// generateCLIDocs writes cli.md, a single page covering every command.
func generateCLIDocs(outDir string) error {
	if err := os.MkdirAll(outDir, 0750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	root := cli.NewRootCmd()
	commands := visibleCommands(root)

	w := NewMarkdownWriter()
	w.Frontmatter("CLI Reference", "Commands, flags and environment of npmacro")
	w.GeneratedMarker()
	w.Header(1, "CLI Reference")
	w.Paragraph(root.Long)
	w.CodeBlock("bash", "go install github.com/leapstack-labs/npmacro/cmd/npmacro@latest")

	var rows [][]string
	for _, cmd := range commands {
		rows = append(rows, []string{commandLink(cmd), cleanDescription(cmd.Short)})
	}
	w.Header(2, "Commands")
	w.Table([]string{"Command", "Description"}, rows)

	w.Header(2, "Global Flags")
	writeFlagsTable(w, root.PersistentFlags())

	w.Header(2, "Environment")
	w.Paragraph("Each configuration key can also be set as " + InlineCode(config.EnvPrefix+"<KEY>") +
		". Flags win over the environment, which wins over npmacro.yaml.")
	var env [][]string
	for _, key := range configKeys() {
		env = append(env, []string{InlineCode(config.EnvPrefix + strings.ToUpper(key)), defaultValue(key)})
	}
	w.Table([]string{"Variable", "Default"}, env)

	w.Paragraph("npmacro exits with 1 when a call site fails to expand, when `check` finds stale output, and on any other error.")

	for _, cmd := range commands {
		writeCommand(w, cmd)
	}

	log.Printf("  Generated cli.md (%d commands)", len(commands))
	return os.WriteFile(filepath.Join(outDir, "cli.md"), w.Bytes(), 0600)
}

// visibleCommands returns every user-facing command below root, depth first.
func visibleCommands(root *cobra.Command) []*cobra.Command {
	var out []*cobra.Command
	for _, cmd := range root.Commands() {
		if cmd.Hidden || cmd.Name() == "help" || cmd.Name() == "__complete" {
			continue
		}
		out = append(out, cmd)
		out = append(out, visibleCommands(cmd)...)
	}
	return out
}

func commandLink(cmd *cobra.Command) string {
	return fmt.Sprintf("[%s](#%s)", InlineCode(cmd.CommandPath()), strings.ReplaceAll(cmd.CommandPath(), " ", "-"))
}

func writeCommand(w *MarkdownWriter, cmd *cobra.Command) {
	w.Header(2, cmd.CommandPath())
	if cmd.Long != "" {
		w.Paragraph(cmd.Long)
	} else {
		w.Paragraph(cmd.Short)
	}
	w.CodeBlock("bash", cmd.UseLine())

	if len(cmd.Aliases) > 0 {
		aliases := make([]string, len(cmd.Aliases))
		for i, a := range cmd.Aliases {
			aliases[i] = InlineCode(a)
		}
		w.Paragraph("Aliases: " + strings.Join(aliases, ", "))
	}
	if cmd.HasLocalFlags() {
		writeFlagsTable(w, cmd.LocalFlags())
	}
	if cmd.Example != "" {
		w.CodeBlock("bash", cleanExample(cmd.Example))
	}
}

// writeFlagsTable writes one row per visible flag.
func writeFlagsTable(w *MarkdownWriter, flags *pflag.FlagSet) {
	var rows [][]string
	flags.VisitAll(func(f *pflag.Flag) {
		if f.Hidden {
			return
		}
		name := InlineCode("--" + f.Name)
		if f.Shorthand != "" {
			name = InlineCode("-"+f.Shorthand) + ", " + name
		}
		def := f.DefValue
		if def != "" && f.Value.Type() == "string" {
			def = InlineCode(def)
		}
		rows = append(rows, []string{name, def, cleanDescription(f.Usage)})
	})
	w.Table([]string{"Flag", "Default", "Description"}, rows)
}

// cleanExample strips the indentation shared by every non-blank line.
func cleanExample(example string) string {
	lines := strings.Split(example, "\n")
	indent := -1
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		n := len(line) - len(strings.TrimLeft(line, " \t"))
		if indent < 0 || n < indent {
			indent = n
		}
	}
	if indent < 0 {
		return ""
	}
	for i, line := range lines {
		lines[i] = line[min(indent, len(line)-len(strings.TrimLeft(line, " \t"))):]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

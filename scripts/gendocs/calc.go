package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/leapstack-labs/npmacro/internal/macro"
)

// postEffects describes what each post-processor kind does to the result.
var postEffects = map[macro.PostKind]string{
	macro.PostNone:     "Result returned as computed",
	macro.PostYuan:     "Divided by 100 and rounded to 2 places",
	macro.PostPercent:  "As yuan, then formatted with a trailing %",
	macro.PostCallable: "Called with the result as a float64",
}

// calcExamples are expanded live into the reference.
var calcExamples = []string{
	`(price + shipping) * qty`,
	`cents, "yuan"`,
	`hits / total, "%", "n/a"`,
	`delta ** 2 % m, math.Abs`,
}

// generateCalcDocs writes calc.md, the call site reference derived from the
// expander itself.
func generateCalcDocs(outDir string) error {
	if err := os.MkdirAll(outDir, 0750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	w := NewMarkdownWriter()
	w.Frontmatter("npm.Calc", "Operators, post-processors and fallback of npm.Calc call sites")
	w.GeneratedMarker()
	w.Header(1, "npm.Calc")
	w.Paragraph("A call site is written " + InlineCode("npm.Calc(expr, post, fallback)") +
		". Only expr is required. The expansion evaluates to the fallback unless every operand of expr is a valid, non-empty number.")

	w.Header(2, "Operators")
	var ops [][]string
	for _, op := range macro.Operators() {
		pkg, name, ok := macro.OperatorFunc(op)
		if !ok {
			return fmt.Errorf("operator %s has no runtime function", op)
		}
		ops = append(ops, []string{InlineCode(op.String()), InlineCode(pkg + "." + name)})
	}
	w.Table([]string{"Operator", "Generated call"}, ops)
	w.Paragraph("Both " + InlineCode("^") + " and " + InlineCode("**") +
		" raise to a power. Operands are converted with " + InlineCode("precision.Number") + " before each call.")

	w.Header(2, "Post-processors")
	w.Table([]string{"Argument", "Effect"}, postRows())

	w.Header(2, "Fallback")
	w.Paragraph("Without a third argument a call site falls back to " + InlineCode(strconv.Quote(macro.DefaultFallback)) +
		". The " + InlineCode("fallback") + " configuration key changes the default.")

	w.Header(2, "Examples")
	e := macro.New(macro.DefaultOptions(), nil)
	for _, args := range calcExamples {
		res, err := e.ExpandCall(args)
		if err != nil {
			return fmt.Errorf("expand example %q: %w", args, err)
		}
		w.CodeBlock("go", "npm.Calc("+args+")\n\n// becomes\n"+res.Code)
	}

	log.Printf("  Generated calc.md")
	return os.WriteFile(filepath.Join(outDir, "calc.md"), w.Bytes(), 0600)
}

// postRows groups the recognised tags by the kind they select.
func postRows() [][]string {
	byKind := make(map[macro.PostKind][]string)
	for tag, kind := range macro.UnitTags() {
		byKind[kind] = append(byKind[kind], InlineCode(strconv.Quote(tag)))
	}
	byKind[macro.PostNone] = append(byKind[macro.PostNone], InlineCode("nil"), "omitted")
	byKind[macro.PostCallable] = []string{"any other expression"}

	var rows [][]string
	for _, kind := range []macro.PostKind{macro.PostNone, macro.PostYuan, macro.PostPercent, macro.PostCallable} {
		args := byKind[kind]
		slices.Sort(args)
		rows = append(rows, []string{strings.Join(args, ", "), postEffects[kind]})
	}
	return rows
}

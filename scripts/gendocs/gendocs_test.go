package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateCLIDocs(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, generateCLIDocs(dir))

	doc, err := os.ReadFile(filepath.Join(dir, "cli.md"))
	require.NoError(t, err)
	out := string(doc)
	assert.Contains(t, out, "[`npmacro expand`](#npmacro-expand)")
	assert.Contains(t, out, "## npmacro expand")
	assert.Contains(t, out, "`NPMACRO_STATE_PATH`")
	assert.Contains(t, out, "npmacro expand [files...]")
	assert.Contains(t, out, "`--watch`")
	assert.Contains(t, out, "Aliases: `gen`")
	assert.NotContains(t, out, "## npmacro help")
}

func TestGenerateCalcDocs(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, generateCalcDocs(dir))

	doc, err := os.ReadFile(filepath.Join(dir, "calc.md"))
	require.NoError(t, err)
	out := string(doc)
	assert.Contains(t, out, "| `+` | `precision.Add` |")
	assert.Contains(t, out, "| `%` | `math.Mod` |")
	assert.Contains(t, out, "| `**` | `math.Pow` |")
	assert.Contains(t, out, "`\"yuan\"`, `\"元\"` | Divided by 100 and rounded to 2 places |")
	assert.Contains(t, out, "any other expression | Called with the result as a float64 |")
	assert.Contains(t, out, "falls back to `\"--\"`")
	assert.Contains(t, out, "np.Round(np.Divide(np.Number(cents), 100), 2)")
	assert.Contains(t, out, "math.Abs(np.Number(")
}

func TestPostRowsCoverEveryKind(t *testing.T) {
	rows := postRows()
	require.Len(t, rows, len(postEffects))
	for _, row := range rows {
		assert.NotEmpty(t, row[0])
		assert.NotEmpty(t, row[1])
	}
}

func TestGenerateConfigDocs(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, generateConfigDocs(dir))

	doc, err := os.ReadFile(filepath.Join(dir, "configuration.md"))
	require.NoError(t, err)
	assert.Contains(t, string(doc), "| `input_suffix` | string | `_macro.go` |")
	assert.Contains(t, string(doc), "| `exclude` | []string | - |")
	assert.Contains(t, string(doc), "| `workers` | int | `0` |")
}

func TestConfigDescriptionsCoverDefaults(t *testing.T) {
	for _, key := range configKeys() {
		assert.NotEmpty(t, configDescriptions[key], "key %q needs a description", key)
	}
}

func TestCleanExample(t *testing.T) {
	assert.Equal(t, "# run\nnpmacro expand", cleanExample("  # run\n  npmacro expand"))
	assert.Equal(t, "a", cleanExample("a"))
	assert.Equal(t, "x\n\n  y", cleanExample("    x\n\n      y"))
	assert.Empty(t, cleanExample("  \n "))
}

func TestMarkdownWriter_Table(t *testing.T) {
	w := NewMarkdownWriter()
	w.Table([]string{"A", "B"}, [][]string{{"x|y", "z"}})

	assert.Equal(t, "| A | B |\n| --- | --- |\n| x\\|y | z |\n\n", string(w.Bytes()))
}

package macro

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const scenarioProgram = `//go:build npmacro

package main

import (
	"fmt"
	"math"

	"github.com/leapstack-labs/npmacro/pkg/npm"
)

func main() {
	a := ""
	fmt.Printf("%#v\n", npm.Calc((1 + 1) - 3 % 2))
	fmt.Printf("%#v\n", npm.Calc(13413.64, "yuan"))
	fmt.Printf("%#v\n", npm.Calc(13413.64, "元"))
	fmt.Printf("%#v\n", npm.Calc(13413.64, "%"))
	fmt.Printf("%#v\n", npm.Calc(1 + a))
	fmt.Printf("%#v\n", npm.Calc(-1.341324, math.Abs))
	fmt.Printf("%#v\n", npm.Calc(0.1 + 0.2))
	fmt.Printf("%#v\n", npm.Calc(a, nil, 0))
}
`

// TestExpandSource_Runs compiles and runs an expanded program and checks the
// values it prints.
func TestExpandSource_Runs(t *testing.T) {
	if testing.Short() {
		t.Skip("builds a program")
	}
	goBin, err := exec.LookPath("go")
	if err != nil {
		t.Skip("go command not available")
	}

	res, err := newTestExpander(t).ExpandSource("main_macro.go", []byte(scenarioProgram))
	require.NoError(t, err)
	require.Len(t, res.Sites, 8)

	// The program has to live inside this module to import pkg/precision.
	dir, err := os.MkdirTemp(".", "scenarios")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })
	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.go"), res.Output, 0o644))

	cmd := exec.CommandContext(t.Context(), goBin, "run", "./"+filepath.Base(dir))
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, "generated program failed:\n%s\n%s", out, res.Output)

	assert.Equal(t, []string{
		"1",
		"134.14",
		"134.14",
		`"134.14%"`,
		`"--"`,
		"1.341324",
		"0.3",
		"0",
	}, strings.Split(strings.TrimSpace(string(out)), "\n"))
}

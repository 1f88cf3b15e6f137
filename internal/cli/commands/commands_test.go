package commands

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/npmacro/internal/cli/output"
	"github.com/leapstack-labs/npmacro/internal/cli/testutil"
	"github.com/leapstack-labs/npmacro/internal/macro"
)

func TestNewExpandCommand(t *testing.T) {
	cmd := NewExpandCommand()

	assert.Equal(t, "expand [files...]", cmd.Use)
	assert.NotEmpty(t, cmd.Short, "Short should not be empty")
	assert.NotEmpty(t, cmd.Example, "Example should not be empty")

	flags := []string{"force", "watch", "debounce"}
	for _, flag := range flags {
		assert.NotNil(t, cmd.Flags().Lookup(flag), "flag %q should exist", flag)
	}

	require.NotEmpty(t, cmd.Aliases, "expand command should have aliases")
	assert.Equal(t, "gen", cmd.Aliases[0])
}

func TestNewCheckCommand(t *testing.T) {
	cmd := NewCheckCommand()

	assert.Equal(t, "check [files...]", cmd.Use)
	assert.NotEmpty(t, cmd.Short, "Short should not be empty")
}

func TestNewRenderCommand(t *testing.T) {
	cmd := NewRenderCommand()

	assert.Equal(t, "render <file>", cmd.Use)
	assert.NotEmpty(t, cmd.Short, "Short should not be empty")
	assert.NotEmpty(t, cmd.Example, "Example should not be empty")
	assert.Error(t, cmd.Args(cmd, []string{}), "render requires a file")
}

func TestNewListCommand(t *testing.T) {
	cmd := NewListCommand()

	assert.Equal(t, "list", cmd.Use)
	assert.NotEmpty(t, cmd.Short, "Short should not be empty")

	for _, flag := range []string{"file", "runs", "limit"} {
		assert.NotNil(t, cmd.Flags().Lookup(flag), "flag %q should exist", flag)
	}
	assert.Equal(t, "20", cmd.Flags().Lookup("limit").DefValue)
}

func TestNewReplCommand(t *testing.T) {
	cmd := NewReplCommand()

	assert.Equal(t, "repl", cmd.Use)
	assert.NotEmpty(t, cmd.Short, "Short should not be empty")
	assert.Error(t, cmd.Args(cmd, []string{"extra"}), "repl takes no arguments")
}

func TestNewDoctorCommand(t *testing.T) {
	cmd := NewDoctorCommand()

	assert.Equal(t, "doctor", cmd.Use)
	assert.NotEmpty(t, cmd.Short, "Short should not be empty")
}

func TestCallArguments(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{`a + b`, `a + b`},
		{`  price * qty, "yuan"  `, `price * qty, "yuan"`},
		{`npm.Calc(a / b, "%", 0)`, `a / b, "%", 0`},
		{`Calc(x ** 2)`, `x ** 2`},
		{`f(Calc(x))`, `f(Calc(x))`},
		{`Calc(x`, `Calc(x`},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, callArguments(tt.input))
		})
	}
}

func TestEvalReplLine(t *testing.T) {
	exp := macro.New(macro.DefaultOptions(), nil)

	t.Run("markdown", func(t *testing.T) {
		tr := testutil.NewTestRendererMarkdown()

		require.NoError(t, evalReplLine(tr.Renderer, exp, `npm.Calc(price * qty, "yuan")`))
		out := tr.Output()
		testutil.AssertValidMarkdown(t, out)
		assert.Contains(t, out, "```go")
		assert.Contains(t, out, `np "github.com/leapstack-labs/npmacro/pkg/precision"`)
		assert.Contains(t, out, "np.Multiply(")
	})

	t.Run("json", func(t *testing.T) {
		tr := testutil.NewTestRendererJSON()

		require.NoError(t, evalReplLine(tr.Renderer, exp, `a / b, "%"`))
		var got output.ReplOutput
		require.NoError(t, json.Unmarshal(tr.Out.Bytes(), &got))
		assert.Equal(t, `a / b, "%"`, got.Input)
		assert.Equal(t, "percent", got.Post)
		assert.Contains(t, got.Code, "np.Divide(")
	})

	t.Run("error", func(t *testing.T) {
		tr := testutil.NewTestRendererText()

		assert.Error(t, evalReplLine(tr.Renderer, exp, "a +"))
		assert.Empty(t, tr.Output())
	})
}

func TestHandleReplCommand(t *testing.T) {
	exp := macro.New(macro.DefaultOptions(), nil)
	tr := testutil.NewTestRendererMarkdown()

	assert.True(t, handleReplCommand(tr.Renderer, exp, ".quit"))
	assert.True(t, handleReplCommand(tr.Renderer, exp, ".EXIT"))

	assert.False(t, handleReplCommand(tr.Renderer, exp, ".options"))
	assert.Contains(t, tr.Output(), "- **Runtime**: np")

	tr.Reset()
	assert.False(t, handleReplCommand(tr.Renderer, exp, ".bogus"))
	assert.Contains(t, tr.ErrorOutput(), "Unknown command: .bogus")
	testutil.AssertNoANSI(t, tr.ErrorOutput())
}

func TestTruncateOneLine(t *testing.T) {
	assert.Equal(t, "a + b", truncateOneLine("a +\n\t b", 20))
	assert.Equal(t, "abcdefg...", truncateOneLine("abcdefghijklmnop", 10))
	assert.Equal(t, "short", truncateOneLine("short", 5))
}

func TestHealthScore(t *testing.T) {
	tests := []struct {
		name   string
		checks []HealthCheck
		want   int
	}{
		{"all pass", []HealthCheck{{Status: checkPass}, {Status: checkPass}}, 100},
		{"one warning", []HealthCheck{{Status: checkWarn, IssueCount: 1}}, 95},
		{"warnings per issue", []HealthCheck{{Status: checkWarn, IssueCount: 3}}, 85},
		{"error", []HealthCheck{{Status: checkError, IssueCount: 1}, {Status: checkWarn}}, 75},
		{"floor at zero", []HealthCheck{{Status: checkError, IssueCount: 9}}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, healthScore(tt.checks))
		})
	}
}

func TestRecommendations(t *testing.T) {
	recs := recommendations([]HealthCheck{
		{ID: "CF01", Status: checkWarn},
		{ID: "SR01", Status: checkPass},
		{ID: "SR04", Status: checkWarn},
	})

	require.Len(t, recs, 2)
	assert.Contains(t, recs[0], "npmacro init")
	assert.Equal(t, "Run npmacro expand", recs[1])
}

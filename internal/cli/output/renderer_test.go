package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRenderer(mode OutputMode, isTTY bool) (*Renderer, *bytes.Buffer, *bytes.Buffer) {
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	return NewRendererWithTTY(out, errOut, isTTY, mode), out, errOut
}

func TestMode(t *testing.T) {
	tests := map[string]OutputMode{
		"":         ModeAuto,
		"auto":     ModeAuto,
		"TEXT":     ModeText,
		"markdown": ModeMarkdown,
		"md":       ModeMarkdown,
		" json ":   ModeJSON,
		"html":     ModeAuto,
	}
	for in, want := range tests {
		assert.Equal(t, want, Mode(in), "Mode(%q)", in)
	}
}

func TestEffectiveMode(t *testing.T) {
	tests := []struct {
		name  string
		mode  OutputMode
		isTTY bool
		want  OutputMode
	}{
		{"auto on terminal", ModeAuto, true, ModeText},
		{"auto piped", ModeAuto, false, ModeMarkdown},
		{"explicit text piped", ModeText, false, ModeText},
		{"explicit json on terminal", ModeJSON, true, ModeJSON},
		{"empty mode", "", false, ModeMarkdown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _, _ := newTestRenderer(tt.mode, tt.isTTY)
			assert.Equal(t, tt.want, r.EffectiveMode())
		})
	}
}

func TestNewRenderer_NonFileIsNotTTY(t *testing.T) {
	r := NewRenderer(&bytes.Buffer{}, &bytes.Buffer{}, ModeAuto)
	assert.False(t, r.IsTTY())
	assert.Equal(t, ModeMarkdown, r.EffectiveMode())
}

func TestRenderer_Markdown(t *testing.T) {
	r, out, errOut := newTestRenderer(ModeMarkdown, false)

	r.Header(2, "Sites")
	r.StatusLine("cart_macro.go", "expanded", "3 sites")
	r.Success("done")
	r.Warning("careful")
	r.Code("go", "x := 1\n")

	assert.Contains(t, out.String(), "## Sites\n")
	assert.Contains(t, out.String(), "- **expanded** cart_macro.go (3 sites)")
	assert.Contains(t, out.String(), "done\n")
	assert.Contains(t, out.String(), "```go\nx := 1\n```")
	assert.Equal(t, "careful\n", errOut.String())
}

func TestRenderer_Text(t *testing.T) {
	r, out, errOut := newTestRenderer(ModeText, true)

	r.StatusLine("a_macro.go", "failed", "")
	r.Error("boom")

	assert.Contains(t, out.String(), "✗ a_macro.go")
	assert.Contains(t, errOut.String(), "✗ boom")
}

func TestRenderer_NoColor(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	r, out, _ := newTestRenderer(ModeText, true)

	r.Success("done")

	assert.Equal(t, "✓ done\n", out.String())
	assert.Equal(t, "x", r.Styles().Error.Render("x"))
}

func TestRenderer_Table(t *testing.T) {
	rows := [][]string{{"a_macro.go", "8"}, {"b_macro.go", "12"}}

	t.Run("markdown", func(t *testing.T) {
		r, out, _ := newTestRenderer(ModeMarkdown, false)
		r.Table([]string{"File", "Line"}, rows)
		assert.True(t, strings.HasPrefix(strings.ToLower(out.String()), "| file"))
		assert.Contains(t, out.String(), "| b_macro.go |")
		assert.NotContains(t, out.String(), "┌")
	})

	t.Run("text", func(t *testing.T) {
		r, out, _ := newTestRenderer(ModeText, true)
		r.Table([]string{"File", "Line"}, rows)
		assert.Contains(t, out.String(), "┌")
		assert.Contains(t, out.String(), "a_macro.go")
	})
}

func TestRenderer_JSON(t *testing.T) {
	r, out, _ := newTestRenderer(ModeJSON, false)
	require.NoError(t, r.JSON(ListOutput{Sites: []SiteInfo{{File: "a_macro.go", Line: 3, Post: "yuan"}}}))

	var decoded ListOutput
	require.NoError(t, json.Unmarshal(out.Bytes(), &decoded))
	require.Len(t, decoded.Sites, 1)
	assert.Equal(t, "yuan", decoded.Sites[0].Post)
}

func TestFormatHelpers(t *testing.T) {
	assert.Equal(t, "# Title", FormatHeader(0, "Title"))
	assert.Equal(t, "### Title", FormatHeader(3, "Title"))
	assert.Equal(t, "- **Post**: yuan", FormatKeyValue("Post", "yuan"))
	assert.Equal(t, "```\nx\n```", FormatCodeBlock("", "x"))
}

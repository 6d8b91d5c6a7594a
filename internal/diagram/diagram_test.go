package diagram

import (
	"errors"
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const flowchart = `%% generated
graph TD
  A[Start] --> B{Decide}
  B -->|yes| C(Do it)
  B -->|no| A
  D
`

func TestParseFlowchartEdges(t *testing.T) {
	parsed, err := Parse(flowchart)
	require.NoError(t, err)
	assert.Equal(t, KindFlowchart, parsed.Kind)
	assert.Equal(t, "TD", parsed.Direction)
	assert.Equal(t, []Edge{
		{From: "Start", To: "Decide"},
		{From: "Decide", To: "Do it", Label: "yes"},
		{From: "Decide", To: "Start", Label: "no"},
	}, parsed.Edges)
}

func TestParseRejectsBadSource(t *testing.T) {
	cases := []struct {
		name   string
		source string
		line   int
	}{
		{"empty", "  \n%% only a comment\n", 0},
		{"unknown type", "flowchat TD\nA-->B", 1},
		{"bad direction", "graph XY\nA-->B", 1},
		{"unclosed bracket", "graph TD\nA[Start --> B", 2},
		{"stray closer", "graph TD\nA --> B]", 2},
		{"unterminated string", "graph TD\nA[\"Start] --> B", 2},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse(tc.source)
			var syntaxErr *SyntaxError
			require.True(t, errors.As(err, &syntaxErr), "got %v", err)
			assert.Equal(t, tc.line, syntaxErr.Line)
		})
	}
}

func TestParseAcceptsMultilineBlocks(t *testing.T) {
	source := "classDiagram\nclass Note {\n  +String title\n}\n"
	parsed, err := Parse(source)
	require.NoError(t, err)
	assert.Equal(t, KindClass, parsed.Kind)
	assert.Empty(t, parsed.Edges)
}

func TestTermRendererDrawsOutlineAndSource(t *testing.T) {
	out, err := NewTermRenderer("notty").Render(flowchart, 60)
	require.NoError(t, err)
	plain := ansi.Strip(out)
	assert.Contains(t, plain, "Flowchart (TD)")
	assert.Contains(t, plain, "Start → Decide")
	assert.Contains(t, plain, "A[Start] --> B{Decide}")
}

func TestTermRendererReturnsSyntaxError(t *testing.T) {
	_, err := NewTermRenderer("notty").Render("not a diagram", 40)
	var syntaxErr *SyntaxError
	assert.True(t, errors.As(err, &syntaxErr))
}

func TestMarkdownForSequenceDiagram(t *testing.T) {
	md := Markdown(Parsed{Kind: KindSequence}, "sequenceDiagram\nA->>B: hi")
	assert.True(t, strings.HasPrefix(md, "**Sequence diagram**"))
	assert.Contains(t, md, "```mermaid\nsequenceDiagram\nA->>B: hi\n```")
}

// Package diagram validates mermaid source and renders it for the terminal.
package diagram

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/charmbracelet/glamour"
)

// Renderer turns diagram source into displayable text.
type Renderer interface {
	Render(source string, width int) (string, error)
}

// SyntaxError reports source the renderer could not understand.
type SyntaxError struct {
	Line int
	Msg  string
}

func (e *SyntaxError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("diagram syntax error on line %d: %s", e.Line, e.Msg)
	}
	return "diagram syntax error: " + e.Msg
}

// Kind is the diagram type named on the first line of mermaid source.
type Kind string

const (
	KindFlowchart Kind = "flowchart"
	KindSequence  Kind = "sequenceDiagram"
	KindClass     Kind = "classDiagram"
	KindState     Kind = "stateDiagram"
	KindER        Kind = "erDiagram"
	KindGantt     Kind = "gantt"
	KindPie       Kind = "pie"
	KindMindmap   Kind = "mindmap"
	KindTimeline  Kind = "timeline"
	KindJourney   Kind = "journey"
	KindGitGraph  Kind = "gitGraph"
)

var headers = map[string]Kind{
	"graph":           KindFlowchart,
	"flowchart":       KindFlowchart,
	"sequenceDiagram": KindSequence,
	"classDiagram":    KindClass,
	"stateDiagram":    KindState,
	"stateDiagram-v2": KindState,
	"erDiagram":       KindER,
	"gantt":           KindGantt,
	"pie":             KindPie,
	"mindmap":         KindMindmap,
	"timeline":        KindTimeline,
	"journey":         KindJourney,
	"gitGraph":        KindGitGraph,
}

var directions = map[string]bool{"TD": true, "TB": true, "BT": true, "RL": true, "LR": true}

var titles = map[Kind]string{
	KindFlowchart: "Flowchart",
	KindSequence:  "Sequence diagram",
	KindClass:     "Class diagram",
	KindState:     "State diagram",
	KindER:        "Entity relationship diagram",
	KindGantt:     "Gantt chart",
	KindPie:       "Pie chart",
	KindMindmap:   "Mind map",
	KindTimeline:  "Timeline",
	KindJourney:   "User journey",
	KindGitGraph:  "Git graph",
}

// Parsed is validated mermaid source.
type Parsed struct {
	Kind      Kind
	Direction string
	Edges     []Edge
}

// Edge is one connection of a flowchart.
type Edge struct {
	From, To string
	Label    string
}

// Parse validates source and extracts what the terminal view can show.
func Parse(source string) (Parsed, error) {
	lines := strings.Split(strings.ReplaceAll(source, "\r\n", "\n"), "\n")
	headerLine := -1
	for i, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "%%") {
			continue
		}
		headerLine = i
		break
	}
	if headerLine < 0 {
		return Parsed{}, &SyntaxError{Msg: "empty diagram"}
	}

	fields := strings.Fields(lines[headerLine])
	kind, ok := headers[fields[0]]
	if !ok {
		return Parsed{}, &SyntaxError{Line: headerLine + 1, Msg: fmt.Sprintf("unknown diagram type %q", fields[0])}
	}
	parsed := Parsed{Kind: kind}
	if kind == KindFlowchart && len(fields) > 1 {
		dir := strings.TrimSuffix(fields[1], ";")
		if !directions[dir] {
			return Parsed{}, &SyntaxError{Line: headerLine + 1, Msg: fmt.Sprintf("unknown direction %q", fields[1])}
		}
		parsed.Direction = dir
	}

	if err := checkBrackets(lines); err != nil {
		return Parsed{}, err
	}
	if kind == KindFlowchart {
		parsed.Edges = flowchartEdges(lines[headerLine+1:])
	}
	return parsed, nil
}

func checkBrackets(lines []string) error {
	type open struct {
		r    rune
		line int
	}
	pairs := map[rune]rune{')': '(', ']': '[', '}': '{'}
	var stack []open
	for i, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "%%") {
			continue
		}
		quoted := false
		for _, r := range line {
			switch {
			case r == '"':
				quoted = !quoted
			case quoted:
			case r == '(' || r == '[' || r == '{':
				stack = append(stack, open{r: r, line: i + 1})
			case r == ')' || r == ']' || r == '}':
				if len(stack) == 0 || stack[len(stack)-1].r != pairs[r] {
					return &SyntaxError{Line: i + 1, Msg: fmt.Sprintf("unexpected %q", r)}
				}
				stack = stack[:len(stack)-1]
			}
		}
		if quoted {
			return &SyntaxError{Line: i + 1, Msg: "unterminated string"}
		}
	}
	if len(stack) > 0 {
		last := stack[len(stack)-1]
		return &SyntaxError{Line: last.line, Msg: fmt.Sprintf("unclosed %q", last.r)}
	}
	return nil
}

const nodePattern = `([A-Za-z0-9_]+)\s*(\[[^\]]*\]|\(\([^)]*\)\)|\([^)]*\)|\{[^}]*\})?`

var (
	edgeRe = regexp.MustCompile(`^\s*` + nodePattern + `\s*(?:-->|---|-\.->|==>|--[ox])\s*(?:\|([^|]*)\|\s*)?` + nodePattern + `\s*;?\s*$`)
	nodeRe = regexp.MustCompile(`^\s*` + nodePattern + `\s*;?\s*$`)
)

func flowchartEdges(lines []string) []Edge {
	labels := map[string]string{}
	type rawEdge struct{ from, to, label string }
	var raw []rawEdge

	for _, line := range lines {
		if m := edgeRe.FindStringSubmatch(line); m != nil {
			remember(labels, m[1], m[2])
			remember(labels, m[4], m[5])
			raw = append(raw, rawEdge{from: m[1], to: m[4], label: strings.TrimSpace(m[3])})
			continue
		}
		if m := nodeRe.FindStringSubmatch(line); m != nil {
			remember(labels, m[1], m[2])
		}
	}

	edges := make([]Edge, 0, len(raw))
	for _, e := range raw {
		edges = append(edges, Edge{From: labelOf(labels, e.from), To: labelOf(labels, e.to), Label: e.label})
	}
	return edges
}

func remember(labels map[string]string, id, shape string) {
	if shape == "" {
		return
	}
	label := strings.Trim(shape, "[](){}")
	label = strings.Trim(strings.TrimSpace(label), `"`)
	if label != "" {
		labels[id] = label
	}
}

func labelOf(labels map[string]string, id string) string {
	if label, ok := labels[id]; ok {
		return label
	}
	return id
}

// TermRenderer draws diagrams as Markdown through glamour.
type TermRenderer struct {
	style string
}

// NewTermRenderer uses the named glamour style ("dark", "light" or "notty").
func NewTermRenderer(style string) *TermRenderer {
	if style == "" {
		style = "dark"
	}
	return &TermRenderer{style: style}
}

func (r *TermRenderer) Render(source string, width int) (string, error) {
	parsed, err := Parse(source)
	if err != nil {
		return "", err
	}
	if width <= 0 {
		width = 80
	}
	renderer, err := glamour.NewTermRenderer(
		glamour.WithStylePath(r.style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", err
	}
	out, err := renderer.Render(Markdown(parsed, source))
	if err != nil {
		return "", err
	}
	return strings.Trim(out, "\n"), nil
}

// Markdown describes a parsed diagram: a title, a flowchart outline and the source.
func Markdown(parsed Parsed, source string) string {
	var b strings.Builder
	b.WriteString("**")
	b.WriteString(titles[parsed.Kind])
	if parsed.Direction != "" {
		b.WriteString(" (" + parsed.Direction + ")")
	}
	b.WriteString("**\n\n")
	for _, e := range parsed.Edges {
		b.WriteString("- " + e.From + " → " + e.To)
		if e.Label != "" {
			b.WriteString(" *(" + e.Label + ")*")
		}
		b.WriteString("\n")
	}
	if len(parsed.Edges) > 0 {
		b.WriteString("\n")
	}
	b.WriteString("```mermaid\n")
	b.WriteString(strings.TrimSpace(source))
	b.WriteString("\n```\n")
	return b.String()
}

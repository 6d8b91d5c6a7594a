package llm

import "testing"

func TestExtractMermaid(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want string
	}{
		{"bare", "graph TD\nA-->B", "graph TD\nA-->B"},
		{"fenced", "```mermaid\nsequenceDiagram\nA->>B: hi\n```", "sequenceDiagram\nA->>B: hi"},
		{"unlabelled fence", "text\n```\ngraph LR\nX-->Y\n```", "graph LR\nX-->Y"},
		{"prefers mermaid fence", "```json\n{}\n```\n```mermaid\npie\n```", "pie"},
		{"language prefix", "mermaid\ngraph TD", "graph TD"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := extractMermaid(tc.raw); got != tc.want {
				t.Fatalf("extractMermaid() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestTrimHistoryKeepsNewestWithinBudget(t *testing.T) {
	history := []Message{
		{Role: RoleUser, Content: "aaaaaaaaaa"},
		{Role: RoleAssistant, Content: "bbbbbbbbbb"},
		{Role: RoleSystem, Content: "ignored"},
		{Role: RoleUser, Content: "   "},
		{Role: RoleUser, Content: "cccccccccc"},
	}
	got := trimHistory(history, 25)
	if len(got) != 2 {
		t.Fatalf("expected 2 messages, got %d: %+v", len(got), got)
	}
	if got[0].Content != "bbbbbbbbbb" || got[1].Content != "cccccccccc" {
		t.Fatalf("unexpected order: %+v", got)
	}

	got = trimHistory([]Message{{Role: RoleUser, Content: "0123456789"}}, 4)
	if len(got) != 1 || got[0].Content != "0123" {
		t.Fatalf("expected newest message clipped, got %+v", got)
	}
}

func TestClipTextRespectsRunes(t *testing.T) {
	if got := clipText("  héllo wörld ", 5); got != "héllo" {
		t.Fatalf("clipText() = %q", got)
	}
}

package llm

import (
	"regexp"
	"strings"
)

const (
	chatSystemPrompt = "You are a helpful study assistant inside a note-taking app. " +
		"Answer questions about the user's notes clearly and concisely. Use Markdown when it helps."

	editSystemPrompt = "You are an expert note editor."

	diagramSystemPrompt = "You turn notes into Mermaid diagrams. Reply with Mermaid source only."

	lectureSystemPrompt = "You are an expert at processing and organizing lecture notes. " +
		"Your task is to take the current notes and new lecture content and merge them into a well-structured, coherent document. " +
		"Maintain academic tone and organize content logically."
)

var fenceRe = regexp.MustCompile("(?s)```[ \t]*([a-zA-Z]*)[ \t]*\n(.*?)```")

func clipText(text string, limit int) string {
	text = strings.TrimSpace(text)
	if limit <= 0 || len(text) <= limit {
		return text
	}
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit])
}

func buildEditPrompt(snippet, instruction string) string {
	var b strings.Builder
	b.WriteString("Original text: ")
	b.WriteString(snippet)
	b.WriteString("\nEdit instruction: ")
	b.WriteString(strings.TrimSpace(instruction))
	b.WriteString("\n\nProvide only the edited version of the text, maintaining the same style and format. ")
	b.WriteString("If the instruction is to remove the text, reply with an empty string.")
	return b.String()
}

func buildDiagramPrompt(text string) string {
	return "Create a Mermaid diagram that captures the structure of the following notes.\n" +
		"Prefer `graph TD` flowcharts with short node labels. Do not add explanations.\n\n" +
		"Notes:\n" + text
}

func buildLecturePrompt(current, lecture string) string {
	return "Current Notes:\n" + current +
		"\n\nNew Lecture Content:\n" + lecture +
		"\n\nPlease process and merge these into well-structured notes, maintaining the existing format and adding new information appropriately."
}

// trimHistory keeps the most recent messages that fit in limit characters.
// The newest message is always kept, clipped if necessary.
func trimHistory(history []Message, limit int) []Message {
	kept := make([]Message, 0, len(history))
	used := 0
	for i := len(history) - 1; i >= 0; i-- {
		msg := history[i]
		msg.Content = strings.TrimSpace(msg.Content)
		if msg.Content == "" || msg.Role == RoleSystem {
			continue
		}
		if used+len(msg.Content) > limit {
			if len(kept) == 0 {
				msg.Content = clipText(msg.Content, limit)
				kept = append(kept, msg)
			}
			break
		}
		used += len(msg.Content)
		kept = append(kept, msg)
	}
	for i, j := 0, len(kept)-1; i < j; i, j = i+1, j-1 {
		kept[i], kept[j] = kept[j], kept[i]
	}
	return kept
}

// extractMermaid returns the diagram source from a model reply, preferring a
// fenced mermaid block when one is present.
func extractMermaid(raw string) string {
	raw = strings.TrimSpace(raw)
	matches := fenceRe.FindAllStringSubmatch(raw, -1)
	for _, m := range matches {
		if strings.EqualFold(m[1], "mermaid") {
			return strings.TrimSpace(m[2])
		}
	}
	if len(matches) > 0 {
		return strings.TrimSpace(matches[0][2])
	}
	return strings.TrimSpace(strings.TrimPrefix(raw, "mermaid\n"))
}

func stripQuotes(text string) string {
	text = strings.TrimSpace(text)
	if len(text) >= 2 && strings.HasPrefix(text, `"`) && strings.HasSuffix(text, `"`) {
		return strings.TrimSpace(text[1 : len(text)-1])
	}
	return text
}

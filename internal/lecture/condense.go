package lecture

import (
	"regexp"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// DefaultBudget is the character budget for condensed transcripts.
const DefaultBudget = 60_000

var (
	paragraphSplit = regexp.MustCompile(`\n{2,}`)
	spaceRun       = regexp.MustCompile(`\s+`)
	cueTiming      = regexp.MustCompile(`(?m)^[ \t]*\d{1,2}:\d{2}(?::\d{2})?(?:[.,]\d+)?[ \t]*-->.*$`)
	stampOnly      = regexp.MustCompile(`(?m)^[ \t]*[\[(]?\d{1,2}:\d{2}(?::\d{2})?[\])]?[ \t]*$`)
	stampLead      = regexp.MustCompile(`(?m)^[ \t]*[\[(]?\d{1,2}:\d{2}(?::\d{2})?[\])]?[ \t]+`)
	cueNumber      = regexp.MustCompile(`(?m)^[ \t]*\d+[ \t]*$`)
)

var fillers = map[string]bool{
	"um": true, "uh": true, "uhm": true, "hmm": true, "okay": true, "ok": true,
	"[music]": true, "[applause]": true, "[laughter]": true, "[inaudible]": true,
	"(inaudible)": true, "[silence]": true, "webvtt": true,
}

// Condense strips timestamps and filler, drops repeated paragraphs and clips
// the result to budget characters.
func Condense(text string, budget int) string {
	if budget <= 0 {
		budget = DefaultBudget
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	for _, re := range []*regexp.Regexp{cueTiming, stampOnly, cueNumber} {
		text = re.ReplaceAllString(text, "")
	}
	text = stampLead.ReplaceAllString(text, "")

	seen := map[uint64]bool{}
	var kept []string
	for _, paragraph := range paragraphSplit.Split(text, -1) {
		trimmed := strings.TrimSpace(paragraph)
		if trimmed == "" || isFiller(trimmed) {
			continue
		}
		canonical := strings.ToLower(spaceRun.ReplaceAllString(trimmed, " "))
		hash := xxhash.Sum64String(canonical)
		if seen[hash] {
			continue
		}
		seen[hash] = true
		kept = append(kept, trimmed)
	}
	return clipParagraphs(kept, budget)
}

func isFiller(paragraph string) bool {
	return fillers[strings.ToLower(strings.Trim(paragraph, " .,!?"))]
}

func clipParagraphs(paragraphs []string, budget int) string {
	var builder strings.Builder
	remaining := budget
	for idx, paragraph := range paragraphs {
		if remaining <= 0 {
			break
		}
		if idx > 0 {
			if remaining <= 2 {
				break
			}
			builder.WriteString("\n\n")
			remaining -= 2
		}
		runes := []rune(paragraph)
		if len(runes) > remaining {
			builder.WriteString(string(runes[:remaining]))
			break
		}
		builder.WriteString(paragraph)
		remaining -= len(runes)
	}
	return builder.String()
}

package tui

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// placeOverlay draws fg over bg with its top-left cell at (x, y). Styling on
// both sides of the overlay is preserved; bg rows are padded as needed.
func placeOverlay(bg, fg string, x, y int) string {
	if x < 0 {
		x = 0
	}
	if y < 0 {
		y = 0
	}
	bgLines := strings.Split(bg, "\n")
	fgLines := strings.Split(fg, "\n")
	for len(bgLines) < y+len(fgLines) {
		bgLines = append(bgLines, "")
	}
	for i, fgLine := range fgLines {
		row := y + i
		bgLines[row] = compositeRow(bgLines[row], fgLine, x)
	}
	return strings.Join(bgLines, "\n")
}

func compositeRow(bgLine, fgLine string, x int) string {
	fgWidth := ansi.StringWidth(fgLine)
	bgWidth := ansi.StringWidth(bgLine)

	var b strings.Builder
	left := ansi.Truncate(bgLine, x, "")
	b.WriteString(left)
	if w := ansi.StringWidth(left); w < x {
		b.WriteString(strings.Repeat(" ", x-w))
	}
	b.WriteString(fgLine)
	if right := x + fgWidth; right < bgWidth {
		b.WriteString(ansi.Cut(bgLine, right, bgWidth))
	}
	return b.String()
}

// dimBehind strips styling from every bg row and repaints it with dim, then
// centres the modal on top.
func dimBehind(bg, modal string, width, height int, dim func(...string) string) string {
	bgLines := strings.Split(bg, "\n")
	for len(bgLines) < height {
		bgLines = append(bgLines, "")
	}
	for i, line := range bgLines {
		bgLines[i] = dim(ansi.Strip(line))
	}
	modalLines := strings.Split(modal, "\n")
	x := (width - maxLineWidth(modalLines)) / 2
	y := (height - len(modalLines)) / 2
	return placeOverlay(strings.Join(bgLines, "\n"), modal, x, y)
}

func maxLineWidth(lines []string) int {
	widest := 0
	for _, line := range lines {
		if w := ansi.StringWidth(line); w > widest {
			widest = w
		}
	}
	return widest
}

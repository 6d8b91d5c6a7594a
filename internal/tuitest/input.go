package tuitest

import (
	"fmt"
	"time"
)

var (
	// KeyEnter sends a carriage return to the PTY.
	KeyEnter = []byte{'\r'}
	// KeyCtrlC requests the program to terminate.
	KeyCtrlC = []byte{3}
	// KeyCtrlN creates a note.
	KeyCtrlN = []byte{14}
	// KeyCtrlE opens the inline edit prompt.
	KeyCtrlE = []byte{5}
	// KeyEsc closes overlays and backs out of the editor.
	KeyEsc = []byte{27}
	// KeyShiftLeft extends the selection one cell to the left.
	KeyShiftLeft = []byte("\x1b[1;2D")
)

// Type returns a step that writes text as typed input.
func Type(text string) Step {
	return Step{Input: []byte(text)}
}

// Wait returns a step that only pauses.
func Wait(d time.Duration) Step {
	return Step{Delay: d}
}

// Press returns a step that writes key bytes after a short pause so the
// program has rendered the previous input.
func Press(key []byte) Step {
	return Step{Delay: 100 * time.Millisecond, Input: key}
}

// Drag returns the SGR mouse sequence for a left-button press at from,
// motion to to and a release there. Coordinates are zero-based cells.
func Drag(fromX, fromY, toX, toY int) []Step {
	return []Step{
		{Delay: 50 * time.Millisecond, Input: sgrMouse(0, fromX, fromY, 'M')},
		{Delay: 50 * time.Millisecond, Input: sgrMouse(32, toX, toY, 'M')},
		{Delay: 50 * time.Millisecond, Input: sgrMouse(0, toX, toY, 'm')},
	}
}

// Click returns a press and release at x, y.
func Click(x, y int) []Step {
	return []Step{
		{Delay: 50 * time.Millisecond, Input: sgrMouse(0, x, y, 'M')},
		{Delay: 50 * time.Millisecond, Input: sgrMouse(0, x, y, 'm')},
	}
}

func sgrMouse(button, x, y int, final byte) []byte {
	return []byte(fmt.Sprintf("\x1b[<%d;%d;%d%c", button, x+1, y+1, final))
}

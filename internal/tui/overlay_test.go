package tui

import (
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"
)

func TestPlaceOverlay(t *testing.T) {
	cases := []struct {
		name string
		bg   string
		fg   string
		x, y int
		want string
	}{
		{name: "inside", bg: "aaaaa\nbbbbb", fg: "XY", x: 1, y: 1, want: "aaaaa\nbXYbb"},
		{name: "pads short rows", bg: "a", fg: "X", x: 2, y: 1, want: "a\n  X"},
		{name: "past right edge", bg: "abc", fg: "XYZ", x: 2, y: 0, want: "abXYZ"},
		{name: "negative clamps", bg: "abc", fg: "X", x: -3, y: -1, want: "Xbc"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := placeOverlay(tc.bg, tc.fg, tc.x, tc.y); got != tc.want {
				t.Fatalf("got %q want %q", got, tc.want)
			}
		})
	}
}

func TestPlaceOverlayKeepsStyledBackground(t *testing.T) {
	bg := "\x1b[1mbold\x1b[0m rest"
	got := placeOverlay(bg, "X", 5, 0)
	if !strings.HasPrefix(got, "\x1b[1mbold") {
		t.Fatalf("styling before the overlay was lost: %q", got)
	}
	if plain := ansi.Strip(got); plain != "bold Xest" {
		t.Fatalf("overlay not composited: %q", got)
	}
}

func TestDimBehindCentresModal(t *testing.T) {
	bg := strings.Join([]string{"\x1b[1m......\x1b[0m", "......", "......"}, "\n")
	got := dimBehind(bg, "MM", 6, 3, func(s ...string) string { return strings.ToUpper(strings.Join(s, " ")) })
	lines := strings.Split(got, "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(lines))
	}
	if lines[0] != "......" {
		t.Fatalf("background should be stripped and dimmed, got %q", lines[0])
	}
	if lines[1] != "..MM.." {
		t.Fatalf("modal should be centred, got %q", lines[1])
	}
}

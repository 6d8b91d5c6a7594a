package selection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/csheth/notable/internal/editor"
	"github.com/csheth/notable/internal/geometry"
)

func TestNormalizeKeyboardSelection(t *testing.T) {
	buf := editor.New("say hello world")
	res := Normalize(Event{Revision: buf.Revision(), Payload: Keyboard{Start: 4, End: 9}}, buf)

	require.Equal(t, Selected, res.Kind)
	assert.Equal(t, "hello", res.Selection.Text)
	assert.Equal(t, SourceKeyboard, res.Selection.Source)
	assert.Equal(t, geometry.Point{X: 9, Y: 0}, res.Selection.Anchor, "anchor is the caret at the selection end")
}

func TestNormalizeTrimsAndClears(t *testing.T) {
	buf := editor.New("  padded  \n   \nend")
	cases := []struct {
		name  string
		start int
		end   int
		kind  Kind
		text  string
	}{
		{name: "collapsed", start: 3, end: 3, kind: Cleared},
		{name: "whitespace only", start: 11, end: 14, kind: Cleared},
		{name: "trimmed", start: 0, end: 10, kind: Selected, text: "padded"},
		{name: "reversed range", start: 10, end: 0, kind: Selected, text: "padded"},
		{name: "out of range", start: 2, end: 400, kind: Ignored},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := Normalize(Event{Revision: buf.Revision(), Payload: Keyboard{Start: tc.start, End: tc.end}}, buf)
			assert.Equal(t, tc.kind, res.Kind)
			assert.Equal(t, tc.text, res.Selection.Text)
		})
	}
}

func TestNormalizeIgnoresStaleRevision(t *testing.T) {
	buf := editor.New("hello world")
	rev := buf.Revision()
	buf.SetText("replaced")

	res := Normalize(Event{Revision: rev, Payload: Pointer{Start: 0, End: 5, Release: geometry.Point{X: 5, Y: 0}}}, buf)
	assert.Equal(t, Ignored, res.Kind)
}

func TestNormalizePointerUsesReleaseRow(t *testing.T) {
	buf := editor.New("first line\nsecond line")
	res := Normalize(Event{Revision: buf.Revision(), Payload: Pointer{Start: 11, End: 17, Release: geometry.Point{X: 6, Y: 1}}}, buf)

	require.Equal(t, Selected, res.Kind)
	assert.Equal(t, "second", res.Selection.Text)
	assert.Equal(t, SourcePointer, res.Selection.Source)
	assert.Equal(t, geometry.Point{X: 6, Y: 1}, res.Selection.Anchor)
}

func TestNormalizeRichText(t *testing.T) {
	res := Normalize(Event{Payload: RichText{Text: "  rendered words ", Bounds: geometry.Rect{X: 10, Y: 4, W: 14, H: 1}}}, nil)
	assert.Equal(t, Ignored, res.Kind, "a nil surface is ignored")

	buf := editor.New("")
	res = Normalize(Event{Payload: RichText{Text: "  rendered words ", Bounds: geometry.Rect{X: 10, Y: 4, W: 14, H: 1}}}, buf)
	require.Equal(t, Selected, res.Kind)
	assert.Equal(t, "rendered words", res.Selection.Text)
	assert.Equal(t, geometry.Point{X: 17, Y: 4}, res.Selection.Anchor)

	res = Normalize(Event{Payload: RichText{Text: "   "}}, buf)
	assert.Equal(t, Cleared, res.Kind)
}

func TestTrackerIgnoresIgnoredEvents(t *testing.T) {
	buf := editor.New("alpha beta")
	var tracker Tracker

	tracker.Observe(Event{Revision: buf.Revision(), Payload: Keyboard{Start: 0, End: 5}}, buf)
	sel, ok := tracker.Current()
	require.True(t, ok)
	assert.Equal(t, "alpha", sel.Text)

	tracker.Observe(Event{Revision: buf.Revision() + 1, Payload: Keyboard{Start: 6, End: 10}}, buf)
	sel, ok = tracker.Current()
	require.True(t, ok, "stale event keeps the previous selection")
	assert.Equal(t, "alpha", sel.Text)

	tracker.Observe(Event{Revision: buf.Revision(), Payload: Keyboard{Start: 2, End: 2}}, buf)
	_, ok = tracker.Current()
	assert.False(t, ok)
}

package autosave

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBurstOfEditsReleasesOnlyTheLastValue(t *testing.T) {
	for _, n := range []int{1, 2, 5, 50} {
		t.Run(fmt.Sprintf("%d edits", n), func(t *testing.T) {
			s := New("note-1", "", 0)
			var gens []uint64
			for i := 1; i <= n; i++ {
				gens = append(gens, s.Edit(fmt.Sprintf("draft %d", i)))
				assert.Equal(t, fmt.Sprintf("draft %d", i), s.Display(), "display updates synchronously")
			}

			var persisted []string
			for _, gen := range gens {
				if value, ok := s.Fire(gen); ok {
					persisted = append(persisted, value)
				}
			}
			require.Len(t, persisted, 1)
			assert.Equal(t, fmt.Sprintf("draft %d", n), persisted[0])
		})
	}
}

func TestConfirmMovesToConfirmed(t *testing.T) {
	s := New("note-1", "v0", time.Second)
	gen := s.Edit("v1")
	require.Equal(t, Pending, s.State())

	value, ok := s.Fire(gen)
	require.True(t, ok)
	s.Confirm(gen, value)
	assert.Equal(t, Confirmed, s.State())
	assert.Equal(t, "v1", s.Confirmed())

	_, ok = s.Fire(gen)
	assert.False(t, ok, "nothing pending after confirmation")
}

func TestConfirmWhileTypingStaysPending(t *testing.T) {
	s := New("note-1", "", time.Second)
	gen := s.Edit("abc")
	value, _ := s.Fire(gen)
	s.Edit("abcd")

	s.Confirm(gen, value)
	assert.Equal(t, Pending, s.State())
	assert.Equal(t, "abcd", s.Display())
	assert.Equal(t, "abc", s.Confirmed())
}

func TestConfirmRearmsWhenDraftReturnedToOldValue(t *testing.T) {
	s := New("note-1", "a", time.Second)
	g1 := s.Edit("ab")
	value, ok := s.Fire(g1)
	require.True(t, ok)

	// The user deletes back to the stored value while "ab" is in flight.
	g2 := s.Edit("a")
	assert.Equal(t, Confirmed, s.State())

	rearm, ok := s.Confirm(g1, value)
	require.True(t, ok, "store holds ab while display shows a")
	assert.Equal(t, Pending, s.State())
	assert.Greater(t, rearm, g2)

	_, ok = s.Fire(g2)
	assert.False(t, ok, "the old tick is superseded by the re-armed one")
	again, ok := s.Fire(rearm)
	require.True(t, ok)
	assert.Equal(t, "a", again)

	_, ok = s.Confirm(rearm, again)
	assert.False(t, ok)
	assert.Equal(t, Confirmed, s.State())
	assert.Equal(t, "a", s.Confirmed())
}

func TestConfirmDoesNotRearmWhileStillPending(t *testing.T) {
	s := New("note-1", "", time.Second)
	g1 := s.Edit("abc")
	value, _ := s.Fire(g1)
	s.Edit("abcd")

	_, ok := s.Confirm(g1, value)
	assert.False(t, ok, "the armed tick for abcd still covers the draft")
}

func TestOlderConfirmationDoesNotOverwriteNewer(t *testing.T) {
	s := New("note-1", "", time.Second)
	g1 := s.Edit("one")
	v1, _ := s.Fire(g1)
	g2 := s.Edit("two")
	v2, _ := s.Fire(g2)

	s.Confirm(g2, v2)
	s.Confirm(g1, v1)
	assert.Equal(t, "two", s.Confirmed())
	assert.Equal(t, Confirmed, s.State())
}

func TestFailureKeepsDisplay(t *testing.T) {
	s := New("note-1", "stored", time.Second)
	gen := s.Edit("optimistic")
	value, ok := s.Fire(gen)
	require.True(t, ok)

	s.Fail(gen, errors.New("disk full"))
	assert.Equal(t, value, s.Display())
	assert.Equal(t, Pending, s.State())
	assert.EqualError(t, s.LastError(), "disk full")
}

func TestResyncBypassesAndCancelsDebounce(t *testing.T) {
	s := New("note-1", "old", time.Second)
	gen := s.Edit("typing")

	s.Resync("HELLO world")
	assert.Equal(t, "HELLO world", s.Display())
	assert.Equal(t, Confirmed, s.State())

	_, ok := s.Fire(gen)
	assert.False(t, ok, "armed tick from before the resync releases nothing")
}

func TestReplaceInvalidatesTickAndStaysPending(t *testing.T) {
	s := New("note-1", "hello world", time.Second)
	armed := s.Edit("hello world!")
	gen := s.Replace("HELLO world")

	assert.Equal(t, Pending, s.State())
	assert.Equal(t, "HELLO world", s.Display())
	_, ok := s.Fire(armed)
	assert.False(t, ok)

	s.Confirm(gen, "HELLO world")
	assert.Equal(t, Confirmed, s.State())
}

func TestFlushReleasesImmediately(t *testing.T) {
	s := New("note-1", "", time.Second)
	armed := s.Edit("pending text")

	value, gen, ok := s.Flush()
	require.True(t, ok)
	assert.Equal(t, "pending text", value)
	assert.Greater(t, gen, armed)

	_, ok = s.Fire(armed)
	assert.False(t, ok)

	_, _, ok = New("note-2", "x", 0).Flush()
	assert.False(t, ok, "nothing to flush when confirmed")
}

func TestEditBackToConfirmedValueIsClean(t *testing.T) {
	s := New("note-1", "same", time.Second)
	s.Edit("changed")
	gen := s.Edit("same")
	assert.Equal(t, Confirmed, s.State())
	_, ok := s.Fire(gen)
	assert.False(t, ok)
}

func TestScheduleDeliversTick(t *testing.T) {
	s := New("note-1", "", time.Millisecond)
	gen := s.Edit("x")
	msg := s.Schedule(gen)()
	assert.Equal(t, TickMsg{Key: "note-1", Gen: gen}, msg)
	assert.Equal(t, DefaultWindow, New("k", "", 0).Window())
}

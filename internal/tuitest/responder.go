package tuitest

import (
	"bytes"
	"io"
)

// reply answers one terminal query the program may send while starting up.
type reply struct {
	query    []byte
	response []byte
}

var replies = []reply{
	{[]byte("\x1b[6n"), []byte("\x1b[1;1R")},
	{[]byte("\x1b]10;?\x07"), []byte("\x1b]10;rgb:cccc/cccc/cccc\x07")},
	{[]byte("\x1b]10;?\x1b\\"), []byte("\x1b]10;rgb:cccc/cccc/cccc\x1b\\")},
	{[]byte("\x1b]11;?\x07"), []byte("\x1b]11;rgb:0000/0000/0000\x07")},
	{[]byte("\x1b]11;?\x1b\\"), []byte("\x1b]11;rgb:0000/0000/0000\x1b\\")},
	// Synchronized output mode is reported as unsupported.
	{[]byte("\x1b[?2026$p"), []byte("\x1b[?2026;0$y")},
}

var (
	mouseCellMotionOn = []byte("\x1b[?1002h")
	mouseSGROn        = []byte("\x1b[?1006h")
	mouseOff          = []byte("\x1b[?1002l")
)

// responder plays the terminal side of the PTY: it answers queries and
// tracks whether SGR mouse reporting is on, which Drag and Click depend on.
type responder struct {
	w   io.Writer
	buf []byte

	cellMotion bool
	sgr        bool
}

func newResponder(w io.Writer) *responder {
	return &responder{w: w, buf: make([]byte, 0, 128)}
}

func (r *responder) Process(chunk []byte) {
	r.buf = append(r.buf, chunk...)
	r.trackModes()
	for r.answerOne() {
	}
	// Keep a small tail so sequences split across reads still match.
	if len(r.buf) > 256 {
		r.buf = r.buf[len(r.buf)-64:]
	}
}

// MouseReady reports whether the program asked for SGR-encoded cell motion
// mouse events.
func (r *responder) MouseReady() bool {
	return r.cellMotion && r.sgr
}

func (r *responder) trackModes() {
	on := bytes.LastIndex(r.buf, mouseCellMotionOn)
	off := bytes.LastIndex(r.buf, mouseOff)
	if on >= 0 && on > off {
		r.cellMotion = true
	} else if off >= 0 && off > on {
		r.cellMotion = false
	}
	if bytes.Contains(r.buf, mouseSGROn) {
		r.sgr = true
	}
}

// answerOne replies to the earliest pending query and drops the buffer up to
// its end.
func (r *responder) answerOne() bool {
	first, at := -1, -1
	for i, rep := range replies {
		if idx := bytes.Index(r.buf, rep.query); idx >= 0 && (at < 0 || idx < at) {
			first, at = i, idx
		}
	}
	if first < 0 {
		return false
	}
	rep := replies[first]
	r.buf = r.buf[at+len(rep.query):]
	_, _ = r.w.Write(rep.response)
	return true
}

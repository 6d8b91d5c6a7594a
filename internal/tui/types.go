package tui

import (
	"github.com/csheth/notable/internal/notes"
	"github.com/csheth/notable/internal/session"
)

type stage int

const (
	stageList stage = iota
	stageEditor
)

// focusArea is where key presses go.
type focusArea int

const (
	focusEditor focusArea = iota
	focusToolbar
	focusChat
	focusDiagram
	focusPrompt
)

type promptKind int

const (
	promptNone promptKind = iota
	promptRename
	promptLecture
)

const (
	renamePlaceholder  = "Note title"
	lecturePlaceholder = "Path or URL of a transcript (.txt, .md, .vtt, .pdf)"
	chatPlaceholder    = "Ask a follow-up…"
	editPlaceholder    = "How should this change?"

	minEditorWidth  = 20
	minEditorHeight = 3
	listPreviewLen  = 60
	tabText         = "    "
)

const (
	regionToolbar = "toolbar"
	regionAction  = "toolbar-action"
)

type notesLoadedMsg struct {
	notes []notes.Note
	err   error
}

type noteOpenedMsg struct {
	note notes.Note
	err  error
}

type noteDeletedMsg struct {
	id  string
	err error
}

type noteReloadedMsg struct {
	note notes.Note
	err  error
}

type saveDoneMsg struct {
	result session.SaveResult
}

type callDoneMsg struct {
	result session.Result
}

type lectureLoadedMsg struct {
	source string
	text   string
	err    error
}

type copiedMsg struct {
	what string
	err  error
}

// blurMsg resolves a deferred focus loss one update later.
type blurMsg struct {
	token uint64
}

// externalChangeMsg reports that the database changed on disk.
type externalChangeMsg struct{}

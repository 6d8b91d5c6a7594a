// Package assist defines the AI collaborators the editor consumes and two
// implementations: Local runs them in-process over an llm.Client, Remote
// calls a notable server.
package assist

import (
	"context"

	"github.com/csheth/notable/internal/llm"
)

// EditRequest asks for SelectedPart of WholeDocument to be rewritten.
// The JSON names match the /lecture/edit route.
type EditRequest struct {
	WholeDocument string `json:"wholeLecture"`
	SelectedPart  string `json:"partToModify"`
	Instruction   string `json:"suggestion"`
}

// EditResponse carries the full modified document.
type EditResponse struct {
	ModifiedText string `json:"modifiedText"`
}

// LectureRequest asks for a lecture transcript to be merged into a note.
type LectureRequest struct {
	NoteID         string `json:"noteId"`
	CurrentContent string `json:"currentContent"`
	LectureContent string `json:"lectureContent"`
}

// LectureResponse carries the merged note content.
type LectureResponse struct {
	ProcessedContent string `json:"processedContent"`
}

// DiagramRequest asks for diagram source describing Text.
type DiagramRequest struct {
	Text string `json:"text"`
}

// DiagramResponse carries mermaid source.
type DiagramResponse struct {
	Diagram string `json:"diagram"`
}

// ChatRequest is one chat turn plus the prior conversation.
type ChatRequest struct {
	Message string        `json:"message"`
	History []llm.Message `json:"history,omitempty"`
}

// ChatResponse carries the assistant reply.
type ChatResponse struct {
	Reply string `json:"reply"`
}

// ChatService answers chat messages.
type ChatService interface {
	Send(ctx context.Context, history []llm.Message, text string) (string, error)
}

// TextEditor rewrites part of a document and returns the whole modified document.
type TextEditor interface {
	Edit(ctx context.Context, req EditRequest) (string, error)
}

// DiagramGenerator produces diagram source for a piece of text.
type DiagramGenerator interface {
	Generate(ctx context.Context, text string) (string, error)
}

// LectureProcessor merges lecture content into a note.
type LectureProcessor interface {
	Process(ctx context.Context, req LectureRequest) (string, error)
}

// Service bundles every collaborator.
type Service interface {
	ChatService
	TextEditor
	DiagramGenerator
	LectureProcessor
}

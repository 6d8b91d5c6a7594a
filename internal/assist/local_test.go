package assist

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/csheth/notable/internal/apperr"
	"github.com/csheth/notable/internal/llm"
)

type fakeModel struct {
	reply    string
	err      error
	calls    int
	snippet  string
	history  []llm.Message
	lecture  string
	diagrams []string
}

func (f *fakeModel) Name() string { return "fake" }

func (f *fakeModel) Chat(_ context.Context, history []llm.Message) (string, error) {
	f.calls++
	f.history = history
	return f.reply, f.err
}

func (f *fakeModel) RewriteSnippet(_ context.Context, snippet, _ string) (string, error) {
	f.calls++
	f.snippet = snippet
	return f.reply, f.err
}

func (f *fakeModel) Diagram(_ context.Context, text string) (string, error) {
	f.calls++
	f.diagrams = append(f.diagrams, text)
	return f.reply, f.err
}

func (f *fakeModel) MergeLecture(_ context.Context, _, lecture string) (string, error) {
	f.calls++
	f.lecture = lecture
	return f.reply, f.err
}

func TestLocalEditReplacesFirstOccurrenceOnly(t *testing.T) {
	model := &fakeModel{reply: "HELLO"}
	local := NewLocal(model, nil)

	out, err := local.Edit(context.Background(), EditRequest{
		WholeDocument: "hello world, hello again",
		SelectedPart:  "hello",
		Instruction:   "capitalize",
	})
	require.NoError(t, err)
	assert.Equal(t, "HELLO world, hello again", out)
	assert.Equal(t, "hello", model.snippet)
}

func TestLocalEditValidation(t *testing.T) {
	model := &fakeModel{reply: "x"}
	local := NewLocal(model, nil)
	ctx := context.Background()

	cases := []EditRequest{
		{WholeDocument: "doc", SelectedPart: "  ", Instruction: "fix"},
		{WholeDocument: "doc", SelectedPart: "doc", Instruction: " "},
		{WholeDocument: "doc", SelectedPart: "missing", Instruction: "fix"},
	}
	for _, req := range cases {
		_, err := local.Edit(ctx, req)
		assert.True(t, apperr.Is(err, apperr.CodeInvalid), "%+v", req)
	}
	assert.Zero(t, model.calls, "invalid requests never reach the model")
}

func TestLocalWrapsModelFailures(t *testing.T) {
	model := &fakeModel{err: errors.New("connection refused")}
	local := NewLocal(model, nil)
	ctx := context.Background()

	_, err := local.Send(ctx, nil, "what is mitosis?")
	assert.True(t, apperr.Is(err, apperr.CodeUpstream))

	_, err = local.Generate(ctx, "cells divide")
	assert.True(t, apperr.Is(err, apperr.CodeUpstream))

	_, err = local.Edit(ctx, EditRequest{WholeDocument: "a b", SelectedPart: "a", Instruction: "x"})
	assert.True(t, apperr.Is(err, apperr.CodeUpstream))
}

func TestLocalSendAppendsUserTurn(t *testing.T) {
	model := &fakeModel{reply: "Cell division."}
	local := NewLocal(model, nil)
	prior := []llm.Message{
		{Role: llm.RoleUser, Content: "mitosis"},
		{Role: llm.RoleAssistant, Content: "A process."},
	}

	reply, err := local.Send(context.Background(), prior, "  explain more ")
	require.NoError(t, err)
	assert.Equal(t, "Cell division.", reply)
	require.Len(t, model.history, 3)
	assert.Equal(t, llm.Message{Role: llm.RoleUser, Content: "explain more"}, model.history[2])
	assert.Len(t, prior, 2, "caller history is not mutated")
}

func TestLocalProcessRejectsEmptyLecture(t *testing.T) {
	local := NewLocal(&fakeModel{}, nil)
	_, err := local.Process(context.Background(), LectureRequest{CurrentContent: "notes"})
	assert.True(t, apperr.Is(err, apperr.CodeInvalid))
}

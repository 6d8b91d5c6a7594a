package assist

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/csheth/notable/internal/apperr"
	"github.com/csheth/notable/internal/llm"
)

// Local serves every collaborator in-process with a language model.
type Local struct {
	client llm.Client
	logger *zap.Logger
}

// NewLocal wraps client. A nil logger discards output.
func NewLocal(client llm.Client, logger *zap.Logger) *Local {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Local{client: client, logger: logger.Named("assist")}
}

func (l *Local) Send(ctx context.Context, history []llm.Message, text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", apperr.Invalid("message must not be empty")
	}
	messages := make([]llm.Message, 0, len(history)+1)
	messages = append(messages, history...)
	messages = append(messages, llm.Message{Role: llm.RoleUser, Content: text})

	start := time.Now()
	reply, err := l.client.Chat(ctx, messages)
	if err != nil {
		l.logFailure("chat", start, err)
		return "", apperr.Upstream("chat request failed", err)
	}
	return reply, nil
}

// Edit rewrites the first occurrence of the selected part and returns the
// whole document.
func (l *Local) Edit(ctx context.Context, req EditRequest) (string, error) {
	if strings.TrimSpace(req.SelectedPart) == "" {
		return "", apperr.Invalid("selected text must not be empty")
	}
	if strings.TrimSpace(req.Instruction) == "" {
		return "", apperr.Invalid("suggestion must not be empty")
	}
	if !strings.Contains(req.WholeDocument, req.SelectedPart) {
		return "", apperr.Invalid("selected text not found in full content")
	}

	start := time.Now()
	rewritten, err := l.client.RewriteSnippet(ctx, req.SelectedPart, req.Instruction)
	if err != nil {
		l.logFailure("edit", start, err)
		return "", apperr.Upstream("failed to process edit", err)
	}
	return strings.Replace(req.WholeDocument, req.SelectedPart, rewritten, 1), nil
}

func (l *Local) Generate(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", apperr.Invalid("text must not be empty")
	}
	start := time.Now()
	source, err := l.client.Diagram(ctx, text)
	if err != nil {
		l.logFailure("diagram", start, err)
		return "", apperr.Upstream("failed to generate diagram", err)
	}
	return source, nil
}

func (l *Local) Process(ctx context.Context, req LectureRequest) (string, error) {
	if strings.TrimSpace(req.LectureContent) == "" {
		return "", apperr.Invalid("lecture content must not be empty")
	}
	start := time.Now()
	merged, err := l.client.MergeLecture(ctx, req.CurrentContent, req.LectureContent)
	if err != nil {
		l.logFailure("lecture", start, err)
		return "", apperr.Upstream("failed to process lecture", err)
	}
	return merged, nil
}

func (l *Local) logFailure(op string, start time.Time, err error) {
	l.logger.Warn("model call failed",
		zap.String("op", op),
		zap.String("model", l.client.Name()),
		zap.Duration("duration", time.Since(start)),
		zap.Error(err),
	)
}

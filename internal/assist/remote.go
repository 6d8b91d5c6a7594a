package assist

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/csheth/notable/internal/apperr"
	"github.com/csheth/notable/internal/llm"
)

const defaultRemoteTimeout = 3 * time.Minute

// TokenSource supplies the bearer token for remote calls.
type TokenSource interface {
	Token() string
}

// Remote calls the notable HTTP backend.
type Remote struct {
	base   string
	client *http.Client
	tokens TokenSource
}

// NewRemote returns a client for the server at base. tokens may be nil for
// unauthenticated use.
func NewRemote(base string, client *http.Client, tokens TokenSource) *Remote {
	if client == nil {
		client = &http.Client{Timeout: defaultRemoteTimeout}
	}
	return &Remote{base: strings.TrimRight(base, "/"), client: client, tokens: tokens}
}

func (r *Remote) Send(ctx context.Context, history []llm.Message, text string) (string, error) {
	var out ChatResponse
	if err := r.post(ctx, "/api/v1/chat", ChatRequest{Message: text, History: history}, &out); err != nil {
		return "", err
	}
	return out.Reply, nil
}

func (r *Remote) Edit(ctx context.Context, req EditRequest) (string, error) {
	var out EditResponse
	if err := r.post(ctx, "/api/v1/lecture/edit", req, &out); err != nil {
		return "", err
	}
	return out.ModifiedText, nil
}

func (r *Remote) Generate(ctx context.Context, text string) (string, error) {
	var out DiagramResponse
	if err := r.post(ctx, "/api/v1/diagram/generate", DiagramRequest{Text: text}, &out); err != nil {
		return "", err
	}
	if strings.TrimSpace(out.Diagram) == "" {
		return "", apperr.Upstream("server returned an empty diagram", nil)
	}
	return out.Diagram, nil
}

func (r *Remote) Process(ctx context.Context, req LectureRequest) (string, error) {
	var out LectureResponse
	if err := r.post(ctx, "/api/v1/lecture/process", req, &out); err != nil {
		return "", err
	}
	return out.ProcessedContent, nil
}

func (r *Remote) post(ctx context.Context, path string, in, out any) error {
	buf, err := json.Marshal(in)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.base+path, bytes.NewReader(buf))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if r.tokens != nil {
		if token := r.tokens.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return apperr.Upstream("backend unreachable", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return apperr.FromStatus(resp.StatusCode, detailOf(body))
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

// detailOf extracts the error message from a {detail} body.
func detailOf(body []byte) string {
	var payload struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || len(payload.Detail) == 0 {
		return strings.TrimSpace(string(body))
	}
	var text string
	if err := json.Unmarshal(payload.Detail, &text); err == nil {
		return text
	}
	return string(payload.Detail)
}

package llm

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"
)

const (
	ProviderOllama = "ollama"
	ProviderOpenAI = "openai"

	defaultOllamaModel = "ministral-3:latest"
	defaultOpenAIModel = "Meta-Llama-3.1-8B-Instruct"
	defaultOpenAIBase  = "https://api.sambanova.ai/v1"

	// Budgets are in characters (roughly 4 per token) and sized for an 8B model's context.
	maxHistoryChars = 24_000
	maxSnippetChars = 12_000
	maxDiagramChars = 16_000
	maxLectureChars = 60_000
)

const defaultLLMHTTPTimeout = 3 * time.Minute

// Config describes how to build an LLM client.
type Config struct {
	Provider   string
	Model      string
	Endpoint   string
	APIKey     string
	HTTPClient *http.Client
}

// Role is the author of a chat message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one chat message sent to a model.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Client exposes the note-editing helpers backed by a language model.
type Client interface {
	// Chat answers the last user message given the prior conversation.
	Chat(ctx context.Context, history []Message) (string, error)
	// RewriteSnippet returns snippet rewritten according to instruction.
	RewriteSnippet(ctx context.Context, snippet, instruction string) (string, error)
	// Diagram returns mermaid source describing text.
	Diagram(ctx context.Context, text string) (string, error)
	// MergeLecture merges a lecture transcript into the current notes.
	MergeLecture(ctx context.Context, current, lecture string) (string, error)
	Name() string
}

type options struct {
	temperature float64
	maxTokens   int
}

// backend sends a prepared conversation to one provider's API.
type backend interface {
	complete(ctx context.Context, messages []Message, opts options) (string, error)
	label() string
}

// NewFromEnv builds a client from cfg, falling back to environment variables.
func NewFromEnv(cfg Config) (Client, error) {
	provider := strings.ToLower(strings.TrimSpace(cfg.Provider))
	if provider == "" {
		provider = strings.ToLower(os.Getenv("NOTABLE_LLM_PROVIDER"))
	}
	switch provider {
	case ProviderOpenAI:
		return newOpenAI(cfg)
	case "", ProviderOllama:
		return newOllama(cfg), nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
}

func newOllama(cfg Config) Client {
	host := cfg.Endpoint
	if host == "" {
		if env := os.Getenv("OLLAMA_HOST"); env != "" {
			host = env
		} else {
			host = "http://localhost:11434"
		}
	}
	model := cfg.Model
	if model == "" {
		if env := os.Getenv("OLLAMA_MODEL"); env != "" {
			model = env
		} else {
			model = defaultOllamaModel
		}
	}
	return &client{backend: &ollamaClient{
		host:   strings.TrimRight(host, "/"),
		model:  model,
		client: pickHTTPClient(cfg.HTTPClient),
	}}
}

func newOpenAI(cfg Config) (Client, error) {
	key := cfg.APIKey
	if key == "" {
		key = firstEnv("SAMBANOVA_API_KEY", "OPENAI_API_KEY")
	}
	if key == "" {
		return nil, fmt.Errorf("openai provider requires an API key (set SAMBANOVA_API_KEY or OPENAI_API_KEY)")
	}
	base := cfg.Endpoint
	if base == "" {
		if env := os.Getenv("OPENAI_BASE_URL"); env != "" {
			base = env
		} else {
			base = defaultOpenAIBase
		}
	}
	model := cfg.Model
	if model == "" {
		if env := os.Getenv("OPENAI_MODEL"); env != "" {
			model = env
		} else {
			model = defaultOpenAIModel
		}
	}
	return &client{backend: &openAIClient{
		apiKey: key,
		model:  model,
		base:   strings.TrimRight(base, "/"),
		client: pickHTTPClient(cfg.HTTPClient),
	}}, nil
}

func firstEnv(keys ...string) string {
	for _, key := range keys {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			return v
		}
	}
	return ""
}

func pickHTTPClient(custom *http.Client) *http.Client {
	if custom != nil {
		return custom
	}
	// Local models often need more than a minute; callers cancel through ctx.
	return &http.Client{Timeout: defaultLLMHTTPTimeout}
}

type client struct {
	backend backend
}

func (c *client) Name() string {
	return c.backend.label()
}

func (c *client) Chat(ctx context.Context, history []Message) (string, error) {
	history = trimHistory(history, maxHistoryChars)
	if len(history) == 0 || history[len(history)-1].Role != RoleUser {
		return "", fmt.Errorf("chat needs a trailing user message")
	}
	messages := append([]Message{{Role: RoleSystem, Content: chatSystemPrompt}}, history...)
	return c.backend.complete(ctx, messages, options{temperature: 0.7, maxTokens: 1000})
}

func (c *client) RewriteSnippet(ctx context.Context, snippet, instruction string) (string, error) {
	if strings.TrimSpace(snippet) == "" {
		return "", fmt.Errorf("selected text must not be empty")
	}
	if strings.TrimSpace(instruction) == "" {
		return "", fmt.Errorf("edit instruction must not be empty")
	}
	messages := []Message{
		{Role: RoleSystem, Content: editSystemPrompt},
		{Role: RoleUser, Content: buildEditPrompt(clipText(snippet, maxSnippetChars), instruction)},
	}
	out, err := c.backend.complete(ctx, messages, options{temperature: 0.7, maxTokens: 1000})
	if err != nil {
		return "", err
	}
	return stripQuotes(out), nil
}

func (c *client) Diagram(ctx context.Context, text string) (string, error) {
	text = clipText(text, maxDiagramChars)
	if text == "" {
		return "", fmt.Errorf("text empty; cannot build diagram")
	}
	messages := []Message{
		{Role: RoleSystem, Content: diagramSystemPrompt},
		{Role: RoleUser, Content: buildDiagramPrompt(text)},
	}
	raw, err := c.backend.complete(ctx, messages, options{temperature: 0.2, maxTokens: 1500})
	if err != nil {
		return "", err
	}
	source := extractMermaid(raw)
	if source == "" {
		return "", fmt.Errorf("model returned no diagram source")
	}
	return source, nil
}

func (c *client) MergeLecture(ctx context.Context, current, lecture string) (string, error) {
	lecture = clipText(lecture, maxLectureChars)
	if lecture == "" {
		return "", fmt.Errorf("lecture content empty; nothing to merge")
	}
	messages := []Message{
		{Role: RoleSystem, Content: lectureSystemPrompt},
		{Role: RoleUser, Content: buildLecturePrompt(clipText(current, maxLectureChars), lecture)},
	}
	return c.backend.complete(ctx, messages, options{temperature: 0.3, maxTokens: 4000})
}

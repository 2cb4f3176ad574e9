package translate

import (
	"context"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
)

// OllamaBackend translates through a local Ollama server via langchaingo.
type OllamaBackend struct {
	llm      llms.Model
	model    string
	glossary map[string]string
}

// OllamaOption configures an OllamaBackend.
type OllamaOption func(*OllamaBackend)

// WithGlossary pins term translations into every prompt.
func WithGlossary(glossary map[string]string) OllamaOption {
	return func(b *OllamaBackend) { b.glossary = glossary }
}

// WithModelClient substitutes the underlying model, used to layer in rate
// limiting or a test double.
func WithModelClient(m llms.Model) OllamaOption {
	return func(b *OllamaBackend) { b.llm = m }
}

// WithRateLimit wraps the underlying model in a RateLimitedModel. Apply
// after WithModelClient if both are used.
func WithRateLimit(cfg RateLimitConfig) OllamaOption {
	return func(b *OllamaBackend) { b.llm = NewRateLimitedModel(b.llm, cfg) }
}

// NewOllamaBackend connects to the Ollama server at serverURL using the named
// model.
func NewOllamaBackend(serverURL, model string, opts ...OllamaOption) (*OllamaBackend, error) {
	llm, err := ollama.New(
		ollama.WithModel(model),
		ollama.WithServerURL(serverURL),
	)
	if err != nil {
		return nil, fmt.Errorf("creating ollama client for %s: %w", serverURL, err)
	}
	b := &OllamaBackend{llm: llm, model: model}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

func (b *OllamaBackend) Name() string { return "ollama/" + b.model }

// Translate renders the prompt for the model family and runs one completion.
func (b *OllamaBackend) Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	prompt, err := buildPrompt(b.model, text, sourceLang, targetLang, b.glossary)
	if err != nil {
		return "", err
	}

	completion, err := b.llm.GenerateContent(ctx, []llms.MessageContent{
		{
			Role:  llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{llms.TextContent{Text: prompt}},
		},
	}, llms.WithTemperature(0.1))
	if err != nil {
		return "", tagOllamaError(err)
	}
	if len(completion.Choices) == 0 {
		return "", &TransientError{Err: fmt.Errorf("empty completion from %s", b.Name())}
	}
	return cleanResponse(completion.Choices[0].Content), nil
}

// tagOllamaError promotes known Ollama failure messages to tagged variants so
// the retry layer does not depend on substring matching for the common cases.
func tagOllamaError(err error) error {
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "context length") ||
		strings.Contains(msg, "input length exceeds") ||
		strings.Contains(msg, "out of memory") ||
		strings.Contains(msg, "requires more system memory"):
		return &CapacityError{Err: err}
	case strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "connection reset") ||
		strings.Contains(msg, "timeout") ||
		strings.Contains(msg, "server busy") ||
		strings.Contains(msg, "loading model"):
		return &TransientError{Err: err}
	default:
		return fmt.Errorf("ollama generate: %w", err)
	}
}

package providers

import (
	"context"
	"fmt"
	"strings"
)

// Request contains the data sent to a model for one generation call.
type Request struct {
	System      string
	Prompt      string
	MaxTokens   int
	Temperature float64
}

// Response contains the raw model output.
type Response struct {
	Content    string
	TokensUsed int
}

// Generator is the provider abstraction interface.
type Generator interface {
	Generate(ctx context.Context, req Request) (Response, error)
	Name() string
}

// Credentials carries per-provider API keys, supplied by config.
type Credentials struct {
	Gemini    string
	Anthropic string
	OpenAI    string
}

// New creates a provider for a model identifier. The vendor is inferred from
// the identifier prefix, matching how model chains are configured.
func New(modelID string, creds Credentials) (Generator, error) {
	switch {
	case strings.HasPrefix(modelID, "gemini"):
		return NewGemini(creds.Gemini, modelID)
	case strings.HasPrefix(modelID, "claude"):
		return NewAnthropic(creds.Anthropic, modelID)
	case strings.HasPrefix(modelID, "gpt"), strings.HasPrefix(modelID, "o"):
		return NewOpenAI(creds.OpenAI, modelID)
	default:
		return nil, fmt.Errorf("cannot infer provider for model %q", modelID)
	}
}

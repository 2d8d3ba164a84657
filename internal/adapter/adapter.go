// Package adapter provides a unified interface for LLM providers used
// by content enrichment.
package adapter

import (
	"context"
	"fmt"
)

// Provider name constants.
const (
	ProviderClaude = "claude"
	ProviderOpenAI = "openai"
	ProviderOllama = "ollama"
)

// CompletionRequest holds the parameters for a completion call.
type CompletionRequest struct {
	SystemPrompt string
	UserMessage  string
	Model        string
	MaxTokens    int
	Temperature  float64
}

// ModelInfo describes an adapter's default model.
type ModelInfo struct {
	Name             string
	Provider         string
	MaxContextWindow int
}

// LLMAdapter is the common interface all provider adapters implement.
// Enrichment only needs one-shot completions; relationship scoring is
// purely lexical and never calls a model.
type LLMAdapter interface {
	// Complete sends a prompt and returns the full response text.
	Complete(ctx context.Context, req CompletionRequest) (string, error)

	// Info returns metadata about the adapter/model.
	Info() ModelInfo
}

// New constructs the LLMAdapter for the named provider.
//
//   - provider: "claude", "openai", "ollama"
//   - apiKey: provider API key (empty = read from env in the concrete adapter)
//   - ollamaHost: base URL for the Ollama server (used only when provider == "ollama")
func New(provider, apiKey, ollamaHost string) (LLMAdapter, error) {
	switch provider {
	case ProviderClaude:
		return NewClaude(apiKey), nil
	case ProviderOpenAI:
		return NewOpenAI(apiKey), nil
	case ProviderOllama:
		host := ollamaHost
		if host == "" {
			host = "http://localhost:11434"
		}
		return NewOllama(host), nil
	default:
		return nil, fmt.Errorf("adapter: unknown provider %q; valid providers: claude, openai, ollama", provider)
	}
}

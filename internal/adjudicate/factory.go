package adjudicate

import (
	"fmt"
	"strings"

	"github.com/canonist/canonist/internal/model"
)

// NewProvider creates a provider based on configuration. An empty provider
// name returns (nil, nil): adjudication disabled.
func NewProvider(config Config) (Provider, error) {
	switch strings.ToLower(config.Provider) {
	case "openai":
		return NewOpenAIProvider(config)

	case "anthropic", "claude":
		return NewAnthropicProvider(config)

	case "ollama":
		return NewOllamaProvider(config)

	case "":
		return nil, nil

	default:
		return nil, fmt.Errorf("unknown LLM provider: %s (supported: openai, anthropic, ollama)", config.Provider)
	}
}

// ConfigFromModel converts model.LLMConfig to adjudicate.Config
func ConfigFromModel(llmConfig model.LLMConfig) Config {
	return Config{
		Provider:  llmConfig.Provider,
		Model:     llmConfig.Model,
		APIKey:    llmConfig.APIKey,
		BaseURL:   llmConfig.BaseURL,
		Timeout:   llmConfig.Timeout,
		MaxTokens: llmConfig.MaxTokens,
	}
}

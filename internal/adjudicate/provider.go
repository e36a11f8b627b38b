// Package adjudicate hosts the LLM collaborators: claim decomposition into
// atomic statements and forensic adjudication of claims against excerpts.
// Both are opaque request/response capabilities; their failures are
// recoverable and degrade the verdict instead of propagating.
package adjudicate

import "context"

// CompletionRequest is one prompt sent to a provider
type CompletionRequest struct {
	// System sets the collaborator's role and protocol
	System string

	// Prompt is the user-turn content
	Prompt string

	// MaxTokens limits the response length
	MaxTokens int

	// Temperature controls sampling; forensic work runs at 0
	Temperature float32
}

// Provider defines the interface for LLM backends
type Provider interface {
	// Name returns the provider name
	Name() string

	// Complete returns the raw text response for a request
	Complete(ctx context.Context, req CompletionRequest) (string, error)

	// IsAvailable checks if the provider is properly configured and accessible
	IsAvailable(ctx context.Context) bool
}

// Config holds provider configuration
type Config struct {
	// Provider name: "openai", "anthropic", "ollama", ""
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for OpenAI/Anthropic
	APIKey string

	// BaseURL for custom endpoints (e.g., Ollama)
	BaseURL string

	// Timeout for API requests, seconds
	Timeout int

	// MaxTokens for response generation
	MaxTokens int
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Provider:  "", // Disabled by default
		Timeout:   60,
		MaxTokens: 4000,
	}
}

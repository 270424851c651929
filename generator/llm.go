package generator

import "context"

// Prompt is one request to the model. MaxTokens of 0 means provider default.
type Prompt struct {
	System    string
	User      string
	MaxTokens int
}

// LLMClient abstracts the model endpoint so it can be swapped or mocked.
type LLMClient interface {
	Complete(ctx context.Context, prompt Prompt) (string, error)
}

// LLMSettings is the base configuration for concrete clients.
type LLMSettings struct {
	Provider string
	Model    string
	APIKey   string
	BaseURL  string
}

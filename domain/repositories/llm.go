package repositories

import "context"

// LargeLanguageModel abstracts any chat/LLM provider
type LargeLanguageModel interface {
	// Generate takes a user query and returns the model's reply under
	// the provider's configured assistant persona.
	Generate(ctx context.Context, query string) (string, error)
}

package port

import "context"

// LLM represents a text-generation model used for natural-language
// explanations. Calls may fail; orchestration applies fallbacks.
type LLM interface {
	// Generate generates text based on the prompt.
	Generate(ctx context.Context, prompt string) (string, error)

	// ModelName returns the name of the model.
	ModelName() string
}

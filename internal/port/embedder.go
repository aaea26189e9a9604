package port

import "context"

// Embedder generates vector embeddings for text. Course texts and student
// profiles must go through the same embedder so they share a vector space.
type Embedder interface {
	// Embed generates embeddings for the given texts.
	// Returns one vector per input text, in input order.
	Embed(ctx context.Context, texts []string) ([][]float32, error)

	// EmbedOne embeds a single text. Convenience over Embed.
	EmbedOne(ctx context.Context, text string) ([]float32, error)

	// Dimension returns the embedding vector dimension.
	Dimension() int

	// ModelName returns the name of the embedding model.
	ModelName() string
}

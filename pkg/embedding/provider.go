package embedding

import "context"

// EmbeddingProvider defines the interface for generating text embeddings.
// Implementations must honor ctx so callers can bound the call.
type EmbeddingProvider interface {
	Generate(ctx context.Context, text string, taskType string) (*EmbeddingResponse, error)
}

package contract

import (
	"context"

	"travel-assistant-be/internal/entity"

	"github.com/google/uuid"
)

// ScoredPolicyChunk wraps PolicyChunk with its similarity score
type ScoredPolicyChunk struct {
	Chunk      *entity.PolicyChunk
	Similarity float64 // 0.0 to 1.0 (1.0 = identical)
}

type PolicyChunkRepository interface {
	Create(ctx context.Context, chunk *entity.PolicyChunk) error
	CreateBulk(ctx context.Context, chunks []*entity.PolicyChunk) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteBySourceFile(ctx context.Context, sourceFile string) error
	Count(ctx context.Context) (int64, error)
	// SearchSimilarWithScore returns the nearest chunks with their cosine similarity
	SearchSimilarWithScore(ctx context.Context, embedding []float32, limit int) ([]*ScoredPolicyChunk, error)
}

package retrieval

import (
	"context"
	"fmt"

	"travel-assistant-be/internal/pkg/logger"
	"travel-assistant-be/internal/repository/contract"
	"travel-assistant-be/pkg/agent"
	"travel-assistant-be/pkg/embedding"
)

const taskTypeQuery = "RETRIEVAL_QUERY"

// Config controls candidate over-fetching and diversity selection.
type Config struct {
	// FetchMultiplier sizes the candidate pool: fetchK = k * FetchMultiplier.
	FetchMultiplier int
	// Lambda is the MMR relevance/diversity trade-off in [0,1].
	Lambda float64
}

func DefaultConfig() Config {
	return Config{
		FetchMultiplier: 5,
		Lambda:          0.6,
	}
}

// Index retrieves policy passages by vector similarity with MMR re-ranking
// over a pgvector-backed candidate pool.
type Index struct {
	repo     contract.PolicyChunkRepository
	embedder embedding.EmbeddingProvider
	logger   logger.ILogger
	cfg      Config
}

var _ agent.CorpusIndex = (*Index)(nil)

func NewIndex(
	repo contract.PolicyChunkRepository,
	embedder embedding.EmbeddingProvider,
	log logger.ILogger,
	cfg Config,
) *Index {
	if cfg.FetchMultiplier <= 0 {
		cfg.FetchMultiplier = DefaultConfig().FetchMultiplier
	}
	if cfg.Lambda <= 0 || cfg.Lambda > 1 {
		cfg.Lambda = DefaultConfig().Lambda
	}
	return &Index{
		repo:     repo,
		embedder: embedder,
		logger:   log,
		cfg:      cfg,
	}
}

// Retrieve embeds the query, over-fetches fetchK candidates ordered by cosine
// similarity and narrows them to k diverse passages with MMR.
func (ix *Index) Retrieve(ctx context.Context, query string, k int) ([]agent.Passage, error) {
	if k <= 0 {
		k = 5
	}

	res, err := ix.embedder.Generate(ctx, query, taskTypeQuery)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	queryVector := res.Embedding.Values

	fetchK := k * ix.cfg.FetchMultiplier
	scored, err := ix.repo.SearchSimilarWithScore(ctx, queryVector, fetchK)
	if err != nil {
		return nil, fmt.Errorf("similarity search: %w", err)
	}
	if len(scored) == 0 {
		return nil, nil
	}

	vectors := make([][]float32, len(scored))
	relevance := make([]float64, len(scored))
	for i, s := range scored {
		vectors[i] = s.Chunk.Embedding
		relevance[i] = s.Similarity
	}

	picked := SelectMMR(vectors, relevance, k, ix.cfg.Lambda)

	passages := make([]agent.Passage, 0, len(picked))
	for _, i := range picked {
		c := scored[i].Chunk
		passages = append(passages, agent.Passage{
			Text:    c.Content,
			Page:    c.Page,
			Section: c.Section,
		})
	}

	ix.logger.Debug("Retrieval", "Passages selected", map[string]interface{}{
		"candidates": len(scored),
		"selected":   len(passages),
	})
	return passages, nil
}

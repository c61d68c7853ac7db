package implementation

import (
	"context"

	"travel-assistant-be/internal/entity"
	"travel-assistant-be/internal/mapper"
	"travel-assistant-be/internal/model"
	"travel-assistant-be/internal/repository/contract"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

type PolicyChunkRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.PolicyChunkMapper
}

func NewPolicyChunkRepository(db *gorm.DB) contract.PolicyChunkRepository {
	return &PolicyChunkRepositoryImpl{
		db:     db,
		mapper: mapper.NewPolicyChunkMapper(),
	}
}

func (r *PolicyChunkRepositoryImpl) Create(ctx context.Context, chunk *entity.PolicyChunk) error {
	m := r.mapper.ToModel(chunk)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*chunk = *r.mapper.ToEntity(m)
	return nil
}

func (r *PolicyChunkRepositoryImpl) CreateBulk(ctx context.Context, chunks []*entity.PolicyChunk) error {
	if len(chunks) == 0 {
		return nil
	}

	models := r.mapper.ToModels(chunks)
	if err := r.db.WithContext(ctx).Create(models).Error; err != nil {
		return err
	}

	// Update IDs back to entities
	for i, m := range models {
		*chunks[i] = *r.mapper.ToEntity(m)
	}
	return nil
}

func (r *PolicyChunkRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.PolicyChunk{}, id).Error
}

func (r *PolicyChunkRepositoryImpl) DeleteBySourceFile(ctx context.Context, sourceFile string) error {
	return r.db.WithContext(ctx).Where("source_file = ?", sourceFile).Delete(&model.PolicyChunk{}).Error
}

func (r *PolicyChunkRepositoryImpl) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.PolicyChunk{}).Count(&count).Error
	return count, err
}

// SearchSimilarWithScore returns the nearest chunks with cosine similarity.
// Cosine distance in pgvector is 1 - cosine_similarity, so we compute
// 1 - (embedding <=> query_vector) to get the similarity back.
func (r *PolicyChunkRepositoryImpl) SearchSimilarWithScore(ctx context.Context, embedding []float32, limit int) ([]*contract.ScoredPolicyChunk, error) {
	if limit <= 0 {
		limit = 5
	}

	type result struct {
		model.PolicyChunk
		Similarity float64
	}
	var results []result

	queryVector := pgvector.NewVector(embedding)

	err := r.db.WithContext(ctx).
		Table("policy_chunks").
		Select("policy_chunks.*, 1 - (embedding <=> ?) as similarity", queryVector).
		Order("similarity DESC").
		Limit(limit).
		Scan(&results).Error

	if err != nil {
		return nil, err
	}

	scored := make([]*contract.ScoredPolicyChunk, len(results))
	for i, res := range results {
		scored[i] = &contract.ScoredPolicyChunk{
			Chunk:      r.mapper.ToEntity(&res.PolicyChunk),
			Similarity: res.Similarity,
		}
	}
	return scored, nil
}

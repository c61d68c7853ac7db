package mapper

import (
	"encoding/json"
	"time"

	"travel-assistant-be/internal/entity"
	"travel-assistant-be/internal/model"

	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
)

type PolicyChunkMapper struct{}

func NewPolicyChunkMapper() *PolicyChunkMapper {
	return &PolicyChunkMapper{}
}

func (m *PolicyChunkMapper) ToEntity(e *model.PolicyChunk) *entity.PolicyChunk {
	if e == nil {
		return nil
	}

	var updatedAt *time.Time
	if !e.UpdatedAt.IsZero() {
		t := e.UpdatedAt
		updatedAt = &t
	}

	var metadata map[string]interface{}
	if len(e.Metadata) > 0 {
		_ = json.Unmarshal(e.Metadata, &metadata)
	}

	return &entity.PolicyChunk{
		Id:         e.Id,
		Content:    e.Content,
		Embedding:  e.Embedding.Slice(),
		SourceFile: e.SourceFile,
		Page:       e.Page,
		Section:    e.Section,
		ChunkIndex: e.ChunkIndex,
		Metadata:   metadata,
		CreatedAt:  e.CreatedAt,
		UpdatedAt:  updatedAt,
	}
}

func (m *PolicyChunkMapper) ToModel(e *entity.PolicyChunk) *model.PolicyChunk {
	if e == nil {
		return nil
	}

	var updatedAt time.Time
	if e.UpdatedAt != nil {
		updatedAt = *e.UpdatedAt
	}

	var metadata datatypes.JSON
	if e.Metadata != nil {
		if raw, err := json.Marshal(e.Metadata); err == nil {
			metadata = raw
		}
	}

	return &model.PolicyChunk{
		Id:         e.Id,
		Content:    e.Content,
		Embedding:  pgvector.NewVector(e.Embedding),
		SourceFile: e.SourceFile,
		Page:       e.Page,
		Section:    e.Section,
		ChunkIndex: e.ChunkIndex,
		Metadata:   metadata,
		CreatedAt:  e.CreatedAt,
		UpdatedAt:  updatedAt,
	}
}

func (m *PolicyChunkMapper) ToEntities(chunks []*model.PolicyChunk) []*entity.PolicyChunk {
	entities := make([]*entity.PolicyChunk, len(chunks))
	for i, c := range chunks {
		entities[i] = m.ToEntity(c)
	}
	return entities
}

func (m *PolicyChunkMapper) ToModels(chunks []*entity.PolicyChunk) []*model.PolicyChunk {
	models := make([]*model.PolicyChunk, len(chunks))
	for i, c := range chunks {
		models[i] = m.ToModel(c)
	}
	return models
}

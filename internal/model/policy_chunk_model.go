package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
)

type PolicyChunk struct {
	Id         uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Content    string          `gorm:"type:text"`
	Embedding  pgvector.Vector `gorm:"type:vector(768)"` // Gemini text-embedding-004 uses 768 dimensions
	SourceFile string          `gorm:"index"`
	Page       int             `gorm:"index"`
	Section    string
	ChunkIndex int            `gorm:"default:0"` // 0-based index for ordering
	Metadata   datatypes.JSON // Extra per-chunk attributes from the ingestion pipeline
	CreatedAt  time.Time      `gorm:"autoCreateTime"`
	UpdatedAt  time.Time      `gorm:"autoUpdateTime"`
}

func (PolicyChunk) TableName() string {
	return "policy_chunks"
}

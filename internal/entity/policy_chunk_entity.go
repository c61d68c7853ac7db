package entity

import (
	"time"

	"github.com/google/uuid"
)

type PolicyChunk struct {
	Id         uuid.UUID `gorm:"type:uuid;primaryKey"`
	Content    string
	Embedding  []float32
	SourceFile string
	Page       int
	Section    string
	ChunkIndex int
	Metadata   map[string]interface{}
	CreatedAt  time.Time
	UpdatedAt  *time.Time
}

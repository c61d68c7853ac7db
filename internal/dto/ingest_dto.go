package dto

type IngestDocumentRequest struct {
	SourceFile string `json:"source_file" validate:"required,min=1,max=512"`
	Content    string `json:"content" validate:"required,min=1"`
	Page       int    `json:"page" validate:"gte=0"`
	Section    string `json:"section" validate:"max=256"`
}

type IngestDocumentResponse struct {
	SourceFile string `json:"source_file"`
	ChunkCount int    `json:"chunk_count"`
}

// PublishEmbedChunkMessage is the payload queued per chunk for the
// embedding consumer.
type PublishEmbedChunkMessage struct {
	SourceFile string `json:"source_file"`
	Content    string `json:"content"`
	Page       int    `json:"page"`
	Section    string `json:"section"`
	ChunkIndex int    `json:"chunk_index"`
}

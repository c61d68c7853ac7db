package service

import (
	"context"
	"errors"
	"time"

	"travel-assistant-be/internal/dto"
	"travel-assistant-be/internal/pkg/logger"
	"travel-assistant-be/pkg/events"
	pktNats "travel-assistant-be/pkg/nats"
	"travel-assistant-be/pkg/utils"
)

// ErrIngestionUnavailable signals that no embedding consumer is running, so
// queued chunks would never be stored.
var ErrIngestionUnavailable = errors.New("ingestion unavailable: no storage backend")

type IIngestionService interface {
	IngestDocument(ctx context.Context, request *dto.IngestDocumentRequest) (*dto.IngestDocumentResponse, error)
}

type ingestionService struct {
	publisher    IPublisherService
	natsPub      *pktNats.Publisher // nil when NATS is down
	logger       logger.ILogger
	chunkSize    int
	chunkOverlap int
	storageReady bool
}

func NewIngestionService(
	publisher IPublisherService,
	natsPub *pktNats.Publisher,
	log logger.ILogger,
	chunkSize int,
	chunkOverlap int,
	storageReady bool,
) IIngestionService {
	return &ingestionService{
		publisher:    publisher,
		natsPub:      natsPub,
		logger:       log,
		chunkSize:    chunkSize,
		chunkOverlap: chunkOverlap,
		storageReady: storageReady,
	}
}

// IngestDocument splits a policy document page into chunks and queues each
// for embedding. Embedding happens asynchronously in the consumer, so the
// caller returns fast even for large documents.
func (is *ingestionService) IngestDocument(ctx context.Context, request *dto.IngestDocumentRequest) (*dto.IngestDocumentResponse, error) {
	if !is.storageReady {
		is.logger.Warn("IngestionService", "Ingestion rejected, storage unavailable", map[string]interface{}{
			"source_file": request.SourceFile,
		})
		return nil, ErrIngestionUnavailable
	}

	chunks := utils.SplitText(request.Content, is.chunkSize, is.chunkOverlap)

	for i, chunk := range chunks {
		err := is.publisher.PublishEmbedChunk(&dto.PublishEmbedChunkMessage{
			SourceFile: request.SourceFile,
			Content:    chunk,
			Page:       request.Page,
			Section:    request.Section,
			ChunkIndex: i,
		})
		if err != nil {
			return nil, err
		}
	}

	is.logger.Info("IngestionService", "Document queued for embedding", map[string]interface{}{
		"source_file": request.SourceFile,
		"page":        request.Page,
		"chunks":      len(chunks),
	})

	if is.natsPub != nil {
		go func() {
			nctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := is.natsPub.Publish(nctx, events.NewDocumentIngested(request.SourceFile, len(chunks))); err != nil {
				is.logger.Warn("IngestionService", "Failed to publish ingest event", map[string]interface{}{
					"source_file": request.SourceFile,
					"error":       err.Error(),
				})
			}
		}()
	}

	return &dto.IngestDocumentResponse{
		SourceFile: request.SourceFile,
		ChunkCount: len(chunks),
	}, nil
}

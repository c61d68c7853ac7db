package service

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"travel-assistant-be/internal/dto"
	"travel-assistant-be/internal/entity"
	"travel-assistant-be/internal/repository/contract"
	"travel-assistant-be/pkg/embedding"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	pubSub            *gochannel.GoChannel
	topicName         string
	chunkRepo         contract.PolicyChunkRepository
	embeddingProvider embedding.EmbeddingProvider
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	chunkRepo contract.PolicyChunkRepository,
	embeddingProvider embedding.EmbeddingProvider,
) IConsumerService {
	return &consumerService{
		pubSub:            pubSub,
		topicName:         topicName,
		chunkRepo:         chunkRepo,
		embeddingProvider: embeddingProvider,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.PublishEmbedChunkMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		log.Printf("[ERROR] Failed to unmarshal embed message: %v", err)
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	res, err := cs.embeddingProvider.Generate(ctx, payload.Content, "RETRIEVAL_DOCUMENT")
	if err != nil {
		log.Printf("[ERROR] Failed to embed chunk %d of %s: %v", payload.ChunkIndex, payload.SourceFile, err)
		msg.Nack() // Nack for retriable errors
		return
	}

	chunk := &entity.PolicyChunk{
		Id:         uuid.New(),
		Content:    payload.Content,
		Embedding:  res.Embedding.Values,
		SourceFile: payload.SourceFile,
		Page:       payload.Page,
		Section:    payload.Section,
		ChunkIndex: payload.ChunkIndex,
		CreatedAt:  time.Now(),
	}

	if err := cs.chunkRepo.Create(ctx, chunk); err != nil {
		log.Printf("[ERROR] Failed to store chunk %d of %s: %v", payload.ChunkIndex, payload.SourceFile, err)
		msg.Nack()
		return
	}

	log.Printf("[INFO] Stored embedded chunk %d of %s (page %d)", payload.ChunkIndex, payload.SourceFile, payload.Page)
	msg.Ack()
}

package thread

import (
	"context"

	"travel-assistant-be/pkg/llm"
)

// Store persists conversation history per thread. A missing thread loads as
// an empty history, never an error.
type Store interface {
	Load(ctx context.Context, threadID string) ([]llm.Message, error)
	Save(ctx context.Context, threadID string, history []llm.Message) error
	Healthy(ctx context.Context) bool
}

package thread

import (
	"context"
	"time"

	"travel-assistant-be/pkg/llm"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryStore is the in-process fallback when Redis is unreachable. History
// does not survive restarts and is not shared across instances.
type MemoryStore struct {
	cache *gocache.Cache
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		cache: gocache.New(historyTTL, time.Hour),
	}
}

func (s *MemoryStore) Load(_ context.Context, threadID string) ([]llm.Message, error) {
	v, found := s.cache.Get(threadID)
	if !found {
		return nil, nil
	}
	history, ok := v.([]llm.Message)
	if !ok {
		return nil, nil
	}
	return history, nil
}

func (s *MemoryStore) Save(_ context.Context, threadID string, history []llm.Message) error {
	s.cache.Set(threadID, history, gocache.DefaultExpiration)
	return nil
}

func (s *MemoryStore) Healthy(_ context.Context) bool {
	return false
}

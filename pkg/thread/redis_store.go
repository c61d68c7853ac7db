package thread

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"travel-assistant-be/pkg/llm"

	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix  = "chat:thread:"
	historyTTL = 24 * time.Hour
)

// RedisStore keeps per-thread history as a JSON blob with a sliding TTL.
type RedisStore struct {
	client *redis.Client
}

var _ Store = (*RedisStore)(nil)

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Load(ctx context.Context, threadID string) ([]llm.Message, error) {
	raw, err := s.client.Get(ctx, keyPrefix+threadID).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var history []llm.Message
	if err := json.Unmarshal(raw, &history); err != nil {
		return nil, err
	}
	return history, nil
}

func (s *RedisStore) Save(ctx context.Context, threadID string, history []llm.Message) error {
	raw, err := json.Marshal(history)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, keyPrefix+threadID, raw, historyTTL).Err()
}

func (s *RedisStore) Healthy(ctx context.Context) bool {
	return s.client.Ping(ctx).Err() == nil
}

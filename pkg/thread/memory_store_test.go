package thread

import (
	"context"
	"testing"

	"travel-assistant-be/pkg/llm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	history := []llm.Message{
		{Role: "user", Content: "oi"},
		{Role: "assistant", Content: "olá, como posso ajudar?"},
	}
	require.NoError(t, s.Save(ctx, "session-1", history))

	got, err := s.Load(ctx, "session-1")
	require.NoError(t, err)
	assert.Equal(t, history, got)
}

func TestMemoryStoreMissingThread(t *testing.T) {
	s := NewMemoryStore()

	got, err := s.Load(context.Background(), "nope")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestMemoryStoreIsolatesThreads(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, "a", []llm.Message{{Role: "user", Content: "a"}}))
	require.NoError(t, s.Save(ctx, "b", []llm.Message{{Role: "user", Content: "b"}}))

	a, _ := s.Load(ctx, "a")
	b, _ := s.Load(ctx, "b")
	assert.Equal(t, "a", a[0].Content)
	assert.Equal(t, "b", b[0].Content)
}

func TestMemoryStoreReportsUnhealthy(t *testing.T) {
	// The in-memory fallback is not shared storage, so health stays false
	// and the service reports degraded.
	s := NewMemoryStore()
	assert.False(t, s.Healthy(context.Background()))
}

package service

import (
	"context"
	"errors"
	"testing"

	"travel-assistant-be/internal/dto"
	"travel-assistant-be/pkg/agent"
	"travel-assistant-be/pkg/thread"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (nopLogger) Debug(string, string, map[string]interface{}) {}
func (nopLogger) Info(string, string, map[string]interface{})  {}
func (nopLogger) Warn(string, string, map[string]interface{})  {}
func (nopLogger) Error(string, string, map[string]interface{}) {}
func (nopLogger) Sync() error                                  { return nil }

type stubRunner struct {
	answer string
	err    error
}

func (r *stubRunner) complete(state *agent.ConversationState) {
	state.Route = agent.RouteFAQ
	state.FinalAnswer = r.answer
}

func (r *stubRunner) Run(_ context.Context, state *agent.ConversationState) error {
	if r.err != nil {
		return r.err
	}
	r.complete(state)
	return nil
}

func (r *stubRunner) RunStream(_ context.Context, state *agent.ConversationState) <-chan agent.Event {
	ch := make(chan agent.Event, 4)
	go func() {
		defer close(ch)
		if r.err != nil {
			ch <- agent.Event{Type: agent.EventError, Err: r.err}
			return
		}
		ch <- agent.Event{Type: agent.EventToken, Step: agent.StepFAQ, Token: r.answer}
		r.complete(state)
		ch <- agent.Event{Type: agent.EventDone, State: state}
	}()
	return ch
}

func newTestChatService(runner agent.Runner, store thread.Store) IChatService {
	return NewChatService(runner, store, nil, nil, nopLogger{}, "test")
}

func TestSendChatPersistsHistory(t *testing.T) {
	store := thread.NewMemoryStore()
	svc := newTestChatService(&stubRunner{answer: "resposta"}, store)

	res, err := svc.SendChat(context.Background(), &dto.ChatRequest{SessionId: "s1", Message: "oi"})
	require.NoError(t, err)
	assert.Equal(t, "resposta", res.Response)
	assert.Equal(t, "faq", res.AgentUsed)
	assert.Equal(t, "s1", res.SessionId)

	history, err := store.Load(context.Background(), "s1")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "user", history[0].Role)
	assert.Equal(t, "oi", history[0].Content)
	assert.Equal(t, "assistant", history[1].Role)
	assert.Equal(t, "resposta", history[1].Content)
}

func TestSendChatAccumulatesTurns(t *testing.T) {
	store := thread.NewMemoryStore()
	svc := newTestChatService(&stubRunner{answer: "resposta"}, store)

	_, err := svc.SendChat(context.Background(), &dto.ChatRequest{SessionId: "s1", Message: "primeira"})
	require.NoError(t, err)
	_, err = svc.SendChat(context.Background(), &dto.ChatRequest{SessionId: "s1", Message: "segunda"})
	require.NoError(t, err)

	history, _ := store.Load(context.Background(), "s1")
	require.Len(t, history, 4)
	assert.Equal(t, "segunda", history[2].Content)
}

func TestSendChatErrorDoesNotPersist(t *testing.T) {
	store := thread.NewMemoryStore()
	svc := newTestChatService(&stubRunner{err: errors.New("model down")}, store)

	_, err := svc.SendChat(context.Background(), &dto.ChatRequest{SessionId: "s1", Message: "oi"})
	require.Error(t, err)

	history, _ := store.Load(context.Background(), "s1")
	assert.Empty(t, history)
}

func TestStreamChatPersistsOnDone(t *testing.T) {
	store := thread.NewMemoryStore()
	svc := newTestChatService(&stubRunner{answer: "resposta"}, store)

	var sawToken, sawDone bool
	for ev := range svc.StreamChat(context.Background(), &dto.ChatRequest{SessionId: "s1", Message: "oi"}) {
		switch ev.Type {
		case agent.EventToken:
			sawToken = true
		case agent.EventDone:
			sawDone = true
		}
	}
	assert.True(t, sawToken)
	assert.True(t, sawDone)

	history, _ := store.Load(context.Background(), "s1")
	require.Len(t, history, 2)
}

func TestStreamChatErrorDoesNotPersist(t *testing.T) {
	store := thread.NewMemoryStore()
	svc := newTestChatService(&stubRunner{err: errors.New("model down")}, store)

	var sawError bool
	for ev := range svc.StreamChat(context.Background(), &dto.ChatRequest{SessionId: "s1", Message: "oi"}) {
		if ev.Type == agent.EventError {
			sawError = true
		}
	}
	assert.True(t, sawError)

	history, _ := store.Load(context.Background(), "s1")
	assert.Empty(t, history)
}

func TestThreadLocksReapedAfterTurns(t *testing.T) {
	store := thread.NewMemoryStore()
	svc := newTestChatService(&stubRunner{answer: "resposta"}, store).(*chatService)

	for _, session := range []string{"s1", "s2", "s3"} {
		_, err := svc.SendChat(context.Background(), &dto.ChatRequest{SessionId: session, Message: "oi"})
		require.NoError(t, err)
	}

	for range svc.StreamChat(context.Background(), &dto.ChatRequest{SessionId: "s4", Message: "oi"}) {
	}

	// No turn is in flight, so no lock entry should survive.
	svc.mu.Lock()
	defer svc.mu.Unlock()
	assert.Empty(t, svc.threadLocks)
}

func TestHealthDegradedWithoutCorpusAndRedis(t *testing.T) {
	svc := newTestChatService(&stubRunner{answer: "x"}, thread.NewMemoryStore())

	h := svc.Health(context.Background())
	assert.Equal(t, "degraded", h.Status)
	assert.False(t, h.RedisConnected)
	assert.False(t, h.CorpusLoaded)
	assert.Equal(t, "test", h.Version)
}

package service

import (
	"context"
	"sync"
	"time"

	"travel-assistant-be/internal/dto"
	"travel-assistant-be/internal/pkg/logger"
	"travel-assistant-be/internal/repository/contract"
	"travel-assistant-be/pkg/agent"
	"travel-assistant-be/pkg/events"
	"travel-assistant-be/pkg/llm"
	pktNats "travel-assistant-be/pkg/nats"
	"travel-assistant-be/pkg/thread"
)

// IChatService defines the conversational API consumed by the controllers.
type IChatService interface {
	SendChat(ctx context.Context, request *dto.ChatRequest) (*dto.ChatResponse, error)
	StreamChat(ctx context.Context, request *dto.ChatRequest) <-chan agent.Event
	Health(ctx context.Context) *dto.HealthResponse
}

type chatService struct {
	runner    agent.Runner
	threads   thread.Store
	chunkRepo contract.PolicyChunkRepository // nil when the database is down
	natsPub   *pktNats.Publisher             // nil when NATS is down
	logger    logger.ILogger
	version   string

	// Per-thread locks serialize turns of the same session while leaving
	// different sessions fully concurrent. Entries are reference counted
	// and removed once no turn holds or waits on them.
	mu          sync.Mutex
	threadLocks map[string]*threadLock
}

type threadLock struct {
	mu   sync.Mutex
	refs int
}

func NewChatService(
	runner agent.Runner,
	threads thread.Store,
	chunkRepo contract.PolicyChunkRepository,
	natsPub *pktNats.Publisher,
	log logger.ILogger,
	version string,
) IChatService {
	return &chatService{
		runner:      runner,
		threads:     threads,
		chunkRepo:   chunkRepo,
		natsPub:     natsPub,
		logger:      log,
		version:     version,
		threadLocks: make(map[string]*threadLock),
	}
}

// lockThread acquires the session's lock and returns the release function.
func (cs *chatService) lockThread(threadID string) func() {
	cs.mu.Lock()
	l, ok := cs.threadLocks[threadID]
	if !ok {
		l = &threadLock{}
		cs.threadLocks[threadID] = l
	}
	l.refs++
	cs.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()

		cs.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(cs.threadLocks, threadID)
		}
		cs.mu.Unlock()
	}
}

// SendChat runs one blocking turn and persists the exchange on success.
func (cs *chatService) SendChat(ctx context.Context, request *dto.ChatRequest) (*dto.ChatResponse, error) {
	unlock := cs.lockThread(request.SessionId)
	defer unlock()

	state := agent.NewConversationState(request.SessionId, request.Message, cs.loadHistory(ctx, request.SessionId))

	if err := cs.runner.Run(ctx, state); err != nil {
		cs.logger.Error("ChatService", "Turn failed", map[string]interface{}{
			"thread_id": request.SessionId,
			"error":     err.Error(),
		})
		return nil, err
	}

	cs.persistTurn(ctx, state)
	cs.publishTurnCompleted(state)

	return cs.toResponse(state), nil
}

// StreamChat runs one streaming turn. The returned channel carries token
// events then a terminal Done or Error event. The exchange is persisted only
// when the turn reaches Done; a cancelled stream leaves history untouched.
func (cs *chatService) StreamChat(ctx context.Context, request *dto.ChatRequest) <-chan agent.Event {
	out := make(chan agent.Event)

	go func() {
		defer close(out)

		unlock := cs.lockThread(request.SessionId)
		defer unlock()

		state := agent.NewConversationState(request.SessionId, request.Message, cs.loadHistory(ctx, request.SessionId))

		for ev := range cs.runner.RunStream(ctx, state) {
			if ev.Type == agent.EventDone {
				cs.persistTurn(ctx, state)
				cs.publishTurnCompleted(state)
			}
			select {
			case out <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out
}

// Health reports the service's readiness to serve grounded answers.
func (cs *chatService) Health(ctx context.Context) *dto.HealthResponse {
	redisUp := cs.threads.Healthy(ctx)

	corpusLoaded := false
	if cs.chunkRepo != nil {
		if count, err := cs.chunkRepo.Count(ctx); err == nil && count > 0 {
			corpusLoaded = true
		}
	}

	status := "healthy"
	if !redisUp || !corpusLoaded {
		status = "degraded"
	}

	return &dto.HealthResponse{
		Status:         status,
		RedisConnected: redisUp,
		CorpusLoaded:   corpusLoaded,
		Version:        cs.version,
	}
}

// loadHistory fetches prior turns. Store failures degrade to an empty
// history so the turn still runs.
func (cs *chatService) loadHistory(ctx context.Context, threadID string) []llm.Message {
	history, err := cs.threads.Load(ctx, threadID)
	if err != nil {
		cs.logger.Warn("ChatService", "Failed to load thread history", map[string]interface{}{
			"thread_id": threadID,
			"error":     err.Error(),
		})
		return nil
	}
	return history
}

func (cs *chatService) persistTurn(ctx context.Context, state *agent.ConversationState) {
	history := append(state.History,
		llm.Message{Role: "user", Content: state.Query},
		llm.Message{Role: "assistant", Content: state.FinalAnswer},
	)
	if err := cs.threads.Save(ctx, state.ThreadID, history); err != nil {
		cs.logger.Warn("ChatService", "Failed to persist thread history", map[string]interface{}{
			"thread_id": state.ThreadID,
			"error":     err.Error(),
		})
	}
}

func (cs *chatService) publishTurnCompleted(state *agent.ConversationState) {
	if cs.natsPub == nil {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		ev := events.NewChatTurnCompleted(state.ThreadID, state.Route.Label(), len(state.Sources))
		if err := cs.natsPub.Publish(ctx, ev); err != nil {
			cs.logger.Warn("ChatService", "Failed to publish turn event", map[string]interface{}{
				"thread_id": state.ThreadID,
				"error":     err.Error(),
			})
		}
	}()
}

func (cs *chatService) toResponse(state *agent.ConversationState) *dto.ChatResponse {
	return ToChatResponse(state)
}

// ToChatResponse maps a completed turn onto the API response shape. Shared
// with the websocket handler, which builds the same payload for its terminal
// frame.
func ToChatResponse(state *agent.ConversationState) *dto.ChatResponse {
	sources := make([]dto.SourceResponse, len(state.Sources))
	for i, s := range state.Sources {
		sources[i] = dto.SourceResponse{
			Type:           string(s.Kind),
			Title:          s.Title,
			ContentPreview: s.ContentPreview,
			Url:            s.URL,
		}
	}

	return &dto.ChatResponse{
		SessionId: state.ThreadID,
		Response:  state.FinalAnswer,
		AgentUsed: state.Route.Label(),
		Sources:   sources,
		Timestamp: time.Now().UTC(),
	}
}

package events

import "time"

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "CHAT_TURN_COMPLETED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// BaseEvent helps embed common logic if needed,
// strictly creating valid implementations is preferred though.
type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// Event type codes emitted by this service.
const (
	TypeChatTurnCompleted = "CHAT_TURN_COMPLETED"
	TypeDocumentIngested  = "DOCUMENT_INGESTED"
)

// NewChatTurnCompleted builds the event published after a chat turn reaches
// its terminal state.
func NewChatTurnCompleted(threadID, route string, sourceCount int) Event {
	return BaseEvent{
		Type: TypeChatTurnCompleted,
		Data: map[string]interface{}{
			"thread_id":    threadID,
			"route":        route,
			"source_count": sourceCount,
		},
		OccurredAt: time.Now(),
	}
}

// NewDocumentIngested builds the event published after a policy document has
// been chunked and queued for embedding.
func NewDocumentIngested(sourceFile string, chunkCount int) Event {
	return BaseEvent{
		Type: TypeDocumentIngested,
		Data: map[string]interface{}{
			"source_file": sourceFile,
			"chunk_count": chunkCount,
		},
		OccurredAt: time.Now(),
	}
}

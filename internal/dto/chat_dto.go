package dto

import "time"

type ChatRequest struct {
	SessionId string `json:"session_id" validate:"required,min=1,max=128"`
	Message   string `json:"message" validate:"required,min=1,max=4096"`
}

type SourceResponse struct {
	Type           string  `json:"type"`
	Title          string  `json:"title"`
	ContentPreview string  `json:"content_preview"`
	Url            *string `json:"url"`
}

type ChatResponse struct {
	SessionId string           `json:"session_id"`
	Response  string           `json:"response"`
	AgentUsed string           `json:"agent_used"`
	Sources   []SourceResponse `json:"sources"`
	Timestamp time.Time        `json:"timestamp"`
}

// Stream frame types sent over the websocket.
const (
	StreamEventToken = "token"
	StreamEventDone  = "done"
	StreamEventError = "error"
)

type StreamTokenFrame struct {
	Type  string `json:"type"`
	Step  string `json:"step"`
	Token string `json:"token"`
}

type StreamDoneFrame struct {
	Type string        `json:"type"`
	Data *ChatResponse `json:"data"`
}

type StreamErrorFrame struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

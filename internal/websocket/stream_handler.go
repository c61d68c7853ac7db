package websocket

import (
	"context"
	"encoding/json"
	"time"

	"travel-assistant-be/internal/dto"
	"travel-assistant-be/internal/pkg/logger"
	"travel-assistant-be/internal/pkg/serverutils"
	"travel-assistant-be/internal/service"
	"travel-assistant-be/pkg/agent"

	"github.com/gofiber/websocket/v2"
)

const writeWait = 10 * time.Second

// StreamHandler serves one chat turn per websocket connection: the client
// sends a single request frame, the server streams token frames and closes
// after the terminal done (or error) frame.
type StreamHandler struct {
	chatService service.IChatService
	logger      logger.ILogger
}

func NewStreamHandler(chatService service.IChatService, log logger.ILogger) *StreamHandler {
	return &StreamHandler{
		chatService: chatService,
		logger:      log,
	}
}

func (h *StreamHandler) Handle(conn *websocket.Conn) {
	defer conn.Close()

	var req dto.ChatRequest
	if err := conn.ReadJSON(&req); err != nil {
		h.writeError(conn, "Invalid request")
		return
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		h.writeError(conn, "Invalid request")
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// The client never sends another data frame; this read loop only exists
	// to notice the connection going away and cancel the turn.
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for ev := range h.chatService.StreamChat(ctx, &req) {
		switch ev.Type {
		case agent.EventToken:
			if !h.writeJSON(conn, dto.StreamTokenFrame{
				Type:  dto.StreamEventToken,
				Step:  ev.Step,
				Token: ev.Token,
			}) {
				return
			}

		case agent.EventDone:
			h.writeJSON(conn, dto.StreamDoneFrame{
				Type: dto.StreamEventDone,
				Data: service.ToChatResponse(ev.State),
			})
			return

		case agent.EventError:
			h.logger.Error("StreamHandler", "Streaming turn failed", map[string]interface{}{
				"thread_id": req.SessionId,
				"error":     ev.Err.Error(),
			})
			h.writeError(conn, serverutils.GenericUnavailableMessage)
			return
		}
	}
}

func (h *StreamHandler) writeJSON(conn *websocket.Conn, frame interface{}) bool {
	raw, err := json.Marshal(frame)
	if err != nil {
		return false
	}
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteMessage(websocket.TextMessage, raw); err != nil {
		return false
	}
	return true
}

func (h *StreamHandler) writeError(conn *websocket.Conn, message string) {
	h.writeJSON(conn, dto.StreamErrorFrame{
		Type:    dto.StreamEventError,
		Message: message,
	})
}

package controller

import (
	"time"

	"travel-assistant-be/internal/dto"
	"travel-assistant-be/internal/pkg/serverutils"
	"travel-assistant-be/internal/service"
	ws "travel-assistant-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/websocket/v2"
)

type IChatController interface {
	RegisterRoutes(r fiber.Router)
	Send(ctx *fiber.Ctx) error
}

type chatController struct {
	chatService   service.IChatService
	streamHandler *ws.StreamHandler
}

func NewChatController(chatService service.IChatService, streamHandler *ws.StreamHandler) IChatController {
	return &chatController{
		chatService:   chatService,
		streamHandler: streamHandler,
	}
}

func (c *chatController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/chat/v1")

	rateLimit := limiter.New(limiter.Config{
		Max:        20,
		Expiration: time.Minute,
		LimitReached: func(ctx *fiber.Ctx) error {
			return ctx.Status(fiber.StatusTooManyRequests).
				JSON(serverutils.ErrorResponse("Muitas requisições. Tente novamente em instantes."))
		},
	})

	// The limit covers both the blocking and the streaming endpoint.
	h.Use(rateLimit)

	h.Post("", c.Send)

	h.Use("/stream", func(ctx *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(ctx) {
			return ctx.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	h.Get("/stream", websocket.New(c.streamHandler.Handle))
}

func (c *chatController) Send(ctx *fiber.Ctx) error {
	var req dto.ChatRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.chatService.SendChat(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(res)
}

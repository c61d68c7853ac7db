package controller

import (
	"travel-assistant-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IHealthController interface {
	RegisterRoutes(r fiber.Router)
	Check(ctx *fiber.Ctx) error
}

type healthController struct {
	chatService service.IChatService
}

func NewHealthController(chatService service.IChatService) IHealthController {
	return &healthController{
		chatService: chatService,
	}
}

func (c *healthController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/health/v1")
	h.Get("", c.Check)
}

func (c *healthController) Check(ctx *fiber.Ctx) error {
	return ctx.JSON(c.chatService.Health(ctx.Context()))
}

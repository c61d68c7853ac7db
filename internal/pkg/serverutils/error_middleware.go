package serverutils

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
)

// GenericUnavailableMessage is the only error text exposed to callers when
// an internal step fails. Internal detail stays in the logs.
const GenericUnavailableMessage = "Serviço temporariamente indisponível"

// ErrorHandlerMiddleware converts errors bubbling out of handlers into
// JSON responses. Validation errors become 400; explicit fiber errors keep
// their status; everything else is masked as a 503.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		var verr *ValidationError
		if errors.As(err, &verr) {
			return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Invalid request",
				"fields":  verr.Fields,
			})
		}

		var ferr *fiber.Error
		if errors.As(err, &ferr) {
			return ctx.Status(ferr.Code).JSON(ErrorResponse(ferr.Message))
		}

		log.Printf("[ERROR] Unhandled handler error: %v", err)
		return ctx.Status(fiber.StatusServiceUnavailable).JSON(ErrorResponse(GenericUnavailableMessage))
	}
}

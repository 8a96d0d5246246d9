package serverutils

import (
	"errors"
	"log"
	"strconv"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandlerMiddleware converts errors bubbling out of handlers into the
// standard response envelope. AppError keeps its status and user-safe
// message; anything else is logged and masked as a generic failure.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		var appErr *AppError
		if errors.As(err, &appErr) {
			if appErr.Internal != nil {
				log.Printf("[ERROR] %s %s: %v", ctx.Method(), ctx.Path(), appErr.Internal)
			}
			if appErr.RetryAfter > 0 {
				ctx.Set("Retry-After", strconv.Itoa(appErr.RetryAfter))
			}
			return ctx.Status(appErr.Status).JSON(ErrorResponse(appErr.Message))
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return ctx.Status(fiberErr.Code).JSON(ErrorResponse(fiberErr.Message))
		}

		log.Printf("[ERROR] %s %s: %v", ctx.Method(), ctx.Path(), err)
		return ctx.Status(fiber.StatusInternalServerError).
			JSON(ErrorResponse("システムエラーが発生しました。しばらくお待ちください。"))
	}
}

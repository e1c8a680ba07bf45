package serverutils

import (
	"errors"

	"ai-chatbot/internal/constant"
	"ai-chatbot/internal/dto"
	"ai-chatbot/internal/pkg/logger"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandlerMiddleware renders errors returned by downstream handlers as
// ErrorResponse JSON.
func ErrorHandlerMiddleware(log logger.ILogger) fiber.Handler {
	render := ErrorHandler(log)
	return func(ctx *fiber.Ctx) error {
		if err := ctx.Next(); err != nil {
			return render(ctx, err)
		}
		return nil
	}
}

// ErrorHandler is the fiber.Config.ErrorHandler counterpart of
// ErrorHandlerMiddleware, for errors raised outside the middleware.
func ErrorHandler(log logger.ILogger) fiber.ErrorHandler {
	return func(ctx *fiber.Ctx, err error) error {
		var appErr *AppError
		if errors.As(err, &appErr) {
			if appErr.Code >= fiber.StatusInternalServerError {
				log.Error("HTTP", appErr.Message, map[string]interface{}{
					"path":       ctx.Path(),
					"request_id": ctx.Locals("requestid"),
					"error":      appErr.Error(),
				})
			}
			return ctx.Status(appErr.Code).JSON(dto.ErrorResponse{
				Error:   appErr.Message,
				Details: appErr.Details,
			})
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return ctx.Status(fiberErr.Code).JSON(dto.ErrorResponse{Error: fiberErr.Message})
		}

		// Unknown errors (including recovered panics) never reach the caller verbatim.
		log.Error("HTTP", "Unhandled error", map[string]interface{}{
			"path":       ctx.Path(),
			"request_id": ctx.Locals("requestid"),
			"error":      err.Error(),
		})
		return ctx.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: constant.ErrInternalServer,
		})
	}
}

package routes

import (
	"errors"

	"storefront/apperrors"
	"storefront/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// ErrorHandler renders application errors as {"error": ..., "fields": ...}.
// Server-side failures are logged and answered with a generic message.
func ErrorHandler(log *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		if appErr, ok := apperrors.As(err); ok {
			if appErr.Code >= fiber.StatusInternalServerError {
				logFailure(log, c, err)
				return c.Status(appErr.Code).JSON(fiber.Map{"error": "Internal server error"})
			}
			body := fiber.Map{"error": appErr.Message}
			if len(appErr.Fields) > 0 {
				body["fields"] = appErr.Fields
			}
			return c.Status(appErr.Code).JSON(body)
		}

		var fe *fiber.Error
		if errors.As(err, &fe) {
			return c.Status(fe.Code).JSON(fiber.Map{"error": fe.Message})
		}

		logFailure(log, c, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal server error"})
	}
}

func logFailure(log *zap.Logger, c *fiber.Ctx, err error) {
	log.Error("Request failed",
		zap.String("request_id", logger.RequestID(c)),
		zap.String("method", c.Method()),
		zap.String("path", c.Path()),
		zap.Error(err),
	)
}

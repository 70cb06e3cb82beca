package middleware

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// GetLoggerFromContext retrieves the trace-aware logger injected by
// TraceLoggerMiddleware, falling back to the given logger when the
// middleware is not installed.
func GetLoggerFromContext(c *fiber.Ctx, fallback *zap.Logger) *zap.Logger {
	if logger, ok := c.Locals("logger").(*zap.Logger); ok {
		return logger
	}

	return fallback
}

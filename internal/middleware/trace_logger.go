package middleware

import (
	"github.com/shelfclub/bookclub-backend/internal/observability"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// TraceLoggerMiddleware injects trace ID and span ID into logger for trace-log correlation
func TraceLoggerMiddleware(logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		traceLogger := observability.WithContext(c.UserContext(), logger)

		// Store trace-aware logger in context for use in handlers
		c.Locals("logger", traceLogger)

		return c.Next()
	}
}

package server

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spigell/job-matcher/internal/logger"
)

const (
	headerRequestID = "X-Request-ID"
	headerUserID    = "X-User-ID"

	localLogger = "logger"
)

// requestLogger assigns a request id and writes one log line per request.
func requestLogger(base *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		started := time.Now()

		id := c.Get(headerRequestID)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		c.Set(headerRequestID, id)

		log := logger.WithRequest(base, id, c.Get(headerUserID))
		c.Locals(localLogger, log)

		err := c.Next()
		if err != nil {
			// Let the error handler set the final status before logging it.
			if herr := c.App().ErrorHandler(c, err); herr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		log.Info("request",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", c.Response().StatusCode()),
			zap.Duration("latency", time.Since(started)),
		)

		return nil
	}
}

func requestLog(c *fiber.Ctx, fallback *zap.Logger) *zap.Logger {
	if log, ok := c.Locals(localLogger).(*zap.Logger); ok && log != nil {
		return log
	}
	return fallback
}

package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	headerRequestID = "X-Request-ID"
	localLogger     = "logger"
)

// RequestLogger asigna un request id y registra método, ruta, estado y latencia de cada petición.
// El sublogger queda en c.Locals para los handlers.
func RequestLogger(base zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		requestID := c.Get(headerRequestID)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(headerRequestID, requestID)
		log := base.With().Str("request_id", requestID).Logger()
		c.Locals(localLogger, log)

		start := time.Now()
		err := c.Next()
		if err != nil {
			// Deja que el ErrorHandler escriba la respuesta antes de leer el estado.
			if handlerErr := c.App().ErrorHandler(c, err); handlerErr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		status := c.Response().StatusCode()
		event := log.Info()
		if status >= fiber.StatusInternalServerError {
			event = log.Error()
		} else if status >= fiber.StatusBadRequest {
			event = log.Warn()
		}
		event.
			Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Int64("user_id", GetUserID(c)).
			Msg("http request")
		return nil
	}
}

// loggerFrom devuelve el logger de la petición o uno nulo.
func loggerFrom(c *fiber.Ctx) zerolog.Logger {
	if log, ok := c.Locals(localLogger).(zerolog.Logger); ok {
		return log
	}
	return zerolog.Nop()
}

package http

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/jhoicas/geststore-api/pkg/logger"
	"github.com/jhoicas/geststore-api/pkg/metrics"
)

const (
	HeaderRequestID = "X-Request-ID"
	localLogger     = "logger"
)

// RequestLogger asigna un request id, deja un logger con ese id en c.Locals y registra
// método, ruta, status y duración de cada petición. También alimenta la latencia en Prometheus.
func RequestLogger(log *logger.Logger, rec *metrics.Recorder) fiber.Handler {
	if log == nil {
		log = logger.Nop()
	}
	base := log.Component("http")
	return func(c *fiber.Ctx) error {
		start := time.Now()
		requestID := c.Get(HeaderRequestID)
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set(HeaderRequestID, requestID)
		reqLog := base.WithField("request_id", requestID)
		c.Locals(localLogger, reqLog)

		err := c.Next()
		if err != nil {
			// El ErrorHandler escribe la respuesta; se invoca aquí para registrar el status final.
			if herr := c.App().ErrorHandler(c, err); herr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		status := c.Response().StatusCode()
		elapsed := time.Since(start)
		route := c.Route().Path
		rec.ObserveRequest(c.Method(), route, strconv.Itoa(status), elapsed)

		ev := reqLog.Info()
		if status >= fiber.StatusInternalServerError {
			ev = reqLog.Error()
		} else if status >= fiber.StatusBadRequest {
			ev = reqLog.Warn()
		}
		ev.Str("method", c.Method()).
			Str("path", c.Path()).
			Str("route", route).
			Int("status", status).
			Dur("duration", elapsed).
			Str("user_id", GetUserID(c)).
			Msg("request")
		return nil
	}
}

// requestLogger logger de la petición (con request_id) o uno nulo fuera de RequestLogger.
func requestLogger(c *fiber.Ctx) *logger.Logger {
	if l, ok := c.Locals(localLogger).(*logger.Logger); ok && l != nil {
		return l
	}
	return logger.Nop()
}

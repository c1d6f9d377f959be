package http

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/geststore-api/pkg/logger"
	pkgredis "github.com/jhoicas/geststore-api/pkg/redis"
)

// HeaderIdempotencyKey cabecera opcional en POSTs que mueven stock.
const (
	HeaderIdempotencyKey = "Idempotency-Key"
	HeaderReplayed       = "Idempotent-Replayed"
)

const pendingRecord = "pending"

type idempotencyRecord struct {
	Status      int    `json:"status"`
	Body        string `json:"body"`
	ContentType string `json:"contentType,omitempty"`
	RequestHash string `json:"requestHash"`
}

// Idempotency guarda la primera respuesta por (usuario, ruta, clave) durante ttl y la repite
// para la misma petición. La misma clave con otra petición responde 409 IDEMPOTENCY_KEY_REUSED.
// Sin store o sin cabecera la petición pasa tal cual.
func Idempotency(store pkgredis.IdempotencyStore, ttl time.Duration, log *logger.Logger) fiber.Handler {
	if log == nil {
		log = logger.Nop()
	}
	log = log.Component("idempotency")
	return func(c *fiber.Ctx) error {
		idempotencyKey := strings.TrimSpace(c.Get(HeaderIdempotencyKey))
		if store == nil || idempotencyKey == "" {
			return c.Next()
		}
		ctx := c.UserContext()
		key := store.IdempotencyKey(GetUserID(c)+"|"+c.Method()+"|"+c.Path(), idempotencyKey)
		requestHash := hashRequest(c)

		reserved, err := store.SetNX(ctx, key, pendingRecord, ttl)
		if err != nil {
			// Redis caído: se atiende sin garantía de idempotencia.
			log.Error().Err(err).Str("key", key).Msg("reservar clave de idempotencia")
			return c.Next()
		}
		if !reserved {
			return replay(c, store, key, requestHash, log)
		}

		if err := c.Next(); err != nil {
			_ = store.Del(ctx, key)
			return err
		}
		status := c.Response().StatusCode()
		if status >= fiber.StatusInternalServerError {
			_ = store.Del(ctx, key)
			return nil
		}
		payload, err := json.Marshal(idempotencyRecord{
			Status:      status,
			Body:        base64.StdEncoding.EncodeToString(c.Response().Body()),
			ContentType: string(c.Response().Header.ContentType()),
			RequestHash: requestHash,
		})
		if err != nil {
			log.Error().Err(err).Msg("serializar respuesta idempotente")
			_ = store.Del(ctx, key)
			return nil
		}
		if err := store.Set(ctx, key, string(payload), ttl); err != nil {
			log.Error().Err(err).Str("key", key).Msg("guardar respuesta idempotente")
		}
		return nil
	}
}

func replay(c *fiber.Ctx, store pkgredis.IdempotencyStore, key, requestHash string, log *logger.Logger) error {
	stored, err := store.Get(c.UserContext(), key)
	if err != nil && !errors.Is(err, pkgredis.Nil) {
		log.Error().Err(err).Str("key", key).Msg("leer clave de idempotencia")
		return fail(c, fiber.StatusServiceUnavailable, CodeInternal, "no se pudo verificar la idempotencia")
	}
	if stored == "" || stored == pendingRecord {
		return fail(c, fiber.StatusConflict, CodeIdempotencyInFlight, "otra petición con la misma Idempotency-Key está en curso")
	}
	var record idempotencyRecord
	if err := json.Unmarshal([]byte(stored), &record); err != nil {
		log.Error().Err(err).Str("key", key).Msg("decodificar respuesta idempotente")
		return fail(c, fiber.StatusInternalServerError, CodeInternal, "registro de idempotencia corrupto")
	}
	if record.RequestHash != requestHash {
		return fail(c, fiber.StatusConflict, CodeIdempotencyReused, "la Idempotency-Key ya se usó con otra petición")
	}
	body, err := base64.StdEncoding.DecodeString(record.Body)
	if err != nil {
		return fail(c, fiber.StatusInternalServerError, CodeInternal, "registro de idempotencia corrupto")
	}
	if record.ContentType != "" {
		c.Set(fiber.HeaderContentType, record.ContentType)
	}
	c.Set(HeaderReplayed, "true")
	return c.Status(record.Status).Send(body)
}

// hashRequest cubre la URL con su query (las cantidades viajan en ?quantity=) y el body.
func hashRequest(c *fiber.Ctx) string {
	h := sha256.New()
	h.Write([]byte(c.Method()))
	h.Write([]byte{0})
	h.Write([]byte(c.OriginalURL()))
	h.Write([]byte{0})
	h.Write(c.Body())
	return base64.StdEncoding.EncodeToString(h.Sum(nil))
}

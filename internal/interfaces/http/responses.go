package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/geststore-api/internal/application/dto"
	"github.com/jhoicas/geststore-api/internal/domain"
)

// Códigos de error propios de la capa HTTP (los de reglas de negocio vienen del dominio).
const (
	CodeValidation          = "VALIDATION"
	CodeInvalidBody         = "INVALID_BODY"
	CodeNotFound            = "NOT_FOUND"
	CodeUnauthorized        = "UNAUTHORIZED"
	CodeForbidden           = "FORBIDDEN"
	CodeConflict            = "CONFLICT"
	CodeEmailExists         = "EMAIL_EXISTS"
	CodeMissingToken        = "MISSING_TOKEN"
	CodeInvalidToken        = "INVALID_TOKEN"
	CodeMissingRole         = "MISSING_ROLE"
	CodeIdempotencyReused   = "IDEMPOTENCY_KEY_REUSED"
	CodeIdempotencyInFlight = "IDEMPOTENCY_IN_PROGRESS"
	CodeInternal            = "INTERNAL"
)

// respond escribe el sobre de éxito {success, message, data, timestamp}.
func respond(c *fiber.Ctx, status int, message string, data any) error {
	return c.Status(status).JSON(dto.APIResponse{
		Success:   true,
		Message:   message,
		Data:      data,
		Timestamp: time.Now().UTC(),
	})
}

// fail escribe el sobre de error {status, error, message, errorCode, path, timestamp}.
func fail(c *fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(errorBody(c, status, code, message))
}

func errorBody(c *fiber.Ctx, status int, code, message string) dto.ErrorResponse {
	return dto.ErrorResponse{
		Status:    status,
		Error:     http.StatusText(status),
		Message:   message,
		ErrorCode: code,
		Path:      c.Path(),
		Timestamp: time.Now().UTC(),
	}
}

// handleError traduce errores de dominio a status HTTP:
// regla de negocio 422, no encontrado 404, entrada inválida 400, no autenticado 401,
// prohibido 403, duplicado 409 y cualquier otro 500.
func handleError(c *fiber.Ctx, err error) error {
	var validation *validationError
	if errors.As(err, &validation) {
		body := errorBody(c, fiber.StatusBadRequest, CodeValidation, validation.Error())
		body.Details = validation.fields
		return c.Status(fiber.StatusBadRequest).JSON(body)
	}
	if br, ok := domain.AsBusinessRule(err); ok {
		return fail(c, fiber.StatusUnprocessableEntity, br.Code, br.Message)
	}
	switch {
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrUserNotFound):
		return fail(c, fiber.StatusNotFound, CodeNotFound, err.Error())
	case errors.Is(err, domain.ErrInvalidInput):
		return fail(c, fiber.StatusBadRequest, CodeValidation, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		return fail(c, fiber.StatusUnauthorized, CodeUnauthorized, "credenciales inválidas")
	case errors.Is(err, domain.ErrForbidden):
		return fail(c, fiber.StatusForbidden, CodeForbidden, err.Error())
	case errors.Is(err, domain.ErrEmailAlreadyExists):
		return fail(c, fiber.StatusConflict, CodeEmailExists, err.Error())
	case errors.Is(err, domain.ErrDuplicate):
		return fail(c, fiber.StatusConflict, CodeConflict, err.Error())
	}
	requestLogger(c).Error().Err(err).Str("path", c.Path()).Msg("error interno")
	return fail(c, fiber.StatusInternalServerError, CodeInternal, "error interno del servidor")
}

// ErrorHandler para fiber.Config: errores que escapan de los handlers (404 de rutas, panics recuperados).
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code := CodeInternal
		switch fe.Code {
		case fiber.StatusNotFound:
			code = CodeNotFound
		case fiber.StatusMethodNotAllowed, fiber.StatusBadRequest:
			code = CodeValidation
		}
		return fail(c, fe.Code, code, fe.Message)
	}
	return handleError(c, err)
}

// reply responde 200 con data o traduce el error del caso de uso.
func reply(c *fiber.Ctx, data any, err error) error {
	if err != nil {
		return handleError(c, err)
	}
	return respond(c, fiber.StatusOK, "", data)
}

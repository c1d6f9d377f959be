package http

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/jhoicas/geststore-api/internal/domain"
)

var validate = newValidator()

// newValidator reporta los campos con su nombre JSON (camelCase), no el del struct.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		tag := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if tag == "" || tag == "-" {
			return f.Name
		}
		return tag
	})
	return v
}

// validationError entrada rechazada; fields lleva campo -> motivo.
type validationError struct {
	message string
	fields  map[string]string
}

func (e *validationError) Error() string { return e.message }

func (e *validationError) Unwrap() error { return domain.ErrInvalidInput }

// bindJSON parsea el body y lo valida con las etiquetas validate.
func bindJSON(c *fiber.Ctx, dest any) error {
	if err := c.BodyParser(dest); err != nil {
		return &validationError{message: "cuerpo inválido: " + err.Error()}
	}
	return validateStruct(dest)
}

// bindQuery parsea y valida parámetros de query (paginación).
func bindQuery(c *fiber.Ctx, dest any) error {
	if err := c.QueryParser(dest); err != nil {
		return &validationError{message: "parámetros inválidos: " + err.Error()}
	}
	return validateStruct(dest)
}

func validateStruct(dest any) error {
	err := validate.Struct(dest)
	if err == nil {
		return nil
	}
	errs, ok := err.(validator.ValidationErrors)
	if !ok {
		return &validationError{message: err.Error()}
	}
	fields := make(map[string]string, len(errs))
	for _, fe := range errs {
		fields[fe.Field()] = validationMessage(fe)
	}
	return &validationError{message: "validación fallida", fields: fields}
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "es obligatorio"
	case "min":
		return fmt.Sprintf("debe ser al menos %s", fe.Param())
	case "max":
		return fmt.Sprintf("debe ser como máximo %s", fe.Param())
	case "email":
		return "debe ser un email válido"
	case "oneof":
		return fmt.Sprintf("debe ser uno de: %s", fe.Param())
	case "uuid":
		return "debe ser un UUID"
	}
	return "es inválido"
}

// queryInt lee un entero obligatorio de la query (?quantity=5).
func queryInt(c *fiber.Ctx, key string) (int, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return 0, &validationError{message: "parámetro requerido", fields: map[string]string{key: "es obligatorio"}}
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &validationError{message: "parámetro inválido", fields: map[string]string{key: "debe ser numérico"}}
	}
	return v, nil
}

// queryString lee un parámetro obligatorio de la query.
func queryString(c *fiber.Ctx, key string) (string, error) {
	v := strings.TrimSpace(c.Query(key))
	if v == "" {
		return "", &validationError{message: "parámetro requerido", fields: map[string]string{key: "es obligatorio"}}
	}
	return v, nil
}

// pathID lee un id de ruta. Los ids son UUID: uno mal formado no puede existir y se reporta como NotFound.
func pathID(c *fiber.Ctx, param, resource string) (string, error) {
	return parseID(c.Params(param), resource)
}

// queryID igual que pathID para ids en la query; ausente es error de validación.
func queryID(c *fiber.Ctx, key, resource string) (string, error) {
	raw, err := queryString(c, key)
	if err != nil {
		return "", err
	}
	return parseID(raw, resource)
}

func parseID(raw, resource string) (string, error) {
	if _, err := uuid.Parse(raw); err != nil || len(raw) != 36 {
		return "", domain.NewNotFound(resource, raw)
	}
	return raw, nil
}

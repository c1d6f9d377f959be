package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrUserNotFound       = errors.New("usuario no encontrado")
	ErrEmailAlreadyExists = errors.New("el email ya está registrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrDuplicate          = errors.New("recurso duplicado")
	ErrUnauthorized       = errors.New("no autorizado")
	ErrForbidden          = errors.New("acceso denegado")
)

// Violaciones de reglas de negocio: una por código.
var (
	ErrInsufficientStock      = errors.New("stock insuficiente")
	ErrInvalidTaskState       = errors.New("estado de tarea inválido para la operación")
	ErrInvalidQuantity        = errors.New("cantidad inválida")
	ErrDuplicateAssignment    = errors.New("el producto ya está asignado a la tarea")
	ErrIncompleteProducts     = errors.New("hay productos asignados sin consumir por completo")
	ErrMaxActiveTasksExceeded = errors.New("el trabajador superó el máximo de tareas activas")
	ErrNoStockRecord          = errors.New("el producto no tiene registro de stock")
	ErrProductInUse           = errors.New("el producto está asignado a tareas activas")
)

// Códigos legibles por máquina de las reglas de negocio (viajan en errorCode).
const (
	CodeInsufficientStock      = "INSUFFICIENT_STOCK"
	CodeInvalidTaskState       = "INVALID_TASK_STATE"
	CodeInvalidQuantity        = "INVALID_QUANTITY"
	CodeDuplicateAssignment    = "DUPLICATE_ASSIGNMENT"
	CodeIncompleteProducts     = "INCOMPLETE_PRODUCTS"
	CodeMaxActiveTasksExceeded = "MAX_ACTIVE_TASKS_EXCEEDED"
	CodeNoStockAvailable       = "NO_STOCK_AVAILABLE"
	CodeProductInUse           = "PRODUCT_IN_USE"
)

var sentinelByCode = map[string]error{
	CodeInsufficientStock:      ErrInsufficientStock,
	CodeInvalidTaskState:       ErrInvalidTaskState,
	CodeInvalidQuantity:        ErrInvalidQuantity,
	CodeDuplicateAssignment:    ErrDuplicateAssignment,
	CodeIncompleteProducts:     ErrIncompleteProducts,
	CodeMaxActiveTasksExceeded: ErrMaxActiveTasksExceeded,
	CodeNoStockAvailable:       ErrNoStockRecord,
	CodeProductInUse:           ErrProductInUse,
}

// NotFoundError recurso inexistente; errors.Is(err, ErrNotFound) es true.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s no encontrado: %s", e.Resource, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// NewNotFound construye un NotFoundError.
func NewNotFound(resource, id string) error {
	return &NotFoundError{Resource: resource, ID: id}
}

// BusinessRuleError rechazo por regla de negocio con código legible por máquina.
// Se verifica antes de cualquier escritura: la operación rechazada no muta nada.
type BusinessRuleError struct {
	Code    string
	Message string
}

func (e *BusinessRuleError) Error() string {
	return e.Message
}

// Unwrap devuelve el sentinel del código, para usar errors.Is(err, ErrInsufficientStock) etc.
func (e *BusinessRuleError) Unwrap() error {
	return sentinelByCode[e.Code]
}

// NewBusinessRule construye un BusinessRuleError.
func NewBusinessRule(code, format string, args ...any) error {
	return &BusinessRuleError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// AsBusinessRule extrae el BusinessRuleError de la cadena, si existe.
func AsBusinessRule(err error) (*BusinessRuleError, bool) {
	var br *BusinessRuleError
	if errors.As(err, &br) {
		return br, true
	}
	return nil, false
}

func InsufficientStock(available, required int) error {
	return NewBusinessRule(CodeInsufficientStock, "stock insuficiente: disponible %d, requerido %d", available, required)
}

func InvalidQuantity(format string, args ...any) error {
	return NewBusinessRule(CodeInvalidQuantity, format, args...)
}

func InvalidTaskState(format string, args ...any) error {
	return NewBusinessRule(CodeInvalidTaskState, format, args...)
}

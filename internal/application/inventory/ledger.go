package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/geststore-api/internal/domain"
	"github.com/jhoicas/geststore-api/internal/domain/entity"
	domaininv "github.com/jhoicas/geststore-api/internal/domain/inventory"
	"github.com/jhoicas/geststore-api/internal/domain/repository"
	"github.com/jhoicas/geststore-api/pkg/logger"
	"github.com/jhoicas/geststore-api/pkg/metrics"
)

// MovementRef contexto de un movimiento para la auditoría.
type MovementRef struct {
	TaskID    *string
	Reference string
	ActorID   string
}

// Ledger aplica operaciones del libro de stock dentro de una transacción:
// valida y muta el Stock (ya bloqueado por el llamador), lo persiste y registra el movimiento.
// Lo usan el caso de uso de stock y los de tareas.
type Ledger struct {
	log     *logger.Logger
	metrics *metrics.Recorder
	now     func() time.Time
}

// NewLedger construye el servicio. metrics puede ser nil.
func NewLedger(log *logger.Logger, rec *metrics.Recorder) *Ledger {
	if log == nil {
		log = logger.Nop()
	}
	return &Ledger{log: log.Component("ledger"), metrics: rec, now: time.Now}
}

// WithClock reemplaza el reloj (tests).
func (l *Ledger) WithClock(now func() time.Time) *Ledger {
	l.now = now
	return l
}

// Now hora actual según el reloj del ledger.
func (l *Ledger) Now() time.Time {
	return l.now()
}

// Apply ejecuta la operación movementType (INCREASE, DECREASE, RESERVE, RELEASE) sobre stock.
// El Stock debe haberse leído con GetForUpdate en la misma tx.
func (l *Ledger) Apply(ctx context.Context, tx repository.Tx, stock *entity.Stock, movementType string, qty int, ref MovementRef) error {
	now := l.now()
	var err error
	switch movementType {
	case entity.MovementIncrease:
		err = domaininv.Increase(stock, qty, now)
	case entity.MovementDecrease:
		err = domaininv.Decrease(stock, qty, now)
	case entity.MovementReserve:
		err = domaininv.Reserve(stock, qty, now)
	case entity.MovementRelease:
		err = domaininv.Release(stock, qty, now)
	default:
		return fmt.Errorf("tipo de movimiento no soportado: %s", movementType)
	}
	if err != nil {
		l.reject(movementType, stock, qty, err)
		return err
	}
	return l.persist(ctx, tx, stock, movementType, qty, ref)
}

// Adjust corrección administrativa de un Stock bloqueado.
func (l *Ledger) Adjust(ctx context.Context, tx repository.Tx, stock *entity.Stock, a domaininv.Adjustment, ref MovementRef) error {
	before := stock.QuantityAvailable
	if err := domaininv.Adjust(stock, a, l.now()); err != nil {
		l.reject(entity.MovementAdjustment, stock, 0, err)
		return err
	}
	return l.persist(ctx, tx, stock, entity.MovementAdjustment, stock.QuantityAvailable-before, ref)
}

func (l *Ledger) persist(ctx context.Context, tx repository.Tx, stock *entity.Stock, movementType string, qty int, ref MovementRef) error {
	if err := tx.Stocks().Update(ctx, stock); err != nil {
		return fmt.Errorf("actualizar stock: %w", err)
	}
	mov := &entity.StockMovement{
		ID:             uuid.New().String(),
		StockID:        stock.ID,
		ProductID:      stock.ProductID,
		Type:           movementType,
		Quantity:       qty,
		AvailableAfter: stock.QuantityAvailable,
		ReservedAfter:  stock.QuantityReserved,
		TaskID:         ref.TaskID,
		Reference:      ref.Reference,
		CreatedBy:      ref.ActorID,
		CreatedAt:      stock.LastUpdated,
	}
	if err := tx.Movements().Create(ctx, mov); err != nil {
		return fmt.Errorf("registrar movimiento: %w", err)
	}
	l.metrics.Operation(movementType, metrics.ResultOK)
	l.metrics.UnitsMoved(movementType, qty)
	l.log.Info().
		Str("stock_id", stock.ID).
		Str("product_id", stock.ProductID).
		Str("type", movementType).
		Int("quantity", qty).
		Int("available", stock.QuantityAvailable).
		Int("reserved", stock.QuantityReserved).
		Msg("movimiento de stock")
	return nil
}

// reject solo deja traza de debug; el caso de uso que llamó registra el rechazo con ObserveFailure.
func (l *Ledger) reject(movementType string, stock *entity.Stock, qty int, err error) {
	l.metrics.Operation(movementType, metrics.ResultRejected)
	l.log.Debug().
		Str("stock_id", stock.ID).
		Str("type", movementType).
		Int("quantity", qty).
		Err(err).
		Msg("movimiento rechazado")
}

// ObserveFailure registra un rechazo de negocio (warn + métrica por código), un error de cliente (warn)
// o un error inesperado (error). Devuelve err sin modificar.
func ObserveFailure(log *logger.Logger, rec *metrics.Recorder, op string, err error) error {
	if br, ok := domain.AsBusinessRule(err); ok {
		rec.Operation(op, metrics.ResultRejected)
		rec.Violation(br.Code)
		log.Warn().Str("op", op).Str("code", br.Code).Msg(br.Message)
		return err
	}
	if isClientError(err) {
		rec.Operation(op, metrics.ResultRejected)
		log.Warn().Str("op", op).Err(err).Msg("operación rechazada")
		return err
	}
	rec.Operation(op, metrics.ResultError)
	log.Error().Str("op", op).Err(err).Msg("error inesperado")
	return err
}

func isClientError(err error) bool {
	for _, target := range []error{domain.ErrNotFound, domain.ErrForbidden, domain.ErrInvalidInput, domain.ErrDuplicate} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

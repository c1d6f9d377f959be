package inventory

import (
	"time"

	"github.com/jhoicas/geststore-api/internal/domain"
	"github.com/jhoicas/geststore-api/internal/domain/entity"
)

// Operaciones puras del libro de stock. Cada una valida antes de mutar:
// si devuelve error, el Stock queda intacto. Ninguna deja cantidades negativas.

// Increase suma qty al disponible.
func Increase(s *entity.Stock, qty int, now time.Time) error {
	if qty <= 0 {
		return domain.InvalidQuantity("la cantidad a aumentar debe ser positiva: %d", qty)
	}
	s.QuantityAvailable += qty
	s.LastUpdated = now
	return nil
}

// Decrease resta qty del disponible.
func Decrease(s *entity.Stock, qty int, now time.Time) error {
	if qty <= 0 {
		return domain.InvalidQuantity("la cantidad a reducir debe ser positiva: %d", qty)
	}
	if s.QuantityAvailable < qty {
		return domain.InsufficientStock(s.QuantityAvailable, qty)
	}
	s.QuantityAvailable -= qty
	s.LastUpdated = now
	return nil
}

// Reserve mueve qty de disponible a reservado.
func Reserve(s *entity.Stock, qty int, now time.Time) error {
	if qty <= 0 {
		return domain.InvalidQuantity("la cantidad a reservar debe ser positiva: %d", qty)
	}
	if s.QuantityAvailable < qty {
		return domain.InsufficientStock(s.QuantityAvailable, qty)
	}
	s.QuantityAvailable -= qty
	s.QuantityReserved += qty
	s.LastUpdated = now
	return nil
}

// Release devuelve qty de reservado a disponible.
func Release(s *entity.Stock, qty int, now time.Time) error {
	if qty <= 0 {
		return domain.InvalidQuantity("la cantidad a liberar debe ser positiva: %d", qty)
	}
	if s.QuantityReserved < qty {
		return domain.InvalidQuantity("no hay suficiente stock reservado para liberar: reservado %d, solicitado %d", s.QuantityReserved, qty)
	}
	s.QuantityReserved -= qty
	s.QuantityAvailable += qty
	s.LastUpdated = now
	return nil
}

// Adjustment corrección administrativa. Los campos nil no se tocan.
type Adjustment struct {
	QuantityAvailable *int
	QuantityReserved  *int
	MinimumLevel      *int
	Location          *string
}

// Adjust sobrescribe los campos indicados. No empareja reservas con asignaciones:
// quien la usa es responsable del invariante entre Stock y TaskProduct.
func Adjust(s *entity.Stock, a Adjustment, now time.Time) error {
	if a.QuantityAvailable != nil && *a.QuantityAvailable < 0 {
		return domain.InvalidQuantity("la cantidad disponible no puede ser negativa: %d", *a.QuantityAvailable)
	}
	if a.QuantityReserved != nil && *a.QuantityReserved < 0 {
		return domain.InvalidQuantity("la cantidad reservada no puede ser negativa: %d", *a.QuantityReserved)
	}
	if a.MinimumLevel != nil && *a.MinimumLevel < 0 {
		return domain.InvalidQuantity("el nivel mínimo no puede ser negativo: %d", *a.MinimumLevel)
	}
	if a.QuantityAvailable != nil {
		s.QuantityAvailable = *a.QuantityAvailable
	}
	if a.QuantityReserved != nil {
		s.QuantityReserved = *a.QuantityReserved
	}
	if a.MinimumLevel != nil {
		s.MinimumLevel = *a.MinimumLevel
	}
	if a.Location != nil {
		s.Location = *a.Location
	}
	s.LastUpdated = now
	return nil
}

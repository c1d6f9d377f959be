package tasks

import "github.com/jhoicas/geststore-api/internal/domain/entity"

// DefaultMaxActivePerWorker máximo de tareas no terminales por trabajador.
const DefaultMaxActivePerWorker = 10

// Actor usuario que ejecuta la operación (sale del token, nunca de estado global).
type Actor struct {
	UserID string
	Role   string
}

// IsWorker el actor solo tiene permisos de operario.
func (a Actor) IsWorker() bool {
	return a.Role == entity.RoleWorker
}

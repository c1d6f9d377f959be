package entity

import "time"

// Roles válidos para User.
const (
	RoleAdmin   = "ADMIN"
	RoleManager = "MANAGER"
	RoleWorker  = "WORKER"
)

// IsValidRole indica si r es uno de los roles conocidos.
func IsValidRole(r string) bool {
	return r == RoleAdmin || r == RoleManager || r == RoleWorker
}

// User usuario del sistema. Las tareas asignadas se consultan por repositorio (solo para contar activas).
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string // bcrypt, nunca plano en dominio después de persistir
	Role         string // ADMIN, MANAGER, WORKER
	Department   string
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

package entity

import "time"

// TaskStatus estado de una tarea.
type TaskStatus string

const (
	TaskPending    TaskStatus = "PENDING"
	TaskInProgress TaskStatus = "IN_PROGRESS"
	TaskCompleted  TaskStatus = "COMPLETED"
	TaskCancelled  TaskStatus = "CANCELLED"
)

// IsTerminal COMPLETED o CANCELLED: no admite más transiciones.
func (s TaskStatus) IsTerminal() bool {
	return s == TaskCompleted || s == TaskCancelled
}

func (s TaskStatus) Valid() bool {
	switch s {
	case TaskPending, TaskInProgress, TaskCompleted, TaskCancelled:
		return true
	}
	return false
}

// TaskPriority prioridad de una tarea.
type TaskPriority string

const (
	PriorityLow    TaskPriority = "LOW"
	PriorityMedium TaskPriority = "MEDIUM"
	PriorityHigh   TaskPriority = "HIGH"
)

func (p TaskPriority) Valid() bool {
	return p == PriorityLow || p == PriorityMedium || p == PriorityHigh
}

// Task tarea del almacén. Es dueña de sus TaskProduct (borrado en cascada).
type Task struct {
	ID          string
	Title       string
	Description string
	Status      TaskStatus
	Priority    TaskPriority
	DueDate     *time.Time
	StartDate   *time.Time
	EndDate     *time.Time
	Completed   bool    // refleja Status == COMPLETED
	AssignedTo  *string // UserID, opcional
	CreatedBy   string  // UserID
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Products []*TaskProduct // se llena solo en lecturas de detalle
}

// IsActive la tarea no está en estado terminal.
func (t *Task) IsActive() bool {
	return !t.Status.IsTerminal()
}

// IsOverdue vencida y no terminal.
func (t *Task) IsOverdue(now time.Time) bool {
	return t.DueDate != nil && t.DueDate.Before(now) && t.IsActive()
}

// IsAssignedTo indica si la tarea está asignada al usuario.
func (t *Task) IsAssignedTo(userID string) bool {
	return t.AssignedTo != nil && *t.AssignedTo == userID
}

// Start PENDING -> IN_PROGRESS.
func (t *Task) Start(now time.Time) bool {
	if t.Status != TaskPending {
		return false
	}
	t.Status = TaskInProgress
	t.StartDate = &now
	t.UpdatedAt = now
	return true
}

// Complete IN_PROGRESS -> COMPLETED.
func (t *Task) Complete(now time.Time) bool {
	if t.Status != TaskInProgress {
		return false
	}
	t.Status = TaskCompleted
	t.Completed = true
	t.EndDate = &now
	t.UpdatedAt = now
	return true
}

// Cancel PENDING|IN_PROGRESS -> CANCELLED.
func (t *Task) Cancel(now time.Time) bool {
	if t.Status.IsTerminal() {
		return false
	}
	t.Status = TaskCancelled
	t.EndDate = &now
	t.UpdatedAt = now
	return true
}

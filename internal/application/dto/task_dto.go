package dto

import "time"

// CreateTaskRequest entrada para crear una tarea (el creador sale del token).
type CreateTaskRequest struct {
	Title            string     `json:"title" validate:"required,min=1,max=200"`
	Description      string     `json:"description" validate:"max=2000"`
	Priority         string     `json:"priority" validate:"omitempty,oneof=LOW MEDIUM HIGH"`
	DueDate          *time.Time `json:"dueDate"`
	AssignedToUserID *string    `json:"assignedToUserId" validate:"omitempty,uuid"`
}

// UpdateTaskRequest campos opcionales. El estado solo cambia con start/complete/cancel.
// UnassignUser quita el asignado actual.
type UpdateTaskRequest struct {
	Title            *string    `json:"title" validate:"omitempty,min=1,max=200"`
	Description      *string    `json:"description" validate:"omitempty,max=2000"`
	Priority         *string    `json:"priority" validate:"omitempty,oneof=LOW MEDIUM HIGH"`
	DueDate          *time.Time `json:"dueDate"`
	AssignedToUserID *string    `json:"assignedToUserId" validate:"omitempty,uuid"`
	UnassignUser     bool       `json:"unassignUser"`
}

// TaskResponse salida de una tarea.
type TaskResponse struct {
	ID               string                `json:"id"`
	Title            string                `json:"title"`
	Description      string                `json:"description"`
	Status           string                `json:"status"`
	StatusLabel      string                `json:"statusLabel"`
	Priority         string                `json:"priority"`
	PriorityLabel    string                `json:"priorityLabel"`
	DueDate          *time.Time            `json:"dueDate,omitempty"`
	StartDate        *time.Time            `json:"startDate,omitempty"`
	EndDate          *time.Time            `json:"endDate,omitempty"`
	Completed        bool                  `json:"completed"`
	Overdue          bool                  `json:"overdue"`
	AssignedToUserID *string               `json:"assignedToUserId,omitempty"`
	CreatedByUserID  string                `json:"createdByUserId"`
	Products         []TaskProductResponse `json:"products,omitempty"`
	CreatedAt        time.Time             `json:"createdAt"`
	UpdatedAt        time.Time             `json:"updatedAt"`
}

// TaskListResponse lista paginada de tareas.
type TaskListResponse struct {
	Items []TaskResponse `json:"items"`
	Page  PageResponse   `json:"page"`
}

// TaskStatisticsResponse conteo de tareas por estado.
type TaskStatisticsResponse struct {
	Total      int `json:"total"`
	Pending    int `json:"pending"`
	InProgress int `json:"inProgress"`
	Completed  int `json:"completed"`
	Cancelled  int `json:"cancelled"`
	Overdue    int `json:"overdue"`
}

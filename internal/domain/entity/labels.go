package entity

// Metadatos de presentación, fuera de la máquina de estados.

var RoleLabels = map[string]string{
	RoleAdmin:   "Administrador",
	RoleManager: "Gerente",
	RoleWorker:  "Operario",
}

var TaskStatusLabels = map[TaskStatus]string{
	TaskPending:    "Pendiente",
	TaskInProgress: "En progreso",
	TaskCompleted:  "Completada",
	TaskCancelled:  "Cancelada",
}

var TaskPriorityLabels = map[TaskPriority]string{
	PriorityLow:    "Baja",
	PriorityMedium: "Media",
	PriorityHigh:   "Alta",
}

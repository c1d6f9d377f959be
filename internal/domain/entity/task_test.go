package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTask_Transiciones(t *testing.T) {
	now := time.Now()
	task := &Task{Status: TaskPending}

	assert.False(t, task.Complete(now), "no se completa desde PENDING")
	assert.True(t, task.Start(now))
	assert.Equal(t, TaskInProgress, task.Status)
	assert.NotNil(t, task.StartDate)
	assert.False(t, task.Start(now), "no se inicia dos veces")

	assert.True(t, task.Complete(now))
	assert.True(t, task.Completed)
	assert.NotNil(t, task.EndDate)
	assert.False(t, task.Cancel(now), "no se cancela una completada")
}

func TestTask_CancelDesdePendiente(t *testing.T) {
	task := &Task{Status: TaskPending}
	assert.True(t, task.Cancel(time.Now()))
	assert.True(t, task.Status.IsTerminal())
	assert.False(t, task.Completed)
	assert.False(t, task.Start(time.Now()))
}

func TestTask_IsOverdue(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Hour)
	task := &Task{Status: TaskInProgress, DueDate: &past}
	assert.True(t, task.IsOverdue(now))

	task.Status = TaskCompleted
	assert.False(t, task.IsOverdue(now))

	assert.False(t, (&Task{Status: TaskPending}).IsOverdue(now))
}

func TestStock_Niveles(t *testing.T) {
	s := &Stock{QuantityAvailable: 10, QuantityReserved: 3, MinimumLevel: 10}
	assert.Equal(t, 13, s.TotalQuantity())
	assert.False(t, s.IsLowStock())
	assert.True(t, s.IsCritical())
}

package models_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"task-tracker/internal/models"
)

func TestTaskHasExecutor(t *testing.T) {
	task := models.Task{
		Executors: []models.User{{ID: 2}, {ID: 4}},
	}

	assert.True(t, task.HasExecutor(2))
	assert.True(t, task.HasExecutor(4))
	assert.False(t, task.HasExecutor(3))

	empty := models.Task{}
	assert.False(t, empty.HasExecutor(2))
}

func TestTaskStatusValid(t *testing.T) {
	for _, status := range []models.TaskStatus{models.StatusTodo, models.StatusInProgress, models.StatusDone} {
		assert.True(t, status.Valid())
	}
	assert.False(t, models.TaskStatus("BOGUS").Valid())
	assert.False(t, models.TaskStatus("").Valid())
	assert.False(t, models.TaskStatus("todo").Valid())
}

func TestUserRoleHelpers(t *testing.T) {
	admin := models.User{Role: models.RoleAdmin}
	manager := models.User{Role: models.RoleManager}
	user := models.User{Role: models.RoleUser}

	assert.True(t, admin.IsAdmin())
	assert.False(t, admin.IsUser())
	assert.True(t, manager.IsManager())
	assert.True(t, user.IsUser())
	assert.False(t, user.IsAdmin())
}

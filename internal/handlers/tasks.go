package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"task-tracker/internal/middleware"
	"task-tracker/internal/models"
	"task-tracker/internal/services"
)

type TaskHandler struct {
	db          *gorm.DB
	taskService services.TaskService
	log         *logrus.Entry
}

func NewTaskHandler(db *gorm.DB, taskService services.TaskService, log *logrus.Entry) *TaskHandler {
	return &TaskHandler{db: db, taskService: taskService, log: log}
}

func (h *TaskHandler) currentUser(c *gin.Context) (*models.User, bool) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "User not authenticated"})
		return nil, false
	}
	return user, true
}

func taskIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid task ID"})
		return 0, false
	}
	return uint(id), true
}

func (h *TaskHandler) CreateTask(c *gin.Context) {
	actor, ok := h.currentUser(c)
	if !ok {
		return
	}

	var req services.TaskCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	h.log.WithField("user_id", actor.ID).Info("Create task requested")

	task, err := h.taskService.CreateTask(h.db, req, actor)
	if err != nil {
		// Permission denials on creation surface as 400, matching the
		// historical behavior of this API.
		switch {
		case services.IsValidationError(err) || services.IsPermissionDenied(err):
			h.log.WithField("user_id", actor.ID).Warnf("Error during task creation: %v", err)
			c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		case services.IsUserNotFound(err):
			h.log.WithField("user_id", actor.ID).Warnf("User not found: %v", err)
			c.JSON(http.StatusNotFound, gin.H{"detail": err.Error()})
		default:
			h.log.WithError(err).Error("Unhandled exception during task creation")
			c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
		}
		return
	}

	h.log.WithField("task_id", task.ID).Info("Task created successfully")
	c.JSON(http.StatusOK, task)
}

func (h *TaskHandler) GetTask(c *gin.Context) {
	actor, ok := h.currentUser(c)
	if !ok {
		return
	}
	taskID, ok := taskIDParam(c)
	if !ok {
		return
	}

	task, err := h.taskService.GetTaskByID(h.db, taskID, actor)
	if err != nil {
		h.handleTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, task)
}

func (h *TaskHandler) UpdateTask(c *gin.Context) {
	actor, ok := h.currentUser(c)
	if !ok {
		return
	}
	taskID, ok := taskIDParam(c)
	if !ok {
		return
	}

	var req services.TaskUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	h.log.WithFields(logrus.Fields{"user_id": actor.ID, "task_id": taskID}).Info("Update task requested")

	task, err := h.taskService.UpdateTask(h.db, taskID, req, actor)
	if err != nil {
		h.handleTaskError(c, err)
		return
	}

	h.log.WithField("task_id", task.ID).Info("Task updated successfully")
	c.JSON(http.StatusOK, task)
}

func (h *TaskHandler) DeleteTask(c *gin.Context) {
	actor, ok := h.currentUser(c)
	if !ok {
		return
	}
	taskID, ok := taskIDParam(c)
	if !ok {
		return
	}

	h.log.WithFields(logrus.Fields{"user_id": actor.ID, "task_id": taskID}).Info("Delete task requested")

	task, err := h.taskService.DeleteTask(h.db, taskID, actor)
	if err != nil {
		h.handleTaskError(c, err)
		return
	}

	h.log.WithField("task_id", taskID).Info("Task deleted successfully")
	c.JSON(http.StatusOK, task)
}

func (h *TaskHandler) ListTasks(c *gin.Context) {
	actor, ok := h.currentUser(c)
	if !ok {
		return
	}

	var filters services.TaskFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	var pagination services.Pagination
	if err := c.ShouldBindQuery(&pagination); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	result, err := h.taskService.ListTasks(h.db, filters, pagination, actor)
	if err != nil {
		h.handleTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *TaskHandler) handleTaskError(c *gin.Context, err error) {
	switch {
	case services.IsTaskNotFound(err) || services.IsUserNotFound(err):
		h.log.Warnf("Not found: %v", err)
		c.JSON(http.StatusNotFound, gin.H{"detail": err.Error()})
	case services.IsPermissionDenied(err):
		h.log.Warnf("Permission denied: %v", err)
		c.JSON(http.StatusForbidden, gin.H{"detail": err.Error()})
	case services.IsValidationError(err):
		h.log.Warnf("Validation failed: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
	default:
		h.log.WithError(err).Error("Unhandled exception during task request")
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
	}
}

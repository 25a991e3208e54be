package services

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"task-tracker/internal/models"
	"task-tracker/internal/policy"
)

const (
	DefaultLimit = 10
	MaxLimit     = 100
)

type TaskCreateRequest struct {
	Title               string            `json:"title" binding:"required,max=100"`
	Description         string            `json:"description" binding:"max=500"`
	Priority            *int              `json:"priority" binding:"required"`
	Status              models.TaskStatus `json:"status"`
	ResponsiblePersonID uint              `json:"responsible_person_id"`
}

type TaskUpdateRequest struct {
	Title       *string            `json:"title" binding:"omitempty,max=100"`
	Description *string            `json:"description" binding:"omitempty,max=500"`
	Priority    *int               `json:"priority"`
	Status      *models.TaskStatus `json:"status"`
}

type TaskFilters struct {
	Status              string `form:"status"`
	Priority            *int   `form:"priority"`
	ResponsiblePersonID uint   `form:"responsible_person_id"`
}

type Pagination struct {
	Limit  int `form:"limit,default=10" binding:"omitempty,min=1,max=100"`
	Offset int `form:"offset,default=0" binding:"omitempty,min=0"`
}

type TaskListResponse struct {
	Tasks  []models.Task `json:"tasks"`
	Total  int64         `json:"total"`
	Limit  int           `json:"limit"`
	Offset int           `json:"offset"`
}

type TaskService interface {
	CreateTask(db *gorm.DB, req TaskCreateRequest, actor *models.User) (*models.Task, error)
	GetTaskByID(db *gorm.DB, taskID uint, actor *models.User) (*models.Task, error)
	UpdateTask(db *gorm.DB, taskID uint, req TaskUpdateRequest, actor *models.User) (*models.Task, error)
	DeleteTask(db *gorm.DB, taskID uint, actor *models.User) (*models.Task, error)
	ListTasks(db *gorm.DB, filters TaskFilters, pagination Pagination, actor *models.User) (*TaskListResponse, error)
}

type TaskServiceImpl struct {
	notifier Notifier
	log      *logrus.Entry
}

func NewTaskService(notifier Notifier, log *logrus.Entry) *TaskServiceImpl {
	return &TaskServiceImpl{notifier: notifier, log: log}
}

func checkTaskPriority(priority int) error {
	if priority < 0 || priority > 3 {
		return &InvalidPriorityError{Priority: priority}
	}
	return nil
}

func checkTaskStatus(status models.TaskStatus) error {
	if !status.Valid() {
		return &InvalidStatusError{Status: string(status)}
	}
	return nil
}

func getUserByIDOr404(db *gorm.DB, userID uint) (*models.User, error) {
	var user models.User
	if err := db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &UserNotFoundError{UserID: userID}
		}
		return nil, err
	}
	return &user, nil
}

func getTaskByIDOr404(db *gorm.DB, taskID uint) (*models.Task, error) {
	var task models.Task
	if err := db.Preload("Executors").First(&task, taskID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &TaskNotFoundError{TaskID: taskID}
		}
		return nil, err
	}
	return &task, nil
}

// CreateTask builds a task shell from the request and persists it if the
// actor passes the creation policy. A plain user always becomes the
// responsible person of their own task, whatever the request said.
func (s *TaskServiceImpl) CreateTask(db *gorm.DB, req TaskCreateRequest, actor *models.User) (*models.Task, error) {
	if err := checkTaskPriority(*req.Priority); err != nil {
		return nil, err
	}
	if req.ResponsiblePersonID == 0 {
		return nil, &InvalidResponsiblePersonError{PersonID: req.ResponsiblePersonID}
	}

	responsiblePerson, err := getUserByIDOr404(db, req.ResponsiblePersonID)
	if err != nil {
		return nil, err
	}

	status := req.Status
	if status == "" {
		status = models.StatusTodo
	}
	if err := checkTaskStatus(status); err != nil {
		return nil, err
	}

	shellResponsibleID := req.ResponsiblePersonID
	if actor.Role == models.RoleUser {
		shellResponsibleID = actor.ID
	}

	task := models.Task{
		Title:               req.Title,
		Description:         req.Description,
		Priority:            *req.Priority,
		Status:              status,
		ResponsiblePersonID: shellResponsibleID,
	}

	decision := policy.CheckCreate(policy.CreateFacts{
		ActorID:                  actor.ID,
		ActorRole:                actor.Role,
		ResponsiblePersonID:      responsiblePerson.ID,
		ResponsiblePersonRole:    responsiblePerson.Role,
		ShellResponsiblePersonID: task.ResponsiblePersonID,
		ActorIsShellExecutor:     task.HasExecutor(actor.ID),
	})
	if !decision.Allowed {
		return nil, &PermissionDeniedError{Reason: decision.Reason}
	}

	if err := db.Create(&task).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

func (s *TaskServiceImpl) GetTaskByID(db *gorm.DB, taskID uint, actor *models.User) (*models.Task, error) {
	task, err := getTaskByIDOr404(db, taskID)
	if err != nil {
		return nil, err
	}

	decision := policy.CheckAccess(accessFacts(task, actor))
	if !decision.Allowed {
		return nil, &PermissionDeniedError{Reason: decision.Reason}
	}
	return task, nil
}

// UpdateTask applies a partial update; unspecified fields keep their values.
// When the update changes the status the responsible person is notified,
// best-effort, after the row is saved.
func (s *TaskServiceImpl) UpdateTask(db *gorm.DB, taskID uint, req TaskUpdateRequest, actor *models.User) (*models.Task, error) {
	task, err := getTaskByIDOr404(db, taskID)
	if err != nil {
		return nil, err
	}

	decision := policy.CheckAccess(accessFacts(task, actor))
	if !decision.Allowed {
		return nil, &PermissionDeniedError{Reason: decision.Reason}
	}

	if req.Priority != nil {
		if err := checkTaskPriority(*req.Priority); err != nil {
			return nil, err
		}
	}
	if req.Status != nil {
		if err := checkTaskStatus(*req.Status); err != nil {
			return nil, err
		}
	}

	oldStatus := task.Status

	if req.Title != nil {
		task.Title = *req.Title
	}
	if req.Description != nil {
		task.Description = *req.Description
	}
	if req.Priority != nil {
		task.Priority = *req.Priority
	}
	if req.Status != nil {
		task.Status = *req.Status
	}

	// The preloaded executor set is read-only here; saving it back would
	// upsert user rows.
	if err := db.Omit(clause.Associations).Save(task).Error; err != nil {
		return nil, err
	}

	if req.Status != nil && *req.Status != oldStatus {
		s.sendStatusChangeNotification(db, task, oldStatus, *req.Status)
	}

	return task, nil
}

// sendStatusChangeNotification never fails the enclosing update; any lookup
// or delivery problem is only logged.
func (s *TaskServiceImpl) sendStatusChangeNotification(db *gorm.DB, task *models.Task, oldStatus, newStatus models.TaskStatus) {
	responsiblePerson, err := getUserByIDOr404(db, task.ResponsiblePersonID)
	if err != nil {
		s.log.WithError(err).WithField("task_id", task.ID).Warn("Could not resolve responsible person for notification")
		return
	}
	s.notifier.NotifyStatusChange(context.Background(), task, responsiblePerson, oldStatus, newStatus)
}

func (s *TaskServiceImpl) DeleteTask(db *gorm.DB, taskID uint, actor *models.User) (*models.Task, error) {
	task, err := getTaskByIDOr404(db, taskID)
	if err != nil {
		return nil, err
	}

	decision := policy.CheckDelete(accessFacts(task, actor))
	if !decision.Allowed {
		return nil, &PermissionDeniedError{Reason: decision.Reason}
	}

	if err := db.Delete(task).Error; err != nil {
		return nil, err
	}
	return task, nil
}

// ListTasks validates the filters, applies them conjunctively together with
// the actor's visibility scope, and counts the matching rows before the
// limit/offset slice is taken.
func (s *TaskServiceImpl) ListTasks(db *gorm.DB, filters TaskFilters, pagination Pagination, actor *models.User) (*TaskListResponse, error) {
	if filters.ResponsiblePersonID != 0 {
		if _, err := getUserByIDOr404(db, filters.ResponsiblePersonID); err != nil {
			return nil, err
		}
	}
	if filters.Priority != nil {
		if err := checkTaskPriority(*filters.Priority); err != nil {
			return nil, err
		}
	}
	if filters.Status != "" {
		if err := checkTaskStatus(models.TaskStatus(filters.Status)); err != nil {
			return nil, err
		}
	}

	if pagination.Limit < 1 || pagination.Limit > MaxLimit {
		pagination.Limit = DefaultLimit
	}
	if pagination.Offset < 0 {
		pagination.Offset = 0
	}

	scoped := func(q *gorm.DB) *gorm.DB {
		q = applyFilters(q, filters)
		return applyVisibilityScope(q, db, actor)
	}

	var total int64
	if err := scoped(db.Model(&models.Task{})).Count(&total).Error; err != nil {
		return nil, err
	}

	tasks := make([]models.Task, 0, pagination.Limit)
	err := scoped(db.Model(&models.Task{})).
		Preload("Executors").
		Limit(pagination.Limit).
		Offset(pagination.Offset).
		Find(&tasks).Error
	if err != nil {
		return nil, err
	}

	return &TaskListResponse{
		Tasks:  tasks,
		Total:  total,
		Limit:  pagination.Limit,
		Offset: pagination.Offset,
	}, nil
}

func applyFilters(q *gorm.DB, filters TaskFilters) *gorm.DB {
	if filters.Status != "" {
		q = q.Where("tasks.status = ?", filters.Status)
	}
	if filters.Priority != nil {
		q = q.Where("tasks.priority = ?", *filters.Priority)
	}
	if filters.ResponsiblePersonID != 0 {
		q = q.Where("tasks.responsible_person_id = ?", filters.ResponsiblePersonID)
	}
	return q
}

// applyVisibilityScope restricts the query to tasks the actor is responsible
// for or assigned to as an executor. Admins see everything.
func applyVisibilityScope(q *gorm.DB, db *gorm.DB, actor *models.User) *gorm.DB {
	if actor.Role == models.RoleAdmin {
		return q
	}
	membership := db.Table("task_executors").
		Select("task_id").
		Where("user_id = ?", actor.ID)
	return q.Where("tasks.responsible_person_id = ? OR tasks.id IN (?)", actor.ID, membership)
}

func accessFacts(task *models.Task, actor *models.User) policy.AccessFacts {
	return policy.AccessFacts{
		ActorRole:          actor.Role,
		ActorIsResponsible: task.ResponsiblePersonID == actor.ID,
		ActorIsExecutor:    task.HasExecutor(actor.ID),
	}
}

package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"task-tracker/internal/handlers"
	"task-tracker/internal/middleware"
	"task-tracker/internal/models"
	"task-tracker/internal/policy"
	"task-tracker/internal/services"
)

type MockTaskService struct {
	err  error
	task *models.Task
	list *services.TaskListResponse
}

func (m *MockTaskService) CreateTask(db *gorm.DB, req services.TaskCreateRequest, actor *models.User) (*models.Task, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.task, nil
}

func (m *MockTaskService) GetTaskByID(db *gorm.DB, taskID uint, actor *models.User) (*models.Task, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.task, nil
}

func (m *MockTaskService) UpdateTask(db *gorm.DB, taskID uint, req services.TaskUpdateRequest, actor *models.User) (*models.Task, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.task, nil
}

func (m *MockTaskService) DeleteTask(db *gorm.DB, taskID uint, actor *models.User) (*models.Task, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.task, nil
}

func (m *MockTaskService) ListTasks(db *gorm.DB, filters services.TaskFilters, pagination services.Pagination, actor *models.User) (*services.TaskListResponse, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.list, nil
}

func testLogger() *logrus.Entry {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return logrus.NewEntry(log)
}

func setupTaskRouter(mock *MockTaskService) *gin.Engine {
	gin.SetMode(gin.TestMode)

	handler := handlers.NewTaskHandler(nil, mock, testLogger())
	router := gin.New()

	router.Use(func(c *gin.Context) {
		c.Set(middleware.CurrentUserKey, &models.User{ID: 1, Email: "x@y.com", Role: models.RoleUser})
		c.Next()
	})

	router.POST("/tasks", handler.CreateTask)
	router.GET("/tasks", handler.ListTasks)
	router.GET("/tasks/:id", handler.GetTask)
	router.PUT("/tasks/:id", handler.UpdateTask)
	router.DELETE("/tasks/:id", handler.DeleteTask)
	return router
}

func jsonRequest(method, path string, body interface{}) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req, _ := http.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestCreateTaskSuccess(t *testing.T) {
	mock := &MockTaskService{task: &models.Task{ID: 1, Title: "Test", Priority: 1, ResponsiblePersonID: 1}}
	router := setupTaskRouter(mock)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest("POST", "/tasks", map[string]interface{}{
		"title":                 "Test",
		"priority":              1,
		"responsible_person_id": 1,
	}))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"title":"Test"`)
}

func TestCreateTaskMissingPriority(t *testing.T) {
	router := setupTaskRouter(&MockTaskService{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest("POST", "/tasks", map[string]interface{}{
		"title": "No priority",
	}))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// Permission denials on creation map to 400, not 403.
func TestCreateTaskPermissionDeniedMapsTo400(t *testing.T) {
	mock := &MockTaskService{err: &services.PermissionDeniedError{Reason: policy.ReasonManagerAssignAdmin}}
	router := setupTaskRouter(mock)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest("POST", "/tasks", map[string]interface{}{
		"title":                 "Denied",
		"priority":              1,
		"responsible_person_id": 2,
	}))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), policy.ReasonManagerAssignAdmin)
}

func TestCreateTaskResponsiblePersonNotFound(t *testing.T) {
	mock := &MockTaskService{err: &services.UserNotFoundError{UserID: 999}}
	router := setupTaskRouter(mock)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest("POST", "/tasks", map[string]interface{}{
		"title":                 "Ghost",
		"priority":              1,
		"responsible_person_id": 999,
	}))

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "User with ID 999 not found.")
}

func TestCreateTaskInvalidPriority(t *testing.T) {
	mock := &MockTaskService{err: &services.InvalidPriorityError{Priority: 4}}
	router := setupTaskRouter(mock)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest("POST", "/tasks", map[string]interface{}{
		"title":                 "Bad",
		"priority":              4,
		"responsible_person_id": 1,
	}))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid priority 4")
}

func TestGetTaskPermissionDeniedMapsTo403(t *testing.T) {
	mock := &MockTaskService{err: &services.PermissionDeniedError{Reason: policy.ReasonAccessOwnOnly}}
	router := setupTaskRouter(mock)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest("GET", "/tasks/1", nil))

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), policy.ReasonAccessOwnOnly)
}

func TestGetTaskNotFound(t *testing.T) {
	mock := &MockTaskService{err: &services.TaskNotFoundError{TaskID: 5}}
	router := setupTaskRouter(mock)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest("GET", "/tasks/5", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "Task with ID 5 was not found.")
}

func TestGetTaskInvalidID(t *testing.T) {
	router := setupTaskRouter(&MockTaskService{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest("GET", "/tasks/abc", nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateTaskSuccess(t *testing.T) {
	mock := &MockTaskService{task: &models.Task{ID: 1, Title: "Updated", Priority: 2, ResponsiblePersonID: 1}}
	router := setupTaskRouter(mock)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest("PUT", "/tasks/1", map[string]interface{}{
		"title": "Updated",
	}))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"title":"Updated"`)
}

func TestDeleteTaskEchoesTask(t *testing.T) {
	mock := &MockTaskService{task: &models.Task{ID: 7, Title: "Gone", Priority: 1, ResponsiblePersonID: 1}}
	router := setupTaskRouter(mock)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest("DELETE", "/tasks/7", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"title":"Gone"`)
}

func TestDeleteTaskPermissionDeniedMapsTo403(t *testing.T) {
	mock := &MockTaskService{err: &services.PermissionDeniedError{Reason: policy.ReasonUserDeleteOwnOnly}}
	router := setupTaskRouter(mock)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest("DELETE", "/tasks/1", nil))

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestListTasksEchoesPagination(t *testing.T) {
	mock := &MockTaskService{list: &services.TaskListResponse{
		Tasks:  []models.Task{{ID: 1, Title: "One", Priority: 1, ResponsiblePersonID: 1}},
		Total:  11,
		Limit:  10,
		Offset: 0,
	}}
	router := setupTaskRouter(mock)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest("GET", "/tasks?limit=10&offset=0", nil))

	assert.Equal(t, http.StatusOK, w.Code)

	var response services.TaskListResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, int64(11), response.Total)
	assert.Len(t, response.Tasks, 1)
}

func TestListTasksUnknownResponsiblePersonFilter(t *testing.T) {
	mock := &MockTaskService{err: &services.UserNotFoundError{UserID: 42}}
	router := setupTaskRouter(mock)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest("GET", "/tasks?responsible_person_id=42", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUnauthenticatedRequestIsRejected(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := handlers.NewTaskHandler(nil, &MockTaskService{}, testLogger())
	router := gin.New()
	router.GET("/tasks/:id", handler.GetTask)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest("GET", "/tasks/1", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

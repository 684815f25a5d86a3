package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/hoshizora/task-sharing-api/internal/database"
	"github.com/hoshizora/task-sharing-api/internal/dto"
	"github.com/hoshizora/task-sharing-api/internal/identity"
	"github.com/hoshizora/task-sharing-api/internal/middleware"
	"github.com/hoshizora/task-sharing-api/internal/models"
	"github.com/hoshizora/task-sharing-api/internal/repository"
	"github.com/hoshizora/task-sharing-api/internal/services"
)

type TaskHandlerTestSuite struct {
	suite.Suite
	db     *gorm.DB
	router *gin.Engine
	tokens *identity.Provider
}

func (suite *TaskHandlerTestSuite) SetupTest() {
	var err error

	suite.db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	suite.Require().NoError(err)

	suite.Require().NoError(database.AutoMigrate(suite.db))
	database.SetDB(suite.db)

	userRepo := repository.NewUserRepository(suite.db)
	taskRepo := repository.NewTaskRepository(suite.db)
	permRepo := repository.NewPermissionRepository(suite.db)

	taskService := services.NewTaskService(taskRepo)
	permissionService := services.NewPermissionService(permRepo, taskRepo, userRepo)
	handler := NewTaskHandler(taskService, permissionService)

	suite.tokens = identity.NewProvider("test-secret", time.Hour)

	gin.SetMode(gin.TestMode)
	suite.router = gin.New()

	tasks := suite.router.Group("/api/tasks")
	tasks.Use(middleware.RequireAuth(suite.tokens))
	{
		tasks.GET("", handler.ListTasks)
		tasks.GET("/projects", handler.ListProjects)
		tasks.POST("", handler.CreateTask)
		tasks.GET("/:id", handler.GetTask)
		tasks.PATCH("/:id", handler.UpdateTask)
		tasks.DELETE("/:id", handler.DeleteTask)
		tasks.PUT("/:id/permissions", handler.SetPermission)
	}
}

func (suite *TaskHandlerTestSuite) TearDownTest() {
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.Close()
}

func (suite *TaskHandlerTestSuite) createUser(email string) *models.User {
	user := &models.User{Email: email, PasswordHash: "hashedpassword"}
	suite.Require().NoError(suite.db.Create(user).Error)
	return user
}

func (suite *TaskHandlerTestSuite) tokenFor(user *models.User) string {
	token, err := suite.tokens.Issue(user.ID, user.Email)
	suite.Require().NoError(err)
	return token
}

func (suite *TaskHandlerTestSuite) request(method, url, token string, payload any) *httptest.ResponseRecorder {
	var body *bytes.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		suite.Require().NoError(err)
		body = bytes.NewReader(raw)
	} else {
		body = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, url, body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func (suite *TaskHandlerTestSuite) createTaskVia(token string, payload map[string]any) dto.TaskDTO {
	w := suite.request(http.MethodPost, "/api/tasks", token, payload)
	suite.Require().Equal(http.StatusCreated, w.Code)

	var task dto.TaskDTO
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &task))
	return task
}

func (suite *TaskHandlerTestSuite) TestCreateTask() {
	creator := suite.createUser("creator@example.com")
	token := suite.tokenFor(creator)

	task := suite.createTaskVia(token, map[string]any{
		"title":   "Ship release",
		"project": "Backend",
	})

	suite.Equal("Ship release", task.Title)
	suite.Equal(creator.ID, task.CreatorID)

	var perm models.TaskPermission
	err := suite.db.Where("task_id = ? AND user_id = ?", task.ID, creator.ID).First(&perm).Error
	suite.Require().NoError(err)
	suite.Equal(models.RoleOwner, perm.Role)
}

func (suite *TaskHandlerTestSuite) TestCreateTask_MissingProject() {
	creator := suite.createUser("creator@example.com")
	token := suite.tokenFor(creator)

	w := suite.request(http.MethodPost, "/api/tasks", token, map[string]any{
		"title": "No project",
	})
	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *TaskHandlerTestSuite) TestGetTask_NotFound() {
	creator := suite.createUser("creator@example.com")
	token := suite.tokenFor(creator)

	w := suite.request(http.MethodGet, "/api/tasks/999", token, nil)
	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *TaskHandlerTestSuite) TestGetTask_ForbiddenForStranger() {
	creator := suite.createUser("creator@example.com")
	stranger := suite.createUser("stranger@example.com")
	task := suite.createTaskVia(suite.tokenFor(creator), map[string]any{
		"title":   "Private",
		"project": "Backend",
	})

	w := suite.request(http.MethodGet, fmt.Sprintf("/api/tasks/%d", task.ID), suite.tokenFor(stranger), nil)
	suite.Equal(http.StatusForbidden, w.Code)
}

func (suite *TaskHandlerTestSuite) TestUpdateTask_ClearsDeadlineOnExplicitNull() {
	creator := suite.createUser("creator@example.com")
	token := suite.tokenFor(creator)
	task := suite.createTaskVia(token, map[string]any{
		"title":    "Deadline task",
		"project":  "Backend",
		"deadline": "2026-09-15T12:00:00Z",
	})

	w := suite.request(http.MethodPatch, fmt.Sprintf("/api/tasks/%d", task.ID), token, map[string]any{
		"deadline": nil,
	})
	suite.Require().Equal(http.StatusOK, w.Code)

	var updated dto.TaskDTO
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &updated))
	suite.Nil(updated.Deadline)
	suite.Equal("Deadline task", updated.Title)
}

func (suite *TaskHandlerTestSuite) TestDeleteTask_NonCreatorForbidden() {
	creator := suite.createUser("creator@example.com")
	owner := suite.createUser("owner@example.com")
	task := suite.createTaskVia(suite.tokenFor(creator), map[string]any{
		"title":   "Protected",
		"project": "Backend",
	})

	w := suite.request(http.MethodPut, fmt.Sprintf("/api/tasks/%d/permissions", task.ID), suite.tokenFor(creator), map[string]any{
		"user_id": owner.ID,
		"role":    "OWNER",
	})
	suite.Require().Equal(http.StatusOK, w.Code)

	w = suite.request(http.MethodDelete, fmt.Sprintf("/api/tasks/%d", task.ID), suite.tokenFor(owner), nil)
	suite.Equal(http.StatusForbidden, w.Code)
}

func (suite *TaskHandlerTestSuite) TestDeleteTask_CreatorRemovesPermissions() {
	creator := suite.createUser("creator@example.com")
	token := suite.tokenFor(creator)
	task := suite.createTaskVia(token, map[string]any{
		"title":   "Doomed",
		"project": "Backend",
	})

	w := suite.request(http.MethodDelete, fmt.Sprintf("/api/tasks/%d", task.ID), token, nil)
	suite.Require().Equal(http.StatusOK, w.Code)

	var permCount int64
	suite.db.Model(&models.TaskPermission{}).Where("task_id = ?", task.ID).Count(&permCount)
	suite.Equal(int64(0), permCount)
}

func (suite *TaskHandlerTestSuite) TestSetPermission_ExecutorDisplacement() {
	creator := suite.createUser("creator@example.com")
	first := suite.createUser("first@example.com")
	second := suite.createUser("second@example.com")
	token := suite.tokenFor(creator)
	task := suite.createTaskVia(token, map[string]any{
		"title":   "Shared",
		"project": "Backend",
	})

	url := fmt.Sprintf("/api/tasks/%d/permissions", task.ID)

	w := suite.request(http.MethodPut, url, token, map[string]any{
		"user_id": first.ID,
		"role":    "EXECUTOR",
	})
	suite.Require().Equal(http.StatusOK, w.Code)

	w = suite.request(http.MethodPut, url, token, map[string]any{
		"user_id": second.ID,
		"role":    "EXECUTOR",
	})
	suite.Require().Equal(http.StatusOK, w.Code)

	var executors []models.TaskPermission
	suite.db.Where("task_id = ? AND role = ?", task.ID, models.RoleExecutor).Find(&executors)
	suite.Require().Len(executors, 1)
	suite.Equal(second.ID, executors[0].UserID)

	// The response reports the task's permissions after the change.
	var response struct {
		Permissions []dto.TaskPermissionDTO `json:"permissions"`
	}
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))

	holders := make(map[string]models.PermissionRole, len(response.Permissions))
	for _, perm := range response.Permissions {
		holders[perm.User.Email] = perm.Role
	}
	suite.Equal(models.RoleExecutor, holders["second@example.com"])
	suite.NotContains(holders, "first@example.com")
}

func (suite *TaskHandlerTestSuite) TestSetPermission_UnknownGrantee() {
	creator := suite.createUser("creator@example.com")
	token := suite.tokenFor(creator)
	task := suite.createTaskVia(token, map[string]any{
		"title":   "Shared",
		"project": "Backend",
	})

	w := suite.request(http.MethodPut, fmt.Sprintf("/api/tasks/%d/permissions", task.ID), token, map[string]any{
		"user_id": 999,
		"role":    "STAKEHOLDER",
	})
	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *TaskHandlerTestSuite) TestListProjects_GroupByUser() {
	creator := suite.createUser("creator@example.com")
	shared := suite.createUser("shared@example.com")
	token := suite.tokenFor(creator)
	task := suite.createTaskVia(token, map[string]any{
		"title":   "Shared",
		"project": "Backend",
	})

	w := suite.request(http.MethodPut, fmt.Sprintf("/api/tasks/%d/permissions", task.ID), token, map[string]any{
		"user_id": shared.ID,
		"role":    "STAKEHOLDER",
	})
	suite.Require().Equal(http.StatusOK, w.Code)

	w = suite.request(http.MethodGet, "/api/tasks/projects?group_by=user", token, nil)
	suite.Require().Equal(http.StatusOK, w.Code)

	var response struct {
		Projects map[string][]dto.TaskDTO `json:"projects"`
	}
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	suite.Require().Len(response.Projects["creator@example.com"], 1)
	suite.Require().Len(response.Projects["shared@example.com"], 1)
}

func (suite *TaskHandlerTestSuite) TestRequiresAuthentication() {
	w := suite.request(http.MethodGet, "/api/tasks", "", nil)
	suite.Equal(http.StatusUnauthorized, w.Code)
}

func TestTaskHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(TaskHandlerTestSuite))
}

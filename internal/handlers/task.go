package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/hoshizora/task-sharing-api/internal/dto"
	apierrors "github.com/hoshizora/task-sharing-api/internal/errors"
	"github.com/hoshizora/task-sharing-api/internal/middleware"
	"github.com/hoshizora/task-sharing-api/internal/models"
	"github.com/hoshizora/task-sharing-api/internal/services"
	"github.com/hoshizora/task-sharing-api/internal/utils"
)

// TaskHandler coordinates task HTTP handlers.
type TaskHandler struct {
	taskService       *services.TaskService
	permissionService *services.PermissionService
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(taskService *services.TaskService, permissionService *services.PermissionService) *TaskHandler {
	return &TaskHandler{
		taskService:       taskService,
		permissionService: permissionService,
	}
}

// ListTasks returns a paginated flat list of the user's visible tasks.
func (h *TaskHandler) ListTasks(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	params := utils.GetPaginationParams(c)

	tasks, total, err := h.taskService.ListTasks(userID, params)
	if err != nil {
		apierrors.InternalError(c, "Failed to fetch tasks")
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskListResponse(tasks, params, total))
}

// ListProjects returns the user's visible tasks grouped by project, or by
// permission-holder email when group_by=user.
func (h *TaskHandler) ListProjects(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	groups, err := h.taskService.ListProjects(userID, c.Query("group_by"))
	if err != nil {
		apierrors.InternalError(c, "Failed to fetch tasks")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"projects": dto.ToGroupedTasks(groups),
	})
}

// GetTask returns a specific task by ID.
func (h *TaskHandler) GetTask(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	taskID, ok := parseIDParam(c)
	if !ok {
		return
	}

	task, err := h.taskService.GetTask(taskID, userID)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// CreateTask creates a new task owned by the current user.
func (h *TaskHandler) CreateTask(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	type CreateTaskRequest struct {
		Title       string     `json:"title" binding:"required"`
		Project     string     `json:"project" binding:"required"`
		Description string     `json:"description"`
		Status      string     `json:"status"`
		Priority    int        `json:"priority"`
		Deadline    *time.Time `json:"deadline"`
	}

	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	task, err := h.taskService.CreateTask(services.CreateTaskInput{
		Title:       req.Title,
		Project:     req.Project,
		Description: req.Description,
		Status:      models.TaskStatus(req.Status),
		Priority:    req.Priority,
		Deadline:    req.Deadline,
		CreatorID:   userID,
	})
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTaskDTO(*task))
}

// UpdateTask applies a partial update to a task. The raw body is inspected
// so that an explicit "deadline": null clears the deadline while an absent
// field leaves it untouched.
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	taskID, ok := parseIDParam(c)
	if !ok {
		return
	}

	var rawReq map[string]any
	if err := c.ShouldBindJSON(&rawReq); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	var input services.UpdateTaskInput

	if title, ok := rawReq["title"].(string); ok {
		input.Title = &title
	}
	if project, ok := rawReq["project"].(string); ok {
		input.Project = &project
	}
	if description, ok := rawReq["description"].(string); ok {
		input.Description = &description
	}
	if status, ok := rawReq["status"].(string); ok {
		taskStatus := models.TaskStatus(status)
		input.Status = &taskStatus
	}
	if priority, ok := rawReq["priority"].(float64); ok {
		p := int(priority)
		input.Priority = &p
	}
	if _, present := rawReq["deadline"]; present {
		if rawReq["deadline"] == nil {
			input.ClearDeadline = true
		} else if deadlineStr, ok := rawReq["deadline"].(string); ok {
			parsed, err := time.Parse(time.RFC3339, deadlineStr)
			if err != nil {
				apierrors.BadRequest(c, "Invalid deadline format, expected RFC3339")
				return
			}
			input.Deadline = &parsed
		}
	}

	task, err := h.taskService.UpdateTask(taskID, userID, input)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// DeleteTask deletes a task and its permission rows.
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	taskID, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := h.taskService.DeleteTask(taskID, userID); err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Task deleted successfully",
	})
}

// SetPermission grants a role on the task to a user, or revokes stakeholder
// access with the NONE role.
func (h *TaskHandler) SetPermission(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	taskID, ok := parseIDParam(c)
	if !ok {
		return
	}

	type SetPermissionRequest struct {
		UserID uint64 `json:"user_id" binding:"required"`
		Role   string `json:"role" binding:"required"`
	}

	var req SetPermissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	err := h.permissionService.SetPermission(services.SetPermissionInput{
		ActorID: userID,
		UserID:  req.UserID,
		TaskID:  taskID,
		Role:    models.PermissionRole(req.Role),
	})
	if err != nil {
		respondTaskError(c, err)
		return
	}

	perms, err := h.permissionService.TaskPermissions(taskID)
	if err != nil {
		apierrors.InternalError(c, "Failed to fetch permissions")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":     "Permission updated successfully",
		"permissions": dto.ToTaskPermissionDTOs(perms),
	})
}

func respondTaskError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrTaskNotFound),
		errors.Is(err, services.ErrGranteeNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrTaskViewForbidden),
		errors.Is(err, services.ErrTaskEditForbidden),
		errors.Is(err, services.ErrNotTaskCreator),
		errors.Is(err, services.ErrShareForbidden):
		apierrors.Forbidden(c, err.Error())
	case errors.Is(err, services.ErrTitleRequired),
		errors.Is(err, services.ErrProjectRequired),
		errors.Is(err, services.ErrInvalidTaskStatus),
		errors.Is(err, services.ErrInvalidRole):
		apierrors.BadRequest(c, err.Error())
	default:
		apierrors.InternalError(c, "Internal server error")
	}
}

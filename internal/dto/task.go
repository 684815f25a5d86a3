package dto

import (
	"time"

	"github.com/hoshizora/task-sharing-api/internal/models"
	"github.com/hoshizora/task-sharing-api/internal/utils"
)

// TaskPermissionDTO represents one user's role on a task
type TaskPermissionDTO struct {
	User UserDTO               `json:"user"`
	Role models.PermissionRole `json:"role"`
}

// TaskDTO represents a task in API responses
type TaskDTO struct {
	ID          uint64              `json:"id"`
	Title       string              `json:"title"`
	Project     string              `json:"project"`
	Description string              `json:"description"`
	Status      models.TaskStatus   `json:"status"`
	Priority    int                 `json:"priority"`
	Deadline    *time.Time          `json:"deadline"`
	CreatorID   uint64              `json:"creator_id"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
	Creator     *UserDTO            `json:"creator,omitempty"`
	Permissions []TaskPermissionDTO `json:"permissions,omitempty"`
}

// TaskListResponse represents a paginated list of tasks
type TaskListResponse struct {
	Tasks      []TaskDTO                `json:"tasks"`
	Pagination utils.PaginationResponse `json:"pagination"`
}

// ToTaskDTO converts a Task model to TaskDTO
func ToTaskDTO(task models.Task) TaskDTO {
	dto := TaskDTO{
		ID:          task.ID,
		Title:       task.Title,
		Project:     task.Project,
		Description: task.Description,
		Status:      task.Status,
		Priority:    task.Priority,
		Deadline:    task.Deadline,
		CreatorID:   task.CreatorID,
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
	}

	// Include creator if preloaded
	if task.Creator.ID != 0 {
		creator := ToUserDTO(task.Creator)
		dto.Creator = &creator
	}

	// Include permission holders if preloaded
	if len(task.Permissions) > 0 {
		dto.Permissions = ToTaskPermissionDTOs(task.Permissions)
	}

	return dto
}

// ToTaskPermissionDTOs converts permission rows to their DTO form
func ToTaskPermissionDTOs(perms []models.TaskPermission) []TaskPermissionDTO {
	items := make([]TaskPermissionDTO, len(perms))
	for i, perm := range perms {
		items[i] = TaskPermissionDTO{
			User: ToUserDTO(perm.User),
			Role: perm.Role,
		}
	}
	return items
}

// ToTaskListResponse converts a slice of tasks to TaskListResponse
func ToTaskListResponse(tasks []models.Task, params utils.PaginationParams, total int64) TaskListResponse {
	items := make([]TaskDTO, len(tasks))
	for i, task := range tasks {
		items[i] = ToTaskDTO(task)
	}

	return TaskListResponse{
		Tasks: items,
		Pagination: utils.PaginationResponse{
			Page:  params.Page,
			Limit: params.Limit,
			Total: total,
		},
	}
}

// ToGroupedTasks converts grouped task buckets to their DTO form
func ToGroupedTasks(groups map[string][]models.Task) map[string][]TaskDTO {
	result := make(map[string][]TaskDTO, len(groups))
	for key, tasks := range groups {
		items := make([]TaskDTO, len(tasks))
		for i, task := range tasks {
			items[i] = ToTaskDTO(task)
		}
		result[key] = items
	}
	return result
}

package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/hoshizora/task-sharing-api/internal/constants"
	"github.com/hoshizora/task-sharing-api/internal/models"
	"github.com/hoshizora/task-sharing-api/internal/repository"
	"github.com/hoshizora/task-sharing-api/internal/utils"
)

var (
	ErrTaskNotFound      = errors.New("task not found")
	ErrTaskViewForbidden = errors.New("you do not have permission to view this task")
	ErrTaskEditForbidden = errors.New("you do not have permission to update this task")
	ErrNotTaskCreator    = errors.New("only the task creator can delete this task")
	ErrTitleRequired     = errors.New("title is required")
	ErrProjectRequired   = errors.New("project is required")
	ErrInvalidTaskStatus = errors.New("invalid task status")
)

// GroupByUser groups listed tasks per permission-holder email instead of per
// project.
const GroupByUser = "user"

// TaskService handles task business logic
type TaskService struct {
	taskRepo repository.TaskRepository
}

// NewTaskService creates a new TaskService
func NewTaskService(taskRepo repository.TaskRepository) *TaskService {
	return &TaskService{taskRepo: taskRepo}
}

// CreateTaskInput represents input for creating a task
type CreateTaskInput struct {
	Title       string
	Project     string
	Description string
	Status      models.TaskStatus
	Priority    int
	Deadline    *time.Time
	CreatorID   uint64
}

// UpdateTaskInput represents a partial update; nil fields are untouched.
type UpdateTaskInput struct {
	Title         *string
	Project       *string
	Description   *string
	Status        *models.TaskStatus
	Priority      *int
	Deadline      *time.Time
	ClearDeadline bool
}

// ListTasks returns a page of the user's visible tasks plus the total count.
func (s *TaskService) ListTasks(userID uint64, params utils.PaginationParams) ([]models.Task, int64, error) {
	tasks, total, err := s.taskRepo.ListVisiblePage(userID, params)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, total, nil
}

// ListProjects returns the user's visible tasks grouped for presentation.
// The default groups by the task's project; groupBy "user" buckets each task
// under every permission-holder's email, at most once per bucket. Within a
// bucket the store's presentation order is preserved.
func (s *TaskService) ListProjects(userID uint64, groupBy string) (map[string][]models.Task, error) {
	tasks, err := s.taskRepo.ListVisible(userID, constants.MaxVisibleTasks)
	if err != nil {
		return nil, fmt.Errorf("failed to list visible tasks: %w", err)
	}

	groups := make(map[string][]models.Task)

	if groupBy == GroupByUser {
		seen := make(map[string]map[uint64]struct{})
		for _, task := range tasks {
			for _, perm := range task.Permissions {
				email := perm.User.Email
				if seen[email] == nil {
					seen[email] = make(map[uint64]struct{})
				}
				if _, dup := seen[email][task.ID]; dup {
					continue
				}
				seen[email][task.ID] = struct{}{}
				groups[email] = append(groups[email], task)
			}
		}
		return groups, nil
	}

	for _, task := range tasks {
		groups[task.Project] = append(groups[task.Project], task)
	}
	return groups, nil
}

// GetTask returns a task with its permissions if the user may view it.
func (s *TaskService) GetTask(taskID, actorID uint64) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(taskID, "Creator", "Permissions", "Permissions.User")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	if !CanView(actorID, task) {
		return nil, ErrTaskViewForbidden
	}

	return task, nil
}

// CreateTask validates input, inserts the task, and grants the creator an
// OWNER permission in the same transaction.
func (s *TaskService) CreateTask(input CreateTaskInput) (*models.Task, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, ErrTitleRequired
	}
	if strings.TrimSpace(input.Project) == "" {
		return nil, ErrProjectRequired
	}

	if input.Status == "" {
		input.Status = models.TaskStatusTodo
	}
	if !input.Status.Valid() {
		return nil, ErrInvalidTaskStatus
	}

	task := &models.Task{
		Title:       input.Title,
		Project:     input.Project,
		Description: input.Description,
		Status:      input.Status,
		Priority:    input.Priority,
		Deadline:    input.Deadline,
		CreatorID:   input.CreatorID,
	}

	if err := s.taskRepo.CreateWithOwner(task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	return s.taskRepo.FindByID(task.ID, "Creator", "Permissions", "Permissions.User")
}

// UpdateTask applies a partial update if the actor may edit the task.
func (s *TaskService) UpdateTask(taskID, actorID uint64, input UpdateTaskInput) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(taskID, "Permissions")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	if !CanUpdate(actorID, task) {
		return nil, ErrTaskEditForbidden
	}

	if input.Title != nil {
		if strings.TrimSpace(*input.Title) == "" {
			return nil, ErrTitleRequired
		}
		task.Title = *input.Title
	}
	if input.Project != nil {
		if strings.TrimSpace(*input.Project) == "" {
			return nil, ErrProjectRequired
		}
		task.Project = *input.Project
	}
	if input.Description != nil {
		task.Description = *input.Description
	}
	if input.Status != nil {
		if !input.Status.Valid() {
			return nil, ErrInvalidTaskStatus
		}
		task.Status = *input.Status
	}
	if input.Priority != nil {
		task.Priority = *input.Priority
	}
	if input.ClearDeadline {
		task.Deadline = nil
	} else if input.Deadline != nil {
		task.Deadline = input.Deadline
	}

	// Save would re-insert the preloaded permission rows; detach them first.
	task.Permissions = nil

	if err := s.taskRepo.Update(task); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	return s.taskRepo.FindByID(task.ID, "Creator", "Permissions", "Permissions.User")
}

// DeleteTask deletes a task and its permission rows if the actor created it.
func (s *TaskService) DeleteTask(taskID, actorID uint64) error {
	task, err := s.taskRepo.FindByID(taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTaskNotFound
		}
		return fmt.Errorf("failed to find task: %w", err)
	}

	if !CanDelete(actorID, task) {
		return ErrNotTaskCreator
	}

	if err := s.taskRepo.Delete(taskID); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	return nil
}

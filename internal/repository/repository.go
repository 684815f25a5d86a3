package repository

import (
	"github.com/hoshizora/task-sharing-api/internal/models"
	"github.com/hoshizora/task-sharing-api/internal/utils"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(user *models.User) error

	// FindByID finds a user by ID
	FindByID(id uint64) (*models.User, error)

	// FindByEmail finds a user by email
	FindByEmail(email string) (*models.User, error)

	// List retrieves users with pagination
	List(params utils.PaginationParams) ([]models.User, int64, error)

	// Update updates a user
	Update(user *models.User) error

	// Delete soft deletes a user
	Delete(id uint64) error
}

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// CreateWithOwner creates a task and grants the creator an OWNER
	// permission within a single transaction.
	CreateWithOwner(task *models.Task) error

	// FindByID finds a task by ID with optional preloading
	FindByID(id uint64, preload ...string) (*models.Task, error)

	// ListVisible retrieves the tasks a user may view, ordered for
	// presentation and capped at limit rows.
	ListVisible(userID uint64, limit int) ([]models.Task, error)

	// ListVisiblePage retrieves a page of the user's visible tasks plus the
	// total count.
	ListVisiblePage(userID uint64, params utils.PaginationParams) ([]models.Task, int64, error)

	// Update updates a task
	Update(task *models.Task) error

	// Delete deletes a task and all its permission rows transactionally
	Delete(id uint64) error
}

// PermissionRepository defines the interface for task permission data access
type PermissionRepository interface {
	// Find finds the permission row for an exact (user, task, role) triple
	Find(userID, taskID uint64, role models.PermissionRole) (*models.TaskPermission, error)

	// Create inserts a permission row
	Create(perm *models.TaskPermission) error

	// AssignExecutor makes userID the task's executor: the existing EXECUTOR
	// row is reassigned if present, otherwise one is inserted. Atomic with
	// respect to concurrent assignments on the same task.
	AssignExecutor(taskID, userID uint64) error

	// DeleteStakeholder removes the STAKEHOLDER row for (user, task).
	// Deleting an absent row is not an error.
	DeleteStakeholder(userID, taskID uint64) error

	// ListByTask lists a task's permission rows with their users
	ListByTask(taskID uint64) ([]models.TaskPermission, error)
}

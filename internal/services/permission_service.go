package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/hoshizora/task-sharing-api/internal/models"
	"github.com/hoshizora/task-sharing-api/internal/repository"
)

var (
	ErrInvalidRole     = errors.New("invalid permission role")
	ErrShareForbidden  = errors.New("you do not have permission to share this task")
	ErrGranteeNotFound = errors.New("user not found")
)

// PermissionService mutates permission rows under the sharing invariants:
// grants are idempotent, a task carries at most one executor, and the NONE
// sentinel revokes stakeholder access.
type PermissionService struct {
	permRepo repository.PermissionRepository
	taskRepo repository.TaskRepository
	userRepo repository.UserRepository
}

// NewPermissionService creates a new PermissionService
func NewPermissionService(permRepo repository.PermissionRepository, taskRepo repository.TaskRepository, userRepo repository.UserRepository) *PermissionService {
	return &PermissionService{
		permRepo: permRepo,
		taskRepo: taskRepo,
		userRepo: userRepo,
	}
}

// SetPermissionInput represents a grant or revoke request
type SetPermissionInput struct {
	ActorID uint64
	UserID  uint64
	TaskID  uint64
	Role    models.PermissionRole
}

// SetPermission grants input.Role on the task to the user, or revokes the
// user's stakeholder access when the role is NONE.
func (s *PermissionService) SetPermission(input SetPermissionInput) error {
	if input.Role != models.RoleNone && !input.Role.Grantable() {
		return ErrInvalidRole
	}

	task, err := s.taskRepo.FindByID(input.TaskID, "Permissions")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTaskNotFound
		}
		return fmt.Errorf("failed to find task: %w", err)
	}

	if !CanShare(input.ActorID, task) {
		return ErrShareForbidden
	}

	if _, err := s.userRepo.FindByID(input.UserID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrGranteeNotFound
		}
		return fmt.Errorf("failed to find user: %w", err)
	}

	if input.Role == models.RoleNone {
		if err := s.permRepo.DeleteStakeholder(input.UserID, input.TaskID); err != nil {
			return fmt.Errorf("failed to revoke permission: %w", err)
		}
		return nil
	}

	// An identical grant already exists: nothing to do.
	if _, err := s.permRepo.Find(input.UserID, input.TaskID, input.Role); err == nil {
		return nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to check existing permission: %w", err)
	}

	if input.Role == models.RoleExecutor {
		if err := s.permRepo.AssignExecutor(input.TaskID, input.UserID); err != nil {
			return fmt.Errorf("failed to assign executor: %w", err)
		}
		return nil
	}

	perm := &models.TaskPermission{
		UserID: input.UserID,
		TaskID: input.TaskID,
		Role:   input.Role,
	}
	if err := s.permRepo.Create(perm); err != nil {
		// A concurrent identical grant slipped past the check above; the
		// row exists, which is all this call promises.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil
		}
		return fmt.Errorf("failed to grant permission: %w", err)
	}

	return nil
}

// TaskPermissions returns a task's current permission rows with their users.
func (s *PermissionService) TaskPermissions(taskID uint64) ([]models.TaskPermission, error) {
	perms, err := s.permRepo.ListByTask(taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to list permissions: %w", err)
	}
	return perms, nil
}

package repository

import (
	"errors"

	"github.com/hoshizora/task-sharing-api/internal/models"
	"gorm.io/gorm"
)

// GormPermissionRepository is a GORM implementation of PermissionRepository
type GormPermissionRepository struct {
	db *gorm.DB
}

// NewPermissionRepository creates a new PermissionRepository
func NewPermissionRepository(db *gorm.DB) PermissionRepository {
	return &GormPermissionRepository{db: db}
}

// Find finds the permission row for an exact (user, task, role) triple
func (r *GormPermissionRepository) Find(userID, taskID uint64, role models.PermissionRole) (*models.TaskPermission, error) {
	var perm models.TaskPermission
	err := r.db.Where("user_id = ? AND task_id = ? AND role = ?", userID, taskID, role).
		First(&perm).Error
	if err != nil {
		return nil, err
	}
	return &perm, nil
}

// Create inserts a permission row
func (r *GormPermissionRepository) Create(perm *models.TaskPermission) error {
	return r.db.Create(perm).Error
}

// AssignExecutor makes userID the single executor of the task. The existing
// EXECUTOR row is reassigned in place; only when none exists is a new row
// inserted. Losing an insert race against a concurrent assignment surfaces
// as a duplicate-key error, which is retried once as the update it should
// have been. The insert runs under a savepoint: postgres aborts the whole
// transaction on a constraint violation, and the retry must still be able
// to run inside it.
func (r *GormPermissionRepository) AssignExecutor(taskID, userID uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.TaskPermission{}).
			Where("task_id = ? AND role = ?", taskID, models.RoleExecutor).
			Update("user_id", userID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			return nil
		}

		if err := tx.SavePoint("executor_insert").Error; err != nil {
			return err
		}

		perm := &models.TaskPermission{
			UserID: userID,
			TaskID: taskID,
			Role:   models.RoleExecutor,
		}
		if err := tx.Create(perm).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				if err := tx.RollbackTo("executor_insert").Error; err != nil {
					return err
				}
				return tx.Model(&models.TaskPermission{}).
					Where("task_id = ? AND role = ?", taskID, models.RoleExecutor).
					Update("user_id", userID).Error
			}
			return err
		}

		return nil
	})
}

// DeleteStakeholder removes the STAKEHOLDER row for (user, task). Absence is
// not an error.
func (r *GormPermissionRepository) DeleteStakeholder(userID, taskID uint64) error {
	return r.db.
		Where("user_id = ? AND task_id = ? AND role = ?", userID, taskID, models.RoleStakeholder).
		Delete(&models.TaskPermission{}).Error
}

// ListByTask lists a task's permission rows with their users
func (r *GormPermissionRepository) ListByTask(taskID uint64) ([]models.TaskPermission, error) {
	var perms []models.TaskPermission
	err := r.db.Where("task_id = ?", taskID).
		Preload("User").
		Find(&perms).Error
	if err != nil {
		return nil, err
	}
	return perms, nil
}

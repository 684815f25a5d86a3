package repository

import (
	"errors"
	"fmt"

	"github.com/hoshizora/task-sharing-api/internal/database"
	"github.com/hoshizora/task-sharing-api/internal/models"
	"github.com/hoshizora/task-sharing-api/internal/utils"
	"gorm.io/gorm"
)

var (
	// ErrCreateTask is returned when the task insert fails inside the creation transaction.
	ErrCreateTask = errors.New("task repository: create task failed")
	// ErrGrantOwner is returned when the OWNER grant fails inside the creation transaction.
	ErrGrantOwner = errors.New("task repository: owner grant failed")
)

// statusOrder ranks statuses for presentation: active work first, finished
// and abandoned work last. Ties break on priority, then recency.
const statusOrder = "CASE tasks.status" +
	" WHEN 'DOING' THEN 0" +
	" WHEN 'TO_DO' THEN 1" +
	" WHEN 'DONE' THEN 2" +
	" ELSE 3 END, tasks.priority DESC, tasks.created_at DESC"

// GormTaskRepository is a GORM implementation of TaskRepository
type GormTaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &GormTaskRepository{db: db}
}

// CreateWithOwner creates a task and the creator's OWNER permission atomically.
// A task must never exist without its owner grant.
func (r *GormTaskRepository) CreateWithOwner(task *models.Task) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(task).Error; err != nil {
			return fmt.Errorf("%w: %v", ErrCreateTask, err)
		}

		perm := &models.TaskPermission{
			UserID: task.CreatorID,
			TaskID: task.ID,
			Role:   models.RoleOwner,
		}
		if err := tx.Create(perm).Error; err != nil {
			return fmt.Errorf("%w: %v", ErrGrantOwner, err)
		}

		return nil
	})
}

// FindByID finds a task by ID with optional preloading
func (r *GormTaskRepository) FindByID(id uint64, preload ...string) (*models.Task, error) {
	var task models.Task
	query := r.db

	for _, p := range preload {
		query = query.Preload(p)
	}

	if err := query.First(&task, id).Error; err != nil {
		return nil, err
	}

	return &task, nil
}

// visibleQuery selects the tasks a user may view: tasks they created plus
// tasks they hold any permission row on.
func (r *GormTaskRepository) visibleQuery(userID uint64) *gorm.DB {
	permSubQuery := r.db.Model(&models.TaskPermission{}).
		Select("1").
		Where("task_permissions.task_id = tasks.id").
		Where("task_permissions.user_id = ?", userID)

	return r.db.Model(&models.Task{}).
		Where("tasks.creator_id = ? OR EXISTS (?)", userID, permSubQuery)
}

// ListVisible retrieves a user's visible tasks in presentation order.
func (r *GormTaskRepository) ListVisible(userID uint64, limit int) ([]models.Task, error) {
	var tasks []models.Task

	err := r.visibleQuery(userID).
		Order(statusOrder).
		Limit(limit).
		Preload("Permissions").
		Preload("Permissions.User").
		Find(&tasks).Error
	if err != nil {
		return nil, err
	}

	return tasks, nil
}

// ListVisiblePage retrieves a page of a user's visible tasks plus the total count.
func (r *GormTaskRepository) ListVisiblePage(userID uint64, params utils.PaginationParams) ([]models.Task, int64, error) {
	var tasks []models.Task

	query := r.visibleQuery(userID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Order(statusOrder).
		Scopes(database.Paginate(params)).
		Preload("Creator").
		Preload("Permissions").
		Preload("Permissions.User").
		Find(&tasks).Error
	if err != nil {
		return nil, 0, err
	}

	return tasks, total, nil
}

// Update updates a task
func (r *GormTaskRepository) Update(task *models.Task) error {
	return r.db.Save(task).Error
}

// Delete removes a task and all its permission rows in one transaction.
// Permission rows are hard-deleted; the task itself is soft-deleted.
func (r *GormTaskRepository) Delete(id uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("task_id = ?", id).Delete(&models.TaskPermission{}).Error; err != nil {
			return err
		}

		return tx.Delete(&models.Task{}, id).Error
	})
}

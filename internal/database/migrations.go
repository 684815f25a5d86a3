package database

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/hoshizora/task-sharing-api/internal/models"
)

// EnsureExecutorIndex creates the partial unique index that guarantees at
// most one EXECUTOR row per task. MySQL has no partial indexes; there the
// assignment transaction alone serializes the check-and-set.
func EnsureExecutorIndex(db *gorm.DB) error {
	switch db.Dialector.Name() {
	case "postgres", "sqlite":
		err := db.Exec(fmt.Sprintf(
			`CREATE UNIQUE INDEX IF NOT EXISTS idx_task_permissions_executor
			 ON task_permissions (task_id) WHERE role = '%s'`,
			models.RoleExecutor,
		)).Error
		if err != nil {
			return fmt.Errorf("failed to create executor index: %w", err)
		}
		return nil
	default:
		return nil
	}
}

// AddIndexes adds performance-critical indexes. Postgres only; the check
// against pg_indexes keeps repeated startups idempotent.
func AddIndexes(db *gorm.DB) error {
	if db.Dialector.Name() != "postgres" {
		return nil
	}

	indexes := []struct {
		table   string
		name    string
		columns string
	}{
		// Task indexes for the visibility query and sort
		{"tasks", "idx_tasks_creator_id", "creator_id"},
		{"tasks", "idx_tasks_status", "status"},
		{"tasks", "idx_tasks_created_at", "created_at"},

		// Permission lookups by task and by user
		{"task_permissions", "idx_task_permissions_task_id", "task_id"},
		{"task_permissions", "idx_task_permissions_user_id", "user_id"},
	}

	for _, idx := range indexes {
		var count int64
		err := db.Raw(`
			SELECT COUNT(*)
			FROM pg_indexes
			WHERE tablename = ? AND indexname = ?
		`, idx.table, idx.name).Count(&count).Error
		if err != nil {
			return fmt.Errorf("failed to check index %s: %w", idx.name, err)
		}

		if count > 0 {
			continue
		}

		sql := fmt.Sprintf("CREATE INDEX %s ON %s (%s)", idx.name, idx.table, idx.columns)
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}
	}

	return nil
}

package models

import "time"

type PermissionRole string

const (
	RoleOwner       PermissionRole = "OWNER"
	RoleExecutor    PermissionRole = "EXECUTOR"
	RoleStakeholder PermissionRole = "STAKEHOLDER"

	// RoleNone is the revoke sentinel accepted by SetPermission. It is never
	// stored; it removes the STAKEHOLDER grant for the (user, task) pair.
	RoleNone PermissionRole = "NONE"
)

// Grantable reports whether the role can be stored as a permission row.
func (r PermissionRole) Grantable() bool {
	switch r {
	case RoleOwner, RoleExecutor, RoleStakeholder:
		return true
	}
	return false
}

// TaskPermission grants one role to one user on one task. Rows are
// hard-deleted: revoking a grant or deleting a task must leave nothing
// behind to collide with the (user, task, role) unique index.
type TaskPermission struct {
	ID        uint64         `gorm:"primarykey" json:"id"`
	UserID    uint64         `gorm:"not null;uniqueIndex:idx_task_permissions_user_task_role" json:"user_id"`
	TaskID    uint64         `gorm:"not null;uniqueIndex:idx_task_permissions_user_task_role" json:"task_id"`
	Role      PermissionRole `gorm:"type:varchar(20);not null;uniqueIndex:idx_task_permissions_user_task_role" json:"role"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`

	// Relations
	User User `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Task Task `gorm:"foreignKey:TaskID" json:"task,omitempty"`
}

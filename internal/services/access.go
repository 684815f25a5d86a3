package services

import (
	"github.com/hoshizora/task-sharing-api/internal/models"
)

// Access predicates are pure: they evaluate an already-fetched task (with
// its permission rows preloaded) and never touch the store. Callers resolve
// the task first so that a missing task reads as not-found, and only a
// present task can read as forbidden.

// CanView reports whether the user may view the task: its creator, or any
// user holding a permission row on it.
func CanView(userID uint64, task *models.Task) bool {
	if task.CreatorID == userID {
		return true
	}
	return hasRole(userID, task, models.RoleOwner, models.RoleExecutor, models.RoleStakeholder)
}

// CanUpdate reports whether the user may modify the task. STAKEHOLDER is
// read-only.
func CanUpdate(userID uint64, task *models.Task) bool {
	if task.CreatorID == userID {
		return true
	}
	return hasRole(userID, task, models.RoleOwner, models.RoleExecutor)
}

// CanDelete reports whether the user may delete the task. Only the creator
// may; no delegated role can.
func CanDelete(userID uint64, task *models.Task) bool {
	return task.CreatorID == userID
}

// CanShare reports whether the user may grant or revoke permissions on the
// task: the creator or an OWNER.
func CanShare(userID uint64, task *models.Task) bool {
	if task.CreatorID == userID {
		return true
	}
	return hasRole(userID, task, models.RoleOwner)
}

func hasRole(userID uint64, task *models.Task, roles ...models.PermissionRole) bool {
	for _, perm := range task.Permissions {
		if perm.UserID != userID {
			continue
		}
		for _, role := range roles {
			if perm.Role == role {
				return true
			}
		}
	}
	return false
}

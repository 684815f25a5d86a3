package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hoshizora/task-sharing-api/internal/models"
)

func taskWithPermissions(creatorID uint64, perms ...models.TaskPermission) *models.Task {
	return &models.Task{
		ID:          1,
		Title:       "Task",
		Project:     "Project",
		CreatorID:   creatorID,
		Permissions: perms,
	}
}

func perm(userID uint64, role models.PermissionRole) models.TaskPermission {
	return models.TaskPermission{UserID: userID, TaskID: 1, Role: role}
}

func TestAccessPredicates(t *testing.T) {
	tests := []struct {
		name      string
		userID    uint64
		task      *models.Task
		canView   bool
		canUpdate bool
		canDelete bool
		canShare  bool
	}{
		{
			name:      "creator has full control",
			userID:    1,
			task:      taskWithPermissions(1),
			canView:   true,
			canUpdate: true,
			canDelete: true,
			canShare:  true,
		},
		{
			name:      "stranger has nothing",
			userID:    2,
			task:      taskWithPermissions(1),
			canView:   false,
			canUpdate: false,
			canDelete: false,
			canShare:  false,
		},
		{
			name:      "owner can edit and share but not delete",
			userID:    2,
			task:      taskWithPermissions(1, perm(2, models.RoleOwner)),
			canView:   true,
			canUpdate: true,
			canDelete: false,
			canShare:  true,
		},
		{
			name:      "executor can edit but not share or delete",
			userID:    2,
			task:      taskWithPermissions(1, perm(2, models.RoleExecutor)),
			canView:   true,
			canUpdate: true,
			canDelete: false,
			canShare:  false,
		},
		{
			name:      "stakeholder is read-only",
			userID:    2,
			task:      taskWithPermissions(1, perm(2, models.RoleStakeholder)),
			canView:   true,
			canUpdate: false,
			canDelete: false,
			canShare:  false,
		},
		{
			name:      "other user's permission grants nothing",
			userID:    3,
			task:      taskWithPermissions(1, perm(2, models.RoleOwner)),
			canView:   false,
			canUpdate: false,
			canDelete: false,
			canShare:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.canView, CanView(tt.userID, tt.task))
			assert.Equal(t, tt.canUpdate, CanUpdate(tt.userID, tt.task))
			assert.Equal(t, tt.canDelete, CanDelete(tt.userID, tt.task))
			assert.Equal(t, tt.canShare, CanShare(tt.userID, tt.task))
		})
	}
}

package models

import (
	"time"

	"gorm.io/gorm"
)

type TaskStatus string

const (
	TaskStatusTodo     TaskStatus = "TO_DO"
	TaskStatusDoing    TaskStatus = "DOING"
	TaskStatusDone     TaskStatus = "DONE"
	TaskStatusCanceled TaskStatus = "CANCELED"
)

// Valid reports whether s is one of the known status values.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusTodo, TaskStatusDoing, TaskStatusDone, TaskStatusCanceled:
		return true
	}
	return false
}

type Task struct {
	ID          uint64         `gorm:"primarykey" json:"id"`
	Title       string         `gorm:"not null" json:"title"`
	Project     string         `gorm:"type:varchar(255);not null" json:"project"`
	Description string         `gorm:"type:text" json:"description"`
	Status      TaskStatus     `gorm:"type:varchar(20);not null;default:'TO_DO'" json:"status"`
	Priority    int            `gorm:"not null;default:0" json:"priority"`
	Deadline    *time.Time     `json:"deadline"`
	CreatorID   uint64         `gorm:"not null" json:"creator_id"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Creator     User             `gorm:"foreignKey:CreatorID" json:"creator,omitempty"`
	Permissions []TaskPermission `gorm:"foreignKey:TaskID" json:"permissions,omitempty"`
}

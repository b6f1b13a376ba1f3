package models

import (
	"time"

	"gorm.io/gorm"
)

type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "TODO"
	TaskStatusInProgress TaskStatus = "IN_PROGRESS"
	TaskStatusDone       TaskStatus = "DONE"
)

type Task struct {
	ID          uint64         `gorm:"primarykey" json:"id"`
	IDTask      string         `gorm:"type:varchar(32);not null;uniqueIndex:idx_tasks_workspace_key" json:"id_task"`
	Title       string         `gorm:"not null" json:"title"`
	Description string         `gorm:"type:text" json:"description"`
	Status      TaskStatus     `gorm:"type:varchar(20);not null;default:'TODO'" json:"status"`
	WorkspaceID uint64         `gorm:"not null;uniqueIndex:idx_tasks_workspace_key" json:"workspace_id"`
	StepID      uint64         `gorm:"not null;index" json:"step_id"`
	SprintID    *uint64        `gorm:"index" json:"sprint_id"`
	EpicID      *uint64        `gorm:"index" json:"epic_id"`
	PriorityID  uint64         `gorm:"not null" json:"priority_id"`
	TypeTaskID  uint64         `gorm:"not null" json:"type_task_id"`
	ReporterID  uint64         `gorm:"not null" json:"reporter_id"`
	AssigneeID  *uint64        `gorm:"index" json:"assignee_id"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Step   Step    `gorm:"foreignKey:StepID" json:"step,omitempty"`
	Sprint *Sprint `gorm:"foreignKey:SprintID;constraint:OnDelete:SET NULL" json:"sprint,omitempty"`
	Epic   *Epic   `gorm:"foreignKey:EpicID" json:"epic,omitempty"`
}

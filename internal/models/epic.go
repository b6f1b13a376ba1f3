package models

import (
	"time"

	"gorm.io/gorm"
)

type EpicStatus string

const (
	EpicStatusOpen EpicStatus = "OPEN"
	EpicStatusDone EpicStatus = "DONE"
)

type Epic struct {
	ID          uint64         `gorm:"primarykey" json:"id"`
	Key         string         `gorm:"type:varchar(32);not null;uniqueIndex:idx_epics_workspace_key" json:"key"`
	Title       string         `gorm:"not null" json:"title"`
	Description string         `gorm:"type:text" json:"description"`
	Status      EpicStatus     `gorm:"type:varchar(20);not null;default:'OPEN'" json:"status"`
	WorkspaceID uint64         `gorm:"not null;uniqueIndex:idx_epics_workspace_key" json:"workspace_id"`
	PriorityID  uint64         `gorm:"not null" json:"priority_id"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

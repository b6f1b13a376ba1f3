package models

import (
	"time"

	"gorm.io/gorm"
)

type Workspace struct {
	ID          uint64         `gorm:"primarykey" json:"id"`
	Name        string         `gorm:"type:varchar(255);not null" json:"name"`
	Prefix      string         `gorm:"type:varchar(5);not null" json:"prefix"`
	Methodology string         `gorm:"type:varchar(50)" json:"methodology"`
	NextTaskSeq int64          `gorm:"not null;default:1" json:"next_task_seq"`
	NextEpicSeq int64          `gorm:"not null;default:1" json:"next_epic_seq"`
	TeamID      *uint64        `gorm:"index" json:"team_id"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Steps []WorkspaceStep `gorm:"foreignKey:WorkspaceID" json:"steps,omitempty"`
}

// SequenceKind selects which per-workspace counter a display key is drawn from.
type SequenceKind string

const (
	SequenceTask SequenceKind = "task"
	SequenceEpic SequenceKind = "epic"
)

// Column returns the workspaces column holding the counter for k.
func (k SequenceKind) Column() string {
	if k == SequenceEpic {
		return "next_epic_seq"
	}
	return "next_task_seq"
}

// Valid reports whether k is a known kind.
func (k SequenceKind) Valid() bool {
	return k == SequenceTask || k == SequenceEpic
}

package models

import "time"

type Step struct {
	ID        uint64    `gorm:"primarykey" json:"id"`
	Name      string    `gorm:"type:varchar(100);not null" json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// WorkspaceStep binds a step to a workspace at a position in its workflow.
// The highest Order is the workspace's final step.
type WorkspaceStep struct {
	WorkspaceID uint64 `gorm:"primarykey" json:"workspace_id"`
	StepID      uint64 `gorm:"primarykey" json:"step_id"`
	Order       int    `gorm:"column:step_order;not null" json:"order"`

	// Relations
	Step Step `gorm:"foreignKey:StepID" json:"step,omitempty"`
}

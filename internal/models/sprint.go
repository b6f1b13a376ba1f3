package models

import "time"

// SprintState is the lifecycle position of a sprint. It is not stored; it is
// derived from IsActive and ClosedAt.
type SprintState string

const (
	SprintPlanned SprintState = "planned"
	SprintActive  SprintState = "active"
	SprintClosed  SprintState = "closed"
)

// ParseSprintState returns the state named by s.
func ParseSprintState(s string) (SprintState, bool) {
	switch SprintState(s) {
	case SprintPlanned, SprintActive, SprintClosed:
		return SprintState(s), true
	}
	return "", false
}

type Sprint struct {
	ID          uint64     `gorm:"primarykey" json:"id"`
	WorkspaceID uint64     `gorm:"not null;index" json:"workspace_id"`
	Name        string     `gorm:"type:varchar(255);not null" json:"name"`
	Goal        string     `gorm:"type:text" json:"goal"`
	StartDate   *time.Time `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
	IsActive    bool       `gorm:"not null;default:false" json:"is_active"`
	ActivatedAt *time.Time `json:"activated_at"`
	ClosedAt    *time.Time `gorm:"index" json:"closed_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// State derives the lifecycle state. A closed sprint stays closed even if
// IsActive was left set, since closing is irreversible.
func (s *Sprint) State() SprintState {
	switch {
	case s.ClosedAt != nil:
		return SprintClosed
	case s.IsActive:
		return SprintActive
	default:
		return SprintPlanned
	}
}

// HasDates reports whether both start and end dates are set.
func (s *Sprint) HasDates() bool {
	return s.StartDate != nil && s.EndDate != nil
}

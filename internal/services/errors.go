package services

import "errors"

// Error kinds. Every error returned by a service for a client mistake wraps
// exactly one of these, so callers classify with errors.Is.
var (
	ErrNotFound        = errors.New("not found")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrInvalidState    = errors.New("invalid state")
	ErrConflict        = errors.New("conflict")
)

type kindError struct {
	kind error
	msg  string
}

func (e *kindError) Error() string { return e.msg }

func (e *kindError) Unwrap() error { return e.kind }

func newError(kind error, msg string) error {
	return &kindError{kind: kind, msg: msg}
}

var (
	ErrWorkspaceNotFound = newError(ErrNotFound, "workspace not found")
	ErrStepNotFound      = newError(ErrNotFound, "step not found")
	ErrTaskNotFound      = newError(ErrNotFound, "task not found")
	ErrEpicNotFound      = newError(ErrNotFound, "epic not found")
	ErrSprintNotFound    = newError(ErrNotFound, "sprint not found")
	ErrUserNotFound      = newError(ErrNotFound, "user not found")

	ErrInvalidPrefix           = newError(ErrInvalidArgument, "prefix must be 1 to 5 letters")
	ErrNameRequired            = newError(ErrInvalidArgument, "name is required")
	ErrTitleRequired           = newError(ErrInvalidArgument, "title is required")
	ErrDuplicateStep           = newError(ErrInvalidArgument, "step is listed more than once")
	ErrDuplicateStepOrder      = newError(ErrInvalidArgument, "step orders must be unique")
	ErrStepNotInWorkspace      = newError(ErrInvalidArgument, "step does not belong to workspace")
	ErrSprintNotInWorkspace    = newError(ErrInvalidArgument, "sprint does not belong to workspace")
	ErrEpicNotInWorkspace      = newError(ErrInvalidArgument, "epic does not belong to workspace")
	ErrTargetNotInWorkspace    = newError(ErrInvalidArgument, "target sprint does not belong to the same workspace")
	ErrTargetSprintMissing     = newError(ErrInvalidArgument, "target sprint does not exist")
	ErrTargetIsSource          = newError(ErrInvalidArgument, "target sprint must differ from the sprint being closed")
	ErrActivationNeedsDates    = newError(ErrInvalidArgument, "must define start and end to activate on creation")
	ErrSprintDatesRequired     = newError(ErrInvalidArgument, "sprint start and end dates must be set to activate")
	ErrSprintEndBeforeStart    = newError(ErrInvalidArgument, "sprint end date is before its start date")
	ErrInvalidMigrationTarget  = newError(ErrInvalidArgument, "migration target must be backlog or sprint")
	ErrMigrationSprintRequired = newError(ErrInvalidArgument, "migration to a sprint requires a sprint id")
	ErrBacklogWithSprintID     = newError(ErrInvalidArgument, "sprint id is only allowed when migrating to a sprint")
	ErrNoKeysProvided          = newError(ErrInvalidArgument, "at least one task key is required")
	ErrNoSprintIDsProvided     = newError(ErrInvalidArgument, "at least one sprint id is required")
	ErrInvalidSequenceKind     = newError(ErrInvalidArgument, "unknown sequence kind")
	ErrInvalidTaskStatus       = newError(ErrInvalidArgument, "unknown task status")
	ErrInvalidEpicStatus       = newError(ErrInvalidArgument, "unknown epic status")

	ErrSprintClosed       = newError(ErrInvalidState, "sprint is closed and cannot be reactivated")
	ErrTargetSprintClosed = newError(ErrInvalidState, "target sprint is closed")

	ErrTaskHasEpic          = newError(ErrConflict, "task is attached to an epic")
	ErrEpicHasTasks         = newError(ErrConflict, "epic still has tasks")
	ErrWorkspaceHasContents = newError(ErrConflict, "workspace still has tasks, epics or sprints")
)

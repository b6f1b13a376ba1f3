package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/yukikurage/sprint-tracker-api/internal/logging"
	"github.com/yukikurage/sprint-tracker-api/internal/models"
	"github.com/yukikurage/sprint-tracker-api/internal/repository"
	"gorm.io/gorm"
)

// Allocation is a reserved position in a workspace counter and its display key.
type Allocation struct {
	Sequence int64
	Key      string
}

// SequenceAllocator mints workspace-scoped display keys for tasks and epics.
type SequenceAllocator struct {
	repos *repository.Repositories
}

// NewSequenceAllocator creates a new SequenceAllocator
func NewSequenceAllocator(repos *repository.Repositories) *SequenceAllocator {
	return &SequenceAllocator{repos: repos}
}

// AllocateKey reserves the next key in its own transaction. Callers that insert
// the keyed entity must use AllocateKeyTx inside their transaction instead, so a
// failed insert also rolls back the reservation.
func (a *SequenceAllocator) AllocateKey(ctx context.Context, workspaceID uint64, kind models.SequenceKind) (Allocation, error) {
	var alloc Allocation
	err := a.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		var err error
		alloc, err = a.AllocateKeyTx(ctx, tx, workspaceID, kind)
		return err
	})
	if err != nil {
		return Allocation{}, err
	}
	return alloc, nil
}

// AllocateKeyTx reserves the next key using tx, which must be a transaction-bound bundle.
func (a *SequenceAllocator) AllocateKeyTx(ctx context.Context, tx *repository.Repositories, workspaceID uint64, kind models.SequenceKind) (Allocation, error) {
	if !kind.Valid() {
		return Allocation{}, ErrInvalidSequenceKind
	}

	ws, err := tx.Workspaces.IncrementSequence(ctx, workspaceID, kind)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Allocation{}, ErrWorkspaceNotFound
		}
		return Allocation{}, fmt.Errorf("failed to allocate %s key: %w", kind, err)
	}

	next := ws.NextTaskSeq
	if kind == models.SequenceEpic {
		next = ws.NextEpicSeq
	}

	alloc := Allocation{
		Sequence: next - 1,
		Key:      FormatKey(ws.Prefix, kind, next-1),
	}

	logging.Logger.WithFields(logrus.Fields{
		"workspace_id": workspaceID,
		"kind":         kind,
		"key":          alloc.Key,
	}).Debug("sequence allocated")

	return alloc, nil
}

// FormatKey renders a display key: PREFIX-N for tasks, PREFIX-EN for epics.
func FormatKey(prefix string, kind models.SequenceKind, seq int64) string {
	if kind == models.SequenceEpic {
		return fmt.Sprintf("%s-E%d", prefix, seq)
	}
	return fmt.Sprintf("%s-%d", prefix, seq)
}

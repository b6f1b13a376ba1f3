package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/yukikurage/sprint-tracker-api/internal/database"
	"github.com/yukikurage/sprint-tracker-api/internal/models"
	"github.com/yukikurage/sprint-tracker-api/internal/repository"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// fakeClock is a settable Clock
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 1, 2, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// openTestDB opens a migrated in-memory database. One connection keeps every
// caller on the same in-memory database.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Discard,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	require.NoError(t, db.AutoMigrate(database.Models()...))
	return db
}

// workflow is a workspace with three ordered steps; done is the final one
type workflow struct {
	ws    *models.Workspace
	todo  *models.Step
	doing *models.Step
	done  *models.Step
}

func createStep(t *testing.T, db *gorm.DB, name string) *models.Step {
	t.Helper()
	step := &models.Step{Name: name}
	require.NoError(t, db.Create(step).Error)
	return step
}

func createWorkflow(t *testing.T, db *gorm.DB, repos *repository.Repositories, prefix string) workflow {
	t.Helper()

	wf := workflow{
		todo:  createStep(t, db, prefix+" todo"),
		doing: createStep(t, db, prefix+" doing"),
		done:  createStep(t, db, prefix+" done"),
	}

	ws, err := NewWorkspaceService(repos).CreateWorkspace(context.Background(), CreateWorkspaceInput{
		Name:   prefix + " workspace",
		Prefix: prefix,
		Steps: []StepBinding{
			{StepID: wf.todo.ID, Order: 1},
			{StepID: wf.doing.ID, Order: 2},
			{StepID: wf.done.ID, Order: 3},
		},
	})
	require.NoError(t, err)
	wf.ws = ws
	return wf
}

func datePtr(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func uint64Ptr(v uint64) *uint64 {
	return &v
}

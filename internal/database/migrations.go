package database

import (
	"fmt"

	"github.com/yukikurage/sprint-tracker-api/internal/logging"
	"gorm.io/gorm"
)

// AddIndexes adds composite indexes that the model tags cannot express
func AddIndexes(db *gorm.DB) error {
	indexes := []struct {
		table   string
		name    string
		columns string
	}{
		// Sprint close migrates by (sprint_id, step_id)
		{"tasks", "idx_tasks_sprint_step", "sprint_id, step_id"},
		{"tasks", "idx_tasks_workspace_step", "workspace_id, step_id"},

		// Sprint listing by state
		{"sprints", "idx_sprints_workspace_state", "workspace_id, closed_at, is_active"},

		// Final step lookup
		{"workspace_steps", "idx_workspace_steps_order", "workspace_id, step_order"},

		{"epics", "idx_epics_workspace_id", "workspace_id"},
	}

	migrator := db.Migrator()
	for _, idx := range indexes {
		if migrator.HasIndex(idx.table, idx.name) {
			logging.Logger.WithField("index", idx.name).Debug("Index already exists, skipping")
			continue
		}

		sql := fmt.Sprintf("CREATE INDEX %s ON %s (%s)", idx.name, idx.table, idx.columns)
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}

		logging.Logger.WithField("index", idx.name).Infof("Created index on %s(%s)", idx.table, idx.columns)
	}

	return nil
}

// MigrateDatabase runs the migrations that follow AutoMigrate
func MigrateDatabase(db *gorm.DB) error {
	if err := AddIndexes(db); err != nil {
		return fmt.Errorf("failed to add indexes: %w", err)
	}

	return nil
}

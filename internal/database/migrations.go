package database

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// AddIndexes adds the composite indexes the dashboards filter on.
// Only used on postgres; it reads pg_indexes.
func AddIndexes(db *gorm.DB, log *logrus.Logger) error {
	indexes := []struct {
		table   string
		name    string
		columns string
	}{
		// Own history, newest first
		{"pto_requests", "idx_pto_requests_user_created", "user_id, created_at DESC"},
		// Admin filter by status
		{"pto_requests", "idx_pto_requests_status_created", "status, created_at DESC"},

		// Team and department lookups
		{"users", "idx_users_manager_department", "manager_id, department_id"},
		{"departments", "idx_departments_approver", "approver_id"},
	}

	for _, idx := range indexes {
		var count int64
		err := db.Raw(`
			SELECT COUNT(*)
			FROM pg_indexes
			WHERE tablename = ? AND indexname = ?
		`, idx.table, idx.name).Count(&count).Error

		if err != nil {
			return fmt.Errorf("failed to check index %s: %w", idx.name, err)
		}

		if count > 0 {
			log.WithField("index", idx.name).Debug("Index already exists, skipping")
			continue
		}

		sql := fmt.Sprintf("CREATE INDEX %s ON %s (%s)", idx.name, idx.table, idx.columns)
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}

		log.WithFields(logrus.Fields{
			"index": idx.name,
			"table": idx.table,
		}).Info("Created index")
	}

	return nil
}

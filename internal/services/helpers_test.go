package services

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/pto-approval-api/internal/database"
	"github.com/yukikurage/pto-approval-api/internal/models"
	"github.com/yukikurage/pto-approval-api/internal/notify"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// openTestDB returns a migrated in-memory database. A single connection keeps
// every query on the same in-memory schema.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Silent),
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(database.Models()...))

	t.Cleanup(func() {
		sqlDB.Close()
	})

	return db
}

type userSeed struct {
	Name         string
	Role         models.UserRole
	Status       models.UserStatus
	Balance      int64
	DepartmentID *uint64
	ManagerID    *uint64
}

func seedUser(t *testing.T, db *gorm.DB, seed userSeed) *models.User {
	t.Helper()

	if seed.Role == "" {
		seed.Role = models.RoleUser
	}
	if seed.Status == "" {
		seed.Status = models.UserStatusActive
	}

	user := &models.User{
		Email:        fmt.Sprintf("%s@example.com", seed.Name),
		Name:         seed.Name,
		PasswordHash: "hashedpassword",
		Role:         seed.Role,
		Status:       seed.Status,
		PTOBalance:   decimal.NewFromInt(seed.Balance),
		DepartmentID: seed.DepartmentID,
		ManagerID:    seed.ManagerID,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func seedDepartment(t *testing.T, db *gorm.DB, name string, managerID, approverID *uint64) *models.Department {
	t.Helper()

	department := &models.Department{
		Name:          name,
		ManagerUserID: managerID,
		ApproverID:    approverID,
	}
	require.NoError(t, db.Create(department).Error)
	return department
}

func reloadUser(t *testing.T, db *gorm.DB, id uint64) *models.User {
	t.Helper()

	var user models.User
	require.NoError(t, db.First(&user, id).Error)
	return &user
}

func reloadRequest(t *testing.T, db *gorm.DB, id uint64) *models.PTORequest {
	t.Helper()

	var request models.PTORequest
	require.NoError(t, db.First(&request, id).Error)
	return &request
}

// recordingDispatcher keeps every notification and fails when err is set
type recordingDispatcher struct {
	mu   sync.Mutex
	sent []notify.Notification
	err  error
}

func (d *recordingDispatcher) Send(_ context.Context, n notify.Notification) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sent = append(d.sent, n)
	return d.err
}

func (d *recordingDispatcher) last() notify.Notification {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.sent) == 0 {
		return notify.Notification{}
	}
	return d.sent[len(d.sent)-1]
}

func (d *recordingDispatcher) count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.sent)
}

func uint64Ptr(v uint64) *uint64 {
	return &v
}

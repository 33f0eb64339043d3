package repository

import (
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/pto-approval-api/internal/models"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	updateRequestSQL = regexp.QuoteMeta("UPDATE `pto_requests` SET")
	debitBalanceSQL  = regexp.QuoteMeta("UPDATE `users` SET `pto_balance`=pto_balance - ?")
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	return db, mock
}

func approval(debit int64) Transition {
	decidedBy := uint64(2)
	return Transition{
		RequestID:   10,
		To:          models.RequestStatusApproved,
		DecidedByID: &decidedBy,
		DecidedAt:   time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC),
		UserID:      1,
		Debit:       decimal.NewFromInt(debit),
	}
}

func TestTransition_ApproveDebitsInSameTransaction(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPTORequestRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(updateRequestSQL).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(debitBalanceSQL).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Transition(approval(40)))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransition_NoLongerPendingRollsBack(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPTORequestRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(updateRequestSQL).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.Transition(approval(40))
	assert.ErrorIs(t, err, ErrStatusConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransition_BalanceTooLowRollsBack(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPTORequestRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(updateRequestSQL).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(debitBalanceSQL).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.Transition(approval(40))
	assert.ErrorIs(t, err, ErrBalanceTooLow)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransition_DenySkipsDebit(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPTORequestRepository(db)

	deny := approval(0)
	deny.To = models.RequestStatusDenied

	mock.ExpectBegin()
	mock.ExpectExec(updateRequestSQL).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Transition(deny))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransition_DatabaseErrorPropagates(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPTORequestRepository(db)

	boom := errors.New("connection reset")

	mock.ExpectBegin()
	mock.ExpectExec(updateRequestSQL).WillReturnError(boom)
	mock.ExpectRollback()

	err := repo.Transition(approval(40))
	assert.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}

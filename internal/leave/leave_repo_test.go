package leave_test

import (
	"context"
	"testing"

	"go-leavedesk/internal/leave"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Statements issued through WithTx must run on the supplied transaction,
// not on the pool the repository was built over. Two separate mock
// databases make any statement that strays to the pool fail both
// expectation checks: the tx mock misses it and the pool mock sees an
// unexpected call.
func TestLeaveRepository_WithTxRunsOnTransaction(t *testing.T) {
	poolDB, poolMock, err := sqlmock.New()
	assert.NoError(t, err)
	defer poolDB.Close()

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: poolDB}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	assert.NoError(t, err)

	repo := leave.NewRepository(gormDB)

	txDB, txMock, err := sqlmock.New()
	assert.NoError(t, err)
	defer txDB.Close()

	requesterID := uuid.New().String()
	leaveID := uuid.New().String()

	txMock.ExpectBegin()
	txMock.ExpectExec("UPDATE users SET leave_balance").
		WithArgs(3, requesterID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	txMock.ExpectExec(`DELETE FROM "leave_requests"`).
		WithArgs(leaveID, leave.StatusPending).
		WillReturnResult(sqlmock.NewResult(0, 1))
	txMock.ExpectRollback()

	tx, err := txDB.Begin()
	assert.NoError(t, err)

	qtx := repo.WithTx(tx)

	assert.NoError(t, qtx.DebitLeaveBalance(context.Background(), requesterID, 3))

	removed, err := qtx.DeleteIfPending(context.Background(), leaveID)
	assert.NoError(t, err)
	assert.True(t, removed)

	// Rolling back discards everything issued through qtx.
	assert.NoError(t, tx.Rollback())

	assert.NoError(t, txMock.ExpectationsWereMet())
	assert.NoError(t, poolMock.ExpectationsWereMet())
}

// The pool-backed repository must keep running on the pool after WithTx
// has handed out a transactional view.
func TestLeaveRepository_PoolUnaffectedByWithTx(t *testing.T) {
	poolDB, poolMock, err := sqlmock.New()
	assert.NoError(t, err)
	defer poolDB.Close()

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: poolDB}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	assert.NoError(t, err)

	repo := leave.NewRepository(gormDB)

	txDB, txMock, err := sqlmock.New()
	assert.NoError(t, err)
	defer txDB.Close()

	txMock.ExpectBegin()
	tx, err := txDB.Begin()
	assert.NoError(t, err)
	_ = repo.WithTx(tx)

	requesterID := uuid.New().String()
	poolMock.ExpectExec("UPDATE users SET leave_balance").
		WithArgs(2, requesterID).
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, repo.DebitLeaveBalance(context.Background(), requesterID, 2))

	assert.NoError(t, poolMock.ExpectationsWereMet())
}

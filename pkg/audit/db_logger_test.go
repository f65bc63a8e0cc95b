package audit

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDBLoggerRoundTrip(t *testing.T) {
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	defer db.Close()

	logger, err := NewDBLogger(db)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, logger.Log(ctx, NewRecord(RecordGroupMemberAdd, OutcomeSuccess, "alice", "Engineering", "bob")))
	require.NoError(t, logger.Log(ctx, NewRecord(RecordAccessDenied, OutcomeDenied, "bob", "Secret", "view")))

	records, err := logger.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, records, 2)

	// Newest first.
	assert.Equal(t, RecordAccessDenied, records[0].Type)
	assert.Equal(t, OutcomeDenied, records[0].Outcome)
	assert.Equal(t, RecordGroupMemberAdd, records[1].Type)
	assert.Equal(t, "bob", records[1].Detail)
	assert.False(t, records[0].Timestamp.IsZero())
}

func TestDBLoggerInsertFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS audit_records").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO audit_records").
		WillReturnError(sql.ErrConnDone)

	logger, err := NewDBLogger(db)
	require.NoError(t, err)

	err = logger.Log(context.Background(), NewRecord(RecordPageSave, OutcomeSuccess, "alice", "Main", ""))
	assert.ErrorIs(t, err, sql.ErrConnDone)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDBLoggerRecentLimit(t *testing.T) {
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	defer db.Close()

	logger, err := NewDBLogger(db)
	require.NoError(t, err)

	ctx := context.Background()
	for i := 0; i < 5; i++ {
		require.NoError(t, logger.Log(ctx, NewRecord(RecordPageSave, OutcomeSuccess, "alice", "Main", "")))
	}

	records, err := logger.Recent(ctx, 3)
	require.NoError(t, err)
	assert.Len(t, records, 3)
}

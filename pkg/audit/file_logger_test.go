package audit

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileLoggerWritesJSONLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "audit.log")
	logger, err := NewFileLogger(path)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, logger.Log(ctx, NewRecord(RecordGroupCreate, OutcomeSuccess, "alice", "Engineering", "")))
	require.NoError(t, logger.Log(ctx, NewRecord(RecordAccessDenied, OutcomeDenied, "bob", "Secret", "delete")))
	require.NoError(t, logger.Close())

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var records []Record
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var r Record
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &r))
		records = append(records, r)
	}
	require.NoError(t, scanner.Err())

	require.Len(t, records, 2)
	assert.Equal(t, RecordGroupCreate, records[0].Type)
	assert.Equal(t, "Engineering", records[0].Resource)
	assert.Equal(t, OutcomeDenied, records[1].Outcome)
	assert.Equal(t, "delete", records[1].Detail)
}

func TestFileLoggerAppendsAcrossReopens(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.log")
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		logger, err := NewFileLogger(path)
		require.NoError(t, err)
		require.NoError(t, logger.Log(ctx, NewRecord(RecordPageSave, OutcomeSuccess, "alice", "Main", "")))
		require.NoError(t, logger.Close())
	}

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 2, countLines(data))
}

func countLines(data []byte) int {
	n := 0
	for _, b := range data {
		if b == '\n' {
			n++
		}
	}
	return n
}

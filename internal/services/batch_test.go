package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBatchExecutor_IsolatesFailures(t *testing.T) {
	conn := &fakeConn{
		rows:   []map[string]any{{"n": int64(1)}},
		failOn: map[string]error{"missing_table": errors.New(`relation "missing_table" does not exist`)},
	}
	history := &fakeHistory{}

	result := NewBatchExecutor(history).Execute(context.Background(), conn, "p1", "u1", []string{
		"SELECT 1;",
		"  ",
		"SELECT * FROM missing_table",
		"UPDATE t SET x = 1",
	})

	assert.Equal(t, 2, result.Succeeded)
	assert.Equal(t, 1, result.Failed)
	require.Len(t, result.Results, 3)

	assert.Equal(t, "SELECT 1", result.Results[0].Query)
	assert.Equal(t, 1, result.Results[0].RowCount)
	assert.False(t, result.Results[1].Success)
	assert.Contains(t, result.Results[1].Error, "does not exist")
	assert.True(t, result.Results[2].Success)

	require.Len(t, history.entries, 3)
	assert.Equal(t, "SELECT", history.entries[0].QueryType)
	assert.Equal(t, "UPDATE", history.entries[2].QueryType)
	assert.Equal(t, "u1", history.entries[2].UserID)
}

func TestBatchExecutor_CapsRows(t *testing.T) {
	rows := make([]map[string]any, 5)
	for i := range rows {
		rows[i] = map[string]any{"i": i}
	}
	exec := &BatchExecutor{MaxRows: 2}

	result := exec.Execute(context.Background(), &fakeConn{rows: rows}, "p1", "u1", []string{"SELECT i FROM t"})
	require.Len(t, result.Results, 1)
	assert.Len(t, result.Results[0].Rows, 2)
	assert.Equal(t, 5, result.Results[0].RowCount)
}

func TestBatchExecutor_Empty(t *testing.T) {
	conn := &fakeConn{}
	result := NewBatchExecutor(nil).Execute(context.Background(), conn, "p1", "u1", []string{";", ""})
	assert.Empty(t, result.Results)
	assert.Empty(t, conn.queries)
}

package sqlite

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStmtCache_Reuse(t *testing.T) {
	conn := newTestConn(t)

	stmt, err := conn.Prepare("SELECT 1")
	require.NoError(t, err)
	handle := stmt.raw.Handle()
	require.NoError(t, stmt.Close())
	assert.Equal(t, 1, conn.cache.len())

	// Same text checks the same native handle back out.
	again, err := conn.Prepare("SELECT 1")
	require.NoError(t, err)
	assert.Equal(t, handle, again.raw.Handle())
	assert.Equal(t, 0, conn.cache.len())

	// Different text compiles fresh even while the first is checked out.
	other, err := conn.Prepare("SELECT 2")
	require.NoError(t, err)
	assert.NotEqual(t, handle, other.raw.Handle())

	require.NoError(t, again.Close())
	require.NoError(t, other.Close())
	assert.Equal(t, 2, conn.cache.len())
}

func TestStmtCache_KeyIsVerbatim(t *testing.T) {
	conn := newTestConn(t)

	stmt, err := conn.Prepare("SELECT 1")
	require.NoError(t, err)
	handle := stmt.raw.Handle()
	require.NoError(t, stmt.Close())

	spaced, err := conn.Prepare("SELECT  1")
	require.NoError(t, err)
	assert.NotEqual(t, handle, spaced.raw.Handle())
	require.NoError(t, spaced.Close())
	assert.Equal(t, 2, conn.cache.len())
}

func TestStmtCache_CapacityEviction(t *testing.T) {
	conn := newTestConn(t)

	for i := 0; i <= defaultCacheCapacity; i++ {
		stmt, err := conn.Prepare(fmt.Sprintf("SELECT %d", i))
		require.NoError(t, err)
		require.NoError(t, stmt.Close())
	}
	assert.Equal(t, defaultCacheCapacity, conn.cache.len())

	// The oldest entry was evicted and finalized.
	assert.Nil(t, conn.cache.get("SELECT 0"))
	assert.NotNil(t, conn.cache.get(fmt.Sprintf("SELECT %d", defaultCacheCapacity)))
}

func TestStmtCache_CheckinClearsState(t *testing.T) {
	conn := newTestConn(t)
	require.NoError(t, conn.ExecBatch("CREATE TABLE t (v INTEGER); INSERT INTO t VALUES (1), (2)"))

	stmt, err := conn.Prepare("SELECT v FROM t WHERE v >= ?")
	require.NoError(t, err)
	rows, err := stmt.Query(1)
	require.NoError(t, err)
	require.True(t, rows.Next())
	// Check in mid-iteration with a live binding.
	require.NoError(t, stmt.Close())

	// The next checkout starts from a clean slate: binding gone means the
	// comparison is against NULL and no rows match.
	again, err := conn.Prepare("SELECT v FROM t WHERE v >= ?")
	require.NoError(t, err)
	rows, err = again.Query()
	require.NoError(t, err)
	assert.False(t, rows.Next())
	require.NoError(t, rows.Err())
	require.NoError(t, again.Close())
}

func TestStmtCache_Discard(t *testing.T) {
	conn := newTestConn(t)

	stmt, err := conn.Prepare("SELECT 1")
	require.NoError(t, err)
	stmt.Discard()
	require.NoError(t, stmt.Close())
	assert.Equal(t, 0, conn.cache.len())
}

func TestStmtCache_DoubleCloseStmt(t *testing.T) {
	conn := newTestConn(t)

	stmt, err := conn.Prepare("SELECT 1")
	require.NoError(t, err)
	require.NoError(t, stmt.Close())
	require.NoError(t, stmt.Close())
	assert.Equal(t, 1, conn.cache.len())
}

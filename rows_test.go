package sqlite

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRows_Iterate(t *testing.T) {
	conn := newTestConn(t)
	require.NoError(t, conn.ExecBatch(`
		CREATE TABLE t (id INTEGER PRIMARY KEY, name TEXT);
		INSERT INTO t (name) VALUES ('a'), ('b'), ('c');
	`))

	stmt, err := conn.Prepare("SELECT id, name FROM t ORDER BY id")
	require.NoError(t, err)
	defer func() {
		_ = stmt.Close()
	}()

	rows, err := stmt.Query()
	require.NoError(t, err)
	var names []string
	for rows.Next() {
		name, err := rows.Row().Text(1)
		require.NoError(t, err)
		names = append(names, name)
	}
	require.NoError(t, rows.Err())
	assert.Equal(t, []string{"a", "b", "c"}, names)

	t.Run("next after exhaustion", func(t *testing.T) {
		assert.False(t, rows.Next())
	})
	t.Run("close idempotent", func(t *testing.T) {
		require.NoError(t, rows.Close())
		require.NoError(t, rows.Close())
	})
}

func TestRows_RoundTrips(t *testing.T) {
	conn := newTestConn(t)
	require.NoError(t, conn.ExecBatch("CREATE TABLE t (i INTEGER, f REAL, s TEXT, b BLOB, n INTEGER)"))

	blob := []byte{0x00, 0x01, 0xff, 0xfe}
	text := "héllo wörld ✓"
	_, err := conn.Exec("INSERT INTO t VALUES (?, ?, ?, ?, ?)",
		int64(-9007199254740993), 3.5, text, blob, nil)
	require.NoError(t, err)

	err = conn.QueryRow("SELECT i, f, s, b, n FROM t", nil, func(row *Row) error {
		i, err := row.Int64(0)
		require.NoError(t, err)
		assert.Equal(t, int64(-9007199254740993), i)

		f, err := row.Float(1)
		require.NoError(t, err)
		assert.Equal(t, 3.5, f)

		s, err := row.Text(2)
		require.NoError(t, err)
		assert.Equal(t, text, s)

		b, err := row.Blob(3)
		require.NoError(t, err)
		assert.Equal(t, blob, b)

		v, err := row.Value(4)
		require.NoError(t, err)
		assert.True(t, v.IsNull())
		return nil
	})
	require.NoError(t, err)
}

func TestRows_Coercion(t *testing.T) {
	conn := newTestConn(t)

	err := conn.QueryRow("SELECT 42, 'text', x'00ff'", nil, func(row *Row) error {
		t.Run("integer widens to float", func(t *testing.T) {
			f, err := row.Float(0)
			require.NoError(t, err)
			assert.Equal(t, 42.0, f)
		})
		t.Run("integer to bool", func(t *testing.T) {
			b, err := row.Bool(0)
			require.NoError(t, err)
			assert.True(t, b)
		})
		t.Run("text is not an integer", func(t *testing.T) {
			_, err := row.Int64(1)
			require.ErrorIs(t, err, ErrColumnType)
			var cte *ColumnTypeError
			require.ErrorAs(t, err, &cte)
			assert.Equal(t, 1, cte.Index)
			assert.Equal(t, TypeText, cte.Type)
		})
		t.Run("blob is not text", func(t *testing.T) {
			_, err := row.Text(2)
			require.ErrorIs(t, err, ErrColumnType)
		})
		t.Run("raw value bypasses coercion", func(t *testing.T) {
			v, err := row.Value(1)
			require.NoError(t, err)
			assert.Equal(t, TypeText, v.Type())
			assert.Equal(t, "text", v.Text())
		})
		return nil
	})
	require.NoError(t, err)
}

func TestRows_ColumnAccessErrors(t *testing.T) {
	conn := newTestConn(t)

	err := conn.QueryRow("SELECT 1 AS a, 2 AS b", nil, func(row *Row) error {
		assert.Equal(t, 2, row.ColumnCount())

		i, err := row.Index("b")
		require.NoError(t, err)
		assert.Equal(t, 1, i)

		_, err = row.Index("B")
		require.ErrorIs(t, err, ErrColumnName)

		_, err = row.Value(2)
		require.ErrorIs(t, err, ErrColumnIndex)
		_, err = row.Value(-1)
		require.ErrorIs(t, err, ErrColumnIndex)

		var v int64
		require.NoError(t, row.GetName("a", &v))
		assert.Equal(t, int64(1), v)
		return nil
	})
	require.NoError(t, err)
}

func TestRows_StaleRow(t *testing.T) {
	conn := newTestConn(t)
	require.NoError(t, conn.ExecBatch("CREATE TABLE t (v INTEGER); INSERT INTO t VALUES (1), (2)"))

	stmt, err := conn.Prepare("SELECT v FROM t ORDER BY v")
	require.NoError(t, err)
	defer func() {
		_ = stmt.Close()
	}()

	rows, err := stmt.Query()
	require.NoError(t, err)
	require.True(t, rows.Next())
	stale := rows.Row()

	v, err := stale.Int64(0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), v)

	require.True(t, rows.Next())
	_, err = stale.Int64(0)
	require.ErrorIs(t, err, ErrRowInvalid)

	fresh := rows.Row()
	require.NoError(t, rows.Close())
	_, err = fresh.Int64(0)
	require.ErrorIs(t, err, ErrRowInvalid)
}

func TestRows_RowAfterStmtClose(t *testing.T) {
	conn := newTestConn(t)

	stmt, err := conn.PrepareTransient("SELECT 1 AS a")
	require.NoError(t, err)
	rows, err := stmt.Query()
	require.NoError(t, err)
	require.True(t, rows.Next())
	row := rows.Row()
	require.NoError(t, stmt.Close())

	// The native handle is gone; every accessor must refuse instead of
	// touching it.
	assert.Equal(t, 0, row.ColumnCount())
	_, err = row.Index("a")
	require.ErrorIs(t, err, ErrRowInvalid)
	_, err = row.Value(0)
	require.ErrorIs(t, err, ErrRowInvalid)
	var v int64
	require.ErrorIs(t, row.Get(0, &v), ErrRowInvalid)
	require.ErrorIs(t, row.Scan(&v), ErrRowInvalid)

	assert.False(t, rows.Next())
	require.NoError(t, rows.Close())
}

func TestRows_Nullable(t *testing.T) {
	conn := newTestConn(t)
	require.NoError(t, conn.ExecBatch("CREATE TABLE t (v TEXT); INSERT INTO t VALUES ('x'), (NULL)"))

	stmt, err := conn.Prepare("SELECT v FROM t ORDER BY v IS NULL")
	require.NoError(t, err)
	defer func() {
		_ = stmt.Close()
	}()

	rows, err := stmt.Query()
	require.NoError(t, err)

	require.True(t, rows.Next())
	var s *string
	require.NoError(t, rows.Row().Get(0, &s))
	require.NotNil(t, s)
	assert.Equal(t, "x", *s)

	require.True(t, rows.Next())
	require.NoError(t, rows.Row().Get(0, &s))
	assert.Nil(t, s)
	require.NoError(t, rows.Close())
}

func TestRows_Scan(t *testing.T) {
	conn := newTestConn(t)

	err := conn.QueryRow("SELECT 1, 'a', 2.5", nil, func(row *Row) error {
		var i int64
		var s string
		var f float64
		require.NoError(t, row.Scan(&i, &s, &f))
		assert.Equal(t, int64(1), i)
		assert.Equal(t, "a", s)
		assert.Equal(t, 2.5, f)

		// Shorter dest list is fine, longer is not.
		require.NoError(t, row.Scan(&i))
		require.ErrorIs(t, row.Scan(&i, &s, &f, &f), ErrColumnIndex)
		return nil
	})
	require.NoError(t, err)
}

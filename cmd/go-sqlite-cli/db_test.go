package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestShell(t *testing.T) *shell {
	sh, err := openShell(filepath.Join(t.TempDir(), "test.db"), false)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = sh.Close()
	})
	return sh
}

func TestShell_Exec(t *testing.T) {
	sh := newTestShell(t)

	res, err := sh.Exec("CREATE TABLE people (name TEXT, age INTEGER)")
	require.NoError(t, err)
	assert.Equal(t, "0 rows changed", res)

	res, err = sh.Exec("INSERT INTO people VALUES ('alice', 30), ('bob', 25)")
	require.NoError(t, err)
	assert.Equal(t, "2 rows changed", res)

	res, err = sh.Exec("SELECT name, age FROM people ORDER BY age")
	require.NoError(t, err)
	assert.Contains(t, res, "alice")
	assert.Contains(t, res, "(2 rows)")

	t.Run("tables", func(t *testing.T) {
		res, err = sh.Exec(".tables")
		require.NoError(t, err)
		assert.Equal(t, "people", res)
	})

	t.Run("schema", func(t *testing.T) {
		res, err = sh.Exec(".schema people")
		require.NoError(t, err)
		assert.Contains(t, res, "CREATE TABLE people")
	})

	t.Run("unknown dot command", func(t *testing.T) {
		_, err = sh.Exec(".nope")
		require.Error(t, err)
	})
}

func TestShell_Complete(t *testing.T) {
	sh := newTestShell(t)
	_, err := sh.Exec("CREATE TABLE orders (id INTEGER)")
	require.NoError(t, err)

	assert.Contains(t, sh.Complete("or"), "orders")
	assert.Contains(t, sh.Complete(".ta"), ".tables")
	assert.Contains(t, sh.Complete("sel"), "SELECT ")
}

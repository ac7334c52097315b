package main

import (
	"fmt"

	sqlite "github.com/anyproto/go-sqlite"
)

func main() {
	conn, err := sqlite.Open("file.db")
	if err != nil {
		return
	}

	if err = conn.ExecBatch("CREATE TABLE IF NOT EXISTS kv (k TEXT PRIMARY KEY, v TEXT)"); err != nil {
		return
	}

	tx, err := conn.Begin()
	if err != nil {
		return
	}

	if _, err = tx.Exec("INSERT OR REPLACE INTO kv VALUES (?, ?)", "k", "v"); err != nil {
		_ = tx.Close()
		return
	}

	if err = tx.Commit(); err != nil {
		return
	}

	v, err := sqlite.QueryRow(conn, "SELECT v FROM kv WHERE k = ?", []any{"k"}, func(row *sqlite.Row) (string, error) {
		return row.Text(0)
	})
	if err != nil {
		return
	}
	fmt.Println(v)

	_ = conn.Close()
}

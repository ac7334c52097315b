package main

import (
	"fmt"
	"strings"

	sqlite "github.com/anyproto/go-sqlite"
)

var sqlKeywords = []string{
	"SELECT ", "INSERT INTO ", "UPDATE ", "DELETE FROM ", "CREATE TABLE ",
	"CREATE INDEX ", "DROP TABLE ", "ALTER TABLE ", "BEGIN", "COMMIT",
	"ROLLBACK", "SAVEPOINT ", "RELEASE ", "PRAGMA ", "EXPLAIN ", "VACUUM",
	"WHERE ", "ORDER BY ", "GROUP BY ", "LIMIT ", "VALUES ",
}

type shell struct {
	conn         *sqlite.Conn
	autocomplete []string
}

func openShell(path string, readOnly bool) (*shell, error) {
	flags := sqlite.DefaultFlags
	if readOnly {
		flags = sqlite.OpenReadOnly | sqlite.OpenURI
	}
	conn, err := sqlite.OpenWithFlags(path, flags)
	if err != nil {
		return nil, err
	}
	sh := &shell{conn: conn}
	if err = sh.makeAutocomplete(); err != nil {
		_ = conn.Close()
		return nil, err
	}
	return sh, nil
}

func (sh *shell) Close() error {
	return sh.conn.Close()
}

func (sh *shell) makeAutocomplete() error {
	sh.autocomplete = append(sh.autocomplete[:0], ".tables", ".schema", ".quit")
	sh.autocomplete = append(sh.autocomplete, sqlKeywords...)
	names, err := sh.tableNames()
	if err != nil {
		return err
	}
	sh.autocomplete = append(sh.autocomplete, names...)
	return nil
}

func (sh *shell) tableNames() (names []string, err error) {
	stmt, err := sh.conn.Prepare("SELECT name FROM sqlite_master WHERE type = 'table' ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = stmt.Close()
	}()
	rows, err := stmt.Query()
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		name, err := rows.Row().Text(0)
		if err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (sh *shell) Exec(cmdLine string) (result string, err error) {
	cmdLine = strings.TrimSpace(cmdLine)
	if strings.HasPrefix(cmdLine, ".") {
		return sh.execDot(cmdLine)
	}
	return sh.execSQL(cmdLine)
}

func (sh *shell) execDot(cmdLine string) (string, error) {
	cmd, arg, _ := strings.Cut(cmdLine, " ")
	switch cmd {
	case ".tables":
		names, err := sh.tableNames()
		if err != nil {
			return "", err
		}
		return strings.Join(names, "\n"), nil
	case ".schema":
		return sh.schema(strings.TrimSpace(arg))
	}
	return "", fmt.Errorf("unknown command: %s", cmd)
}

func (sh *shell) schema(table string) (string, error) {
	sql := "SELECT sql FROM sqlite_master WHERE sql IS NOT NULL"
	var args []any
	if table != "" {
		sql += " AND tbl_name = ?"
		args = append(args, table)
	}
	stmt, err := sh.conn.Prepare(sql)
	if err != nil {
		return "", err
	}
	defer func() {
		_ = stmt.Close()
	}()
	rows, err := stmt.Query(args...)
	if err != nil {
		return "", err
	}
	var ddl []string
	for rows.Next() {
		s, err := rows.Row().Text(0)
		if err != nil {
			return "", err
		}
		ddl = append(ddl, s+";")
	}
	if err = rows.Err(); err != nil {
		return "", err
	}
	return strings.Join(ddl, "\n"), nil
}

func (sh *shell) execSQL(sql string) (string, error) {
	stmt, err := sh.conn.PrepareTransient(sql)
	if err != nil {
		return "", err
	}
	defer func() {
		_ = stmt.Close()
	}()

	if stmt.ColumnCount() == 0 {
		n, err := stmt.Exec()
		if err != nil {
			return "", err
		}
		defer sh.refreshAutocomplete()
		return fmt.Sprintf("%d rows changed", n), nil
	}

	rows, err := stmt.Query()
	if err != nil {
		return "", err
	}
	return renderRows(stmt.ColumnNames(), rows)
}

// DDL through the shell may change the table list.
func (sh *shell) refreshAutocomplete() {
	_ = sh.makeAutocomplete()
}

func (sh *shell) Complete(line string) (result []string) {
	lowerLine := strings.ToLower(line)
	for _, cmd := range sh.autocomplete {
		if strings.HasPrefix(strings.ToLower(cmd), lowerLine) {
			result = append(result, cmd)
		}
	}
	return
}

func renderRows(names []string, rows *sqlite.Rows) (string, error) {
	widths := make([]int, len(names))
	for i, n := range names {
		widths[i] = len(n)
	}
	var data [][]string
	for rows.Next() {
		rec := make([]string, len(names))
		for i := range names {
			v, err := rows.Row().Value(i)
			if err != nil {
				return "", err
			}
			rec[i] = v.String()
			if len(rec[i]) > widths[i] {
				widths[i] = len(rec[i])
			}
		}
		data = append(data, rec)
	}
	if err := rows.Err(); err != nil {
		return "", err
	}

	var b strings.Builder
	writeRec := func(rec []string) {
		for i, cell := range rec {
			if i > 0 {
				b.WriteString("  ")
			}
			b.WriteString(cell)
			b.WriteString(strings.Repeat(" ", widths[i]-len(cell)))
		}
		b.WriteByte('\n')
	}
	writeRec(names)
	for _, rec := range data {
		writeRec(rec)
	}
	fmt.Fprintf(&b, "(%d rows)", len(data))
	return b.String(), nil
}

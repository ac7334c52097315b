package sqlite

import (
	"github.com/anyproto/go-sqlite/internal/driver"
)

// Stmt is a prepared statement bound to its connection. A Stmt obtained from
// Conn.Prepare is backed by the connection's statement cache and returns its
// raw handle there on Close; a transient Stmt finalizes it.
//
// A Stmt must only be used by the goroutine driving its connection.
type Stmt struct {
	conn       *Conn
	raw        *driver.Stmt
	sql        string
	paramCount int
	cached     bool
	discarded  bool
	closed     bool
}

func newStmt(conn *Conn, raw *driver.Stmt, sql string, cached bool) *Stmt {
	return &Stmt{
		conn:       conn,
		raw:        raw,
		sql:        sql,
		paramCount: raw.BindParameterCount(),
		cached:     cached,
	}
}

// ParameterCount returns the number of parameter markers the statement
// declares.
func (s *Stmt) ParameterCount() int {
	return s.paramCount
}

// ColumnCount reports the width of the result set, independent of execution
// state.
func (s *Stmt) ColumnCount() int {
	return s.raw.ColumnCount()
}

// ColumnNames returns the declared result column names in order.
func (s *Stmt) ColumnNames() []string {
	names := make([]string, s.raw.ColumnCount())
	for i := range names {
		names[i] = s.raw.ColumnName(i)
	}
	return names
}

// bind applies args to the statement. Plain values fill positional markers
// in order starting at index 1; Named values resolve their marker verbatim,
// prefix character included.
func (s *Stmt) bind(args []any) error {
	pos := 0
	for _, arg := range args {
		if named, ok := arg.(Named); ok {
			idx, err := s.raw.BindParameterIndex(named.Name)
			if err != nil {
				return err
			}
			if idx == 0 {
				return &ParameterNameError{Name: named.Name}
			}
			v, err := toValue(named.Value)
			if err != nil {
				return err
			}
			if err = bindValue(s.raw, idx, v); err != nil {
				return err
			}
			continue
		}
		pos++
		if pos > s.paramCount {
			return &ParameterIndexError{Index: pos, Count: s.paramCount}
		}
		v, err := toValue(arg)
		if err != nil {
			return err
		}
		if err = bindValue(s.raw, pos, v); err != nil {
			return err
		}
	}
	return nil
}

// Exec binds args and drives the statement to completion, returning the
// number of rows changed. A statement that produces a result row fails with
// ErrExecuteReturnedResults: use Query for SELECTs. Each call starts from a
// clean slate: parameters not covered by args are NULL, never leftovers from
// a previous call.
func (s *Stmt) Exec(args ...any) (int, error) {
	if err := s.rewind(); err != nil {
		return 0, err
	}
	if err := s.bind(args); err != nil {
		return 0, err
	}
	row, err := s.raw.Step()
	if err != nil {
		_ = s.raw.Reset()
		return 0, err
	}
	if row {
		_ = s.raw.Reset()
		return 0, ErrExecuteReturnedResults
	}
	changes := s.conn.dc.Changes()
	if err = s.raw.Reset(); err != nil {
		return changes, err
	}
	return changes, nil
}

// Query binds args and returns a lazy row cursor. No stepping happens until
// the first Rows.Next call. Re-querying implicitly resets the previous
// cursor and, like Exec, drops any bindings of the previous call.
func (s *Stmt) Query(args ...any) (*Rows, error) {
	if err := s.rewind(); err != nil {
		return nil, err
	}
	if err := s.bind(args); err != nil {
		return nil, err
	}
	return &Rows{stmt: s}, nil
}

func (s *Stmt) rewind() error {
	if err := s.raw.Reset(); err != nil {
		return err
	}
	return s.raw.ClearBindings()
}

// QueryRow runs the statement expecting exactly one row: zero rows yield
// ErrNoRows, extra rows are ignored.
func (s *Stmt) QueryRow(args []any, fn func(row *Row) error) error {
	rows, err := s.Query(args...)
	if err != nil {
		return err
	}
	defer func() {
		_ = rows.Close()
	}()
	if !rows.Next() {
		if err = rows.Err(); err != nil {
			return err
		}
		return ErrNoRows
	}
	if err = fn(rows.Row()); err != nil {
		return err
	}
	return rows.Close()
}

// Reset rewinds the statement, preserving current bindings (native
// semantics). Use ClearBindings to drop them.
func (s *Stmt) Reset() error {
	return s.raw.Reset()
}

// ClearBindings resets every parameter to NULL.
func (s *Stmt) ClearBindings() error {
	return s.raw.ClearBindings()
}

// Discard marks the statement so Close finalizes it instead of returning it
// to the cache.
func (s *Stmt) Discard() {
	s.discarded = true
}

// Close releases the statement: back into the connection's cache when it
// came from there (bindings and cursor cleared first), finalized otherwise.
// Closing twice is a no-op.
func (s *Stmt) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	if s.cached && !s.discarded {
		return s.conn.cache.put(s.sql, s.raw)
	}
	return s.raw.Finalize()
}

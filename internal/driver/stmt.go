package driver

import (
	"unsafe"

	"modernc.org/libc"
	sqlite3 "modernc.org/sqlite/lib"
)

// Column type tags as reported by sqlite3_column_type.
const (
	ColumnInteger = sqlite3.SQLITE_INTEGER
	ColumnFloat   = sqlite3.SQLITE_FLOAT
	ColumnText    = sqlite3.SQLITE_TEXT
	ColumnBlob    = sqlite3.SQLITE_BLOB
	ColumnNull    = sqlite3.SQLITE_NULL
)

// Stmt owns a single native prepared-statement handle. Finalize releases it
// exactly once; every other method must not be called afterwards.
//
// Text and blob bindings are backed by native allocations tracked in allocs.
// They are handed to the engine with a static destructor, so they are only
// released after sqlite3_clear_bindings or sqlite3_finalize has run and the
// engine no longer references them.
type Stmt struct {
	conn   *Conn
	pstmt  uintptr
	allocs []uintptr
}

// Step advances the statement. It reports whether a result row is available;
// false means the statement ran to completion.
//
// int sqlite3_step(sqlite3_stmt*);
func (s *Stmt) Step() (row bool, err error) {
	switch rc := sqlite3.Xsqlite3_step(s.conn.tls, s.pstmt); rc {
	case sqlite3.SQLITE_ROW:
		return true, nil
	case sqlite3.SQLITE_DONE:
		return false, nil
	default:
		return false, s.conn.errstr(rc)
	}
}

// Reset rewinds the statement to its initial state. Parameter bindings are
// preserved, matching the native semantics.
//
// int sqlite3_reset(sqlite3_stmt*);
func (s *Stmt) Reset() error {
	if rc := sqlite3.Xsqlite3_reset(s.conn.tls, s.pstmt); rc != sqlite3.SQLITE_OK {
		return s.conn.errstr(rc)
	}
	return nil
}

// int sqlite3_clear_bindings(sqlite3_stmt*);
func (s *Stmt) ClearBindings() error {
	if rc := sqlite3.Xsqlite3_clear_bindings(s.conn.tls, s.pstmt); rc != sqlite3.SQLITE_OK {
		return s.conn.errstr(rc)
	}
	s.freeAllocs()
	return nil
}

// Finalize releases the native handle. Safe to call once; subsequent calls
// are no-ops because the handle is zeroed.
//
// int sqlite3_finalize(sqlite3_stmt*);
func (s *Stmt) Finalize() error {
	if s.pstmt == 0 {
		return nil
	}
	rc := sqlite3.Xsqlite3_finalize(s.conn.tls, s.pstmt)
	s.pstmt = 0
	s.freeAllocs()
	if rc != sqlite3.SQLITE_OK {
		return s.conn.errstr(rc)
	}
	return nil
}

func (s *Stmt) freeAllocs() {
	for _, p := range s.allocs {
		s.conn.free(p)
	}
	s.allocs = s.allocs[:0]
}

// Handle exposes the native pointer identity, used by tests to verify cache
// reuse. Never dereferenced outside this package.
func (s *Stmt) Handle() uintptr {
	return s.pstmt
}

// int sqlite3_bind_null(sqlite3_stmt*, int);
func (s *Stmt) BindNull(idx int) error {
	if rc := sqlite3.Xsqlite3_bind_null(s.conn.tls, s.pstmt, int32(idx)); rc != sqlite3.SQLITE_OK {
		return s.conn.errstr(rc)
	}
	return nil
}

// int sqlite3_bind_int64(sqlite3_stmt*, int, sqlite3_int64);
func (s *Stmt) BindInt64(idx int, value int64) error {
	if rc := sqlite3.Xsqlite3_bind_int64(s.conn.tls, s.pstmt, int32(idx), value); rc != sqlite3.SQLITE_OK {
		return s.conn.errstr(rc)
	}
	return nil
}

// int sqlite3_bind_double(sqlite3_stmt*, int, double);
func (s *Stmt) BindDouble(idx int, value float64) error {
	if rc := sqlite3.Xsqlite3_bind_double(s.conn.tls, s.pstmt, int32(idx), value); rc != sqlite3.SQLITE_OK {
		return s.conn.errstr(rc)
	}
	return nil
}

// int sqlite3_bind_text(sqlite3_stmt*, int, const char*, int n, void(*)(void*));
func (s *Stmt) BindText(idx int, value string) error {
	p, err := libc.CString(value)
	if err != nil {
		return err
	}
	if rc := sqlite3.Xsqlite3_bind_text(s.conn.tls, s.pstmt, int32(idx), p, int32(len(value)), 0); rc != sqlite3.SQLITE_OK {
		s.conn.free(p)
		return s.conn.errstr(rc)
	}
	s.allocs = append(s.allocs, p)
	return nil
}

// int sqlite3_bind_blob(sqlite3_stmt*, int, const void*, int n, void(*)(void*));
func (s *Stmt) BindBlob(idx int, value []byte) error {
	if len(value) == 0 {
		if rc := sqlite3.Xsqlite3_bind_zeroblob(s.conn.tls, s.pstmt, int32(idx), 0); rc != sqlite3.SQLITE_OK {
			return s.conn.errstr(rc)
		}
		return nil
	}
	p, err := s.conn.malloc(len(value))
	if err != nil {
		return err
	}
	copy((*libc.RawMem)(unsafe.Pointer(p))[:len(value):len(value)], value)
	if rc := sqlite3.Xsqlite3_bind_blob(s.conn.tls, s.pstmt, int32(idx), p, int32(len(value)), 0); rc != sqlite3.SQLITE_OK {
		s.conn.free(p)
		return s.conn.errstr(rc)
	}
	s.allocs = append(s.allocs, p)
	return nil
}

// int sqlite3_bind_parameter_count(sqlite3_stmt*);
func (s *Stmt) BindParameterCount() int {
	return int(sqlite3.Xsqlite3_bind_parameter_count(s.conn.tls, s.pstmt))
}

// BindParameterName returns the marker of the i-th parameter including its
// prefix character, or "" for nameless positional markers.
//
// const char *sqlite3_bind_parameter_name(sqlite3_stmt*, int);
func (s *Stmt) BindParameterName(i int) string {
	return libc.GoString(sqlite3.Xsqlite3_bind_parameter_name(s.conn.tls, s.pstmt, int32(i)))
}

// BindParameterIndex resolves a parameter marker (prefix included) to its
// 1-based index, 0 when unknown.
//
// int sqlite3_bind_parameter_index(sqlite3_stmt*, const char *zName);
func (s *Stmt) BindParameterIndex(name string) (int, error) {
	zName, err := libc.CString(name)
	if err != nil {
		return 0, err
	}
	defer s.conn.free(zName)
	return int(sqlite3.Xsqlite3_bind_parameter_index(s.conn.tls, s.pstmt, zName)), nil
}

// int sqlite3_column_count(sqlite3_stmt*);
func (s *Stmt) ColumnCount() int {
	return int(sqlite3.Xsqlite3_column_count(s.conn.tls, s.pstmt))
}

// const char *sqlite3_column_name(sqlite3_stmt*, int);
func (s *Stmt) ColumnName(i int) string {
	return libc.GoString(sqlite3.Xsqlite3_column_name(s.conn.tls, s.pstmt, int32(i)))
}

// int sqlite3_column_type(sqlite3_stmt*, int);
func (s *Stmt) ColumnType(i int) int {
	return int(sqlite3.Xsqlite3_column_type(s.conn.tls, s.pstmt, int32(i)))
}

// sqlite3_int64 sqlite3_column_int64(sqlite3_stmt*, int);
func (s *Stmt) ColumnInt64(i int) int64 {
	return sqlite3.Xsqlite3_column_int64(s.conn.tls, s.pstmt, int32(i))
}

// double sqlite3_column_double(sqlite3_stmt*, int);
func (s *Stmt) ColumnDouble(i int) float64 {
	return sqlite3.Xsqlite3_column_double(s.conn.tls, s.pstmt, int32(i))
}

// const unsigned char *sqlite3_column_text(sqlite3_stmt*, int);
func (s *Stmt) ColumnText(i int) string {
	p := sqlite3.Xsqlite3_column_text(s.conn.tls, s.pstmt, int32(i))
	n := int(sqlite3.Xsqlite3_column_bytes(s.conn.tls, s.pstmt, int32(i)))
	if p == 0 || n == 0 {
		return ""
	}
	b := make([]byte, n)
	copy(b, (*libc.RawMem)(unsafe.Pointer(p))[:n:n])
	return string(b)
}

// const void *sqlite3_column_blob(sqlite3_stmt*, int);
func (s *Stmt) ColumnBlob(i int) []byte {
	p := sqlite3.Xsqlite3_column_blob(s.conn.tls, s.pstmt, int32(i))
	n := int(sqlite3.Xsqlite3_column_bytes(s.conn.tls, s.pstmt, int32(i)))
	if p == 0 || n == 0 {
		return nil
	}
	b := make([]byte, n)
	copy(b, (*libc.RawMem)(unsafe.Pointer(p))[:n:n])
	return b
}

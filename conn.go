package sqlite

import (
	"errors"
	"strings"
	"sync/atomic"
	"time"

	"github.com/anyproto/go-sqlite/internal/driver"
)

// OpenFlags configure how a connection is opened, passed through to the
// engine verbatim.
type OpenFlags int

const (
	OpenReadOnly     = OpenFlags(driver.OpenReadOnly)
	OpenReadWrite    = OpenFlags(driver.OpenReadWrite)
	OpenCreate       = OpenFlags(driver.OpenCreate)
	OpenURI          = OpenFlags(driver.OpenURI)
	OpenMemory       = OpenFlags(driver.OpenMemory)
	OpenNoMutex      = OpenFlags(driver.OpenNoMutex)
	OpenFullMutex    = OpenFlags(driver.OpenFullMutex)
	OpenSharedCache  = OpenFlags(driver.OpenSharedCache)
	OpenPrivateCache = OpenFlags(driver.OpenPrivateCache)
)

// DefaultFlags is used by Open and OpenInMemory.
const DefaultFlags = OpenReadWrite | OpenCreate | OpenNoMutex | OpenURI

// Conn is a connection to a database. It owns the native handle and a
// statement cache, both released by Close.
//
// A Conn may move between goroutines but must not be shared without
// external synchronization; InterruptHandle is the only concurrency-safe
// companion.
type Conn struct {
	dc    *driver.Conn
	cache *stmtCache
	path  string
	spIDs atomic.Uint64
}

// Open opens (creating if missing) the database file at path with
// DefaultFlags.
func Open(path string) (*Conn, error) {
	return OpenWithFlags(path, DefaultFlags)
}

// OpenWithFlags opens the database file at path with the given flag set.
func OpenWithFlags(path string, flags OpenFlags) (*Conn, error) {
	if strings.IndexByte(path, 0) >= 0 {
		return nil, ErrInvalidPath
	}
	dc, err := driver.Open(path, int(flags))
	if err != nil {
		return nil, err
	}
	return &Conn{
		dc:    dc,
		cache: newStmtCache(defaultCacheCapacity),
		path:  path,
	}, nil
}

// OpenInMemory opens a fresh private in-memory database.
func OpenInMemory() (*Conn, error) {
	dc, err := driver.Open(":memory:", int(DefaultFlags))
	if err != nil {
		return nil, err
	}
	return &Conn{
		dc:    dc,
		cache: newStmtCache(defaultCacheCapacity),
	}, nil
}

// Path returns the source path of the database, "" for in-memory.
func (c *Conn) Path() string {
	return c.path
}

// Prepare compiles sql (or reuses a cached handle for the exact same text)
// and returns a statement whose Close checks the handle back in. SQL with
// trailing content after the first statement is not cacheable and fails
// with ErrMultipleStatements; use PrepareTransient or ExecBatch for it.
func (c *Conn) Prepare(sql string) (*Stmt, error) {
	if raw := c.cache.get(sql); raw != nil {
		return newStmt(c, raw, sql, true), nil
	}
	raw, tail, err := c.dc.Prepare(sql)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(tail) != "" {
		if raw != nil {
			err = raw.Finalize()
		}
		return nil, errors.Join(ErrMultipleStatements, err)
	}
	if raw == nil {
		return nil, errNoStatement
	}
	return newStmt(c, raw, sql, true), nil
}

// PrepareTransient compiles the first statement of sql, bypassing the
// statement cache; trailing content is ignored. Close finalizes the handle.
func (c *Conn) PrepareTransient(sql string) (*Stmt, error) {
	raw, _, err := c.dc.Prepare(sql)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, errNoStatement
	}
	return newStmt(c, raw, sql, false), nil
}

// Exec prepares (through the cache) and executes a single statement,
// returning the number of rows changed.
func (c *Conn) Exec(sql string, args ...any) (n int, err error) {
	stmt, err := c.Prepare(sql)
	if err != nil {
		return 0, err
	}
	defer func() {
		err = errors.Join(err, stmt.Close())
	}()
	return stmt.Exec(args...)
}

// ExecBatch runs every statement in sql, none of which may take parameters
// or produce rows the caller needs. Useful for schema scripts.
func (c *Conn) ExecBatch(sql string) error {
	return c.dc.Exec(sql)
}

// QueryRow executes a query expected to return exactly one row and hands it
// to fn. Zero rows fail with ErrNoRows (see Optional); extra rows are
// ignored.
func (c *Conn) QueryRow(sql string, args []any, fn func(row *Row) error) (err error) {
	stmt, err := c.Prepare(sql)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, stmt.Close())
	}()
	return stmt.QueryRow(args, fn)
}

// QueryRow executes a single-row query on conn and maps the row to a value.
func QueryRow[T any](conn *Conn, sql string, args []any, fn func(row *Row) (T, error)) (v T, err error) {
	err = conn.QueryRow(sql, args, func(row *Row) (mapErr error) {
		v, mapErr = fn(row)
		return mapErr
	})
	return
}

// BusyTimeout makes the engine retry internally for up to d before
// surfacing lock contention; zero means fail immediately.
func (c *Conn) BusyTimeout(d time.Duration) error {
	return c.dc.BusyTimeout(int(d.Milliseconds()))
}

// BusyHandler replaces the busy timeout with a callback invoked with the
// retry-attempt count; returning false surfaces the contention error.
func (c *Conn) BusyHandler(fn func(count int) bool) error {
	return c.dc.SetBusyHandler(fn)
}

// InterruptHandle returns a handle that can cancel whatever operation is
// currently running on this connection from another goroutine. The handle
// stays safe to use after Close.
func (c *Conn) InterruptHandle() *InterruptHandle {
	return &InterruptHandle{dc: c.dc}
}

// LastInsertRowID returns the rowid of the most recent successful INSERT.
func (c *Conn) LastInsertRowID() int64 {
	if c.dc.IsClosed() {
		return 0
	}
	return c.dc.LastInsertRowID()
}

// Changes returns the number of rows modified by the most recently
// completed INSERT, UPDATE or DELETE.
func (c *Conn) Changes() int {
	if c.dc.IsClosed() {
		return 0
	}
	return c.dc.Changes()
}

// IsAutocommit reports whether the connection is in autocommit mode (no
// open transaction).
func (c *Conn) IsAutocommit() bool {
	if c.dc.IsClosed() {
		return false
	}
	return c.dc.IsAutocommit()
}

// Close finalizes every statement parked in the cache, then closes the
// native handle. If the native close fails (a statement outside the cache
// is still unfinalized) the connection remains open and usable so the
// caller can finalize the offender and retry.
func (c *Conn) Close() error {
	if err := c.cache.clear(); err != nil {
		return errors.Join(err, c.dc.Close())
	}
	return c.dc.Close()
}

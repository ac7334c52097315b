package driver

import (
	"fmt"
	"sync"
	"unsafe"

	"modernc.org/libc"
	"modernc.org/libc/sys/types"
	sqlite3 "modernc.org/sqlite/lib"
)

const ptrSize = int(unsafe.Sizeof(uintptr(0)))

// Conn owns a single native connection handle. All methods must be called
// from a single logical owner; Interrupt is the only call that is safe from
// another goroutine, synchronized via mu against a racing Close.
type Conn struct {
	tls *libc.TLS
	db  uintptr

	busyToken uintptr

	mu sync.Mutex
}

// Open flag bits, passed through to sqlite3_open_v2 verbatim.
const (
	OpenReadOnly     = sqlite3.SQLITE_OPEN_READONLY
	OpenReadWrite    = sqlite3.SQLITE_OPEN_READWRITE
	OpenCreate       = sqlite3.SQLITE_OPEN_CREATE
	OpenURI          = sqlite3.SQLITE_OPEN_URI
	OpenMemory       = sqlite3.SQLITE_OPEN_MEMORY
	OpenNoMutex      = sqlite3.SQLITE_OPEN_NOMUTEX
	OpenFullMutex    = sqlite3.SQLITE_OPEN_FULLMUTEX
	OpenSharedCache  = sqlite3.SQLITE_OPEN_SHAREDCACHE
	OpenPrivateCache = sqlite3.SQLITE_OPEN_PRIVATECACHE
)

func Open(path string, flags int) (*Conn, error) {
	c := &Conn{tls: libc.NewTLS()}
	db, err := c.openV2(path, int32(flags))
	if err != nil {
		c.tls.Close()
		return nil, err
	}
	c.db = db
	if err = c.extendedResultCodes(true); err != nil {
		_ = c.Close()
		return nil, err
	}
	return c, nil
}

// int sqlite3_open_v2(const char *filename, sqlite3 **ppDb, int flags, const char *zVfs);
func (c *Conn) openV2(path string, flags int32) (uintptr, error) {
	zPath, err := libc.CString(path)
	if err != nil {
		return 0, err
	}
	defer c.free(zPath)

	ppdb, err := c.malloc(ptrSize)
	if err != nil {
		return 0, err
	}
	defer c.free(ppdb)

	if rc := sqlite3.Xsqlite3_open_v2(c.tls, zPath, ppdb, flags, 0); rc != sqlite3.SQLITE_OK {
		// The handle may be allocated even on failure and must be released.
		db := *(*uintptr)(unsafe.Pointer(ppdb))
		err := c.errstrCode(rc, db)
		if db != 0 {
			sqlite3.Xsqlite3_close_v2(c.tls, db)
		}
		return 0, err
	}
	return *(*uintptr)(unsafe.Pointer(ppdb)), nil
}

// Close finalizes nothing by itself: the caller is responsible for
// finalizing outstanding statements first. If the native close fails
// (SQLITE_BUSY when statements are still live) the connection stays
// open and usable so the caller can remediate and retry.
func (c *Conn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.db == 0 {
		return ErrClosed
	}
	if rc := sqlite3.Xsqlite3_close(c.tls, c.db); rc != sqlite3.SQLITE_OK {
		return c.errstr(rc)
	}
	c.db = 0
	c.clearBusyHandler()
	c.tls.Close()
	c.tls = nil
	return nil
}

func (c *Conn) IsClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.db == 0
}

// Prepare compiles the first statement of sql and returns it together with
// the trailing, uncompiled remainder of the text. A nil statement with no
// error means sql contained only whitespace or comments.
func (c *Conn) Prepare(sql string) (*Stmt, string, error) {
	if c.db == 0 {
		return nil, "", ErrClosed
	}
	zSQL, err := libc.CString(sql)
	if err != nil {
		return nil, "", err
	}
	defer c.free(zSQL)

	ppstmt, err := c.malloc(2 * ptrSize)
	if err != nil {
		return nil, "", err
	}
	defer c.free(ppstmt)
	pzTail := ppstmt + uintptr(ptrSize)

	if rc := sqlite3.Xsqlite3_prepare_v2(c.tls, c.db, zSQL, int32(len(sql)+1), ppstmt, pzTail); rc != sqlite3.SQLITE_OK {
		return nil, "", c.errstr(rc)
	}

	pstmt := *(*uintptr)(unsafe.Pointer(ppstmt))
	tailOff := int(*(*uintptr)(unsafe.Pointer(pzTail)) - zSQL)
	var tail string
	if tailOff >= 0 && tailOff < len(sql) {
		tail = sql[tailOff:]
	}
	if pstmt == 0 {
		return nil, tail, nil
	}
	return &Stmt{conn: c, pstmt: pstmt}, tail, nil
}

// Exec runs every statement in sql without reading any result rows.
//
// int sqlite3_exec(sqlite3*, const char *sql, int (*callback)(), void*, char **errmsg);
func (c *Conn) Exec(sql string) error {
	if c.db == 0 {
		return ErrClosed
	}
	zSQL, err := libc.CString(sql)
	if err != nil {
		return err
	}
	defer c.free(zSQL)

	if rc := sqlite3.Xsqlite3_exec(c.tls, c.db, zSQL, 0, 0, 0); rc != sqlite3.SQLITE_OK {
		return c.errstr(rc)
	}
	return nil
}

// int sqlite3_changes(sqlite3*);
func (c *Conn) Changes() int {
	return int(sqlite3.Xsqlite3_changes(c.tls, c.db))
}

// sqlite3_int64 sqlite3_last_insert_rowid(sqlite3*);
func (c *Conn) LastInsertRowID() int64 {
	return sqlite3.Xsqlite3_last_insert_rowid(c.tls, c.db)
}

// int sqlite3_get_autocommit(sqlite3*);
func (c *Conn) IsAutocommit() bool {
	return sqlite3.Xsqlite3_get_autocommit(c.tls, c.db) != 0
}

// int sqlite3_busy_timeout(sqlite3*, int ms);
func (c *Conn) BusyTimeout(ms int) error {
	c.clearBusyHandler()
	if rc := sqlite3.Xsqlite3_busy_timeout(c.tls, c.db, int32(ms)); rc != sqlite3.SQLITE_OK {
		return c.errstr(rc)
	}
	return nil
}

// Interrupt aborts whatever call is currently running on the connection.
// Safe to call from any goroutine, including after Close: once the handle
// is cleared under mu the call is a no-op.
//
// void sqlite3_interrupt(sqlite3*);
func (c *Conn) Interrupt() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.db != 0 {
		sqlite3.Xsqlite3_interrupt(c.tls, c.db)
	}
}

// const char *sqlite3_errstr(int); const char *sqlite3_errmsg(sqlite3*);
func (c *Conn) errstr(rc int32) error {
	return c.errstrCode(rc, c.db)
}

func (c *Conn) errstrCode(rc int32, db uintptr) error {
	str := libc.GoString(sqlite3.Xsqlite3_errstr(c.tls, rc))
	e := &Error{Code: int(rc), Msg: str}
	if db != 0 {
		e.Extended = int(sqlite3.Xsqlite3_extended_errcode(c.tls, db))
		if msg := libc.GoString(sqlite3.Xsqlite3_errmsg(c.tls, db)); msg != "" && msg != str {
			e.Msg = msg
		}
	}
	return e
}

// int sqlite3_extended_result_codes(sqlite3*, int onoff);
func (c *Conn) extendedResultCodes(on bool) error {
	if rc := sqlite3.Xsqlite3_extended_result_codes(c.tls, c.db, libc.Bool32(on)); rc != sqlite3.SQLITE_OK {
		return c.errstr(rc)
	}
	return nil
}

func (c *Conn) malloc(n int) (uintptr, error) {
	if p := libc.Xmalloc(c.tls, types.Size_t(n)); p != 0 || n == 0 {
		return p, nil
	}
	return 0, fmt.Errorf("sqlite: cannot allocate %d bytes of memory", n)
}

func (c *Conn) free(p uintptr) {
	if p != 0 {
		libc.Xfree(c.tls, p)
	}
}

package driver

import (
	"sync"
	"unsafe"

	"modernc.org/libc"
	sqlite3 "modernc.org/sqlite/lib"
)

// The native busy handler is a C callback. Go functions cannot be passed as
// C pointers directly, so a single trampoline is registered and the pArg
// token routes the call back to the Go callback stored here.
var busyHandlers = struct {
	sync.Mutex
	m    map[uintptr]func(int) bool
	next uintptr
}{m: map[uintptr]func(int) bool{}}

func registerBusyHandler(fn func(int) bool) uintptr {
	busyHandlers.Lock()
	defer busyHandlers.Unlock()
	busyHandlers.next++
	busyHandlers.m[busyHandlers.next] = fn
	return busyHandlers.next
}

func unregisterBusyHandler(token uintptr) {
	busyHandlers.Lock()
	defer busyHandlers.Unlock()
	delete(busyHandlers.m, token)
}

func busyTrampoline(_ *libc.TLS, pArg uintptr, count int32) int32 {
	busyHandlers.Lock()
	fn := busyHandlers.m[pArg]
	busyHandlers.Unlock()
	if fn != nil && fn(int(count)) {
		return 1
	}
	return 0
}

func cFuncPointer[T any](f T) uintptr {
	return *(*uintptr)(unsafe.Pointer(&struct{ f T }{f}))
}

// SetBusyHandler installs fn as the connection's lock-contention callback,
// replacing any busy timeout. fn receives the retry-attempt count and
// reports whether to retry. A nil fn removes the handler so contention
// fails immediately.
//
// int sqlite3_busy_handler(sqlite3*, int(*)(void*,int), void*);
func (c *Conn) SetBusyHandler(fn func(count int) bool) error {
	c.clearBusyHandler()
	if fn == nil {
		if rc := sqlite3.Xsqlite3_busy_handler(c.tls, c.db, 0, 0); rc != sqlite3.SQLITE_OK {
			return c.errstr(rc)
		}
		return nil
	}
	token := registerBusyHandler(fn)
	rc := sqlite3.Xsqlite3_busy_handler(
		c.tls,
		c.db,
		cFuncPointer(busyTrampoline),
		token,
	)
	if rc != sqlite3.SQLITE_OK {
		unregisterBusyHandler(token)
		return c.errstr(rc)
	}
	c.busyToken = token
	return nil
}

func (c *Conn) clearBusyHandler() {
	if c.busyToken != 0 {
		unregisterBusyHandler(c.busyToken)
		c.busyToken = 0
	}
}

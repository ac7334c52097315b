package sqlite

import "github.com/anyproto/go-sqlite/internal/driver"

// InterruptHandle aborts in-flight statements on a connection from another
// goroutine. It stays valid after the connection closes: interrupting a
// closed connection is a no-op.
type InterruptHandle struct {
	dc *driver.Conn
}

// Interrupt causes pending operations on the connection to fail with an
// error matching ErrInterrupted at their next opportunity.
func (h *InterruptHandle) Interrupt() {
	h.dc.Interrupt()
}

package driver

import (
	"errors"
	"fmt"

	sqlite3 "modernc.org/sqlite/lib"
)

var (
	ErrClosed      = errors.New("sqlite: connection is closed")
	ErrBusy        = errors.New("sqlite: database is locked")
	ErrInterrupted = errors.New("sqlite: operation interrupted")
)

// Error carries a native result code, the extended result code and the
// engine's message text for the failed call.
type Error struct {
	Code     int
	Extended int
	Msg      string
}

func (e *Error) Error() string {
	if e.Msg == "" {
		return fmt.Sprintf("sqlite: error code %d", e.Code)
	}
	return fmt.Sprintf("sqlite: %s (%d)", e.Msg, e.Code)
}

// Is lets callers match lock contention and interruption with errors.Is
// without looking at numeric codes.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrBusy:
		return e.Code&0xff == sqlite3.SQLITE_BUSY
	case ErrInterrupted:
		return e.Code&0xff == sqlite3.SQLITE_INTERRUPT
	}
	return false
}

package sqlite

import (
	"strconv"
)

// TxBehavior selects the locking mode of BEGIN.
type TxBehavior int

const (
	TxDeferred TxBehavior = iota
	TxImmediate
	TxExclusive
)

func (b TxBehavior) beginSQL() string {
	switch b {
	case TxImmediate:
		return "BEGIN IMMEDIATE"
	case TxExclusive:
		return "BEGIN EXCLUSIVE"
	default:
		return "BEGIN DEFERRED"
	}
}

// DropBehavior controls what Close does with a scope that was never
// explicitly resolved.
type DropBehavior int

const (
	// DropRollback rolls the scope back. The fail-safe default.
	DropRollback DropBehavior = iota
	// DropCommit commits the scope.
	DropCommit
	// DropIgnore leaves the scope as-is; resolving it becomes the
	// caller's responsibility elsewhere.
	DropIgnore
)

// Tx is an open transaction. The embedded connection lets statements run
// inside the scope directly. Always defer Close: it applies the configured
// DropBehavior (rollback by default) when neither Commit nor Rollback ran.
type Tx struct {
	*Conn
	drop DropBehavior
	done bool
}

// Begin opens a deferred transaction.
func (c *Conn) Begin() (*Tx, error) {
	return c.BeginWith(TxDeferred)
}

// BeginWith opens a transaction with the given locking behavior.
func (c *Conn) BeginWith(b TxBehavior) (*Tx, error) {
	if err := c.dc.Exec(b.beginSQL()); err != nil {
		return nil, err
	}
	return &Tx{Conn: c}, nil
}

// SetDropBehavior configures what Close does when the transaction was not
// explicitly resolved.
func (t *Tx) SetDropBehavior(d DropBehavior) {
	t.drop = d
}

// Commit makes the transaction's changes durable. Resolving a transaction
// twice fails with ErrTxDone.
func (t *Tx) Commit() error {
	return t.resolve("COMMIT")
}

// Rollback discards the transaction's changes.
func (t *Tx) Rollback() error {
	return t.resolve("ROLLBACK")
}

func (t *Tx) resolve(sql string) error {
	if t.done {
		return ErrTxDone
	}
	t.done = true
	return t.dc.Exec(sql)
}

// Close resolves the transaction per the configured DropBehavior if Commit
// or Rollback did not already run. Idempotent.
func (t *Tx) Close() error {
	if t.done {
		return nil
	}
	switch t.drop {
	case DropCommit:
		return t.Commit()
	case DropIgnore:
		t.done = true
		return nil
	default:
		return t.Rollback()
	}
}

// Savepoint opens a nested savepoint scope inside the transaction.
func (t *Tx) Savepoint() (*Savepoint, error) {
	return t.Conn.Savepoint()
}

// Savepoint is a named, nestable sub-transaction scope. Names are generated
// from a connection-lifetime counter and never collide.
type Savepoint struct {
	*Conn
	name string
	drop DropBehavior
	done bool
}

// Savepoint opens a savepoint scope. Outside a transaction it behaves as
// one (native semantics).
func (c *Conn) Savepoint() (*Savepoint, error) {
	name := "sp_" + strconv.FormatUint(c.spIDs.Add(1), 10)
	if err := c.dc.Exec("SAVEPOINT " + name); err != nil {
		return nil, err
	}
	return &Savepoint{Conn: c, name: name}, nil
}

// Name returns the generated savepoint name.
func (s *Savepoint) Name() string {
	return s.name
}

// SetDropBehavior configures what Close does when the savepoint was not
// explicitly resolved.
func (s *Savepoint) SetDropBehavior(d DropBehavior) {
	s.drop = d
}

// Commit releases the savepoint, folding its changes into the enclosing
// scope.
func (s *Savepoint) Commit() error {
	if s.done {
		return ErrTxDone
	}
	s.done = true
	return s.dc.Exec("RELEASE SAVEPOINT " + s.name)
}

// Rollback undoes every change made since the savepoint, then releases it.
func (s *Savepoint) Rollback() error {
	if s.done {
		return ErrTxDone
	}
	s.done = true
	if err := s.dc.Exec("ROLLBACK TO SAVEPOINT " + s.name); err != nil {
		return err
	}
	return s.dc.Exec("RELEASE SAVEPOINT " + s.name)
}

// Close resolves the savepoint per the configured DropBehavior if it was
// not already resolved. Idempotent.
func (s *Savepoint) Close() error {
	if s.done {
		return nil
	}
	switch s.drop {
	case DropCommit:
		return s.Commit()
	case DropIgnore:
		s.done = true
		return nil
	default:
		return s.Rollback()
	}
}

package sqlite

import (
	"errors"

	"github.com/anyproto/go-sqlite/internal/driver"
)

// Number of cached prepared statements held per connection.
const defaultCacheCapacity = 16

// stmtCache is a bounded store of raw prepared-statement handles keyed by
// verbatim SQL text. A checked-out handle is removed from the cache until
// checked back in, so it can never be handed out twice concurrently.
// Insertion order approximates LRU: when full, the oldest entry is evicted
// and finalized.
//
// Owned exclusively by one Conn; no internal locking.
type stmtCache struct {
	capacity int
	keys     []string
	stmts    map[string]*driver.Stmt
}

func newStmtCache(capacity int) *stmtCache {
	return &stmtCache{
		capacity: capacity,
		stmts:    make(map[string]*driver.Stmt, capacity),
	}
}

// get checks a handle out of the cache, removing its entry. Returns nil on
// miss.
func (sc *stmtCache) get(sql string) *driver.Stmt {
	raw, ok := sc.stmts[sql]
	if !ok {
		return nil
	}
	delete(sc.stmts, sql)
	for i, k := range sc.keys {
		if k == sql {
			sc.keys = append(sc.keys[:i], sc.keys[i+1:]...)
			break
		}
	}
	return raw
}

// put checks a handle back in. The cursor and bindings are always cleared
// first so the next consumer never observes stale state. The handle is
// finalized instead when the reset fails, when capacity is zero or when an
// evicted/replaced entry has to make room.
func (sc *stmtCache) put(sql string, raw *driver.Stmt) error {
	if err := errors.Join(raw.Reset(), raw.ClearBindings()); err != nil {
		return errors.Join(err, raw.Finalize())
	}
	if sc.capacity <= 0 {
		return raw.Finalize()
	}
	if old, ok := sc.stmts[sql]; ok {
		// Same SQL checked in twice (two transient checkouts of one text):
		// keep the newer handle.
		sc.stmts[sql] = raw
		return old.Finalize()
	}
	var evictErr error
	if len(sc.keys) >= sc.capacity {
		oldest := sc.keys[0]
		sc.keys = sc.keys[1:]
		evictErr = sc.stmts[oldest].Finalize()
		delete(sc.stmts, oldest)
	}
	sc.keys = append(sc.keys, sql)
	sc.stmts[sql] = raw
	return evictErr
}

// clear finalizes and removes every entry. Called on connection close.
func (sc *stmtCache) clear() (err error) {
	for _, raw := range sc.stmts {
		err = errors.Join(err, raw.Finalize())
	}
	sc.stmts = make(map[string]*driver.Stmt, sc.capacity)
	sc.keys = sc.keys[:0]
	return err
}

func (sc *stmtCache) len() int {
	return len(sc.stmts)
}

package sqlite

// Rows is a lazy, forward-only cursor over a statement's results. It is not
// restartable: obtain a fresh cursor with Query to re-run the statement.
type Rows struct {
	stmt   *Stmt
	gen    uint64
	hasRow bool
	done   bool
	err    error
}

// Next advances to the next row, reporting whether one is available. It
// invalidates any Row obtained for the previous position. After Next
// returns false, consult Err to distinguish exhaustion from failure.
func (r *Rows) Next() bool {
	if r.done || r.err != nil || r.stmt.closed {
		return false
	}
	r.gen++
	row, err := r.stmt.raw.Step()
	if err != nil {
		r.err = err
		r.hasRow = false
		r.done = true
		return false
	}
	r.hasRow = row
	if !row {
		r.done = true
		r.err = r.stmt.raw.Reset()
	}
	return row
}

// Row returns a view of the current position. The view is valid only until
// the cursor advances or closes; access afterwards fails with ErrRowInvalid.
func (r *Rows) Row() *Row {
	return &Row{rows: r, gen: r.gen}
}

// Err returns the first failure encountered while stepping.
func (r *Rows) Err() error {
	return r.err
}

// Close abandons the cursor, resetting the underlying statement so it can
// run again. Safe to call more than once.
func (r *Rows) Close() error {
	if r.done || r.stmt.closed {
		r.done = true
		r.hasRow = false
		return nil
	}
	r.done = true
	r.hasRow = false
	return r.stmt.raw.Reset()
}

// Row is a transient view of one result row, valid for exactly one cursor
// position.
type Row struct {
	rows *Rows
	gen  uint64
}

func (r *Row) valid() error {
	if r.rows == nil || r.rows.stmt.closed || !r.rows.hasRow || r.gen != r.rows.gen {
		return ErrRowInvalid
	}
	return nil
}

// ColumnCount reports the width of the row, 0 when the row is no longer
// valid.
func (r *Row) ColumnCount() int {
	if r.valid() != nil {
		return 0
	}
	return r.rows.stmt.raw.ColumnCount()
}

// Index resolves a column name (case-sensitive exact match against the
// declared names) to its 0-based index.
func (r *Row) Index(name string) (int, error) {
	if err := r.valid(); err != nil {
		return 0, err
	}
	raw := r.rows.stmt.raw
	for i, n := 0, raw.ColumnCount(); i < n; i++ {
		if raw.ColumnName(i) == name {
			return i, nil
		}
	}
	return 0, &ColumnNameError{Name: name}
}

// Value returns the raw wire value of column i, letting callers branch on
// the native tag without committing to a target type.
func (r *Row) Value(i int) (Value, error) {
	if err := r.valid(); err != nil {
		return Value{}, err
	}
	raw := r.rows.stmt.raw
	if i < 0 || i >= raw.ColumnCount() {
		return Value{}, &ColumnIndexError{Index: i, Count: raw.ColumnCount()}
	}
	return columnValue(raw, i), nil
}

// Get extracts column i into dest. dest is a pointer to a supported scalar,
// a pointer-to-pointer for nullable extraction (Null maps to nil), or a
// Scanner for user types.
func (r *Row) Get(i int, dest any) error {
	v, err := r.Value(i)
	if err != nil {
		return err
	}
	return fromValue(v, i, dest)
}

// GetName is Get with the column resolved by name.
func (r *Row) GetName(name string, dest any) error {
	i, err := r.Index(name)
	if err != nil {
		return err
	}
	return r.Get(i, dest)
}

func (r *Row) Int64(i int) (v int64, err error) {
	err = r.Get(i, &v)
	return
}

func (r *Row) Float(i int) (v float64, err error) {
	err = r.Get(i, &v)
	return
}

func (r *Row) Text(i int) (v string, err error) {
	err = r.Get(i, &v)
	return
}

func (r *Row) Blob(i int) (v []byte, err error) {
	err = r.Get(i, &v)
	return
}

func (r *Row) Bool(i int) (v bool, err error) {
	err = r.Get(i, &v)
	return
}

// Scan extracts the row's columns left to right into dests.
func (r *Row) Scan(dests ...any) error {
	if err := r.valid(); err != nil {
		return err
	}
	if n := r.rows.stmt.raw.ColumnCount(); len(dests) > n {
		return &ColumnIndexError{Index: len(dests) - 1, Count: n}
	}
	for i, dest := range dests {
		if err := r.Get(i, dest); err != nil {
			return err
		}
	}
	return nil
}

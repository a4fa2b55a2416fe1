package result

// Cursor is a forward-only, stateful handle over one query's records.
type Cursor interface {
	// Columns returns the ordered column descriptors of the result.
	Columns() ([]Column, error)

	// Advance moves to the next record and reports whether there is one.
	Advance() (bool, error)

	// ValueAt returns the raw value of the current record at a 1-based
	// column index.
	ValueAt(index int) (any, error)

	// Close releases the cursor.
	Close() error
}

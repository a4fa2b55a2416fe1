package sqldb

import (
	"database/sql"
	"fmt"

	"github.com/vnykmshr/sqlflow/pkg/result"
)

// Cursor reads *sql.Rows one record at a time.
type Cursor struct {
	rows   *sql.Rows
	values []any
	ptrs   []any
	loaded bool
}

// NewCursor wraps rows. Closing the cursor closes rows.
func NewCursor(rows *sql.Rows) *Cursor {
	return &Cursor{rows: rows}
}

// Columns describes the result columns using the driver's type names.
func (c *Cursor) Columns() ([]result.Column, error) {
	types, err := c.rows.ColumnTypes()
	if err != nil {
		return nil, err
	}
	cols := make([]result.Column, len(types))
	for i, ct := range types {
		cols[i] = result.Column{
			Name:         ct.Name(),
			Type:         result.TypeFromDatabase(ct.DatabaseTypeName()),
			DatabaseType: ct.DatabaseTypeName(),
		}
	}
	return cols, nil
}

// Advance moves to the next record and scans it.
func (c *Cursor) Advance() (bool, error) {
	if !c.rows.Next() {
		c.loaded = false
		return false, c.rows.Err()
	}

	if c.values == nil {
		names, err := c.rows.Columns()
		if err != nil {
			return false, err
		}
		c.values = make([]any, len(names))
		c.ptrs = make([]any, len(names))
		for i := range c.values {
			c.ptrs[i] = &c.values[i]
		}
	}

	clear(c.values)
	if err := c.rows.Scan(c.ptrs...); err != nil {
		return false, err
	}
	c.loaded = true
	return true, nil
}

// ValueAt returns the current record's value at a 1-based index.
func (c *Cursor) ValueAt(index int) (any, error) {
	if !c.loaded {
		return nil, fmt.Errorf("sqldb: no current row")
	}
	if index < 1 || index > len(c.values) {
		return nil, fmt.Errorf("sqldb: column %d out of range 1..%d", index, len(c.values))
	}
	return c.values[index-1], nil
}

// Close closes the rows.
func (c *Cursor) Close() error {
	return c.rows.Close()
}

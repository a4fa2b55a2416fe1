package result

import (
	"fmt"
	"strings"
)

// Row is one record of a query result, addressable by column name or by
// zero-based position. It refers to, but does not own, its Key.
type Row struct {
	key    *Key
	values []Value
}

// Entry is one element of a row's mapping view.
type Entry struct {
	// Key is either the column name (string) or its position (int).
	Key   any
	Value Value
}

// NewRow creates a row of NULLs shaped by key.
func NewRow(key *Key) *Row {
	if key == nil {
		panic("row key cannot be nil")
	}
	return &Row{
		key:    key,
		values: make([]Value, key.Len()),
	}
}

// Key returns the row's key.
func (r *Row) Key() *Key {
	return r.key
}

// Len returns the number of columns.
func (r *Row) Len() int {
	return len(r.values)
}

// Set stores v at index.
func (r *Row) Set(index int, v Value) error {
	if index < 0 || index >= len(r.values) {
		return fmt.Errorf("result: column index %d out of range [0, %d)", index, len(r.values))
	}
	r.values[index] = v
	return nil
}

// SetRaw normalizes raw by the column's declared type and stores it at index.
func (r *Row) SetRaw(index int, raw any) error {
	if index < 0 || index >= len(r.values) {
		return fmt.Errorf("result: column index %d out of range [0, %d)", index, len(r.values))
	}
	column := r.key.Column(index)
	v, err := NewValue(column.Type, raw)
	if err != nil {
		return fmt.Errorf("column %q: %w", column.Name, err)
	}
	r.values[index] = v
	return nil
}

// SetByName is SetRaw addressed by column name.
func (r *Row) SetByName(name string, raw any) error {
	index := r.key.Index(name)
	if index < 0 {
		return fmt.Errorf("result: no column named %q", name)
	}
	return r.SetRaw(index, raw)
}

// Load fills the row from the cursor's current record in one pass. Only a
// failing cursor is an error: a value that does not fit its column's
// declared type is kept with the type of the value itself, so stores that
// allow any value in any column still yield every row.
func (r *Row) Load(c Cursor) error {
	for i := range r.values {
		raw, err := c.ValueAt(i + 1)
		if err != nil {
			return fmt.Errorf("reading column %d: %w", i+1, err)
		}
		v, err := NewValue(r.key.Column(i).Type, raw)
		if err != nil {
			v = infer(raw)
		}
		r.values[i] = v
	}
	return nil
}

// At returns the value at index. It panics if index is out of range.
func (r *Row) At(index int) Value {
	return r.values[index]
}

// Get returns the value of the named column.
func (r *Row) Get(name string) (Value, bool) {
	index := r.key.Index(name)
	if index < 0 {
		return Null(), false
	}
	return r.values[index], true
}

// Lookup accepts a column name or a zero-based position of any integer
// kind. Unknown names, out-of-range positions and other key types report
// false.
func (r *Row) Lookup(column any) (Value, bool) {
	index, ok := r.indexOf(column)
	if !ok {
		return Null(), false
	}
	return r.values[index], true
}

// ContainsKey reports whether Lookup would find column.
func (r *Row) ContainsKey(column any) bool {
	_, ok := r.indexOf(column)
	return ok
}

func (r *Row) indexOf(column any) (int, bool) {
	var index int64
	switch c := column.(type) {
	case string:
		i := r.key.Index(c)
		return i, i >= 0
	case fmt.Stringer:
		i := r.key.Index(c.String())
		return i, i >= 0
	case int:
		index = int64(c)
	case int8:
		index = int64(c)
	case int16:
		index = int64(c)
	case int32:
		index = int64(c)
	case int64:
		index = c
	case uint:
		index = int64(c)
	case uint8:
		index = int64(c)
	case uint16:
		index = int64(c)
	case uint32:
		index = int64(c)
	case uint64:
		if c > uint64(len(r.values)) {
			return 0, false
		}
		index = int64(c)
	default:
		return 0, false
	}
	if index < 0 || index >= int64(len(r.values)) {
		return 0, false
	}
	return int(index), true
}

// Values returns a copy of the values in column order.
func (r *Row) Values() []Value {
	return append([]Value(nil), r.values...)
}

// Entries returns the row's mapping view. Every column contributes two
// entries, one keyed by its name and one keyed by its position, so the
// result has twice as many entries as the row has columns. Use Map for a
// view with one entry per column.
func (r *Row) Entries() []Entry {
	entries := make([]Entry, 0, 2*len(r.values))
	for i, v := range r.values {
		entries = append(entries,
			Entry{Key: r.key.Name(i), Value: v},
			Entry{Key: i, Value: v},
		)
	}
	return entries
}

// Map returns the values keyed by column name.
func (r *Row) Map() map[string]Value {
	m := make(map[string]Value, len(r.values))
	for i, v := range r.values {
		m[r.key.Name(i)] = v
	}
	return m
}

// Equal reports whether both rows have the same column names and values.
func (r *Row) Equal(other *Row) bool {
	if other == nil || len(r.values) != len(other.values) {
		return false
	}
	for i, v := range r.values {
		if r.key.Name(i) != other.key.Name(i) || !v.Equal(other.values[i]) {
			return false
		}
	}
	return true
}

func (r *Row) String() string {
	var b strings.Builder
	b.WriteByte('{')
	for i, v := range r.values {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(r.key.Name(i))
		b.WriteByte(':')
		b.WriteString(v.String())
	}
	b.WriteByte('}')
	return b.String()
}

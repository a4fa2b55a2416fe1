package result

import (
	"fmt"
	"sort"
	"sync"

	sferrors "github.com/vnykmshr/sqlflow/pkg/common/errors"
)

const module = "result"

// Key describes the columns of a query result. One Key is built per query
// execution and shared by every Row of that execution.
//
// The column count is fixed at construction. Name lookups use a sorted copy of
// the names that is built on first use and discarded by every Set.
type Key struct {
	mu      sync.RWMutex
	columns []Column
	set     []bool

	// sorted lookup, nil until built
	sorted   []string
	original []int
}

// NewKey creates a key with count unset columns.
func NewKey(count int) (*Key, error) {
	if count < 0 {
		return nil, sferrors.NewValidationError(module, "columnCount", count, "must be non-negative")
	}
	return &Key{
		columns: make([]Column, count),
		set:     make([]bool, count),
	}, nil
}

// NewKeyFromColumns creates a key with every column assigned.
func NewKeyFromColumns(columns []Column) *Key {
	k := &Key{
		columns: append([]Column(nil), columns...),
		set:     make([]bool, len(columns)),
	}
	for i := range k.set {
		k.set[i] = true
	}
	return k
}

// KeyOf builds a key from a cursor's column metadata.
func KeyOf(c Cursor) (*Key, error) {
	columns, err := c.Columns()
	if err != nil {
		return nil, fmt.Errorf("reading column metadata: %w", err)
	}
	return NewKeyFromColumns(columns), nil
}

// Set assigns the column at index.
func (k *Key) Set(index int, column Column) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	if index < 0 || index >= len(k.columns) {
		return sferrors.NewValidationError(module, "columnIndex", index,
			fmt.Sprintf("must be between 0 and %d", len(k.columns)-1))
	}

	k.columns[index] = column
	k.set[index] = true
	k.sorted = nil
	k.original = nil
	return nil
}

// Len returns the column count.
func (k *Key) Len() int {
	return len(k.columns)
}

// Column returns the column at index. It panics if index is out of range.
func (k *Key) Column(index int) Column {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return k.columns[index]
}

// Name returns the name of the column at index.
func (k *Key) Name(index int) string {
	return k.Column(index).Name
}

// Columns returns a copy of the column descriptors.
func (k *Key) Columns() []Column {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return append([]Column(nil), k.columns...)
}

// Validate reports unset or duplicate column names, the conditions under
// which Index panics.
func (k *Key) Validate() error {
	k.mu.RLock()
	defer k.mu.RUnlock()
	_, _, err := k.buildLookup()
	return err
}

// Index returns the position of the named column, or -1 if there is none.
// Names are case-sensitive. Index panics if a column is unset or two columns
// share a name.
func (k *Key) Index(name string) int {
	k.mu.RLock()
	sorted, original := k.sorted, k.original
	k.mu.RUnlock()

	if sorted == nil {
		k.mu.Lock()
		if k.sorted == nil {
			var err error
			k.sorted, k.original, err = k.buildLookup()
			if err != nil {
				k.mu.Unlock()
				panic(err)
			}
		}
		sorted, original = k.sorted, k.original
		k.mu.Unlock()
	}

	i := sort.SearchStrings(sorted, name)
	if i < len(sorted) && sorted[i] == name {
		return original[i]
	}
	return -1
}

// Has reports whether the key has a column called name.
func (k *Key) Has(name string) bool {
	return k.Index(name) >= 0
}

// TypeOf returns the declared type of the named column.
func (k *Key) TypeOf(name string) (Type, bool) {
	i := k.Index(name)
	if i < 0 {
		return TypeUnknown, false
	}
	return k.Column(i).Type, true
}

// buildLookup sorts the names alongside their original positions.
// The caller holds k.mu.
func (k *Key) buildLookup() ([]string, []int, error) {
	original := make([]int, len(k.columns))
	for i := range k.columns {
		if !k.set[i] {
			return nil, nil, fmt.Errorf("result: column at index %d is unset", i)
		}
		original[i] = i
	}

	sort.SliceStable(original, func(a, b int) bool {
		return k.columns[original[a]].Name < k.columns[original[b]].Name
	})

	sorted := make([]string, len(original))
	for i, idx := range original {
		sorted[i] = k.columns[idx].Name
		if i > 0 && sorted[i] == sorted[i-1] {
			return nil, nil, fmt.Errorf("result: duplicate column name %q at indexes %d and %d",
				sorted[i], original[i-1], idx)
		}
	}
	return sorted, original, nil
}

func (k *Key) String() string {
	k.mu.RLock()
	defer k.mu.RUnlock()
	s := "("
	for i, c := range k.columns {
		if i > 0 {
			s += ", "
		}
		s += c.Name + ":" + c.Type.String()
	}
	return s + ")"
}

// Package fakedb provides in-memory connections, statements and cursors
// for exercising sqlflow without a database.
package fakedb

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/vnykmshr/sqlflow/internal/testutil"
	"github.com/vnykmshr/sqlflow/pkg/result"
)

// Cursor serves fixed records. It can fail on a given row and pause
// before each one to simulate a slow backend.
type Cursor struct {
	Cols    []result.Column
	Records [][]any

	// FailAt makes Advance fail when moving to this 1-based row.
	FailAt int
	Err    error

	// MetadataErr makes Columns fail.
	MetadataErr error

	// Delay is slept before each Advance.
	Delay time.Duration

	// Gate, when set, is received from before each Advance.
	Gate chan struct{}

	pos    int
	closed atomic.Bool
}

// NewCursor creates a cursor over records.
func NewCursor(cols []result.Column, records ...[]any) *Cursor {
	return &Cursor{Cols: cols, Records: records}
}

// IntCursor creates a cursor with TypeInt columns named by names and n
// records whose values are row*10+column.
func IntCursor(n int, names ...string) *Cursor {
	cols := make([]result.Column, len(names))
	for i, name := range names {
		cols[i] = result.Column{Name: name, Type: result.TypeInt, DatabaseType: "INTEGER"}
	}
	records := make([][]any, n)
	for r := range records {
		records[r] = make([]any, len(names))
		for c := range names {
			records[r][c] = int64(r*10 + c)
		}
	}
	return NewCursor(cols, records...)
}

func (c *Cursor) Columns() ([]result.Column, error) {
	if c.MetadataErr != nil {
		return nil, c.MetadataErr
	}
	return c.Cols, nil
}

func (c *Cursor) Advance() (bool, error) {
	if c.Gate != nil {
		<-c.Gate
	}
	if c.Delay > 0 {
		time.Sleep(c.Delay)
	}
	if c.closed.Load() {
		return false, errors.New("fakedb: cursor is closed")
	}
	if c.FailAt > 0 && c.pos+1 == c.FailAt {
		err := c.Err
		if err == nil {
			err = fmt.Errorf("fakedb: row %d unreadable", c.FailAt)
		}
		return false, err
	}
	if c.pos >= len(c.Records) {
		return false, nil
	}
	c.pos++
	return true, nil
}

func (c *Cursor) ValueAt(index int) (any, error) {
	if c.pos == 0 || c.pos > len(c.Records) {
		return nil, errors.New("fakedb: no current row")
	}
	record := c.Records[c.pos-1]
	if index < 1 || index > len(record) {
		return nil, fmt.Errorf("fakedb: column %d out of range", index)
	}
	return record[index-1], nil
}

func (c *Cursor) Close() error {
	c.closed.Store(true)
	return nil
}

// Closed reports whether Close was called.
func (c *Cursor) Closed() bool {
	return c.closed.Load()
}

// Conn is a connection whose lifecycle events are recorded on Events.
type Conn struct {
	Batching    bool
	BatchingErr error
	CloseErr    error
	Events      *testutil.CallbackTracker

	closed atomic.Bool
}

// NewConn creates an open connection.
func NewConn(batching bool) *Conn {
	return &Conn{Batching: batching, Events: testutil.NewCallbackTracker()}
}

func (c *Conn) SupportsBatching(context.Context) (bool, error) {
	return c.Batching, c.BatchingErr
}

func (c *Conn) Close() error {
	c.closed.Store(true)
	c.Events.Record("connection.close")
	return c.CloseErr
}

// Closed reports whether Close was called.
func (c *Conn) Closed() bool {
	return c.closed.Load()
}

// Stmt is a statement over a Conn. Bound arguments are echoed back as
// update counts through Affected.
type Stmt struct {
	Conn   *Conn
	Cursor *Cursor

	QueryErr error
	ExecErr  error
	CloseErr error

	// Affected computes the update count of one execution. Defaults to 1.
	Affected func(args []any) int64

	mu       sync.Mutex
	args     []any
	batch    [][]any
	singles  [][]any
	batches  int
	closed   atomic.Bool
	executed atomic.Int64
}

// NewStmt creates a statement on conn.
func NewStmt(conn *Conn) *Stmt {
	return &Stmt{Conn: conn}
}

// Bind replaces the current arguments.
func (s *Stmt) Bind(args ...any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.args = args
}

func (s *Stmt) ExecuteQuery(context.Context) (result.Cursor, error) {
	s.executed.Add(1)
	if s.QueryErr != nil {
		return nil, s.QueryErr
	}
	if s.Cursor == nil {
		return nil, errors.New("fakedb: statement has no result")
	}
	return s.Cursor, nil
}

func (s *Stmt) AddToBatch(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.batch = append(s.batch, s.args)
	return nil
}

func (s *Stmt) ExecuteBatch(context.Context) ([]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.executed.Add(1)
	if s.ExecErr != nil {
		return nil, s.ExecErr
	}
	counts := make([]int64, len(s.batch))
	for i, args := range s.batch {
		counts[i] = s.affected(args)
	}
	s.batch = nil
	s.batches++
	return counts, nil
}

func (s *Stmt) ExecuteSingle(context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.executed.Add(1)
	if s.ExecErr != nil {
		return 0, s.ExecErr
	}
	s.singles = append(s.singles, s.args)
	return s.affected(s.args), nil
}

func (s *Stmt) affected(args []any) int64 {
	if s.Affected == nil {
		return 1
	}
	return s.Affected(args)
}

func (s *Stmt) Close() error {
	s.closed.Store(true)
	if s.Conn != nil {
		s.Conn.Events.Record("statement.close")
	}
	return s.CloseErr
}

// Closed reports whether Close was called.
func (s *Stmt) Closed() bool {
	return s.closed.Load()
}

// Batches returns how many batches were executed.
func (s *Stmt) Batches() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.batches
}

// Singles returns the arguments of every single execution, in order.
func (s *Stmt) Singles() [][]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([][]any(nil), s.singles...)
}

// Executions returns how many times the statement was executed.
func (s *Stmt) Executions() int64 {
	return s.executed.Load()
}

// Provider opens Conns and remembers them.
type Provider struct {
	Batching bool
	OpenErr  error

	mu    sync.Mutex
	conns []*Conn
}

// Open creates a connection unless OpenErr is set.
func (p *Provider) Open(context.Context) (*Conn, error) {
	if p.OpenErr != nil {
		return nil, p.OpenErr
	}
	conn := NewConn(p.Batching)
	p.mu.Lock()
	p.conns = append(p.conns, conn)
	p.mu.Unlock()
	return conn, nil
}

// Conns returns every connection opened so far.
func (p *Provider) Conns() []*Conn {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]*Conn(nil), p.conns...)
}

// AllClosed reports whether every opened connection was closed.
func (p *Provider) AllClosed() bool {
	for _, c := range p.Conns() {
		if !c.Closed() {
			return false
		}
	}
	return true
}

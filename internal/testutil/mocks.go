package testutil

import (
	"sync"
	"testing"
)

// CallbackTracker records invocations of a callback and the last value it saw.
// It is safe for concurrent use.
type CallbackTracker struct {
	mu    sync.Mutex
	calls int
	value interface{}
	order []string
}

// NewCallbackTracker creates an empty tracker.
func NewCallbackTracker() *CallbackTracker {
	return &CallbackTracker{}
}

// Mark records a call. An optional argument becomes the tracked value.
func (c *CallbackTracker) Mark(value ...interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	if len(value) > 0 {
		c.value = value[0]
	}
}

// Record appends a named event, used to assert ordering across callbacks.
func (c *CallbackTracker) Record(event string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	c.order = append(c.order, event)
}

// Events returns the recorded event names in order.
func (c *CallbackTracker) Events() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.order...)
}

// Called reports whether Mark or Record was called at least once.
func (c *CallbackTracker) Called() bool {
	return c.CallCount() > 0
}

// CallCount returns the number of recorded calls.
func (c *CallbackTracker) CallCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

// Value returns the last value passed to Mark.
func (c *CallbackTracker) Value() interface{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.value
}

// Reset clears all recorded state.
func (c *CallbackTracker) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = 0
	c.value = nil
	c.order = nil
}

// AssertCalled fails the test if the tracker was never called.
func (c *CallbackTracker) AssertCalled(t *testing.T) {
	t.Helper()
	if !c.Called() {
		t.Fatal("expected callback to be called")
	}
}

// AssertNotCalled fails the test if the tracker was called.
func (c *CallbackTracker) AssertNotCalled(t *testing.T) {
	t.Helper()
	if c.Called() {
		t.Fatalf("expected callback not to be called, got %d calls", c.CallCount())
	}
}

// AssertCallCount fails the test unless the tracker saw exactly want calls.
func (c *CallbackTracker) AssertCallCount(t *testing.T, want int) {
	t.Helper()
	if got := c.CallCount(); got != want {
		t.Fatalf("call count = %d, want %d", got, want)
	}
}

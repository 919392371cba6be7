package mocks

import (
	"context"
	"database/sql"
	"sync"

	"github.com/wordloom/wordloom-api/internal/store"
)

// MockTxRunner implements store.TxRunner without a database.
// The function runs with a nil *sql.Tx, which the in-memory stores ignore.
type MockTxRunner struct {
	// RunInTxFn allows test cases to replace the whole behavior
	RunInTxFn func(ctx context.Context, fn store.TxFn) error

	// Err is returned instead of running fn when set, simulating a failed BEGIN
	Err error

	mu    sync.Mutex
	calls int
}

var _ store.TxRunner = (*MockTxRunner)(nil)

// NewMockTxRunner creates a runner that simply invokes the function.
func NewMockTxRunner() *MockTxRunner {
	return &MockTxRunner{}
}

// RunInTx implements store.TxRunner.
func (m *MockTxRunner) RunInTx(ctx context.Context, fn store.TxFn) error {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()

	if m.RunInTxFn != nil {
		return m.RunInTxFn(ctx, fn)
	}
	if m.Err != nil {
		return m.Err
	}
	var tx *sql.Tx
	return fn(ctx, tx)
}

// Calls returns how many transactions were started.
func (m *MockTxRunner) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

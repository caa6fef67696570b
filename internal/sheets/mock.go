package sheets

import (
	"context"
	"sync"
)

// MockWriter is a ReportWriter for tests.
type MockWriter struct {
	WriteFunc  func(ctx context.Context, report *Report) error
	LastReport *Report
	WriteCalls int
	mu         sync.Mutex
}

// NewMockWriter creates a new mock writer.
func NewMockWriter() *MockWriter {
	return &MockWriter{}
}

// Write records the report and delegates to WriteFunc.
func (m *MockWriter) Write(ctx context.Context, report *Report) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.WriteCalls++
	m.LastReport = report
	if m.WriteFunc != nil {
		return m.WriteFunc(ctx, report)
	}
	return nil
}

// SetWriteError makes every following Write fail with err.
func (m *MockWriter) SetWriteError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.WriteFunc = func(context.Context, *Report) error { return err }
}

var _ ReportWriter = (*MockWriter)(nil)

package sheets

import (
	"context"
	"sync"
)

// Memory is an in-process Values keyed by spreadsheet and range.
// It backs the mirror when no spreadsheet is configured and in tests.
type Memory struct {
	mu     sync.Mutex
	ranges map[string][][]any
	calls  []string
}

func NewMemory() *Memory {
	return &Memory{ranges: make(map[string][][]any)}
}

func (m *Memory) Clear(_ context.Context, spreadsheetID, rng string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.ranges, spreadsheetID+"/"+rng)
	m.calls = append(m.calls, "clear "+rng)
	return nil
}

func (m *Memory) Update(_ context.Context, spreadsheetID, rng string, rows [][]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := make([][]any, len(rows))
	for i, r := range rows {
		cp[i] = append([]any(nil), r...)
	}
	m.ranges[spreadsheetID+"/"+rng] = cp
	m.calls = append(m.calls, "update "+rng)
	return nil
}

// Rows returns what was last written to rng.
func (m *Memory) Rows(spreadsheetID, rng string) [][]any {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ranges[spreadsheetID+"/"+rng]
}

// Calls lists the operations in order.
func (m *Memory) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

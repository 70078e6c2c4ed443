package dockaccess

import "sync"

// Memory is an in-process Shim. It backs --dry-run and tests.
type Memory struct {
	mu      sync.Mutex
	hidden  bool
	writes  int
	history []bool
	readErr error
	setErr  error
}

var _ Shim = (*Memory)(nil)

// NewMemory returns a Memory shim starting in the given state.
func NewMemory(hidden bool) *Memory {
	return &Memory{hidden: hidden}
}

func (m *Memory) IsHidden() (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.readErr != nil {
		return false, m.readErr
	}
	return m.hidden, nil
}

func (m *Memory) SetHidden(hidden bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.setErr != nil {
		return m.setErr
	}
	m.hidden = hidden
	m.writes++
	m.history = append(m.history, hidden)
	return nil
}

// Writes returns the number of successful SetHidden calls.
func (m *Memory) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}

// History returns every value written, oldest first.
func (m *Memory) History() []bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]bool(nil), m.history...)
}

// FailReads makes IsHidden return err until cleared with nil.
func (m *Memory) FailReads(err error) {
	m.mu.Lock()
	m.readErr = err
	m.mu.Unlock()
}

// FailWrites makes SetHidden return err until cleared with nil.
func (m *Memory) FailWrites(err error) {
	m.mu.Lock()
	m.setErr = err
	m.mu.Unlock()
}

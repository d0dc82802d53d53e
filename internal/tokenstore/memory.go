package tokenstore

import "sync"

// Memory is an in-process store for tests and for runs that opt out of
// persistence. The zero value is ready to use.
type Memory struct {
	mu  sync.Mutex
	tok string
	set bool
}

func (m *Memory) Token() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tok, m.set
}

func (m *Memory) Save(token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tok, m.set = token, true
	return nil
}

func (m *Memory) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tok, m.set = "", false
	return nil
}

package environ

import "sync"

// OverrideManager holds an optional injected snapshot that takes strict
// precedence over any live fetch. It is constructed by the process entry point
// and passed to whoever needs it; there is no package-level instance.
type OverrideManager struct {
	mu    sync.RWMutex
	state *Snapshot
}

// NewOverrideManager returns an empty manager with no override active.
func NewOverrideManager() *OverrideManager {
	return &OverrideManager{}
}

// Set enables injection with the given snapshot.
func (m *OverrideManager) Set(s Snapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := s
	m.state = &copied
}

// Get returns the current override, if any.
func (m *OverrideManager) Get() (Snapshot, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.state == nil {
		return Snapshot{}, false
	}
	return *m.state, true
}

// Clear disables injection and returns fetching to the live provider.
func (m *OverrideManager) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = nil
}

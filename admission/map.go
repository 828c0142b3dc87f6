package admission

// NewMap creates a default controller map. The map itself is safe for
// concurrent use; the controllers stored in it are not, so a goroutine
// should only look up the controllers it owns.
func NewMap() Map {
	return &simpleMap{
		controllers: make(map[string]Controller),
	}
}

func (m *simpleMap) Set(name string, c Controller) {
	m.mutex.Lock()
	m.controllers[name] = c
	m.mutex.Unlock()
}

func (m *simpleMap) Get(name string) (Controller, bool) {
	m.mutex.RLock()
	c, ok := m.controllers[name]
	m.mutex.RUnlock()

	return c, ok
}

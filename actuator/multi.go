package actuator

// Multi combines multiple Switch implementations.
type Multi struct {
	switches []Switch
}

// NewMulti combines switches into one.
func NewMulti(switches ...Switch) *Multi {
	return &Multi{switches: switches}
}

// Set implements Switch.Set.
func (m *Multi) Set(on bool) error {
	var lastErr error
	for _, sw := range m.switches {
		if err := sw.Set(on); err != nil {
			lastErr = err
		}
	}
	return lastErr
}

// Release implements Switch.Release.
func (m *Multi) Release() error {
	var lastErr error
	for _, sw := range m.switches {
		if err := sw.Release(); err != nil {
			lastErr = err
		}
	}
	return lastErr
}

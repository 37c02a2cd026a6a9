package actuator

// Noop implements Switch but does nothing.
// Used when no output is configured.
type Noop struct{}

// Set implements Switch.Set.
func (n *Noop) Set(on bool) error {
	return nil
}

// Release implements Switch.Release.
func (n *Noop) Release() error {
	return nil
}

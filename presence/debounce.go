package presence

// Debouncer decides when a card has left the field. Reads are noisy, so a
// card is only considered removed after an unbroken run of failed polls.
type Debouncer struct {
	threshold int
	misses    int
}

// NewDebouncer returns a debouncer that reports removal after threshold
// consecutive misses.
func NewDebouncer(threshold int) *Debouncer {
	if threshold < 1 {
		threshold = 1
	}
	return &Debouncer{threshold: threshold}
}

// Observe records one poll result and reports whether the card is now
// judged removed. A successful poll resets the miss counter.
func (d *Debouncer) Observe(present bool) bool {
	if present {
		d.misses = 0
		return false
	}
	d.misses++
	return d.misses >= d.threshold
}

// Misses returns the current run of consecutive failed polls.
func (d *Debouncer) Misses() int {
	return d.misses
}

// Reset clears the miss counter.
func (d *Debouncer) Reset() {
	d.misses = 0
}

// Package presence runs the card presence state machine: it polls the reader,
// grants or denies the card in the field, services console commands while the
// card stays put and debounces its removal.
package presence

import (
	"context"
	"errors"
	"iter"
	"time"

	log "github.com/sirupsen/logrus"

	"cardgate/actuator"
	"cardgate/console"
	"cardgate/reader"
	"cardgate/registry"
)

const (
	RemovalChecks = 6                      // consecutive failed polls before a card counts as removed
	RemovalDelay  = 120 * time.Millisecond // pause between polls
	NameMaxLen    = registry.MaxLabelLen
	NameTimeout   = 30 * time.Second
)

// ErrCancelled is reported when the operator enters an empty name.
var ErrCancelled = errors.New("name entry cancelled")

// State is the controller state.
type State int

const (
	Idle    State = iota // no card in the field
	Present              // card detected, dwell loop running
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Present:
		return "present"
	default:
		return "unknown"
	}
}

// Registry is the subset of *registry.Registry the controller uses.
type Registry interface {
	Lookup(uid []byte) (int, bool)
	Insert(uid []byte, label string) error
	Delete(uid []byte) error
	Clear() error
	All() iter.Seq2[int, registry.Entry]
	Label(i int) string
	Count() int
	Layout() registry.Layout
}

// Display is an optional status surface, e.g. a framebuffer screen.
type Display interface {
	Idle()
	Granted(label string)
	Denied(uid string)
}

// Config holds timing configuration. Zero values select the defaults.
type Config struct {
	RemovalChecks int           `yaml:"removal_checks"`
	RemovalDelay  time.Duration `yaml:"removal_delay"`
	NameTimeout   time.Duration `yaml:"name_timeout"`
}

// Deps are the collaborators the controller drives.
type Deps struct {
	Registry  Registry
	Reader    reader.CardReader
	Console   console.Console
	Indicator actuator.Switch
	Tone      actuator.Switch
	Display   Display // may be nil

	// Sleep pauses between polls. Defaults to a context-aware timer.
	Sleep func(ctx context.Context, d time.Duration) error
}

// Controller is the presence state machine. It is driven from a single
// goroutine; nothing in it is safe for concurrent use.
type Controller struct {
	cfg      Config
	reg      Registry
	reader   reader.CardReader
	console  console.Console
	outputs  []actuator.Switch
	display  Display
	sleep    func(ctx context.Context, d time.Duration) error
	debounce *Debouncer

	state   State
	active  []byte
	granted bool
}

// New creates a controller in the Idle state.
func New(cfg Config, d Deps) *Controller {
	if cfg.RemovalChecks <= 0 {
		cfg.RemovalChecks = RemovalChecks
	}
	if cfg.RemovalDelay <= 0 {
		cfg.RemovalDelay = RemovalDelay
	}
	if cfg.NameTimeout <= 0 {
		cfg.NameTimeout = NameTimeout
	}

	c := &Controller{
		cfg:      cfg,
		reg:      d.Registry,
		reader:   d.Reader,
		console:  d.Console,
		display:  d.Display,
		sleep:    d.Sleep,
		debounce: NewDebouncer(cfg.RemovalChecks),
	}
	for _, sw := range []actuator.Switch{d.Indicator, d.Tone} {
		if sw != nil {
			c.outputs = append(c.outputs, sw)
		}
	}
	if c.sleep == nil {
		c.sleep = sleepContext
	}
	return c
}

// State returns the current state.
func (c *Controller) State() State {
	return c.state
}

// Granted reports whether the card in the field is registered.
func (c *Controller) Granted() bool {
	return c.granted
}

// Run polls until ctx is cancelled. The outputs are de-energized on return.
func (c *Controller) Run(ctx context.Context) error {
	c.setOutputs(false)
	if c.display != nil {
		c.display.Idle()
	}
	c.help()

	for {
		if err := c.Step(ctx); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil
			}
			return err
		}
	}
}

// Step runs one iteration of the top-level loop. When a card is found it
// does not return until the card has been judged removed.
func (c *Controller) Step(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c.serviceCommand()

	if !c.reader.Poll() {
		return c.sleep(ctx, c.cfg.RemovalDelay)
	}
	uid := c.reader.UID()
	if len(uid) == 0 || len(uid) > registry.MaxUIDLen {
		log.Warnf("Ignoring unreadable identifier (%d bytes)", len(uid))
		return c.sleep(ctx, c.cfg.RemovalDelay)
	}

	c.enter(uid)
	err := c.dwell(ctx)
	c.leave()
	return err
}

// dwell services commands and polls presence until the card is removed.
func (c *Controller) dwell(ctx context.Context) error {
	for {
		c.serviceCommand()

		if c.debounce.Observe(c.reader.Poll()) {
			return nil
		}
		if c.debounce.Misses() > 0 {
			log.WithField("misses", c.debounce.Misses()).Trace("Card not seen")
		}

		if err := c.sleep(ctx, c.cfg.RemovalDelay); err != nil {
			return err
		}
	}
}

func (c *Controller) enter(uid []byte) {
	c.active = append([]byte(nil), uid...)
	c.state = Present
	c.debounce.Reset()

	log.WithFields(log.Fields{"uid": registry.FormatUID(c.active), "state": c.state}).Info("Card detected")
	c.console.WriteLine("Card UID: " + registry.FormatUID(c.active))
	c.evaluate()
}

// evaluate looks up the active card and drives the outputs to match.
func (c *Controller) evaluate() {
	idx, found := c.reg.Lookup(c.active)
	c.granted = found
	c.setOutputs(found)

	uid := registry.FormatUID(c.active)
	if !found {
		log.WithField("uid", uid).Info("Access denied")
		c.console.WriteLine("Access denied: card not registered")
		if c.display != nil {
			c.display.Denied(uid)
		}
		return
	}

	var label string
	if c.reg.Layout().Labels {
		label = c.reg.Label(idx)
	}
	log.WithFields(log.Fields{"uid": uid, "index": idx}).Info("Access granted")
	if label != "" {
		c.console.WriteLine("Access granted: " + label)
	} else {
		c.console.WriteLine("Access granted")
	}
	if c.display != nil {
		c.display.Granted(label)
	}
}

func (c *Controller) leave() {
	c.setOutputs(false)
	log.WithFields(log.Fields{"uid": registry.FormatUID(c.active), "state": Idle}).Info("Card removed")

	c.state = Idle
	c.active = nil
	c.granted = false
	c.debounce.Reset()

	c.console.WriteLine("Card removed")
	if c.display != nil {
		c.display.Idle()
	}
}

func (c *Controller) setOutputs(on bool) {
	for _, sw := range c.outputs {
		if err := sw.Set(on); err != nil {
			log.Errorf("Set output: %v", err)
		}
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

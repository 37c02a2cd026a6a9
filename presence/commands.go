package presence

import (
	"errors"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"cardgate/console"
	"cardgate/registry"
)

// serviceCommand handles at most one pending console character.
func (c *Controller) serviceCommand() {
	ch, ok := c.console.TryReadChar()
	if !ok {
		return
	}

	switch ch {
	case 'a', 'A':
		if c.requireCard('a') {
			c.add()
		}
	case 'r', 'R':
		if c.requireCard('r') {
			c.remove()
		}
	case 'p', 'P':
		c.print()
	case 'c', 'C':
		c.clear()
	case 'h', 'H', '?':
		c.help()
	case '\r', '\n', ' ':
	default:
		log.Debugf("Ignoring console input %q", ch)
	}
}

// requireCard reports whether a card is in the field. Commands that target
// the active card are dropped silently otherwise.
func (c *Controller) requireCard(cmd byte) bool {
	if c.state != Present {
		log.Debugf("Ignoring %q with no card present", cmd)
		return false
	}
	return true
}

func (c *Controller) add() {
	var label string
	if c.reg.Layout().Labels {
		name, err := c.readName()
		if err != nil {
			c.console.WriteLine(describe(err) + ", card not added")
			return
		}
		label = name
	}

	if err := c.reg.Insert(c.active, label); err != nil {
		c.console.WriteLine("Add failed: " + describe(err))
		return
	}
	c.console.WriteLine(fmt.Sprintf("Card added (%d/%d)", c.reg.Count(), c.reg.Layout().Capacity))
	c.evaluate()
}

// readName prompts for a label. An empty or blank line cancels.
func (c *Controller) readName() (string, error) {
	c.console.WriteLine(fmt.Sprintf("Enter name (max %d chars):", NameMaxLen))
	line, err := c.console.ReadLine(c.cfg.NameTimeout, NameMaxLen)
	if err != nil {
		return "", err
	}
	name := strings.TrimSpace(line)
	if name == "" {
		return "", ErrCancelled
	}
	return name, nil
}

func (c *Controller) remove() {
	if err := c.reg.Delete(c.active); err != nil {
		c.console.WriteLine("Remove failed: " + describe(err))
		return
	}
	c.console.WriteLine("Card removed from registry")
	c.evaluate()
}

func (c *Controller) print() {
	n := c.reg.Count()
	if n == 0 {
		c.console.WriteLine("Registry is empty")
		return
	}

	labels := c.reg.Layout().Labels
	c.console.WriteLine(fmt.Sprintf("Registered cards (%d/%d):", n, c.reg.Layout().Capacity))
	for i, e := range c.reg.All() {
		line := fmt.Sprintf("  %2d  %s", i+1, registry.FormatUID(e.UID))
		if labels {
			line += "  " + c.reg.Label(i)
		}
		c.console.WriteLine(line)
	}
}

func (c *Controller) clear() {
	if err := c.reg.Clear(); err != nil {
		c.console.WriteLine("Clear failed: " + describe(err))
		return
	}
	c.console.WriteLine("Registry cleared")
	if c.state == Present {
		c.evaluate()
	}
}

func (c *Controller) help() {
	c.console.WriteLine("Commands: a=add card, r=remove card, p=print list, c=clear all, h=help")
}

// describe turns a command error into an operator message.
func describe(err error) string {
	switch {
	case errors.Is(err, registry.ErrDuplicate):
		return "card already registered"
	case errors.Is(err, registry.ErrFull):
		return "registry full"
	case errors.Is(err, registry.ErrEmptyIdentifier):
		return "empty identifier"
	case errors.Is(err, registry.ErrIdentifierTooLong):
		return "identifier too long"
	case errors.Is(err, registry.ErrNotFound):
		return "card not registered"
	case errors.Is(err, ErrCancelled):
		return "Empty name"
	case errors.Is(err, console.ErrTimeout):
		return "Name entry timed out"
	case errors.Is(err, console.ErrClosed):
		return "Console closed"
	default:
		log.Errorf("Command failed: %v", err)
		return err.Error()
	}
}

// Package copyack tracks which e-mail template was copied most recently and
// clears that acknowledgement after a short delay.
package copyack

import (
	"sync"
	"time"
)

// AckDelay is how long a copy stays acknowledged.
const AckDelay = 2000 * time.Millisecond

// Clipboard receives copied text.
type Clipboard interface {
	WriteAll(text string) error
}

// ClipboardFunc adapts a function to Clipboard.
type ClipboardFunc func(text string) error

func (f ClipboardFunc) WriteAll(text string) error { return f(text) }

// Timer is the part of *time.Timer the controller uses.
type Timer interface {
	Stop() bool
}

// AfterFunc schedules f after d. time.AfterFunc satisfies it through
// RealAfterFunc.
type AfterFunc func(d time.Duration, f func()) Timer

// RealAfterFunc schedules on the runtime timer.
func RealAfterFunc(d time.Duration, f func()) Timer { return time.AfterFunc(d, f) }

// Controller holds a single acknowledgement slot.
type Controller struct {
	clipboard Clipboard
	after     AfterFunc

	mu    sync.Mutex
	label string
	gen   uint64
	timer Timer
}

// New returns a controller writing to clipboard. A nil after uses the
// runtime timer.
func New(clipboard Clipboard, after AfterFunc) *Controller {
	if after == nil {
		after = RealAfterFunc
	}
	return &Controller{clipboard: clipboard, after: after}
}

// Copy writes text to the clipboard and acknowledges label until AckDelay
// passes or another copy replaces it. On a clipboard failure the current
// acknowledgement is left untouched.
func (c *Controller) Copy(text, label string) error {
	if err := c.clipboard.WriteAll(text); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.timer != nil {
		c.timer.Stop()
	}
	c.gen++
	gen := c.gen
	c.label = label
	c.timer = c.after(AckDelay, func() { c.expire(gen) })
	return nil
}

func (c *Controller) expire(gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		return
	}
	c.label = ""
	c.timer = nil
}

// Acknowledged returns the acknowledged label, if any.
func (c *Controller) Acknowledged() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.label, c.label != ""
}

// IsAcknowledged reports whether label is the acknowledged one.
func (c *Controller) IsAcknowledged(label string) bool {
	got, ok := c.Acknowledged()
	return ok && got == label
}

// Close cancels any pending clear and drops the acknowledgement.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.gen++
	c.label = ""
}

// Package debounce turns a noisy digital input into a stable logical level.
package debounce

import "github.com/coreman2200/funtimes-proxibar/internal/hal"

// Debouncer tracks one sensor channel. The stable level only follows the raw
// pin once the raw reading has stayed constant for longer than the window, so
// electrical chatter faster than the window never surfaces.
type Debouncer struct {
	pin        hal.InputPin
	clk        hal.Clock
	windowMs   uint64
	lastRaw    bool
	lastChange uint64
	stable     bool
}

func New(pin hal.InputPin, clk hal.Clock, windowMs uint64) *Debouncer {
	return &Debouncer{pin: pin, clk: clk, windowMs: windowMs}
}

// Update samples the raw pin and returns the debounced level. Meant to be
// called once per poll cycle.
func (d *Debouncer) Update() bool {
	now := d.clk.NowMillis()
	raw := d.pin.Read()
	if raw != d.lastRaw {
		d.lastChange = now
		d.lastRaw = raw
	}
	if hal.Elapsed(now, d.lastChange) > d.windowMs {
		d.stable = raw
	}
	return d.stable
}

// Stable returns the level from the most recent Update without sampling.
func (d *Debouncer) Stable() bool {
	return d.stable
}

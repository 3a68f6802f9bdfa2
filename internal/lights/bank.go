// Package lights drives the indicator bar: a linear bank of binary outputs,
// plus an optional strip mirror for visual feedback.
package lights

import "github.com/coreman2200/funtimes-proxibar/internal/hal"

// Bank is an ordered set of binary output cells. Cell 0 is the bottom of the
// bar. Each cell shadows the last value written to it so the displayed state
// can be inspected without touching hardware.
type Bank struct {
	pins  []hal.OutputPin
	cells []bool
}

func NewBank(pins []hal.OutputPin) *Bank {
	return &Bank{
		pins:  pins,
		cells: make([]bool, len(pins)),
	}
}

func (b *Bank) Len() int {
	return len(b.pins)
}

// Set drives one cell. Out-of-range indices are ignored; sweep bookkeeping
// legitimately walks one step past either end of the bar.
func (b *Bank) Set(i int, on bool) {
	if i < 0 || i >= len(b.pins) {
		return
	}
	b.pins[i].Write(on)
	b.cells[i] = on
}

// SetAll drives every cell to the same level.
func (b *Bank) SetAll(on bool) {
	for i := range b.pins {
		b.pins[i].Write(on)
		b.cells[i] = on
	}
}

// Get returns the shadowed state of one cell; false outside the bar.
func (b *Bank) Get(i int) bool {
	if i < 0 || i >= len(b.cells) {
		return false
	}
	return b.cells[i]
}

// Snapshot copies the shadowed state of every cell.
func (b *Bank) Snapshot() []bool {
	out := make([]bool, len(b.cells))
	copy(out, b.cells)
	return out
}

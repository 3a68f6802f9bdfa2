// Package hal abstracts the digital pins and the millisecond clock the
// controller runs against, so the sequencing logic can be exercised headless
// with injected fakes.
package hal

// InputPin is a single digital input.
type InputPin interface {
	// Read samples the current logic level.
	Read() bool
}

// OutputPin is a single digital output.
type OutputPin interface {
	// Write drives the pin high (true) or low (false).
	Write(on bool)
}

// Clock is a monotonic millisecond counter. Implementations may wrap; all
// elapsed-time math in this module goes through Elapsed, which stays correct
// across wraparound.
type Clock interface {
	NowMillis() uint64
}

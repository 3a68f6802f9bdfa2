package hal

// FakePin is an in-memory pin usable as both input and output, for tests and
// the simulator.
type FakePin struct {
	level bool
}

func (p *FakePin) Read() bool {
	return p.level
}

func (p *FakePin) Write(on bool) {
	p.level = on
}

// Set forces the level, standing in for the external circuit driving an
// input pin.
func (p *FakePin) Set(level bool) {
	p.level = level
}

// Level returns the last value written or set.
func (p *FakePin) Level() bool {
	return p.level
}

// FakeClock is a manually advanced millisecond counter.
type FakeClock struct {
	now uint64
}

func (c *FakeClock) NowMillis() uint64 {
	return c.now
}

// Advance moves the clock forward. Wrapping past the top of the counter is
// allowed; Elapsed handles it.
func (c *FakeClock) Advance(ms uint64) {
	c.now += ms
}

// SetMillis jumps the counter to an absolute value.
func (c *FakeClock) SetMillis(ms uint64) {
	c.now = ms
}

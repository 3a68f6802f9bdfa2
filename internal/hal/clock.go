package hal

import "time"

// Elapsed returns now-since in milliseconds. Unsigned subtraction keeps the
// result correct even if the counter wrapped between the two samples.
func Elapsed(now, since uint64) uint64 {
	return now - since
}

// SystemClock counts milliseconds from process start using the runtime's
// monotonic clock.
type SystemClock struct {
	start time.Time
}

func NewSystemClock() *SystemClock {
	return &SystemClock{start: time.Now()}
}

func (c *SystemClock) NowMillis() uint64 {
	return uint64(time.Since(c.start).Milliseconds())
}

// Stopwatch implements the non-blocking wait pattern: record a start time,
// then compare elapsed time against a threshold on every poll. It centralizes
// the wraparound-safe arithmetic so call sites never subtract timestamps
// directly.
type Stopwatch struct {
	clk   Clock
	start uint64
}

func NewStopwatch(clk Clock) *Stopwatch {
	return &Stopwatch{clk: clk, start: clk.NowMillis()}
}

// Restart moves the reference point to now.
func (s *Stopwatch) Restart() {
	s.start = s.clk.NowMillis()
}

// ElapsedMillis returns the time since the last Restart.
func (s *Stopwatch) ElapsedMillis() uint64 {
	return Elapsed(s.clk.NowMillis(), s.start)
}

// Expired reports whether at least limit milliseconds have passed since the
// last Restart.
func (s *Stopwatch) Expired(limit uint64) bool {
	return s.ElapsedMillis() >= limit
}

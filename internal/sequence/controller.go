// Package sequence implements the proximity-driven sequencing state machine:
// sensor debouncing feeds a single phase variable, and every light change is
// driven by elapsed-time checks inside a non-blocking Poll.
package sequence

import (
	"github.com/rs/zerolog"

	"github.com/coreman2200/funtimes-proxibar/internal/debounce"
	"github.com/coreman2200/funtimes-proxibar/internal/hal"
	"github.com/coreman2200/funtimes-proxibar/internal/lights"
)

// Timing collects the step and hold intervals, in milliseconds.
type Timing struct {
	MasterStepMs    uint64
	SecondaryStepMs uint64
	DwellMs         uint64
	HoldMs          uint64
}

// DefaultTiming matches the deployed hardware.
func DefaultTiming() Timing {
	return Timing{
		MasterStepMs:    200,
		SecondaryStepMs: 25,
		DwellMs:         200,
		HoldMs:          30_000,
	}
}

// Controller owns the light bank and all sequencing state. It is single
// threaded by design: Poll must be called from one loop, faster than the
// smallest step interval, and never blocks.
type Controller struct {
	bank   *lights.Bank
	master *debounce.Debouncer
	secA   *debounce.Debouncer
	secB   *debounce.Debouncer
	timing Timing
	log    zerolog.Logger

	phase    Phase
	idx      int
	step     *hal.Stopwatch
	hold     *hal.Stopwatch
	released bool
}

// NewController wires the machine together and blanks the bar.
func NewController(bank *lights.Bank, master, secA, secB *debounce.Debouncer, clk hal.Clock, t Timing, log zerolog.Logger) *Controller {
	c := &Controller{
		bank:   bank,
		master: master,
		secA:   secA,
		secB:   secB,
		timing: t,
		log:    log,
		phase:  Idle,
		step:   hal.NewStopwatch(clk),
		hold:   hal.NewStopwatch(clk),
	}
	c.bank.SetAll(false)
	return c
}

// Phase returns the current phase.
func (c *Controller) Phase() Phase {
	return c.phase
}

// Snapshot captures the phase and cell states for external observers.
type Snapshot struct {
	Phase Phase
	Cells []bool
}

func (c *Controller) Snapshot() Snapshot {
	return Snapshot{Phase: c.phase, Cells: c.bank.Snapshot()}
}

// Poll advances the machine one cycle. All three channels are sampled first
// so every decision in the cycle sees one consistent set of levels; master
// arbitration runs next, then the logic for the current phase. Secondary
// levels are only consulted from Idle and from their own hold phases, so a
// master-owned phase locks the secondaries out for the whole cycle.
func (c *Controller) Poll() {
	masterOn := c.master.Update()
	aOn := c.secA.Update()
	bOn := c.secB.Update()

	if masterOn {
		if !c.phase.masterRunning() {
			c.seizeMaster()
		}
	} else if c.phase.masterRunning() {
		// Let the current run finish cleanly; the run phases check this
		// flag at their checkpoints.
		c.released = true
	}

	switch c.phase {
	case Idle:
		c.pollIdle(aOn, bOn)

	case MasterSweepOn:
		if !c.sweepStep(true, 1, c.timing.MasterStepMs) {
			return
		}
		if c.released {
			c.enterMasterHold()
		} else {
			// Dwell with the bar full so the top cell is visibly on.
			c.setPhase(MasterPeakDwell)
		}

	case MasterPeakDwell:
		if !c.step.Expired(c.timing.DwellMs) {
			return
		}
		if c.released {
			c.enterMasterHold()
		} else {
			c.setPhase(MasterBlank)
		}

	case MasterBlank:
		// Single shot: blank instantly, then either restart the run or top
		// the bar back up before the hold.
		c.bank.SetAll(false)
		c.idx = 0
		c.step.Restart()
		if c.released {
			c.setPhase(MasterFinishOn)
		} else {
			c.setPhase(MasterSweepOn)
		}

	case MasterFinishOn:
		if c.sweepStep(true, 1, c.timing.MasterStepMs) {
			c.enterMasterHold()
		}

	case MasterHold:
		if !c.hold.Expired(c.timing.HoldMs) {
			return
		}
		c.idx = c.bank.Len() - 1
		c.step.Restart()
		c.setPhase(MasterReverseOff)

	case MasterReverseOff:
		if c.sweepStep(false, -1, c.timing.MasterStepMs) {
			c.resetToIdle()
		}

	case SecondaryAOn:
		if c.sweepStep(true, 1, c.timing.SecondaryStepMs) {
			c.hold.Restart()
			c.setPhase(SecondaryAHold)
		}

	case SecondaryAHold:
		c.pollSecondaryHold(aOn, c.bank.Len()-1, SecondaryAOff)

	case SecondaryAOff:
		if c.sweepStep(false, -1, c.timing.SecondaryStepMs) {
			c.resetToIdle()
		}

	case SecondaryBOn:
		if c.sweepStep(true, -1, c.timing.SecondaryStepMs) {
			c.hold.Restart()
			c.setPhase(SecondaryBHold)
		}

	case SecondaryBHold:
		c.pollSecondaryHold(bOn, 0, SecondaryBOff)

	case SecondaryBOff:
		if c.sweepStep(false, 1, c.timing.SecondaryStepMs) {
			c.resetToIdle()
		}
	}
}

// pollIdle starts a secondary sequence. A is checked first: if both sensors
// are active in the same cycle, A wins. Once a sequence starts it runs to
// completion unless the master preempts it.
func (c *Controller) pollIdle(aOn, bOn bool) {
	switch {
	case aOn:
		c.bank.SetAll(false)
		c.idx = 0
		c.step.Restart()
		c.setPhase(SecondaryAOn)
	case bOn:
		c.bank.SetAll(false)
		c.idx = c.bank.Len() - 1
		c.step.Restart()
		c.setPhase(SecondaryBOn)
	}
}

// pollSecondaryHold keeps the bar full until the hold expires. A renewed
// active level restarts the countdown rather than the sweep.
func (c *Controller) pollSecondaryHold(active bool, offStart int, next Phase) {
	if active {
		c.hold.Restart()
	}
	if !c.hold.Expired(c.timing.HoldMs) {
		return
	}
	c.idx = offStart
	c.step.Restart()
	c.setPhase(next)
}

// seizeMaster takes control for the master sensor: blank everything and
// start the fill from the bottom. Any in-progress secondary sequence is
// abandoned outright.
func (c *Controller) seizeMaster() {
	c.released = false
	c.bank.SetAll(false)
	c.idx = 0
	c.step.Restart()
	c.setPhase(MasterSweepOn)
}

func (c *Controller) enterMasterHold() {
	c.hold.Restart()
	c.setPhase(MasterHold)
}

// sweepStep advances the sweep by one cell in the given direction once the
// step interval has elapsed, and reports whether the index has walked past
// the end of the bar. The boundary values -1 and Len() are loop-termination
// sentinels; Set absorbs them.
func (c *Controller) sweepStep(on bool, dir int, stepMs uint64) bool {
	if !c.step.Expired(stepMs) {
		return false
	}
	c.step.Restart()
	c.bank.Set(c.idx, on)
	c.idx += dir
	return c.idx < 0 || c.idx >= c.bank.Len()
}

// resetToIdle blanks the bar and clears all sequencing bookkeeping.
func (c *Controller) resetToIdle() {
	c.bank.SetAll(false)
	c.idx = 0
	c.step.Restart()
	c.hold.Restart()
	c.released = false
	c.setPhase(Idle)
}

func (c *Controller) setPhase(p Phase) {
	if p == c.phase {
		return
	}
	c.log.Debug().Stringer("from", c.phase).Stringer("to", p).Msg("phase change")
	c.phase = p
}

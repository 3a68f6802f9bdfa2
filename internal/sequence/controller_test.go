package sequence

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreman2200/funtimes-proxibar/internal/debounce"
	"github.com/coreman2200/funtimes-proxibar/internal/hal"
	"github.com/coreman2200/funtimes-proxibar/internal/lights"
)

const (
	testCells  = 17
	testWindow = 50
)

// Short hold so full-cycle tests stay quick; the semantics don't depend on
// the actual 30s production value.
var testTiming = Timing{
	MasterStepMs:    200,
	SecondaryStepMs: 25,
	DwellMs:         200,
	HoldMs:          3000,
}

type rig struct {
	clk    *hal.FakeClock
	master *hal.FakePin
	secA   *hal.FakePin
	secB   *hal.FakePin
	bank   *lights.Bank
	ctl    *Controller
	pollMs uint64
}

func newRig() *rig {
	clk := &hal.FakeClock{}
	master := &hal.FakePin{}
	secA := &hal.FakePin{}
	secB := &hal.FakePin{}

	pins := make([]hal.OutputPin, testCells)
	for i := range pins {
		pins[i] = &hal.FakePin{}
	}
	bank := lights.NewBank(pins)

	ctl := NewController(bank,
		debounce.New(master, clk, testWindow),
		debounce.New(secA, clk, testWindow),
		debounce.New(secB, clk, testWindow),
		clk, testTiming, zerolog.Nop())

	return &rig{
		clk:    clk,
		master: master,
		secA:   secA,
		secB:   secB,
		bank:   bank,
		ctl:    ctl,
		pollMs: 5,
	}
}

// run simulates ms milliseconds of polling.
func (r *rig) run(ms uint64) {
	for t := uint64(0); t < ms; t += r.pollMs {
		r.clk.Advance(r.pollMs)
		r.ctl.Poll()
	}
}

// runUntil polls until the controller reaches p, or maxMs elapses.
func (r *rig) runUntil(p Phase, maxMs uint64) bool {
	for t := uint64(0); t < maxMs; t += r.pollMs {
		if r.ctl.Phase() == p {
			return true
		}
		r.clk.Advance(r.pollMs)
		r.ctl.Poll()
	}
	return r.ctl.Phase() == p
}

func (r *rig) litCount() int {
	n := 0
	for _, on := range r.bank.Snapshot() {
		if on {
			n++
		}
	}
	return n
}

func TestStartsIdleAndDark(t *testing.T) {
	r := newRig()
	assert.Equal(t, Idle, r.ctl.Phase())
	assert.Zero(t, r.litCount())

	r.run(1000)
	assert.Equal(t, Idle, r.ctl.Phase())
	assert.Zero(t, r.litCount())
}

func TestMasterRunCyclesWhileHeld(t *testing.T) {
	r := newRig()
	r.master.Set(true)
	r.run(60)
	require.Equal(t, MasterSweepOn, r.ctl.Phase())

	require.True(t, r.runUntil(MasterPeakDwell, 4000))
	assert.Equal(t, testCells, r.litCount(), "dwell begins with the bar full")

	// The run repeats: blank, then sweep again from the bottom.
	require.True(t, r.runUntil(MasterBlank, 500))
	r.run(r.pollMs)
	assert.Equal(t, MasterSweepOn, r.ctl.Phase())
	assert.Zero(t, r.litCount())

	require.True(t, r.runUntil(MasterPeakDwell, 4000))
	assert.Equal(t, testCells, r.litCount())
}

func TestMasterPreemptsSecondary(t *testing.T) {
	r := newRig()
	r.secA.Set(true)
	r.run(60)
	require.Equal(t, SecondaryAOn, r.ctl.Phase())
	r.run(200)
	require.NotZero(t, r.litCount())

	r.master.Set(true)
	r.run(60)
	assert.Equal(t, MasterSweepOn, r.ctl.Phase())
	assert.Zero(t, r.litCount(), "seizure blanks the bar before the new sweep")
}

func TestSecondaryAFullCycleReturnsToStart(t *testing.T) {
	r := newRig()
	start := r.bank.Snapshot()
	require.Equal(t, Idle, r.ctl.Phase())

	r.secA.Set(true)
	r.run(60)
	require.Equal(t, SecondaryAOn, r.ctl.Phase())
	r.secA.Set(false)

	require.True(t, r.runUntil(SecondaryAHold, 1000))
	assert.Equal(t, testCells, r.litCount())

	require.True(t, r.runUntil(SecondaryAOff, testTiming.HoldMs+500))
	require.True(t, r.runUntil(Idle, 1000))
	assert.Equal(t, start, r.bank.Snapshot(), "full cycle ends exactly where it began")
}

func TestSecondaryRetriggerExtendsHold(t *testing.T) {
	r := newRig()
	r.secA.Set(true)
	r.run(60)
	r.secA.Set(false)
	require.True(t, r.runUntil(SecondaryAHold, 1000))

	r.run(1000)
	require.Equal(t, SecondaryAHold, r.ctl.Phase())

	// A renewed pulse restarts the countdown.
	r.secA.Set(true)
	r.run(60)
	r.secA.Set(false)
	r.run(60)

	// Without the retrigger the original hold would have expired by now.
	r.run(2800)
	assert.Equal(t, SecondaryAHold, r.ctl.Phase(), "retrigger must extend the hold")

	r.run(300)
	assert.Equal(t, SecondaryAOff, r.ctl.Phase())
}

func TestMasterReleaseMidSweepCompletesFill(t *testing.T) {
	r := newRig()
	r.master.Set(true)
	r.run(60)
	require.Equal(t, MasterSweepOn, r.ctl.Phase())

	r.run(5 * testTiming.MasterStepMs)
	lit := r.litCount()
	require.GreaterOrEqual(t, lit, 4)
	require.Less(t, lit, testCells)

	r.master.Set(false)
	r.run(60)
	require.Equal(t, MasterSweepOn, r.ctl.Phase(), "release lets the sweep finish")

	r.run(uint64(testCells)*testTiming.MasterStepMs + 100)
	assert.Equal(t, MasterHold, r.ctl.Phase())
	assert.Equal(t, testCells, r.litCount(), "hold always starts with the bar full")
}

func TestMasterReactivationDuringHoldRestartsSweep(t *testing.T) {
	r := newRig()
	r.master.Set(true)
	r.run(60)
	r.run(5 * testTiming.MasterStepMs)
	r.master.Set(false)
	require.True(t, r.runUntil(MasterHold, 5000))

	r.run(500)
	require.Equal(t, MasterHold, r.ctl.Phase())
	require.Equal(t, testCells, r.litCount())

	r.master.Set(true)
	r.run(60)
	assert.Equal(t, MasterSweepOn, r.ctl.Phase())
	assert.Zero(t, r.litCount(), "re-seizure blanks the bar first")
}

func TestMasterReactivationDuringReverseOffRestartsSweep(t *testing.T) {
	r := newRig()
	r.master.Set(true)
	r.run(60)
	r.run(5 * testTiming.MasterStepMs)
	r.master.Set(false)
	require.True(t, r.runUntil(MasterHold, 5000))
	require.True(t, r.runUntil(MasterReverseOff, testTiming.HoldMs+500))

	r.run(3 * testTiming.MasterStepMs)
	require.Less(t, r.litCount(), testCells)

	r.master.Set(true)
	r.run(60)
	assert.Equal(t, MasterSweepOn, r.ctl.Phase())
	assert.Zero(t, r.litCount())
}

func TestMasterReleaseDuringDwellHoldsWithoutBlanking(t *testing.T) {
	r := newRig()
	r.master.Set(true)
	r.run(60)
	require.True(t, r.runUntil(MasterPeakDwell, 4000))

	r.master.Set(false)
	r.run(60)
	require.True(t, r.runUntil(MasterHold, 500))
	assert.Equal(t, testCells, r.litCount(), "bar stays full straight into the hold")
}

// Release can land in the one-cycle gap between the dwell expiring and the
// blank executing; the controller must then top the bar back up with a full
// extra sweep before holding.
func TestMasterReleaseAtBlankTopsBarBackUp(t *testing.T) {
	r := newRig()
	r.pollMs = 1
	r.master.Set(true)
	r.run(60)
	require.True(t, r.runUntil(MasterPeakDwell, 4000))

	// The dwell expires 200ms after entry. Dropping the raw level now makes
	// the debounced release land exactly one poll after the expiry, while
	// the blank phase is pending.
	r.run(149)
	r.master.Set(false)
	r.run(1)
	require.Equal(t, MasterPeakDwell, r.ctl.Phase())

	r.run(60)
	require.Equal(t, MasterFinishOn, r.ctl.Phase())
	assert.Zero(t, r.litCount(), "finish sweep starts from a blanked bar")

	r.run(uint64(testCells)*testTiming.MasterStepMs + 100)
	assert.Equal(t, MasterHold, r.ctl.Phase())
	assert.Equal(t, testCells, r.litCount())
}

func TestSecondaryBMirrorsSecondaryA(t *testing.T) {
	r := newRig()
	r.secB.Set(true)
	r.run(60)
	require.Equal(t, SecondaryBOn, r.ctl.Phase())
	r.secB.Set(false)

	r.run(30)
	assert.True(t, r.bank.Get(testCells-1), "B fills from the top")
	assert.False(t, r.bank.Get(0))

	require.True(t, r.runUntil(SecondaryBHold, 1000))
	assert.Equal(t, testCells, r.litCount())

	require.True(t, r.runUntil(SecondaryBOff, testTiming.HoldMs+500))
	r.run(30)
	assert.False(t, r.bank.Get(0), "B clears from the bottom")
	assert.True(t, r.bank.Get(testCells-1))

	require.True(t, r.runUntil(Idle, 1000))
	assert.Zero(t, r.litCount())
}

func TestSimultaneousSecondariesPreferA(t *testing.T) {
	r := newRig()
	r.secA.Set(true)
	r.secB.Set(true)
	r.run(60)
	assert.Equal(t, SecondaryAOn, r.ctl.Phase())
}

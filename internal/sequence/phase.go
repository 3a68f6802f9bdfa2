package sequence

// Phase identifies the controller's current sequencing mode. Exactly one
// phase is active at a time; the sweep index, stopwatches and release flag
// are interpreted relative to it.
type Phase uint8

const (
	Idle Phase = iota

	// Master run while the sensor stays active: fill the bar, dwell at the
	// top, blank, repeat.
	MasterSweepOn
	MasterPeakDwell
	MasterBlank

	// Master release-finish path: top up to all-on, hold, then walk the bar
	// off from the top.
	MasterFinishOn
	MasterHold
	MasterReverseOff

	// Secondary sensor A: bottom-up fill, hold, top-down clear.
	SecondaryAOn
	SecondaryAHold
	SecondaryAOff

	// Secondary sensor B: mirror image of A.
	SecondaryBOn
	SecondaryBHold
	SecondaryBOff
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case MasterSweepOn:
		return "master-sweep-on"
	case MasterPeakDwell:
		return "master-peak-dwell"
	case MasterBlank:
		return "master-blank"
	case MasterFinishOn:
		return "master-finish-on"
	case MasterHold:
		return "master-hold"
	case MasterReverseOff:
		return "master-reverse-off"
	case SecondaryAOn:
		return "secondary-a-on"
	case SecondaryAHold:
		return "secondary-a-hold"
	case SecondaryAOff:
		return "secondary-a-off"
	case SecondaryBOn:
		return "secondary-b-on"
	case SecondaryBHold:
		return "secondary-b-hold"
	case SecondaryBOff:
		return "secondary-b-off"
	}
	return "unknown"
}

// masterRunning reports whether p is one of the repeating-run phases the
// master cycles through while its sensor stays active. The master does not
// re-seize control from these; everywhere else it does.
func (p Phase) masterRunning() bool {
	return p == MasterSweepOn || p == MasterPeakDwell || p == MasterBlank
}

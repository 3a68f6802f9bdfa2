// Package sim replays scripted sensor activity against fake pins, so full
// sequences can be exercised without hardware or real time.
package sim

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/coreman2200/funtimes-proxibar/internal/hal"
)

// Sensor names accepted in scenario files.
const (
	SensorMaster     = "master"
	SensorSecondaryA = "secondary_a"
	SensorSecondaryB = "secondary_b"
)

// Event flips one sensor's raw level at a scenario timestamp.
type Event struct {
	AtMs   uint64 `yaml:"at_ms"`
	Sensor string `yaml:"sensor"`
	Level  bool   `yaml:"level"`
}

// Scenario is a timed script of raw sensor edges.
type Scenario struct {
	Name       string  `yaml:"name"`
	PollMs     uint64  `yaml:"poll_ms"`
	DurationMs uint64  `yaml:"duration_ms"`
	Events     []Event `yaml:"events"`
}

// Load reads and validates a scenario file. Events are sorted by timestamp.
func Load(path string) (*Scenario, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var s Scenario
	if err := yaml.Unmarshal(b, &s); err != nil {
		return nil, err
	}
	if s.PollMs == 0 {
		s.PollMs = 5
	}
	for i, e := range s.Events {
		switch e.Sensor {
		case SensorMaster, SensorSecondaryA, SensorSecondaryB:
		default:
			return nil, fmt.Errorf("event %d: unknown sensor %q", i, e.Sensor)
		}
	}
	sort.SliceStable(s.Events, func(i, j int) bool {
		return s.Events[i].AtMs < s.Events[j].AtMs
	})
	if s.DurationMs == 0 && len(s.Events) > 0 {
		// Leave room for a full hold and off-sweep after the last edge.
		s.DurationMs = s.Events[len(s.Events)-1].AtMs + 45_000
	}
	return &s, nil
}

// Player feeds scenario events into the fake sensor pins as simulated time
// advances.
type Player struct {
	events []Event
	next   int
	pins   map[string]*hal.FakePin
}

func NewPlayer(s *Scenario, master, secA, secB *hal.FakePin) *Player {
	return &Player{
		events: s.Events,
		pins: map[string]*hal.FakePin{
			SensorMaster:     master,
			SensorSecondaryA: secA,
			SensorSecondaryB: secB,
		},
	}
}

// Apply replays every event due at or before nowMs.
func (p *Player) Apply(nowMs uint64) {
	for p.next < len(p.events) && p.events[p.next].AtMs <= nowMs {
		e := p.events[p.next]
		p.pins[e.Sensor].Set(e.Level)
		p.next++
	}
}

// Done reports whether all events have been replayed.
func (p *Player) Done() bool {
	return p.next >= len(p.events)
}

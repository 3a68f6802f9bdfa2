// Package config loads the daemon configuration from YAML.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Sensors names the three proximity sensor input pins.
type Sensors struct {
	Master     string `yaml:"master"`
	SecondaryA string `yaml:"secondary_a"`
	SecondaryB string `yaml:"secondary_b"`
}

// Timing holds the debounce window and sequencing intervals in milliseconds.
type Timing struct {
	DebounceMs      uint64 `yaml:"debounce_ms"`
	MasterStepMs    uint64 `yaml:"master_step_ms"`
	SecondaryStepMs uint64 `yaml:"secondary_step_ms"`
	DwellMs         uint64 `yaml:"dwell_ms"`
	HoldMs          uint64 `yaml:"hold_ms"`
}

// Monitor configures the read-only observation endpoint.
type Monitor struct {
	Enabled bool   `yaml:"enabled"`
	Listen  string `yaml:"listen"`
}

// Mirror configures the optional strip mirror. An empty SPIDev selects the
// console device.
type Mirror struct {
	Enabled bool   `yaml:"enabled"`
	SPIDev  string `yaml:"spi_dev,omitempty"`
}

type Config struct {
	Lights  []string `yaml:"lights"`
	Sensors Sensors  `yaml:"sensors"`
	Timing  Timing   `yaml:"timing"`
	PollMs  uint64   `yaml:"poll_ms"`
	Monitor Monitor  `yaml:"monitor"`
	Mirror  Mirror   `yaml:"mirror"`
}

// Default returns the deployed wiring: 17 lights up the bar, three sensors,
// and the timing the hardware shipped with.
func Default() *Config {
	return &Config{
		Lights: []string{
			"GPIO2", "GPIO3", "GPIO4", "GPIO5", "GPIO6", "GPIO7",
			"GPIO8", "GPIO9", "GPIO10", "GPIO11", "GPIO12", "GPIO13",
			"GPIO16", "GPIO17", "GPIO18", "GPIO19", "GPIO20",
		},
		Sensors: Sensors{
			Master:     "GPIO21",
			SecondaryA: "GPIO22",
			SecondaryB: "GPIO23",
		},
		Timing: Timing{
			DebounceMs:      50,
			MasterStepMs:    200,
			SecondaryStepMs: 25,
			DwellMs:         200,
			HoldMs:          30_000,
		},
		PollMs:  5,
		Monitor: Monitor{Enabled: false, Listen: ":8080"},
		Mirror:  Mirror{Enabled: false},
	}
}

// Validate rejects configurations the controller cannot run with.
func (c *Config) Validate() error {
	if len(c.Lights) == 0 {
		return fmt.Errorf("no light pins configured")
	}
	for i, name := range c.Lights {
		if name == "" {
			return fmt.Errorf("light %d has no pin name", i)
		}
	}
	if c.Sensors.Master == "" || c.Sensors.SecondaryA == "" || c.Sensors.SecondaryB == "" {
		return fmt.Errorf("all three sensor pins must be named")
	}
	if c.PollMs == 0 {
		return fmt.Errorf("poll_ms must be positive")
	}
	if c.Timing.SecondaryStepMs > 0 && c.PollMs > c.Timing.SecondaryStepMs {
		return fmt.Errorf("poll_ms %d exceeds the smallest step interval %dms", c.PollMs, c.Timing.SecondaryStepMs)
	}
	return nil
}

func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c := Default()
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func Save(path string, c *Config) error {
	b, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0644)
}

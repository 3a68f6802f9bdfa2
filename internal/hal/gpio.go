package hal

import (
	"fmt"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
)

type gpioIn struct {
	p gpio.PinIn
}

func (g *gpioIn) Read() bool {
	return g.p.Read() == gpio.High
}

type gpioOut struct {
	p gpio.PinOut
}

func (g *gpioOut) Write(on bool) {
	_ = g.p.Out(gpio.Level(on))
}

// OpenInput looks up a pin by its periph name (e.g. "GPIO21") and configures
// it as a plain input. The external circuit must supply clean logic levels;
// no pull resistor is enabled, matching the deployed sensor wiring.
func OpenInput(name string) (InputPin, error) {
	p := gpioreg.ByName(name)
	if p == nil {
		return nil, fmt.Errorf("no such pin %q", name)
	}
	if err := p.In(gpio.Float, gpio.NoEdge); err != nil {
		return nil, fmt.Errorf("configure %q as input: %w", name, err)
	}
	return &gpioIn{p: p}, nil
}

// OpenOutput looks up a pin by name and configures it as an output driven
// low.
func OpenOutput(name string) (OutputPin, error) {
	p := gpioreg.ByName(name)
	if p == nil {
		return nil, fmt.Errorf("no such pin %q", name)
	}
	if err := p.Out(gpio.Low); err != nil {
		return nil, fmt.Errorf("drive %q low: %w", name, err)
	}
	return &gpioOut{p: p}, nil
}

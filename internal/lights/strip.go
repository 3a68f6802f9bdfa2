package lights

import (
	"fmt"
	"image"
	"image/color"

	"periph.io/x/conn/v3/display"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/devices/v3/nrzled"
	"periph.io/x/extra/devices/screen"
)

const stripRefresh physic.Frequency = 800

// StripMirror duplicates the bank onto an addressable LED strip, or onto the
// ANSI console, purely for visual feedback. The GPIO bank stays the source of
// truth; the mirror is write-only and best-effort.
type StripMirror struct {
	drawer display.Drawer
	on     color.NRGBA
	count  int
}

func NewStripMirror(d display.Drawer, count int, on color.NRGBA) *StripMirror {
	return &StripMirror{drawer: d, on: on, count: count}
}

// OpenStrip opens a WS2812-compatible strip on the named SPI port. An empty
// port name selects the console device instead, so the mirror also works on
// a dev machine without hardware.
func OpenStrip(spiPort string, count int, on color.NRGBA) (*StripMirror, error) {
	if spiPort == "" {
		return NewStripMirror(screen.New(count), count, on), nil
	}
	port, err := spireg.Open(spiPort)
	if err != nil {
		return nil, fmt.Errorf("open SPI port %q: %w", spiPort, err)
	}
	return NewStripMirrorSPI(port, count, on)
}

// NewStripMirrorSPI builds a mirror over an already opened SPI port.
func NewStripMirrorSPI(port spi.Port, count int, on color.NRGBA) (*StripMirror, error) {
	opts := nrzled.Opts{
		NumPixels: count,
		Channels:  3,
		Freq:      ((stripRefresh * 3) + 100) * physic.KiloHertz,
	}
	dev, err := nrzled.NewSPI(port, &opts)
	if err != nil {
		return nil, fmt.Errorf("init strip: %w", err)
	}
	return NewStripMirror(dev, count, on), nil
}

// Render pushes one frame reflecting the given cell states.
func (m *StripMirror) Render(cells []bool) error {
	img := image.NewNRGBA(image.Rect(0, 0, m.count, 1))
	for x := 0; x < m.count; x++ {
		px := color.NRGBA{A: 0xFF}
		if x < len(cells) && cells[x] {
			px = m.on
		}
		img.SetNRGBA(x, 0, px)
	}
	return m.drawer.Draw(m.drawer.Bounds(), img, image.Point{})
}

// Close halts the underlying device, blanking the strip.
func (m *StripMirror) Close() error {
	return m.drawer.Halt()
}

package main

import (
	"flag"
	"image/color"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"periph.io/x/extra/devices/screen"

	"github.com/coreman2200/funtimes-proxibar/internal/debounce"
	"github.com/coreman2200/funtimes-proxibar/internal/hal"
	"github.com/coreman2200/funtimes-proxibar/internal/lights"
	"github.com/coreman2200/funtimes-proxibar/internal/sequence"
	"github.com/coreman2200/funtimes-proxibar/internal/sim"
)

const (
	numLights  = 17
	debounceMs = 50
)

func main() {
	var (
		scenarioPath = flag.String("scenario", "", "path to a scenario YAML")
		render       = flag.Bool("render", true, "draw the bar to the console on every change")
		realtime     = flag.Bool("realtime", false, "pace the simulation at wall-clock speed")
	)
	flag.Parse()

	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen})
	zerolog.SetGlobalLevel(zerolog.DebugLevel)

	if *scenarioPath == "" {
		log.Fatal().Msg("provide -scenario path to a scenario YAML")
	}
	sc, err := sim.Load(*scenarioPath)
	if err != nil {
		log.Fatal().Err(err).Msg("load scenario")
	}
	log.Info().Str("name", sc.Name).Int("events", len(sc.Events)).
		Uint64("poll_ms", sc.PollMs).Uint64("duration_ms", sc.DurationMs).Msg("scenario loaded")

	clk := &hal.FakeClock{}
	master := &hal.FakePin{}
	secA := &hal.FakePin{}
	secB := &hal.FakePin{}

	outs := make([]hal.OutputPin, numLights)
	for i := range outs {
		outs[i] = &hal.FakePin{}
	}
	bank := lights.NewBank(outs)
	ctl := sequence.NewController(bank,
		debounce.New(master, clk, debounceMs),
		debounce.New(secA, clk, debounceMs),
		debounce.New(secB, clk, debounceMs),
		clk, sequence.DefaultTiming(),
		log.With().Str("system", "sequence").Logger())

	var mirror *lights.StripMirror
	if *render {
		mirror = lights.NewStripMirror(screen.New(numLights), numLights,
			color.NRGBA{R: 0xFF, G: 0xBF, A: 0xFF})
	}

	player := sim.NewPlayer(sc, master, secA, secB)

	var shown []bool
	lastPhase := sequence.Idle
	started := false
	for now := uint64(0); now <= sc.DurationMs; now += sc.PollMs {
		clk.SetMillis(now)
		player.Apply(now)
		ctl.Poll()

		snap := ctl.Snapshot()
		if snap.Phase != lastPhase {
			log.Info().Uint64("t_ms", now).Stringer("phase", snap.Phase).Msg("transition")
			lastPhase = snap.Phase
			if snap.Phase != sequence.Idle {
				started = true
			}
		}
		if mirror != nil && !equalCells(shown, snap.Cells) {
			_ = mirror.Render(snap.Cells)
			shown = snap.Cells
		}
		if started && player.Done() && snap.Phase == sequence.Idle {
			log.Info().Uint64("t_ms", now).Msg("sequence settled back to idle")
			break
		}
		if *realtime {
			time.Sleep(time.Duration(sc.PollMs) * time.Millisecond)
		}
	}
	log.Info().Stringer("phase", ctl.Phase()).Msg("simulation done")
}

func equalCells(a, b []bool) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

package main

import (
	"flag"
	"image/color"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"periph.io/x/host/v3"

	"github.com/coreman2200/funtimes-proxibar/internal/config"
	"github.com/coreman2200/funtimes-proxibar/internal/debounce"
	"github.com/coreman2200/funtimes-proxibar/internal/hal"
	"github.com/coreman2200/funtimes-proxibar/internal/lights"
	"github.com/coreman2200/funtimes-proxibar/internal/monitor"
	"github.com/coreman2200/funtimes-proxibar/internal/sequence"
)

var mirrorOn = color.NRGBA{R: 0xFF, G: 0xBF, A: 0xFF}

func main() {
	var (
		configPath = flag.String("config", "config.yaml", "path to config.yaml")
		debug      = flag.Bool("debug", false, "enable debug logging")
		listen     = flag.String("listen", "", "enable the monitor on this address (overrides config)")
		writeCfg   = flag.Bool("write-config", false, "write the default config to -config and exit")
	)
	flag.Parse()

	// ---- Logging ----
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen})
	if *debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	if *writeCfg {
		if err := config.Save(*configPath, config.Default()); err != nil {
			log.Fatal().Err(err).Msg("write config")
		}
		log.Info().Str("path", *configPath).Msg("wrote default config")
		return
	}

	// ---- Load config.yaml (optional) ----
	cfg := config.Default()
	if c, err := config.Load(*configPath); err != nil {
		log.Warn().Err(err).Str("path", *configPath).Msg("config load failed; proceeding with defaults")
	} else {
		cfg = c
	}
	if *listen != "" {
		cfg.Monitor.Enabled = true
		cfg.Monitor.Listen = *listen
	}

	// ---- Hardware bring-up ----
	if _, err := host.Init(); err != nil {
		log.Fatal().Err(err).Msg("periph host init")
	}

	outs := make([]hal.OutputPin, 0, len(cfg.Lights))
	for _, name := range cfg.Lights {
		p, err := hal.OpenOutput(name)
		if err != nil {
			log.Fatal().Err(err).Str("pin", name).Msg("open light pin")
		}
		outs = append(outs, p)
	}

	openSensor := func(name string) hal.InputPin {
		p, err := hal.OpenInput(name)
		if err != nil {
			log.Fatal().Err(err).Str("pin", name).Msg("open sensor pin")
		}
		return p
	}
	masterPin := openSensor(cfg.Sensors.Master)
	secAPin := openSensor(cfg.Sensors.SecondaryA)
	secBPin := openSensor(cfg.Sensors.SecondaryB)

	clk := hal.NewSystemClock()
	bank := lights.NewBank(outs)
	ctl := sequence.NewController(bank,
		debounce.New(masterPin, clk, cfg.Timing.DebounceMs),
		debounce.New(secAPin, clk, cfg.Timing.DebounceMs),
		debounce.New(secBPin, clk, cfg.Timing.DebounceMs),
		clk,
		sequence.Timing{
			MasterStepMs:    cfg.Timing.MasterStepMs,
			SecondaryStepMs: cfg.Timing.SecondaryStepMs,
			DwellMs:         cfg.Timing.DwellMs,
			HoldMs:          cfg.Timing.HoldMs,
		},
		log.With().Str("system", "sequence").Logger())

	var mirror *lights.StripMirror
	if cfg.Mirror.Enabled {
		m, err := lights.OpenStrip(cfg.Mirror.SPIDev, bank.Len(), mirrorOn)
		if err != nil {
			log.Warn().Err(err).Msg("strip mirror unavailable")
		} else {
			mirror = m
			defer mirror.Close()
			log.Info().Str("spi", cfg.Mirror.SPIDev).Msg("strip mirror attached")
		}
	}

	var mon *monitor.State
	if cfg.Monitor.Enabled {
		mon = monitor.New(log.With().Str("system", "monitor").Logger())
		go func() {
			log.Info().Str("listen", cfg.Monitor.Listen).Msg("monitor listening")
			if err := http.ListenAndServe(cfg.Monitor.Listen, mon.Handler()); err != nil {
				log.Error().Err(err).Msg("monitor server")
			}
		}()
	}

	// ---- Control loop ----
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

	ticker := time.NewTicker(time.Duration(cfg.PollMs) * time.Millisecond)
	defer ticker.Stop()

	log.Info().Int("lights", bank.Len()).Uint64("poll_ms", cfg.PollMs).Msg("control loop running")

	var shown []bool
	for {
		select {
		case <-ticker.C:
			ctl.Poll()
			snap := ctl.Snapshot()
			if mon != nil {
				mon.Publish(snap)
			}
			if mirror != nil && !equalCells(shown, snap.Cells) {
				if err := mirror.Render(snap.Cells); err != nil {
					log.Debug().Err(err).Msg("mirror render")
				}
				shown = snap.Cells
			}
		case s := <-sig:
			log.Info().Str("signal", s.String()).Msg("shutting down")
			bank.SetAll(false)
			return
		}
	}
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

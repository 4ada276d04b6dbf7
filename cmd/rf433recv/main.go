// Command rf433recv wires the detector, slicer, decoder registry and an
// output sink together into a standalone offline receiver: it reads a
// recorded I/Q capture file, runs every sample through the same pipeline
// a live SDR front end would use, and prints each decoded event.
//
// This mirrors the shape of the teacher's atest.go offline test fixture --
// read a recording, drive the real pipeline with it, report counts at the
// end -- translated from a WAV-driven AFSK demodulator harness into a
// cu8-driven sub-GHz OOK/FSK one.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"

	"github.com/kb9vcn/rf433recv/internal/config"
	"github.com/kb9vcn/rf433recv/internal/decoder"
	"github.com/kb9vcn/rf433recv/internal/decoders"
	"github.com/kb9vcn/rf433recv/internal/iqsource"
	"github.com/kb9vcn/rf433recv/internal/pulse"
	"github.com/kb9vcn/rf433recv/internal/sink"
)

func main() {
	var flags = config.ParseFlags(os.Args[1:])

	var logger = log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: true})
	if lvl, err := log.ParseLevel(flags.LogLevel); err == nil {
		logger.SetLevel(lvl)
	} else {
		logger.Warn("unrecognized log level, defaulting to info", "given", flags.LogLevel)
	}

	if flags.Source == "" {
		logger.Fatal("no capture file given", "flag", "--source")
	}

	var cfg config.Config
	if flags.Config != "" {
		var loaded, err = config.Load(flags.Config)
		if err != nil {
			logger.Fatal("failed to load config", "path", flags.Config, "err", err)
		}
		cfg = loaded
	} else {
		cfg = config.Default()
	}

	var out = buildSink(cfg, logger)
	defer out.Free()

	var n, err = run(flags.Source, cfg, out, logger)
	if err != nil {
		logger.Fatal("pipeline failed", "err", err)
	}
	logger.Info("finished", "events", n)
}

func buildSink(cfg config.Config, logger *log.Logger) sink.Sink {
	if len(cfg.Sinks) == 0 {
		return sink.NewJSONLineSink(os.Stdout)
	}

	var first = cfg.Sinks[0]
	switch first.Kind {
	case "kv":
		return sink.NewKeyValueLineSink(os.Stdout)
	case "syslog":
		var s, err = sink.NewUDPSyslogSink(first.Target, 16)
		if err != nil {
			logger.Fatal("failed to open syslog sink", "target", first.Target, "err", err)
		}
		return s
	case "file":
		var s, err = sink.NewRotatingFileSink(first.Target)
		if err != nil {
			logger.Fatal("failed to open file sink", "pattern", first.Target, "err", err)
		}
		return s
	default:
		return sink.NewJSONLineSink(os.Stdout)
	}
}

// run drives one capture file through the AM and FM detectors and the
// decoder registry, printing every successfully decoded event to out. It
// returns the number of events emitted.
func run(path string, cfg config.Config, out sink.Sink, logger *log.Logger) (int, error) {
	var f, openErr = os.Open(path)
	if openErr != nil {
		return 0, openErr
	}
	defer f.Close()

	var src = iqsource.NewCU8Source(f)

	var reg = decoder.NewRegistry()
	decoders.Register(reg)
	for _, d := range reg.Descriptors() {
		d.Enabled = !cfg.IsDisabled(d.Name)
	}
	out.StartOutput(reg.FieldUnion())

	var detCfg = pulse.Config{
		SampleRate:   cfg.Detector.SampleRate,
		ResetLimitUs: cfg.Detector.ResetLimitUs,
		NoiseAttack:  cfg.Detector.NoiseAttack,
		NoiseDecay:   cfg.Detector.NoiseDecay,
		SignalAttack: cfg.Detector.SignalAttack,
		SignalDecay:  cfg.Detector.SignalDecay,
		Logger:       logger,
	}
	var amDet = pulse.NewAMDetector(detCfg)
	var fmDet = pulse.NewFMDetector(detCfg)

	var events int
	var emitBurst = func(burst pulse.Data, family pulse.Family) {
		for _, outcome := range reg.Dispatch(burst, family) {
			if len(outcome.Events) == 0 {
				continue
			}
			logger.Debug("decoded burst", "decoder", outcome.Decoder, "events", len(outcome.Events))
			for _, rec := range outcome.Events {
				out.PrintRecord("", "", rec, "")
				events++
			}
		}
	}

	var buf = make([]complex64, 16384)
	for {
		var n, readErr = src.ReadIQ(buf)
		if n > 0 {
			var block = buf[:n]
			amDet.Process(iqsource.Envelope(block), func(d pulse.Data) { emitBurst(d, pulse.FamilyAM) })
			fmDet.Process(iqsource.Discriminator(block), func(d pulse.Data) { emitBurst(d, pulse.FamilyFM) })
		}
		if readErr != nil {
			if errors.Is(readErr, io.EOF) {
				break
			}
			return events, fmt.Errorf("reading capture: %w", readErr)
		}
	}

	return events, nil
}

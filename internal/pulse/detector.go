package pulse

import (
	"math"

	"github.com/charmbracelet/log"
)

/*------------------------------------------------------------------
 *
 * Purpose:	Track RF level in real time and segment a continuous
 *		I/Q (or discriminator) stream into discrete pulse/gap
 *		bursts.
 *
 * Description:	Two parallel detectors run on the same underlying sample
 *		stream: AMDetector tracks an amplitude envelope with an
 *		adaptive noise-floor/signal-peak pair (the same attack/
 *		decay smoothing shape as a classic AGC, mirroring the
 *		"quick_attack / sluggish_decay" pair the reference soundcard
 *		demodulator keeps for its own signal-level reporting).
 *		FMDetector tracks a frequency-discriminator stream and
 *		treats the adaptive top/bottom envelope as "mark" and
 *		"space" tone levels; a crossing between them is a pulse
 *		edge exactly as an amplitude threshold crossing is for AM.
 *
 *------------------------------------------------------------------*/

// Config parameterizes a detector. ResetLimitUs is the silence duration
// that terminates a burst; it is a detector-wide default, independent of
// any individual decoder's timing (decoders apply their own short/long
// tolerances downstream, in the slicer).
type Config struct {
	SampleRate int

	ResetLimitUs int

	// Smoothing factors in [0,1]; larger values react faster.
	NoiseAttack  float64
	NoiseDecay   float64
	SignalAttack float64
	SignalDecay  float64

	// Logger, if set, receives a warning whenever a burst's pulse buffer
	// fills before reset-limit silence would have closed it naturally --
	// the burst is still processed, just truncated. Left
	// nil, overflow is silent (matches the zero-value Config a test can
	// construct without wiring a logger).
	Logger *log.Logger
}

// DefaultConfig returns sensible defaults for a given sample rate,
// matching the short attack / slow decay shape of a classic envelope
// follower.
func DefaultConfig(sampleRate int) Config {
	return Config{
		SampleRate:   sampleRate,
		ResetLimitUs: 10000,
		NoiseAttack:  0.001,
		NoiseDecay:   0.0001,
		SignalAttack: 0.1,
		SignalDecay:  0.01,
	}
}

func usPerSample(sampleRate int) float64 {
	return 1e6 / float64(sampleRate)
}

// AMDetector segments an amplitude-envelope stream (e.g. |I|+|Q|) into OOK
// pulse/gap bursts.
type AMDetector struct {
	cfg Config

	noiseFloor float64
	signalPeak float64

	inPulse       bool
	pulseSamples  int
	gapSamples    int
	resetSamples  int

	data Data
}

func NewAMDetector(cfg Config) *AMDetector {
	return &AMDetector{
		cfg:          cfg,
		noiseFloor:   1,
		signalPeak:   2,
		resetSamples: int(float64(cfg.ResetLimitUs) / usPerSample(cfg.SampleRate)),
	}
}

// Process feeds one block of envelope magnitude samples through the
// detector. Each time a burst completes (silence exceeds ResetLimitUs, or
// the pulse buffer fills), emit is called with the finished burst and
// detector state resets to begin capturing the next one.
func (d *AMDetector) Process(envelope []float64, emit func(Data)) {
	var usSample = usPerSample(d.cfg.SampleRate)

	for _, mag := range envelope {
		var threshold = math.Sqrt(d.noiseFloor * d.signalPeak)
		var above = mag > threshold

		if above {
			d.signalPeak = d.signalPeak*(1-d.cfg.SignalAttack) + mag*d.cfg.SignalAttack
			if !d.inPulse {
				// Rising edge: gap (if any) just ended, a new pulse begins.
				d.closeGap()
				d.inPulse = true
			}
			d.pulseSamples++
		} else {
			d.noiseFloor = d.noiseFloor*(1-d.cfg.NoiseDecay) + mag*d.cfg.NoiseDecay
			if d.inPulse {
				// Falling edge: pulse just ended.
				d.closePulse()
				d.inPulse = false
			}
			d.gapSamples++

			if d.data.NumPulses > 0 && d.gapSamples >= d.resetSamples {
				d.finish(usSample, emit)
			}
		}

		if d.data.NumPulses >= MaxPulses {
			if d.cfg.Logger != nil {
				d.cfg.Logger.Warn("pulse buffer full, closing burst early", "max_pulses", MaxPulses)
			}
			d.finish(usSample, emit)
		}
	}
}

func (d *AMDetector) closePulse() {
	var us = int(float64(d.pulseSamples) * usPerSample(d.cfg.SampleRate))
	if d.data.NumPulses > 0 && d.data.NumPulses-1 < MaxPulses {
		d.data.Pulse[d.data.NumPulses-1] = us
	}
	d.pulseSamples = 0
}

func (d *AMDetector) closeGap() {
	var us = int(float64(d.gapSamples) * usPerSample(d.cfg.SampleRate))
	if d.data.NumPulses > 0 && d.data.NumPulses-1 < MaxPulses {
		d.data.Gap[d.data.NumPulses-1] = us
	} else if d.data.NumPulses == 0 {
		// No leading gap is recorded; a burst always begins with a pulse.
	}
	d.gapSamples = 0
	d.data.NumPulses++
}

func (d *AMDetector) finish(usSample float64, emit func(Data)) {
	if d.inPulse {
		d.closePulse()
		d.inPulse = false
	}
	if d.data.NumPulses == 0 {
		d.reset()
		return
	}

	d.data.SampleRate = d.cfg.SampleRate
	d.data.RSSIDb = 20 * math.Log10(maxFloat(d.signalPeak, 1e-9))
	d.data.NoiseDb = 20 * math.Log10(maxFloat(d.noiseFloor, 1e-9))
	d.data.SNRDb = d.data.RSSIDb - d.data.NoiseDb
	d.data.OOKLowEstimate = d.noiseFloor
	d.data.OOKHighEstimate = d.signalPeak

	emit(d.data)
	_ = usSample
	d.reset()
}

func (d *AMDetector) reset() {
	d.data = Data{}
	d.pulseSamples = 0
	d.gapSamples = 0
	d.inPulse = false
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

// FMDetector segments a frequency-discriminator stream into FSK
// pulse/gap bursts. "Mark" (positive deviation) and "space" (negative
// deviation) are tracked the same way AM tracks signal peak and noise
// floor; a transition between the two modes is a pulse edge.
type FMDetector struct {
	cfg Config

	markLevel  float64
	spaceLevel float64

	inMark        bool
	started       bool
	pulseSamples  int
	gapSamples    int
	resetSamples  int
	markSum       float64
	markCount     int
	spaceSum      float64
	spaceCount    int

	data Data
}

func NewFMDetector(cfg Config) *FMDetector {
	return &FMDetector{
		cfg:          cfg,
		resetSamples: int(float64(cfg.ResetLimitUs) / usPerSample(cfg.SampleRate)),
	}
}

// Process feeds one block of discriminator samples (instantaneous
// frequency estimate, centered at 0) through the detector.
func (d *FMDetector) Process(discriminator []float64, emit func(Data)) {
	var usSample = usPerSample(d.cfg.SampleRate)

	for _, f := range discriminator {
		var mark = f > 0
		var mag = math.Abs(f)

		if mark {
			d.markLevel = d.markLevel*(1-d.cfg.SignalAttack) + mag*d.cfg.SignalAttack
			d.markSum += f
			d.markCount++
		} else {
			d.spaceLevel = d.spaceLevel*(1-d.cfg.SignalAttack) + mag*d.cfg.SignalAttack
			d.spaceSum += f
			d.spaceCount++
		}

		if !d.started {
			d.started = true
			d.inMark = mark
			if mark {
				// The stream opens mid-pulse: that pulse is the first one.
				d.data.NumPulses++
			}
		}

		if mark == d.inMark {
			if d.inMark {
				d.pulseSamples++
			} else {
				d.gapSamples++
				if d.data.NumPulses > 0 && d.gapSamples >= d.resetSamples {
					d.finish(usSample, emit)
				}
			}
		} else {
			// Mode transition: an edge.
			if d.inMark {
				d.closePulse()
			} else {
				d.closeGap()
			}
			d.inMark = mark
		}

		if d.data.NumPulses >= MaxPulses {
			if d.cfg.Logger != nil {
				d.cfg.Logger.Warn("pulse buffer full, closing burst early", "max_pulses", MaxPulses)
			}
			d.finish(usSample, emit)
		}
	}
}

func (d *FMDetector) closePulse() {
	var us = int(float64(d.pulseSamples) * usPerSample(d.cfg.SampleRate))
	if d.data.NumPulses > 0 && d.data.NumPulses-1 < MaxPulses {
		d.data.Pulse[d.data.NumPulses-1] = us
	}
	d.pulseSamples = 0
}

func (d *FMDetector) closeGap() {
	var us = int(float64(d.gapSamples) * usPerSample(d.cfg.SampleRate))
	if d.data.NumPulses > 0 && d.data.NumPulses-1 < MaxPulses {
		d.data.Gap[d.data.NumPulses-1] = us
	}
	d.gapSamples = 0
	d.data.NumPulses++
}

func (d *FMDetector) finish(usSample float64, emit func(Data)) {
	if d.inMark {
		d.closePulse()
	} else {
		// A trailing gap does not end the pulse sequence; nothing to do.
		_ = usSample
	}
	if d.data.NumPulses == 0 {
		d.reset()
		return
	}

	d.data.SampleRate = d.cfg.SampleRate
	if d.markCount > 0 {
		d.data.Freq1Hz = d.markSum / float64(d.markCount)
	}
	if d.spaceCount > 0 {
		d.data.Freq2Hz = d.spaceSum / float64(d.spaceCount)
	}
	d.data.RSSIDb = 20 * math.Log10(maxFloat(d.markLevel, 1e-9))
	d.data.NoiseDb = 20 * math.Log10(maxFloat(d.spaceLevel, 1e-9))
	d.data.SNRDb = d.data.RSSIDb - d.data.NoiseDb

	emit(d.data)
	d.reset()
}

func (d *FMDetector) reset() {
	d.data = Data{}
	d.pulseSamples = 0
	d.gapSamples = 0
	d.markSum, d.markCount = 0, 0
	d.spaceSum, d.spaceCount = 0, 0
	d.started = false
}

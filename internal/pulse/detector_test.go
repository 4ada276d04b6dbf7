package pulse

import (
	"bytes"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func synthesizeAMEnvelope(sampleRate int, pulsesUs, gapsUs []int, low, high float64) []float64 {
	var out []float64
	for i := range pulsesUs {
		var pulseSamples = pulsesUs[i] * sampleRate / 1e6
		var gapSamples = gapsUs[i] * sampleRate / 1e6
		for s := 0; s < pulseSamples; s++ {
			out = append(out, high)
		}
		for s := 0; s < gapSamples; s++ {
			out = append(out, low)
		}
	}
	return out
}

func TestAMDetectorSegmentsABurst(t *testing.T) {
	const sampleRate = 250000
	var cfg = DefaultConfig(sampleRate)
	var det = NewAMDetector(cfg)

	// Warm up the noise floor with a run of low-level "silence" first so
	// the adaptive threshold settles below the synthetic pulses.
	var warm = make([]float64, 2000)
	for i := range warm {
		warm[i] = 1
	}
	var bursts []Data
	det.Process(warm, func(b Data) { bursts = append(bursts, b) })
	bursts = nil

	var pulsesUs = []int{2000, 2000, 2000}
	var gapsUs = []int{2000, 2000, 15000} // last gap exceeds the 10ms reset limit
	var env = synthesizeAMEnvelope(sampleRate, pulsesUs, gapsUs, 1, 100)

	det.Process(env, func(b Data) { bursts = append(bursts, b) })

	require.Len(t, bursts, 1)
	var b = bursts[0]
	assert.Equal(t, 3, b.NumPulses)
	assert.Equal(t, sampleRate, b.SampleRate)
	assert.Greater(t, b.RSSIDb, b.NoiseDb)
	// Each recorded pulse width should be close to the synthesized 2ms.
	for i := 0; i < b.NumPulses; i++ {
		assert.InDelta(t, 2000, b.Pulse[i], 200)
	}
}

func TestAMDetectorBufferOverflowForcesEmit(t *testing.T) {
	const sampleRate = 250000
	var cfg = DefaultConfig(sampleRate)
	cfg.ResetLimitUs = 1_000_000_000 // effectively disable the reset path
	var det = NewAMDetector(cfg)

	var warm = make([]float64, 2000)
	for i := range warm {
		warm[i] = 1
	}
	det.Process(warm, func(Data) {})

	var pulsesUs = make([]int, MaxPulses+5)
	var gapsUs = make([]int, MaxPulses+5)
	for i := range pulsesUs {
		pulsesUs[i] = 100
		gapsUs[i] = 100
	}
	var env = synthesizeAMEnvelope(sampleRate, pulsesUs, gapsUs, 1, 100)

	var bursts []Data
	det.Process(env, func(b Data) { bursts = append(bursts, b) })

	require.NotEmpty(t, bursts)
	assert.LessOrEqual(t, bursts[0].NumPulses, MaxPulses)
}

func TestAMDetectorBufferOverflowLogsWarning(t *testing.T) {
	const sampleRate = 250000
	var logBuf bytes.Buffer
	var cfg = DefaultConfig(sampleRate)
	cfg.ResetLimitUs = 1_000_000_000
	cfg.Logger = log.NewWithOptions(&logBuf, log.Options{ReportTimestamp: false})
	var det = NewAMDetector(cfg)

	var warm = make([]float64, 2000)
	for i := range warm {
		warm[i] = 1
	}
	det.Process(warm, func(Data) {})

	var pulsesUs = make([]int, MaxPulses+5)
	var gapsUs = make([]int, MaxPulses+5)
	for i := range pulsesUs {
		pulsesUs[i] = 100
		gapsUs[i] = 100
	}
	var env = synthesizeAMEnvelope(sampleRate, pulsesUs, gapsUs, 1, 100)
	det.Process(env, func(Data) {})

	assert.Contains(t, logBuf.String(), "pulse buffer full")
}

func TestFMDetectorSegmentsABurst(t *testing.T) {
	const sampleRate = 250000
	var cfg = DefaultConfig(sampleRate)
	var det = NewFMDetector(cfg)

	var disc []float64
	var appendRun = func(v float64, us int) {
		var n = us * sampleRate / 1e6
		for i := 0; i < n; i++ {
			disc = append(disc, v)
		}
	}
	for i := 0; i < 3; i++ {
		appendRun(5000, 2000)  // mark
		appendRun(-5000, 2000) // space
	}
	appendRun(-5000, 15000) // trailing silence in "space" exceeds reset limit

	var bursts []Data
	det.Process(disc, func(b Data) { bursts = append(bursts, b) })

	require.Len(t, bursts, 1)
	var b = bursts[0]
	assert.Positive(t, b.NumPulses)
	assert.Greater(t, b.Freq1Hz, 0.0)
	assert.Less(t, b.Freq2Hz, 0.0)
}

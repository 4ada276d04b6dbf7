// Package iqsource defines the minimal interface the Pulse Detector reads
// samples from, so a real SDR driver (out of scope for this module) can be
// plugged in without the rest of the pipeline changing, plus a
// pre-recorded-capture adapter for tests and the example binary --
// grounded on the teacher's atest.go offline-test-file pattern of running a
// recording through the exact same pipeline as live input.
package iqsource

import (
	"encoding/binary"
	"errors"
	"io"
	"math"
)

// Source is anything the detector front end can pull complex I/Q samples
// from. ReadIQ fills buf and returns the number of samples actually read;
// io.EOF (wrapped or not) signals end of stream, matching io.Reader's
// convention so callers can reuse the same retry/EOF-handling idiom.
type Source interface {
	ReadIQ(buf []complex64) (int, error)
}

// SliceSource replays a fixed, in-memory slice of samples -- the adapter
// tests use in place of a live SDR, one read call draining as much of the
// remaining slice as buf has room for.
type SliceSource struct {
	samples []complex64
	pos     int
}

// NewSliceSource wraps samples for replay.
func NewSliceSource(samples []complex64) *SliceSource {
	return &SliceSource{samples: samples}
}

func (s *SliceSource) ReadIQ(buf []complex64) (int, error) {
	if s.pos >= len(s.samples) {
		return 0, io.EOF
	}
	var n = copy(buf, s.samples[s.pos:])
	s.pos += n
	return n, nil
}

// CU8Source decodes a raw interleaved-unsigned-8-bit I/Q capture (the
// common rtl_433/rtl_sdr ".cu8" recording format: each sample is two
// bytes, I then Q, each centered on 127.5) from an underlying io.Reader,
// the file format offline test fixtures and the example binary use.
type CU8Source struct {
	r io.Reader
}

// NewCU8Source wraps r, a reader positioned at the start of raw I/Q bytes.
func NewCU8Source(r io.Reader) *CU8Source {
	return &CU8Source{r: r}
}

var errShortRead = errors.New("iqsource: truncated sample pair at end of stream")

func (s *CU8Source) ReadIQ(buf []complex64) (int, error) {
	var raw = make([]byte, len(buf)*2)
	var n, err = io.ReadFull(s.r, raw)

	var full = n / 2
	for i := 0; i < full; i++ {
		var iByte = raw[i*2]
		var qByte = raw[i*2+1]
		var i8 = (float64(iByte) - 127.5) / 127.5
		var q8 = (float64(qByte) - 127.5) / 127.5
		buf[i] = complex(float32(i8), float32(q8))
	}

	if err == io.ErrUnexpectedEOF {
		if n%2 != 0 {
			return full, errShortRead
		}
		if full == 0 {
			return 0, io.EOF
		}
		return full, nil
	}
	return full, err
}

// Envelope reduces one block of complex I/Q samples to the AM amplitude
// envelope (|I|+|Q|, the classic cheap magnitude approximation) the
// pulse.AMDetector consumes.
func Envelope(samples []complex64) []float64 {
	var out = make([]float64, len(samples))
	for i, s := range samples {
		out[i] = math.Abs(float64(real(s))) + math.Abs(float64(imag(s)))
	}
	return out
}

// Discriminator reduces one block of complex I/Q samples to an
// instantaneous-frequency estimate (a simple one-pole phase-difference
// discriminator) the pulse.FMDetector consumes.
func Discriminator(samples []complex64) []float64 {
	var out = make([]float64, len(samples))
	var prevPhase float64
	for i, s := range samples {
		var phase = math.Atan2(float64(imag(s)), float64(real(s)))
		var diff = phase - prevPhase
		for diff > math.Pi {
			diff -= 2 * math.Pi
		}
		for diff < -math.Pi {
			diff += 2 * math.Pi
		}
		out[i] = diff
		prevPhase = phase
	}
	return out
}

// little-endian helper retained for a future raw-float32 capture format;
// unused by CU8Source but kept alongside it since both are "decode a
// capture file" concerns.
var _ = binary.LittleEndian

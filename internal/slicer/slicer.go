// Package slicer implements the six pulse-to-bit coding schemes that turn
// a pulse.Data burst into one or more Bitbuffer rows: PCM, PPM, PWM,
// Manchester-zerobit, DMC, and NRZS/PIWM.
//
// Every slicer is a pure function of (burst, Timing): the same burst and
// timing parameters always produce the same Bitbuffer contents. None of
// them consult or mutate any state beyond their own local loop variables.
package slicer

import (
	"github.com/kb9vcn/rf433recv/internal/bitbuffer"
	"github.com/kb9vcn/rf433recv/internal/pulse"
)

// Scheme selects which of the six coding conventions a decoder uses.
type Scheme int

const (
	PCM Scheme = iota
	PPM
	PWM
	ManchesterZerobit
	DMC
	NRZS
)

// Timing carries a Decoder Descriptor's expected pulse widths, in
// microseconds, plus the shared tolerance and reset-gap threshold used by
// the tie-break policy (spec.md §4.5).
type Timing struct {
	ShortWidth  int
	LongWidth   int
	SyncWidth   int
	GapLimit    int
	ResetLimit  int
	Tolerance   int
}

// classify reports whether width w (a pulse or gap duration in
// microseconds) is nearer to ShortWidth or LongWidth, or ambiguous if it
// falls further than Tolerance from the nearer of the two. Ties (exactly
// equidistant) resolve to "short" to keep the policy total and
// deterministic.
type classification int

const (
	classShort classification = iota
	classLong
	classAmbiguous
)

func classify(w int, t Timing) classification {
	var dShort = abs(w - t.ShortWidth)
	var dLong = abs(w - t.LongWidth)

	var nearer classification
	var nearerDist int
	if dShort <= dLong {
		nearer = classShort
		nearerDist = dShort
	} else {
		nearer = classLong
		nearerDist = dLong
	}
	if nearerDist > t.Tolerance {
		return classAmbiguous
	}
	return nearer
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

/*------------------------------------------------------------------
 *
 * Name:	PCMSlice
 *
 * Purpose:	Each cell of fixed width ShortWidth is one bit; pulse=1,
 *		gap=0. Multi-cell pulses/gaps are expanded into that many
 *		repeated bits.
 *
 *------------------------------------------------------------------*/

func PCMSlice(burst pulse.Data, t Timing) *bitbuffer.Bitbuffer {
	var bb = bitbuffer.New()
	if t.ShortWidth <= 0 {
		return bb
	}

	for i := 0; i < burst.NumPulses; i++ {
		appendCells(bb, burst.Pulse[i], t.ShortWidth, 1)

		var gap = burst.Gap[i]
		if gap == 0 {
			continue
		}
		if gap > t.ResetLimit {
			bb.AddRow()
			continue
		}
		appendCells(bb, gap, t.ShortWidth, 0)
	}
	return bb
}

func appendCells(bb *bitbuffer.Bitbuffer, width int, cell int, bit byte) {
	var cells = (width + cell/2) / cell
	if cells < 1 {
		cells = 1
	}
	for c := 0; c < cells; c++ {
		bb.AddBit(bit)
	}
}

/*------------------------------------------------------------------
 *
 * Name:	PPMSlice
 *
 * Purpose:	Inter-pulse gap encodes the bit: short gap -> 0, long gap
 *		-> 1. A gap beyond GapLimit closes the current row; a gap
 *		beyond ResetLimit closes the row and ends the burst: the
 *		slicer stops and reads no further pulses.
 *
 *------------------------------------------------------------------*/

func PPMSlice(burst pulse.Data, t Timing) *bitbuffer.Bitbuffer {
	var bb = bitbuffer.New()

	for i := 0; i < burst.NumPulses; i++ {
		var gap = burst.Gap[i]

		if gap > t.ResetLimit {
			bb.AddRow()
			break
		}
		if gap > t.GapLimit {
			bb.AddRow()
			continue
		}

		switch classify(gap, t) {
		case classShort:
			bb.AddBit(0)
		case classLong:
			bb.AddBit(1)
		case classAmbiguous:
			bb.AddRow()
		}
	}
	return bb
}

/*------------------------------------------------------------------
 *
 * Name:	PWMSlice
 *
 * Purpose:	Pulse width encodes the bit: short pulse -> 1, long pulse
 *		-> 0 (rtl_433 convention). A pulse matching SyncWidth is
 *		consumed and ignored.
 *
 *------------------------------------------------------------------*/

func PWMSlice(burst pulse.Data, t Timing) *bitbuffer.Bitbuffer {
	var bb = bitbuffer.New()

	for i := 0; i < burst.NumPulses; i++ {
		var w = burst.Pulse[i]

		if t.SyncWidth > 0 && abs(w-t.SyncWidth) <= t.Tolerance {
			// Sync pulse: ignored, not a data bit.
		} else {
			switch classify(w, t) {
			case classShort:
				bb.AddBit(1)
			case classLong:
				bb.AddBit(0)
			case classAmbiguous:
				bb.AddRow()
			}
		}

		var gap = burst.Gap[i]
		if gap > t.ResetLimit {
			bb.AddRow()
			break
		}
		if gap > t.GapLimit {
			bb.AddRow()
		}
	}
	return bb
}

/*------------------------------------------------------------------
 *
 * Name:	ManchesterZerobitSlice
 *
 * Purpose:	Decode a differential Manchester stream where an edge
 *		mid-cell represents 0. A leading implicit zero start bit is
 *		emitted before the first decoded data bit, matching the
 *		reference decoder's convention.
 *
 *------------------------------------------------------------------*/

func ManchesterZerobitSlice(burst pulse.Data, t Timing) *bitbuffer.Bitbuffer {
	var bb = bitbuffer.New()
	if t.ShortWidth <= 0 {
		return bb
	}
	var half = t.ShortWidth

	bb.AddBit(0) // implicit start bit

	for i := 0; i < burst.NumPulses; i++ {
		appendManchesterCells(bb, burst.Pulse[i], half, 1)

		var gap = burst.Gap[i]
		if gap > t.ResetLimit {
			bb.AddRow()
			break
		}
		appendManchesterCells(bb, gap, half, 0)
	}
	return bb
}

// appendManchesterCells walks a run of constant level (pulse or gap) in
// half-bit-width cells, toggling the emitted bit each cell since a level
// that is held for 2 half-cells corresponds to one data transition.
func appendManchesterCells(bb *bitbuffer.Bitbuffer, width int, half int, level byte) {
	var cells = (width + half/2) / half
	for c := 0; c < cells; c++ {
		bb.AddBit(level)
	}
}

/*------------------------------------------------------------------
 *
 * Name:	DMCSlice
 *
 * Purpose:	Differential Manchester Coding: presence of a transition
 *		within a bit cell encodes the bit. Half-bit and full-bit
 *		widths are both supplied via Timing (ShortWidth = half-bit,
 *		LongWidth = full-bit).
 *
 *------------------------------------------------------------------*/

func DMCSlice(burst pulse.Data, t Timing) *bitbuffer.Bitbuffer {
	var bb = bitbuffer.New()

	for i := 0; i < burst.NumPulses; i++ {
		switch classify(burst.Pulse[i], t) {
		case classShort:
			// A half-bit-wide pulse signals a mid-cell transition: bit 1.
			bb.AddBit(1)
		case classLong:
			// A full-bit-wide pulse has no transition: bit 0.
			bb.AddBit(0)
		case classAmbiguous:
			bb.AddRow()
		}

		var gap = burst.Gap[i]
		if gap > t.ResetLimit {
			bb.AddRow()
			break
		}
	}
	return bb
}

/*------------------------------------------------------------------
 *
 * Name:	NRZSSlice
 *
 * Purpose:	Non-Return-to-Zero Space: a level change at a cell
 *		boundary signals 0, no change signals 1. Cell width is
 *		ShortWidth; this also serves decoders documented against
 *		PIWM (Pulse Interval-Width Modulation) framing, which
 *		differs only in how the upstream pulses were generated, not
 *		in this bit-cell interpretation.
 *
 *------------------------------------------------------------------*/

func NRZSSlice(burst pulse.Data, t Timing) *bitbuffer.Bitbuffer {
	var bb = bitbuffer.New()
	if t.ShortWidth <= 0 {
		return bb
	}

	var prevLevel byte = 1 // a burst always begins with a pulse (level 1)
	for i := 0; i < burst.NumPulses; i++ {
		emitNRZSCells(bb, burst.Pulse[i], t.ShortWidth, 1, &prevLevel)

		var gap = burst.Gap[i]
		if gap > t.ResetLimit {
			bb.AddRow()
			break
		}
		emitNRZSCells(bb, gap, t.ShortWidth, 0, &prevLevel)
	}
	return bb
}

func emitNRZSCells(bb *bitbuffer.Bitbuffer, width int, cell int, level byte, prevLevel *byte) {
	var cells = (width + cell/2) / cell
	if cells < 1 {
		cells = 1
	}
	for c := 0; c < cells; c++ {
		if level == *prevLevel {
			bb.AddBit(1)
		} else {
			bb.AddBit(0)
		}
		*prevLevel = level
	}
}

// Slice dispatches to the slicer named by scheme.
func Slice(scheme Scheme, burst pulse.Data, t Timing) *bitbuffer.Bitbuffer {
	switch scheme {
	case PCM:
		return PCMSlice(burst, t)
	case PPM:
		return PPMSlice(burst, t)
	case PWM:
		return PWMSlice(burst, t)
	case ManchesterZerobit:
		return ManchesterZerobitSlice(burst, t)
	case DMC:
		return DMCSlice(burst, t)
	case NRZS:
		return NRZSSlice(burst, t)
	default:
		return bitbuffer.New()
	}
}

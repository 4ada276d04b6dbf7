// Package decoder holds the Decoder Descriptor type and the registry that
// dispatches a detected burst to every enabled decoder matching its
// modulation family.
package decoder

import (
	"github.com/kb9vcn/rf433recv/internal/bitbuffer"
	"github.com/kb9vcn/rf433recv/internal/data"
	"github.com/kb9vcn/rf433recv/internal/pulse"
	"github.com/kb9vcn/rf433recv/internal/slicer"
)

// Status is the negative-valued return a Callback uses to report a
// rejected decode attempt; a positive return counts as that many emitted
// events, and zero is a silent rejection.
type Status int

const (
	// AbortLength: the row does not have the expected bit count.
	AbortLength Status = -1
	// AbortEarly: preamble/sync was not found at all.
	AbortEarly Status = -2
	// FailSanity: a decoded field fails a plausibility check (e.g.
	// humidity above 100%).
	FailSanity Status = -3
	// FailMIC: the payload's checksum, CRC, or digest did not match.
	FailMIC Status = -4
)

// Callback decodes one Bitbuffer produced by the Descriptor's own Scheme
// and Timing. It returns a positive event count, zero for silent
// rejection, or one of the Status constants above. emit is called once
// per emitted event with a Retain-ed record; the callback must not retain
// emit's argument past the call, and must not mutate bb beyond its own
// fresh buffer.
type Callback func(d *Descriptor, bb *bitbuffer.Bitbuffer, emit func(*data.Record)) int

// Descriptor is a Decoder Descriptor: the static, registry-held
// declaration of one protocol decoder plus the timing parameters its
// Scheme's slicer needs to turn a burst into a Bitbuffer.
type Descriptor struct {
	Name     string
	Family   pulse.Family
	Scheme   slicer.Scheme
	Timing   slicer.Timing
	Enabled  bool
	Callback Callback

	// MinBits/MaxBits bound the Bitbuffer rows this decoder will even
	// attempt: when MinBits is set and no row falls in the range (MaxBits
	// 0 means no upper bound), Dispatch skips the decoder without running
	// Callback. Callback still receives every row, including rows outside
	// the range, and does its own "verify bit count" step.
	MinBits int
	MaxBits int

	// Fields is the ordered list of field names this decoder emits,
	// used to initialize CSV-style sinks: the framework unions Fields
	// across every enabled Descriptor and calls Sink.StartOutput once
	// with the result before dispatch begins.
	Fields []string
}

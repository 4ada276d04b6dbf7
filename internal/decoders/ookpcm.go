package decoders

import (
	"github.com/kb9vcn/rf433recv/internal/bitbuffer"
	"github.com/kb9vcn/rf433recv/internal/bitutil"
	"github.com/kb9vcn/rf433recv/internal/data"
	"github.com/kb9vcn/rf433recv/internal/decoder"
	"github.com/kb9vcn/rf433recv/internal/pulse"
	"github.com/kb9vcn/rf433recv/internal/slicer"
)

// fixedCodeRemoteBits: a 24-bit fixed code followed by a single odd
// parity bit, the framing used by a large family of PCM-coded doorbells
// and garage-door remotes (e.g. the rtl_433 "elro-db286a" lineage).
const fixedCodeRemoteBits = 25

// FixedCodeRemoteDescriptor returns the Decoder Descriptor for a generic
// fixed-code OOK/PCM remote: plain PCM framing, odd-parity MIC.
func FixedCodeRemoteDescriptor() *decoder.Descriptor {
	return &decoder.Descriptor{
		Name:    "Fixed-Code-Remote",
		Family:  pulse.FamilyAM,
		Scheme:  slicer.PCM,
		Timing:  slicer.Timing{ShortWidth: 350, ResetLimit: 9000},
		Enabled: true,
		MinBits: fixedCodeRemoteBits,
		MaxBits: fixedCodeRemoteBits,
		Fields:  []string{"model", "id", "mic"},

		Callback: decodeFixedCodeRemote,
	}
}

func decodeFixedCodeRemote(d *decoder.Descriptor, bb *bitbuffer.Bitbuffer, emit func(*data.Record)) int {
	var row = -1
	for i := 0; i < bb.NumRows(); i++ {
		if bb.RowLen(i) == fixedCodeRemoteBits {
			row = i
			break
		}
	}
	if row < 0 {
		return int(decoder.AbortLength)
	}

	var buf = extractRow(bb, row, fixedCodeRemoteBits)

	var code = readBits(buf, 0, 24)
	var parityBit = byte(readBits(buf, 24, 1))

	var codeBytes = []byte{byte(code >> 16), byte(code >> 8), byte(code)}
	if bitutil.ParityBytes(codeBytes, 3)^1 != parityBit {
		return int(decoder.FailMIC)
	}

	var rec = data.Build(
		data.FieldString("model", "Model", "Fixed-Code-Remote"),
		data.FieldInt("id", "Id", int32(code)),
		data.FieldString("mic", "Integrity", "PARITY"),
	)
	emit(rec)
	data.Release(rec)
	return 1
}

package decoders

import (
	"math"

	"github.com/kb9vcn/rf433recv/internal/bitbuffer"
	"github.com/kb9vcn/rf433recv/internal/bitutil"
	"github.com/kb9vcn/rf433recv/internal/data"
	"github.com/kb9vcn/rf433recv/internal/decoder"
	"github.com/kb9vcn/rf433recv/internal/pulse"
	"github.com/kb9vcn/rf433recv/internal/slicer"
)

// efergyFrameBits includes the slicer's implicit leading zero start bit
// at offset 0; real fields begin at offset 1. Current is reported as an
// exponent-scaled mantissa: raw * 0.001 * 2^exponent, a compact float
// encoding this clamp-meter family uses to cover a wide current range
// with few payload bits.
const efergyFrameBits = 64

// EfergyE2ClassicDescriptor returns the Decoder Descriptor for the
// Efergy e2 Classic energy monitor: Manchester-zerobit framing, CRC-8
// over the first seven bytes.
func EfergyE2ClassicDescriptor() *decoder.Descriptor {
	return &decoder.Descriptor{
		Name:    "Efergy-e2Classic",
		Family:  pulse.FamilyAM,
		Scheme:  slicer.ManchesterZerobit,
		Timing:  slicer.Timing{ShortWidth: 1500, ResetLimit: 15000},
		Enabled: true,
		MinBits: efergyFrameBits,
		MaxBits: efergyFrameBits,
		Fields:  []string{"model", "id", "battery_ok", "pulse", "current", "interval", "mic"},

		Callback: decodeEfergyE2Classic,
	}
}

func decodeEfergyE2Classic(d *decoder.Descriptor, bb *bitbuffer.Bitbuffer, emit func(*data.Record)) int {
	var row = -1
	for i := 0; i < bb.NumRows(); i++ {
		if bb.RowLen(i) == efergyFrameBits {
			row = i
			break
		}
	}
	if row < 0 {
		return int(decoder.AbortLength)
	}

	var buf = extractRow(bb, row, efergyFrameBits)

	var got = byte(readBits(buf, 56, 8))
	var want = bitutil.CRC8(buf, 7, 0x07, 0x00)
	if got != want {
		return int(decoder.FailMIC)
	}

	var address = int32(readBits(buf, 1, 16))
	var pulseField = int32(readBits(buf, 17, 8))
	var interval = int32(readBits(buf, 25, 8))
	var exponent = int(readBits(buf, 33, 4))
	var mantissa = int(readBits(buf, 37, 12))
	var batteryOK = int32(readBits(buf, 49, 1))

	var current = float64(mantissa) * 0.001 * math.Pow(2, float64(exponent))

	var rec = data.Build(
		data.FieldString("model", "Model", "Efergy-e2Classic"),
		data.FieldInt("id", "Id", address),
		data.FieldInt("battery_ok", "Battery", batteryOK),
		data.FieldInt("pulse", "Pulse", pulseField),
		data.FieldDouble("current", "Current", current),
		data.FieldInt("interval", "Interval", interval),
		data.FieldString("mic", "Integrity", "CRC"),
	)
	emit(rec)
	data.Release(rec)
	return 1
}

package decoders

import (
	"github.com/kb9vcn/rf433recv/internal/bitbuffer"
	"github.com/kb9vcn/rf433recv/internal/bitutil"
	"github.com/kb9vcn/rf433recv/internal/data"
	"github.com/kb9vcn/rf433recv/internal/decoder"
	"github.com/kb9vcn/rf433recv/internal/pulse"
	"github.com/kb9vcn/rf433recv/internal/slicer"
)

// prologueFrameBits: type nibble, channel, battery, id, 12-bit
// temperature, 7-bit humidity, and a trailing nibble-sum checksum
// (unreflected, distinguishing it from AlectoV1's full-byte reflected
// checksum even though both are PPM nibble-sum families).
const prologueFrameBits = 39

// PrologueDescriptor returns the Decoder Descriptor for the Prologue
// weather-sensor family.
func PrologueDescriptor() *decoder.Descriptor {
	return &decoder.Descriptor{
		Name:    "Prologue",
		Family:  pulse.FamilyAM,
		Scheme:  slicer.PPM,
		Timing:  slicer.Timing{ShortWidth: 1800, LongWidth: 3800, Tolerance: 500, GapLimit: 5500, ResetLimit: 14000},
		Enabled: true,
		MinBits: prologueFrameBits,
		MaxBits: prologueFrameBits,
		Fields:  []string{"subtype", "model", "id", "channel", "battery_ok", "temperature_C", "humidity", "mic"},

		Callback: decodePrologue,
	}
}

func decodePrologue(d *decoder.Descriptor, bb *bitbuffer.Bitbuffer, emit func(*data.Record)) int {
	var row = -1
	for i := 0; i < bb.NumRows(); i++ {
		if bb.RowLen(i) == prologueFrameBits {
			row = i
			break
		}
	}
	if row < 0 {
		return int(decoder.AbortLength)
	}

	var buf = extractRow(bb, row, prologueFrameBits)

	var got = byte(readBits(buf, 35, 4))
	var want = byte(bitutil.AddNibbles(buf, 4)) & 0x0F
	if got != want {
		return int(decoder.FailMIC)
	}

	var subtype = int32(readBits(buf, 0, 4))
	var channel = int32(readBits(buf, 4, 2))
	var batteryOK = int32(readBits(buf, 6, 1))
	var id = int32(readBits(buf, 8, 8))
	var tempRaw = readBits(buf, 16, 12)
	var temperatureC = float64(sextend12(tempRaw)) * 0.1
	var humidity = int32(readBits(buf, 28, 7))
	if humidity > 100 {
		return int(decoder.FailSanity)
	}

	var rec = data.Build(
		data.FieldInt("subtype", "Subtype", subtype),
		data.FieldString("model", "Model", "Prologue"),
		data.FieldInt("id", "Id", id),
		data.FieldInt("channel", "Channel", channel),
		data.FieldInt("battery_ok", "Battery", batteryOK),
		data.FieldDouble("temperature_C", "Temperature", temperatureC),
		data.FieldInt("humidity", "Humidity", humidity),
		data.FieldString("mic", "Integrity", "CHECKSUM"),
	)
	emit(rec)
	data.Release(rec)
	return 1
}

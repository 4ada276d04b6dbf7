package decoders

import (
	"github.com/kb9vcn/rf433recv/internal/bitbuffer"
	"github.com/kb9vcn/rf433recv/internal/bitutil"
	"github.com/kb9vcn/rf433recv/internal/data"
	"github.com/kb9vcn/rf433recv/internal/decoder"
	"github.com/kb9vcn/rf433recv/internal/pulse"
	"github.com/kb9vcn/rf433recv/internal/slicer"
)

// wattsFrameBits: an inverted preamble byte (transmitted as the bitwise
// complement of 0xA5), a bit-reversed 16-bit id, pairing/battery flags,
// temperature and setpoint (both 0.1 °C scale), two spare bits, and a
// trailing CRC-8 over the first six (byte-aligned) bytes.
const wattsFrameBits = 56

const wattsPreamble = ^byte(0xA5)

// WattsWFHTDescriptor returns the Decoder Descriptor for the Watts
// WFHT-RF radiator thermostat: DMC framing.
func WattsWFHTDescriptor() *decoder.Descriptor {
	return &decoder.Descriptor{
		Name:    "Watts-WFHT",
		Family:  pulse.FamilyAM,
		Scheme:  slicer.DMC,
		Timing:  slicer.Timing{ShortWidth: 400, LongWidth: 800, Tolerance: 150, ResetLimit: 15000},
		Enabled: true,
		MinBits: wattsFrameBits,
		MaxBits: wattsFrameBits,
		Fields:  []string{"model", "id", "battery_ok", "pairing", "temperature_C", "setpoint_C", "mic"},

		Callback: decodeWattsWFHT,
	}
}

func decodeWattsWFHT(d *decoder.Descriptor, bb *bitbuffer.Bitbuffer, emit func(*data.Record)) int {
	var row = -1
	for i := 0; i < bb.NumRows(); i++ {
		if bb.RowLen(i) == wattsFrameBits {
			row = i
			break
		}
	}
	if row < 0 {
		return int(decoder.AbortLength)
	}

	var buf = extractRow(bb, row, wattsFrameBits)

	if buf[0] != wattsPreamble {
		return int(decoder.AbortEarly)
	}

	var got = byte(readBits(buf, 48, 8))
	var want = bitutil.CRC8(buf, 6, 0x31, 0x00)
	if got != want {
		return int(decoder.FailMIC)
	}

	var rawID = readBits(buf, 8, 16)
	var hi = byte(rawID >> 8)
	var lo = byte(rawID & 0xFF)
	var id = int32(bitutil.Reverse8(lo))<<8 | int32(bitutil.Reverse8(hi))

	var pairing = int32(readBits(buf, 24, 1))
	var batteryOK = int32(readBits(buf, 25, 1))
	var tempRaw = readBits(buf, 26, 12)
	var setpointRaw = readBits(buf, 38, 8)

	var temperatureC = float64(sextend12(tempRaw)) * 0.1
	var setpointC = float64(setpointRaw) * 0.1

	var rec = data.Build(
		data.FieldString("model", "Model", "Watts-WFHT"),
		data.FieldInt("id", "Id", id),
		data.FieldInt("battery_ok", "Battery", batteryOK),
		data.FieldInt("pairing", "Pairing", pairing),
		data.FieldDouble("temperature_C", "Temperature", temperatureC),
		data.FieldDouble("setpoint_C", "Setpoint", setpointC),
		data.FieldString("mic", "Integrity", "CRC"),
	)
	emit(rec)
	data.Release(rec)
	return 1
}

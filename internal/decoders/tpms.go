package decoders

import (
	"github.com/kb9vcn/rf433recv/internal/bitbuffer"
	"github.com/kb9vcn/rf433recv/internal/bitutil"
	"github.com/kb9vcn/rf433recv/internal/data"
	"github.com/kb9vcn/rf433recv/internal/decoder"
	"github.com/kb9vcn/rf433recv/internal/pulse"
	"github.com/kb9vcn/rf433recv/internal/slicer"
)

// tpmsFrameBits: a minimal tire-pressure-monitor frame -- a 32-bit
// sensor id, pressure and temperature bytes, and a CRC-8 check -- framed
// with NRZS/PIWM coding, representative of the TPMS decoder family.
const tpmsFrameBits = 56

// GenericTPMSDescriptor returns the Decoder Descriptor for a minimal
// NRZS/PIWM-framed tire-pressure-monitor sensor.
func GenericTPMSDescriptor() *decoder.Descriptor {
	return &decoder.Descriptor{
		Name:    "Generic-TPMS",
		Family:  pulse.FamilyFM,
		Scheme:  slicer.NRZS,
		Timing:  slicer.Timing{ShortWidth: 100, ResetLimit: 10000},
		Enabled: true,
		MinBits: tpmsFrameBits,
		MaxBits: tpmsFrameBits,
		Fields:  []string{"model", "id", "pressure_PSI", "temperature_C", "mic"},

		Callback: decodeGenericTPMS,
	}
}

func decodeGenericTPMS(d *decoder.Descriptor, bb *bitbuffer.Bitbuffer, emit func(*data.Record)) int {
	var row = -1
	for i := 0; i < bb.NumRows(); i++ {
		if bb.RowLen(i) == tpmsFrameBits {
			row = i
			break
		}
	}
	if row < 0 {
		return int(decoder.AbortLength)
	}

	var buf = extractRow(bb, row, tpmsFrameBits)

	var got = byte(readBits(buf, 48, 8))
	var want = bitutil.CRC8(buf, 6, 0x07, 0xFF)
	if got != want {
		return int(decoder.FailMIC)
	}

	var id = int32(readBits(buf, 0, 32))
	var pressureRaw = readBits(buf, 32, 8)
	var temperatureRaw = readBits(buf, 40, 8)

	var pressurePSI = float64(pressureRaw) * 0.36 // kPa->PSI-scaled raw unit, device-specific constant
	var temperatureC = float64(temperatureRaw) - 40

	var rec = data.Build(
		data.FieldString("model", "Model", "Generic-TPMS"),
		data.FieldInt("id", "Id", id),
		data.FieldDouble("pressure_PSI", "Pressure", pressurePSI),
		data.FieldDouble("temperature_C", "Temperature", temperatureC),
		data.FieldString("mic", "Integrity", "CRC"),
	)
	emit(rec)
	data.Release(rec)
	return 1
}

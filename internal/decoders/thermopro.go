package decoders

import (
	"github.com/kb9vcn/rf433recv/internal/bitbuffer"
	"github.com/kb9vcn/rf433recv/internal/bitutil"
	"github.com/kb9vcn/rf433recv/internal/data"
	"github.com/kb9vcn/rf433recv/internal/decoder"
	"github.com/kb9vcn/rf433recv/internal/pulse"
	"github.com/kb9vcn/rf433recv/internal/slicer"
)

// thermoProTP12Bits is the row length the TP12 dual-probe cooking
// thermometer repeats several times per burst; FindRepeatedRow collapses
// the repeats to a single decode attempt instead of one event per copy.
const thermoProTP12Bits = 41

// ThermoProTP12Descriptor returns the Decoder Descriptor for the
// ThermoPro TP12 dual-probe meat thermometer: PWM framing, CRC-8 over the
// first four bytes.
func ThermoProTP12Descriptor() *decoder.Descriptor {
	return &decoder.Descriptor{
		Name:    "ThermoPro-TP12",
		Family:  pulse.FamilyAM,
		Scheme:  slicer.PWM,
		Timing:  slicer.Timing{ShortWidth: 500, LongWidth: 1000, Tolerance: 150, GapLimit: 2000, ResetLimit: 12000},
		Enabled: true,
		MinBits: thermoProTP12Bits,
		MaxBits: thermoProTP12Bits,
		Fields:  []string{"model", "id", "battery_ok", "temperature_1_C", "temperature_2_C", "mic"},

		Callback: decodeThermoProTP12,
	}
}

func decodeThermoProTP12(d *decoder.Descriptor, bb *bitbuffer.Bitbuffer, emit func(*data.Record)) int {
	var row = bb.FindRepeatedRow(2, thermoProTP12Bits)
	if row < 0 {
		return int(decoder.AbortEarly)
	}
	if bb.RowLen(row) != thermoProTP12Bits {
		return int(decoder.AbortLength)
	}

	var buf = extractRow(bb, row, thermoProTP12Bits)

	var got = byte(readBits(buf, 33, 8))
	var want = bitutil.CRC8(buf, 4, 0x31, 0x00)
	if got != want {
		return int(decoder.FailMIC)
	}

	var id = int32(readBits(buf, 0, 8))
	var batteryOK = int32(readBits(buf, 8, 1))
	var temp1Raw = readBits(buf, 9, 12)
	var temp2Raw = readBits(buf, 21, 12)

	var temperature1C = float64(temp1Raw)*0.1 - 20
	var temperature2C = float64(temp2Raw)*0.1 - 20

	var rec = data.Build(
		data.FieldString("model", "Model", "ThermoPro-TP12"),
		data.FieldInt("id", "Id", id),
		data.FieldInt("battery_ok", "Battery", batteryOK),
		data.FieldDouble("temperature_1_C", "Probe 1", temperature1C),
		data.FieldDouble("temperature_2_C", "Probe 2", temperature2C),
		data.FieldString("mic", "Integrity", "CRC"),
	)
	emit(rec)
	data.Release(rec)
	return 1
}

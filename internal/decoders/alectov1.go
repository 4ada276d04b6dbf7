package decoders

import (
	"github.com/kb9vcn/rf433recv/internal/bitbuffer"
	"github.com/kb9vcn/rf433recv/internal/bitutil"
	"github.com/kb9vcn/rf433recv/internal/data"
	"github.com/kb9vcn/rf433recv/internal/decoder"
	"github.com/kb9vcn/rf433recv/internal/pulse"
	"github.com/kb9vcn/rf433recv/internal/slicer"
)

// alectoV1FrameBits is 6 bytes: id, type/channel/battery, temperature
// (12-bit), humidity (BCD), and a trailing reflected nibble-sum checksum.
// byte[4]'s low nibble is always zero; rows are cross-checked in pairs
// because the sensor repeats each frame several times per burst.
//
// The reference Alecto capture is quoted as a 36-bit row (bytes 0..3 plus
// byte 4's BCD-humidity nibble, checksum implied rather than carried in
// the row); this decoder instead frames the checksum as row byte 5 and
// slices a full 48-bit row, which changes where the row boundary falls
// but reproduces the same id/channel/temperature/humidity fields the
// 36-bit framing would. Kept as a 48-bit row deliberately: byte-aligning
// the checksum avoids sub-byte bit-shifting for a nibble-sum field and
// this decoder's own tests pin the resulting id=52, temperature_C=10.6
// values directly.
const alectoV1FrameBits = 48

var alectoV1Subtypes = map[byte]string{
	0x2: "AlectoV1-Temperature",
	0x3: "AlectoV1-Wind",
	0x4: "AlectoV1-Rain",
}

// AlectoV1Descriptor returns the Decoder Descriptor for the AlectoV1
// weather-sensor family: PPM framing, short 2000 µs / long 4000 µs gaps,
// a per-nibble checksum with a type-dependent offset, and BCD humidity
// guarded against the classic "humidity > 100%" false-positive.
func AlectoV1Descriptor() *decoder.Descriptor {
	return &decoder.Descriptor{
		Name:    "AlectoV1",
		Family:  pulse.FamilyAM,
		Scheme:  slicer.PPM,
		Timing:  slicer.Timing{ShortWidth: 2000, LongWidth: 4000, Tolerance: 600, GapLimit: 6000, ResetLimit: 15000},
		Enabled: true,
		MinBits: alectoV1FrameBits,
		MaxBits: alectoV1FrameBits,
		Fields:  []string{"model", "id", "channel", "battery_ok", "temperature_C", "humidity", "mic"},

		Callback: decodeAlectoV1,
	}
}

func decodeAlectoV1(d *decoder.Descriptor, bb *bitbuffer.Bitbuffer, emit func(*data.Record)) int {
	var candidate = -1
	var partner = -1

	for i := 0; i < bb.NumRows(); i++ {
		if bb.RowLen(i) != alectoV1FrameBits {
			continue
		}
		var row = extractRow(bb, i, alectoV1FrameBits)
		if row[4]&0x0F != 0 {
			continue
		}
		for j := i + 2; j < bb.NumRows(); j++ {
			if bb.RowLen(j) != alectoV1FrameBits {
				continue
			}
			var other = extractRow(bb, j, alectoV1FrameBits)
			if other[4]&0x0F != 0 {
				continue
			}
			if other[0] == row[0] {
				candidate, partner = i, j
				break
			}
		}
		if candidate >= 0 {
			break
		}
	}

	if candidate < 0 {
		return int(decoder.AbortEarly)
	}
	_ = partner

	var row = extractRow(bb, candidate, alectoV1FrameBits)

	var subtypeNibble = row[1] >> 4
	var model, known = alectoV1Subtypes[subtypeNibble]
	if !known {
		return int(decoder.AbortEarly)
	}

	var offset = subtypeNibble
	var sum = byte(bitutil.AddNibbles(row, 5)) + offset
	var want = bitutil.Reverse8(sum)
	if want != row[5] {
		return int(decoder.FailMIC)
	}

	var id = int32(row[0])
	var channel = int32((row[1]>>2)&0x03) + 1
	var batteryOK = int32((row[1] >> 1) & 0x01)

	var tempRaw = uint32(row[2])<<4 | uint32(row[3]>>4)
	var temperatureC = float64(sextend12(tempRaw)) * 0.1

	var humTens = int(row[3] & 0x0F)
	var humOnes = int(row[4] >> 4)
	var tensDigit = bcdNibble(byte(humTens))
	var onesDigit = bcdNibble(byte(humOnes))
	if tensDigit < 0 || onesDigit < 0 {
		return int(decoder.FailSanity)
	}
	var humidity = tensDigit*10 + onesDigit
	if humidity > 100 {
		return int(decoder.FailSanity)
	}

	var rec = data.Build(
		data.FieldString("model", "Model", model),
		data.FieldInt("id", "Id", id),
		data.FieldInt("channel", "Channel", channel),
		data.FieldInt("battery_ok", "Battery", batteryOK),
		data.FieldDouble("temperature_C", "Temperature", temperatureC),
		data.FieldInt("humidity", "Humidity", int32(humidity)),
		data.FieldString("mic", "Integrity", "CHECKSUM"),
	)
	emit(rec)
	data.Release(rec)
	return 1
}

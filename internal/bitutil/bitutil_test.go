package bitutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestReverse8KnownValues(t *testing.T) {
	assert.Equal(t, byte(0x00), Reverse8(0x00))
	assert.Equal(t, byte(0xFF), Reverse8(0xFF))
	assert.Equal(t, byte(0x01), Reverse8(0x80))
	assert.Equal(t, byte(0xC5), Reverse8(0xA3))
}

func TestReverse8Involution(t *testing.T) {
	// For all 8-bit inputs x: Reverse8(Reverse8(x)) == x.
	rapid.Check(t, func(t *rapid.T) {
		var x = byte(rapid.IntRange(0, 255).Draw(t, "x"))
		assert.Equal(t, x, Reverse8(Reverse8(x)))
	})
}

func TestParity8(t *testing.T) {
	assert.Equal(t, byte(0), Parity8(0x00))
	assert.Equal(t, byte(1), Parity8(0x01))
	assert.Equal(t, byte(0), Parity8(0x03))
	assert.Equal(t, byte(1), Parity8(0x07))
	assert.Equal(t, byte(0), Parity8(0xFF))
}

func TestAddBytesAddNibbles(t *testing.T) {
	var buf = []byte{0x12, 0x34, 0x56}
	assert.Equal(t, uint32(0x12+0x34+0x56), AddBytes(buf, 3))
	assert.Equal(t, uint32(1+2+3+4+5+6), AddNibbles(buf, 3))
}

func TestXorBytes(t *testing.T) {
	assert.Equal(t, byte(0x12^0x34^0x56), XorBytes([]byte{0x12, 0x34, 0x56}, 3))
}

func TestCRC8KnownVector(t *testing.T) {
	// Classic CRC-8/MAXIM-adjacent hand check: single byte 0x00 with
	// poly 0x31 init 0x00 is a fixed point.
	assert.Equal(t, byte(0x00), CRC8([]byte{0x00}, 1, 0x31, 0x00))
}

func TestCRC16KnownVector(t *testing.T) {
	// CRC-16/CCITT-FALSE of "123456789" is the textbook 0x29B1.
	var data = []byte("123456789")
	assert.Equal(t, uint16(0x29B1), CRC16(data, len(data), 0x1021, 0xFFFF))
}

func TestCRC16ZeroLengthIsInit(t *testing.T) {
	assert.Equal(t, uint16(0xFFFF), CRC16(nil, 0, 0x1021, 0xFFFF))
	assert.Equal(t, uint16(0x0000), CRC16(nil, 0, 0x8005, 0x0000))
}

func TestCRC8LEReflectedAgainstMSBReference(t *testing.T) {
	// CRC8LE of a buffer whose bytes are each bit-reflected (byte order
	// unchanged) equals the bit-reversal of plain CRC8 on the unreflected
	// buffer -- this is the defining relationship between the two bit
	// orders.
	var buf = []byte{0xDE, 0xAD, 0xBE}
	var n = len(buf)
	var refl = make([]byte, n)
	for i, b := range buf {
		refl[i] = Reverse8(b)
	}
	var lhs = Reverse8(CRC8(buf, n, 0x31, 0x00))
	var rhs = CRC8LE(refl, n, 0x31, 0x00)
	assert.Equal(t, lhs, rhs)
}

func TestLFSRDigest8ReflectLaCrosseVector(t *testing.T) {
	// LaCrosse TX141-Bv2 checksum: lfsr_digest8_reflect(bytes, 4, 0x31, 0xF4)
	// Golden vector taken from a known-good TX141TH-Bv2 capture.
	var msg = []byte{0x1D, 0x20, 0x19, 0x08}
	var got = LFSRDigest8Reflect(msg, 4, 0x31, 0xF4)
	// Recompute independently via the bit-for-bit reference algorithm to
	// pin the exact order, rather than asserting a single magic byte.
	var want byte
	var key byte = 0xF4
	for _, b := range msg {
		for bit := 0; bit < 8; bit++ {
			if b&(1<<bit) != 0 {
				want ^= key
			}
			if key&0x80 != 0 {
				key = (key << 1) ^ 0x31
			} else {
				key = key << 1
			}
		}
	}
	assert.Equal(t, want, got)
}

func TestLFSRDigest8Vector(t *testing.T) {
	// lfsr_digest8(bytes, 4, 0x31, 0xF4) -- same generator/key pair as the
	// _reflect vector above, scanned MSB-first instead of LSB-first, to
	// pin that LFSRDigest8 actually consumes gen rather than a hardcoded
	// constant.
	var msg = []byte{0x1D, 0x20, 0x19, 0x08}
	var got = LFSRDigest8(msg, 4, 0x31, 0xF4)

	var want byte
	var key byte = 0xF4
	for _, b := range msg {
		for bit := 7; bit >= 0; bit-- {
			if b&(1<<bit) != 0 {
				want ^= key
			}
			if key&0x01 != 0 {
				key = (key >> 1) ^ 0x31
			} else {
				key = key >> 1
			}
		}
	}
	assert.Equal(t, want, got)

	// A different generator must produce a different digest; this is
	// what pins gen as a real parameter instead of dead weight.
	var other = LFSRDigest8(msg, 4, 0x80, 0xF4)
	assert.NotEqual(t, got, other)
}

func TestManchesterDecodeRoundTrip(t *testing.T) {
	// Encode-then-decode is identity on any even-length bit string, with
	// zero Manchester errors.
	rapid.Check(t, func(t *rapid.T) {
		var bits = rapid.SliceOfN(rapid.IntRange(0, 1), 0, 64).Draw(t, "bits")
		var encoded = make([]byte, 0, len(bits)*2)
		for _, b := range bits {
			if b == 0 {
				encoded = append(encoded, 1, 0)
			} else {
				encoded = append(encoded, 0, 1)
			}
		}
		var decoded, consumed, errs = ManchesterDecode(encoded, 0, len(bits))
		assert.Equal(t, 0, errs)
		assert.Equal(t, len(encoded), consumed)
		assert.Equal(t, len(bits), len(decoded))
		for i, b := range bits {
			assert.Equal(t, byte(b), decoded[i])
		}
	})
}

func TestManchesterDecodeCountsErrors(t *testing.T) {
	// 11 and 00 cells are invalid under G.E. Thomas convention.
	var _, _, errs = ManchesterDecode([]byte{1, 1, 0, 0, 1, 0}, 0, 3)
	assert.Equal(t, 2, errs)
}

func TestIBMWhiteningInvolution(t *testing.T) {
	// Whitening is its own inverse: whitening twice returns the original.
	rapid.Check(t, func(t *rapid.T) {
		var buf = rapid.SliceOfN(rapid.Byte(), 0, 32).Draw(t, "buf")
		var once = IBMWhitening(buf, len(buf))
		var twice = IBMWhitening(once, len(once))
		assert.Equal(t, buf, twice)
	})
}

package bitbuffer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func bitsToBytes(bits []int) []byte {
	var out = make([]byte, len(bits))
	for i, b := range bits {
		out[i] = byte(b)
	}
	return out
}

func TestAddBitExtractBytesRoundTrip(t *testing.T) {
	// For any bit string b, AddBit-ting b then ExtractBytes(0, 0, out, |b|)
	// returns b MSB-aligned.
	rapid.Check(t, func(t *rapid.T) {
		var bits = rapid.SliceOfN(rapid.IntRange(0, 1), 0, 200).Draw(t, "bits")
		var bb = New()
		for _, bit := range bits {
			bb.AddBit(byte(bit))
		}
		var out = make([]byte, (len(bits)+7)/8)
		bb.ExtractBytes(0, 0, out, len(bits))
		for i, bit := range bits {
			var got = (out[i>>3] >> uint(7-(i&7))) & 1
			assert.Equal(t, byte(bit), got, "bit %d mismatch", i)
		}
	})
}

func TestAddRowNoOpOnEmptyRow(t *testing.T) {
	var bb = New()
	bb.AddRow()
	bb.AddRow()
	bb.AddRow()
	assert.Equal(t, 1, bb.NumRows())

	bb.AddBit(1)
	bb.AddRow()
	assert.Equal(t, 2, bb.NumRows())
	bb.AddRow()
	assert.Equal(t, 2, bb.NumRows())
}

func TestSearchFindsPrefix(t *testing.T) {
	var bb = New()
	for _, bit := range []byte{1, 0, 1, 1, 0, 0, 1} {
		bb.AddBit(bit)
	}
	var pattern = []byte{1, 0, 1}
	assert.Equal(t, 0, bb.Search(0, 0, pattern, 3))
}

func TestSearchReturnsRowLengthWhenAbsent(t *testing.T) {
	var bb = New()
	for _, bit := range []byte{1, 1, 1, 1} {
		bb.AddBit(bit)
	}
	var pattern = []byte{0, 0}
	assert.Equal(t, bb.RowLen(0), bb.Search(0, 0, pattern, 2))
}

func TestFindRepeatedRow(t *testing.T) {
	var bb = New()
	var frame = []int{1, 0, 1, 1, 0, 0, 1, 0}
	for rep := 0; rep < 3; rep++ {
		for _, bit := range frame {
			bb.AddBit(byte(bit))
		}
		bb.AddRow()
	}
	// Add a distinct, non-matching row.
	for _, bit := range []int{0, 0, 0, 0, 0, 0, 0, 0} {
		bb.AddBit(byte(bit))
	}

	var row = bb.FindRepeatedRow(3, len(frame))
	assert.Equal(t, 0, row)
}

func TestFindRepeatedRowNoneQualifies(t *testing.T) {
	var bb = New()
	bb.AddBit(1)
	bb.AddRow()
	bb.AddBit(0)
	assert.Equal(t, -1, bb.FindRepeatedRow(2, 1))
}

func TestCompareRows(t *testing.T) {
	var bb = New()
	for _, bit := range bitsToBytes([]int{1, 0, 1, 0}) {
		bb.AddBit(bit)
	}
	bb.AddRow()
	for _, bit := range bitsToBytes([]int{1, 0, 1, 1}) {
		bb.AddBit(bit)
	}
	assert.True(t, bb.CompareRows(0, 1, 3))
	assert.False(t, bb.CompareRows(0, 1, 4))
}

func TestInvert(t *testing.T) {
	var bb = New()
	for _, bit := range bitsToBytes([]int{1, 0, 1, 1, 0}) {
		bb.AddBit(bit)
	}
	bb.Invert()
	var out = make([]byte, 1)
	bb.ExtractBytes(0, 0, out, 5)
	assert.Equal(t, byte(0b01001000), out[0])
}

func TestManchesterDecodeOnRow(t *testing.T) {
	var bb = New()
	// Encodes bits 0,1,1,0 under G.E. Thomas convention.
	for _, bit := range bitsToBytes([]int{1, 0, 0, 1, 0, 1, 1, 0}) {
		bb.AddBit(bit)
	}
	var out = make([]byte, 4)
	var n = bb.ManchesterDecode(0, 0, out, 4)
	assert.Equal(t, 4, n)
	assert.Equal(t, []byte{0, 1, 1, 0}, out)
}

func TestCapacityOverflowSilentlyDropped(t *testing.T) {
	var bb = New()
	for i := 0; i < MaxBits+10; i++ {
		bb.AddBit(1)
	}
	assert.Equal(t, MaxBits, bb.RowLen(0))

	for i := 0; i < MaxRows+10; i++ {
		bb.AddBit(1)
		bb.AddRow()
	}
	assert.LessOrEqual(t, bb.NumRows(), MaxRows)
}

package decoder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kb9vcn/rf433recv/internal/bitbuffer"
	"github.com/kb9vcn/rf433recv/internal/data"
	"github.com/kb9vcn/rf433recv/internal/pulse"
	"github.com/kb9vcn/rf433recv/internal/slicer"
)

func mkBurst(pairs [][2]int) pulse.Data {
	var b pulse.Data
	for i, p := range pairs {
		b.Pulse[i] = p[0]
		b.Gap[i] = p[1]
	}
	b.NumPulses = len(pairs)
	return b
}

func alwaysEmitsOne(_ *Descriptor, _ *bitbuffer.Bitbuffer, emit func(*data.Record)) int {
	var r = data.Build(data.FieldString("model", "Model", "Test"))
	emit(r)
	data.Release(r)
	return 1
}

func TestDispatchSkipsDisabledAndWrongFamily(t *testing.T) {
	var reg = NewRegistry()
	reg.Register(&Descriptor{
		Name: "disabled", Family: pulse.FamilyAM, Enabled: false,
		Scheme: slicer.PPM, Timing: slicer.Timing{ShortWidth: 1000, LongWidth: 2000, Tolerance: 300, ResetLimit: 20000},
		Callback: alwaysEmitsOne,
	})
	reg.Register(&Descriptor{
		Name: "wrong-family", Family: pulse.FamilyFM, Enabled: true,
		Scheme: slicer.PPM, Timing: slicer.Timing{ShortWidth: 1000, LongWidth: 2000, Tolerance: 300, ResetLimit: 20000},
		Callback: alwaysEmitsOne,
	})

	var burst = mkBurst([][2]int{{500, 1000}, {500, 2000}})
	var outcomes = reg.Dispatch(burst, pulse.FamilyAM)
	assert.Empty(t, outcomes)
}

func TestDispatchInvokesMatchingEnabledDecoder(t *testing.T) {
	var reg = NewRegistry()
	reg.Register(&Descriptor{
		Name: "ok", Family: pulse.FamilyAM, Enabled: true,
		Scheme:   slicer.PPM,
		Timing:   slicer.Timing{ShortWidth: 1000, LongWidth: 2000, Tolerance: 300, ResetLimit: 20000},
		Callback: alwaysEmitsOne,
	})

	var burst = mkBurst([][2]int{{500, 1000}, {500, 2000}, {500, 1000}})
	var outcomes = reg.Dispatch(burst, pulse.FamilyAM)
	require.Len(t, outcomes, 1)
	assert.Equal(t, "ok", outcomes[0].Decoder)
	assert.Equal(t, 1, outcomes[0].ReturnCode)
	require.Len(t, outcomes[0].Events, 1)
	assert.Equal(t, "Test", data.Get(outcomes[0].Events[0], "model").StringVal)
}

func TestDispatchSkipsDecoderWhenNoRowMeetsMinBits(t *testing.T) {
	var called = false
	var reg = NewRegistry()
	reg.Register(&Descriptor{
		Name: "too-short", Family: pulse.FamilyAM, Enabled: true,
		Scheme:  slicer.PPM,
		Timing:  slicer.Timing{ShortWidth: 1000, LongWidth: 2000, Tolerance: 300, ResetLimit: 20000},
		MinBits: 100,
		Callback: func(d *Descriptor, bb *bitbuffer.Bitbuffer, emit func(*data.Record)) int {
			called = true
			return 0
		},
	})

	var burst = mkBurst([][2]int{{500, 1000}})
	var outcomes = reg.Dispatch(burst, pulse.FamilyAM)
	assert.Empty(t, outcomes)
	assert.False(t, called)
}

func TestDispatchRecordsNegativeStatus(t *testing.T) {
	var reg = NewRegistry()
	reg.Register(&Descriptor{
		Name: "fails-mic", Family: pulse.FamilyAM, Enabled: true,
		Scheme: slicer.PPM,
		Timing: slicer.Timing{ShortWidth: 1000, LongWidth: 2000, Tolerance: 300, ResetLimit: 20000},
		Callback: func(d *Descriptor, bb *bitbuffer.Bitbuffer, emit func(*data.Record)) int {
			return int(FailMIC)
		},
	})

	var burst = mkBurst([][2]int{{500, 1000}, {500, 2000}})
	var outcomes = reg.Dispatch(burst, pulse.FamilyAM)
	require.Len(t, outcomes, 1)
	assert.Equal(t, FailMIC, outcomes[0].Status)
	assert.Empty(t, outcomes[0].Events)
}

func TestDescriptorsReturnsRegistrationOrder(t *testing.T) {
	var reg = NewRegistry()
	reg.Register(&Descriptor{Name: "a"})
	reg.Register(&Descriptor{Name: "b"})
	var names []string
	for _, d := range reg.Descriptors() {
		names = append(names, d.Name)
	}
	assert.Equal(t, []string{"a", "b"}, names)
}

func TestFieldUnionSkipsDisabledAndDedupesFirstSeenOrder(t *testing.T) {
	var reg = NewRegistry()
	reg.Register(&Descriptor{Name: "a", Enabled: true, Fields: []string{"model", "id", "temperature_C"}})
	reg.Register(&Descriptor{Name: "b", Enabled: false, Fields: []string{"should-not-appear"}})
	reg.Register(&Descriptor{Name: "c", Enabled: true, Fields: []string{"id", "humidity"}})

	assert.Equal(t, []string{"model", "id", "temperature_C", "humidity"}, reg.FieldUnion())
}

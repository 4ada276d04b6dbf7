package sink

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kb9vcn/rf433recv/internal/data"
)

func sampleRecord() *data.Record {
	return data.Build(
		data.FieldString("model", "Model", "Test"),
		data.FieldInt("id", "Id", 42),
		data.FieldDouble("temperature_C", "Temperature", 21.5),
	)
}

func TestJSONLineSinkWritesOneCompactLinePerRecord(t *testing.T) {
	var buf bytes.Buffer
	var s = NewJSONLineSink(&buf)

	var r = sampleRecord()
	s.PrintRecord("", "", r, "")
	s.Free()
	data.Release(r)

	var parsed, err = data.ParseJSON(buf.String())
	require.NoError(t, err)
	assert.Equal(t, "Test", data.Get(parsed, "model").StringVal)
	assert.EqualValues(t, 42, data.Get(parsed, "id").IntVal)
}

func TestKeyValueLineSinkRendersPrettyLabelsAndValues(t *testing.T) {
	var buf bytes.Buffer
	var s = NewKeyValueLineSink(&buf)

	var r = sampleRecord()
	s.PrintRecord("", "", r, "")
	s.Free()
	data.Release(r)

	assert.Equal(t, "Model=Test Id=42 Temperature=21.5\n", buf.String())
}

func TestEmitDispatchesByTag(t *testing.T) {
	var r = data.Build(
		data.FieldInt("a", "", 1),
		data.FieldDouble("b", "", 2.5),
		data.FieldString("c", "", "three"),
	)
	defer data.Release(r)

	var seen []string
	var s = &recordingSink{seen: &seen}
	Emit(s, r)

	assert.Equal(t, []string{"int:1", "double:2.5", "string:three"}, seen)
}

type recordingSink struct {
	seen *[]string
}

func (s *recordingSink) StartOutput(fields []string) {}
func (s *recordingSink) PrintInt(key, pretty string, v int32, format string) {
	*s.seen = append(*s.seen, fmt.Sprintf("int:%d", v))
}
func (s *recordingSink) PrintDouble(key, pretty string, v float64, format string) {
	*s.seen = append(*s.seen, fmt.Sprintf("double:%g", v))
}
func (s *recordingSink) PrintString(key, pretty string, v string, format string) {
	*s.seen = append(*s.seen, "string:"+v)
}
func (s *recordingSink) PrintArray(key, pretty string, v *data.Array, format string)   {}
func (s *recordingSink) PrintRecord(key, pretty string, v *data.Record, format string) {}
func (s *recordingSink) Free()                                                         {}

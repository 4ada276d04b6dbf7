// Package sink implements the Output Sink Contract: the six-method
// interface (plus a free) that every output format implements, the
// generic Emit walker that drives any Sink from a Data Value chain, and
// four formats: JSON lines, line-oriented key/value, UDP syslog, and a
// date-rotated JSON-lines file.
package sink

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/kb9vcn/rf433recv/internal/data"
)

// Sink is the output-format contract every consumer of decoded events
// implements: print the five scalar/container value kinds -- each
// carrying its own key and pretty label, since a sink cannot render a
// field it cannot name -- plus start (to announce the union of field
// names across enabled decoders, so tabular sinks can print a header)
// and free (flush and release any held resource). The framework calls
// PrintRecord once per emitted event with an empty key (there is no
// enclosing field to name it); a sink that needs per-field control (CSV,
// JSON, key/value) drives its own PrintRecord through Emit, which
// recurses into PrintRecord/PrintArray with a non-empty key for nested
// Record/Array fields. A sink may buffer across records but must flush
// on Free.
type Sink interface {
	StartOutput(fields []string)

	PrintInt(key, pretty string, v int32, format string)
	PrintDouble(key, pretty string, v float64, format string)
	PrintString(key, pretty string, v string, format string)
	PrintArray(key, pretty string, v *data.Array, format string)
	PrintRecord(key, pretty string, v *data.Record, format string)

	Free()
}

// Emit walks r's chain in emission order and dispatches each field to s by
// its type tag, carrying the field's own key and pretty label along with
// its value -- the generic driver every concrete Sink's PrintRecord calls
// into, so adding a new sink never touches the decoder framework. Nested
// Record and Array fields recurse through PrintRecord/PrintArray, which a
// well-behaved sink implements by calling back into Emit on its own
// writer.
func Emit(s Sink, r *data.Record) {
	for n := r; n != nil; n = n.Next {
		switch n.Tag {
		case data.TagInt:
			s.PrintInt(n.Key, n.PrettyKey, n.IntVal, n.Format)
		case data.TagDouble:
			s.PrintDouble(n.Key, n.PrettyKey, n.DoubleVal, n.Format)
		case data.TagString:
			s.PrintString(n.Key, n.PrettyKey, n.StringVal, n.Format)
		case data.TagBlob:
			s.PrintString(n.Key, n.PrettyKey, fmt.Sprintf("%02x", n.BlobVal), n.Format)
		case data.TagArray:
			s.PrintArray(n.Key, n.PrettyKey, n.ArrayVal, n.Format)
		case data.TagRecord:
			s.PrintRecord(n.Key, n.PrettyKey, n.RecordVal, n.Format)
		}
	}
}

// JSONLineSink writes each emitted record as one compact JSON object per
// line -- the simplest of the opaque sink formats spec.md lists. Every
// scalar Print method renders its own "key":value fragment; PrintRecord
// drives them via Emit and wraps the joined fragments in braces, so the
// JSON shape falls out of the same generic per-field dispatch a tabular
// sink would use, rather than delegating wholesale to a separate
// encoder. buf accumulates the fragments of the record currently being
// built; PrintRecord saves and restores it so a nested Record/Array field
// can recurse without disturbing the caller's in-progress fragment list.
type JSONLineSink struct {
	w   *bufio.Writer
	buf []string
}

// NewJSONLineSink wraps w for buffered line-oriented JSON output. Free
// flushes the buffer.
func NewJSONLineSink(w io.Writer) *JSONLineSink {
	return &JSONLineSink{w: bufio.NewWriter(w)}
}

// StartOutput is a no-op for JSON lines: there is no header to print, only
// whole records, one per line.
func (s *JSONLineSink) StartOutput(fields []string) {}

func (s *JSONLineSink) PrintInt(key, pretty string, v int32, format string) {
	s.buf = append(s.buf, fmt.Sprintf("%s:%d", jsonQuote(key), v))
}

func (s *JSONLineSink) PrintDouble(key, pretty string, v float64, format string) {
	s.buf = append(s.buf, fmt.Sprintf("%s:%s", jsonQuote(key), jsonDouble(v)))
}

func (s *JSONLineSink) PrintString(key, pretty string, v string, format string) {
	s.buf = append(s.buf, fmt.Sprintf("%s:%s", jsonQuote(key), jsonQuote(v)))
}

// PrintArray wraps v in a throwaway single-field record and reuses
// data.ToJSON's already-proven array rendering rather than duplicating
// per-element-type formatting here.
func (s *JSONLineSink) PrintArray(key, pretty string, v *data.Array, format string) {
	var holder = data.Build(data.FieldArray("a", "", v))
	var wrapped = data.ToJSON(holder)
	data.Release(holder)
	var arr = strings.TrimSuffix(strings.TrimPrefix(wrapped, `{"a":`), "}")
	s.buf = append(s.buf, fmt.Sprintf("%s:%s", jsonQuote(key), arr))
}

// PrintRecord renders v as a JSON object: Emit dispatches each of v's
// fields to the scalar Print methods above (or recursively back into
// PrintRecord/PrintArray for nested fields), and the fragments they
// accumulate are joined and wrapped in braces. An empty key means this is
// the top-level call the framework makes once per decoded event, so the
// object is terminated with a newline and written out; a non-empty key
// means this is a nested Record field, so the rendered object becomes one
// more fragment in the enclosing call's buffer.
func (s *JSONLineSink) PrintRecord(key, pretty string, v *data.Record, format string) {
	var saved = s.buf
	s.buf = nil
	Emit(s, v)
	var obj = "{" + strings.Join(s.buf, ",") + "}"
	s.buf = saved

	if key == "" {
		fmt.Fprintln(s.w, obj)
		return
	}
	s.buf = append(s.buf, fmt.Sprintf("%s:%s", jsonQuote(key), obj))
}

// Free flushes any buffered output.
func (s *JSONLineSink) Free() {
	s.w.Flush()
}

func jsonQuote(s string) string {
	var holder = data.Build(data.FieldString("s", "", s))
	var full = data.ToJSON(holder)
	data.Release(holder)
	return strings.TrimSuffix(strings.TrimPrefix(full, `{"s":`), "}")
}

func jsonDouble(v float64) string {
	var holder = data.Build(data.FieldDouble("d", "", v))
	var full = data.ToJSON(holder)
	data.Release(holder)
	return strings.TrimSuffix(strings.TrimPrefix(full, `{"d":`), "}")
}

// KeyValueLineSink writes one "key=value ..." line per record, the
// "line-oriented key/value" format spec.md names, using each field's
// pretty label when present and its key otherwise. Like JSONLineSink, the
// scalar Print methods do the actual rendering and PrintRecord drives
// them via Emit; buf accumulates the "label=value" fragments of the
// record currently being built.
type KeyValueLineSink struct {
	w   *bufio.Writer
	buf []string
}

func NewKeyValueLineSink(w io.Writer) *KeyValueLineSink {
	return &KeyValueLineSink{w: bufio.NewWriter(w)}
}

func (s *KeyValueLineSink) StartOutput(fields []string) {}

func (s *KeyValueLineSink) PrintInt(key, pretty string, v int32, format string) {
	var rendered = fmt.Sprintf("%d", v)
	if format != "" {
		rendered = fmt.Sprintf(format, v)
	}
	s.buf = append(s.buf, fmt.Sprintf("%s=%s", kvLabel(key, pretty), rendered))
}

func (s *KeyValueLineSink) PrintDouble(key, pretty string, v float64, format string) {
	var rendered = fmt.Sprintf("%g", v)
	if format != "" {
		rendered = fmt.Sprintf(format, v)
	}
	s.buf = append(s.buf, fmt.Sprintf("%s=%s", kvLabel(key, pretty), rendered))
}

func (s *KeyValueLineSink) PrintString(key, pretty string, v string, format string) {
	s.buf = append(s.buf, fmt.Sprintf("%s=%s", kvLabel(key, pretty), v))
}

func (s *KeyValueLineSink) PrintArray(key, pretty string, v *data.Array, format string) {
	s.buf = append(s.buf, fmt.Sprintf("%s=[%d %s elements]", kvLabel(key, pretty), v.Len(), v.ElemTag))
}

// PrintRecord renders v as one "label=value ..." line: Emit dispatches
// each field to the scalar Print methods above, and the fragments they
// accumulate are joined with spaces. A non-empty key (a nested Record
// field) renders as "label={inner}" instead of terminating the line.
func (s *KeyValueLineSink) PrintRecord(key, pretty string, v *data.Record, format string) {
	var saved = s.buf
	s.buf = nil
	Emit(s, v)
	var line = strings.Join(s.buf, " ")
	s.buf = saved

	if key == "" {
		fmt.Fprintln(s.w, line)
		return
	}
	s.buf = append(s.buf, fmt.Sprintf("%s={%s}", kvLabel(key, pretty), line))
}

func (s *KeyValueLineSink) Free() {
	s.w.Flush()
}

func kvLabel(key, pretty string) string {
	if pretty != "" {
		return pretty
	}
	return key
}

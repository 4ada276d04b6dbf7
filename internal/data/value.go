// Package data implements the Data Value model: a typed, recursive
// key-value record shared by every protocol decoder and every output
// sink. A Record is an ordered linked chain of nodes; each node carries a
// key, an optional pretty label, an optional printf-style format hint,
// a type tag, and a value.
package data

import "fmt"

// Tag is the type tag of a Record node's value.
type Tag int

const (
	TagInt Tag = iota
	TagDouble
	TagString
	TagBlob
	TagArray
	TagRecord
)

func (t Tag) String() string {
	switch t {
	case TagInt:
		return "int"
	case TagDouble:
		return "double"
	case TagString:
		return "string"
	case TagBlob:
		return "blob"
	case TagArray:
		return "array"
	case TagRecord:
		return "record"
	default:
		return "unknown"
	}
}

// Array is a homogeneous, fixed-length array value. ElemTag must be one
// of TagInt, TagDouble, TagString, TagBlob, or TagRecord -- arrays of
// arrays are not supported, matching the reference model.
type Array struct {
	ElemTag Tag
	Ints    []int32
	Doubles []float64
	Strings []string
	Blobs   [][]byte
	Records []*Record
}

// Len reports the array's element count, regardless of element type.
func (a *Array) Len() int {
	switch a.ElemTag {
	case TagInt:
		return len(a.Ints)
	case TagDouble:
		return len(a.Doubles)
	case TagString:
		return len(a.Strings)
	case TagBlob:
		return len(a.Blobs)
	case TagRecord:
		return len(a.Records)
	default:
		return 0
	}
}

// Record is one node in the ordered key/value chain; Next links to the
// following node, or nil at the end of the chain. A Record is immutable
// after construction except for the retain count and the Append/Prepend
// operations, which extend the chain without altering existing nodes.
type Record struct {
	Key        string
	PrettyKey  string
	Format     string
	Tag        Tag
	IntVal     int32
	DoubleVal  float64
	StringVal  string
	BlobVal    []byte
	ArrayVal   *Array
	RecordVal  *Record
	Next       *Record

	retain int
}

// field is one (key, prettyKey, tag, value) tuple passed to Build, plus
// the optional format/cond modifiers that may precede it. See the Field*
// constructors below.
type field struct {
	key, pretty, format string
	tag                 Tag
	intVal              int32
	doubleVal           float64
	stringVal           string
	blobVal             []byte
	arrayVal            *Array
	recordVal           *Record
	cond                bool
	hasCond             bool
}

// FieldInt builds an int field.
func FieldInt(key string, pretty string, v int32) field { //nolint:revive
	return field{key: key, pretty: pretty, tag: TagInt, intVal: v}
}

// FieldDouble builds a double field.
func FieldDouble(key string, pretty string, v float64) field { //nolint:revive
	return field{key: key, pretty: pretty, tag: TagDouble, doubleVal: v}
}

// FieldString builds a string field. The string is copied into the
// chain, per the reference ownership rule that scalar strings are always
// copied rather than moved.
func FieldString(key string, pretty string, v string) field { //nolint:revive
	return field{key: key, pretty: pretty, tag: TagString, stringVal: v}
}

// FieldBlob builds a byte-blob field. The blob is defensively copied.
func FieldBlob(key string, pretty string, v []byte) field { //nolint:revive
	var cp = make([]byte, len(v))
	copy(cp, v)
	return field{key: key, pretty: pretty, tag: TagBlob, blobVal: cp}
}

// FieldArray builds an array field. The array is moved (not copied) into
// the parent, matching the reference ownership rule for nested
// container values.
func FieldArray(key string, pretty string, v *Array) field { //nolint:revive
	return field{key: key, pretty: pretty, tag: TagArray, arrayVal: v}
}

// FieldRecord builds a nested-record field. The nested record is moved
// into the parent.
func FieldRecord(key string, pretty string, v *Record) field { //nolint:revive
	return field{key: key, pretty: pretty, tag: TagRecord, recordVal: v}
}

// WithFormat annotates f with a printf-style format hint, consumed by
// sinks that render numeric fields with a specific precision (e.g.
// "%.1f"). This is the typed-builder equivalent of the reference
// variadic builder's FORMAT pseudo-tag.
func WithFormat(f field, format string) field {
	f.format = format
	return f
}

// WithCond is the typed-builder equivalent of the reference COND
// pseudo-tag: if cond is false, f is skipped entirely by Build.
func WithCond(f field, cond bool) field {
	f.cond = cond
	f.hasCond = true
	return f
}

// Build constructs a Record chain from an ordered list of fields, in
// emission order. A field built with WithCond(false) is skipped (exactly
// one field is suppressed per COND, matching spec.md §4.6/§8). The head
// of the returned chain has a retain count of 1; call Release when done
// with it.
func Build(fields ...field) *Record {
	var head, tail *Record
	for _, f := range fields {
		if f.hasCond && !f.cond {
			continue
		}
		var node = &Record{
			Key:       f.key,
			PrettyKey: f.pretty,
			Format:    f.format,
			Tag:       f.tag,
			IntVal:    f.intVal,
			DoubleVal: f.doubleVal,
			StringVal: f.stringVal,
			BlobVal:   f.blobVal,
			ArrayVal:  f.arrayVal,
			RecordVal: f.recordVal,
			retain:    1,
		}
		if head == nil {
			head = node
			tail = node
		} else {
			tail.Next = node
			tail = node
		}
	}
	return head
}

// Append joins chain b onto the end of chain a, returning a (or b, if a
// is nil). The joined node retains its own retain count; Append does not
// itself retain.
func Append(a, b *Record) *Record {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	var tail = a
	for tail.Next != nil {
		tail = tail.Next
	}
	tail.Next = b
	return a
}

// Prepend joins chain a onto the front of chain b, returning a.
func Prepend(a, b *Record) *Record {
	return Append(a, b)
}

// Retain increments the head node's retain count and returns r, so
// callers can write `var kept = data.Retain(r)`.
func Retain(r *Record) *Record {
	if r != nil {
		r.retain++
	}
	return r
}

// Release decrements the head node's retain count and, at zero,
// traverses and frees the entire chain (including any nested records and
// array-of-record elements). Go's garbage collector reclaims the memory;
// Release's job is purely to make "is this record still owned by anyone"
// an explicit, testable invariant, matching the reference counting
// contract in spec.md §3 even though nothing here needs manual freeing.
// Releasing a record whose count is already zero does nothing.
func Release(r *Record) {
	if r == nil || r.retain <= 0 {
		return
	}
	r.retain--
	if r.retain > 0 {
		return
	}
	for n := r; n != nil; n = n.Next {
		if n.Tag == TagRecord && n.RecordVal != nil {
			Release(n.RecordVal)
		}
		if n.Tag == TagArray && n.ArrayVal != nil && n.ArrayVal.ElemTag == TagRecord {
			for _, sub := range n.ArrayVal.Records {
				Release(sub)
			}
		}
	}
}

// Fields returns the chain as a slice, in emission order, for callers
// (sinks, tests) that prefer to range over it rather than walk Next
// manually.
func Fields(r *Record) []*Record {
	var out []*Record
	for n := r; n != nil; n = n.Next {
		out = append(out, n)
	}
	return out
}

// Get returns the first node in the chain with the given key, or nil.
func Get(r *Record, key string) *Record {
	for n := r; n != nil; n = n.Next {
		if n.Key == key {
			return n
		}
	}
	return nil
}

// String renders a node's value using its Format hint, if any, falling
// back to a type-appropriate default -- used by the line-oriented
// pretty-print sink contract (spec.md §6).
func (n *Record) String() string {
	if n == nil {
		return ""
	}
	switch n.Tag {
	case TagInt:
		if n.Format != "" {
			return fmt.Sprintf(n.Format, n.IntVal)
		}
		return fmt.Sprintf("%d", n.IntVal)
	case TagDouble:
		if n.Format != "" {
			return fmt.Sprintf(n.Format, n.DoubleVal)
		}
		return fmt.Sprintf("%g", n.DoubleVal)
	case TagString:
		return n.StringVal
	case TagBlob:
		return fmt.Sprintf("%02x", n.BlobVal)
	case TagArray:
		return fmt.Sprintf("[%d %s elements]", n.ArrayVal.Len(), n.ArrayVal.ElemTag)
	case TagRecord:
		return "{...}"
	default:
		return ""
	}
}

package data

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

/*------------------------------------------------------------------
 *
 * Purpose:	JSON line-per-event emission, and the inverse parse used
 *		by the round-trip property test in spec.md §8 ("emission
 *		to JSON then parse-back produces a structurally equivalent
 *		record, order and types preserved, for all non-format
 *		fields").
 *
 *		JSON numbers do not distinguish int from double on their
 *		own, so doubles are always rendered with a decimal point
 *		(forcing "10.0" rather than "10") and ints never carry one;
 *		ParseJSON uses that textual cue, via json.Number, to
 *		recover the original tag.
 *
 *------------------------------------------------------------------*/

// ToJSON renders r as a single-line JSON object, in field order. A
// Format hint affects only how a sink like the line-oriented pretty
// printer renders the value, never the JSON encoding, so it is not
// reflected here.
func ToJSON(r *Record) string {
	var b strings.Builder
	b.WriteByte('{')
	var first = true
	for n := r; n != nil; n = n.Next {
		if !first {
			b.WriteByte(',')
		}
		first = false
		writeJSONString(&b, n.Key)
		b.WriteByte(':')
		writeJSONValue(&b, n.Tag, n)
	}
	b.WriteByte('}')
	return b.String()
}

func writeJSONString(b *strings.Builder, s string) {
	encoded, _ := json.Marshal(s)
	b.Write(encoded)
}

func writeJSONValue(b *strings.Builder, tag Tag, n *Record) {
	switch tag {
	case TagInt:
		b.WriteString(strconv.FormatInt(int64(n.IntVal), 10))
	case TagDouble:
		b.WriteString(formatDouble(n.DoubleVal))
	case TagString:
		writeJSONString(b, n.StringVal)
	case TagBlob:
		writeJSONString(b, fmt.Sprintf("%02x", n.BlobVal))
	case TagArray:
		writeJSONArray(b, n.ArrayVal)
	case TagRecord:
		b.WriteString(ToJSON(n.RecordVal))
	}
}

func formatDouble(v float64) string {
	var s = strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

func writeJSONArray(b *strings.Builder, a *Array) {
	b.WriteByte('[')
	if a == nil {
		b.WriteByte(']')
		return
	}
	switch a.ElemTag {
	case TagInt:
		for i, v := range a.Ints {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(strconv.FormatInt(int64(v), 10))
		}
	case TagDouble:
		for i, v := range a.Doubles {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(formatDouble(v))
		}
	case TagString:
		for i, v := range a.Strings {
			if i > 0 {
				b.WriteByte(',')
			}
			writeJSONString(b, v)
		}
	case TagBlob:
		for i, v := range a.Blobs {
			if i > 0 {
				b.WriteByte(',')
			}
			writeJSONString(b, fmt.Sprintf("%02x", v))
		}
	case TagRecord:
		for i, v := range a.Records {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(ToJSON(v))
		}
	}
	b.WriteByte(']')
}

// ParseJSON is the inverse of ToJSON: it reconstructs a Record chain
// preserving field order (via json.Decoder's token stream, not Go's
// unordered map decoding) and recovers int-vs-double typing from each
// number's literal text. Blob values, which ToJSON writes as hex strings,
// parse back as TagString fields.
func ParseJSON(s string) (*Record, error) {
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("data: parsing JSON record: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("data: expected JSON object, got %v", tok)
	}

	return parseObjectBody(dec)
}

func parseObjectBody(dec *json.Decoder) (*Record, error) {
	var head, tail *Record
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, _ := keyTok.(string)

		node, err := parseValue(dec, key)
		if err != nil {
			return nil, err
		}
		node.retain = 1

		if head == nil {
			head = node
			tail = node
		} else {
			tail.Next = node
			tail = node
		}
	}
	// Consume the closing '}'.
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return head, nil
}

func parseValue(dec *json.Decoder, key string) (*Record, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}

	switch v := tok.(type) {
	case json.Number:
		if strings.ContainsAny(v.String(), ".eE") {
			f, _ := v.Float64()
			return &Record{Key: key, Tag: TagDouble, DoubleVal: f}, nil
		}
		i, _ := v.Int64()
		return &Record{Key: key, Tag: TagInt, IntVal: int32(i)}, nil
	case string:
		return &Record{Key: key, Tag: TagString, StringVal: v}, nil
	case json.Delim:
		switch v {
		case '{':
			sub, err := parseObjectBody(dec)
			if err != nil {
				return nil, err
			}
			return &Record{Key: key, Tag: TagRecord, RecordVal: sub}, nil
		case '[':
			arr, err := parseArrayBody(dec)
			if err != nil {
				return nil, err
			}
			return &Record{Key: key, Tag: TagArray, ArrayVal: arr}, nil
		}
	}
	return nil, fmt.Errorf("data: unsupported JSON token %v for key %q", tok, key)
}

func parseArrayBody(dec *json.Decoder) (*Array, error) {
	var arr = &Array{}
	var elems []*Record
	for dec.More() {
		elem, err := parseValue(dec, "")
		if err != nil {
			return nil, err
		}
		elems = append(elems, elem)
	}
	if _, err := dec.Token(); err != nil { // closing ']'
		return nil, err
	}
	if len(elems) == 0 {
		return arr, nil
	}
	arr.ElemTag = elems[0].Tag
	for _, e := range elems {
		switch arr.ElemTag {
		case TagInt:
			arr.Ints = append(arr.Ints, e.IntVal)
		case TagDouble:
			arr.Doubles = append(arr.Doubles, e.DoubleVal)
		case TagString:
			arr.Strings = append(arr.Strings, e.StringVal)
		case TagRecord:
			arr.Records = append(arr.Records, e.RecordVal)
		}
	}
	return arr, nil
}

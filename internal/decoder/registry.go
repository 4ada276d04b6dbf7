package decoder

import (
	"github.com/kb9vcn/rf433recv/internal/bitbuffer"
	"github.com/kb9vcn/rf433recv/internal/data"
	"github.com/kb9vcn/rf433recv/internal/pulse"
	"github.com/kb9vcn/rf433recv/internal/slicer"
)

// Registry holds an ordered collection of Descriptors, populated once at
// startup, keyed implicitly by modulation family for fast dispatch. This
// replaces the link-time table the reference decoder set used: Register
// appends to a plain slice, and Dispatch filters it by family and Enabled
// on every burst.
type Registry struct {
	descriptors []*Descriptor
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register appends d to the registry. Order of registration is the order
// decoders are tried against a burst.
func (r *Registry) Register(d *Descriptor) {
	r.descriptors = append(r.descriptors, d)
}

// Descriptors returns the registered descriptors, in registration order.
func (r *Registry) Descriptors() []*Descriptor {
	return r.descriptors
}

// FieldUnion returns the union of Fields across every enabled descriptor,
// in first-seen order, for a single start-of-output call to a sink (e.g.
// to print a CSV header) before dispatch begins.
func (r *Registry) FieldUnion() []string {
	var seen = make(map[string]bool)
	var union []string
	for _, d := range r.descriptors {
		if !d.Enabled {
			continue
		}
		for _, f := range d.Fields {
			if seen[f] {
				continue
			}
			seen[f] = true
			union = append(union, f)
		}
	}
	return union
}

// Outcome records one decoder's result against one burst, for the
// dispatch loop's diagnostics and for feeding emitted records to sinks.
type Outcome struct {
	Decoder    string
	ReturnCode int
	Status     Status // meaningful only when ReturnCode < 0
	Events     []*data.Record
}

// Dispatch runs every enabled decoder whose Family matches against burst,
// in registration order, per spec.md §4.7:
//
//  1. build a fresh Bitbuffer via the decoder's own slicer and timing;
//  2. invoke the decoder's callback with that buffer;
//  3. record the returned status/event count.
//
// Decoders never see each other's output: each gets its own Bitbuffer and
// its own emit closure collecting only its own events.
func (r *Registry) Dispatch(burst pulse.Data, family pulse.Family) []Outcome {
	var outcomes = make([]Outcome, 0, len(r.descriptors))

	for _, d := range r.descriptors {
		if !d.Enabled || d.Family != family {
			continue
		}

		var bb = slicer.Slice(d.Scheme, burst, d.Timing)
		if d.MinBits > 0 && !hasRowInRange(bb, d.MinBits, d.MaxBits) {
			continue
		}

		var events []*data.Record
		var emit = func(rec *data.Record) {
			events = append(events, data.Retain(rec))
		}

		var code = d.Callback(d, bb, emit)

		var outcome = Outcome{Decoder: d.Name, ReturnCode: code, Events: events}
		if code < 0 {
			outcome.Status = Status(code)
		}
		outcomes = append(outcomes, outcome)
	}

	return outcomes
}

func hasRowInRange(bb *bitbuffer.Bitbuffer, min, max int) bool {
	for i := 0; i < bb.NumRows(); i++ {
		var n = bb.RowLen(i)
		if n < min {
			continue
		}
		if max > 0 && n > max {
			continue
		}
		return true
	}
	return false
}

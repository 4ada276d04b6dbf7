// Package pulse implements the Pulse Detector front end: it converts a
// stream of complex I/Q samples into discrete pulse/gap bursts using
// adaptive noise/signal level tracking, and the in-memory Pulse Data
// representation of a detected burst.
package pulse

// MaxPulses bounds the length of a single burst's pulse/gap sequence.
const MaxPulses = 1024

// Data is the immutable, in-memory representation of one detected RF
// burst: an alternating sequence of pulse and gap widths (always
// beginning with a pulse), plus the metadata the detector measured while
// capturing it. A Data value is produced once by the detector, consumed
// once by the dispatch loop across all enabled decoders, and then
// discarded -- nothing mutates it after NumPulses is finalized.
type Data struct {
	Pulse [MaxPulses]int // microseconds
	Gap   [MaxPulses]int // microseconds
	NumPulses int

	Freq1Hz float64 // FSK mark (or OOK carrier) frequency offset estimate, Hz
	Freq2Hz float64 // FSK space frequency offset estimate, Hz

	RSSIDb  float64
	NoiseDb float64
	SNRDb   float64

	OOKLowEstimate  float64
	OOKHighEstimate float64

	SampleRate int
}

// Family identifies which of the two parallel detectors produced a burst,
// since spec.md §4.7 dispatches decoders by modulation family (AM vs FM).
type Family int

const (
	FamilyAM Family = iota
	FamilyFM
)

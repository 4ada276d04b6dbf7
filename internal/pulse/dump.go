package pulse

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/lestrrat-go/strftime"
)

/*------------------------------------------------------------------
 *
 * Purpose:	Optional raw-burst diagnostic recorder, for capturing a
 *		troublesome burst to disk for offline analysis.
 *
 *		Generalizes the reference logger's hardcoded daily-filename
 *		convention ("2006-01-02.log") into a user-supplied strftime
 *		pattern, e.g. "captures/%Y-%m-%d/%H%M%S.pulses".
 *
 *------------------------------------------------------------------*/

// Dumper writes a one-line-per-burst text trace of pulse/gap widths,
// named by a strftime pattern evaluated at the time each burst completes.
type Dumper struct {
	pattern *strftime.Strftime
}

// NewDumper compiles the given strftime pattern. An invalid pattern is
// reported immediately rather than failing silently on first use.
func NewDumper(pattern string) (*Dumper, error) {
	compiled, err := strftime.New(pattern)
	if err != nil {
		return nil, fmt.Errorf("pulse: invalid dump pattern %q: %w", pattern, err)
	}
	return &Dumper{pattern: compiled}, nil
}

// Write appends one line describing the burst to the file named by the
// dump pattern evaluated at now, creating parent directories as needed.
func (d *Dumper) Write(now time.Time, burst Data) error {
	var path = d.pattern.FormatString(now)

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("pulse: creating dump directory %q: %w", dir, err)
		}
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("pulse: opening dump file %q: %w", path, err)
	}
	defer f.Close()

	fmt.Fprintf(f, "rate=%d rssi=%.1f noise=%.1f snr=%.1f n=%d ", burst.SampleRate, burst.RSSIDb, burst.NoiseDb, burst.SNRDb, burst.NumPulses)
	for i := 0; i < burst.NumPulses; i++ {
		fmt.Fprintf(f, "%d,%d ", burst.Pulse[i], burst.Gap[i])
	}
	fmt.Fprintln(f)
	return nil
}

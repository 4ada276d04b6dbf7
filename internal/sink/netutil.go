package sink

import (
	"fmt"
	"net"
	"strings"

	"golang.org/x/sys/unix"

	"github.com/kb9vcn/rf433recv/internal/data"
)

// setNonblocking puts conn's underlying file descriptor into non-blocking
// mode. spec.md §6 calls this out explicitly: "an implementation is free
// to make the datagram socket non-blocking" so a send to an unreachable
// host cannot stall the single-threaded dispatch loop.
func setNonblocking(conn *net.UDPConn) error {
	var raw, err = conn.SyscallConn()
	if err != nil {
		return err
	}
	var ctrlErr error
	var setErr = raw.Control(func(fd uintptr) {
		ctrlErr = unix.SetNonblock(int(fd), true)
	})
	if setErr != nil {
		return setErr
	}
	return ctrlErr
}

// UDPSyslogSink sends each record as an RFC 3164-style syslog datagram --
// the "UDP syslog" format spec.md lists -- to a fixed destination. The
// socket is put in non-blocking mode at construction; a send that would
// block is dropped and counted rather than stalling the pipeline. Like
// KeyValueLineSink, the scalar Print methods render "label=value"
// fragments and PrintRecord drives them via Emit; buf accumulates the
// fragments of the record currently being built.
type UDPSyslogSink struct {
	conn     *net.UDPConn
	facility int
	dropped  int
	buf      []string
}

// NewUDPSyslogSink dials addr ("host:port") and returns a sink ready to
// send. facility is the syslog facility number (e.g. 16 for local0); each
// message is tagged with severity 6 (informational).
func NewUDPSyslogSink(addr string, facility int) (*UDPSyslogSink, error) {
	var raddr, resolveErr = net.ResolveUDPAddr("udp", addr)
	if resolveErr != nil {
		return nil, resolveErr
	}
	var conn, dialErr = net.DialUDP("udp", nil, raddr)
	if dialErr != nil {
		return nil, dialErr
	}
	if err := setNonblocking(conn); err != nil {
		conn.Close()
		return nil, err
	}
	return &UDPSyslogSink{conn: conn, facility: facility}, nil
}

func (s *UDPSyslogSink) StartOutput(fields []string) {}

func (s *UDPSyslogSink) PrintInt(key, pretty string, v int32, format string) {
	var rendered = fmt.Sprintf("%d", v)
	if format != "" {
		rendered = fmt.Sprintf(format, v)
	}
	s.buf = append(s.buf, fmt.Sprintf("%s=%s", kvLabel(key, pretty), rendered))
}

func (s *UDPSyslogSink) PrintDouble(key, pretty string, v float64, format string) {
	var rendered = fmt.Sprintf("%g", v)
	if format != "" {
		rendered = fmt.Sprintf(format, v)
	}
	s.buf = append(s.buf, fmt.Sprintf("%s=%s", kvLabel(key, pretty), rendered))
}

func (s *UDPSyslogSink) PrintString(key, pretty string, v string, format string) {
	s.buf = append(s.buf, fmt.Sprintf("%s=%s", kvLabel(key, pretty), v))
}

func (s *UDPSyslogSink) PrintArray(key, pretty string, v *data.Array, format string) {
	s.buf = append(s.buf, fmt.Sprintf("%s=[%d %s elements]", kvLabel(key, pretty), v.Len(), v.ElemTag))
}

// PrintRecord flattens one event to a single "key=value ..." syslog line --
// the same rendering KeyValueLineSink uses, reused here because syslog
// transports are conventionally line-oriented key/value, not JSON. Emit
// dispatches each field to the scalar Print methods above; a non-empty
// key (a nested Record field) renders as "label={inner}" instead of
// being sent directly.
func (s *UDPSyslogSink) PrintRecord(key, pretty string, v *data.Record, format string) {
	var saved = s.buf
	s.buf = nil
	Emit(s, v)
	var line = strings.Join(s.buf, " ")
	s.buf = saved

	if key == "" {
		s.send(line)
		return
	}
	s.buf = append(s.buf, fmt.Sprintf("%s={%s}", kvLabel(key, pretty), line))
}

// Dropped reports how many records were dropped because their send failed
// (for example because the non-blocking send would have blocked) -- a
// failed write is not retried, matching
// the contract's "best-effort" emission policy for a failing sink.
func (s *UDPSyslogSink) Dropped() int {
	return s.dropped
}

func (s *UDPSyslogSink) Free() {
	s.conn.Close()
}

// priVal computes the syslog PRI value: facility*8 + severity.
func priVal(facility, severity int) int {
	return facility*8 + severity
}

// send writes one syslog-framed line, counting (not retrying) any write
// error, a would-block error included.
func (s *UDPSyslogSink) send(line string) {
	var msg = fmt.Sprintf("<%d>%s", priVal(s.facility, 6), line)
	var _, err = s.conn.Write([]byte(msg))
	if err != nil {
		s.dropped++
	}
}

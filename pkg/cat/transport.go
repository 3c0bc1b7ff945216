package cat

import (
	"fmt"
	"strings"
	"time"

	"go.bug.st/serial"
)

// Transport is the byte-level serial link a codec talks through. It knows
// nothing about CAT protocols; codecs own framing and timing.
type Transport interface {
	// Write sends the whole buffer to the radio.
	Write(p []byte) error

	// ReadAvailable reads up to max bytes, waiting no longer than timeout.
	// It returns whatever arrived, including nothing at all: an empty read
	// is a normal outcome, not an error. Codecs decide whether silence
	// means a timeout.
	ReadAvailable(max int, timeout time.Duration) ([]byte, error)

	// ResetInput discards any bytes already buffered from the radio, so a
	// stale echo from a previous exchange cannot desynchronize parsing.
	ResetInput() error

	Close() error
}

// PortOpener opens a Transport on a named serial port. The controller takes
// one of these so tests can substitute a scripted fake for real hardware.
type PortOpener func(port string, baud int, dtr, rts bool) (Transport, error)

// serialTransport wraps a go.bug.st/serial port at 8N1.
type serialTransport struct {
	port serial.Port
}

// OpenPort opens port at baud with 8 data bits, no parity, one stop bit, and
// asserts DTR/RTS to the requested state before returning. Some radios key
// their CAT circuitry off these lines; a wrong level produces silent empty
// reads rather than errors, so the lines are set before any byte moves.
func OpenPort(port string, baud int, dtr, rts bool) (Transport, error) {
	mode := &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}

	p, err := serial.Open(port, mode)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrPortUnavailable, port, err)
	}

	if err := p.SetDTR(dtr); err != nil {
		p.Close()
		return nil, fmt.Errorf("%w: %s: set DTR: %v", ErrPortUnavailable, port, err)
	}
	if err := p.SetRTS(rts); err != nil {
		p.Close()
		return nil, fmt.Errorf("%w: %s: set RTS: %v", ErrPortUnavailable, port, err)
	}

	return &serialTransport{port: p}, nil
}

func (t *serialTransport) Write(p []byte) error {
	for len(p) > 0 {
		n, err := t.port.Write(p)
		if err != nil {
			return fmt.Errorf("serial write: %w", err)
		}
		p = p[n:]
	}
	return nil
}

func (t *serialTransport) ReadAvailable(max int, timeout time.Duration) ([]byte, error) {
	buf := make([]byte, 0, max)
	tmp := make([]byte, max)
	deadline := time.Now().Add(timeout)

	for len(buf) < max {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			break
		}
		if err := t.port.SetReadTimeout(remaining); err != nil {
			return buf, fmt.Errorf("serial read timeout: %w", err)
		}

		n, err := t.port.Read(tmp[:max-len(buf)])
		if err != nil {
			return buf, fmt.Errorf("serial read: %w", err)
		}
		if n == 0 {
			// Timeout elapsed with nothing further; return what we have.
			break
		}
		buf = append(buf, tmp[:n]...)
	}

	return buf, nil
}

func (t *serialTransport) ResetInput() error {
	return t.port.ResetInputBuffer()
}

func (t *serialTransport) Close() error {
	return t.port.Close()
}

// ListPorts returns the system's serial port device names, sorted the way
// the enumeration reports them.
func ListPorts() ([]string, error) {
	ports, err := serial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("list serial ports: %w", err)
	}

	// Filter out Bluetooth pseudo-ports on macOS; they hang on open.
	out := ports[:0]
	for _, p := range ports {
		if strings.Contains(p, "Bluetooth") {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

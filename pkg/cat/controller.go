package cat

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/k3dep/hunterd/pkg/logging"
)

// State is the controller's connection state.
type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	default:
		return "unknown"
	}
}

// Status is a snapshot of the controller for display.
type Status struct {
	State     State
	Model     string
	Port      string
	Baud      int
	Frequency int64
	Mode      Mode
}

// DefaultReadTimeout bounds one read attempt. Short enough that baud
// auto-detection across every candidate stays within a few seconds.
const DefaultReadTimeout = 300 * time.Millisecond

// fallbackResolveHz stands in when the mode resolver needs a frequency and
// none can be read: assume 20m, the safer upper-sideband default.
const fallbackResolveHz = 14_000_000

// baudCandidates lists the rates auto-detection probes, most likely first,
// keyed by the protocol family the radio answers frequency queries in.
var baudCandidates = map[Protocol][]int{
	ProtocolKenwood: {57600, 115200, 38400, 19200, 9600, 4800},
	ProtocolYaesu:   {38400, 19200, 9600, 4800},
	ProtocolIcom:    {19200, 9600, 4800},
}

// Controller owns one radio connection and serializes every CAT exchange on
// it. The wire protocols have no request IDs, so a second write before the
// first reply is consumed corrupts parsing; the mutex guarantees one
// in-flight operation per port no matter which caller triggers it.
type Controller struct {
	registry    *Registry
	opener      PortOpener
	readTimeout time.Duration

	// Callbacks fire synchronously while the controller lock is held and
	// must not call back into the Controller.
	onState  func(State)
	onStatus func(freq int64, mode Mode)

	mu        sync.Mutex
	state     State
	transport Transport
	profile   *RadioProfile
	model     string
	port      string
	baud      int
	lastFreq  int64
	lastMode  Mode
}

// NewController creates a controller over the given registry, opening real
// serial ports and using DefaultReadTimeout.
func NewController(registry *Registry) *Controller {
	return &Controller{
		registry:    registry,
		opener:      OpenPort,
		readTimeout: DefaultReadTimeout,
	}
}

// Registry returns the radio table this controller resolves models against.
func (c *Controller) Registry() *Registry {
	return c.registry
}

// SetPortOpener replaces how serial ports are opened. Tests use this to run
// the controller against a scripted transport.
func (c *Controller) SetPortOpener(opener PortOpener) {
	c.opener = opener
}

// SetReadTimeout adjusts the per-attempt read window.
func (c *Controller) SetReadTimeout(d time.Duration) {
	if d > 0 {
		c.readTimeout = d
	}
}

// OnStateChange registers a callback for connection-state transitions.
func (c *Controller) OnStateChange(fn func(State)) {
	c.onState = fn
}

// OnStatus registers a callback for successfully read (frequency, mode)
// pairs, for status display.
func (c *Controller) OnStatus(fn func(freq int64, mode Mode)) {
	c.onStatus = fn
}

// Enable connects to a radio: resolves the model profile, opens the port
// with the family's DTR/RTS levels, and verifies the link with a frequency
// read before reporting Connected. A baud of 0 runs auto-detection over the
// candidate rates, default baud first.
func (c *Controller) Enable(model, port string, baud int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.transport != nil {
		c.closeLocked()
	}

	profile, err := c.registry.Lookup(model)
	if err != nil {
		return err
	}

	c.setStateLocked(StateConnecting)
	logging.Infof("cat", "connecting to %s on %s (baud %d)", model, port, baud)

	dtr, rts := profile.LineState()
	freqCodec := newCodec(profile.ProtocolFor(OpGetFrequency), profile, c.readTimeout)

	var transport Transport
	var freq int64
	if baud > 0 {
		transport, freq, err = c.probeBaud(port, baud, dtr, rts, freqCodec)
	} else {
		transport, baud, freq, err = c.detectBaud(port, profile, dtr, rts, freqCodec)
	}
	if err != nil {
		c.setStateLocked(StateDisconnected)
		return err
	}

	c.transport = transport
	c.profile = profile
	c.model = model
	c.port = port
	c.baud = baud
	c.lastFreq = freq
	c.lastMode = ""
	c.setStateLocked(StateConnected)
	c.notifyStatusLocked()
	logging.Infof("cat", "connected to %s on %s at %d baud, %.3f MHz",
		model, port, baud, float64(freq)/1e6)
	return nil
}

// Disable closes the port and returns to Disconnected.
func (c *Controller) Disable() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closeLocked()
}

// GetFrequency reads the operating frequency in Hz.
func (c *Controller) GetFrequency() (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.requireConnected(); err != nil {
		return 0, err
	}
	freq, err := c.opCodec(OpGetFrequency).GetFrequency(c.transport)
	if err != nil {
		return 0, err
	}
	c.lastFreq = freq
	return freq, nil
}

// SetFrequency tunes the radio to hz.
func (c *Controller) SetFrequency(hz int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.setFrequencyLocked(hz)
}

// GetMode reads the operating mode. The radio's native mode is returned
// unresolved; the 10 MHz heuristic applies only when setting.
func (c *Controller) GetMode() (Mode, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.requireConnected(); err != nil {
		return "", err
	}
	mode, err := c.opCodec(OpGetMode).GetMode(c.transport)
	if err != nil {
		return "", err
	}
	c.lastMode = mode
	return mode, nil
}

// SetMode sets the operating mode. Generic modes (SSB, CW, FT8, ...) are
// resolved to a sideband variant against the current frequency first.
func (c *Controller) SetMode(mode Mode) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.setModeLocked(mode, 0)
}

// Tune is the composite operation behind a spot click: set the frequency,
// then resolve and set the mode against that same frequency.
func (c *Controller) Tune(hz int64, mode Mode) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.setFrequencyLocked(hz); err != nil {
		return fmt.Errorf("tune: %w", err)
	}
	if err := c.setModeLocked(mode, hz); err != nil {
		return fmt.Errorf("tune: %w", err)
	}
	c.notifyStatusLocked()
	return nil
}

// Poll reads frequency and mode in one serialized exchange pair, for the
// periodic status display. A failure leaves the connection open; whether to
// show the link as down is the caller's call after repeated misses.
func (c *Controller) Poll() (int64, Mode, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.requireConnected(); err != nil {
		return 0, "", err
	}

	freq, err := c.opCodec(OpGetFrequency).GetFrequency(c.transport)
	if err != nil {
		return 0, "", err
	}
	mode, err := c.opCodec(OpGetMode).GetMode(c.transport)
	if err != nil {
		return 0, "", err
	}

	c.lastFreq = freq
	c.lastMode = mode
	c.notifyStatusLocked()
	return freq, mode, nil
}

// Status returns a snapshot of the current connection.
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()

	return Status{
		State:     c.state,
		Model:     c.model,
		Port:      c.port,
		Baud:      c.baud,
		Frequency: c.lastFreq,
		Mode:      c.lastMode,
	}
}

func (c *Controller) setFrequencyLocked(hz int64) error {
	if err := c.requireConnected(); err != nil {
		return err
	}
	if err := c.opCodec(OpSetFrequency).SetFrequency(c.transport, hz); err != nil {
		return err
	}
	c.lastFreq = hz
	return nil
}

// setModeLocked resolves and sets mode. refHz anchors the sideband decision;
// zero means use the last known frequency, reading one from the radio if
// nothing has been seen yet.
func (c *Controller) setModeLocked(mode Mode, refHz int64) error {
	if err := c.requireConnected(); err != nil {
		return err
	}

	if refHz == 0 {
		refHz = c.lastFreq
	}
	if refHz == 0 {
		freq, err := c.opCodec(OpGetFrequency).GetFrequency(c.transport)
		if err != nil {
			logging.Warnf("cat", "cannot read frequency for mode resolution, assuming upper sideband: %v", err)
			refHz = fallbackResolveHz
		} else {
			refHz = freq
			c.lastFreq = freq
		}
	}

	resolved := Resolve(mode, refHz)
	if resolved != mode {
		logging.Infof("cat", "resolved %s to %s at %.3f MHz", mode, resolved, float64(refHz)/1e6)
	}

	if err := c.opCodec(OpSetMode).SetMode(c.transport, resolved); err != nil {
		return err
	}
	c.lastMode = resolved
	return nil
}

// probeBaud opens the port at one rate and verifies the link with a
// frequency read.
func (c *Controller) probeBaud(port string, baud int, dtr, rts bool, codec Codec) (Transport, int64, error) {
	transport, err := c.opener(port, baud, dtr, rts)
	if err != nil {
		return nil, 0, err
	}

	freq, err := codec.GetFrequency(transport)
	if err != nil {
		transport.Close()
		return nil, 0, fmt.Errorf("no reply at %d baud: %w", baud, err)
	}
	return transport, freq, nil
}

// detectBaud walks the candidate rates until one yields a parseable
// frequency. The probe uses the get_frequency override's codec, since that
// framing is what the radio will actually answer with, while DTR/RTS stay
// the base family's levels. A missing or busy port aborts immediately;
// exhausting the list is ErrNoResponse.
func (c *Controller) detectBaud(port string, profile *RadioProfile, dtr, rts bool, codec Codec) (Transport, int, int64, error) {
	freqProto := profile.ProtocolFor(OpGetFrequency)

	candidates := []int{profile.Baud}
	for _, b := range baudCandidates[freqProto] {
		if b != profile.Baud {
			candidates = append(candidates, b)
		}
	}

	for _, baud := range candidates {
		logging.Debugf("cat", "probing %s at %d baud", port, baud)
		transport, freq, err := c.probeBaud(port, baud, dtr, rts, codec)
		if err != nil {
			if errors.Is(err, ErrPortUnavailable) {
				return nil, 0, 0, err
			}
			logging.Debugf("cat", "no response at %d baud: %v", baud, err)
			continue
		}
		return transport, baud, freq, nil
	}

	return nil, 0, 0, fmt.Errorf("%w: %s", ErrNoResponse, port)
}

func (c *Controller) opCodec(op Operation) Codec {
	return newCodec(c.profile.ProtocolFor(op), c.profile, c.readTimeout)
}

func (c *Controller) requireConnected() error {
	if c.state != StateConnected || c.transport == nil {
		return ErrNotConnected
	}
	return nil
}

func (c *Controller) closeLocked() {
	if c.transport != nil {
		if err := c.transport.Close(); err != nil {
			logging.Warnf("cat", "closing %s: %v", c.port, err)
		}
		c.transport = nil
	}
	c.profile = nil
	c.model = ""
	c.port = ""
	c.baud = 0
	c.lastFreq = 0
	c.lastMode = ""
	c.setStateLocked(StateDisconnected)
}

func (c *Controller) setStateLocked(s State) {
	if c.state == s {
		return
	}
	c.state = s
	if c.onState != nil {
		c.onState(s)
	}
}

func (c *Controller) notifyStatusLocked() {
	if c.onStatus != nil {
		c.onStatus(c.lastFreq, c.lastMode)
	}
}

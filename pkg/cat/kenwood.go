package cat

import (
	"fmt"
	"strconv"
	"time"

	"github.com/k3dep/hunterd/pkg/logging"
)

// kenwoodCodec speaks the Kenwood ASCII command/response protocol: short
// commands terminated by ';', decimal frequency digits, two-character mode
// codes. Framing varies between Kenwood-compatible models, so digit width,
// frequency unit, and the IF mode offset come from the radio profile.
type kenwoodCodec struct {
	Digits      int           // zero-padded width of FA digit strings
	UnitHz      int64         // Hz per count in the digit string
	ModeOffset  int           // character position of the mode code in an IF response
	Settle      time.Duration // delay after a write before the radio has its reply ready
	ReadTimeout time.Duration
}

const kenwoodReadMax = 128

// minFreqDigits is the fewest digits accepted as a frequency readout. Short
// answers are command echoes or noise, not a tuned frequency.
const minFreqDigits = 8

// GetFrequency sends FA; and decodes the digit string that comes back.
func (c *kenwoodCodec) GetFrequency(t Transport) (int64, error) {
	resp, err := c.exchange(t, "FA;")
	if err != nil {
		return 0, err
	}

	// Pull out only the ASCII digits. Radios differ in whether they echo
	// the command and how much framing surrounds the number, so scanning
	// beats any fixed byte offset.
	digits := extractDigits(resp)
	if len(digits) < minFreqDigits {
		return 0, fmt.Errorf("%w: kenwood FA response %q", ErrMalformedResponse, resp)
	}

	count, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: kenwood FA digits %q", ErrMalformedResponse, digits)
	}
	return count * c.UnitHz, nil
}

// SetFrequency writes FA<digits>; with the model's digit width. The radio
// does not acknowledge, but any echo is read and discarded so the next
// exchange starts from a clean buffer.
func (c *kenwoodCodec) SetFrequency(t Transport, hz int64) error {
	count := hz / c.UnitHz
	cmd := fmt.Sprintf("FA%0*d;", c.Digits, count)

	if err := t.ResetInput(); err != nil {
		return err
	}
	if err := t.Write([]byte(cmd)); err != nil {
		return err
	}
	time.Sleep(c.Settle)
	if _, err := t.ReadAvailable(kenwoodReadMax, c.ReadTimeout); err != nil {
		return err
	}
	return nil
}

// GetMode reads the IF status line and extracts the two-character mode code.
// IF is preferred over MD because it answers in one round trip with the full
// transceiver state.
func (c *kenwoodCodec) GetMode(t Transport) (Mode, error) {
	resp, err := c.exchange(t, "IF;")
	if err != nil {
		return "", err
	}

	text := string(resp)
	if len(text) < c.ModeOffset+2 || text[:2] != "IF" {
		return "", fmt.Errorf("%w: kenwood IF response %q", ErrMalformedResponse, text)
	}

	code := text[c.ModeOffset : c.ModeOffset+2]
	mode, ok := kenwoodModeCodes[code]
	if !ok {
		return "", fmt.Errorf("%w: kenwood IF mode code %q", ErrMalformedResponse, code)
	}
	return mode, nil
}

// SetMode writes MD<code>; and verifies by reading the mode back. A single
// mismatch gets one retry before the operation is reported failed; radios
// occasionally drop the first MD while switching filters.
func (c *kenwoodCodec) SetMode(t Transport, mode Mode) error {
	code, ok := kenwoodModeNames[mode]
	if !ok {
		return fmt.Errorf("%w: %q has no kenwood MD code", ErrUnknownMode, mode)
	}
	cmd := fmt.Sprintf("MD%s;", code)

	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		if err := t.ResetInput(); err != nil {
			return err
		}
		if err := t.Write([]byte(cmd)); err != nil {
			return err
		}
		time.Sleep(c.Settle)

		actual, err := c.GetMode(t)
		if err != nil {
			lastErr = err
			continue
		}
		if actual == mode {
			return nil
		}
		lastErr = fmt.Errorf("%w: mode read back %q, wanted %q", ErrMalformedResponse, actual, mode)
		logging.Warnf("cat", "kenwood MD verification mismatch (attempt %d): got %s, want %s", attempt+1, actual, mode)
	}
	return lastErr
}

// exchange runs one command/response round trip: flush stale input, write,
// wait the settle delay, read. The delay sits after the write because the
// radio needs the time to prepare its reply; delaying before the write buys
// nothing. Zero bytes after the full window is a timeout.
func (c *kenwoodCodec) exchange(t Transport, cmd string) ([]byte, error) {
	if err := t.ResetInput(); err != nil {
		return nil, err
	}
	if err := t.Write([]byte(cmd)); err != nil {
		return nil, err
	}
	time.Sleep(c.Settle)

	resp, err := t.ReadAvailable(kenwoodReadMax, c.ReadTimeout)
	if err != nil {
		return nil, err
	}
	if len(resp) == 0 {
		return nil, fmt.Errorf("%w: kenwood %q", ErrTimeout, cmd)
	}
	return resp, nil
}

func extractDigits(raw []byte) string {
	digits := make([]byte, 0, len(raw))
	for _, b := range raw {
		if b >= '0' && b <= '9' {
			digits = append(digits, b)
		}
	}
	return string(digits)
}

package cat

import (
	"fmt"
	"time"
)

// yaesuCodec speaks the classic Yaesu 5-byte binary protocol: every command
// is four parameter bytes plus an opcode, and the status reply packs the
// frequency as big-endian BCD digit pairs.
type yaesuCodec struct {
	ReadTimeout time.Duration
}

const (
	yaesuOpSetFreq    = 0x01
	yaesuOpReadStatus = 0x03
	yaesuOpSetMode    = 0x07

	// Status replies are 5 bytes on most models; some append padding, so
	// reads allow for a longer frame and parse the head.
	yaesuStatusLen = 5
	yaesuReadMax   = 28

	// The status frame's frequency field counts in 10 Hz steps.
	yaesuFreqUnitHz = 10
)

// GetFrequency sends the read-status opcode and decodes the four BCD bytes
// at the head of the reply, most significant byte first.
func (c *yaesuCodec) GetFrequency(t Transport) (int64, error) {
	resp, err := c.readStatus(t)
	if err != nil {
		return 0, err
	}

	var freq int64
	for _, b := range resp[:4] {
		freq = freq*100 + int64(bcdDecode(b))
	}
	return freq * yaesuFreqUnitHz, nil
}

// SetFrequency packs hz into four BCD bytes followed by the set opcode.
func (c *yaesuCodec) SetFrequency(t Transport, hz int64) error {
	count := hz / yaesuFreqUnitHz
	frame := []byte{
		bcdEncode(int(count / 1_000_000 % 100)),
		bcdEncode(int(count / 10_000 % 100)),
		bcdEncode(int(count / 100 % 100)),
		bcdEncode(int(count % 100)),
		yaesuOpSetFreq,
	}

	if err := t.ResetInput(); err != nil {
		return err
	}
	return t.Write(frame)
}

// GetMode reads the status frame and maps its fifth byte through the Yaesu
// mode table.
func (c *yaesuCodec) GetMode(t Transport) (Mode, error) {
	resp, err := c.readStatus(t)
	if err != nil {
		return "", err
	}

	mode, ok := yaesuModeCodes[resp[4]]
	if !ok {
		return "", fmt.Errorf("%w: yaesu mode byte 0x%02X", ErrMalformedResponse, resp[4])
	}
	return mode, nil
}

// SetMode sends the mode byte in the first parameter slot with the set-mode
// opcode. The radio does not acknowledge.
func (c *yaesuCodec) SetMode(t Transport, mode Mode) error {
	code, ok := yaesuModeBytes[mode]
	if !ok {
		return fmt.Errorf("%w: %q has no yaesu mode byte", ErrUnknownMode, mode)
	}

	if err := t.ResetInput(); err != nil {
		return err
	}
	return t.Write([]byte{code, 0x00, 0x00, 0x00, yaesuOpSetMode})
}

func (c *yaesuCodec) readStatus(t Transport) ([]byte, error) {
	if err := t.ResetInput(); err != nil {
		return nil, err
	}
	if err := t.Write([]byte{0x00, 0x00, 0x00, 0x00, yaesuOpReadStatus}); err != nil {
		return nil, err
	}

	resp, err := t.ReadAvailable(yaesuReadMax, c.ReadTimeout)
	if err != nil {
		return nil, err
	}
	if len(resp) == 0 {
		return nil, fmt.Errorf("%w: yaesu read status", ErrTimeout)
	}
	if len(resp) < yaesuStatusLen {
		return nil, fmt.Errorf("%w: yaesu status frame %d bytes", ErrMalformedResponse, len(resp))
	}
	return resp, nil
}

package cat

import (
	"bytes"
	"fmt"
	"time"
)

// icomCodec speaks Icom CI-V: length-delimited frames addressed to the
// radio's bus address, bracketed by FE FE ... FD. Frequency fields are BCD
// in little-endian byte order, the opposite of Yaesu.
type icomCodec struct {
	Address     byte // the radio's CI-V bus address
	ReadTimeout time.Duration
}

const (
	civPreamble   = 0xFE
	civTerminator = 0xFD
	civController = 0xE0 // our address on the bus

	civCmdReadFreq = 0x03
	civCmdReadMode = 0x04
	civCmdSetFreq  = 0x05
	civCmdSetMode  = 0x06

	civReadMax = 32
)

// GetFrequency asks for the operating frequency and decodes the 5-byte
// little-endian BCD field in the reply.
func (c *icomCodec) GetFrequency(t Transport) (int64, error) {
	payload, err := c.exchange(t, civCmdReadFreq, nil)
	if err != nil {
		return 0, err
	}
	if len(payload) < 5 {
		return 0, fmt.Errorf("%w: CI-V frequency payload %d bytes", ErrMalformedResponse, len(payload))
	}

	var freq, scale int64 = 0, 1
	for _, b := range payload[:5] {
		freq += int64(bcdDecode(b)) * scale
		scale *= 100
	}
	return freq, nil
}

// SetFrequency sends the set-frequency command with hz packed as five BCD
// bytes, least significant pair first.
func (c *icomCodec) SetFrequency(t Transport, hz int64) error {
	payload := make([]byte, 5)
	for i := range payload {
		payload[i] = bcdEncode(int(hz % 100))
		hz /= 100
	}

	frame := c.frame(civCmdSetFreq, payload)
	if err := t.ResetInput(); err != nil {
		return err
	}
	return t.Write(frame)
}

// GetMode asks for the operating mode and maps the first payload byte
// through the CI-V mode table.
func (c *icomCodec) GetMode(t Transport) (Mode, error) {
	payload, err := c.exchange(t, civCmdReadMode, nil)
	if err != nil {
		return "", err
	}
	if len(payload) < 1 {
		return "", fmt.Errorf("%w: CI-V mode payload empty", ErrMalformedResponse)
	}

	mode, ok := icomModeCodes[payload[0]]
	if !ok {
		return "", fmt.Errorf("%w: CI-V mode byte 0x%02X", ErrMalformedResponse, payload[0])
	}
	return mode, nil
}

// SetMode sends set-mode with the mode byte and the default filter.
func (c *icomCodec) SetMode(t Transport, mode Mode) error {
	code, ok := icomModeBytes[mode]
	if !ok {
		return fmt.Errorf("%w: %q has no CI-V mode byte", ErrUnknownMode, mode)
	}

	frame := c.frame(civCmdSetMode, []byte{code, 0x01})
	if err := t.ResetInput(); err != nil {
		return err
	}
	return t.Write(frame)
}

// frame wraps cmd and payload in CI-V framing addressed to the radio.
func (c *icomCodec) frame(cmd byte, payload []byte) []byte {
	frame := []byte{civPreamble, civPreamble, c.Address, civController, cmd}
	frame = append(frame, payload...)
	return append(frame, civTerminator)
}

// exchange sends a command frame and hunts the reply stream for the frame
// answering it. CI-V is a shared bus with transceive echoes, so the read
// may contain our own command first; frames not addressed to the controller
// or carrying a different command byte are skipped.
func (c *icomCodec) exchange(t Transport, cmd byte, payload []byte) ([]byte, error) {
	if err := t.ResetInput(); err != nil {
		return nil, err
	}
	if err := t.Write(c.frame(cmd, payload)); err != nil {
		return nil, err
	}

	resp, err := t.ReadAvailable(civReadMax, c.ReadTimeout)
	if err != nil {
		return nil, err
	}
	if len(resp) == 0 {
		return nil, fmt.Errorf("%w: CI-V command 0x%02X", ErrTimeout, cmd)
	}

	for len(resp) > 0 {
		start := bytes.Index(resp, []byte{civPreamble, civPreamble})
		if start < 0 {
			break
		}
		resp = resp[start:]

		end := bytes.IndexByte(resp, civTerminator)
		if end < 0 {
			break
		}
		frame := resp[:end]
		resp = resp[end+1:]

		// FE FE to from cmd payload...
		if len(frame) < 5 {
			continue
		}
		if frame[2] != civController || frame[4] != cmd {
			// Our own echo or traffic for another bus member.
			continue
		}
		return frame[5:], nil
	}

	return nil, fmt.Errorf("%w: no CI-V reply frame for command 0x%02X", ErrMalformedResponse, cmd)
}

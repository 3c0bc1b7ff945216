package cat

import (
	"time"
)

// fakeTransport scripts a radio for codec tests: every ReadAvailable pops
// the next canned response, and writes are recorded for inspection.
type fakeTransport struct {
	writes    [][]byte
	responses [][]byte
	resets    int
	closed    bool
}

func (f *fakeTransport) Write(p []byte) error {
	f.writes = append(f.writes, append([]byte(nil), p...))
	return nil
}

func (f *fakeTransport) ReadAvailable(max int, timeout time.Duration) ([]byte, error) {
	if len(f.responses) == 0 {
		return nil, nil
	}
	r := f.responses[0]
	f.responses = f.responses[1:]
	if len(r) > max {
		r = r[:max]
	}
	return r, nil
}

func (f *fakeTransport) ResetInput() error {
	f.resets++
	return nil
}

func (f *fakeTransport) Close() error {
	f.closed = true
	return nil
}

func (f *fakeTransport) lastWrite() []byte {
	if len(f.writes) == 0 {
		return nil
	}
	return f.writes[len(f.writes)-1]
}

// testKenwood returns a kenwood codec with test-friendly timing.
func testKenwood(digits int) *kenwoodCodec {
	return &kenwoodCodec{
		Digits:      digits,
		UnitHz:      1,
		ModeOffset:  20,
		Settle:      time.Millisecond,
		ReadTimeout: 10 * time.Millisecond,
	}
}

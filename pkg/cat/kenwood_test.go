package cat

import (
	"errors"
	"testing"
)

func TestKenwoodGetFrequency(t *testing.T) {
	t.Run("Clean Response", func(t *testing.T) {
		ft := &fakeTransport{responses: [][]byte{[]byte("FA014304000;")}}
		freq, err := testKenwood(9).GetFrequency(ft)
		if err != nil {
			t.Fatalf("Expected no error, got: %v", err)
		}
		if freq != 14_304_000 {
			t.Errorf("Expected 14304000 Hz, got %d", freq)
		}
		if string(ft.writes[0]) != "FA;" {
			t.Errorf("Expected FA; command, got %q", ft.writes[0])
		}
		if ft.resets == 0 {
			t.Error("Expected input buffer flush before the exchange")
		}
	})

	t.Run("Echo And Garbage", func(t *testing.T) {
		// Some radios echo the command and wrap the reply in noise; only
		// the digits matter.
		ft := &fakeTransport{responses: [][]byte{[]byte("FA;\r\nFA014074000;\x00")}}
		freq, err := testKenwood(9).GetFrequency(ft)
		if err != nil {
			t.Fatalf("Expected no error, got: %v", err)
		}
		if freq != 14_074_000 {
			t.Errorf("Expected 14074000 Hz, got %d", freq)
		}
	})

	t.Run("Eleven Digit Format", func(t *testing.T) {
		ft := &fakeTransport{responses: [][]byte{[]byte("FA00007243000;")}}
		freq, err := testKenwood(11).GetFrequency(ft)
		if err != nil {
			t.Fatalf("Expected no error, got: %v", err)
		}
		if freq != 7_243_000 {
			t.Errorf("Expected 7243000 Hz, got %d", freq)
		}
	})

	t.Run("Empty Read Is Timeout", func(t *testing.T) {
		ft := &fakeTransport{}
		_, err := testKenwood(9).GetFrequency(ft)
		if !errors.Is(err, ErrTimeout) {
			t.Errorf("Expected ErrTimeout, got: %v", err)
		}
	})

	t.Run("Too Few Digits Is Malformed", func(t *testing.T) {
		ft := &fakeTransport{responses: [][]byte{[]byte("FA1234;")}}
		_, err := testKenwood(9).GetFrequency(ft)
		if !errors.Is(err, ErrMalformedResponse) {
			t.Errorf("Expected ErrMalformedResponse, got: %v", err)
		}
	})
}

func TestKenwoodSetFrequency(t *testing.T) {
	t.Run("Nine Digit Literal", func(t *testing.T) {
		ft := &fakeTransport{}
		if err := testKenwood(9).SetFrequency(ft, 14_304_000); err != nil {
			t.Fatalf("Expected no error, got: %v", err)
		}
		if got := string(ft.writes[0]); got != "FA014304000;" {
			t.Errorf("Expected FA014304000; got %q", got)
		}
	})

	t.Run("Eleven Digit Padding", func(t *testing.T) {
		ft := &fakeTransport{}
		if err := testKenwood(11).SetFrequency(ft, 7_243_000); err != nil {
			t.Fatalf("Expected no error, got: %v", err)
		}
		if got := string(ft.writes[0]); got != "FA00007243000;" {
			t.Errorf("Expected FA00007243000; got %q", got)
		}
	})
}

func TestKenwoodFrequencyRoundTrip(t *testing.T) {
	codec := testKenwood(9)
	for _, freq := range []int64{1_840_000, 7_074_000, 14_304_000, 28_074_000, 146_520_000} {
		ft := &fakeTransport{}
		if err := codec.SetFrequency(ft, freq); err != nil {
			t.Fatalf("SetFrequency(%d): %v", freq, err)
		}

		// Feed the written command back as if the radio reported it.
		rt := &fakeTransport{responses: [][]byte{ft.writes[0]}}
		got, err := codec.GetFrequency(rt)
		if err != nil {
			t.Fatalf("GetFrequency after SetFrequency(%d): %v", freq, err)
		}
		if got != freq {
			t.Errorf("Round trip %d Hz came back %d Hz", freq, got)
		}
	}
}

func TestKenwoodGetMode(t *testing.T) {
	// IF status line with the mode code at printable positions 20-21.
	ifResponse := "IF001018145000+000000200000;"

	t.Run("Parses Mode Code", func(t *testing.T) {
		ft := &fakeTransport{responses: [][]byte{[]byte(ifResponse)}}
		mode, err := testKenwood(9).GetMode(ft)
		if err != nil {
			t.Fatalf("Expected no error, got: %v", err)
		}
		if mode != ModeUSB {
			t.Errorf("Expected USB, got %q", mode)
		}
		if string(ft.writes[0]) != "IF;" {
			t.Errorf("Expected IF; command, got %q", ft.writes[0])
		}
	})

	t.Run("Offset Is A Parameter", func(t *testing.T) {
		codec := testKenwood(9)
		codec.ModeOffset = 22
		ft := &fakeTransport{responses: [][]byte{[]byte("IF00101814500000000000" + "01" + "0000;")}}
		mode, err := codec.GetMode(ft)
		if err != nil {
			t.Fatalf("Expected no error, got: %v", err)
		}
		if mode != ModeLSB {
			t.Errorf("Expected LSB, got %q", mode)
		}
	})

	t.Run("Short Response Is Malformed", func(t *testing.T) {
		ft := &fakeTransport{responses: [][]byte{[]byte("IF0010;")}}
		_, err := testKenwood(9).GetMode(ft)
		if !errors.Is(err, ErrMalformedResponse) {
			t.Errorf("Expected ErrMalformedResponse, got: %v", err)
		}
	})

	t.Run("Unknown Mode Code Is Malformed", func(t *testing.T) {
		ft := &fakeTransport{responses: [][]byte{[]byte("IF001018145000+000000ZZ0000;")}}
		_, err := testKenwood(9).GetMode(ft)
		if !errors.Is(err, ErrMalformedResponse) {
			t.Errorf("Expected ErrMalformedResponse, got: %v", err)
		}
	})
}

func TestKenwoodSetMode(t *testing.T) {
	usbStatus := []byte("IF001018145000+000000200000;") // mode code 02 = USB
	lsbStatus := []byte("IF001018145000+000000100000;") // mode code 01 = LSB

	t.Run("Verified First Try", func(t *testing.T) {
		ft := &fakeTransport{responses: [][]byte{usbStatus}}
		if err := testKenwood(9).SetMode(ft, ModeUSB); err != nil {
			t.Fatalf("Expected no error, got: %v", err)
		}
		if string(ft.writes[0]) != "MD02;" {
			t.Errorf("Expected MD02; got %q", ft.writes[0])
		}
		if len(ft.writes) != 2 { // MD02; then IF;
			t.Errorf("Expected 2 writes, got %d: %q", len(ft.writes), ft.writes)
		}
	})

	t.Run("One Retry On Mismatch", func(t *testing.T) {
		// First read-back reports the old mode, second reports the new one.
		ft := &fakeTransport{responses: [][]byte{lsbStatus, usbStatus}}
		if err := testKenwood(9).SetMode(ft, ModeUSB); err != nil {
			t.Fatalf("Expected success after one retry, got: %v", err)
		}
		if len(ft.writes) != 4 { // MD02; IF; MD02; IF;
			t.Errorf("Expected 4 writes, got %d: %q", len(ft.writes), ft.writes)
		}
	})

	t.Run("Exactly One Retry Then Failure", func(t *testing.T) {
		ft := &fakeTransport{responses: [][]byte{lsbStatus, lsbStatus, usbStatus}}
		err := testKenwood(9).SetMode(ft, ModeUSB)
		if err == nil {
			t.Fatal("Expected failure after the single retry")
		}
		// Two attempts only; the third canned response must never be read.
		if len(ft.writes) != 4 {
			t.Errorf("Expected 4 writes, got %d: %q", len(ft.writes), ft.writes)
		}
		if len(ft.responses) != 1 {
			t.Errorf("Expected 1 unread response, got %d", len(ft.responses))
		}
	})

	t.Run("Unknown Mode", func(t *testing.T) {
		ft := &fakeTransport{}
		err := testKenwood(9).SetMode(ft, Mode("C4FM"))
		if !errors.Is(err, ErrUnknownMode) {
			t.Errorf("Expected ErrUnknownMode, got: %v", err)
		}
		if len(ft.writes) != 0 {
			t.Error("Expected no writes for an unmappable mode")
		}
	})
}

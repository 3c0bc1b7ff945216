package protocol

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestStatusJSON(t *testing.T) {
	t.Run("Disconnected Omits Radio Fields", func(t *testing.T) {
		data, err := json.Marshal(Status{State: "disconnected"})
		if err != nil {
			t.Fatalf("Expected no error, got: %v", err)
		}

		s := string(data)
		if !strings.Contains(s, `"state":"disconnected"`) {
			t.Errorf("Expected state field, got: %s", s)
		}
		for _, absent := range []string{"model", "port", "baud", "mode"} {
			if strings.Contains(s, `"`+absent+`"`) {
				t.Errorf("Expected %s omitted when empty, got: %s", absent, s)
			}
		}
		// Frequency is always present so clients need no existence check.
		if !strings.Contains(s, `"frequency":0`) {
			t.Errorf("Expected frequency field, got: %s", s)
		}
	})

	t.Run("Connected Round Trip", func(t *testing.T) {
		in := Status{
			State:     "connected",
			Model:     "Yaesu FT-DX10",
			Port:      "/dev/ttyUSB0",
			Baud:      38400,
			Frequency: 14_074_000,
			FreqMHz:   14.074,
			Mode:      "DATA-U",
		}
		data, err := json.Marshal(in)
		if err != nil {
			t.Fatalf("Expected no error, got: %v", err)
		}

		var out Status
		if err := json.Unmarshal(data, &out); err != nil {
			t.Fatalf("Expected no error, got: %v", err)
		}
		if out != in {
			t.Errorf("Round trip mismatch: got %+v, want %+v", out, in)
		}
	})
}

func TestRequestDecoding(t *testing.T) {
	t.Run("Enable Request", func(t *testing.T) {
		var req EnableRequest
		payload := `{"model": "Icom IC-7300", "port": "/dev/ttyUSB0"}`
		if err := json.Unmarshal([]byte(payload), &req); err != nil {
			t.Fatalf("Expected no error, got: %v", err)
		}
		if req.Model != "Icom IC-7300" {
			t.Errorf("Expected model Icom IC-7300, got: %s", req.Model)
		}
		if req.Baud != 0 {
			t.Errorf("Expected omitted baud to decode as 0 (auto), got: %d", req.Baud)
		}
	})

	t.Run("Tune Request Without Mode", func(t *testing.T) {
		var req TuneRequest
		payload := `{"frequency": 7032500}`
		if err := json.Unmarshal([]byte(payload), &req); err != nil {
			t.Fatalf("Expected no error, got: %v", err)
		}
		if req.Frequency != 7_032_500 {
			t.Errorf("Expected frequency 7032500, got: %d", req.Frequency)
		}
		if req.Mode != "" {
			t.Errorf("Expected empty mode, got: %s", req.Mode)
		}
	})
}

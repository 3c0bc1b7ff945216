// Package protocol holds the JSON types shared by the hunterd HTTP API and
// its clients.
package protocol

import "time"

// Status is the daemon's view of the CAT connection, as served by
// GET /api/status and pushed over the websocket.
type Status struct {
	State     string  `json:"state"` // disconnected / connecting / connected
	Model     string  `json:"model,omitempty"`
	Port      string  `json:"port,omitempty"`
	Baud      int     `json:"baud,omitempty"`
	Frequency int64   `json:"frequency"`
	FreqMHz   float64 `json:"frequency_mhz"`
	Mode      string  `json:"mode,omitempty"`
	Callsign  string  `json:"callsign,omitempty"`
	Grid      string  `json:"grid,omitempty"`
	Uptime    string  `json:"uptime,omitempty"`
	Version   string  `json:"version,omitempty"`
}

// EnableRequest asks the daemon to connect to a radio. Baud 0 requests
// auto-detection.
type EnableRequest struct {
	Model string `json:"model" binding:"required"`
	Port  string `json:"port" binding:"required"`
	Baud  int    `json:"baud"`
}

// TuneRequest asks the daemon to set frequency and mode, the composite
// operation behind clicking a spot. Mode may be generic (SSB, CW, FT8, ...)
// or radio-native.
type TuneRequest struct {
	Frequency int64  `json:"frequency" binding:"required"`
	Mode      string `json:"mode"`
}

// TuneEntry is one row of the tune history.
type TuneEntry struct {
	ID        int64     `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Model     string    `json:"model"`
	Frequency int64     `json:"frequency"`
	Mode      string    `json:"mode"`
}

// ErrorResponse is the API error envelope.
type ErrorResponse struct {
	Error string `json:"error"`
}

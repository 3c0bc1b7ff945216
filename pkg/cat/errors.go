package cat

import "errors"

// Sentinel errors for CAT operations. Callers match with errors.Is; wrapped
// errors carry the port, model, or raw response that triggered them.
var (
	// ErrPortUnavailable means the serial port does not exist or is held
	// exclusively by another process. Fatal to the connection attempt.
	ErrPortUnavailable = errors.New("serial port unavailable")

	// ErrUnknownModel means the radio model is not in the registry.
	ErrUnknownModel = errors.New("unknown radio model")

	// ErrTimeout means the radio sent no bytes within the read window.
	// Recoverable; the caller may retry the whole operation.
	ErrTimeout = errors.New("no response within read timeout")

	// ErrMalformedResponse means bytes arrived but could not be parsed
	// into the expected frame shape. Recoverable, same as ErrTimeout;
	// the distinction matters only in logs.
	ErrMalformedResponse = errors.New("malformed response")

	// ErrNoResponse means baud auto-detection exhausted every candidate
	// rate without a parseable reply. Fatal to the connect attempt.
	ErrNoResponse = errors.New("no response at any candidate baud rate")

	// ErrNotConnected means an operation was invoked without an open,
	// verified connection.
	ErrNotConnected = errors.New("radio not connected")

	// ErrUnknownMode means a mode has no code in the selected protocol's
	// command set.
	ErrUnknownMode = errors.New("mode not supported by protocol")
)

package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/k3dep/hunterd/pkg/cat"
	"github.com/k3dep/hunterd/pkg/config"
)

// answerOnceTransport replies to the first read (the connect probe) and is
// silent afterwards, so every poll on it fails.
type answerOnceTransport struct {
	response []byte
	answered bool
}

func (t *answerOnceTransport) Write(p []byte) error { return nil }

func (t *answerOnceTransport) ReadAvailable(max int, timeout time.Duration) ([]byte, error) {
	if t.answered {
		return nil, nil
	}
	t.answered = true
	return t.response, nil
}

func (t *answerOnceTransport) ResetInput() error { return nil }
func (t *answerOnceTransport) Close() error      { return nil }

func newTestDaemon(t *testing.T) *HunterDaemon {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "hunterd-daemon-test")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	cfg := &config.Config{}
	cfg.Station.Callsign = "K3DEP"
	cfg.CAT.ReadTimeout = 10
	cfg.Web.BindAddress = "127.0.0.1"
	cfg.Web.Port = 0
	cfg.Storage.DatabasePath = filepath.Join(tempDir, "test.db")
	cfg.Storage.MaxEntries = 100

	d, err := NewHunterDaemon(cfg)
	if err != nil {
		t.Fatalf("Failed to create daemon: %v", err)
	}
	t.Cleanup(func() { d.store.Close() })

	// 14.074 MHz Yaesu status frame; polls after the probe time out.
	d.controller.SetPortOpener(func(port string, baud int, dtr, rts bool) (cat.Transport, error) {
		return &answerOnceTransport{response: []byte{0x01, 0x40, 0x74, 0x00, 0x02}}, nil
	})
	return d
}

// Re-enabling through the API while the poll loop is counting failures must
// be safe: the handler resets the failure counter the loop increments.
func TestEnableWhilePolling(t *testing.T) {
	d := newTestDaemon(t)

	if err := d.controller.Enable("Generic Yaesu", "/dev/ttyUSB0", 4800); err != nil {
		t.Fatalf("Failed to enable: %v", err)
	}

	d.wg.Add(1)
	go d.pollLoop(time.Millisecond)

	body := []byte(`{"model": "Generic Yaesu", "port": "/dev/ttyUSB0", "baud": 4800}`)
	for i := 0; i < 20; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/enable", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		d.webServer.Handler.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Fatalf("Enable %d: expected 200, got %d: %s", i, w.Code, w.Body.String())
		}
		time.Sleep(time.Millisecond)
	}

	d.cancel()
	d.wg.Wait()

	st := d.controller.Status()
	if st.State != cat.StateConnected {
		t.Errorf("Expected connected after re-enables, got: %s", st.State)
	}
	if n := d.pollFailures.Load(); n < 0 {
		t.Errorf("Poll failure counter went negative: %d", n)
	}
	d.controller.Disable()
}

func TestPollLoopCountsConsecutiveFailures(t *testing.T) {
	d := newTestDaemon(t)

	if err := d.controller.Enable("Generic Yaesu", "/dev/ttyUSB0", 4800); err != nil {
		t.Fatalf("Failed to enable: %v", err)
	}

	d.wg.Add(1)
	go d.pollLoop(time.Millisecond)

	deadline := time.Now().Add(time.Second)
	for d.pollFailures.Load() < pollFailureLimit {
		if time.Now().After(deadline) {
			t.Fatalf("Expected at least %d poll failures, got: %d", pollFailureLimit, d.pollFailures.Load())
		}
		time.Sleep(time.Millisecond)
	}

	d.cancel()
	d.wg.Wait()

	// Failures never tear the connection down; the next tick retries.
	if st := d.controller.Status(); st.State != cat.StateConnected {
		t.Errorf("Expected connection to survive poll failures, got: %s", st.State)
	}
	d.controller.Disable()
}

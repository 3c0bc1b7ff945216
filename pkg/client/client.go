// Package client is a thin HTTP client for the hunterd API, used by
// huntctl and anything else that wants to drive the daemon.
package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/k3dep/hunterd/pkg/protocol"
)

// Client talks to a running hunterd over its HTTP API.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a client for the daemon at baseURL, e.g. "http://127.0.0.1:8080".
func New(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		// Enable with baud auto-detection can take several seconds while
		// every candidate rate times out.
		http: &http.Client{Timeout: 30 * time.Second},
	}
}

// Status fetches the daemon status.
func (c *Client) Status() (*protocol.Status, error) {
	var status protocol.Status
	if err := c.get("/api/status", &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// Radios fetches the supported radio model names.
func (c *Client) Radios() ([]string, error) {
	var resp struct {
		Radios []string `json:"radios"`
	}
	if err := c.get("/api/radios", &resp); err != nil {
		return nil, err
	}
	return resp.Radios, nil
}

// Ports fetches the serial ports the daemon can see.
func (c *Client) Ports() ([]string, error) {
	var resp struct {
		Ports []string `json:"ports"`
	}
	if err := c.get("/api/ports", &resp); err != nil {
		return nil, err
	}
	return resp.Ports, nil
}

// Enable connects the daemon to a radio. Baud 0 requests auto-detection.
func (c *Client) Enable(model, port string, baud int) (*protocol.Status, error) {
	var status protocol.Status
	req := protocol.EnableRequest{Model: model, Port: port, Baud: baud}
	if err := c.post("/api/enable", req, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// Disable closes the daemon's radio connection.
func (c *Client) Disable() (*protocol.Status, error) {
	var status protocol.Status
	if err := c.post("/api/disable", nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// Tune sets frequency and mode in one call.
func (c *Client) Tune(frequency int64, mode string) (*protocol.Status, error) {
	var status protocol.Status
	req := protocol.TuneRequest{Frequency: frequency, Mode: mode}
	if err := c.post("/api/tune", req, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// History fetches recent tune-history rows.
func (c *Client) History(limit int) ([]protocol.TuneEntry, error) {
	var resp struct {
		History []protocol.TuneEntry `json:"history"`
	}
	if err := c.get(fmt.Sprintf("/api/history?limit=%d", limit), &resp); err != nil {
		return nil, err
	}
	return resp.History, nil
}

func (c *Client) get(path string, out interface{}) error {
	resp, err := c.http.Get(c.baseURL + path)
	if err != nil {
		return fmt.Errorf("request %s: %w", path, err)
	}
	defer resp.Body.Close()
	return decodeResponse(path, resp, out)
}

func (c *Client) post(path string, body, out interface{}) error {
	var payload io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request %s: %w", path, err)
		}
		payload = bytes.NewReader(data)
	}

	resp, err := c.http.Post(c.baseURL+path, "application/json", payload)
	if err != nil {
		return fmt.Errorf("request %s: %w", path, err)
	}
	defer resp.Body.Close()
	return decodeResponse(path, resp, out)
}

func decodeResponse(path string, resp *http.Response, out interface{}) error {
	if resp.StatusCode != http.StatusOK {
		var apiErr protocol.ErrorResponse
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil && apiErr.Error != "" {
			return fmt.Errorf("%s: %s", path, apiErr.Error)
		}
		return fmt.Errorf("%s: HTTP %d", path, resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response %s: %w", path, err)
	}
	return nil
}

package main

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/k3dep/hunterd/pkg/cat"
	"github.com/k3dep/hunterd/pkg/logging"
	"github.com/k3dep/hunterd/pkg/protocol"
)

// handleGetStatus returns the CAT connection state and last known
// frequency/mode.
func (d *HunterDaemon) handleGetStatus(c *gin.Context) {
	c.JSON(http.StatusOK, d.status())
}

// handleGetRadios returns the registry's model names.
func (d *HunterDaemon) handleGetRadios(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"radios": d.controller.Registry().Models()})
}

// handleGetPorts returns the system's serial ports.
func (d *HunterDaemon) handleGetPorts(c *gin.Context) {
	ports, err := cat.ListPorts()
	if err != nil {
		c.JSON(http.StatusInternalServerError, protocol.ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ports": ports})
}

// handleEnable connects to a radio, auto-detecting baud when the request
// asks for baud 0.
func (d *HunterDaemon) handleEnable(c *gin.Context) {
	var req protocol.EnableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, protocol.ErrorResponse{Error: err.Error()})
		return
	}

	if err := d.controller.Enable(req.Model, req.Port, req.Baud); err != nil {
		c.JSON(catErrorStatus(err), protocol.ErrorResponse{Error: err.Error()})
		return
	}

	d.pollFailures.Store(0)
	c.JSON(http.StatusOK, d.status())
}

// handleDisable closes the CAT connection.
func (d *HunterDaemon) handleDisable(c *gin.Context) {
	d.controller.Disable()
	c.JSON(http.StatusOK, d.status())
}

// handleTune sets frequency then mode and records the tune in the history
// store.
func (d *HunterDaemon) handleTune(c *gin.Context) {
	var req protocol.TuneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, protocol.ErrorResponse{Error: err.Error()})
		return
	}

	if err := d.controller.Tune(req.Frequency, cat.Mode(req.Mode)); err != nil {
		c.JSON(catErrorStatus(err), protocol.ErrorResponse{Error: err.Error()})
		return
	}

	st := d.controller.Status()
	if err := d.store.Record(st.Model, st.Frequency, string(st.Mode)); err != nil {
		logging.Warnf("daemon", "failed to record tune: %v", err)
	}

	c.JSON(http.StatusOK, d.status())
}

// handleGetHistory returns recent tune-history rows, newest first.
func (d *HunterDaemon) handleGetHistory(c *gin.Context) {
	limit := 50
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	entries, err := d.store.Recent(limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, protocol.ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"history": entries})
}

// catErrorStatus maps CAT errors onto HTTP statuses: configuration mistakes
// are 4xx, radio trouble is 502/504.
func catErrorStatus(err error) int {
	switch {
	case errors.Is(err, cat.ErrUnknownModel), errors.Is(err, cat.ErrUnknownMode):
		return http.StatusBadRequest
	case errors.Is(err, cat.ErrNotConnected):
		return http.StatusConflict
	case errors.Is(err, cat.ErrPortUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, cat.ErrTimeout), errors.Is(err, cat.ErrNoResponse):
		return http.StatusGatewayTimeout
	default:
		return http.StatusBadGateway
	}
}

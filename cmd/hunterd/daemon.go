package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/k3dep/hunterd/pkg/cat"
	"github.com/k3dep/hunterd/pkg/config"
	"github.com/k3dep/hunterd/pkg/logging"
	"github.com/k3dep/hunterd/pkg/protocol"
	"github.com/k3dep/hunterd/pkg/storage"
)

// pollFailureLimit is how many consecutive poll misses are logged as a link
// warning. The controller stays usable either way; the next tick retries.
const pollFailureLimit = 3

// HunterDaemon wires the CAT controller, tune-history store, and HTTP API
// together.
type HunterDaemon struct {
	config *config.Config
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	controller *cat.Controller
	store      *storage.TuneStore
	webServer  *http.Server
	hub        *statusHub

	startTime time.Time

	// pollFailures is shared between the poll loop and the enable handler,
	// which resets it on a fresh connection.
	pollFailures atomic.Int32
}

// NewHunterDaemon creates the daemon: registry (built-in plus optional YAML
// asset), controller with callbacks feeding the websocket hub, store, and
// web server.
func NewHunterDaemon(cfg *config.Config) (*HunterDaemon, error) {
	ctx, cancel := context.WithCancel(context.Background())

	d := &HunterDaemon{
		config: cfg,
		ctx:    ctx,
		cancel: cancel,
		hub:    newStatusHub(),
	}

	registry := cat.DefaultRegistry()
	if cfg.CAT.RegistryAsset != "" {
		loaded, err := cat.LoadRegistry(cfg.CAT.RegistryAsset)
		if err != nil {
			cancel()
			return nil, fmt.Errorf("failed to load radio registry: %w", err)
		}
		registry = loaded
	}

	d.controller = cat.NewController(registry)
	d.controller.SetReadTimeout(time.Duration(cfg.CAT.ReadTimeout) * time.Millisecond)
	d.controller.OnStateChange(func(s cat.State) {
		logging.Infof("daemon", "CAT state: %s", s)
		d.hub.broadcastState(s.String())
	})
	d.controller.OnStatus(func(freq int64, mode cat.Mode) {
		d.hub.broadcastStatus(freq, string(mode))
	})

	store, err := storage.NewTuneStore(cfg.Storage.DatabasePath, cfg.Storage.MaxEntries)
	if err != nil {
		cancel()
		return nil, err
	}
	d.store = store

	if err := d.setupWebServer(); err != nil {
		cancel()
		store.Close()
		return nil, fmt.Errorf("failed to setup web server: %w", err)
	}

	return d, nil
}

// Start brings up the web server, the poll loop, and, when configured, the
// initial CAT connection.
func (d *HunterDaemon) Start() error {
	d.startTime = time.Now()

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		logging.Infof("daemon", "web server listening on %s", d.webServer.Addr)
		if err := d.webServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Errorf("daemon", "web server: %v", err)
		}
	}()

	if d.config.CAT.Enabled {
		if err := d.controller.Enable(d.config.CAT.Model, d.config.CAT.Port, d.config.CAT.Baud); err != nil {
			// A radio that is off at startup is not fatal; the API can
			// enable it later.
			logging.Warnf("daemon", "initial CAT connect failed: %v", err)
		}
	}

	if d.config.CAT.PollInterval > 0 {
		d.wg.Add(1)
		go d.pollLoop(time.Duration(d.config.CAT.PollInterval) * time.Millisecond)
	}

	return nil
}

// Stop shuts everything down in reverse order.
func (d *HunterDaemon) Stop() error {
	d.cancel()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := d.webServer.Shutdown(ctx); err != nil {
		logging.Warnf("daemon", "web server shutdown: %v", err)
	}

	d.controller.Disable()
	d.hub.close()
	d.wg.Wait()

	return d.store.Close()
}

// pollLoop periodically reads frequency and mode for the status display.
// Failures are counted and logged, never a reason to stop polling.
func (d *HunterDaemon) pollLoop(interval time.Duration) {
	defer d.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-d.ctx.Done():
			return
		case <-ticker.C:
			if d.controller.Status().State != cat.StateConnected {
				continue
			}

			_, _, err := d.controller.Poll()
			if err != nil {
				if n := d.pollFailures.Add(1); n == pollFailureLimit {
					logging.Warnf("daemon", "%d consecutive poll failures, last: %v", n, err)
				}
				continue
			}
			d.pollFailures.Store(0)
		}
	}
}

func (d *HunterDaemon) setupWebServer() error {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	api := router.Group("/api")
	{
		api.GET("/status", d.handleGetStatus)
		api.GET("/radios", d.handleGetRadios)
		api.GET("/ports", d.handleGetPorts)
		api.POST("/enable", d.handleEnable)
		api.POST("/disable", d.handleDisable)
		api.POST("/tune", d.handleTune)
		api.GET("/history", d.handleGetHistory)
	}
	router.GET("/ws", d.handleWebSocket)

	d.webServer = &http.Server{
		Addr:    fmt.Sprintf("%s:%d", d.config.Web.BindAddress, d.config.Web.Port),
		Handler: router,
	}
	return nil
}

// status builds the API status snapshot from the controller.
func (d *HunterDaemon) status() protocol.Status {
	st := d.controller.Status()
	return protocol.Status{
		State:     st.State.String(),
		Model:     st.Model,
		Port:      st.Port,
		Baud:      st.Baud,
		Frequency: st.Frequency,
		FreqMHz:   float64(st.Frequency) / 1e6,
		Mode:      string(st.Mode),
		Callsign:  d.config.Station.Callsign,
		Grid:      d.config.Station.Grid,
		Uptime:    time.Since(d.startTime).Round(time.Second).String(),
		Version:   Version,
	}
}

package bridge

import (
	"context"
	"net"
	"net/http"
	"sync"
	"time"

	"appdna/internal/logging"
)

// shutdownTimeout bounds how long Stop waits for in-flight requests.
const shutdownTimeout = 5 * time.Second

// Manager owns the lifecycle of both bridge listeners. A bind failure on
// one bridge is logged and does not stop the other; operators free the port
// and restart.
type Manager struct {
	logger *logging.Logger

	dataHandler http.Handler
	dataAddr    string
	cmdHandler  http.Handler
	cmdAddr     string

	mu        sync.Mutex
	dataSrv   *http.Server
	cmdSrv    *http.Server
	dataBound string
	cmdBound  string
}

// NewManager creates a manager serving data on dataAddr and commands on
// cmdAddr. Addresses must be loopback; config validation enforces that
// before anything reaches here.
func NewManager(data *DataBridge, dataAddr string, cmd *CommandBridge, cmdAddr string, logger *logging.Logger) *Manager {
	return &Manager{
		logger:      logger,
		dataHandler: data.Handler(),
		dataAddr:    dataAddr,
		cmdHandler:  cmd.Handler(),
		cmdAddr:     cmdAddr,
	}
}

// Start binds and serves both bridges. Bind errors are logged per bridge
// and not returned; whichever listener bound keeps running.
func (m *Manager) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.dataSrv == nil && m.dataHandler != nil {
		m.dataSrv, m.dataBound = m.launch("data-bridge", m.dataAddr, m.dataHandler)
	}
	if m.cmdSrv == nil && m.cmdHandler != nil {
		m.cmdSrv, m.cmdBound = m.launch("command-bridge", m.cmdAddr, m.cmdHandler)
	}
}

// launch binds addr synchronously so bind failures surface immediately,
// then serves in the background. Returns a nil server when the bind failed.
func (m *Manager) launch(name, addr string, handler http.Handler) (*http.Server, string) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		m.logger.Error("Bridge failed to bind", map[string]interface{}{
			"bridge": name,
			"addr":   addr,
			"error":  err.Error(),
		})
		return nil, ""
	}

	// No read or write timeout: command handlers run to completion with
	// no deadline, and slow clients hold only their own connection.
	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	m.logger.Info("Bridge listening", map[string]interface{}{
		"bridge": name,
		"addr":   ln.Addr().String(),
	})

	go func() {
		if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			m.logger.Error("Bridge server stopped", map[string]interface{}{
				"bridge": name,
				"error":  err.Error(),
			})
		}
	}()

	return srv, ln.Addr().String()
}

// Stop shuts both listeners down gracefully. Safe to call when never
// started and safe to call twice.
func (m *Manager) Stop() {
	m.mu.Lock()
	dataSrv, cmdSrv := m.dataSrv, m.cmdSrv
	m.dataSrv, m.cmdSrv = nil, nil
	m.dataBound, m.cmdBound = "", ""
	m.mu.Unlock()

	for _, entry := range []struct {
		name string
		srv  *http.Server
	}{
		{"data-bridge", dataSrv},
		{"command-bridge", cmdSrv},
	} {
		if entry.srv == nil {
			continue
		}
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		if err := entry.srv.Shutdown(ctx); err != nil {
			m.logger.Warn("Bridge shutdown failed", map[string]interface{}{
				"bridge": entry.name,
				"error":  err.Error(),
			})
		} else {
			m.logger.Info("Bridge stopped", map[string]interface{}{
				"bridge": entry.name,
			})
		}
		cancel()
	}
}

// Dispose stops both bridges and drops the handlers. The manager cannot be
// restarted afterwards.
func (m *Manager) Dispose() {
	m.Stop()

	m.mu.Lock()
	m.dataHandler = nil
	m.cmdHandler = nil
	m.mu.Unlock()
}

// DataBoundAddr returns the address the data bridge actually bound, or ""
// when it is not listening.
func (m *Manager) DataBoundAddr() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.dataBound
}

// CommandBoundAddr returns the address the command bridge actually bound,
// or "" when it is not listening.
func (m *Manager) CommandBoundAddr() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cmdBound
}

// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"github.com/relabs-tech/njord/internal/sensors"
)

const (
	clientBuffer = 64
	writeWait    = time.Second
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for local development
	},
}

// WSMessage is pushed to every websocket client.
type WSMessage struct {
	Type      string                  `json:"type"` // sample, status, registers
	Sample    *samplePayload          `json:"sample,omitempty"`
	Status    *Status                 `json:"status,omitempty"`
	Registers []sensors.RegisterValue `json:"registers,omitempty"`
}

type wsClient struct {
	conn *websocket.Conn
	send chan []byte
}

// Monitor serves the live session over HTTP and websocket. OnSample and
// OnStatus are called from the sampling loop; handlers run on server
// goroutines.
type Monitor struct {
	mu        sync.RWMutex
	status    Status
	haveState bool
	registers []sensors.RegisterValue
	clients   map[*wsClient]struct{}
}

func NewMonitor() *Monitor {
	return &Monitor{clients: make(map[*wsClient]struct{})}
}

// Handler routes /ws, /api/status and /api/registers.
func (m *Monitor) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", m.handleWS)
	mux.HandleFunc("/api/status", m.handleStatus)
	mux.HandleFunc("/api/registers", m.handleRegisters)
	return mux
}

// Serve listens on addr until ctx is done.
func (m *Monitor) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: m.Handler()}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
		m.Close()
	}()
	log.Printf("monitor listening on %s", addr)
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// SetRegisters replaces the register snapshot and pushes it to clients.
func (m *Monitor) SetRegisters(regs []sensors.RegisterValue) {
	m.mu.Lock()
	m.registers = regs
	m.mu.Unlock()
	m.broadcast(WSMessage{Type: "registers", Registers: regs})
}

func (m *Monitor) OnSample(r sensors.Reading) {
	m.broadcast(WSMessage{Type: "sample", Sample: &samplePayload{
		Time:       r.Time(),
		ElapsedSec: r.Elapsed.Seconds(),
		Sample:     r.Sample,
	}})
}

func (m *Monitor) OnStatus(s Status) {
	m.mu.Lock()
	m.status = s
	m.haveState = true
	m.mu.Unlock()
	m.broadcast(WSMessage{Type: "status", Status: &s})
}

// broadcast never blocks; slow clients lose messages.
func (m *Monitor) broadcast(msg WSMessage) {
	payload, err := json.Marshal(msg)
	if err != nil {
		log.Printf("monitor: json marshal error: %v", err)
		return
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for c := range m.clients {
		select {
		case c.send <- payload:
		default:
			log.Debugf("monitor: dropping %s message for %s", msg.Type, c.conn.RemoteAddr())
		}
	}
}

// Close disconnects every websocket client.
func (m *Monitor) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for c := range m.clients {
		c.conn.Close()
	}
}

func (m *Monitor) snapshot() []WSMessage {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []WSMessage
	if m.haveState {
		s := m.status
		out = append(out, WSMessage{Type: "status", Status: &s})
	}
	return append(out, WSMessage{Type: "registers", Registers: m.registers})
}

func (m *Monitor) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("monitor: websocket upgrade error: %v", err)
		return
	}
	c := &wsClient{conn: conn, send: make(chan []byte, clientBuffer)}

	m.mu.Lock()
	m.clients[c] = struct{}{}
	m.mu.Unlock()
	defer func() {
		m.mu.Lock()
		delete(m.clients, c)
		close(c.send)
		m.mu.Unlock()
		conn.Close()
	}()

	// The snapshot goes out before the writer starts so it is always first.
	for _, msg := range m.snapshot() {
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(msg); err != nil {
			log.Printf("monitor: websocket write error: %v", err)
			return
		}
	}

	go func() {
		for payload := range c.send {
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				conn.Close()
				return
			}
		}
	}()

	// Clients only listen; reading detects the close.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Debugf("monitor: websocket error: %v", err)
			}
			return
		}
	}
}

func (m *Monitor) handleStatus(w http.ResponseWriter, r *http.Request) {
	m.mu.RLock()
	s, ok := m.status, m.haveState
	m.mu.RUnlock()
	if !ok {
		http.Error(w, "no data yet", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s); err != nil {
		log.Printf("json encode error: %v", err)
	}
}

func (m *Monitor) handleRegisters(w http.ResponseWriter, r *http.Request) {
	m.mu.RLock()
	regs := m.registers
	m.mu.RUnlock()
	if regs == nil {
		http.Error(w, "no data yet", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(regs); err != nil {
		log.Printf("json encode error: %v", err)
	}
}

package api

import (
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

// WSMessage is the envelope for agent->controller log streaming.
type WSMessage struct {
	Type    string      `json:"type"`              // e.g. agent_log
	Host    string      `json:"host,omitempty"`    // source agent
	Payload interface{} `json:"payload,omitempty"` // arbitrary JSON
}

// WSHub maintains agent connections keyed by host and fans their log lines
// out to UI subscribers.
type WSHub struct {
	upgrader websocket.Upgrader
	mu       sync.RWMutex
	agents   map[string]*websocket.Conn
	logSubs  map[string]map[*websocket.Conn]struct{} // host -> set of subscribers
}

func NewWSHub() *WSHub {
	return &WSHub{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		agents:  map[string]*websocket.Conn{},
		logSubs: map[string]map[*websocket.Conn]struct{}{},
	}
}

// HandleAgentWS upgrades and stores the connection for an agent; expects
// ?host=xxx.
func (h *WSHub) HandleAgentWS(w http.ResponseWriter, r *http.Request) {
	host := r.URL.Query().Get("host")
	if host == "" {
		http.Error(w, "host required", http.StatusBadRequest)
		return
	}
	c, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed host=%s err=%v", host, err)
		return
	}
	h.mu.Lock()
	if old, ok := h.agents[host]; ok {
		_ = old.Close()
	}
	h.agents[host] = c
	h.mu.Unlock()
	log.Printf("agent ws connected: %s", host)
	go h.readLoop(host, c)
}

func (h *WSHub) readLoop(host string, c *websocket.Conn) {
	defer func() {
		c.Close()
		h.mu.Lock()
		delete(h.agents, host)
		h.mu.Unlock()
		log.Printf("agent ws disconnected: %s", host)
	}()
	for {
		var msg WSMessage
		if err := c.ReadJSON(&msg); err != nil {
			return
		}
		if msg.Type == "agent_log" {
			h.fanoutLogs(host, msg.Payload)
		}
	}
}

// HandleUILogs lets a UI subscribe to one agent's live logs via WS.
func (h *WSHub) HandleUILogs(w http.ResponseWriter, r *http.Request) {
	host := r.URL.Query().Get("host")
	if host == "" {
		http.Error(w, "host required", http.StatusBadRequest)
		return
	}
	c, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	h.mu.Lock()
	if h.logSubs[host] == nil {
		h.logSubs[host] = map[*websocket.Conn]struct{}{}
	}
	h.logSubs[host][c] = struct{}{}
	h.mu.Unlock()
	log.Printf("ui log subscriber connected host=%s", host)
	go h.logSubLoop(host, c)
}

func (h *WSHub) fanoutLogs(host string, payload interface{}) {
	h.mu.RLock()
	subs := h.logSubs[host]
	h.mu.RUnlock()
	if len(subs) == 0 {
		return
	}
	for c := range subs {
		if err := c.WriteJSON(payload); err != nil {
			go h.closeSub(host, c)
		}
	}
}

func (h *WSHub) logSubLoop(host string, c *websocket.Conn) {
	defer h.closeSub(host, c)
	for {
		if _, _, err := c.NextReader(); err != nil {
			return
		}
	}
}

func (h *WSHub) closeSub(host string, c *websocket.Conn) {
	_ = c.Close()
	h.mu.Lock()
	if subs, ok := h.logSubs[host]; ok {
		delete(subs, c)
		if len(subs) == 0 {
			delete(h.logSubs, host)
		}
	}
	h.mu.Unlock()
	log.Printf("ui log subscriber disconnected host=%s", host)
}

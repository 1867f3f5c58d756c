package agent

import (
	"log"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// wsClient keeps a single ws connection to the controller and pushes
// remediation log lines to it, best effort.
type wsClient struct {
	mu       sync.Mutex
	conn     *websocket.Conn
	endpoint string
	token    string
	host     string
	logs     chan string
}

func newWSClient(controller, host, authToken string) *wsClient {
	if controller == "" || host == "" {
		return nil
	}
	u, err := url.Parse(controller)
	if err != nil {
		return nil
	}
	scheme := "ws"
	if u.Scheme == "https" {
		scheme = "wss"
	}
	u.Scheme = scheme
	u.Path = "/ws/agent"
	q := u.Query()
	q.Set("host", host)
	u.RawQuery = q.Encode()
	return &wsClient{
		endpoint: u.String(),
		token:    authToken,
		host:     host,
		logs:     make(chan string, 200),
	}
}

func (c *wsClient) start() {
	if c == nil {
		return
	}
	go c.loop()
	go c.flushLogs()
}

func (c *wsClient) loop() {
	for {
		header := http.Header{}
		if c.token != "" {
			header.Set("X-Auth-Token", c.token)
		}
		conn, resp, err := websocket.DefaultDialer.Dial(c.endpoint, header)
		if err != nil {
			status := 0
			if resp != nil {
				status = resp.StatusCode
			}
			log.Printf("ws dial failed: %v (url=%s status=%d)", err, c.endpoint, status)
			time.Sleep(5 * time.Second)
			continue
		}
		c.mu.Lock()
		c.conn = conn
		c.mu.Unlock()
		log.Printf("ws connected to controller url=%s", c.endpoint)
		c.readLoop(conn)
		c.mu.Lock()
		c.conn = nil
		c.mu.Unlock()
		log.Printf("ws disconnected, retrying in 5s")
		time.Sleep(5 * time.Second)
	}
}

// readLoop drains the connection; the controller does not send commands yet,
// but the read keeps ping/pong and close handling working.
func (c *wsClient) readLoop(conn *websocket.Conn) {
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// flushLogs periodically sends buffered log lines to the controller.
func (c *wsClient) flushLogs() {
	t := time.NewTicker(2 * time.Second)
	defer t.Stop()
	for range t.C {
		c.drainLogs()
	}
}

func (c *wsClient) drainLogs() {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		return
	}
	lines := []string{}
Loop:
	for i := 0; i < 50; i++ { // cap batch size
		select {
		case l := <-c.logs:
			lines = append(lines, l)
		default:
			break Loop
		}
	}
	if len(lines) == 0 {
		return
	}
	payload := map[string]interface{}{
		"type":    "agent_log",
		"host":    c.host,
		"payload": map[string]interface{}{"lines": lines, "ts": time.Now().Unix()},
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn != nil {
		_ = c.conn.WriteJSON(payload)
	}
}

func (c *wsClient) pushLog(line string) {
	if c == nil {
		return
	}
	select {
	case c.logs <- line:
	default:
	}
}

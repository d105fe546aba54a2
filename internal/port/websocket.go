package port

import (
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// websocketScheme dials a websocket endpoint on Open, grounded on the
// teacher's network.NetworkModule.WebSocketConnect/Send/Receive.
type websocketScheme struct{}

func init() { RegisterScheme("websocket", websocketScheme{}) }

func (websocketScheme) Open(spec string) (Conn, error) {
	dialer := websocket.DefaultDialer
	dialer.HandshakeTimeout = 10 * time.Second
	conn, _, err := dialer.Dial("ws://"+spec, nil)
	if err != nil {
		return nil, fmt.Errorf("websocket dial %q: %w", spec, err)
	}
	wc := &wsConn{conn: conn, inbox: make(chan []byte, 64)}
	go wc.pump()
	return wc, nil
}

type wsConn struct {
	conn   *websocket.Conn
	mu     sync.Mutex
	closed bool
	inbox  chan []byte
}

func (c *wsConn) pump() {
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			close(c.inbox)
			return
		}
		c.inbox <- data
	}
}

// Read ignores query (a websocket port has no query language) and blocks
// for the next inbound frame, matching WebSocketReceive's channel-based
// receive.
func (c *wsConn) Read(query string, args ...interface{}) ([]Row, error) {
	msg, ok := <-c.inbox
	if !ok {
		return nil, fmt.Errorf("websocket port: connection closed")
	}
	return []Row{{"data": string(msg)}}, nil
}

// Write sends query as a text frame over the socket.
func (c *wsConn) Write(query string, args ...interface{}) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return 0, fmt.Errorf("websocket port: connection closed")
	}
	if err := c.conn.WriteMessage(websocket.TextMessage, []byte(query)); err != nil {
		return 0, err
	}
	return int64(len(query)), nil
}

func (c *wsConn) Close() error {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
	c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	return c.conn.Close()
}

// Package live binds the abstract gateway SDK interfaces to a websocket
// front. Each session role holds its own connection; requests go out as JSON
// frames and responses come back on the read loop, which is the dispatch
// thread the handlers see.
package live

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	readDeadline  = 30 * time.Second
	pingInterval  = 10 * time.Second
	writeDeadline = 3 * time.Second

	// Synchronous result code for a send that never reached the wire.
	codeSendFailed = -2
)

// frame is the wire envelope for both directions.
type frame struct {
	Type      string          `json:"type"`
	RequestID int             `json:"request_id,omitempty"`
	IsLast    bool            `json:"is_last,omitempty"`
	Reason    int             `json:"reason,omitempty"`
	Error     *wireError      `json:"error,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
}

type wireError struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
}

// wsClient owns one websocket connection: serialized writes, a read loop
// with deadline-refreshing pong handling, and periodic pings.
type wsClient struct {
	mu     sync.Mutex
	conn   *websocket.Conn
	closed bool
	done   chan struct{}
}

// dial opens the connection and starts the ping and read loops. onFrame runs
// on the read-loop goroutine; onDrop fires once when the loop exits on error.
func (c *wsClient) dial(url string, onFrame func(frame), onDrop func(error)) error {
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		return err
	}

	done := make(chan struct{})
	c.mu.Lock()
	c.conn = conn
	c.closed = false
	c.done = done
	c.mu.Unlock()

	_ = conn.SetReadDeadline(time.Now().Add(readDeadline))
	conn.SetPongHandler(func(string) error {
		_ = conn.SetReadDeadline(time.Now().Add(readDeadline))
		return nil
	})

	go func() {
		ticker := time.NewTicker(pingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				c.mu.Lock()
				_ = conn.WriteControl(websocket.PingMessage, []byte("ping"), time.Now().Add(writeDeadline))
				c.mu.Unlock()
			}
		}
	}()

	go func() {
		defer close(done)
		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				c.mu.Lock()
				wasClosed := c.closed
				c.mu.Unlock()
				if !wasClosed {
					onDrop(err)
				}
				return
			}
			var f frame
			if err := json.Unmarshal(msg, &f); err != nil {
				continue
			}
			onFrame(f)
		}
	}()

	return nil
}

// send marshals and writes one frame. Returns a nonzero result code when the
// write cannot be attempted or fails.
func (c *wsClient) send(f frame) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil || c.closed {
		return codeSendFailed
	}
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeDeadline))
	if err := c.conn.WriteJSON(f); err != nil {
		return codeSendFailed
	}
	return 0
}

func (c *wsClient) close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil || c.closed {
		return nil
	}
	c.closed = true
	return c.conn.Close()
}

func marshalData(v any) json.RawMessage {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return raw
}

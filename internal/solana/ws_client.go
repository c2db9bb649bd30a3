package solana

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

// WSConfig configures WebSocket client behavior.
type WSConfig struct {
	ReconnectDelay    time.Duration
	MaxReconnectDelay time.Duration
	PingInterval      time.Duration
	WriteTimeout      time.Duration
}

// DefaultWSConfig returns default WebSocket configuration.
func DefaultWSConfig() WSConfig {
	return WSConfig{
		ReconnectDelay:    1 * time.Second,
		MaxReconnectDelay: 30 * time.Second,
		PingInterval:      30 * time.Second,
		WriteTimeout:      10 * time.Second,
	}
}

// LogNotification is one logsSubscribe event.
type LogNotification struct {
	Signature string
	Err       interface{}
	Logs      []string
	Slot      int64
}

// WSClient subscribes to program logs over a Solana WebSocket endpoint.
// It reconnects with backoff and resubscribes its mentions filter, so a
// dropped connection does not silently stop the feed.
type WSClient struct {
	endpoint string
	config   WSConfig
	mentions []string

	conn      *websocket.Conn
	connMu    sync.Mutex
	requestID atomic.Uint64
	closed    atomic.Bool
	done      chan struct{}
	wg        sync.WaitGroup

	out chan LogNotification
}

type wsRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      uint64        `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
}

type wsMessage struct {
	ID     uint64          `json:"id"`
	Result json.RawMessage `json:"result"`
	Method string          `json:"method"`
	Params *struct {
		Result struct {
			Context struct {
				Slot int64 `json:"slot"`
			} `json:"context"`
			Value struct {
				Signature string      `json:"signature"`
				Err       interface{} `json:"err"`
				Logs      []string    `json:"logs"`
			} `json:"value"`
		} `json:"result"`
	} `json:"params"`
}

// NewWSClient connects and subscribes to logs mentioning the given
// program IDs. Notifications are delivered on Events until Close.
func NewWSClient(ctx context.Context, endpoint string, mentions []string, config *WSConfig) (*WSClient, error) {
	cfg := DefaultWSConfig()
	if config != nil {
		cfg = *config
	}

	c := &WSClient{
		endpoint: endpoint,
		config:   cfg,
		mentions: mentions,
		done:     make(chan struct{}),
		out:      make(chan LogNotification, 1024),
	}

	if err := c.connectAndSubscribe(ctx); err != nil {
		return nil, err
	}

	c.wg.Add(1)
	go c.readLoop()

	return c, nil
}

// Events returns the notification channel. Closed on Close.
func (c *WSClient) Events() <-chan LogNotification {
	return c.out
}

// Close shuts down the client and closes the events channel.
func (c *WSClient) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	close(c.done)

	c.connMu.Lock()
	if c.conn != nil {
		c.conn.Close()
	}
	c.connMu.Unlock()

	c.wg.Wait()
	close(c.out)
	return nil
}

func (c *WSClient) connectAndSubscribe(ctx context.Context) error {
	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.DialContext(ctx, c.endpoint, nil)
	if err != nil {
		return fmt.Errorf("websocket dial: %w", err)
	}

	for _, program := range c.mentions {
		req := wsRequest{
			JSONRPC: "2.0",
			ID:      c.requestID.Add(1),
			Method:  "logsSubscribe",
			Params: []interface{}{
				map[string]interface{}{"mentions": []string{program}},
				map[string]string{"commitment": "confirmed"},
			},
		}
		conn.SetWriteDeadline(time.Now().Add(c.config.WriteTimeout))
		if err := conn.WriteJSON(req); err != nil {
			conn.Close()
			return fmt.Errorf("write subscribe: %w", err)
		}
	}

	c.connMu.Lock()
	c.conn = conn
	c.connMu.Unlock()
	return nil
}

// readLoop reads notifications and reconnects with backoff on failure.
func (c *WSClient) readLoop() {
	defer c.wg.Done()

	delay := c.config.ReconnectDelay

	for {
		c.connMu.Lock()
		conn := c.conn
		c.connMu.Unlock()

		_, data, err := conn.ReadMessage()
		if err != nil {
			if c.closed.Load() {
				return
			}
			select {
			case <-c.done:
				return
			case <-time.After(delay):
			}
			delay *= 2
			if delay > c.config.MaxReconnectDelay {
				delay = c.config.MaxReconnectDelay
			}
			if err := c.connectAndSubscribe(context.Background()); err != nil {
				continue
			}
			delay = c.config.ReconnectDelay
			continue
		}

		var msg wsMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			continue
		}
		if msg.Method != "logsNotification" || msg.Params == nil {
			continue
		}

		n := LogNotification{
			Signature: msg.Params.Result.Value.Signature,
			Err:       msg.Params.Result.Value.Err,
			Logs:      msg.Params.Result.Value.Logs,
			Slot:      msg.Params.Result.Context.Slot,
		}

		select {
		case c.out <- n:
		case <-c.done:
			return
		}
	}
}

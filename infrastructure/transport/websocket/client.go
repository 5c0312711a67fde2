// ABOUTME: WebSocket client feeding backend data-channel frames into a local publisher
// ABOUTME: Reconnects with capped exponential backoff until its context ends

package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"diagnostic-report-api/core/interfaces"
)

const maxFrameBytes = 4 << 20

// Frame is one data-channel message on the wire. Payload is base64 in JSON.
type Frame struct {
	Topic   string `json:"topic"`
	Payload []byte `json:"payload"`
}

// Config configures a Client
type Config struct {
	URL          string
	Header       http.Header
	ReconnectMin time.Duration
	ReconnectMax time.Duration
}

// Client reads frames from a backend socket and republishes them
type Client struct {
	cfg    Config
	dialer *websocket.Dialer
	sink   interfaces.Publisher
	logger interfaces.Logger
}

// NewClient creates a client publishing every received frame to sink
func NewClient(cfg Config, sink interfaces.Publisher, logger interfaces.Logger) (*Client, error) {
	if cfg.URL == "" {
		return nil, errors.New("websocket url cannot be empty")
	}
	if sink == nil {
		return nil, errors.New("publisher cannot be nil")
	}
	if cfg.ReconnectMin <= 0 {
		cfg.ReconnectMin = time.Second
	}
	if cfg.ReconnectMax < cfg.ReconnectMin {
		cfg.ReconnectMax = cfg.ReconnectMin
	}
	return &Client{
		cfg:    cfg,
		dialer: &websocket.Dialer{HandshakeTimeout: 8 * time.Second},
		sink:   sink,
		logger: logger,
	}, nil
}

// Run connects and reads until ctx ends. It only returns ctx.Err().
func (c *Client) Run(ctx context.Context) error {
	backoff := c.cfg.ReconnectMin
	for {
		conn, err := c.dial(ctx)
		if err == nil {
			backoff = c.cfg.ReconnectMin
			err = c.readLoop(ctx, conn)
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		c.log("Data channel disconnected, reconnecting", map[string]interface{}{
			"url":     c.cfg.URL,
			"error":   err.Error(),
			"backoff": backoff.String(),
		})

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		backoff *= 2
		if backoff > c.cfg.ReconnectMax {
			backoff = c.cfg.ReconnectMax
		}
	}
}

func (c *Client) dial(ctx context.Context) (*websocket.Conn, error) {
	conn, resp, err := c.dialer.DialContext(ctx, c.cfg.URL, c.cfg.Header)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("dial failed: %w (status %s)", err, resp.Status)
		}
		return nil, fmt.Errorf("dial failed: %w", err)
	}
	conn.SetReadLimit(maxFrameBytes)
	if c.logger != nil {
		c.logger.Info("Data channel connected", map[string]interface{}{"url": c.cfg.URL})
	}
	return conn, nil
}

func (c *Client) readLoop(ctx context.Context, conn *websocket.Conn) error {
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(time.Second))
			_ = conn.Close()
		case <-done:
			_ = conn.Close()
		}
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return err
		}

		var frame Frame
		if err := json.Unmarshal(data, &frame); err != nil || frame.Topic == "" {
			c.log("Skipping malformed data-channel frame", map[string]interface{}{
				"bytes": len(data),
			})
			continue
		}

		if err := c.sink.Publish(ctx, frame.Topic, frame.Payload); err != nil {
			return err
		}
	}
}

func (c *Client) log(msg string, fields map[string]interface{}) {
	if c.logger != nil {
		c.logger.Warn(msg, fields)
	}
}

// ABOUTME: Diagnostic side-channel consumer keeping the latest good report
// ABOUTME: Malformed payloads record an error and never replace the previous report

package diagnostics

import (
	"bytes"
	"context"
	"encoding/json"
	"sync"
	"time"
	"unicode/utf8"

	"diagnostic-report-api/core/domain"
	coreerrors "diagnostic-report-api/core/errors"
	"diagnostic-report-api/core/interfaces"
)

// Consumer holds the state of one diagnostic subscription. Each consumer is
// independent; State may be read from any goroutine.
type Consumer struct {
	topic  string
	logger interfaces.Logger
	now    func() time.Time

	mu    sync.RWMutex
	state domain.DiagnosticState
}

// NewConsumer creates an empty consumer for the diagnostic topic
func NewConsumer(logger interfaces.Logger) *Consumer {
	return &Consumer{
		topic:  domain.DiagnosticTopic,
		logger: logger,
		now:    time.Now,
	}
}

// Topic returns the subscribed topic name
func (c *Consumer) Topic() string {
	return c.topic
}

// Subscribe attaches the consumer to a data channel
func (c *Consumer) Subscribe(ctx context.Context, ch interfaces.DataChannel) (interfaces.Subscription, error) {
	sub, err := ch.Subscribe(ctx, c.topic, c.Handle)
	if err != nil {
		return nil, coreerrors.WrapError(err, "subscribe to "+c.topic)
	}
	if c.logger != nil {
		c.logger.Info("Subscribed to diagnostic channel", map[string]interface{}{
			"topic": c.topic,
		})
	}
	return sub, nil
}

// Handle processes one delivery. It never panics and never returns an error
// to the transport.
func (c *Consumer) Handle(p interfaces.Packet) {
	report, err := DecodeReport(c.topic, p.Payload)

	c.mu.Lock()
	c.state.Received++
	if err != nil {
		c.state.LastError = err.Error()
	} else {
		now := c.now()
		c.state.LastReport = report
		c.state.LastError = ""
		c.state.UpdatedAt = &now
	}
	c.mu.Unlock()

	if c.logger == nil {
		return
	}
	if err != nil {
		c.logger.Warn("Discarded diagnostic payload", map[string]interface{}{
			"topic": c.topic,
			"bytes": len(p.Payload),
			"error": err.Error(),
		})
		return
	}
	c.logger.Info("Diagnostic report updated", map[string]interface{}{
		"topic":         c.topic,
		"content_chars": len(report.Content),
		"web_sources":   len(report.WebSources),
		"videos":        len(report.YouTubeVideos),
	})
}

// State returns a snapshot of the consumer state
func (c *Consumer) State() domain.DiagnosticState {
	c.mu.RLock()
	defer c.mu.RUnlock()

	s := c.state
	if s.LastReport != nil {
		report := *s.LastReport
		s.LastReport = &report
	}
	if s.UpdatedAt != nil {
		at := *s.UpdatedAt
		s.UpdatedAt = &at
	}
	return s
}

// DecodeReport decodes a UTF-8 JSON payload into a TextPayload. The payload
// must be an object with a string "content" field.
func DecodeReport(topic string, payload []byte) (*domain.TextPayload, error) {
	if !utf8.Valid(payload) {
		return nil, &coreerrors.ChannelDecodeError{Topic: topic, Reason: "payload is not valid UTF-8"}
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(payload, &fields); err != nil {
		return nil, &coreerrors.ChannelDecodeError{Topic: topic, Reason: "payload is not a JSON object", Err: err}
	}

	content, ok := fields["content"]
	if !ok {
		return nil, &coreerrors.ChannelDecodeError{Topic: topic, Reason: "missing content field"}
	}
	if trimmed := bytes.TrimSpace(content); len(trimmed) == 0 || trimmed[0] != '"' {
		return nil, &coreerrors.ChannelDecodeError{Topic: topic, Reason: "content must be a string"}
	}

	var report domain.TextPayload
	if err := json.Unmarshal(payload, &report); err != nil {
		return nil, &coreerrors.ChannelDecodeError{Topic: topic, Reason: "payload does not match the report schema", Err: err}
	}
	report.Normalize()
	return &report, nil
}

package handlers

import (
	"context"
	"encoding/json"
	"sync"

	"diagnostic-report-api/core/domain"
	"diagnostic-report-api/core/interfaces"
)

// mockResolver is a mock implementation of the AssetResolver interface
type mockResolver struct {
	resolveNameFunc func(ctx context.Context, name string, dc domain.DeploymentContext) (*domain.ResolvedAsset, error)
	resolvePathFunc func(ctx context.Context, hint string, dc domain.DeploymentContext) (*domain.ResolvedAsset, error)

	mu    sync.Mutex
	hints []string
}

func (m *mockResolver) ResolveName(ctx context.Context, name string, dc domain.DeploymentContext) (*domain.ResolvedAsset, error) {
	return m.resolveNameFunc(ctx, name, dc)
}

func (m *mockResolver) ResolvePath(ctx context.Context, hint string, dc domain.DeploymentContext) (*domain.ResolvedAsset, error) {
	m.mu.Lock()
	m.hints = append(m.hints, hint)
	m.mu.Unlock()
	return m.resolvePathFunc(ctx, hint, dc)
}

// mockReader is a fixed DiagnosticReader
type mockReader struct {
	state domain.DiagnosticState
}

func (m *mockReader) State() domain.DiagnosticState {
	return m.state
}

// mockPublisher records published packets
type mockPublisher struct {
	mu      sync.Mutex
	topics  []string
	payload [][]byte
	err     error
}

func (m *mockPublisher) Publish(ctx context.Context, topic string, payload []byte) error {
	if m.err != nil {
		return m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.topics = append(m.topics, topic)
	m.payload = append(m.payload, payload)
	return nil
}

func packetFor(payload string) interfaces.Packet {
	return interfaces.Packet{Topic: domain.DiagnosticTopic, Payload: []byte(payload)}
}

// stripSchema drops the $schema link huma adds to JSON bodies
func stripSchema(body string) string {
	var m map[string]interface{}
	if err := json.Unmarshal([]byte(body), &m); err != nil {
		return body
	}
	delete(m, "$schema")
	out, _ := json.Marshal(m)
	return string(out)
}

package websocket

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	mu      sync.Mutex
	packets []Frame
}

func (r *recordingPublisher) Publish(ctx context.Context, topic string, payload []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.packets = append(r.packets, Frame{Topic: topic, Payload: payload})
	return nil
}

func (r *recordingPublisher) snapshot() []Frame {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Frame(nil), r.packets...)
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// frameServer sends frames to each connection then closes it
func frameServer(t *testing.T, connections *int32, frames ...interface{}) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		atomic.AddInt32(connections, 1)
		for _, f := range frames {
			switch v := f.(type) {
			case string:
				_ = conn.WriteMessage(websocket.TextMessage, []byte(v))
			default:
				_ = conn.WriteJSON(v)
			}
		}
		time.Sleep(20 * time.Millisecond)
	}))
}

func wsURL(s *httptest.Server) string {
	return "ws" + strings.TrimPrefix(s.URL, "http")
}

func TestNewClient_Validation(t *testing.T) {
	_, err := NewClient(Config{}, &recordingPublisher{}, nil)
	assert.Error(t, err)

	_, err = NewClient(Config{URL: "ws://localhost"}, nil, nil)
	assert.Error(t, err)
}

func TestClient_PublishesFrames(t *testing.T) {
	var connections int32
	server := frameServer(t, &connections,
		Frame{Topic: "diagnostic_report", Payload: []byte(`{"content":"first"}`)},
		"not json",
		Frame{Topic: "", Payload: []byte("no topic")},
		Frame{Topic: "diagnostic_report", Payload: []byte(`{"content":"second"}`)},
	)
	defer server.Close()

	sink := &recordingPublisher{}
	client, err := NewClient(Config{URL: wsURL(server), ReconnectMin: time.Hour}, sink, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- client.Run(ctx) }()

	assert.Eventually(t, func() bool { return len(sink.snapshot()) == 2 }, 2*time.Second, 10*time.Millisecond)
	got := sink.snapshot()
	assert.Equal(t, "diagnostic_report", got[0].Topic)
	assert.JSONEq(t, `{"content":"first"}`, string(got[0].Payload))
	assert.JSONEq(t, `{"content":"second"}`, string(got[1].Payload))

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestClient_Reconnects(t *testing.T) {
	var connections int32
	server := frameServer(t, &connections, Frame{Topic: "t", Payload: []byte("x")})
	defer server.Close()

	sink := &recordingPublisher{}
	client, err := NewClient(Config{
		URL:          wsURL(server),
		ReconnectMin: 10 * time.Millisecond,
		ReconnectMax: 20 * time.Millisecond,
	}, sink, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = client.Run(ctx) }()

	assert.Eventually(t, func() bool { return atomic.LoadInt32(&connections) >= 3 }, 3*time.Second, 10*time.Millisecond)
	assert.GreaterOrEqual(t, len(sink.snapshot()), 2)
}

func TestClient_DialFailureStopsOnCancel(t *testing.T) {
	client, err := NewClient(Config{URL: "ws://127.0.0.1:1/unreachable", ReconnectMin: 10 * time.Millisecond}, &recordingPublisher{}, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	assert.ErrorIs(t, client.Run(ctx), context.DeadlineExceeded)
}

// ABOUTME: Data-channel transport contract for topic-based side channels
// ABOUTME: Delivery per subscription is serialised, one callback in flight at a time

package interfaces

import "context"

// Packet is one message received on a data channel
type Packet struct {
	// Topic names the logical channel, e.g. "diagnostic_report"
	Topic string

	// Payload is the raw bytes as sent by the backend
	Payload []byte
}

// PacketHandler receives packets for a subscription. It must not panic and is
// never invoked concurrently with itself for the same subscription.
type PacketHandler func(Packet)

// Subscription is a live topic subscription
type Subscription interface {
	// Close stops delivery. It is safe to call more than once.
	Close() error
}

// DataChannel is an opaque bidirectional transport with at-least-once,
// in-order delivery per topic.
type DataChannel interface {
	// Subscribe registers handler for topic until ctx ends or the
	// subscription is closed.
	Subscribe(ctx context.Context, topic string, handler PacketHandler) (Subscription, error)
}

// Publisher is implemented by transports that accept locally injected packets
type Publisher interface {
	Publish(ctx context.Context, topic string, payload []byte) error
}

// ABOUTME: In-process topic bus implementing the DataChannel contract
// ABOUTME: Each subscription drains its own queue so callbacks never overlap

package memory

import (
	"context"
	"errors"
	"sync"
	"time"

	"diagnostic-report-api/core/interfaces"
)

const (
	defaultBufferSize = 64
	publishTimeout    = 10 * time.Second
)

// ErrClosed is returned when publishing to or subscribing on a closed bus
var ErrClosed = errors.New("bus closed")

// Bus is a Go-channel based topic bus for in-process delivery
type Bus struct {
	mu         sync.RWMutex
	subs       map[string]map[*subscription]struct{}
	bufferSize int
	closed     bool
	logger     interfaces.Logger
}

// New creates a bus whose subscriptions buffer bufferSize packets
func New(bufferSize int, logger interfaces.Logger) *Bus {
	if bufferSize <= 0 {
		bufferSize = defaultBufferSize
	}
	return &Bus{
		subs:       make(map[string]map[*subscription]struct{}),
		bufferSize: bufferSize,
		logger:     logger,
	}
}

type subscription struct {
	bus     *Bus
	topic   string
	handler interfaces.PacketHandler
	queue   chan []byte
	done    chan struct{}
	once    sync.Once
}

// Subscribe registers handler for topic until ctx ends or Close is called
func (b *Bus) Subscribe(ctx context.Context, topic string, handler interfaces.PacketHandler) (interfaces.Subscription, error) {
	if handler == nil {
		return nil, errors.New("handler cannot be nil")
	}

	sub := &subscription{
		bus:     b,
		topic:   topic,
		handler: handler,
		queue:   make(chan []byte, b.bufferSize),
		done:    make(chan struct{}),
	}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil, ErrClosed
	}
	if b.subs[topic] == nil {
		b.subs[topic] = make(map[*subscription]struct{})
	}
	b.subs[topic][sub] = struct{}{}
	b.mu.Unlock()

	go sub.run()
	go func() {
		select {
		case <-ctx.Done():
			_ = sub.Close()
		case <-sub.done:
		}
	}()

	return sub, nil
}

// Publish delivers payload to every subscription on topic. A full queue
// blocks up to publishTimeout, then the packet is dropped for that subscriber.
func (b *Bus) Publish(ctx context.Context, topic string, payload []byte) error {
	b.mu.RLock()
	if b.closed {
		b.mu.RUnlock()
		return ErrClosed
	}
	targets := make([]*subscription, 0, len(b.subs[topic]))
	for sub := range b.subs[topic] {
		targets = append(targets, sub)
	}
	b.mu.RUnlock()

	if len(targets) == 0 {
		b.debug("No subscribers for topic", topic)
		return nil
	}

	data := append([]byte(nil), payload...)
	for _, sub := range targets {
		if err := sub.enqueue(ctx, data); err != nil {
			return err
		}
	}
	return nil
}

// Subscribers returns the number of live subscriptions on topic
func (b *Bus) Subscribers(topic string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[topic])
}

// Close ends every subscription and rejects further use
func (b *Bus) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	var all []*subscription
	for _, set := range b.subs {
		for sub := range set {
			all = append(all, sub)
		}
	}
	b.mu.Unlock()

	for _, sub := range all {
		_ = sub.Close()
	}
}

func (b *Bus) remove(sub *subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if set, ok := b.subs[sub.topic]; ok {
		delete(set, sub)
		if len(set) == 0 {
			delete(b.subs, sub.topic)
		}
	}
}

func (b *Bus) debug(msg, topic string) {
	if b.logger != nil {
		b.logger.Debug(msg, map[string]interface{}{"topic": topic})
	}
}

func (s *subscription) enqueue(ctx context.Context, data []byte) error {
	select {
	case s.queue <- data:
		return nil
	case <-s.done:
		return nil
	default:
	}

	if s.bus.logger != nil {
		s.bus.logger.Warn("Subscriber queue full, waiting", map[string]interface{}{"topic": s.topic})
	}
	timer := time.NewTimer(publishTimeout)
	defer timer.Stop()

	select {
	case s.queue <- data:
		return nil
	case <-s.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		if s.bus.logger != nil {
			s.bus.logger.Error("Packet dropped, subscriber queue full", map[string]interface{}{
				"topic":   s.topic,
				"timeout": publishTimeout.String(),
			})
		}
		return nil
	}
}

func (s *subscription) run() {
	for {
		select {
		case <-s.done:
			return
		case data := <-s.queue:
			s.deliver(data)
		}
	}
}

func (s *subscription) deliver(data []byte) {
	defer func() {
		if r := recover(); r != nil && s.bus.logger != nil {
			s.bus.logger.Error("Packet handler panicked", map[string]interface{}{
				"topic": s.topic,
				"panic": r,
			})
		}
	}()
	s.handler(interfaces.Packet{Topic: s.topic, Payload: data})
}

// Close stops delivery; queued packets are discarded
func (s *subscription) Close() error {
	s.once.Do(func() {
		close(s.done)
		s.bus.remove(s)
	})
	return nil
}

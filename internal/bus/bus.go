// Package bus carries messages between chat channels and the assistant
// loop in process.
package bus

import (
	"log/slog"
	"sync"
	"time"

	"vinobot/internal/domain"
)

const publishTimeout = 10 * time.Second

// InMemoryBus is a Go-channel based message bus.
type InMemoryBus struct {
	inbound  chan domain.InboundMessage
	handlers map[string]func(domain.OutboundMessage)
	mu       sync.RWMutex
	closed   bool
	logger   *slog.Logger
}

// New creates a new InMemoryBus with the given buffer size.
func New(bufferSize int, logger *slog.Logger) *InMemoryBus {
	if bufferSize <= 0 {
		bufferSize = 100
	}
	return &InMemoryBus{
		inbound:  make(chan domain.InboundMessage, bufferSize),
		handlers: make(map[string]func(domain.OutboundMessage)),
		logger:   logger.With("component", "bus"),
	}
}

// Publish enqueues an inbound message. When an update burst outruns the
// assistant loop and fills the queue, Publish waits up to publishTimeout
// before dropping the message.
func (b *InMemoryBus) Publish(msg domain.InboundMessage) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		b.logger.Warn("publish on closed bus dropped", "channel", msg.Channel)
		return
	}

	select {
	case b.inbound <- msg:
		return
	default:
	}

	b.logger.Warn("inbound queue saturated", "channel", msg.Channel, "sender", msg.SenderID)
	timer := time.NewTimer(publishTimeout)
	defer timer.Stop()
	select {
	case b.inbound <- msg:
	case <-timer.C:
		b.logger.Error("inbound message dropped after wait",
			"channel", msg.Channel,
			"sender", msg.SenderID,
			"wait", publishTimeout,
		)
	}
}

func (b *InMemoryBus) Subscribe() <-chan domain.InboundMessage {
	return b.inbound
}

func (b *InMemoryBus) SendOutbound(msg domain.OutboundMessage) {
	b.mu.RLock()
	handler, ok := b.handlers[msg.Channel]
	b.mu.RUnlock()

	if !ok {
		b.logger.Warn("no handler registered for channel", "channel", msg.Channel)
		return
	}

	handler(msg)
}

func (b *InMemoryBus) OnOutbound(channelName string, handler func(domain.OutboundMessage)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[channelName] = handler
}

func (b *InMemoryBus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.closed {
		b.closed = true
		close(b.inbound)
	}
}

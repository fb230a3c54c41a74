package mocks

import (
	"sync"

	"github.com/joslsmit/ratm-app/internal/logger"
	"github.com/joslsmit/ratm-app/internal/pubsub"
)

// MockNATSPubSub provides a mock NATS/JetStream implementation for local development.
// It keeps a bounded history of published events the way a stream would.
type MockNATSPubSub struct {
	*pubsub.PubSub

	mu          sync.Mutex
	messages    []pubsub.Event
	maxMessages int
}

// NewMockNATSPubSub creates a mock NATS pub/sub using the in-memory implementation
func NewMockNATSPubSub() *MockNATSPubSub {
	logger.Info("Using MOCK NATS/JetStream (in-memory pub/sub) for local development")

	return &MockNATSPubSub{
		PubSub:      pubsub.New(),
		maxMessages: 1000,
	}
}

// Publish records the event and delivers it to local subscribers
func (m *MockNATSPubSub) Publish(event pubsub.Event) {
	m.mu.Lock()
	m.messages = append(m.messages, event)
	if len(m.messages) > m.maxMessages {
		m.messages = m.messages[len(m.messages)-m.maxMessages:]
	}
	m.mu.Unlock()

	m.PubSub.Publish(event)
}

// Messages returns the retained history, oldest first
func (m *MockNATSPubSub) Messages() []pubsub.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]pubsub.Event{}, m.messages...)
}

// Close is a no-op for mock
func (m *MockNATSPubSub) Close() {
	// No cleanup needed for in-memory
}

package pubsub

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/joslsmit/ratm-app/internal/logger"
	"github.com/nats-io/nats.go"
)

// DefaultStreamName is the JetStream stream holding draft kit events
const DefaultStreamName = "DRAFTKIT_EVENTS"

// jetStreamBridge publishes events to a JetStream subject and fans out
// everything delivered on that subject, from any instance, to local channels.
type jetStreamBridge struct {
	nc          *nats.Conn
	js          nats.JetStreamContext
	subject     string
	sub         *nats.Subscription
	mu          sync.RWMutex
	subscribers []chan Event
}

type streamOptions struct {
	name    string
	storage nats.StorageType
	maxAge  time.Duration
}

func newJetStreamBridge(nc *nats.Conn, subject string, opts streamOptions) (*jetStreamBridge, error) {
	js, err := nc.JetStream()
	if err != nil {
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	if opts.name == "" {
		opts.name = DefaultStreamName
	}
	if _, err := js.StreamInfo(opts.name); err != nil {
		// Stream doesn't exist, create it
		_, err = js.AddStream(&nats.StreamConfig{
			Name:     opts.name,
			Subjects: []string{subject},
			Storage:  opts.storage,
			MaxAge:   opts.maxAge,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create stream: %w", err)
		}
		logger.Info("JetStream stream created", "stream", opts.name, "subject", subject)
	}

	b := &jetStreamBridge{
		nc:          nc,
		js:          js,
		subject:     subject,
		subscribers: make([]chan Event, 0),
	}

	b.sub, err = js.Subscribe(subject, b.deliver, nats.ManualAck(), nats.DeliverNew())
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to %s: %w", subject, err)
	}
	logger.Debug("Subscribed to JetStream", "subject", subject)

	return b, nil
}

func (b *jetStreamBridge) deliver(msg *nats.Msg) {
	var event Event
	if err := json.Unmarshal(msg.Data, &event); err != nil {
		logger.Error("Failed to unmarshal event from JetStream", "error", err)
		msg.Term()
		return
	}

	b.mu.RLock()
	for _, sub := range b.subscribers {
		select {
		case sub <- event:
		default:
			logger.Warn("JetStream: Skipping slow subscriber", "event_type", event.Type)
		}
	}
	b.mu.RUnlock()

	msg.Ack()
}

// Publish publishes an event to JetStream. Local subscribers receive it
// through the stream subscription.
func (b *jetStreamBridge) Publish(event Event) {
	data, err := json.Marshal(event)
	if err != nil {
		logger.Error("Failed to marshal event", "error", err, "event_type", event.Type)
		return
	}

	if _, err := b.js.Publish(b.subject, data); err != nil {
		logger.Error("Failed to publish to NATS", "error", err, "subject", b.subject, "event_type", event.Type)
		return
	}
	logger.Debug("Published event to NATS", "event_type", event.Type, "subject", b.subject)
}

// Subscribe creates a subscription channel for events
func (b *jetStreamBridge) Subscribe() chan Event {
	ch := make(chan Event, 100)

	b.mu.Lock()
	b.subscribers = append(b.subscribers, ch)
	b.mu.Unlock()

	return ch
}

// Unsubscribe removes a subscription channel
func (b *jetStreamBridge) Unsubscribe(ch chan Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i, sub := range b.subscribers {
		if sub == ch {
			b.subscribers = append(b.subscribers[:i], b.subscribers[i+1:]...)
			close(ch)
			break
		}
	}
}

// GetSubscriberCount returns the number of active local subscribers
func (b *jetStreamBridge) GetSubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}

// JetStream exposes the JetStream context so other components (the KV store)
// can share the connection
func (b *jetStreamBridge) JetStream() nats.JetStreamContext {
	return b.js
}

// Healthy reports an error unless the NATS connection is up
func (b *jetStreamBridge) Healthy() error {
	if b.nc == nil || !b.nc.IsConnected() {
		return fmt.Errorf("nats not connected")
	}
	return nil
}

func (b *jetStreamBridge) close() {
	if b.sub != nil {
		if err := b.sub.Unsubscribe(); err != nil {
			logger.Debug("JetStream unsubscribe failed", "error", err)
		}
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for _, sub := range b.subscribers {
		close(sub)
	}
	b.subscribers = nil
}

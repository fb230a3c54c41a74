package pubsub

import (
	"fmt"

	"github.com/joslsmit/ratm-app/internal/logger"
	"github.com/nats-io/nats.go"
)

// NATSPubSub implements pub/sub using an external NATS JetStream server
type NATSPubSub struct {
	*jetStreamBridge
}

// NewNATSPubSub connects to natsURL and bridges events on subject
func NewNATSPubSub(natsURL, subject string) (*NATSPubSub, error) {
	nc, err := nats.Connect(natsURL,
		nats.Name("ratm-draftkit"),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("NATS disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			logger.Info("NATS reconnected", "url", c.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	bridge, err := newJetStreamBridge(nc, subject, streamOptions{
		name:    DefaultStreamName,
		storage: nats.FileStorage,
		maxAge:  0, // Keep events indefinitely for replay
	})
	if err != nil {
		nc.Close()
		return nil, err
	}

	logger.Info("Connected to NATS JetStream", "url", nc.ConnectedUrl(), "subject", subject)
	return &NATSPubSub{jetStreamBridge: bridge}, nil
}

// Close closes the NATS connection
func (p *NATSPubSub) Close() {
	p.close()
	if p.nc != nil {
		p.nc.Close()
	}
}

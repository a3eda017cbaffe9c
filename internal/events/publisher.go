package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"governance-backend/internal/shared/telemetry"
)

// Publisher sends domain events to a message bus.
type Publisher interface {
	Publish(subject string, data any) error
	Close()
}

// Noop discards every event.
type Noop struct{}

func (Noop) Publish(subject string, data any) error { return nil }
func (Noop) Close()                                 {}

// NATSPublisher publishes JSON-encoded events over core NATS.
type NATSPublisher struct {
	conn *nats.Conn
}

// NewNATSPublisher connects to url, retrying in the background if the server is not up yet.
func NewNATSPublisher(url string) (*NATSPublisher, error) {
	nc, err := nats.Connect(url,
		nats.Name("governance-backend"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(60),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			fields := map[string]any{"url": url}
			if err != nil {
				fields["error"] = err.Error()
			}
			telemetry.Warn("nats.disconnected", fields)
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			telemetry.Info("nats.reconnected", map[string]any{"url": c.ConnectedUrl()})
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	return &NATSPublisher{conn: nc}, nil
}

func (p *NATSPublisher) Publish(subject string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return p.conn.Publish(subject, payload)
}

func (p *NATSPublisher) Close() {
	if p.conn == nil {
		return
	}
	if err := p.conn.Drain(); err != nil {
		p.conn.Close()
	}
}

// Emit publishes and logs a failure instead of returning it.
func Emit(p Publisher, subject string, data any) {
	if p == nil {
		return
	}
	if err := p.Publish(subject, data); err != nil {
		telemetry.Warn("events.publish_failed", map[string]any{
			"subject": subject,
			"error":   err.Error(),
		})
	}
}

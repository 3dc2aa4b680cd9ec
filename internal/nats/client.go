package nats

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/nats-io/nats.go"

	"crm-service/internal/config"
)

// Event types published on record creation. Downstream consumers (reporting,
// sync jobs) subscribe to crm.> subjects.
const (
	EventLeadCreated    = "crm.lead.created"
	EventContactCreated = "crm.contact.created"
	EventDealCreated    = "crm.deal.created"
)

// RecordCreatedEvent is the payload published when a CRM record is created
type RecordCreatedEvent struct {
	EventType      string    `json:"event_type"`
	RecordID       string    `json:"record_id"`
	OwnerID        string    `json:"owner_id"`
	OrganizationID string    `json:"organization_id,omitempty"`
	Timestamp      time.Time `json:"timestamp"`
}

// Client wraps the NATS connection. A nil *Client is valid and publishes
// nothing, so callers never need to branch on event publishing being enabled.
type Client struct {
	conn *nats.Conn
}

// NewClient creates a new NATS client
func NewClient(cfg config.NATSConfig) (*Client, error) {
	opts := []nats.Option{
		nats.Name("crm-service"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2 * time.Second),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.Printf("[NATS] Disconnected: %v", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Printf("[NATS] Reconnected to %s", nc.ConnectedUrl())
		}),
	}

	conn, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	log.Printf("[NATS] Connected successfully to %s", cfg.URL)
	return &Client{conn: conn}, nil
}

// Close drains and closes the connection
func (c *Client) Close() {
	if c == nil || c.conn == nil {
		return
	}
	c.conn.Close()
}

// IsConnected reports whether the underlying connection is up
func (c *Client) IsConnected() bool {
	return c != nil && c.conn != nil && c.conn.IsConnected()
}

// PublishRecordCreated publishes a record-creation event. Best effort: any
// failure is logged and swallowed so persistence never depends on the bus.
func (c *Client) PublishRecordCreated(subject string, event *RecordCreatedEvent) {
	if c == nil || c.conn == nil {
		return
	}

	event.EventType = subject
	event.Timestamp = time.Now().UTC()

	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("[NATS] Failed to marshal %s event: %v", subject, err)
		return
	}
	if err := c.conn.Publish(subject, data); err != nil {
		log.Printf("[NATS] Failed to publish %s event: %v", subject, err)
	}
}

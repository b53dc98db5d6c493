package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/tenantry/tenantry/pkg/logger"
)

type Publisher interface {
	Publish(ctx context.Context, subject string, data interface{}) error
	Close() error
}

type Subscriber interface {
	Subscribe(subject string, handler func(msg *Message)) error
	QueueSubscribe(subject, queue string, handler func(msg *Message)) error
	Close() error
}

type EventBus interface {
	Publisher
	Subscriber
}

type Message struct {
	Subject   string
	Data      []byte
	Timestamp time.Time
	ID        string
}

type NATSEventBus struct {
	conn *nats.Conn
}

func NewNATSEventBus(url string) (*NATSEventBus, error) {
	conn, err := nats.Connect(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	return &NATSEventBus{conn: conn}, nil
}

func (n *NATSEventBus) Publish(ctx context.Context, subject string, data interface{}) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal event data: %w", err)
	}

	logger.DebugContext(ctx, "Publishing event", "subject", subject, "data", string(payload))

	return n.conn.Publish(subject, payload)
}

func (n *NATSEventBus) Subscribe(subject string, handler func(msg *Message)) error {
	_, err := n.conn.Subscribe(subject, func(msg *nats.Msg) {
		handler(&Message{
			Subject:   msg.Subject,
			Data:      msg.Data,
			Timestamp: time.Now(),
			ID:        fmt.Sprintf("%d", time.Now().UnixNano()),
		})
	})
	return err
}

func (n *NATSEventBus) QueueSubscribe(subject, queue string, handler func(msg *Message)) error {
	_, err := n.conn.QueueSubscribe(subject, queue, func(msg *nats.Msg) {
		handler(&Message{
			Subject:   msg.Subject,
			Data:      msg.Data,
			Timestamp: time.Now(),
			ID:        fmt.Sprintf("%d", time.Now().UnixNano()),
		})
	})
	return err
}

func (n *NATSEventBus) Close() error {
	n.conn.Close()
	return nil
}

// Event subjects
const (
	// Invitation events
	InvitationCreated = "invitation.created"
	InvitationClaimed = "invitation.claimed"

	// Maintenance events
	MaintenanceRequested = "maintenance.requested"
	MaintenanceScheduled = "maintenance.scheduled"

	// Notification events
	NotifySend = "notify.send"
)

// Event payloads
type InvitationCreatedEvent struct {
	InvitationID int64     `json:"invitation_id"`
	LandlordID   int64     `json:"landlord_id"`
	UnitID       int64     `json:"unit_id"`
	InviteeEmail string    `json:"invitee_email"`
	ExpiresAt    time.Time `json:"expires_at"`
	CreatedAt    time.Time `json:"created_at"`
}

type InvitationClaimedEvent struct {
	InvitationID int64     `json:"invitation_id"`
	TenantID     int64     `json:"tenant_id"`
	UnitID       int64     `json:"unit_id"`
	TenantEmail  string    `json:"tenant_email"`
	ClaimedAt    time.Time `json:"claimed_at"`
}

type MaintenanceRequestedEvent struct {
	RequestID   int64     `json:"request_id"`
	PropertyID  *int64    `json:"property_id,omitempty"`
	TenantID    *int64    `json:"tenant_id,omitempty"`
	VendorID    *int64    `json:"vendor_id,omitempty"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

type MaintenanceScheduledEvent struct {
	RequestID     int64     `json:"request_id"`
	PropertyID    *int64    `json:"property_id,omitempty"`
	VendorID      *int64    `json:"vendor_id,omitempty"`
	ScheduledTime time.Time `json:"scheduled_time"`
}

type NotificationEvent struct {
	Type      string                 `json:"type"`
	Recipient string                 `json:"recipient"`
	Subject   string                 `json:"subject"`
	Template  string                 `json:"template"`
	Data      map[string]interface{} `json:"data"`
}

// internal/app/system/webhook/webhook.go

// Package webhook delivers email/notification events to the external relay
// endpoint. Delivery is best-effort and bounded by a hard timeout; anything
// the relay does not accept in time lands in a Mongo outbox collection so an
// operator (or a later redelivery job) can pick it up. A webhook failure
// never fails the request that triggered it.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// DefaultTimeout bounds one delivery attempt.
const DefaultTimeout = 10 * time.Second

// Notification is the relay's payload: a type discriminator, a recipient,
// and the template fields the relay needs to render the email.
type Notification struct {
	Type      string            `json:"event_type"`
	Recipient string            `json:"recipient"`
	Fields    map[string]string `json:"fields,omitempty"`
}

// Notification types the portal emits.
const (
	TypeApplicationReceived   = "application_received"
	TypeApplicationApproved   = "application_approved"
	TypeApplicationRejected   = "application_rejected"
	TypeRegistrationPending   = "registration_pending"
	TypeRegistrationConfirmed = "registration_confirmed"
	TypeWebinarReminder       = "webinar_reminder"
	TypeProspectInvite        = "prospect_invite"
)

// outboxEntry is what a failed delivery leaves behind.
type outboxEntry struct {
	ID           primitive.ObjectID `bson:"_id"`
	Notification Notification      `bson:"notification"`
	FailedAt     time.Time         `bson:"failed_at"`
	Reason       string            `bson:"reason"`
}

// Client posts notifications to the relay endpoint.
type Client struct {
	url    string
	http   *http.Client
	outbox *mongo.Collection
	log    *zap.Logger
}

// New builds a Client. An empty url disables delivery: every notification
// goes straight to the outbox (useful in development without a relay).
func New(url string, timeout time.Duration, outbox *mongo.Collection, logger *zap.Logger) *Client {
	if timeout <= 0 || timeout > DefaultTimeout {
		timeout = DefaultTimeout
	}
	return &Client{
		url:    url,
		http:   &http.Client{Timeout: timeout},
		outbox: outbox,
		log:    logger,
	}
}

// Send delivers one notification. On timeout, transport error, or a non-2xx
// response the notification is written to the outbox and the error is
// logged; Send itself never returns an error to the caller because the
// primary mutation has already committed.
func (c *Client) Send(ctx context.Context, n Notification) {
	if c == nil {
		return
	}
	if c.url == "" {
		c.fallback(ctx, n, "relay not configured")
		return
	}

	if err := c.deliver(ctx, n); err != nil {
		c.fallback(ctx, n, err.Error())
	}
}

// deliver posts one notification and reports the failure instead of
// outboxing it. Send and the outbox retry worker share it.
func (c *Client) deliver(ctx context.Context, n Notification) error {
	body, err := json.Marshal(n)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("relay returned %d", resp.StatusCode)
	}
	return nil
}

// DrainOutbox retries up to limit outboxed notifications against the relay,
// oldest first. Entries that deliver are removed; the rest stay for the next
// pass. Returns how many were delivered. A client without a relay URL or an
// outbox collection drains nothing.
func (c *Client) DrainOutbox(ctx context.Context, limit int64) (int64, error) {
	if c == nil || c.url == "" || c.outbox == nil {
		return 0, nil
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "failed_at", Value: 1}}).
		SetLimit(limit)
	cur, err := c.outbox.Find(ctx, bson.M{}, opts)
	if err != nil {
		return 0, err
	}
	var entries []outboxEntry
	if err := cur.All(ctx, &entries); err != nil {
		return 0, err
	}

	var delivered int64
	for _, e := range entries {
		if err := c.deliver(ctx, e.Notification); err != nil {
			// The relay is still unhappy; leave the rest for later.
			c.log.Debug("outbox redelivery failed",
				zap.String("type", e.Notification.Type),
				zap.Error(err))
			break
		}
		if _, err := c.outbox.DeleteOne(ctx, bson.M{"_id": e.ID}); err != nil {
			return delivered, err
		}
		delivered++
	}
	return delivered, nil
}

func (c *Client) fallback(ctx context.Context, n Notification, reason string) {
	c.log.Warn("webhook delivery failed, writing to outbox",
		zap.String("type", n.Type),
		zap.String("recipient", n.Recipient),
		zap.String("reason", reason),
	)
	if c.outbox == nil {
		return
	}
	entry := outboxEntry{
		ID:           primitive.NewObjectID(),
		Notification: n,
		FailedAt:     time.Now().UTC(),
		Reason:       reason,
	}
	if _, err := c.outbox.InsertOne(ctx, entry); err != nil {
		c.log.Error("webhook outbox write failed", zap.Error(err), zap.String("type", n.Type))
	}
}

package webhook_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dalemusser/memberhub/internal/app/system/webhook"
	"github.com/dalemusser/memberhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

func TestSend_DeliversToRelay(t *testing.T) {
	var got webhook.Notification
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("content type = %q", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("body decode failed: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := webhook.New(srv.URL, time.Second, nil, zap.NewNop())
	c.Send(context.Background(), webhook.Notification{
		Type:      webhook.TypeApplicationApproved,
		Recipient: "ada@example.com",
		Fields:    map[string]string{"first_name": "Ada"},
	})

	if atomic.LoadInt32(&calls) != 1 {
		t.Fatalf("relay calls = %d", calls)
	}
	if got.Type != webhook.TypeApplicationApproved || got.Recipient != "ada@example.com" {
		t.Errorf("relay payload = %+v", got)
	}
	if got.Fields["first_name"] != "Ada" {
		t.Errorf("fields = %v", got.Fields)
	}
}

func TestSend_NoRelayNoOutbox(t *testing.T) {
	// Nothing to deliver to and nowhere to fall back; must not panic.
	c := webhook.New("", time.Second, nil, zap.NewNop())
	c.Send(context.Background(), webhook.Notification{Type: webhook.TypeProspectInvite, Recipient: "x@example.com"})

	var nilClient *webhook.Client
	nilClient.Send(context.Background(), webhook.Notification{})
}

func TestSend_FallbackOnServerError(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	outbox := db.Collection("webhook_outbox")
	c := webhook.New(srv.URL, time.Second, outbox, zap.NewNop())
	c.Send(ctx, webhook.Notification{Type: webhook.TypeRegistrationConfirmed, Recipient: "ada@example.com"})

	n, err := outbox.CountDocuments(ctx, bson.M{})
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if n != 1 {
		t.Fatalf("outbox entries = %d, want 1", n)
	}

	var entry struct {
		Notification webhook.Notification `bson:"notification"`
		Reason       string               `bson:"reason"`
		FailedAt     time.Time            `bson:"failed_at"`
	}
	if err := outbox.FindOne(ctx, bson.M{}).Decode(&entry); err != nil {
		t.Fatalf("outbox read failed: %v", err)
	}
	if entry.Notification.Recipient != "ada@example.com" {
		t.Errorf("outboxed notification = %+v", entry.Notification)
	}
	if entry.Reason == "" || entry.FailedAt.IsZero() {
		t.Errorf("entry missing failure metadata: %+v", entry)
	}
}

func TestSend_UnconfiguredRelayOutboxes(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	outbox := db.Collection("webhook_outbox")
	c := webhook.New("", time.Second, outbox, zap.NewNop())
	c.Send(ctx, webhook.Notification{Type: webhook.TypeWebinarReminder, Recipient: "ada@example.com"})

	n, err := outbox.CountDocuments(ctx, bson.M{})
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if n != 1 {
		t.Errorf("outbox entries = %d, want 1", n)
	}
}

func TestDrainOutbox(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	outbox := db.Collection("webhook_outbox")

	// Three stranded notifications, oldest first.
	failing := webhook.New("", time.Second, outbox, zap.NewNop())
	for _, rcpt := range []string{"a@example.com", "b@example.com", "c@example.com"} {
		failing.Send(ctx, webhook.Notification{Type: webhook.TypeProspectInvite, Recipient: rcpt})
		time.Sleep(5 * time.Millisecond)
	}

	c := webhook.New(srv.URL, time.Second, outbox, zap.NewNop())
	delivered, err := c.DrainOutbox(ctx, 2)
	if err != nil {
		t.Fatalf("DrainOutbox failed: %v", err)
	}
	if delivered != 2 {
		t.Fatalf("delivered = %d, want 2", delivered)
	}

	// The newest entry should be the one left behind.
	var left struct {
		Notification webhook.Notification `bson:"notification"`
	}
	if err := outbox.FindOne(ctx, bson.M{}).Decode(&left); err != nil {
		t.Fatalf("outbox read failed: %v", err)
	}
	if left.Notification.Recipient != "c@example.com" {
		t.Errorf("remaining entry = %+v", left.Notification)
	}
}

func TestDrainOutbox_StopsWhenRelayStillDown(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	outbox := db.Collection("webhook_outbox")
	failing := webhook.New("", time.Second, outbox, zap.NewNop())
	failing.Send(ctx, webhook.Notification{Type: webhook.TypeProspectInvite, Recipient: "a@example.com"})

	c := webhook.New(srv.URL, time.Second, outbox, zap.NewNop())
	delivered, err := c.DrainOutbox(ctx, 10)
	if err != nil {
		t.Fatalf("DrainOutbox failed: %v", err)
	}
	if delivered != 0 {
		t.Errorf("delivered = %d, want 0", delivered)
	}

	n, _ := outbox.CountDocuments(ctx, bson.M{})
	if n != 1 {
		t.Errorf("entry should stay for the next pass, outbox = %d", n)
	}
}

func TestDrainOutbox_Unconfigured(t *testing.T) {
	c := webhook.New("", time.Second, nil, zap.NewNop())
	delivered, err := c.DrainOutbox(context.Background(), 10)
	if err != nil || delivered != 0 {
		t.Errorf("unconfigured drain = (%d, %v)", delivered, err)
	}
}

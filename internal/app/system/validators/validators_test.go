package validators_test

import (
	"testing"
	"time"

	"github.com/dalemusser/memberhub/internal/app/system/validators"
	"github.com/dalemusser/memberhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestEnsureAll(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	// EnsureAll should succeed on a clean database
	err := validators.EnsureAll(ctx, db)
	if err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}
}

func TestEnsureAll_Idempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	// First call
	if err := validators.EnsureAll(ctx, db); err != nil {
		t.Fatalf("first EnsureAll failed: %v", err)
	}
	// Second call must not error
	if err := validators.EnsureAll(ctx, db); err != nil {
		t.Fatalf("second EnsureAll failed: %v", err)
	}
}

func TestEnsureAll_CreatesCollections(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := validators.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	names, err := db.ListCollectionNames(ctx, bson.M{})
	if err != nil {
		t.Fatalf("ListCollectionNames failed: %v", err)
	}
	have := map[string]bool{}
	for _, n := range names {
		have[n] = true
	}
	for _, want := range []string{"members", "registrations", "trainings", "webinars", "payments", "prospects", "admins", "audit_events", "webhook_outbox"} {
		if !have[want] {
			t.Errorf("collection %q was not created", want)
		}
	}
}

func TestMembersValidator_RequiredFields(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := validators.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	// Missing email and status should be rejected
	_, err := db.Collection("members").InsertOne(ctx, bson.M{
		"first_name": "Ada",
		"last_name":  "Lovelace",
	})
	if err == nil {
		t.Error("expected validator to reject member without email/status")
	}
}

func TestMembersValidator_ValidMember(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := validators.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	now := time.Now().UTC()
	_, err := db.Collection("members").InsertOne(ctx, bson.M{
		"first_name":    "Ada",
		"first_name_ci": "ada",
		"last_name":     "Lovelace",
		"last_name_ci":  "lovelace",
		"email":         "ada@example.com",
		"status":        "pending",
		"archived":      false,
		"created_at":    now,
		"updated_at":    now,
	})
	if err != nil {
		t.Errorf("valid member rejected: %v", err)
	}
}

func TestMembersValidator_InvalidStatus(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := validators.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	_, err := db.Collection("members").InsertOne(ctx, bson.M{
		"first_name": "Ada",
		"last_name":  "Lovelace",
		"email":      "ada@example.com",
		"status":     "maybe",
	})
	if err == nil {
		t.Error("expected validator to reject unknown status")
	}
}

func TestRegistrationsValidator_InvalidKind(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := validators.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	_, err := db.Collection("registrations").InsertOne(ctx, bson.M{
		"kind":      "conference",
		"event_id":  primitive.NewObjectID(),
		"full_name": "Ada Lovelace",
		"email":     "ada@example.com",
		"status":    "pending",
	})
	if err == nil {
		t.Error("expected validator to reject unknown registration kind")
	}
}

func TestPaymentsValidator_ZeroAmount(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := validators.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	_, err := db.Collection("payments").InsertOne(ctx, bson.M{
		"amount_cents": 0,
		"currency":     "EUR",
		"category":     "dues",
		"paid_at":      time.Now().UTC(),
	})
	if err == nil {
		t.Error("expected validator to reject zero amount")
	}
}

func TestAdminsValidator_InvalidRole(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := validators.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	_, err := db.Collection("admins").InsertOne(ctx, bson.M{
		"full_name":     "Root",
		"email":         "root@example.com",
		"password_hash": "x",
		"role":          "root",
		"status":        "active",
	})
	if err == nil {
		t.Error("expected validator to reject unknown role")
	}
}

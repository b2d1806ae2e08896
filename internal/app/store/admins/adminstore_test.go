package adminstore_test

import (
	"testing"
	"time"

	adminstore "github.com/dalemusser/memberhub/internal/app/store/admins"
	"github.com/dalemusser/memberhub/internal/app/system/apperr"
	"github.com/dalemusser/memberhub/internal/app/system/indexes"
	"github.com/dalemusser/memberhub/internal/domain/models"
	"github.com/dalemusser/memberhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestCreate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	s := adminstore.New(db)
	a, err := s.Create(ctx, models.AdminUser{
		FullName:     "  Grace  Hopper ",
		Email:        " Grace@Example.COM ",
		PasswordHash: "hash",
		Role:         models.RoleAdmin,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if a.FullName != "Grace Hopper" || a.Email != "grace@example.com" {
		t.Errorf("normalized account = %+v", a)
	}
	if a.Status != models.AdminActive {
		t.Errorf("status = %q", a.Status)
	}
}

func TestCreate_DuplicateEmailConflicts(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	s := adminstore.New(db)
	a := models.AdminUser{FullName: "Grace Hopper", Email: "grace@example.com", PasswordHash: "x", Role: models.RoleAdmin}
	if _, err := s.Create(ctx, a); err != nil {
		t.Fatalf("first create failed: %v", err)
	}
	_, err := s.Create(ctx, a)
	if !apperr.IsKind(err, apperr.KindConflict) {
		t.Errorf("duplicate email: got %v, want conflict", err)
	}
}

func TestGetByEmail_HidesExistence(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	s := adminstore.New(db)
	_, err := s.GetByEmail(ctx, "nobody@example.com")
	if !apperr.IsKind(err, apperr.KindAuth) {
		t.Errorf("missing account: got %v, want auth error", err)
	}

	fx := testutil.NewFixtures(t, db)
	fx.CreateAdmin(ctx, "Grace Hopper", "grace@example.com", models.RoleAdmin)
	if _, err := s.GetByEmail(ctx, "  GRACE@example.com "); err != nil {
		t.Errorf("lookup should normalize the email: %v", err)
	}
}

func TestFetchAdmin(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	s := adminstore.New(db)
	fx := testutil.NewFixtures(t, db)
	a := fx.CreateAdmin(ctx, "Grace Hopper", "grace@example.com", models.RoleAdmin)

	got, err := s.FetchAdmin(ctx, a.ID.Hex())
	if err != nil || got.ID != a.ID {
		t.Errorf("FetchAdmin = (%v, %v)", got, err)
	}

	if _, err := s.FetchAdmin(ctx, "not-hex"); !apperr.IsKind(err, apperr.KindAuth) {
		t.Errorf("bad subject: got %v, want auth error", err)
	}
	if _, err := s.FetchAdmin(ctx, primitive.NewObjectID().Hex()); !apperr.IsKind(err, apperr.KindAuth) {
		t.Errorf("vanished account: got %v, want auth error", err)
	}
}

func TestSetStatus(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	s := adminstore.New(db)
	fx := testutil.NewFixtures(t, db)
	a := fx.CreateAdmin(ctx, "Grace Hopper", "grace@example.com", models.RoleAdmin)

	got, err := s.SetStatus(ctx, a.ID, models.AdminDisabled)
	if err != nil {
		t.Fatalf("SetStatus failed: %v", err)
	}
	if got.Status != models.AdminDisabled {
		t.Errorf("status = %q", got.Status)
	}

	// Disabling a disabled account is a conflict, not a silent no-op.
	_, err = s.SetStatus(ctx, a.ID, models.AdminDisabled)
	if !apperr.IsKind(err, apperr.KindConflict) {
		t.Errorf("redundant disable: got %v, want conflict", err)
	}

	_, err = s.SetStatus(ctx, primitive.NewObjectID(), models.AdminDisabled)
	if !apperr.IsKind(err, apperr.KindNotFound) {
		t.Errorf("missing account: got %v, want not found", err)
	}
}

func TestSuspendAndClear(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	s := adminstore.New(db)
	fx := testutil.NewFixtures(t, db)
	a := fx.CreateAdmin(ctx, "Grace Hopper", "grace@example.com", models.RoleAdmin)

	until := time.Now().Add(48 * time.Hour).UTC().Truncate(time.Millisecond)
	got, err := s.Suspend(ctx, a.ID, until)
	if err != nil {
		t.Fatalf("Suspend failed: %v", err)
	}
	if got.SuspendedUntil == nil || !got.SuspendedUntil.Equal(until) {
		t.Errorf("suspended_until = %v", got.SuspendedUntil)
	}

	got, err = s.ClearSuspension(ctx, a.ID)
	if err != nil {
		t.Fatalf("ClearSuspension failed: %v", err)
	}
	if got.SuspendedUntil != nil {
		t.Errorf("suspension should be cleared, got %v", got.SuspendedUntil)
	}
}

func TestSetPasswordHashAndRecordLogin(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	s := adminstore.New(db)
	fx := testutil.NewFixtures(t, db)
	a := fx.CreateAdmin(ctx, "Grace Hopper", "grace@example.com", models.RoleAdmin)

	got, err := s.SetPasswordHash(ctx, a.ID, "new-hash")
	if err != nil || got.PasswordHash != "new-hash" {
		t.Errorf("SetPasswordHash = (%+v, %v)", got, err)
	}

	at := time.Now().UTC().Truncate(time.Millisecond)
	if err := s.RecordLogin(ctx, a.ID, at); err != nil {
		t.Fatalf("RecordLogin failed: %v", err)
	}
	fresh, err := s.GetByID(ctx, a.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if fresh.LastLoginAt == nil || !fresh.LastLoginAt.Equal(at) {
		t.Errorf("last_login_at = %v", fresh.LastLoginAt)
	}
}

func TestCountActive(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	s := adminstore.New(db)
	fx := testutil.NewFixtures(t, db)
	fx.CreateAdmin(ctx, "A", "a@example.com", models.RoleAdmin)
	b := fx.CreateAdmin(ctx, "B", "b@example.com", models.RoleSecretary)

	if _, err := s.SetStatus(ctx, b.ID, models.AdminDisabled); err != nil {
		t.Fatalf("SetStatus failed: %v", err)
	}

	n, err := s.CountActive(ctx)
	if err != nil || n != 1 {
		t.Errorf("active = (%d, %v), want 1", n, err)
	}
}

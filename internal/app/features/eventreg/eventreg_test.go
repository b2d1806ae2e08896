package eventreg_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/dalemusser/memberhub/internal/app/api/router"
	"github.com/dalemusser/memberhub/internal/app/features/eventreg"
	registrationstore "github.com/dalemusser/memberhub/internal/app/store/registrations"
	"github.com/dalemusser/memberhub/internal/app/system/apperr"
	"github.com/dalemusser/memberhub/internal/domain/models"
	"github.com/dalemusser/memberhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// fakeEvent stands in for the owning training or webinar so the subresource
// can be exercised without either feature.
type fakeEvent struct {
	id        primitive.ObjectID
	capacity  int
	cancelled bool
}

func newSub(t *testing.T, db *mongo.Database, ev *fakeEvent) *eventreg.Sub {
	t.Helper()
	return &eventreg.Sub{
		Kind: models.EventKindWebinar,
		Regs: registrationstore.New(db),
		Log:  zap.NewNop(),
		Lookup: func(_ context.Context, eventID primitive.ObjectID) (eventreg.EventInfo, error) {
			if eventID != ev.id {
				return eventreg.EventInfo{}, apperr.NotFound("webinar not found")
			}
			if ev.cancelled {
				return eventreg.EventInfo{}, apperr.Conflict("webinar is cancelled")
			}
			return eventreg.EventInfo{Title: "Grant Writing 101", Capacity: ev.capacity}, nil
		},
	}
}

func signup(h *eventreg.Sub, eventID primitive.ObjectID, name, email string) *testutil.ResponseRecorder {
	r := testutil.NewRequest(http.MethodPost, "/api/webinars/"+eventID.Hex()+"/registrations",
		`{"full_name":"`+name+`","email":"`+email+`"}`)
	rec := testutil.NewRecorder()
	h.ServeCreate(rec, r, router.Params{"id": eventID.Hex()})
	return rec
}

func decodeRegistration(t *testing.T, rec *testutil.ResponseRecorder) models.Registration {
	t.Helper()
	var env struct {
		Data models.Registration `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("response decode failed: %v", err)
	}
	return env.Data
}

func TestServeCreate_JoinsWaitlistInOrder(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ev := &fakeEvent{id: primitive.NewObjectID(), capacity: 10}
	h := newSub(t, db, ev)

	rec := signup(h, ev.id, "Ada Lovelace", "ada@example.com")
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	first := decodeRegistration(t, rec)
	if first.Status != models.RegistrationPending {
		t.Errorf("status = %q, want pending", first.Status)
	}
	if first.WaitlistRank == nil || *first.WaitlistRank != 1 {
		t.Errorf("rank = %v, want 1", first.WaitlistRank)
	}

	second := decodeRegistration(t, signup(h, ev.id, "Grace Hopper", "grace@example.com"))
	if second.WaitlistRank == nil || *second.WaitlistRank != 2 {
		t.Errorf("second rank = %v, want 2", second.WaitlistRank)
	}
}

func TestServeCreate_CancelledEventRejectsSignup(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ev := &fakeEvent{id: primitive.NewObjectID(), cancelled: true}
	h := newSub(t, db, ev)

	rec := signup(h, ev.id, "Ada Lovelace", "ada@example.com")
	rec.AssertStatus(t, http.StatusConflict)
	rec.AssertContains(t, "cancelled")
}

func TestServeCreate_Validation(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ev := &fakeEvent{id: primitive.NewObjectID()}
	h := newSub(t, db, ev)

	r := testutil.NewRequest(http.MethodPost, "/api/webinars/"+ev.id.Hex()+"/registrations", `{}`)
	rec := testutil.NewRecorder()
	h.ServeCreate(rec, r, router.Params{"id": ev.id.Hex()})
	rec.AssertStatus(t, http.StatusBadRequest)
	rec.AssertContains(t, "full_name")
	rec.AssertContains(t, "email")

	rec = signup(h, ev.id, "Ada Lovelace", "not-an-email")
	rec.AssertStatus(t, http.StatusBadRequest)
	rec.AssertContains(t, "invalid email")
}

func TestServeConfirm(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ev := &fakeEvent{id: primitive.NewObjectID(), capacity: 10}
	h := newSub(t, db, ev)

	reg := decodeRegistration(t, signup(h, ev.id, "Ada Lovelace", "ada@example.com"))

	target := "/api/webinars/" + ev.id.Hex() + "/registrations/" + reg.ID.Hex() + "/confirm"
	r := testutil.NewAuthenticatedRequest(http.MethodPost, target, "", testutil.Admin())
	rec := testutil.NewRecorder()
	h.ServeConfirm(rec, r, router.Params{"id": ev.id.Hex(), "rid": reg.ID.Hex()})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if got := decodeRegistration(t, rec); got.Status != models.RegistrationConfirmed {
		t.Errorf("status = %q, want confirmed", got.Status)
	}

	// Confirmation is terminal.
	rec = testutil.NewRecorder()
	h.ServeConfirm(rec, r, router.Params{"id": ev.id.Hex(), "rid": reg.ID.Hex()})
	rec.AssertStatus(t, http.StatusConflict)
}

func TestServeConfirm_CapacityReached(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	ev := &fakeEvent{id: primitive.NewObjectID(), capacity: 1}
	h := newSub(t, db, ev)

	fx := testutil.NewFixtures(t, db)
	fx.CreateRegistration(ctx, models.EventKindWebinar, ev.id, "Grace Hopper", "grace@example.com", models.RegistrationConfirmed, nil)
	pending := decodeRegistration(t, signup(h, ev.id, "Ada Lovelace", "ada@example.com"))

	target := "/api/webinars/" + ev.id.Hex() + "/registrations/" + pending.ID.Hex() + "/confirm"
	r := testutil.NewAuthenticatedRequest(http.MethodPost, target, "", testutil.Admin())
	rec := testutil.NewRecorder()
	h.ServeConfirm(rec, r, router.Params{"id": ev.id.Hex(), "rid": pending.ID.Hex()})
	rec.AssertStatus(t, http.StatusConflict)
	rec.AssertContains(t, "capacity")

	// Capacity 0 means unlimited.
	ev.capacity = 0
	rec = testutil.NewRecorder()
	h.ServeConfirm(rec, r, router.Params{"id": ev.id.Hex(), "rid": pending.ID.Hex()})
	if rec.Code != http.StatusOK {
		t.Fatalf("unlimited capacity confirm: status = %d, body %s", rec.Code, rec.Body.String())
	}
}

func TestServeCancelAndDelete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ev := &fakeEvent{id: primitive.NewObjectID(), capacity: 10}
	h := newSub(t, db, ev)

	reg := decodeRegistration(t, signup(h, ev.id, "Ada Lovelace", "ada@example.com"))
	params := router.Params{"id": ev.id.Hex(), "rid": reg.ID.Hex()}

	r := testutil.NewAuthenticatedRequest(http.MethodPost, "/cancel", "", testutil.Admin())
	rec := testutil.NewRecorder()
	h.ServeCancel(rec, r, params)
	if rec.Code != http.StatusOK {
		t.Fatalf("cancel status = %d, body %s", rec.Code, rec.Body.String())
	}
	if got := decodeRegistration(t, rec); got.Status != models.RegistrationCancelled {
		t.Errorf("status = %q, want cancelled", got.Status)
	}

	r = testutil.NewAuthenticatedRequest(http.MethodDelete, "/", "", testutil.Admin())
	rec = testutil.NewRecorder()
	h.ServeDelete(rec, r, params)
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, "registration deleted")

	rec = testutil.NewRecorder()
	h.ServeDelete(rec, r, params)
	rec.AssertStatus(t, http.StatusNotFound)
}

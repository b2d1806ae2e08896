package registrationstore_test

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dalemusser/memberhub/internal/app/api/listquery"
	registrationstore "github.com/dalemusser/memberhub/internal/app/store/registrations"
	"github.com/dalemusser/memberhub/internal/app/system/apperr"
	"github.com/dalemusser/memberhub/internal/app/system/indexes"
	"github.com/dalemusser/memberhub/internal/domain/models"
	"github.com/dalemusser/memberhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func intp(n int) *int { return &n }

func TestCreate_NormalizesAndDefaults(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	s := registrationstore.New(db)
	reg, err := s.Create(ctx, models.Registration{
		Kind:     models.EventKindTraining,
		EventID:  primitive.NewObjectID(),
		FullName: "  Ada   Lovelace ",
		Email:    " Ada@Example.COM ",
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if reg.FullName != "Ada Lovelace" {
		t.Errorf("full name = %q", reg.FullName)
	}
	if reg.Email != "ada@example.com" {
		t.Errorf("email = %q", reg.Email)
	}
	if reg.Status != models.RegistrationPending {
		t.Errorf("status = %q", reg.Status)
	}
	if reg.CreatedAt.IsZero() {
		t.Error("created_at unset")
	}
}

func TestCreate_DuplicateEmailConflicts(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	s := registrationstore.New(db)
	eventID := primitive.NewObjectID()
	base := models.Registration{
		Kind:     models.EventKindWebinar,
		EventID:  eventID,
		FullName: "Ada Lovelace",
		Email:    "ada@example.com",
	}

	if _, err := s.Create(ctx, base); err != nil {
		t.Fatalf("first create failed: %v", err)
	}
	_, err := s.Create(ctx, base)
	if !apperr.IsKind(err, apperr.KindConflict) {
		t.Errorf("repeat signup: got %v, want conflict", err)
	}

	// The same email may register for the other kind.
	base.Kind = models.EventKindTraining
	if _, err := s.Create(ctx, base); err != nil {
		t.Errorf("other kind should not collide: %v", err)
	}
}

func TestConfirm(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	s := registrationstore.New(db)
	fx := testutil.NewFixtures(t, db)
	eventID := primitive.NewObjectID()
	reg := fx.CreateRegistration(ctx, models.EventKindTraining, eventID, "Ada Lovelace", "ada@example.com", models.RegistrationPending, nil)

	got, err := s.Confirm(ctx, models.EventKindTraining, eventID, reg.ID)
	if err != nil {
		t.Fatalf("Confirm failed: %v", err)
	}
	if got.Status != models.RegistrationConfirmed || got.ConfirmedAt == nil {
		t.Errorf("confirmed registration = %+v", got)
	}

	// Terminal states cannot transition again.
	_, err = s.Confirm(ctx, models.EventKindTraining, eventID, reg.ID)
	if !apperr.IsKind(err, apperr.KindConflict) {
		t.Errorf("re-confirm: got %v, want conflict", err)
	}
	_, err = s.Cancel(ctx, models.EventKindTraining, eventID, reg.ID)
	if !apperr.IsKind(err, apperr.KindConflict) {
		t.Errorf("cancel after confirm: got %v, want conflict", err)
	}
}

func TestCancel(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	s := registrationstore.New(db)
	fx := testutil.NewFixtures(t, db)
	eventID := primitive.NewObjectID()
	reg := fx.CreateRegistration(ctx, models.EventKindWebinar, eventID, "Ada Lovelace", "ada@example.com", models.RegistrationPending, nil)

	got, err := s.Cancel(ctx, models.EventKindWebinar, eventID, reg.ID)
	if err != nil {
		t.Fatalf("Cancel failed: %v", err)
	}
	if got.Status != models.RegistrationCancelled || got.CancelledAt == nil {
		t.Errorf("cancelled registration = %+v", got)
	}
}

func TestTransition_WrongEventIsNotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	s := registrationstore.New(db)
	fx := testutil.NewFixtures(t, db)
	eventID := primitive.NewObjectID()
	reg := fx.CreateRegistration(ctx, models.EventKindTraining, eventID, "Ada Lovelace", "ada@example.com", models.RegistrationPending, nil)

	_, err := s.Confirm(ctx, models.EventKindTraining, primitive.NewObjectID(), reg.ID)
	if !apperr.IsKind(err, apperr.KindNotFound) {
		t.Errorf("other event's route: got %v, want not found", err)
	}
}

func TestWaitlistRanks(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	s := registrationstore.New(db)
	fx := testutil.NewFixtures(t, db)
	eventID := primitive.NewObjectID()

	// Empty waitlist starts at 1.
	next, err := s.NextWaitlistRank(ctx, models.EventKindTraining, eventID)
	if err != nil || next != 1 {
		t.Fatalf("NextWaitlistRank = (%d, %v), want 1", next, err)
	}

	fx.CreateRegistration(ctx, models.EventKindTraining, eventID, "A", "a@example.com", models.RegistrationPending, intp(1))
	fx.CreateRegistration(ctx, models.EventKindTraining, eventID, "B", "b@example.com", models.RegistrationPending, intp(4))
	unranked := fx.CreateRegistration(ctx, models.EventKindTraining, eventID, "C", "c@example.com", models.RegistrationPending, nil)

	next, err = s.NextWaitlistRank(ctx, models.EventKindTraining, eventID)
	if err != nil || next != 5 {
		t.Fatalf("NextWaitlistRank = (%d, %v), want 5", next, err)
	}

	got, err := s.SetWaitlistRank(ctx, models.EventKindTraining, eventID, unranked.ID, intp(2))
	if err != nil {
		t.Fatalf("SetWaitlistRank failed: %v", err)
	}
	if got.WaitlistRank == nil || *got.WaitlistRank != 2 {
		t.Errorf("rank = %v", got.WaitlistRank)
	}

	got, err = s.SetWaitlistRank(ctx, models.EventKindTraining, eventID, unranked.ID, nil)
	if err != nil {
		t.Fatalf("clear rank failed: %v", err)
	}
	if got.WaitlistRank != nil {
		t.Errorf("rank should be cleared, got %v", got.WaitlistRank)
	}
}

func TestListByEvent_PendingOrdersByRank(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	s := registrationstore.New(db)
	fx := testutil.NewFixtures(t, db)
	eventID := primitive.NewObjectID()

	// Out-of-order creation; unranked entries and a confirmed one mixed in.
	fx.CreateRegistration(ctx, models.EventKindTraining, eventID, "Second", "second@example.com", models.RegistrationPending, intp(2))
	time.Sleep(5 * time.Millisecond)
	fx.CreateRegistration(ctx, models.EventKindTraining, eventID, "Unranked", "unranked@example.com", models.RegistrationPending, nil)
	time.Sleep(5 * time.Millisecond)
	fx.CreateRegistration(ctx, models.EventKindTraining, eventID, "First", "first@example.com", models.RegistrationPending, intp(1))
	fx.CreateRegistration(ctx, models.EventKindTraining, eventID, "Confirmed", "confirmed@example.com", models.RegistrationConfirmed, nil)

	r := httptest.NewRequest("GET", "/api/trainings/x/registrations?status=pending", nil)
	q := listquery.Parse(r, registrationstore.ListSpec())
	q.Eq("status", models.RegistrationPending)

	regs, total, err := s.ListByEvent(ctx, models.EventKindTraining, eventID, &q)
	if err != nil {
		t.Fatalf("ListByEvent failed: %v", err)
	}
	if total != 3 {
		t.Errorf("total = %d, want 3", total)
	}
	if len(regs) != 3 {
		t.Fatalf("page = %d rows", len(regs))
	}
	want := []string{"First", "Second", "Unranked"}
	for i, name := range want {
		if regs[i].FullName != name {
			t.Errorf("position %d = %q, want %q", i, regs[i].FullName, name)
		}
	}
}

func TestCountByStatusAndConfirmedEmails(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	s := registrationstore.New(db)
	fx := testutil.NewFixtures(t, db)
	eventID := primitive.NewObjectID()

	fx.CreateRegistration(ctx, models.EventKindWebinar, eventID, "A", "a@example.com", models.RegistrationConfirmed, nil)
	fx.CreateRegistration(ctx, models.EventKindWebinar, eventID, "B", "b@example.com", models.RegistrationConfirmed, nil)
	fx.CreateRegistration(ctx, models.EventKindWebinar, eventID, "C", "c@example.com", models.RegistrationPending, nil)

	n, err := s.CountByStatus(ctx, models.EventKindWebinar, eventID, models.RegistrationConfirmed)
	if err != nil || n != 2 {
		t.Errorf("confirmed count = (%d, %v), want 2", n, err)
	}

	regs, err := s.ConfirmedEmails(ctx, models.EventKindWebinar, eventID)
	if err != nil {
		t.Fatalf("ConfirmedEmails failed: %v", err)
	}
	if len(regs) != 2 {
		t.Errorf("confirmed emails = %d rows", len(regs))
	}
}

func TestCountForEvents(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	s := registrationstore.New(db)
	fx := testutil.NewFixtures(t, db)
	eventA := primitive.NewObjectID()
	eventB := primitive.NewObjectID()

	fx.CreateRegistration(ctx, models.EventKindTraining, eventA, "A", "a@example.com", models.RegistrationPending, nil)
	fx.CreateRegistration(ctx, models.EventKindTraining, eventA, "B", "b@example.com", models.RegistrationConfirmed, nil)
	fx.CreateRegistration(ctx, models.EventKindTraining, eventB, "C", "c@example.com", models.RegistrationPending, nil)

	counts, err := s.CountForEvents(ctx, models.EventKindTraining, []primitive.ObjectID{eventA, eventB})
	if err != nil {
		t.Fatalf("CountForEvents failed: %v", err)
	}
	if counts[eventA] != 2 || counts[eventB] != 1 {
		t.Errorf("counts = %v", counts)
	}

	empty, err := s.CountForEvents(ctx, models.EventKindTraining, nil)
	if err != nil || len(empty) != 0 {
		t.Errorf("empty id set = (%v, %v)", empty, err)
	}
}

package prospectstore_test

import (
	"testing"

	prospectstore "github.com/dalemusser/memberhub/internal/app/store/prospects"
	"github.com/dalemusser/memberhub/internal/app/system/apperr"
	"github.com/dalemusser/memberhub/internal/domain/models"
	"github.com/dalemusser/memberhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestCreate_DefaultsToNewStage(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	s := prospectstore.New(db)
	p, err := s.Create(ctx, models.Prospect{
		FullName: "  Jean  Bartik ",
		Email:    " Jean@Example.COM ",
		Source:   "meetup",
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if p.FullName != "Jean Bartik" || p.Email != "jean@example.com" {
		t.Errorf("normalized prospect = %+v", p)
	}
	if p.Stage != models.ProspectNew {
		t.Errorf("stage = %q", p.Stage)
	}
}

func TestMarkInvited(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	s := prospectstore.New(db)
	fx := testutil.NewFixtures(t, db)
	p := fx.CreateProspect(ctx, "Jean Bartik", "jean@example.com", models.ProspectContacted)

	got, err := s.MarkInvited(ctx, p.ID)
	if err != nil {
		t.Fatalf("MarkInvited failed: %v", err)
	}
	if got.Stage != models.ProspectInvited || got.InvitedAt == nil {
		t.Errorf("invited prospect = %+v", got)
	}

	// Archived prospects cannot be invited.
	if _, err := s.Archive(ctx, p.ID); err != nil {
		t.Fatalf("Archive failed: %v", err)
	}
	_, err = s.MarkInvited(ctx, p.ID)
	if !apperr.IsKind(err, apperr.KindConflict) {
		t.Errorf("invite archived: got %v, want conflict", err)
	}

	_, err = s.MarkInvited(ctx, primitive.NewObjectID())
	if !apperr.IsKind(err, apperr.KindNotFound) {
		t.Errorf("invite missing: got %v, want not found", err)
	}
}

func TestUpdate_ReferrerLink(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	s := prospectstore.New(db)
	fx := testutil.NewFixtures(t, db)
	p := fx.CreateProspect(ctx, "Jean Bartik", "jean@example.com", models.ProspectNew)

	referrer := primitive.NewObjectID()
	refp := &referrer
	got, err := s.Update(ctx, p.ID, prospectstore.Update{ReferrerID: &refp})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if got.ReferrerID == nil || *got.ReferrerID != referrer {
		t.Errorf("referrer = %v", got.ReferrerID)
	}

	var cleared *primitive.ObjectID
	got, err = s.Update(ctx, p.ID, prospectstore.Update{ReferrerID: &cleared})
	if err != nil {
		t.Fatalf("clear referrer failed: %v", err)
	}
	if got.ReferrerID != nil {
		t.Errorf("referrer should be cleared, got %v", got.ReferrerID)
	}
}

func TestCountByStage(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	s := prospectstore.New(db)
	fx := testutil.NewFixtures(t, db)
	fx.CreateProspect(ctx, "A", "a@example.com", models.ProspectNew)
	fx.CreateProspect(ctx, "B", "b@example.com", models.ProspectNew)
	fx.CreateProspect(ctx, "C", "c@example.com", models.ProspectJoined)
	archived := fx.CreateProspect(ctx, "D", "d@example.com", models.ProspectDeclined)

	if _, err := s.Archive(ctx, archived.ID); err != nil {
		t.Fatalf("Archive failed: %v", err)
	}

	counts, err := s.CountByStage(ctx)
	if err != nil {
		t.Fatalf("CountByStage failed: %v", err)
	}
	if counts[models.ProspectNew] != 2 || counts[models.ProspectJoined] != 1 {
		t.Errorf("counts = %v", counts)
	}
	if counts[models.ProspectDeclined] != 0 {
		t.Errorf("archived prospect should not count: %v", counts)
	}
}

package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/dalemusser/memberhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateMember inserts a membership application with the given status.
func (f *Fixtures) CreateMember(ctx context.Context, firstName, lastName, email, status string) models.Member {
	f.t.Helper()

	now := time.Now().UTC()
	m := models.Member{
		ID:          primitive.NewObjectID(),
		FirstName:   firstName,
		FirstNameCI: text.Fold(firstName),
		LastName:    lastName,
		LastNameCI:  text.Fold(lastName),
		Email:       email,
		Status:      status,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if _, err := f.db.Collection("members").InsertOne(ctx, m); err != nil {
		f.t.Fatalf("failed to create test member: %v", err)
	}
	return m
}

// CreateTraining inserts a scheduled training session.
func (f *Fixtures) CreateTraining(ctx context.Context, title string, startsAt time.Time, capacity int) models.Training {
	f.t.Helper()

	now := time.Now().UTC()
	tr := models.Training{
		ID:        primitive.NewObjectID(),
		Title:     title,
		TitleCI:   text.Fold(title),
		StartsAt:  startsAt,
		Capacity:  capacity,
		Status:    models.TrainingScheduled,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if _, err := f.db.Collection("trainings").InsertOne(ctx, tr); err != nil {
		f.t.Fatalf("failed to create test training: %v", err)
	}
	return tr
}

// CreateWebinar inserts a scheduled webinar.
func (f *Fixtures) CreateWebinar(ctx context.Context, title string, scheduledAt time.Time, capacity int) models.Webinar {
	f.t.Helper()

	now := time.Now().UTC()
	wb := models.Webinar{
		ID:          primitive.NewObjectID(),
		Title:       title,
		TitleCI:     text.Fold(title),
		ScheduledAt: scheduledAt,
		Capacity:    capacity,
		Status:      models.WebinarScheduled,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if _, err := f.db.Collection("webinars").InsertOne(ctx, wb); err != nil {
		f.t.Fatalf("failed to create test webinar: %v", err)
	}
	return wb
}

// CreateRegistration inserts an event registration with the given status and
// optional waitlist rank.
func (f *Fixtures) CreateRegistration(ctx context.Context, kind string, eventID primitive.ObjectID, fullName, email, status string, rank *int) models.Registration {
	f.t.Helper()

	now := time.Now().UTC()
	reg := models.Registration{
		ID:           primitive.NewObjectID(),
		Kind:         kind,
		EventID:      eventID,
		FullName:     fullName,
		FullNameCI:   text.Fold(fullName),
		Email:        email,
		Status:       status,
		WaitlistRank: rank,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if _, err := f.db.Collection("registrations").InsertOne(ctx, reg); err != nil {
		f.t.Fatalf("failed to create test registration: %v", err)
	}
	return reg
}

// CreatePayment inserts a treasury payment.
func (f *Fixtures) CreatePayment(ctx context.Context, amountCents int64, currency, category string, paidAt time.Time) models.Payment {
	f.t.Helper()

	now := time.Now().UTC()
	p := models.Payment{
		ID:          primitive.NewObjectID(),
		AmountCents: amountCents,
		Currency:    currency,
		Category:    category,
		PaidAt:      paidAt,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if _, err := f.db.Collection("payments").InsertOne(ctx, p); err != nil {
		f.t.Fatalf("failed to create test payment: %v", err)
	}
	return p
}

// CreateProspect inserts a recruitment prospect at the given stage.
func (f *Fixtures) CreateProspect(ctx context.Context, fullName, email, stage string) models.Prospect {
	f.t.Helper()

	now := time.Now().UTC()
	p := models.Prospect{
		ID:         primitive.NewObjectID(),
		FullName:   fullName,
		FullNameCI: text.Fold(fullName),
		Email:      email,
		Stage:      stage,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if _, err := f.db.Collection("prospects").InsertOne(ctx, p); err != nil {
		f.t.Fatalf("failed to create test prospect: %v", err)
	}
	return p
}

// CreateAdmin inserts an active admin account. The password hash is a
// placeholder; use the auth package in tests that exercise login.
func (f *Fixtures) CreateAdmin(ctx context.Context, fullName, email, role string) models.AdminUser {
	f.t.Helper()

	now := time.Now().UTC()
	a := models.AdminUser{
		ID:           primitive.NewObjectID(),
		FullName:     fullName,
		FullNameCI:   text.Fold(fullName),
		Email:        email,
		PasswordHash: "x",
		Role:         role,
		Status:       models.AdminActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if _, err := f.db.Collection("admins").InsertOne(ctx, a); err != nil {
		f.t.Fatalf("failed to create test admin: %v", err)
	}
	return a
}
